package coinlore

import (
	"context"
	"fmt"
	"strings"

	"github.com/etnz/onyx"
)

const (
	searchPages    = 2   // pages of the ranking scanned by Search
	searchPageSize = 100 // coins per page
	maxResults     = 20
)

// Coin is a search result.
type Coin struct {
	ID       string     `json:"id"`
	Symbol   string     `json:"symbol"`
	Name     string     `json:"name"`
	Rank     int        `json:"rank"`
	PriceUSD onyx.Money `json:"-"`
}

// tickersPage matches the structure of the /tickers/ response.
type tickersPage struct {
	Data []struct {
		ID       string `json:"id"`
		Symbol   string `json:"symbol"`
		Name     string `json:"name"`
		Rank     int    `json:"rank"`
		PriceUSD string `json:"price_usd"`
	} `json:"data"`
}

// Search returns the coins of the top 200 whose symbol or name contains query,
// case-insensitively, by rank and at most 20 of them.
func (c *Client) Search(ctx context.Context, query string) ([]Coin, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}
	var coins []Coin
	for page := range searchPages {
		var res tickersPage
		path := fmt.Sprintf("/tickers/?start=%d&limit=%d", page*searchPageSize, searchPageSize)
		if err := c.jwget(ctx, path, &res); err != nil {
			return nil, fmt.Errorf("cannot search %q: %w", query, err)
		}
		for _, d := range res.Data {
			if !strings.Contains(strings.ToLower(d.Symbol), query) && !strings.Contains(strings.ToLower(d.Name), query) {
				continue
			}
			price, _ := onyx.ParseMoney(d.PriceUSD)
			coins = append(coins, Coin{ID: d.ID, Symbol: d.Symbol, Name: d.Name, Rank: d.Rank, PriceUSD: price})
			if len(coins) == maxResults {
				return coins, nil
			}
		}
	}
	return coins, nil
}
