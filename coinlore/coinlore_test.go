package coinlore

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/etnz/onyx"
	"github.com/etnz/onyx/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.CoinloreConfig{BaseURL: srv.URL + "/", Timeout: time.Second}, nil)
}

func TestClient_FetchPricesByIDs(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ticker/" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.Query().Get("id")
		fmt.Fprint(w, `[
			{"id":"90","symbol":"BTC","price_usd":"65012.34"},
			{"id":80,"symbol":"ETH","price_usd":3100.5},
			{"id":"58","symbol":"XRP","price_usd":"n/a"},
			{"symbol":"???","price_usd":"1"}
		]`)
	})

	prices, err := c.FetchPricesByIDs(context.Background(), []string{"90", "80", "58", "1"})
	if gotQuery != "90,80,58,1" {
		t.Errorf("query id = %q, want %q", gotQuery, "90,80,58,1")
	}
	if err == nil {
		t.Errorf("FetchPricesByIDs() expected an error for the unreadable tickers")
	}
	want := map[string]onyx.Money{"90": onyx.M(65012.34), "80": onyx.M(3100.5)}
	if len(prices) != len(want) {
		t.Fatalf("FetchPricesByIDs() = %v, want %v", prices, want)
	}
	for id, w := range want {
		if !prices[id].Equal(w) {
			t.Errorf("price[%s] = %v, want %v", id, prices[id], w)
		}
	}
}

func TestClient_FetchPricesByIDs_Failures(t *testing.T) {
	testCases := []struct {
		name    string
		body    string
		status  int
		wantErr bool
	}{
		{name: "server error", body: "oops", status: http.StatusInternalServerError, wantErr: true},
		{name: "not json", body: "<html>", status: http.StatusOK, wantErr: true},
		{name: "no match", body: `""`, status: http.StatusOK},
		{name: "empty list", body: `[]`, status: http.StatusOK},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			})
			prices, err := c.FetchPricesByIDs(context.Background(), []string{"90"})
			if (err != nil) != tc.wantErr {
				t.Errorf("FetchPricesByIDs() error = %v, wantErr %v", err, tc.wantErr)
			}
			if prices == nil || len(prices) != 0 {
				t.Errorf("FetchPricesByIDs() = %v, want an empty map", prices)
			}
		})
	}
}

func TestClient_FetchPricesByIDs_NoIDs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %v", r.URL)
	})
	if prices, err := c.FetchPricesByIDs(context.Background(), nil); err != nil || len(prices) != 0 {
		t.Errorf("FetchPricesByIDs(nil) = %v, %v, want empty", prices, err)
	}
}

// TestClient_RefreshesPortfolio checks the client serves as the live feed of a
// portfolio.
func TestClient_RefreshesPortfolio(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":"90","price_usd":"50000"}]`)
	})
	p := onyx.NewPortfolio()
	if _, err := p.Add(onyx.Investment{Ticker: "BTC", Category: onyx.Crypto, CoinloreID: "90", EntryPrice: onyx.M(40000), Quantity: onyx.Q(1)}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if got := p.Refresh(context.Background(), c); got != 1 {
		t.Errorf("Refresh() = %d, want 1", got)
	}
	if v := p.Valuation(); !v.CurrentValue.Equal(onyx.M(50000)) {
		t.Errorf("CurrentValue = %v, want %v", v.CurrentValue, onyx.M(50000))
	}
}

func TestClient_Search(t *testing.T) {
	page := func(start int) string {
		var items []string
		for i := range 100 {
			rank := start + i + 1
			name := fmt.Sprintf("Coin %d", rank)
			switch rank {
			case 1:
				name = "Bitcoin"
			case 150:
				name = "Bitcoin Gold"
			}
			items = append(items, fmt.Sprintf(`{"id":"%d","symbol":"C%d","name":%q,"rank":%d,"price_usd":"%d.5"}`, 1000+rank, rank, name, rank, rank))
		}
		return `{"data":[` + strings.Join(items, ",") + `],"info":{"coins_num":10000}}`
	}
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		start := 0
		fmt.Sscan(r.URL.Query().Get("start"), &start)
		fmt.Fprint(w, page(start))
	})

	coins, err := c.Search(context.Background(), "BITCOIN")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(coins) != 2 || coins[0].Name != "Bitcoin" || coins[1].Name != "Bitcoin Gold" {
		t.Fatalf("Search() = %+v, want Bitcoin and Bitcoin Gold", coins)
	}
	if coins[1].ID != "1150" || !coins[1].PriceUSD.Equal(onyx.M(150.5)) {
		t.Errorf("Search()[1] = %+v, want id 1150 priced 150.5", coins[1])
	}
	if calls != 2 {
		t.Errorf("Search() made %d requests, want 2", calls)
	}

	// "c1" matches C1, C10..C19, C100..C199: capped.
	coins, err = c.Search(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(coins) != maxResults {
		t.Errorf("Search() returned %d coins, want %d", len(coins), maxResults)
	}

	if coins, err := c.Search(context.Background(), "  "); err != nil || coins != nil {
		t.Errorf("Search(blank) = %v, %v, want nothing", coins, err)
	}
}
