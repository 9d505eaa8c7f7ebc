package coinlore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"go.uber.org/zap"

	"github.com/etnz/onyx"
)

/*
GET /ticker/?id=90,80

	[
	  {
	    "id": "90",
	    "symbol": "BTC",
	    "name": "Bitcoin",
	    "nameid": "bitcoin",
	    "rank": 1,
	    "price_usd": "65012.34",
	    ...
	  }
	]
*/

// FetchPricesByIDs returns the USD price of each coin id in a single request.
// Coins missing from the response are absent from the result. Unreadable
// entries are reported in the error alongside the prices that could be read.
func (c *Client) FetchPricesByIDs(ctx context.Context, ids []string) (map[string]onyx.Money, error) {
	prices := make(map[string]onyx.Money)
	if len(ids) == 0 {
		return prices, nil
	}
	escaped := make([]string, len(ids))
	for i, id := range ids {
		escaped[i] = url.QueryEscape(id)
	}

	var jobj any
	if err := c.jwget(ctx, "/ticker/?id="+strings.Join(escaped, ","), &jobj); err != nil {
		return prices, fmt.Errorf("cannot fetch prices for %v: %w", ids, err)
	}

	// the API answers an empty string, not a list, when no id matches.
	jitems, err := jsonpath.Get("$[*]", jobj)
	if err != nil {
		c.logger.Debug("no ticker in response", zap.Strings("ids", ids))
		return prices, nil
	}
	items, _ := jitems.([]any)

	var errs []error
	for _, item := range items {
		jid, err := jsonpath.Get("$.id", item)
		if err != nil {
			errs = append(errs, fmt.Errorf("ticker without id: %w", err))
			continue
		}
		id, ok := parseID(jid)
		if !ok {
			errs = append(errs, fmt.Errorf("ticker with invalid id %v", jid))
			continue
		}
		jprice, err := jsonpath.Get("$.price_usd", item)
		if err != nil {
			errs = append(errs, fmt.Errorf("ticker %s without price: %w", id, err))
			continue
		}
		price, err := parsePrice(jprice)
		if err != nil {
			errs = append(errs, fmt.Errorf("ticker %s: %w", id, err))
			continue
		}
		prices[id] = price
	}
	return prices, errors.Join(errs...)
}
