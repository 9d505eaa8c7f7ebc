// Package coinlore looks up crypto-currency prices from the public CoinLore
// API. Its Client is the live price feed of an onyx.Portfolio.
package coinlore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/etnz/onyx"
	"github.com/etnz/onyx/config"
)

// Client calls the CoinLore API, throttled to a fixed request rate.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

var _ onyx.PriceLookup = (*Client)(nil)

// New creates a client. A nil logger discards logs.
func New(cfg config.CoinloreConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// jwget GETs path on the API and decodes the JSON response into data.
func (c *Client) jwget(ctx context.Context, path string, data any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	addr := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	c.logger.Debug("coinlore request", zap.String("url", addr), zap.Int("status", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(data); err != nil {
		return fmt.Errorf("cannot decode %v%v: %w", req.URL.Host, req.URL.Path, err)
	}
	return nil
}

// parsePrice reads a price that the API sends either as a string or a number.
func parsePrice(v any) (onyx.Money, error) {
	switch p := v.(type) {
	case float64:
		return onyx.M(p), nil
	case string:
		return onyx.ParseMoney(p)
	default:
		return onyx.Money{}, fmt.Errorf("unexpected price %v", v)
	}
}

// parseID reads a coin id that the API sends either as a string or a number.
func parseID(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		return id, id != ""
	case float64:
		return fmt.Sprintf("%.0f", id), true
	default:
		return "", false
	}
}
