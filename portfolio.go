package onyx

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/onyx/date"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Category classifies an investment.
type Category string

const (
	Crypto Category = "Crypto"
	Stock  Category = "Stock"
	Index  Category = "Index"
	Custom Category = "Custom"
)

// Categories lists the known categories.
var Categories = []Category{Crypto, Stock, Index, Custom}

// ParseCategory reads a category name, case-insensitively.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Investment is a long-term position. A position with a CoinloreID has a live
// price feed.
type Investment struct {
	ID           string    `json:"id"`
	AssetName    string    `json:"assetName"`
	Ticker       string    `json:"ticker"`
	Category     Category  `json:"category"`
	CoinloreID   string    `json:"coinloreId,omitempty"`
	EntryPrice   Money     `json:"entryPrice"`
	Quantity     Quantity  `json:"quantity"`
	EntryDate    date.Date `json:"entryDate"`
	CurrentPrice Money     `json:"currentPrice"`
	ThesisNotes  string    `json:"thesisNotes"`
	ImageURIs    []string  `json:"imageUris"`
}

// Invested returns the entry value of the position.
func (i Investment) Invested() Money { return i.EntryPrice.Mul(i.Quantity) }

// Value returns the current value of the position.
func (i Investment) Value() Money { return i.CurrentPrice.Mul(i.Quantity) }

// PnL returns the unrealized profit of the position.
func (i Investment) PnL() Money { return i.Value().Sub(i.Invested()) }

func (i Investment) clone() Investment {
	i.ImageURIs = slices.Clone(i.ImageURIs)
	return i
}

// sameAsset reports whether both positions hold the same asset.
func (i Investment) sameAsset(o Investment) bool {
	return strings.EqualFold(i.Ticker, o.Ticker) && i.Category == o.Category
}

// PriceLookup fetches current prices by feed id. It may return a partial map
// alongside an error.
type PriceLookup interface {
	FetchPricesByIDs(ctx context.Context, ids []string) (map[string]Money, error)
}

// Portfolio owns the investment positions and the series of total value
// snapshots.
//
// A Portfolio is not safe for concurrent use.
type Portfolio struct {
	investments []Investment // most recent first
	history     []Snapshot   // oldest first
	settings
}

// NewPortfolio creates an empty portfolio.
func NewPortfolio(opts ...Option) *Portfolio {
	return &Portfolio{settings: newSettings(opts)}
}

// Investments returns the positions, most recently added first.
func (p *Portfolio) Investments() []Investment {
	res := make([]Investment, len(p.investments))
	for i, inv := range p.investments {
		res[i] = inv.clone()
	}
	return res
}

// History returns the snapshot series, oldest first.
func (p *Portfolio) History() []Snapshot { return slices.Clone(p.history) }

func (p *Portfolio) index(id string) int {
	return slices.IndexFunc(p.investments, func(i Investment) bool { return i.ID == id })
}

// Find returns the position designated by ref: an id, a unique id prefix or a
// ticker.
func (p *Portfolio) Find(ref string) (Investment, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Investment{}, false
	}
	if i := p.index(ref); i >= 0 {
		return p.investments[i].clone(), true
	}
	var found []Investment
	for _, inv := range p.investments {
		if strings.HasPrefix(inv.ID, ref) || strings.EqualFold(inv.Ticker, ref) {
			found = append(found, inv)
		}
	}
	if len(found) != 1 {
		return Investment{}, false
	}
	return found[0].clone(), true
}

// Add records a position. A position on the same ticker and category as an
// existing one is merged into it at the weighted-average entry price; the
// existing id and current price are kept, the incoming images are appended,
// and the feed id and notes are adopted when the existing position has none. A new position is priced at its
// entry price and dated today when it has no entry date.
func (p *Portfolio) Add(inv Investment) (Investment, error) {
	if !inv.EntryPrice.IsPositive() || !inv.Quantity.IsPositive() {
		return Investment{}, fmt.Errorf("cannot add %q with price %v and quantity %v: %w", inv.Ticker, inv.EntryPrice, inv.Quantity, ErrInvalidPosition)
	}
	inv.Ticker = strings.TrimSpace(inv.Ticker)

	var res Investment
	if i := slices.IndexFunc(p.investments, inv.sameAsset); i >= 0 {
		cur := &p.investments[i]
		qty := cur.Quantity.Add(inv.Quantity)
		cur.EntryPrice = cur.Invested().Add(inv.Invested()).Div(qty)
		cur.Quantity = qty
		if cur.CoinloreID == "" {
			cur.CoinloreID = inv.CoinloreID
		}
		if cur.ThesisNotes == "" {
			cur.ThesisNotes = inv.ThesisNotes
		}
		cur.ImageURIs = append(cur.ImageURIs, inv.ImageURIs...)
		res = cur.clone()
		p.logger.Debug("position merged", zap.String("investment", cur.ID), zap.Stringer("quantity", qty))
	} else {
		if inv.ID == "" {
			inv.ID = uuid.NewString()
		}
		if inv.EntryDate.IsZero() {
			inv.EntryDate = date.Of(p.now())
		}
		inv.CurrentPrice = inv.EntryPrice
		inv.ImageURIs = slices.Clone(inv.ImageURIs)
		if inv.ImageURIs == nil {
			inv.ImageURIs = []string{}
		}
		p.investments = slices.Insert(p.investments, 0, inv)
		res = inv.clone()
	}
	p.snapshot()
	return res, nil
}

// UpdatePrice sets the current price of a position. Unknown ids are ignored.
func (p *Portfolio) UpdatePrice(id string, price Money) error {
	if !price.IsPositive() {
		return fmt.Errorf("cannot price %q at %v: %w", id, price, ErrInvalidPrice)
	}
	i := p.index(id)
	if i < 0 {
		p.logger.Debug("price update ignored: unknown investment", zap.String("investment", id))
		return nil
	}
	p.investments[i].CurrentPrice = price
	p.snapshot()
	return nil
}

// AddImages attaches image references to a position. It reports whether the
// position exists.
func (p *Portfolio) AddImages(id string, uris ...string) bool {
	i := p.index(id)
	if i < 0 {
		p.logger.Debug("images ignored: unknown investment", zap.String("investment", id))
		return false
	}
	p.investments[i].ImageURIs = append(p.investments[i].ImageURIs, uris...)
	return true
}

// Delete removes a position. It reports whether the position existed.
func (p *Portfolio) Delete(id string) bool {
	i := p.index(id)
	if i < 0 {
		p.logger.Debug("delete ignored: unknown investment", zap.String("investment", id))
		return false
	}
	p.investments = slices.Delete(p.investments, i, i+1)
	p.snapshot()
	return true
}

// Check verifies that every position has an id of its own and a positive
// entry price and quantity.
func (p *Portfolio) Check() error {
	var errs []error
	seen := make(map[string]bool)
	for _, inv := range p.investments {
		if seen[inv.ID] {
			errs = append(errs, fmt.Errorf("%w: duplicate investment %q", ErrInvalidPosition, inv.ID))
		}
		seen[inv.ID] = true
		if !inv.EntryPrice.IsPositive() || !inv.Quantity.IsPositive() {
			errs = append(errs, fmt.Errorf("%w: %q has price %v and quantity %v", ErrInvalidPosition, inv.Ticker, inv.EntryPrice, inv.Quantity))
		}
	}
	return errors.Join(errs...)
}

// Refresh updates the positions having a live feed with the prices returned
// by lookup, in a single batch. Failures and missing prices leave positions at
// their last known price. It returns the number of positions updated.
func (p *Portfolio) Refresh(ctx context.Context, lookup PriceLookup) int {
	var ids []string
	for _, inv := range p.investments {
		if inv.CoinloreID != "" && !slices.Contains(ids, inv.CoinloreID) {
			ids = append(ids, inv.CoinloreID)
		}
	}
	if len(ids) == 0 {
		return 0
	}

	prices, err := lookup.FetchPricesByIDs(ctx, ids)
	if err != nil {
		p.logger.Warn("price lookup failed", zap.Strings("ids", ids), zap.Error(err))
	}

	updated := 0
	for i := range p.investments {
		inv := &p.investments[i]
		price, ok := prices[inv.CoinloreID]
		if inv.CoinloreID == "" || !ok || !price.IsPositive() {
			continue
		}
		inv.CurrentPrice = price
		updated++
	}
	if updated > 0 {
		p.snapshot()
	}
	p.logger.Debug("prices refreshed", zap.Int("requested", len(ids)), zap.Int("updated", updated))
	return updated
}

// snapshot records the current total value in the series.
func (p *Portfolio) snapshot() {
	p.history = recordSnapshot(p.history, p.now(), p.Valuation().CurrentValue)
}

// Position is the valuation of one investment.
type Position struct {
	Investment
	CurrentValue Money
	PnL          Money
	PnLPercent   Percent
}

// Valuation is the valuation of the whole portfolio.
type Valuation struct {
	Positions       []Position
	CurrentValue    Money
	TotalInvested   Money
	TotalPnL        Money
	TotalPnLPercent Percent
}

// Valuation values every position at its current price.
func (p *Portfolio) Valuation() Valuation {
	var v Valuation
	for _, inv := range p.investments {
		pos := Position{
			Investment:   inv.clone(),
			CurrentValue: inv.Value(),
			PnL:          inv.PnL(),
			PnLPercent:   inv.PnL().Ratio(inv.Invested()),
		}
		v.Positions = append(v.Positions, pos)
		v.CurrentValue = v.CurrentValue.Add(pos.CurrentValue)
		v.TotalInvested = v.TotalInvested.Add(inv.Invested())
	}
	v.TotalPnL = v.CurrentValue.Sub(v.TotalInvested)
	v.TotalPnLPercent = v.TotalPnL.Ratio(v.TotalInvested)
	return v
}
