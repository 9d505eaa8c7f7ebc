package onyx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts are persisted as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Slot names one piece of persisted state.
type Slot string

const (
	SlotHistory          Slot = "history"
	SlotActive           Slot = "active"
	SlotStrategies       Slot = "strategies"
	SlotCurrentStrategy  Slot = "current_strategy"
	SlotTags             Slot = "tags"
	SlotProfile          Slot = "profile"
	SlotPortfolio        Slot = "portfolio"
	SlotPortfolioHistory Slot = "portfolio_history"
)

// Slots lists every slot.
var Slots = []Slot{
	SlotHistory, SlotActive, SlotStrategies, SlotCurrentStrategy,
	SlotTags, SlotProfile, SlotPortfolio, SlotPortfolioHistory,
}

// Store persists raw slot contents.
//
// Load returns ErrNotFound for a slot that was never saved.
type Store interface {
	Load(ctx context.Context, slot Slot) ([]byte, error)
	Save(ctx context.Context, slot Slot, data []byte) error
}

// loadSlot decodes a JSON slot into v. It reports false, without error, when
// the slot does not exist or is empty.
func loadSlot(ctx context.Context, s Store, slot Slot, v any) (bool, error) {
	data, err := s.Load(ctx, slot)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cannot load %s: %w", slot, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("cannot decode %s: %w", slot, err)
	}
	return true, nil
}

func saveSlot(ctx context.Context, s Store, slot Slot, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cannot encode %s: %w", slot, err)
	}
	if err := s.Save(ctx, slot, data); err != nil {
		return fmt.Errorf("cannot save %s: %w", slot, err)
	}
	return nil
}

// LoadLedger reads a Ledger from s. Missing strategies, tags and profile
// fall back to their defaults. The loaded state is checked for consistency.
func LoadLedger(ctx context.Context, s Store, opts ...Option) (*Ledger, error) {
	l := NewLedger(opts...)

	if _, err := loadSlot(ctx, s, SlotHistory, &l.history); err != nil {
		return nil, err
	}
	if _, err := loadSlot(ctx, s, SlotActive, &l.active); err != nil {
		return nil, err
	}

	var strategies []Strategy
	if ok, err := loadSlot(ctx, s, SlotStrategies, &strategies); err != nil {
		return nil, err
	} else if ok && len(strategies) > 0 {
		l.strategies = strategies
	}

	// The current strategy id is stored as a bare string.
	current, err := s.Load(ctx, SlotCurrentStrategy)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("cannot load %s: %w", SlotCurrentStrategy, err)
	default:
		if id := strings.TrimSpace(string(current)); id != "" {
			l.currentStrategy = id
		}
	}

	var tags []string
	if ok, err := loadSlot(ctx, s, SlotTags, &tags); err != nil {
		return nil, err
	} else if ok {
		l.tags = tags
	}

	if _, err := loadSlot(ctx, s, SlotProfile, &l.profile); err != nil {
		return nil, err
	}

	l.reindex()
	if err := l.Check(); err != nil {
		return nil, fmt.Errorf("inconsistent journal: %w", err)
	}
	return l, nil
}

// SaveLedger writes every ledger slot to s.
func SaveLedger(ctx context.Context, s Store, l *Ledger) error {
	if err := saveSlot(ctx, s, SlotHistory, nonNil(l.history)); err != nil {
		return err
	}
	if err := saveSlot(ctx, s, SlotActive, nonNil(l.active)); err != nil {
		return err
	}
	if err := saveSlot(ctx, s, SlotStrategies, l.strategies); err != nil {
		return err
	}
	if err := s.Save(ctx, SlotCurrentStrategy, []byte(l.ActiveStrategy().ID)); err != nil {
		return fmt.Errorf("cannot save %s: %w", SlotCurrentStrategy, err)
	}
	if err := saveSlot(ctx, s, SlotTags, nonNil(l.tags)); err != nil {
		return err
	}
	return saveSlot(ctx, s, SlotProfile, l.profile)
}

// LoadPortfolio reads a Portfolio from s. The loaded positions are checked.
func LoadPortfolio(ctx context.Context, s Store, opts ...Option) (*Portfolio, error) {
	p := NewPortfolio(opts...)
	if _, err := loadSlot(ctx, s, SlotPortfolio, &p.investments); err != nil {
		return nil, err
	}
	if _, err := loadSlot(ctx, s, SlotPortfolioHistory, &p.history); err != nil {
		return nil, err
	}
	if err := p.Check(); err != nil {
		return nil, fmt.Errorf("inconsistent portfolio: %w", err)
	}
	return p, nil
}

// SavePortfolio writes the positions and the snapshot series to s.
func SavePortfolio(ctx context.Context, s Store, p *Portfolio) error {
	if err := saveSlot(ctx, s, SlotPortfolio, nonNil(p.investments)); err != nil {
		return err
	}
	return saveSlot(ctx, s, SlotPortfolioHistory, nonNil(p.history))
}

// nonNil makes nil lists encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
