package onyx

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

// testClock is a manual clock for deterministic ids and timestamps.
type testClock struct{ t time.Time }

func newTestClock() *testClock {
	return &testClock{t: time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }
func (c *testClock) Option() Option          { return WithClock(c.Now) }

// memStore is an in-memory Store.
type memStore map[Slot][]byte

func (m memStore) Load(_ context.Context, slot Slot) ([]byte, error) {
	data, ok := m[slot]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (m memStore) Save(_ context.Context, slot Slot, data []byte) error {
	m[slot] = append([]byte(nil), data...)
	return nil
}

// closedTrade builds a finalized trade created at id with the given profit and tags.
func closedTrade(id int64, profit float64, tags ...string) Trade {
	if tags == nil {
		tags = []string{}
	}
	p := M(profit)
	return Trade{
		ID:             id,
		StrategyID:     DefaultStrategyID,
		Direction:      "LONG",
		Risk:           M(100),
		RealizedProfit: p,
		PercentClosed:  100,
		Status:         finalStatus(p),
		Journal:        []JournalEntry{{Timestamp: id, Type: CloseEntry, PercentClosed: 100, ProfitBanked: p}},
		Tags:           tags,
		ClosedAt:       id,
	}
}

// jsonOf marshals v for comparisons on the persisted shape.
func jsonOf(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	return string(b)
}
