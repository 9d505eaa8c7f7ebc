package onyx

import (
	"slices"
	"time"
)

// Status is the lifecycle status of a Trade.
type Status string

const (
	Running   Status = "RUNNING"
	Win       Status = "WIN"
	Loss      Status = "LOSS"
	Breakeven Status = "BE"
)

// IsTerminal reports whether s is one of the finalized statuses.
func (s Status) IsTerminal() bool {
	return s == Win || s == Loss || s == Breakeven
}

// EntryType is the kind of close event recorded in a JournalEntry.
type EntryType string

const (
	PartialEntry  EntryType = "PARTIAL"
	CloseEntry    EntryType = "CLOSE"
	StopLossEntry EntryType = "STOP_LOSS"
	StopBEEntry   EntryType = "STOP_BE"
)

// breakevenTolerance is the absolute realized profit under which a finalized
// trade counts as breakeven.
var breakevenTolerance = M(0.01)

// finalStatus returns the terminal status for a trade that banked profit.
func finalStatus(profit Money) Status {
	switch {
	case profit.IsPositive():
		return Win
	case profit.Abs().LessThan(breakevenTolerance):
		return Breakeven
	default:
		return Loss
	}
}

// JournalEntry is one close event of a Trade. PercentClosed is the share of
// the position closed by this entry alone.
type JournalEntry struct {
	Timestamp     int64     `json:"timestamp"`
	Type          EntryType `json:"type"`
	PercentClosed Percent   `json:"percentClosed"`
	ProfitBanked  Money     `json:"profitBanked"`
	ImageURIs     []string  `json:"imageUris,omitempty"`
	Note          string    `json:"note,omitempty"`
}

// MarshalJSON writes the entry with a stable field order, omitting empty
// images and notes.
func (e JournalEntry) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("timestamp", e.Timestamp)
	w.Append("type", e.Type)
	w.Append("percentClosed", e.PercentClosed)
	w.Append("profitBanked", e.ProfitBanked)
	w.Optional("imageUris", e.ImageURIs)
	w.Optional("note", e.Note)
	return w.MarshalJSON()
}

// Time returns the moment the entry was recorded.
func (e JournalEntry) Time() time.Time { return time.UnixMilli(e.Timestamp) }

// Trade is a single execution under one strategy.
//
// ID is the creation time in Unix milliseconds and doubles as the creation
// date. Journal is ordered most recent first.
type Trade struct {
	ID             int64          `json:"id"`
	StrategyID     string         `json:"strategyId"`
	Direction      string         `json:"direction"`
	DateStr        string         `json:"dateStr,omitempty"`
	TimeStr        string         `json:"timeStr,omitempty"`
	Risk           Money          `json:"risk"`
	RealizedProfit Money          `json:"realizedProfit"`
	PercentClosed  Percent        `json:"percentClosed"`
	Status         Status         `json:"status"`
	Journal        []JournalEntry `json:"journal"`
	IsBreakeven    bool           `json:"isBreakeven"`
	Tags           []string       `json:"tags"`
	ClosedAt       int64          `json:"closedAt,omitempty"`
}

// CreatedAt returns the creation time encoded in the trade id.
func (t Trade) CreatedAt() time.Time { return time.UnixMilli(t.ID) }

// IsClosed reports whether the trade has been finalized.
func (t Trade) IsClosed() bool { return t.Status.IsTerminal() }

// HasTag reports whether the trade carries tag.
func (t Trade) HasTag(tag string) bool { return slices.Contains(t.Tags, tag) }

// HasAllTags reports whether the trade carries every one of tags.
func (t Trade) HasAllTags(tags []string) bool {
	for _, tag := range tags {
		if !t.HasTag(tag) {
			return false
		}
	}
	return true
}

// BankedProfit returns the sum of the profit banked by every journal entry.
func (t Trade) BankedProfit() Money {
	var total Money
	for _, e := range t.Journal {
		total = total.Add(e.ProfitBanked)
	}
	return total
}

// clone returns a deep copy of t so callers cannot alias ledger state.
func (t Trade) clone() Trade {
	t.Tags = slices.Clone(t.Tags)
	t.Journal = slices.Clone(t.Journal)
	for i := range t.Journal {
		t.Journal[i].ImageURIs = cloneStrings(t.Journal[i].ImageURIs)
	}
	return t
}

func cloneTrades(trades []Trade) []Trade {
	res := make([]Trade, len(trades))
	for i, t := range trades {
		res[i] = t.clone()
	}
	return res
}

// cloneStrings copies s, normalizing an empty list to nil.
func cloneStrings(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return slices.Clone(s)
}
