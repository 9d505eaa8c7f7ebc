package onyx

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State tells which set of the Ledger owns a trade.
type State int

const (
	Active State = iota // still running
	Closed              // finalized, in the history
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// tradeRef locates a trade inside the Ledger.
type tradeRef struct {
	state State
	index int
}

// Ledger owns the active and closed trades of every strategy, the strategies
// themselves, the tag vocabulary and the trader profile.
//
// A Ledger is not safe for concurrent use.
type Ledger struct {
	active          []Trade // most recent first
	history         []Trade // most recently closed first
	strategies      []Strategy
	currentStrategy string
	tags            []string
	profile         Profile

	lastID int64 // highest trade id ever issued
	settings
}

// NewLedger creates a journal holding the default strategy, tags and profile.
func NewLedger(opts ...Option) *Ledger {
	return &Ledger{
		strategies:      []Strategy{DefaultStrategy()},
		currentStrategy: DefaultStrategyID,
		tags:            DefaultTags(),
		profile:         DefaultProfile(),
		settings:        newSettings(opts),
	}
}

// set returns the trade set for a state.
func (l *Ledger) set(s State) *[]Trade {
	if s == Active {
		return &l.active
	}
	return &l.history
}

// lookup finds a trade, searching the active set first.
func (l *Ledger) lookup(id int64) (tradeRef, bool) {
	for _, s := range []State{Active, Closed} {
		for i, t := range *l.set(s) {
			if t.ID == id {
				return tradeRef{state: s, index: i}, true
			}
		}
	}
	return tradeRef{}, false
}

func (l *Ledger) at(ref tradeRef) *Trade {
	return &(*l.set(ref.state))[ref.index]
}

// Trade returns a copy of the trade with this id and the set owning it.
func (l *Ledger) Trade(id int64) (Trade, State, bool) {
	ref, ok := l.lookup(id)
	if !ok {
		return Trade{}, 0, false
	}
	return l.at(ref).clone(), ref.state, true
}

// Active returns the running trades of every strategy, most recent first.
func (l *Ledger) Active() []Trade { return cloneTrades(l.active) }

// History returns the closed trades of every strategy, most recently closed first.
func (l *Ledger) History() []Trade { return cloneTrades(l.history) }

// StrategyActive returns the running trades of the active strategy.
func (l *Ledger) StrategyActive() []Trade {
	return l.ofStrategy(l.active)
}

// StrategyHistory returns the closed trades of the active strategy.
func (l *Ledger) StrategyHistory() []Trade {
	return l.ofStrategy(l.history)
}

func (l *Ledger) ofStrategy(trades []Trade) []Trade {
	id := l.ActiveStrategy().ID
	res := make([]Trade, 0, len(trades))
	for _, t := range trades {
		if t.StrategyID == id {
			res = append(res, t.clone())
		}
	}
	return res
}

// nextID returns a fresh trade id: the current time in Unix milliseconds,
// bumped when the clock did not move since the previous id.
func (l *Ledger) nextID() int64 {
	id := l.now().UnixMilli()
	if id <= l.lastID {
		id = l.lastID + 1
	}
	l.lastID = id
	return id
}

// reindex recomputes lastID from the trades held.
func (l *Ledger) reindex() {
	l.lastID = 0
	for _, t := range slices.Concat(l.active, l.history) {
		l.lastID = max(l.lastID, t.ID)
	}
}

// Execute opens a new trade under the active strategy.
//
// The trade risks riskOverride when it is positive, the strategy risk
// otherwise. The direction is only uppercased; an empty direction is kept.
func (l *Ledger) Execute(direction string, riskOverride Money) Trade {
	strategy := l.ActiveStrategy()
	risk := strategy.Risk
	if riskOverride.IsPositive() {
		risk = riskOverride
	}
	now := l.now()
	t := Trade{
		ID:         l.nextID(),
		StrategyID: strategy.ID,
		Direction:  strings.ToUpper(strings.TrimSpace(direction)),
		DateStr:    now.Format("2006-01-02"),
		TimeStr:    now.Format("15:04"),
		Risk:       risk,
		Status:     Running,
		Journal:    []JournalEntry{},
		Tags:       []string{},
	}
	l.active = slices.Insert(l.active, 0, t)
	l.logger.Debug("trade opened", zap.Int64("trade", t.ID), zap.String("strategy", t.StrategyID), zap.Stringer("risk", risk))
	return t.clone()
}

// ExecutionType is the kind of close requested on a running trade.
type ExecutionType string

const (
	PartialExecution  ExecutionType = "PARTIAL"
	FullExecution     ExecutionType = "FULL"
	StopLossExecution ExecutionType = "SL"
)

// Execution is a close request on a running trade.
type Execution struct {
	TradeID   int64
	Type      ExecutionType
	Percent   Percent // share to close, ignored for stop losses
	ImageURIs []string
	Note      string
}

// Outcome reports what Submit did.
type Outcome struct {
	Applied    bool  // false when the trade is not running
	ClosedFull bool  // the trade reached 100% and moved to the history
	Win        bool  // the finalized trade is a WIN
	Trade      Trade // the trade after the execution
}

// Submit applies an execution to a running trade.
//
// A stop loss closes whatever remains and banks minus the risk share of the
// remaining percent, or nothing when the stop was moved to breakeven. Partial
// and full closes bank manualProfit, read leniently as zero when unreadable.
// A full close with no percent closes the remaining share.
//
// Unknown or already closed trades are ignored.
func (l *Ledger) Submit(e Execution, manualProfit string) Outcome {
	ref, ok := l.lookup(e.TradeID)
	if !ok || ref.state != Active {
		l.logger.Debug("execution ignored: no running trade", zap.Int64("trade", e.TradeID), zap.String("type", string(e.Type)))
		return Outcome{}
	}
	t := l.at(ref)
	remaining := 100 - t.PercentClosed

	entry := JournalEntry{
		Timestamp: l.now().UnixMilli(),
		ImageURIs: cloneStrings(e.ImageURIs),
		Note:      e.Note,
	}
	var profit Money
	var newPercent Percent
	switch e.Type {
	case StopLossExecution:
		entry.PercentClosed = remaining
		entry.Type = StopLossEntry
		if t.IsBreakeven {
			entry.Type = StopBEEntry
		} else {
			profit = t.Risk.Part(remaining).Neg()
		}
		newPercent = 100
	default:
		pct := max(e.Percent, 0)
		if e.Type == FullExecution && pct == 0 {
			pct = remaining
		}
		profit = parseMoneyOrZero(manualProfit)
		entry.PercentClosed = pct
		newPercent = min(100, t.PercentClosed+pct)
		if newPercent.Equal(100) {
			newPercent = 100
		}
		entry.Type = PartialEntry
		if newPercent >= 100 {
			entry.Type = CloseEntry
		}
	}
	entry.ProfitBanked = profit

	return l.bank(ref.index, entry, newPercent)
}

// StopLossHit closes whatever remains of a running trade at its stop.
// It is the stop loss path of Submit in a single call.
func (l *Ledger) StopLossHit(id int64) Outcome {
	return l.Submit(Execution{TradeID: id, Type: StopLossExecution}, "")
}

// bank records entry on the active trade at index i and finalizes it when
// newPercent reaches 100.
func (l *Ledger) bank(i int, entry JournalEntry, newPercent Percent) Outcome {
	t := &l.active[i]
	t.Journal = slices.Insert(t.Journal, 0, entry)
	t.RealizedProfit = t.RealizedProfit.Add(entry.ProfitBanked)
	t.PercentClosed = clampPercent(newPercent)

	if t.PercentClosed < 100 {
		return Outcome{Applied: true, Trade: t.clone()}
	}

	t.Status = finalStatus(t.RealizedProfit)
	t.ClosedAt = entry.Timestamp
	closed := *t
	l.active = slices.Delete(l.active, i, i+1)
	l.history = slices.Insert(l.history, 0, closed)

	l.logger.Info("trade closed",
		zap.Int64("trade", closed.ID),
		zap.String("status", string(closed.Status)),
		zap.Stringer("realized", closed.RealizedProfit))
	return Outcome{
		Applied:    true,
		ClosedFull: true,
		Win:        closed.Status == Win,
		Trade:      closed.clone(),
	}
}

// ToggleBreakeven flips the breakeven flag of a running trade. It reports
// whether a trade was changed.
func (l *Ledger) ToggleBreakeven(id int64) bool {
	ref, ok := l.lookup(id)
	if !ok || ref.state != Active {
		l.logger.Debug("breakeven toggle ignored: no running trade", zap.Int64("trade", id))
		return false
	}
	t := l.at(ref)
	t.IsBreakeven = !t.IsBreakeven
	return true
}

// SaveEditedNote replaces the note of the journal entry at index (most recent
// first) of the trade, wherever it lives. It reports whether a note was changed.
func (l *Ledger) SaveEditedNote(id int64, index int, text string) bool {
	ref, ok := l.lookup(id)
	if !ok {
		l.logger.Debug("note edit ignored: unknown trade", zap.Int64("trade", id))
		return false
	}
	t := l.at(ref)
	if index < 0 || index >= len(t.Journal) {
		l.logger.Debug("note edit ignored: unknown entry", zap.Int64("trade", id), zap.Int("entry", index))
		return false
	}
	t.Journal[index].Note = text
	return true
}

// ToggleTag adds tag to the trade, or removes it when already present. A tag
// missing from the vocabulary is added to it. It reports whether a trade was
// changed.
func (l *Ledger) ToggleTag(id int64, tag string) bool {
	tag = strings.TrimSpace(tag)
	ref, ok := l.lookup(id)
	if !ok || tag == "" {
		l.logger.Debug("tag toggle ignored", zap.Int64("trade", id), zap.String("tag", tag))
		return false
	}
	t := l.at(ref)
	if i := slices.Index(t.Tags, tag); i >= 0 {
		t.Tags = slices.Delete(t.Tags, i, i+1)
		return true
	}
	t.Tags = append(t.Tags, tag)
	l.CreateTag(tag)
	return true
}

// Tags returns the tag vocabulary.
func (l *Ledger) Tags() []string { return slices.Clone(l.tags) }

// CreateTag adds a tag to the vocabulary. Blank and duplicate tags are
// ignored. It reports whether the vocabulary changed.
func (l *Ledger) CreateTag(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || slices.Contains(l.tags, name) {
		return false
	}
	l.tags = append(l.tags, name)
	return true
}

// Profile returns the trader profile.
func (l *Ledger) Profile() Profile { return l.profile }

// SetProfile replaces the trader profile.
func (l *Ledger) SetProfile(p Profile) { l.profile = p }

// Strategies returns every strategy.
func (l *Ledger) Strategies() []Strategy {
	res := make([]Strategy, len(l.strategies))
	for i, s := range l.strategies {
		res[i] = s.clone()
	}
	return res
}

// ActiveStrategy returns the selected strategy, or the first one when the
// selection does not resolve.
func (l *Ledger) ActiveStrategy() Strategy {
	if i := l.strategyIndex(l.currentStrategy); i >= 0 {
		return l.strategies[i].clone()
	}
	if len(l.strategies) > 0 {
		return l.strategies[0].clone()
	}
	return Strategy{}
}

func (l *Ledger) strategyIndex(id string) int {
	return slices.IndexFunc(l.strategies, func(s Strategy) bool { return s.ID == id })
}

// SelectStrategy makes the strategy with this id the active one.
func (l *Ledger) SelectStrategy(id string) error {
	if l.strategyIndex(id) < 0 {
		return fmt.Errorf("cannot select strategy %q: %w", id, ErrUnknownStrategy)
	}
	l.currentStrategy = id
	return nil
}

// AddStrategy appends a new strategy with the default risk and checklist and
// makes it the active one.
func (l *Ledger) AddStrategy() Strategy {
	s := Strategy{
		ID:    uuid.NewString(),
		Name:  "New Strategy",
		Risk:  M(100),
		Rules: DefaultRules(),
	}
	l.strategies = append(l.strategies, s)
	l.currentStrategy = s.ID
	return s.clone()
}

// SaveStrategy replaces the strategy having the same id.
func (l *Ledger) SaveStrategy(s Strategy) error {
	i := l.strategyIndex(s.ID)
	if i < 0 {
		return fmt.Errorf("cannot save strategy %q: %w", s.ID, ErrUnknownStrategy)
	}
	l.strategies[i] = s.clone()
	return nil
}

// DeleteStrategy removes a strategy. The last strategy cannot be deleted.
// When the active strategy is deleted the first remaining one becomes active.
// Trades keep their reference to the deleted strategy.
func (l *Ledger) DeleteStrategy(id string) error {
	i := l.strategyIndex(id)
	if i < 0 {
		return fmt.Errorf("cannot delete strategy %q: %w", id, ErrUnknownStrategy)
	}
	if len(l.strategies) <= 1 {
		return fmt.Errorf("cannot delete strategy %q: %w", id, ErrLastStrategy)
	}
	l.strategies = slices.Delete(l.strategies, i, i+1)
	if l.currentStrategy == id {
		l.currentStrategy = l.strategies[0].ID
	}
	return nil
}

// CreateStrategyFromModel promotes a tag model into a new active strategy with
// one checklist rule per tag, risking as much as the current strategy. It
// returns false when no tag is given.
func (l *Ledger) CreateStrategyFromModel(tags []string) (Strategy, bool) {
	if len(tags) == 0 {
		return Strategy{}, false
	}
	s := Strategy{
		ID:    uuid.NewString(),
		Name:  modelStrategyName(tags),
		Risk:  l.ActiveStrategy().Risk,
		Rules: modelRules(tags),
	}
	l.strategies = append(l.strategies, s)
	l.currentStrategy = s.ID
	return s.clone(), true
}

// Check verifies the consistency of the ledger: a trade lives in exactly one
// set, running trades are partially closed at most, and closed trades are
// fully closed with a terminal status.
func (l *Ledger) Check() error {
	var errs []error
	seen := make(map[int64]State)
	for _, s := range []State{Active, Closed} {
		for _, t := range *l.set(s) {
			if prev, ok := seen[t.ID]; ok {
				errs = append(errs, fmt.Errorf("%w: trade %d is both %v and %v", ErrInvariant, t.ID, prev, s))
				continue
			}
			seen[t.ID] = s
			if t.PercentClosed < 0 || t.PercentClosed > 100 {
				errs = append(errs, fmt.Errorf("%w: trade %d is %v closed", ErrInvariant, t.ID, t.PercentClosed))
			}
			switch s {
			case Active:
				if t.Status != Running || t.PercentClosed >= 100 {
					errs = append(errs, fmt.Errorf("%w: active trade %d is %s at %v", ErrInvariant, t.ID, t.Status, t.PercentClosed))
				}
			case Closed:
				if !t.Status.IsTerminal() || !t.PercentClosed.Equal(100) {
					errs = append(errs, fmt.Errorf("%w: closed trade %d is %s at %v", ErrInvariant, t.ID, t.Status, t.PercentClosed))
				}
			}
		}
	}
	if len(l.strategies) == 0 {
		errs = append(errs, fmt.Errorf("%w: no strategy", ErrInvariant))
	}
	return errors.Join(errs...)
}
