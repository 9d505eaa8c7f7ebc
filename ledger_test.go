package onyx

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
	"time"
)

func TestLedger_PartialThenStopLoss(t *testing.T) {
	clock := newTestClock()
	l := NewLedger(clock.Option())

	tr := l.Execute("long", Money{})
	if tr.Direction != "LONG" {
		t.Errorf("Execute() direction = %q, want %q", tr.Direction, "LONG")
	}
	if !tr.Risk.Equal(M(100)) {
		t.Errorf("Execute() risk = %v, want %v", tr.Risk, M(100))
	}

	clock.Advance(time.Minute)
	out := l.Submit(Execution{TradeID: tr.ID, Type: PartialExecution, Percent: 50}, "$40")
	if !out.Applied || out.ClosedFull {
		t.Fatalf("Submit(partial) = %+v, want applied and not closed", out)
	}
	if got := out.Trade; !got.PercentClosed.Equal(50) || !got.RealizedProfit.Equal(M(40)) || got.Status != Running {
		t.Errorf("after partial: percent = %v, profit = %v, status = %v, want 50%%, $40.00, RUNNING", got.PercentClosed, got.RealizedProfit, got.Status)
	}
	if got := out.Trade.Journal[0]; got.Type != PartialEntry || !got.PercentClosed.Equal(50) {
		t.Errorf("partial entry = %+v, want PARTIAL 50%%", got)
	}

	clock.Advance(time.Minute)
	out = l.StopLossHit(tr.ID)
	if !out.ClosedFull || out.Win {
		t.Fatalf("StopLossHit() = %+v, want closed loss", out)
	}
	got := out.Trade
	if !got.RealizedProfit.Equal(M(-10)) {
		t.Errorf("realized profit = %v, want %v", got.RealizedProfit, M(-10))
	}
	if got.Status != Loss {
		t.Errorf("status = %v, want %v", got.Status, Loss)
	}
	if got.PercentClosed != 100 {
		t.Errorf("percent closed = %v, want 100", got.PercentClosed)
	}
	if got.ClosedAt != clock.Now().UnixMilli() {
		t.Errorf("closedAt = %v, want %v", got.ClosedAt, clock.Now().UnixMilli())
	}
	sl := got.Journal[0]
	if sl.Type != StopLossEntry || !sl.PercentClosed.Equal(50) || !sl.ProfitBanked.Equal(M(-50)) {
		t.Errorf("stop loss entry = %+v, want STOP_LOSS 50%% -$50", sl)
	}
	if len(l.Active()) != 0 || len(l.History()) != 1 {
		t.Errorf("active = %d, history = %d, want 0 and 1", len(l.Active()), len(l.History()))
	}
	if _, state, _ := l.Trade(tr.ID); state != Closed {
		t.Errorf("Trade() state = %v, want %v", state, Closed)
	}
}

func TestLedger_BreakevenStop(t *testing.T) {
	l := NewLedger(newTestClock().Option())
	tr := l.Execute("SHORT", Money{})
	l.Submit(Execution{TradeID: tr.ID, Type: PartialExecution, Percent: 50}, "40")

	if !l.ToggleBreakeven(tr.ID) {
		t.Fatalf("ToggleBreakeven() = false, want true")
	}
	out := l.Submit(Execution{TradeID: tr.ID, Type: StopLossExecution}, "999")
	if !out.ClosedFull || !out.Win {
		t.Fatalf("Submit(SL) = %+v, want closed win", out)
	}
	if e := out.Trade.Journal[0]; e.Type != StopBEEntry || !e.ProfitBanked.IsZero() {
		t.Errorf("stop entry = %+v, want STOP_BE banking 0", e)
	}
	if !out.Trade.RealizedProfit.Equal(M(40)) || out.Trade.Status != Win {
		t.Errorf("trade = %v %v, want $40.00 WIN", out.Trade.RealizedProfit, out.Trade.Status)
	}
}

func TestLedger_BreakevenStopBanksNothing(t *testing.T) {
	for _, closed := range []Percent{0, 10, 33.3, 75, 99} {
		l := NewLedger(newTestClock().Option())
		tr := l.Execute("LONG", M(250))
		if closed > 0 {
			l.Submit(Execution{TradeID: tr.ID, Type: PartialExecution, Percent: closed}, "0")
		}
		l.ToggleBreakeven(tr.ID)
		out := l.StopLossHit(tr.ID)
		if !out.Trade.Journal[0].ProfitBanked.IsZero() {
			t.Errorf("after %v closed: stop banked %v, want 0", closed, out.Trade.Journal[0].ProfitBanked)
		}
		if out.Trade.Status != Breakeven {
			t.Errorf("after %v closed: status = %v, want %v", closed, out.Trade.Status, Breakeven)
		}
	}
}

func TestLedger_StopLossHitMatchesSubmit(t *testing.T) {
	run := func(stop func(l *Ledger, id int64) Outcome) Trade {
		clock := newTestClock()
		l := NewLedger(clock.Option())
		tr := l.Execute("LONG", M(80))
		clock.Advance(time.Minute)
		l.Submit(Execution{TradeID: tr.ID, Type: PartialExecution, Percent: 30}, "12.5")
		clock.Advance(time.Minute)
		return stop(l, tr.ID).Trade
	}
	direct := run(func(l *Ledger, id int64) Outcome { return l.StopLossHit(id) })
	submitted := run(func(l *Ledger, id int64) Outcome {
		return l.Submit(Execution{TradeID: id, Type: StopLossExecution}, "")
	})
	if got, want := jsonOf(t, direct), jsonOf(t, submitted); got != want {
		t.Errorf("StopLossHit() = %s, want %s", got, want)
	}
	// -80 * 70% + 12.5
	if !direct.RealizedProfit.Equal(M(-43.5)) {
		t.Errorf("realized profit = %v, want %v", direct.RealizedProfit, M(-43.5))
	}
}

func TestLedger_Submit(t *testing.T) {
	testCases := []struct {
		name        string
		percents    []Percent
		profits     []string
		full        bool
		wantPercent Percent
		wantProfit  Money
		wantStatus  Status
		wantType    EntryType
	}{
		{name: "partial", percents: []Percent{25}, profits: []string{"10"}, wantPercent: 25, wantProfit: M(10), wantStatus: Running, wantType: PartialEntry},
		{name: "capped at 100", percents: []Percent{60, 60}, profits: []string{"10", "20"}, wantPercent: 100, wantProfit: M(30), wantStatus: Win, wantType: CloseEntry},
		{name: "unreadable profit is zero", percents: []Percent{100}, profits: []string{"abc"}, wantPercent: 100, wantProfit: M(0), wantStatus: Breakeven, wantType: CloseEntry},
		{name: "tiny gain is a win", percents: []Percent{100}, profits: []string{"0.005"}, wantPercent: 100, wantProfit: M(0.005), wantStatus: Win, wantType: CloseEntry},
		{name: "tiny loss is breakeven", percents: []Percent{100}, profits: []string{"-0.005"}, wantPercent: 100, wantProfit: M(-0.005), wantStatus: Breakeven, wantType: CloseEntry},
		{name: "one cent loss", percents: []Percent{100}, profits: []string{"-0.01"}, wantPercent: 100, wantProfit: M(-0.01), wantStatus: Loss, wantType: CloseEntry},
		{name: "negative percent ignored", percents: []Percent{-20}, profits: []string{"5"}, wantPercent: 0, wantProfit: M(5), wantStatus: Running, wantType: PartialEntry},
		{name: "full close of the remaining", percents: []Percent{40}, profits: []string{"10", "-30"}, full: true, wantPercent: 100, wantProfit: M(-20), wantStatus: Loss, wantType: CloseEntry},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := NewLedger(newTestClock().Option())
			tr := l.Execute("LONG", Money{})
			var out Outcome
			for i, p := range tc.percents {
				out = l.Submit(Execution{TradeID: tr.ID, Type: PartialExecution, Percent: p}, tc.profits[i])
			}
			if tc.full {
				out = l.Submit(Execution{TradeID: tr.ID, Type: FullExecution}, tc.profits[len(tc.profits)-1])
			}
			got := out.Trade
			if !got.PercentClosed.Equal(tc.wantPercent) {
				t.Errorf("percent closed = %v, want %v", got.PercentClosed, tc.wantPercent)
			}
			if !got.RealizedProfit.Equal(tc.wantProfit) {
				t.Errorf("realized profit = %v, want %v", got.RealizedProfit, tc.wantProfit)
			}
			if got.Status != tc.wantStatus {
				t.Errorf("status = %v, want %v", got.Status, tc.wantStatus)
			}
			if got.Journal[0].Type != tc.wantType {
				t.Errorf("last entry type = %v, want %v", got.Journal[0].Type, tc.wantType)
			}
			if out.ClosedFull != (tc.wantStatus != Running) {
				t.Errorf("ClosedFull = %v, want %v", out.ClosedFull, tc.wantStatus != Running)
			}
		})
	}
}

func TestLedger_UnknownTradeIsNoop(t *testing.T) {
	l := NewLedger(newTestClock().Option())
	tr := l.Execute("LONG", Money{})
	before := jsonOf(t, l.Backup())

	if out := l.Submit(Execution{TradeID: 42, Type: PartialExecution, Percent: 50}, "10"); out.Applied {
		t.Errorf("Submit(unknown) = %+v, want not applied", out)
	}
	if out := l.StopLossHit(42); out.Applied {
		t.Errorf("StopLossHit(unknown) = %+v, want not applied", out)
	}
	if l.ToggleBreakeven(42) {
		t.Errorf("ToggleBreakeven(unknown) = true, want false")
	}
	if l.SaveEditedNote(42, 0, "x") {
		t.Errorf("SaveEditedNote(unknown) = true, want false")
	}
	if l.SaveEditedNote(tr.ID, 0, "x") {
		t.Errorf("SaveEditedNote(no entry) = true, want false")
	}
	if l.ToggleTag(42, "Trend") {
		t.Errorf("ToggleTag(unknown) = true, want false")
	}
	if after := jsonOf(t, l.Backup()); after != before {
		t.Errorf("ledger changed:\n%s\nwant\n%s", after, before)
	}

	// closed trades do not accept executions anymore.
	l.StopLossHit(tr.ID)
	if out := l.Submit(Execution{TradeID: tr.ID, Type: PartialExecution, Percent: 10}, "10"); out.Applied {
		t.Errorf("Submit(closed) = %+v, want not applied", out)
	}
	if l.ToggleBreakeven(tr.ID) {
		t.Errorf("ToggleBreakeven(closed) = true, want false")
	}
}

func TestLedger_Execute(t *testing.T) {
	clock := newTestClock()
	l := NewLedger(clock.Option())

	first := l.Execute("", M(30))
	second := l.Execute("short", M(-5))
	if first.Direction != "" {
		t.Errorf("Execute(\"\") direction = %q, want empty", first.Direction)
	}
	if !first.Risk.Equal(M(30)) {
		t.Errorf("Execute() with override risk = %v, want %v", first.Risk, M(30))
	}
	if !second.Risk.Equal(M(100)) {
		t.Errorf("Execute() with negative override risk = %v, want %v", second.Risk, M(100))
	}
	if second.ID <= first.ID {
		t.Errorf("ids are not increasing: %d then %d", first.ID, second.ID)
	}
	if first.ID != clock.Now().UnixMilli() {
		t.Errorf("first id = %d, want %d", first.ID, clock.Now().UnixMilli())
	}
	if first.DateStr != "2025-03-14" || first.TimeStr != "10:00" {
		t.Errorf("date/time = %q %q, want %q %q", first.DateStr, first.TimeStr, "2025-03-14", "10:00")
	}
	if active := l.Active(); active[0].ID != second.ID {
		t.Errorf("Active()[0] = %d, want the newest trade %d", active[0].ID, second.ID)
	}
}

func TestLedger_SaveEditedNote(t *testing.T) {
	l := NewLedger(newTestClock().Option())
	tr := l.Execute("LONG", Money{})
	l.Submit(Execution{TradeID: tr.ID, Type: PartialExecution, Percent: 50, Note: "first"}, "10")
	l.Submit(Execution{TradeID: tr.ID, Type: PartialExecution, Percent: 50, Note: "second"}, "10")

	// entry 1 is the oldest one, the trade is now closed.
	if !l.SaveEditedNote(tr.ID, 1, "edited") {
		t.Fatalf("SaveEditedNote() = false, want true")
	}
	got, state, _ := l.Trade(tr.ID)
	if state != Closed {
		t.Errorf("state = %v, want %v", state, Closed)
	}
	if got.Journal[1].Note != "edited" || got.Journal[0].Note != "second" {
		t.Errorf("notes = %q, %q, want %q, %q", got.Journal[0].Note, got.Journal[1].Note, "second", "edited")
	}
	if l.SaveEditedNote(tr.ID, 2, "x") {
		t.Errorf("SaveEditedNote(out of range) = true, want false")
	}
}

func TestLedger_ToggleTag(t *testing.T) {
	l := NewLedger(newTestClock().Option())
	tr := l.Execute("LONG", Money{})

	if !l.ToggleTag(tr.ID, "Trend") {
		t.Fatalf("ToggleTag() = false, want true")
	}
	if !l.ToggleTag(tr.ID, " Breakout ") {
		t.Fatalf("ToggleTag() = false, want true")
	}
	got, _, _ := l.Trade(tr.ID)
	if want := []string{"Trend", "Breakout"}; !slices.Equal(got.Tags, want) {
		t.Errorf("tags = %v, want %v", got.Tags, want)
	}
	if !slices.Contains(l.Tags(), "Breakout") {
		t.Errorf("Tags() = %v, want it to contain the new tag", l.Tags())
	}

	l.StopLossHit(tr.ID)
	l.ToggleTag(tr.ID, "Trend") // on the closed trade
	got, _, _ = l.Trade(tr.ID)
	if want := []string{"Breakout"}; !slices.Equal(got.Tags, want) {
		t.Errorf("tags = %v, want %v", got.Tags, want)
	}
}

func TestLedger_CreateTag(t *testing.T) {
	l := NewLedger()
	testCases := []struct {
		name string
		want bool
	}{
		{"  Scalp ", true},
		{"Scalp", false},
		{"Trend", false},
		{"   ", false},
	}
	for _, tc := range testCases {
		if got := l.CreateTag(tc.name); got != tc.want {
			t.Errorf("CreateTag(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
	if want := append(DefaultTags(), "Scalp"); !slices.Equal(l.Tags(), want) {
		t.Errorf("Tags() = %v, want %v", l.Tags(), want)
	}
}

func TestLedger_Strategies(t *testing.T) {
	l := NewLedger(newTestClock().Option())

	if err := l.DeleteStrategy(DefaultStrategyID); !errors.Is(err, ErrLastStrategy) {
		t.Errorf("DeleteStrategy(last) error = %v, want %v", err, ErrLastStrategy)
	}
	if err := l.DeleteStrategy("nope"); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("DeleteStrategy(unknown) error = %v, want %v", err, ErrUnknownStrategy)
	}

	s := l.AddStrategy()
	if s.Name != "New Strategy" || !s.Risk.Equal(M(100)) || len(s.Rules) != 4 {
		t.Errorf("AddStrategy() = %+v, want a default strategy", s)
	}
	if l.ActiveStrategy().ID != s.ID {
		t.Errorf("ActiveStrategy() = %q, want %q", l.ActiveStrategy().ID, s.ID)
	}

	s.Risk = M(250)
	if err := l.SaveStrategy(s); err != nil {
		t.Fatalf("SaveStrategy() error = %v", err)
	}
	tr := l.Execute("LONG", Money{})
	if tr.StrategyID != s.ID || !tr.Risk.Equal(M(250)) {
		t.Errorf("Execute() = strategy %q risk %v, want %q %v", tr.StrategyID, tr.Risk, s.ID, M(250))
	}
	if got := l.StrategyActive(); len(got) != 1 {
		t.Errorf("StrategyActive() = %d trades, want 1", len(got))
	}

	if err := l.DeleteStrategy(s.ID); err != nil {
		t.Fatalf("DeleteStrategy() error = %v", err)
	}
	if l.ActiveStrategy().ID != DefaultStrategyID {
		t.Errorf("ActiveStrategy() = %q, want %q", l.ActiveStrategy().ID, DefaultStrategyID)
	}
	if got := l.StrategyActive(); len(got) != 0 {
		t.Errorf("StrategyActive() = %d trades, want 0", len(got))
	}
	if len(l.Active()) != 1 {
		t.Errorf("Active() = %d trades, want the orphan trade kept", len(l.Active()))
	}
	if err := l.SelectStrategy(s.ID); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("SelectStrategy(deleted) error = %v, want %v", err, ErrUnknownStrategy)
	}
}

func TestLedger_CreateStrategyFromModel(t *testing.T) {
	l := NewLedger()
	base := l.ActiveStrategy()
	base.Risk = M(75)
	if err := l.SaveStrategy(base); err != nil {
		t.Fatalf("SaveStrategy() error = %v", err)
	}

	if _, ok := l.CreateStrategyFromModel(nil); ok {
		t.Errorf("CreateStrategyFromModel(nil) ok = true, want false")
	}

	s, ok := l.CreateStrategyFromModel([]string{"Trend", "A+ Setup"})
	if !ok {
		t.Fatalf("CreateStrategyFromModel() ok = false, want true")
	}
	if want := "Model: Trend + A+ Setup"; s.Name != want {
		t.Errorf("name = %q, want %q", s.Name, want)
	}
	if want := []Rule{{ID: "1", Text: "Trend"}, {ID: "2", Text: "A+ Setup"}}; !slices.Equal(s.Rules, want) {
		t.Errorf("rules = %v, want %v", s.Rules, want)
	}
	if !s.Risk.Equal(M(75)) {
		t.Errorf("risk = %v, want %v", s.Risk, M(75))
	}
	if l.ActiveStrategy().ID != s.ID {
		t.Errorf("ActiveStrategy() = %q, want the model strategy", l.ActiveStrategy().ID)
	}
}

// TestLedger_Invariants drives random operations and checks the ledger stays
// consistent and closed trades keep their realized profit equal to the sum of
// their journal.
func TestLedger_Invariants(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	clock := newTestClock()
	l := NewLedger(clock.Option())

	for i := range 2000 {
		clock.Advance(time.Duration(r.IntN(3)) * time.Second)
		active := l.Active()
		switch op := r.IntN(5); {
		case op == 0 || len(active) == 0:
			l.Execute("LONG", M(r.IntN(200)))
		case op == 1:
			tr := active[r.IntN(len(active))]
			l.Submit(Execution{TradeID: tr.ID, Type: PartialExecution, Percent: Percent(r.IntN(70))}, M(r.IntN(100)-50).String())
		case op == 2:
			l.StopLossHit(active[r.IntN(len(active))].ID)
		case op == 3:
			l.ToggleBreakeven(active[r.IntN(len(active))].ID)
		default:
			tr := active[r.IntN(len(active))]
			l.Submit(Execution{TradeID: tr.ID, Type: FullExecution}, "1.5")
		}
		if err := l.Check(); err != nil {
			t.Fatalf("step %d: Check() error = %v", i, err)
		}
	}
	for _, tr := range l.History() {
		if !tr.RealizedProfit.Equal(tr.BankedProfit()) {
			t.Errorf("trade %d: realized %v, journal sums to %v", tr.ID, tr.RealizedProfit, tr.BankedProfit())
		}
	}
	for _, tr := range l.Active() {
		if tr.PercentClosed < 0 || tr.PercentClosed >= 100 {
			t.Errorf("active trade %d at %v", tr.ID, tr.PercentClosed)
		}
	}
}

func TestLedger_Check(t *testing.T) {
	l := NewLedger()
	running := l.Execute("LONG", Money{})
	l.history = append(l.history, running) // same trade in both sets
	bad := closedTrade(1, 10)
	bad.Status = Running
	l.history = append(l.history, bad)

	err := l.Check()
	if !errors.Is(err, ErrInvariant) {
		t.Fatalf("Check() error = %v, want %v", err, ErrInvariant)
	}
	if joined, ok := err.(interface{ Unwrap() []error }); !ok || len(joined.Unwrap()) != 2 {
		t.Errorf("Check() error = %v, want 2 violations", err)
	}
}
