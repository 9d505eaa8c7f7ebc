package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/onyx"
	"github.com/etnz/onyx/renderer"
	"github.com/google/subcommands"
)

// openCmd opens a trade under the active strategy.
type openCmd struct {
	risk string
}

func (*openCmd) Name() string     { return "open" }
func (*openCmd) Synopsis() string { return "open a trade under the active strategy" }
func (*openCmd) Usage() string {
	return `onyx open [-risk <amount>] <LONG|SHORT>

  Opens a running trade. The trade risks the amount of the active strategy
  unless -risk is given.
`
}

func (c *openCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.risk, "risk", "", "Dollar risk of this trade, overriding the strategy risk")
}

func (c *openCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var risk onyx.Money
	if c.risk != "" {
		var err error
		if risk, err = onyx.ParseMoney(c.risk); err != nil {
			return usageError("invalid risk: %v", err)
		}
	}
	return withLedger(ctx, func(s *session, l *onyx.Ledger) error {
		t := l.Execute(f.Arg(0), risk)
		printMarkdown(renderer.RenderTrade(t, l.ActiveStrategy().Name))
		return nil
	})
}

// closeCmd banks a partial or full close.
type closeCmd struct {
	id     string
	pct    float64
	full   bool
	profit string
	note   string
	images string
}

func (*closeCmd) Name() string     { return "close" }
func (*closeCmd) Synopsis() string { return "close part or all of a running trade" }
func (*closeCmd) Usage() string {
	return `onyx close [-id <trade>] (-pct <percent> | -full) -profit <amount> [-note <text>] [-images <a.png,b.png>]

  Banks the profit of a partial or full close. Without -id, the most recent
  running trade of the active strategy is closed. A full close without -pct
  closes whatever remains.
`
}

func (c *closeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Trade id, defaults to the most recent running trade")
	f.Float64Var(&c.pct, "pct", 0, "Percent of the position closed by this execution")
	f.BoolVar(&c.full, "full", false, "Close the trade")
	f.StringVar(&c.profit, "profit", "", "Profit (or loss, negative) banked by this execution")
	f.StringVar(&c.note, "note", "", "Journal note")
	f.StringVar(&c.images, "images", "", "Comma separated chart images")
}

func (c *closeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.full && c.pct <= 0 {
		return usageError("either -pct or -full is required")
	}
	return withLedger(ctx, func(s *session, l *onyx.Ledger) error {
		id, err := resolveTrade(l, c.id)
		if err != nil {
			return err
		}
		typ := onyx.PartialExecution
		if c.full {
			typ = onyx.FullExecution
		}
		out := l.Submit(onyx.Execution{
			TradeID:   id,
			Type:      typ,
			Percent:   onyx.Percent(c.pct),
			ImageURIs: splitList(c.images),
			Note:      c.note,
		}, c.profit)
		return printOutcome(l, id, out)
	})
}

// stopCmd closes a running trade at its stop.
type stopCmd struct {
	id   string
	note string
}

func (*stopCmd) Name() string     { return "stop" }
func (*stopCmd) Synopsis() string { return "close a running trade at its stop loss" }
func (*stopCmd) Usage() string {
	return `onyx stop [-id <trade>] [-note <text>]

  Closes whatever remains of the trade at its stop: a loss of the remaining
  share of the risk, or nothing if the stop was moved to breakeven.
`
}

func (c *stopCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Trade id, defaults to the most recent running trade")
	f.StringVar(&c.note, "note", "", "Journal note")
}

func (c *stopCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, func(s *session, l *onyx.Ledger) error {
		id, err := resolveTrade(l, c.id)
		if err != nil {
			return err
		}
		out := l.Submit(onyx.Execution{TradeID: id, Type: onyx.StopLossExecution, Note: c.note}, "")
		return printOutcome(l, id, out)
	})
}

// printOutcome reports the trade after an execution.
func printOutcome(l *onyx.Ledger, id int64, out onyx.Outcome) error {
	if !out.Applied {
		return fmt.Errorf("trade %d: %w", id, errNoTrade)
	}
	printMarkdown(renderer.RenderTrade(out.Trade, strategyName(l, out.Trade.StrategyID)))
	return nil
}

// beCmd toggles the breakeven stop of a running trade.
type beCmd struct {
	id string
}

func (*beCmd) Name() string     { return "be" }
func (*beCmd) Synopsis() string { return "toggle the breakeven stop of a running trade" }
func (*beCmd) Usage() string {
	return `onyx be [-id <trade>]

  Marks the stop of a running trade as moved to breakeven, or back.
`
}

func (c *beCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Trade id, defaults to the most recent running trade")
}

func (c *beCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, func(s *session, l *onyx.Ledger) error {
		id, err := resolveTrade(l, c.id)
		if err != nil {
			return err
		}
		if !l.ToggleBreakeven(id) {
			return fmt.Errorf("trade %d: %w", id, errNoTrade)
		}
		t, _, _ := l.Trade(id)
		printMarkdown(renderer.RenderTrade(t, strategyName(l, t.StrategyID)))
		return nil
	})
}

// noteCmd rewrites the note of a journal entry.
type noteCmd struct {
	id    string
	entry int
}

func (*noteCmd) Name() string     { return "note" }
func (*noteCmd) Synopsis() string { return "edit the note of a journal entry" }
func (*noteCmd) Usage() string {
	return `onyx note [-id <trade>] [-entry <index>] <text>

  Replaces the note of a journal entry, 0 being the most recent one. The
  trade may be running or closed.
`
}

func (c *noteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Trade id, defaults to the most recent running trade")
	f.IntVar(&c.entry, "entry", 0, "Journal entry index, 0 is the most recent")
}

func (c *noteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	text := strings.Join(f.Args(), " ")
	return withLedger(ctx, func(s *session, l *onyx.Ledger) error {
		id, err := resolveTrade(l, c.id)
		if err != nil {
			return err
		}
		if !l.SaveEditedNote(id, c.entry, text) {
			return fmt.Errorf("trade %d has no journal entry %d", id, c.entry)
		}
		t, _, _ := l.Trade(id)
		printMarkdown(renderer.RenderTrade(t, strategyName(l, t.StrategyID)))
		return nil
	})
}

// tagCmd toggles tags on a trade.
type tagCmd struct {
	id string
}

func (*tagCmd) Name() string     { return "tag" }
func (*tagCmd) Synopsis() string { return "toggle tags on a trade" }
func (*tagCmd) Usage() string {
	return `onyx tag [-id <trade>] <tag>...

  Adds each tag missing from the trade, and removes each tag it carries.
  Tags unknown to the journal are added to its vocabulary.
`
}

func (c *tagCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Trade id, defaults to the most recent running trade")
}

func (c *tagCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return usageError("at least one tag is required")
	}
	return withLedger(ctx, func(s *session, l *onyx.Ledger) error {
		id, err := resolveTrade(l, c.id)
		if err != nil {
			return err
		}
		for _, tag := range f.Args() {
			l.ToggleTag(id, tag)
		}
		t, _, _ := l.Trade(id)
		printMarkdown(renderer.RenderTrade(t, strategyName(l, t.StrategyID)))
		return nil
	})
}

// tradesCmd lists trades.
type tradesCmd struct {
	history bool
	all     bool
	id      string
}

func (*tradesCmd) Name() string     { return "trades" }
func (*tradesCmd) Synopsis() string { return "list running or closed trades" }
func (*tradesCmd) Usage() string {
	return `onyx trades [-history] [-all] [-id <trade>]

  Lists the running trades of the active strategy, or its closed trades with
  -history. -all lists the trades of every strategy. -id shows one trade with
  its journal.
`
}

func (c *tradesCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.history, "history", false, "List closed trades")
	f.BoolVar(&c.all, "all", false, "Include the trades of every strategy")
	f.StringVar(&c.id, "id", "", "Show the detail of one trade")
}

func (c *tradesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return viewLedger(ctx, func(s *session, l *onyx.Ledger) error {
		if c.id != "" {
			id, err := resolveTrade(l, c.id)
			if err != nil {
				return err
			}
			t, _, _ := l.Trade(id)
			printMarkdown(renderer.RenderTrade(t, strategyName(l, t.StrategyID)))
			return nil
		}

		title, trades := "Running Trades", l.StrategyActive()
		switch {
		case c.history && c.all:
			title, trades = "History", l.History()
		case c.history:
			title, trades = "History", l.StrategyHistory()
		case c.all:
			trades = l.Active()
		}
		if !c.all {
			title += ": " + l.ActiveStrategy().Name
		}
		printMarkdown(renderer.TradesMarkdown(title, trades))
		return nil
	})
}

// strategyName returns the name of a strategy, or its id when it is unknown.
func strategyName(l *onyx.Ledger, id string) string {
	for _, s := range l.Strategies() {
		if s.ID == id {
			return s.Name
		}
	}
	return id
}
