package cmd

import (
	"context"
	"flag"
	"time"

	"github.com/etnz/onyx"
	"github.com/etnz/onyx/date"
	"github.com/etnz/onyx/renderer"
	"github.com/google/subcommands"
)

// statsCmd shows the performance of the active strategy.
type statsCmd struct {
	period string
}

func (*statsCmd) Name() string     { return "stats" }
func (*statsCmd) Synopsis() string { return "show the performance of the active strategy" }
func (*statsCmd) Usage() string {
	return `onyx stats [-p <period>]

  Shows net profit, win rate, average reward:risk and profit factor of the
  closed trades of the active strategy opened within the period, followed by
  the tag statistics and the closed trades of its whole history.

  Periods: 1D (today), 1W, 1M, 1Y and ALL.
`
}

func (c *statsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "p", "1M", "Reporting period: 1D, 1W, 1M, 1Y or ALL")
}

func (c *statsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	period, err := date.ParsePeriod(c.period)
	if err != nil {
		return usageError("%v", err)
	}
	return viewLedger(ctx, func(s *session, l *onyx.Ledger) error {
		history := l.StrategyHistory()
		inPeriod := onyx.FilterTradesByPeriod(history, period, time.Now())
		printMarkdown(renderer.AnalyticsMarkdown(period, onyx.ComputeAnalytics(inPeriod, history, l.Tags())))
		return nil
	})
}
