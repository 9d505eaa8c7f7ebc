package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/etnz/onyx"
	"github.com/google/subcommands"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// watchCmd refreshes the live positions on a schedule.
type watchCmd struct {
	schedule string
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "refresh live positions on a schedule" }
func (*watchCmd) Usage() string {
	return `onyx watch [-schedule <spec>]

  Refreshes the live positions, then again on every tick of the schedule
  until interrupted. The schedule is a cron expression or a descriptor such
  as "@every 5m", defaulting to the watch.schedule configuration.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.schedule, "schedule", "", "Cron schedule, overrides the configuration")
}

func (c *watchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening journal: %v\n", err)
		return subcommands.ExitFailure
	}
	defer s.Close()

	spec := c.schedule
	if spec == "" {
		spec = s.cfg.Watch.Schedule
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	lookup := s.coinlore()
	job := func() {
		if err := refreshOnce(ctx, s, lookup); err != nil {
			s.logger.Error("refresh failed", zap.Error(err))
		}
	}

	runner := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := runner.AddFunc(spec, job); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing schedule %q: %v\n", spec, err)
		return subcommands.ExitUsageError
	}

	job()
	runner.Start()
	s.logger.Info("watch started", zap.String("schedule", spec))
	<-ctx.Done()

	<-runner.Stop().Done()
	s.logger.Info("watch stopped")
	return subcommands.ExitSuccess
}

// refreshOnce reloads the portfolio, refreshes its live positions and saves
// it back.
func refreshOnce(ctx context.Context, s *session, lookup onyx.PriceLookup) error {
	p, err := s.portfolio(ctx)
	if err != nil {
		return err
	}
	n := p.Refresh(ctx, lookup)
	if n == 0 {
		return nil
	}
	if err := s.savePortfolio(ctx, p); err != nil {
		return err
	}
	v := p.Valuation()
	fmt.Printf("%d position(s) updated, portfolio worth %s (%s)\n", n, v.CurrentValue, v.TotalPnLPercent.SignedString())
	return nil
}
