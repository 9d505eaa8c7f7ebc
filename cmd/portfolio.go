package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/onyx"
	"github.com/etnz/onyx/renderer"
	"github.com/google/subcommands"
)

// portfolioCmd shows the portfolio valuation.
type portfolioCmd struct {
	ref string
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "show the portfolio valuation" }
func (*portfolioCmd) Usage() string {
	return `onyx portfolio [-ref <position>]

  Shows every position at its current price with the portfolio totals, or
  the detail of one position.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ref, "ref", "", "Show the detail of this position")
}

func (c *portfolioCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return viewPortfolio(ctx, func(s *session, p *onyx.Portfolio) error {
		if c.ref == "" {
			printMarkdown(renderer.PortfolioMarkdown(p.Valuation()))
			return nil
		}
		inv, ok := p.Find(c.ref)
		if !ok {
			return fmt.Errorf("no position matches %q", c.ref)
		}
		printMarkdown(renderer.InvestmentMarkdown(inv))
		return nil
	})
}

// curveCmd charts the portfolio value snapshots.
type curveCmd struct {
	output string
}

func (*curveCmd) Name() string     { return "curve" }
func (*curveCmd) Synopsis() string { return "chart the portfolio value over time" }
func (*curveCmd) Usage() string {
	return `onyx curve [-o <file.png>]

  Writes the recorded portfolio value snapshots as a PNG chart.
`
}

func (c *curveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "portfolio.png", "Output PNG file")
}

func (c *curveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return viewPortfolio(ctx, func(s *session, p *onyx.Portfolio) error {
		err := writeChart(c.output, func(w *os.File) error { return renderer.SnapshotCurve(w, p.History()) })
		if err != nil {
			return err
		}
		fmt.Printf("Portfolio curve written to %s\n", c.output)
		return nil
	})
}
