package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/onyx"
	"github.com/etnz/onyx/renderer"
	"github.com/google/subcommands"
)

// priceCmd sets the price of a position by hand.
type priceCmd struct{}

func (*priceCmd) Name() string     { return "price" }
func (*priceCmd) Synopsis() string { return "set the current price of a position" }
func (*priceCmd) Usage() string {
	return `onyx price <position> <price>

  Sets the current price of a position, designated by its id, a unique id
  prefix or its ticker.
`
}

func (c *priceCmd) SetFlags(f *flag.FlagSet) {}

func (c *priceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		return usageError("a position and a price are required")
	}
	price, err := onyx.ParseMoney(f.Arg(1))
	if err != nil {
		return usageError("invalid price: %v", err)
	}
	return withPortfolio(ctx, func(s *session, p *onyx.Portfolio) error {
		inv, ok := p.Find(f.Arg(0))
		if !ok {
			return fmt.Errorf("no position matches %q", f.Arg(0))
		}
		if err := p.UpdatePrice(inv.ID, price); err != nil {
			return err
		}
		inv, _ = p.Find(inv.ID)
		printMarkdown(renderer.InvestmentMarkdown(inv))
		return nil
	})
}

// refreshCmd updates the live positions from CoinLore.
type refreshCmd struct{}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "update live positions from their price feed" }
func (*refreshCmd) Usage() string {
	return `onyx refresh

  Fetches the current price of every position having a CoinLore feed, in a
  single request. Positions the feed does not price keep their last price.
`
}

func (c *refreshCmd) SetFlags(f *flag.FlagSet) {}

func (c *refreshCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withPortfolio(ctx, func(s *session, p *onyx.Portfolio) error {
		n := p.Refresh(ctx, s.coinlore())
		fmt.Printf("%d position(s) updated\n", n)
		printMarkdown(renderer.PortfolioMarkdown(p.Valuation()))
		return nil
	})
}
