package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/onyx"
	"github.com/etnz/onyx/date"
	"github.com/etnz/onyx/renderer"
	"github.com/google/subcommands"
)

// investCmd records portfolio positions.
type investCmd struct {
	name     string
	ticker   string
	category string
	feed     string
	price    string
	quantity string
	date     string
	notes    string
	images   string
	attach   string
	remove   string
	search   string
}

func (*investCmd) Name() string     { return "invest" }
func (*investCmd) Synopsis() string { return "add, merge or remove a portfolio position" }
func (*investCmd) Usage() string {
	return `onyx invest -ticker <ticker> -price <entry price> -qty <quantity> [-name <asset>] [-c <category>] [-feed <id>] [-d <date>] [-notes <thesis>] [-images <a.png,b.png>]
onyx invest -attach <position> -images <a.png,b.png>
onyx invest -delete <position>
onyx invest -search <query>

  Adds a position. A position on the same ticker and category is merged into
  the existing one at the weighted-average entry price.

  -feed sets the CoinLore id that keeps the price live; use -search to find it.
  A position is designated by its id, a unique id prefix or its ticker.
  Categories: Crypto, Stock, Index and Custom.
`
}

func (c *investCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Asset name, defaults to the ticker")
	f.StringVar(&c.ticker, "ticker", "", "Ticker")
	f.StringVar(&c.category, "c", string(onyx.Stock), "Category: Crypto, Stock, Index or Custom")
	f.StringVar(&c.feed, "feed", "", "CoinLore id of the live price feed")
	f.StringVar(&c.price, "price", "", "Entry price")
	f.StringVar(&c.quantity, "qty", "", "Quantity")
	f.StringVar(&c.date, "d", "", "Entry date, defaults to today")
	f.StringVar(&c.notes, "notes", "", "Investment thesis")
	f.StringVar(&c.images, "images", "", "Comma separated chart images")
	f.StringVar(&c.attach, "attach", "", "Attach -images to this position")
	f.StringVar(&c.remove, "delete", "", "Delete this position")
	f.StringVar(&c.search, "search", "", "Search the CoinLore feeds for a coin")
}

func (c *investCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	switch {
	case c.search != "":
		return c.runSearch(ctx)
	case c.remove != "":
		return withPortfolio(ctx, func(s *session, p *onyx.Portfolio) error {
			inv, ok := p.Find(c.remove)
			if !ok {
				return fmt.Errorf("no position matches %q", c.remove)
			}
			p.Delete(inv.ID)
			fmt.Printf("Deleted %s (%s)\n", inv.AssetName, inv.Ticker)
			return nil
		})
	case c.attach != "":
		return withPortfolio(ctx, func(s *session, p *onyx.Portfolio) error {
			inv, ok := p.Find(c.attach)
			if !ok {
				return fmt.Errorf("no position matches %q", c.attach)
			}
			p.AddImages(inv.ID, splitList(c.images)...)
			inv, _ = p.Find(inv.ID)
			printMarkdown(renderer.InvestmentMarkdown(inv))
			return nil
		})
	}

	inv, err := c.investment()
	if err != nil {
		return usageError("%v", err)
	}
	return withPortfolio(ctx, func(s *session, p *onyx.Portfolio) error {
		added, err := p.Add(inv)
		if err != nil {
			return err
		}
		printMarkdown(renderer.InvestmentMarkdown(added))
		return nil
	})
}

// investment reads the position described by the flags.
func (c *investCmd) investment() (onyx.Investment, error) {
	if c.ticker == "" {
		return onyx.Investment{}, fmt.Errorf("-ticker is required")
	}
	category, err := onyx.ParseCategory(c.category)
	if err != nil {
		return onyx.Investment{}, err
	}
	price, err := onyx.ParseMoney(c.price)
	if err != nil {
		return onyx.Investment{}, fmt.Errorf("invalid price: %w", err)
	}
	qty, err := onyx.ParseQuantity(c.quantity)
	if err != nil {
		return onyx.Investment{}, fmt.Errorf("invalid quantity: %w", err)
	}
	var on date.Date
	if c.date != "" {
		if on, err = date.Parse(c.date); err != nil {
			return onyx.Investment{}, err
		}
	}
	name := c.name
	if name == "" {
		name = c.ticker
	}
	return onyx.Investment{
		AssetName:   name,
		Ticker:      c.ticker,
		Category:    category,
		CoinloreID:  c.feed,
		EntryPrice:  price,
		Quantity:    qty,
		EntryDate:   on,
		ThesisNotes: c.notes,
		ImageURIs:   splitList(c.images),
	}, nil
}

func (c *investCmd) runSearch(ctx context.Context) subcommands.ExitStatus {
	s, err := openSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening journal: %v\n", err)
		return subcommands.ExitFailure
	}
	defer s.Close()

	coins, err := s.coinlore().Search(ctx, c.search)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error searching coins: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.CoinsMarkdown(c.search, coins))
	return subcommands.ExitSuccess
}
