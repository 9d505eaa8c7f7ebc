package renderer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/etnz/onyx"
	"github.com/etnz/onyx/coinlore"
	md "github.com/nao1215/markdown"
)

// PortfolioMarkdown renders the valuation of a portfolio.
func PortfolioMarkdown(v onyx.Valuation) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Portfolio")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{md.Bold("Current Value"), md.Bold(v.CurrentValue.String())},
		Rows: [][]string{
			{"Invested", v.TotalInvested.String()},
			{"P&L", fmt.Sprintf("%s (%s)", v.TotalPnL.SignedString(), v.TotalPnLPercent.SignedString())},
		},
	})

	if len(v.Positions) == 0 {
		return doc.String()
	}
	doc.H2("Positions")
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft, md.AlignLeft, md.AlignLeft,
			md.AlignRight, md.AlignRight, md.AlignRight,
			md.AlignRight, md.AlignRight,
		},
		Header: []string{"Ticker", "Asset", "Category", "Quantity", "Entry", "Price", "Value", "P&L"},
	}
	for _, p := range v.Positions {
		ticker := p.Ticker
		if p.CoinloreID != "" {
			ticker += " (live)"
		}
		table.Rows = append(table.Rows, []string{
			ticker,
			p.AssetName,
			string(p.Category),
			p.Quantity.String(),
			p.EntryPrice.String(),
			p.CurrentPrice.String(),
			p.CurrentValue.String(),
			fmt.Sprintf("%s (%s)", p.PnL.SignedString(), p.PnLPercent.SignedString()),
		})
	}
	doc.Table(table)
	return doc.String()
}

// InvestmentMarkdown renders the detail of one position.
func InvestmentMarkdown(inv onyx.Investment) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("%s (%s)", inv.AssetName, inv.Ticker))
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Field", "Value"},
		Rows: [][]string{
			{"ID", inv.ID},
			{"Category", string(inv.Category)},
			{"Entry Date", inv.EntryDate.String()},
			{"Entry Price", inv.EntryPrice.String()},
			{"Quantity", inv.Quantity.String()},
			{"Current Price", inv.CurrentPrice.String()},
			{"Value", inv.Value().String()},
			{"P&L", inv.PnL().SignedString()},
		},
	})
	if inv.ThesisNotes != "" {
		doc.H2("Thesis")
		doc.PlainText(inv.ThesisNotes)
	}
	if len(inv.ImageURIs) > 0 {
		doc.H2("Charts")
		doc.BulletList(inv.ImageURIs...)
	}
	return doc.String()
}

// CoinsMarkdown renders price feed search results.
func CoinsMarkdown(query string, coins []coinlore.Coin) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Coins matching %q", query))
	if len(coins) == 0 {
		doc.PlainText("No match.")
		return doc.String()
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"Feed ID", "Symbol", "Name", "Rank", "Price"},
	}
	for _, c := range coins {
		table.Rows = append(table.Rows, []string{c.ID, c.Symbol, c.Name, strconv.Itoa(c.Rank), c.PriceUSD.String()})
	}
	doc.Table(table)
	return doc.String()
}
