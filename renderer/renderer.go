// Package renderer turns journal and portfolio data into markdown reports and
// PNG equity curves.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
	"time"

	"github.com/etnz/onyx"
)

//go:embed templates/*.md
var templates embed.FS

// RenderTrade renders the detail of one trade, journal included.
func RenderTrade(t onyx.Trade, strategy string) string {
	partials := map[string]string{
		"trade_summary": "templates/trade_summary.md",
		"trade_journal": "templates/trade_journal.md",
	}
	return renderTemplate("trade", "templates/trade.md", partials, newTradeView(t, strategy))
}

// tradeView is a Trade with every field preformatted for templates.
type tradeView struct {
	ID            int64
	Strategy      string
	Direction     string
	Opened        string
	Risk          string
	PercentClosed string
	Realized      string
	Status        string
	Breakeven     bool
	Tags          string
	Journal       []entryView
}

type entryView struct {
	Time    string
	Type    string
	Percent string
	Profit  string
	Note    string
	Images  []string
}

func newTradeView(t onyx.Trade, strategy string) tradeView {
	if strategy == "" {
		strategy = t.StrategyID
	}
	v := tradeView{
		ID:            t.ID,
		Strategy:      strategy,
		Direction:     orDash(t.Direction),
		Opened:        openedAt(t),
		Risk:          t.Risk.String(),
		PercentClosed: t.PercentClosed.String(),
		Realized:      t.RealizedProfit.SignedString(),
		Status:        string(t.Status),
		Breakeven:     t.IsBreakeven,
		Tags:          strings.Join(t.Tags, ", "),
	}
	for _, e := range t.Journal {
		v.Journal = append(v.Journal, entryView{
			Time:    e.Time().Format(time.DateTime),
			Type:    string(e.Type),
			Percent: e.PercentClosed.String(),
			Profit:  e.ProfitBanked.SignedString(),
			Note:    e.Note,
			Images:  e.ImageURIs,
		})
	}
	return v
}

// openedAt returns the recorded opening date and time, or the one encoded in
// the id for trades that have none.
func openedAt(t onyx.Trade) string {
	if t.DateStr == "" {
		return t.CreatedAt().Format("2006-01-02 15:04")
	}
	return strings.TrimSpace(t.DateStr + " " + t.TimeStr)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// renderTemplate renders a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
