package renderer

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/etnz/onyx"
	md "github.com/nao1215/markdown"
)

// StrategiesMarkdown renders the strategies, marking the active one, with
// the checklist of the active strategy.
func StrategiesMarkdown(strategies []onyx.Strategy, active onyx.Strategy) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Strategies")
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"ID", "Name", "Risk", "Rules"},
	}
	for _, s := range strategies {
		name := s.Name
		if s.ID == active.ID {
			name = md.Bold(name)
		}
		table.Rows = append(table.Rows, []string{s.ID, name, s.Risk.String(), strconv.Itoa(len(s.Rules))})
	}
	doc.Table(table)

	doc.H2(fmt.Sprintf("Checklist: %s", active.Name))
	rules := make([]string, len(active.Rules))
	for i, r := range active.Rules {
		rules[i] = r.Text
	}
	if len(rules) > 0 {
		doc.OrderedList(rules...)
	}
	return doc.String()
}

// TagsMarkdown renders the tag vocabulary.
func TagsMarkdown(tags []string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Tags")
	if len(tags) == 0 {
		doc.PlainText("No tags.")
	} else {
		doc.BulletList(tags...)
	}
	return doc.String()
}

// ModelMarkdown renders the performance of a tag model.
func ModelMarkdown(m onyx.ModelStats) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Model: " + strings.Join(m.Tags, " + "))
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Metric", "Value"},
		Rows: [][]string{
			{"Trades", strconv.Itoa(m.Count)},
			{"Win Rate", m.WinRate.String()},
			{"Net Profit", m.NetProfit.SignedString()},
		},
	})
	return doc.String()
}
