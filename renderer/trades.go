package renderer

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/etnz/onyx"
	md "github.com/nao1215/markdown"
)

// TradesMarkdown renders a list of trades under a title.
func TradesMarkdown(title string, trades []onyx.Trade) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(title)
	if len(trades) == 0 {
		doc.PlainText("No trades.")
		return doc.String()
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft, md.AlignLeft, md.AlignLeft,
			md.AlignRight, md.AlignRight, md.AlignRight,
			md.AlignLeft, md.AlignLeft,
		},
		Header: []string{"ID", "Opened", "Direction", "Risk", "Closed", "Realized", "Status", "Tags"},
	}
	for _, t := range trades {
		status := string(t.Status)
		if t.IsBreakeven && !t.IsClosed() {
			status += " (BE)"
		}
		table.Rows = append(table.Rows, []string{
			strconv.FormatInt(t.ID, 10),
			openedAt(t),
			orDash(t.Direction),
			t.Risk.String(),
			t.PercentClosed.String(),
			t.RealizedProfit.SignedString(),
			status,
			strings.Join(t.Tags, ", "),
		})
	}
	doc.Table(table)
	return doc.String()
}
