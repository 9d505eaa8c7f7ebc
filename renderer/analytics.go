package renderer

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/etnz/onyx"
	"github.com/etnz/onyx/date"
	md "github.com/nao1215/markdown"
)

// AnalyticsMarkdown renders the statistics of a period.
func AnalyticsMarkdown(p date.Period, a onyx.Analytics) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Performance (%s)", p))
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{md.Bold("Net Profit"), md.Bold(a.NetProfit.SignedString())},
		Rows: [][]string{
			{"Win Rate", a.WinRate.String()},
			{"Avg R:R", a.AvgRR},
			{"Profit Factor", a.ProfitFactor},
			{"Trades", strconv.Itoa(a.TotalTrades)},
		},
	})

	if len(a.TagStats) > 0 {
		doc.H2("Tags")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
			Header:    []string{"Tag", "Trades", "Win Rate", "ROI"},
		}
		for _, s := range a.TagStats {
			table.Rows = append(table.Rows, []string{
				s.Tag,
				strconv.Itoa(s.Count),
				s.WinRate.String(),
				s.ROI.SignedString(),
			})
		}
		doc.Table(table)
	}

	if len(a.DailyStats) > 0 {
		doc.H2("Closed Trades")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight},
			Header:    []string{"Closed", "Trade", "Status", "Profit"},
		}
		for _, t := range a.DailyStats {
			table.Rows = append(table.Rows, []string{
				closedDay(t),
				strconv.FormatInt(t.ID, 10),
				string(t.Status),
				t.RealizedProfit.SignedString(),
			})
		}
		doc.Table(table)
	}

	return doc.String()
}

func closedDay(t onyx.Trade) string {
	if t.ClosedAt == 0 {
		return "-"
	}
	return date.Of(time.UnixMilli(t.ClosedAt)).String()
}
