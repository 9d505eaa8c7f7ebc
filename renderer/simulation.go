package renderer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/etnz/onyx"
	md "github.com/nao1215/markdown"
)

// SimulationMarkdown renders the outcome of a simulated equity path.
func SimulationMarkdown(p onyx.SimulationParams, r onyx.SimulationResult) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Simulation")
	doc.PlainText(fmt.Sprintf("%d trades from %s at %s win rate and 1:%g reward:risk.",
		p.Trades, p.Balance, p.WinRate, p.RewardRisk))
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{md.Bold("Final Balance"), md.Bold(r.Final.String())},
		Rows: [][]string{
			{"Growth", r.Growth.SignedString()},
			{"Max Drawdown", r.MaxDrawdown.String()},
			{"Expected Balance", r.Expected.String()},
			{"Trades", strconv.Itoa(len(r.Path) - 1)},
		},
	})
	return doc.String()
}
