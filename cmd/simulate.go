package cmd

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/etnz/onyx"
	"github.com/etnz/onyx/renderer"
	"github.com/google/subcommands"
)

// simulateCmd draws a random equity path.
type simulateCmd struct {
	balance    string
	winRate    string
	rewardRisk string
	trades     string
	seed       uint64
	png        string
}

func (*simulateCmd) Name() string     { return "simulate" }
func (*simulateCmd) Synopsis() string { return "simulate an account equity curve" }
func (*simulateCmd) Usage() string {
	return `onyx simulate [-balance <amount>] [-winrate <percent>] [-rr <ratio>] [-trades <n>] [-seed <n>] [-png <file>]

  Computes the expected balance after a number of trades risking 1% of the
  starting balance each, and draws one random path. Each run draws a
  different path unless -seed is given. -png writes the path as a chart.
`
}

func (c *simulateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.balance, "balance", "10000", "Starting balance")
	f.StringVar(&c.winRate, "winrate", "50", "Win rate in percent")
	f.StringVar(&c.rewardRisk, "rr", "2", "Reward to risk ratio of winning trades")
	f.StringVar(&c.trades, "trades", "100", "Number of trades")
	f.Uint64Var(&c.seed, "seed", 0, "Seed of the random path, 0 for a random one")
	f.StringVar(&c.png, "png", "", "Write the equity curve to this PNG file")
}

func (c *simulateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	params, err := onyx.ParseSimulationParams(c.balance, c.winRate, c.rewardRisk, c.trades)
	if err != nil {
		return usageError("%v", err)
	}
	var r *rand.Rand
	if c.seed != 0 {
		r = rand.New(rand.NewPCG(c.seed, c.seed))
	}
	res := onyx.Simulate(params, r)
	printMarkdown(renderer.SimulationMarkdown(params, res))

	if c.png == "" {
		return subcommands.ExitSuccess
	}
	if err := writeChart(c.png, func(w *os.File) error { return renderer.SimulationCurve(w, res) }); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing chart: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Equity curve written to %s\n", c.png)
	return subcommands.ExitSuccess
}

// writeChart creates path and lets draw fill it.
func writeChart(path string, draw func(*os.File) error) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := draw(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
