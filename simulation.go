package onyx

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// riskPerTradePercent is the share of the starting balance risked per trade.
const riskPerTradePercent Percent = 1

// MaxSimulationTrades bounds the number of simulated trades, every one of
// them being kept in the equity path.
const MaxSimulationTrades = 100_000

// SimulationParams are the inputs of the equity simulator.
type SimulationParams struct {
	Balance    Money   // starting balance
	WinRate    Percent // probability of a winning trade
	RewardRisk float64 // reward to risk ratio of a winning trade
	Trades     int     // number of trades to simulate
}

// ParseSimulationParams reads simulator inputs typed by a user.
func ParseSimulationParams(balance, winRate, rewardRisk, trades string) (SimulationParams, error) {
	var p SimulationParams
	var err error
	if p.Balance, err = ParseMoney(balance); err != nil {
		return p, fmt.Errorf("invalid balance: %w", err)
	}
	wr, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(winRate), "%"), 64)
	if err != nil {
		return p, fmt.Errorf("invalid win rate %q: %w", winRate, err)
	}
	p.WinRate = clampPercent(Percent(wr))
	if p.RewardRisk, err = strconv.ParseFloat(strings.TrimSpace(rewardRisk), 64); err != nil {
		return p, fmt.Errorf("invalid reward:risk %q: %w", rewardRisk, err)
	}
	if p.Trades, err = strconv.Atoi(strings.TrimSpace(trades)); err != nil {
		return p, fmt.Errorf("invalid number of trades %q: %w", trades, err)
	}
	if p.Trades > MaxSimulationTrades {
		return p, fmt.Errorf("invalid number of trades %d: at most %d can be simulated", p.Trades, MaxSimulationTrades)
	}
	return p, nil
}

// SimulationResult is the outcome of one simulated path.
type SimulationResult struct {
	Final       Money
	Growth      Percent // final balance relative to the start
	MaxDrawdown Percent // deepest fall from a running peak
	Expected    Money   // closed-form expected balance
	Path        []Money // balance after each trade, starting balance first
}

// Simulate computes the expected balance and draws one random equity path.
// Each trade risks 1% of the starting balance. Repeated calls draw different
// paths; r seeds the draws and may be nil to use the global source.
// Trade counts above MaxSimulationTrades are simulated as MaxSimulationTrades.
func Simulate(p SimulationParams, r *rand.Rand) SimulationResult {
	draw := rand.Float64
	if r != nil {
		draw = r.Float64
	}
	n := min(max(p.Trades, 0), MaxSimulationTrades)
	wr := float64(p.WinRate) / 100
	risk := p.Balance.Part(riskPerTradePercent)
	reward := Money{value: risk.value.Mul(decimal.NewFromFloat(p.RewardRisk))}

	// ev = risk*rr*wr - risk*(1-wr)
	ev := reward.value.Mul(decimal.NewFromFloat(wr)).Sub(risk.value.Mul(decimal.NewFromFloat(1 - wr)))
	expected := p.Balance.Add(Money{value: ev.Mul(decimal.NewFromInt(int64(n)))})

	balance := p.Balance
	peak := balance
	var maxDD Percent
	path := make([]Money, 0, n+1)
	path = append(path, balance)
	for range n {
		if draw() < wr {
			balance = balance.Add(reward)
		} else {
			balance = balance.Sub(risk)
		}
		if balance.GreaterThan(peak) {
			peak = balance
		}
		if peak.IsPositive() {
			maxDD = max(maxDD, peak.Sub(balance).Ratio(peak))
		}
		path = append(path, balance)
	}

	return SimulationResult{
		Final:       balance,
		Growth:      balance.Sub(p.Balance).Ratio(p.Balance),
		MaxDrawdown: maxDD,
		Expected:    expected,
		Path:        path,
	}
}
