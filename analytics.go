package onyx

import (
	"cmp"
	"slices"
	"time"

	"github.com/etnz/onyx/date"
	"github.com/shopspring/decimal"
)

// Infinity is the ratio displayed when a denominator is zero.
const Infinity = "∞"

// FilterTradesByPeriod returns the trades created within period p ending at
// now. The creation time is the trade id, not its closing time. All returns
// trades unchanged.
func FilterTradesByPeriod(trades []Trade, p date.Period, now time.Time) []Trade {
	if p == date.All {
		return trades
	}
	res := make([]Trade, 0, len(trades))
	for _, t := range trades {
		if p.Contains(now, t.CreatedAt()) {
			res = append(res, t)
		}
	}
	return res
}

// TagStat is the performance of the trades carrying one tag.
type TagStat struct {
	Tag     string
	Count   int
	WinRate Percent
	ROI     Percent // net profit over summed risk
}

// Analytics are the aggregated statistics of a journal.
type Analytics struct {
	NetProfit    Money
	WinRate      Percent
	AvgRR        string // average win over average loss, 2 decimals or Infinity
	ProfitFactor string // gross win over gross loss, 2 decimals or Infinity
	TotalTrades  int
	DailyStats   []Trade   // the whole history, most recent first
	TagStats     []TagStat // most used tags first
}

// outcomes splits trades into wins and losses. Trades with no profit belong
// to neither.
func outcomes(trades []Trade) (wins, losses []Trade) {
	for _, t := range trades {
		switch {
		case t.RealizedProfit.IsPositive():
			wins = append(wins, t)
		case t.RealizedProfit.IsNegative():
			losses = append(losses, t)
		}
	}
	return wins, losses
}

func netProfit(trades []Trade) Money {
	var total Money
	for _, t := range trades {
		total = total.Add(t.RealizedProfit)
	}
	return total
}

// winRate is the share of winning trades, 0 for no trades.
func winRate(trades []Trade) Percent {
	if len(trades) == 0 {
		return 0
	}
	wins, _ := outcomes(trades)
	return Percent(float64(len(wins)) / float64(len(trades)) * 100)
}

// ratio formats num/den with 2 decimals. A zero denominator gives Infinity,
// or "0.00" when zeroIsInfinite is false and the numerator is zero too.
func ratio(num, den decimal.Decimal, zeroIsInfinite bool) string {
	if den.IsZero() {
		if num.IsPositive() || zeroIsInfinite {
			return Infinity
		}
		return "0.00"
	}
	return num.Div(den).StringFixed(2)
}

// average returns the mean profit of trades, 0 for no trades.
func average(trades []Trade) decimal.Decimal {
	if len(trades) == 0 {
		return decimal.Zero
	}
	return netProfit(trades).value.Div(decimal.NewFromInt(int64(len(trades))))
}

// ComputeAnalytics aggregates periodTrades into statistics. Daily stats and
// tag stats always cover the whole history, whatever the period.
func ComputeAnalytics(periodTrades, history []Trade, tags []string) Analytics {
	wins, losses := outcomes(periodTrades)

	avgWin := average(wins)
	avgLoss := average(losses).Abs()
	grossWin := netProfit(wins).value
	grossLoss := netProfit(losses).value.Abs()

	daily := cloneTrades(history)
	slices.SortStableFunc(daily, func(a, b Trade) int { return cmp.Compare(b.ID, a.ID) })

	return Analytics{
		NetProfit:    netProfit(periodTrades),
		WinRate:      winRate(periodTrades),
		AvgRR:        ratio(avgWin, avgLoss, false),
		ProfitFactor: ratio(grossWin, grossLoss, true),
		TotalTrades:  len(periodTrades),
		DailyStats:   daily,
		TagStats:     computeTagStats(history, tags),
	}
}

func computeTagStats(history []Trade, tags []string) []TagStat {
	stats := make([]TagStat, 0, len(tags))
	for _, tag := range tags {
		var tagged []Trade
		var risk Money
		for _, t := range history {
			if t.HasTag(tag) {
				tagged = append(tagged, t)
				risk = risk.Add(t.Risk)
			}
		}
		if len(tagged) == 0 {
			continue
		}
		stats = append(stats, TagStat{
			Tag:     tag,
			Count:   len(tagged),
			WinRate: winRate(tagged),
			ROI:     netProfit(tagged).Ratio(risk),
		})
	}
	slices.SortStableFunc(stats, func(a, b TagStat) int { return cmp.Compare(b.Count, a.Count) })
	return stats
}
