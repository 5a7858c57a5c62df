// Package metrics derives risk-adjusted performance metrics from one
// simulation's trade list and equity curve.
package metrics

import (
	"math"

	"github.com/dans91364-create/NECROZMAv2/internal/domain"
	"github.com/dans91364-create/NECROZMAv2/internal/simulation"
)

// profitFactorCap bounds the profit factor when gross loss is zero so a
// loss-free run scores high without leaking Inf into the ranking.
const profitFactorCap = 1000.0

// Calculator computes metrics from simulation results.
type Calculator struct {
	annualization float64
}

// NewCalculator creates a Calculator. periodsPerYear scales Sharpe and
// Sortino by √periodsPerYear; 252 for daily bars is the usual choice.
func NewCalculator(periodsPerYear float64) *Calculator {
	if periodsPerYear <= 0 {
		periodsPerYear = 252
	}
	return &Calculator{annualization: math.Sqrt(periodsPerYear)}
}

// Compute derives all metrics for one simulation. A zero-trade run returns
// zero values for every metric rather than dividing by zero. All ratios
// are fractions, not percentages.
func (c *Calculator) Compute(result *simulation.Result) domain.Metrics {
	m := domain.Metrics{TotalTrades: len(result.Trades)}
	if len(result.Trades) == 0 {
		return m
	}

	initial := result.Equity[0].Balance
	m.TotalReturn = (result.FinalBalance - initial) / initial

	wins := 0
	grossProfit, grossLoss, totalPnL := 0.0, 0.0, 0.0
	for _, t := range result.Trades {
		totalPnL += t.PnL
		if t.PnL > 0 {
			wins++
			grossProfit += t.PnL
		} else {
			grossLoss += -t.PnL
		}
	}
	m.WinRate = float64(wins) / float64(len(result.Trades))
	m.Expectancy = totalPnL / float64(len(result.Trades))
	m.ProfitFactor = profitFactor(grossProfit, grossLoss)
	m.MaxDrawdown = maxDrawdown(result.Equity)

	returns := periodicReturns(result.Equity)
	m.SharpeRatio = c.sharpe(returns)
	m.SortinoRatio = c.sortino(returns)

	if m.MaxDrawdown > 0 {
		m.CalmarRatio = m.TotalReturn / m.MaxDrawdown
	}
	return m
}

// periodicReturns converts the equity curve into per-trade fractional
// returns. A blown account's final zero balance yields a -1 return.
func periodicReturns(equity []domain.EquityPoint) []float64 {
	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Balance
		if prev <= 0 {
			break
		}
		returns = append(returns, (equity[i].Balance-prev)/prev)
	}
	return returns
}

// maxDrawdown finds the largest peak-to-trough decline as a fraction of
// the peak balance.
func maxDrawdown(equity []domain.EquityPoint) float64 {
	peak := equity[0].Balance
	maxDD := 0.0
	for _, p := range equity {
		if p.Balance > peak {
			peak = p.Balance
		}
		if peak > 0 {
			if dd := (peak - p.Balance) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

func (c *Calculator) sharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean := meanOf(returns)
	std := stddevOf(returns, mean)
	if std == 0 {
		return 0
	}
	return c.annualization * mean / std
}

// sortino uses only negative-return periods for the deviation. A run with
// no downside periods returns 0 rather than Inf: the sentinel is defined,
// never silent NaN.
func (c *Calculator) sortino(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean := meanOf(returns)

	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if len(downside) == 0 {
		return 0
	}
	std := stddevOf(downside, meanOf(downside))
	if std == 0 {
		return 0
	}
	return c.annualization * mean / std
}

func profitFactor(grossProfit, grossLoss float64) float64 {
	if grossLoss == 0 {
		if grossProfit == 0 {
			return 0
		}
		return math.Min(grossProfit, profitFactorCap)
	}
	return grossProfit / grossLoss
}

func meanOf(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddevOf computes sample standard deviation (n-1 denominator).
func stddevOf(xs []float64, mean float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	sumSq := 0.0
	for _, x := range xs {
		diff := x - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(xs)-1))
}
