// Package simulation replays a per-bar signal sequence against one label
// config's outcome records and produces a sequential, compounding trade and
// equity history. Compounding ties every trade's risk amount to the outcome
// of all prior trades, so a single run is strictly one pass in time order.
package simulation

import (
	"errors"
	"fmt"

	"github.com/dans91364-create/NECROZMAv2/internal/domain"
)

// Simulator errors.
var (
	// ErrInvalidRiskLevel is returned when the risk level is outside (0, 1].
	ErrInvalidRiskLevel = errors.New("risk level must be in (0, 1]")

	// ErrSignalLengthMismatch is returned when the signal sequence does not
	// match the label table length.
	ErrSignalLengthMismatch = errors.New("signal series length does not match label table")

	// ErrInvalidInitialBalance is returned when the starting balance is not positive.
	ErrInvalidInitialBalance = errors.New("initial balance must be > 0")

	// ErrInvalidPipSize is returned when the pip size is not positive.
	ErrInvalidPipSize = errors.New("pip size must be > 0")
)

// Result holds one simulation's trade history and equity curve.
type Result struct {
	Trades       []domain.Trade
	Equity       []domain.EquityPoint
	FinalBalance float64

	// Blown is set when the balance reached zero or below. The simulation
	// halts at that point; the partial history is kept and the combination
	// is still scored, flagged rather than discarded.
	Blown bool
}

// Simulator runs signal sequences against label tables.
type Simulator struct {
	initialBalance float64
	pipSize        float64
}

// NewSimulator creates a Simulator starting every run at initialBalance.
// pipSize converts pip distances back to prices for the trade history.
func NewSimulator(initialBalance, pipSize float64) (*Simulator, error) {
	if initialBalance <= 0 {
		return nil, ErrInvalidInitialBalance
	}
	if pipSize <= 0 {
		return nil, ErrInvalidPipSize
	}
	return &Simulator{initialBalance: initialBalance, pipSize: pipSize}, nil
}

// Run simulates one (signal source, risk level) pair over one label table.
//
// Policy: at most one open position. A non-zero signal while a position is
// open is ignored until the open trade resolves; the bar the trade resolves
// on is still occupied, so the next entry is the following bar at the
// earliest. Unresolved outcomes never open a trade. Risk per trade is
// current_balance × riskLevel and pnl is r_multiple × risk, so balances
// compound strictly in time order.
func (s *Simulator) Run(series domain.PriceSeries, signals domain.SignalSeries, table *domain.LabelTable, riskLevel float64) (*Result, error) {
	if riskLevel <= 0 || riskLevel > 1 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidRiskLevel, riskLevel)
	}
	if len(signals) != len(table.Long) {
		return nil, fmt.Errorf("%w: %d signals, %d bars", ErrSignalLengthMismatch, len(signals), len(table.Long))
	}
	if len(series) != len(signals) {
		return nil, fmt.Errorf("%w: %d signals, %d bars in series", ErrSignalLengthMismatch, len(signals), len(series))
	}

	balance := s.initialBalance
	result := &Result{
		Equity: []domain.EquityPoint{{Index: -1, Balance: balance}},
	}

	for i := 0; i < len(signals); i++ {
		sig := signals[i]
		if sig == domain.SignalFlat {
			continue
		}

		var rec domain.OutcomeRecord
		if sig == domain.SignalLong {
			rec = table.Long[i]
		} else {
			rec = table.Short[i]
		}
		if rec.Outcome == domain.OutcomeUnresolved {
			continue
		}

		risk := balance * riskLevel
		pnl := rec.RMultiple * risk
		entry := series[i].Close

		trade := domain.Trade{
			EntryIndex: i,
			ExitIndex:  i + rec.TimeToResult,
			Direction:  domain.Direction(sig),
			EntryPrice: entry,
			ExitPrice:  s.exitPrice(entry, rec, table.Config),
			RiskAmount: risk,
			PnL:        pnl,
		}

		balance += pnl
		result.Trades = append(result.Trades, trade)
		result.Equity = append(result.Equity, domain.EquityPoint{Index: trade.ExitIndex, Balance: balance})

		if balance <= 0 {
			result.Blown = true
			break
		}

		// Skip to the exit bar; the loop increment moves past it.
		i = trade.ExitIndex
	}

	result.FinalBalance = balance
	return result, nil
}

// exitPrice reconstructs the fill price implied by the outcome record.
func (s *Simulator) exitPrice(entry float64, rec domain.OutcomeRecord, cfg domain.LabelConfig) float64 {
	side := float64(rec.Direction)
	switch rec.Outcome {
	case domain.OutcomeTarget:
		return entry + side*cfg.TargetPips*s.pipSize
	case domain.OutcomeStop:
		return entry - side*cfg.StopPips*s.pipSize
	default:
		// Timeout exits at whatever price produced the r-multiple.
		return entry + side*rec.RMultiple*cfg.StopPips*s.pipSize
	}
}
