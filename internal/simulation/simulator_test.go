package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dans91364-create/NECROZMAv2/internal/domain"
)

// makeTable builds a label table with scripted long outcomes; short records
// mirror them with inverted direction. Bars without a script are timeouts
// with zero r-multiple.
func makeTable(n int, cfg domain.LabelConfig, script map[int]domain.OutcomeRecord) *domain.LabelTable {
	table := &domain.LabelTable{ConfigID: cfg.ID(), Config: cfg,
		Long:  make([]domain.OutcomeRecord, n),
		Short: make([]domain.OutcomeRecord, n),
	}
	for i := 0; i < n; i++ {
		rec, ok := script[i]
		if !ok {
			rec = domain.OutcomeRecord{Outcome: domain.OutcomeTimeout, RMultiple: 0, TimeToResult: 1}
		}
		rec.BarIndex = i
		rec.Direction = domain.Long
		table.Long[i] = rec

		short := rec
		short.Direction = domain.Short
		table.Short[i] = short
	}
	return table
}

func makeSeries(n int) domain.PriceSeries {
	series := make(domain.PriceSeries, n)
	for i := range series {
		series[i] = domain.PriceBar{Timestamp: int64(i+1) * 60000, Open: 100, High: 101, Low: 99, Close: 100, Volume: 1}
	}
	return series
}

func flatSignals(n int) domain.SignalSeries {
	return make(domain.SignalSeries, n)
}

var testCfg = domain.LabelConfig{TargetPips: 10, StopPips: 5, HorizonBars: 5}

func TestNewSimulator_Validation(t *testing.T) {
	_, err := NewSimulator(0, 1)
	require.ErrorIs(t, err, ErrInvalidInitialBalance)
	_, err = NewSimulator(200, 0)
	require.ErrorIs(t, err, ErrInvalidPipSize)
}

func TestRun_InvalidRiskLevel(t *testing.T) {
	sim, err := NewSimulator(200, 1)
	require.NoError(t, err)

	table := makeTable(5, testCfg, nil)
	for _, risk := range []float64{0, -0.1, 1.5} {
		_, err := sim.Run(makeSeries(5), flatSignals(5), table, risk)
		assert.ErrorIs(t, err, ErrInvalidRiskLevel, "risk %g", risk)
	}
	// Boundary: exactly 1 is allowed.
	_, err = sim.Run(makeSeries(5), flatSignals(5), table, 1)
	assert.NoError(t, err)
}

func TestRun_SignalLengthMismatch(t *testing.T) {
	sim, err := NewSimulator(200, 1)
	require.NoError(t, err)

	table := makeTable(5, testCfg, nil)
	_, err = sim.Run(makeSeries(5), flatSignals(4), table, 0.02)
	require.ErrorIs(t, err, ErrSignalLengthMismatch)
}

func TestRun_CompoundingSequence(t *testing.T) {
	sim, err := NewSimulator(200, 1)
	require.NoError(t, err)

	// Bar 0 wins 2R, bar 3 loses 1R.
	table := makeTable(10, testCfg, map[int]domain.OutcomeRecord{
		0: {Outcome: domain.OutcomeTarget, RMultiple: 2, TimeToResult: 2},
		3: {Outcome: domain.OutcomeStop, RMultiple: -1, TimeToResult: 1},
	})
	signals := flatSignals(10)
	signals[0] = domain.SignalLong
	signals[3] = domain.SignalLong

	result, err := sim.Run(makeSeries(10), signals, table, 0.10)
	require.NoError(t, err)

	require.Len(t, result.Trades, 2)
	// Trade 1: risk 20, pnl +40 → balance 240.
	assert.InDelta(t, 20.0, result.Trades[0].RiskAmount, 1e-9)
	assert.InDelta(t, 40.0, result.Trades[0].PnL, 1e-9)
	// Trade 2 compounds off the new balance: risk 24, pnl -24 → 216.
	assert.InDelta(t, 24.0, result.Trades[1].RiskAmount, 1e-9)
	assert.InDelta(t, -24.0, result.Trades[1].PnL, 1e-9)
	assert.InDelta(t, 216.0, result.FinalBalance, 1e-9)

	// Equity curve: initial point plus one per resolved trade.
	require.Len(t, result.Equity, 3)
	assert.Equal(t, -1, result.Equity[0].Index)
	assert.InDelta(t, 200.0, result.Equity[0].Balance, 1e-9)
	assert.InDelta(t, 240.0, result.Equity[1].Balance, 1e-9)
	assert.InDelta(t, 216.0, result.Equity[2].Balance, 1e-9)
}

func TestRun_SignalsDuringOpenPositionIgnored(t *testing.T) {
	sim, err := NewSimulator(200, 1)
	require.NoError(t, err)

	// Bar 0 opens a trade resolving at bar 4. Signals on bars 1..4 must be
	// ignored; bar 5 opens the next trade.
	table := makeTable(10, testCfg, map[int]domain.OutcomeRecord{
		0: {Outcome: domain.OutcomeTarget, RMultiple: 2, TimeToResult: 4},
		5: {Outcome: domain.OutcomeStop, RMultiple: -1, TimeToResult: 1},
	})
	signals := domain.SignalSeries{1, 1, -1, 1, -1, 1, 0, 0, 0, 0}

	result, err := sim.Run(makeSeries(10), signals, table, 0.05)
	require.NoError(t, err)

	require.Len(t, result.Trades, 2)
	assert.Equal(t, 0, result.Trades[0].EntryIndex)
	assert.Equal(t, 4, result.Trades[0].ExitIndex)
	assert.Equal(t, 5, result.Trades[1].EntryIndex)
}

func TestRun_UnresolvedNeverTrades(t *testing.T) {
	sim, err := NewSimulator(200, 1)
	require.NoError(t, err)

	table := makeTable(5, testCfg, map[int]domain.OutcomeRecord{
		2: {Outcome: domain.OutcomeUnresolved, TimeToResult: 1},
	})
	signals := flatSignals(5)
	signals[2] = domain.SignalShort

	result, err := sim.Run(makeSeries(5), signals, table, 0.02)
	require.NoError(t, err)
	assert.Empty(t, result.Trades)
	assert.InDelta(t, 200.0, result.FinalBalance, 1e-9)
}

func TestRun_BlownAccountHalts(t *testing.T) {
	sim, err := NewSimulator(200, 1)
	require.NoError(t, err)

	// Full risk, immediate loss: balance hits zero on the first trade.
	table := makeTable(10, testCfg, map[int]domain.OutcomeRecord{
		0: {Outcome: domain.OutcomeStop, RMultiple: -1, TimeToResult: 1},
		4: {Outcome: domain.OutcomeTarget, RMultiple: 2, TimeToResult: 1},
	})
	signals := flatSignals(10)
	signals[0] = domain.SignalLong
	signals[4] = domain.SignalLong

	result, err := sim.Run(makeSeries(10), signals, table, 1.0)
	require.NoError(t, err)

	assert.True(t, result.Blown)
	// No trades after the blowup.
	require.Len(t, result.Trades, 1)
	assert.InDelta(t, 0.0, result.FinalBalance, 1e-9)
}

func TestRun_TradeInvariants(t *testing.T) {
	sim, err := NewSimulator(200, 1)
	require.NoError(t, err)

	table := makeTable(10, testCfg, map[int]domain.OutcomeRecord{
		1: {Outcome: domain.OutcomeTarget, RMultiple: 2, TimeToResult: 3},
	})
	signals := flatSignals(10)
	signals[1] = domain.SignalShort

	result, err := sim.Run(makeSeries(10), signals, table, 0.02)
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.Greater(t, trade.ExitIndex, trade.EntryIndex)
	assert.Equal(t, domain.Short, trade.Direction)
	assert.InDelta(t, 100.0, trade.EntryPrice, 1e-9)
	// Short target: entry - 10 pips at pip size 1.
	assert.InDelta(t, 90.0, trade.ExitPrice, 1e-9)
}
