package labeler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dans91364-create/NECROZMAv2/internal/domain"
)

// flatSeries builds n bars at the given price with no range.
func flatSeries(n int, price float64) domain.PriceSeries {
	series := make(domain.PriceSeries, n)
	for i := range series {
		series[i] = domain.PriceBar{
			Timestamp: int64(i+1) * 60000,
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Volume:    1,
		}
	}
	return series
}

// integer-price scanner: pip size 1.0 keeps levels readable.
func newTestScanner(t *testing.T) *Scanner {
	t.Helper()
	s, err := NewScanner(1.0)
	require.NoError(t, err)
	return s
}

func TestNewScanner_InvalidPipSize(t *testing.T) {
	_, err := NewScanner(0)
	require.ErrorIs(t, err, ErrInvalidPipSize)
	_, err = NewScanner(-0.1)
	require.ErrorIs(t, err, ErrInvalidPipSize)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     domain.LabelConfig
		wantErr error
	}{
		{"valid", domain.LabelConfig{TargetPips: 10, StopPips: 5, HorizonBars: 60}, nil},
		{"zero target", domain.LabelConfig{TargetPips: 0, StopPips: 5, HorizonBars: 60}, ErrInvalidTarget},
		{"negative stop", domain.LabelConfig{TargetPips: 10, StopPips: -5, HorizonBars: 60}, ErrInvalidStop},
		{"zero horizon", domain.LabelConfig{TargetPips: 10, StopPips: 5, HorizonBars: 0}, ErrInvalidHorizon},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(tt.cfg)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

// Worked example: entry=100, target 10 pips (110), stop 5 pips (95),
// horizon 5. Bar 2 low touches 94 and bar 4 high touches 112: the stop
// precedes the target in time, so the outcome is a stop at bar 2.
func TestScan_StopPrecedesTargetInTime(t *testing.T) {
	series := flatSeries(10, 100)
	series[2].Low = 94
	series[4].High = 112

	s := newTestScanner(t)
	table, err := s.Scan(series, domain.LabelConfig{TargetPips: 10, StopPips: 5, HorizonBars: 5})
	require.NoError(t, err)

	rec := table.Long[0]
	assert.Equal(t, domain.OutcomeStop, rec.Outcome)
	assert.Equal(t, 2, rec.TimeToResult)
	assert.InDelta(t, -1.0, rec.RMultiple, 1e-12)
}

func TestScan_TargetOutcome(t *testing.T) {
	series := flatSeries(10, 100)
	series[3].High = 111

	s := newTestScanner(t)
	table, err := s.Scan(series, domain.LabelConfig{TargetPips: 10, StopPips: 5, HorizonBars: 5})
	require.NoError(t, err)

	rec := table.Long[0]
	assert.Equal(t, domain.OutcomeTarget, rec.Outcome)
	assert.Equal(t, 3, rec.TimeToResult)
	assert.InDelta(t, 2.0, rec.RMultiple, 1e-12) // 10/5
}

// Both levels inside one bar's range: stop priority.
func TestScan_SameBarTieBreak_StopWins(t *testing.T) {
	series := flatSeries(10, 100)
	series[1].High = 112
	series[1].Low = 94

	s := newTestScanner(t)
	table, err := s.Scan(series, domain.LabelConfig{TargetPips: 10, StopPips: 5, HorizonBars: 5})
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeStop, table.Long[0].Outcome)
	assert.Equal(t, 1, table.Long[0].TimeToResult)
}

func TestScan_ShortDirection(t *testing.T) {
	series := flatSeries(10, 100)
	series[2].Low = 89 // short target at 90

	s := newTestScanner(t)
	table, err := s.Scan(series, domain.LabelConfig{TargetPips: 10, StopPips: 5, HorizonBars: 5})
	require.NoError(t, err)

	rec := table.Short[0]
	assert.Equal(t, domain.OutcomeTarget, rec.Outcome)
	assert.Equal(t, 2, rec.TimeToResult)

	// The same excursion is adverse for the long side but the long stop at
	// 95 was already touched on that bar.
	assert.Equal(t, domain.OutcomeStop, table.Long[0].Outcome)
}

func TestScan_TimeoutUsesFinalBarMidpoint(t *testing.T) {
	series := flatSeries(20, 100)
	// Drift up but never touch 110 or 95 within the horizon.
	series[5].High = 104
	series[5].Low = 102

	s := newTestScanner(t)
	table, err := s.Scan(series, domain.LabelConfig{TargetPips: 10, StopPips: 5, HorizonBars: 5})
	require.NoError(t, err)

	rec := table.Long[0]
	require.Equal(t, domain.OutcomeTimeout, rec.Outcome)
	assert.Equal(t, 5, rec.TimeToResult)
	// Exit at bar 5 midpoint (104+102)/2 = 103 → +3 pips / 5 = 0.6 R.
	assert.InDelta(t, 0.6, rec.RMultiple, 1e-12)
}

func TestScan_ShortTailIsUnresolvedNotTimeout(t *testing.T) {
	series := flatSeries(10, 100)

	s := newTestScanner(t)
	table, err := s.Scan(series, domain.LabelConfig{TargetPips: 10, StopPips: 5, HorizonBars: 5})
	require.NoError(t, err)

	// Bars 0..4 have ≥5 bars of lookahead; bars 5..9 do not.
	for i := 0; i < 5; i++ {
		assert.NotEqual(t, domain.OutcomeUnresolved, table.Long[i].Outcome, "bar %d", i)
	}
	for i := 5; i < 10; i++ {
		assert.Equal(t, domain.OutcomeUnresolved, table.Long[i].Outcome, "bar %d", i)
		assert.Equal(t, domain.OutcomeUnresolved, table.Short[i].Outcome, "bar %d", i)
	}
	// The very last bar has nothing to scan.
	assert.Equal(t, 0, table.Long[9].TimeToResult)
}

func TestScan_MFEMAENonNegativeAndMonotonic(t *testing.T) {
	series := flatSeries(30, 100)
	series[2].High = 103
	series[2].Low = 98
	series[7].High = 106
	series[7].Low = 97

	s := newTestScanner(t)

	// Widen the horizon and verify the excursions never shrink.
	prevMFE, prevMAE := 0.0, 0.0
	for _, horizon := range []int{2, 5, 10, 15} {
		table, err := s.Scan(series, domain.LabelConfig{TargetPips: 50, StopPips: 50, HorizonBars: horizon})
		require.NoError(t, err)
		rec := table.Long[0]
		assert.GreaterOrEqual(t, rec.MFE, 0.0)
		assert.GreaterOrEqual(t, rec.MAE, 0.0)
		assert.GreaterOrEqual(t, rec.MFE, prevMFE, "horizon %d", horizon)
		assert.GreaterOrEqual(t, rec.MAE, prevMAE, "horizon %d", horizon)
		prevMFE, prevMAE = rec.MFE, rec.MAE
	}
}

func TestScan_EveryResolvableBarHasExactlyOneOutcome(t *testing.T) {
	series := flatSeries(50, 100)
	for i := range series {
		series[i].High = 100 + float64(i%7)
		series[i].Low = 100 - float64(i%5)
	}

	s := newTestScanner(t)
	cfg := domain.LabelConfig{TargetPips: 4, StopPips: 3, HorizonBars: 10}
	table, err := s.Scan(series, cfg)
	require.NoError(t, err)

	for i, rec := range table.Long {
		if i < len(series)-cfg.HorizonBars {
			assert.Contains(t, []domain.Outcome{domain.OutcomeTarget, domain.OutcomeStop, domain.OutcomeTimeout}, rec.Outcome, "bar %d", i)
		} else {
			assert.Equal(t, domain.OutcomeUnresolved, rec.Outcome, "bar %d", i)
		}
	}
}

func TestScan_PipSizeScalesLevels(t *testing.T) {
	series := flatSeries(10, 100)
	series[1].High = 101.1 // 11 pips at pip size 0.1

	s, err := NewScanner(0.1)
	require.NoError(t, err)
	table, err := s.Scan(series, domain.LabelConfig{TargetPips: 10, StopPips: 5, HorizonBars: 5})
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeTarget, table.Long[0].Outcome)
	assert.InDelta(t, 11.0, table.Long[0].MFE, 1e-9)
}

func TestScanGrid_MatchesSequentialScan(t *testing.T) {
	series := flatSeries(60, 100)
	for i := range series {
		series[i].High = 100 + float64((i*13)%9)
		series[i].Low = 100 - float64((i*7)%6)
		series[i].Close = 100 + float64(i%3) - 1
	}

	configs := domain.ExpandGrid([]float64{5, 10}, []float64{5}, []int{10, 20})
	s := newTestScanner(t)

	sequential := make([]*domain.LabelTable, len(configs))
	for i, cfg := range configs {
		table, err := s.Scan(series, cfg)
		require.NoError(t, err)
		sequential[i] = table
	}

	parallel, err := s.ScanGrid(context.Background(), series, configs, 4)
	require.NoError(t, err)

	require.Len(t, parallel, len(configs))
	for i := range configs {
		assert.Equal(t, sequential[i], parallel[i], "config %s", configs[i].ID())
	}
}

func TestScanGrid_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestScanner(t)
	_, err := s.ScanGrid(ctx, flatSeries(10, 100), domain.ExpandGrid([]float64{5}, []float64{5}, []int{5}), 1)
	require.ErrorIs(t, err, context.Canceled)
}

func TestScan_EmptySeries(t *testing.T) {
	s := newTestScanner(t)
	_, err := s.Scan(nil, domain.LabelConfig{TargetPips: 10, StopPips: 5, HorizonBars: 5})
	require.ErrorIs(t, err, domain.ErrEmptySeries)
}
