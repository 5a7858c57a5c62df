// Package labeler implements the outcome-labeling engine: for every bar,
// direction and (target, stop, horizon) config it scans forward through the
// price series and classifies what would have happened to a hypothetical
// trade entered at that bar's close.
package labeler

import (
	"errors"
	"fmt"

	"github.com/dans91364-create/NECROZMAv2/internal/domain"
)

// Configuration errors. All are fatal at batch start.
var (
	ErrInvalidConfig  = errors.New("invalid label config")
	ErrInvalidTarget  = errors.New("target_pips must be > 0")
	ErrInvalidStop    = errors.New("stop_pips must be > 0")
	ErrInvalidHorizon = errors.New("horizon_bars must be > 0")
	ErrInvalidPipSize = errors.New("pip size must be > 0")
)

// Scanner classifies trade outcomes over a price series.
type Scanner struct {
	pipSize float64
}

// NewScanner creates a Scanner. pipSize is the price value of one pip.
func NewScanner(pipSize float64) (*Scanner, error) {
	if pipSize <= 0 {
		return nil, ErrInvalidPipSize
	}
	return &Scanner{pipSize: pipSize}, nil
}

// ValidateConfig checks that all config values are strictly positive.
func ValidateConfig(cfg domain.LabelConfig) error {
	if cfg.TargetPips <= 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrInvalidTarget)
	}
	if cfg.StopPips <= 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrInvalidStop)
	}
	if cfg.HorizonBars <= 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrInvalidHorizon)
	}
	return nil
}

// seriesView holds the price columns extracted once per series so the scan
// inner loop runs over flat float64 slices with no per-bar allocation.
type seriesView struct {
	highs  []float64
	lows   []float64
	closes []float64
}

func newSeriesView(series domain.PriceSeries) *seriesView {
	v := &seriesView{
		highs:  make([]float64, len(series)),
		lows:   make([]float64, len(series)),
		closes: make([]float64, len(series)),
	}
	for i, b := range series {
		v.highs[i] = b.High
		v.lows[i] = b.Low
		v.closes[i] = b.Close
	}
	return v
}

// Scan labels every bar of the series in both directions for one config.
// A short tail (fewer than horizon_bars remaining after the entry bar) is
// marked unresolved, never an error.
func (s *Scanner) Scan(series domain.PriceSeries, cfg domain.LabelConfig) (*domain.LabelTable, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	return s.scanView(newSeriesView(series), cfg), nil
}

func (s *Scanner) scanView(v *seriesView, cfg domain.LabelConfig) *domain.LabelTable {
	n := len(v.closes)
	table := &domain.LabelTable{
		ConfigID: cfg.ID(),
		Config:   cfg,
		Long:     make([]domain.OutcomeRecord, n),
		Short:    make([]domain.OutcomeRecord, n),
	}
	for i := 0; i < n; i++ {
		table.Long[i] = s.scanBar(v, i, cfg, domain.Long)
		table.Short[i] = s.scanBar(v, i, cfg, domain.Short)
	}
	return table
}

// scanBar scans forward from barIdx+1 up to horizon_bars for the first bar
// touching the target or stop level. When both levels fall inside a single
// bar's range the stop wins: intrabar sequencing is unknown, so the
// conservative reading is a loss.
func (s *Scanner) scanBar(v *seriesView, barIdx int, cfg domain.LabelConfig, dir domain.Direction) domain.OutcomeRecord {
	entry := v.closes[barIdx]
	targetDist := cfg.TargetPips * s.pipSize
	stopDist := cfg.StopPips * s.pipSize

	var targetLevel, stopLevel float64
	if dir == domain.Long {
		targetLevel = entry + targetDist
		stopLevel = entry - stopDist
	} else {
		targetLevel = entry - targetDist
		stopLevel = entry + stopDist
	}

	rec := domain.OutcomeRecord{BarIndex: barIdx, Direction: dir}

	remaining := len(v.closes) - 1 - barIdx
	resolvable := remaining >= cfg.HorizonBars
	end := barIdx + cfg.HorizonBars
	if !resolvable {
		end = barIdx + remaining
	}

	mfe, mae := 0.0, 0.0
	for i := barIdx + 1; i <= end; i++ {
		high := v.highs[i]
		low := v.lows[i]

		var favorable, adverse float64
		if dir == domain.Long {
			favorable = high - entry
			adverse = entry - low
		} else {
			favorable = entry - low
			adverse = high - entry
		}
		if favorable > mfe {
			mfe = favorable
		}
		if adverse > mae {
			mae = adverse
		}

		if !resolvable {
			continue
		}

		// Stop before target: conservative intrabar tie-break.
		stopHit := (dir == domain.Long && low <= stopLevel) ||
			(dir == domain.Short && high >= stopLevel)
		if stopHit {
			rec.Outcome = domain.OutcomeStop
			rec.RMultiple = -1
			rec.TimeToResult = i - barIdx
			rec.MFE = mfe / s.pipSize
			rec.MAE = mae / s.pipSize
			return rec
		}

		targetHit := (dir == domain.Long && high >= targetLevel) ||
			(dir == domain.Short && low <= targetLevel)
		if targetHit {
			rec.Outcome = domain.OutcomeTarget
			rec.RMultiple = cfg.TargetPips / cfg.StopPips
			rec.TimeToResult = i - barIdx
			rec.MFE = mfe / s.pipSize
			rec.MAE = mae / s.pipSize
			return rec
		}
	}

	rec.MFE = mfe / s.pipSize
	rec.MAE = mae / s.pipSize

	if !resolvable {
		rec.Outcome = domain.OutcomeUnresolved
		rec.TimeToResult = remaining
		return rec
	}

	// Timeout: exit at the final scanned bar's high/low midpoint.
	rec.Outcome = domain.OutcomeTimeout
	rec.TimeToResult = cfg.HorizonBars
	final := (v.highs[end] + v.lows[end]) / 2
	var pnl float64
	if dir == domain.Long {
		pnl = final - entry
	} else {
		pnl = entry - final
	}
	rec.RMultiple = (pnl / s.pipSize) / cfg.StopPips
	return rec
}
