package domain

import (
	"fmt"
	"sort"
	"strconv"
)

// Direction of a hypothetical trade.
type Direction int8

// Direction constants.
const (
	Long  Direction = 1
	Short Direction = -1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "unknown"
	}
}

// Outcome classifies what happened to a hypothetical trade.
type Outcome string

// Outcome constants.
const (
	// OutcomeTarget means the target level was touched before the stop.
	OutcomeTarget Outcome = "target"

	// OutcomeStop means the stop level was touched before the target.
	OutcomeStop Outcome = "stop"

	// OutcomeTimeout means neither level was touched within the horizon.
	OutcomeTimeout Outcome = "timeout"

	// OutcomeUnresolved means fewer than horizon_bars remained after the
	// entry bar. Unresolved records are excluded from simulation and
	// ranking so trailing bars do not bias timeout statistics.
	OutcomeUnresolved Outcome = "unresolved"
)

// LabelConfig is one (target, stop, horizon) labeling configuration.
// All three values must be strictly positive.
type LabelConfig struct {
	TargetPips  float64
	StopPips    float64
	HorizonBars int
}

// ID returns the stable identifier derived from the config values,
// e.g. "T10_S5_H60".
func (c LabelConfig) ID() string {
	return fmt.Sprintf("T%s_S%s_H%d",
		strconv.FormatFloat(c.TargetPips, 'f', -1, 64),
		strconv.FormatFloat(c.StopPips, 'f', -1, 64),
		c.HorizonBars,
	)
}

// ExpandGrid builds the full cross product of the configured target, stop
// and horizon lists in deterministic order (targets outermost, horizons
// innermost).
func ExpandGrid(targets, stops []float64, horizons []int) []LabelConfig {
	configs := make([]LabelConfig, 0, len(targets)*len(stops)*len(horizons))
	for _, tp := range targets {
		for _, sl := range stops {
			for _, h := range horizons {
				configs = append(configs, LabelConfig{
					TargetPips:  tp,
					StopPips:    sl,
					HorizonBars: h,
				})
			}
		}
	}
	return configs
}

// OutcomeRecord is the scan result for one (bar, direction, config) key.
// Records are produced once, cached, and never mutated.
type OutcomeRecord struct {
	BarIndex     int       `json:"bar_index"`
	Direction    Direction `json:"direction"`
	Outcome      Outcome   `json:"outcome"`
	MFE          float64   `json:"mfe"` // max favorable excursion, pips
	MAE          float64   `json:"mae"` // max adverse excursion, pips
	RMultiple    float64   `json:"r_multiple"`
	TimeToResult int       `json:"time_to_result"` // bars until resolution
}

// LabelTable holds the full scan output for one label config over one
// price series: one long and one short record per bar.
type LabelTable struct {
	ConfigID string          `json:"config_id"`
	Config   LabelConfig     `json:"config"`
	Long     []OutcomeRecord `json:"long"`
	Short    []OutcomeRecord `json:"short"`
}

// TableStats summarizes outcome counts and win rates for one label table.
type TableStats struct {
	ConfigID     string
	LongTargets  int
	LongStops    int
	ShortTargets int
	ShortStops   int
	Timeouts     int
	Unresolved   int
	LongWinRate  float64 // targets / (targets + stops)
	ShortWinRate float64
}

// Stats computes outcome counts and per-direction win rates. Timeout and
// unresolved records do not count toward win rates.
func (t *LabelTable) Stats() TableStats {
	st := TableStats{ConfigID: t.ConfigID}
	for _, r := range t.Long {
		switch r.Outcome {
		case OutcomeTarget:
			st.LongTargets++
		case OutcomeStop:
			st.LongStops++
		case OutcomeTimeout:
			st.Timeouts++
		case OutcomeUnresolved:
			st.Unresolved++
		}
	}
	for _, r := range t.Short {
		switch r.Outcome {
		case OutcomeTarget:
			st.ShortTargets++
		case OutcomeStop:
			st.ShortStops++
		case OutcomeTimeout:
			st.Timeouts++
		case OutcomeUnresolved:
			st.Unresolved++
		}
	}
	if n := st.LongTargets + st.LongStops; n > 0 {
		st.LongWinRate = float64(st.LongTargets) / float64(n)
	}
	if n := st.ShortTargets + st.ShortStops; n > 0 {
		st.ShortWinRate = float64(st.ShortTargets) / float64(n)
	}
	return st
}

// SortConfigIDs returns the config IDs of the given configs sorted
// lexically. Used for canonical cache key construction.
func SortConfigIDs(configs []LabelConfig) []string {
	ids := make([]string, len(configs))
	for i, c := range configs {
		ids[i] = c.ID()
	}
	sort.Strings(ids)
	return ids
}
