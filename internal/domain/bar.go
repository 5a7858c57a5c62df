package domain

import "errors"

// Price series validation errors.
var (
	// ErrEmptySeries is returned when a price series contains no bars.
	ErrEmptySeries = errors.New("price series is empty")

	// ErrUnorderedSeries is returned when bars are not strictly ordered by timestamp.
	ErrUnorderedSeries = errors.New("price series is not strictly ordered by timestamp")
)

// PriceBar represents one OHLCV bar. Bars are immutable once loaded.
type PriceBar struct {
	Timestamp int64 // Unix ms
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// PriceSeries is an ordered sequence of bars with strictly increasing
// timestamps. The series is consumed read-only by every downstream component.
type PriceSeries []PriceBar

// Validate checks series invariants: non-empty, strictly increasing
// timestamps (which also rules out duplicates).
func (s PriceSeries) Validate() error {
	if len(s) == 0 {
		return ErrEmptySeries
	}
	for i := 1; i < len(s); i++ {
		if s[i].Timestamp <= s[i-1].Timestamp {
			return ErrUnorderedSeries
		}
	}
	return nil
}
