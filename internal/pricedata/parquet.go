// Package pricedata reads and writes price series as Parquet files.
package pricedata

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/dans91364-create/NECROZMAv2/internal/domain"
)

// ErrNoBars is returned when a file contains no rows.
var ErrNoBars = errors.New("parquet file contains no bars")

// BarRecord is the Parquet schema for one price bar.
type BarRecord struct {
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    float64 `parquet:"volume"`
}

// ReadSeries loads a full price series from a Parquet file and validates it.
func ReadSeries(path string) (domain.PriceSeries, error) {
	records, err := parquet.ReadFile[BarRecord](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoBars, path)
	}

	series := make(domain.PriceSeries, len(records))
	for i, r := range records {
		series[i] = domain.PriceBar{
			Timestamp: r.Timestamp,
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
			Volume:    r.Volume,
		}
	}

	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("validate series from %s: %w", path, err)
	}
	return series, nil
}

// WriteSeries writes a price series to a Parquet file, creating parent
// directories as needed. The series is validated first.
func WriteSeries(path string, series domain.PriceSeries) error {
	if err := series.Validate(); err != nil {
		return fmt.Errorf("validate series: %w", err)
	}

	records := make([]BarRecord, len(series))
	for i, b := range series {
		records[i] = BarRecord{
			Timestamp: b.Timestamp,
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parquet dir: %w", err)
	}
	if err := parquet.WriteFile(path, records); err != nil {
		return fmt.Errorf("write parquet %s: %w", path, err)
	}
	return nil
}
