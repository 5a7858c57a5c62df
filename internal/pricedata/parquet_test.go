package pricedata

import (
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dans91364-create/NECROZMAv2/internal/domain"
)

func sampleSeries(n int) domain.PriceSeries {
	series := make(domain.PriceSeries, n)
	price := 100.0
	for i := range series {
		series[i] = domain.PriceBar{
			Timestamp: int64(i+1) * 60_000,
			Open:      price,
			High:      price + 0.5,
			Low:       price - 0.5,
			Close:     price + 0.2,
			Volume:    float64(100 + i),
		}
		price += 0.2
	}
	return series
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "series", "eurusd.parquet")

	series := sampleSeries(50)
	require.NoError(t, WriteSeries(path, series))

	got, err := ReadSeries(path)
	require.NoError(t, err)
	assert.Equal(t, series, got)
}

func TestReadSeries_MissingFile(t *testing.T) {
	_, err := ReadSeries(filepath.Join(t.TempDir(), "missing.parquet"))
	assert.Error(t, err)
}

func TestWriteSeries_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.parquet")

	err := WriteSeries(path, nil)
	assert.ErrorIs(t, err, domain.ErrEmptySeries)

	unordered := sampleSeries(3)
	unordered[2].Timestamp = unordered[0].Timestamp
	err = WriteSeries(path, unordered)
	assert.ErrorIs(t, err, domain.ErrUnorderedSeries)
}

func TestReadSeries_RejectsUnorderedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unordered.parquet")

	// Bypass WriteSeries validation by writing raw records.
	records := []BarRecord{
		{Timestamp: 120_000, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
		{Timestamp: 60_000, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
	}
	require.NoError(t, parquet.WriteFile(path, records))

	_, err := ReadSeries(path)
	assert.ErrorIs(t, err, domain.ErrUnorderedSeries)
}
