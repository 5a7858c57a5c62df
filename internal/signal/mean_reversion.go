package signal

import (
	"fmt"

	"github.com/dans91364-create/NECROZMAv2/internal/domain"
)

// MeanReversionProvider fades deviations from the rolling mean close:
// short when price stretches above it, long when it stretches below.
type MeanReversionProvider struct {
	lookback  int
	threshold float64
}

// NewMeanReversionProvider creates a mean reversion provider.
func NewMeanReversionProvider(lookback int, threshold float64) (*MeanReversionProvider, error) {
	if lookback <= 0 {
		return nil, ErrInvalidLookback
	}
	return &MeanReversionProvider{lookback: lookback, threshold: threshold}, nil
}

// ID returns the provider identifier.
func (p *MeanReversionProvider) ID() string {
	return fmt.Sprintf("mean_reversion_%d_%g", p.lookback, p.threshold)
}

// Signals implements Provider.
func (p *MeanReversionProvider) Signals(series domain.PriceSeries) (domain.SignalSeries, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}
	signals := make(domain.SignalSeries, len(series))

	// Rolling sum over the lookback window keeps this a single pass.
	sum := 0.0
	for i, b := range series {
		sum += b.Close
		if i >= p.lookback {
			sum -= series[i-p.lookback].Close
		}
		if i < p.lookback {
			continue
		}
		mean := sum / float64(p.lookback)
		if mean == 0 {
			continue
		}
		deviation := (series[i].Close - mean) / mean
		switch {
		case deviation > p.threshold:
			signals[i] = domain.SignalShort
		case deviation < -p.threshold:
			signals[i] = domain.SignalLong
		}
	}
	return signals, nil
}

var _ Provider = (*MeanReversionProvider)(nil)
