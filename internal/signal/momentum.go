package signal

import (
	"errors"
	"fmt"

	"github.com/dans91364-create/NECROZMAv2/internal/domain"
)

// ErrInvalidLookback is returned when a provider lookback is not positive.
var ErrInvalidLookback = errors.New("lookback must be > 0")

// MomentumProvider signals in the direction of the close-over-lookback
// move when it exceeds the threshold fraction.
type MomentumProvider struct {
	lookback  int
	threshold float64
}

// NewMomentumProvider creates a momentum provider.
func NewMomentumProvider(lookback int, threshold float64) (*MomentumProvider, error) {
	if lookback <= 0 {
		return nil, ErrInvalidLookback
	}
	return &MomentumProvider{lookback: lookback, threshold: threshold}, nil
}

// ID returns the provider identifier.
func (p *MomentumProvider) ID() string {
	return fmt.Sprintf("momentum_%d_%g", p.lookback, p.threshold)
}

// Signals implements Provider. Bars without a full lookback window are flat.
func (p *MomentumProvider) Signals(series domain.PriceSeries) (domain.SignalSeries, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}
	signals := make(domain.SignalSeries, len(series))
	for i := p.lookback; i < len(series); i++ {
		prev := series[i-p.lookback].Close
		if prev == 0 {
			continue
		}
		change := (series[i].Close - prev) / prev
		switch {
		case change > p.threshold:
			signals[i] = domain.SignalLong
		case change < -p.threshold:
			signals[i] = domain.SignalShort
		}
	}
	return signals, nil
}

var _ Provider = (*MomentumProvider)(nil)
