package signal

import (
	"github.com/dans91364-create/NECROZMAv2/internal/domain"
)

// StubProvider emits a fixed signal series regardless of input. Tests use it
// to script exact entry bars.
type StubProvider struct {
	id      string
	signals domain.SignalSeries
}

// NewStubProvider creates a provider returning the given signals verbatim.
func NewStubProvider(id string, signals domain.SignalSeries) *StubProvider {
	return &StubProvider{id: id, signals: signals}
}

func (p *StubProvider) ID() string {
	return p.id
}

// Signals returns a copy of the scripted series, padded or truncated to the
// length of the input so callers always get a series aligned with their bars.
func (p *StubProvider) Signals(series domain.PriceSeries) (domain.SignalSeries, error) {
	out := make(domain.SignalSeries, len(series))
	copy(out, p.signals)
	return out, nil
}

var _ Provider = (*StubProvider)(nil)
