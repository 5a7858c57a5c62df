// Package signal defines the capability interface for signal sources and a
// registry of implementations. The core consumes only the produced per-bar
// sequence and never depends on concrete provider types.
package signal

import (
	"github.com/dans91364-create/NECROZMAv2/internal/domain"
)

// Provider produces one signal per bar for a price series.
type Provider interface {
	// ID returns the provider identifier, including parameters.
	ID() string

	// Signals returns exactly one value in {-1, 0, 1} per bar.
	Signals(series domain.PriceSeries) (domain.SignalSeries, error)
}
