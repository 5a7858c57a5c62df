package domain

// Signal is one per-bar trading signal: 1 = long, -1 = short, 0 = flat.
type Signal int8

// Signal constants.
const (
	SignalLong  Signal = 1
	SignalFlat  Signal = 0
	SignalShort Signal = -1
)

// SignalSeries is one signal per bar, matching the price series length.
// The core treats it purely as data; how it was produced is opaque.
type SignalSeries []Signal
