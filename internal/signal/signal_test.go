package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dans91364-create/NECROZMAv2/internal/domain"
)

func seriesFromCloses(closes ...float64) domain.PriceSeries {
	series := make(domain.PriceSeries, len(closes))
	for i, c := range closes {
		series[i] = domain.PriceBar{
			Timestamp: int64(i+1) * 60_000,
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    1,
		}
	}
	return series
}

func TestRegistry_RegisterGetList(t *testing.T) {
	r := NewRegistry()

	mom, err := NewMomentumProvider(3, 0.01)
	require.NoError(t, err)
	rev, err := NewMeanReversionProvider(5, 0.02)
	require.NoError(t, err)

	r.Register(rev)
	r.Register(mom)

	got, ok := r.Get(mom.ID())
	require.True(t, ok)
	assert.Equal(t, mom, got)

	_, ok = r.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"mean_reversion_5_0.02", "momentum_3_0.01"}, r.List())

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "mean_reversion_5_0.02", all[0].ID())
	assert.Equal(t, "momentum_3_0.01", all[1].ID())
}

func TestRegistry_ReplaceOnReRegister(t *testing.T) {
	r := NewRegistry()
	a := NewStubProvider("dup", domain.SignalSeries{domain.SignalLong})
	b := NewStubProvider("dup", domain.SignalSeries{domain.SignalShort})

	r.Register(a)
	r.Register(b)

	got, ok := r.Get("dup")
	require.True(t, ok)
	assert.Same(t, b, got)
	assert.Len(t, r.List(), 1)
}

func TestMomentumProvider_Signals(t *testing.T) {
	p, err := NewMomentumProvider(2, 0.05)
	require.NoError(t, err)

	// Index 2: 110/100-1 = +10%  -> long
	// Index 3: 95/105-1  = -9.5% -> short
	// Index 4: 112/110-1 = +1.8% -> flat under 5% threshold
	series := seriesFromCloses(100, 105, 110, 95, 112)
	signals, err := p.Signals(series)
	require.NoError(t, err)

	want := domain.SignalSeries{
		domain.SignalFlat,
		domain.SignalFlat,
		domain.SignalLong,
		domain.SignalShort,
		domain.SignalFlat,
	}
	assert.Equal(t, want, signals)
}

func TestMomentumProvider_WarmupIsFlat(t *testing.T) {
	p, err := NewMomentumProvider(10, 0.001)
	require.NoError(t, err)

	series := seriesFromCloses(100, 110, 121, 133)
	signals, err := p.Signals(series)
	require.NoError(t, err)

	for i, s := range signals {
		assert.Equal(t, domain.SignalFlat, s, "bar %d inside warmup", i)
	}
}

func TestMomentumProvider_InvalidLookback(t *testing.T) {
	_, err := NewMomentumProvider(0, 0.01)
	assert.ErrorIs(t, err, ErrInvalidLookback)

	_, err = NewMomentumProvider(-3, 0.01)
	assert.ErrorIs(t, err, ErrInvalidLookback)
}

func TestMomentumProvider_InvalidSeries(t *testing.T) {
	p, err := NewMomentumProvider(2, 0.01)
	require.NoError(t, err)

	_, err = p.Signals(nil)
	assert.ErrorIs(t, err, domain.ErrEmptySeries)
}

func TestMeanReversionProvider_Signals(t *testing.T) {
	p, err := NewMeanReversionProvider(2, 0.03)
	require.NoError(t, err)

	// Window of 2 closes ending at the current bar.
	// Index 2: mean(100,110)=105, close 110 -> +4.76% over mean -> short
	// Index 3: mean(110,90)=100,  close 90  -> -10% under mean  -> long
	// Index 4: mean(90,91)=90.5,  close 91  -> +0.55%           -> flat
	series := seriesFromCloses(100, 100, 110, 90, 91)
	signals, err := p.Signals(series)
	require.NoError(t, err)

	want := domain.SignalSeries{
		domain.SignalFlat,
		domain.SignalFlat,
		domain.SignalShort,
		domain.SignalLong,
		domain.SignalFlat,
	}
	assert.Equal(t, want, signals)
}

func TestMeanReversionProvider_InvalidLookback(t *testing.T) {
	_, err := NewMeanReversionProvider(0, 0.02)
	assert.ErrorIs(t, err, ErrInvalidLookback)
}

func TestStubProvider_PadsAndTruncates(t *testing.T) {
	scripted := domain.SignalSeries{domain.SignalLong, domain.SignalShort, domain.SignalLong}
	p := NewStubProvider("stub", scripted)

	assert.Equal(t, "stub", p.ID())

	// Longer input pads with flat.
	long := seriesFromCloses(1, 2, 3, 4, 5)
	signals, err := p.Signals(long)
	require.NoError(t, err)
	want := domain.SignalSeries{
		domain.SignalLong, domain.SignalShort, domain.SignalLong,
		domain.SignalFlat, domain.SignalFlat,
	}
	assert.Equal(t, want, signals)

	// Shorter input truncates.
	short := seriesFromCloses(1, 2)
	signals, err = p.Signals(short)
	require.NoError(t, err)
	assert.Equal(t, domain.SignalSeries{domain.SignalLong, domain.SignalShort}, signals)
}
