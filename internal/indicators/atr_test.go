package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaidJacobo/forex-ml-bot-sub000/pkg/types"
)

func rangeBars(n int, rng float64) []types.Bar {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, n)
	for i := range bars {
		bars[i] = types.Bar{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      1.2000,
			High:      1.2000 + rng/2,
			Low:       1.2000 - rng/2,
			Close:     1.2000,
		}
	}
	return bars
}

func TestATRInsufficientData(t *testing.T) {
	atr := NewATR(14)
	_, err := atr.Calculate(rangeBars(5, 0.0010))
	require.Error(t, err)
}

func TestATRConstantRange(t *testing.T) {
	// Identical bars produce a constant true range, so the smoothed value
	// equals the bar range exactly.
	atr := NewATR(14)
	v, err := atr.Calculate(rangeBars(30, 0.0010))
	require.NoError(t, err)
	assert.InDelta(t, 0.0010, v, 1e-12)
	assert.InDelta(t, 0.0010, atr.Value(), 1e-12)
}

func TestATRIncrementalUpdates(t *testing.T) {
	atr := NewATR(3)
	bars := rangeBars(10, 0.0010)

	_, err := atr.Calculate(bars)
	require.NoError(t, err)

	// Fold in a wider bar: the ATR must rise but stay below the new range.
	wide := types.Bar{
		Timestamp: bars[len(bars)-1].Timestamp.Add(time.Hour),
		Open:      1.2000,
		High:      1.2025,
		Low:       1.1975,
		Close:     1.2000,
	}
	v, err := atr.Calculate(append(bars, wide))
	require.NoError(t, err)
	assert.Greater(t, v, 0.0010)
	assert.Less(t, v, 0.0050)
}

func TestATRRequiredPeriods(t *testing.T) {
	assert.Equal(t, 15, NewATR(14).RequiredPeriods())
}

func TestATRReset(t *testing.T) {
	atr := NewATR(3)
	_, err := atr.Calculate(rangeBars(10, 0.0010))
	require.NoError(t, err)
	require.Greater(t, atr.Value(), 0.0)

	atr.Reset()
	assert.Equal(t, 0.0, atr.Value())

	// Warms again from scratch after a reset.
	v, err := atr.Calculate(rangeBars(10, 0.0020))
	require.NoError(t, err)
	assert.InDelta(t, 0.0020, v, 1e-12)
}

func TestEMAConvergesTowardInput(t *testing.T) {
	ema := NewEMA(5)
	assert.Equal(t, 0.0, ema.Value())

	ema.Update(10)
	assert.Equal(t, 10.0, ema.Value()) // first sample seeds the average

	for i := 0; i < 50; i++ {
		ema.Update(20)
	}
	assert.InDelta(t, 20, ema.Value(), 1e-6)
}
