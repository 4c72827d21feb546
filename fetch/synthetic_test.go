package fetch

import (
	"math"
	"testing"

	"github.com/peterldowns/testy/assert"
)

func TestSyntheticSeries(t *testing.T) {
	// Ensure invalid parameters yield no series.
	assert.Equal(t, len(SyntheticSeries(0, SyntheticDays)), 0)
	assert.Equal(t, len(SyntheticSeries(100, 0)), 0)

	// Ensure the series has the requested length and ends near the target
	// price, within rounding.
	const target = 880.08
	candles := SyntheticSeries(target, SyntheticDays)
	assert.Equal(t, len(candles), SyntheticDays)
	assert.True(t, math.Abs(candles[len(candles)-1].Close-target) < 0.01)

	for idx := range candles {
		candle := &candles[idx]

		// Ensure the generated candles satisfy the OHLC invariants.
		assert.True(t, candle.High >= math.Max(candle.Open, candle.Close)-0.01)
		assert.True(t, candle.Low <= math.Min(candle.Open, candle.Close)+0.01)
		assert.True(t, candle.Low > 0)

		// Ensure dates are strictly increasing day by day.
		if idx > 0 {
			assert.True(t, candle.Date.After(candles[idx-1].Date))
		}
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, round2(10.111), 10.11)
	assert.Equal(t, round2(10.116), 10.12)
	assert.Equal(t, round2(-1.006), -1.01)
}
