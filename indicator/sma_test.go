package indicator

import (
	"math"
	"testing"

	"github.com/hlchan/folio/shared"
	"github.com/peterldowns/testy/assert"
)

func closesToCandles(closes []float64) []shared.Candle {
	candles := make([]shared.Candle, len(closes))
	for idx := range closes {
		candles[idx].Close = closes[idx]
	}

	return candles
}

func TestSMA(t *testing.T) {
	// Ensure a non-positive window is rejected.
	_, err := SMA(closesToCandles([]float64{10}), 0)
	assert.Error(t, err)

	// Ensure indices before a full window report no value.
	points, err := SMA(closesToCandles([]float64{10, 20, 30}), 2)
	assert.NoError(t, err)
	assert.Equal(t, len(points), 3)
	assert.False(t, points[0].Valid)
	assert.True(t, points[1].Valid)
	assert.Equal(t, points[1].Value, float64(15))
	assert.True(t, points[2].Valid)
	assert.Equal(t, points[2].Value, float64(25))

	// Ensure a window of one reproduces the closes.
	points, err = SMA(closesToCandles([]float64{10, 20, 30}), 1)
	assert.NoError(t, err)
	for idx, point := range points {
		assert.True(t, point.Valid)
		assert.Equal(t, point.Value, float64(10*(idx+1)))
	}

	// Ensure a window longer than the series yields no valid points.
	points, err = SMA(closesToCandles([]float64{10, 20, 30}), 5)
	assert.NoError(t, err)
	for idx := range points {
		assert.False(t, points[idx].Valid)
	}

	// Ensure an empty series yields an empty result.
	points, err = SMA(nil, 5)
	assert.NoError(t, err)
	assert.Equal(t, len(points), 0)
}

func TestSMASlidingSum(t *testing.T) {
	// Ensure the sliding sum matches a naive re-summation over a long series.
	closes := make([]float64, 500)
	for idx := range closes {
		closes[idx] = float64(idx%37) + 0.25
	}

	const window = 60
	points, err := SMA(closesToCandles(closes), window)
	assert.NoError(t, err)

	for idx := window - 1; idx < len(closes); idx++ {
		var sum float64
		for k := idx - window + 1; k <= idx; k++ {
			sum += closes[k]
		}

		want := sum / window
		if math.Abs(points[idx].Value-want) > 1e-9 {
			t.Fatalf("index %d: expected %v, got %v", idx, want, points[idx].Value)
		}
	}
}
