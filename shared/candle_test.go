package shared

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()

	dt, err := time.Parse(DayLayout, value)
	assert.NoError(t, err)

	return dt
}

func TestProvenanceString(t *testing.T) {
	tests := []struct {
		name       string
		provenance Provenance
		want       string
	}{
		{
			name:       "live",
			provenance: Live,
			want:       "live",
		},
		{
			name:       "cached",
			provenance: Cached,
			want:       "cached",
		},
		{
			name:       "synthetic",
			provenance: Synthetic,
			want:       "synthetic",
		},
		{
			name:       "unknown",
			provenance: Provenance(999),
			want:       "unknown",
		},
	}

	for _, test := range tests {
		str := test.provenance.String()
		if str != test.want {
			t.Errorf("%s: expected %v, got %v", test.name, test.want, str)
		}
	}
}

func TestFetchSentiment(t *testing.T) {
	// Ensure a rising candle is bullish.
	candle := &Candle{Open: 5, Close: 8, High: 9, Low: 3}
	assert.Equal(t, candle.FetchSentiment(), Bullish)

	// Ensure a falling candle is bearish.
	candle = &Candle{Open: 8, Close: 5, High: 9, Low: 3}
	assert.Equal(t, candle.FetchSentiment(), Bearish)

	// Ensure a flat candle is neutral.
	candle = &Candle{Open: 5, Close: 5, High: 9, Low: 3}
	assert.Equal(t, candle.FetchSentiment(), Neutral)
}

func TestSanitizeCandles(t *testing.T) {
	// Ensure an empty series passes through unchanged.
	set := SanitizeCandles(nil)
	assert.Equal(t, len(set), 0)

	// Ensure an out of order series is sorted by date.
	candles := []Candle{
		{Date: day(t, "2024-03-06"), Close: 12},
		{Date: day(t, "2024-03-04"), Close: 10},
		{Date: day(t, "2024-03-05"), Close: 11},
	}

	set = SanitizeCandles(candles)
	assert.Equal(t, len(set), 3)
	assert.Equal(t, set[0].Close, float64(10))
	assert.Equal(t, set[1].Close, float64(11))
	assert.Equal(t, set[2].Close, float64(12))

	// Ensure duplicate days are removed, keeping the later entry.
	candles = []Candle{
		{Date: day(t, "2024-03-04"), Close: 10},
		{Date: day(t, "2024-03-05"), Close: 11},
		{Date: day(t, "2024-03-05"), Close: 15},
	}

	set = SanitizeCandles(candles)
	assert.Equal(t, len(set), 2)
	assert.Equal(t, set[1].Close, float64(15))

	// Ensure the source series is not mutated.
	assert.Equal(t, len(candles), 3)
}
