package shared

import (
	"slices"
	"time"
)

const (
	// DayLayout is the format layout for parsing calendar day strings.
	DayLayout = "2006-01-02"
)

// Provenance represents the trust level of a candle series.
type Provenance int

const (
	Live Provenance = iota
	Cached
	Synthetic
)

// String stringifies the provided provenance.
func (p Provenance) String() string {
	switch p {
	case Live:
		return "live"
	case Cached:
		return "cached"
	case Synthetic:
		return "synthetic"
	default:
		return "unknown"
	}
}

// Sentiment represents the candle sentiment.
type Sentiment int

const (
	Neutral Sentiment = iota
	Bullish
	Bearish
)

// Candle represents a unit daily candle for a symbol.
type Candle struct {
	Date  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// FetchSentiment returns the provided candle's sentiment.
func (c *Candle) FetchSentiment() Sentiment {
	sentiment := c.Close - c.Open
	switch {
	case sentiment < 0:
		return Bearish
	case sentiment > 0:
		return Bullish
	default:
		return Neutral
	}
}

// SanitizeCandles orders the provided series by date and removes duplicate
// days, keeping the later entry. Externally supplied series are not trusted
// to be monotonic.
func SanitizeCandles(candles []Candle) []Candle {
	if len(candles) == 0 {
		return candles
	}

	set := make([]Candle, len(candles))
	copy(set, candles)

	slices.SortStableFunc(set, func(a, b Candle) int {
		return a.Date.Compare(b.Date)
	})

	deduped := set[:1]
	for idx := 1; idx < len(set); idx++ {
		day := set[idx].Date.Format(DayLayout)
		if day == deduped[len(deduped)-1].Date.Format(DayLayout) {
			// Later entries for the same day overwrite earlier ones.
			deduped[len(deduped)-1] = set[idx]
			continue
		}

		deduped = append(deduped, set[idx])
	}

	return deduped
}
