package fetch

import (
	"math"
	"math/rand"
	"time"

	"github.com/hlchan/folio/shared"
)

const (
	// SyntheticDays is the length of a generated placeholder series.
	SyntheticDays = 120
	// dailyVolatility bounds the day over day close change of a generated
	// series.
	dailyVolatility = 0.025
	// wickVolatility bounds the wick extension beyond the candle body.
	wickVolatility = 0.015
	// driftBias skews the random walk slightly upward.
	driftBias = 0.48
)

// round2 rounds the provided value to two decimal places.
func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// SyntheticSeries generates a placeholder daily candle series ending today,
// scaled so the final close matches the provided target price. It stands in
// for live data when every provider fails and is labeled synthetic by the
// manager.
func SyntheticSeries(targetClose float64, days int) []shared.Candle {
	if days <= 0 || targetClose <= 0 {
		return nil
	}

	price := 100.0
	candles := make([]shared.Candle, days)
	start := time.Now().UTC().AddDate(0, 0, -(days - 1))

	for idx := range candles {
		changePercent := (rand.Float64() - driftBias) * dailyVolatility

		open := price
		close := price * (1 + changePercent)
		high := math.Max(open, close) * (1 + rand.Float64()*wickVolatility)
		low := math.Min(open, close) * (1 - rand.Float64()*wickVolatility)

		candles[idx] = shared.Candle{
			Date:  start.AddDate(0, 0, idx),
			Open:  open,
			High:  high,
			Low:   low,
			Close: close,
		}

		price = close
	}

	scale := targetClose / candles[len(candles)-1].Close
	for idx := range candles {
		candles[idx].Open = round2(candles[idx].Open * scale)
		candles[idx].High = round2(candles[idx].High * scale)
		candles[idx].Low = round2(candles[idx].Low * scale)
		candles[idx].Close = round2(candles[idx].Close * scale)
	}

	return candles
}
