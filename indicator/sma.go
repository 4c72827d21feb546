package indicator

import (
	"fmt"
	"time"

	"github.com/hlchan/folio/shared"
)

// SMAPoint represents a unit simple moving average entry.
type SMAPoint struct {
	Date  time.Time
	Value float64
	Valid bool
}

// SMA computes the simple moving average of candle closes over the provided
// window. The returned series has the same length as the input; entries
// before a full window of history are marked invalid rather than reporting a
// partial average. The computation maintains a sliding sum so large windows
// stay linear in the series length.
func SMA(candles []shared.Candle, window int) ([]SMAPoint, error) {
	if window < 1 {
		return nil, fmt.Errorf("sma window must be positive, got %d", window)
	}

	points := make([]SMAPoint, len(candles))

	var sum float64
	for idx := range candles {
		sum += candles[idx].Close
		if idx >= window {
			sum -= candles[idx-window].Close
		}

		points[idx] = SMAPoint{Date: candles[idx].Date}
		if idx >= window-1 {
			points[idx].Value = sum / float64(window)
			points[idx].Valid = true
		}
	}

	return points, nil
}
