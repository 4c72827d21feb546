package chart

import (
	"math"
	"time"

	"github.com/hlchan/folio/shared"
)

const (
	// minPriceRange keeps the vertical scale non-degenerate when every
	// visible price is equal.
	minPriceRange = 1.0
	// costLineTolerance is the band outside [0, 100] within which the cost
	// line is still drawn. A cost far off the visible range is suppressed
	// rather than pinned misleadingly to the chart edge.
	costLineTolerance = 10.0
	// minBodyHeight is the minimum candle body height in percent, so a flat
	// candle still renders a visible body.
	minBodyHeight = 0.5
)

// CandleGeometry represents a rendered candle in percent coordinates: x in
// percent of plot width, y values in percent of plot height with zero at the
// top.
type CandleGeometry struct {
	X          float64
	WickTop    float64
	WickBottom float64
	BodyTop    float64
	BodyHeight float64
	Bullish    bool
}

// PathPoint represents a unit point of an overlay path in percent coordinates.
type PathPoint struct {
	X float64
	Y float64
}

// OverlayPath represents the rendered path of an enabled moving average
// overlay across the visible window.
type OverlayPath struct {
	Window int
	Points []PathPoint
}

// OverlayValue represents an overlay's value at the hovered candle.
type OverlayValue struct {
	Window int
	Value  float64
	Valid  bool
}

// HoverInfo represents the crosshair data under the pointer.
type HoverInfo struct {
	// Index is the hovered candle's index within the visible window.
	Index int
	// Candle is the hovered candle.
	Candle shared.Candle
	// Overlays holds the enabled overlay values at the hovered candle.
	Overlays []OverlayValue
	// X is the crosshair center in percent of plot width.
	X float64
}

// Frame represents the rendered geometry of the visible window.
type Frame struct {
	Candles     []CandleGeometry
	Overlays    []OverlayPath
	CostLineY   float64
	HasCostLine bool
	YMin        float64
	YMax        float64
	StartDate   time.Time
	EndDate     time.Time
}

// Scale computes the padded vertical price range of the visible window. The
// range covers all visible highs and lows, the visible values of enabled
// overlays and the cost basis reference price.
func (v *Viewport) Scale() (float64, float64) {
	visible := v.VisibleCandles()
	if len(visible) == 0 {
		return 0, minPriceRange
	}

	minPrice := math.Inf(1)
	maxPrice := math.Inf(-1)
	for idx := range visible {
		minPrice = math.Min(minPrice, visible[idx].Low)
		maxPrice = math.Max(maxPrice, visible[idx].High)
	}

	start, end := v.Window()
	for idx := range v.overlays {
		if !v.overlays[idx].enabled {
			continue
		}

		for _, point := range v.overlays[idx].points[start:end] {
			if !point.Valid {
				continue
			}

			minPrice = math.Min(minPrice, point.Value)
			maxPrice = math.Max(maxPrice, point.Value)
		}
	}

	if v.costBasis > 0 {
		minPrice = math.Min(minPrice, v.costBasis)
		maxPrice = math.Max(maxPrice, v.costBasis)
	}

	priceRange := maxPrice - minPrice
	if priceRange <= 0 {
		priceRange = minPriceRange
	}

	yMin := minPrice - priceRange*v.verticalPadding
	yMax := maxPrice + priceRange*v.verticalPadding

	return yMin, yMax
}

// PriceY maps a price to its vertical position in percent of plot height.
func (v *Viewport) PriceY(price float64) float64 {
	yMin, yMax := v.Scale()
	return (yMax - price) / (yMax - yMin) * 100
}

// CostLineY resolves the cost basis reference line position. The line is
// drawn only when its position falls within the tolerance band around the
// visible range, and the drawn value is clamped to [0, 100].
func (v *Viewport) CostLineY() (float64, bool) {
	if v.costBasis <= 0 || len(v.VisibleCandles()) == 0 {
		return 0, false
	}

	y := v.PriceY(v.costBasis)
	if y < -costLineTolerance || y > 100+costLineTolerance {
		return 0, false
	}

	return clampFloat(y, 0, 100), true
}

// Hover resolves the candle under the provided pointer x position within the
// plot area, with the enabled overlay values at the same index. It returns
// false when the pointer is outside the plot bounds.
func (v *Viewport) Hover(x float64) (*HoverInfo, bool) {
	visible := v.VisibleCandles()
	if x < 0 || x > v.plotWidth || len(visible) == 0 {
		return nil, false
	}

	count := len(visible)
	idx := int(x / v.plotWidth * float64(count))
	if idx > count-1 {
		idx = count - 1
	}

	info := &HoverInfo{
		Index:  idx,
		Candle: visible[idx],
		X:      float64(idx)/float64(count)*100 + 100/float64(count)/2,
	}

	start, _ := v.Window()
	for k := range v.overlays {
		if !v.overlays[k].enabled {
			continue
		}

		point := v.overlays[k].points[start+idx]
		info.Overlays = append(info.Overlays, OverlayValue{
			Window: v.overlays[k].window,
			Value:  point.Value,
			Valid:  point.Valid,
		})
	}

	return info, true
}

// Render produces the geometry of the visible window in percent coordinates.
func (v *Viewport) Render() Frame {
	visible := v.VisibleCandles()
	yMin, yMax := v.Scale()

	frame := Frame{
		YMin: yMin,
		YMax: yMax,
	}

	if len(visible) == 0 {
		return frame
	}

	frame.StartDate = visible[0].Date
	frame.EndDate = visible[len(visible)-1].Date
	frame.CostLineY, frame.HasCostLine = v.CostLineY()

	count := float64(len(visible))
	frame.Candles = make([]CandleGeometry, len(visible))
	for idx := range visible {
		candle := &visible[idx]

		yOpen := v.PriceY(candle.Open)
		yClose := v.PriceY(candle.Close)
		bodyHeight := math.Abs(yOpen - yClose)
		if bodyHeight < minBodyHeight {
			bodyHeight = minBodyHeight
		}

		frame.Candles[idx] = CandleGeometry{
			X:          float64(idx)/count*100 + 100/count/2,
			WickTop:    v.PriceY(candle.High),
			WickBottom: v.PriceY(candle.Low),
			BodyTop:    math.Min(yOpen, yClose),
			BodyHeight: bodyHeight,
			Bullish:    candle.FetchSentiment() != shared.Bearish,
		}
	}

	start, end := v.Window()
	for k := range v.overlays {
		if !v.overlays[k].enabled {
			continue
		}

		path := OverlayPath{Window: v.overlays[k].window}
		for idx, point := range v.overlays[k].points[start:end] {
			if !point.Valid {
				continue
			}

			path.Points = append(path.Points, PathPoint{
				X: float64(idx)/count*100 + 100/count/2,
				Y: v.PriceY(point.Value),
			})
		}

		frame.Overlays = append(frame.Overlays, path)
	}

	return frame
}
