package chart

import (
	"fmt"
	"math"

	"github.com/hlchan/folio/indicator"
	"github.com/hlchan/folio/shared"
)

const (
	// MinVisibleCount is the narrowest allowed visible window.
	MinVisibleCount = 10
	// DefaultVisibleCount is the visible window of the default view.
	DefaultVisibleCount = 60
	// MinVerticalPadding is the tightest allowed vertical scale padding.
	MinVerticalPadding = 0.01
	// MaxVerticalPadding is the loosest allowed vertical scale padding.
	MaxVerticalPadding = 0.45
	// DefaultVerticalPadding is the vertical scale padding of the default view.
	DefaultVerticalPadding = 0.10

	// zoomXSensitivity converts horizontal drag pixels into visible count deltas.
	zoomXSensitivity = 0.5
	// zoomYSensitivity converts vertical drag pixels into padding deltas.
	zoomYSensitivity = 0.005
	// defaultPlotWidth is the assumed plot width in pixels until one is set.
	defaultPlotWidth = 800
)

// DragMode identifies the active drag gesture of a viewport.
type DragMode int

const (
	DragNone DragMode = iota
	DragPan
	DragZoomX
	DragZoomY
)

// String stringifies the provided drag mode.
func (m DragMode) String() string {
	switch m {
	case DragNone:
		return "none"
	case DragPan:
		return "pan"
	case DragZoomX:
		return "horizontal zoom"
	case DragZoomY:
		return "vertical zoom"
	default:
		return "unknown"
	}
}

// drag captures the gesture in progress and the viewport state at its start.
// The zero value means no gesture is active.
type drag struct {
	mode            DragMode
	startX          float64
	startY          float64
	offsetFromEnd   int
	visibleCount    int
	verticalPadding float64
}

// OverlayConfig represents a moving average overlay available on a viewport.
type OverlayConfig struct {
	// Window is the moving average window in days.
	Window int
	// Enabled toggles the overlay's participation in rendering and scaling.
	Enabled bool
}

// overlay holds a configured overlay and its computed series.
type overlay struct {
	window  int
	enabled bool
	points  []indicator.SMAPoint
}

// ViewportConfig represents the viewport configuration.
type ViewportConfig struct {
	// Candles is the rendered candle series.
	Candles []shared.Candle
	// Overlays are the moving average overlays available on the chart.
	Overlays []OverlayConfig
	// CostBasis is the cost basis reference price, zero when absent.
	CostBasis float64
	// PlotWidth is the plot area width in pixels.
	PlotWidth float64
}

// Viewport owns the visible window and vertical scale of a chart over a
// candle series, and the drag gesture state machine that mutates them. It is
// owned by a single chart instance and is not safe for concurrent use.
type Viewport struct {
	candles   []shared.Candle
	overlays  []overlay
	costBasis float64
	plotWidth float64

	visibleCount    int
	offsetFromEnd   int
	verticalPadding float64

	drag drag
}

// NewViewport initializes a viewport over the provided series in the default
// view.
func NewViewport(cfg *ViewportConfig) (*Viewport, error) {
	v := &Viewport{
		costBasis: cfg.CostBasis,
		plotWidth: cfg.PlotWidth,
	}

	if v.plotWidth <= 0 {
		v.plotWidth = defaultPlotWidth
	}

	for idx := range cfg.Overlays {
		if cfg.Overlays[idx].Window < 1 {
			return nil, fmt.Errorf("overlay window must be positive, got %d", cfg.Overlays[idx].Window)
		}

		v.overlays = append(v.overlays, overlay{
			window:  cfg.Overlays[idx].Window,
			enabled: cfg.Overlays[idx].Enabled,
		})
	}

	v.SetCandles(cfg.Candles)

	return v, nil
}

// SetCandles replaces the underlying series. The view state resets to the
// default view because the series identity changed.
func (v *Viewport) SetCandles(candles []shared.Candle) {
	v.candles = candles

	for idx := range v.overlays {
		// The windows were validated at construction, so the recompute
		// cannot fail.
		points, _ := indicator.SMA(candles, v.overlays[idx].window)
		v.overlays[idx].points = points
	}

	v.Reset()
}

// SetCostBasis updates the cost basis reference price. A zero price removes
// the reference line.
func (v *Viewport) SetCostBasis(price float64) {
	v.costBasis = price
}

// SetPlotWidth updates the plot area width used for pixel conversions.
func (v *Viewport) SetPlotWidth(width float64) {
	if width > 0 {
		v.plotWidth = width
	}
}

// SetOverlayEnabled toggles the overlay with the provided window.
func (v *Viewport) SetOverlayEnabled(window int, enabled bool) error {
	for idx := range v.overlays {
		if v.overlays[idx].window == window {
			v.overlays[idx].enabled = enabled
			return nil
		}
	}

	return fmt.Errorf("no overlay configured with window %d", window)
}

// Reset restores the default view and terminates any active gesture.
func (v *Viewport) Reset() {
	v.visibleCount = DefaultVisibleCount
	v.offsetFromEnd = 0
	v.verticalPadding = DefaultVerticalPadding
	v.drag = drag{}
}

// TotalCount returns the length of the underlying series.
func (v *Viewport) TotalCount() int {
	return len(v.candles)
}

// VisibleCount returns the effective visible candle count after clamping.
func (v *Viewport) VisibleCount() int {
	count := v.visibleCount
	if count > len(v.candles) {
		count = len(v.candles)
	}
	if count < MinVisibleCount {
		count = MinVisibleCount
	}

	return count
}

// OffsetFromEnd returns the effective offset from the most recent candle
// after clamping. A zero offset means the most recent data is visible.
func (v *Viewport) OffsetFromEnd() int {
	maxOffset := len(v.candles) - v.VisibleCount()
	if maxOffset < 0 {
		maxOffset = 0
	}

	offset := v.offsetFromEnd
	if offset > maxOffset {
		offset = maxOffset
	}
	if offset < 0 {
		offset = 0
	}

	return offset
}

// VerticalPadding returns the vertical scale padding ratio.
func (v *Viewport) VerticalPadding() float64 {
	return v.verticalPadding
}

// SetVisibleCount requests a visible candle count. Out of range values are
// silently clamped on read.
func (v *Viewport) SetVisibleCount(count int) {
	v.visibleCount = count
}

// SetOffsetFromEnd requests an offset from the most recent candle. Out of
// range values are silently clamped on read.
func (v *Viewport) SetOffsetFromEnd(offset int) {
	v.offsetFromEnd = offset
}

// SetVerticalPadding requests a vertical scale padding ratio, clamped to the
// allowed range.
func (v *Viewport) SetVerticalPadding(padding float64) {
	v.verticalPadding = clampFloat(padding, MinVerticalPadding, MaxVerticalPadding)
}

// Window returns the visible slice bounds [start, end) of the series.
func (v *Viewport) Window() (int, int) {
	total := len(v.candles)
	start := total - v.VisibleCount() - v.OffsetFromEnd()
	if start < 0 {
		start = 0
	}

	end := start + v.VisibleCount()
	if end > total {
		end = total
	}

	return start, end
}

// VisibleCandles returns the visible slice of the series.
func (v *Viewport) VisibleCandles() []shared.Candle {
	start, end := v.Window()
	return v.candles[start:end]
}

// Mode returns the active drag mode.
func (v *Viewport) Mode() DragMode {
	return v.drag.mode
}

// BeginDrag starts a drag gesture of the provided mode at the pointer
// position. A gesture already in progress is exclusive and cannot be
// replaced until it ends.
func (v *Viewport) BeginDrag(mode DragMode, x float64, y float64) {
	if mode == DragNone || v.drag.mode != DragNone {
		return
	}

	v.drag = drag{
		mode:            mode,
		startX:          x,
		startY:          y,
		offsetFromEnd:   v.OffsetFromEnd(),
		visibleCount:    v.VisibleCount(),
		verticalPadding: v.verticalPadding,
	}
}

// Drag applies pointer movement to the active gesture. It reports whether a
// gesture consumed the movement.
func (v *Viewport) Drag(x float64, y float64) bool {
	deltaX := x - v.drag.startX
	deltaY := y - v.drag.startY

	switch v.drag.mode {
	case DragNone:
		return false
	case DragPan:
		candleWidth := v.plotWidth / float64(v.drag.visibleCount)
		if candleWidth > 0 {
			moved := int(math.Round(deltaX / candleWidth))
			v.offsetFromEnd = v.drag.offsetFromEnd + moved
		}
	case DragZoomX:
		// Dragging left narrows the window, zooming in on recent candles.
		delta := int(math.Round(deltaX * zoomXSensitivity))
		v.visibleCount = v.drag.visibleCount + delta
	case DragZoomY:
		padding := v.drag.verticalPadding - deltaY*zoomYSensitivity
		v.verticalPadding = clampFloat(padding, MinVerticalPadding, MaxVerticalPadding)
	}

	return true
}

// EndDrag terminates any active gesture unconditionally. It handles both
// pointer up and pointer leave, so a dropped gesture can never leave the
// state machine stuck in a drag mode.
func (v *Viewport) EndDrag() {
	v.drag = drag{}
}

// clampFloat clamps the provided value to [lower, upper].
func clampFloat(value float64, lower float64, upper float64) float64 {
	switch {
	case value < lower:
		return lower
	case value > upper:
		return upper
	default:
		return value
	}
}
