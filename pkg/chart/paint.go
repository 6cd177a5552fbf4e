package chart

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/raykavin/chartdraw/pkg/core"
	"github.com/raykavin/chartdraw/pkg/primitive"
	"github.com/raykavin/chartdraw/pkg/render"
	"github.com/raykavin/chartdraw/pkg/render/raster"
	"github.com/raykavin/chartdraw/pkg/render/vector"
)

// Format is an image format the chart renders to
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

var layers = []core.ZOrder{core.ZOrderBottom, core.ZOrderNormal, core.ZOrderTop}

// paintOrder lists the pane views bottom layer first, insertion order
// within a layer
func (c *Chart) paintOrder() []primitive.PaneView {
	byLayer := make(map[core.ZOrder][]primitive.PaneView, len(layers))
	for _, d := range c.ordered() {
		for _, view := range d.PaneViews() {
			byLayer[view.ZOrder()] = append(byLayer[view.ZOrder()], view)
		}
	}

	views := make([]primitive.PaneView, 0, len(c.drawings))
	for _, layer := range layers {
		views = append(views, byLayer[layer]...)
	}
	return views
}

// Draw paints background, bottom drawings, candles, then the normal and
// top drawings
func (c *Chart) Draw(canvas render.Canvas) {
	c.Lock()
	defer c.Unlock()

	c.layout()

	t := render.NewTarget(canvas, render.Size{Width: c.width, Height: c.height}, c.hpr, c.vpr)
	t.Scoped(func(canvas render.Canvas) {
		canvas.SetFillColor(c.background)
		size := t.BitmapSize()
		canvas.FillRect(0, 0, size.Width, size.Height)
	})

	views := c.paintOrder()
	candlesPainted := false
	for _, view := range views {
		if !candlesPainted && view.ZOrder() != core.ZOrderBottom {
			c.paintCandles(t)
			candlesPainted = true
		}
		view.Renderer().Draw(t)
	}
	if !candlesPainted {
		c.paintCandles(t)
	}
}

func (c *Chart) paintCandles(t render.Target) {
	first, last := c.timeScale.Bars()
	if last < first {
		return
	}

	bodyWidth := math.Max(1, math.Floor(c.barSpacing*0.8*t.HorizontalPixelRatio))
	wickWidth := math.Max(1, math.Floor(t.HorizontalPixelRatio))

	t.Scoped(func(canvas render.Canvas) {
		for i := first; i <= last; i++ {
			candle := c.candles[i]

			x, _ := c.timeScale.LogicalToCoordinate(float64(i))
			open, ok1 := c.priceScale.PriceToCoordinate(candle.Open)
			closing, ok2 := c.priceScale.PriceToCoordinate(candle.Close)
			high, ok3 := c.priceScale.PriceToCoordinate(candle.High)
			low, ok4 := c.priceScale.PriceToCoordinate(candle.Low)
			if !ok1 || !ok2 || !ok3 || !ok4 {
				continue
			}

			color := c.downColor
			if candle.Bullish() {
				color = c.upColor
			}
			canvas.SetFillColor(color)

			center := math.Round(t.X(x))
			canvas.FillRect(center-math.Floor(wickWidth/2), t.Y(high), wickWidth, math.Max(1, t.Y(low-high)))

			top := t.Y(math.Min(open, closing))
			height := math.Max(1, t.Y(math.Abs(open-closing)))
			canvas.FillRect(center-math.Floor(bodyWidth/2), top, bodyWidth, height)
		}
	})
}

// BitmapSize returns the rendered image size in device pixels
func (c *Chart) BitmapSize() (width, height int) {
	return int(math.Round(c.width * c.hpr)), int(math.Round(c.height * c.vpr))
}

// Render writes the chart as an image
func (c *Chart) Render(w io.Writer, format Format) error {
	started := time.Now()
	defer func() {
		metricRenderSeconds.WithLabelValues(string(format)).Observe(time.Since(started).Seconds())
	}()

	width, height := c.BitmapSize()

	switch format {
	case FormatPNG:
		canvas, err := raster.New(width, height)
		if err != nil {
			return err
		}
		defer canvas.Close()

		c.Draw(canvas)
		if err := canvas.EncodePNG(w); err != nil {
			return fmt.Errorf("failed to encode png: %w", err)
		}
	case FormatSVG:
		canvas, err := vector.New(vector.SVG, width, height)
		if err != nil {
			return err
		}

		c.Draw(canvas)
		if err := canvas.Encode(w); err != nil {
			return fmt.Errorf("failed to encode svg: %w", err)
		}
	default:
		return fmt.Errorf("unsupported image format: %s", format)
	}

	metricRenders.WithLabelValues(string(format)).Inc()
	return nil
}
