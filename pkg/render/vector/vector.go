// Package vector implements render.Canvas on top of a go-chart renderer,
// so drawings can be exported as SVG (or go-chart's own PNG) documents.
package vector

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/raykavin/chartdraw/pkg/render"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Format selects the go-chart backend
type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
)

type state struct {
	stroke   drawing.Color
	fill     drawing.Color
	width    float64
	dash     []float64
	fontSize float64
}

// Canvas adapts go-chart's integer-coordinate renderer. go-chart has no
// state stack, so styles are tracked here and pushed on every paint call.
type Canvas struct {
	r     chart.Renderer
	state state
	stack []state
}

var _ render.Canvas = (*Canvas)(nil)

// New creates a canvas of the given bitmap size in the requested format
func New(format Format, width, height int) (*Canvas, error) {
	provider := chart.SVG
	if format == PNG {
		provider = chart.PNG
	}

	r, err := provider(width, height)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s renderer: %w", format, err)
	}

	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("failed to load default font: %w", err)
	}
	r.SetFont(font)

	return &Canvas{
		r: r,
		state: state{
			stroke:   drawing.ColorBlack,
			fill:     drawing.ColorBlack,
			width:    1,
			fontSize: 12,
		},
	}, nil
}

// Encode writes the finished document
func (c *Canvas) Encode(w io.Writer) error {
	return c.r.Save(w)
}

func toDrawing(value string) drawing.Color {
	n := render.ParseColor(value)
	return drawing.Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

func px(v float64) int { return int(math.Round(v)) }

func (c *Canvas) Save() {
	saved := c.state
	saved.dash = append([]float64(nil), c.state.dash...)
	c.stack = append(c.stack, saved)
}

func (c *Canvas) Restore() {
	if len(c.stack) == 0 {
		return
	}
	c.state = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
}

func (c *Canvas) SetStrokeColor(value string) { c.state.stroke = toDrawing(value) }

func (c *Canvas) SetFillColor(value string) { c.state.fill = toDrawing(value) }

func (c *Canvas) SetLineWidth(width float64) { c.state.width = width }

func (c *Canvas) SetLineDash(pattern []float64) {
	c.state.dash = append([]float64(nil), pattern...)
}

// BeginPath is implicit: go-chart drops the path after every paint call
func (c *Canvas) BeginPath() {}

func (c *Canvas) MoveTo(x, y float64) { c.r.MoveTo(px(x), px(y)) }

func (c *Canvas) LineTo(x, y float64) { c.r.LineTo(px(x), px(y)) }

func (c *Canvas) ClosePath() { c.r.Close() }

func (c *Canvas) Rect(x, y, w, h float64) {
	c.MoveTo(x, y)
	c.LineTo(x+w, y)
	c.LineTo(x+w, y+h)
	c.LineTo(x, y+h)
	c.ClosePath()
}

func (c *Canvas) RoundRect(x, y, w, h, radius float64) {
	radius = math.Min(radius, math.Min(w, h)/2)
	if radius <= 0 {
		c.Rect(x, y, w, h)
		return
	}

	c.MoveTo(x+radius, y)
	c.LineTo(x+w-radius, y)
	c.r.QuadCurveTo(px(x+w), px(y), px(x+w), px(y+radius))
	c.LineTo(x+w, y+h-radius)
	c.r.QuadCurveTo(px(x+w), px(y+h), px(x+w-radius), px(y+h))
	c.LineTo(x+radius, y+h)
	c.r.QuadCurveTo(px(x), px(y+h), px(x), px(y+h-radius))
	c.LineTo(x, y+radius)
	c.r.QuadCurveTo(px(x), px(y), px(x+radius), px(y))
	c.ClosePath()
}

func (c *Canvas) Circle(x, y, radius float64) {
	c.MoveTo(x+radius, y)
	c.r.ArcTo(px(x), px(y), radius, radius, 0, 2*math.Pi-1e-3)
	c.ClosePath()
}

func (c *Canvas) Stroke() {
	c.r.SetStrokeColor(c.state.stroke)
	c.r.SetFillColor(drawing.ColorTransparent)
	c.r.SetStrokeWidth(c.state.width)
	c.r.SetStrokeDashArray(c.state.dash)
	c.r.Stroke()
}

func (c *Canvas) Fill() {
	c.r.SetFillColor(c.state.fill)
	c.r.SetStrokeColor(drawing.ColorTransparent)
	c.r.SetStrokeDashArray(nil)
	c.r.Fill()
}

func (c *Canvas) FillRect(x, y, w, h float64) {
	c.Rect(x, y, w, h)
	c.Fill()
}

func (c *Canvas) SetFontSize(size float64) { c.state.fontSize = size }

func (c *Canvas) MeasureText(s string) (float64, float64) {
	c.r.SetFontSize(c.state.fontSize)
	box := c.r.MeasureText(s)
	return float64(box.Width()), float64(box.Height())
}

func (c *Canvas) FillText(s string, x, y float64) {
	c.r.SetFontSize(c.state.fontSize)
	c.r.SetFontColor(c.state.fill)
	// go-chart positions text on its baseline
	c.r.Text(s, px(x), px(y+c.state.fontSize*0.8))
}

// Color converts a chartdraw color string for callers composing go-chart
// charts around the drawings.
func Color(value string) color.Color {
	return toDrawing(value)
}
