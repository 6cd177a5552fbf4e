// Package raster implements render.Canvas on top of the gg software
// rasterizer, producing device-pixel PNG images.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"github.com/raykavin/chartdraw/pkg/render"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	fontOnce   sync.Once
	fontSource *text.FontSource
	fontErr    error
)

func defaultFont() (*text.FontSource, error) {
	fontOnce.Do(func() {
		fontSource, fontErr = text.NewFontSource(goregular.TTF)
	})
	return fontSource, fontErr
}

type state struct {
	stroke   color.NRGBA
	fill     color.NRGBA
	width    float64
	dash     []float64
	fontSize float64
}

// Canvas is a render.Canvas backed by a gg.Context. gg keeps a single brush
// and no paint stack, so styles are tracked here and applied right before
// every stroke or fill.
type Canvas struct {
	dc    *gg.Context
	font  *text.FontSource
	state state
	stack []state
	err   error
}

var _ render.Canvas = (*Canvas)(nil)

// New creates a raster canvas of the given bitmap size
func New(width, height int) (*Canvas, error) {
	font, err := defaultFont()
	if err != nil {
		return nil, fmt.Errorf("failed to load default font: %w", err)
	}

	return &Canvas{
		dc:   gg.NewContext(width, height),
		font: font,
		state: state{
			stroke:   color.NRGBA{A: 255},
			fill:     color.NRGBA{A: 255},
			width:    1,
			fontSize: 12,
		},
	}, nil
}

// Clear paints the whole surface with a background color
func (c *Canvas) Clear(background string) {
	c.dc.ClearWithColor(gg.FromColor(render.ParseColor(background)))
}

// Image returns the rasterized surface
func (c *Canvas) Image() image.Image {
	return c.dc.Image()
}

// EncodePNG writes the surface as PNG
func (c *Canvas) EncodePNG(w io.Writer) error {
	if c.err != nil {
		return c.err
	}
	return c.dc.EncodePNG(w)
}

// Err returns the first rasterization error
func (c *Canvas) Err() error { return c.err }

// Close releases the underlying context
func (c *Canvas) Close() error {
	return c.dc.Close()
}

func (c *Canvas) keep(err error) {
	if err != nil && c.err == nil {
		c.err = err
	}
}

func (c *Canvas) Save() {
	saved := c.state
	saved.dash = append([]float64(nil), c.state.dash...)
	c.stack = append(c.stack, saved)
	c.dc.Push()
}

func (c *Canvas) Restore() {
	if len(c.stack) == 0 {
		return
	}
	c.state = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	c.dc.Pop()
}

func (c *Canvas) SetStrokeColor(value string) { c.state.stroke = render.ParseColor(value) }

func (c *Canvas) SetFillColor(value string) { c.state.fill = render.ParseColor(value) }

func (c *Canvas) SetLineWidth(width float64) { c.state.width = width }

func (c *Canvas) SetLineDash(pattern []float64) {
	c.state.dash = append([]float64(nil), pattern...)
}

func (c *Canvas) BeginPath() { c.dc.ClearPath() }

func (c *Canvas) MoveTo(x, y float64) { c.dc.MoveTo(x, y) }

func (c *Canvas) LineTo(x, y float64) { c.dc.LineTo(x, y) }

func (c *Canvas) ClosePath() { c.dc.ClosePath() }

func (c *Canvas) Rect(x, y, w, h float64) { c.dc.DrawRectangle(x, y, w, h) }

func (c *Canvas) RoundRect(x, y, w, h, radius float64) {
	c.dc.DrawRoundedRectangle(x, y, w, h, radius)
}

func (c *Canvas) Circle(x, y, radius float64) { c.dc.DrawCircle(x, y, radius) }

func (c *Canvas) Stroke() {
	c.dc.SetColor(c.state.stroke)
	c.dc.SetLineWidth(c.state.width)
	if len(c.state.dash) > 0 {
		c.dc.SetDash(c.state.dash...)
	} else {
		c.dc.ClearDash()
	}
	c.keep(c.dc.Stroke())
}

func (c *Canvas) Fill() {
	c.dc.SetColor(c.state.fill)
	c.keep(c.dc.Fill())
}

func (c *Canvas) FillRect(x, y, w, h float64) {
	c.dc.ClearPath()
	c.dc.DrawRectangle(x, y, w, h)
	c.Fill()
}

func (c *Canvas) SetFontSize(size float64) { c.state.fontSize = size }

func (c *Canvas) MeasureText(s string) (float64, float64) {
	c.dc.SetFont(c.font.Face(c.state.fontSize))
	return c.dc.MeasureString(s)
}

func (c *Canvas) FillText(s string, x, y float64) {
	c.dc.SetFont(c.font.Face(c.state.fontSize))
	c.dc.SetColor(c.state.fill)
	// gg positions text on its baseline
	c.dc.DrawString(s, x, y+c.state.fontSize*0.8)
}
