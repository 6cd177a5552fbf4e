package annotation

import (
	"github.com/raykavin/chartdraw/pkg/core"
	"github.com/raykavin/chartdraw/pkg/geometry"
	"github.com/raykavin/chartdraw/pkg/primitive"
	"github.com/raykavin/chartdraw/pkg/render"
)

// HorizontalRayData is the point a ray starts from
type HorizontalRayData struct {
	Anchor core.AnchorPoint `json:"anchor"`
}

// HorizontalRayOptions configures a horizontal ray
type HorizontalRayOptions struct {
	Style
}

// DefaultHorizontalRayOptions returns the defaults of a horizontal ray
func DefaultHorizontalRayOptions() HorizontalRayOptions {
	return HorizontalRayOptions{Style: defaultStyle("#ff9800")}
}

// HorizontalRaySnapshot is the projected ray
type HorizontalRaySnapshot struct {
	X, Y    core.Coordinate
	Width   float64
	Options HorizontalRayOptions
}

func (s HorizontalRaySnapshot) segment() geometry.Segment {
	return geometry.Horizontal(s.X.V, s.Width, s.Y.V)
}

type horizontalRay struct{}

// HorizontalRay runs from its anchor to the right edge of the chart
type HorizontalRay = primitive.Primitive[HorizontalRayData, HorizontalRayOptions, HorizontalRaySnapshot]

// NewHorizontalRay creates a detached horizontal ray
func NewHorizontalRay(data HorizontalRayData, options ...func(*HorizontalRayOptions)) *HorizontalRay {
	return primitive.New[HorizontalRayData, HorizontalRayOptions, HorizontalRaySnapshot](
		horizontalRay{}, data, DefaultHorizontalRayOptions(), options...)
}

func (horizontalRay) Type() string { return string(TypeHorizontalRay) }

func (horizontalRay) ZOrder() core.ZOrder { return core.ZOrderNormal }

func (horizontalRay) Normalize(o HorizontalRayOptions) HorizontalRayOptions {
	o.Style = o.Style.normalized()
	return o
}

func (horizontalRay) Project(host *primitive.Host, data HorizontalRayData, opts HorizontalRayOptions) HorizontalRaySnapshot {
	x, y := project(host, data.Anchor)
	return HorizontalRaySnapshot{X: x, Y: y, Width: host.Chart.Width(), Options: opts}
}

func (horizontalRay) Draw(t render.Target, s HorizontalRaySnapshot) {
	if !core.AllValid(s.X, s.Y) {
		return
	}

	opts := s.Options
	t.Scoped(func(c render.Canvas) {
		width := t.HorizontalStroke(float64(opts.Width))
		y := crisp(t.Y(s.Y.V), width)

		render.ApplyLineStyle(c, opts.Color, width, opts.LineStyle)
		c.BeginPath()
		c.MoveTo(t.X(s.X.V), y)
		c.LineTo(t.X(s.Width), y)
		c.Stroke()
	})

	if opts.Selected {
		drawHandles(t, opts.AnchorColor, []handle{{at: point(s.X, s.Y), cursor: core.CursorMove}})
	}
}

func (horizontalRay) HitTest(s HorizontalRaySnapshot, x, y float64) (core.HoverResult, bool) {
	if !core.AllValid(s.X, s.Y) {
		return core.HoverResult{}, false
	}

	id := s.Options.ExternalID
	anchor := point(s.X, s.Y)
	if s.Options.Selected {
		if hit, ok := hitHandles(id, []handle{{at: anchor, cursor: core.CursorMove}}, x, y); ok {
			return hit, true
		}
	}

	p := geometry.Pt(x, y)
	if s.segment().Near(p, HitTolerance) || anchor.Distance(p) <= HitTolerance {
		return core.BodyHit(id, core.CursorPointer), true
	}
	return core.HoverResult{}, false
}

// Autoscale contributes the ray price once the visible range reaches the
// anchor
func (horizontalRay) Autoscale(host *primitive.Host, data HorizontalRayData, _ HorizontalRayOptions, _, end float64) (core.PriceRange, bool) {
	anchor, _, ok := logicalSpan(host.Chart, data.Anchor.Time)
	if !ok || end < anchor {
		return core.PriceRange{}, false
	}
	return core.PriceRange{Min: data.Anchor.Price, Max: data.Anchor.Price}, true
}
