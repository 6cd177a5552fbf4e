package annotation

import (
	"math"

	"github.com/raykavin/chartdraw/pkg/core"
	"github.com/raykavin/chartdraw/pkg/geometry"
	"github.com/raykavin/chartdraw/pkg/primitive"
	"github.com/raykavin/chartdraw/pkg/render"
)

// RectangleData holds two opposite corners
type RectangleData struct {
	P1 core.AnchorPoint `json:"p1"`
	P2 core.AnchorPoint `json:"p2"`
}

// RectangleOptions configures a rectangle. Style strokes the borders.
type RectangleOptions struct {
	Style
	FillColor       string              `json:"fillColor"`
	Extend          geometry.ExtendMode `json:"extend"`
	ShowMiddleLine  bool                `json:"showMiddleLine"`
	MiddleLineColor string              `json:"middleLineColor"`
	MiddleLineStyle core.LineStyle      `json:"middleLineStyle"`

	// InteriorHit makes a click anywhere inside the fill a hit, not only
	// near a border
	InteriorHit bool `json:"interiorHit"`

	// EdgeHandles adds the two remaining corners and four edge midpoints
	// to the two anchor handles
	EdgeHandles bool `json:"edgeHandles"`
}

// DefaultRectangleOptions returns the defaults of a rectangle
func DefaultRectangleOptions() RectangleOptions {
	return RectangleOptions{
		Style:           defaultStyle("#9c27b0"),
		FillColor:       "rgba(156, 39, 176, 0.2)",
		Extend:          geometry.ExtendNone,
		MiddleLineColor: "#9c27b0",
		MiddleLineStyle: core.LineDashed,
	}
}

// RectangleSnapshot is the projected rectangle
type RectangleSnapshot struct {
	X1, Y1, X2, Y2 core.Coordinate
	Width          float64
	Options        RectangleOptions
}

func (s RectangleSnapshot) valid() bool {
	return core.AllValid(s.X1, s.Y1, s.X2, s.Y2)
}

// Extent returns the horizontal fill range after applying the extend mode
func (s RectangleSnapshot) Extent() (left, right float64) {
	return geometry.HorizontalExtent(s.X1.V, s.X2.V, s.Width, s.Options.Extend)
}

// Bounds returns the filled area in media pixels
func (s RectangleSnapshot) Bounds() geometry.Rect {
	left, right := s.Extent()
	return geometry.Rect{
		Left:   left,
		Top:    math.Min(s.Y1.V, s.Y2.V),
		Right:  right,
		Bottom: math.Max(s.Y1.V, s.Y2.V),
	}
}

// borders lists the stroked edges. An extended side has no border.
func (s RectangleSnapshot) borders() []geometry.Segment {
	b := s.Bounds()
	borders := []geometry.Segment{
		geometry.Horizontal(b.Left, b.Right, b.Top),
		geometry.Horizontal(b.Left, b.Right, b.Bottom),
	}
	if !s.Options.Extend.ExtendsLeft() {
		borders = append(borders, geometry.Vertical(b.Left, b.Top, b.Bottom))
	}
	if !s.Options.Extend.ExtendsRight() {
		borders = append(borders, geometry.Vertical(b.Right, b.Top, b.Bottom))
	}
	return borders
}

func (s RectangleSnapshot) middleLine() geometry.Segment {
	b := s.Bounds()
	return geometry.Horizontal(b.Left, b.Right, b.MidY())
}

// handles are p1 and p2, then with EdgeHandles the corners (x1, y2) and
// (x2, y1) and the midpoints of the y1, x2, y2 and x1 edges
func (s RectangleSnapshot) handles() []handle {
	x1, y1, x2, y2 := s.X1.V, s.Y1.V, s.X2.V, s.Y2.V
	handles := []handle{
		{at: geometry.Pt(x1, y1), cursor: core.CursorNWSEResize},
		{at: geometry.Pt(x2, y2), cursor: core.CursorNWSEResize},
	}
	if !s.Options.EdgeHandles {
		return handles
	}

	mx, my := (x1+x2)/2, (y1+y2)/2
	return append(handles,
		handle{at: geometry.Pt(x1, y2), cursor: core.CursorNWSEResize},
		handle{at: geometry.Pt(x2, y1), cursor: core.CursorNWSEResize},
		handle{at: geometry.Pt(mx, y1), cursor: core.CursorNSResize},
		handle{at: geometry.Pt(x2, my), cursor: core.CursorEWResize},
		handle{at: geometry.Pt(mx, y2), cursor: core.CursorNSResize},
		handle{at: geometry.Pt(x1, my), cursor: core.CursorEWResize},
	)
}

type rectangle struct{}

// Rectangle is a box between two corners, drawn behind the series
type Rectangle = primitive.Primitive[RectangleData, RectangleOptions, RectangleSnapshot]

// NewRectangle creates a detached rectangle
func NewRectangle(data RectangleData, options ...func(*RectangleOptions)) *Rectangle {
	return primitive.New[RectangleData, RectangleOptions, RectangleSnapshot](
		rectangle{}, data, DefaultRectangleOptions(), options...)
}

func (rectangle) Type() string { return string(TypeRectangle) }

func (rectangle) ZOrder() core.ZOrder { return core.ZOrderBottom }

func (rectangle) Normalize(o RectangleOptions) RectangleOptions {
	o.Style = o.Style.normalized()
	if mode, err := geometry.ParseExtendMode(string(o.Extend)); err == nil {
		o.Extend = mode
	} else {
		o.Extend = geometry.ExtendNone
	}
	if !o.MiddleLineStyle.Valid() {
		o.MiddleLineStyle = core.LineDashed
	}
	return o
}

func (rectangle) Project(host *primitive.Host, data RectangleData, opts RectangleOptions) RectangleSnapshot {
	x1, y1 := project(host, data.P1)
	x2, y2 := project(host, data.P2)
	return RectangleSnapshot{X1: x1, Y1: y1, X2: x2, Y2: y2, Width: host.Chart.Width(), Options: opts}
}

func (rectangle) Draw(t render.Target, s RectangleSnapshot) {
	if !s.valid() {
		return
	}

	opts := s.Options
	b := s.Bounds()
	t.Scoped(func(c render.Canvas) {
		c.SetFillColor(opts.FillColor)
		c.FillRect(t.X(b.Left), t.Y(b.Top), t.X(b.Width()), t.Y(b.Height()))

		borders := s.borders()
		width := float64(opts.Width)

		// top and bottom come first
		render.ApplyLineStyle(c, opts.Color, t.HorizontalStroke(width), opts.LineStyle)
		for _, border := range borders[:2] {
			strokeSegment(t, border)
		}
		if len(borders) > 2 {
			render.ApplyLineStyle(c, opts.Color, t.VerticalStroke(width), opts.LineStyle)
			for _, border := range borders[2:] {
				strokeSegment(t, border)
			}
		}

		if opts.ShowMiddleLine {
			render.ApplyLineStyle(c, opts.MiddleLineColor, t.HorizontalStroke(width), opts.MiddleLineStyle)
			strokeSegment(t, s.middleLine())
		}
	})

	if opts.Selected {
		drawHandles(t, opts.AnchorColor, s.handles())
	}
}

func (rectangle) HitTest(s RectangleSnapshot, x, y float64) (core.HoverResult, bool) {
	if !s.valid() {
		return core.HoverResult{}, false
	}

	id := s.Options.ExternalID
	if s.Options.Selected {
		if hit, ok := hitHandles(id, s.handles(), x, y); ok {
			return hit, true
		}
	}

	p := geometry.Pt(x, y)
	for _, border := range s.borders() {
		if border.Near(p, HitTolerance) {
			return core.BodyHit(id, core.CursorPointer), true
		}
	}

	if s.Options.ShowMiddleLine && s.middleLine().Near(p, HitTolerance) {
		return core.BodyHit(id, core.CursorPointer), true
	}

	if s.Options.InteriorHit && s.Bounds().Contains(p) {
		return core.BodyHit(id, core.CursorMove), true
	}
	return core.HoverResult{}, false
}

func (rectangle) Autoscale(host *primitive.Host, data RectangleData, _ RectangleOptions, start, end float64) (core.PriceRange, bool) {
	spanStart, spanEnd, ok := logicalSpan(host.Chart, data.P1.Time, data.P2.Time)
	if !ok || !geometry.SpansOverlap(start, end, spanStart, spanEnd) {
		return core.PriceRange{}, false
	}
	return geometry.PriceSpan(data.P1.Price, data.P2.Price), true
}
