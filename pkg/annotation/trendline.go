package annotation

import (
	"github.com/raykavin/chartdraw/pkg/core"
	"github.com/raykavin/chartdraw/pkg/geometry"
	"github.com/raykavin/chartdraw/pkg/primitive"
	"github.com/raykavin/chartdraw/pkg/render"
)

// TrendLineData holds the two anchors of a trend line
type TrendLineData struct {
	P1 core.AnchorPoint `json:"p1"`
	P2 core.AnchorPoint `json:"p2"`
}

// TrendLineOptions configures a trend line
type TrendLineOptions struct {
	Style
	// Extend continues the line past p2 up to the chart boundary
	Extend bool `json:"extend"`
}

// DefaultTrendLineOptions returns the defaults of a trend line
func DefaultTrendLineOptions() TrendLineOptions {
	return TrendLineOptions{Style: defaultStyle("#2962ff")}
}

// TrendLineSnapshot is the projected trend line
type TrendLineSnapshot struct {
	X1, Y1, X2, Y2 core.Coordinate
	Width, Height  float64
	Options        TrendLineOptions
}

func (s TrendLineSnapshot) valid() bool {
	return core.AllValid(s.X1, s.Y1, s.X2, s.Y2)
}

// Segment returns the visible segment, ending on the chart boundary when
// the line is extended
func (s TrendLineSnapshot) Segment() geometry.Segment {
	p1, p2 := point(s.X1, s.Y1), point(s.X2, s.Y2)
	if s.Options.Extend {
		if end, ok := geometry.ExtendRay(p1, p2, s.Width, s.Height); ok {
			return geometry.Seg(p1, end)
		}
	}
	return geometry.Seg(p1, p2)
}

func (s TrendLineSnapshot) handles() []handle {
	return []handle{
		{at: point(s.X1, s.Y1), cursor: core.CursorMove},
		{at: point(s.X2, s.Y2), cursor: core.CursorMove},
	}
}

type trendLine struct{}

// TrendLine connects two anchors
type TrendLine = primitive.Primitive[TrendLineData, TrendLineOptions, TrendLineSnapshot]

// NewTrendLine creates a detached trend line
func NewTrendLine(data TrendLineData, options ...func(*TrendLineOptions)) *TrendLine {
	return primitive.New[TrendLineData, TrendLineOptions, TrendLineSnapshot](
		trendLine{}, data, DefaultTrendLineOptions(), options...)
}

func (trendLine) Type() string { return string(TypeTrendLine) }

func (trendLine) ZOrder() core.ZOrder { return core.ZOrderNormal }

func (trendLine) Normalize(o TrendLineOptions) TrendLineOptions {
	o.Style = o.Style.normalized()
	return o
}

func (trendLine) Project(host *primitive.Host, data TrendLineData, opts TrendLineOptions) TrendLineSnapshot {
	x1, y1 := project(host, data.P1)
	x2, y2 := project(host, data.P2)
	return TrendLineSnapshot{
		X1: x1, Y1: y1, X2: x2, Y2: y2,
		Width:   host.Chart.Width(),
		Height:  host.Chart.PaneHeight(),
		Options: opts,
	}
}

func (trendLine) Draw(t render.Target, s TrendLineSnapshot) {
	if !s.valid() {
		return
	}

	opts := s.Options
	t.Scoped(func(c render.Canvas) {
		width := segmentStroke(t, s.Segment(), float64(opts.Width))
		render.ApplyLineStyle(c, opts.Color, width, opts.LineStyle)
		strokeSegment(t, s.Segment())
	})

	if opts.Selected {
		drawHandles(t, opts.AnchorColor, s.handles())
	}
}

func (trendLine) HitTest(s TrendLineSnapshot, x, y float64) (core.HoverResult, bool) {
	if !s.valid() {
		return core.HoverResult{}, false
	}

	id := s.Options.ExternalID
	if s.Options.Selected {
		if hit, ok := hitHandles(id, s.handles(), x, y); ok {
			return hit, true
		}
	}

	if s.Segment().Near(geometry.Pt(x, y), HitTolerance) {
		return core.BodyHit(id, core.CursorPointer), true
	}
	return core.HoverResult{}, false
}

func (trendLine) Autoscale(host *primitive.Host, data TrendLineData, _ TrendLineOptions, start, end float64) (core.PriceRange, bool) {
	spanStart, spanEnd, ok := logicalSpan(host.Chart, data.P1.Time, data.P2.Time)
	if !ok || !geometry.SpansOverlap(start, end, spanStart, spanEnd) {
		return core.PriceRange{}, false
	}
	return geometry.PriceSpan(data.P1.Price, data.P2.Price), true
}
