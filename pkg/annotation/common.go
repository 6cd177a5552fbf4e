package annotation

import (
	"math"

	"github.com/raykavin/chartdraw/pkg/core"
	"github.com/raykavin/chartdraw/pkg/geometry"
	"github.com/raykavin/chartdraw/pkg/primitive"
	"github.com/raykavin/chartdraw/pkg/render"
)

const (
	// HitTolerance is the distance in media pixels within which a line is hit
	HitTolerance = 6.0
	// HandleRadius is the hit radius of an anchor handle
	HandleRadius = 8.0

	handleDrawRadius = 5.0
	handleBorder     = 2.0
	handleFill       = "rgba(0, 0, 0, 0.45)"

	labelFontSize = 12.0
	labelPaddingX = 6.0
	labelPaddingY = 3.0
	labelRadius   = 3.0
)

// Style holds the stroke and selection fields every line drawing shares
type Style struct {
	ExternalID  string         `json:"externalId"`
	Color       string         `json:"color"`
	Width       int            `json:"width"`
	LineStyle   core.LineStyle `json:"lineStyle"`
	Selected    bool           `json:"selected"`
	AnchorColor string         `json:"anchorColor"`
}

// ID returns the external identifier reported by hit tests
func (s Style) ID() string { return s.ExternalID }

func defaultStyle(color string) Style {
	return Style{
		Color:       color,
		Width:       1,
		LineStyle:   core.LineSolid,
		AnchorColor: "#2962ff",
	}
}

func (s Style) normalized() Style {
	s.Width = geometry.Clamp(s.Width, core.MinLineWidth, core.MaxLineWidth)
	if !s.LineStyle.Valid() {
		s.LineStyle = core.LineSolid
	}
	return s
}

// handle is a draggable anchor in media pixels
type handle struct {
	at     geometry.Point
	cursor core.Cursor
}

// hitHandles returns the nearest handle within HandleRadius. The handle
// index is its position in handles.
func hitHandles(id string, handles []handle, x, y float64) (core.HoverResult, bool) {
	p := geometry.Pt(x, y)
	best, bestDist := core.NoHandle, math.Inf(1)
	for i, h := range handles {
		if d := h.at.Distance(p); d <= HandleRadius && d < bestDist {
			best, bestDist = i, d
		}
	}
	if best == core.NoHandle {
		return core.HoverResult{}, false
	}
	return core.HandleHit(id, best, handles[best].cursor), true
}

// drawHandles paints a ring with a translucent dark core on every handle
func drawHandles(t render.Target, color string, handles []handle) {
	radius := handleDrawRadius * t.HorizontalPixelRatio
	border := handleBorder * t.HorizontalPixelRatio

	t.Scoped(func(c render.Canvas) {
		c.SetLineDash(nil)
		for _, h := range handles {
			x, y := t.X(h.at.X), t.Y(h.at.Y)

			c.BeginPath()
			c.Circle(x, y, radius)
			c.SetFillColor(handleFill)
			c.Fill()

			c.BeginPath()
			c.Circle(x, y, radius)
			c.SetStrokeColor(color)
			c.SetLineWidth(border)
			c.Stroke()
		}
	})
}

// crisp snaps a bitmap coordinate so a line of the given bitmap width
// covers whole device pixels
func crisp(v, width float64) float64 {
	if int(width)%2 == 1 {
		return math.Floor(v) + 0.5
	}
	return math.Round(v)
}

// segmentStroke picks the bitmap line width for a segment by its
// orientation
func segmentStroke(t render.Target, s geometry.Segment, width float64) float64 {
	switch {
	case s.A.Y == s.B.Y:
		return t.HorizontalStroke(width)
	case s.A.X == s.B.X:
		return t.VerticalStroke(width)
	default:
		return t.SlopedStroke(width)
	}
}

// strokeSegment strokes one straight segment given in media pixels
func strokeSegment(t render.Target, s geometry.Segment) {
	c := t.Canvas
	c.BeginPath()
	c.MoveTo(t.X(s.A.X), t.Y(s.A.Y))
	c.LineTo(t.X(s.B.X), t.Y(s.B.Y))
	c.Stroke()
}

// labelStyle describes the rounded box around a text label
type labelStyle struct {
	Background string
	Border     string
	Text       string
}

// drawLabel paints text inside a rounded box. (x, y) is a media point and
// (ax, ay) the fraction of the box placed before it on each axis, so
// (0.5, 1) centers the box horizontally above the point. The border, when
// set, is an outer box showing one device pixel around the inner one.
func drawLabel(t render.Target, text string, x, y, ax, ay float64, style labelStyle) {
	if text == "" {
		return
	}

	t.Scoped(func(c render.Canvas) {
		c.SetFontSize(labelFontSize * t.VerticalPixelRatio)
		tw, th := c.MeasureText(text)

		padX := labelPaddingX * t.HorizontalPixelRatio
		padY := labelPaddingY * t.VerticalPixelRatio
		radius := labelRadius * t.HorizontalPixelRatio
		w, h := tw+2*padX, th+2*padY

		left := t.X(x) - ax*w
		top := t.Y(y) - ay*h

		inset := 0.0
		if style.Border != "" {
			inset = math.Max(1, math.Floor(t.HorizontalPixelRatio))
			c.BeginPath()
			c.RoundRect(left, top, w, h, radius)
			c.SetFillColor(style.Border)
			c.Fill()
		}

		c.BeginPath()
		c.RoundRect(left+inset, top+inset, w-2*inset, h-2*inset, math.Max(0, radius-inset))
		c.SetFillColor(style.Background)
		c.Fill()

		c.SetFillColor(style.Text)
		c.FillText(text, left+padX, top+padY)
	})
}

// logicalSpan maps every time to a logical bar index and returns the
// covered range
func logicalSpan(chart core.TimeScale, times ...core.Time) (start, end float64, ok bool) {
	start, end = math.Inf(1), math.Inf(-1)
	for _, t := range times {
		x, ok := chart.TimeToCoordinate(t)
		if !ok {
			return 0, 0, false
		}
		l, ok := chart.CoordinateToLogical(x)
		if !ok {
			return 0, 0, false
		}
		start, end = math.Min(start, l), math.Max(end, l)
	}
	return start, end, len(times) > 0
}

func project(host *primitive.Host, p core.AnchorPoint) (x, y core.Coordinate) {
	return core.CoordinateOf(host.Chart.TimeToCoordinate(p.Time)),
		core.CoordinateOf(host.Series.PriceToCoordinate(p.Price))
}

func point(x, y core.Coordinate) geometry.Point {
	return geometry.Pt(x.V, y.V)
}
