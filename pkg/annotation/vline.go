package annotation

import (
	"math"

	"github.com/raykavin/chartdraw/pkg/core"
	"github.com/raykavin/chartdraw/pkg/geometry"
	"github.com/raykavin/chartdraw/pkg/primitive"
	"github.com/raykavin/chartdraw/pkg/render"
)

// VerticalLineData is the time a vertical line sits at
type VerticalLineData struct {
	Time core.Time `json:"time"`
}

// VerticalLineOptions configures a vertical line
type VerticalLineOptions struct {
	Style

	// AnchorOffset places the drag handle this many pixels above the pane's
	// bottom edge
	AnchorOffset     float64 `json:"anchorOffset"`
	ShowLabel        bool    `json:"showLabel"`
	TimeLayout       string  `json:"timeLayout"`
	LabelBackground  string  `json:"labelBackground"`
	LabelBorderColor string  `json:"labelBorderColor"`
	LabelTextColor   string  `json:"labelTextColor"`
}

// DefaultVerticalLineOptions returns the defaults of a vertical line
func DefaultVerticalLineOptions() VerticalLineOptions {
	return VerticalLineOptions{
		Style:            defaultStyle("#9c27b0"),
		AnchorOffset:     40,
		ShowLabel:        true,
		TimeLayout:       "2006-01-02 15:04",
		LabelBackground:  "#131722",
		LabelBorderColor: "#9c27b0",
		LabelTextColor:   "#ffffff",
	}
}

// VerticalLineSnapshot is the projected vertical line
type VerticalLineSnapshot struct {
	X       core.Coordinate
	Height  float64
	Label   string
	Options VerticalLineOptions
}

func (s VerticalLineSnapshot) handles() []handle {
	return []handle{{at: geometry.Pt(s.X.V, s.Height-s.Options.AnchorOffset), cursor: core.CursorEWResize}}
}

type verticalLine struct{}

// VerticalLine spans the whole pane height at one time
type VerticalLine = primitive.Primitive[VerticalLineData, VerticalLineOptions, VerticalLineSnapshot]

// NewVerticalLine creates a detached vertical line
func NewVerticalLine(data VerticalLineData, options ...func(*VerticalLineOptions)) *VerticalLine {
	return primitive.New[VerticalLineData, VerticalLineOptions, VerticalLineSnapshot](
		verticalLine{}, data, DefaultVerticalLineOptions(), options...)
}

func (verticalLine) Type() string { return string(TypeVerticalLine) }

func (verticalLine) ZOrder() core.ZOrder { return core.ZOrderNormal }

func (verticalLine) Normalize(o VerticalLineOptions) VerticalLineOptions {
	o.Style = o.Style.normalized()
	o.AnchorOffset = math.Max(0, o.AnchorOffset)
	if o.TimeLayout == "" {
		o.TimeLayout = DefaultVerticalLineOptions().TimeLayout
	}
	return o
}

func (verticalLine) Project(host *primitive.Host, data VerticalLineData, opts VerticalLineOptions) VerticalLineSnapshot {
	return VerticalLineSnapshot{
		X:       core.CoordinateOf(host.Chart.TimeToCoordinate(data.Time)),
		Height:  host.Chart.PaneHeight(),
		Label:   data.Time.UTC().Format(opts.TimeLayout),
		Options: opts,
	}
}

func (verticalLine) Draw(t render.Target, s VerticalLineSnapshot) {
	if !s.X.Valid {
		return
	}

	opts := s.Options
	t.Scoped(func(c render.Canvas) {
		width := t.VerticalStroke(float64(opts.Width))
		x := crisp(t.X(s.X.V), width)

		render.ApplyLineStyle(c, opts.Color, width, opts.LineStyle)
		c.BeginPath()
		c.MoveTo(x, 0)
		c.LineTo(x, t.Y(s.Height))
		c.Stroke()
	})

	if opts.ShowLabel {
		drawLabel(t, s.Label, s.X.V, s.Height, 0.5, 1, labelStyle{
			Background: opts.LabelBackground,
			Border:     opts.LabelBorderColor,
			Text:       opts.LabelTextColor,
		})
	}

	if opts.Selected {
		drawHandles(t, opts.AnchorColor, s.handles())
	}
}

func (verticalLine) HitTest(s VerticalLineSnapshot, x, y float64) (core.HoverResult, bool) {
	if !s.X.Valid {
		return core.HoverResult{}, false
	}

	id := s.Options.ExternalID
	if s.Options.Selected {
		if hit, ok := hitHandles(id, s.handles(), x, y); ok {
			return hit, true
		}
	}

	if y >= 0 && y <= s.Height && math.Abs(x-s.X.V) <= HitTolerance {
		return core.BodyHit(id, core.CursorPointer), true
	}
	return core.HoverResult{}, false
}

// Autoscale never contributes, a vertical line carries no price
func (verticalLine) Autoscale(*primitive.Host, VerticalLineData, VerticalLineOptions, float64, float64) (core.PriceRange, bool) {
	return core.PriceRange{}, false
}
