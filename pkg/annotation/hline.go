package annotation

import (
	"math"

	"github.com/raykavin/chartdraw/pkg/core"
	"github.com/raykavin/chartdraw/pkg/geometry"
	"github.com/raykavin/chartdraw/pkg/primitive"
	"github.com/raykavin/chartdraw/pkg/render"
)

// HorizontalLineData is the price a horizontal line sits at
type HorizontalLineData struct {
	Price float64 `json:"price"`
}

// HorizontalLineOptions configures a horizontal line
type HorizontalLineOptions struct {
	Style

	// AnchorOffset places the drag handle this many pixels left of the
	// chart's right edge
	AnchorOffset    float64 `json:"anchorOffset"`
	ShowLabel       bool    `json:"showLabel"`
	LabelBackground string  `json:"labelBackground"`
	LabelTextColor  string  `json:"labelTextColor"`
}

// DefaultHorizontalLineOptions returns the defaults of a horizontal line
func DefaultHorizontalLineOptions() HorizontalLineOptions {
	return HorizontalLineOptions{
		Style:           defaultStyle("#2962ff"),
		AnchorOffset:    40,
		ShowLabel:       true,
		LabelBackground: "#2962ff",
		LabelTextColor:  "#ffffff",
	}
}

// HorizontalLineSnapshot is the projected horizontal line
type HorizontalLineSnapshot struct {
	Y       core.Coordinate
	Width   float64
	Label   string
	Options HorizontalLineOptions
}

func (s HorizontalLineSnapshot) handles() []handle {
	return []handle{{at: geometry.Pt(s.Width-s.Options.AnchorOffset, s.Y.V), cursor: core.CursorNSResize}}
}

type horizontalLine struct{}

// HorizontalLine spans the whole chart width at one price
type HorizontalLine = primitive.Primitive[HorizontalLineData, HorizontalLineOptions, HorizontalLineSnapshot]

// NewHorizontalLine creates a detached horizontal line
func NewHorizontalLine(data HorizontalLineData, options ...func(*HorizontalLineOptions)) *HorizontalLine {
	return primitive.New[HorizontalLineData, HorizontalLineOptions, HorizontalLineSnapshot](
		horizontalLine{}, data, DefaultHorizontalLineOptions(), options...)
}

func (horizontalLine) Type() string { return string(TypeHorizontalLine) }

func (horizontalLine) ZOrder() core.ZOrder { return core.ZOrderNormal }

func (horizontalLine) Normalize(o HorizontalLineOptions) HorizontalLineOptions {
	o.Style = o.Style.normalized()
	o.AnchorOffset = math.Max(0, o.AnchorOffset)
	return o
}

func (horizontalLine) Project(host *primitive.Host, data HorizontalLineData, opts HorizontalLineOptions) HorizontalLineSnapshot {
	return HorizontalLineSnapshot{
		Y:       core.CoordinateOf(host.Series.PriceToCoordinate(data.Price)),
		Width:   host.Chart.Width(),
		Label:   host.Series.FormatPrice(data.Price),
		Options: opts,
	}
}

func (horizontalLine) Draw(t render.Target, s HorizontalLineSnapshot) {
	if !s.Y.Valid {
		return
	}

	opts := s.Options
	t.Scoped(func(c render.Canvas) {
		width := t.HorizontalStroke(float64(opts.Width))
		y := crisp(t.Y(s.Y.V), width)

		render.ApplyLineStyle(c, opts.Color, width, opts.LineStyle)
		c.BeginPath()
		c.MoveTo(0, y)
		c.LineTo(t.X(s.Width), y)
		c.Stroke()
	})

	if opts.ShowLabel {
		drawLabel(t, s.Label, s.Width, s.Y.V, 1, 0.5, labelStyle{
			Background: opts.LabelBackground,
			Text:       opts.LabelTextColor,
		})
	}

	if opts.Selected {
		drawHandles(t, opts.AnchorColor, s.handles())
	}
}

func (horizontalLine) HitTest(s HorizontalLineSnapshot, x, y float64) (core.HoverResult, bool) {
	if !s.Y.Valid {
		return core.HoverResult{}, false
	}

	id := s.Options.ExternalID
	if s.Options.Selected {
		if hit, ok := hitHandles(id, s.handles(), x, y); ok {
			return hit, true
		}
	}

	if x >= 0 && x <= s.Width && math.Abs(y-s.Y.V) <= HitTolerance {
		return core.BodyHit(id, core.CursorPointer), true
	}
	return core.HoverResult{}, false
}

func (horizontalLine) Autoscale(_ *primitive.Host, data HorizontalLineData, _ HorizontalLineOptions, _, _ float64) (core.PriceRange, bool) {
	return core.PriceRange{Min: data.Price, Max: data.Price}, true
}
