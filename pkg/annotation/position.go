package annotation

import (
	"fmt"
	"math"

	"github.com/raykavin/chartdraw/pkg/core"
	"github.com/raykavin/chartdraw/pkg/geometry"
	"github.com/raykavin/chartdraw/pkg/primitive"
	"github.com/raykavin/chartdraw/pkg/render"
	"github.com/xhit/go-str2duration/v2"
)

// Direction is the side of a position
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// PositionData holds the entry anchor and the exit prices. EndTime, when
// set after the entry, fixes the right edge; otherwise the box is Bars wide.
type PositionData struct {
	Entry   core.AnchorPoint `json:"entry"`
	Target  float64          `json:"target"`
	Stop    float64          `json:"stop"`
	EndTime core.Time        `json:"endTime,omitempty"`
}

// PositionOptions configures a long or short position
type PositionOptions struct {
	Style
	Direction      Direction `json:"direction"`
	ProfitColor    string    `json:"profitColor"`
	RiskColor      string    `json:"riskColor"`
	EntryLineColor string    `json:"entryLineColor"`

	// Timeframe is the bar duration of the series ("15m", "4h", "1d"),
	// used to convert EndTime into bars beyond the loaded data
	Timeframe      string `json:"timeframe"`
	Bars           int    `json:"bars"`
	ShowLabels     bool   `json:"showLabels"`
	LabelTextColor string `json:"labelTextColor"`
}

// DefaultPositionOptions returns the defaults of a long position
func DefaultPositionOptions() PositionOptions {
	return PositionOptions{
		Style:          defaultStyle("#787b86"),
		Direction:      Long,
		ProfitColor:    "rgba(8, 153, 129, 0.25)",
		RiskColor:      "rgba(242, 54, 69, 0.25)",
		EntryLineColor: "#787b86",
		Timeframe:      "1h",
		Bars:           20,
		ShowLabels:     true,
		LabelTextColor: "#ffffff",
	}
}

// PositionStats are the direction aware profit and risk figures
type PositionStats struct {
	TargetDelta   float64 `json:"targetDelta"`
	TargetPercent float64 `json:"targetPercent"`
	StopDelta     float64 `json:"stopDelta"`
	StopPercent   float64 `json:"stopPercent"`
	RiskReward    float64 `json:"riskReward"`
}

// ComputeStats measures target and stop distances from the entry. A long
// gains when price rises, so its target delta is target - entry and its
// stop delta entry - stop; a short negates both. Percentages are relative
// to the entry price and the ratio is 0 when the stop delta is 0.
func ComputeStats(direction Direction, entry, target, stop float64) PositionStats {
	targetDelta, stopDelta := target-entry, entry-stop
	if direction == Short {
		targetDelta, stopDelta = -targetDelta, -stopDelta
	}

	stats := PositionStats{TargetDelta: targetDelta, StopDelta: stopDelta}
	if entry != 0 {
		stats.TargetPercent = targetDelta * 100 / entry
		stats.StopPercent = stopDelta * 100 / entry
	}
	if stopDelta != 0 {
		stats.RiskReward = targetDelta / stopDelta
	}
	return stats
}

// PositionSnapshot is the projected position
type PositionSnapshot struct {
	EntryX, EntryY  core.Coordinate
	RightX          core.Coordinate
	TargetY, StopY  core.Coordinate
	Stats           PositionStats
	TargetLabel     string
	StopLabel       string
	RiskRewardLabel string
	Options         PositionOptions
}

func (s PositionSnapshot) valid() bool {
	return core.AllValid(s.EntryX, s.EntryY, s.RightX, s.TargetY, s.StopY)
}

// Bounds returns the area covered by both zones
func (s PositionSnapshot) Bounds() geometry.Rect {
	top := math.Min(s.EntryY.V, math.Min(s.TargetY.V, s.StopY.V))
	bottom := math.Max(s.EntryY.V, math.Max(s.TargetY.V, s.StopY.V))
	return geometry.Rect{
		Left:   math.Min(s.EntryX.V, s.RightX.V),
		Top:    top,
		Right:  math.Max(s.EntryX.V, s.RightX.V),
		Bottom: bottom,
	}
}

func (s PositionSnapshot) entryLine() geometry.Segment {
	return geometry.Horizontal(s.EntryX.V, s.RightX.V, s.EntryY.V)
}

// handles are entry, target, stop and the width handle on the right edge
func (s PositionSnapshot) handles() []handle {
	return []handle{
		{at: point(s.EntryX, s.EntryY), cursor: core.CursorMove},
		{at: point(s.EntryX, s.TargetY), cursor: core.CursorNSResize},
		{at: point(s.EntryX, s.StopY), cursor: core.CursorNSResize},
		{at: point(s.RightX, s.EntryY), cursor: core.CursorEWResize},
	}
}

const (
	HandleEntry = iota
	HandleTarget
	HandleStop
	HandleWidth
)

type position struct{}

// Position is a long or short trade box with profit and risk zones
type Position = primitive.Primitive[PositionData, PositionOptions, PositionSnapshot]

// NewPosition creates a detached position
func NewPosition(data PositionData, options ...func(*PositionOptions)) *Position {
	return primitive.New[PositionData, PositionOptions, PositionSnapshot](
		position{}, data, DefaultPositionOptions(), options...)
}

func (position) Type() string { return string(TypePosition) }

func (position) ZOrder() core.ZOrder { return core.ZOrderNormal }

func (position) Normalize(o PositionOptions) PositionOptions {
	o.Style = o.Style.normalized()
	if o.Direction != Short {
		o.Direction = Long
	}
	if o.Bars < 1 {
		o.Bars = DefaultPositionOptions().Bars
	}
	return o
}

// positionBars is the width of the box in bars
func positionBars(data PositionData, opts PositionOptions) float64 {
	if data.EndTime > data.Entry.Time {
		tf, err := str2duration.ParseDuration(opts.Timeframe)
		if err == nil && tf > 0 {
			return float64(data.EndTime-data.Entry.Time) / tf.Seconds()
		}
	}
	return float64(opts.Bars)
}

// rightEdge places the right border on EndTime when the scale knows it,
// otherwise positionBars bars after the entry
func rightEdge(chart core.TimeScale, data PositionData, opts PositionOptions, entryX core.Coordinate) core.Coordinate {
	if data.EndTime > data.Entry.Time {
		if x, ok := chart.TimeToCoordinate(data.EndTime); ok {
			return core.At(x)
		}
	}
	if !entryX.Valid {
		return core.Unmapped
	}

	entry, ok := chart.CoordinateToLogical(entryX.V)
	if !ok {
		return core.Unmapped
	}
	return core.CoordinateOf(chart.LogicalToCoordinate(entry + positionBars(data, opts)))
}

func (position) Project(host *primitive.Host, data PositionData, opts PositionOptions) PositionSnapshot {
	entryX, entryY := project(host, data.Entry)
	stats := ComputeStats(opts.Direction, data.Entry.Price, data.Target, data.Stop)
	format := host.Series.FormatPrice

	return PositionSnapshot{
		EntryX:  entryX,
		EntryY:  entryY,
		RightX:  rightEdge(host.Chart, data, opts, entryX),
		TargetY: core.CoordinateOf(host.Series.PriceToCoordinate(data.Target)),
		StopY:   core.CoordinateOf(host.Series.PriceToCoordinate(data.Stop)),
		Stats:   stats,
		TargetLabel: fmt.Sprintf("Target: %s (%s, %.2f%%)",
			format(data.Target), format(stats.TargetDelta), stats.TargetPercent),
		StopLabel: fmt.Sprintf("Stop: %s (%s, %.2f%%)",
			format(data.Stop), format(stats.StopDelta), stats.StopPercent),
		RiskRewardLabel: fmt.Sprintf("Risk/Reward: %.2f", stats.RiskReward),
		Options:         opts,
	}
}

// zone fills the band between two y values across the box
func zone(t render.Target, c render.Canvas, left, right, y1, y2 float64, color string) {
	top, bottom := math.Min(y1, y2), math.Max(y1, y2)
	c.SetFillColor(color)
	c.FillRect(t.X(left), t.Y(top), t.X(right-left), t.Y(bottom-top))
}

// labelAnchor puts a label outside the zone edge at y
func labelAnchor(y, entryY float64) float64 {
	if y < entryY {
		return 1
	}
	return 0
}

func (position) Draw(t render.Target, s PositionSnapshot) {
	if !s.valid() {
		return
	}

	opts := s.Options
	b := s.Bounds()
	t.Scoped(func(c render.Canvas) {
		zone(t, c, b.Left, b.Right, s.EntryY.V, s.TargetY.V, opts.ProfitColor)
		zone(t, c, b.Left, b.Right, s.EntryY.V, s.StopY.V, opts.RiskColor)

		render.ApplyLineStyle(c, opts.EntryLineColor, t.HorizontalStroke(float64(opts.Width)), core.LineDashed)
		strokeSegment(t, s.entryLine())

		if opts.Selected {
			render.ApplyLineStyle(c, opts.Color, t.SlopedStroke(float64(opts.Width)), opts.LineStyle)
			c.BeginPath()
			c.Rect(t.X(b.Left), t.Y(b.Top), t.X(b.Width()), t.Y(b.Height()))
			c.Stroke()
		}
	})

	if opts.ShowLabels {
		midX := (b.Left + b.Right) / 2
		profit := labelStyle{Background: "#089981", Text: opts.LabelTextColor}
		risk := labelStyle{Background: "#f23645", Text: opts.LabelTextColor}
		if s.Stats.RiskReward < 0 {
			profit, risk = risk, profit
		}

		drawLabel(t, s.TargetLabel, midX, s.TargetY.V, 0.5, labelAnchor(s.TargetY.V, s.EntryY.V), profit)
		drawLabel(t, s.StopLabel, midX, s.StopY.V, 0.5, labelAnchor(s.StopY.V, s.EntryY.V), risk)
		drawLabel(t, s.RiskRewardLabel, midX, s.EntryY.V, 0.5, 0.5, labelStyle{
			Background: opts.EntryLineColor,
			Text:       opts.LabelTextColor,
		})
	}

	if opts.Selected {
		drawHandles(t, opts.AnchorColor, s.handles())
	}
}

func (position) HitTest(s PositionSnapshot, x, y float64) (core.HoverResult, bool) {
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
	b := s.Bounds()
	borders := []geometry.Segment{
		geometry.Horizontal(b.Left, b.Right, b.Top),
		geometry.Horizontal(b.Left, b.Right, b.Bottom),
		geometry.Vertical(b.Left, b.Top, b.Bottom),
		geometry.Vertical(b.Right, b.Top, b.Bottom),
		s.entryLine(),
	}
	for _, border := range borders {
		if border.Near(p, HitTolerance) {
			return core.BodyHit(id, core.CursorPointer), true
		}
	}

	if b.Contains(p) {
		return core.BodyHit(id, core.CursorMove), true
	}
	return core.HoverResult{}, false
}

func (position) Autoscale(host *primitive.Host, data PositionData, opts PositionOptions, start, end float64) (core.PriceRange, bool) {
	entry, _, ok := logicalSpan(host.Chart, data.Entry.Time)
	if !ok {
		return core.PriceRange{}, false
	}

	spanEnd := entry + positionBars(data, opts)
	if data.EndTime > data.Entry.Time {
		if l, _, ok := logicalSpan(host.Chart, data.EndTime); ok {
			spanEnd = l
		}
	}

	if !geometry.SpansOverlap(start, end, entry, spanEnd) {
		return core.PriceRange{}, false
	}
	return geometry.PriceSpan(data.Entry.Price, data.Target, data.Stop), true
}
