package annotation

import (
	"github.com/raykavin/chartdraw/pkg/core"
	"github.com/raykavin/chartdraw/pkg/geometry"
	"github.com/raykavin/chartdraw/pkg/primitive"
	"github.com/raykavin/chartdraw/pkg/render"
)

// RegionPoint colors the bar at Time. An empty color uses the default.
type RegionPoint struct {
	Time  core.Time `json:"time"`
	Color string    `json:"color,omitempty"`
}

// RegionsData is the list of colored bars
type RegionsData struct {
	Points []RegionPoint `json:"points"`
}

// RegionsOptions configures background regions
type RegionsOptions struct {
	ExternalID string `json:"externalId"`
	Color      string `json:"color"`
}

// ID returns the external identifier
func (o RegionsOptions) ID() string { return o.ExternalID }

// DefaultRegionsOptions returns the defaults of background regions
func DefaultRegionsOptions() RegionsOptions {
	return RegionsOptions{Color: "rgba(41, 98, 255, 0.15)"}
}

// RegionsSnapshot holds one column per mappable point
type RegionsSnapshot struct {
	Columns  []geometry.Column
	BarWidth float64
	Height   float64
}

// Bands returns the merged fill rectangles
func (s RegionsSnapshot) Bands() []geometry.Band {
	return geometry.BatchColumns(s.Columns, s.BarWidth)
}

type regions struct{}

// Regions paints full-height colored bars behind the series
type Regions = primitive.Primitive[RegionsData, RegionsOptions, RegionsSnapshot]

// NewRegions creates detached background regions
func NewRegions(data RegionsData, options ...func(*RegionsOptions)) *Regions {
	return primitive.New[RegionsData, RegionsOptions, RegionsSnapshot](
		regions{}, data, DefaultRegionsOptions(), options...)
}

func (regions) Type() string { return string(TypeRegions) }

func (regions) ZOrder() core.ZOrder { return core.ZOrderBottom }

// Project drops points outside the time scale
func (regions) Project(host *primitive.Host, data RegionsData, opts RegionsOptions) RegionsSnapshot {
	columns := make([]geometry.Column, 0, len(data.Points))
	for _, p := range data.Points {
		x, ok := host.Chart.TimeToCoordinate(p.Time)
		if !ok {
			continue
		}

		color := p.Color
		if color == "" {
			color = opts.Color
		}
		columns = append(columns, geometry.Column{X: x, Color: color})
	}

	return RegionsSnapshot{
		Columns:  columns,
		BarWidth: host.Chart.BarSpacing(),
		Height:   host.Chart.PaneHeight(),
	}
}

func (regions) Draw(t render.Target, s RegionsSnapshot) {
	bands := s.Bands()
	if len(bands) == 0 {
		return
	}

	t.Scoped(func(c render.Canvas) {
		for _, band := range bands {
			c.SetFillColor(band.Color)
			c.FillRect(t.X(band.Left), 0, t.X(band.Width()), t.Y(s.Height))
		}
	})
}

// HitTest never hits, regions are not interactive
func (regions) HitTest(RegionsSnapshot, float64, float64) (core.HoverResult, bool) {
	return core.HoverResult{}, false
}

// Autoscale never contributes, regions carry no price
func (regions) Autoscale(*primitive.Host, RegionsData, RegionsOptions, float64, float64) (core.PriceRange, bool) {
	return core.PriceRange{}, false
}
