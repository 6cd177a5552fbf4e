package core

// TimeScale is the horizontal half of a host chart as seen by a drawing.
// Every mapping reports false when the input cannot be placed on the scale.
type TimeScale interface {
	// TimeToCoordinate maps a scale time to a pixel x in media space.
	TimeToCoordinate(t Time) (float64, bool)
	// CoordinateToLogical maps a pixel x to a fractional bar index.
	CoordinateToLogical(x float64) (float64, bool)
	// LogicalToCoordinate maps a fractional bar index to a pixel x.
	LogicalToCoordinate(logical float64) (float64, bool)

	Width() float64      // Width is the chart width in media pixels
	PaneHeight() float64 // PaneHeight is the pane height in media pixels
	BarSpacing() float64 // BarSpacing is the distance between two bars in media pixels
}

// PriceScale is the vertical half of a host chart, owned by a series.
type PriceScale interface {
	// PriceToCoordinate maps a price to a pixel y in media space.
	PriceToCoordinate(price float64) (float64, bool)
	// FormatPrice renders a price the way the series price axis does.
	FormatPrice(price float64) string
}
