package geometry

import (
	"fmt"
	"math"

	"github.com/raykavin/chartdraw/pkg/core"
	"gonum.org/v1/gonum/floats"
)

// ExtendMode controls which vertical borders of a rectangle are pushed to the
// chart edges
type ExtendMode string

const (
	ExtendNone  ExtendMode = "none"
	ExtendLeft  ExtendMode = "left"
	ExtendRight ExtendMode = "right"
	ExtendBoth  ExtendMode = "both"
)

// ParseExtendMode validates a textual extend mode
func ParseExtendMode(s string) (ExtendMode, error) {
	switch mode := ExtendMode(s); mode {
	case ExtendNone, ExtendLeft, ExtendRight, ExtendBoth:
		return mode, nil
	case "":
		return ExtendNone, nil
	default:
		return ExtendNone, fmt.Errorf("invalid extend mode: %s", s)
	}
}

// ExtendsLeft reports whether the left border is replaced by the chart edge
func (m ExtendMode) ExtendsLeft() bool { return m == ExtendLeft || m == ExtendBoth }

// ExtendsRight reports whether the right border is replaced by the chart edge
func (m ExtendMode) ExtendsRight() bool { return m == ExtendRight || m == ExtendBoth }

// HorizontalExtent returns the horizontal fill extent of a rectangle whose
// corners sit at x1 and x2 in a chart of the given width.
func HorizontalExtent(x1, x2, width float64, mode ExtendMode) (left, right float64) {
	left, right = math.Min(x1, x2), math.Max(x1, x2)
	if mode.ExtendsLeft() {
		left = 0
	}
	if mode.ExtendsRight() {
		right = width
	}
	return left, right
}

// Rect is an axis aligned rectangle in media pixels
type Rect struct {
	Left, Top, Right, Bottom float64
}

// RectFromCorners normalizes two opposite corners
func RectFromCorners(a, b Point) Rect {
	return Rect{
		Left:   math.Min(a.X, b.X),
		Top:    math.Min(a.Y, b.Y),
		Right:  math.Max(a.X, b.X),
		Bottom: math.Max(a.Y, b.Y),
	}
}

// Width returns the horizontal size
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical size
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// MidY returns the vertical center
func (r Rect) MidY() float64 { return (r.Top + r.Bottom) / 2 }

// Contains returns true if the point is inside the rectangle, borders included
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// SpansOverlap reports whether the visible logical range [start, end]
// intersects the span [spanStart, spanEnd]
func SpansOverlap(start, end, spanStart, spanEnd float64) bool {
	return end >= spanStart && start <= spanEnd
}

// PriceSpan returns the range covering every given price
func PriceSpan(prices ...float64) core.PriceRange {
	if len(prices) == 0 {
		return core.PriceRange{}
	}
	return core.PriceRange{Min: floats.Min(prices), Max: floats.Max(prices)}
}
