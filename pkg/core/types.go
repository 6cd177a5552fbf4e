package core

import (
	"fmt"
	"strings"
	"time"
)

// Time is a horizontal scale value. Intraday series use unix seconds,
// business-day series encode the day as its UTC midnight in unix seconds.
type Time int64

// TimeOf converts a wall clock time to a scale value
func TimeOf(t time.Time) Time { return Time(t.Unix()) }

// UTC returns the scale value as a UTC wall clock time
func (t Time) UTC() time.Time { return time.Unix(int64(t), 0).UTC() }

// AnchorPoint is a (time, price) pair in domain units
type AnchorPoint struct {
	Time  Time    `json:"time" yaml:"time"`
	Price float64 `json:"price" yaml:"price"`
}

// Coordinate is a media pixel position that may be unmappable
type Coordinate struct {
	V     float64
	Valid bool
}

// At returns a valid coordinate
func At(v float64) Coordinate { return Coordinate{V: v, Valid: true} }

// Unmapped is the coordinate of a value outside the visible domain
var Unmapped = Coordinate{}

// CoordinateOf adapts a (value, ok) mapping result
func CoordinateOf(v float64, ok bool) Coordinate {
	if !ok {
		return Unmapped
	}
	return At(v)
}

// AllValid reports whether every coordinate is mappable
func AllValid(coords ...Coordinate) bool {
	for _, c := range coords {
		if !c.Valid {
			return false
		}
	}
	return true
}

// PriceRange is the autoscale contribution of a drawing
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Merge returns the smallest range covering both ranges
func (r PriceRange) Merge(other PriceRange) PriceRange {
	return PriceRange{Min: min(r.Min, other.Min), Max: max(r.Max, other.Max)}
}

// ZOrder is the layer a pane view paints in
type ZOrder string

const (
	ZOrderBottom ZOrder = "bottom" // behind the series data
	ZOrderNormal ZOrder = "normal" // together with the series data
	ZOrderTop    ZOrder = "top"    // above everything
)

// Cursor is the pointer style hint of a hover result
type Cursor string

const (
	CursorDefault    Cursor = "default"
	CursorPointer    Cursor = "pointer"
	CursorMove       Cursor = "move"
	CursorGrab       Cursor = "grab"
	CursorNSResize   Cursor = "ns-resize"
	CursorEWResize   Cursor = "ew-resize"
	CursorNWSEResize Cursor = "nwse-resize"
)

// NoHandle marks a hover result on the body of a drawing
const NoHandle = -1

// HoverResult describes what lies under a pointer position
type HoverResult struct {
	ExternalID string `json:"externalId"`
	Handle     int    `json:"handle"`
	Cursor     Cursor `json:"cursor"`
	ZOrder     ZOrder `json:"zOrder"`
}

// BodyHit builds a hover result for the body of a drawing
func BodyHit(id string, cursor Cursor) HoverResult {
	return HoverResult{ExternalID: id, Handle: NoHandle, Cursor: cursor, ZOrder: ZOrderTop}
}

// HandleHit builds a hover result for one anchor handle
func HandleHit(id string, handle int, cursor Cursor) HoverResult {
	return HoverResult{ExternalID: id, Handle: handle, Cursor: cursor, ZOrder: ZOrderTop}
}

// IsHandle reports whether the result points at an anchor handle
func (h HoverResult) IsHandle() bool { return h.Handle >= 0 }

// String renders the identifier as "id" or "id:anchor:<n>"
func (h HoverResult) String() string {
	if !h.IsHandle() {
		return h.ExternalID
	}
	return fmt.Sprintf("%s:anchor:%d", h.ExternalID, h.Handle)
}

// ParseHoverID is the inverse of HoverResult.String for clients that still
// exchange the flat identifier form.
func ParseHoverID(s string) (id string, handle int) {
	idx := strings.LastIndex(s, ":anchor:")
	if idx < 0 {
		return s, NoHandle
	}

	if _, err := fmt.Sscanf(s[idx+len(":anchor:"):], "%d", &handle); err != nil {
		return s, NoHandle
	}
	return s[:idx], handle
}

// LineStyle is the stroke pattern of a line
type LineStyle string

const (
	LineSolid        LineStyle = "solid"
	LineDotted       LineStyle = "dotted"
	LineDashed       LineStyle = "dashed"
	LineLargeDashed  LineStyle = "large-dashed"
	LineSparseDotted LineStyle = "sparse-dotted"
)

// Valid reports whether the style is one of the known patterns
func (s LineStyle) Valid() bool {
	switch s {
	case LineSolid, LineDotted, LineDashed, LineLargeDashed, LineSparseDotted:
		return true
	}
	return false
}

const (
	MinLineWidth = 1
	MaxLineWidth = 4
)
