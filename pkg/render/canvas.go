// Package render defines the drawing surface the annotations paint on.
//
// A Canvas works in bitmap (device) pixels. Drawings receive a Target that
// pairs the canvas with the horizontal and vertical device pixel ratios, and
// scale every media coordinate themselves so non-square pixels keep working.
package render

// Canvas is a 2D drawing context in bitmap pixels. Stroke and Fill consume
// the current path.
type Canvas interface {
	Save()
	Restore()

	SetStrokeColor(color string)
	SetFillColor(color string)
	SetLineWidth(width float64)
	SetLineDash(pattern []float64)

	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	ClosePath()
	Rect(x, y, w, h float64)
	RoundRect(x, y, w, h, radius float64)
	Circle(x, y, radius float64)
	Stroke()
	Fill()
	FillRect(x, y, w, h float64)

	SetFontSize(size float64)
	MeasureText(text string) (width, height float64)
	// FillText draws text with its top-left corner at (x, y)
	FillText(text string, x, y float64)
}

// Size is a width and height pair
type Size struct {
	Width  float64
	Height float64
}

// Target is a canvas bound to the geometry of one pane
type Target struct {
	Canvas               Canvas
	MediaSize            Size
	HorizontalPixelRatio float64
	VerticalPixelRatio   float64
}

// NewTarget builds a target, defaulting missing pixel ratios to 1
func NewTarget(canvas Canvas, media Size, hpr, vpr float64) Target {
	if hpr <= 0 {
		hpr = 1
	}
	if vpr <= 0 {
		vpr = 1
	}
	return Target{Canvas: canvas, MediaSize: media, HorizontalPixelRatio: hpr, VerticalPixelRatio: vpr}
}

// BitmapSize returns the pane size in device pixels
func (t Target) BitmapSize() Size {
	return Size{
		Width:  t.MediaSize.Width * t.HorizontalPixelRatio,
		Height: t.MediaSize.Height * t.VerticalPixelRatio,
	}
}

// X converts a media x to bitmap pixels
func (t Target) X(x float64) float64 { return x * t.HorizontalPixelRatio }

// Y converts a media y to bitmap pixels
func (t Target) Y(y float64) float64 { return y * t.VerticalPixelRatio }

// HorizontalStroke is the bitmap width of a horizontal line. Its thickness
// runs along y.
func (t Target) HorizontalStroke(width float64) float64 {
	return StrokeWidth(width, t.VerticalPixelRatio)
}

// VerticalStroke is the bitmap width of a vertical line
func (t Target) VerticalStroke(width float64) float64 {
	return StrokeWidth(width, t.HorizontalPixelRatio)
}

// SlopedStroke is the bitmap width of a sloped line or of an outline with
// both orientations
func (t Target) SlopedStroke(width float64) float64 {
	return StrokeWidth(width, max(t.HorizontalPixelRatio, t.VerticalPixelRatio))
}

// Scoped runs fn between Save and Restore so style changes never leak
// into the next drawing sharing the canvas.
func (t Target) Scoped(fn func(c Canvas)) {
	t.Canvas.Save()
	defer t.Canvas.Restore()
	fn(t.Canvas)
}
