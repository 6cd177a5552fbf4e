package render

import (
	"image/color"
	"math"
	"strings"

	"github.com/gogpu/gg"
	"github.com/raykavin/chartdraw/pkg/core"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// DashPattern returns the bitmap dash pattern of a line style for a stroke
// of the given bitmap width. Solid lines have no pattern.
func DashPattern(style core.LineStyle, width float64) []float64 {
	switch style {
	case core.LineDotted:
		return []float64{width, width}
	case core.LineDashed:
		return []float64{2 * width, 2 * width}
	case core.LineLargeDashed:
		return []float64{6 * width, 6 * width}
	case core.LineSparseDotted:
		return []float64{width, 4 * width}
	default:
		return nil
	}
}

// ApplyLineStyle sets color, width and dash of the next stroke.
// width is in bitmap pixels.
func ApplyLineStyle(c Canvas, stroke string, width float64, style core.LineStyle) {
	c.SetStrokeColor(stroke)
	c.SetLineWidth(width)
	c.SetLineDash(DashPattern(style, width))
}

// StrokeWidth converts a media line width to whole bitmap pixels, never
// thinner than one device pixel.
func StrokeWidth(width, pixelRatio float64) float64 {
	return math.Max(1, math.Floor(width*pixelRatio))
}

// ParseColor understands #rgb, #rgba, #rrggbb, #rrggbbaa, rgb(...) and
// rgba(...). Unknown inputs fall back to opaque black.
func ParseColor(s string) color.NRGBA {
	s = strings.TrimSpace(s)

	switch {
	case strings.HasPrefix(s, "#"):
		c := gg.Hex(s)
		return color.NRGBA{R: channel(c.R * 255), G: channel(c.G * 255), B: channel(c.B * 255), A: channel(c.A * 255)}
	case strings.HasPrefix(s, "rgba("):
		// go-chart reads a short list as zeros
		if strings.Count(s, ",") == 3 {
			return nrgba(drawing.ColorFromRGBA(s))
		}
	case strings.HasPrefix(s, "rgb("):
		if strings.Count(s, ",") == 2 {
			return nrgba(drawing.ColorFromRGB(s))
		}
	case s == "transparent":
		return color.NRGBA{}
	}

	return color.NRGBA{A: 255}
}

func nrgba(c drawing.Color) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func channel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}
