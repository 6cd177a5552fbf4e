// Package recorder provides a canvas that records drawing commands instead of
// rasterizing them. It backs tests and the --dump flag of the CLI.
package recorder

import (
	"fmt"
	"strings"

	"github.com/raykavin/chartdraw/pkg/render"
)

// Command is one recorded canvas call
type Command struct {
	Op    string
	Args  []float64
	Text  string
	Style string
}

func (c Command) String() string {
	var b strings.Builder
	b.WriteString(c.Op)
	if c.Style != "" {
		fmt.Fprintf(&b, " %s", c.Style)
	}
	if c.Text != "" {
		fmt.Fprintf(&b, " %q", c.Text)
	}
	for _, arg := range c.Args {
		fmt.Fprintf(&b, " %.2f", arg)
	}
	return b.String()
}

// Canvas records every call made on it
type Canvas struct {
	Commands []Command

	fontSize float64
	depth    int
}

var _ render.Canvas = (*Canvas)(nil)

// New creates an empty recorder
func New() *Canvas {
	return &Canvas{fontSize: 12}
}

func (c *Canvas) record(op string, args ...float64) {
	c.Commands = append(c.Commands, Command{Op: op, Args: args})
}

func (c *Canvas) recordStyle(op, style string) {
	c.Commands = append(c.Commands, Command{Op: op, Style: style})
}

// Depth returns the current Save nesting, zero when every Save was restored
func (c *Canvas) Depth() int { return c.depth }

// Ops lists the recorded operation names in order
func (c *Canvas) Ops() []string {
	ops := make([]string, len(c.Commands))
	for i, cmd := range c.Commands {
		ops[i] = cmd.Op
	}
	return ops
}

// Count returns how many times op was recorded
func (c *Canvas) Count(op string) int {
	n := 0
	for _, cmd := range c.Commands {
		if cmd.Op == op {
			n++
		}
	}
	return n
}

// Find returns every command named op
func (c *Canvas) Find(op string) []Command {
	var found []Command
	for _, cmd := range c.Commands {
		if cmd.Op == op {
			found = append(found, cmd)
		}
	}
	return found
}

// Drawn reports whether anything was stroked, filled or written
func (c *Canvas) Drawn() bool {
	return c.Count("stroke")+c.Count("fill")+c.Count("fillRect")+c.Count("fillText") > 0
}

// Reset drops every recorded command
func (c *Canvas) Reset() {
	c.Commands = nil
	c.depth = 0
}

func (c *Canvas) String() string {
	lines := make([]string, len(c.Commands))
	for i, cmd := range c.Commands {
		lines[i] = cmd.String()
	}
	return strings.Join(lines, "\n")
}

func (c *Canvas) Save() {
	c.depth++
	c.record("save")
}

func (c *Canvas) Restore() {
	c.depth--
	c.record("restore")
}

func (c *Canvas) SetStrokeColor(color string) { c.recordStyle("strokeStyle", color) }
func (c *Canvas) SetFillColor(color string) { c.recordStyle("fillStyle", color) }
func (c *Canvas) SetLineWidth(width float64) { c.record("lineWidth", width) }
func (c *Canvas) SetLineDash(pattern []float64) {
	c.record("lineDash", pattern...)
}

func (c *Canvas) BeginPath() { c.record("beginPath") }
func (c *Canvas) MoveTo(x, y float64) { c.record("moveTo", x, y) }
func (c *Canvas) LineTo(x, y float64) { c.record("lineTo", x, y) }
func (c *Canvas) ClosePath() { c.record("closePath") }
func (c *Canvas) Rect(x, y, w, h float64) { c.record("rect", x, y, w, h) }
func (c *Canvas) RoundRect(x, y, w, h, radius float64) {
	c.record("roundRect", x, y, w, h, radius)
}
func (c *Canvas) Circle(x, y, radius float64) { c.record("circle", x, y, radius) }
func (c *Canvas) Stroke() { c.record("stroke") }
func (c *Canvas) Fill() { c.record("fill") }
func (c *Canvas) FillRect(x, y, w, h float64) { c.record("fillRect", x, y, w, h) }
func (c *Canvas) SetFontSize(size float64) {
	c.fontSize = size
	c.record("fontSize", size)
}

func (c *Canvas) FillText(text string, x, y float64) {
	c.Commands = append(c.Commands, Command{Op: "fillText", Text: text, Args: []float64{x, y}})
}

// MeasureText approximates glyph metrics with a fixed advance of 0.6em
func (c *Canvas) MeasureText(text string) (float64, float64) {
	return float64(len([]rune(text))) * c.fontSize * 0.6, c.fontSize
}
