package annotation

import (
	"testing"

	"github.com/raykavin/chartdraw/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHorizontalLine(t *testing.T) {
	line := NewHorizontalLine(HorizontalLineData{Price: 100}, func(o *HorizontalLineOptions) {
		o.ExternalID = "h1"
	})
	attach(line)

	t.Run("tolerance boundary", func(t *testing.T) {
		for _, x := range []float64{0, 37.5, 120, 200} {
			hit, ok := line.HitTest(x, 106)
			require.True(t, ok)
			assert.Equal(t, "h1", hit.ExternalID)
			assert.False(t, hit.IsHandle())

			_, ok = line.HitTest(x, 106.01)
			assert.False(t, ok)

			_, ok = line.HitTest(x, 93.99)
			assert.False(t, ok)
		}
	})

	t.Run("handle only when selected", func(t *testing.T) {
		hit, ok := line.HitTest(162, 103)
		require.True(t, ok)
		assert.Equal(t, core.NoHandle, hit.Handle)

		line.ApplyOptions(func(o *HorizontalLineOptions) { o.Selected = true })
		line.UpdateAllViews()

		hit, ok = line.HitTest(162, 103)
		require.True(t, ok)
		assert.Equal(t, 0, hit.Handle)
		assert.Equal(t, core.CursorNSResize, hit.Cursor)
		assert.Equal(t, "h1:anchor:0", hit.String())
	})

	t.Run("draws in bitmap space", func(t *testing.T) {
		canvas := paint(line, 2, 3)

		moves := canvas.Find("moveTo")
		require.NotEmpty(t, moves)
		assert.Equal(t, []float64{0, 300.5}, moves[0].Args)
		assert.Equal(t, []float64{400, 300.5}, canvas.Find("lineTo")[0].Args)
		assert.Equal(t, []float64{3}, canvas.Find("lineWidth")[0].Args)

		text := canvas.Find("fillText")
		require.Len(t, text, 1)
		assert.Equal(t, "100.00", text[0].Text)

		// selected: one handle ring
		assert.Equal(t, 2, canvas.Count("circle"))
	})

	t.Run("autoscale is unconditional", func(t *testing.T) {
		r, ok := line.AutoscaleInfo(500, 600)
		require.True(t, ok)
		assert.Equal(t, core.PriceRange{Min: 100, Max: 100}, r)
	})
}

func TestHorizontalLine_DashedStyle(t *testing.T) {
	line := NewHorizontalLine(HorizontalLineData{Price: 50}, func(o *HorizontalLineOptions) {
		o.Width = 2
		o.LineStyle = core.LineDashed
		o.ShowLabel = false
	})
	attach(line)

	canvas := paint(line, 1, 1)
	dash := canvas.Find("lineDash")
	require.Len(t, dash, 1)
	assert.Equal(t, []float64{4, 4}, dash[0].Args)
	assert.Zero(t, canvas.Count("fillText"))
}

func TestHorizontalRay(t *testing.T) {
	ray := NewHorizontalRay(HorizontalRayData{Anchor: core.AnchorPoint{Time: 100, Price: 50}}, func(o *HorizontalRayOptions) {
		o.ExternalID = "r1"
	})
	attach(ray)

	tests := []struct {
		name string
		x, y float64
		hit  bool
	}{
		{"on the ray", 150, 55, true},
		{"right edge", 200, 50, true},
		{"near the anchor", 95, 50, true},
		{"behind the anchor", 90, 50, false},
		{"above", 150, 57, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ray.HitTest(tt.x, tt.y)
			assert.Equal(t, tt.hit, ok)
		})
	}

	t.Run("selected anchor", func(t *testing.T) {
		ray.ApplyOptions(func(o *HorizontalRayOptions) { o.Selected = true })
		ray.UpdateAllViews()

		hit, ok := ray.HitTest(104, 53)
		require.True(t, ok)
		assert.Equal(t, 0, hit.Handle)
		assert.Equal(t, core.CursorMove, hit.Cursor)
	})

	t.Run("autoscale starts at the anchor", func(t *testing.T) {
		_, ok := ray.AutoscaleInfo(0, 9)
		assert.False(t, ok)

		r, ok := ray.AutoscaleInfo(0, 10)
		require.True(t, ok)
		assert.Equal(t, core.PriceRange{Min: 50, Max: 50}, r)

		r, ok = ray.AutoscaleInfo(50, 60)
		require.True(t, ok)
		assert.Equal(t, 50.0, r.Max)
	})

	t.Run("draws from the anchor to the edge", func(t *testing.T) {
		canvas := paint(ray, 2, 2)
		assert.Equal(t, []float64{200, 100}, canvas.Find("moveTo")[0].Args)
		assert.Equal(t, []float64{400, 100}, canvas.Find("lineTo")[0].Args)
	})
}

func TestVerticalLine(t *testing.T) {
	line := NewVerticalLine(VerticalLineData{Time: 50}, func(o *VerticalLineOptions) {
		o.ExternalID = "v1"
	})
	attach(line)

	snap, ok := line.Snapshot()
	require.True(t, ok)
	assert.Equal(t, "1970-01-01 00:00", snap.Label)

	t.Run("hit", func(t *testing.T) {
		_, ok := line.HitTest(56, 20)
		assert.True(t, ok)
		_, ok = line.HitTest(56.5, 20)
		assert.False(t, ok)
	})

	t.Run("two layer label", func(t *testing.T) {
		canvas := paint(line, 1, 1)
		assert.Equal(t, 2, canvas.Count("roundRect"))

		boxes := canvas.Find("roundRect")
		outer, inner := boxes[0].Args, boxes[1].Args
		assert.Equal(t, outer[0]+1, inner[0])
		assert.Equal(t, outer[1]+1, inner[1])
		assert.Equal(t, outer[2]-2, inner[2])

		// label sits on the bottom edge, centered on the line
		assert.InDelta(t, 100, outer[1]+outer[3], 1e-9)
		assert.InDelta(t, 50, outer[0]+outer[2]/2, 1e-9)

		text := canvas.Find("fillText")
		require.Len(t, text, 1)
		assert.Equal(t, "1970-01-01 00:00", text[0].Text)
	})

	t.Run("label without border", func(t *testing.T) {
		line.ApplyOptions(func(o *VerticalLineOptions) {
			o.LabelBorderColor = ""
			o.TimeLayout = "15:04:05"
		})
		line.UpdateAllViews()

		canvas := paint(line, 1, 1)
		assert.Equal(t, 1, canvas.Count("roundRect"))
		assert.Equal(t, "00:00:50", canvas.Find("fillText")[0].Text)
	})

	t.Run("selected handle near the bottom", func(t *testing.T) {
		line.ApplyOptions(func(o *VerticalLineOptions) { o.Selected = true })
		line.UpdateAllViews()

		hit, ok := line.HitTest(52, 62)
		require.True(t, ok)
		assert.Equal(t, 0, hit.Handle)
		assert.Equal(t, core.CursorEWResize, hit.Cursor)
	})

	t.Run("no autoscale", func(t *testing.T) {
		_, ok := line.AutoscaleInfo(0, 100)
		assert.False(t, ok)
	})
}
