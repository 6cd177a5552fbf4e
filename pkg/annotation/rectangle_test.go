package annotation

import (
	"testing"

	"github.com/raykavin/chartdraw/pkg/core"
	"github.com/raykavin/chartdraw/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRectangle(options ...func(*RectangleOptions)) *Rectangle {
	rect := NewRectangle(RectangleData{
		P1: core.AnchorPoint{Time: 20, Price: 40},
		P2: core.AnchorPoint{Time: 80, Price: 60},
	}, append([]func(*RectangleOptions){func(o *RectangleOptions) { o.ExternalID = "box" }}, options...)...)
	attach(rect)
	return rect
}

func TestRectangle_ExtendModes(t *testing.T) {
	tests := []struct {
		mode        geometry.ExtendMode
		left, right float64
	}{
		{geometry.ExtendNone, 20, 80},
		{geometry.ExtendLeft, 0, 80},
		{geometry.ExtendRight, 20, 200},
		{geometry.ExtendBoth, 0, 200},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			rect := newTestRectangle(func(o *RectangleOptions) { o.Extend = tt.mode })

			snap, ok := rect.Snapshot()
			require.True(t, ok)

			left, right := snap.Extent()
			assert.Equal(t, tt.left, left)
			assert.Equal(t, tt.right, right)

			// top and bottom never move
			bounds := snap.Bounds()
			assert.Equal(t, 40.0, bounds.Top)
			assert.Equal(t, 60.0, bounds.Bottom)
		})
	}
}

func TestRectangle_Draw(t *testing.T) {
	t.Run("fill and four borders", func(t *testing.T) {
		canvas := paint(newTestRectangle(), 1, 1)

		fills := canvas.Find("fillRect")
		require.Len(t, fills, 1)
		assert.Equal(t, []float64{20, 40, 60, 20}, fills[0].Args)
		assert.Equal(t, 4, canvas.Count("stroke"))
	})

	t.Run("extended sides lose their border", func(t *testing.T) {
		canvas := paint(newTestRectangle(func(o *RectangleOptions) { o.Extend = geometry.ExtendBoth }), 2, 1)

		assert.Equal(t, []float64{0, 40, 400, 20}, canvas.Find("fillRect")[0].Args)
		assert.Equal(t, 2, canvas.Count("stroke"))
	})

	t.Run("middle line", func(t *testing.T) {
		canvas := paint(newTestRectangle(func(o *RectangleOptions) { o.ShowMiddleLine = true }), 1, 1)

		assert.Equal(t, 5, canvas.Count("stroke"))
		dashes := canvas.Find("lineDash")
		assert.Contains(t, dashes[len(dashes)-1].Args, 2.0)
	})

	t.Run("border widths follow their axis ratio", func(t *testing.T) {
		canvas := paint(newTestRectangle(func(o *RectangleOptions) { o.Width = 1 }), 2, 3)

		widths := canvas.Find("lineWidth")
		require.Len(t, widths, 2)
		assert.Equal(t, []float64{3}, widths[0].Args)
		assert.Equal(t, []float64{2}, widths[1].Args)
	})

	t.Run("corner handles", func(t *testing.T) {
		canvas := paint(newTestRectangle(func(o *RectangleOptions) { o.Selected = true }), 1, 1)
		assert.Equal(t, 4, canvas.Count("circle"))

		canvas = paint(newTestRectangle(func(o *RectangleOptions) {
			o.Selected = true
			o.EdgeHandles = true
		}), 1, 1)
		assert.Equal(t, 16, canvas.Count("circle"))
	})
}

func TestRectangle_HitTest(t *testing.T) {
	t.Run("borders only by default", func(t *testing.T) {
		rect := newTestRectangle()

		_, ok := rect.HitTest(20, 50)
		assert.True(t, ok)
		_, ok = rect.HitTest(50, 46)
		assert.True(t, ok)
		_, ok = rect.HitTest(50, 50)
		assert.False(t, ok)
		_, ok = rect.HitTest(10, 50)
		assert.False(t, ok)
	})

	t.Run("extended side is not a border", func(t *testing.T) {
		rect := newTestRectangle(func(o *RectangleOptions) { o.Extend = geometry.ExtendLeft })

		_, ok := rect.HitTest(20, 50)
		assert.False(t, ok)
		_, ok = rect.HitTest(5, 40)
		assert.True(t, ok)
	})

	t.Run("middle line", func(t *testing.T) {
		rect := newTestRectangle(func(o *RectangleOptions) { o.ShowMiddleLine = true })

		hit, ok := rect.HitTest(50, 50)
		require.True(t, ok)
		assert.Equal(t, core.CursorPointer, hit.Cursor)
	})

	t.Run("interior", func(t *testing.T) {
		rect := newTestRectangle(func(o *RectangleOptions) { o.InteriorHit = true })

		hit, ok := rect.HitTest(50, 50)
		require.True(t, ok)
		assert.Equal(t, core.CursorMove, hit.Cursor)
		assert.Equal(t, "box", hit.String())
	})

	t.Run("two handles", func(t *testing.T) {
		rect := newTestRectangle(func(o *RectangleOptions) { o.Selected = true })

		hit, ok := rect.HitTest(78, 58)
		require.True(t, ok)
		assert.Equal(t, 1, hit.Handle)

		hit, ok = rect.HitTest(51, 41)
		require.True(t, ok)
		assert.Equal(t, core.NoHandle, hit.Handle)
	})

	t.Run("edge handles", func(t *testing.T) {
		rect := newTestRectangle(func(o *RectangleOptions) {
			o.Selected = true
			o.EdgeHandles = true
		})

		expected := map[int]geometry.Point{
			0: geometry.Pt(20, 40),
			1: geometry.Pt(80, 60),
			2: geometry.Pt(20, 60),
			3: geometry.Pt(80, 40),
			4: geometry.Pt(50, 40),
			5: geometry.Pt(80, 50),
			6: geometry.Pt(50, 60),
			7: geometry.Pt(20, 50),
		}
		for handle, at := range expected {
			hit, ok := rect.HitTest(at.X+1, at.Y+1)
			require.True(t, ok)
			assert.Equal(t, handle, hit.Handle)
		}
	})
}

func TestRectangle_Autoscale(t *testing.T) {
	rect := newTestRectangle()

	_, ok := rect.AutoscaleInfo(9, 20)
	assert.False(t, ok)
	_, ok = rect.AutoscaleInfo(0, 1.5)
	assert.False(t, ok)

	r, ok := rect.AutoscaleInfo(0, 2)
	require.True(t, ok)
	assert.Equal(t, core.PriceRange{Min: 40, Max: 60}, r)

	r, ok = rect.AutoscaleInfo(8, 30)
	require.True(t, ok)
	assert.Equal(t, core.PriceRange{Min: 40, Max: 60}, r)
}

func TestRectangle_InvalidExtendFallsBack(t *testing.T) {
	rect := newTestRectangle()
	require.NoError(t, rect.MergeOptions([]byte(`{"extend":"sideways"}`)))
	assert.Equal(t, geometry.ExtendNone, rect.Options().Extend)
	assert.Equal(t, core.ZOrderBottom, rect.PaneViews()[0].ZOrder())
}
