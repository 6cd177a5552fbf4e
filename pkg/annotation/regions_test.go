package annotation

import (
	"testing"

	"github.com/raykavin/chartdraw/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegions(t *testing.T) {
	t.Run("adjacent bars merge into one fill", func(t *testing.T) {
		r := NewRegions(RegionsData{Points: []RegionPoint{{Time: 10}, {Time: 20}, {Time: 30}}})
		attach(r)

		canvas := paint(r, 1, 1)
		fills := canvas.Find("fillRect")
		require.Len(t, fills, 1)
		assert.Equal(t, []float64{5, 0, 30, 100}, fills[0].Args)
		assert.Equal(t, DefaultRegionsOptions().Color, canvas.Find("fillStyle")[0].Style)
	})

	t.Run("another color splits the run", func(t *testing.T) {
		r := NewRegions(RegionsData{Points: []RegionPoint{
			{Time: 10, Color: "red"},
			{Time: 20, Color: "blue"},
			{Time: 30, Color: "red"},
		}})
		attach(r)

		canvas := paint(r, 2, 1)
		fills := canvas.Find("fillRect")
		require.Len(t, fills, 3)
		assert.Equal(t, []float64{10, 0, 20, 100}, fills[0].Args)
		assert.Equal(t, []float64{50, 0, 20, 100}, fills[2].Args)
	})

	t.Run("a missing bar is never bridged", func(t *testing.T) {
		r := NewRegions(RegionsData{Points: []RegionPoint{{Time: 10}, {Time: 20}, {Time: 40}}})
		attach(r)

		assert.Equal(t, 2, paint(r, 1, 1).Count("fillRect"))
	})

	t.Run("not interactive", func(t *testing.T) {
		r := NewRegions(RegionsData{Points: []RegionPoint{{Time: 10}}})
		attach(r)

		_, ok := r.HitTest(10, 50)
		assert.False(t, ok)
		_, ok = r.AutoscaleInfo(0, 100)
		assert.False(t, ok)
		assert.Equal(t, core.ZOrderBottom, r.PaneViews()[0].ZOrder())
	})
}
