package chart

import (
	"encoding/json"
	"slices"
	"testing"
	"time"

	"github.com/raykavin/chartdraw/pkg/annotation"
	"github.com/raykavin/chartdraw/pkg/core"
	"github.com/raykavin/chartdraw/pkg/render/recorder"
	"github.com/raykavin/chartdraw/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testCandles are ten bullish bars a minute apart. Lows run 10..19 and
// highs 20..29.
func testCandles() []core.Candle {
	candles := make([]core.Candle, 10)
	for i := range candles {
		candles[i] = core.Candle{
			Pair:     "BTCUSDT",
			Time:     time.Unix(int64(1000+60*i), 0).UTC(),
			Open:     float64(15 + i),
			Close:    float64(16 + i),
			Low:      float64(10 + i),
			High:     float64(20 + i),
			Complete: true,
		}
	}
	return candles
}

func newTestChart(t *testing.T, options ...Option) *Chart {
	t.Helper()

	options = append([]Option{WithSize(200, 100), WithBarSpacing(10)}, options...)
	c, err := NewChart(nil, options...)
	require.NoError(t, err)
	c.SetCandles(testCandles())
	return c
}

func hline(id string, price float64) *annotation.HorizontalLine {
	return annotation.NewHorizontalLine(annotation.HorizontalLineData{Price: price},
		func(o *annotation.HorizontalLineOptions) { o.ExternalID = id })
}

func TestNewChart_InvalidGeometry(t *testing.T) {
	_, err := NewChart(nil, WithSize(0, 100))
	assert.Error(t, err)
}

func TestChart_Autoscale(t *testing.T) {
	c := newTestChart(t)

	r, ok := c.PriceRange()
	require.True(t, ok)
	assert.Equal(t, core.PriceRange{Min: 10, Max: 29}, r)

	require.NoError(t, c.Add(hline("top", 50)))
	require.NoError(t, c.Add(annotation.NewVerticalLine(annotation.VerticalLineData{Time: 1060},
		func(o *annotation.VerticalLineOptions) { o.ExternalID = "v" })))

	r, ok = c.PriceRange()
	require.True(t, ok)
	assert.Equal(t, core.PriceRange{Min: 10, Max: 50}, r)

	assert.True(t, c.Remove("top"))
	r, _ = c.PriceRange()
	assert.Equal(t, 29.0, r.Max)
}

func TestChart_OnCandle(t *testing.T) {
	c := newTestChart(t)

	last := testCandles()[9]
	c.OnCandle(last)

	next := last
	next.Time = last.Time.Add(time.Minute)
	next.High = 100
	next.Complete = false
	c.OnCandle(next)

	r, _ := c.PriceRange()
	assert.Equal(t, 29.0, r.Max)

	next.Complete = true
	c.OnCandle(next)

	r, _ = c.PriceRange()
	assert.Equal(t, 100.0, r.Max)
}

func TestChart_HitTest(t *testing.T) {
	c := newTestChart(t)
	require.NoError(t, c.Add(hline("top", 50)))
	require.NoError(t, c.Add(hline("a", 30)))
	require.NoError(t, c.Add(hline("b", 30)))

	// range 10..50 maps 50 to y 10 and 30 to y 50
	hit, ok := c.HitTest(100, 10)
	require.True(t, ok)
	assert.Equal(t, "top", hit.ExternalID)
	assert.False(t, hit.IsHandle())

	hit, ok = c.HitTest(100, 50)
	require.True(t, ok)
	assert.Equal(t, "b", hit.ExternalID, "later drawing is on top")

	_, ok = c.HitTest(100, 57)
	assert.False(t, ok)
}

func TestChart_HitTestPrefersUpperLayer(t *testing.T) {
	c := newTestChart(t)
	require.NoError(t, c.Add(hline("line", 30)))
	require.NoError(t, c.Add(annotation.NewRectangle(annotation.RectangleData{
		P1: core.AnchorPoint{Time: 1000, Price: 30},
		P2: core.AnchorPoint{Time: 1300, Price: 10},
	}, func(o *annotation.RectangleOptions) { o.ExternalID = "box" })))

	// range 10..30 puts the line and the top border at y 10
	hit, ok := c.HitTest(20, 10)
	require.True(t, ok)
	assert.Equal(t, "line", hit.ExternalID)
}

func TestChart_AddReplacesInPlace(t *testing.T) {
	c := newTestChart(t)
	first := hline("a", 20)
	require.NoError(t, c.Add(first))
	require.NoError(t, c.Add(hline("b", 25)))
	require.NoError(t, c.Add(hline("a", 22)))

	ids := []string{}
	for _, d := range c.Drawings() {
		ids = append(ids, d.ID())
	}
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.False(t, first.IsAttached())

	d, ok := c.Drawing("a")
	require.True(t, ok)
	assert.Equal(t, 22.0, d.(*annotation.HorizontalLine).Data().Price)

	assert.Error(t, c.Add(hline("", 1)))
	assert.False(t, c.Remove("missing"))
}

func TestChart_Select(t *testing.T) {
	c := newTestChart(t)
	a, b := hline("a", 20), hline("b", 25)
	require.NoError(t, c.Add(a))
	require.NoError(t, c.Add(b))

	require.NoError(t, c.Select("a"))
	assert.True(t, a.Options().Selected)
	assert.False(t, b.Options().Selected)

	require.NoError(t, c.Select(""))
	assert.False(t, a.Options().Selected)

	assert.ErrorIs(t, c.Select("zzz"), storage.ErrNotFound)
}

func TestChart_Load(t *testing.T) {
	c := newTestChart(t)
	err := c.Load([]annotation.Record{
		{ID: "h", Type: annotation.TypeHorizontalLine, Data: map[string]any{"price": 12}},
		{ID: "r", Type: annotation.TypeRegions},
	})
	require.NoError(t, err)
	assert.Len(t, c.Drawings(), 2)

	err = c.Load([]annotation.Record{{ID: "x", Type: "spiral"}})
	assert.ErrorIs(t, err, annotation.ErrUnknownType)
}

func TestChart_RecordsKeepTimestamps(t *testing.T) {
	c := newTestChart(t)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	require.NoError(t, c.Load([]annotation.Record{
		{ID: "stored", Type: annotation.TypeHorizontalLine, CreatedAt: created, UpdatedAt: updated},
		{ID: "fresh", Type: annotation.TypeHorizontalLine},
	}))

	records, err := c.Records()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, created, records[0].CreatedAt)
	assert.Equal(t, updated, records[0].UpdatedAt)
	assert.True(t, records[1].UpdatedAt.IsZero())

	encoded, err := json.Marshal(records[1])
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "updated_at")

	require.NoError(t, c.Add(hline("stored", 10)))
	records, err = c.Records()
	require.NoError(t, err)
	assert.True(t, records[0].CreatedAt.IsZero())

	assert.True(t, c.Remove("stored"))
	assert.Empty(t, c.stamps)
}

func TestChart_DrawOrder(t *testing.T) {
	c := newTestChart(t, WithPixelRatio(2, 2))
	require.NoError(t, c.Add(hline("line", 25)))
	require.NoError(t, c.Add(annotation.NewRectangle(annotation.RectangleData{
		P1: core.AnchorPoint{Time: 1000, Price: 12},
		P2: core.AnchorPoint{Time: 1300, Price: 18},
	}, func(o *annotation.RectangleOptions) { o.ExternalID = "box" })))

	canvas := recorder.New()
	c.Draw(canvas)
	assert.Zero(t, canvas.Depth())

	background := canvas.Find("fillRect")[0]
	assert.Equal(t, []float64{0, 0, 400, 200}, background.Args)

	styles := []string{}
	for _, cmd := range canvas.Commands {
		if cmd.Style != "" {
			styles = append(styles, cmd.Style)
		}
	}
	assert.Equal(t, "#ffffff", styles[0])

	box := slices.Index(styles, annotation.DefaultRectangleOptions().FillColor)
	candle := slices.Index(styles, "#26a69a")
	line := slices.Index(styles, annotation.DefaultHorizontalLineOptions().Color)
	require.True(t, box > 0 && candle > 0 && line > 0)
	assert.Less(t, box, candle, "bottom layer paints below the candles")
	assert.Less(t, candle, line, "candles paint below the normal layer")

	// one wick and one body per candle plus background and rectangle fill
	assert.Equal(t, 2*10+2, canvas.Count("fillRect"))
}
