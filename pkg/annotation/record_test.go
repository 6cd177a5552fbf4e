package annotation

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/raykavin/chartdraw/pkg/core"
	"github.com/raykavin/chartdraw/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	t.Run("rectangle with partial options", func(t *testing.T) {
		d, err := Build(Record{
			ID:   "r1",
			Type: TypeRectangle,
			Data: map[string]any{
				"p1": map[string]any{"time": 20, "price": 40},
				"p2": map[string]any{"time": 80, "price": 60},
			},
			Options: map[string]any{"extend": "both", "width": 9},
		})
		require.NoError(t, err)

		rect, ok := d.(*Rectangle)
		require.True(t, ok)
		assert.Equal(t, "r1", rect.ID())
		assert.Equal(t, geometry.ExtendBoth, rect.Options().Extend)
		assert.Equal(t, core.MaxLineWidth, rect.Options().Width)
		assert.Equal(t, DefaultRectangleOptions().FillColor, rect.Options().FillColor)
		assert.Equal(t, core.AnchorPoint{Time: 80, Price: 60}, rect.Data().P2)
	})

	t.Run("missing id gets a uuid", func(t *testing.T) {
		d, err := Build(Record{Type: TypeHorizontalLine, Data: map[string]any{"price": 10}})
		require.NoError(t, err)

		_, err = uuid.Parse(d.ID())
		assert.NoError(t, err)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := Build(Record{Type: "spiral"})
		assert.ErrorIs(t, err, ErrUnknownType)
	})

	t.Run("every type builds", func(t *testing.T) {
		for _, typ := range Types() {
			d, err := Build(Record{ID: string(typ), Type: typ})
			require.NoError(t, err)
			assert.Equal(t, string(typ), d.Type())
		}
		assert.Len(t, Types(), 7)
	})
}

func TestToRecord(t *testing.T) {
	line := NewTrendLine(TrendLineData{
		P1: core.AnchorPoint{Time: 1, Price: 2},
		P2: core.AnchorPoint{Time: 3, Price: 4},
	}, func(o *TrendLineOptions) {
		o.ExternalID = "t1"
		o.Extend = true
	})

	rec, err := ToRecord(line)
	require.NoError(t, err)
	assert.Equal(t, "t1", rec.ID)
	assert.Equal(t, TypeTrendLine, rec.Type)
	assert.Equal(t, true, rec.Options["extend"])
	assert.NotContains(t, rec.Options, "externalId")
	assert.Equal(t, map[string]any{"time": 3.0, "price": 4.0}, rec.Data["p2"])

	back, err := Build(rec)
	require.NoError(t, err)
	assert.Equal(t, line.Data(), back.(*TrendLine).Data())
	assert.Equal(t, line.Options(), back.(*TrendLine).Options())
}

func TestDocument(t *testing.T) {
	const source = `
drawings:
  - id: h1
    type: horizontal-line
    data:
      price: 100
    options:
      color: "#ff0000"
      showLabel: false
  - id: p1
    type: position
    data:
      entry: {time: 50, price: 50}
      target: 70
      stop: 40
    options:
      direction: short
`

	doc, err := DecodeDocument(strings.NewReader(source), FormatYAML)
	require.NoError(t, err)
	require.Len(t, doc.Drawings, 2)

	d, err := Build(doc.Drawings[0])
	require.NoError(t, err)
	line := d.(*HorizontalLine)
	assert.Equal(t, 100.0, line.Data().Price)
	assert.Equal(t, "#ff0000", line.Options().Color)
	assert.False(t, line.Options().ShowLabel)

	d, err = Build(doc.Drawings[1])
	require.NoError(t, err)
	pos := d.(*Position)
	assert.Equal(t, Short, pos.Options().Direction)
	assert.Equal(t, 40.0, pos.Data().Stop)

	t.Run("json round trip", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, EncodeDocument(&buf, FormatJSON, doc))

		back, err := DecodeDocument(&buf, FormatJSON)
		require.NoError(t, err)
		require.Len(t, back.Drawings, 2)
		assert.Equal(t, "p1", back.Drawings[1].ID)
		assert.Equal(t, TypePosition, back.Drawings[1].Type)
	})

	t.Run("empty input", func(t *testing.T) {
		doc, err := DecodeDocument(strings.NewReader(""), FormatYAML)
		require.NoError(t, err)
		assert.Empty(t, doc.Drawings)
	})
}
