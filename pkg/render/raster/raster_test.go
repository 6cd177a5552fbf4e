package raster

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rgb(c *Canvas, x, y int) (r, g, b uint32) {
	r, g, b, _ = c.Image().At(x, y).RGBA()
	return r >> 8, g >> 8, b >> 8
}

func TestCanvas_FillRect(t *testing.T) {
	c, err := New(20, 20)
	require.NoError(t, err)
	defer c.Close()

	c.Clear("#ffffff")
	c.SetFillColor("#ff0000")
	c.FillRect(5, 5, 10, 10)
	require.NoError(t, c.Err())

	r, g, b := rgb(c, 10, 10)
	assert.Greater(t, r, uint32(200))
	assert.Less(t, g, uint32(50))
	assert.Less(t, b, uint32(50))

	r, g, b = rgb(c, 1, 1)
	assert.Greater(t, r, uint32(200))
	assert.Greater(t, g, uint32(200))
	assert.Greater(t, b, uint32(200))

	var buf bytes.Buffer
	require.NoError(t, c.EncodePNG(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestCanvas_SaveRestore(t *testing.T) {
	c, err := New(10, 10)
	require.NoError(t, err)
	defer c.Close()

	c.SetLineWidth(3)
	c.SetLineDash([]float64{2, 2})
	c.Save()
	c.SetLineWidth(1)
	c.SetLineDash(nil)
	c.Restore()

	assert.Equal(t, 3.0, c.state.width)
	assert.Equal(t, []float64{2, 2}, c.state.dash)

	w, h := c.MeasureText("chart")
	assert.Greater(t, w, 0.0)
	assert.Greater(t, h, 0.0)
}
