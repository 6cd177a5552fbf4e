package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raykavin/chartdraw/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCandles = `time,open,close,low,high,volume
1700000000,10,12,9,13,100
1700000060,12,14,11,15,120
1700000120,14,13,12,16,90
1700000180,13,17,12,18,150
1700000240,17,16,15,19,80
`

const testDrawings = `drawings:
  - id: support
    type: horizontal-line
    data:
      price: 12
  - id: zone
    type: rectangle
    data:
      p1: {time: 1700000000, price: 11}
      p2: {time: 1700000120, price: 15}
  - id: broken
    type: spiral
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	file := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))
	return file
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root, err := newRootCmd(&app{log: logger.Nop(), out: &out, errOut: &bytes.Buffer{}})
	require.NoError(t, err)

	root.SetArgs(args)
	err = root.Execute()
	return out.String(), err
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		root, err := newRootCmd(&app{})
		require.NoError(t, err)

		v, err := newViper(root.PersistentFlags())
		require.NoError(t, err)

		cfg, err := loadConfig(v)
		require.NoError(t, err)
		assert.Equal(t, 800.0, cfg.Width)
		assert.Equal(t, "1h", cfg.Resample)
		assert.Equal(t, storageNone, cfg.Storage)
		assert.Equal(t, "info", cfg.Log.Level)
	})

	t.Run("environment and file", func(t *testing.T) {
		dir := t.TempDir()
		file := writeFile(t, dir, "custom.yaml", "height: 300\nstorage: bunt\ntimeframe: 15m\n")
		t.Setenv("CHARTDRAW_PIXEL_RATIO", "2")
		t.Setenv("CHARTDRAW_CONFIG", file)

		root, err := newRootCmd(&app{})
		require.NoError(t, err)
		v, err := newViper(root.PersistentFlags())
		require.NoError(t, err)

		require.NoError(t, readConfigFile(v))
		cfg, err := loadConfig(v)
		require.NoError(t, err)
		assert.Equal(t, 300.0, cfg.Height)
		assert.Equal(t, 2.0, cfg.PixelRatio)
		assert.Equal(t, storageBunt, cfg.Storage)
		assert.Equal(t, "15m", cfg.Resample)
	})

	t.Run("invalid storage", func(t *testing.T) {
		t.Setenv("CHARTDRAW_STORAGE", "postgres")

		root, err := newRootCmd(&app{})
		require.NoError(t, err)
		v, err := newViper(root.PersistentFlags())
		require.NoError(t, err)

		_, err = loadConfig(v)
		assert.ErrorContains(t, err, "unknown storage")
	})
}

func TestDocumentFormat(t *testing.T) {
	assert.Equal(t, "json", string(documentFormat("a/b.JSON")))
	assert.Equal(t, "yaml", string(documentFormat("a/b.yml")))
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	candles := writeFile(t, dir, "candles.csv", testCandles)
	drawings := writeFile(t, dir, "drawings.yaml", strings.Replace(testDrawings, "type: spiral", "type: vertical-line", 1))

	svg := filepath.Join(dir, "chart.svg")
	_, err := run(t, "render", "--candles", candles, "--timeframe", "1m",
		"--drawings", drawings, "--width", "300", "--height", "200", "-o", svg)
	require.NoError(t, err)

	content, err := os.ReadFile(svg)
	require.NoError(t, err)
	assert.Contains(t, string(content), "<svg")

	png := filepath.Join(dir, "chart.png")
	_, err = run(t, "render", "--candles", candles, "--timeframe", "1m", "-o", png)
	require.NoError(t, err)

	content, err = os.ReadFile(png)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("\x89PNG")))

	_, err = run(t, "render", "-o", filepath.Join(dir, "chart.gif"))
	assert.ErrorContains(t, err, "unknown format")
}

func TestImportAndList(t *testing.T) {
	dir := t.TempDir()
	drawings := writeFile(t, dir, "drawings.yaml", testDrawings)
	db := filepath.Join(dir, "drawings.db")

	_, err := run(t, "import", "--drawings", drawings)
	assert.ErrorContains(t, err, "needs a storage")

	_, err = run(t, "import", "--drawings", drawings, "--storage", "bunt", "--storage-path", db)
	require.NoError(t, err)

	out, err := run(t, "list", "--storage", "bunt", "--storage-path", db)
	require.NoError(t, err)
	assert.Contains(t, out, "support")
	assert.Contains(t, out, "zone")
	assert.NotContains(t, out, "broken")

	out, err = run(t, "list", "--storage", "bunt", "--storage-path", db, "--type", "rectangle")
	require.NoError(t, err)
	assert.Contains(t, out, "zone")
	assert.NotContains(t, out, "support")

	t.Run("document without storage", func(t *testing.T) {
		out, err := run(t, "list", "--drawings", drawings)
		require.NoError(t, err)
		assert.Contains(t, out, "broken")
		assert.Contains(t, out, "price=12")
	})
}

func TestHit(t *testing.T) {
	dir := t.TempDir()
	candles := writeFile(t, dir, "candles.csv", testCandles)
	drawings := writeFile(t, dir, "drawings.yaml", `drawings:
  - id: ceiling
    type: horizontal-line
    data:
      price: 30
`)

	args := []string{"--candles", candles, "--timeframe", "1m", "--drawings", drawings,
		"--width", "200", "--height", "100", "--bar-spacing", "10"}

	// the line at 30 tops the price range and sits at y 10
	out, err := run(t, append([]string{"hit", "100", "10"}, args...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "ceiling")

	out, err = run(t, append([]string{"hit", "100", "80"}, args...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "no drawing")

	_, err = run(t, "hit", "left", "1")
	assert.ErrorContains(t, err, "invalid x")
}
