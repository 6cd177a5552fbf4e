package chart

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/raykavin/chartdraw/pkg/annotation"
	"github.com/raykavin/chartdraw/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, storage.Storage) {
	t.Helper()

	store, err := storage.FromMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	c := newTestChart(t, WithStorage(store))
	server := httptest.NewServer(c.Handler())
	t.Cleanup(server.Close)

	return server, store
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	content, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, content
}

func TestServer_Drawings(t *testing.T) {
	server, store := newTestServer(t)

	res, body := do(t, http.MethodPost, server.URL+"/drawings",
		`{"id": "h1", "type": "horizontal-line", "data": {"price": 30}, "options": {"color": "#ff0000"}}`)
	require.Equal(t, http.StatusCreated, res.StatusCode, string(body))

	saved, err := store.Get("h1")
	require.NoError(t, err)
	assert.Equal(t, 30.0, saved.Data["price"])
	assert.Equal(t, "#ff0000", saved.Options["color"])

	t.Run("list", func(t *testing.T) {
		res, body := do(t, http.MethodGet, server.URL+"/drawings", "")
		require.Equal(t, http.StatusOK, res.StatusCode)

		doc, err := annotation.DecodeDocument(bytes.NewReader(body), annotation.FormatJSON)
		require.NoError(t, err)
		require.Len(t, doc.Drawings, 1)
		assert.Equal(t, "h1", doc.Drawings[0].ID)
	})

	t.Run("hit", func(t *testing.T) {
		// range 10..30 puts the line at y 10
		res, body := do(t, http.MethodGet, server.URL+"/hit?x=100&y=12", "")
		require.Equal(t, http.StatusOK, res.StatusCode)

		var answer hitResponse
		require.NoError(t, json.Unmarshal(body, &answer))
		assert.True(t, answer.Hit)
		assert.Equal(t, "h1", answer.ID)

		res, body = do(t, http.MethodGet, server.URL+"/hit?x=100&y=80", "")
		require.Equal(t, http.StatusOK, res.StatusCode)
		require.NoError(t, json.Unmarshal(body, &answer))
		assert.False(t, answer.Hit)

		res, _ = do(t, http.MethodGet, server.URL+"/hit?x=left&y=1", "")
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})

	t.Run("select", func(t *testing.T) {
		res, _ := do(t, http.MethodPost, server.URL+"/select?id=h1", "")
		assert.Equal(t, http.StatusNoContent, res.StatusCode)

		res, _ = do(t, http.MethodPost, server.URL+"/select?id=nope", "")
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})

	t.Run("patch", func(t *testing.T) {
		res, body := do(t, http.MethodPatch, server.URL+"/drawings/h1",
			`{"data": {"price": 25}, "options": {"width": 3}}`)
		require.Equal(t, http.StatusOK, res.StatusCode, string(body))

		saved, err := store.Get("h1")
		require.NoError(t, err)
		assert.Equal(t, 25.0, saved.Data["price"])
		assert.Equal(t, 3.0, saved.Options["width"])
		assert.Equal(t, "#ff0000", saved.Options["color"])

		res, _ = do(t, http.MethodPatch, server.URL+"/drawings/nope", `{}`)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})

	t.Run("patch with invalid options changes nothing", func(t *testing.T) {
		res, _ := do(t, http.MethodPatch, server.URL+"/drawings/h1",
			`{"data": {"price": 99}, "options": {"width": "wide"}}`)
		require.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)

		saved, err := store.Get("h1")
		require.NoError(t, err)
		assert.Equal(t, 25.0, saved.Data["price"])

		res, body := do(t, http.MethodGet, server.URL+"/drawings", "")
		require.Equal(t, http.StatusOK, res.StatusCode)
		doc, err := annotation.DecodeDocument(bytes.NewReader(body), annotation.FormatJSON)
		require.NoError(t, err)
		require.Len(t, doc.Drawings, 1)
		assert.Equal(t, 25.0, doc.Drawings[0].Data["price"])
		assert.False(t, doc.Drawings[0].UpdatedAt.IsZero())
		assert.True(t, saved.UpdatedAt.Equal(doc.Drawings[0].UpdatedAt))
	})

	t.Run("invalid records", func(t *testing.T) {
		res, _ := do(t, http.MethodPost, server.URL+"/drawings", `{"id": "x", "type": "spiral"}`)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)

		res, _ = do(t, http.MethodPost, server.URL+"/drawings", `{`)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)

		res, _ = do(t, http.MethodPost, server.URL+"/drawings",
			`{"id": "x", "type": "rectangle", "options": {"width": "wide"}}`)
		assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	})

	t.Run("delete", func(t *testing.T) {
		res, _ := do(t, http.MethodDelete, server.URL+"/drawings/h1", "")
		assert.Equal(t, http.StatusNoContent, res.StatusCode)

		_, err := store.Get("h1")
		assert.ErrorIs(t, err, storage.ErrNotFound)

		res, _ = do(t, http.MethodDelete, server.URL+"/drawings/h1", "")
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})
}

func TestServer_Render(t *testing.T) {
	server, _ := newTestServer(t)
	do(t, http.MethodPost, server.URL+"/drawings",
		`{"id": "box", "type": "rectangle", "data": {"p1": {"time": 1000, "price": 12}, "p2": {"time": 1300, "price": 18}}}`)

	res, body := do(t, http.MethodGet, server.URL+"/render.svg", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "image/svg+xml", res.Header.Get("Content-Type"))
	assert.Contains(t, string(body), "<svg")

	res, body = do(t, http.MethodGet, server.URL+"/render.png", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "image/png", res.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("\x89PNG")))

	res, body = do(t, http.MethodGet, server.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "chartdraw_renders_total")
}

func TestServer_Pages(t *testing.T) {
	server, _ := newTestServer(t)

	res, body := do(t, http.MethodGet, server.URL+"/", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "trend-line")
	assert.Contains(t, string(body), "/assets/chart.js")

	res, body = do(t, http.MethodGet, server.URL+"/assets/chart.js", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/javascript", res.Header.Get("Content-Type"))
	assert.Contains(t, string(body), "/hit?x=")

	res, body = do(t, http.MethodGet, server.URL+"/health", "")
	require.Equal(t, http.StatusOK, res.StatusCode)

	var health map[string]any
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, 10.0, health["candles"])

	res, body = do(t, http.MethodGet, server.URL+"/data", "")
	require.Equal(t, http.StatusOK, res.StatusCode)

	var data struct {
		Candles    []candle       `json:"candles"`
		PriceRange map[string]any `json:"price_range"`
	}
	require.NoError(t, json.Unmarshal(body, &data))
	assert.Len(t, data.Candles, 10)
	assert.Equal(t, 29.0, data.PriceRange["max"])
}
