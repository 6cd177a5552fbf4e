package chart

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/raykavin/chartdraw/pkg/annotation"
	"github.com/raykavin/chartdraw/pkg/core"
	"github.com/raykavin/chartdraw/pkg/storage"
)

// candle is the JSON form of a bar sent to the viewer
type candle struct {
	Time   core.Time `json:"time"`
	Open   float64   `json:"open"`
	Close  float64   `json:"close"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Volume float64   `json:"volume"`
}

// hitResponse is the answer of the hit endpoint
type hitResponse struct {
	Hit    bool              `json:"hit"`
	ID     string            `json:"id,omitempty"`
	Result *core.HoverResult `json:"result,omitempty"`
}

// patchRequest carries merge patches for the data and options of a drawing
type patchRequest struct {
	Data    json.RawMessage `json:"data,omitempty"`
	Options json.RawMessage `json:"options,omitempty"`
}

// Handler returns the HTTP routes of the chart
func (c *Chart) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /assets/", http.FileServer(http.FS(staticFiles)))
	mux.HandleFunc("GET /assets/chart.js", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/javascript")
		fmt.Fprint(w, c.scriptContent)
	})

	mux.HandleFunc("GET /health", c.handleHealth)
	mux.HandleFunc("GET /data", c.handleData)
	mux.HandleFunc("GET /render.png", c.handleRender(FormatPNG))
	mux.HandleFunc("GET /render.svg", c.handleRender(FormatSVG))
	mux.HandleFunc("GET /hit", c.handleHit)
	mux.HandleFunc("POST /select", c.handleSelect)
	mux.HandleFunc("GET /drawings", c.handleListDrawings)
	mux.HandleFunc("POST /drawings", c.handleSaveDrawing)
	mux.HandleFunc("PATCH /drawings/{id}", c.handlePatchDrawing)
	mux.HandleFunc("DELETE /drawings/{id}", c.handleDeleteDrawing)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /{$}", c.handleIndex)

	return mux
}

// Start initializes the HTTP server for the chart
func (c *Chart) Start() error {
	c.log.Infof("Chart available at http://localhost:%d", c.port)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", c.port),
		Handler:           c.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return server.ListenAndServe()
}

func (c *Chart) writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		c.log.Error("JSON encoding failed: ", err)
	}
}

func (c *Chart) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		c.log.WithError(err).Error("request failed")
	}
	c.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// handleHealth reports the size of the chart and its last candle update
func (c *Chart) handleHealth(w http.ResponseWriter, _ *http.Request) {
	c.Lock()
	status := map[string]any{
		"candles":     len(c.candles),
		"drawings":    len(c.drawings),
		"last_update": c.lastUpdate,
	}
	c.Unlock()

	c.writeJSON(w, http.StatusOK, status)
}

// handleIndex renders the viewer page
func (c *Chart) handleIndex(w http.ResponseWriter, _ *http.Request) {
	width, height := c.BitmapSize()
	types := annotation.Types()

	w.Header().Set("Content-Type", "text/html")
	err := c.indexHTML.Execute(w, map[string]any{
		"width":  c.width,
		"height": c.height,
		"bitmap": fmt.Sprintf("%dx%d", width, height),
		"types":  types,
	})
	if err != nil {
		c.log.Error("Template execution failed: ", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// handleData returns candles, drawings and the autoscaled price range
func (c *Chart) handleData(w http.ResponseWriter, _ *http.Request) {
	records, err := c.Records()
	if err != nil {
		c.writeError(w, http.StatusInternalServerError, err)
		return
	}

	priceRange, _ := c.PriceRange()

	c.Lock()
	candles := make([]candle, 0, len(c.candles))
	for _, k := range c.candles {
		candles = append(candles, candle{
			Time:   k.ScaleTime(),
			Open:   k.Open,
			Close:  k.Close,
			High:   k.High,
			Low:    k.Low,
			Volume: k.Volume,
		})
	}
	c.Unlock()

	c.writeJSON(w, http.StatusOK, map[string]any{
		"candles":     candles,
		"drawings":    records,
		"price_range": priceRange,
	})
}

func (c *Chart) handleRender(format Format) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Cache-Control", "no-store")
		if err := c.Render(w, format); err != nil {
			c.log.WithError(err).Errorf("failed to render %s", format)
			http.Error(w, "Failed to render chart", http.StatusInternalServerError)
		}
	}
}

func queryFloat(r *http.Request, name string) (float64, error) {
	value, err := strconv.ParseFloat(r.URL.Query().Get(name), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return value, nil
}

// handleHit hit tests a media pixel given as x and y query parameters
func (c *Chart) handleHit(w http.ResponseWriter, r *http.Request) {
	x, err := queryFloat(r, "x")
	if err != nil {
		c.writeError(w, http.StatusBadRequest, err)
		return
	}
	y, err := queryFloat(r, "y")
	if err != nil {
		c.writeError(w, http.StatusBadRequest, err)
		return
	}

	hit, ok := c.HitTest(x, y)
	if !ok {
		c.writeJSON(w, http.StatusOK, hitResponse{})
		return
	}
	c.writeJSON(w, http.StatusOK, hitResponse{Hit: true, ID: hit.String(), Result: &hit})
}

// handleSelect selects the drawing named by the id query parameter
func (c *Chart) handleSelect(w http.ResponseWriter, r *http.Request) {
	err := c.Select(r.URL.Query().Get("id"))
	if errors.Is(err, storage.ErrNotFound) {
		c.writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		c.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Records captures every drawing as a record, in insertion order
func (c *Chart) Records() ([]annotation.Record, error) {
	c.Lock()
	defer c.Unlock()

	drawings := c.ordered()
	records := make([]annotation.Record, 0, len(drawings))
	for _, d := range drawings {
		rec, err := annotation.ToRecord(d)
		if err != nil {
			return nil, err
		}
		if st, ok := c.stamps[rec.ID]; ok {
			rec.CreatedAt, rec.UpdatedAt = st.created, st.updated
		}
		records = append(records, rec)
	}
	return records, nil
}

func (c *Chart) handleListDrawings(w http.ResponseWriter, _ *http.Request) {
	records, err := c.Records()
	if err != nil {
		c.writeError(w, http.StatusInternalServerError, err)
		return
	}
	c.writeJSON(w, http.StatusOK, annotation.Document{Drawings: records})
}

// persist stores the current state of a drawing when a storage is set
func (c *Chart) persist(d annotation.Drawing) (annotation.Record, error) {
	c.Lock()
	rec, err := annotation.ToRecord(d)
	c.Unlock()
	if err != nil {
		return rec, err
	}
	if c.storage == nil {
		return rec, nil
	}
	if err := c.storage.Save(&rec); err != nil {
		return rec, fmt.Errorf("failed to persist drawing %s: %w", rec.ID, err)
	}
	c.setStamp(rec)
	return rec, nil
}

// handleSaveDrawing creates or replaces a drawing from a record
func (c *Chart) handleSaveDrawing(w http.ResponseWriter, r *http.Request) {
	var rec annotation.Record
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&rec); err != nil {
		c.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid drawing: %w", err))
		return
	}

	d, err := annotation.Build(rec)
	if errors.Is(err, annotation.ErrUnknownType) {
		c.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		c.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	if err := c.Add(d); err != nil {
		c.writeError(w, http.StatusBadRequest, err)
		return
	}

	saved, err := c.persist(d)
	if err != nil {
		c.writeError(w, http.StatusInternalServerError, err)
		return
	}

	c.log.WithField("id", saved.ID).WithField("type", saved.Type).Debug("drawing saved")
	c.writeJSON(w, http.StatusCreated, saved)
}

// handlePatchDrawing merges data and option patches into a drawing
func (c *Chart) handlePatchDrawing(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var patch patchRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&patch); err != nil {
		c.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid patch: %w", err))
		return
	}

	c.Lock()
	d, ok := c.drawings[id]
	var err error
	if ok {
		err = d.Merge(patch.Data, patch.Options)
	}
	c.Unlock()

	if !ok {
		c.writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", storage.ErrNotFound, id))
		return
	}
	if err != nil {
		c.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	saved, err := c.persist(d)
	if err != nil {
		c.writeError(w, http.StatusInternalServerError, err)
		return
	}
	c.writeJSON(w, http.StatusOK, saved)
}

func (c *Chart) handleDeleteDrawing(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !c.Remove(id) {
		c.writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", storage.ErrNotFound, id))
		return
	}

	if c.storage != nil {
		if err := c.storage.Delete(id); err != nil && !errors.Is(err, storage.ErrNotFound) {
			c.writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
