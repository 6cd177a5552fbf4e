// Package chart is an in-process host for drawings: it owns the time and
// price scales, paints candles and drawings in z-order and serves them
// over HTTP.
package chart

import (
	"embed"
	"fmt"
	"html/template"
	"sync"
	"sync/atomic"
	"time"

	"github.com/StudioSol/set"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/raykavin/chartdraw/pkg/annotation"
	"github.com/raykavin/chartdraw/pkg/core"
	"github.com/raykavin/chartdraw/pkg/logger"
	"github.com/raykavin/chartdraw/pkg/primitive"
	"github.com/raykavin/chartdraw/pkg/storage"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
)

// Static assets embedded in the binary
var (
	//go:embed assets
	staticFiles embed.FS
)

// Chart hosts drawings over a candle series
type Chart struct {
	sync.Mutex
	port       int
	debug      bool
	width      float64
	height     float64
	hpr, vpr   float64
	barSpacing float64
	background string
	upColor    string
	downColor  string

	candles  []core.Candle
	drawings map[string]annotation.Drawing
	order    *set.LinkedHashSetString
	stamps   map[string]stamp

	timeScale  *TimeScale
	priceScale *PriceScale
	host       *primitive.Host
	dirty      atomic.Bool

	storage       storage.Storage
	scriptContent string
	indexHTML     *template.Template
	lastUpdate    time.Time
	log           logger.Logger
}

// Option defines a function type for configuring a Chart instance
type Option func(*Chart)

// WithPort sets the HTTP server port
func WithPort(port int) Option {
	return func(chart *Chart) {
		chart.port = port
	}
}

// WithDebug disables minification of the viewer script
func WithDebug() Option {
	return func(chart *Chart) {
		chart.debug = true
	}
}

// WithSize sets the pane size in media pixels
func WithSize(width, height float64) Option {
	return func(chart *Chart) {
		chart.width, chart.height = width, height
	}
}

// WithPixelRatio sets the horizontal and vertical device pixel ratios
func WithPixelRatio(horizontal, vertical float64) Option {
	return func(chart *Chart) {
		chart.hpr, chart.vpr = horizontal, vertical
	}
}

// WithBarSpacing sets the distance between two bars in media pixels
func WithBarSpacing(spacing float64) Option {
	return func(chart *Chart) {
		chart.barSpacing = spacing
	}
}

// WithPrecision sets the number of decimals of formatted prices
func WithPrecision(precision int) Option {
	return func(chart *Chart) {
		chart.priceScale.precision = precision
	}
}

// WithColors sets the background and the bullish and bearish candle colors
func WithColors(background, up, down string) Option {
	return func(chart *Chart) {
		chart.background, chart.upColor, chart.downColor = background, up, down
	}
}

// WithStorage persists drawings changed through the HTTP API
func WithStorage(s storage.Storage) Option {
	return func(chart *Chart) {
		chart.storage = s
	}
}

// NewChart creates a new chart instance with the provided options
func NewChart(log logger.Logger, options ...Option) (*Chart, error) {
	if log == nil {
		log = logger.Nop()
	}

	chart := &Chart{
		port:       8080,
		width:      800,
		height:     400,
		hpr:        1,
		vpr:        1,
		barSpacing: 6,
		background: "#ffffff",
		upColor:    "#26a69a",
		downColor:  "#ef5350",
		drawings:   make(map[string]annotation.Drawing),
		stamps:     make(map[string]stamp),
		order:      set.NewLinkedHashSetString(),
		timeScale:  &TimeScale{},
		priceScale: &PriceScale{margin: 0.1, precision: 2},
		log:        log,
	}

	for _, option := range options {
		option(chart)
	}

	if chart.width <= 0 || chart.height <= 0 || chart.barSpacing <= 0 {
		return nil, fmt.Errorf("invalid chart geometry: %gx%g, bar spacing %g",
			chart.width, chart.height, chart.barSpacing)
	}

	chart.host = &primitive.Host{
		Chart:         chart.timeScale,
		Series:        chart.priceScale,
		RequestUpdate: chart.invalidate,
	}
	chart.dirty.Store(true)

	var err error
	chart.indexHTML, err = template.ParseFS(staticFiles, "assets/chart.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse chart template: %w", err)
	}

	chartJS, err := staticFiles.ReadFile("assets/chart.js")
	if err != nil {
		return nil, fmt.Errorf("failed to read chart.js: %w", err)
	}

	transpiled := api.Transform(string(chartJS), api.TransformOptions{
		Loader:            api.LoaderJS,
		Target:            api.ES2015,
		MinifySyntax:      !chart.debug,
		MinifyIdentifiers: !chart.debug,
		MinifyWhitespace:  !chart.debug,
	})
	if len(transpiled.Errors) > 0 {
		return nil, fmt.Errorf("chart script failed with: %v", transpiled.Errors)
	}
	chart.scriptContent = string(transpiled.Code)

	return chart, nil
}

// invalidate is the update callback handed to drawings. It never takes the
// chart lock, so drawings may call it while the chart holds it.
func (c *Chart) invalidate() {
	c.dirty.Store(true)
}

// SetCandles replaces the series
func (c *Chart) SetCandles(candles []core.Candle) {
	c.Lock()
	defer c.Unlock()

	c.candles = append([]core.Candle(nil), candles...)
	c.lastUpdate = time.Now()
	c.invalidate()
}

// OnCandle appends a completed candle newer than the last one
func (c *Chart) OnCandle(candle core.Candle) {
	c.Lock()
	defer c.Unlock()

	last := len(c.candles) - 1
	if !candle.Complete || (last >= 0 && !candle.Time.After(c.candles[last].Time)) {
		return
	}

	c.candles = append(c.candles, candle)
	c.lastUpdate = time.Now()
	c.invalidate()
}

// Add attaches a drawing. A drawing with the id of an existing one
// replaces it in place.
func (c *Chart) Add(d annotation.Drawing) error {
	if d.ID() == "" {
		return fmt.Errorf("failed to add %s drawing: empty id", d.Type())
	}

	c.Lock()
	defer c.Unlock()

	if prev, ok := c.drawings[d.ID()]; ok {
		prev.Detached()
		delete(c.stamps, d.ID())
	} else {
		c.order.Add(d.ID())
	}
	c.drawings[d.ID()] = d
	d.Attached(c.host)
	metricDrawings.Set(float64(len(c.drawings)))

	return nil
}

// Remove detaches the drawing with the given id
func (c *Chart) Remove(id string) bool {
	c.Lock()
	defer c.Unlock()

	d, ok := c.drawings[id]
	if !ok {
		return false
	}

	d.Detached()
	delete(c.drawings, id)
	delete(c.stamps, id)
	c.order.Remove(id)
	metricDrawings.Set(float64(len(c.drawings)))
	c.invalidate()
	return true
}

// Drawing returns the drawing with the given id
func (c *Chart) Drawing(id string) (annotation.Drawing, bool) {
	c.Lock()
	defer c.Unlock()

	d, ok := c.drawings[id]
	return d, ok
}

// Drawings returns the drawings in insertion order
func (c *Chart) Drawings() []annotation.Drawing {
	c.Lock()
	defer c.Unlock()
	return c.ordered()
}

func (c *Chart) ordered() []annotation.Drawing {
	drawings := make([]annotation.Drawing, 0, len(c.drawings))
	for id := range c.order.Iter() {
		if d, ok := c.drawings[id]; ok {
			drawings = append(drawings, d)
		}
	}
	return drawings
}

// Select marks one drawing as selected and clears the others. An empty
// id clears the selection.
func (c *Chart) Select(id string) error {
	c.Lock()
	defer c.Unlock()

	if _, ok := c.drawings[id]; id != "" && !ok {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}

	for _, d := range c.ordered() {
		patch := fmt.Sprintf(`{"selected":%t}`, d.ID() == id)
		if err := d.MergeOptions([]byte(patch)); err != nil {
			return fmt.Errorf("failed to select %s: %w", d.ID(), err)
		}
	}
	return nil
}

// Load builds and attaches every record
func (c *Chart) Load(records []annotation.Record) error {
	for _, rec := range records {
		d, err := annotation.Build(rec)
		if err != nil {
			return fmt.Errorf("failed to build drawing %s: %w", rec.ID, err)
		}
		if err := c.Add(d); err != nil {
			return err
		}
		c.setStamp(rec)
	}
	return nil
}

// stamp holds the storage timestamps of a drawing
type stamp struct {
	created, updated time.Time
}

func (c *Chart) setStamp(rec annotation.Record) {
	if rec.CreatedAt.IsZero() && rec.UpdatedAt.IsZero() {
		return
	}

	c.Lock()
	defer c.Unlock()
	if _, ok := c.drawings[rec.ID]; ok {
		c.stamps[rec.ID] = stamp{created: rec.CreatedAt, updated: rec.UpdatedAt}
	}
}

// layout recomputes scales and drawing snapshots when something changed
func (c *Chart) layout() {
	if !c.dirty.Swap(false) {
		return
	}

	times := lo.Map(c.candles, func(candle core.Candle, _ int) core.Time {
		return candle.ScaleTime()
	})
	c.timeScale.reset(times, c.width, c.height, c.barSpacing)

	priceRange, ok := c.autoscale()
	c.priceScale.reset(priceRange, ok, c.height)

	for _, d := range c.ordered() {
		d.UpdateAllViews()
	}
}

// autoscale merges the visible candles with every drawing contribution
func (c *Chart) autoscale() (core.PriceRange, bool) {
	var (
		result core.PriceRange
		found  bool
	)

	first, last := c.timeScale.Bars()
	if last >= first {
		visible := c.candles[first : last+1]
		lows := lo.Map(visible, func(candle core.Candle, _ int) float64 { return candle.Low })
		highs := lo.Map(visible, func(candle core.Candle, _ int) float64 { return candle.High })
		result = core.PriceRange{Min: floats.Min(lows), Max: floats.Max(highs)}
		found = true
	}

	start, end, ok := c.timeScale.VisibleRange()
	if !ok {
		start, end = 0, 0
	}

	for _, d := range c.ordered() {
		contribution, ok := d.AutoscaleInfo(start, end)
		if !ok {
			continue
		}
		if !found {
			result, found = contribution, true
			continue
		}
		result = result.Merge(contribution)
	}

	return result, found
}

// PriceRange returns the autoscaled price range
func (c *Chart) PriceRange() (core.PriceRange, bool) {
	c.Lock()
	defer c.Unlock()

	c.layout()
	return c.priceScale.Range()
}

// HitTest returns what lies under a media pixel, topmost drawing first
func (c *Chart) HitTest(x, y float64) (core.HoverResult, bool) {
	c.Lock()
	defer c.Unlock()

	c.layout()

	views := c.paintOrder()
	for i := len(views) - 1; i >= 0; i-- {
		if hit, ok := views[i].Renderer().HitTest(x, y); ok {
			metricHits.WithLabelValues("hit").Inc()
			return hit, true
		}
	}

	metricHits.WithLabelValues("miss").Inc()
	return core.HoverResult{}, false
}
