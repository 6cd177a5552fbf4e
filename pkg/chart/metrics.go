package chart

import "github.com/prometheus/client_golang/prometheus"

var (
	metricRenders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chartdraw_renders_total",
			Help: "Number of rendered chart images",
		}, []string{"format"},
	)

	metricRenderSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chartdraw_render_duration_seconds",
			Help:    "Chart render duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"format"},
	)

	metricHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chartdraw_hit_tests_total",
			Help: "Number of hit tests by result",
		}, []string{"result"},
	)

	metricDrawings = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chartdraw_drawings",
			Help: "Number of drawings attached to the chart",
		},
	)
)

func init() {
	prometheus.MustRegister(
		metricRenders,
		metricRenderSeconds,
		metricHits,
		metricDrawings,
	)
}
