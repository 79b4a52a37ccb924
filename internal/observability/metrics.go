package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "autosales"

// Metrics holds the dashboard's Prometheus collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	reportsBuilt    *prometheus.CounterVec
	reportDuration  *prometheus.HistogramVec
	chartRenderErrs prometheus.Counter
	datasetRecords  prometheus.Gauge
	datasetLoadSecs prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		reportsBuilt: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reports_built_total",
				Help:      "Chart sets built by report type and number of charts",
			},
			[]string{"report_type", "charts"},
		),
		reportDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "report_build_duration_seconds",
				Help:      "Time spent aggregating and rendering a chart set",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"report_type"},
		),
		chartRenderErrs: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chart_render_failures_total",
				Help:      "Charts that could not be rendered to SVG",
			},
		),
		datasetRecords: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "dataset_records",
				Help:      "Number of sales records loaded",
			},
		),
		datasetLoadSecs: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "dataset_load_duration_seconds",
				Help:      "Duration of the startup dataset load",
			},
		),
	}
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) ObserveReport(reportType string, charts int, d time.Duration) {
	if m == nil {
		return
	}
	if reportType == "" {
		reportType = "none"
	}
	m.reportsBuilt.WithLabelValues(reportType, strconv.Itoa(charts)).Inc()
	m.reportDuration.WithLabelValues(reportType).Observe(d.Seconds())
}

func (m *Metrics) ChartRenderFailed() {
	if m == nil {
		return
	}
	m.chartRenderErrs.Inc()
}

func (m *Metrics) DatasetLoaded(records int, d time.Duration) {
	if m == nil {
		return
	}
	m.datasetRecords.Set(float64(records))
	m.datasetLoadSecs.Set(d.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
