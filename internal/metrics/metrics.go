// Package metrics exposes Prometheus counters for category syncs, item
// listings, config pushes, e-book imports and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storyhub"

// Collector records application metrics into a Prometheus registry.
type Collector struct {
	syncs        *prometheus.CounterVec
	syncDuration prometheus.Histogram
	items        *prometheus.CounterVec
	pushes       *prometheus.CounterVec
	imports      *prometheus.CounterVec
	chapters     prometheus.Counter
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "category_syncs_total",
			Help:      "Category syncs by source and outcome.",
		}, []string{"source", "result"}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "category_sync_duration_seconds",
			Help:      "Duration of category syncs.",
			Buckets:   prometheus.DefBuckets,
		}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mapped_items_total",
			Help:      "Items mapped from source listings, by source and validity.",
		}, []string{"source", "valid"}),
		pushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_pushes_total",
			Help:      "Remote config pushes by source and outcome.",
		}, []string{"source", "result"}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ebook_imports_total",
			Help:      "E-book imports by outcome.",
		}, []string{"result"}),
		chapters: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ebook_chapters_imported_total",
			Help:      "Chapters stored by successful imports.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		c.syncs,
		c.syncDuration,
		c.items,
		c.pushes,
		c.imports,
		c.chapters,
		c.httpRequests,
		c.httpLatency,
	)

	return c
}

func (c *Collector) RecordSync(source string, success bool, duration time.Duration) {
	c.syncs.WithLabelValues(source, outcome(success)).Inc()
	c.syncDuration.Observe(duration.Seconds())
}

func (c *Collector) RecordItems(source string, valid, invalid int) {
	c.items.WithLabelValues(source, "true").Add(float64(valid))
	c.items.WithLabelValues(source, "false").Add(float64(invalid))
}

func (c *Collector) RecordPush(source string, success bool) {
	c.pushes.WithLabelValues(source, outcome(success)).Inc()
}

// RecordImport counts one import attempt. chapters is ignored on failure.
func (c *Collector) RecordImport(success bool, chapters int) {
	c.imports.WithLabelValues(outcome(success)).Inc()
	if success {
		c.chapters.Add(float64(chapters))
	}
}

// RecordHTTPRequest counts one request. route is the matched route pattern,
// not the raw path.
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.WithLabelValues(route).Observe(duration.Seconds())
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
