// Package metrics exposes Prometheus collectors for inbound HTTP traffic and
// the reconciliation pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/game"
)

const namespace = "reconciler"

// Collector owns a private registry so tests can build several side by side.
type Collector struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	stageDuration       *prometheus.HistogramVec
	enrichmentsTotal    *prometheus.CounterVec
	enrichmentWarnings  *prometheus.CounterVec
	socialPostsTotal    *prometheus.CounterVec
	linkTransitionTotal *prometheus.CounterVec
}

func NewCollector() (*Collector, error) {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution for inbound HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of inbound HTTP requests.",
		}, []string{"method", "route", "status"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each enrichment stage.",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"stage"}),
		enrichmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "runs_total",
			Help:      "Enrichment runs by outcome.",
		}, []string{"outcome"}),
		enrichmentWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "warnings_total",
			Help:      "Enrichment warnings by code.",
		}, []string{"code"}),
		socialPostsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "social",
			Name:      "posts_processed_total",
			Help:      "Processed social posts by content type and resulting status.",
		}, []string{"content_type", "status"}),
		linkTransitionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "social",
			Name:      "link_transitions_total",
			Help:      "Post to game link changes by link type and action.",
		}, []string{"link_type", "action"}),
	}

	for _, col := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.requestDuration,
		c.requestTotal,
		c.stageDuration,
		c.enrichmentsTotal,
		c.enrichmentWarnings,
		c.socialPostsTotal,
		c.linkTransitionTotal,
	} {
		if err := c.registry.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler records request metrics labelled by the matched route
// pattern, falling back to "unmatched" to keep label cardinality bounded.
func (c *Collector) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(rw.status)
		c.requestTotal.WithLabelValues(r.Method, route, status).Inc()
		c.requestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
	})
}

func (c *Collector) ObserveStage(stage string, elapsed time.Duration) {
	c.stageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

func (c *Collector) ObserveEnrichment(outcome string, warnings []game.Issue) {
	c.enrichmentsTotal.WithLabelValues(outcome).Inc()
	for _, w := range warnings {
		c.enrichmentWarnings.WithLabelValues(w.Code).Inc()
	}
}

func (c *Collector) ObserveSocialPost(contentType, status string) {
	if contentType == "" {
		contentType = "UNCLASSIFIED"
	}
	c.socialPostsTotal.WithLabelValues(contentType, status).Inc()
}

func (c *Collector) ObserveLink(linkType, action string) {
	c.linkTransitionTotal.WithLabelValues(linkType, action).Inc()
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
