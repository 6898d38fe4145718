// Package metrics records extraction counters on a private Prometheus registry.
//
// lawlens is a CLI, so nothing is scraped. The registry is written to a
// node_exporter textfile when metrics.textfile_path is configured.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lawlens"

// Metrics holds the collectors used by the engine. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	documents          prometheus.Counter
	paragraphs         prometheus.Counter
	clauses            *prometheus.CounterVec
	encodeFailures     prometheus.Counter
	summarizerFallback *prometheus.CounterVec
	cacheRequests      *prometheus.CounterVec
	duration           prometheus.Histogram
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents passed through clause extraction.",
		}),
		paragraphs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "paragraphs_total",
			Help:      "Paragraphs produced by segmentation.",
		}),
		clauses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clauses_total",
			Help:      "Clauses emitted, by title and risk.",
		}, []string{"title", "risk"}),
		encodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "encode_failures_total",
			Help:      "Batch encode calls that failed or returned the wrong number of vectors.",
		}),
		summarizerFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summarizer_fallbacks_total",
			Help:      "Descriptions that fell back to truncated source text.",
		}, []string{"reason"}),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups, by cache name and result.",
		}, []string{"cache", "result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Wall time of one document extraction.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
	}

	m.registry.MustRegister(
		m.documents,
		m.paragraphs,
		m.clauses,
		m.encodeFailures,
		m.summarizerFallback,
		m.cacheRequests,
		m.duration,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveDocument records one finished extraction.
func (m *Metrics) ObserveDocument(paragraphs int, took time.Duration) {
	if m == nil {
		return
	}
	m.documents.Inc()
	m.paragraphs.Add(float64(paragraphs))
	m.duration.Observe(took.Seconds())
}

// ClauseEmitted counts one emitted clause.
func (m *Metrics) ClauseEmitted(title, risk string) {
	if m == nil {
		return
	}
	m.clauses.WithLabelValues(title, risk).Inc()
}

// EncodeFailure counts a failed batch encode.
func (m *Metrics) EncodeFailure() {
	if m == nil {
		return
	}
	m.encodeFailures.Inc()
}

// SummarizerFallback counts a description that used truncation. reason is
// one of "error", "empty" or "disabled".
func (m *Metrics) SummarizerFallback(reason string) {
	if m == nil {
		return
	}
	m.summarizerFallback.WithLabelValues(reason).Inc()
}

// CacheResult counts a cache hit or miss for the named cache.
func (m *Metrics) CacheResult(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheRequests.WithLabelValues(cache, result).Inc()
}

// WriteTextfile writes the registry in text exposition format to path.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
