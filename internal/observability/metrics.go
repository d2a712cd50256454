package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/storm-data-verify/internal/domain"
)

const namespace = "storm_verify"

// Error reasons recorded by VerifyErrors.
const (
	ReasonDecode           = "decode"
	ReasonInvalid          = "invalid"
	ReasonInsufficientData = "insufficient_data"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// verification pipeline.
type Metrics struct {
	MessagesConsumed prometheus.Counter
	OutputsProduced  prometheus.Counter
	VerifyErrors     *prometheus.CounterVec // labels: reason={decode,invalid,insufficient_data}
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Store metrics.
	OutputsStored prometheus.Gauge
	PairsVerified *prometheus.CounterVec // labels: kind
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry, together with the label intern cache collectors.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.MessagesConsumed,
		m.OutputsProduced,
		m.VerifyErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.OutputsStored,
		m.PairsVerified,
	)
	prometheus.MustRegister(LabelCacheCollectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid "already
// registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total pair batches read from the source topic.",
		}),
		OutputsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outputs_produced_total",
			Help:      "Total metric outputs written to the sink topic.",
		}),
		VerifyErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verify_errors_total",
			Help:      "Pair batches skipped, by reason.",
		}, []string{"reason"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-verify-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		OutputsStored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outputs_stored",
			Help:      "Metric outputs held in the in-memory store.",
		}),
		PairsVerified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pairs_verified_total",
			Help:      "Pair batches verified, by pair kind.",
		}, []string{"kind"}),
	}
}

// LabelCacheCollectors exposes the label intern cache statistics. The
// values are read from the cache on every scrape.
func LabelCacheCollectors() []prometheus.Collector {
	stat := func(read func(domain.CacheStats) float64) func() float64 {
		return func() float64 { return read(domain.LabelCacheStats()) }
	}
	return []prometheus.Collector{
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "label_cache",
			Name:      "hits_total",
			Help:      "Label lookups served by an existing canonical instance.",
		}, stat(func(s domain.CacheStats) float64 { return float64(s.Hits) })),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "label_cache",
			Name:      "misses_total",
			Help:      "Label lookups that created a canonical instance.",
		}, stat(func(s domain.CacheStats) float64 { return float64(s.Misses) })),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "label_cache",
			Name:      "evictions_total",
			Help:      "Canonical label instances evicted to stay within capacity.",
		}, stat(func(s domain.CacheStats) float64 { return float64(s.Evictions) })),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "label_cache",
			Name:      "entries",
			Help:      "Canonical label instances currently cached.",
		}, stat(func(s domain.CacheStats) float64 { return float64(s.Entries) })),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "label_cache",
			Name:      "capacity",
			Help:      "Maximum canonical label instances cached.",
		}, stat(func(s domain.CacheStats) float64 { return float64(s.Capacity) })),
	}
}
