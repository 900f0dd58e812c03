package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the QC pipeline.
type Metrics struct {
	RowsConsumed    prometheus.Counter
	RowsPublished   prometheus.Counter
	TransformErrors prometheus.Counter
	PipelineRunning prometheus.Gauge

	// QC outcome metrics.
	RowsFlagged prometheus.Counter
	FlagsRaised *prometheus.CounterVec // label: check={range,spike,flatline,consistency}

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsConsumed,
		m.RowsPublished,
		m.TransformErrors,
		m.PipelineRunning,
		m.RowsFlagged,
		m.FlagsRaised,
		m.BatchSize,
		m.BatchProcessingDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics with no registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metdata_qc",
			Name:      "rows_consumed_total",
			Help:      "Total observation rows read from the source topic.",
		}),
		RowsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metdata_qc",
			Name:      "rows_published_total",
			Help:      "Total canonical rows written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metdata_qc",
			Name:      "transform_errors_total",
			Help:      "Total mapping/QC batch failures.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "metdata_qc",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		RowsFlagged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metdata_qc",
			Name:      "rows_flagged_total",
			Help:      "Total rows with at least one QC flag raised.",
		}),
		FlagsRaised: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metdata_qc",
			Name:      "flags_raised_total",
			Help:      "QC flags raised by check type.",
		}, []string{"check"}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "metdata_qc",
			Name:      "batch_size",
			Help:      "Number of observation rows per extracted batch.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "metdata_qc",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}
}
