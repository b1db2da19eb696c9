// Package metrics exposes ingestion counters on a dedicated Prometheus registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shandysiswandi/gofraud/internal/ingest/entity"
)

const namespace = "gofraud"

const (
	MetricUploadsTotal         = "uploads_total"
	MetricStorageAttemptsTotal = "storage_attempts_total"
	MetricStoredRows           = "stored_rows"
	MetricTruncationsTotal     = "storage_truncations_total"
	MetricParseDuration        = "parse_duration_seconds"
	MetricParsedRowsTotal      = "parsed_rows_total"
)

type Metrics struct {
	registry *prometheus.Registry

	uploads     *prometheus.CounterVec
	attempts    *prometheus.CounterVec
	storedRows  prometheus.Gauge
	truncations prometheus.Counter
	parseTime   prometheus.Histogram
	parsedRows  prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ingest",
				Name:      MetricUploadsTotal,
				Help:      "Finished ingestions by status and error kind.",
			},
			[]string{"status", "error_kind"},
		),
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ingest",
				Name:      MetricStorageAttemptsTotal,
				Help:      "Writes tried on the storage ladder by outcome.",
			},
			[]string{"outcome"},
		),
		storedRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      MetricStoredRows,
			Help:      "Rows held by the last successful write.",
		}),
		truncations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      MetricTruncationsTotal,
			Help:      "Successful writes that kept only a prefix of the file.",
		}),
		parseTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      MetricParseDuration,
			Help:      "Time spent parsing one CSV file.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		parsedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      MetricParsedRowsTotal,
			Help:      "Rows parsed across all uploads.",
		}),
	}

	m.registry.MustRegister(
		m.uploads,
		m.attempts,
		m.storedRows,
		m.truncations,
		m.parseTime,
		m.parsedRows,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) UploadFinished(status entity.UploadStatus, kind entity.ErrorKind) {
	m.uploads.WithLabelValues(string(status), string(kind)).Inc()
}

func (m *Metrics) StorageAttempt(outcome entity.AttemptOutcome) {
	m.attempts.WithLabelValues(string(outcome)).Inc()
}

func (m *Metrics) Stored(rows int, truncated bool) {
	m.storedRows.Set(float64(rows))
	if truncated {
		m.truncations.Inc()
	}
}

func (m *Metrics) Parsed(d time.Duration, rows int) {
	m.parseTime.Observe(d.Seconds())
	m.parsedRows.Add(float64(rows))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
