package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/agentstation/vbpmap/pkg/errors"
	"github.com/agentstation/vbpmap/pkg/reconcile"
)

// Metrics collects run metrics on a private registry. A batch run has no
// scrape endpoint, so the registry is written out in the node exporter
// textfile format with WriteTextfile.
type Metrics struct {
	registry *prometheus.Registry

	Files          *prometheus.CounterVec
	Rows           *prometheus.CounterVec
	UnmatchedRows  *prometheus.CounterVec
	Strategies     *prometheus.CounterVec
	Records        prometheus.Gauge
	Duplicates     prometheus.Gauge
	FileDuration   prometheus.Histogram
	RunDuration    prometheus.Gauge
	LastRunSuccess prometheus.Gauge
}

// NewMetrics creates and registers the pipeline metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		Files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vbpmap_files_total",
			Help: "Source files by outcome",
		}, []string{"outcome"}), // outcome: "reconciled", "skipped"

		Rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vbpmap_rows_total",
			Help: "Source rows by outcome",
		}, []string{"outcome"}), // outcome: "read", "dropped"

		UnmatchedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vbpmap_unmatched_rows_total",
			Help: "Rows kept with a sentinel classification, by domain",
		}, []string{"domain"}),

		Strategies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vbpmap_resolution_strategy_total",
			Help: "Rows resolved per domain and strategy",
		}, []string{"domain", "strategy"}),

		Records: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vbpmap_records",
			Help: "Canonical records after deduplication",
		}),

		Duplicates: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vbpmap_duplicate_records",
			Help: "Records removed as exact duplicates",
		}),

		FileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vbpmap_file_duration_seconds",
			Help:    "Time to read and reconcile one source file",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vbpmap_run_duration_seconds",
			Help: "Duration of the last run",
		}),

		LastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vbpmap_last_run_success",
			Help: "1 when the last run completed",
		}),
	}
	m.registry.MustRegister(
		m.Files, m.Rows, m.UnmatchedRows, m.Strategies,
		m.Records, m.Duplicates, m.FileDuration, m.RunDuration, m.LastRunSuccess,
	)
	return m
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current metric values to path.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

func (m *Metrics) observeFile(stats reconcile.Stats, d time.Duration) {
	if m == nil {
		return
	}
	m.Files.WithLabelValues("reconciled").Inc()
	m.Rows.WithLabelValues("read").Add(float64(stats.RowsRead))
	m.Rows.WithLabelValues("dropped").Add(float64(stats.RowsDropped))
	m.UnmatchedRows.WithLabelValues("municipality").Add(float64(stats.UnmatchedMunicipalityRows))
	m.UnmatchedRows.WithLabelValues("product").Add(float64(stats.UnmatchedProductRows))
	for s, n := range stats.MunicipalityStrategies {
		m.Strategies.WithLabelValues("municipality", s.String()).Add(float64(n))
	}
	for s, n := range stats.ProductStrategies {
		m.Strategies.WithLabelValues("product", s.String()).Add(float64(n))
	}
	m.FileDuration.Observe(d.Seconds())
}

func (m *Metrics) observeSkipped() {
	if m != nil {
		m.Files.WithLabelValues("skipped").Inc()
	}
}

func (m *Metrics) observeRun(records, duplicates int, d time.Duration, ok bool) {
	if m == nil {
		return
	}
	m.Records.Set(float64(records))
	m.Duplicates.Set(float64(duplicates))
	m.RunDuration.Set(d.Seconds())
	if ok {
		m.LastRunSuccess.Set(1)
	} else {
		m.LastRunSuccess.Set(0)
	}
}
