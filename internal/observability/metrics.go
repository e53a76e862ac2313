package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the EWS
// batch pipeline.
type Metrics struct {
	RowsRead           *prometheus.CounterVec // labels: stream
	InvalidDates       *prometheus.CounterVec // labels: stream
	UnresolvedPincodes *prometheus.CounterVec // labels: stream

	DistrictWeeks    prometheus.Gauge
	AnomaliesFlagged prometheus.Counter
	RunsTotal        *prometheus.CounterVec // labels: outcome={success,failure}

	StageDuration   *prometheus.HistogramVec // labels: stage
	PipelineRunning prometheus.Gauge
}

const namespace = "aadhaar_ews"

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsRead,
		m.InvalidDates,
		m.UnresolvedPincodes,
		m.DistrictWeeks,
		m.AnomaliesFlagged,
		m.RunsTotal,
		m.StageDuration,
		m.PipelineRunning,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Raw event rows read per source stream.",
		}, []string{"stream"}),
		InvalidDates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_date_rows_total",
			Help:      "Rows excluded from weekly bucketing due to unparseable dates.",
		}, []string{"stream"}),
		UnresolvedPincodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unresolved_pincodes_total",
			Help:      "Distinct pincodes per stream that missed the reference table.",
		}, []string{"stream"}),
		DistrictWeeks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "district_weeks",
			Help:      "District-week records produced by the last run.",
		}),
		AnomaliesFlagged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "anomalies_flagged_total",
			Help:      "District-weeks flagged anomalous.",
		}),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a run is in flight, 0 otherwise.",
		}),
	}
}
