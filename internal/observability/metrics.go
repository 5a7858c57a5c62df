// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Labeling metrics
	ConfigsScanned prometheus.Counter
	ScanDuration   prometheus.Histogram
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter

	// Batch metrics
	CombosSimulated prometheus.Counter
	ComboErrors     prometheus.Counter
	AccountsBlown   prometheus.Counter
	TradesSimulated prometheus.Counter
	BatchDuration   *prometheus.HistogramVec

	// Ranking metrics
	EntriesRanked    prometheus.Counter
	ReportsGenerated prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered on
// the default registry. Call at most once per namespace per process.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "necrozma"
	}

	return &Metrics{
		// Labeling metrics
		ConfigsScanned: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "labeling",
			Name:      "configs_scanned_total",
			Help:      "Total number of label configs scanned",
		}),
		ScanDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "labeling",
			Name:      "scan_duration_seconds",
			Help:      "Grid scan duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "labeling",
			Name:      "cache_hits_total",
			Help:      "Total number of label cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "labeling",
			Name:      "cache_misses_total",
			Help:      "Total number of label cache misses",
		}),

		// Batch metrics
		CombosSimulated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "combos_simulated_total",
			Help:      "Total number of strategy/risk/config combinations simulated",
		}),
		ComboErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "combo_errors_total",
			Help:      "Total number of combinations that failed",
		}),
		AccountsBlown: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "accounts_blown_total",
			Help:      "Total number of simulations that exhausted the account",
		}),
		TradesSimulated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "trades_simulated_total",
			Help:      "Total number of trades simulated",
		}),
		BatchDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "duration_seconds",
			Help:      "Batch phase duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"phase"}),

		// Ranking metrics
		EntriesRanked: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "entries_ranked_total",
			Help:      "Total number of ranking entries scored",
		}),
		ReportsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "reports_generated_total",
			Help:      "Total number of reports generated",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordScan records one grid scan. Safe on a nil receiver so callers can
// run without metrics wired.
func (m *Metrics) RecordScan(configs int, seconds float64) {
	if m == nil {
		return
	}
	m.ConfigsScanned.Add(float64(configs))
	m.ScanDuration.Observe(seconds)
}

// RecordCacheLookup records a label cache hit or miss.
func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Inc()
	} else {
		m.CacheMisses.Inc()
	}
}

// RecordCombo records one simulated combination.
func (m *Metrics) RecordCombo(trades int, blown bool) {
	if m == nil {
		return
	}
	m.CombosSimulated.Inc()
	m.TradesSimulated.Add(float64(trades))
	if blown {
		m.AccountsBlown.Inc()
	}
}

// RecordComboError records a failed combination.
func (m *Metrics) RecordComboError() {
	if m == nil {
		return
	}
	m.ComboErrors.Inc()
}

// RecordBatchPhase records a batch phase duration.
func (m *Metrics) RecordBatchPhase(phase string, seconds float64) {
	if m == nil {
		return
	}
	m.BatchDuration.WithLabelValues(phase).Observe(seconds)
}

// RecordRanked records scored entries and a generated report.
func (m *Metrics) RecordRanked(entries int) {
	if m == nil {
		return
	}
	m.EntriesRanked.Add(float64(entries))
}

// RecordReportGenerated increments the reports generated counter.
func (m *Metrics) RecordReportGenerated() {
	if m == nil {
		return
	}
	m.ReportsGenerated.Inc()
}

// RecordDBQuery records database query metrics.
func (m *Metrics) RecordDBQuery(database, operation string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		m.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
