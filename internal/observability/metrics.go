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
	// Scoring metrics
	ScoresComputed    *prometheus.CounterVec
	ScoringErrors     *prometheus.CounterVec
	SignalsEmitted    *prometheus.CounterVec
	ScoringLatency    prometheus.Histogram
	FundamentalScores prometheus.Counter

	// Simulation metrics
	SimulationsRun       prometheus.Counter
	SimulationErrors     *prometheus.CounterVec
	SecuritiesSkipped    *prometheus.CounterVec
	TradesExecuted       prometheus.Counter
	ForcedExits          prometheus.Counter
	SimulationLatency    prometheus.Histogram
	SearchPairsEvaluated prometheus.Counter
	SearchDuration       *prometheus.HistogramVec

	// Screening metrics
	SecuritiesScreened prometheus.Counter
	WatchListSize      prometheus.Gauge

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "stock_analysis"
	}

	return &Metrics{
		// Scoring metrics
		ScoresComputed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "scores_computed_total",
			Help:      "Total number of composite scores computed by mode",
		}, []string{"mode"}),
		ScoringErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "errors_total",
			Help:      "Total number of scoring errors by type",
		}, []string{"error_type"}),
		SignalsEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "signals_emitted_total",
			Help:      "Total number of technical signals emitted by label",
		}, []string{"signal"}),
		ScoringLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "latency_seconds",
			Help:      "Per-security score series computation latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		FundamentalScores: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "fundamental_scores_total",
			Help:      "Total number of fundamental scores computed",
		}),

		// Simulation metrics
		SimulationsRun: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "runs_total",
			Help:      "Total number of trade simulations run",
		}),
		SimulationErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "errors_total",
			Help:      "Total number of simulation errors by type",
		}, []string{"error_type"}),
		SecuritiesSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "securities_skipped_total",
			Help:      "Total number of securities skipped by reason",
		}, []string{"reason"}),
		TradesExecuted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "trades_executed_total",
			Help:      "Total number of simulated round trips",
		}),
		ForcedExits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "forced_exits_total",
			Help:      "Total number of max-holding-period exits",
		}),
		SimulationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "latency_seconds",
			Help:      "Single simulation latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		SearchPairsEvaluated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "pairs_evaluated_total",
			Help:      "Total number of threshold pairs evaluated",
		}),
		SearchDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "segment_duration_seconds",
			Help:      "Grid search duration per segment in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"segment"}),

		// Screening metrics
		SecuritiesScreened: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "screening",
			Name:      "securities_screened_total",
			Help:      "Total number of securities considered for the watch list",
		}),
		WatchListSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "screening",
			Name:      "watch_list_size",
			Help:      "Number of securities on the latest watch list",
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

		// Health metrics
		LastSuccessfulRun: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of last successful pipeline run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordScore increments the scores computed counter for a scoring mode.
func RecordScore(mode string) {
	DefaultMetrics.ScoresComputed.WithLabelValues(mode).Inc()
}

// RecordSignal increments the emitted counter for a signal label.
func RecordSignal(signal string) {
	DefaultMetrics.SignalsEmitted.WithLabelValues(signal).Inc()
}

// RecordSimulation records one finished simulation.
func RecordSimulation(trades, forcedExits int) {
	DefaultMetrics.SimulationsRun.Inc()
	DefaultMetrics.TradesExecuted.Add(float64(trades))
	DefaultMetrics.ForcedExits.Add(float64(forcedExits))
}

// RecordSkip records a security excluded from a grid search pool.
func RecordSkip(reason string) {
	DefaultMetrics.SecuritiesSkipped.WithLabelValues(reason).Inc()
}

// RecordSearchSegment records a completed segment search.
func RecordSearchSegment(segment string, pairs int, seconds float64) {
	DefaultMetrics.SearchPairsEvaluated.Add(float64(pairs))
	DefaultMetrics.SearchDuration.WithLabelValues(segment).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// UpdateWatchList records the outcome of a screening pass.
func UpdateWatchList(screened, listed int) {
	DefaultMetrics.SecuritiesScreened.Add(float64(screened))
	DefaultMetrics.WatchListSize.Set(float64(listed))
}
