package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label value constants to prevent typos
const (
	// Fetch resources
	ResourceListing = "listing"
	ResourceDetail  = "detail"
	ResourceZones   = "zones"
	ResourceStreams = "streams"
	ResourceGear    = "gear"

	// Fetch results
	ResultSuccess = "success"
	ResultEmpty   = "empty"
	ResultFailure = "failure"

	// Run results
	RunCompleted = "completed"
	RunFailed    = "failed"
	RunNoData    = "no_data"
)

// Sync run metrics
var (
	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_runs_total",
			Help: "Total number of sync runs by result",
		},
		[]string{"result"},
	)

	SyncRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sync_run_duration_seconds",
			Help:    "Duration of a full sync run in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	ActivitiesListedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activities_listed_total",
			Help: "Total number of activities returned by remote listings",
		},
	)

	NewActivitiesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "new_activities_total",
			Help: "Total number of activities that passed the novelty filter",
		},
	)

	RemoteFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remote_fetches_total",
			Help: "Total number of remote fetches by resource and result",
		},
		[]string{"resource", "result"},
	)
)

// Store metrics
var (
	RowsInsertedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rows_inserted_total",
			Help: "Total number of rows inserted by table",
		},
		[]string{"table"},
	)

	RowInsertFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "row_insert_failures_total",
			Help: "Total number of per-row insert failures by table",
		},
		[]string{"table"},
	)
)

// Reconciliation metrics
var (
	CacheDiscrepancies = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_discrepancies",
			Help: "Activities present in the activities table but missing from the cache, as of the last reconciliation check",
		},
	)
)

// Health import metrics
var (
	HealthRowsImportedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "health_rows_imported_total",
			Help: "Total number of health rows imported from CSV",
		},
	)

	HealthRowsSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "health_rows_skipped_total",
			Help: "Total number of health CSV rows skipped because the date already exists",
		},
	)
)
