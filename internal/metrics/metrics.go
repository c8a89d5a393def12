package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Job Metrics
var (
	JobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameJobRunsTotal,
			Help: HelpTextJobRunsTotal,
		},
		[]string{LabelJob, LabelOutcome},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameJobDuration,
			Help:    HelpTextJobDuration,
			Buckets: JobDurationBuckets,
		},
		[]string{LabelJob},
	)

	JobLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: MetricNameJobLastSuccess,
			Help: HelpTextJobLastSuccess,
		},
		[]string{LabelJob},
	)
)

// Business Metrics
var (
	SessionsOpened = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameSessionsOpened,
			Help: HelpTextSessionsOpened,
		},
	)

	SessionsLocked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameSessionsLocked,
			Help: HelpTextSessionsLocked,
		},
	)

	SessionsFinalized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameSessionsFinalized,
			Help: HelpTextSessionsFinalized,
		},
	)

	ScoreEntriesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameScoreEntriesCreated,
			Help: HelpTextScoreEntriesCreated,
		},
	)

	PredictionsAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNamePredictionsAccepted,
			Help: HelpTextPredictionsAccepted,
		},
	)

	SnapshotsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameSnapshotsPublished,
			Help: HelpTextSnapshotsPublished,
		},
	)
)

// Provider Metrics
var (
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameProviderRequests,
			Help: HelpTextProviderRequests,
		},
		[]string{LabelProvider, LabelOutcome},
	)

	ProviderFailovers = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameProviderFailovers,
			Help: HelpTextProviderFailovers,
		},
	)
)
