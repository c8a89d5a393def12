package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Job metric names
const (
	MetricNameJobRunsTotal   = "job_runs_total"
	MetricNameJobDuration    = "job_duration_seconds"
	MetricNameJobLastSuccess = "job_last_success_timestamp_seconds"
)

// Business metric names
const (
	MetricNameSessionsOpened      = "sessions_opened_total"
	MetricNameSessionsLocked      = "sessions_locked_total"
	MetricNameSessionsFinalized   = "sessions_finalized_total"
	MetricNameScoreEntriesCreated = "score_entries_created_total"
	MetricNamePredictionsAccepted = "predictions_accepted_total"
	MetricNameSnapshotsPublished  = "leaderboard_snapshots_published_total"
)

// Provider metric names
const (
	MetricNameProviderRequests  = "provider_requests_total"
	MetricNameProviderFailovers = "provider_failovers_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Job metric help text
const (
	HelpTextJobRunsTotal   = "Total number of scheduled job runs"
	HelpTextJobDuration    = "Scheduled job run duration in seconds"
	HelpTextJobLastSuccess = "Unix timestamp of the last successful run per job"
)

// Business metric help text
const (
	HelpTextSessionsOpened      = "Total number of sessions transitioned to OPEN"
	HelpTextSessionsLocked      = "Total number of sessions transitioned to LOCKED"
	HelpTextSessionsFinalized   = "Total number of sessions finalized"
	HelpTextScoreEntriesCreated = "Total number of score entries created"
	HelpTextPredictionsAccepted = "Total number of prediction submissions accepted"
	HelpTextSnapshotsPublished  = "Total number of leaderboard snapshots published"
)

// Provider metric help text
const (
	HelpTextProviderRequests  = "Total number of requests sent to data providers"
	HelpTextProviderFailovers = "Total number of failovers to the fallback provider"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod   = "method"
	LabelPath     = "path"
	LabelStatus   = "status"
	LabelJob      = "job"
	LabelProvider = "provider"
	LabelOutcome  = "outcome"
)

// Job outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds. These buckets range from 1ms to 10s to capture various latency
// patterns: fast (1-10ms), normal (10-100ms), slow (100ms-1s), very slow (1-10s)
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// JobDurationBuckets covers scheduled job runs, which include provider round
// trips and full scoring passes, so the range extends to a minute.
var JobDurationBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}
