package domain

import "time"

// JobStatus is the lifecycle status of a ledgered job run.
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// JobRun is the durable idempotency record for one logically-repeatable
// action. Rows are keyed by the caller-chosen idempotency key and upserted,
// so a retry updates the same row instead of creating a duplicate.
type JobRun struct {
	ID             string
	IdempotencyKey string
	JobType        string
	Status         JobStatus
	Payload        map[string]any
	Result         map[string]any
	ErrorMessage   *string
	CreatedAt      time.Time
	FinishedAt     *time.Time
}
