package ledger

import (
	"context"
	"time"

	"github.com/gridstake/gridstake/internal/domain"
	"github.com/gridstake/gridstake/internal/repository"
)

// Service defines the interface for the job ledger. Every retryable action
// records its attempts here under a caller-chosen idempotency key; callers
// check HasSucceeded before re-running the action.
type Service interface {
	// HasSucceeded reports whether a run under this key already finished
	// with SUCCESS.
	HasSucceeded(ctx context.Context, store repository.Store, idempotencyKey string) (bool, error)
	// Record upserts the ledger row for the key, stamping the finish time
	// when the caller has not already set one.
	Record(ctx context.Context, store repository.Store, run *domain.JobRun) error
	// RecordSuccess and RecordFailure are terminal-status conveniences
	// over Record.
	RecordSuccess(ctx context.Context, store repository.Store, idempotencyKey, jobType string, result map[string]any) error
	RecordFailure(ctx context.Context, store repository.Store, idempotencyKey, jobType string, runErr error) error
}

type service struct{}

// NewService creates a new ledger service
func NewService() Service {
	return &service{}
}

func (s *service) HasSucceeded(ctx context.Context, store repository.Store, idempotencyKey string) (bool, error) {
	run, err := store.GetJobRunByKey(ctx, idempotencyKey)
	if err != nil {
		return false, err
	}
	return run != nil && run.Status == domain.JobStatusSuccess, nil
}

func (s *service) Record(ctx context.Context, store repository.Store, run *domain.JobRun) error {
	if run.FinishedAt == nil {
		now := time.Now().UTC()
		run.FinishedAt = &now
	}
	return store.UpsertJobRun(ctx, run)
}

func (s *service) RecordSuccess(ctx context.Context, store repository.Store, idempotencyKey, jobType string, result map[string]any) error {
	return s.Record(ctx, store, &domain.JobRun{
		IdempotencyKey: idempotencyKey,
		JobType:        jobType,
		Status:         domain.JobStatusSuccess,
		Result:         result,
	})
}

func (s *service) RecordFailure(ctx context.Context, store repository.Store, idempotencyKey, jobType string, runErr error) error {
	msg := runErr.Error()
	return s.Record(ctx, store, &domain.JobRun{
		IdempotencyKey: idempotencyKey,
		JobType:        jobType,
		Status:         domain.JobStatusFailed,
		ErrorMessage:   &msg,
	})
}
