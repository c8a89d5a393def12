package repository

import (
	"context"

	"github.com/gridstake/gridstake/internal/domain"
)

// JobRun defines the data access interface for the job ledger
type JobRun interface {
	// GetJobRunByKey returns the ledger row for the key, or nil when the
	// key has never been recorded.
	GetJobRunByKey(ctx context.Context, idempotencyKey string) (*domain.JobRun, error)
	// UpsertJobRun creates or updates the row for run.IdempotencyKey.
	UpsertJobRun(ctx context.Context, run *domain.JobRun) error
}

// ProviderSync defines the data access interface for provider sync logs
type ProviderSync interface {
	InsertProviderSyncLog(ctx context.Context, log *domain.ProviderSyncLog) error
}

// User defines the data access interface for users and profiles
type User interface {
	InsertUser(ctx context.Context, user *domain.User) error
	UpsertProfile(ctx context.Context, profile *domain.Profile) error
}
