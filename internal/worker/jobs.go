package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gridstake/gridstake/internal/domain"
	"github.com/gridstake/gridstake/internal/ingest"
	"github.com/gridstake/gridstake/internal/logger"
	"github.com/gridstake/gridstake/internal/provider"
	"github.com/gridstake/gridstake/internal/repository"
	"github.com/gridstake/gridstake/internal/scheduler"
	"github.com/gridstake/gridstake/internal/session"
)

// Jobs builds the recurring job bodies the worker registers with the
// scheduler.
type Jobs struct {
	sessionService session.Service
	ingestService  ingest.Service
	router         *provider.Router
}

// NewJobs creates the job set
func NewJobs(sessionService session.Service, ingestService ingest.Service, router *provider.Router) *Jobs {
	return &Jobs{
		sessionService: sessionService,
		ingestService:  ingestService,
		router:         router,
	}
}

// SessionState advances session lifecycle states: SCHEDULED sessions whose
// start has passed open, and sessions past their lock deadline lock.
func (j *Jobs) SessionState(ctx context.Context, tx repository.Tx) error {
	now := time.Now().UTC()
	if _, err := j.sessionService.OpenScheduled(ctx, tx, now); err != nil {
		return err
	}
	_, err := j.sessionService.LockExpired(ctx, tx, now)
	return err
}

// ProviderHealth probes both data providers, refreshes the router's health
// cache so fetches pick the healthy one without probing inline, and records
// which provider is active in the sync log.
func (j *Jobs) ProviderHealth(ctx context.Context, tx repository.Tx) error {
	status := j.router.CheckHealth(ctx)
	args := make([]any, 0, len(status)*2)
	for name, healthy := range status {
		args = append(args, name, healthy)
	}
	logger.FromContext(ctx).Debug("Provider health checked", args...)

	active := j.router.ActiveProvider(ctx).Name()
	now := time.Now().UTC()
	details := fmt.Sprintf("active=%s", active)
	return tx.InsertProviderSyncLog(ctx, &domain.ProviderSyncLog{
		ID:           uuid.NewString(),
		ProviderName: active,
		Resource:     resourceHealth,
		Status:       domain.JobStatusSuccess,
		Details:      &details,
		FinishedAt:   &now,
	})
}

// AutoFinalize sweeps ended sessions through outcome resolution and scoring.
func (j *Jobs) AutoFinalize(ctx context.Context, tx repository.Tx) error {
	_, err := j.ingestService.AutoFinalize(ctx, tx, InitiatorAutoFinalize)
	return err
}

// Register wires every job onto the scheduler with its configured interval.
func (j *Jobs) Register(s *scheduler.Scheduler, sessionStateInterval, providerHealthInterval, autoFinalizeInterval time.Duration) {
	s.Register(JobNameSessionState, sessionStateInterval, j.SessionState)
	s.Register(JobNameProviderHealth, providerHealthInterval, j.ProviderHealth)
	s.Register(JobNameAutoFinalize, autoFinalizeInterval, j.AutoFinalize)
}
