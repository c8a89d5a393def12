package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gridstake/gridstake/internal/domain"
	"github.com/gridstake/gridstake/internal/ledger"
	"github.com/gridstake/gridstake/internal/logger"
	"github.com/gridstake/gridstake/internal/metrics"
	"github.com/gridstake/gridstake/internal/outcome"
	"github.com/gridstake/gridstake/internal/repository"
	"github.com/gridstake/gridstake/internal/scoring"
)

const (
	jobTypeAutoFinalize = "auto_finalize_session"

	resourceSessionOutcomes = "session_outcomes"
	resourceEvents          = "events"
)

// ResolveResult reports one outcome-resolution pass over a session.
type ResolveResult struct {
	Resolved   int
	Unresolved int
	Provider   string
}

// Summary reports one auto-finalize sweep. Candidates counts every session
// selected; the other three partition how each candidate was handled.
type Summary struct {
	Candidates int
	Finalized  int
	Failed     int
	Skipped    int
}

// Router is the provider surface the ingest service needs.
type Router interface {
	FetchEvents(ctx context.Context, seasonYear int) (string, []domain.ProviderEvent, error)
	FetchSessionFacts(ctx context.Context, sessionExternalID string) (string, *domain.SessionFacts, error)
}

// Service defines the interface for provider-fed ingestion: outcome
// resolution, the auto-finalize pipeline and calendar sync
type Service interface {
	// ResolveSessionOutcomes fetches facts for the session and stamps the
	// correct option onto every question it can resolve. Sessions without
	// an external id resolve nothing and leave a FAILED sync log row.
	ResolveSessionOutcomes(ctx context.Context, tx repository.Tx, session *domain.Session) (*ResolveResult, error)
	// AutoFinalize sweeps every ended OPEN or LOCKED session through
	// resolve-then-score. A session whose ledger key already succeeded is
	// skipped; one session failing never stops the sweep.
	AutoFinalize(ctx context.Context, tx repository.Tx, initiatedBy string) (Summary, error)
	// SyncEvents fetches the season calendar and upserts one event per
	// entry, skipping entries without usable dates.
	SyncEvents(ctx context.Context, tx repository.Tx, seasonYear int) (int, error)
	// CurrentSeason returns the current season, creating one for the
	// present year when none exists yet.
	CurrentSeason(ctx context.Context, tx repository.Tx) (*domain.Season, error)
}

type service struct {
	router         Router
	scoringService scoring.Service
	ledgerService  ledger.Service
}

// NewService creates a new ingest service
func NewService(router Router, scoringService scoring.Service, ledgerService ledger.Service) Service {
	return &service{
		router:         router,
		scoringService: scoringService,
		ledgerService:  ledgerService,
	}
}

func (s *service) ResolveSessionOutcomes(ctx context.Context, tx repository.Tx, session *domain.Session) (*ResolveResult, error) {
	log := logger.FromContext(ctx)

	if session.ExternalID == nil || *session.ExternalID == "" {
		details := fmt.Sprintf("session=%s: %s", session.ID, domain.ErrMsgMissingExternalID)
		if err := tx.InsertProviderSyncLog(ctx, &domain.ProviderSyncLog{
			ID:           uuid.NewString(),
			ProviderName: "router",
			Resource:     resourceSessionOutcomes,
			Status:       domain.JobStatusFailed,
			Details:      &details,
		}); err != nil {
			return nil, err
		}
		log.Warn("Session has no external id, nothing to resolve", "session_id", session.ID)
		return &ResolveResult{Provider: "none"}, nil
	}

	providerName, facts, err := s.router.FetchSessionFacts(ctx, *session.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session facts: %w", err)
	}

	questions, err := tx.ListQuestionsBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	result := &ResolveResult{Provider: providerName}
	for i := range questions {
		option, ok := outcome.Resolve(&questions[i], facts)
		if !ok {
			result.Unresolved++
			continue
		}
		if err := tx.SetCorrectOption(ctx, questions[i].ID, option); err != nil {
			return nil, err
		}
		result.Resolved++
	}

	now := time.Now().UTC()
	details := fmt.Sprintf("session=%s resolved=%d unresolved=%d", session.ID, result.Resolved, result.Unresolved)
	if err := tx.InsertProviderSyncLog(ctx, &domain.ProviderSyncLog{
		ID:           uuid.NewString(),
		ProviderName: providerName,
		Resource:     resourceSessionOutcomes,
		Status:       domain.JobStatusSuccess,
		Details:      &details,
		FinishedAt:   &now,
	}); err != nil {
		return nil, err
	}

	log.Info("Resolved session outcomes",
		"session_id", session.ID,
		"provider", providerName,
		"resolved", result.Resolved,
		"unresolved", result.Unresolved)
	return result, nil
}

func (s *service) AutoFinalize(ctx context.Context, tx repository.Tx, initiatedBy string) (Summary, error) {
	log := logger.FromContext(ctx)

	candidates, err := tx.ListFinalizeCandidates(ctx, time.Now().UTC())
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Candidates: len(candidates)}
	for i := range candidates {
		sess := &candidates[i]
		if sess.State == domain.SessionStateOpen {
			// Ended sessions must never keep accepting predictions,
			// even when the lock sweep missed them.
			if err := tx.UpdateSessionState(ctx, sess.ID, domain.SessionStateLocked); err != nil {
				return summary, err
			}
			sess.State = domain.SessionStateLocked
		}

		idempotencyKey := FinalizeKey(sess.ID)
		done, err := s.ledgerService.HasSucceeded(ctx, tx, idempotencyKey)
		if err != nil {
			return summary, err
		}
		if done {
			summary.Skipped++
			continue
		}

		if err := s.finalizeSession(ctx, tx, sess, idempotencyKey, initiatedBy); err != nil {
			summary.Failed++
			log.Error("Failed to finalize session", "session_id", sess.ID, "error", err)
			if recordErr := s.ledgerService.RecordFailure(ctx, tx, idempotencyKey, jobTypeAutoFinalize, err); recordErr != nil {
				return summary, recordErr
			}
			continue
		}
		summary.Finalized++
		metrics.SessionsFinalized.Inc()
	}

	if summary.Candidates > 0 {
		log.Info("Auto-finalize sweep complete",
			"candidates", summary.Candidates,
			"finalized", summary.Finalized,
			"failed", summary.Failed,
			"skipped", summary.Skipped)
	}
	return summary, nil
}

func (s *service) finalizeSession(ctx context.Context, tx repository.Tx, sess *domain.Session, idempotencyKey, initiatedBy string) error {
	resolution, err := s.ResolveSessionOutcomes(ctx, tx, sess)
	if err != nil {
		return err
	}

	created, err := s.scoringService.RunSessionScoring(ctx, tx, sess.ID, initiatedBy)
	if err != nil {
		return err
	}

	return s.ledgerService.Record(ctx, tx, &domain.JobRun{
		IdempotencyKey: idempotencyKey,
		JobType:        jobTypeAutoFinalize,
		Status:         domain.JobStatusSuccess,
		Payload:        map[string]any{"session_id": sess.ID},
		Result: map[string]any{
			"entries_created":      created,
			"resolved_questions":   resolution.Resolved,
			"unresolved_questions": resolution.Unresolved,
		},
	})
}

func (s *service) SyncEvents(ctx context.Context, tx repository.Tx, seasonYear int) (int, error) {
	log := logger.FromContext(ctx)

	season, err := tx.GetSeasonByYear(ctx, seasonYear)
	if err != nil {
		return 0, err
	}
	if season == nil {
		return 0, fmt.Errorf("%w: year %d", domain.ErrSeasonNotFound, seasonYear)
	}

	providerName, events, err := s.router.FetchEvents(ctx, seasonYear)
	if err != nil {
		details := fmt.Sprintf("error=%v", err)
		if logErr := tx.InsertProviderSyncLog(ctx, &domain.ProviderSyncLog{
			ID:           uuid.NewString(),
			ProviderName: "router",
			Resource:     resourceEvents,
			Status:       domain.JobStatusFailed,
			Details:      &details,
		}); logErr != nil {
			return 0, logErr
		}
		return 0, fmt.Errorf("failed to fetch events: %w", err)
	}

	synced := 0
	for i := range events {
		entry := &events[i]
		if entry.StartAt == nil || entry.EndAt == nil {
			continue
		}
		externalID := entry.ExternalID
		if err := tx.UpsertEvent(ctx, &domain.Event{
			ID:         uuid.NewString(),
			SeasonID:   season.ID,
			ExternalID: &externalID,
			Name:       entry.Name,
			Slug:       entry.Slug,
			Country:    entry.Country,
			StartAt:    *entry.StartAt,
			EndAt:      *entry.EndAt,
		}); err != nil {
			return synced, err
		}
		synced++
	}

	details := fmt.Sprintf("fetched=%d", len(events))
	if err := tx.InsertProviderSyncLog(ctx, &domain.ProviderSyncLog{
		ID:           uuid.NewString(),
		ProviderName: providerName,
		Resource:     resourceEvents,
		Status:       domain.JobStatusSuccess,
		Details:      &details,
	}); err != nil {
		return synced, err
	}

	log.Info("Synced events", "season_year", seasonYear, "provider", providerName, "synced", synced)
	return synced, nil
}

func (s *service) CurrentSeason(ctx context.Context, tx repository.Tx) (*domain.Season, error) {
	current, err := tx.GetCurrentSeason(ctx)
	if err != nil {
		return nil, err
	}
	if current != nil {
		return current, nil
	}

	year := time.Now().UTC().Year()
	existing, err := tx.GetSeasonByYear(ctx, year)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := tx.MarkSeasonCurrent(ctx, existing.ID); err != nil {
			return nil, err
		}
		existing.IsCurrent = true
		return existing, nil
	}

	season := &domain.Season{
		ID:        uuid.NewString(),
		Year:      year,
		IsCurrent: true,
	}
	if err := tx.InsertSeason(ctx, season); err != nil {
		return nil, err
	}
	return season, nil
}

// FinalizeKey is the ledger idempotency key for auto-finalizing a session.
func FinalizeKey(sessionID string) string {
	return "auto-finalize:" + sessionID
}
