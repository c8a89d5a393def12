package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gridstake/gridstake/internal/domain"
	"github.com/gridstake/gridstake/internal/ingest"
	"github.com/gridstake/gridstake/internal/ledger"
	"github.com/gridstake/gridstake/internal/logger"
	"github.com/gridstake/gridstake/internal/repository"
	"github.com/gridstake/gridstake/internal/scheduler"
	"github.com/gridstake/gridstake/internal/scoring"
)

const jobTypeAdminScoringRun = "admin_scoring_run"

// AdminScoreKey is the ledger idempotency key for a manual scoring run.
func AdminScoreKey(sessionID string) string {
	return "admin-score:" + sessionID
}

// ScoringRunRequest identifies the session a manual scoring run targets.
type ScoringRunRequest struct {
	SessionID   string `json:"session_id"`
	InitiatedBy string `json:"initiated_by"`
}

// ScoringRunResponse reports the result of a manual scoring run.
type ScoringRunResponse struct {
	SessionID      string `json:"session_id"`
	EntriesCreated int    `json:"entries_created"`
	Finalized      bool   `json:"finalized"`
}

// AdminHandler serves the manual operations surface: scoring runs, event
// sync and on-demand job triggers.
type AdminHandler struct {
	txManager      repository.TxManager
	ingestService  ingest.Service
	scoringService scoring.Service
	ledgerService  ledger.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(txManager repository.TxManager, ingestService ingest.Service, scoringService scoring.Service, ledgerService ledger.Service) *AdminHandler {
	return &AdminHandler{
		txManager:      txManager,
		ingestService:  ingestService,
		scoringService: scoringService,
		ledgerService:  ledgerService,
	}
}

// HandleScoringRun resolves outcomes where possible and scores the session,
// recording the run in the job ledger under the admin-score key.
func (h *AdminHandler) HandleScoringRun(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req ScoringRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
		return
	}
	initiatedBy := req.InitiatedBy
	if initiatedBy == "" {
		initiatedBy = "admin"
	}

	idempotencyKey := AdminScoreKey(req.SessionID)
	created, err := h.runScoring(r.Context(), req.SessionID, idempotencyKey, initiatedBy)
	if err != nil {
		log.Error("Manual scoring run failed", "session_id", req.SessionID, "error", err)
		h.recordFailure(r.Context(), idempotencyKey, err)
		respondServiceError(w, err, ErrMsgScoringRunFailed)
		return
	}

	respondJSON(w, http.StatusOK, ScoringRunResponse{
		SessionID:      req.SessionID,
		EntriesCreated: created,
		Finalized:      true,
	})
}

func (h *AdminHandler) runScoring(ctx context.Context, sessionID, idempotencyKey, initiatedBy string) (int, error) {
	tx, err := h.txManager.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	resolution := &ingest.ResolveResult{}
	target, err := tx.GetSession(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if target.ExternalID != nil && *target.ExternalID != "" {
		resolution, err = h.ingestService.ResolveSessionOutcomes(ctx, tx, target)
		if err != nil {
			return 0, err
		}
	}

	created, err := h.scoringService.RunSessionScoring(ctx, tx, sessionID, initiatedBy)
	if err != nil {
		return 0, err
	}

	if err := h.ledgerService.Record(ctx, tx, &domain.JobRun{
		IdempotencyKey: idempotencyKey,
		JobType:        jobTypeAdminScoringRun,
		Status:         domain.JobStatusSuccess,
		Payload:        map[string]any{"session_id": sessionID},
		Result: map[string]any{
			"entries_created":      created,
			"resolved_questions":   resolution.Resolved,
			"unresolved_questions": resolution.Unresolved,
		},
	}); err != nil {
		return 0, err
	}

	return created, tx.Commit(ctx)
}

// recordFailure writes the FAILED ledger row in its own transaction, since
// the run's transaction has already been rolled back.
func (h *AdminHandler) recordFailure(ctx context.Context, idempotencyKey string, runErr error) {
	log := logger.FromContext(ctx)
	tx, err := h.txManager.Begin(ctx)
	if err != nil {
		log.Error("Failed to record scoring failure", "error", err)
		return
	}
	defer tx.Rollback(ctx)

	if err := h.ledgerService.RecordFailure(ctx, tx, idempotencyKey, jobTypeAdminScoringRun, runErr); err != nil {
		log.Error("Failed to record scoring failure", "error", err)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		log.Error("Failed to record scoring failure", "error", err)
	}
}

// SyncEventsResponse reports a manual calendar sync.
type SyncEventsResponse struct {
	SeasonYear int `json:"season_year"`
	Synced     int `json:"synced"`
}

// HandleSyncEvents syncs the current season's calendar from the provider
func (h *AdminHandler) HandleSyncEvents(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	tx, err := h.txManager.Begin(r.Context())
	if err != nil {
		log.Error("Failed to begin transaction", "error", err)
		respondError(w, http.StatusInternalServerError, ErrMsgSyncEventsFailed)
		return
	}
	defer tx.Rollback(r.Context())

	season, err := h.ingestService.CurrentSeason(r.Context(), tx)
	if err != nil {
		log.Error("Failed to resolve current season", "error", err)
		respondServiceError(w, err, ErrMsgSyncEventsFailed)
		return
	}
	synced, err := h.ingestService.SyncEvents(r.Context(), tx, season.Year)
	if err != nil {
		log.Error("Failed to sync events", "season_year", season.Year, "error", err)
		respondServiceError(w, err, ErrMsgSyncEventsFailed)
		return
	}
	if err := tx.Commit(r.Context()); err != nil {
		log.Error("Failed to commit event sync", "error", err)
		respondError(w, http.StatusInternalServerError, ErrMsgSyncEventsFailed)
		return
	}

	respondJSON(w, http.StatusOK, SyncEventsResponse{SeasonYear: season.Year, Synced: synced})
}

// HandleTriggerJob runs one registered job body immediately in its own
// transaction, outside the scheduler's cadence.
func HandleTriggerJob(txManager repository.TxManager, run scheduler.JobFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		tx, err := txManager.Begin(r.Context())
		if err != nil {
			log.Error("Failed to begin transaction", "error", err)
			respondError(w, http.StatusInternalServerError, ErrMsgJobTriggerFailed)
			return
		}
		defer tx.Rollback(r.Context())

		if err := run(r.Context(), tx); err != nil {
			log.Error("Manual job trigger failed", "error", err)
			respondServiceError(w, err, ErrMsgJobTriggerFailed)
			return
		}
		if err := tx.Commit(r.Context()); err != nil {
			log.Error("Failed to commit job run", "error", err)
			respondError(w, http.StatusInternalServerError, ErrMsgJobTriggerFailed)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgJobTriggered})
	}
}
