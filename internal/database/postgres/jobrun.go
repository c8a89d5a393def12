package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gridstake/gridstake/internal/domain"
)

// GetJobRunByKey returns the ledger row for an idempotency key, or nil
func (q *queries) GetJobRunByKey(ctx context.Context, idempotencyKey string) (*domain.JobRun, error) {
	query := `
		SELECT id, idempotency_key, job_type, status, payload_json, result_json, error_message, created_at, finished_at
		FROM job_runs
		WHERE idempotency_key = $1
	`
	var run domain.JobRun
	var payloadJSON, resultJSON []byte
	err := q.db.QueryRow(ctx, query, idempotencyKey).Scan(
		&run.ID, &run.IdempotencyKey, &run.JobType, &run.Status,
		&payloadJSON, &resultJSON, &run.ErrorMessage,
		&run.CreatedAt, &run.FinishedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job run: %w", err)
	}
	if err := json.Unmarshal(payloadJSON, &run.Payload); err != nil {
		return nil, fmt.Errorf("failed to decode job run payload: %w", err)
	}
	if err := json.Unmarshal(resultJSON, &run.Result); err != nil {
		return nil, fmt.Errorf("failed to decode job run result: %w", err)
	}
	return &run, nil
}

// UpsertJobRun creates or updates the ledger row for run.IdempotencyKey
func (q *queries) UpsertJobRun(ctx context.Context, run *domain.JobRun) error {
	if run.ID == "" {
		run.ID = newID()
	}
	payloadJSON, err := json.Marshal(orEmpty(run.Payload))
	if err != nil {
		return fmt.Errorf("failed to encode job run payload: %w", err)
	}
	resultJSON, err := json.Marshal(orEmpty(run.Result))
	if err != nil {
		return fmt.Errorf("failed to encode job run result: %w", err)
	}
	query := `
		INSERT INTO job_runs (id, idempotency_key, job_type, status, payload_json, result_json, error_message, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT ON CONSTRAINT uq_job_run_idempotency DO UPDATE SET
			status = EXCLUDED.status,
			result_json = EXCLUDED.result_json,
			error_message = EXCLUDED.error_message,
			finished_at = EXCLUDED.finished_at
	`
	_, err = q.db.Exec(ctx, query,
		run.ID, run.IdempotencyKey, run.JobType, run.Status,
		payloadJSON, resultJSON, run.ErrorMessage, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert job run: %w", err)
	}
	return nil
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// InsertProviderSyncLog records one provider interaction
func (q *queries) InsertProviderSyncLog(ctx context.Context, log *domain.ProviderSyncLog) error {
	if log.ID == "" {
		log.ID = newID()
	}
	query := `
		INSERT INTO provider_sync_logs (id, provider_name, resource, status, details, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()), $7)
	`
	var startedAt any
	if !log.StartedAt.IsZero() {
		startedAt = log.StartedAt
	}
	_, err := q.db.Exec(ctx, query,
		log.ID, log.ProviderName, log.Resource, log.Status, log.Details, startedAt, log.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert provider sync log: %w", err)
	}
	return nil
}

// InsertUser creates a user row
func (q *queries) InsertUser(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = newID()
	}
	_, err := q.db.Exec(ctx, `INSERT INTO users (id, email) VALUES ($1, $2)`, user.ID, user.Email)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// UpsertProfile creates or updates a user's profile
func (q *queries) UpsertProfile(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (user_id, username, avatar_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			username = EXCLUDED.username,
			avatar_url = EXCLUDED.avatar_url
	`
	_, err := q.db.Exec(ctx, query, profile.UserID, profile.Username, profile.AvatarURL)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}
