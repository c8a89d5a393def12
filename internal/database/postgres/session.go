package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gridstake/gridstake/internal/domain"
)

const sessionColumns = `id, event_id, external_id, provider_name, name, session_type, state, starts_at, lock_at, ends_at, created_at`

func scanSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	err := row.Scan(
		&s.ID,
		&s.EventID,
		&s.ExternalID,
		&s.ProviderName,
		&s.Name,
		&s.SessionType,
		&s.State,
		&s.StartsAt,
		&s.LockAt,
		&s.EndsAt,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSession retrieves a session by ID
func (q *queries) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`

	s, err := scanSession(q.db.QueryRow(ctx, query, sessionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

// InsertSession creates a new session row
func (q *queries) InsertSession(ctx context.Context, session *domain.Session) error {
	if session.ID == "" {
		session.ID = newID()
	}
	query := `
		INSERT INTO sessions (id, event_id, external_id, provider_name, name, session_type, state, starts_at, lock_at, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := q.db.Exec(ctx, query,
		session.ID, session.EventID, session.ExternalID, session.ProviderName,
		session.Name, session.SessionType, session.State,
		session.StartsAt, session.LockAt, session.EndsAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// UpdateSessionState sets the session state
func (q *queries) UpdateSessionState(ctx context.Context, sessionID string, state domain.SessionState) error {
	tag, err := q.db.Exec(ctx, `UPDATE sessions SET state = $2 WHERE id = $1`, sessionID, state)
	if err != nil {
		return fmt.Errorf("failed to update session state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	return nil
}

// OpenScheduledSessions transitions SCHEDULED sessions whose start time has
// passed to OPEN
func (q *queries) OpenScheduledSessions(ctx context.Context, now time.Time) (int, error) {
	query := `
		UPDATE sessions SET state = $1
		WHERE starts_at <= $2 AND state = $3
	`
	tag, err := q.db.Exec(ctx, query, domain.SessionStateOpen, now, domain.SessionStateScheduled)
	if err != nil {
		return 0, fmt.Errorf("failed to open scheduled sessions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// LockExpiredSessions transitions sessions past their lock time to LOCKED
func (q *queries) LockExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	query := `
		UPDATE sessions SET state = $1
		WHERE lock_at <= $2 AND state = ANY($3)
	`
	states := []string{string(domain.SessionStateScheduled), string(domain.SessionStateOpen)}
	tag, err := q.db.Exec(ctx, query, domain.SessionStateLocked, now, states)
	if err != nil {
		return 0, fmt.Errorf("failed to lock expired sessions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// ListFinalizeCandidates returns ended sessions that are still OPEN or LOCKED
func (q *queries) ListFinalizeCandidates(ctx context.Context, now time.Time) ([]domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE ends_at <= $1 AND state = ANY($2)
		ORDER BY ends_at, id
	`
	states := []string{string(domain.SessionStateOpen), string(domain.SessionStateLocked)}
	rows, err := q.db.Query(ctx, query, now, states)
	if err != nil {
		return nil, fmt.Errorf("failed to query finalize candidates: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return sessions, nil
}
