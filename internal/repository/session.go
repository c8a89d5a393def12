package repository

import (
	"context"
	"time"

	"github.com/gridstake/gridstake/internal/domain"
)

// Session defines the data access interface for session lifecycle operations
type Session interface {
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	InsertSession(ctx context.Context, session *domain.Session) error
	UpdateSessionState(ctx context.Context, sessionID string, state domain.SessionState) error
	// OpenScheduledSessions moves every SCHEDULED session whose starts_at
	// has passed to OPEN and returns the number of rows affected.
	OpenScheduledSessions(ctx context.Context, now time.Time) (int, error)
	// LockExpiredSessions moves every SCHEDULED or OPEN session whose
	// lock_at has passed to LOCKED and returns the number of rows affected.
	LockExpiredSessions(ctx context.Context, now time.Time) (int, error)
	// ListFinalizeCandidates returns sessions whose ends_at has passed and
	// which are still OPEN or LOCKED.
	ListFinalizeCandidates(ctx context.Context, now time.Time) ([]domain.Session, error)
}
