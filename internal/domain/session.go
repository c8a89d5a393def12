package domain

import "time"

// SessionState is the lifecycle state of a session.
// Transitions only ever move forward:
// SCHEDULED -> OPEN -> LOCKED -> SCORING -> FINALIZED
type SessionState string

const (
	SessionStateScheduled SessionState = "SCHEDULED"
	SessionStateOpen      SessionState = "OPEN"
	SessionStateLocked    SessionState = "LOCKED"
	SessionStateScoring   SessionState = "SCORING"
	SessionStateFinalized SessionState = "FINALIZED"
)

// SessionType identifies the kind of timed session within an event weekend.
type SessionType string

const (
	SessionTypeFP1              SessionType = "FP1"
	SessionTypeFP2              SessionType = "FP2"
	SessionTypeFP3              SessionType = "FP3"
	SessionTypeSprintQualifying SessionType = "SPRINT_QUALIFYING"
	SessionTypeSprint           SessionType = "SPRINT"
	SessionTypeQualifying       SessionType = "QUALIFYING"
	SessionTypeRace             SessionType = "RACE"
)

// Season groups events by year. At most one season is current at a time.
type Season struct {
	ID        string
	Year      int
	IsCurrent bool
	CreatedAt time.Time
}

// Event is a race weekend belonging to a season.
type Event struct {
	ID         string
	SeasonID   string
	ExternalID *string
	Name       string
	Slug       string
	Country    string
	StartAt    time.Time
	EndAt      time.Time
	CreatedAt  time.Time
}

// Session is a single timed session users can predict on.
// ExternalID links the session to the facts provider; sessions without one
// can never have their outcomes resolved.
type Session struct {
	ID           string
	EventID      string
	ExternalID   *string
	ProviderName *string
	Name         string
	SessionType  SessionType
	State        SessionState
	StartsAt     time.Time
	LockAt       time.Time
	EndsAt       time.Time
	CreatedAt    time.Time
}

// IsAcceptingPredictions reports whether new prediction submissions are
// allowed for the session state alone (the lock_at deadline is checked
// separately at submission time).
func (s *Session) IsAcceptingPredictions() bool {
	return s.State == SessionStateOpen
}
