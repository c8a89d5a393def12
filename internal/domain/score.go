package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScoreReasonSessionScore is the reason recorded for regular session
// scoring passes. The (user, session, question, reason) key is unique at
// the database level, which is what makes re-running scoring a no-op.
const ScoreReasonSessionScore = "SESSION_SCORE"

// ScoreEntry is an immutable scoring fact. Entries are only ever inserted,
// never updated or deleted.
type ScoreEntry struct {
	ID                   string
	UserID               string
	SessionID            string
	QuestionInstanceID   *string
	BasePoints           decimal.Decimal
	ConfidenceMultiplier decimal.Decimal
	AwardedPoints        decimal.Decimal
	Reason               string
	InitiatedBy          string
	PredictionID         *string
	ScoringRuleID        *string
	Credits              int
	CreatedAt            time.Time
}
