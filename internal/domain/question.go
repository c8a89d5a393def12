package domain

import "time"

// QuestionType selects the outcome-resolution strategy for a question.
type QuestionType string

const (
	QuestionTypePole                QuestionType = "POLE"
	QuestionTypeWinner              QuestionType = "WINNER"
	QuestionTypeTop5                QuestionType = "TOP5"
	QuestionTypeDNF                 QuestionType = "DNF"
	QuestionTypeFastestLap          QuestionType = "FASTEST_LAP"
	QuestionTypeSafetyCar           QuestionType = "SAFETY_CAR"
	QuestionTypeMidfieldConstructor QuestionType = "MIDFIELD_CONSTRUCTOR"
	QuestionTypeFirstPitStopTeam    QuestionType = "FIRST_PIT_STOP_TEAM"
	QuestionTypeFirstSafetyCarLap   QuestionType = "FIRST_SAFETY_CAR_LAP"
)

// ScoringRule maps a question type to the base points it is worth.
type ScoringRule struct {
	ID           string
	Name         string
	QuestionType QuestionType
	BasePoints   int
	CreatedBy    *string
	CreatedAt    time.Time
}

// QuestionInstance is a concrete question attached to a session.
// CorrectOption stays nil until outcome resolution stamps it; a later
// resolution pass may overwrite it, but score entries already written from
// the old value are never revisited.
type QuestionInstance struct {
	ID            string
	SessionID     string
	QuestionType  QuestionType
	Prompt        string
	Options       []string
	LockAt        time.Time
	ScoringRuleID string
	CorrectOption *string
	CreatedAt     time.Time
}
