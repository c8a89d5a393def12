package domain

import "time"

// Prediction is a user's single submission for a session, unique per
// (user, session). Resubmission replaces the answers and allocations
// wholesale rather than merging.
type Prediction struct {
	ID            string
	UserID        string
	SessionID     string
	ClientVersion *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PredictionAnswer is one selected option for one question, unique per
// (user, question instance).
type PredictionAnswer struct {
	ID                 string
	PredictionID       string
	UserID             string
	QuestionInstanceID string
	SelectedOption     string
	CreatedAt          time.Time
}

// PredictionConfidenceAllocation assigns confidence credits to one answered
// question. Credits across a submission must sum to the configured total;
// the API layer validates that before anything in this module runs.
type PredictionConfidenceAllocation struct {
	ID                 string
	PredictionID       string
	QuestionInstanceID string
	Credits            int
}

// PredictionSubmission is the validated payload accepted by the prediction
// service when a user submits or resubmits their picks for a session.
type PredictionSubmission struct {
	ClientVersion *string
	Answers       []PredictionSubmissionAnswer
}

// PredictionSubmissionAnswer is one answer within a submission.
type PredictionSubmissionAnswer struct {
	QuestionInstanceID string
	SelectedOption     string
	ConfidenceCredits  int
}
