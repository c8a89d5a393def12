package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gridstake/gridstake/internal/domain"
	"github.com/gridstake/gridstake/internal/logger"
	"github.com/gridstake/gridstake/internal/metrics"
	"github.com/gridstake/gridstake/internal/repository"
)

// Service defines the interface for session lifecycle transitions and
// prediction submissions
type Service interface {
	// OpenScheduled moves every SCHEDULED session whose start time has
	// passed to OPEN and returns the number of sessions opened.
	OpenScheduled(ctx context.Context, tx repository.Tx, now time.Time) (int, error)
	// LockExpired moves every SCHEDULED or OPEN session whose lock
	// deadline has passed to LOCKED and returns the number locked.
	LockExpired(ctx context.Context, tx repository.Tx, now time.Time) (int, error)
	// SubmitPrediction validates and stores a user's picks for a session.
	// Resubmission before the lock deadline replaces the previous answers
	// and allocations wholesale.
	SubmitPrediction(ctx context.Context, tx repository.Tx, userID, sessionID string, submission domain.PredictionSubmission) (*domain.Prediction, error)
}

type service struct {
	creditsTotal int
}

// NewService creates a new session service. creditsTotal is the exact sum
// confidence credits must reach across a submission.
func NewService(creditsTotal int) Service {
	return &service{creditsTotal: creditsTotal}
}

func (s *service) OpenScheduled(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	opened, err := tx.OpenScheduledSessions(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to open scheduled sessions: %w", err)
	}
	if opened > 0 {
		metrics.SessionsOpened.Add(float64(opened))
		logger.FromContext(ctx).Info("Opened sessions", "count", opened)
	}
	return opened, nil
}

func (s *service) LockExpired(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	locked, err := tx.LockExpiredSessions(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to lock expired sessions: %w", err)
	}
	if locked > 0 {
		metrics.SessionsLocked.Add(float64(locked))
		logger.FromContext(ctx).Info("Locked sessions", "count", locked)
	}
	return locked, nil
}

func (s *service) SubmitPrediction(ctx context.Context, tx repository.Tx, userID, sessionID string, submission domain.PredictionSubmission) (*domain.Prediction, error) {
	log := logger.FromContext(ctx)

	sess, err := tx.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if !sess.IsAcceptingPredictions() {
		return nil, fmt.Errorf("%w: session %s is %s", domain.ErrSessionLocked, sessionID, sess.State)
	}
	if !now.Before(sess.LockAt) {
		// The lock sweep has not caught up yet; lock eagerly so the
		// state matches what we tell the caller.
		if err := tx.UpdateSessionState(ctx, sessionID, domain.SessionStateLocked); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: lock deadline passed for session %s", domain.ErrSessionLocked, sessionID)
	}

	questions, err := tx.ListQuestionsBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(submission, questions); err != nil {
		return nil, err
	}

	prediction, err := tx.GetPrediction(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if prediction == nil {
		prediction = &domain.Prediction{
			ID:            uuid.NewString(),
			UserID:        userID,
			SessionID:     sessionID,
			ClientVersion: submission.ClientVersion,
		}
		if err := tx.InsertPrediction(ctx, prediction); err != nil {
			return nil, err
		}
	} else {
		if err := tx.TouchPrediction(ctx, prediction.ID, submission.ClientVersion); err != nil {
			return nil, err
		}
		if err := tx.DeleteAnswersByPrediction(ctx, prediction.ID); err != nil {
			return nil, err
		}
		if err := tx.DeleteAllocationsByPrediction(ctx, prediction.ID); err != nil {
			return nil, err
		}
	}

	for _, answer := range submission.Answers {
		if err := tx.InsertAnswer(ctx, &domain.PredictionAnswer{
			ID:                 uuid.NewString(),
			PredictionID:       prediction.ID,
			UserID:             userID,
			QuestionInstanceID: answer.QuestionInstanceID,
			SelectedOption:     answer.SelectedOption,
		}); err != nil {
			return nil, err
		}
		if err := tx.InsertAllocation(ctx, &domain.PredictionConfidenceAllocation{
			ID:                 uuid.NewString(),
			PredictionID:       prediction.ID,
			QuestionInstanceID: answer.QuestionInstanceID,
			Credits:            answer.ConfidenceCredits,
		}); err != nil {
			return nil, err
		}
	}

	metrics.PredictionsAccepted.Inc()
	log.Info("Accepted prediction",
		"user_id", userID,
		"session_id", sessionID,
		"answers", len(submission.Answers))
	return prediction, nil
}

// validate checks a submission against the session's questions: every answer
// must target a known question at most once, pick one of its options, and
// the confidence credits must be non-negative and sum to the configured total.
func (s *service) validate(submission domain.PredictionSubmission, questions []domain.QuestionInstance) error {
	byID := make(map[string]*domain.QuestionInstance, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	seen := make(map[string]bool, len(submission.Answers))
	total := 0
	for _, answer := range submission.Answers {
		question, ok := byID[answer.QuestionInstanceID]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrUnknownQuestion, answer.QuestionInstanceID)
		}
		if seen[answer.QuestionInstanceID] {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateAnswer, answer.QuestionInstanceID)
		}
		seen[answer.QuestionInstanceID] = true

		if !containsOption(question.Options, answer.SelectedOption) {
			return fmt.Errorf("%w: %q for question %s", domain.ErrInvalidOption, answer.SelectedOption, question.ID)
		}
		if answer.ConfidenceCredits < 0 {
			return fmt.Errorf("%w: question %s", domain.ErrNegativeCredits, question.ID)
		}
		total += answer.ConfidenceCredits
	}

	if total != s.creditsTotal {
		return fmt.Errorf("%w: got %d, want %d", domain.ErrCreditsSumMismatch, total, s.creditsTotal)
	}
	return nil
}

func containsOption(options []string, selected string) bool {
	for _, option := range options {
		if option == selected {
			return true
		}
	}
	return false
}
