package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridstake/gridstake/internal/domain"
	"github.com/gridstake/gridstake/internal/testing/storetest"
)

const creditsTotal = 100

// seedOpenSession populates an OPEN session with two winner-style questions.
func seedOpenSession(t *testing.T, store *storetest.Store) (sessionID string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	sessionID = "session-1"
	require.NoError(t, store.InsertSession(ctx, &domain.Session{
		ID:          sessionID,
		EventID:     "event-1",
		Name:        "Race",
		SessionType: domain.SessionTypeRace,
		State:       domain.SessionStateOpen,
		StartsAt:    now.Add(-time.Hour),
		LockAt:      now.Add(time.Hour),
		EndsAt:      now.Add(3 * time.Hour),
	}))
	require.NoError(t, store.InsertQuestion(ctx, &domain.QuestionInstance{
		ID:           "question-1",
		SessionID:    sessionID,
		QuestionType: domain.QuestionTypeWinner,
		Options:      []string{"VER", "NOR", "LEC"},
	}))
	require.NoError(t, store.InsertQuestion(ctx, &domain.QuestionInstance{
		ID:           "question-2",
		SessionID:    sessionID,
		QuestionType: domain.QuestionTypeFastestLap,
		Options:      []string{"VER", "HAM"},
	}))
	return sessionID
}

func submission(answers ...domain.PredictionSubmissionAnswer) domain.PredictionSubmission {
	return domain.PredictionSubmission{Answers: answers}
}

func TestSubmitPrediction_AcceptsValidSubmission(t *testing.T) {
	store := storetest.New()
	sessionID := seedOpenSession(t, store)
	svc := NewService(creditsTotal)

	prediction, err := svc.SubmitPrediction(context.Background(), store, "user-1", sessionID, submission(
		domain.PredictionSubmissionAnswer{QuestionInstanceID: "question-1", SelectedOption: "VER", ConfidenceCredits: 60},
		domain.PredictionSubmissionAnswer{QuestionInstanceID: "question-2", SelectedOption: "HAM", ConfidenceCredits: 40},
	))
	require.NoError(t, err)
	require.NotNil(t, prediction)
	assert.Equal(t, "user-1", prediction.UserID)

	assert.Len(t, store.Predictions, 1)
	assert.Len(t, store.Answers, 2)
	assert.Len(t, store.Allocations, 2)
}

func TestSubmitPrediction_ResubmissionReplacesWholesale(t *testing.T) {
	store := storetest.New()
	sessionID := seedOpenSession(t, store)
	svc := NewService(creditsTotal)
	ctx := context.Background()

	first, err := svc.SubmitPrediction(ctx, store, "user-1", sessionID, submission(
		domain.PredictionSubmissionAnswer{QuestionInstanceID: "question-1", SelectedOption: "VER", ConfidenceCredits: 60},
		domain.PredictionSubmissionAnswer{QuestionInstanceID: "question-2", SelectedOption: "HAM", ConfidenceCredits: 40},
	))
	require.NoError(t, err)

	second, err := svc.SubmitPrediction(ctx, store, "user-1", sessionID, submission(
		domain.PredictionSubmissionAnswer{QuestionInstanceID: "question-1", SelectedOption: "NOR", ConfidenceCredits: 100},
	))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	assert.Len(t, store.Predictions, 1)
	require.Len(t, store.Answers, 1)
	assert.Equal(t, "NOR", store.Answers[0].SelectedOption)
	require.Len(t, store.Allocations, 1)
	assert.Equal(t, 100, store.Allocations[0].Credits)
}

func TestSubmitPrediction_RejectsLockedSession(t *testing.T) {
	store := storetest.New()
	sessionID := seedOpenSession(t, store)
	store.Sessions[sessionID].State = domain.SessionStateLocked
	svc := NewService(creditsTotal)

	_, err := svc.SubmitPrediction(context.Background(), store, "user-1", sessionID, submission(
		domain.PredictionSubmissionAnswer{QuestionInstanceID: "question-1", SelectedOption: "VER", ConfidenceCredits: 100},
	))
	assert.ErrorIs(t, err, domain.ErrSessionLocked)
}

func TestSubmitPrediction_LocksEagerlyPastDeadline(t *testing.T) {
	store := storetest.New()
	sessionID := seedOpenSession(t, store)
	// Still OPEN but the deadline has passed; the lock sweep is behind.
	store.Sessions[sessionID].LockAt = time.Now().UTC().Add(-time.Minute)
	svc := NewService(creditsTotal)

	_, err := svc.SubmitPrediction(context.Background(), store, "user-1", sessionID, submission(
		domain.PredictionSubmissionAnswer{QuestionInstanceID: "question-1", SelectedOption: "VER", ConfidenceCredits: 100},
	))
	assert.ErrorIs(t, err, domain.ErrSessionLocked)
	assert.Equal(t, domain.SessionStateLocked, store.Sessions[sessionID].State)
	assert.Empty(t, store.Predictions)
}

func TestSubmitPrediction_UnknownSession(t *testing.T) {
	store := storetest.New()
	svc := NewService(creditsTotal)

	_, err := svc.SubmitPrediction(context.Background(), store, "user-1", "missing", submission())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSubmitPrediction_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		answers []domain.PredictionSubmissionAnswer
		wantErr error
	}{
		{
			name: "unknown question",
			answers: []domain.PredictionSubmissionAnswer{
				{QuestionInstanceID: "question-9", SelectedOption: "VER", ConfidenceCredits: 100},
			},
			wantErr: domain.ErrUnknownQuestion,
		},
		{
			name: "duplicate answer",
			answers: []domain.PredictionSubmissionAnswer{
				{QuestionInstanceID: "question-1", SelectedOption: "VER", ConfidenceCredits: 50},
				{QuestionInstanceID: "question-1", SelectedOption: "NOR", ConfidenceCredits: 50},
			},
			wantErr: domain.ErrDuplicateAnswer,
		},
		{
			name: "option not offered",
			answers: []domain.PredictionSubmissionAnswer{
				{QuestionInstanceID: "question-1", SelectedOption: "HAM", ConfidenceCredits: 100},
			},
			wantErr: domain.ErrInvalidOption,
		},
		{
			name: "negative credits",
			answers: []domain.PredictionSubmissionAnswer{
				{QuestionInstanceID: "question-1", SelectedOption: "VER", ConfidenceCredits: -10},
			},
			wantErr: domain.ErrNegativeCredits,
		},
		{
			name: "credits under total",
			answers: []domain.PredictionSubmissionAnswer{
				{QuestionInstanceID: "question-1", SelectedOption: "VER", ConfidenceCredits: 30},
			},
			wantErr: domain.ErrCreditsSumMismatch,
		},
		{
			name: "credits over total",
			answers: []domain.PredictionSubmissionAnswer{
				{QuestionInstanceID: "question-1", SelectedOption: "VER", ConfidenceCredits: 70},
				{QuestionInstanceID: "question-2", SelectedOption: "HAM", ConfidenceCredits: 70},
			},
			wantErr: domain.ErrCreditsSumMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storetest.New()
			sessionID := seedOpenSession(t, store)
			svc := NewService(creditsTotal)

			_, err := svc.SubmitPrediction(context.Background(), store, "user-1", sessionID, submission(tt.answers...))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, store.Predictions)
		})
	}
}

func TestOpenScheduled(t *testing.T) {
	store := storetest.New()
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, store.InsertSession(ctx, &domain.Session{
		ID:       "due",
		State:    domain.SessionStateScheduled,
		StartsAt: now.Add(-time.Minute),
		LockAt:   now.Add(time.Hour),
	}))
	require.NoError(t, store.InsertSession(ctx, &domain.Session{
		ID:       "future",
		State:    domain.SessionStateScheduled,
		StartsAt: now.Add(time.Hour),
		LockAt:   now.Add(2 * time.Hour),
	}))
	svc := NewService(creditsTotal)

	opened, err := svc.OpenScheduled(ctx, store, now)
	require.NoError(t, err)
	assert.Equal(t, 1, opened)
	assert.Equal(t, domain.SessionStateOpen, store.Sessions["due"].State)
	assert.Equal(t, domain.SessionStateScheduled, store.Sessions["future"].State)
}

func TestLockExpired(t *testing.T) {
	store := storetest.New()
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, store.InsertSession(ctx, &domain.Session{
		ID:     "open-expired",
		State:  domain.SessionStateOpen,
		LockAt: now.Add(-time.Minute),
	}))
	// Never opened but its deadline passed anyway.
	require.NoError(t, store.InsertSession(ctx, &domain.Session{
		ID:     "scheduled-expired",
		State:  domain.SessionStateScheduled,
		LockAt: now.Add(-time.Minute),
	}))
	require.NoError(t, store.InsertSession(ctx, &domain.Session{
		ID:     "still-open",
		State:  domain.SessionStateOpen,
		LockAt: now.Add(time.Hour),
	}))
	svc := NewService(creditsTotal)

	locked, err := svc.LockExpired(ctx, store, now)
	require.NoError(t, err)
	assert.Equal(t, 2, locked)
	assert.Equal(t, domain.SessionStateLocked, store.Sessions["open-expired"].State)
	assert.Equal(t, domain.SessionStateLocked, store.Sessions["scheduled-expired"].State)
	assert.Equal(t, domain.SessionStateOpen, store.Sessions["still-open"].State)
}
