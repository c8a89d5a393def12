package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridstake/gridstake/internal/domain"
	"github.com/gridstake/gridstake/internal/leaderboard"
	"github.com/gridstake/gridstake/internal/testing/storetest"
)

func strPtr(s string) *string { return &s }

// seedScoredSession populates a LOCKED session with one resolved question, a
// scoring rule and a single correct prediction.
func seedScoredSession(t *testing.T, store *storetest.Store) (sessionID string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	sessionID = "session-1"
	require.NoError(t, store.InsertSession(ctx, &domain.Session{
		ID:          sessionID,
		EventID:     "event-1",
		Name:        "Race",
		SessionType: domain.SessionTypeRace,
		State:       domain.SessionStateLocked,
		StartsAt:    now.Add(-3 * time.Hour),
		LockAt:      now.Add(-2 * time.Hour),
		EndsAt:      now.Add(-1 * time.Hour),
	}))
	require.NoError(t, store.InsertScoringRule(ctx, &domain.ScoringRule{
		ID:           "rule-winner",
		Name:         "Race winner",
		QuestionType: domain.QuestionTypeWinner,
		BasePoints:   10,
	}))
	require.NoError(t, store.InsertQuestion(ctx, &domain.QuestionInstance{
		ID:            "question-1",
		SessionID:     sessionID,
		QuestionType:  domain.QuestionTypeWinner,
		Prompt:        "Who wins the race?",
		Options:       []string{"VER", "NOR", "LEC"},
		ScoringRuleID: "rule-winner",
		CorrectOption: strPtr("VER"),
	}))
	require.NoError(t, store.InsertPrediction(ctx, &domain.Prediction{
		ID:        "prediction-1",
		UserID:    "user-1",
		SessionID: sessionID,
	}))
	require.NoError(t, store.InsertAnswer(ctx, &domain.PredictionAnswer{
		ID:                 "answer-1",
		PredictionID:       "prediction-1",
		UserID:             "user-1",
		QuestionInstanceID: "question-1",
		SelectedOption:     "VER",
	}))
	require.NoError(t, store.InsertAllocation(ctx, &domain.PredictionConfidenceAllocation{
		ID:                 "allocation-1",
		PredictionID:       "prediction-1",
		QuestionInstanceID: "question-1",
		Credits:            100,
	}))
	return sessionID
}

func TestRunSessionScoring_CreatesEntriesAndFinalizes(t *testing.T) {
	store := storetest.New()
	sessionID := seedScoredSession(t, store)
	svc := NewService(leaderboard.NewService())

	created, err := svc.RunSessionScoring(context.Background(), store, sessionID, "admin")
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	assert.Equal(t, domain.SessionStateFinalized, store.Sessions[sessionID].State)
	require.Len(t, store.ScoreEntries, 1)
	entry := store.ScoreEntries[0]
	assert.Equal(t, "user-1", entry.UserID)
	assert.Equal(t, domain.ScoreReasonSessionScore, entry.Reason)
	assert.Equal(t, "admin", entry.InitiatedBy)
	assert.Equal(t, 100, entry.Credits)
	// 10 base * 2.0 multiplier at full confidence
	assert.Equal(t, "20", entry.AwardedPoints.String())

	// Finalization always republishes the global snapshot, all-time and
	// per-session.
	assert.Len(t, store.Snapshots, 2)
}

func TestRunSessionScoring_SecondRunCreatesNothing(t *testing.T) {
	store := storetest.New()
	sessionID := seedScoredSession(t, store)
	svc := NewService(leaderboard.NewService())
	ctx := context.Background()

	first, err := svc.RunSessionScoring(ctx, store, sessionID, "admin")
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	second, err := svc.RunSessionScoring(ctx, store, sessionID, "admin")
	require.NoError(t, err)
	assert.Equal(t, 0, second)
	assert.Len(t, store.ScoreEntries, 1)
	assert.Equal(t, domain.SessionStateFinalized, store.Sessions[sessionID].State)
}

func TestRunSessionScoring_WrongAnswerScoresNothing(t *testing.T) {
	store := storetest.New()
	sessionID := seedScoredSession(t, store)
	ctx := context.Background()

	// Repoint the answer at a losing option.
	store.Answers[0].SelectedOption = "NOR"

	svc := NewService(leaderboard.NewService())
	created, err := svc.RunSessionScoring(ctx, store, sessionID, "admin")
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Empty(t, store.ScoreEntries)
	assert.Equal(t, domain.SessionStateFinalized, store.Sessions[sessionID].State)
}

func TestRunSessionScoring_UnresolvedQuestionSkipped(t *testing.T) {
	store := storetest.New()
	sessionID := seedScoredSession(t, store)
	store.Questions["question-1"].CorrectOption = nil

	svc := NewService(leaderboard.NewService())
	created, err := svc.RunSessionScoring(context.Background(), store, sessionID, "admin")
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Equal(t, domain.SessionStateFinalized, store.Sessions[sessionID].State)
}

func TestRunSessionScoring_MissingRuleSkipsQuestion(t *testing.T) {
	store := storetest.New()
	sessionID := seedScoredSession(t, store)
	delete(store.Rules, "rule-winner")

	svc := NewService(leaderboard.NewService())
	created, err := svc.RunSessionScoring(context.Background(), store, sessionID, "admin")
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Equal(t, domain.SessionStateFinalized, store.Sessions[sessionID].State)
}

func TestRunSessionScoring_MissingSession(t *testing.T) {
	store := storetest.New()
	svc := NewService(leaderboard.NewService())

	_, err := svc.RunSessionScoring(context.Background(), store, "nope", "admin")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRunSessionScoring_NoPredictionsStillFinalizes(t *testing.T) {
	store := storetest.New()
	sessionID := seedScoredSession(t, store)
	delete(store.Predictions, "prediction-1")

	svc := NewService(leaderboard.NewService())
	created, err := svc.RunSessionScoring(context.Background(), store, sessionID, "admin")
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Equal(t, domain.SessionStateFinalized, store.Sessions[sessionID].State)
	assert.Len(t, store.Snapshots, 2)
}
