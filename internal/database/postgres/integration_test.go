package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/gridstake/gridstake/internal/database"
	"github.com/gridstake/gridstake/internal/database/schema"
	"github.com/gridstake/gridstake/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	// Start Postgres container
	var pgContainer *tcpostgres.PostgresContainer
	var err error

	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Skipf("Skipping integration test due to panic (likely Docker issue): %v", r)
			}
		}()
		pgContainer, err = tcpostgres.Run(ctx,
			"postgres:15-alpine",
			tcpostgres.WithDatabase("testdb"),
			tcpostgres.WithUsername("testuser"),
			tcpostgres.WithPassword("testpass"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(5*time.Second)),
		)
	}()

	if pgContainer == nil {
		if err != nil {
			t.Fatalf("failed to start postgres container: %v", err)
		}
		return
	}
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %v", err)
		}
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := database.NewPool(connStr, 5, 5*time.Minute, 30*time.Minute)
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema.SchemaSQL); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	store := NewStore(pool)
	now := time.Now().UTC().Truncate(time.Second)

	// Seed the catalog chain every subtest builds on.
	userID := uuid.NewString()
	seasonID := uuid.NewString()
	eventID := uuid.NewString()
	sessionID := uuid.NewString()
	ruleID := uuid.NewString()
	questionID := uuid.NewString()

	if err := store.InsertUser(ctx, &domain.User{ID: userID}); err != nil {
		t.Fatalf("InsertUser failed: %v", err)
	}
	if err := store.UpsertProfile(ctx, &domain.Profile{UserID: userID, Username: "tifosi"}); err != nil {
		t.Fatalf("UpsertProfile failed: %v", err)
	}
	if err := store.InsertSeason(ctx, &domain.Season{ID: seasonID, Year: 2026, IsCurrent: true}); err != nil {
		t.Fatalf("InsertSeason failed: %v", err)
	}
	if err := store.UpsertEvent(ctx, &domain.Event{
		ID: eventID, SeasonID: seasonID, ExternalID: strPtr("1229"),
		Name: "Bahrain Grand Prix", Slug: "2026-bahrain-grand-prix", Country: "Bahrain",
		StartAt: now.Add(-72 * time.Hour), EndAt: now.Add(-24 * time.Hour),
	}); err != nil {
		t.Fatalf("UpsertEvent failed: %v", err)
	}
	if err := store.InsertSession(ctx, &domain.Session{
		ID: sessionID, EventID: eventID, ExternalID: strPtr("9999"),
		Name: "Race", SessionType: domain.SessionTypeRace, State: domain.SessionStateLocked,
		StartsAt: now.Add(-27 * time.Hour), LockAt: now.Add(-26 * time.Hour), EndsAt: now.Add(-24 * time.Hour),
	}); err != nil {
		t.Fatalf("InsertSession failed: %v", err)
	}
	if err := store.InsertScoringRule(ctx, &domain.ScoringRule{
		ID: ruleID, Name: "Race winner", QuestionType: domain.QuestionTypeWinner, BasePoints: 10,
	}); err != nil {
		t.Fatalf("InsertScoringRule failed: %v", err)
	}
	if err := store.InsertQuestion(ctx, &domain.QuestionInstance{
		ID: questionID, SessionID: sessionID, QuestionType: domain.QuestionTypeWinner,
		Prompt: "Who wins the race?", Options: []string{"VER", "NOR", "LEC"},
		LockAt: now.Add(-26 * time.Hour), ScoringRuleID: ruleID,
	}); err != nil {
		t.Fatalf("InsertQuestion failed: %v", err)
	}

	t.Run("SessionRoundtrip", func(t *testing.T) {
		sess, err := store.GetSession(ctx, sessionID)
		if err != nil {
			t.Fatalf("GetSession failed: %v", err)
		}
		if sess.State != domain.SessionStateLocked {
			t.Errorf("expected LOCKED, got %s", sess.State)
		}
		if sess.ExternalID == nil || *sess.ExternalID != "9999" {
			t.Errorf("external id not preserved: %v", sess.ExternalID)
		}

		if _, err := store.GetSession(ctx, uuid.NewString()); err == nil {
			t.Error("expected error for unknown session")
		}
	})

	t.Run("QuestionOptionsAndResolution", func(t *testing.T) {
		questions, err := store.ListQuestionsBySession(ctx, sessionID)
		if err != nil {
			t.Fatalf("ListQuestionsBySession failed: %v", err)
		}
		if len(questions) != 1 {
			t.Fatalf("expected 1 question, got %d", len(questions))
		}
		if len(questions[0].Options) != 3 || questions[0].Options[0] != "VER" {
			t.Errorf("options not preserved: %v", questions[0].Options)
		}
		if questions[0].CorrectOption != nil {
			t.Error("correct option should start unset")
		}

		if err := store.SetCorrectOption(ctx, questionID, "VER"); err != nil {
			t.Fatalf("SetCorrectOption failed: %v", err)
		}
		questions, err = store.ListQuestionsBySession(ctx, sessionID)
		if err != nil {
			t.Fatalf("ListQuestionsBySession failed: %v", err)
		}
		if questions[0].CorrectOption == nil || *questions[0].CorrectOption != "VER" {
			t.Errorf("correct option not stamped: %v", questions[0].CorrectOption)
		}
	})

	t.Run("PredictionUniquePerUserSession", func(t *testing.T) {
		predictionID := uuid.NewString()
		if err := store.InsertPrediction(ctx, &domain.Prediction{
			ID: predictionID, UserID: userID, SessionID: sessionID,
		}); err != nil {
			t.Fatalf("InsertPrediction failed: %v", err)
		}
		if err := store.InsertPrediction(ctx, &domain.Prediction{
			ID: uuid.NewString(), UserID: userID, SessionID: sessionID,
		}); err == nil {
			t.Error("expected unique violation for duplicate (user, session)")
		}

		got, err := store.GetPrediction(ctx, userID, sessionID)
		if err != nil {
			t.Fatalf("GetPrediction failed: %v", err)
		}
		if got == nil || got.ID != predictionID {
			t.Errorf("expected prediction %s, got %+v", predictionID, got)
		}
	})

	t.Run("ScoreEntryIdempotency", func(t *testing.T) {
		entry := &domain.ScoreEntry{
			UserID:               userID,
			SessionID:            sessionID,
			QuestionInstanceID:   strPtr(questionID),
			BasePoints:           decimal.NewFromInt(10),
			ConfidenceMultiplier: decimal.RequireFromString("2"),
			AwardedPoints:        decimal.NewFromInt(20),
			Reason:               domain.ScoreReasonSessionScore,
			InitiatedBy:          "test",
			Credits:              100,
		}
		inserted, err := store.InsertScoreEntry(ctx, entry)
		if err != nil {
			t.Fatalf("InsertScoreEntry failed: %v", err)
		}
		if !inserted {
			t.Fatal("first insert should create the row")
		}

		again := *entry
		again.ID = ""
		inserted, err = store.InsertScoreEntry(ctx, &again)
		if err != nil {
			t.Fatalf("second InsertScoreEntry failed: %v", err)
		}
		if inserted {
			t.Error("duplicate (user, session, question, reason) must be a no-op")
		}

		count, err := store.CountScoreEntries(ctx, sessionID)
		if err != nil {
			t.Fatalf("CountScoreEntries failed: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 score entry, got %d", count)
		}
	})

	t.Run("ScoreEntryNullQuestionIdempotency", func(t *testing.T) {
		// NULLS NOT DISTINCT makes two null-question rows collide too.
		entry := &domain.ScoreEntry{
			UserID:        userID,
			SessionID:     sessionID,
			AwardedPoints: decimal.NewFromInt(5),
			Reason:        "MANUAL_ADJUST",
			InitiatedBy:   "test",
		}
		inserted, err := store.InsertScoreEntry(ctx, entry)
		if err != nil {
			t.Fatalf("InsertScoreEntry failed: %v", err)
		}
		if !inserted {
			t.Fatal("first null-question insert should create the row")
		}

		again := *entry
		again.ID = ""
		inserted, err = store.InsertScoreEntry(ctx, &again)
		if err != nil {
			t.Fatalf("second InsertScoreEntry failed: %v", err)
		}
		if inserted {
			t.Error("duplicate null-question row must be a no-op")
		}
	})

	t.Run("GlobalTotals", func(t *testing.T) {
		rows, err := store.GlobalTotals(ctx)
		if err != nil {
			t.Fatalf("GlobalTotals failed: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("expected 1 row, got %d", len(rows))
		}
		if rows[0].Username != "tifosi" {
			t.Errorf("expected profile username, got %s", rows[0].Username)
		}
		if !rows[0].TotalPoints.Equal(decimal.NewFromInt(25)) {
			t.Errorf("expected total 25, got %s", rows[0].TotalPoints.String())
		}
	})

	t.Run("JobRunUpsert", func(t *testing.T) {
		key := "auto-finalize:" + sessionID
		if err := store.UpsertJobRun(ctx, &domain.JobRun{
			IdempotencyKey: key,
			JobType:        "auto_finalize_session",
			Status:         domain.JobStatusFailed,
			ErrorMessage:   strPtr("provider down"),
		}); err != nil {
			t.Fatalf("UpsertJobRun failed: %v", err)
		}
		finished := time.Now().UTC()
		if err := store.UpsertJobRun(ctx, &domain.JobRun{
			IdempotencyKey: key,
			JobType:        "auto_finalize_session",
			Status:         domain.JobStatusSuccess,
			Payload:        map[string]any{"session_id": sessionID},
			Result:         map[string]any{"entries_created": float64(1)},
			FinishedAt:     &finished,
		}); err != nil {
			t.Fatalf("second UpsertJobRun failed: %v", err)
		}

		run, err := store.GetJobRunByKey(ctx, key)
		if err != nil {
			t.Fatalf("GetJobRunByKey failed: %v", err)
		}
		if run == nil {
			t.Fatal("expected a job run")
		}
		if run.Status != domain.JobStatusSuccess {
			t.Errorf("retry must update the same row, got status %s", run.Status)
		}
		if run.ErrorMessage != nil {
			t.Errorf("success upsert should clear the error, got %v", *run.ErrorMessage)
		}
		if run.Result["entries_created"] != float64(1) {
			t.Errorf("result not preserved: %v", run.Result)
		}

		var count int
		if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM job_runs WHERE idempotency_key = $1`, key).Scan(&count); err != nil {
			t.Fatalf("count query failed: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 row for the key, got %d", count)
		}
	})

	t.Run("LeaderboardSnapshotUpsert", func(t *testing.T) {
		snapshot := &domain.LeaderboardSnapshot{
			Scope:      domain.LeaderboardScopeGlobal,
			SessionID:  strPtr(sessionID),
			ComputedAt: now,
			Rows: []domain.LeaderboardRow{
				{Rank: 1, UserID: userID, Username: "tifosi", TotalPoints: decimal.NewFromInt(25)},
			},
		}
		if err := store.UpsertLeaderboardSnapshot(ctx, snapshot); err != nil {
			t.Fatalf("UpsertLeaderboardSnapshot failed: %v", err)
		}
		if err := store.UpsertLeaderboardSnapshot(ctx, snapshot); err != nil {
			t.Fatalf("second UpsertLeaderboardSnapshot failed: %v", err)
		}

		var count int
		query := `SELECT COUNT(*) FROM leaderboard_snapshots WHERE scope = 'GLOBAL' AND session_id = $1`
		if err := pool.QueryRow(ctx, query, sessionID).Scan(&count); err != nil {
			t.Fatalf("count query failed: %v", err)
		}
		if count != 1 {
			t.Errorf("same key must upsert, got %d rows", count)
		}
	})

	t.Run("LifecycleSweeps", func(t *testing.T) {
		dueID := uuid.NewString()
		if err := store.InsertSession(ctx, &domain.Session{
			ID: dueID, EventID: eventID, Name: "Qualifying",
			SessionType: domain.SessionTypeQualifying, State: domain.SessionStateScheduled,
			StartsAt: now.Add(-2 * time.Hour), LockAt: now.Add(-time.Hour), EndsAt: now.Add(-30 * time.Minute),
		}); err != nil {
			t.Fatalf("InsertSession failed: %v", err)
		}

		opened, err := store.OpenScheduledSessions(ctx, now)
		if err != nil {
			t.Fatalf("OpenScheduledSessions failed: %v", err)
		}
		if opened != 1 {
			t.Errorf("expected 1 opened, got %d", opened)
		}

		locked, err := store.LockExpiredSessions(ctx, now)
		if err != nil {
			t.Fatalf("LockExpiredSessions failed: %v", err)
		}
		if locked != 1 {
			t.Errorf("expected 1 locked, got %d", locked)
		}

		candidates, err := store.ListFinalizeCandidates(ctx, now)
		if err != nil {
			t.Fatalf("ListFinalizeCandidates failed: %v", err)
		}
		// The seeded race session and the qualifying session both ended
		// without being finalized.
		if len(candidates) != 2 {
			t.Errorf("expected 2 candidates, got %d", len(candidates))
		}
	})

	t.Run("TransactionRollback", func(t *testing.T) {
		tx, err := store.Begin(ctx)
		if err != nil {
			t.Fatalf("Begin failed: %v", err)
		}
		scratchID := uuid.NewString()
		if err := tx.InsertSession(ctx, &domain.Session{
			ID: scratchID, EventID: eventID, Name: "Sprint",
			SessionType: domain.SessionTypeSprint, State: domain.SessionStateScheduled,
			StartsAt: now, LockAt: now, EndsAt: now,
		}); err != nil {
			t.Fatalf("InsertSession in tx failed: %v", err)
		}
		if err := tx.Rollback(ctx); err != nil {
			t.Fatalf("Rollback failed: %v", err)
		}

		if _, err := store.GetSession(ctx, scratchID); err == nil {
			t.Error("rolled back session should not exist")
		}
	})
}
