package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridstake/gridstake/internal/domain"
	"github.com/gridstake/gridstake/internal/leaderboard"
	"github.com/gridstake/gridstake/internal/testing/storetest"
)

func strPtr(s string) *string { return &s }

func scoreEntry(userID, points string) domain.ScoreEntry {
	return domain.ScoreEntry{
		UserID:             userID,
		SessionID:          "session-1",
		QuestionInstanceID: strPtr("question-1"),
		AwardedPoints:      decimal.RequireFromString(points),
		Reason:             domain.ScoreReasonSessionScore,
	}
}

func TestHandleGetLeaderboard_Global(t *testing.T) {
	store := storetest.New()
	store.ScoreEntries = []domain.ScoreEntry{
		scoreEntry("user-a", "10"),
		scoreEntry("user-b", "25"),
	}
	handler := HandleGetLeaderboard(store, leaderboard.NewService())

	req := httptest.NewRequest(http.MethodGet, "/leaderboard", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp LeaderboardResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "GLOBAL", resp.Scope)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, "user-b", resp.Rows[0].UserID)
	assert.Equal(t, 1, resp.Rows[0].Rank)
}

func TestHandleGetLeaderboard_League(t *testing.T) {
	store := storetest.New()
	ctx := context.Background()
	require.NoError(t, store.InsertLeague(ctx, &domain.League{ID: "league-1", Name: "Paddock Club"}))
	require.NoError(t, store.InsertLeagueMember(ctx, &domain.LeagueMember{ID: "m1", LeagueID: "league-1", UserID: "user-a"}))
	store.ScoreEntries = []domain.ScoreEntry{
		scoreEntry("user-a", "10"),
		// Not a member, excluded from the league board.
		scoreEntry("user-b", "25"),
	}
	handler := HandleGetLeaderboard(store, leaderboard.NewService())

	req := httptest.NewRequest(http.MethodGet, "/leaderboard?league_id=league-1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp LeaderboardResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "LEAGUE", resp.Scope)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "user-a", resp.Rows[0].UserID)
}
