package handler

import (
	"net/http"

	"github.com/gridstake/gridstake/internal/domain"
	"github.com/gridstake/gridstake/internal/leaderboard"
	"github.com/gridstake/gridstake/internal/logger"
	"github.com/gridstake/gridstake/internal/repository"
)

// LeaderboardResponse is a ranked board computed from live totals.
type LeaderboardResponse struct {
	Scope string                  `json:"scope"`
	Rows  []domain.LeaderboardRow `json:"rows"`
}

// HandleGetLeaderboard returns the global board, or a league board when the
// league_id query parameter is set
func HandleGetLeaderboard(txManager repository.TxManager, leaderboardService leaderboard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		tx, err := txManager.Begin(r.Context())
		if err != nil {
			log.Error("Failed to begin transaction", "error", err)
			respondError(w, http.StatusInternalServerError, ErrMsgGetLeaderboardFailed)
			return
		}
		defer tx.Rollback(r.Context())

		leagueID := r.URL.Query().Get("league_id")

		var rows []domain.LeaderboardRow
		scope := domain.LeaderboardScopeGlobal
		if leagueID != "" {
			scope = domain.LeaderboardScopeLeague
			rows, err = leaderboardService.BuildLeague(r.Context(), tx, leagueID)
		} else {
			rows, err = leaderboardService.BuildGlobal(r.Context(), tx)
		}
		if err != nil {
			log.Error("Failed to build leaderboard", "league_id", leagueID, "error", err)
			respondServiceError(w, err, ErrMsgGetLeaderboardFailed)
			return
		}

		respondJSON(w, http.StatusOK, LeaderboardResponse{Scope: string(scope), Rows: rows})
	}
}
