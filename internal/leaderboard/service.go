package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/gridstake/gridstake/internal/domain"
	"github.com/gridstake/gridstake/internal/logger"
	"github.com/gridstake/gridstake/internal/repository"
)

// Summary reports how many snapshot rows a publication pass wrote.
type Summary struct {
	LeaderboardSnapshots int
	LeagueSnapshots      int
}

// Service defines the interface for leaderboard aggregation and snapshot
// publication
type Service interface {
	// BuildGlobal returns the all-time ranked board. Rows are sorted by
	// total points descending; rank is the 1-based position, with ties
	// ordered by user id ascending.
	BuildGlobal(ctx context.Context, tx repository.Tx) ([]domain.LeaderboardRow, error)
	// BuildLeague is BuildGlobal restricted to a league's members; members
	// without score entries appear with zero points.
	BuildLeague(ctx context.Context, tx repository.Tx, leagueID string) ([]domain.LeaderboardRow, error)
	// PublishSnapshots upserts the global snapshot (all-time key plus the
	// per-session key when sessionID is non-nil) and one snapshot per
	// league, appending a league history row alongside each.
	PublishSnapshots(ctx context.Context, tx repository.Tx, sessionID *string) (Summary, error)
}

type service struct{}

// NewService creates a new leaderboard service
func NewService() Service {
	return &service{}
}

func (s *service) BuildGlobal(ctx context.Context, tx repository.Tx) ([]domain.LeaderboardRow, error) {
	totals, err := tx.GlobalTotals(ctx)
	if err != nil {
		return nil, err
	}
	return ranked(totals), nil
}

func (s *service) BuildLeague(ctx context.Context, tx repository.Tx, leagueID string) ([]domain.LeaderboardRow, error) {
	totals, err := tx.LeagueTotals(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	return ranked(totals), nil
}

func (s *service) PublishSnapshots(ctx context.Context, tx repository.Tx, sessionID *string) (Summary, error) {
	now := time.Now().UTC()
	var summary Summary

	globalRows, err := s.BuildGlobal(ctx, tx)
	if err != nil {
		return summary, err
	}

	globalKeys := []*string{nil}
	if sessionID != nil {
		globalKeys = append(globalKeys, sessionID)
	}
	for _, key := range globalKeys {
		snapshot := &domain.LeaderboardSnapshot{
			Scope:      domain.LeaderboardScopeGlobal,
			SessionID:  key,
			ComputedAt: now,
			Rows:       globalRows,
		}
		if err := tx.UpsertLeaderboardSnapshot(ctx, snapshot); err != nil {
			return summary, err
		}
		summary.LeaderboardSnapshots++
	}

	leagueIDs, err := tx.ListLeagueIDs(ctx)
	if err != nil {
		return summary, err
	}
	for _, leagueID := range leagueIDs {
		leagueRows, err := s.BuildLeague(ctx, tx, leagueID)
		if err != nil {
			return summary, fmt.Errorf("failed to build league board %s: %w", leagueID, err)
		}
		scopeID := leagueID
		snapshot := &domain.LeaderboardSnapshot{
			Scope:      domain.LeaderboardScopeLeague,
			ScopeID:    &scopeID,
			SessionID:  sessionID,
			ComputedAt: now,
			Rows:       leagueRows,
		}
		if err := tx.UpsertLeaderboardSnapshot(ctx, snapshot); err != nil {
			return summary, err
		}
		summary.LeaderboardSnapshots++

		history := &domain.LeagueSnapshot{
			LeagueID:   leagueID,
			ComputedAt: now,
			Rows:       leagueRows,
		}
		if err := tx.InsertLeagueSnapshot(ctx, history); err != nil {
			return summary, err
		}
		summary.LeagueSnapshots++
	}

	logger.FromContext(ctx).Debug("Published leaderboard snapshots",
		"leaderboard_snapshots", summary.LeaderboardSnapshots,
		"league_snapshots", summary.LeagueSnapshots)
	return summary, nil
}

// ranked assigns 1-based ranks to rows already sorted by the store
// (total descending, user id ascending as the tie-break).
func ranked(rows []domain.LeaderboardRow) []domain.LeaderboardRow {
	result := make([]domain.LeaderboardRow, len(rows))
	for i, row := range rows {
		row.Rank = i + 1
		result[i] = row
	}
	return result
}
