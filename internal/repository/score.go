package repository

import (
	"context"

	"github.com/gridstake/gridstake/internal/domain"
)

// Score defines the data access interface for the score ledger
type Score interface {
	// InsertScoreEntry inserts an entry unless one already exists for its
	// (user, session, question, reason) key. Returns whether a row was
	// actually created; the database unique constraint is the authority.
	InsertScoreEntry(ctx context.Context, entry *domain.ScoreEntry) (bool, error)
	ListScoreEntries(ctx context.Context, sessionID, reason string) ([]domain.ScoreEntry, error)
	CountScoreEntries(ctx context.Context, sessionID string) (int, error)
}

// Leaderboard defines the data access interface for ranking aggregates and
// snapshot publication
type Leaderboard interface {
	// GlobalTotals returns all-time awarded point totals per user joined
	// against profile names, sorted by total descending then user id
	// ascending. Rank is left for the caller to assign.
	GlobalTotals(ctx context.Context) ([]domain.LeaderboardRow, error)
	// LeagueTotals is GlobalTotals restricted to a league's members,
	// including members with no score entries at zero points.
	LeagueTotals(ctx context.Context, leagueID string) ([]domain.LeaderboardRow, error)
	UpsertLeaderboardSnapshot(ctx context.Context, snapshot *domain.LeaderboardSnapshot) error
	InsertLeagueSnapshot(ctx context.Context, snapshot *domain.LeagueSnapshot) error
}

// League defines the data access interface for league membership
type League interface {
	ListLeagueIDs(ctx context.Context) ([]string, error)
	InsertLeague(ctx context.Context, league *domain.League) error
	InsertLeagueMember(ctx context.Context, member *domain.LeagueMember) error
}
