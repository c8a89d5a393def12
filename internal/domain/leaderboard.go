package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LeaderboardScope distinguishes the global board from league boards.
type LeaderboardScope string

const (
	LeaderboardScopeGlobal LeaderboardScope = "GLOBAL"
	LeaderboardScopeLeague LeaderboardScope = "LEAGUE"
)

// LeaderboardRow is one ranked row. Rank is the 1-based position after
// sorting by total points descending; ties keep consecutive ranks ordered
// by user id ascending.
type LeaderboardRow struct {
	Rank        int             `json:"rank"`
	UserID      string          `json:"user_id"`
	Username    string          `json:"username"`
	TotalPoints decimal.Decimal `json:"total_points"`
}

// LeaderboardSnapshot is a stored materialization of a ranked board,
// upserted per (scope, scope_id, session_id-or-null) key.
type LeaderboardSnapshot struct {
	ID         string
	Scope      LeaderboardScope
	ScopeID    *string
	SessionID  *string
	ComputedAt time.Time
	Rows       []LeaderboardRow
}

// League is a private or public group of users with its own board.
type League struct {
	ID         string
	Name       string
	Visibility string
	JoinPolicy string
	InviteCode *string
	CreatedBy  string
	CreatedAt  time.Time
}

// LeagueMember links a user to a league, unique per (league, user).
type LeagueMember struct {
	ID       string
	LeagueID string
	UserID   string
	Role     string
	JoinedAt time.Time
}

// LeagueSnapshot is the append-only per-league history row written next to
// the upserted leaderboard snapshot.
type LeagueSnapshot struct {
	ID         string
	LeagueID   string
	ComputedAt time.Time
	Rows       []LeaderboardRow
}
