package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gridstake/gridstake/internal/domain"
)

// InsertScoreEntry inserts a score entry unless one already exists for its
// (user, session, question, reason) key. The unique constraint, not this
// code, is what prevents duplicates under concurrent writers.
func (q *queries) InsertScoreEntry(ctx context.Context, entry *domain.ScoreEntry) (bool, error) {
	if entry.ID == "" {
		entry.ID = newID()
	}
	query := `
		INSERT INTO score_entries (id, user_id, session_id, question_instance_id, base_points, confidence_multiplier, awarded_points, reason, initiated_by, prediction_id, scoring_rule_id, credits)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT ON CONSTRAINT uq_score_entry_reason DO NOTHING
	`
	tag, err := q.db.Exec(ctx, query,
		entry.ID, entry.UserID, entry.SessionID, entry.QuestionInstanceID,
		entry.BasePoints.StringFixed(2),
		entry.ConfidenceMultiplier.StringFixed(2),
		entry.AwardedPoints.StringFixed(2),
		entry.Reason, entry.InitiatedBy, entry.PredictionID, entry.ScoringRuleID, entry.Credits,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert score entry: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListScoreEntries returns a session's score entries for one reason
func (q *queries) ListScoreEntries(ctx context.Context, sessionID, reason string) ([]domain.ScoreEntry, error) {
	query := `
		SELECT id, user_id, session_id, question_instance_id, base_points, confidence_multiplier, awarded_points, reason, initiated_by, prediction_id, scoring_rule_id, credits, created_at
		FROM score_entries
		WHERE session_id = $1 AND reason = $2
	`
	rows, err := q.db.Query(ctx, query, sessionID, reason)
	if err != nil {
		return nil, fmt.Errorf("failed to query score entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.ScoreEntry
	for rows.Next() {
		var entry domain.ScoreEntry
		var base, mult, awarded pgtype.Numeric
		err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.SessionID, &entry.QuestionInstanceID,
			&base, &mult, &awarded,
			&entry.Reason, &entry.InitiatedBy, &entry.PredictionID, &entry.ScoringRuleID, &entry.Credits,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan score entry: %w", err)
		}
		if entry.BasePoints, err = numericToDecimal(base); err != nil {
			return nil, err
		}
		if entry.ConfidenceMultiplier, err = numericToDecimal(mult); err != nil {
			return nil, err
		}
		if entry.AwardedPoints, err = numericToDecimal(awarded); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}

// CountScoreEntries returns the number of entries recorded for a session
func (q *queries) CountScoreEntries(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM score_entries WHERE session_id = $1`, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count score entries: %w", err)
	}
	return count, nil
}

// GlobalTotals returns all-time totals per user, sorted for ranking.
// Ties are broken by user id ascending so ranks are deterministic.
func (q *queries) GlobalTotals(ctx context.Context) ([]domain.LeaderboardRow, error) {
	query := `
		SELECT s.user_id,
		       COALESCE(p.username, s.user_id::text) AS username,
		       COALESCE(SUM(s.awarded_points), 0) AS total_points
		FROM score_entries s
		LEFT JOIN profiles p ON p.user_id = s.user_id
		GROUP BY s.user_id, p.username
		ORDER BY total_points DESC, s.user_id ASC
	`
	return q.scanTotals(ctx, query)
}

// LeagueTotals returns totals restricted to a league's members, including
// members with no score entries at zero.
func (q *queries) LeagueTotals(ctx context.Context, leagueID string) ([]domain.LeaderboardRow, error) {
	query := `
		SELECT m.user_id,
		       COALESCE(p.username, m.user_id::text) AS username,
		       COALESCE(SUM(s.awarded_points), 0) AS total_points
		FROM league_members m
		LEFT JOIN profiles p ON p.user_id = m.user_id
		LEFT JOIN score_entries s ON s.user_id = m.user_id
		WHERE m.league_id = $1
		GROUP BY m.user_id, p.username
		ORDER BY total_points DESC, m.user_id ASC
	`
	return q.scanTotals(ctx, query, leagueID)
}

func (q *queries) scanTotals(ctx context.Context, query string, args ...any) ([]domain.LeaderboardRow, error) {
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard totals: %w", err)
	}
	defer rows.Close()

	var result []domain.LeaderboardRow
	for rows.Next() {
		var row domain.LeaderboardRow
		var total pgtype.Numeric
		if err := rows.Scan(&row.UserID, &row.Username, &total); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		if row.TotalPoints, err = numericToDecimal(total); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return result, nil
}

// UpsertLeaderboardSnapshot writes a snapshot keyed by (scope, scope_id, session_id)
func (q *queries) UpsertLeaderboardSnapshot(ctx context.Context, snapshot *domain.LeaderboardSnapshot) error {
	if snapshot.ID == "" {
		snapshot.ID = newID()
	}
	rowsJSON, err := json.Marshal(snapshot.Rows)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot rows: %w", err)
	}
	query := `
		INSERT INTO leaderboard_snapshots (id, scope, scope_id, session_id, computed_at, rows_json)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT ON CONSTRAINT uq_leaderboard_snapshot_key DO UPDATE SET
			computed_at = EXCLUDED.computed_at,
			rows_json = EXCLUDED.rows_json
	`
	_, err = q.db.Exec(ctx, query,
		snapshot.ID, snapshot.Scope, snapshot.ScopeID, snapshot.SessionID,
		snapshot.ComputedAt, rowsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert leaderboard snapshot: %w", err)
	}
	return nil
}

// InsertLeagueSnapshot appends a per-league snapshot history row
func (q *queries) InsertLeagueSnapshot(ctx context.Context, snapshot *domain.LeagueSnapshot) error {
	if snapshot.ID == "" {
		snapshot.ID = newID()
	}
	rowsJSON, err := json.Marshal(snapshot.Rows)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot rows: %w", err)
	}
	query := `
		INSERT INTO league_snapshots (id, league_id, computed_at, rows_json)
		VALUES ($1, $2, $3, $4)
	`
	_, err = q.db.Exec(ctx, query, snapshot.ID, snapshot.LeagueID, snapshot.ComputedAt, rowsJSON)
	if err != nil {
		return fmt.Errorf("failed to insert league snapshot: %w", err)
	}
	return nil
}

// ListLeagueIDs returns every league id
func (q *queries) ListLeagueIDs(ctx context.Context) ([]string, error) {
	rows, err := q.db.Query(ctx, `SELECT id FROM leagues ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query leagues: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan league id: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return ids, nil
}

// InsertLeague creates a new league
func (q *queries) InsertLeague(ctx context.Context, league *domain.League) error {
	if league.ID == "" {
		league.ID = newID()
	}
	query := `
		INSERT INTO leagues (id, name, visibility, join_policy, invite_code, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := q.db.Exec(ctx, query, league.ID, league.Name, league.Visibility, league.JoinPolicy, league.InviteCode, league.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to insert league: %w", err)
	}
	return nil
}

// InsertLeagueMember adds a user to a league
func (q *queries) InsertLeagueMember(ctx context.Context, member *domain.LeagueMember) error {
	if member.ID == "" {
		member.ID = newID()
	}
	query := `
		INSERT INTO league_members (id, league_id, user_id, role)
		VALUES ($1, $2, $3, $4)
	`
	_, err := q.db.Exec(ctx, query, member.ID, member.LeagueID, member.UserID, member.Role)
	if err != nil {
		return fmt.Errorf("failed to insert league member: %w", err)
	}
	return nil
}
