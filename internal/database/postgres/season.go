package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gridstake/gridstake/internal/domain"
)

// GetCurrentSeason returns the season flagged current, or nil when none exists
func (q *queries) GetCurrentSeason(ctx context.Context) (*domain.Season, error) {
	query := `SELECT id, year, is_current, created_at FROM seasons WHERE is_current = TRUE`

	var s domain.Season
	err := q.db.QueryRow(ctx, query).Scan(&s.ID, &s.Year, &s.IsCurrent, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current season: %w", err)
	}
	return &s, nil
}

// GetSeasonByYear returns the season for a year, or nil when absent
func (q *queries) GetSeasonByYear(ctx context.Context, year int) (*domain.Season, error) {
	query := `SELECT id, year, is_current, created_at FROM seasons WHERE year = $1`

	var s domain.Season
	err := q.db.QueryRow(ctx, query, year).Scan(&s.ID, &s.Year, &s.IsCurrent, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get season by year: %w", err)
	}
	return &s, nil
}

// InsertSeason creates a new season row
func (q *queries) InsertSeason(ctx context.Context, season *domain.Season) error {
	if season.ID == "" {
		season.ID = newID()
	}
	_, err := q.db.Exec(ctx,
		`INSERT INTO seasons (id, year, is_current) VALUES ($1, $2, $3)`,
		season.ID, season.Year, season.IsCurrent,
	)
	if err != nil {
		return fmt.Errorf("failed to insert season: %w", err)
	}
	return nil
}

// MarkSeasonCurrent flags one season current and clears the flag elsewhere
func (q *queries) MarkSeasonCurrent(ctx context.Context, seasonID string) error {
	if _, err := q.db.Exec(ctx, `UPDATE seasons SET is_current = FALSE WHERE is_current = TRUE AND id <> $1`, seasonID); err != nil {
		return fmt.Errorf("failed to clear current season flag: %w", err)
	}
	tag, err := q.db.Exec(ctx, `UPDATE seasons SET is_current = TRUE WHERE id = $1`, seasonID)
	if err != nil {
		return fmt.Errorf("failed to mark season current: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrSeasonNotFound, seasonID)
	}
	return nil
}

// ListEventsBySeason returns a season's events ordered by start time
func (q *queries) ListEventsBySeason(ctx context.Context, seasonID string) ([]domain.Event, error) {
	query := `
		SELECT id, season_id, external_id, name, slug, country, start_at, end_at, created_at
		FROM events
		WHERE season_id = $1
		ORDER BY start_at, id
	`
	rows, err := q.db.Query(ctx, query, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		err := rows.Scan(&e.ID, &e.SeasonID, &e.ExternalID, &e.Name, &e.Slug, &e.Country, &e.StartAt, &e.EndAt, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

// UpsertEvent inserts or updates an event keyed by slug
func (q *queries) UpsertEvent(ctx context.Context, event *domain.Event) error {
	if event.ID == "" {
		event.ID = newID()
	}
	query := `
		INSERT INTO events (id, season_id, external_id, name, slug, country, start_at, end_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (slug) DO UPDATE SET
			external_id = EXCLUDED.external_id,
			name = EXCLUDED.name,
			country = EXCLUDED.country,
			start_at = EXCLUDED.start_at,
			end_at = EXCLUDED.end_at
	`
	_, err := q.db.Exec(ctx, query,
		event.ID, event.SeasonID, event.ExternalID, event.Name,
		event.Slug, event.Country, event.StartAt, event.EndAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert event: %w", err)
	}
	return nil
}
