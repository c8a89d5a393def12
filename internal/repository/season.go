package repository

import (
	"context"

	"github.com/gridstake/gridstake/internal/domain"
)

// Season defines the data access interface for season catalog operations
type Season interface {
	// GetCurrentSeason returns the season flagged current, or nil when none
	// exists yet.
	GetCurrentSeason(ctx context.Context) (*domain.Season, error)
	GetSeasonByYear(ctx context.Context, year int) (*domain.Season, error)
	InsertSeason(ctx context.Context, season *domain.Season) error
	// MarkSeasonCurrent flags the given season current and clears the flag
	// everywhere else, preserving the at-most-one-current invariant.
	MarkSeasonCurrent(ctx context.Context, seasonID string) error
}

// Event defines the data access interface for event catalog operations
type Event interface {
	ListEventsBySeason(ctx context.Context, seasonID string) ([]domain.Event, error)
	// UpsertEvent inserts or updates an event by slug.
	UpsertEvent(ctx context.Context, event *domain.Event) error
}
