package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gridstake/gridstake/internal/database"
	"github.com/gridstake/gridstake/internal/logger"
	"github.com/gridstake/gridstake/internal/repository"
)

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, letting
// every query method run either directly on the pool or inside a
// transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// queries implements every repository data-access interface on top of a
// querier. Methods are spread across the files of this package by concern.
type queries struct {
	db querier
}

// Store is the pool-backed repository and unit-of-work factory.
type Store struct {
	queries
	pool *pgxpool.Pool
}

// NewStore creates a Store on top of an open connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{queries: queries{db: pool}, pool: pool}
}

// Begin starts a transactional unit of work.
func (s *Store) Begin(ctx context.Context) (repository.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", database.ErrMsgFailedToBeginTransaction, err)
	}
	return &storeTx{queries: queries{db: tx}, tx: tx}, nil
}

type storeTx struct {
	queries
	tx pgx.Tx
}

func (t *storeTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *storeTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

// SafeRollback rolls back a unit of work and logs any error that isn't a
// closed-transaction error. Use in defer.
func SafeRollback(ctx context.Context, tx repository.Tx) {
	if err := tx.Rollback(ctx); err != nil {
		logger.FromContext(ctx).Error("Failed to rollback transaction", "error", err)
	}
}

var (
	_ repository.Store     = (*Store)(nil)
	_ repository.TxManager = (*Store)(nil)
	_ repository.Tx        = (*storeTx)(nil)
)
