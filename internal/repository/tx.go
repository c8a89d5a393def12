package repository

import "context"

// Store is the full data-access surface available inside a unit of work.
type Store interface {
	Season
	Event
	Session
	Question
	Prediction
	Score
	Leaderboard
	League
	JobRun
	ProviderSync
	User
}

// Tx is a scoped transactional unit of work. Every mutating operation in
// the module runs inside one, with commit-or-rollback guaranteed on every
// exit path.
type Tx interface {
	Store
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TxManager begins units of work. The scheduler acquires one per job
// iteration; request-equivalent operations acquire one per call.
type TxManager interface {
	Begin(ctx context.Context) (Tx, error)
}
