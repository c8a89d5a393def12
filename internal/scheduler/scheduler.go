package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/gridstake/gridstake/internal/logger"
	"github.com/gridstake/gridstake/internal/metrics"
	"github.com/gridstake/gridstake/internal/repository"
)

// minSleep is the floor on the pause between iterations, so a job whose run
// time exceeds its interval still yields between runs.
const minSleep = 100 * time.Millisecond

// JobFunc is one iteration of a recurring job. Every call receives a fresh
// transaction that the scheduler commits on nil error and rolls back
// otherwise.
type JobFunc func(ctx context.Context, tx repository.Tx) error

// Job pairs a registered job body with its run interval.
type Job struct {
	Name     string
	Interval time.Duration
	Run      JobFunc
}

// Scheduler runs registered jobs on fixed intervals, one goroutine per job.
// Intervals are drift-corrected: the pause after an iteration is the interval
// minus the time the iteration took, floored at minSleep.
type Scheduler struct {
	txManager    repository.TxManager
	startupDelay time.Duration

	mu      sync.Mutex
	jobs    []Job
	quit    chan struct{}
	wg      sync.WaitGroup
	running bool
}

// New creates a scheduler. The startup delay is shared by every job loop and
// gives the rest of the process time to come up before the first iteration.
func New(txManager repository.TxManager, startupDelay time.Duration) *Scheduler {
	return &Scheduler{
		txManager:    txManager,
		startupDelay: startupDelay,
	}
}

// Register adds a job. Registration after Start takes effect on the next
// Start.
func (s *Scheduler) Register(name string, interval time.Duration, run JobFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, Job{Name: name, Interval: interval, Run: run})
}

// Start launches one loop per registered job. Calling Start while already
// running is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.quit = make(chan struct{})

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.runLoop(ctx, job, s.quit)
	}
}

// Stop signals every loop and waits for in-flight iterations to finish.
// Stop is idempotent, and the scheduler can be started again afterwards.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.quit)
	// Wait under the lock so a concurrent Start cannot add loops to the
	// WaitGroup while it drains.
	s.wg.Wait()
	s.running = false
}

func (s *Scheduler) runLoop(ctx context.Context, job Job, quit chan struct{}) {
	defer s.wg.Done()

	ctx = logger.WithJobName(ctx, job.Name)
	log := logger.FromContext(ctx)

	if s.startupDelay > 0 {
		select {
		case <-quit:
			return
		case <-ctx.Done():
			return
		case <-time.After(s.startupDelay):
		}
	}

	interval := job.Interval
	if interval < minSleep {
		interval = minSleep
	}

	for {
		select {
		case <-quit:
			return
		case <-ctx.Done():
			return
		default:
		}

		started := time.Now()
		runCtx := logger.WithRunID(ctx, logger.GenerateRunID())
		err := s.runOnce(runCtx, job)
		metrics.ObserveJobRun(job.Name, started, err)
		if err != nil {
			logger.FromContext(runCtx).Error("Job run failed", "error", err)
		} else {
			log.Debug("Job run complete", "duration", time.Since(started))
		}

		sleepFor := interval - time.Since(started)
		if sleepFor < minSleep {
			sleepFor = minSleep
		}
		select {
		case <-quit:
			return
		case <-ctx.Done():
			return
		case <-time.After(sleepFor):
		}
	}
}

// runOnce executes one iteration inside its own transaction.
func (s *Scheduler) runOnce(ctx context.Context, job Job) error {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		// Rollback after a successful commit is a no-op.
		_ = tx.Rollback(ctx)
	}()

	if err := job.Run(ctx, tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
