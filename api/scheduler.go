/*
scheduler.go - Saved-report retention scheduler

PURPOSE:
  Periodically deletes saved arrear reports older than the retention
  window so the history table does not grow without bound.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Deletes reports with created_at < now - Retention
  - Runs once immediately on start, then on every tick

CONFIGURATION:
  - Retention: How long reports are kept (0 disables the scheduler)
  - CheckInterval: How often to prune (default: 1 hour)

USAGE:
  scheduler := NewRetentionScheduler(store, 720*time.Hour, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - arrear/report.go: ReportStore.DeleteBefore
  - config/config.go: ARREAR_RETENTION, ARREAR_RETENTION_INTERVAL
*/
package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/warp/arrear-engine/arrear"
)

// RetentionScheduler prunes old saved reports.
type RetentionScheduler struct {
	Store         arrear.ReportStore
	Retention     time.Duration
	CheckInterval time.Duration
	Logger        *zap.Logger

	// now is replaceable in tests.
	now func() time.Time

	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	lastRun time.Time
}

// NewRetentionScheduler creates a new scheduler.
func NewRetentionScheduler(store arrear.ReportStore, retention time.Duration, logger *zap.Logger) *RetentionScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetentionScheduler{
		Store:         store,
		Retention:     retention,
		CheckInterval: 1 * time.Hour,
		Logger:        logger,
		now:           time.Now,
	}
}

// Enabled reports whether the scheduler prunes anything.
func (rs *RetentionScheduler) Enabled() bool {
	return rs.Retention > 0
}

// Start begins the scheduler.
func (rs *RetentionScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled() {
		rs.Logger.Info("retention scheduler disabled")
		return
	}
	if rs.ticker != nil {
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.stop = make(chan struct{})
	rs.wg.Add(1)

	go rs.run(rs.ticker, rs.stop)

	rs.Logger.Info("retention scheduler started",
		zap.Duration("retention", rs.Retention),
		zap.Duration("interval", rs.CheckInterval),
	)
}

// Stop stops the scheduler and waits for an in-flight run.
func (rs *RetentionScheduler) Stop() {
	rs.mu.Lock()
	ticker, stop := rs.ticker, rs.stop
	rs.ticker, rs.stop = nil, nil
	rs.mu.Unlock()

	if ticker == nil {
		return
	}
	ticker.Stop()
	close(stop)
	// RunOnce takes rs.mu, so wait outside it.
	rs.wg.Wait()
	rs.Logger.Info("retention scheduler stopped")
}

func (rs *RetentionScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer rs.wg.Done()

	// Run immediately on start
	rs.prune()

	for {
		select {
		case <-ticker.C:
			rs.prune()
		case <-stop:
			return
		}
	}
}

func (rs *RetentionScheduler) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if _, err := rs.RunOnce(ctx); err != nil {
		rs.Logger.Error("retention run failed", zap.Error(err))
	}
}

// RunOnce deletes reports older than the retention window and returns how many.
func (rs *RetentionScheduler) RunOnce(ctx context.Context) (int, error) {
	if !rs.Enabled() {
		return 0, nil
	}

	now := rs.now()
	cutoff := now.Add(-rs.Retention)
	n, err := rs.Store.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	rs.mu.Lock()
	rs.lastRun = now
	rs.mu.Unlock()

	if n > 0 {
		rs.Logger.Info("pruned saved reports", zap.Int("deleted", n), zap.Time("cutoff", cutoff))
	}
	return n, nil
}

// LastRun returns when RunOnce last completed, or the zero time.
func (rs *RetentionScheduler) LastRun() time.Time {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.lastRun
}
