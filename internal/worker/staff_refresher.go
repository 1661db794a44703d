package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StaffLoader reloads the staff directory cache and reports how many entries
// it holds.
type StaffLoader interface {
	Refresh(ctx context.Context) (int, error)
}

// StaffDirectoryRefresher re-warms the staff cache on a cron schedule.
type StaffDirectoryRefresher struct {
	loader  StaffLoader
	logger  *zap.Logger
	timeout time.Duration
	cron    *cron.Cron
}

// NewStaffDirectoryRefresher validates schedule (standard 5-field expression or a
// descriptor such as "@every 5m").
func NewStaffDirectoryRefresher(loader StaffLoader, schedule string, timeout time.Duration, logger *zap.Logger) (*StaffDirectoryRefresher, error) {
	r := &StaffDirectoryRefresher{
		loader:  loader,
		logger:  logger,
		timeout: timeout,
		cron:    cron.New(),
	}
	if _, err := r.cron.AddFunc(schedule, r.RunOnce); err != nil {
		return nil, fmt.Errorf("invalid staff refresh schedule %q: %w", schedule, err)
	}
	return r, nil
}

// Start warms the cache once in the background and starts the schedule.
func (r *StaffDirectoryRefresher) Start() {
	go r.RunOnce()
	r.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *StaffDirectoryRefresher) Stop(ctx context.Context) {
	done := r.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// RunOnce performs one refresh. Failures are logged; the next tick retries.
func (r *StaffDirectoryRefresher) RunOnce() {
	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	count, err := r.loader.Refresh(ctx)
	if err != nil {
		r.logger.Warn("staff directory refresh failed", zap.Error(err))
		return
	}
	r.logger.Debug("staff directory refreshed", zap.Int("count", count), zap.Duration("took", time.Since(start)))
}
