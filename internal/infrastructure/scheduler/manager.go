// Package scheduler runs the periodic jobs of the service on robfig/cron.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/fachwerk-hq/fachwerk/internal/shared/biztime"
	"github.com/fachwerk-hq/fachwerk/internal/shared/logger"
)

// BatchJob processes one batch and returns the number of items handled.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

// SchedulerManager owns the cron instance. Every job is wrapped in
// SkipIfStillRunning, so a slow pass is never overlapped by the next tick.
type SchedulerManager struct {
	cron   *cron.Cron
	logger logger.Interface

	started   bool
	startedMu sync.Mutex
}

func NewSchedulerManager(log logger.Interface) *SchedulerManager {
	cl := cronLogger{log: log}
	return &SchedulerManager{
		cron: cron.New(
			cron.WithLocation(biztime.Location()),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: log,
	}
}

// RegisterJob runs job every interval with the given per-run timeout.
func (m *SchedulerManager) RegisterJob(name string, interval, timeout time.Duration, job BatchJob) error {
	if interval <= 0 {
		return fmt.Errorf("invalid interval %s for job %s", interval, name)
	}
	_, err := m.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		m.runOnce(ctx, name, job)
	})
	if err != nil {
		return fmt.Errorf("failed to register job %s: %w", name, err)
	}

	m.logger.Infow("registered scheduled job", "job", name, "interval", interval)
	return nil
}

func (m *SchedulerManager) runOnce(ctx context.Context, name string, job BatchJob) {
	start := biztime.NowUTC()
	count, err := job.Execute(ctx)
	if err != nil {
		m.logger.Errorw("scheduled job failed",
			"job", name,
			"error", err,
			"duration", time.Since(start),
		)
		return
	}
	if count > 0 {
		m.logger.Infow("scheduled job processed items",
			"job", name,
			"count", count,
			"duration", time.Since(start),
		)
	}
}

func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()
	if m.started {
		return
	}
	m.cron.Start()
	m.started = true
	m.logger.Infow("scheduler started", "jobs", len(m.cron.Entries()))
}

// Stop stops scheduling and waits for running jobs or ctx, whichever ends first.
func (m *SchedulerManager) Stop(ctx context.Context) {
	m.startedMu.Lock()
	if !m.started {
		m.startedMu.Unlock()
		return
	}
	m.started = false
	m.startedMu.Unlock()

	select {
	case <-m.cron.Stop().Done():
		m.logger.Infow("scheduler stopped")
	case <-ctx.Done():
		m.logger.Warnw("scheduler stop timed out, jobs still running")
	}
}

// cronLogger adapts logger.Interface to cron.Logger.
type cronLogger struct {
	log logger.Interface
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
