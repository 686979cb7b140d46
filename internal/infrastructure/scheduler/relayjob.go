package scheduler

import (
	"context"

	"github.com/fachwerk-hq/fachwerk/internal/application/marketplace/usecases"
	"github.com/fachwerk-hq/fachwerk/internal/shared/logger"
)

type relayRunner interface {
	Execute(ctx context.Context) (*usecases.RelayResult, error)
}

// Locker elects the single relay instance when several servers share an outbox.
type Locker interface {
	TryAcquire(ctx context.Context) (bool, func(context.Context) error, error)
}

type RelayObserver interface {
	ObserveRelay(dispatched, failed, deadLettered int)
}

// RelayJob drains the outbox once per call.
type RelayJob struct {
	relay    relayRunner
	lock     Locker
	observer RelayObserver
	logger   logger.Interface
}

// NewRelayJob builds the job. lock and observer may be nil.
func NewRelayJob(relay relayRunner, lock Locker, observer RelayObserver, logger logger.Interface) *RelayJob {
	return &RelayJob{
		relay:    relay,
		lock:     lock,
		observer: observer,
		logger:   logger,
	}
}

func (j *RelayJob) Execute(ctx context.Context) (int, error) {
	if j.lock != nil {
		ok, release, err := j.lock.TryAcquire(ctx)
		if err != nil {
			return 0, err
		}
		if !ok {
			j.logger.Debugw("relay lock held by another instance, skipping pass")
			return 0, nil
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				j.logger.Warnw("failed to release relay lock", "error", err)
			}
		}()
	}

	result, err := j.relay.Execute(ctx)
	if err != nil {
		return 0, err
	}
	if j.observer != nil {
		j.observer.ObserveRelay(result.Dispatched, result.Failed, result.DeadLettered)
	}
	if result.Failed > 0 {
		j.logger.Warnw("relay pass left entries undelivered",
			"failed", result.Failed,
			"deferred", result.Deferred,
			"dead_lettered", result.DeadLettered,
		)
	}
	return result.Dispatched, nil
}

// Drain repeats passes until nothing is left to dispatch or a pass stalls.
// The relay command uses it for one-shot runs.
func (j *RelayJob) Drain(ctx context.Context) (int, error) {
	total := 0
	for {
		n, err := j.Execute(ctx)
		total += n
		if err != nil || n == 0 {
			return total, err
		}
	}
}
