// Package retry wraps idempotent reads in bounded exponential backoff.
// Writes must never go through here: a retried status mutation could apply twice.
package retry

import (
	"context"
	"time"

	goretry "github.com/sethvargo/go-retry"

	apperrors "github.com/fachwerk-hq/fachwerk/internal/shared/errors"
)

// Policy bounds the retry loop.
type Policy struct {
	Attempts  uint64
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultPolicy allows three attempts starting at 50ms.
var DefaultPolicy = Policy{Attempts: 3, BaseDelay: 50 * time.Millisecond, MaxDelay: time.Second}

// Reader runs idempotent reads under a policy.
type Reader struct {
	policy Policy
}

// NewReader creates a Reader, filling zero fields from DefaultPolicy.
func NewReader(p Policy) *Reader {
	if p.Attempts == 0 {
		p.Attempts = DefaultPolicy.Attempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultPolicy.BaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultPolicy.MaxDelay
	}
	return &Reader{policy: p}
}

// Do calls fn until it succeeds, returns an application error, or the attempts
// are exhausted. Application errors are answers, not failures, and are
// returned immediately.
func (r *Reader) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	b := goretry.NewExponential(r.policy.BaseDelay)
	b = goretry.WithCappedDuration(r.policy.MaxDelay, b)
	b = goretry.WithJitterPercent(10, b)
	// WithMaxRetries counts retries after the first call.
	b = goretry.WithMaxRetries(r.policy.Attempts-1, b)

	return goretry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil || apperrors.IsAppError(err) {
			return err
		}
		return goretry.RetryableError(err)
	})
}

// Delay is the wait before retry number attempt (1-based) of a doubling
// backoff starting at base and capped at max. Callers that persist their
// retries, like the outbox relay, use it instead of looping in process.
func Delay(base, max time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	b := goretry.WithCappedDuration(max, goretry.NewExponential(base))
	var d time.Duration
	for i := 0; i < attempt; i++ {
		d, _ = b.Next()
	}
	return d
}

// Read is a generic helper around Reader.Do for calls returning a value.
func Read[T any](ctx context.Context, r *Reader, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := r.Do(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
