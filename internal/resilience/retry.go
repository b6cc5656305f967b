package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/adapter"
	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/sethvargo/go-retry"
)

// RetryPolicy configures [RunWithRetry]. MaxRetries counts repetitions after
// the first attempt.
type RetryPolicy struct {
	MaxRetries    int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	Jitter        bool
	// RetryIf decides whether a failed attempt may be repeated. Nil means
	// [DefaultRetryIf].
	RetryIf func(error) bool

	// random returns a value in [0, 1). Nil means math/rand/v2.
	random func() float64
}

// NewRetryPolicy builds a policy from the resilience config section.
func NewRetryPolicy(cfg config.Resilience) RetryPolicy {
	return RetryPolicy{
		MaxRetries:    cfg.MaxRetries,
		BaseDelay:     cfg.BaseDelay,
		MaxDelay:      cfg.MaxDelay,
		BackoffFactor: cfg.BackoffFactor,
		Jitter:        !cfg.DisableJitter,
	}
}

// WithRetryIf returns a copy of p using retryIf.
func (p RetryPolicy) WithRetryIf(retryIf func(error) bool) RetryPolicy {
	p.RetryIf = retryIf
	return p
}

// DefaultRetryIf retries everything except authentication and permission
// failures and caller cancellation.
func DefaultRetryIf(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	return adapter.KindOf(err) != adapter.KindAuth
}

// Delay returns the wait before retry number attempt (zero based):
// min(base * factor^attempt, max), scaled by a uniform factor in [0.5, 1.0]
// when jitter is on.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	factor := p.BackoffFactor
	if factor < 1 {
		factor = 1
	}

	d := float64(p.BaseDelay) * math.Pow(factor, float64(attempt))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}

	if p.Jitter {
		random := p.random
		if random == nil {
			random = rand.Float64
		}
		d *= 0.5 + random()*0.5
	}

	return time.Duration(d)
}

func (p RetryPolicy) backoff() retry.Backoff {
	attempt := 0
	next := retry.BackoffFunc(func() (time.Duration, bool) {
		d := p.Delay(attempt)
		attempt++
		return d, false
	})

	maxRetries := p.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	return retry.WithMaxRetries(uint64(maxRetries), next)
}

// RunWithRetry calls op until it succeeds, the policy gives up, or ctx is
// done. The error of the last attempt is returned unchanged; a cancelled
// wait returns ctx.Err().
func RunWithRetry(ctx context.Context, p RetryPolicy, op func(ctx context.Context) error) error {
	retryIf := p.RetryIf
	if retryIf == nil {
		retryIf = DefaultRetryIf
	}

	return retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !retryIf(err) {
			return err
		}
		return retry.RetryableError(err)
	})
}

// RetryResult is [RunWithRetry] for calls that produce a value.
func RetryResult[T any](ctx context.Context, p RetryPolicy, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := RunWithRetry(ctx, p, func(ctx context.Context) error {
		var err error
		result, err = op(ctx)
		return err
	})
	return result, err
}
