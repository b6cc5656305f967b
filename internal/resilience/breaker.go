package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/adapter"
	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
)

// CircuitBreaker guards calls to the Remote Data Service. It is safe for
// concurrent use.
type CircuitBreaker struct {
	mu sync.Mutex

	failureThreshold int
	recoveryTimeout  time.Duration

	state         models.CircuitState
	failures      int
	lastFailureAt time.Time
	nextAttemptAt time.Time
	trialInFlight bool

	now       func() time.Time
	publisher events.Publisher
	logger    *logger.Logger
}

// BreakerOption customises a [CircuitBreaker].
type BreakerOption func(*CircuitBreaker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) BreakerOption {
	return func(cb *CircuitBreaker) { cb.now = now }
}

// WithPublisher makes the breaker emit [events.BreakerStateChanged].
func WithPublisher(p events.Publisher) BreakerOption {
	return func(cb *CircuitBreaker) { cb.publisher = p }
}

// WithLogger sets the breaker's logger.
func WithLogger(l *logger.Logger) BreakerOption {
	return func(cb *CircuitBreaker) { cb.logger = l.WithComponent("circuit-breaker") }
}

// NewCircuitBreaker returns a closed breaker.
func NewCircuitBreaker(cfg config.Resilience, opts ...BreakerOption) *CircuitBreaker {
	cb := &CircuitBreaker{
		failureThreshold: cfg.FailureThreshold,
		recoveryTimeout:  cfg.RecoveryTimeout,
		state:            models.CircuitClosed,
		now:              time.Now,
		publisher:        events.Discard,
		logger:           logger.Nop(),
	}
	if cb.failureThreshold <= 0 {
		cb.failureThreshold = config.DefaultFailureThreshold
	}
	for _, opt := range opts {
		opt(cb)
	}
	return cb
}

// Execute runs op unless the breaker is open. A rejected call returns
// [ErrCircuitOpen]; otherwise op's own error is returned.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	trial, err := cb.acquire()
	if err != nil {
		return err
	}

	err = op(ctx)
	cb.record(err, trial)
	return err
}

// Call is [CircuitBreaker.Execute] for calls that produce a value.
func Call[T any](ctx context.Context, cb *CircuitBreaker, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := cb.Execute(ctx, func(ctx context.Context) error {
		var err error
		result, err = op(ctx)
		return err
	})
	return result, err
}

func (cb *CircuitBreaker) acquire() (trial bool, err error) {
	cb.mu.Lock()
	var change *events.BreakerChange
	defer func() {
		cb.mu.Unlock()
		cb.emit(change)
	}()

	switch cb.state {
	case models.CircuitOpen:
		if cb.now().Before(cb.nextAttemptAt) {
			return false, ErrCircuitOpen
		}
		change = cb.transitionLocked(models.CircuitHalfOpen)
		cb.trialInFlight = true
		return true, nil
	case models.CircuitHalfOpen:
		if cb.trialInFlight {
			return false, ErrCircuitOpen
		}
		cb.trialInFlight = true
		return true, nil
	default:
		return false, nil
	}
}

func (cb *CircuitBreaker) record(err error, trial bool) {
	cb.mu.Lock()
	var change *events.BreakerChange
	defer func() {
		cb.mu.Unlock()
		cb.emit(change)
	}()

	if trial {
		cb.trialInFlight = false
	}

	if !countsAsFailure(err) {
		cb.failures = 0
		if cb.state != models.CircuitClosed {
			change = cb.transitionLocked(models.CircuitClosed)
		}
		return
	}

	now := cb.now()
	cb.failures++
	cb.lastFailureAt = now

	if cb.state == models.CircuitHalfOpen || cb.failures >= cb.failureThreshold {
		cb.nextAttemptAt = now.Add(cb.recoveryTimeout)
		if cb.state != models.CircuitOpen {
			change = cb.transitionLocked(models.CircuitOpen)
		}
	}
}

// countsAsFailure treats answers that prove the remote is up (conflicts,
// missing records, rejected payloads) as successes, and ignores calls the
// caller abandoned.
func countsAsFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	switch adapter.KindOf(err) {
	case adapter.KindConflict, adapter.KindNotFound, adapter.KindValidation:
		return false
	}
	return true
}

func (cb *CircuitBreaker) transitionLocked(to models.CircuitState) *events.BreakerChange {
	from := cb.state
	cb.state = to
	if from == to {
		return nil
	}
	return &events.BreakerChange{From: from, To: to}
}

func (cb *CircuitBreaker) emit(change *events.BreakerChange) {
	if change == nil {
		return
	}
	cb.logger.Info().Str("func", "CircuitBreaker.emit").
		Str("from", string(change.From)).
		Str("state", string(change.To)).
		Msg("circuit breaker state changed")
	cb.publisher.Publish(events.Event{Kind: events.BreakerStateChanged, Payload: *change})
}

// State returns the current state.
func (cb *CircuitBreaker) State() models.CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Snapshot returns a copy of the breaker state.
func (cb *CircuitBreaker) Snapshot() models.BreakerSnapshot {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return models.BreakerSnapshot{
		State:         cb.state,
		FailureCount:  cb.failures,
		LastFailureAt: cb.lastFailureAt,
		NextAttemptAt: cb.nextAttemptAt,
	}
}

// Reset forces the breaker closed with zero failures.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	cb.failures = 0
	cb.nextAttemptAt = time.Time{}
	cb.trialInFlight = false
	change := cb.transitionLocked(models.CircuitClosed)
	cb.mu.Unlock()

	cb.logger.Info().Str("func", "CircuitBreaker.Reset").Msg("circuit breaker reset by operator")
	cb.emit(change)
}
