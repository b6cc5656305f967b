package resilience

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/adapter"
	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("flaky")

func fastPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{MaxRetries: maxRetries, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, BackoffFactor: 2}
}

func TestRetryPolicy_Delay(t *testing.T) {
	p := RetryPolicy{BaseDelay: 500 * time.Millisecond, MaxDelay: 30 * time.Second, BackoffFactor: 2}

	assert.Equal(t, 500*time.Millisecond, p.Delay(0))
	assert.Equal(t, time.Second, p.Delay(1))
	assert.Equal(t, 2*time.Second, p.Delay(2))
	assert.Equal(t, 30*time.Second, p.Delay(10), "capped at MaxDelay")
}

func TestRetryPolicy_DelayJitterBounds(t *testing.T) {
	p := RetryPolicy{BaseDelay: time.Second, MaxDelay: time.Minute, BackoffFactor: 2, Jitter: true}

	p.random = func() float64 { return 0 }
	assert.Equal(t, 500*time.Millisecond, p.Delay(0))

	p.random = func() float64 { return 0.999999 }
	assert.InDelta(t, float64(time.Second), float64(p.Delay(0)), float64(time.Millisecond))

	p.random = nil
	for i := 0; i < 50; i++ {
		d := p.Delay(1)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 2*time.Second)
	}
}

func TestNewRetryPolicy(t *testing.T) {
	p := NewRetryPolicy(config.Resilience{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: time.Minute, BackoffFactor: 1.5})
	assert.Equal(t, 3, p.MaxRetries)
	assert.True(t, p.Jitter)

	p = NewRetryPolicy(config.Resilience{DisableJitter: true})
	assert.False(t, p.Jitter)
}

func TestRunWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := RunWithRetry(context.Background(), fastPolicy(3), func(context.Context) error {
		calls++
		if calls < 3 {
			return errFlaky
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRunWithRetry_GivesUpWithLastError(t *testing.T) {
	calls := 0
	err := RunWithRetry(context.Background(), fastPolicy(2), func(context.Context) error {
		calls++
		return errFlaky
	})

	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 3, calls, "one attempt plus two retries")
}

func TestRunWithRetry_AuthErrorsPropagateImmediately(t *testing.T) {
	authErr := &adapter.RemoteError{Kind: adapter.KindAuth, StatusCode: http.StatusUnauthorized, Op: "list", Err: adapter.ErrUnauthorized}
	calls := 0
	err := RunWithRetry(context.Background(), fastPolicy(5), func(context.Context) error {
		calls++
		return authErr
	})

	assert.ErrorIs(t, err, adapter.ErrUnauthorized)
	assert.Equal(t, 1, calls)
}

func TestRunWithRetry_CustomRetryIf(t *testing.T) {
	calls := 0
	p := fastPolicy(5).WithRetryIf(func(err error) bool { return !errors.Is(err, errFlaky) })
	err := RunWithRetry(context.Background(), p, func(context.Context) error {
		calls++
		return errFlaky
	})

	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 1, calls)
}

func TestRunWithRetry_WaitIsCancellable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := RetryPolicy{MaxRetries: 5, BaseDelay: time.Hour, MaxDelay: time.Hour, BackoffFactor: 2}

	done := make(chan error, 1)
	go func() {
		done <- RunWithRetry(ctx, p, func(context.Context) error { return errFlaky })
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("retry wait did not observe cancellation")
	}
}

func TestRetryResult(t *testing.T) {
	calls := 0
	got, err := RetryResult(context.Background(), fastPolicy(2), func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errFlaky
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestDefaultRetryIf(t *testing.T) {
	assert.True(t, DefaultRetryIf(errFlaky))
	assert.False(t, DefaultRetryIf(context.Canceled))
	assert.False(t, DefaultRetryIf(&adapter.RemoteError{Kind: adapter.KindAuth, Err: adapter.ErrForbidden}))
	assert.True(t, DefaultRetryIf(&adapter.RemoteError{Kind: adapter.KindTransient, Err: adapter.ErrServerError}))
}
