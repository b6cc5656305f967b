package monitor

import (
	"context"
	"crypto/x509"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/adapter"
	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/resilience"
	"github.com/MKhiriev/go-offline-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probeResult struct {
	latency time.Duration
	err     error
}

type scriptedProber struct {
	mu      sync.Mutex
	results []probeResult
	calls   int
}

func (p *scriptedProber) Probe(ctx context.Context) (time.Duration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if len(p.results) == 0 {
		return 20 * time.Millisecond, nil
	}
	r := p.results[0]
	if len(p.results) > 1 {
		p.results = p.results[1:]
	}
	return r.latency, r.err
}

func (p *scriptedProber) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type stubFallback struct {
	name  string
	err   error
	calls atomic.Int32
}

func (f *stubFallback) Name() string { return f.name }

func (f *stubFallback) Engage(context.Context) error {
	f.calls.Add(1)
	return f.err
}

var errTimeout = &adapter.RemoteError{Kind: adapter.KindTransient, Op: "probe", Err: context.DeadlineExceeded}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) kinds() []events.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Kind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

func (r *recorder) count(k events.Kind) int {
	n := 0
	for _, got := range r.kinds() {
		if got == k {
			n++
		}
	}
	return n
}

func newTestMonitor(prober Prober, fallbacks ...adapter.FallbackTransport) (*Monitor, *Signal, *recorder) {
	bus := events.NewBus()
	rec := &recorder{}
	bus.Subscribe(rec.handle)

	signal := NewSignal(true, bus)
	m := NewMonitor(config.Monitor{ProbeTimeout: time.Second, OfflineAfterFailures: 2},
		prober, nil, NewMetrics(), signal, bus, logger.Nop(), fallbacks...)
	return m, signal, rec
}

func TestMonitor_ProbeNowClassifiesAndReschedules(t *testing.T) {
	prober := &scriptedProber{results: []probeResult{{latency: 50 * time.Millisecond}}}
	m, _, rec := newTestMonitor(prober)

	got, err := m.ProbeNow(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.QualityExcellent, got.Quality)
	assert.Equal(t, 120*time.Second, got.PollInterval)
	assert.Equal(t, []time.Duration{50 * time.Millisecond}, got.Latencies)
	assert.Contains(t, rec.kinds(), events.QualityChanged)

	select {
	case d := <-m.reschedule:
		assert.Equal(t, 120*time.Second, d)
	default:
		t.Fatal("interval change must request a reschedule")
	}
}

func TestMonitor_SmallIntervalChangeKeepsTimer(t *testing.T) {
	prober := &scriptedProber{results: []probeResult{{latency: 800 * time.Millisecond}}}
	m, _, _ := newTestMonitor(prober)

	got, err := m.ProbeNow(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.QualityPoor, got.Quality)
	assert.Equal(t, 60*time.Second, got.PollInterval)
	assert.Empty(t, m.reschedule)
}

func TestMonitor_FailuresDriveSignalAndDegradation(t *testing.T) {
	prober := &scriptedProber{results: []probeResult{{err: errTimeout}}}
	m, signal, rec := newTestMonitor(prober)
	ctx := context.Background()

	_, err := m.ProbeNow(ctx)
	require.Error(t, err)
	assert.True(t, signal.IsOnline(), "one failure is not enough to go offline")

	_, _ = m.ProbeNow(ctx)
	assert.False(t, signal.IsOnline())
	assert.Zero(t, rec.count(events.ConnectivityDegraded))

	_, _ = m.ProbeNow(ctx)
	_, _ = m.ProbeNow(ctx)
	assert.Equal(t, 1, rec.count(events.ConnectivityDegraded), "consecutive failures > 3")

	snap := m.Metrics()
	assert.Equal(t, models.QualityCritical, snap.Quality)
	assert.Equal(t, 30*time.Second, snap.PollInterval)
	assert.Equal(t, 4, snap.ConsecutiveFailures)
}

func TestMonitor_RecoveryAfterSixCriticalFailures(t *testing.T) {
	prober := &scriptedProber{results: []probeResult{{err: errTimeout}}}
	broken := &stubFallback{name: "http-downgrade", err: adapter.ErrNoDowngrade}
	grpcHealth := &stubFallback{name: "grpc-health"}
	m, _, rec := newTestMonitor(prober, broken, grpcHealth)

	for i := 0; i < 5; i++ {
		_, _ = m.ProbeNow(context.Background())
	}
	assert.Zero(t, broken.calls.Load())

	_, _ = m.ProbeNow(context.Background())
	assert.Equal(t, int32(1), broken.calls.Load())
	assert.Equal(t, int32(1), grpcHealth.calls.Load())
	assert.Equal(t, 1, rec.count(events.FallbackTriggered))
	assert.Equal(t, 2, rec.count(events.RecoveryAttempted))

	var recoveries []events.Recovery
	for _, e := range rec.events {
		if r, ok := e.Payload.(events.Recovery); ok {
			recoveries = append(recoveries, r)
		}
	}
	assert.False(t, recoveries[0].Success)
	assert.True(t, recoveries[1].Success)
}

func TestMonitor_TransportSecurityErrorFallsBackImmediately(t *testing.T) {
	tlsErr := &adapter.RemoteError{Kind: adapter.KindTransportSecurity, Op: "probe", Err: x509.UnknownAuthorityError{}}
	prober := &scriptedProber{results: []probeResult{{err: tlsErr}}}
	fb := &stubFallback{name: "http-downgrade"}
	m, _, rec := newTestMonitor(prober, fb)

	_, err := m.ProbeNow(context.Background())

	require.Error(t, err)
	assert.Equal(t, int32(1), fb.calls.Load())
	require.Equal(t, 1, rec.count(events.FallbackTriggered))
	for _, e := range rec.events {
		if p, ok := e.Payload.(events.Fallback); ok {
			assert.Equal(t, "transport-security", p.Reason)
		}
	}
}

func TestMonitor_SuccessRestoresOnline(t *testing.T) {
	prober := &scriptedProber{results: []probeResult{{err: errTimeout}, {err: errTimeout}, {latency: 10 * time.Millisecond}}}
	m, signal, rec := newTestMonitor(prober)

	for i := 0; i < 3; i++ {
		_, _ = m.ProbeNow(context.Background())
	}

	assert.True(t, signal.IsOnline())
	assert.Equal(t, 1, rec.count(events.Offline))
	assert.Equal(t, 1, rec.count(events.Online))
}

type blockingProber struct {
	entered chan struct{}
	release chan struct{}
}

func (p *blockingProber) Probe(ctx context.Context) (time.Duration, error) {
	close(p.entered)
	<-p.release
	return time.Millisecond, nil
}

func TestMonitor_OverlappingProbesAreSkipped(t *testing.T) {
	prober := &blockingProber{entered: make(chan struct{}), release: make(chan struct{})}
	m, _, _ := newTestMonitor(prober)

	done := make(chan struct{})
	go func() {
		_, _ = m.ProbeNow(context.Background())
		close(done)
	}()
	<-prober.entered

	_, err := m.ProbeNow(context.Background())
	assert.ErrorIs(t, err, ErrProbeInProgress)

	close(prober.release)
	<-done
	assert.Equal(t, 1, m.Metrics().Attempts)
}

func TestMonitor_ProbeGoesThroughBreaker(t *testing.T) {
	prober := &scriptedProber{results: []probeResult{{err: errTimeout}}}
	breaker := resilience.NewCircuitBreaker(config.Resilience{FailureThreshold: 2, RecoveryTimeout: time.Hour})
	m := NewMonitor(config.Monitor{}, prober, breaker, NewMetrics(), nil, nil, logger.Nop())

	for i := 0; i < 3; i++ {
		_, _ = m.ProbeNow(context.Background())
	}

	assert.Equal(t, 2, prober.Calls(), "open breaker short-circuits the third probe")
	_, err := m.ProbeNow(context.Background())
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, 4, m.Metrics().Failures)
}

func TestMonitor_StartProbesAndReschedules(t *testing.T) {
	prober := &scriptedProber{results: []probeResult{{latency: time.Millisecond}}}
	m, _, _ := newTestMonitor(prober)
	m.intervalFor = func(models.ConnectionQuality) time.Duration { return 5 * time.Millisecond }
	m.rescheduleThreshold = 0

	m.Start(context.Background())
	require.Eventually(t, func() bool { return prober.Calls() >= 3 }, time.Second, time.Millisecond)
	m.Stop()

	calls := prober.Calls()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, prober.Calls(), "no probes after Stop")
	assert.Equal(t, 5*time.Millisecond, m.Metrics().PollInterval)
}

func TestMonitor_RunStopsWithContext(t *testing.T) {
	m, _, _ := newTestMonitor(&scriptedProber{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
