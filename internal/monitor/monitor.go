package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/adapter"
	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
)

// ErrProbeInProgress is returned by ProbeNow while another probe runs.
var ErrProbeInProgress = errors.New("probe already in progress")

// Prober performs the lightweight reachability check.
type Prober interface {
	Probe(ctx context.Context) (time.Duration, error)
}

// Breaker guards the probe call.
type Breaker interface {
	Execute(ctx context.Context, op func(ctx context.Context) error) error
}

// Monitor periodically probes the Remote Data Service.
type Monitor struct {
	prober    Prober
	breaker   Breaker
	metrics   *Metrics
	signal    *Signal
	fallbacks []adapter.FallbackTransport
	publisher events.Publisher
	logger    *logger.Logger

	probeTimeout         time.Duration
	offlineAfterFailures int

	now                 func() time.Time
	intervalFor         func(models.ConnectionQuality) time.Duration
	rescheduleThreshold time.Duration

	probing    atomic.Bool
	reschedule chan time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMonitor wires a monitor. breaker may be nil, in which case probes are
// not guarded.
func NewMonitor(
	cfg config.Monitor,
	prober Prober,
	breaker Breaker,
	metrics *Metrics,
	signal *Signal,
	publisher events.Publisher,
	log *logger.Logger,
	fallbacks ...adapter.FallbackTransport,
) *Monitor {
	if publisher == nil {
		publisher = events.Discard
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = config.DefaultProbeTimeout
	}
	if cfg.OfflineAfterFailures <= 0 {
		cfg.OfflineAfterFailures = config.DefaultOfflineAfterFailures
	}

	return &Monitor{
		prober:               prober,
		breaker:              breaker,
		metrics:              metrics,
		signal:               signal,
		fallbacks:            fallbacks,
		publisher:            publisher,
		logger:               log.WithComponent("health-monitor"),
		probeTimeout:         cfg.ProbeTimeout,
		offlineAfterFailures: cfg.OfflineAfterFailures,
		now:                  time.Now,
		intervalFor:          PollInterval,
		rescheduleThreshold:  RescheduleThreshold,
		reschedule:           make(chan time.Duration, 1),
	}
}

// Metrics returns a snapshot of the connection metrics.
func (m *Monitor) Metrics() models.ConnectionMetrics {
	return m.metrics.Snapshot()
}

// Start probes once immediately and then on the adaptive timer until ctx is
// cancelled or Stop is called. A running monitor is restarted.
func (m *Monitor) Start(ctx context.Context) {
	m.Stop()

	m.mu.Lock()
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	go m.loop(runCtx)
}

// Stop cancels the probe loop and waits for it to exit. It is a no-op when
// the monitor is not running.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

// Run implements the workers contract: it starts the monitor and blocks until
// ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	m.Start(ctx)
	<-ctx.Done()
	m.Stop()
	return nil
}

func (m *Monitor) loop(ctx context.Context) {
	defer m.wg.Done()

	m.tick(ctx)

	timer := time.NewTimer(m.metrics.Snapshot().PollInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case d := <-m.reschedule:
			timer.Reset(d)
		case <-timer.C:
			m.tick(ctx)
			timer.Reset(m.metrics.Snapshot().PollInterval)
		}
	}
}

func (m *Monitor) tick(ctx context.Context) {
	_, err := m.ProbeNow(ctx)
	if errors.Is(err, ErrProbeInProgress) {
		m.logger.Debug().Str("func", "Monitor.tick").Msg("probe skipped, previous one still running")
	}
}

// ProbeNow runs one probe and returns the resulting metrics together with the
// probe error, if any. It returns [ErrProbeInProgress] without probing when a
// probe is already running.
func (m *Monitor) ProbeNow(ctx context.Context) (models.ConnectionMetrics, error) {
	if !m.probing.CompareAndSwap(false, true) {
		return m.metrics.Snapshot(), ErrProbeInProgress
	}
	defer m.probing.Store(false)

	latency, err := m.probe(ctx)

	var before, after models.ConnectionMetrics
	if err != nil {
		before, after = m.metrics.RecordFailure(err, m.now())
	} else {
		before, after = m.metrics.RecordSuccess(latency, m.now())
	}

	log := m.logger.With().Str("func", "Monitor.ProbeNow").
		Str("quality", string(after.Quality)).
		Dur("latency", latency).
		Int("consecutive_failures", after.ConsecutiveFailures).
		Logger()
	if err != nil {
		log.Warn().Err(err).Msg("probe failed")
	} else {
		log.Debug().Msg("probe succeeded")
	}

	if before.Quality != after.Quality {
		m.publisher.Publish(events.Event{Kind: events.QualityChanged, Payload: events.QualityChange{
			From: before.Quality, To: after.Quality, Metrics: after,
		}})
	}

	m.adaptInterval(after)
	m.updateSignal(err, after)

	if isDegraded(after) {
		m.publisher.Publish(events.Event{Kind: events.ConnectivityDegraded, Payload: events.Degradation{
			SuccessRate:         after.SuccessRate(),
			ConsecutiveFailures: after.ConsecutiveFailures,
		}})
	}

	switch {
	case err != nil && adapter.KindOf(err) == adapter.KindTransportSecurity:
		m.fallback(ctx, "transport-security", err)
	case needsRecovery(after):
		m.fallback(ctx, "consecutive-failures", err)
	}

	return m.metrics.Snapshot(), err
}

func (m *Monitor) probe(ctx context.Context) (time.Duration, error) {
	probeCtx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	defer cancel()

	var latency time.Duration
	call := func(ctx context.Context) error {
		var err error
		latency, err = m.prober.Probe(ctx)
		return err
	}

	if m.breaker == nil {
		return latency, call(probeCtx)
	}
	err := m.breaker.Execute(probeCtx, call)
	return latency, err
}

func (m *Monitor) adaptInterval(after models.ConnectionMetrics) {
	next := m.intervalFor(after.Quality)
	delta := next - after.PollInterval
	if delta < 0 {
		delta = -delta
	}
	if delta <= m.rescheduleThreshold {
		return
	}

	m.metrics.SetPollInterval(next)
	m.logger.Info().Str("func", "Monitor.adaptInterval").
		Str("quality", string(after.Quality)).
		Dur("from", after.PollInterval).
		Dur("to", next).
		Msg("probe interval rescheduled")

	select {
	case <-m.reschedule:
	default:
	}
	m.reschedule <- next
}

func (m *Monitor) updateSignal(err error, after models.ConnectionMetrics) {
	if m.signal == nil {
		return
	}
	if err == nil {
		m.signal.SetOnline(true)
		return
	}
	if after.ConsecutiveFailures >= m.offlineAfterFailures {
		m.signal.SetOnline(false)
	}
}

// fallback announces a protocol fallback and tries each alternate transport
// until one engages.
func (m *Monitor) fallback(ctx context.Context, reason string, cause error) {
	payload := events.Fallback{Reason: reason}
	if cause != nil {
		payload.Error = cause.Error()
	}
	m.publisher.Publish(events.Event{Kind: events.FallbackTriggered, Payload: payload})

	for _, transport := range m.fallbacks {
		engageCtx, cancel := context.WithTimeout(ctx, m.probeTimeout)
		err := transport.Engage(engageCtx)
		cancel()

		recovery := events.Recovery{Transport: transport.Name(), Success: err == nil}
		if err != nil {
			recovery.Error = err.Error()
		}
		m.publisher.Publish(events.Event{Kind: events.RecoveryAttempted, Payload: recovery})

		log := m.logger.With().Str("func", "Monitor.fallback").
			Str("transport", transport.Name()).
			Str("reason", reason).
			Logger()
		if err != nil {
			log.Warn().Err(err).Msg("fallback transport failed")
			continue
		}
		log.Info().Msg("fallback transport engaged")
		return
	}
}
