package monitor

import (
	"sync"
	"time"

	"github.com/MKhiriev/go-offline-sync/models"
)

// Metrics is the mutable connection state owned by a [Monitor]. Others read
// it through Snapshot.
type Metrics struct {
	mu sync.RWMutex
	m  models.ConnectionMetrics
}

// NewMetrics returns metrics in the neutral start state: quality unknown and
// the matching poll interval.
func NewMetrics() *Metrics {
	return &Metrics{m: models.ConnectionMetrics{
		Quality:      models.QualityUnknown,
		PollInterval: PollInterval(models.QualityUnknown),
		Latencies:    make([]time.Duration, 0, LatencyWindow),
	}}
}

// RecordSuccess registers a successful probe and returns the state before
// and after it.
func (m *Metrics) RecordSuccess(latency time.Duration, at time.Time) (before, after models.ConnectionMetrics) {
	m.mu.Lock()
	defer m.mu.Unlock()

	before = m.snapshotLocked()

	m.m.Attempts++
	m.m.Successes++
	m.m.ConsecutiveFailures = 0
	m.m.Quality = ClassifyLatency(latency)
	m.m.LastProbeAt = at
	m.m.LastError = ""

	if len(m.m.Latencies) == LatencyWindow {
		copy(m.m.Latencies, m.m.Latencies[1:])
		m.m.Latencies = m.m.Latencies[:LatencyWindow-1]
	}
	m.m.Latencies = append(m.m.Latencies, latency)

	var total time.Duration
	for _, l := range m.m.Latencies {
		total += l
	}
	m.m.AverageLatency = total / time.Duration(len(m.m.Latencies))

	return before, m.snapshotLocked()
}

// RecordFailure registers a failed probe and returns the state before and
// after it.
func (m *Metrics) RecordFailure(err error, at time.Time) (before, after models.ConnectionMetrics) {
	m.mu.Lock()
	defer m.mu.Unlock()

	before = m.snapshotLocked()

	m.m.Attempts++
	m.m.Failures++
	m.m.ConsecutiveFailures++
	m.m.Quality = models.QualityCritical
	m.m.LastProbeAt = at
	if err != nil {
		m.m.LastError = err.Error()
	}

	return before, m.snapshotLocked()
}

// SetPollInterval stores the interval the monitor now probes at.
func (m *Metrics) SetPollInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.m.PollInterval = d
}

// Snapshot returns a copy that is safe to keep.
func (m *Metrics) Snapshot() models.ConnectionMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Metrics) snapshotLocked() models.ConnectionMetrics {
	out := m.m
	out.Latencies = append([]time.Duration(nil), m.m.Latencies...)
	return out
}
