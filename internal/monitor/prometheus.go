package monitor

import (
	"context"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "offline_sync"

// BreakerState exposes the breaker snapshot.
type BreakerState interface {
	Snapshot() models.BreakerSnapshot
}

// QueueCounter reports the number of pending operations.
type QueueCounter interface {
	Len(ctx context.Context) (int, error)
}

var (
	qualities     = []models.ConnectionQuality{models.QualityExcellent, models.QualityGood, models.QualityPoor, models.QualityCritical, models.QualityUnknown}
	circuitStates = []models.CircuitState{models.CircuitClosed, models.CircuitOpen, models.CircuitHalfOpen}
)

// PrometheusCollector exports engine state. Gauges are read from the live
// components at scrape time; counters are fed from the event bus.
type PrometheusCollector struct {
	metrics *Metrics
	breaker BreakerState
	signal  *Signal
	queue   QueueCounter
	logger  *logger.Logger

	qualityDesc      *prometheus.Desc
	latencyDesc      *prometheus.Desc
	attemptsDesc     *prometheus.Desc
	consecutiveDesc  *prometheus.Desc
	onlineDesc       *prometheus.Desc
	breakerStateDesc *prometheus.Desc
	queueLengthDesc  *prometheus.Desc

	dropped   prometheus.Counter
	conflicts *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	recovery  *prometheus.CounterVec
	drains    prometheus.Counter
	breakerTx *prometheus.CounterVec
}

// NewPrometheusCollector builds a collector. Any source may be nil; its
// metrics are then omitted.
func NewPrometheusCollector(metrics *Metrics, breaker BreakerState, signal *Signal, queue QueueCounter, log *logger.Logger) *PrometheusCollector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(metricsNamespace, "", name), help, labels, nil)
	}

	return &PrometheusCollector{
		metrics: metrics,
		breaker: breaker,
		signal:  signal,
		queue:   queue,
		logger:  log.WithComponent("prometheus"),

		qualityDesc:      desc("connection_quality", "Current connection quality; 1 for the active class.", "quality"),
		latencyDesc:      desc("probe_latency_average_seconds", "Average probe round trip over the rolling window."),
		attemptsDesc:     desc("probe_attempts_total", "Probes performed.", "result"),
		consecutiveDesc:  desc("probe_consecutive_failures", "Failed probes since the last success."),
		onlineDesc:       desc("online", "1 when the connectivity signal is online."),
		breakerStateDesc: desc("circuit_breaker_state", "Current breaker state; 1 for the active state.", "state"),
		queueLengthDesc:  desc("sync_queue_length", "Operations waiting for replay."),

		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace, Name: "operations_dropped_total",
			Help: "Queued operations moved to the dead-letter table after exhausting replays.",
		}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Name: "conflicts_total",
			Help: "Replay conflicts by outcome.",
		}, []string{"event"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Name: "protocol_fallbacks_total",
			Help: "Protocol fallbacks triggered by the health monitor.",
		}, []string{"reason"}),
		recovery: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Name: "recovery_attempts_total",
			Help: "Alternate transport attempts.",
		}, []string{"transport", "result"}),
		drains: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace, Name: "sync_queue_drains_total",
			Help: "Completed drain passes.",
		}),
		breakerTx: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Name: "circuit_breaker_transitions_total",
			Help: "Breaker state transitions by target state.",
		}, []string{"state"}),
	}
}

// Subscribe feeds the event counters from bus and returns the unsubscribe
// function.
func (c *PrometheusCollector) Subscribe(bus *events.Bus) func() {
	return bus.Subscribe(c.observe,
		events.OperationDropped,
		events.ConflictDetected,
		events.ManualConflictPending,
		events.ConflictResolved,
		events.FallbackTriggered,
		events.RecoveryAttempted,
		events.SyncQueueDrained,
		events.BreakerStateChanged,
	)
}

func (c *PrometheusCollector) observe(e events.Event) {
	switch e.Kind {
	case events.OperationDropped:
		c.dropped.Inc()
	case events.ConflictDetected, events.ManualConflictPending, events.ConflictResolved:
		c.conflicts.WithLabelValues(string(e.Kind)).Inc()
	case events.FallbackTriggered:
		reason := "unknown"
		if p, ok := e.Payload.(events.Fallback); ok {
			reason = p.Reason
		}
		c.fallbacks.WithLabelValues(reason).Inc()
	case events.RecoveryAttempted:
		if p, ok := e.Payload.(events.Recovery); ok {
			result := "failure"
			if p.Success {
				result = "success"
			}
			c.recovery.WithLabelValues(p.Transport, result).Inc()
		}
	case events.SyncQueueDrained:
		c.drains.Inc()
	case events.BreakerStateChanged:
		if p, ok := e.Payload.(events.BreakerChange); ok {
			c.breakerTx.WithLabelValues(string(p.To)).Inc()
		}
	}
}

// Describe implements [prometheus.Collector].
func (c *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.qualityDesc
	ch <- c.latencyDesc
	ch <- c.attemptsDesc
	ch <- c.consecutiveDesc
	ch <- c.onlineDesc
	ch <- c.breakerStateDesc
	ch <- c.queueLengthDesc
	c.dropped.Describe(ch)
	c.conflicts.Describe(ch)
	c.fallbacks.Describe(ch)
	c.recovery.Describe(ch)
	c.drains.Describe(ch)
	c.breakerTx.Describe(ch)
}

// Collect implements [prometheus.Collector].
func (c *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	if c.metrics != nil {
		m := c.metrics.Snapshot()
		for _, q := range qualities {
			ch <- prometheus.MustNewConstMetric(c.qualityDesc, prometheus.GaugeValue, boolToFloat(m.Quality == q), string(q))
		}
		ch <- prometheus.MustNewConstMetric(c.latencyDesc, prometheus.GaugeValue, m.AverageLatency.Seconds())
		ch <- prometheus.MustNewConstMetric(c.attemptsDesc, prometheus.CounterValue, float64(m.Successes), "success")
		ch <- prometheus.MustNewConstMetric(c.attemptsDesc, prometheus.CounterValue, float64(m.Failures), "failure")
		ch <- prometheus.MustNewConstMetric(c.consecutiveDesc, prometheus.GaugeValue, float64(m.ConsecutiveFailures))
	}
	if c.signal != nil {
		ch <- prometheus.MustNewConstMetric(c.onlineDesc, prometheus.GaugeValue, boolToFloat(c.signal.IsOnline()))
	}
	if c.breaker != nil {
		state := c.breaker.Snapshot().State
		for _, s := range circuitStates {
			ch <- prometheus.MustNewConstMetric(c.breakerStateDesc, prometheus.GaugeValue, boolToFloat(state == s), string(s))
		}
	}
	if c.queue != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		n, err := c.queue.Len(ctx)
		cancel()
		if err != nil {
			c.logger.Warn().Str("func", "PrometheusCollector.Collect").Err(err).Msg("queue length unavailable")
		} else {
			ch <- prometheus.MustNewConstMetric(c.queueLengthDesc, prometheus.GaugeValue, float64(n))
		}
	}

	c.dropped.Collect(ch)
	c.conflicts.Collect(ch)
	c.fallbacks.Collect(ch)
	c.recovery.Collect(ch)
	c.drains.Collect(ch)
	c.breakerTx.Collect(ch)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
