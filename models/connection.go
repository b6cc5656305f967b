// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// ConnectionQuality is a coarse classification of connection health.
type ConnectionQuality string

const (
	QualityExcellent ConnectionQuality = "excellent"
	QualityGood      ConnectionQuality = "good"
	QualityPoor      ConnectionQuality = "poor"
	QualityCritical  ConnectionQuality = "critical"
	QualityUnknown   ConnectionQuality = "unknown"
)

// ConnectionMetrics is a point-in-time copy of the health monitor state.
type ConnectionMetrics struct {
	Attempts            int               `json:"attempts"`
	Successes           int               `json:"successes"`
	Failures            int               `json:"failures"`
	ConsecutiveFailures int               `json:"consecutiveFailures"`
	Latencies           []time.Duration   `json:"latencies"`
	AverageLatency      time.Duration     `json:"averageLatency"`
	Quality             ConnectionQuality `json:"quality"`
	PollInterval        time.Duration     `json:"pollInterval"`
	LastProbeAt         time.Time         `json:"lastProbeAt,omitzero"`
	LastError           string            `json:"lastError,omitempty"`
}

// SuccessRate returns successes/attempts, or 1 when nothing was attempted.
func (m ConnectionMetrics) SuccessRate() float64 {
	if m.Attempts == 0 {
		return 1
	}
	return float64(m.Successes) / float64(m.Attempts)
}

// CircuitState is the state of the circuit breaker.
type CircuitState string

const (
	CircuitClosed   CircuitState = "closed"
	CircuitOpen     CircuitState = "open"
	CircuitHalfOpen CircuitState = "half-open"
)

// BreakerSnapshot is a point-in-time copy of the circuit breaker state.
type BreakerSnapshot struct {
	State         CircuitState `json:"state"`
	FailureCount  int          `json:"failureCount"`
	LastFailureAt time.Time    `json:"lastFailureAt,omitzero"`
	NextAttemptAt time.Time    `json:"nextAttemptAt,omitzero"`
}
