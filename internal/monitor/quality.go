// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package monitor tracks the health of the connection to the Remote Data
// Service.
//
// [Monitor] probes the remote on an adaptive timer, classifies each result
// into a [models.ConnectionQuality], keeps rolling [Metrics], drives the
// binary online/offline [Signal] and, when the connection looks
// structurally broken, engages alternate transports. [PrometheusCollector]
// turns bus events into Prometheus metrics.
package monitor

import (
	"time"

	"github.com/MKhiriev/go-offline-sync/models"
)

// Latency thresholds, inclusive.
const (
	ExcellentLatency = 100 * time.Millisecond
	GoodLatency      = 300 * time.Millisecond
	PoorLatency      = 1000 * time.Millisecond
)

const (
	// LatencyWindow is the number of round-trip samples kept.
	LatencyWindow = 10
	// RescheduleThreshold is the minimum interval change that restarts the
	// probe timer.
	RescheduleThreshold = 10 * time.Second

	degradedSuccessRate         = 0.7
	degradedMinAttempts         = 5
	degradedConsecutiveFailures = 3
	recoveryConsecutiveFailures = 5
)

// ClassifyLatency maps a successful probe's round trip to a quality.
func ClassifyLatency(d time.Duration) models.ConnectionQuality {
	switch {
	case d <= ExcellentLatency:
		return models.QualityExcellent
	case d <= GoodLatency:
		return models.QualityGood
	case d <= PoorLatency:
		return models.QualityPoor
	default:
		return models.QualityCritical
	}
}

// PollInterval returns how often to probe at quality q.
func PollInterval(q models.ConnectionQuality) time.Duration {
	switch q {
	case models.QualityExcellent:
		return 120 * time.Second
	case models.QualityGood:
		return 90 * time.Second
	case models.QualityPoor:
		return 60 * time.Second
	case models.QualityCritical:
		return 30 * time.Second
	default:
		return 60 * time.Second
	}
}

// isDegraded reports whether m warrants a connectivity-degraded signal.
func isDegraded(m models.ConnectionMetrics) bool {
	if m.Attempts >= degradedMinAttempts && m.SuccessRate() < degradedSuccessRate {
		return true
	}
	return m.ConsecutiveFailures > degradedConsecutiveFailures
}

func needsRecovery(m models.ConnectionMetrics) bool {
	return m.Quality == models.QualityCritical && m.ConsecutiveFailures > recoveryConsecutiveFailures
}
