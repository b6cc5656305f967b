// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package events is the typed publish/subscribe channel through which the
// sync engine reports state changes to status indicators and operator
// tooling.
//
// A [Bus] is an explicit object: the application constructs one and hands it
// to every component that emits or listens. Delivery is synchronous and in
// publish order, so handlers must return quickly and never block; a handler
// that needs to do I/O should forward the event to its own goroutine.
package events

import (
	"time"

	"github.com/MKhiriev/go-offline-sync/models"
)

// Kind names an event type.
type Kind string

const (
	QualityChanged        Kind = "quality-changed"
	ConnectivityDegraded  Kind = "connectivity-degraded"
	Online                Kind = "online"
	Offline               Kind = "offline"
	BreakerStateChanged   Kind = "breaker-state-changed"
	ConflictDetected      Kind = "conflict-detected"
	ManualConflictPending Kind = "manual-conflict-pending"
	ConflictResolved      Kind = "conflict-resolved"
	SyncQueueDrained      Kind = "sync-queue-drained"
	OperationDropped      Kind = "operation-dropped"
	FallbackTriggered     Kind = "protocol-fallback-triggered"
	RecoveryAttempted     Kind = "recovery-attempted"
)

// Event is a single notification. Payload holds one of the payload types
// declared in this package, matching Kind.
type Event struct {
	Kind    Kind      `json:"kind"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload,omitempty"`
}

// Handler receives events. It runs on the publisher's goroutine.
type Handler func(Event)

// Publisher is the emitting half of a [Bus].
type Publisher interface {
	Publish(e Event)
}

// QualityChange is the payload of [QualityChanged].
type QualityChange struct {
	From    models.ConnectionQuality `json:"from"`
	To      models.ConnectionQuality `json:"to"`
	Metrics models.ConnectionMetrics `json:"metrics"`
}

// Degradation is the payload of [ConnectivityDegraded].
type Degradation struct {
	SuccessRate         float64 `json:"successRate"`
	ConsecutiveFailures int     `json:"consecutiveFailures"`
}

// BreakerChange is the payload of [BreakerStateChanged].
type BreakerChange struct {
	From models.CircuitState `json:"from"`
	To   models.CircuitState `json:"to"`
}

// ConflictNotice is the payload of [ConflictDetected],
// [ManualConflictPending] and [ConflictResolved].
type ConflictNotice struct {
	Conflict models.ConflictRecord `json:"conflict"`
}

// DrainSummary is the payload of [SyncQueueDrained].
type DrainSummary struct {
	Replayed  int `json:"replayed"`
	Failed    int `json:"failed"`
	Dropped   int `json:"dropped"`
	Conflicts int `json:"conflicts"`
	Remaining int `json:"remaining"`
}

// Drop is the payload of [OperationDropped].
type Drop struct {
	Operation models.QueuedOperation `json:"operation"`
	LastError string                 `json:"lastError"`
}

// Fallback is the payload of [FallbackTriggered].
type Fallback struct {
	Reason string `json:"reason"`
	Error  string `json:"error,omitempty"`
}

// Recovery is the payload of [RecoveryAttempted].
type Recovery struct {
	Transport string `json:"transport"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}
