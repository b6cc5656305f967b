package status

import (
	"context"

	"github.com/MKhiriev/go-offline-sync/internal/conflict"
	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/models"
)

// Monitor is the health monitor as seen by operators.
type Monitor interface {
	Metrics() models.ConnectionMetrics
	ProbeNow(ctx context.Context) (models.ConnectionMetrics, error)
}

// Breaker exposes the circuit breaker state and its manual reset.
type Breaker interface {
	Snapshot() models.BreakerSnapshot
	Reset()
}

// Connectivity reports the binary online flag.
type Connectivity interface {
	IsOnline() bool
}

// QueueCounter reports the sync queue depth.
type QueueCounter interface {
	Len(ctx context.Context) (int, error)
}

// ConflictResolver lists and resolves conflicts awaiting an operator.
type ConflictResolver interface {
	Pending(ctx context.Context) ([]models.ConflictRecord, error)
	ResolveManually(ctx context.Context, conflictID string, chosen models.Record) (models.ConflictRecord, error)
	Strategies() *conflict.StrategyTable
}

// Syncer drains the sync queue on demand.
type Syncer interface {
	Drain(ctx context.Context) (events.DrainSummary, error)
	DeadLetters(ctx context.Context) ([]models.DeadLetter, error)
}

// EventSource delivers engine events to subscribers.
type EventSource interface {
	Subscribe(handler events.Handler, kinds ...events.Kind) (unsubscribe func())
}
