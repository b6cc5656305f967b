package service

import (
	"context"

	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_service_mock.go -package=mock

// OfflineRepository is the application-facing data API. Reads fall back to
// the local cache and writes fall back to the sync queue, so callers always
// get a result while the remote service is unreachable.
type OfflineRepository interface {
	// List returns the collection from the remote service when online and
	// refreshes the cache with it. Any failure returns the cached records,
	// which may be empty or stale.
	List(ctx context.Context, collection string, opts models.QueryOptions) ([]models.Record, error)

	// GetOne mirrors List for a single record.
	GetOne(ctx context.Context, collection, id string) (models.Record, error)

	// Create sends data to the remote service. When that fails the operation is
	// queued and an optimistic record with a temporary id and the pendingSync
	// marker is returned.
	Create(ctx context.Context, collection string, data models.Record) (models.Record, error)

	// Update replaces the record with the cached record overlaid by data.
	// The optimistic result holds data, the id and the pendingSync marker.
	Update(ctx context.Context, collection, id string, data models.Record) (models.Record, error)

	// Delete removes the record. The optimistic result holds the id and the
	// pendingSync marker.
	Delete(ctx context.Context, collection, id string) (models.Record, error)
}

// SyncService replays the sync queue against the remote service.
type SyncService interface {
	// Drain replays every queued operation in order, one at a time. A drain
	// started while another is running returns ErrDrainInProgress at once.
	Drain(ctx context.Context) (events.DrainSummary, error)

	// DeadLetters lists operations dropped after exhausting their retries.
	DeadLetters(ctx context.Context) ([]models.DeadLetter, error)
}

// SyncJob runs drains in the background: on every online transition and
// periodically while the connection is up.
type SyncJob interface {
	// Start launches the job goroutine. Any previously running job is stopped
	// first.
	Start(ctx context.Context)

	// Run blocks running the job until ctx is cancelled.
	Run(ctx context.Context) error

	// Trigger requests a drain without waiting for it. Triggers arriving while
	// a drain is pending collapse into one.
	Trigger()

	// Stop cancels the goroutine started by Start and waits for it to exit.
	Stop()
}
