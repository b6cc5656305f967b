package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-offline-sync/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_store_mock.go -package=mock

// LocalStore is the durable per-collection record cache. Reads of an unknown
// collection return an empty set, never an error.
type LocalStore interface {
	// ReplaceCollection clears and repopulates a collection in a single
	// transaction, so readers never observe a partial state.
	ReplaceCollection(ctx context.Context, collection string, records []models.Record) error
	GetCollection(ctx context.Context, collection string) ([]models.Record, error)
	// QueryCollection applies filter, order and paging to the cached records.
	QueryCollection(ctx context.Context, collection string, opts models.QueryOptions) ([]models.Record, error)
	// GetRecord returns ErrRecordNotFound when the id is not cached.
	GetRecord(ctx context.Context, collection, id string) (models.Record, error)
	UpsertRecord(ctx context.Context, collection string, record models.Record) error
	DeleteRecord(ctx context.Context, collection, id string) error
}

// SyncQueue is the durable FIFO log of mutations awaiting replay.
type SyncQueue interface {
	Enqueue(ctx context.Context, op models.QueuedOperation) error
	// ListPending returns every queued operation in insertion order.
	ListPending(ctx context.Context) ([]models.QueuedOperation, error)
	// Remove deletes an operation by its own id. Unknown ids are a no-op.
	Remove(ctx context.Context, opID string) error
	// IncrementRetry bumps the retry counter and returns the new value.
	IncrementRetry(ctx context.Context, opID string) (int, error)
	Len(ctx context.Context) (int, error)
	// RewriteRecordID points queued operations referencing oldID (record id
	// and payload id) at newID and returns the number of rewritten entries.
	RewriteRecordID(ctx context.Context, collection, oldID, newID string) (int, error)
}

// ConflictStore persists conflicts awaiting or having received a resolution.
type ConflictStore interface {
	// SaveConflict inserts a conflict or refreshes the data of an unresolved
	// conflict with the same id.
	SaveConflict(ctx context.Context, conflict models.ConflictRecord) error
	GetConflict(ctx context.Context, id string) (models.ConflictRecord, error)
	ListPendingConflicts(ctx context.Context) ([]models.ConflictRecord, error)
	MarkResolved(ctx context.Context, id string, resolution models.Record, resolvedAt time.Time) error
}

// DeadLetterStore keeps operations dropped after exhausting replay retries.
type DeadLetterStore interface {
	// Bury moves op from the sync queue into the dead-letter partition in a
	// single transaction.
	Bury(ctx context.Context, op models.QueuedOperation, lastErr string, droppedAt time.Time) error
	ListDeadLetters(ctx context.Context) ([]models.DeadLetter, error)
}
