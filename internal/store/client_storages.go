package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
)

// ClientStorages groups all client-side storage components backed by the
// same sqlite file into a single value that can be passed around the service
// layer.
type ClientStorages struct {
	// Records is the per-collection record cache.
	Records LocalStore
	// Queue is the durable log of mutations awaiting replay.
	Queue SyncQueue
	// Conflicts holds manual and resolved replay conflicts.
	Conflicts ConflictStore
	// DeadLetters holds operations dropped after exhausting replay retries.
	DeadLetters DeadLetterStore

	db *DB
}

// NewClientStorages initialises the client storage layer using the supplied
// configuration and logger. It performs the following steps:
//  1. Opens an SQLite connection to the file path specified in cfg.DB.DSN,
//     creating the database file if it does not yet exist.
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Constructs the record cache, sync queue, conflict and dead-letter
//     stores over that connection.
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err = db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return newClientStorages(db, logger), nil
}

func newClientStorages(db *DB, logger *logger.Logger) *ClientStorages {
	return &ClientStorages{
		Records:     NewLocalStore(db, logger),
		Queue:       NewSyncQueue(db, logger),
		Conflicts:   NewConflictStore(db, logger),
		DeadLetters: NewDeadLetterStore(db, logger),
		db:          db,
	}
}

// Close releases the underlying database connection.
func (s *ClientStorages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
