package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
)

// Storages groups the repositories of the reference remote service.
type Storages struct {
	CollectionRepository CollectionRepository

	db *DB
}

// NewStorages connects to postgres, applies migrations and builds the
// repositories of the reference server.
func NewStorages(ctx context.Context, cfg config.Storage, logger *logger.Logger) (*Storages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectPostgres(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("postgres connection error: %w", err)
	}

	if err = db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &Storages{
		CollectionRepository: NewCollectionRepository(db, logger),
		db:                   db,
	}, nil
}

// Close releases the underlying database connection.
func (s *Storages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks that postgres is reachable.
func (s *Storages) Ping(ctx context.Context) error {
	if s.db == nil {
		return ErrStorageUnavailable
	}
	return s.db.PingContext(ctx)
}
