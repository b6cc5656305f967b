package service

import (
	"context"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/store"
	"github.com/MKhiriev/go-offline-sync/models"
)

type collectionService struct {
	repository store.CollectionRepository
	ids        IDGenerator

	logger *logger.Logger
}

// NewCollectionService returns the storage-backed CollectionService.
func NewCollectionService(repository store.CollectionRepository, ids IDGenerator, logger *logger.Logger) CollectionService {
	return &collectionService{
		repository: repository,
		ids:        ids,
		logger:     logger,
	}
}

func (c *collectionService) List(ctx context.Context, collection string, opts models.QueryOptions) ([]models.Record, error) {
	return c.repository.List(ctx, collection, opts)
}

func (c *collectionService) Get(ctx context.Context, collection, id string) (models.Record, error) {
	return c.repository.Get(ctx, collection, id)
}

// Create assigns a server id when the record carries none.
func (c *collectionService) Create(ctx context.Context, collection string, record models.Record) (models.Record, error) {
	record = record.WithoutPendingSync()
	if record == nil {
		record = models.Record{}
	}
	if record.ID() == "" {
		record[models.FieldID] = c.ids.Generate()
	}
	return c.repository.Create(ctx, collection, record)
}

// Update stores record under id; an id in the body is overridden by the path
// id.
func (c *collectionService) Update(ctx context.Context, collection, id string, record models.Record, expectedVersion int64) (models.Record, error) {
	record = record.WithoutPendingSync()
	if record == nil {
		record = models.Record{}
	}
	record[models.FieldID] = id
	return c.repository.Update(ctx, collection, id, record, expectedVersion)
}

func (c *collectionService) Delete(ctx context.Context, collection, id string, expectedVersion int64) error {
	return c.repository.Delete(ctx, collection, id, expectedVersion)
}
