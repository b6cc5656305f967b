package store

import (
	"context"

	"github.com/MKhiriev/go-offline-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// ErrorClassificator decides whether a failed database operation may be
// retried.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}

// CollectionRepository is the postgres-backed record store of the reference
// remote service. Every write bumps the record version; a non-zero expected
// version enables optimistic locking.
type CollectionRepository interface {
	List(ctx context.Context, collection string, opts models.QueryOptions) ([]models.Record, error)
	Get(ctx context.Context, collection, id string) (models.Record, error)
	Create(ctx context.Context, collection string, record models.Record) (models.Record, error)
	Update(ctx context.Context, collection, id string, record models.Record, expectedVersion int64) (models.Record, error)
	Delete(ctx context.Context, collection, id string, expectedVersion int64) error
}
