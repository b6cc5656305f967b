package service

import (
	"context"

	"github.com/MKhiriev/go-offline-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// CollectionService is the record API of the reference remote service.
// A non-zero expectedVersion enables optimistic locking.
type CollectionService interface {
	List(ctx context.Context, collection string, opts models.QueryOptions) ([]models.Record, error)
	Get(ctx context.Context, collection, id string) (models.Record, error)
	Create(ctx context.Context, collection string, record models.Record) (models.Record, error)
	Update(ctx context.Context, collection, id string, record models.Record, expectedVersion int64) (models.Record, error)
	Delete(ctx context.Context, collection, id string, expectedVersion int64) error
}

type AuthService interface {
	CreateToken(ctx context.Context, subject string) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}

// CollectionServiceWrapper defines middleware composition for
// CollectionService. Implementations wrap an existing CollectionService to
// add behavior such as logging or validating.
type CollectionServiceWrapper interface {
	Wrap(CollectionService) CollectionService // returns a decorated CollectionService applying additional behavior
}
