package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-offline-sync/internal/validators"
	"github.com/MKhiriev/go-offline-sync/models"
)

type CollectionValidationService struct {
	inner     CollectionService
	validator validators.Validator
}

func NewCollectionValidationService() CollectionServiceWrapper {
	return &CollectionValidationService{
		validator: validators.NewRecordValidator(),
	}
}

func (v *CollectionValidationService) List(ctx context.Context, collection string, opts models.QueryOptions) ([]models.Record, error) {
	if err := v.validator.Validate(ctx, models.RecordRef{Collection: collection}, validators.FieldCollection); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	if err := v.validator.Validate(ctx, opts); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	return v.inner.List(ctx, collection, opts)
}

func (v *CollectionValidationService) Get(ctx context.Context, collection, id string) (models.Record, error) {
	if err := v.validator.Validate(ctx, models.RecordRef{Collection: collection, ID: id}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	return v.inner.Get(ctx, collection, id)
}

func (v *CollectionValidationService) Create(ctx context.Context, collection string, record models.Record) (models.Record, error) {
	if err := v.validator.Validate(ctx, models.RecordRef{Collection: collection}, validators.FieldCollection); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	if err := v.validator.Validate(ctx, record); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	// an id chosen by the client must be usable as a server id
	if record.ID() != "" {
		if err := v.validator.Validate(ctx, record, validators.FieldRecordID); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
		}
	}

	return v.inner.Create(ctx, collection, record)
}

func (v *CollectionValidationService) Update(ctx context.Context, collection, id string, record models.Record, expectedVersion int64) (models.Record, error) {
	ref := models.RecordRef{Collection: collection, ID: id, Version: expectedVersion}
	if err := v.validator.Validate(ctx, ref); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	if err := v.validator.Validate(ctx, record); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	return v.inner.Update(ctx, collection, id, record, expectedVersion)
}

func (v *CollectionValidationService) Delete(ctx context.Context, collection, id string, expectedVersion int64) error {
	ref := models.RecordRef{Collection: collection, ID: id, Version: expectedVersion}
	if err := v.validator.Validate(ctx, ref); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	return v.inner.Delete(ctx, collection, id, expectedVersion)
}

func (v *CollectionValidationService) Wrap(wrapper CollectionService) CollectionService {
	v.inner = wrapper
	return v
}
