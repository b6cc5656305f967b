package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
)

// collectionRepository is the PostgreSQL-backed implementation of
// [CollectionRepository]. Record bodies live in a jsonb column; id, version
// and updatedAt are kept in their own columns and merged into the returned
// record.
type collectionRepository struct {
	*DB
	logger *logger.Logger
}

// NewCollectionRepository constructs a [CollectionRepository] backed by the
// provided database connection and logger.
func NewCollectionRepository(db *DB, logger *logger.Logger) CollectionRepository {
	return &collectionRepository{
		DB:     db,
		logger: logger,
	}
}

// List returns the records of a collection, filtered and paged per opts.
// An unknown collection yields an empty slice.
func (c *collectionRepository) List(ctx context.Context, collection string, opts models.QueryOptions) ([]models.Record, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListRecordsQuery(collection, opts)
	if err != nil {
		log.Err(err).
			Str("func", "collectionRepository.List").
			Str("collection", collection).
			Msg("failed to create query")
		return nil, err
	}

	rows, err := c.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "collectionRepository.List").
			Str("collection", collection).
			Msg("failed to execute query for listing records")
		return nil, c.wrapError(ErrExecutingQuery, err)
	}
	defer rows.Close()

	records := make([]models.Record, 0, 50)
	for rows.Next() {
		record, scanErr := scanServerRecord(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "collectionRepository.List").
				Str("collection", collection).
				Msg("failed to scan record row")
			return nil, scanErr
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		log.Err(err).
			Str("func", "collectionRepository.List").
			Str("collection", collection).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return records, nil
}

// Get returns a single record or [ErrRecordNotFound].
func (c *collectionRepository) Get(ctx context.Context, collection, id string) (models.Record, error) {
	record, err := scanServerRecord(c.DB.QueryRowContext(ctx, selectServerRecord, collection, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "collectionRepository.Get").
			Str("collection", collection).
			Str("record_id", id).
			Msg("failed to query record")
		return nil, err
	}

	return record, nil
}

// Create inserts a record with version 1. The record must carry an id.
// A duplicate id yields [ErrRecordAlreadyExists].
func (c *collectionRepository) Create(ctx context.Context, collection string, record models.Record) (models.Record, error) {
	log := logger.FromContext(ctx)

	id := record.ID()
	if id == "" {
		return nil, ErrMissingRecordID
	}

	body, err := encodeBody(record)
	if err != nil {
		return nil, err
	}

	query, args, err := buildInsertRecordQuery(collection, id, body)
	if err != nil {
		return nil, err
	}

	var (
		version   int64
		updatedAt time.Time
	)
	if err = c.DB.QueryRowContext(ctx, query, args...).Scan(&version, &updatedAt); err != nil {
		if postgresError(err) == pgerrcode.UniqueViolation {
			log.Warn().
				Str("func", "collectionRepository.Create").
				Str("collection", collection).
				Str("record_id", id).
				Msg("record already exists")
			return nil, ErrRecordAlreadyExists
		}
		log.Err(err).
			Str("func", "collectionRepository.Create").
			Str("collection", collection).
			Str("record_id", id).
			Bool("retryable", c.IsRetryable(err)).
			Msg("failed to insert record")
		return nil, c.wrapError(ErrExecutingStatement, err)
	}

	return withServerFields(record, id, version, updatedAt), nil
}

// Update replaces the body of a record and bumps its version. A non-zero
// expectedVersion must match the stored version, otherwise
// [ErrVersionConflict] is returned.
func (c *collectionRepository) Update(ctx context.Context, collection, id string, record models.Record, expectedVersion int64) (models.Record, error) {
	log := logger.FromContext(ctx)

	body, err := encodeBody(record)
	if err != nil {
		return nil, err
	}

	var (
		currentVersion *int64
		newVersion     *int64
		updatedAt      *time.Time
	)
	err = c.DB.QueryRowContext(ctx, updateServerRecord, collection, id, body, expectedVersion).
		Scan(&currentVersion, &newVersion, &updatedAt)
	if err != nil {
		log.Err(err).
			Str("func", "collectionRepository.Update").
			Str("collection", collection).
			Str("record_id", id).
			Msg("failed to execute update query")
		return nil, c.wrapError(ErrExecutingQuery, err)
	}

	// not found: target empty -> both NULL
	if currentVersion == nil {
		return nil, ErrRecordNotFound
	}

	// found but not updated -> version mismatch
	if newVersion == nil || updatedAt == nil {
		log.Warn().
			Str("func", "collectionRepository.Update").
			Str("collection", collection).
			Str("record_id", id).
			Int64("db_version", *currentVersion).
			Int64("provided_version", expectedVersion).
			Msg("optimistic lock failed: version mismatch on update")
		return nil, ErrVersionConflict
	}

	return withServerFields(record, id, *newVersion, *updatedAt), nil
}

// Delete removes a record. A non-zero expectedVersion must match the stored
// version.
func (c *collectionRepository) Delete(ctx context.Context, collection, id string, expectedVersion int64) error {
	log := logger.FromContext(ctx)

	var currentVersion, deletedVersion *int64
	err := c.DB.QueryRowContext(ctx, deleteServerRecord, collection, id, expectedVersion).
		Scan(&currentVersion, &deletedVersion)
	if err != nil {
		log.Err(err).
			Str("func", "collectionRepository.Delete").
			Str("collection", collection).
			Str("record_id", id).
			Msg("failed to execute delete query")
		return c.wrapError(ErrExecutingQuery, err)
	}

	if currentVersion == nil {
		return ErrRecordNotFound
	}

	if deletedVersion == nil {
		log.Warn().
			Str("func", "collectionRepository.Delete").
			Str("collection", collection).
			Str("record_id", id).
			Int64("db_version", *currentVersion).
			Int64("provided_version", expectedVersion).
			Msg("optimistic lock failed: version mismatch on delete")
		return ErrVersionConflict
	}

	return nil
}

// encodeBody strips the server-managed fields before storing the record.
func encodeBody(record models.Record) (string, error) {
	body := make(models.Record, len(record))
	for k, v := range record {
		switch k {
		case models.FieldID, models.FieldVersion, models.FieldUpdatedAt, models.FieldPendingSync:
			continue
		}
		body[k] = v
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncodingRecord, err)
	}

	return string(data), nil
}

func scanServerRecord(row rowScanner) (models.Record, error) {
	var (
		id        string
		data      []byte
		version   int64
		updatedAt time.Time
	)

	err := row.Scan(&id, &data, &version, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	var record models.Record
	if err = json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodingRecord, err)
	}

	return withServerFields(record, id, version, updatedAt), nil
}

func withServerFields(record models.Record, id string, version int64, updatedAt time.Time) models.Record {
	out := make(models.Record, len(record)+3)
	for k, v := range record {
		if k == models.FieldPendingSync {
			continue
		}
		out[k] = v
	}

	out[models.FieldID] = id
	out[models.FieldVersion] = version
	out[models.FieldUpdatedAt] = updatedAt.UTC().Format(time.RFC3339Nano)

	return out
}
