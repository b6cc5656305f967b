package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
	"github.com/MKhiriev/go-offline-sync/models"
)

type localStore struct {
	*DB
	logger *logger.Logger
	now    func() time.Time
}

func NewLocalStore(db *DB, logger *logger.Logger) LocalStore {
	return &localStore{
		DB:     db,
		logger: logger,
		now:    time.Now,
	}
}

func (l *localStore) ReplaceCollection(ctx context.Context, collection string, records []models.Record) error {
	log := logger.FromContext(ctx)

	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "localStore.ReplaceCollection").
			Str("collection", collection).
			Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, deleteCollection, collection); err != nil {
		log.Err(err).
			Str("func", "localStore.ReplaceCollection").
			Str("collection", collection).
			Msg("failed to clear collection")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	now := l.now().UTC()
	for i, record := range records {
		if err = l.upsert(ctx, tx, collection, record, now); err != nil {
			log.Err(err).
				Str("func", "localStore.ReplaceCollection").
				Str("collection", collection).
				Int("index", i).
				Msg("failed to write record")
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).
			Str("func", "localStore.ReplaceCollection").
			Str("collection", collection).
			Msg("failed to commit transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	log.Debug().
		Str("func", "localStore.ReplaceCollection").
		Str("collection", collection).
		Int("records", len(records)).
		Msg("collection replaced")

	return nil
}

func (l *localStore) GetCollection(ctx context.Context, collection string) ([]models.Record, error) {
	return l.QueryCollection(ctx, collection, models.QueryOptions{})
}

func (l *localStore) QueryCollection(ctx context.Context, collection string, opts models.QueryOptions) ([]models.Record, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildQueryCollectionQuery(collection, opts)
	if err != nil {
		log.Err(err).
			Str("func", "localStore.QueryCollection").
			Str("collection", collection).
			Msg("failed to create query")
		return nil, err
	}

	rows, err := l.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "localStore.QueryCollection").
			Str("collection", collection).
			Msg("failed to execute query for getting cached records")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	records := make([]models.Record, 0, 16)
	for rows.Next() {
		var data sql.NullString
		if err = rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}

		record, decodeErr := decodeRecord(data)
		if decodeErr != nil {
			log.Err(decodeErr).
				Str("func", "localStore.QueryCollection").
				Str("collection", collection).
				Msg("failed to decode cached record")
			return nil, decodeErr
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return records, nil
}

func (l *localStore) GetRecord(ctx context.Context, collection, id string) (models.Record, error) {
	var data sql.NullString
	err := l.DB.QueryRowContext(ctx, selectRecord, collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "localStore.GetRecord").
			Str("collection", collection).
			Str("record_id", id).
			Msg("failed to query cached record")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return decodeRecord(data)
}

func (l *localStore) UpsertRecord(ctx context.Context, collection string, record models.Record) error {
	if err := l.upsert(ctx, l.DB, collection, record, l.now().UTC()); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "localStore.UpsertRecord").
			Str("collection", collection).
			Str("record_id", record.ID()).
			Msg("failed to upsert record")
		return err
	}

	return nil
}

func (l *localStore) DeleteRecord(ctx context.Context, collection, id string) error {
	if _, err := l.DB.ExecContext(ctx, deleteRecord, collection, id); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "localStore.DeleteRecord").
			Str("collection", collection).
			Str("record_id", id).
			Msg("failed to delete record")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (l *localStore) upsert(ctx context.Context, exec execer, collection string, record models.Record, now time.Time) error {
	id := record.ID()
	if id == "" {
		return ErrMissingRecordID
	}

	data, err := encodeRecord(record)
	if err != nil {
		return err
	}

	hash, err := utils.Fingerprint(record)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodingRecord, err)
	}

	if _, err = exec.ExecContext(ctx, upsertRecord, collection, id, data, hash, now); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}
