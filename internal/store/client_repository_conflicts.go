package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
)

type conflictStore struct {
	*DB
	logger *logger.Logger
}

func NewConflictStore(db *DB, logger *logger.Logger) ConflictStore {
	return &conflictStore{
		DB:     db,
		logger: logger,
	}
}

func (c *conflictStore) SaveConflict(ctx context.Context, conflict models.ConflictRecord) error {
	log := logger.FromContext(ctx)

	serverData, err := encodeRecord(conflict.ServerData)
	if err != nil {
		return err
	}
	clientData, err := encodeRecord(conflict.ClientData)
	if err != nil {
		return err
	}

	_, err = c.DB.ExecContext(ctx, upsertConflict,
		conflict.ID,
		conflict.Collection,
		conflict.RecordID,
		string(conflict.Operation),
		serverData,
		clientData,
		string(conflict.Strategy),
		conflict.DetectedAt.UTC(),
	)
	if err != nil {
		log.Err(err).
			Str("func", "conflictStore.SaveConflict").
			Str("conflict_id", conflict.ID).
			Str("collection", conflict.Collection).
			Str("record_id", conflict.RecordID).
			Msg("failed to persist conflict")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (c *conflictStore) GetConflict(ctx context.Context, id string) (models.ConflictRecord, error) {
	conflict, err := scanConflict(c.DB.QueryRowContext(ctx, selectConflict, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.ConflictRecord{}, ErrConflictNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "conflictStore.GetConflict").
			Str("conflict_id", id).
			Msg("failed to query conflict")
		return models.ConflictRecord{}, err
	}

	return conflict, nil
}

func (c *conflictStore) ListPendingConflicts(ctx context.Context) ([]models.ConflictRecord, error) {
	rows, err := c.DB.QueryContext(ctx, selectPendingConflicts)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "conflictStore.ListPendingConflicts").
			Msg("failed to query pending conflicts")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	conflicts := make([]models.ConflictRecord, 0, 4)
	for rows.Next() {
		conflict, scanErr := scanConflict(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		conflicts = append(conflicts, conflict)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return conflicts, nil
}

func (c *conflictStore) MarkResolved(ctx context.Context, id string, resolution models.Record, resolvedAt time.Time) error {
	log := logger.FromContext(ctx)

	data, err := encodeRecord(resolution)
	if err != nil {
		return err
	}

	result, err := c.DB.ExecContext(ctx, resolveConflict, data, resolvedAt.UTC(), id)
	if err != nil {
		log.Err(err).
			Str("func", "conflictStore.MarkResolved").
			Str("conflict_id", id).
			Msg("failed to mark conflict resolved")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		// distinguish unknown id from double resolution
		if _, getErr := c.GetConflict(ctx, id); getErr != nil {
			return getErr
		}
		return ErrConflictAlreadyResolved
	}

	return nil
}

func scanConflict(row rowScanner) (models.ConflictRecord, error) {
	var (
		conflict   models.ConflictRecord
		operation  string
		strategy   string
		serverData sql.NullString
		clientData sql.NullString
		resolution sql.NullString
		resolvedAt sql.NullTime
	)

	err := row.Scan(
		&conflict.ID,
		&conflict.Collection,
		&conflict.RecordID,
		&operation,
		&serverData,
		&clientData,
		&strategy,
		&conflict.DetectedAt,
		&conflict.Resolved,
		&resolution,
		&resolvedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ConflictRecord{}, err
	}
	if err != nil {
		return models.ConflictRecord{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	conflict.Operation = models.OperationKind(operation)
	conflict.Strategy = models.ConflictStrategy(strategy)
	if conflict.ServerData, err = decodeRecord(serverData); err != nil {
		return models.ConflictRecord{}, err
	}
	if conflict.ClientData, err = decodeRecord(clientData); err != nil {
		return models.ConflictRecord{}, err
	}
	if conflict.Resolution, err = decodeRecord(resolution); err != nil {
		return models.ConflictRecord{}, err
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		conflict.ResolvedAt = &t
	}

	return conflict, nil
}
