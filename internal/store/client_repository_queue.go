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

type syncQueue struct {
	*DB
	logger *logger.Logger
}

func NewSyncQueue(db *DB, logger *logger.Logger) SyncQueue {
	return &syncQueue{
		DB:     db,
		logger: logger,
	}
}

func (q *syncQueue) Enqueue(ctx context.Context, op models.QueuedOperation) error {
	log := logger.FromContext(ctx)

	if op.ID == "" || op.Collection == "" || !op.Kind.Valid() {
		return fmt.Errorf("%w: id=%q kind=%q collection=%q", ErrInvalidOperation, op.ID, op.Kind, op.Collection)
	}

	payload, err := encodeRecord(op.Payload)
	if err != nil {
		return err
	}

	createdAt := op.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = q.DB.ExecContext(ctx, insertQueuedOperation,
		op.ID,
		string(op.Kind),
		op.Collection,
		op.RecordID,
		payload,
		createdAt.UTC(),
		op.RetryCount,
	)
	if err != nil {
		log.Err(err).
			Str("func", "syncQueue.Enqueue").
			Str("op_id", op.ID).
			Str("collection", op.Collection).
			Msg("failed to append operation to sync queue")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	log.Debug().
		Str("func", "syncQueue.Enqueue").
		Str("op_id", op.ID).
		Str("kind", string(op.Kind)).
		Str("collection", op.Collection).
		Str("record_id", op.RecordID).
		Msg("operation queued")

	return nil
}

func (q *syncQueue) ListPending(ctx context.Context) ([]models.QueuedOperation, error) {
	rows, err := q.DB.QueryContext(ctx, selectPendingOperations)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "syncQueue.ListPending").
			Msg("failed to query sync queue")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	ops := make([]models.QueuedOperation, 0, 16)
	for rows.Next() {
		op, scanErr := scanQueuedOperation(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		ops = append(ops, op)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return ops, nil
}

func (q *syncQueue) Remove(ctx context.Context, opID string) error {
	if _, err := q.DB.ExecContext(ctx, deleteQueuedOperation, opID); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "syncQueue.Remove").
			Str("op_id", opID).
			Msg("failed to remove operation from sync queue")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (q *syncQueue) IncrementRetry(ctx context.Context, opID string) (int, error) {
	var retryCount int
	err := q.DB.QueryRowContext(ctx, incrementRetryCount, opID).Scan(&retryCount)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidOperation, opID)
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "syncQueue.IncrementRetry").
			Str("op_id", opID).
			Msg("failed to increment retry count")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return retryCount, nil
}

func (q *syncQueue) Len(ctx context.Context) (int, error) {
	var n int
	if err := q.DB.QueryRowContext(ctx, countQueuedOperations).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return n, nil
}

func (q *syncQueue) RewriteRecordID(ctx context.Context, collection, oldID, newID string) (int, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildRewriteRecordIDQuery(collection, oldID, newID)
	if err != nil {
		return 0, err
	}

	result, err := q.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "syncQueue.RewriteRecordID").
			Str("collection", collection).
			Str("old_id", oldID).
			Str("new_id", newID).
			Msg("failed to rewrite queued record ids")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, _ := result.RowsAffected()
	return int(affected), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQueuedOperation(row rowScanner) (models.QueuedOperation, error) {
	var (
		op      models.QueuedOperation
		kind    string
		payload sql.NullString
	)

	err := row.Scan(&op.ID, &kind, &op.Collection, &op.RecordID, &payload, &op.CreatedAt, &op.RetryCount)
	if err != nil {
		return models.QueuedOperation{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	op.Kind = models.OperationKind(kind)
	if op.Payload, err = decodeRecord(payload); err != nil {
		return models.QueuedOperation{}, err
	}

	return op, nil
}
