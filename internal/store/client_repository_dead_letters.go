package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
)

type deadLetterStore struct {
	*DB
	logger *logger.Logger
}

func NewDeadLetterStore(db *DB, logger *logger.Logger) DeadLetterStore {
	return &deadLetterStore{
		DB:     db,
		logger: logger,
	}
}

func (d *deadLetterStore) Bury(ctx context.Context, op models.QueuedOperation, lastErr string, droppedAt time.Time) error {
	log := logger.FromContext(ctx)

	payload, err := encodeRecord(op.Payload)
	if err != nil {
		return err
	}

	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, insertDeadLetter,
		op.ID,
		string(op.Kind),
		op.Collection,
		op.RecordID,
		payload,
		op.CreatedAt.UTC(),
		op.RetryCount,
		lastErr,
		droppedAt.UTC(),
	)
	if err != nil {
		log.Err(err).
			Str("func", "deadLetterStore.Bury").
			Str("op_id", op.ID).
			Msg("failed to insert dead letter")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if _, err = tx.ExecContext(ctx, deleteQueuedOperation, op.ID); err != nil {
		log.Err(err).
			Str("func", "deadLetterStore.Bury").
			Str("op_id", op.ID).
			Msg("failed to remove dead operation from sync queue")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return nil
}

func (d *deadLetterStore) ListDeadLetters(ctx context.Context) ([]models.DeadLetter, error) {
	rows, err := d.DB.QueryContext(ctx, selectDeadLetters)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "deadLetterStore.ListDeadLetters").
			Msg("failed to query dead letters")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	letters := make([]models.DeadLetter, 0, 4)
	for rows.Next() {
		var (
			letter  models.DeadLetter
			kind    string
			payload sql.NullString
		)

		err = rows.Scan(
			&letter.Operation.ID,
			&kind,
			&letter.Operation.Collection,
			&letter.Operation.RecordID,
			&payload,
			&letter.Operation.CreatedAt,
			&letter.Operation.RetryCount,
			&letter.LastError,
			&letter.DroppedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}

		letter.Operation.Kind = models.OperationKind(kind)
		if letter.Operation.Payload, err = decodeRecord(payload); err != nil {
			return nil, err
		}
		letters = append(letters, letter)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return letters, nil
}
