// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-offline-sync/models"
)

// sqlite builder: "?" placeholders.
var sqlite = sq.StatementBuilder.PlaceholderFormat(sq.Question)

const (
	upsertRecord = `
		INSERT INTO records (collection, id, data, hash, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET
			data       = excluded.data,
			hash       = excluded.hash,
			updated_at = excluded.updated_at;`

	deleteCollection = `DELETE FROM records WHERE collection = ?;`

	selectRecord = `SELECT data FROM records WHERE collection = ? AND id = ?;`

	deleteRecord = `DELETE FROM records WHERE collection = ? AND id = ?;`

	insertQueuedOperation = `
		INSERT INTO sync_queue (id, kind, collection, record_id, payload, created_at, retry_count)
		VALUES (?, ?, ?, ?, ?, ?, ?);`

	selectPendingOperations = `
		SELECT id, kind, collection, record_id, payload, created_at, retry_count
		FROM sync_queue
		ORDER BY seq;`

	deleteQueuedOperation = `DELETE FROM sync_queue WHERE id = ?;`

	incrementRetryCount = `
		UPDATE sync_queue SET retry_count = retry_count + 1
		WHERE id = ?
		RETURNING retry_count;`

	countQueuedOperations = `SELECT COUNT(*) FROM sync_queue;`

	upsertConflict = `
		INSERT INTO conflicts (id, collection, record_id, operation, server_data, client_data, strategy, detected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			operation   = excluded.operation,
			server_data = excluded.server_data,
			client_data = excluded.client_data,
			strategy    = excluded.strategy,
			detected_at = excluded.detected_at
		WHERE conflicts.resolved = 0;`

	selectConflictColumns = `
		SELECT id, collection, record_id, operation, server_data, client_data, strategy,
		       detected_at, resolved, resolution, resolved_at
		FROM conflicts`

	selectConflict = selectConflictColumns + ` WHERE id = ?;`

	selectPendingConflicts = selectConflictColumns + ` WHERE resolved = 0 ORDER BY detected_at, id;`

	resolveConflict = `
		UPDATE conflicts SET resolved = 1, resolution = ?, resolved_at = ?
		WHERE id = ? AND resolved = 0;`

	insertDeadLetter = `
		INSERT INTO dead_letters (op_id, kind, collection, record_id, payload, created_at, retry_count, last_error, dropped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (op_id) DO NOTHING;`

	selectDeadLetters = `
		SELECT op_id, kind, collection, record_id, payload, created_at, retry_count, last_error, dropped_at
		FROM dead_letters
		ORDER BY seq;`
)

// buildQueryCollectionQuery builds a SELECT over cached records of one
// collection. Filters compare top-level JSON fields as text; ordering by a
// field uses json_extract, otherwise the insertion order is kept.
func buildQueryCollectionQuery(collection string, opts models.QueryOptions) (string, []any, error) {
	query := sqlite.Select("data").
		From("records").
		Where(sq.Eq{"collection": collection})

	for field, value := range opts.Filter {
		if err := validFieldName(field); err != nil {
			return "", nil, err
		}
		query = query.Where(sq.Expr(fmt.Sprintf("CAST(json_extract(data, '$.%s') AS TEXT) = ?", field), value))
	}

	if opts.OrderBy != "" {
		if err := validFieldName(opts.OrderBy); err != nil {
			return "", nil, err
		}
		direction := "ASC"
		if opts.Desc {
			direction = "DESC"
		}
		query = query.OrderBy(fmt.Sprintf("json_extract(data, '$.%s') %s", opts.OrderBy, direction), "rowid")
	} else {
		query = query.OrderBy("rowid")
	}

	if opts.Limit > 0 {
		query = query.Limit(uint64(opts.Limit))
	}
	if opts.Offset > 0 {
		if opts.Limit <= 0 {
			// sqlite requires LIMIT before OFFSET
			query = query.Limit(1<<63 - 1)
		}
		query = query.Offset(uint64(opts.Offset))
	}

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return sqlQuery, args, nil
}

// buildRewriteRecordIDQuery repoints queued operations of a collection from
// oldID to newID. The payload "id" is rewritten only when it carries oldID.
func buildRewriteRecordIDQuery(collection, oldID, newID string) (string, []any, error) {
	query, args, err := sqlite.Update("sync_queue").
		Set("record_id", newID).
		Set("payload", sq.Expr(
			"CASE WHEN payload IS NOT NULL AND json_extract(payload, '$.id') = ? THEN json_set(payload, '$.id', ?) ELSE payload END",
			oldID, newID,
		)).
		Where(sq.Eq{"collection": collection, "record_id": oldID}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}
