package store

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-offline-sync/models"
)

// postgres builder: "$n" placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	selectServerRecord = `
		SELECT id, data, version, updated_at
		FROM records
		WHERE collection = $1 AND id = $2;`

	// updateServerRecord reports the version found before the update and the
	// version after it. Both NULL: not found. Only the first: version
	// mismatch.
	updateServerRecord = `
		WITH target AS (
			SELECT version FROM records WHERE collection = $1 AND id = $2
		), updated AS (
			UPDATE records
			SET data = $3, version = records.version + 1, updated_at = NOW()
			WHERE collection = $1 AND id = $2
			  AND ($4::bigint = 0 OR records.version = $4::bigint)
			RETURNING version, updated_at
		)
		SELECT (SELECT version FROM target),
		       (SELECT version FROM updated),
		       (SELECT updated_at FROM updated);`

	deleteServerRecord = `
		WITH target AS (
			SELECT version FROM records WHERE collection = $1 AND id = $2
		), deleted AS (
			DELETE FROM records
			WHERE collection = $1 AND id = $2
			  AND ($3::bigint = 0 OR version = $3::bigint)
			RETURNING version
		)
		SELECT (SELECT version FROM target),
		       (SELECT version FROM deleted);`
)

// buildListRecordsQuery builds the SELECT of one collection. Filters match
// top-level JSON fields as text.
func buildListRecordsQuery(collection string, opts models.QueryOptions) (string, []any, error) {
	query := psql.Select("id", "data", "version", "updated_at").
		From("records").
		Where(sq.Eq{"collection": collection})

	for field, value := range opts.Filter {
		if err := validFieldName(field); err != nil {
			return "", nil, err
		}
		query = query.Where(sq.Expr("data->>? = ?", field, value))
	}

	switch opts.OrderBy {
	case "":
		query = query.OrderBy("created_at", "id")
	case models.FieldUpdatedAt:
		query = query.OrderBy("updated_at" + direction(opts.Desc))
	case models.FieldID, models.FieldVersion:
		query = query.OrderBy(opts.OrderBy + direction(opts.Desc))
	default:
		if err := validFieldName(opts.OrderBy); err != nil {
			return "", nil, err
		}
		query = query.OrderBy(fmt.Sprintf("data->>'%s'%s", opts.OrderBy, direction(opts.Desc)))
	}

	if opts.Limit > 0 {
		query = query.Limit(uint64(opts.Limit))
	}
	if opts.Offset > 0 {
		query = query.Offset(uint64(opts.Offset))
	}

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return sqlQuery, args, nil
}

func buildInsertRecordQuery(collection, id, data string) (string, []any, error) {
	query, args, err := psql.Insert("records").
		Columns("collection", "id", "data").
		Values(collection, id, sq.Expr("?::jsonb", data)).
		Suffix("RETURNING version, updated_at").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

func direction(desc bool) string {
	if desc {
		return " DESC"
	}
	return " ASC"
}
