package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
)

// DB wraps a database/sql connection with the dialect-specific migration
// routine and error classifier.
type DB struct {
	*sql.DB
	errorClassificator ErrorClassificator
	migrate            func(*sql.DB) error
	logger             *logger.Logger
}

// Migrate applies pending schema migrations.
func (db *DB) Migrate() error {
	if db.migrate == nil {
		return nil
	}
	return db.migrate(db.DB)
}

// IsRetryable reports whether err is a transient database error.
func (db *DB) IsRetryable(err error) bool {
	if db.errorClassificator == nil {
		return false
	}
	return db.errorClassificator.Classify(err) == Retryable
}

// wrapError wraps a driver error in kind and additionally marks transient
// failures with [ErrStorageBusy].
func (db *DB) wrapError(kind, err error) error {
	if db.IsRetryable(err) {
		return fmt.Errorf("%w: %w: %w", kind, ErrStorageBusy, err)
	}
	return fmt.Errorf("%w: %w", kind, err)
}

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validFieldName(name string) error {
	if !fieldNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidFieldName, name)
	}
	return nil
}

func encodeRecord(record models.Record) (sql.NullString, error) {
	if record == nil {
		return sql.NullString{}, nil
	}

	data, err := json.Marshal(record)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("%w: %w", ErrEncodingRecord, err)
	}

	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeRecord(data sql.NullString) (models.Record, error) {
	if !data.Valid || data.String == "" || data.String == "null" {
		return nil, nil
	}

	var record models.Record
	if err := json.Unmarshal([]byte(data.String), &record); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodingRecord, err)
	}

	return record, nil
}
