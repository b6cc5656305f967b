package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrRecordNotFound is returned when a record lookup by collection and id
	// produces no row.
	ErrRecordNotFound = errors.New("record was not found")

	// ErrStorageUnavailable is returned by health checks when no database
	// connection was opened.
	ErrStorageUnavailable = errors.New("storage is unavailable")

	// ErrStorageBusy marks database failures the driver reports as transient
	// (lost connections, serialization failures, deadlocks). Callers may retry.
	ErrStorageBusy = errors.New("storage is temporarily busy")

	// ErrRecordAlreadyExists is returned by the server repository when a
	// create collides with an existing (collection, id) pair.
	ErrRecordAlreadyExists = errors.New("record already exists")

	// ErrVersionConflict is returned when an optimistic-locking check fails:
	// the version supplied by the client does not match the current version
	// stored in the database, meaning another writer has modified the record
	// since the client last saw it.
	ErrVersionConflict = errors.New("record version conflict occurred")

	// ErrMissingRecordID is returned when a record without an "id" field is
	// written to a collection.
	ErrMissingRecordID = errors.New("record has no id")

	// ErrInvalidOperation is returned when a queued operation has no id, an
	// unknown kind or no collection.
	ErrInvalidOperation = errors.New("invalid queued operation")

	// ErrConflictNotFound is returned when a conflict id is unknown.
	ErrConflictNotFound = errors.New("conflict was not found")

	// ErrConflictAlreadyResolved is returned when a resolution is recorded for
	// a conflict that has already been resolved.
	ErrConflictAlreadyResolved = errors.New("conflict is already resolved")

	// ErrInvalidFieldName is returned when a filter or order field contains
	// characters that cannot be used in a JSON path.
	ErrInvalidFieldName = errors.New("invalid field name")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when iterating a multi-row result fails,
	// typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")

	// ErrEncodingRecord is returned when a record cannot be encoded as JSON.
	ErrEncodingRecord = errors.New("failed to encode record")

	// ErrDecodingRecord is returned when a stored JSON document cannot be
	// decoded into a record.
	ErrDecodingRecord = errors.New("failed to decode record")
)
