package store

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
)

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newDBFromSQL(db *sql.DB) *DB {
	return &DB{
		DB:                 db,
		errorClassificator: NewPostgresErrorClassifier(),
		logger:             logger.Nop(),
	}
}

func newTestRepo(t *testing.T) (CollectionRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newTestDB(t)
	return NewCollectionRepository(newDBFromSQL(db), logger.Nop()), mock
}

var serverRecordColumns = []string{"id", "data", "version", "updated_at"}

func TestCollectionRepository_List(t *testing.T) {
	repo, mock := newTestRepo(t)
	updated := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, data, version, updated_at FROM records WHERE collection = \$1 AND data->>\$2 = \$3`).
		WithArgs("widgets", "status", "ok").
		WillReturnRows(sqlmock.NewRows(serverRecordColumns).
			AddRow("w1", []byte(`{"name":"Alpha","status":"ok"}`), int64(2), updated).
			AddRow("w3", []byte(`{"name":"Charlie","status":"ok"}`), int64(1), updated))

	got, err := repo.List(testContext(), "widgets", models.QueryOptions{Filter: map[string]string{"status": "ok"}})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "w1", got[0].ID())
	assert.Equal(t, int64(2), got[0].Version())
	assert.Equal(t, "Alpha", got[0]["name"])
	ts, ok := got[0].UpdatedAt()
	require.True(t, ok)
	assert.True(t, updated.Equal(ts))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionRepository_List_QueryError(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`SELECT id, data, version, updated_at FROM records`).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.List(testContext(), "widgets", models.QueryOptions{})
	assert.ErrorIs(t, err, ErrExecutingQuery)
	assert.NotErrorIs(t, err, ErrStorageBusy)
}

func TestCollectionRepository_List_TransientError(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`SELECT id, data, version, updated_at FROM records`).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.TooManyConnections})

	_, err := repo.List(testContext(), "widgets", models.QueryOptions{})
	assert.ErrorIs(t, err, ErrExecutingQuery)
	assert.ErrorIs(t, err, ErrStorageBusy)
}

func TestCollectionRepository_List_InvalidOrderField(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.List(testContext(), "widgets", models.QueryOptions{OrderBy: "name; DROP TABLE records"})
	assert.ErrorIs(t, err, ErrInvalidFieldName)
}

func TestCollectionRepository_Get(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectServerRecord)).
		WithArgs("widgets", "w1").
		WillReturnRows(sqlmock.NewRows(serverRecordColumns).
			AddRow("w1", []byte(`{"name":"Alpha"}`), int64(5), time.Now()))

	got, err := repo.Get(testContext(), "widgets", "w1")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got["name"])
	assert.Equal(t, int64(5), got.Version())
}

func TestCollectionRepository_Get_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectServerRecord)).
		WithArgs("widgets", "missing").
		WillReturnRows(sqlmock.NewRows(serverRecordColumns))

	_, err := repo.Get(testContext(), "widgets", "missing")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestCollectionRepository_Create(t *testing.T) {
	repo, mock := newTestRepo(t)
	updated := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO records \(collection,id,data\) VALUES \(\$1,\$2,\$3::jsonb\) RETURNING version, updated_at`).
		WithArgs("widgets", "w1", `{"name":"Alpha"}`).
		WillReturnRows(sqlmock.NewRows([]string{"version", "updated_at"}).AddRow(int64(1), updated))

	got, err := repo.Create(testContext(), "widgets", models.Record{
		"id": "w1", "name": "Alpha", "pendingSync": true, "version": 9,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version())
	assert.Equal(t, "w1", got.ID())
	assert.NotContains(t, got, models.FieldPendingSync)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionRepository_Create_Duplicate(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`INSERT INTO records`).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	_, err := repo.Create(testContext(), "widgets", models.Record{"id": "w1"})
	assert.ErrorIs(t, err, ErrRecordAlreadyExists)
}

func TestCollectionRepository_Create_MissingID(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Create(testContext(), "widgets", models.Record{"name": "x"})
	assert.ErrorIs(t, err, ErrMissingRecordID)
}

func TestCollectionRepository_Update(t *testing.T) {
	updated := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		row     []driver.Value
		wantErr error
	}{
		{name: "success", row: []driver.Value{int64(3), int64(4), updated}},
		{name: "not found", row: []driver.Value{nil, nil, nil}, wantErr: ErrRecordNotFound},
		{name: "version conflict", row: []driver.Value{int64(7), nil, nil}, wantErr: ErrVersionConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestRepo(t)

			mock.ExpectQuery(regexp.QuoteMeta(updateServerRecord)).
				WithArgs("widgets", "w1", `{"name":"X"}`, int64(3)).
				WillReturnRows(sqlmock.NewRows([]string{"target", "updated", "updated_at"}).AddRow(tt.row...))

			got, err := repo.Update(testContext(), "widgets", "w1", models.Record{"id": "w1", "name": "X"}, 3)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(4), got.Version())
			assert.Equal(t, "X", got["name"])
		})
	}
}

func TestCollectionRepository_Delete(t *testing.T) {
	tests := []struct {
		name    string
		row     []driver.Value
		wantErr error
	}{
		{name: "success", row: []driver.Value{int64(2), int64(2)}},
		{name: "not found", row: []driver.Value{nil, nil}, wantErr: ErrRecordNotFound},
		{name: "version conflict", row: []driver.Value{int64(5), nil}, wantErr: ErrVersionConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestRepo(t)

			mock.ExpectQuery(regexp.QuoteMeta(deleteServerRecord)).
				WithArgs("widgets", "w1", int64(2)).
				WillReturnRows(sqlmock.NewRows([]string{"target", "deleted"}).AddRow(tt.row...))

			err := repo.Delete(testContext(), "widgets", "w1", 2)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPostgresErrorClassifier(t *testing.T) {
	c := NewPostgresErrorClassifier()

	tests := []struct {
		code string
		want ErrorClassification
	}{
		{pgerrcode.ConnectionFailure, Retryable},
		{pgerrcode.SQLClientUnableToEstablishSQLConnection, Retryable},
		{pgerrcode.SerializationFailure, Retryable},
		{pgerrcode.DeadlockDetected, Retryable},
		{pgerrcode.TooManyConnections, Retryable},
		{pgerrcode.LockNotAvailable, Retryable},
		{pgerrcode.CannotConnectNow, Retryable},
		{pgerrcode.UniqueViolation, NonRetryable},
		{pgerrcode.SyntaxError, NonRetryable},
		{pgerrcode.InvalidTextRepresentation, NonRetryable},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(&pgconn.PgError{Code: tt.code}))
		})
	}

	wrapped := fmt.Errorf("query: %w", &pgconn.PgError{Code: pgerrcode.AdminShutdown})
	assert.Equal(t, Retryable, c.Classify(wrapped))
	assert.Equal(t, NonRetryable, c.Classify(errors.New("plain")))
	assert.Equal(t, NonRetryable, c.Classify(nil))
}

func TestSQLiteErrorClassifier(t *testing.T) {
	c := NewSQLiteErrorClassifier()

	assert.Equal(t, NonRetryable, c.Classify(errors.New("plain")))
	assert.Equal(t, NonRetryable, c.Classify(nil))
}
