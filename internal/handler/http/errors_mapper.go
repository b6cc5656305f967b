package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-offline-sync/internal/service"
	"github.com/MKhiriev/go-offline-sync/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:     http.StatusBadRequest,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,

	store.ErrRecordNotFound:      http.StatusNotFound,
	store.ErrRecordAlreadyExists: http.StatusConflict,
	store.ErrVersionConflict:     http.StatusConflict,
	store.ErrMissingRecordID:     http.StatusBadRequest,
	store.ErrInvalidFieldName:    http.StatusBadRequest,

	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrExecutingQuery:       http.StatusInternalServerError,
	store.ErrBeginningTransaction: http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
	store.ErrExecutingStatement:   http.StatusInternalServerError,
	store.ErrScanningRow:          http.StatusInternalServerError,
	store.ErrScanningRows:         http.StatusInternalServerError,
	store.ErrEncodingRecord:       http.StatusInternalServerError,
	store.ErrDecodingRecord:       http.StatusInternalServerError,
}

// retryAfterSeconds is advertised with 503 answers.
const retryAfterSeconds = "1"

// statusFromError checks transient storage failures first; they also match
// the generic SQL errors below.
func statusFromError(err error) int {
	if errors.Is(err, store.ErrStorageBusy) {
		return http.StatusServiceUnavailable
	}
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
