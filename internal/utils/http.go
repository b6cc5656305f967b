package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/MKhiriev/go-offline-sync/models"
)

// WriteJSON marshals data and writes it with statusCode and a JSON content
// type. When marshaling fails a plain 500 is written instead and the error is
// returned.
//
//	WriteJSON(w, records, http.StatusOK)
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "error writing data to JSON", http.StatusInternalServerError)
		return 0, fmt.Errorf("error writing data to JSON: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return w.Write(jsonData)
}

// WriteRecord writes a single record like [WriteJSON] and advertises its
// version as a strong ETag, so clients can echo it back in If-Match.
func WriteRecord(w http.ResponseWriter, record models.Record, statusCode int) (int, error) {
	if v := record.Version(); v > 0 {
		w.Header().Set("ETag", strconv.Quote(strconv.FormatInt(v, 10)))
	}
	return WriteJSON(w, record, statusCode)
}
