// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/MKhiriev/go-offline-sync/internal/adapter"
	"github.com/MKhiriev/go-offline-sync/internal/app"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
	"github.com/MKhiriev/go-offline-sync/models"
	"github.com/go-chi/chi/v5"
)

// listRecords handles GET /api/collections/{collection}.
//
// Supported query parameters: limit, offset, orderBy, desc and any number of
// filter.<field>=<value> equality filters.
func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	collection := chi.URLParam(r, "collection")

	opts, err := queryOptionsFromURL(r.URL.Query())
	if err != nil {
		log.Err(err).Str("func", "*Handler.listRecords").Msg("invalid query parameters")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	records, err := h.services.CollectionService.List(r.Context(), collection, opts)
	if err != nil {
		h.respondError(w, r, "*Handler.listRecords", err)
		return
	}
	if records == nil {
		records = []models.Record{}
	}

	utils.WriteJSON(w, records, http.StatusOK)
}

// getRecord handles GET /api/collections/{collection}/{id}.
func (h *Handler) getRecord(w http.ResponseWriter, r *http.Request) {
	collection, id := chi.URLParam(r, "collection"), chi.URLParam(r, "id")

	record, err := h.services.CollectionService.Get(r.Context(), collection, id)
	if err != nil {
		h.respondError(w, r, "*Handler.getRecord", err)
		return
	}

	utils.WriteRecord(w, record, http.StatusOK)
}

// createRecord handles POST /api/collections/{collection}. The stored record
// is returned with 201.
func (h *Handler) createRecord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	collection := chi.URLParam(r, "collection")

	var record models.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		log.Err(err).Str("func", "*Handler.createRecord").Msg("Invalid JSON was passed")
		http.Error(w, app.MsgInvalidJSON, http.StatusBadRequest)
		return
	}

	created, err := h.services.CollectionService.Create(r.Context(), collection, record)
	if err != nil {
		h.respondError(w, r, "*Handler.createRecord", err)
		return
	}

	log.Debug().Str("collection", collection).Str("id", created.ID()).Msg("record created")
	utils.WriteRecord(w, created, http.StatusCreated)
}

// updateRecord handles PUT /api/collections/{collection}/{id}. An If-Match
// header carries the version the caller last saw.
func (h *Handler) updateRecord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	collection, id := chi.URLParam(r, "collection"), chi.URLParam(r, "id")

	expectedVersion, err := versionFromIfMatch(r.Header.Get("If-Match"))
	if err != nil {
		log.Err(err).Str("func", "*Handler.updateRecord").Send()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var record models.Record
	if err = json.NewDecoder(r.Body).Decode(&record); err != nil {
		log.Err(err).Str("func", "*Handler.updateRecord").Msg("Invalid JSON was passed")
		http.Error(w, app.MsgInvalidJSON, http.StatusBadRequest)
		return
	}
	// version is server-managed
	delete(record, models.FieldVersion)

	updated, err := h.services.CollectionService.Update(r.Context(), collection, id, record, expectedVersion)
	if err != nil {
		h.respondError(w, r, "*Handler.updateRecord", err)
		return
	}

	utils.WriteRecord(w, updated, http.StatusOK)
}

// deleteRecord handles DELETE /api/collections/{collection}/{id}.
func (h *Handler) deleteRecord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	collection, id := chi.URLParam(r, "collection"), chi.URLParam(r, "id")

	expectedVersion, err := versionFromIfMatch(r.Header.Get("If-Match"))
	if err != nil {
		log.Err(err).Str("func", "*Handler.deleteRecord").Send()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err = h.services.CollectionService.Delete(r.Context(), collection, id, expectedVersion); err != nil {
		h.respondError(w, r, "*Handler.deleteRecord", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, funcName string, err error) {
	status := statusFromError(err)

	event := logger.FromRequest(r).Warn()
	if status >= http.StatusInternalServerError {
		event = logger.FromRequest(r).Error()
	}
	event.Err(err).Str("func", funcName).Int("status", status).Send()

	msg := err.Error()
	switch {
	case status == http.StatusServiceUnavailable:
		w.Header().Set("Retry-After", retryAfterSeconds)
		msg = app.MsgStorageBusy
	case status >= http.StatusInternalServerError:
		msg = app.MsgInternalServerError
	}
	http.Error(w, msg, status)
}

// versionFromIfMatch parses an If-Match header. Quotes and a weak prefix are
// tolerated; an empty header means no version check.
func versionFromIfMatch(header string) (int64, error) {
	header = strings.TrimSpace(header)
	if header == "" || header == "*" {
		return 0, nil
	}
	header = strings.TrimPrefix(header, "W/")
	header = strings.Trim(header, `"`)

	v, err := strconv.ParseInt(header, 10, 64)
	if err != nil || v < 0 {
		return 0, ErrInvalidIfMatchHeader
	}
	return v, nil
}

func queryOptionsFromURL(values url.Values) (models.QueryOptions, error) {
	var (
		opts models.QueryOptions
		err  error
	)

	if raw := values.Get("limit"); raw != "" {
		if opts.Limit, err = strconv.Atoi(raw); err != nil {
			return opts, errors.Join(ErrInvalidQueryParameter, err)
		}
	}
	if raw := values.Get("offset"); raw != "" {
		if opts.Offset, err = strconv.Atoi(raw); err != nil {
			return opts, errors.Join(ErrInvalidQueryParameter, err)
		}
	}
	if raw := values.Get("desc"); raw != "" {
		if opts.Desc, err = strconv.ParseBool(raw); err != nil {
			return opts, errors.Join(ErrInvalidQueryParameter, err)
		}
	}
	opts.OrderBy = values.Get("orderBy")

	for key, vals := range values {
		field, ok := strings.CutPrefix(key, adapter.FilterParamPrefix)
		if !ok || len(vals) == 0 {
			continue
		}
		if opts.Filter == nil {
			opts.Filter = make(map[string]string)
		}
		opts.Filter[field] = vals[0]
	}

	return opts, nil
}
