// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
	"github.com/MKhiriev/go-offline-sync/models"
	"github.com/go-resty/resty/v2"
)

const (
	pingPath       = "/api/ping"
	collectionPath = "/api/collections/{collection}"
	recordPath     = "/api/collections/{collection}/{id}"

	// FilterParamPrefix prefixes query parameters that carry equality filters.
	FilterParamPrefix = "filter."

	// ContentHashHeader carries the hex BLAKE2b-256 digest of a request body.
	ContentHashHeader = "X-Content-Hash"
)

// HTTPRemoteService is the HTTP/REST [RemoteService].
type HTTPRemoteService struct {
	mu      sync.RWMutex
	client  *utils.HTTPClient
	baseURL string
	// origin is the configured address; baseURL differs from it only while
	// a recovery transport is engaged.
	origin string

	token   string
	timeout time.Duration

	logger *logger.Logger
}

// NewHTTPRemoteService constructs an HTTP/REST implementation of
// [RemoteService]. It normalises and validates the base URL from
// adapterCfg.HTTPAddress and attaches token as a bearer credential to every
// collection request.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPRemoteService(adapterCfg config.ClientAdapter, token string, log *logger.Logger) (*HTTPRemoteService, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	return &HTTPRemoteService{
		client:  utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout),
		baseURL: baseURL,
		origin:  baseURL,
		token:   strings.TrimSpace(token),
		timeout: adapterCfg.RequestTimeout,
		logger:  log.WithComponent("remote-http"),
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyAddress
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// BaseURL returns the address requests are currently sent to.
func (h *HTTPRemoteService) BaseURL() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.baseURL
}

// switchBaseURL points all subsequent requests at baseURL.
func (h *HTTPRemoteService) switchBaseURL(baseURL string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.baseURL = baseURL
	h.client = utils.NewHTTPClient(baseURL, h.timeout)
	h.logger.Warn().Str("func", "HTTPRemoteService.switchBaseURL").
		Str("base_url", baseURL).
		Msg("remote base url switched")
}

func (h *HTTPRemoteService) request(ctx context.Context) *resty.Request {
	h.mu.RLock()
	client, token := h.client, h.token
	h.mu.RUnlock()

	req := client.R().SetContext(ctx)
	if token != "" {
		req.SetAuthToken(token)
	}
	return req
}

// List implements [RemoteService]. GET /api/collections/{collection}.
func (h *HTTPRemoteService) List(ctx context.Context, collection string, opts models.QueryOptions) ([]models.Record, error) {
	const op = "list"

	resp, err := h.request(ctx).
		SetPathParam("collection", collection).
		SetQueryParamsFromValues(queryValues(opts)).
		Get(collectionPath)
	if err != nil {
		return nil, transportError(op, err)
	}
	if err = mapHTTPError(op, resp); err != nil {
		return nil, err
	}

	var records []models.Record
	if err = json.Unmarshal(resp.Body(), &records); err != nil {
		return nil, &RemoteError{Kind: KindUnknown, StatusCode: resp.StatusCode(), Op: op, Err: fmt.Errorf("decode list response: %w", err)}
	}
	if records == nil {
		records = []models.Record{}
	}

	return records, nil
}

// GetOne implements [RemoteService]. GET /api/collections/{collection}/{id}.
func (h *HTTPRemoteService) GetOne(ctx context.Context, collection, id string) (models.Record, error) {
	const op = "get"
	if id == "" {
		return nil, &RemoteError{Kind: KindValidation, Op: op, Err: ErrMissingID}
	}

	resp, err := h.request(ctx).
		SetPathParams(map[string]string{"collection": collection, "id": id}).
		Get(recordPath)
	if err != nil {
		return nil, transportError(op, err)
	}
	if err = mapHTTPError(op, resp); err != nil {
		return nil, err
	}

	return decodeRecord(op, resp)
}

// Create implements [RemoteService]. POST /api/collections/{collection}.
// Server-managed fields and temporary ids are stripped from the body.
func (h *HTTPRemoteService) Create(ctx context.Context, collection string, record models.Record) (models.Record, error) {
	const op = "create"

	body := outgoingBody(record)
	if body.HasTempID() {
		delete(body, models.FieldID)
	}

	req, err := h.jsonRequest(ctx, op, body)
	if err != nil {
		return nil, err
	}

	resp, err := req.
		SetPathParam("collection", collection).
		Post(collectionPath)
	if err != nil {
		return nil, transportError(op, err)
	}
	if err = mapHTTPError(op, resp); err != nil {
		return nil, err
	}

	return decodeRecord(op, resp)
}

// Update implements [RemoteService]. PUT /api/collections/{collection}/{id}
// with the expected version in the If-Match header.
func (h *HTTPRemoteService) Update(ctx context.Context, collection, id string, record models.Record) (models.Record, error) {
	const op = "update"
	if id == "" {
		return nil, &RemoteError{Kind: KindValidation, Op: op, Err: ErrMissingID}
	}

	req, err := h.jsonRequest(ctx, op, outgoingBody(record))
	if err != nil {
		return nil, err
	}
	req.SetPathParams(map[string]string{"collection": collection, "id": id})
	if v := record.Version(); v > 0 {
		req.SetHeader("If-Match", strconv.FormatInt(v, 10))
	}

	resp, err := req.Put(recordPath)
	if err != nil {
		return nil, transportError(op, err)
	}
	if err = mapHTTPError(op, resp); err != nil {
		return nil, err
	}

	return decodeRecord(op, resp)
}

// Delete implements [RemoteService]. DELETE /api/collections/{collection}/{id}.
func (h *HTTPRemoteService) Delete(ctx context.Context, collection, id string, version int64) error {
	const op = "delete"
	if id == "" {
		return &RemoteError{Kind: KindValidation, Op: op, Err: ErrMissingID}
	}

	req := h.request(ctx).
		SetPathParams(map[string]string{"collection": collection, "id": id})
	if version > 0 {
		req.SetHeader("If-Match", strconv.FormatInt(version, 10))
	}

	resp, err := req.Delete(recordPath)
	if err != nil {
		return transportError(op, err)
	}

	return mapHTTPError(op, resp)
}

// Downgraded reports whether requests currently bypass the configured
// address.
func (h *HTTPRemoteService) Downgraded() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.baseURL != h.origin
}

// Probe implements [RemoteService]. GET /api/ping, unauthenticated. While
// downgraded it first pings the configured address and switches back to it
// when that succeeds.
func (h *HTTPRemoteService) Probe(ctx context.Context) (time.Duration, error) {
	h.mu.RLock()
	client, baseURL, origin := h.client, h.baseURL, h.origin
	h.mu.RUnlock()

	if baseURL != origin {
		if latency, err := h.ping(ctx, utils.NewHTTPClient(origin, h.timeout)); err == nil {
			h.switchBaseURL(origin)
			return latency, nil
		}
	}

	return h.ping(ctx, client)
}

func (h *HTTPRemoteService) ping(ctx context.Context, client *utils.HTTPClient) (time.Duration, error) {
	const op = "probe"

	start := time.Now()
	resp, err := client.R().SetContext(ctx).Get(pingPath)
	latency := time.Since(start)
	if err != nil {
		return latency, transportError(op, err)
	}

	return latency, mapHTTPError(op, resp)
}

// jsonRequest encodes body and signs it with [ContentHashHeader].
func (h *HTTPRemoteService) jsonRequest(ctx context.Context, op string, body models.Record) (*resty.Request, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, &RemoteError{Kind: KindValidation, Op: op, Err: fmt.Errorf("encode record: %w", err)}
	}

	return h.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader(ContentHashHeader, hex.EncodeToString(utils.Hash(data))).
		SetBody(data), nil
}

func queryValues(opts models.QueryOptions) url.Values {
	values := url.Values{}
	if opts.Limit > 0 {
		values.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		values.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.OrderBy != "" {
		values.Set("orderBy", opts.OrderBy)
	}
	if opts.Desc {
		values.Set("desc", "true")
	}
	for field, value := range opts.Filter {
		values.Set(FilterParamPrefix+field, value)
	}
	return values
}

// outgoingBody strips the client-only optimistic marker.
func outgoingBody(record models.Record) models.Record {
	body := record.WithoutPendingSync()
	if body == nil {
		body = models.Record{}
	}
	return body
}

func decodeRecord(op string, resp *resty.Response) (models.Record, error) {
	var record models.Record
	if err := json.Unmarshal(resp.Body(), &record); err != nil {
		return nil, &RemoteError{Kind: KindUnknown, StatusCode: resp.StatusCode(), Op: op, Err: fmt.Errorf("decode record: %w", err)}
	}
	return record, nil
}
