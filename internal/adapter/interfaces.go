// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer abstractions for talking to the
// Remote Data Service.
//
// The primary abstraction is [RemoteService], which decouples the sync engine
// from the underlying protocol. The package ships an HTTP/REST implementation
// ([NewHTTPRemoteService]) plus two [FallbackTransport] implementations used by
// the connection health monitor when the primary path looks structurally
// broken: an HTTP scheme downgrade and a gRPC health check.
//
// Every error returned by the adapter is a [*RemoteError] carrying an
// [ErrorKind], so callers classify failures with [KindOf] instead of
// inspecting message text.
package adapter

import (
	"context"
	"time"

	"github.com/MKhiriev/go-offline-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_service_mock.go -package=mock

// RemoteService is the networked CRUD store the engine synchronises with.
// Records are grouped into named collections and keyed by their "id" field.
type RemoteService interface {
	// List returns the records of collection narrowed by opts.
	List(ctx context.Context, collection string, opts models.QueryOptions) ([]models.Record, error)

	// GetOne returns a single record. A missing record yields a
	// [*RemoteError] of kind [KindNotFound].
	GetOne(ctx context.Context, collection, id string) (models.Record, error)

	// Create stores a new record and returns the authoritative copy, including
	// the server-assigned id and version. A client-generated temporary id is
	// never sent to the server.
	Create(ctx context.Context, collection string, record models.Record) (models.Record, error)

	// Update overwrites record id. When record carries a non-zero version the
	// server rejects the write with [KindConflict] if its copy has moved on.
	Update(ctx context.Context, collection, id string, record models.Record) (models.Record, error)

	// Delete removes record id. A non-zero version enables the same optimistic
	// check as Update.
	Delete(ctx context.Context, collection, id string, version int64) error

	// Probe performs a lightweight reachability check and returns the
	// observed round-trip latency.
	Probe(ctx context.Context) (time.Duration, error)
}

// FallbackTransport is an alternate path to the Remote Data Service tried by
// the health monitor during recovery.
type FallbackTransport interface {
	// Name identifies the transport in logs and events.
	Name() string
	// Engage checks the alternate path and, on success, switches traffic to
	// it where that is possible.
	Engage(ctx context.Context) error
}
