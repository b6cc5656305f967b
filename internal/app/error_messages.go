// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared application-layer constants used across the
// reference server handlers and middleware.
//
// All Msg* constants are human-readable message strings written into HTTP
// response bodies when the underlying error must not leak to the caller.
package app

const (
	// MsgInvalidJSON is returned when a request body cannot be decoded as a
	// JSON object.
	MsgInvalidJSON = "invalid JSON was passed"

	// MsgInternalServerError is returned when an unexpected server-side
	// failure occurs that the client cannot resolve.
	MsgInternalServerError = "internal server error"

	// MsgUnauthorized is returned when a bearer token is expired, forged or
	// issued by someone else.
	MsgUnauthorized = "token is expired or invalid"

	// MsgIntegrityCheckFailed is returned when a request body does not match
	// its content hash.
	MsgIntegrityCheckFailed = "integrity check failed"

	// MsgStorageBusy is returned with 503 when storage failed transiently
	// and the request may be retried.
	MsgStorageBusy = "storage is temporarily unavailable, retry later"
)
