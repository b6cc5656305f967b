// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// Sentinel errors produced by this package while parsing requests. Callers
// can match against them with [errors.Is].
var (
	// ErrEmptyAuthorizationHeader is returned by the auth middleware when the
	// incoming request does not include an "Authorization" header at all.
	ErrEmptyAuthorizationHeader = errors.New("empty `Authorization` header")

	// ErrInvalidAuthorizationHeader is returned when the "Authorization"
	// header is not of the form "Bearer <token>".
	ErrInvalidAuthorizationHeader = errors.New("invalid `Authorization` header")

	// ErrEmptyToken is returned when the "Authorization" header contains the
	// expected scheme prefix but the token value itself is an empty string.
	ErrEmptyToken = errors.New("empty token in `Authorization` header")

	// ErrInvalidIfMatchHeader is returned when If-Match is not a
	// non-negative record version.
	ErrInvalidIfMatchHeader = errors.New("invalid `If-Match` header: expected a record version")

	// ErrInvalidQueryParameter is returned for malformed limit, offset or
	// desc query parameters.
	ErrInvalidQueryParameter = errors.New("invalid query parameter")
)
