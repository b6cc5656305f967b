// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import "context"

// Client defines the minimal lifecycle contract for runnable client
// applications.
type Client interface {
	// Run starts the client application and blocks until ctx is cancelled or
	// the operator quits the console.
	Run(ctx context.Context) error

	// Close releases resources held by the application.
	Close() error
}
