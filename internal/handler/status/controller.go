// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package status

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/models"
)

// Report is the engine status shown to operators.
type Report struct {
	Online           bool                     `json:"online"`
	Connection       models.ConnectionMetrics `json:"connection"`
	Breaker          models.BreakerSnapshot   `json:"breaker"`
	QueueLength      int                      `json:"queueLength"`
	PendingConflicts int                      `json:"pendingConflicts"`
}

// Controller carries out operator commands against the engine. It is shared
// by the HTTP API and the terminal console.
type Controller struct {
	deps Dependencies
}

func NewController(deps Dependencies) *Controller {
	return &Controller{deps: deps}
}

// Report collects a consistent-enough view of every component. Each part is
// read under its own lock; the parts are not captured atomically together.
func (c *Controller) Report(ctx context.Context) (Report, error) {
	r := Report{
		Online:     c.deps.Online.IsOnline(),
		Connection: c.deps.Monitor.Metrics(),
		Breaker:    c.deps.Breaker.Snapshot(),
	}

	n, err := c.deps.Queue.Len(ctx)
	if err != nil {
		return r, fmt.Errorf("queue length: %w", err)
	}
	r.QueueLength = n

	pending, err := c.deps.Conflicts.Pending(ctx)
	if err != nil {
		return r, fmt.Errorf("pending conflicts: %w", err)
	}
	r.PendingConflicts = len(pending)

	return r, nil
}

func (c *Controller) ResetBreaker() models.BreakerSnapshot {
	c.deps.Breaker.Reset()
	return c.deps.Breaker.Snapshot()
}

func (c *Controller) Probe(ctx context.Context) (models.ConnectionMetrics, error) {
	return c.deps.Monitor.ProbeNow(ctx)
}

func (c *Controller) Sync(ctx context.Context) (events.DrainSummary, error) {
	return c.deps.Sync.Drain(ctx)
}

func (c *Controller) PendingConflicts(ctx context.Context) ([]models.ConflictRecord, error) {
	return c.deps.Conflicts.Pending(ctx)
}

func (c *Controller) ResolveConflict(ctx context.Context, id string, chosen models.Record) (models.ConflictRecord, error) {
	return c.deps.Conflicts.ResolveManually(ctx, id, chosen)
}

func (c *Controller) Strategies() map[string]models.ConflictStrategy {
	return c.deps.Conflicts.Strategies().Snapshot()
}

func (c *Controller) SetStrategy(collection string, strategy models.ConflictStrategy) error {
	return c.deps.Conflicts.Strategies().Set(collection, strategy)
}

func (c *Controller) DeadLetters(ctx context.Context) ([]models.DeadLetter, error) {
	return c.deps.Sync.DeadLetters(ctx)
}
