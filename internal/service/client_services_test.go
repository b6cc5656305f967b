// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/conflict"
	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/monitor"
	"github.com/MKhiriev/go-offline-sync/internal/resilience"
	"github.com/MKhiriev/go-offline-sync/internal/store"
	"github.com/MKhiriev/go-offline-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engine struct {
	services *ClientServices
	resolver *conflict.Resolver
	storages *store.ClientStorages
	remote   *fakeRemote
	signal   *monitor.Signal
	bus      *events.Bus
}

// newEngine wires the client services over a real sqlite file and an
// in-memory remote service.
func newEngine(t *testing.T) engine {
	t.Helper()
	return newEngineWithStrategies(t, nil)
}

func newEngineWithStrategies(t *testing.T, strategies map[string]models.ConflictStrategy) engine {
	t.Helper()
	ctx := context.Background()
	log := logger.Nop()

	storages, err := store.NewClientStorages(ctx, config.ClientStorage{
		DB: config.ClientDB{DSN: filepath.Join(t.TempDir(), "cache.db")},
	}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storages.Close() })

	cfg := &config.ClientConfig{
		Resilience: config.Resilience{FailureThreshold: 5, RecoveryTimeout: time.Minute},
		Sync:       config.ClientSync{MaxReplayRetries: 3, Interval: time.Hour},
	}
	bus := events.NewBus()
	t.Cleanup(bus.Close)

	signal := monitor.NewSignal(true, bus)
	breaker := resilience.NewCircuitBreaker(cfg.Resilience, resilience.WithPublisher(bus))
	resolver := conflict.NewResolver(conflict.NewStrategyTable(strategies), storages.Conflicts, bus, log,
		conflict.WithLocalState(storages.Records, storages.Queue))
	remote := newFakeRemote()

	return engine{
		services: NewClientServices(remote, storages, breaker, resolver, signal, cfg, bus, log),
		resolver: resolver,
		storages: storages,
		remote:   remote,
		signal:   signal,
		bus:      bus,
	}
}

func (e engine) cutNetwork() {
	e.remote.setDown(true)
	e.signal.SetOnline(false)
}

func (e engine) restoreNetwork() {
	e.remote.setDown(false)
	e.signal.SetOnline(true)
}

func queueLen(t *testing.T, e engine) int {
	t.Helper()
	n, err := e.storages.Queue.Len(context.Background())
	require.NoError(t, err)
	return n
}

func TestEngine_WidgetsScenario(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	repo := e.services.Repository

	e.remote.seed("widgets",
		models.Record{"id": "w1", "name": "bolt"},
		models.Record{"id": "w2", "name": "nut"},
		models.Record{"id": "w3", "name": "gear"},
	)

	cached, err := e.storages.Records.GetCollection(ctx, "widgets")
	require.NoError(t, err)
	require.Empty(t, cached)

	listed, err := repo.List(ctx, "widgets", models.QueryOptions{})
	require.NoError(t, err)
	assert.Len(t, listed, 3)
	cached, err = e.storages.Records.GetCollection(ctx, "widgets")
	require.NoError(t, err)
	assert.Len(t, cached, 3)

	e.cutNetwork()

	w1, err := repo.GetOne(ctx, "widgets", "w1")
	require.NoError(t, err)
	assert.Equal(t, "bolt", w1["name"])

	updated, err := repo.Update(ctx, "widgets", "w1", models.Record{"name": "X"})
	require.NoError(t, err)
	assert.Equal(t, models.Record{"id": "w1", "name": "X", "pendingSync": true}, updated)
	assert.Equal(t, 1, queueLen(t, e))

	e.restoreNetwork()

	summary, err := e.services.SyncService.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Replayed)
	assert.Equal(t, 0, queueLen(t, e))
	assert.Equal(t, "X", e.remote.record("widgets", "w1")["name"])

	w1, err = e.storages.Records.GetRecord(ctx, "widgets", "w1")
	require.NoError(t, err)
	assert.False(t, w1.IsPendingSync())
}

func TestEngine_OfflineCreateRoundTrip(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	e.cutNetwork()
	created, err := e.services.Repository.Create(ctx, "widgets", models.Record{"name": "spring"})
	require.NoError(t, err)
	require.True(t, created.HasTempID())
	require.True(t, created.IsPendingSync())

	// a follow-up edit of the not yet synced record
	_, err = e.services.Repository.Update(ctx, "widgets", created.ID(), models.Record{"name": "coil"})
	require.NoError(t, err)
	assert.Equal(t, 2, queueLen(t, e))

	e.restoreNetwork()
	_, err = e.services.SyncService.Drain(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, queueLen(t, e))
	assert.Equal(t, 1, e.remote.callCount("create"))
	require.Len(t, e.remote.creates, 1)
	assert.Equal(t, "spring", e.remote.creates[0]["name"])

	server := e.remote.record("widgets", "srv-1")
	assert.Equal(t, "coil", server["name"])

	_, err = e.storages.Records.GetRecord(ctx, "widgets", created.ID())
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
	local, err := e.storages.Records.GetRecord(ctx, "widgets", "srv-1")
	require.NoError(t, err)
	assert.Equal(t, "coil", local["name"])

	// nothing left to replay
	_, err = e.services.SyncService.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, e.remote.callCount("create"))
}

func TestEngine_OnlineTransitionTriggersDrain(t *testing.T) {
	e := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e.remote.seed("widgets", models.Record{"id": "w1", "name": "bolt"})
	_, err := e.services.Repository.List(ctx, "widgets", models.QueryOptions{})
	require.NoError(t, err)

	drained := make(chan events.DrainSummary, 1)
	e.bus.Subscribe(func(ev events.Event) {
		drained <- ev.Payload.(events.DrainSummary)
	}, events.SyncQueueDrained)
	e.bus.Subscribe(func(events.Event) { e.services.SyncJob.Trigger() }, events.Online)

	e.services.SyncJob.Start(ctx)
	defer e.services.SyncJob.Stop()

	e.cutNetwork()
	_, err = e.services.Repository.Delete(ctx, "widgets", "w1")
	require.NoError(t, err)

	e.restoreNetwork()

	select {
	case summary := <-drained:
		assert.Equal(t, 1, summary.Replayed)
	case <-time.After(5 * time.Second):
		t.Fatal("drain was not triggered by the online transition")
	}
	assert.Nil(t, e.remote.record("widgets", "w1"))
}

func TestEngine_OperatorChoiceReachesCacheAndRemote(t *testing.T) {
	e := newEngineWithStrategies(t, map[string]models.ConflictStrategy{"widgets": models.StrategyManual})
	ctx := context.Background()

	e.remote.seed("widgets", models.Record{"id": "w1", "name": "bolt"})
	_, err := e.services.Repository.List(ctx, "widgets", models.QueryOptions{})
	require.NoError(t, err)

	e.cutNetwork()
	_, err = e.services.Repository.Update(ctx, "widgets", "w1", models.Record{"name": "client"})
	require.NoError(t, err)

	// someone else edits the record meanwhile
	e.remote.seed("widgets", models.Record{"id": "w1", "name": "server", "version": int64(2)})
	e.restoreNetwork()

	summary, err := e.services.SyncService.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Conflicts)
	assert.Equal(t, 0, queueLen(t, e))

	pending, err := e.resolver.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.OperationUpdate, pending[0].Operation)

	cached, err := e.storages.Records.GetRecord(ctx, "widgets", "w1")
	require.NoError(t, err)
	assert.Equal(t, "server", cached["name"], "server copy is served until the operator decides")

	_, err = e.resolver.ResolveManually(ctx, pending[0].ID, pending[0].ClientData)
	require.NoError(t, err)

	cached, err = e.storages.Records.GetRecord(ctx, "widgets", "w1")
	require.NoError(t, err)
	assert.Equal(t, "client", cached["name"])
	assert.True(t, cached.IsPendingSync())
	assert.Equal(t, 1, queueLen(t, e))

	summary, err = e.services.SyncService.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Replayed)
	assert.Equal(t, 0, queueLen(t, e))

	server := e.remote.record("widgets", "w1")
	assert.Equal(t, "client", server["name"])
	assert.Equal(t, int64(3), server.Version())

	cached, err = e.storages.Records.GetRecord(ctx, "widgets", "w1")
	require.NoError(t, err)
	assert.Equal(t, "client", cached["name"])
	assert.False(t, cached.IsPendingSync())

	pending, err = e.resolver.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestEngine_OperatorKeepsServerCopy(t *testing.T) {
	e := newEngineWithStrategies(t, map[string]models.ConflictStrategy{"widgets": models.StrategyManual})
	ctx := context.Background()

	e.remote.seed("widgets", models.Record{"id": "w1", "name": "bolt"})
	_, err := e.services.Repository.List(ctx, "widgets", models.QueryOptions{})
	require.NoError(t, err)

	e.cutNetwork()
	_, err = e.services.Repository.Update(ctx, "widgets", "w1", models.Record{"name": "client"})
	require.NoError(t, err)
	e.remote.seed("widgets", models.Record{"id": "w1", "name": "server", "version": int64(2)})
	e.restoreNetwork()

	_, err = e.services.SyncService.Drain(ctx)
	require.NoError(t, err)
	pending, err := e.resolver.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	_, err = e.resolver.ResolveManually(ctx, pending[0].ID, pending[0].ServerData)
	require.NoError(t, err)

	assert.Equal(t, 0, queueLen(t, e))
	assert.Equal(t, 1, e.remote.callCount("update"), "only the rejected replay reached the remote")
	cached, err := e.storages.Records.GetRecord(ctx, "widgets", "w1")
	require.NoError(t, err)
	assert.Equal(t, "server", cached["name"])
}
