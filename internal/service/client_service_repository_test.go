// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/adapter"
	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/mock"
	"github.com/MKhiriev/go-offline-sync/internal/resilience"
	"github.com/MKhiriev/go-offline-sync/internal/store"
	"github.com/MKhiriev/go-offline-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var fixedNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

type switchableOnline struct {
	online atomic.Bool
}

func newOnline(online bool) *switchableOnline {
	s := &switchableOnline{}
	s.online.Store(online)
	return s
}

func (s *switchableOnline) IsOnline() bool { return s.online.Load() }

// seqIDs hands out predictable ids.
type seqIDs struct {
	ops   int
	temps int
}

func (g *seqIDs) Generate() string {
	g.ops++
	return fmt.Sprintf("op-%d", g.ops)
}

func (g *seqIDs) TempID() string {
	g.temps++
	return fmt.Sprintf("%s%d", models.TempIDPrefix, g.temps)
}

func transientErr(op string) error {
	return &adapter.RemoteError{Kind: adapter.KindTransient, StatusCode: 503, Op: op, Err: adapter.ErrServerError}
}

type repoFixture struct {
	repo    *offlineRepository
	remote  *mock.MockRemoteService
	records *mock.MockLocalStore
	queue   *mock.MockSyncQueue
	online  *switchableOnline
	breaker *resilience.CircuitBreaker
}

func newRepoFixture(t *testing.T, online bool, threshold int) repoFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := repoFixture{
		remote:  mock.NewMockRemoteService(ctrl),
		records: mock.NewMockLocalStore(ctrl),
		queue:   mock.NewMockSyncQueue(ctrl),
		online:  newOnline(online),
		breaker: resilience.NewCircuitBreaker(
			config.Resilience{FailureThreshold: threshold, RecoveryTimeout: time.Minute},
			resilience.WithClock(func() time.Time { return fixedNow }),
		),
	}
	storages := &store.ClientStorages{Records: f.records, Queue: f.queue}

	repo := NewOfflineRepository(f.remote, storages, f.breaker, resilience.RetryPolicy{}, f.online, logger.Nop())
	f.repo = repo.(*offlineRepository)
	f.repo.ids = &seqIDs{}
	f.repo.now = func() time.Time { return fixedNow }
	return f
}

// ── List / GetOne ────────────────────────────────────────────────────────────

func TestOfflineRepository_List_OnlineRefreshesCache(t *testing.T) {
	f := newRepoFixture(t, true, 5)
	ctx := context.Background()
	server := []models.Record{{"id": "w1"}, {"id": "w2"}}

	f.remote.EXPECT().List(gomock.Any(), "widgets", models.QueryOptions{}).Return(server, nil)
	f.records.EXPECT().ReplaceCollection(gomock.Any(), "widgets", server).Return(nil)

	got, err := f.repo.List(ctx, "widgets", models.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, server, got)
}

func TestOfflineRepository_List_PartialPageDoesNotReplace(t *testing.T) {
	f := newRepoFixture(t, true, 5)
	opts := models.QueryOptions{Limit: 1, Filter: map[string]string{"status": "ok"}}
	server := []models.Record{{"id": "w1", "status": "ok"}}

	f.remote.EXPECT().List(gomock.Any(), "widgets", opts).Return(server, nil)
	f.records.EXPECT().UpsertRecord(gomock.Any(), "widgets", server[0]).Return(nil)

	got, err := f.repo.List(context.Background(), "widgets", opts)
	require.NoError(t, err)
	assert.Equal(t, server, got)
}

func TestOfflineRepository_List_RemoteFailureServesCache(t *testing.T) {
	f := newRepoFixture(t, true, 5)
	cached := []models.Record{{"id": "w1", "name": "stale"}}

	f.remote.EXPECT().List(gomock.Any(), "widgets", gomock.Any()).Return(nil, transientErr("list"))
	f.records.EXPECT().QueryCollection(gomock.Any(), "widgets", models.QueryOptions{}).Return(cached, nil)

	got, err := f.repo.List(context.Background(), "widgets", models.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, cached, got)
}

func TestOfflineRepository_List_OfflineSkipsRemote(t *testing.T) {
	f := newRepoFixture(t, false, 5)

	f.records.EXPECT().QueryCollection(gomock.Any(), "widgets", gomock.Any()).Return([]models.Record{}, nil)

	got, err := f.repo.List(context.Background(), "widgets", models.QueryOptions{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOfflineRepository_List_CacheErrorPropagates(t *testing.T) {
	f := newRepoFixture(t, false, 5)
	boom := errors.New("disk gone")

	f.records.EXPECT().QueryCollection(gomock.Any(), "widgets", gomock.Any()).Return(nil, boom)

	_, err := f.repo.List(context.Background(), "widgets", models.QueryOptions{})
	assert.ErrorIs(t, err, boom)
}

func TestOfflineRepository_GetOne(t *testing.T) {
	t.Run("online caches fresh copy", func(t *testing.T) {
		f := newRepoFixture(t, true, 5)
		rec := models.Record{"id": "w1", "version": int64(2)}

		f.remote.EXPECT().GetOne(gomock.Any(), "widgets", "w1").Return(rec, nil)
		f.records.EXPECT().UpsertRecord(gomock.Any(), "widgets", rec).Return(nil)

		got, err := f.repo.GetOne(context.Background(), "widgets", "w1")
		require.NoError(t, err)
		assert.Equal(t, rec, got)
	})

	t.Run("offline reads cache", func(t *testing.T) {
		f := newRepoFixture(t, false, 5)
		rec := models.Record{"id": "w1"}

		f.records.EXPECT().GetRecord(gomock.Any(), "widgets", "w1").Return(rec, nil)

		got, err := f.repo.GetOne(context.Background(), "widgets", "w1")
		require.NoError(t, err)
		assert.Equal(t, rec, got)
	})

	t.Run("missing everywhere", func(t *testing.T) {
		f := newRepoFixture(t, false, 5)

		f.records.EXPECT().GetRecord(gomock.Any(), "widgets", "w9").Return(nil, store.ErrRecordNotFound)

		_, err := f.repo.GetOne(context.Background(), "widgets", "w9")
		assert.ErrorIs(t, err, store.ErrRecordNotFound)
	})

	t.Run("empty id", func(t *testing.T) {
		f := newRepoFixture(t, true, 5)
		_, err := f.repo.GetOne(context.Background(), "widgets", "")
		assert.ErrorIs(t, err, ErrEmptyRecordID)
	})
}

// ── Create ───────────────────────────────────────────────────────────────────

func TestOfflineRepository_Create_OnlineWritesThrough(t *testing.T) {
	f := newRepoFixture(t, true, 5)
	created := models.Record{"id": "srv-1", "name": "bolt", "version": int64(1)}

	f.remote.EXPECT().Create(gomock.Any(), "widgets", models.Record{"name": "bolt"}).Return(created, nil)
	f.records.EXPECT().UpsertRecord(gomock.Any(), "widgets", created).Return(nil)

	got, err := f.repo.Create(context.Background(), "widgets", models.Record{"name": "bolt"})
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.False(t, got.IsPendingSync())
}

func TestOfflineRepository_Create_OfflineQueuesWithTempID(t *testing.T) {
	f := newRepoFixture(t, false, 5)

	wantOp := models.QueuedOperation{
		ID:         "op-1",
		Kind:       models.OperationCreate,
		Collection: "widgets",
		RecordID:   "tmp-1",
		Payload:    models.Record{"id": "tmp-1", "name": "bolt"},
		CreatedAt:  fixedNow,
	}
	optimistic := models.Record{"id": "tmp-1", "name": "bolt", "pendingSync": true}

	f.queue.EXPECT().Enqueue(gomock.Any(), wantOp).Return(nil)
	f.records.EXPECT().UpsertRecord(gomock.Any(), "widgets", optimistic).Return(nil)

	got, err := f.repo.Create(context.Background(), "widgets", models.Record{"name": "bolt"})
	require.NoError(t, err)
	assert.Equal(t, optimistic, got)
	assert.True(t, got.HasTempID())
}

func TestOfflineRepository_Create_EnqueueErrorPropagates(t *testing.T) {
	f := newRepoFixture(t, false, 5)
	boom := errors.New("queue unavailable")

	f.queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(boom)

	_, err := f.repo.Create(context.Background(), "widgets", models.Record{"name": "bolt"})
	assert.ErrorIs(t, err, boom)
}

// ── Update ───────────────────────────────────────────────────────────────────

func TestOfflineRepository_Update_OnlineSendsOverlay(t *testing.T) {
	f := newRepoFixture(t, true, 5)
	cached := models.Record{"id": "w1", "name": "old", "color": "red", "version": int64(3)}
	sent := models.Record{"id": "w1", "name": "X", "color": "red", "version": int64(3)}
	updated := models.Record{"id": "w1", "name": "X", "color": "red", "version": int64(4)}

	f.records.EXPECT().GetRecord(gomock.Any(), "widgets", "w1").Return(cached, nil)
	f.remote.EXPECT().Update(gomock.Any(), "widgets", "w1", sent).Return(updated, nil)
	f.records.EXPECT().UpsertRecord(gomock.Any(), "widgets", updated).Return(nil)

	got, err := f.repo.Update(context.Background(), "widgets", "w1", models.Record{"name": "X"})
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestOfflineRepository_Update_OfflineReturnsOptimistic(t *testing.T) {
	f := newRepoFixture(t, false, 5)
	cached := models.Record{"id": "w1", "name": "old", "version": int64(3)}
	queued := models.Record{
		"id":        "w1",
		"name":      "X",
		"version":   int64(3),
		"updatedAt": "2026-10-18T12:00:00Z",
	}

	f.records.EXPECT().GetRecord(gomock.Any(), "widgets", "w1").Return(cached, nil)
	f.queue.EXPECT().Enqueue(gomock.Any(), models.QueuedOperation{
		ID:         "op-1",
		Kind:       models.OperationUpdate,
		Collection: "widgets",
		RecordID:   "w1",
		Payload:    queued,
		CreatedAt:  fixedNow,
	}).Return(nil)
	f.records.EXPECT().UpsertRecord(gomock.Any(), "widgets", queued.WithPendingSync()).Return(nil)

	got, err := f.repo.Update(context.Background(), "widgets", "w1", models.Record{"name": "X"})
	require.NoError(t, err)
	assert.Equal(t, models.Record{"id": "w1", "name": "X", "pendingSync": true}, got)
}

func TestOfflineRepository_Update_TempIDSkipsRemote(t *testing.T) {
	f := newRepoFixture(t, true, 5)

	f.records.EXPECT().GetRecord(gomock.Any(), "widgets", "tmp-7").Return(nil, store.ErrRecordNotFound)
	f.queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil)
	f.records.EXPECT().UpsertRecord(gomock.Any(), "widgets", gomock.Any()).Return(nil)

	got, err := f.repo.Update(context.Background(), "widgets", "tmp-7", models.Record{"name": "X"})
	require.NoError(t, err)
	assert.True(t, got.IsPendingSync())
}

// ── Delete ───────────────────────────────────────────────────────────────────

func TestOfflineRepository_Delete(t *testing.T) {
	t.Run("online sends cached version", func(t *testing.T) {
		f := newRepoFixture(t, true, 5)

		f.records.EXPECT().GetRecord(gomock.Any(), "widgets", "w1").Return(models.Record{"id": "w1", "version": int64(3)}, nil)
		f.remote.EXPECT().Delete(gomock.Any(), "widgets", "w1", int64(3)).Return(nil)
		f.records.EXPECT().DeleteRecord(gomock.Any(), "widgets", "w1").Return(nil)

		got, err := f.repo.Delete(context.Background(), "widgets", "w1")
		require.NoError(t, err)
		assert.Equal(t, models.Record{"id": "w1"}, got)
	})

	t.Run("offline queues tombstone", func(t *testing.T) {
		f := newRepoFixture(t, false, 5)

		f.records.EXPECT().GetRecord(gomock.Any(), "widgets", "w1").Return(models.Record{"id": "w1", "version": int64(3)}, nil)
		f.queue.EXPECT().Enqueue(gomock.Any(), models.QueuedOperation{
			ID:         "op-1",
			Kind:       models.OperationDelete,
			Collection: "widgets",
			RecordID:   "w1",
			Payload:    models.Record{"id": "w1", "version": int64(3)},
			CreatedAt:  fixedNow,
		}).Return(nil)
		f.records.EXPECT().DeleteRecord(gomock.Any(), "widgets", "w1").Return(nil)

		got, err := f.repo.Delete(context.Background(), "widgets", "w1")
		require.NoError(t, err)
		assert.True(t, got.IsPendingSync())
		assert.Equal(t, "w1", got.ID())
	})
}

// ── Writes while offline or with the breaker open ───────────────────────────

// Every such write grows the queue by exactly one and carries the marker.
func TestOfflineRepository_WritesQueueExactlyOnce(t *testing.T) {
	f := newRepoFixture(t, true, 1)
	ctx := context.Background()

	var queued []models.QueuedOperation
	f.queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, op models.QueuedOperation) error {
			queued = append(queued, op)
			return nil
		}).Times(3)
	f.records.EXPECT().GetRecord(gomock.Any(), "widgets", "w1").Return(models.Record{"id": "w1"}, nil).Times(2)
	f.records.EXPECT().UpsertRecord(gomock.Any(), "widgets", gomock.Any()).Return(nil).Times(3)

	// remote failure opens the breaker (threshold 1)
	f.remote.EXPECT().Update(gomock.Any(), "widgets", "w1", gomock.Any()).Return(nil, transientErr("update")).Times(1)
	got, err := f.repo.Update(ctx, "widgets", "w1", models.Record{"name": "A"})
	require.NoError(t, err)
	assert.True(t, got.IsPendingSync())
	assert.Len(t, queued, 1)
	assert.Equal(t, models.CircuitOpen, f.breaker.State())

	// breaker open: the remote is not called again
	got, err = f.repo.Update(ctx, "widgets", "w1", models.Record{"name": "B"})
	require.NoError(t, err)
	assert.True(t, got.IsPendingSync())
	assert.Len(t, queued, 2)

	// offline
	f.online.online.Store(false)
	got, err = f.repo.Create(ctx, "widgets", models.Record{"name": "C"})
	require.NoError(t, err)
	assert.True(t, got.IsPendingSync())
	assert.Len(t, queued, 3)

	assert.Equal(t, []string{"op-1", "op-2", "op-3"}, []string{queued[0].ID, queued[1].ID, queued[2].ID})
}

func TestOfflineRepository_EmptyCollection(t *testing.T) {
	f := newRepoFixture(t, true, 5)
	ctx := context.Background()

	_, err := f.repo.List(ctx, "", models.QueryOptions{})
	assert.ErrorIs(t, err, ErrEmptyCollection)
	_, err = f.repo.Create(ctx, "", models.Record{})
	assert.ErrorIs(t, err, ErrEmptyCollection)
	_, err = f.repo.Delete(ctx, "", "w1")
	assert.ErrorIs(t, err, ErrEmptyCollection)
}
