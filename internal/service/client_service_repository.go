package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/adapter"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/resilience"
	"github.com/MKhiriev/go-offline-sync/internal/store"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
	"github.com/MKhiriev/go-offline-sync/models"
)

// Connectivity reports the runtime's online/offline state.
type Connectivity interface {
	IsOnline() bool
}

// IDGenerator produces queued operation ids and temporary record ids.
type IDGenerator interface {
	Generate() string
	TempID() string
}

type offlineRepository struct {
	remote  adapter.RemoteService
	records store.LocalStore
	queue   store.SyncQueue

	breaker *resilience.CircuitBreaker
	policy  resilience.RetryPolicy
	online  Connectivity
	ids     IDGenerator
	now     func() time.Time

	logger *logger.Logger
}

// NewOfflineRepository wires the facade. Remote calls go through breaker and
// are retried with policy; online may be nil, in which case every call
// attempts the remote service.
func NewOfflineRepository(
	remote adapter.RemoteService,
	storages *store.ClientStorages,
	breaker *resilience.CircuitBreaker,
	policy resilience.RetryPolicy,
	online Connectivity,
	log *logger.Logger,
) OfflineRepository {
	if policy.RetryIf == nil {
		policy = policy.WithRetryIf(adapter.IsRetryable)
	}
	return &offlineRepository{
		remote:  remote,
		records: storages.Records,
		queue:   storages.Queue,
		breaker: breaker,
		policy:  policy,
		online:  online,
		ids:     utils.NewUUIDGenerator(),
		now:     time.Now,
		logger:  log.WithComponent("offline-repository"),
	}
}

func (r *offlineRepository) List(ctx context.Context, collection string, opts models.QueryOptions) ([]models.Record, error) {
	if collection == "" {
		return nil, ErrEmptyCollection
	}
	log := r.logger.With().Str("func", "offlineRepository.List").Str("collection", collection).Logger()

	records, err := callRemote(ctx, r, func(ctx context.Context) ([]models.Record, error) {
		return r.remote.List(ctx, collection, opts)
	})
	if err == nil {
		if len(opts.Filter) == 0 && opts.Limit == 0 && opts.Offset == 0 {
			if err = r.records.ReplaceCollection(ctx, collection, records); err != nil {
				return nil, fmt.Errorf("refresh cached collection %s: %w", collection, err)
			}
		} else {
			// a partial page must not evict the rest of the cache
			for _, rec := range records {
				if err = r.records.UpsertRecord(ctx, collection, rec); err != nil {
					return nil, fmt.Errorf("cache record of %s: %w", collection, err)
				}
			}
		}
		return records, nil
	}

	log.Debug().Err(err).Msg("remote list failed, serving cached records")
	cached, err := r.records.QueryCollection(ctx, collection, opts)
	if err != nil {
		return nil, fmt.Errorf("read cached collection %s: %w", collection, err)
	}
	return cached, nil
}

func (r *offlineRepository) GetOne(ctx context.Context, collection, id string) (models.Record, error) {
	if err := validateTarget(collection, id); err != nil {
		return nil, err
	}
	log := r.logger.With().Str("func", "offlineRepository.GetOne").
		Str("collection", collection).Str("record_id", id).Logger()

	record, err := callRemote(ctx, r, func(ctx context.Context) (models.Record, error) {
		return r.remote.GetOne(ctx, collection, id)
	})
	if err == nil {
		if err = r.records.UpsertRecord(ctx, collection, record); err != nil {
			return nil, fmt.Errorf("cache record %s/%s: %w", collection, id, err)
		}
		return record, nil
	}

	log.Debug().Err(err).Msg("remote get failed, serving cached record")
	cached, err := r.records.GetRecord(ctx, collection, id)
	if err != nil {
		return nil, fmt.Errorf("read cached record %s/%s: %w", collection, id, err)
	}
	return cached, nil
}

func (r *offlineRepository) Create(ctx context.Context, collection string, data models.Record) (models.Record, error) {
	if collection == "" {
		return nil, ErrEmptyCollection
	}
	payload := data.WithoutPendingSync()
	if payload == nil {
		payload = models.Record{}
	}

	created, err := callRemote(ctx, r, func(ctx context.Context) (models.Record, error) {
		return r.remote.Create(ctx, collection, payload)
	})
	if err == nil {
		if err = r.records.UpsertRecord(ctx, collection, created); err != nil {
			return nil, fmt.Errorf("write through created record: %w", err)
		}
		return created, nil
	}

	if payload.ID() == "" {
		payload[models.FieldID] = r.ids.TempID()
	}

	optimistic := payload.WithPendingSync()
	if err = r.enqueue(ctx, models.OperationCreate, collection, payload.ID(), payload, err); err != nil {
		return nil, err
	}
	if err = r.records.UpsertRecord(ctx, collection, optimistic); err != nil {
		return nil, fmt.Errorf("cache optimistic record: %w", err)
	}
	return optimistic, nil
}

func (r *offlineRepository) Update(ctx context.Context, collection, id string, data models.Record) (models.Record, error) {
	if err := validateTarget(collection, id); err != nil {
		return nil, err
	}

	cached, err := r.cached(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	payload := overlay(cached, data)
	payload[models.FieldID] = id

	updated, err := callRemoteFor(ctx, r, id, func(ctx context.Context) (models.Record, error) {
		return r.remote.Update(ctx, collection, id, payload)
	})
	if err == nil {
		if err = r.records.UpsertRecord(ctx, collection, updated); err != nil {
			return nil, fmt.Errorf("write through updated record: %w", err)
		}
		return updated, nil
	}

	payload[models.FieldUpdatedAt] = r.stamp()
	if err = r.enqueue(ctx, models.OperationUpdate, collection, id, payload, err); err != nil {
		return nil, err
	}
	if err = r.records.UpsertRecord(ctx, collection, payload.WithPendingSync()); err != nil {
		return nil, fmt.Errorf("cache optimistic record: %w", err)
	}

	optimistic := data.WithPendingSync()
	optimistic[models.FieldID] = id
	return optimistic, nil
}

func (r *offlineRepository) Delete(ctx context.Context, collection, id string) (models.Record, error) {
	if err := validateTarget(collection, id); err != nil {
		return nil, err
	}

	cached, err := r.cached(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	var version int64
	if cached != nil {
		version = cached.Version()
	}

	_, err = callRemoteFor(ctx, r, id, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.remote.Delete(ctx, collection, id, version)
	})
	if err == nil {
		if err = r.records.DeleteRecord(ctx, collection, id); err != nil {
			return nil, fmt.Errorf("write through deleted record: %w", err)
		}
		return models.Record{models.FieldID: id}, nil
	}

	payload := models.Record{models.FieldID: id}
	if version > 0 {
		payload[models.FieldVersion] = version
	}
	if err = r.enqueue(ctx, models.OperationDelete, collection, id, payload, err); err != nil {
		return nil, err
	}
	if err = r.records.DeleteRecord(ctx, collection, id); err != nil {
		return nil, fmt.Errorf("remove optimistically deleted record: %w", err)
	}
	return payload.WithPendingSync(), nil
}

// Causes of a skipped remote call. They are logged, never returned.
var (
	errOffline  = errors.New("offline")
	errUnsynced = errors.New("record has not reached the remote service yet")
)

// callRemote runs op under the breaker and the retry policy unless the
// runtime is offline.
func callRemote[T any](ctx context.Context, r *offlineRepository, op func(ctx context.Context) (T, error)) (T, error) {
	if !r.isOnline() {
		var zero T
		return zero, errOffline
	}
	return resilience.Call(ctx, r.breaker, func(ctx context.Context) (T, error) {
		return resilience.RetryResult(ctx, r.policy, op)
	})
}

// callRemoteFor is callRemote for mutations of an existing record. A record
// still holding its temporary id is unknown remotely, so the mutation goes
// straight to the queue behind its pending create.
func callRemoteFor[T any](ctx context.Context, r *offlineRepository, id string, op func(ctx context.Context) (T, error)) (T, error) {
	if models.IsTempID(id) {
		var zero T
		return zero, errUnsynced
	}
	return callRemote(ctx, r, op)
}

func (r *offlineRepository) isOnline() bool {
	return r.online == nil || r.online.IsOnline()
}

func (r *offlineRepository) enqueue(ctx context.Context, kind models.OperationKind, collection, recordID string, payload models.Record, cause error) error {
	op := models.QueuedOperation{
		ID:         r.ids.Generate(),
		Kind:       kind,
		Collection: collection,
		RecordID:   recordID,
		Payload:    payload.Clone(),
		CreatedAt:  r.now().UTC(),
	}
	if err := r.queue.Enqueue(ctx, op); err != nil {
		return fmt.Errorf("enqueue %s of %s/%s: %w", kind, collection, recordID, err)
	}

	r.logger.Info().Str("func", "offlineRepository.enqueue").
		Str("op_id", op.ID).
		Str("kind", string(kind)).
		Str("collection", collection).
		Str("record_id", recordID).
		AnErr("cause", cause).
		Msg("operation queued for replay")
	return nil
}

// cached returns the locally known copy of a record, or nil.
func (r *offlineRepository) cached(ctx context.Context, collection, id string) (models.Record, error) {
	rec, err := r.records.GetRecord(ctx, collection, id)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cached record %s/%s: %w", collection, id, err)
	}
	return rec, nil
}

func (r *offlineRepository) stamp() string {
	return r.now().UTC().Format(time.RFC3339Nano)
}

// overlay returns base with every field of data set on top of it. The
// pendingSync marker of either side is dropped.
func overlay(base, data models.Record) models.Record {
	out := base.WithoutPendingSync()
	if out == nil {
		out = models.Record{}
	}
	for k, v := range data.Clone() {
		out[k] = v
	}
	delete(out, models.FieldPendingSync)
	return out
}

func validateTarget(collection, id string) error {
	if collection == "" {
		return ErrEmptyCollection
	}
	if id == "" {
		return ErrEmptyRecordID
	}
	return nil
}
