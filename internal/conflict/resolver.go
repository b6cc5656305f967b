package conflict

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/store"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
	"github.com/MKhiriev/go-offline-sync/models"
)

// Resolver reconciles conflicts according to a [StrategyTable].
type Resolver struct {
	table     *StrategyTable
	store     store.ConflictStore
	publisher events.Publisher
	logger    *logger.Logger
	now       func() time.Time

	// records and queue receive operator decisions; see [WithLocalState].
	records store.LocalStore
	queue   store.SyncQueue
	ids     *utils.UUIDGenerator
}

// Option configures a [Resolver].
type Option func(*Resolver)

// WithLocalState lets [Resolver.ResolveManually] apply a decision: the chosen
// value is cached and queued so the next drain delivers it.
func WithLocalState(records store.LocalStore, queue store.SyncQueue) Option {
	return func(r *Resolver) {
		r.records = records
		r.queue = queue
	}
}

// NewResolver wires a resolver. publisher may be nil; conflicts may be nil
// when the manual strategy is never used.
func NewResolver(table *StrategyTable, conflicts store.ConflictStore, publisher events.Publisher, log *logger.Logger, opts ...Option) *Resolver {
	if publisher == nil {
		publisher = events.Discard
	}
	r := &Resolver{
		table:     table,
		store:     conflicts,
		publisher: publisher,
		logger:    log.WithComponent("conflict-resolver"),
		now:       time.Now,
		ids:       utils.NewUUIDGenerator(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Strategies exposes the table the resolver consults.
func (r *Resolver) Strategies() *StrategyTable {
	return r.table
}

// NewConflict builds a conflict record. Its id is derived from the record
// identity and both payloads, so re-detecting the same divergence yields the
// same id.
func NewConflict(collection, recordID string, server, client models.Record, detectedAt time.Time) models.ConflictRecord {
	serverFP, _ := utils.Fingerprint(server)
	clientFP, _ := utils.Fingerprint(client)

	return models.ConflictRecord{
		ID:         utils.FingerprintParts(collection, recordID, serverFP, clientFP)[:32],
		Collection: collection,
		RecordID:   recordID,
		ServerData: server.Clone(),
		ClientData: client.Clone(),
		DetectedAt: detectedAt,
	}
}

// ResolveFor resolves c with the strategy registered for its collection.
func (r *Resolver) ResolveFor(ctx context.Context, c models.ConflictRecord) (models.Record, models.ConflictStrategy, error) {
	strategy := r.table.Get(c.Collection)
	resolved, err := r.Resolve(ctx, c, strategy)
	return resolved, strategy, err
}

// Resolve applies strategy to c and returns the record to keep. For the
// manual strategy the conflict is persisted, a pending event is emitted and
// the server data is returned until an operator decides.
func (r *Resolver) Resolve(ctx context.Context, c models.ConflictRecord, strategy models.ConflictStrategy) (models.Record, error) {
	if c.DetectedAt.IsZero() {
		c.DetectedAt = r.now()
	}
	c.Strategy = strategy

	log := r.logger.With().Str("func", "Resolver.Resolve").
		Str("conflict_id", c.ID).
		Str("collection", c.Collection).
		Str("record_id", c.RecordID).
		Str("strategy", string(strategy)).
		Logger()

	r.publisher.Publish(events.Event{Kind: events.ConflictDetected, Payload: events.ConflictNotice{Conflict: c}})

	var resolved models.Record
	switch strategy {
	case models.StrategyServerWins:
		resolved = c.ServerData.Clone()
	case models.StrategyClientWins:
		resolved = c.ClientData.Clone()
	case models.StrategyMerge:
		resolved = Merge(c.ServerData, c.ClientData)
	case models.StrategyManual:
		if r.store == nil {
			return nil, ErrNoConflictStore
		}
		if err := r.store.SaveConflict(ctx, c); err != nil {
			log.Err(err).Msg("failed to persist manual conflict")
			return nil, fmt.Errorf("save manual conflict: %w", err)
		}
		log.Info().Msg("conflict awaits manual resolution")
		r.publisher.Publish(events.Event{Kind: events.ManualConflictPending, Payload: events.ConflictNotice{Conflict: c}})
		return c.ServerData.Clone(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}

	if err := r.record(ctx, c, resolved); err != nil {
		log.Err(err).Msg("failed to record conflict resolution")
		return nil, err
	}
	log.Debug().Msg("conflict resolved automatically")

	return resolved, nil
}

// record stores an automatically resolved conflict for the audit trail. A
// resolver without a store only emits the event.
func (r *Resolver) record(ctx context.Context, c models.ConflictRecord, resolution models.Record) error {
	resolvedAt := r.now()
	if r.store != nil {
		if err := r.store.SaveConflict(ctx, c); err != nil {
			return fmt.Errorf("save conflict: %w", err)
		}
		err := r.store.MarkResolved(ctx, c.ID, resolution, resolvedAt)
		if err != nil && !errors.Is(err, store.ErrConflictAlreadyResolved) {
			return fmt.Errorf("mark conflict resolved: %w", err)
		}
	}

	c.Resolved = true
	c.Resolution = resolution
	c.ResolvedAt = &resolvedAt
	r.publisher.Publish(events.Event{Kind: events.ConflictResolved, Payload: events.ConflictNotice{Conflict: c}})
	return nil
}

// ResolveManually applies an operator's decision to a pending conflict and
// returns the resolved conflict. Unless chosen equals the server copy, it is
// written to the local store and queued against the server's version.
func (r *Resolver) ResolveManually(ctx context.Context, conflictID string, chosen models.Record) (models.ConflictRecord, error) {
	if len(chosen) == 0 {
		return models.ConflictRecord{}, ErrEmptyResolution
	}
	if r.store == nil {
		return models.ConflictRecord{}, ErrNoConflictStore
	}

	c, err := r.store.GetConflict(ctx, conflictID)
	if err != nil {
		return models.ConflictRecord{}, err
	}
	if c.Resolved {
		return models.ConflictRecord{}, store.ErrConflictAlreadyResolved
	}

	resolution := chosen.WithoutPendingSync()
	if resolution.ID() == "" {
		resolution[models.FieldID] = c.RecordID
	}

	if err = r.apply(ctx, c, resolution); err != nil {
		return models.ConflictRecord{}, err
	}

	resolvedAt := r.now()
	if err = r.store.MarkResolved(ctx, conflictID, resolution, resolvedAt); err != nil {
		return models.ConflictRecord{}, err
	}

	c.Resolved = true
	c.Resolution = resolution
	c.ResolvedAt = &resolvedAt

	r.logger.Info().Str("func", "Resolver.ResolveManually").
		Str("conflict_id", c.ID).
		Str("collection", c.Collection).
		Str("record_id", c.RecordID).
		Msg("conflict resolved by operator")
	r.publisher.Publish(events.Event{Kind: events.ConflictResolved, Payload: events.ConflictNotice{Conflict: c}})

	return c, nil
}

// apply makes an operator's decision effective. Keeping the server copy needs
// nothing beyond the cache the drain already wrote.
func (r *Resolver) apply(ctx context.Context, c models.ConflictRecord, resolution models.Record) error {
	if r.records == nil || r.queue == nil {
		return nil
	}

	log := r.logger.With().Str("func", "Resolver.apply").
		Str("conflict_id", c.ID).
		Str("collection", c.Collection).
		Str("record_id", c.RecordID).
		Logger()

	if equalValues(map[string]any(resolution), map[string]any(c.ServerData.WithoutPendingSync())) {
		log.Debug().Msg("server copy kept")
		return nil
	}

	kind := models.OperationUpdate
	payload := resolution.Clone()
	if c.Operation == models.OperationDelete &&
		equalValues(map[string]any(resolution), map[string]any(c.ClientData.WithoutPendingSync())) {
		kind = models.OperationDelete
		payload = models.Record{models.FieldID: c.RecordID}
	}
	payload[models.FieldID] = c.RecordID
	delete(payload, models.FieldVersion)
	if v := c.ServerData.Version(); v > 0 {
		payload[models.FieldVersion] = v
	}

	op := models.QueuedOperation{
		ID:         r.ids.Generate(),
		Kind:       kind,
		Collection: c.Collection,
		RecordID:   c.RecordID,
		Payload:    payload,
		CreatedAt:  r.now().UTC(),
	}
	if err := r.queue.Enqueue(ctx, op); err != nil {
		return fmt.Errorf("queue resolution of %s: %w", c.ID, err)
	}

	var err error
	if kind == models.OperationDelete {
		err = r.records.DeleteRecord(ctx, c.Collection, c.RecordID)
	} else {
		err = r.records.UpsertRecord(ctx, c.Collection, payload.WithPendingSync())
	}
	if err != nil {
		return fmt.Errorf("cache resolution of %s: %w", c.ID, err)
	}

	log.Info().Str("op_id", op.ID).Str("kind", string(kind)).Msg("operator resolution queued")
	return nil
}

// Pending lists conflicts waiting for an operator.
func (r *Resolver) Pending(ctx context.Context) ([]models.ConflictRecord, error) {
	if r.store == nil {
		return []models.ConflictRecord{}, nil
	}
	return r.store.ListPendingConflicts(ctx)
}
