package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/adapter"
	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/conflict"
	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/resilience"
	"github.com/MKhiriev/go-offline-sync/internal/store"
	"github.com/MKhiriev/go-offline-sync/models"
	"github.com/rs/zerolog"
)

type syncService struct {
	remote      adapter.RemoteService
	records     store.LocalStore
	queue       store.SyncQueue
	deadLetters store.DeadLetterStore

	policy    resilience.RetryPolicy
	detector  conflict.Detector
	resolver  *conflict.Resolver
	publisher events.Publisher

	maxRetries  int
	keepTempIDs bool

	inFlight atomic.Bool
	now      func() time.Time

	logger *logger.Logger
}

// NewSyncService wires the queue drain. The drain never goes through the
// circuit breaker: it runs right after connectivity was confirmed and is
// allowed to probe the remote service on its own.
func NewSyncService(
	remote adapter.RemoteService,
	storages *store.ClientStorages,
	policy resilience.RetryPolicy,
	resolver *conflict.Resolver,
	cfg config.ClientSync,
	publisher events.Publisher,
	log *logger.Logger,
) SyncService {
	if publisher == nil {
		publisher = events.Discard
	}
	maxRetries := cfg.MaxReplayRetries
	if maxRetries <= 0 {
		maxRetries = config.DefaultMaxReplayRetries
	}
	return &syncService{
		remote:      remote,
		records:     storages.Records,
		queue:       storages.Queue,
		deadLetters: storages.DeadLetters,
		policy:      policy.WithRetryIf(adapter.IsRetryable),
		detector:    conflict.NewDetector(cfg.KeyFields),
		resolver:    resolver,
		publisher:   publisher,
		maxRetries:  maxRetries,
		keepTempIDs: cfg.KeepTempIDs,
		now:         time.Now,
		logger:      log.WithComponent("sync-service"),
	}
}

// replayOutcome says what happened to one queued operation.
type replayOutcome int

const (
	outcomeReplayed replayOutcome = iota
	outcomeConflict
	outcomeFailed
	outcomeDropped
)

func (s *syncService) Drain(ctx context.Context) (events.DrainSummary, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return events.DrainSummary{}, ErrDrainInProgress
	}
	defer s.inFlight.Store(false)

	log := s.logger.With().Str("func", "syncService.Drain").Logger()

	ops, err := s.queue.ListPending(ctx)
	if err != nil {
		return events.DrainSummary{}, fmt.Errorf("list pending operations: %w", err)
	}
	if len(ops) == 0 {
		return events.DrainSummary{}, nil
	}
	log.Info().Int("pending", len(ops)).Msg("draining sync queue")

	var summary events.DrainSummary
	for i := 0; i < len(ops); i++ {
		if err = ctx.Err(); err != nil {
			break
		}

		var outcome replayOutcome
		outcome, err = s.replay(ctx, &ops[i], ops[i+1:])
		if err != nil {
			break
		}
		switch outcome {
		case outcomeReplayed:
			summary.Replayed++
		case outcomeConflict:
			summary.Conflicts++
		case outcomeFailed:
			summary.Failed++
		case outcomeDropped:
			summary.Dropped++
		}
	}
	if err != nil {
		log.Err(err).Msg("drain interrupted")
		return summary, err
	}

	remaining, err := s.queue.Len(ctx)
	if err != nil {
		return summary, fmt.Errorf("count remaining operations: %w", err)
	}
	summary.Remaining = remaining

	log.Info().
		Int("replayed", summary.Replayed).
		Int("failed", summary.Failed).
		Int("dropped", summary.Dropped).
		Int("conflicts", summary.Conflicts).
		Int("remaining", summary.Remaining).
		Msg("sync queue drained")
	s.publisher.Publish(events.Event{Kind: events.SyncQueueDrained, Payload: summary})

	return summary, nil
}

func (s *syncService) DeadLetters(ctx context.Context) ([]models.DeadLetter, error) {
	return s.deadLetters.ListDeadLetters(ctx)
}

// replay sends one operation. A returned error aborts the drain; it is only
// produced by the local store or by cancellation.
func (s *syncService) replay(ctx context.Context, op *models.QueuedOperation, rest []models.QueuedOperation) (replayOutcome, error) {
	log := s.logger.With().Str("func", "syncService.replay").
		Str("op_id", op.ID).
		Str("kind", string(op.Kind)).
		Str("collection", op.Collection).
		Str("record_id", op.RecordID).
		Logger()

	var result models.Record
	err := resilience.RunWithRetry(ctx, s.policy, func(ctx context.Context) error {
		var err error
		result, err = s.send(ctx, *op)
		return err
	})

	switch {
	case err == nil:
		if err = s.queue.Remove(ctx, op.ID); err != nil {
			return 0, fmt.Errorf("remove replayed operation %s: %w", op.ID, err)
		}
		if err = s.applyReplayed(ctx, log, *op, result, rest); err != nil {
			return 0, err
		}
		log.Debug().Msg("operation replayed")
		return outcomeReplayed, nil

	case ctx.Err() != nil:
		return 0, ctx.Err()

	case op.Kind == models.OperationDelete && adapter.KindOf(err) == adapter.KindNotFound:
		// already gone remotely
		if err = s.queue.Remove(ctx, op.ID); err != nil {
			return 0, fmt.Errorf("remove replayed operation %s: %w", op.ID, err)
		}
		return outcomeReplayed, nil

	case op.Kind != models.OperationCreate && adapter.KindOf(err) == adapter.KindConflict:
		cerr := s.reconcile(ctx, log, *op)
		if cerr == nil {
			if err = s.queue.Remove(ctx, op.ID); err != nil {
				return 0, fmt.Errorf("remove conflicting operation %s: %w", op.ID, err)
			}
			return outcomeConflict, nil
		}
		if isLocalFailure(cerr) {
			return 0, cerr
		}
		err = cerr
	}

	return s.fail(ctx, log, *op, err)
}

// send performs the remote call matching the operation kind.
func (s *syncService) send(ctx context.Context, op models.QueuedOperation) (models.Record, error) {
	switch op.Kind {
	case models.OperationCreate:
		return s.remote.Create(ctx, op.Collection, op.Payload)
	case models.OperationUpdate:
		return s.remote.Update(ctx, op.Collection, op.RecordID, op.Payload)
	case models.OperationDelete:
		return nil, s.remote.Delete(ctx, op.Collection, op.RecordID, op.Payload.Version())
	default:
		return nil, fmt.Errorf("%w: %q", store.ErrInvalidOperation, op.Kind)
	}
}

// applyReplayed writes the confirmed result into the cache and reconciles a
// temporary id with the one the server assigned.
func (s *syncService) applyReplayed(ctx context.Context, log zerolog.Logger, op models.QueuedOperation, result models.Record, rest []models.QueuedOperation) error {
	switch op.Kind {
	case models.OperationDelete:
		return wrapLocal(s.records.DeleteRecord(ctx, op.Collection, op.RecordID))
	case models.OperationUpdate:
		return wrapLocal(s.records.UpsertRecord(ctx, op.Collection, result))
	}

	serverID := result.ID()
	if !models.IsTempID(op.RecordID) || serverID == "" || serverID == op.RecordID {
		return wrapLocal(s.records.UpsertRecord(ctx, op.Collection, result))
	}

	if err := s.records.DeleteRecord(ctx, op.Collection, op.RecordID); err != nil {
		return wrapLocal(err)
	}
	if err := s.records.UpsertRecord(ctx, op.Collection, result); err != nil {
		return wrapLocal(err)
	}
	if s.keepTempIDs {
		return nil
	}

	n, err := s.queue.RewriteRecordID(ctx, op.Collection, op.RecordID, serverID)
	if err != nil {
		return wrapLocal(err)
	}
	rewriteRecordID(rest, op.Collection, op.RecordID, serverID)
	log.Info().
		Str("temp_id", op.RecordID).
		Str("server_id", serverID).
		Int("rewritten", n).
		Msg("temporary id reconciled")
	return nil
}

// reconcile handles a version conflict reported for a queued update or
// delete.
func (s *syncService) reconcile(ctx context.Context, log zerolog.Logger, op models.QueuedOperation) error {
	server, err := s.remote.GetOne(ctx, op.Collection, op.RecordID)
	if err != nil {
		if op.Kind == models.OperationDelete && adapter.KindOf(err) == adapter.KindNotFound {
			return wrapLocal(s.records.DeleteRecord(ctx, op.Collection, op.RecordID))
		}
		return fmt.Errorf("fetch server copy: %w", err)
	}

	client := op.Payload
	if op.Kind == models.OperationUpdate && !s.detector.Detect(server, client) {
		log.Debug().Msg("server copy supersedes queued update")
		return wrapLocal(s.records.UpsertRecord(ctx, op.Collection, server))
	}

	c := conflict.NewConflict(op.Collection, op.RecordID, server, client, s.now().UTC())
	c.Operation = op.Kind
	resolved, strategy, err := s.resolver.ResolveFor(ctx, c)
	if err != nil {
		return wrapLocal(err)
	}
	log = log.With().Str("conflict_id", c.ID).Str("strategy", string(strategy)).Logger()

	switch {
	case op.Kind == models.OperationDelete && strategy == models.StrategyClientWins:
		if err = s.remote.Delete(ctx, op.Collection, op.RecordID, server.Version()); err != nil {
			return fmt.Errorf("re-send delete: %w", err)
		}
		log.Info().Msg("delete re-sent over server version")
		return wrapLocal(s.records.DeleteRecord(ctx, op.Collection, op.RecordID))

	case op.Kind == models.OperationUpdate && (strategy == models.StrategyClientWins || strategy == models.StrategyMerge):
		resolved[models.FieldVersion] = server.Version()
		delete(resolved, models.FieldPendingSync)
		updated, err := s.remote.Update(ctx, op.Collection, op.RecordID, resolved)
		if err != nil {
			return fmt.Errorf("re-send resolved update: %w", err)
		}
		log.Info().Msg("resolved record re-sent over server version")
		return wrapLocal(s.records.UpsertRecord(ctx, op.Collection, updated))

	default:
		// server-wins and merge of a delete keep the server copy; manual
		// keeps it until ResolveManually queues the operator's choice
		return wrapLocal(s.records.UpsertRecord(ctx, op.Collection, server))
	}
}

// fail counts a failed replay and moves the operation to the dead-letter
// partition once it ran out of retries.
func (s *syncService) fail(ctx context.Context, log zerolog.Logger, op models.QueuedOperation, cause error) (replayOutcome, error) {
	retries, err := s.queue.IncrementRetry(ctx, op.ID)
	if err != nil {
		return 0, fmt.Errorf("increment retry of %s: %w", op.ID, err)
	}
	if retries <= s.maxRetries {
		log.Debug().Err(cause).Int("retry_count", retries).Msg("replay failed, operation kept")
		return outcomeFailed, nil
	}

	op.RetryCount = retries
	if err = s.deadLetters.Bury(ctx, op, cause.Error(), s.now().UTC()); err != nil {
		return 0, fmt.Errorf("dead-letter operation %s: %w", op.ID, err)
	}

	log.Warn().
		Err(cause).
		Int("retry_count", retries).
		Interface("payload", op.Payload).
		Msg("operation dropped after exhausting replay retries; moved to dead letters")
	s.publisher.Publish(events.Event{
		Kind:    events.OperationDropped,
		Payload: events.Drop{Operation: op, LastError: cause.Error()},
	})
	return outcomeDropped, nil
}

// rewriteRecordID mirrors store.SyncQueue.RewriteRecordID on the slice of
// operations the drain has already loaded.
func rewriteRecordID(ops []models.QueuedOperation, collection, oldID, newID string) {
	for i := range ops {
		if ops[i].Collection != collection {
			continue
		}
		if ops[i].RecordID == oldID {
			ops[i].RecordID = newID
		}
		if ops[i].Payload != nil && ops[i].Payload.ID() == oldID {
			ops[i].Payload[models.FieldID] = newID
		}
	}
}

// localError marks failures of the local store, which abort the drain
// instead of counting against the operation.
type localError struct {
	err error
}

func (e *localError) Error() string { return "local store: " + e.err.Error() }
func (e *localError) Unwrap() error { return e.err }

func wrapLocal(err error) error {
	if err == nil {
		return nil
	}
	return &localError{err: err}
}

func isLocalFailure(err error) bool {
	var le *localError
	return errors.As(err, &le)
}
