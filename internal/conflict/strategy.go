package conflict

import (
	"fmt"
	"maps"
	"sync"

	"github.com/MKhiriev/go-offline-sync/models"
)

// DefaultStrategy applies to collections without an explicit entry.
const DefaultStrategy = models.StrategyServerWins

// StrategyTable maps collections to conflict strategies. It is safe for
// concurrent use.
type StrategyTable struct {
	mu         sync.RWMutex
	strategies map[string]models.ConflictStrategy
}

// NewStrategyTable returns a table seeded with initial.
func NewStrategyTable(initial map[string]models.ConflictStrategy) *StrategyTable {
	t := &StrategyTable{strategies: make(map[string]models.ConflictStrategy, len(initial))}
	maps.Copy(t.strategies, initial)
	return t
}

// Get returns the strategy for collection, or [DefaultStrategy].
func (t *StrategyTable) Get(collection string) models.ConflictStrategy {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if s, ok := t.strategies[collection]; ok {
		return s
	}
	return DefaultStrategy
}

// Set registers strategy for collection.
func (t *StrategyTable) Set(collection string, strategy models.ConflictStrategy) error {
	if !strategy.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.strategies[collection] = strategy
	return nil
}

// Snapshot returns a copy of the explicit entries.
func (t *StrategyTable) Snapshot() map[string]models.ConflictStrategy {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return maps.Clone(t.strategies)
}
