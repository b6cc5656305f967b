package conflict

import (
	"testing"

	"github.com/MKhiriev/go-offline-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategyTable(t *testing.T) {
	seed := map[string]models.ConflictStrategy{"notes": models.StrategyMerge}
	table := NewStrategyTable(seed)
	seed["notes"] = models.StrategyManual

	assert.Equal(t, models.StrategyMerge, table.Get("notes"), "table copies its seed")
	assert.Equal(t, models.StrategyServerWins, table.Get("widgets"))

	require.NoError(t, table.Set("widgets", models.StrategyClientWins))
	assert.Equal(t, models.StrategyClientWins, table.Get("widgets"))

	assert.ErrorIs(t, table.Set("widgets", "last-writer"), ErrUnknownStrategy)

	snap := table.Snapshot()
	snap["widgets"] = models.StrategyManual
	assert.Equal(t, models.StrategyClientWins, table.Get("widgets"), "snapshot is a copy")
}
