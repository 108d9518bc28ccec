package trader

import (
	"testing"
	"time"

	"mt5-trade-bot-go/internal/config"

	"github.com/stretchr/testify/assert"
)

func testSymbols() []config.SymbolConfig {
	return []config.SymbolConfig{
		{Symbol: "UK100", BaseVolume: 0.5, DailyBias: config.BiasBoth},
		{Symbol: "US500", BaseVolume: 0.3, DailyBias: config.BiasBuy},
	}
}

func TestStateStore_OneStatePerSymbol(t *testing.T) {
	store := NewStateStore(testSymbols())

	_, ok := store.Get("UK100")
	assert.True(t, ok)
	_, ok = store.Get("US500")
	assert.True(t, ok)
	_, ok = store.Get("UNKNOWN")
	assert.False(t, ok)
}

func TestStateStore_RecordExecution(t *testing.T) {
	store := NewStateStore(testSymbols())
	store.SetSkipReason("UK100", "Position Open")

	store.RecordExecution("UK100")
	store.RecordExecution("UK100")

	st, _ := store.Get("UK100")
	assert.Equal(t, 2, st.TradesExecuted)
	assert.Empty(t, st.LastSkippedReason)

	// Other symbols are untouched.
	other, _ := store.Get("US500")
	assert.Equal(t, 0, other.TradesExecuted)
}

func TestStateStore_CloseTimeIsMonotonic(t *testing.T) {
	store := NewStateStore(testSymbols())
	recent := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	older := recent.Add(-time.Hour)

	store.SetCloseTime("UK100", recent)
	store.SetCloseTime("UK100", older) // must not move backwards

	got, populated := store.CloseInfo("UK100")
	assert.True(t, populated)
	assert.Equal(t, recent, got)
}

func TestStateStore_CooldownPopulatedFlag(t *testing.T) {
	store := NewStateStore(testSymbols())

	_, populated := store.CloseInfo("UK100")
	assert.False(t, populated)

	// "Looked up, no history" is distinguishable from "not yet looked up".
	store.MarkCooldownChecked("UK100")
	got, populated := store.CloseInfo("UK100")
	assert.True(t, populated)
	assert.True(t, got.IsZero())
}

func TestStateStore_SnapshotIsACopy(t *testing.T) {
	store := NewStateStore(testSymbols())
	store.SetSkipReason("UK100", "Daily Bias NONE")

	snap := store.Snapshot()
	assert.Len(t, snap, 2)
	assert.Equal(t, "Daily Bias NONE", snap["UK100"].LastSkippedReason)

	// Mutating the snapshot must not affect the store.
	entry := snap["UK100"]
	entry.TradesExecuted = 99
	snap["UK100"] = entry
	st, _ := store.Get("UK100")
	assert.Equal(t, 0, st.TradesExecuted)
}
