package trader

import (
	"sync"
	"time"

	"mt5-trade-bot-go/internal/config"
)

// SymbolState is the per-instrument session state. One instance exists per
// configured instrument for the lifetime of the process.
type SymbolState struct {
	TradesExecuted     int
	LastTradeCloseTime time.Time
	LastSkippedReason  string

	// cooldownPopulated distinguishes "history looked up, nothing found" from
	// "not yet looked up". The closed-deal backfill runs at most once per
	// symbol per process.
	cooldownPopulated bool
}

// StateStore holds the per-symbol states. The engine loop is the only writer;
// the mutex exists so the status digest and the HTTP status endpoint can read
// a consistent snapshot.
type StateStore struct {
	mu     sync.RWMutex
	states map[string]*SymbolState
}

// NewStateStore creates one SymbolState per configured instrument.
func NewStateStore(symbols []config.SymbolConfig) *StateStore {
	states := make(map[string]*SymbolState, len(symbols))
	for _, s := range symbols {
		states[s.Symbol] = &SymbolState{}
	}
	return &StateStore{states: states}
}

// SetSkipReason records why the symbol was skipped this cycle.
func (s *StateStore) SetSkipReason(symbol, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[symbol]; ok {
		st.LastSkippedReason = reason
	}
}

// RecordExecution increments the trade counter and clears the skip reason.
func (s *StateStore) RecordExecution(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[symbol]; ok {
		st.TradesExecuted++
		st.LastSkippedReason = ""
	}
}

// CloseInfo returns the cached last-trade-close time and whether the cooldown
// history lookup has already happened for this symbol.
func (s *StateStore) CloseInfo(symbol string) (closeTime time.Time, populated bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.states[symbol]; ok {
		return st.LastTradeCloseTime, st.cooldownPopulated
	}
	return time.Time{}, false
}

// SetCloseTime caches the last-trade-close time and marks the lookup done.
// The cached value only moves forward: an older close never replaces a more
// recent one.
func (s *StateStore) SetCloseTime(symbol string, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[symbol]; ok {
		if t.After(st.LastTradeCloseTime) {
			st.LastTradeCloseTime = t
		}
		st.cooldownPopulated = true
	}
}

// MarkCooldownChecked marks the history lookup done without a close time,
// for symbols with no recent closed deals.
func (s *StateStore) MarkCooldownChecked(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[symbol]; ok {
		st.cooldownPopulated = true
	}
}

// Get returns a copy of the symbol's state.
func (s *StateStore) Get(symbol string) (SymbolState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.states[symbol]; ok {
		return *st, true
	}
	return SymbolState{}, false
}

// Snapshot returns a copy of every symbol's state, keyed by symbol.
func (s *StateStore) Snapshot() map[string]SymbolState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]SymbolState, len(s.states))
	for sym, st := range s.states {
		out[sym] = *st
	}
	return out
}
