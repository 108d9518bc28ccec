package trader

import (
	"context"
	"strings"
	"testing"
	"time"

	"mt5-trade-bot-go/internal/config"
	"mt5-trade-bot-go/internal/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestWithinTradingWindow(t *testing.T) {
	day := func(h, m int) time.Time {
		return time.Date(2025, 6, 2, h, m, 30, 0, time.UTC)
	}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"just before open", day(8, 4), false},
		{"at open", day(8, 5), true},
		{"mid-session", day(13, 0), true},
		{"at close", day(20, 55), true},
		{"just after close", day(20, 56), false},
		{"midnight", day(0, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, withinTradingWindow(tt.at, "08:05", "20:55"))
		})
	}
}

func TestWithinTradingWindow_MalformedBoundsFailClosed(t *testing.T) {
	at := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	assert.False(t, withinTradingWindow(at, "8am", "20:55"))
	assert.False(t, withinTradingWindow(at, "08:05", ""))
}

func TestEngineRun_StartupAndShutdownNotifications(t *testing.T) {
	gw := new(MockGateway)
	notifier := &MockNotifier{}
	symbols := []config.SymbolConfig{
		{Symbol: "UK100", BaseVolume: 0.5, DailyBias: config.BiasNone},
	}
	e := newTestEngine(symbols, gw, notifier)

	// The first status digest fetches the balance.
	gw.On("GetAccountBalance").Return(5000.0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	// Give the first cycle time to complete, then stop.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("engine did not stop after context cancellation")
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	assert.GreaterOrEqual(t, len(notifier.StatusMsgs), 2)
	assert.Contains(t, notifier.StatusMsgs[0], "Started")
	assert.Contains(t, notifier.StatusMsgs[len(notifier.StatusMsgs)-1], "Stopped")

	// The bias-NONE symbol was skipped without any market-data calls.
	gw.AssertNotCalled(t, "GetBars", mock.Anything, mock.Anything, mock.Anything)
	assert.GreaterOrEqual(t, e.Cycles(), int64(1))
}

func TestEngineRun_SurvivesOneCrashStopsAfterTwo(t *testing.T) {
	gw := new(MockGateway)
	notifier := &MockNotifier{}
	symbols := []config.SymbolConfig{
		{Symbol: "UK100", BaseVolume: 0.5, DailyBias: config.BiasBoth},
	}
	e := newTestEngine(symbols, gw, notifier)

	// Panicking collaborator: every cycle blows up inside the analysis.
	gw.On("GetClosedDeals", mock.Anything, mock.Anything).Return([]gateway.Deal{}, nil)
	gw.On("GetBars", "UK100", "H4", 100).Panic("gateway connection lost")
	gw.On("GetAccountBalance").Return(0.0, assert.AnError)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	select {
	case err := <-done:
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "consecutive")
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not terminate after repeated crashes")
	}

	// The crash was reported before the loop gave up.
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	crashes := 0
	for _, msg := range notifier.StatusMsgs {
		if strings.Contains(msg, "Crashed") {
			crashes++
		}
	}
	assert.GreaterOrEqual(t, crashes, 1)
}
