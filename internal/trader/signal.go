package trader

import (
	"mt5-trade-bot-go/internal/gateway"
	"mt5-trade-bot-go/internal/ta"
)

// Signal is the discrete trading signal derived from one indicator snapshot.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalNone Signal = "NONE"
)

// RSI entry thresholds.
const (
	rsiOversold   = 35.0
	rsiOverbought = 65.0
)

// GenerateSignal maps an indicator snapshot and the latest closed bar to a
// signal. Both band conditions are checked against the same bar's high/low,
// not its close. The function is pure and keeps no state between cycles, so a
// new bar can flip the signal immediately.
func GenerateSignal(snap *ta.Snapshot, lastBar gateway.Bar) Signal {
	if snap.RSI < rsiOversold && lastBar.Low <= snap.BBLower {
		return SignalBuy
	}
	if snap.RSI > rsiOverbought && lastBar.High >= snap.BBUpper {
		return SignalSell
	}
	return SignalNone
}
