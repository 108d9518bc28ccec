package trader

import (
	"testing"

	"mt5-trade-bot-go/internal/gateway"
	"mt5-trade-bot-go/internal/ta"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSignal_Buy(t *testing.T) {
	snap := &ta.Snapshot{RSI: 30, BBUpper: 110, BBLower: 95, ATR: 2}
	bar := gateway.Bar{High: 100, Low: 94, Close: 98}
	assert.Equal(t, SignalBuy, GenerateSignal(snap, bar))
}

func TestGenerateSignal_Sell(t *testing.T) {
	snap := &ta.Snapshot{RSI: 70, BBUpper: 110, BBLower: 95, ATR: 2}
	bar := gateway.Bar{High: 111, Low: 105, Close: 108}
	assert.Equal(t, SignalSell, GenerateSignal(snap, bar))
}

func TestGenerateSignal_None(t *testing.T) {
	snap := &ta.Snapshot{RSI: 50, BBUpper: 110, BBLower: 95, ATR: 2}
	bar := gateway.Bar{High: 105, Low: 100, Close: 102}
	assert.Equal(t, SignalNone, GenerateSignal(snap, bar))
}

func TestGenerateSignal_RSIAloneIsNotEnough(t *testing.T) {
	// Oversold RSI without the band touch stays flat, and vice versa.
	snap := &ta.Snapshot{RSI: 30, BBUpper: 110, BBLower: 95, ATR: 2}
	bar := gateway.Bar{High: 105, Low: 100, Close: 102}
	assert.Equal(t, SignalNone, GenerateSignal(snap, bar))

	snap = &ta.Snapshot{RSI: 50, BBUpper: 110, BBLower: 95, ATR: 2}
	bar = gateway.Bar{High: 100, Low: 94, Close: 98}
	assert.Equal(t, SignalNone, GenerateSignal(snap, bar))
}

func TestGenerateSignal_ThresholdsAreExclusive(t *testing.T) {
	// RSI exactly at a threshold does not trigger.
	snap := &ta.Snapshot{RSI: 35, BBUpper: 110, BBLower: 95, ATR: 2}
	bar := gateway.Bar{High: 100, Low: 94, Close: 98}
	assert.Equal(t, SignalNone, GenerateSignal(snap, bar))

	snap = &ta.Snapshot{RSI: 65, BBUpper: 110, BBLower: 95, ATR: 2}
	bar = gateway.Bar{High: 111, Low: 105, Close: 108}
	assert.Equal(t, SignalNone, GenerateSignal(snap, bar))
}

func TestGenerateSignal_BandTouchIsInclusive(t *testing.T) {
	snap := &ta.Snapshot{RSI: 30, BBUpper: 110, BBLower: 95, ATR: 2}
	bar := gateway.Bar{High: 100, Low: 95, Close: 98} // low == lower band
	assert.Equal(t, SignalBuy, GenerateSignal(snap, bar))

	snap = &ta.Snapshot{RSI: 70, BBUpper: 110, BBLower: 95, ATR: 2}
	bar = gateway.Bar{High: 110, Low: 105, Close: 108} // high == upper band
	assert.Equal(t, SignalSell, GenerateSignal(snap, bar))
}

func TestGenerateSignal_Pure(t *testing.T) {
	snap := &ta.Snapshot{RSI: 30, BBUpper: 110, BBLower: 95, ATR: 2}
	bar := gateway.Bar{High: 100, Low: 94, Close: 98}
	first := GenerateSignal(snap, bar)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, GenerateSignal(snap, bar))
	}
}
