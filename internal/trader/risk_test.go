package trader

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateStopTakeProfit_Buy(t *testing.T) {
	sl, tp, err := CalculateStopTakeProfit(100, SignalBuy, 2)
	assert.NoError(t, err)
	assert.Equal(t, 97.0, sl)
	assert.Equal(t, 104.0, tp)
}

func TestCalculateStopTakeProfit_Sell(t *testing.T) {
	sl, tp, err := CalculateStopTakeProfit(100, SignalSell, 2)
	assert.NoError(t, err)
	assert.Equal(t, 103.0, sl)
	assert.Equal(t, 96.0, tp)
}

func TestCalculateStopTakeProfit_Rounding(t *testing.T) {
	// 1.23456 - 1.5*0.000037 = 1.2345045 -> 1.2345 at 5 decimals
	sl, tp, err := CalculateStopTakeProfit(1.23456, SignalBuy, 0.000037)
	assert.NoError(t, err)
	assert.InDelta(t, 1.2345, sl, 1e-9)
	assert.InDelta(t, 1.23463, tp, 1e-9)
}

func TestCalculateStopTakeProfit_RefusesZeroATR(t *testing.T) {
	_, _, err := CalculateStopTakeProfit(100, SignalBuy, 0)
	assert.Error(t, err)
}

func TestCalculateStopTakeProfit_RefusesNegativeATR(t *testing.T) {
	_, _, err := CalculateStopTakeProfit(100, SignalSell, -1)
	assert.Error(t, err)
}

func TestCalculateStopTakeProfit_RefusesNaNATR(t *testing.T) {
	_, _, err := CalculateStopTakeProfit(100, SignalBuy, math.NaN())
	assert.Error(t, err)
}

func TestCalculateStopTakeProfit_RefusesNoneSignal(t *testing.T) {
	_, _, err := CalculateStopTakeProfit(100, SignalNone, 2)
	assert.Error(t, err)
}
