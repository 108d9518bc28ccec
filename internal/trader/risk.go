package trader

import (
	"fmt"
	"math"
)

// ATR multipliers for stop-loss and take-profit distances.
const (
	atrStopLossMultiplier   = 1.5
	atrTakeProfitMultiplier = 2.0
)

// CalculateStopTakeProfit derives stop-loss and take-profit levels from the
// entry price and the current ATR, rounded to 5 decimal places. An ATR that
// is zero, negative or NaN means the instrument has no usable volatility
// estimate; refusing here keeps a degenerate zero-distance stop from ever
// reaching the gateway.
func CalculateStopTakeProfit(price float64, direction Signal, atr float64) (stopLoss, takeProfit float64, err error) {
	if math.IsNaN(atr) || atr <= 0 {
		return 0, 0, fmt.Errorf("cannot size stops: ATR %v is not usable", atr)
	}

	slDist := atr * atrStopLossMultiplier
	tpDist := atr * atrTakeProfitMultiplier

	switch direction {
	case SignalBuy:
		stopLoss = price - slDist
		takeProfit = price + tpDist
	case SignalSell:
		stopLoss = price + slDist
		takeProfit = price - tpDist
	default:
		return 0, 0, fmt.Errorf("cannot size stops for signal %q", direction)
	}

	return round5(stopLoss), round5(takeProfit), nil
}

func round5(x float64) float64 {
	return math.Round(x*1e5) / 1e5
}
