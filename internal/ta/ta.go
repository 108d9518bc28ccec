// Package ta provides the technical indicators used by the trading engine.
// All functions are pure: deterministic for a given bar window, no side
// effects. Values are computed from closed bars only.
package ta

import (
	"errors"
	"math"

	"mt5-trade-bot-go/internal/gateway"
)

// Indicator periods and band width. Fixed by the strategy, not configurable.
const (
	ATRPeriod = 14
	BBPeriod  = 20
	BBStdDevs = 2.0
	RSIPeriod = 14
)

// ErrInsufficientData is returned when the bar window is too short for the
// requested indicator set.
var ErrInsufficientData = errors.New("insufficient data for indicators")

// Snapshot holds the indicator values for the most recent closed bar.
type Snapshot struct {
	ATR     float64
	RSI     float64
	BBUpper float64
	BBLower float64
}

// SMA returns the simple moving average of the last n values, or NaN when
// fewer than n values are available.
func SMA(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		sum += vals[i]
	}
	return sum / float64(n)
}

// StdDev returns the sample standard deviation of the last n values.
func StdDev(vals []float64, n int) float64 {
	if len(vals) < n || n <= 1 {
		return math.NaN()
	}
	m := SMA(vals, n)
	s := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		d := vals[i] - m
		s += d * d
	}
	return math.Sqrt(s / float64(n-1))
}

// Bollinger returns the n-bar moving average band: mid ± k standard deviations.
func Bollinger(closes []float64, n int, k float64) (mid, upper, lower float64) {
	mid = SMA(closes, n)
	sd := StdDev(closes, n)
	upper = mid + k*sd
	lower = mid - k*sd
	return
}

// ATR returns the average true range over the last period bars: the simple
// moving average of TR = max(high-low, |high-prevClose|, |low-prevClose|).
// Requires period+1 bars so every TR has a previous close.
func ATR(highs, lows, closes []float64, period int) float64 {
	if len(highs) != len(lows) || len(lows) != len(closes) {
		return math.NaN()
	}
	if len(closes) < period+1 || period <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		tr1 := highs[i] - lows[i]
		tr2 := math.Abs(highs[i] - closes[i-1])
		tr3 := math.Abs(lows[i] - closes[i-1])
		sum += math.Max(tr1, math.Max(tr2, tr3))
	}
	return sum / float64(period)
}

// RSI returns the relative strength index using Wilder's exponential
// smoothing (alpha = 1/period). Average gain and loss are seeded with the
// simple average of the first period deltas and then smoothed recursively
// over the rest of the window. When the average loss is zero the RSI is
// defined as 100.
func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 || period <= 0 {
		return math.NaN()
	}

	gains := make([]float64, 0, len(closes)-1)
	losses := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gains = append(gains, d)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -d)
		}
	}

	avgGain := SMA(gains[:period], period)
	avgLoss := SMA(losses[:period], period)
	alpha := 1.0 / float64(period)
	for i := period; i < len(gains); i++ {
		avgGain = avgGain + alpha*(gains[i]-avgGain)
		avgLoss = avgLoss + alpha*(losses[i]-avgLoss)
	}

	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}

// ComputeSnapshot derives the indicator snapshot for the latest closed bar of
// the window. Returns ErrInsufficientData when the window is shorter than the
// longest lookback plus one.
func ComputeSnapshot(bars []gateway.Bar) (*Snapshot, error) {
	minBars := ATRPeriod
	if BBPeriod > minBars {
		minBars = BBPeriod
	}
	if RSIPeriod > minBars {
		minBars = RSIPeriod
	}
	minBars++ // previous close needed for TR and the first delta

	if len(bars) < minBars {
		return nil, ErrInsufficientData
	}

	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	closes := make([]float64, len(bars))
	for i, b := range bars {
		highs[i] = b.High
		lows[i] = b.Low
		closes[i] = b.Close
	}

	_, upper, lower := Bollinger(closes, BBPeriod, BBStdDevs)
	snap := &Snapshot{
		ATR:     ATR(highs, lows, closes, ATRPeriod),
		RSI:     RSI(closes, RSIPeriod),
		BBUpper: upper,
		BBLower: lower,
	}
	return snap, nil
}
