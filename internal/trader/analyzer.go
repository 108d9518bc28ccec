package trader

import (
	"fmt"
	"strings"
	"time"

	"mt5-trade-bot-go/internal/config"
	"mt5-trade-bot-go/internal/gateway"
	"mt5-trade-bot-go/internal/metrics"
	"mt5-trade-bot-go/internal/models"
	"mt5-trade-bot-go/internal/ta"

	"go.uber.org/zap"
)

// Skip reasons recorded in SymbolState and surfaced in the status digest.
const (
	SkipReasonBiasNone     = "Daily Bias NONE"
	SkipReasonPositionOpen = "Position Open"
)

// minBarsForAnalysis is the minimum usable bar window. Shorter windows skip
// the symbol for the cycle without an error.
const minBarsForAnalysis = 50

// Order submission constants: price deviation tolerance in points, the
// strategy magic number and the order comment tag.
const (
	orderDeviation = 20
	orderMagic     = 1001
	orderComment   = "Bot ATR V5"
)

// analyzeSymbol runs the full gate -> analyze -> execute sequence for one
// instrument. Every rejection is non-fatal; the engine simply moves on to the
// next instrument in the same cycle.
func (e *Engine) analyzeSymbol(sc config.SymbolConfig) {
	l := e.logger.With(zap.String("symbol", sc.Symbol))

	// 1. Bias filter. Runs before any market-data fetch.
	if sc.DailyBias == config.BiasNone {
		e.skip(sc.Symbol, SkipReasonBiasNone)
		return
	}

	// 2. Cooldown filter.
	if blocked, minsLeft := e.cooldownBlocked(sc.Symbol); blocked {
		e.skip(sc.Symbol, fmt.Sprintf("Cooldown: %.1fm left", minsLeft))
		return
	}

	// 3. Technical analysis.
	bars, err := e.gw.GetBars(sc.Symbol, e.cfg.Trading.Timeframe, e.cfg.Trading.BarCount)
	if err != nil {
		l.Warn("Could not fetch bars, skipping symbol this cycle", zap.Error(err))
		return
	}
	if len(bars) < minBarsForAnalysis {
		l.Debug("Not enough bars for analysis", zap.Int("bars", len(bars)))
		return
	}

	snap, err := ta.ComputeSnapshot(bars)
	if err != nil {
		l.Debug("Indicators unavailable", zap.Error(err))
		return
	}

	lastBar := bars[len(bars)-1]
	signal := GenerateSignal(snap, lastBar)
	metrics.IncSignal(sc.Symbol, string(signal))
	if signal != SignalNone {
		l.Info("Signal generated",
			zap.String("signal", string(signal)),
			zap.Float64("rsi", snap.RSI),
			zap.Float64("atr", snap.ATR))
	}

	// 4. Open-position filter. The gateway is the source of truth; at most one
	// open position per instrument is permitted.
	positions, err := e.gw.GetOpenPositions(sc.Symbol)
	if err != nil {
		l.Warn("Could not fetch open positions, skipping symbol this cycle", zap.Error(err))
		return
	}
	if len(positions) > 0 {
		e.skip(sc.Symbol, SkipReasonPositionOpen)
		return
	}

	if signal == SignalNone {
		return
	}

	// 5. Direction match against the daily bias.
	if !sc.AllowsDirection(string(signal)) {
		l.Debug("Signal direction not permitted by daily bias",
			zap.String("signal", string(signal)),
			zap.String("bias", sc.DailyBias))
		return
	}

	quote, err := e.gw.GetQuote(sc.Symbol)
	if err != nil {
		l.Warn("Could not fetch quote, skipping symbol this cycle", zap.Error(err))
		return
	}

	price := quote.Bid
	if signal == SignalBuy {
		price = quote.Ask
	}

	stopLoss, takeProfit, err := CalculateStopTakeProfit(price, signal, snap.ATR)
	if err != nil {
		l.Warn("Refusing to trade without usable stop levels", zap.Error(err))
		return
	}

	e.executeTrade(sc, signal, price, sc.BaseVolume, stopLoss, takeProfit, snap.ATR)
}

// cooldownBlocked reports whether the symbol is still inside the post-close
// cooldown window. On the first check for a symbol the last close time is
// backfilled from the gateway's closed-deal history over the trailing 24
// hours; the result (including "no history") is cached so the lookup happens
// at most once per symbol per process lifetime.
func (e *Engine) cooldownBlocked(symbol string) (bool, float64) {
	closeTime, populated := e.states.CloseInfo(symbol)
	if !populated {
		closeTime = e.backfillCloseTime(symbol)
	}

	cooldown := time.Duration(e.cfg.Trading.CooldownMinutes * float64(time.Minute))
	return cooldownRemaining(e.now(), closeTime, cooldown)
}

// cooldownRemaining applies the cooldown rule: a check strictly inside the
// window rejects; a check at exactly the cooldown boundary passes. A zero
// close time means no known prior trade and never blocks.
func cooldownRemaining(now, closeTime time.Time, cooldown time.Duration) (bool, float64) {
	if closeTime.IsZero() {
		return false, 0
	}
	elapsed := now.Sub(closeTime)
	if elapsed < cooldown {
		return true, (cooldown - elapsed).Minutes()
	}
	return false, 0
}

func (e *Engine) backfillCloseTime(symbol string) time.Time {
	now := e.now()
	deals, err := e.gw.GetClosedDeals(now.Add(-24*time.Hour), now)
	if err != nil {
		// Treat a failed lookup as populated-empty; retrying every cycle
		// would hammer the gateway for symbols that rarely trade.
		e.logger.Warn("Closed-deal history lookup failed",
			zap.String("symbol", symbol), zap.Error(err))
		e.states.MarkCooldownChecked(symbol)
		return time.Time{}
	}

	var latest *gateway.Deal
	for i := range deals {
		d := &deals[i]
		if d.Symbol != symbol || d.Entry != gateway.DealEntryOut {
			continue
		}
		if latest == nil || d.TimeMsc > latest.TimeMsc {
			latest = d
		}
	}

	if latest == nil {
		e.states.MarkCooldownChecked(symbol)
		return time.Time{}
	}

	// Broker timestamps are in server time; shift them back to local.
	offset := time.Duration(e.cfg.Trading.ServerTZOffsetHrs) * time.Hour
	closeTime := time.UnixMilli(latest.TimeMsc).Add(-offset)
	e.states.SetCloseTime(symbol, closeTime)
	return closeTime
}

// executeTrade selects a fill mode, submits the market order and updates
// session state on success. This is the only place that mutates account
// state. A rejected or failed order is not retried within the cycle; the next
// cycle re-evaluates the signal from scratch.
func (e *Engine) executeTrade(sc config.SymbolConfig, signal Signal, price, volume, stopLoss, takeProfit, atrUsed float64) {
	l := e.logger.With(
		zap.String("symbol", sc.Symbol),
		zap.String("direction", string(signal)),
		zap.Float64("price", price),
		zap.Float64("volume", volume),
	)

	filling := gateway.FillModeFOK
	if info, err := e.gw.GetSymbolCapabilities(sc.Symbol); err == nil {
		if info.FillingMode&gateway.FillModeIOC != 0 {
			filling = gateway.FillModeIOC
		} else if info.FillingMode&gateway.FillModeFOK != 0 {
			filling = gateway.FillModeFOK
		}
	} else {
		l.Warn("Could not fetch symbol capabilities, defaulting to FOK", zap.Error(err))
	}

	req := &gateway.OrderRequest{
		Symbol:      sc.Symbol,
		Direction:   string(signal),
		Volume:      volume,
		Price:       price,
		StopLoss:    stopLoss,
		TakeProfit:  takeProfit,
		Deviation:   orderDeviation,
		Magic:       orderMagic,
		Comment:     orderComment,
		TypeFilling: filling,
	}

	var result *gateway.OrderResult
	if e.cfg.Trading.DryRun {
		l.Warn("Dry run enabled. No real order will be submitted.")
		result = &gateway.OrderResult{Retcode: gateway.RetcodeDone, Price: price, Volume: volume}
	} else {
		var err error
		result, err = e.gw.SubmitOrder(req)
		if err != nil {
			l.Error("Order submission failed", zap.Error(err))
			return
		}
	}

	if !result.Done() {
		l.Error("Order rejected by gateway",
			zap.Int("retcode", result.Retcode),
			zap.String("comment", result.Comment))
		return
	}

	e.states.RecordExecution(sc.Symbol)
	metrics.IncOrder(sc.Symbol, string(signal))
	l.Info("Trade executed",
		zap.Float64("stop_loss", stopLoss),
		zap.Float64("take_profit", takeProfit),
		zap.Float64("atr", atrUsed))

	e.journalTrade(sc.Symbol, signal, price, volume, stopLoss, takeProfit, atrUsed, result)

	msg := fmt.Sprintf("✅ **%s %s EXECUTION**\nPrice: %v\nVol: %v\nATR: %.4f\nSL: %v\nTP: %v",
		sc.Symbol, signal, price, volume, atrUsed, stopLoss, takeProfit)
	e.notifier.SendTradeExecution(msg)
}

// journalTrade writes a best-effort journal row. The journal is never read by
// decision logic; a failed insert only logs.
func (e *Engine) journalTrade(symbol string, signal Signal, price, volume, stopLoss, takeProfit, atrUsed float64, result *gateway.OrderResult) {
	if e.db == nil {
		return
	}
	record := models.TradeRecord{
		Symbol:     symbol,
		Direction:  string(signal),
		Price:      price,
		Volume:     volume,
		StopLoss:   stopLoss,
		TakeProfit: takeProfit,
		ATR:        atrUsed,
		Retcode:    result.Retcode,
		OrderID:    result.Order,
		Timestamp:  e.now().Unix(),
		IsDryRun:   e.cfg.Trading.DryRun,
	}
	if err := e.db.Create(&record).Error; err != nil {
		e.logger.Error("Failed to save trade record", zap.String("symbol", symbol), zap.Error(err))
	}
}

func (e *Engine) skip(symbol, reason string) {
	e.states.SetSkipReason(symbol, reason)
	// The cooldown reason embeds the minutes left; collapse it so the metric
	// label stays low-cardinality.
	label := reason
	if strings.HasPrefix(reason, "Cooldown") {
		label = "Cooldown"
	}
	metrics.IncSkip(label)
	e.logger.Debug("Symbol skipped", zap.String("symbol", symbol), zap.String("reason", reason))
}
