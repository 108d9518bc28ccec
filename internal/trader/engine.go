package trader

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"mt5-trade-bot-go/internal/config"
	"mt5-trade-bot-go/internal/gateway"
	"mt5-trade-bot-go/internal/metrics"
	"mt5-trade-bot-go/internal/telegram"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Engine is the core trading engine. It runs a fixed-interval polling loop
// that analyzes every configured instrument in configuration order, one at a
// time, within a single goroutine.
type Engine struct {
	RunID     string
	StartTime time.Time

	logger   *zap.Logger
	cfg      *config.Config
	symbols  []config.SymbolConfig
	gw       gateway.Gateway
	notifier telegram.Notifier
	db       *gorm.DB
	states   *StateStore

	cycles           atomic.Int64
	lastStatusUpdate time.Time
	now              func() time.Time
}

// NewEngine creates a new trading engine. db may be nil to disable the trade
// journal.
func NewEngine(logger *zap.Logger, cfg *config.Config, symbols []config.SymbolConfig, gw gateway.Gateway, notifier telegram.Notifier, db *gorm.DB) *Engine {
	return &Engine{
		RunID:    uuid.NewString(),
		logger:   logger,
		cfg:      cfg,
		symbols:  symbols,
		gw:       gw,
		notifier: notifier,
		db:       db,
		states:   NewStateStore(symbols),
		now:      time.Now,
	}
}

// Run starts the engine's main loop and blocks until the context is
// cancelled. A panicking cycle is reported and survived once; a second
// consecutive panicking cycle terminates the loop after a best-effort
// shutdown notification.
func (e *Engine) Run(ctx context.Context) error {
	e.StartTime = e.now()

	e.logger.Info("Starting trading engine",
		zap.String("run_id", e.RunID),
		zap.Int("symbols", len(e.symbols)),
		zap.String("window", e.cfg.Trading.TradingStart+"-"+e.cfg.Trading.TradingEnd))

	e.notifier.SendStatus(fmt.Sprintf(
		"🤖 %s Started\n⚡ Lot Multiplier: %gx\n⏰ Window: %s-%s\n📊 Symbols: %d",
		e.cfg.Trading.BotName,
		e.cfg.Trading.LotMultiplier,
		e.cfg.Trading.TradingStart, e.cfg.Trading.TradingEnd,
		len(e.symbols)))

	interval := time.Duration(e.cfg.Trading.TickInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	crashStreak := 0

	// Run the first cycle immediately instead of waiting a full interval.
	for {
		if withinTradingWindow(e.now(), e.cfg.Trading.TradingStart, e.cfg.Trading.TradingEnd) {
			if err := e.runCycle(); err != nil {
				crashStreak++
				e.logger.Error("Cycle crashed", zap.Error(err), zap.Int("crash_streak", crashStreak))
				e.notifier.SendStatus(fmt.Sprintf("🚨 Bot Crashed: %v", err))
				if crashStreak >= 2 {
					e.notifier.SendStatus("🛑 Bot stopping after repeated crashes")
					return fmt.Errorf("two consecutive cycles crashed, last: %w", err)
				}
			} else {
				crashStreak = 0
			}
		} else {
			e.logger.Debug("Outside trading window, sleeping",
				zap.String("window", e.cfg.Trading.TradingStart+"-"+e.cfg.Trading.TradingEnd))
		}

		e.cycles.Add(1)
		metrics.IncCycles()
		e.checkStatusUpdate()

		select {
		case <-ctx.Done():
			e.logger.Info("Stopping trading engine...")
			e.notifier.SendStatus("🛑 Bot Stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// runCycle analyzes every configured instrument once, in configuration order.
// Panics are converted to errors at this boundary so one bad cycle cannot
// take the process down.
func (e *Engine) runCycle() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panic: %v", r)
		}
	}()

	e.logger.Info("Starting analysis cycle", zap.Int64("cycle", e.cycles.Load()+1))
	for _, sc := range e.symbols {
		e.analyzeSymbol(sc)
	}
	e.logger.Info("Analysis cycle complete")
	return nil
}

// Cycles returns the number of loop iterations since start.
func (e *Engine) Cycles() int64 {
	return e.cycles.Load()
}

// States returns the per-symbol state store.
func (e *Engine) States() *StateStore {
	return e.states
}

// checkStatusUpdate sends the periodic status digest when due. The first
// check after startup always sends one.
func (e *Engine) checkStatusUpdate() {
	interval := time.Duration(e.cfg.Trading.StatusIntervalMins) * time.Minute
	if !e.lastStatusUpdate.IsZero() && e.now().Sub(e.lastStatusUpdate) < interval {
		return
	}
	e.sendStatusUpdate()
	e.lastStatusUpdate = e.now()
}

// sendStatusUpdate publishes the status digest: uptime, balance, cycle count
// and how many symbols are currently tradable.
func (e *Engine) sendStatusUpdate() {
	uptime := e.now().Sub(e.StartTime)
	hours := int(uptime.Hours())
	minutes := int(uptime.Minutes()) % 60

	balance, err := e.gw.GetAccountBalance()
	if err != nil {
		e.logger.Warn("Could not fetch account balance for status update", zap.Error(err))
		balance = 0
	} else {
		metrics.SetBalance(balance)
	}

	active, sleeping := e.countSymbolActivity()

	msg := fmt.Sprintf(
		"🤖 %s 🤖\n📉 Timeframe: %s\n💵 Balance: $%.0f\n⚡ Multiplier: %gx\n⏰ Uptime: %dh %dm\n🔄 Cycles: %d\n────────────────────\n✅ Active/Cooling: %d\n💤 Sleeping: %d",
		e.cfg.Trading.BotName,
		e.cfg.Trading.Timeframe,
		balance,
		e.cfg.Trading.LotMultiplier,
		hours, minutes,
		e.cycles.Load(),
		active, sleeping)

	e.logger.Info("Sending status update")
	e.notifier.SendStatus(msg)
}

// countSymbolActivity classifies symbols for the digest: a symbol sleeps when
// its bias disables trading or the clock is outside the trading window,
// otherwise it counts as active (cooldown included).
func (e *Engine) countSymbolActivity() (active, sleeping int) {
	inWindow := withinTradingWindow(e.now(), e.cfg.Trading.TradingStart, e.cfg.Trading.TradingEnd)
	for _, sc := range e.symbols {
		if sc.DailyBias == config.BiasNone || !inWindow {
			sleeping++
		} else {
			active++
		}
	}
	return active, sleeping
}

// withinTradingWindow reports whether t falls inside the inclusive HH:MM
// window. Malformed bounds fail closed.
func withinTradingWindow(t time.Time, start, end string) bool {
	startT, err1 := time.Parse("15:04", start)
	endT, err2 := time.Parse("15:04", end)
	if err1 != nil || err2 != nil {
		return false
	}

	minutes := t.Hour()*60 + t.Minute()
	startMin := startT.Hour()*60 + startT.Minute()
	endMin := endT.Hour()*60 + endT.Minute()
	return minutes >= startMin && minutes <= endMin
}
