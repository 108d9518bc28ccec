package models

import "gorm.io/gorm"

// TradeRecord is the journal row written after every executed order. The
// journal is write-only from the trading engine and never consulted by
// decision logic; it exists for the monitoring UI and offline review.
type TradeRecord struct {
	gorm.Model
	Symbol     string  `json:"symbol"`
	Direction  string  `json:"direction"` // "BUY" or "SELL"
	Price      float64 `json:"price"`
	Volume     float64 `json:"volume"`
	StopLoss   float64 `json:"stop_loss"`
	TakeProfit float64 `json:"take_profit"`
	ATR        float64 `json:"atr"`
	Retcode    int     `json:"retcode"`
	OrderID    int64   `json:"order_id"`
	Timestamp  int64   `json:"timestamp"`
	IsDryRun   bool    `json:"is_dry_run"`
}
