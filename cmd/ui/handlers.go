package main

import (
	"encoding/json"
	"net/http"
	"time"

	"mt5-trade-bot-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log *zap.Logger
	db  *gorm.DB
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, db *gorm.DB) *APIHandler {
	return &APIHandler{log: log, db: db}
}

// TradesHandler returns the journaled trades, most recent first.
func (h *APIHandler) TradesHandler(w http.ResponseWriter, r *http.Request) {
	var trades []models.TradeRecord
	if err := h.db.Order("timestamp desc").Find(&trades).Error; err != nil {
		h.log.Error("Failed to get trades from database", zap.Error(err))
		http.Error(w, "Failed to get trades", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(trades)
}

// StatsDetail holds aggregated execution counts for a given period.
type StatsDetail struct {
	TotalTrades int64   `json:"total_trades"`
	BuyTrades   int64   `json:"buy_trades"`
	SellTrades  int64   `json:"sell_trades"`
	TotalVolume float64 `json:"total_volume"`
}

// StatisticsResponse is the structure for the /api/statistics endpoint.
type StatisticsResponse struct {
	Since24h StatsDetail `json:"since_24h"`
	Since7d  StatsDetail `json:"since_7d"`
	AllTime  StatsDetail `json:"all_time"`
}

// StatisticsHandler aggregates execution counts over 24h/7d/all-time windows.
// The journal records submissions, not closes, so there is no P&L here; that
// lives with the broker.
func (h *APIHandler) StatisticsHandler(w http.ResponseWriter, r *http.Request) {
	var allTrades []models.TradeRecord
	if err := h.db.Find(&allTrades).Error; err != nil {
		h.log.Error("Failed to get trades for statistics", zap.Error(err))
		http.Error(w, "Failed to calculate statistics", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	since24h := now.Add(-24 * time.Hour)
	since7d := now.Add(-7 * 24 * time.Hour)

	var response StatisticsResponse
	for _, trade := range allTrades {
		tradeTime := time.Unix(trade.Timestamp, 0)
		accumulate(&response.AllTime, trade)
		if tradeTime.After(since7d) {
			accumulate(&response.Since7d, trade)
		}
		if tradeTime.After(since24h) {
			accumulate(&response.Since24h, trade)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func accumulate(stats *StatsDetail, trade models.TradeRecord) {
	stats.TotalTrades++
	if trade.Direction == "BUY" {
		stats.BuyTrades++
	} else {
		stats.SellTrades++
	}
	stats.TotalVolume += trade.Volume
}
