package gateway

import "time"

// Order filling modes, mirroring the MT5 symbol capability bitmask.
const (
	FillModeFOK = 1 // fill-or-kill
	FillModeIOC = 2 // immediate-or-cancel
)

// RetcodeDone is the gateway return code for a fully executed order.
const RetcodeDone = 10009

// Deal entry types as reported by the bridge.
const (
	DealEntryIn  = 0
	DealEntryOut = 1
)

// Bar is a single OHLC sample for one instrument.
type Bar struct {
	Time  int64   `json:"time"` // unix seconds, bar open time
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// Quote is the current bid/ask for an instrument.
type Quote struct {
	Symbol string  `json:"symbol"`
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
}

// Position is an open position reported by the gateway.
type Position struct {
	Ticket int64   `json:"ticket"`
	Symbol string  `json:"symbol"`
	Type   int     `json:"type"`
	Volume float64 `json:"volume"`
	Price  float64 `json:"price_open"`
}

// Deal is a historical deal from the account's closed-deal history.
type Deal struct {
	Ticket  int64   `json:"ticket"`
	Symbol  string  `json:"symbol"`
	Entry   int     `json:"entry"`    // DealEntryIn / DealEntryOut
	TimeMsc int64   `json:"time_msc"` // server-side timestamp, unix milliseconds
	Profit  float64 `json:"profit"`
}

// SymbolInfo carries per-instrument trading capabilities.
type SymbolInfo struct {
	Symbol      string `json:"symbol"`
	FillingMode int    `json:"filling_mode"` // bitmask of FillMode* values
	Digits      int    `json:"digits"`
}

// OrderRequest is a market order submission. It is constructed per trade and
// discarded after the gateway call returns.
type OrderRequest struct {
	Symbol      string  `json:"symbol"`
	Direction   string  `json:"direction"` // "BUY" or "SELL"
	Volume      float64 `json:"volume"`
	Price       float64 `json:"price"`
	StopLoss    float64 `json:"sl"`
	TakeProfit  float64 `json:"tp"`
	Deviation   int     `json:"deviation"`
	Magic       int     `json:"magic"`
	Comment     string  `json:"comment"`
	TypeFilling int     `json:"type_filling"`
}

// OrderResult is the gateway's response to an order submission.
type OrderResult struct {
	Retcode int     `json:"retcode"`
	Order   int64   `json:"order"`
	Volume  float64 `json:"volume"`
	Price   float64 `json:"price"`
	Comment string  `json:"comment"`
}

// Done reports whether the order was fully executed.
func (r *OrderResult) Done() bool {
	return r != nil && r.Retcode == RetcodeDone
}

// BarTime converts the bar's open time to a time.Time in the local zone.
func (b Bar) BarTime() time.Time {
	return time.Unix(b.Time, 0)
}
