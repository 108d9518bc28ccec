package gateway

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"mt5-trade-bot-go/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client talks to the MT5 bridge service that fronts the broker terminal.
// It implements the Gateway interface.
type Client struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

// Gateway defines the market-data and order-execution surface the trading
// engine depends on. All calls are synchronous; an error or empty result means
// the caller should skip the affected instrument for this cycle.
type Gateway interface {
	Ping() error
	GetBars(symbol, timeframe string, count int) ([]Bar, error)
	GetQuote(symbol string) (*Quote, error)
	GetOpenPositions(symbol string) ([]Position, error)
	GetClosedDeals(from, to time.Time) ([]Deal, error)
	GetSymbolCapabilities(symbol string) (*SymbolInfo, error)
	GetAccountBalance() (float64, error)
	SubmitOrder(req *OrderRequest) (*OrderResult, error)
}

// ensure Client implements the interface
var _ Gateway = (*Client)(nil)

// NewClient creates a new bridge client.
func NewClient(cfg *config.Gateway, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &Client{
		client:  client,
		logger:  logger,
		limiter: limiter,
	}
}

// doRequest executes a request with rate limiting and bounded retry on
// transient failures. maxAttempts of 1 disables retry entirely; order
// submission must use that so a signal never produces more than one order
// per cycle.
func (c *Client) doRequest(ctx context.Context, method, url string, req *resty.Request, maxAttempts int) (*resty.Response, error) {
	var resp *resty.Response
	var err error

	for i := 0; i < maxAttempts; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = req.Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				retryAfterHeader := resp.Header().Get("Retry-After")
				if seconds, err := strconv.Atoi(retryAfterHeader); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 { // Bridge or terminal errors
				shouldRetry = true
			}
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry || i == maxAttempts-1 {
			break
		}

		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, fmt.Errorf("request failed after %d attempts: %w", maxAttempts, err)
	}
	return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
}

const readMaxAttempts = 3

// Ping checks connectivity to the bridge and the underlying terminal session.
// Used at startup as a login check.
func (c *Client) Ping() error {
	req := c.client.R()
	ctx := context.Background()

	if _, err := c.doRequest(ctx, "GET", "/ping", req, readMaxAttempts); err != nil {
		return fmt.Errorf("gateway ping failed: %w", err)
	}
	return nil
}

// GetBars fetches the most recent count OHLC bars for a symbol, oldest first.
func (c *Client) GetBars(symbol, timeframe string, count int) ([]Bar, error) {
	var bars []Bar

	req := c.client.R().
		SetQueryParams(map[string]string{
			"symbol":    symbol,
			"timeframe": timeframe,
			"count":     strconv.Itoa(count),
		}).
		SetResult(&bars)
	ctx := context.Background()

	if _, err := c.doRequest(ctx, "GET", "/bars", req, readMaxAttempts); err != nil {
		return nil, fmt.Errorf("failed to get bars for %s: %w", symbol, err)
	}
	return bars, nil
}

// GetQuote fetches the current bid/ask for a symbol.
func (c *Client) GetQuote(symbol string) (*Quote, error) {
	req := c.client.R().
		SetQueryParam("symbol", symbol).
		SetResult(&Quote{})
	ctx := context.Background()

	resp, err := c.doRequest(ctx, "GET", "/quote", req, readMaxAttempts)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote for %s: %w", symbol, err)
	}
	return resp.Result().(*Quote), nil
}

// GetOpenPositions returns the open positions for a symbol. An empty slice
// means the instrument is flat.
func (c *Client) GetOpenPositions(symbol string) ([]Position, error) {
	var positions []Position

	req := c.client.R().
		SetQueryParam("symbol", symbol).
		SetResult(&positions)
	ctx := context.Background()

	if _, err := c.doRequest(ctx, "GET", "/positions", req, readMaxAttempts); err != nil {
		return nil, fmt.Errorf("failed to get open positions for %s: %w", symbol, err)
	}
	return positions, nil
}

// GetClosedDeals returns the account's deal history between from and to.
func (c *Client) GetClosedDeals(from, to time.Time) ([]Deal, error) {
	var deals []Deal

	req := c.client.R().
		SetQueryParams(map[string]string{
			"from": strconv.FormatInt(from.Unix(), 10),
			"to":   strconv.FormatInt(to.Unix(), 10),
		}).
		SetResult(&deals)
	ctx := context.Background()

	if _, err := c.doRequest(ctx, "GET", "/deals", req, readMaxAttempts); err != nil {
		return nil, fmt.Errorf("failed to get closed deals: %w", err)
	}
	return deals, nil
}

// GetSymbolCapabilities fetches per-instrument trading rules, including the
// supported order filling modes.
func (c *Client) GetSymbolCapabilities(symbol string) (*SymbolInfo, error) {
	req := c.client.R().
		SetQueryParam("symbol", symbol).
		SetResult(&SymbolInfo{})
	ctx := context.Background()

	resp, err := c.doRequest(ctx, "GET", "/symbol", req, readMaxAttempts)
	if err != nil {
		return nil, fmt.Errorf("failed to get symbol capabilities for %s: %w", symbol, err)
	}
	return resp.Result().(*SymbolInfo), nil
}

// GetAccountBalance returns the current account balance.
func (c *Client) GetAccountBalance() (float64, error) {
	type accountResponse struct {
		Balance float64 `json:"balance"`
	}

	req := c.client.R().
		SetResult(&accountResponse{})
	ctx := context.Background()

	resp, err := c.doRequest(ctx, "GET", "/account", req, readMaxAttempts)
	if err != nil {
		return 0, fmt.Errorf("failed to get account balance: %w", err)
	}
	return resp.Result().(*accountResponse).Balance, nil
}

// SubmitOrder sends a market order to the bridge. The request is executed at
// most once: transport-level retry is disabled so that a failed submission is
// only re-evaluated on the next analysis cycle.
func (c *Client) SubmitOrder(orderReq *OrderRequest) (*OrderResult, error) {
	req := c.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(orderReq).
		SetResult(&OrderResult{})
	ctx := context.Background()

	resp, err := c.doRequest(ctx, "POST", "/order", req, 1)
	if err != nil {
		c.logger.Error("Failed to submit order",
			zap.Error(err),
			zap.String("symbol", orderReq.Symbol),
			zap.String("direction", orderReq.Direction),
		)
		return nil, fmt.Errorf("failed to submit order: %w", err)
	}

	result := resp.Result().(*OrderResult)
	c.logger.Info("Order submitted", zap.Any("result", result))
	return result, nil
}
