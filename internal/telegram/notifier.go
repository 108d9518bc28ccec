package telegram

import (
	"fmt"
	"time"

	"mt5-trade-bot-go/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const apiBaseURL = "https://api.telegram.org"

// Notifier is the outbound notification channel. Delivery is best-effort:
// implementations log failures but never return them, so decision logic can
// never block or branch on notification delivery.
type Notifier interface {
	// SendStatus publishes a plain-text message to the status/alert bot.
	SendStatus(message string)
	// SendTradeExecution publishes a Markdown message to the trade bot.
	SendTradeExecution(message string)
}

// Client sends messages through the Telegram Bot API using two separate bots:
// one for status/alerts and one for trade execution details.
type Client struct {
	client *resty.Client
	cfg    *config.Telegram
	logger *zap.Logger
}

// ensure Client implements the interface
var _ Notifier = (*Client)(nil)

// NewClient creates a new Telegram notifier.
func NewClient(cfg *config.Telegram, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(apiBaseURL).
		SetTimeout(5 * time.Second)

	return &Client{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// SendStatus sends a plain-text message via the main bot.
func (c *Client) SendStatus(message string) {
	c.send(c.cfg.MainBotToken, c.cfg.MainChatID, message, "")
}

// SendTradeExecution sends a Markdown message via the trade bot.
func (c *Client) SendTradeExecution(message string) {
	c.send(c.cfg.TradeBotToken, c.cfg.TradeChatID, message, "Markdown")
}

func (c *Client) send(token, chatID, message, parseMode string) {
	if token == "" || chatID == "" {
		c.logger.Debug("Telegram bot not configured, dropping message")
		return
	}

	form := map[string]string{
		"chat_id": chatID,
		"text":    message,
	}
	if parseMode != "" {
		form["parse_mode"] = parseMode
	}

	resp, err := c.client.R().
		SetFormData(form).
		Post(fmt.Sprintf("/bot%s/sendMessage", token))
	if err != nil {
		c.logger.Warn("Failed to send Telegram message", zap.Error(err))
		return
	}
	if resp.IsError() {
		c.logger.Warn("Telegram API rejected message",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", resp.String()))
	}
}

// NopNotifier discards all messages. Used in tests and dry runs without
// configured bots.
type NopNotifier struct{}

func (NopNotifier) SendStatus(string)         {}
func (NopNotifier) SendTradeExecution(string) {}
