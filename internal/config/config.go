package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Gateway  Gateway  `mapstructure:"gateway"`
	Trading  Trading  `mapstructure:"trading"`
	Telegram Telegram `mapstructure:"telegram"`
	Logger   Logger   `mapstructure:"logger"`
	Server   Server   `mapstructure:"server"`
	Metrics  Metrics  `mapstructure:"metrics"`
	Database Database `mapstructure:"database"`
}

// Gateway holds the configuration for the MT5 bridge client.
type Gateway struct {
	BaseURL        string  `mapstructure:"base_url"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Server holds the configuration for the monitoring web server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Metrics holds the configuration for the Prometheus endpoint.
type Metrics struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the trade journal database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Telegram holds the tokens and chat IDs for the two notification bots.
// The main bot receives status and alert messages, the trade bot receives
// per-trade execution details.
type Telegram struct {
	MainBotToken  string `mapstructure:"main_bot_token"`
	MainChatID    string `mapstructure:"main_chat_id"`
	TradeBotToken string `mapstructure:"trade_bot_token"`
	TradeChatID   string `mapstructure:"trade_chat_id"`
}

// Trading holds the configuration for the trading logic.
type Trading struct {
	BotName            string  `mapstructure:"bot_name"`
	SymbolsFile        string  `mapstructure:"symbols_file"`
	Timeframe          string  `mapstructure:"timeframe"`
	BarCount           int     `mapstructure:"bar_count"`
	TickInterval       int     `mapstructure:"tick_interval"` // seconds between analysis cycles
	TradingStart       string  `mapstructure:"trading_start"` // "HH:MM", inclusive
	TradingEnd         string  `mapstructure:"trading_end"`   // "HH:MM", inclusive
	CooldownMinutes    float64 `mapstructure:"cooldown_minutes"`
	ServerTZOffsetHrs  int     `mapstructure:"server_tz_offset_hours"`
	LotMultiplier      float64 `mapstructure:"lot_multiplier"`
	StatusIntervalMins int     `mapstructure:"status_interval_minutes"`
	ApiPort            int     `mapstructure:"api_port"`
	DryRun             bool    `mapstructure:"dry_run"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("gateway.timeout_seconds", 10)
	viper.SetDefault("gateway.rate_limit", 10) // requests per second
	viper.SetDefault("gateway.rate_limit_burst", 5)
	viper.SetDefault("trading.bot_name", "UK100_bot")
	viper.SetDefault("trading.timeframe", "H4")
	viper.SetDefault("trading.bar_count", 100)
	viper.SetDefault("trading.tick_interval", 300)
	viper.SetDefault("trading.trading_start", "08:05")
	viper.SetDefault("trading.trading_end", "20:55")
	viper.SetDefault("trading.cooldown_minutes", 10)
	viper.SetDefault("trading.server_tz_offset_hours", 2)
	viper.SetDefault("trading.lot_multiplier", 1.0)
	viper.SetDefault("trading.status_interval_minutes", 60)
	viper.SetDefault("trading.api_port", 8081)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
