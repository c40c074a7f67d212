package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	TradingConfig      TradingConfig      `json:"trading"`
	MarketConfig       MarketConfig       `json:"market"`
	EngineConfig       EngineConfig       `json:"engine"`
	DatabaseConfig     DatabaseConfig     `json:"database"`
	RedisConfig        RedisConfig        `json:"redis"`
	NotificationConfig NotificationConfig `json:"notification"`
	ServerConfig       ServerConfig       `json:"server"`
	LoggingConfig      LoggingConfig      `json:"logging"`
}

// TradingConfig holds instrument and position sizing settings.
// StrikeInterval, StrikeRange and LotSize override the instrument's
// exchange defaults when set; zero keeps the default.
type TradingConfig struct {
	Instrument     string `json:"instrument"`      // SENSEX or NIFTY
	StrikeInterval int    `json:"strike_interval"` // 0 = instrument default (100 Sensex, 50 Nifty)
	StrikeRange    int    `json:"strike_range"`    // Strikes analyzed around ATM, 0 = default 500
	LotSize        int    `json:"lot_size"`        // 0 = instrument default (20 Sensex, 75 Nifty)
	MaxReEntries   int    `json:"max_re_entries"`  // Re-entries allowed after stop loss
	DryRun         bool   `json:"dry_run"`         // Paper execution, no real orders
}

// MarketConfig holds session timing for the exchange
type MarketConfig struct {
	OpenTime       string   `json:"open_time"`        // "09:15"
	CloseTime      string   `json:"close_time"`       // "15:30"
	EODExitTime    string   `json:"eod_exit_time"`    // "15:15"
	FirstCandleEnd string   `json:"first_candle_end"` // "09:21"
	Timezone       string   `json:"timezone"`         // "Asia/Kolkata"
	Holidays       []string `json:"holidays"`         // "2025-10-02" style dates
}

// EngineConfig holds decision-engine tunables
type EngineConfig struct {
	CycleIntervalSeconds   int     `json:"cycle_interval_seconds"`  // 180 = one 3-minute candle
	WindowSize             int     `json:"window_size"`             // Rolling candle window capacity
	MinWindowSamples       int     `json:"min_window_samples"`      // Below this, percentile is unavailable
	SignificancePercentile float64 `json:"significance_percentile"` // 75
	StructureThreshold     float64 `json:"structure_threshold"`     // R1-PP vs PP-S1 asymmetry for BULLISH/BEARISH
	TimeoutCandles         int     `json:"timeout_candles"`         // First-candle entry timeout
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslmode"`
}

// RedisConfig holds Redis settings for session-state persistence
type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
}

type NotificationConfig struct {
	Enabled  bool           `json:"enabled"`
	Telegram TelegramConfig `json:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `json:"enabled"`
	BotToken string `json:"bot_token"`
	ChatID   string `json:"chat_id"`
}

type ServerConfig struct {
	Enabled         bool   `json:"enabled"`
	Host            string `json:"host"`
	Port            int    `json:"port"`
	AllowedOrigins  string `json:"allowed_origins"`
	ReadTimeout     int    `json:"read_timeout"`
	WriteTimeout    int    `json:"write_timeout"`
	ShutdownTimeout int    `json:"shutdown_timeout"`
}

type LoggingConfig struct {
	Level      string `json:"level"`       // DEBUG, INFO, WARN, ERROR
	Output     string `json:"output"`      // stdout, stderr, or file path
	JSONFormat bool   `json:"json_format"` // Output as JSON
}

// Load reads config.json (if present) and applies environment overrides.
func Load() (*Config, error) {
	cfg, err := loadFromFile(getEnvOrDefault("CONFIG_PATH", "config.json"))
	if err != nil {
		// No config file; start from defaults
		cfg = &Config{}
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	if c.TradingConfig.Instrument != "SENSEX" && c.TradingConfig.Instrument != "NIFTY" {
		return fmt.Errorf("unknown instrument: %q", c.TradingConfig.Instrument)
	}
	if c.TradingConfig.LotSize < 0 {
		return fmt.Errorf("lot_size must not be negative, got %d", c.TradingConfig.LotSize)
	}
	if c.TradingConfig.StrikeInterval < 0 || c.TradingConfig.StrikeRange < 0 {
		return fmt.Errorf("strike_interval and strike_range must not be negative")
	}
	if c.EngineConfig.WindowSize < c.EngineConfig.MinWindowSamples {
		return fmt.Errorf("window_size %d smaller than min_window_samples %d",
			c.EngineConfig.WindowSize, c.EngineConfig.MinWindowSamples)
	}
	if p := c.EngineConfig.SignificancePercentile; p <= 0 || p > 100 {
		return fmt.Errorf("significance_percentile out of range: %v", p)
	}
	if _, err := time.LoadLocation(c.MarketConfig.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.MarketConfig.Timezone, err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.TradingConfig.Instrument == "" {
		cfg.TradingConfig.Instrument = "SENSEX"
	}
	if cfg.TradingConfig.MaxReEntries == 0 {
		cfg.TradingConfig.MaxReEntries = 1
	}

	if cfg.MarketConfig.OpenTime == "" {
		cfg.MarketConfig.OpenTime = "09:15"
	}
	if cfg.MarketConfig.CloseTime == "" {
		cfg.MarketConfig.CloseTime = "15:30"
	}
	if cfg.MarketConfig.EODExitTime == "" {
		cfg.MarketConfig.EODExitTime = "15:15"
	}
	if cfg.MarketConfig.FirstCandleEnd == "" {
		cfg.MarketConfig.FirstCandleEnd = "09:21"
	}
	if cfg.MarketConfig.Timezone == "" {
		cfg.MarketConfig.Timezone = "Asia/Kolkata"
	}

	if cfg.EngineConfig.CycleIntervalSeconds == 0 {
		cfg.EngineConfig.CycleIntervalSeconds = 180
	}
	if cfg.EngineConfig.WindowSize == 0 {
		cfg.EngineConfig.WindowSize = 20
	}
	if cfg.EngineConfig.MinWindowSamples == 0 {
		cfg.EngineConfig.MinWindowSamples = 5
	}
	if cfg.EngineConfig.SignificancePercentile == 0 {
		cfg.EngineConfig.SignificancePercentile = 75
	}
	if cfg.EngineConfig.StructureThreshold == 0 {
		cfg.EngineConfig.StructureThreshold = 5
	}
	if cfg.EngineConfig.TimeoutCandles == 0 {
		cfg.EngineConfig.TimeoutCandles = 10
	}
}

func applyEnvOverrides(cfg *Config) {
	// Trading config
	cfg.TradingConfig.Instrument = getEnvOrDefault("TRADING_INSTRUMENT", cfg.TradingConfig.Instrument)
	cfg.TradingConfig.DryRun = getEnvOrDefault("TRADING_DRY_RUN", boolStr(cfg.TradingConfig.DryRun)) == "true"
	cfg.TradingConfig.LotSize = getEnvIntOrDefault("TRADING_LOT_SIZE", cfg.TradingConfig.LotSize)
	cfg.TradingConfig.StrikeInterval = getEnvIntOrDefault("TRADING_STRIKE_INTERVAL", cfg.TradingConfig.StrikeInterval)
	cfg.TradingConfig.StrikeRange = getEnvIntOrDefault("TRADING_STRIKE_RANGE", cfg.TradingConfig.StrikeRange)
	cfg.TradingConfig.MaxReEntries = getEnvIntOrDefault("TRADING_MAX_RE_ENTRIES", cfg.TradingConfig.MaxReEntries)

	// Database config
	cfg.DatabaseConfig.Host = getEnvOrDefault("DB_HOST", defaultStr(cfg.DatabaseConfig.Host, "localhost"))
	cfg.DatabaseConfig.Port = getEnvIntOrDefault("DB_PORT", defaultInt(cfg.DatabaseConfig.Port, 5432))
	cfg.DatabaseConfig.User = getEnvOrDefault("DB_USER", defaultStr(cfg.DatabaseConfig.User, "pivot_engine"))
	cfg.DatabaseConfig.Password = getEnvOrDefault("DB_PASSWORD", cfg.DatabaseConfig.Password)
	cfg.DatabaseConfig.Database = getEnvOrDefault("DB_NAME", defaultStr(cfg.DatabaseConfig.Database, "pivot_engine"))
	cfg.DatabaseConfig.SSLMode = getEnvOrDefault("DB_SSLMODE", defaultStr(cfg.DatabaseConfig.SSLMode, "disable"))

	// Redis config
	cfg.RedisConfig.Enabled = getEnvOrDefault("REDIS_ENABLED", boolStr(cfg.RedisConfig.Enabled)) == "true"
	cfg.RedisConfig.Address = getEnvOrDefault("REDIS_ADDRESS", defaultStr(cfg.RedisConfig.Address, "localhost:6379"))
	cfg.RedisConfig.Password = getEnvOrDefault("REDIS_PASSWORD", cfg.RedisConfig.Password)
	cfg.RedisConfig.DB = getEnvIntOrDefault("REDIS_DB", cfg.RedisConfig.DB)
	cfg.RedisConfig.PoolSize = getEnvIntOrDefault("REDIS_POOL_SIZE", defaultInt(cfg.RedisConfig.PoolSize, 10))

	// Notification config
	cfg.NotificationConfig.Enabled = getEnvOrDefault("NOTIFICATIONS_ENABLED", boolStr(cfg.NotificationConfig.Enabled)) == "true"
	cfg.NotificationConfig.Telegram.Enabled = getEnvOrDefault("TELEGRAM_ENABLED", boolStr(cfg.NotificationConfig.Telegram.Enabled)) == "true"
	cfg.NotificationConfig.Telegram.BotToken = getEnvOrDefault("TELEGRAM_BOT_TOKEN", cfg.NotificationConfig.Telegram.BotToken)
	cfg.NotificationConfig.Telegram.ChatID = getEnvOrDefault("TELEGRAM_CHAT_ID", cfg.NotificationConfig.Telegram.ChatID)

	// Server config
	cfg.ServerConfig.Enabled = getEnvOrDefault("WEB_ENABLED", boolStr(cfg.ServerConfig.Enabled)) == "true"
	cfg.ServerConfig.Port = getEnvIntOrDefault("WEB_PORT", defaultInt(cfg.ServerConfig.Port, 8080))
	cfg.ServerConfig.Host = getEnvOrDefault("WEB_HOST", defaultStr(cfg.ServerConfig.Host, "0.0.0.0"))
	cfg.ServerConfig.AllowedOrigins = getEnvOrDefault("SERVER_ALLOWED_ORIGINS", defaultStr(cfg.ServerConfig.AllowedOrigins, "*"))
	cfg.ServerConfig.ReadTimeout = getEnvIntOrDefault("SERVER_READ_TIMEOUT", defaultInt(cfg.ServerConfig.ReadTimeout, 30))
	cfg.ServerConfig.WriteTimeout = getEnvIntOrDefault("SERVER_WRITE_TIMEOUT", defaultInt(cfg.ServerConfig.WriteTimeout, 30))
	cfg.ServerConfig.ShutdownTimeout = getEnvIntOrDefault("SERVER_SHUTDOWN_TIMEOUT", defaultInt(cfg.ServerConfig.ShutdownTimeout, 10))

	// Logging config
	cfg.LoggingConfig.Level = getEnvOrDefault("LOG_LEVEL", defaultStr(cfg.LoggingConfig.Level, "INFO"))
	cfg.LoggingConfig.Output = getEnvOrDefault("LOG_OUTPUT", defaultStr(cfg.LoggingConfig.Output, "stdout"))
	cfg.LoggingConfig.JSONFormat = getEnvOrDefault("LOG_JSON", boolStr(cfg.LoggingConfig.JSONFormat)) == "true"
}

func loadFromFile(filename string) (*Config, error) {
	file, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return &config, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func defaultStr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func defaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
