package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/calculator"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int
	AllowedOrigins []string
}

// HedgeConfig holds engine and finder defaults
type HedgeConfig struct {
	Policy             string
	DefaultStake       float64
	MinProfitPct       float64
	MaxResults         int
	BetfairCommission  float64
	SmarketsCommission float64
}

// RedisConfig holds Redis connection configuration. An empty URL disables
// the scanner.
type RedisConfig struct {
	URL      string
	Password string
}

// StreamConfig defines the streams the scanner reads and writes
type StreamConfig struct {
	SnapshotStream    string
	OpportunityStream string
	OpportunityMaxLen int64 // Approximate stream cap, 0 is uncapped
	ConsumerGroup     string
	ConsumerID        string
	DedupTTLSeconds   int // 0 disables opportunity dedup
	PublishAttempts   int
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string // json, console
}

// Config holds all application configuration
type Config struct {
	Server ServerConfig
	Hedge  HedgeConfig
	Redis  RedisConfig
	Stream StreamConfig
	Log    LogConfig

	// Values that were set but could not be parsed
	parseErrors []error
}

// LoadConfig loads configuration from environment variables, reading a .env
// file first when one exists
func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.Server = ServerConfig{
		Port:           cfg.getEnvInt("HEDGE_SERVICE_PORT", 8085),
		AllowedOrigins: getEnvList("HEDGE_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:3001"}),
	}
	cfg.Hedge = HedgeConfig{
		Policy:             getEnv("HEDGE_COMMISSION_POLICY", string(calculator.DefaultPolicy)),
		DefaultStake:       cfg.getEnvFloat("HEDGE_DEFAULT_STAKE", 100.0),
		MinProfitPct:       cfg.getEnvFloat("HEDGE_MIN_PROFIT_PCT", 0.5),
		MaxResults:         cfg.getEnvInt("HEDGE_MAX_RESULTS", 20),
		BetfairCommission:  cfg.getEnvFloat("BETFAIR_COMMISSION", 0.05),
		SmarketsCommission: cfg.getEnvFloat("SMARKETS_COMMISSION", 0.02),
	}
	cfg.Redis = RedisConfig{
		URL:      getEnv("REDIS_URL", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
	}
	cfg.Stream = StreamConfig{
		SnapshotStream:    getEnv("HEDGE_SNAPSHOT_STREAM", "markets.snapshot"),
		OpportunityStream: getEnv("HEDGE_OPPORTUNITY_STREAM", "opportunities.hedge"),
		OpportunityMaxLen: int64(cfg.getEnvInt("HEDGE_OPPORTUNITY_STREAM_MAXLEN", 10000)),
		ConsumerGroup:     getEnv("CONSUMER_GROUP", "hedge-scanners"),
		ConsumerID:        getEnv("CONSUMER_ID", "hedge-scanner-1"),
		DedupTTLSeconds:   cfg.getEnvInt("HEDGE_DEDUP_TTL_SECONDS", 60),
		PublishAttempts:   cfg.getEnvInt("HEDGE_PUBLISH_ATTEMPTS", 3),
	}
	cfg.Log = LogConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", "json"),
	}

	return cfg
}

// ScannerEnabled reports whether a Redis URL was configured
func (c *Config) ScannerEnabled() bool {
	return c.Redis.URL != ""
}

// CommissionPolicy returns the parsed commission policy
func (c *Config) CommissionPolicy() (calculator.CommissionPolicy, error) {
	return calculator.ParsePolicy(c.Hedge.Policy)
}

// Validate reports every configuration problem at once
func (c *Config) Validate() error {
	errs := append([]error(nil), c.parseErrors...)

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("HEDGE_SERVICE_PORT must be 1-65535 (got %d)", c.Server.Port))
	}
	if _, err := c.CommissionPolicy(); err != nil {
		errs = append(errs, fmt.Errorf("HEDGE_COMMISSION_POLICY: %w", err))
	}
	if !(c.Hedge.DefaultStake > 0) {
		errs = append(errs, fmt.Errorf("HEDGE_DEFAULT_STAKE must be > 0 (got %v)", c.Hedge.DefaultStake))
	}
	if c.Hedge.MaxResults < 0 {
		errs = append(errs, fmt.Errorf("HEDGE_MAX_RESULTS must be >= 0 (got %d)", c.Hedge.MaxResults))
	}
	if !inUnitRange(c.Hedge.BetfairCommission) {
		errs = append(errs, fmt.Errorf("BETFAIR_COMMISSION must be in [0, 1] (got %v)", c.Hedge.BetfairCommission))
	}
	if !inUnitRange(c.Hedge.SmarketsCommission) {
		errs = append(errs, fmt.Errorf("SMARKETS_COMMISSION must be in [0, 1] (got %v)", c.Hedge.SmarketsCommission))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or console (got %q)", c.Log.Format))
	}

	if c.ScannerEnabled() {
		if c.Stream.SnapshotStream == "" || c.Stream.OpportunityStream == "" {
			errs = append(errs, errors.New("snapshot and opportunity streams are required when REDIS_URL is set"))
		}
		if c.Stream.OpportunityMaxLen < 0 {
			errs = append(errs, fmt.Errorf("HEDGE_OPPORTUNITY_STREAM_MAXLEN must be >= 0 (got %d)", c.Stream.OpportunityMaxLen))
		}
		if c.Stream.DedupTTLSeconds < 0 {
			errs = append(errs, fmt.Errorf("HEDGE_DEDUP_TTL_SECONDS must be >= 0 (got %d)", c.Stream.DedupTTLSeconds))
		}
		if c.Stream.PublishAttempts < 1 {
			errs = append(errs, fmt.Errorf("HEDGE_PUBLISH_ATTEMPTS must be >= 1 (got %d)", c.Stream.PublishAttempts))
		}
		if c.Stream.SnapshotStream == c.Stream.OpportunityStream {
			errs = append(errs, fmt.Errorf("snapshot and opportunity streams must differ (both %q)", c.Stream.SnapshotStream))
		}
	}

	return errors.Join(errs...)
}

// inUnitRange is false for NaN
func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func (c *Config) getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			c.parseErrors = append(c.parseErrors, fmt.Errorf("%s: %q is not an integer", key, value))
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func (c *Config) getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			c.parseErrors = append(c.parseErrors, fmt.Errorf("%s: %q is not a number", key, value))
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}
