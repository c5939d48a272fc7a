package config_test

import (
	"strings"
	"testing"

	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/calculator"
	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/config"
)

var envKeys = []string{
	"HEDGE_SERVICE_PORT", "HEDGE_ALLOWED_ORIGINS", "HEDGE_COMMISSION_POLICY", "HEDGE_DEFAULT_STAKE",
	"HEDGE_MIN_PROFIT_PCT", "HEDGE_MAX_RESULTS", "BETFAIR_COMMISSION", "SMARKETS_COMMISSION",
	"REDIS_URL", "REDIS_PASSWORD", "HEDGE_SNAPSHOT_STREAM", "HEDGE_OPPORTUNITY_STREAM", "HEDGE_OPPORTUNITY_STREAM_MAXLEN",
	"CONSUMER_GROUP", "CONSUMER_ID", "HEDGE_DEDUP_TTL_SECONDS", "HEDGE_PUBLISH_ATTEMPTS", "LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv blanks every variable the service reads; empty values fall back to defaults
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := config.LoadConfig()

	if cfg.Server.Port != 8085 {
		t.Errorf("Expected default port 8085, got %d", cfg.Server.Port)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("Unexpected default origins %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Hedge.Policy != "gross" {
		t.Errorf("Expected default policy 'gross', got '%s'", cfg.Hedge.Policy)
	}
	if cfg.Hedge.DefaultStake != 100 {
		t.Errorf("Expected default stake 100, got %f", cfg.Hedge.DefaultStake)
	}
	if cfg.Hedge.MinProfitPct != 0.5 {
		t.Errorf("Expected default min profit 0.5, got %f", cfg.Hedge.MinProfitPct)
	}
	if cfg.Hedge.MaxResults != 20 {
		t.Errorf("Expected default max results 20, got %d", cfg.Hedge.MaxResults)
	}
	if cfg.Hedge.BetfairCommission != 0.05 || cfg.Hedge.SmarketsCommission != 0.02 {
		t.Errorf("Unexpected default commissions %f/%f", cfg.Hedge.BetfairCommission, cfg.Hedge.SmarketsCommission)
	}
	if cfg.ScannerEnabled() {
		t.Error("Scanner should be disabled without REDIS_URL")
	}
	if cfg.Stream.SnapshotStream != "markets.snapshot" {
		t.Errorf("Expected snapshot stream 'markets.snapshot', got '%s'", cfg.Stream.SnapshotStream)
	}
	if cfg.Stream.OpportunityStream != "opportunities.hedge" {
		t.Errorf("Expected opportunity stream 'opportunities.hedge', got '%s'", cfg.Stream.OpportunityStream)
	}
	if cfg.Stream.OpportunityMaxLen != 10000 {
		t.Errorf("Expected opportunity stream cap 10000, got %d", cfg.Stream.OpportunityMaxLen)
	}
	if cfg.Stream.ConsumerGroup != "hedge-scanners" || cfg.Stream.ConsumerID != "hedge-scanner-1" {
		t.Errorf("Unexpected consumer %s/%s", cfg.Stream.ConsumerGroup, cfg.Stream.ConsumerID)
	}
	if cfg.Stream.DedupTTLSeconds != 60 || cfg.Stream.PublishAttempts != 3 {
		t.Errorf("Unexpected dedup/publish defaults %d/%d", cfg.Stream.DedupTTLSeconds, cfg.Stream.PublishAttempts)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("Unexpected log config %+v", cfg.Log)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults should validate, got %v", err)
	}
}

func TestLoadConfig_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("HEDGE_SERVICE_PORT", "9090")
	t.Setenv("HEDGE_ALLOWED_ORIGINS", "https://dash.example.com, https://ops.example.com")
	t.Setenv("HEDGE_COMMISSION_POLICY", "net_lay_odds")
	t.Setenv("HEDGE_DEFAULT_STAKE", "250")
	t.Setenv("BETFAIR_COMMISSION", "0.02")
	t.Setenv("REDIS_URL", "redis.example.com:6379")
	t.Setenv("REDIS_PASSWORD", "secretpass")
	t.Setenv("CONSUMER_ID", "custom-id")
	t.Setenv("LOG_FORMAT", "console")

	cfg := config.LoadConfig()

	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://ops.example.com" {
		t.Errorf("Unexpected origins %v", cfg.Server.AllowedOrigins)
	}
	policy, err := cfg.CommissionPolicy()
	if err != nil || policy != calculator.PolicyNetLayOdds {
		t.Errorf("Expected net_lay_odds policy, got %s (%v)", policy, err)
	}
	if cfg.Hedge.DefaultStake != 250 {
		t.Errorf("Expected stake 250, got %f", cfg.Hedge.DefaultStake)
	}
	if cfg.Hedge.BetfairCommission != 0.02 {
		t.Errorf("Expected betfair commission 0.02, got %f", cfg.Hedge.BetfairCommission)
	}
	if !cfg.ScannerEnabled() {
		t.Error("Scanner should be enabled with REDIS_URL")
	}
	if cfg.Redis.Password != "secretpass" {
		t.Errorf("Expected redis password 'secretpass', got '%s'", cfg.Redis.Password)
	}
	if cfg.Stream.ConsumerID != "custom-id" {
		t.Errorf("Expected consumer ID 'custom-id', got '%s'", cfg.Stream.ConsumerID)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	clearEnv(t)
	t.Setenv("HEDGE_SERVICE_PORT", "not-a-port")
	t.Setenv("HEDGE_COMMISSION_POLICY", "exchange_rules")
	t.Setenv("HEDGE_DEFAULT_STAKE", "-5")
	t.Setenv("SMARKETS_COMMISSION", "2")
	t.Setenv("LOG_FORMAT", "xml")

	err := config.LoadConfig().Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}

	for _, want := range []string{
		"HEDGE_SERVICE_PORT",
		"HEDGE_COMMISSION_POLICY",
		"HEDGE_DEFAULT_STAKE",
		"SMARKETS_COMMISSION",
		"LOG_FORMAT",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected error to mention %s, got: %v", want, err)
		}
	}
}

func TestValidate_Streams(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_URL", "localhost:6379")
	t.Setenv("HEDGE_SNAPSHOT_STREAM", "same")
	t.Setenv("HEDGE_OPPORTUNITY_STREAM", "same")

	if err := config.LoadConfig().Validate(); err == nil {
		t.Error("Expected error when both streams are the same")
	}
}

func TestValidate_NaNCommission(t *testing.T) {
	clearEnv(t)
	t.Setenv("BETFAIR_COMMISSION", "NaN")

	if err := config.LoadConfig().Validate(); err == nil {
		t.Error("Expected error for NaN commission")
	}
}

func TestValidate_ScannerTuning(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_URL", "localhost:6379")
	t.Setenv("HEDGE_DEDUP_TTL_SECONDS", "-1")
	t.Setenv("HEDGE_PUBLISH_ATTEMPTS", "0")

	err := config.LoadConfig().Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}
	for _, want := range []string{"HEDGE_DEDUP_TTL_SECONDS", "HEDGE_PUBLISH_ATTEMPTS"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected error mentioning %s, got %v", want, err)
		}
	}
}
