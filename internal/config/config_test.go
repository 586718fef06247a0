package config

import (
	"testing"
	"time"

	"macrotrend-snapshot/internal/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TELEGRAM_BOT_TOKEN", "DATABASE_URL", "REDIS_URL", "HTTP_PORT", "SERVICE_API_KEY",
		"OPENAI_API_KEY", "OPENAI_MODEL", "INDICATOR_SCHEMA", "STALENESS_WINDOW",
		"REFRESH_ENABLED", "QUOTES_ENABLED", "YAHOO_BASE_URL",
		"MCP_TRANSPORT", "MCP_HTTP_BIND", "MCP_HTTP_PORT", "MCP_AUTH_TOKEN", "MCP_REQUEST_TIMEOUT_SECS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if cfg.HTTPPort != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.HTTPPort)
	}
	if cfg.OpenAIModel != "gpt-4o" {
		t.Fatalf("expected default model gpt-4o, got %s", cfg.OpenAIModel)
	}
	if cfg.IndicatorSchema != domain.SchemaMarketIndex || cfg.Schema().Name != domain.SchemaMarketIndex {
		t.Fatalf("expected market_index schema, got %s", cfg.IndicatorSchema)
	}
	if cfg.StalenessWindow != 24*time.Hour {
		t.Fatalf("expected 24h staleness window, got %s", cfg.StalenessWindow)
	}
	if !cfg.RefreshEnabled || cfg.QuotesEnabled {
		t.Fatalf("unexpected feature flags: refresh=%v quotes=%v", cfg.RefreshEnabled, cfg.QuotesEnabled)
	}
	if cfg.MCPTransport != "stdio" || cfg.MCPHTTPBind != "127.0.0.1" || cfg.MCPHTTPPort != 8090 {
		t.Fatalf("unexpected MCP defaults: %+v", cfg)
	}
}

func TestLoadWithEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis:6379")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("OPENAI_API_KEY", " sk-test ")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("INDICATOR_SCHEMA", "Consumer_Sentiment")
	t.Setenv("STALENESS_WINDOW", "6h")
	t.Setenv("QUOTES_ENABLED", "TRUE")
	t.Setenv("REFRESH_ENABLED", "false")
	t.Setenv("MCP_TRANSPORT", "http")

	cfg := Load()
	if cfg.TelegramBotToken != "token" || cfg.DatabaseURL != "postgres://example" || cfg.RedisURL != "redis:6379" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.HTTPPort != 9000 || cfg.OpenAIAPIKey != "sk-test" || cfg.OpenAIModel != "gpt-4o-mini" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Schema().Name != domain.SchemaConsumerSentiment {
		t.Fatalf("expected consumer_sentiment schema, got %s", cfg.IndicatorSchema)
	}
	if cfg.StalenessWindow != 6*time.Hour {
		t.Fatalf("expected 6h window, got %s", cfg.StalenessWindow)
	}
	if !cfg.QuotesEnabled || cfg.RefreshEnabled {
		t.Fatalf("unexpected feature flags: refresh=%v quotes=%v", cfg.RefreshEnabled, cfg.QuotesEnabled)
	}
	if cfg.MCPTransport != "http" {
		t.Fatalf("expected http transport, got %s", cfg.MCPTransport)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_PORT", "bad")
	t.Setenv("INDICATOR_SCHEMA", "crypto")
	t.Setenv("MCP_TRANSPORT", "websocket")

	cfg := Load()
	if cfg.HTTPPort != 8080 {
		t.Fatalf("invalid port should fall back to default, got %d", cfg.HTTPPort)
	}
	if cfg.IndicatorSchema != domain.SchemaMarketIndex {
		t.Fatalf("unknown schema should fall back to market_index, got %s", cfg.IndicatorSchema)
	}
	if cfg.MCPTransport != "stdio" {
		t.Fatalf("unsupported transport should fall back to stdio, got %s", cfg.MCPTransport)
	}
}

func TestLoadStalenessWindowBounds(t *testing.T) {
	cases := map[string]time.Duration{
		"10m":   24 * time.Hour,
		"200h":  24 * time.Hour,
		"daily": 24 * time.Hour,
		"30m":   30 * time.Minute,
		"168h":  168 * time.Hour,
	}
	for input, want := range cases {
		clearEnv(t)
		t.Setenv("STALENESS_WINDOW", input)
		if got := Load().StalenessWindow; got != want {
			t.Fatalf("STALENESS_WINDOW=%s: expected %s, got %s", input, want, got)
		}
	}
}
