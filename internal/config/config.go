package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"macrotrend-snapshot/internal/domain"
)

const (
	DefaultStalenessWindow = 24 * time.Hour
	MinStalenessWindow     = 30 * time.Minute
	MaxStalenessWindow     = 7 * 24 * time.Hour
)

type Config struct {
	TelegramBotToken string
	DatabaseURL      string
	RedisURL         string
	HTTPPort         int
	ServiceAPIKey    string

	OpenAIAPIKey string
	OpenAIModel  string

	IndicatorSchema string
	StalenessWindow time.Duration
	RefreshEnabled  bool

	QuotesEnabled bool
	YahooBaseURL  string

	MCPTransport          string
	MCPHTTPBind           string
	MCPHTTPPort           int
	MCPAuthToken          string
	MCPRequestTimeoutSecs int
}

// Schema resolves the configured indicator schema. Load has already
// normalised the name, so this cannot fail for a loaded config.
func (c *Config) Schema() domain.Schema {
	schema, err := domain.SchemaByName(c.IndicatorSchema)
	if err != nil {
		return domain.MarketIndexSchema
	}
	return schema
}

func Load() *Config {
	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		ServiceAPIKey:    strings.TrimSpace(os.Getenv("SERVICE_API_KEY")),
		MCPAuthToken:     os.Getenv("MCP_AUTH_TOKEN"),
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set, bot will be disabled")
	}
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set, macro history will be disabled")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, dashboard cache will be in-memory only")
	}

	cfg.HTTPPort = 8080
	if v := strings.TrimSpace(os.Getenv("HTTP_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n < 65536 {
			cfg.HTTPPort = n
		}
	}

	cfg.OpenAIAPIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, default dashboard will use sample data")
	}

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o"
	}

	cfg.IndicatorSchema = strings.ToLower(strings.TrimSpace(os.Getenv("INDICATOR_SCHEMA")))
	if cfg.IndicatorSchema == "" {
		cfg.IndicatorSchema = domain.SchemaMarketIndex
	}
	if _, err := domain.SchemaByName(cfg.IndicatorSchema); err != nil {
		log.Printf("Warning: unsupported INDICATOR_SCHEMA=%q, defaulting to %s", cfg.IndicatorSchema, domain.SchemaMarketIndex)
		cfg.IndicatorSchema = domain.SchemaMarketIndex
	}

	cfg.StalenessWindow = DefaultStalenessWindow
	if v := strings.TrimSpace(os.Getenv("STALENESS_WINDOW")); v != "" {
		d, err := time.ParseDuration(v)
		switch {
		case err != nil:
			log.Printf("Warning: invalid STALENESS_WINDOW=%q, defaulting to %s", v, DefaultStalenessWindow)
		case d < MinStalenessWindow || d > MaxStalenessWindow:
			log.Printf("Warning: STALENESS_WINDOW=%s outside [%s, %s], defaulting to %s", d, MinStalenessWindow, MaxStalenessWindow, DefaultStalenessWindow)
		default:
			cfg.StalenessWindow = d
		}
	}

	cfg.RefreshEnabled = true
	if v := strings.TrimSpace(os.Getenv("REFRESH_ENABLED")); v != "" {
		cfg.RefreshEnabled = !strings.EqualFold(v, "false")
	}

	cfg.QuotesEnabled = strings.EqualFold(strings.TrimSpace(os.Getenv("QUOTES_ENABLED")), "true")
	cfg.YahooBaseURL = strings.TrimSpace(os.Getenv("YAHOO_BASE_URL"))

	cfg.MCPTransport = strings.ToLower(strings.TrimSpace(os.Getenv("MCP_TRANSPORT")))
	if cfg.MCPTransport == "" {
		cfg.MCPTransport = "stdio"
	}
	if cfg.MCPTransport != "stdio" && cfg.MCPTransport != "http" {
		log.Printf("Warning: unsupported MCP_TRANSPORT=%q, defaulting to stdio", cfg.MCPTransport)
		cfg.MCPTransport = "stdio"
	}

	cfg.MCPHTTPBind = strings.TrimSpace(os.Getenv("MCP_HTTP_BIND"))
	if cfg.MCPHTTPBind == "" {
		cfg.MCPHTTPBind = "127.0.0.1"
	}

	cfg.MCPHTTPPort = 8090
	if v := strings.TrimSpace(os.Getenv("MCP_HTTP_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPHTTPPort = n
		}
	}

	cfg.MCPRequestTimeoutSecs = 60
	if v := strings.TrimSpace(os.Getenv("MCP_REQUEST_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPRequestTimeoutSecs = n
		}
	}

	return cfg
}
