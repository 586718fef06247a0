package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"macrotrend-snapshot/internal/cache"
	"macrotrend-snapshot/internal/config"
	"macrotrend-snapshot/internal/db"
	"macrotrend-snapshot/internal/domain"
	"macrotrend-snapshot/internal/mcpserver"
	"macrotrend-snapshot/internal/provider"
	"macrotrend-snapshot/internal/repository"
	"macrotrend-snapshot/internal/resolver"
	"macrotrend-snapshot/internal/service"
	"macrotrend-snapshot/pkg/tracing"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "macrotrend-mcp"

var (
	loadEnvFunc      = godotenv.Load
	loadConfigFunc   = config.Load
	initPostgresFunc = db.InitPostgres
	initRedisFunc    = cache.InitRedis
	initTracerFunc   = tracing.InitTracer
	newLLMSourceFunc = func(tracer trace.Tracer, cfg *config.Config, schema domain.Schema) resolver.MacroCompanyFetcher {
		return provider.NewLLMSource(tracer, provider.NewOpenAIClient, cfg.OpenAIModel, schema)
	}
	runStdioFunc      = func(s *mcpserver.Server, ctx context.Context) error { return s.RunStdio(ctx) }
	serveHTTPFunc     = func(srv *http.Server) error { return srv.ListenAndServe() }
	setupSignalNotify = ossignal.Notify
)

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()
	schema := cfg.Schema()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)
	defer db.Close()

	tp, tracer, err := initTracerFunc(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	var history service.HistoryRepository
	if db.Pool != nil {
		history = repository.NewMacroRepository(db.Pool, tracer)
	}
	var redisClient service.RedisClient
	if cache.Client != nil {
		redisClient = cache.Client
	}

	var quotes resolver.CompanyFetcher
	if cfg.QuotesEnabled {
		quotes = provider.NewYahooQuoteProvider(tracer, cfg.YahooBaseURL)
	}
	res := resolver.New(tracer, schema, resolver.DefaultStrategies(
		newLLMSourceFunc(tracer, cfg, schema),
		quotes,
		provider.NewMockGenerator(schema),
		schema,
	)...)
	dashboard := service.NewDashboardService(tracer, res, schema, redisClient, history, cfg.StalenessWindow)
	server := mcpserver.New(tracer, dashboard, cfg.OpenAIAPIKey, tracing.ServiceVersion)

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-quit:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := run(ctx, cfg, server); err != nil {
		log.Printf("mcp server error: %v", err)
	}
	log.Println("MCP server exiting")
}

func run(ctx context.Context, cfg *config.Config, server *mcpserver.Server) error {
	if cfg.MCPTransport != "http" {
		log.Println("MCP server listening on stdio")
		return runStdioFunc(server, ctx)
	}

	timeout := time.Duration(cfg.MCPRequestTimeoutSecs) * time.Second
	mux := http.NewServeMux()
	mux.Handle("/mcp", server.HTTPHandler(cfg.MCPAuthToken, timeout))
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.MCPHTTPBind, cfg.MCPHTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("MCP server listening on http://%s/mcp", srv.Addr)
	if err := serveHTTPFunc(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
