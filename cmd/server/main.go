package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"macrotrend-snapshot/internal/bot"
	"macrotrend-snapshot/internal/cache"
	"macrotrend-snapshot/internal/config"
	"macrotrend-snapshot/internal/db"
	"macrotrend-snapshot/internal/domain"
	"macrotrend-snapshot/internal/handler"
	"macrotrend-snapshot/internal/job"
	"macrotrend-snapshot/internal/provider"
	"macrotrend-snapshot/internal/repository"
	"macrotrend-snapshot/internal/resolver"
	"macrotrend-snapshot/internal/service"
	"macrotrend-snapshot/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "macrotrend-snapshot/docs"
)

const serviceName = "macrotrend-snapshot"

var (
	loadEnvFunc      = godotenv.Load
	loadConfigFunc   = config.Load
	initPostgresFunc = db.InitPostgres
	initRedisFunc    = cache.InitRedis
	initTracerFunc   = tracing.InitTracer
	newMacroRepoFunc = repository.NewMacroRepository
	newLLMSourceFunc = func(tracer trace.Tracer, cfg *config.Config, schema domain.Schema) resolver.MacroCompanyFetcher {
		return provider.NewLLMSource(tracer, provider.NewOpenAIClient, cfg.OpenAIModel, schema)
	}
	newQuoteSourceFunc = func(tracer trace.Tracer, cfg *config.Config) resolver.CompanyFetcher {
		return provider.NewYahooQuoteProvider(tracer, cfg.YahooBaseURL)
	}
	newDashboardServiceFunc = service.NewDashboardService
	newRefreshJobFunc       = job.NewRefreshJob
	startRefreshJobFunc     = func(j *job.RefreshJob, ctx context.Context) { go j.Start(ctx) }
	startTelegramBotFunc    = func(d bot.DashboardSnapshotter, schema domain.Schema, credential string) {
		bot.StartTelegramBot(d, schema, credential)
	}
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Macrotrend Snapshot API
// @version         1.0
// @description     Macro indicators and tech company financials with provenance, fallback data and trends.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()
	schema := cfg.Schema()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Postgres and Redis are optional; both leave their globals nil when absent.
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
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	var history service.HistoryRepository
	if db.Pool != nil {
		macroRepo := newMacroRepoFunc(db.Pool, tracer)
		if err := macroRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		history = macroRepo
	}

	var redisClient service.RedisClient
	if cache.Client != nil {
		redisClient = cache.Client
	}

	var quotes resolver.CompanyFetcher
	if cfg.QuotesEnabled {
		quotes = newQuoteSourceFunc(tracer, cfg)
	}
	chain := resolver.DefaultStrategies(
		newLLMSourceFunc(tracer, cfg, schema),
		quotes,
		provider.NewMockGenerator(schema),
		schema,
	)
	res := resolver.New(tracer, schema, chain...)
	log.Printf("Resolver chain for %s: %v", schema.Name, res.Strategies())

	dashboard := newDashboardServiceFunc(tracer, res, schema, redisClient, history, cfg.StalenessWindow)

	if cfg.RefreshEnabled {
		refreshJob := newRefreshJobFunc(tracer, dashboard, cfg.OpenAIAPIKey, cfg.StalenessWindow)
		startRefreshJobFunc(refreshJob, ctx)
	}

	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	startTelegramBotFunc(dashboard, schema, cfg.OpenAIAPIKey)

	h := newHandlerFunc(tracer, dashboard, cfg.OpenAIAPIKey, cfg.ServiceAPIKey)

	r := newRouterFunc()
	r.Use(otelgin.Middleware(serviceName))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
