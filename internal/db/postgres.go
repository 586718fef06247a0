package db

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is nil when no database is configured or reachable; history is then disabled.
var Pool *pgxpool.Pool

var (
	newPool      = pgxpool.New
	pingPostgres = func(ctx context.Context, pool *pgxpool.Pool) error {
		return pool.Ping(ctx)
	}
)

func InitPostgres(ctx context.Context) {
	dsn := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dsn == "" {
		log.Println("DATABASE_URL not set; macro history disabled")
		return
	}

	pool, err := newPool(ctx, dsn)
	if err != nil {
		log.Printf("failed to create Postgres pool: %v", err)
		return
	}
	if err := pingPostgres(ctx, pool); err != nil {
		log.Printf("failed to connect to Postgres: %v", err)
		pool.Close()
		return
	}

	Pool = pool
	log.Println("Connected to Postgres")
}

// Close releases the pool if one was opened.
func Close() {
	if Pool != nil {
		Pool.Close()
		Pool = nil
	}
}
