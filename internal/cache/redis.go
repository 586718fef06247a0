package cache

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Client is nil when Redis is disabled or unreachable; the dashboard then
// keeps results in memory only.
var Client *redis.Client

var (
	newRedisClient = func(opts *redis.Options) *redis.Client {
		return redis.NewClient(opts)
	}
	pingRedis = func(ctx context.Context, client *redis.Client) error {
		return client.Ping(ctx).Err()
	}
	parseRedisURL = redis.ParseURL
)

func InitRedis(ctx context.Context) {
	addr := strings.TrimSpace(os.Getenv("REDIS_URL"))
	if addr == "" {
		log.Println("REDIS_URL not set; dashboard cache is in-memory only")
		return
	}

	opts := &redis.Options{Addr: addr}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := parseRedisURL(addr)
		if err != nil {
			log.Printf("failed to parse REDIS_URL: %v", err)
			return
		}
		opts = parsed
	}

	client := newRedisClient(opts)
	if err := pingRedis(ctx, client); err != nil {
		log.Printf("failed to connect to Redis at %s: %v", opts.Addr, err)
		_ = client.Close()
		return
	}

	Client = client
	log.Println("Connected to Redis")
}
