package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
)

func stubRedis(t *testing.T, pingErr error) *string {
	t.Helper()

	origNewClient := newRedisClient
	origPing := pingRedis
	t.Cleanup(func() {
		newRedisClient = origNewClient
		pingRedis = origPing
		Client = nil
	})

	var capturedAddr string
	newRedisClient = func(opts *redis.Options) *redis.Client {
		capturedAddr = opts.Addr
		return redis.NewClient(opts)
	}
	pingRedis = func(ctx context.Context, client *redis.Client) error {
		return pingErr
	}
	return &capturedAddr
}

func TestInitRedisWithCustomAddr(t *testing.T) {
	t.Setenv("REDIS_URL", "redis:9999")
	captured := stubRedis(t, nil)

	InitRedis(context.Background())
	if *captured != "redis:9999" {
		t.Fatalf("expected custom addr, got %s", *captured)
	}
	if Client == nil {
		t.Fatal("expected client to be set")
	}
}

func TestInitRedisParsesURL(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://cache.internal:6380/2")
	captured := stubRedis(t, nil)

	InitRedis(context.Background())
	if *captured != "cache.internal:6380" {
		t.Fatalf("expected parsed addr, got %s", *captured)
	}
}

func TestInitRedisDisabledWithoutURL(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	captured := stubRedis(t, nil)

	InitRedis(context.Background())
	if *captured != "" || Client != nil {
		t.Fatal("expected Redis to stay disabled")
	}
}

func TestInitRedisPingFailureIsNotFatal(t *testing.T) {
	t.Setenv("REDIS_URL", "localhost:6379")
	stubRedis(t, errors.New("connection refused"))

	InitRedis(context.Background())
	if Client != nil {
		t.Fatal("expected nil client after ping failure")
	}
}
