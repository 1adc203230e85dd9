package redis

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/saxenaaman628/org-voting-system/config"
)

// NewClient builds a client from the configuration. REDIS_URI may be a
// redis:// URL or a bare host:port.
func NewClient(cfg config.Config) (*redis.Client, error) {
	if strings.HasPrefix(cfg.RedisURI, "redis://") || strings.HasPrefix(cfg.RedisURI, "rediss://") {
		opt, err := redis.ParseURL(cfg.RedisURI)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURI,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}), nil
}

// MustRedis connects and pings, exiting the process on failure.
func MustRedis(cfg config.Config) *redis.Client {
	rdb, err := NewClient(cfg)
	if err != nil {
		log.Fatalf("❌ redis: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pong, err := rdb.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	log.Printf("✅ Redis connected: %s", pong)
	return rdb
}
