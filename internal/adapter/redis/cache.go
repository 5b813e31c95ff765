// Package redis stores catalog snapshots in Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/redis/go-redis/v9"
)

var _ port.Cache = (*Cache)(nil)

const (
	defaultPrefix = "storefront:"
	pingTimeout   = 5 * time.Second
)

type Config struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
	Prefix   string
	// TTL of stored snapshots, zero keeps them until deleted.
	TTL time.Duration
}

type Cache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewCache(ctx context.Context, cfg Config) (*Cache, error) {
	const op = "redis.NewCache"

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: redis is unavailable: %w", op, err)
	}
	slog.Info("redis is available", "op", op, "addr", cfg.Addr)

	return newCache(client, cfg.Prefix, cfg.TTL), nil
}

func newCache(client redis.UniversalClient, prefix string, ttl time.Duration) *Cache {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Cache{client: client, prefix: prefix, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	const op = "redis.Cache.Get"

	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return val, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	const op = "redis.Cache.Set"

	if err := c.client.Set(ctx, c.prefix+key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	const op = "redis.Cache.Delete"

	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Cache) Close() {
	const op = "redis.Cache.Close"
	log := slog.With("op", op)

	log.Info("closing redis client...")
	if err := c.client.Close(); err != nil {
		log.Error("failed to close", "err", err)
		return
	}
	log.Info("redis client is closed")
}
