// Package bbolt stores catalog snapshots in an embedded bbolt file.
package bbolt

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	bolt "go.etcd.io/bbolt"
)

var _ port.Cache = (*Cache)(nil)

var bucketCache = []byte("cache")

type Cache struct {
	db *bolt.DB
}

// Open opens or creates the database file at path.
func Open(path string) (*Cache, error) {
	const op = "bbolt.Open"

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCache)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	const op = "bbolt.Cache.Get"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var out []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketCache).Get([]byte(key))
		if v == nil {
			return domain.ErrCacheMiss
		}
		// v is only valid inside the transaction.
		out = make([]byte, len(v))
		copy(out, v)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	const op = "bbolt.Cache.Set"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCache).Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	const op = "bbolt.Cache.Delete"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCache).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Cache) Close() {
	const op = "bbolt.Cache.Close"
	log := slog.With("op", op)

	log.Info("closing bbolt database...")
	if err := c.db.Close(); err != nil {
		log.Error("failed to close", "err", err)
		return
	}
	log.Info("bbolt database is closed")
}
