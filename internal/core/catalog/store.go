// Package catalog holds the loaded product collection.
//
// A [Store] is populated once by [Store.Load] from a cached snapshot or
// from the seed dataset and is read-only afterwards.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/retry"
)

var _ port.ProductSource = (*Store)(nil)

const (
	DefaultCacheKey = "storefront_products_cache"

	defaultReadAttempts = 3
	defaultReadDelay    = 50 * time.Millisecond
)

var (
	ErrNoSeed = errors.New("seed source is not set")

	errCorruptSnapshot = errors.New("corrupt catalog snapshot")
)

type StoreOpt func(*storeOpts) error

type storeOpts struct {
	seed     port.SeedSource
	cache    port.Cache
	codec    port.CatalogCodec
	key      string
	attempts int
	delay    time.Duration
}

func SeedOpt(seed port.SeedSource) StoreOpt {
	return func(o *storeOpts) error {
		if seed == nil {
			return ErrNoSeed
		}
		o.seed = seed
		return nil
	}
}

// CacheOpt enables snapshot caching under key.
func CacheOpt(cache port.Cache, codec port.CatalogCodec, key string) StoreOpt {
	return func(o *storeOpts) error {
		if cache == nil || codec == nil {
			return errors.New("cache and codec are required")
		}
		if key == "" {
			key = DefaultCacheKey
		}
		o.cache = cache
		o.codec = codec
		o.key = key
		return nil
	}
}

// CacheReadRetryOpt sets how many times a failed cache read is attempted.
// A cache miss is never retried.
func CacheReadRetryOpt(attempts int, delay time.Duration) StoreOpt {
	return func(o *storeOpts) error {
		if attempts < 1 {
			return fmt.Errorf("invalid cache read attempts: %d", attempts)
		}
		o.attempts = attempts
		o.delay = delay
		return nil
	}
}

type Store struct {
	seed     port.SeedSource
	cache    port.Cache
	codec    port.CatalogCodec
	key      string
	readConf retry.RetryConfig

	products []domain.Product
	index    map[string]int
}

func NewStore(opts ...StoreOpt) (*Store, error) {
	const op = "NewStore"

	options := storeOpts{
		attempts: defaultReadAttempts,
		delay:    defaultReadDelay,
	}
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if options.seed == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNoSeed)
	}

	return &Store{
		seed:  options.seed,
		cache: options.cache,
		codec: options.codec,
		key:   options.key,
		readConf: retry.RetryConfig{
			MaxAttempts: options.attempts,
			Backoff:     retry.ExponentialBackoff(options.delay),
			ShouldRetry: retryableRead,
		},
		index: make(map[string]int),
	}, nil
}

func retryableRead(err error) bool {
	return !errors.Is(err, domain.ErrCacheMiss) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// Load populates the store.
//
// A usable cached snapshot wins. Otherwise the seed is used and, unless
// the cache failed to answer, written back as the new snapshot.
// Cache failures never fail Load; an empty seed does.
func (s *Store) Load(ctx context.Context) error {
	const op = "Store.Load"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if s.cache == nil {
		if err := s.loadSeed(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		log.Info("catalog loaded from seed", "products", len(s.products))
		return nil
	}

	cached, cacheErr := s.readSnapshot(ctx)
	if cacheErr == nil && len(cached) != 0 {
		s.set(cached, false)
		log.Info("catalog loaded from cache", "products", len(s.products))
		return nil
	}

	if err := s.loadSeed(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	writeBack := true
	switch {
	case cacheErr == nil:
		log.Warn("cached catalog snapshot is empty, using seed")
	case errors.Is(cacheErr, domain.ErrCacheMiss):
		log.Info("catalog snapshot is not cached, using seed")
	case errors.Is(cacheErr, errCorruptSnapshot):
		log.Warn("cached catalog snapshot is unreadable, using seed", "err", cacheErr)
	default:
		writeBack = false
		log.Warn("catalog cache is unavailable, using seed", "err", cacheErr)
	}

	if writeBack {
		s.writeSnapshot(ctx)
	}
	log.Info("catalog loaded from seed", "products", len(s.products))
	return nil
}

func (s *Store) readSnapshot(ctx context.Context) ([]domain.Product, error) {
	const op = "Store.readSnapshot"

	data, err := retry.DoWithResult(ctx, s.readConf, func() ([]byte, error) {
		return s.cache.Get(ctx, s.key)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ps, err := s.codec.DecodeCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, errCorruptSnapshot, err)
	}
	return ps, nil
}

func (s *Store) writeSnapshot(ctx context.Context) {
	const op = "Store.writeSnapshot"
	log := slog.With("op", op)

	data, err := s.codec.EncodeCatalog(s.products)
	if err != nil {
		log.Warn("failed to encode catalog snapshot", "err", err)
		return
	}
	if err := s.cache.Set(ctx, s.key, data); err != nil {
		log.Warn("failed to cache catalog snapshot", "err", err)
		return
	}
	log.Debug("catalog snapshot cached", "key", s.key, "bytes", len(data))
}

func (s *Store) loadSeed() error {
	ps, err := s.seed.SeedProducts()
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmptySeed, err)
	}
	if len(ps) == 0 {
		return domain.ErrEmptySeed
	}
	s.set(ps, true)
	return nil
}

// set replaces the collection. The first product wins on duplicate IDs.
// Snapshots hold enriched products, so only seed records are enriched.
func (s *Store) set(ps []domain.Product, enrich bool) {
	const op = "Store.set"
	log := slog.With("op", op)

	products := make([]domain.Product, 0, len(ps))
	index := make(map[string]int, len(ps))
	for _, p := range ps {
		if _, ok := index[p.ID]; ok {
			log.Warn("duplicate product dropped", "id", p.ID)
			continue
		}
		index[p.ID] = len(products)
		if enrich {
			p = Enrich(p)
		}
		products = append(products, p.Normalized())
	}

	s.products = products
	s.index = index
}

// All returns the collection in load order.
func (s *Store) All() []domain.Product {
	return slices.Clone(s.products)
}

func (s *Store) Product(id string) (domain.Product, error) {
	const op = "Store.Product"

	i, ok := s.index[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("%s: %q: %w", op, id, domain.ErrNotFound)
	}
	return s.products[i], nil
}

func (s *Store) Len() int {
	return len(s.products)
}

// ClearCache removes the cached snapshot. The loaded collection is kept.
func (s *Store) ClearCache(ctx context.Context) error {
	const op = "Store.ClearCache"

	if s.cache == nil {
		return nil
	}
	if err := s.cache.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	slog.Info("catalog cache cleared", "op", op, "key", s.key)
	return nil
}
