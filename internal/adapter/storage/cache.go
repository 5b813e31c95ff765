package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.Cache = (*CacheRepository)(nil)

// A CacheRepository keeps cache entries in the cache_entries table.
type CacheRepository struct {
	sqldb sqldb
}

func NewCacheRepository(sqldb sqldb) CacheRepository {
	return CacheRepository{sqldb}
}

func (r CacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	const op = "CacheRepository.Get"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT value FROM cache_entries WHERE key = $1;`

	var value []byte
	err := r.sqldb.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCacheMiss
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return value, nil
}

func (r CacheRepository) Set(ctx context.Context, key string, value []byte) error {
	const op = "CacheRepository.Set"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `
		INSERT INTO cache_entries (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at;
	`

	if _, err := r.sqldb.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("%s: failed to exec: %w", op, err)
	}
	return nil
}

func (r CacheRepository) Delete(ctx context.Context, key string) error {
	const op = "CacheRepository.Delete"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `DELETE FROM cache_entries WHERE key = $1;`

	if _, err := r.sqldb.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("%s: failed to exec: %w", op, err)
	}
	return nil
}
