package app

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/niksmo/storefront/config"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.LoadFile("")
	require.NoError(t, err)
	return cfg
}

func TestNewCatalogCacheFallback(t *testing.T) {
	t.Run("unreachable redis serves seed", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Catalog.CacheDriver = config.CacheDriverRedis
		cfg.Redis.Addr = "127.0.0.1:1"

		var app *App
		require.NotPanics(t, func() {
			app = NewCatalog(t.Context(), cfg, io.Discard)
		})
		defer app.CloseCatalog()

		assert.Nil(t, app.cache)
		assert.Positive(t, app.Store().Len())

		ps, err := app.Service().Products(t.Context(), port.ProductsQuery{})
		require.NoError(t, err)
		assert.Len(t, ps, app.Store().Len())
		assert.NoError(t, app.Store().ClearCache(t.Context()))
	})

	t.Run("unopenable bbolt file serves seed", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Catalog.CacheDriver = config.CacheDriverBbolt
		cfg.Bbolt.Path = filepath.Join(t.TempDir(), "missing", "cache.db")

		var app *App
		require.NotPanics(t, func() {
			app = NewCatalog(t.Context(), cfg, io.Discard)
		})
		defer app.CloseCatalog()

		assert.Nil(t, app.cache)
		assert.Positive(t, app.Store().Len())
	})

	t.Run("memory cache by default", func(t *testing.T) {
		app := NewCatalog(t.Context(), testConfig(t), io.Discard)
		defer app.CloseCatalog()

		assert.NotNil(t, app.cache)
		assert.Positive(t, app.Store().Len())
	})
}
