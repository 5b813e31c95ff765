package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/niksmo/storefront/config"
	"github.com/niksmo/storefront/internal/adapter"
	"github.com/niksmo/storefront/internal/adapter/bbolt"
	"github.com/niksmo/storefront/internal/adapter/httphandler"
	"github.com/niksmo/storefront/internal/adapter/kafka"
	"github.com/niksmo/storefront/internal/adapter/memory"
	"github.com/niksmo/storefront/internal/adapter/redis"
	"github.com/niksmo/storefront/internal/adapter/seed"
	"github.com/niksmo/storefront/internal/adapter/snapshot"
	"github.com/niksmo/storefront/internal/adapter/storage"
	"github.com/niksmo/storefront/internal/core/catalog"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/internal/core/service"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

type broker struct {
	serde       schema.Serde
	producer    kafka.SearchEventsProducer
	processor   *kafka.TrendingProcessor
	countsView  *kafka.SearchCountsView
	initialized bool
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	cache      port.Cache
	closers    []func()
	store      *catalog.Store
	broker     broker
	service    *service.Service
	httpServer httphandler.HTTPServer
}

// New builds the storefront server: catalog, optional broker flows
// and the HTTP API.
func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger(os.Stderr)
	app.initCache()
	app.initStore()
	app.initBroker()
	app.initCoreService()
	app.initInboundAdapters()

	return app
}

// NewCatalog builds the catalog and the core service only.
// Logs go to w.
func NewCatalog(ctx context.Context, cfg config.Config, w io.Writer) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger(w)
	app.initCache()
	app.initStore()
	app.initCoreService()

	return app
}

func (app *App) Service() *service.Service {
	return app.service
}

func (app *App) Store() *catalog.Store {
	return app.store
}

func (app *App) initLogger(w io.Writer) {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(w, opts))
	slog.SetDefault(logger)
}

// initCache opens the configured cache. An unreachable backend is not
// fatal: the catalog is served from the seed without a cache.
func (app *App) initCache() {
	const op = "App.initCache"
	log := slog.With("op", op, "driver", app.cfg.Catalog.CacheDriver)

	c, closeFn, err := app.openCache()
	if err != nil {
		log.Warn("catalog cache is unavailable, serving seed only", "err", err)
		return
	}
	app.cache = c
	if closeFn != nil {
		app.closers = append(app.closers, closeFn)
	}
	log.Info("catalog cache is ready")
}

func (app *App) openCache() (port.Cache, func(), error) {
	switch app.cfg.Catalog.CacheDriver {
	case config.CacheDriverRedis:
		c, err := redis.NewCache(app.ctx, redis.Config{
			Addr:     app.cfg.Redis.Addr,
			Password: app.cfg.Redis.Password,
			DB:       app.cfg.Redis.DB,
			PoolSize: app.cfg.Redis.PoolSize,
			Prefix:   app.cfg.Redis.Prefix,
			TTL:      app.cfg.Redis.TTL,
		})
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil

	case config.CacheDriverBbolt:
		c, err := bbolt.Open(app.cfg.Bbolt.Path)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil

	case config.CacheDriverSQL:
		db, err := storage.NewSQLDB(app.ctx, app.cfg.SQLDB)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewCacheRepository(db), db.Close, nil

	default:
		return memory.NewCache(), nil, nil
	}
}

func (app *App) initStore() {
	const op = "App.initStore"

	seedSource := seed.Embedded()
	if path := app.cfg.Catalog.SeedFile; path != "" {
		s, err := seed.FromFile(path)
		if err != nil {
			app.fallDown(op, err)
		}
		seedSource = s
	}

	opts := []catalog.StoreOpt{
		catalog.SeedOpt(seedSource),
		catalog.CacheReadRetryOpt(
			app.cfg.Catalog.CacheRetries, app.cfg.Catalog.CacheRetryDelay,
		),
	}
	if app.cache != nil {
		opts = append(opts,
			catalog.CacheOpt(app.cache, snapshot.NewCodec(), app.cfg.Catalog.CacheKey),
		)
	}

	store, err := catalog.NewStore(opts...)
	if err != nil {
		app.fallDown(op, err)
	}

	if err := store.Load(app.ctx); err != nil {
		app.fallDown(op, err)
	}
	slog.Info("catalog is loaded", "op", op, "products", store.Len())
	app.store = store
}

func (app *App) initBroker() {
	const op = "App.initBroker"

	bcfg := app.cfg.Broker
	if !bcfg.Enabled {
		slog.Info("broker is disabled, trending searches are unavailable", "op", op)
		return
	}

	base, err := newBrokerBase(app.ctx, bcfg)
	if err != nil {
		app.fallDown(op, err)
	}
	serde, tlsConfig, clientConfig := base.serde, base.tlsConfig, base.clientConfig

	producer, err := kafka.NewSearchEventsProducer(
		kafka.ProducerClientOpt(app.ctx, clientConfig, bcfg.Topics.SearchEvents),
		kafka.ProducerEncoderOpt(serde),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	processor, err := kafka.NewTrendingProcessor(kafka.TrendingProcessorConfig{
		SeedBrokers: bcfg.SeedBrokers,
		InputStream: bcfg.Topics.SearchEvents,
		Group:       bcfg.Consumers.TrendingGroup,
		Serde:       serde,
		TLSConfig:   tlsConfig,
		User:        bcfg.User,
		Pass:        bcfg.Pass,
	})
	if err != nil {
		app.fallDown(op, err)
	}

	countsView, err := kafka.NewSearchCountsView(kafka.SearchCountsViewConfig{
		SeedBrokers: bcfg.SeedBrokers,
		Group:       bcfg.Consumers.TrendingGroup,
		TLSConfig:   tlsConfig,
		User:        bcfg.User,
		Pass:        bcfg.Pass,
	})
	if err != nil {
		app.fallDown(op, err)
	}

	app.broker = broker{
		serde:       serde,
		producer:    producer,
		processor:   processor,
		countsView:  countsView,
		initialized: true,
	}
}

type brokerBase struct {
	serde        schema.Serde
	tlsConfig    *tls.Config
	clientConfig kafka.ClientConfig
}

func newBrokerBase(ctx context.Context, bcfg config.Broker) (brokerBase, error) {
	const op = "newBrokerBase"

	tlsConfig, err := adapter.MakeTLSConfig(bcfg.TLS.CA, bcfg.TLS.Cert, bcfg.TLS.Key)
	if err != nil {
		return brokerBase{}, fmt.Errorf("%s: %w", op, err)
	}

	srOpts := []sr.ClientOpt{sr.URLs(bcfg.SchemaRegistryURLs...)}
	if tlsConfig != nil {
		srOpts = append(srOpts, sr.DialTLSConfig(tlsConfig))
	}
	if bcfg.User != "" {
		srOpts = append(srOpts, sr.BasicAuth(bcfg.User, bcfg.Pass))
	}
	srClient, err := sr.NewClient(srOpts...)
	if err != nil {
		return brokerBase{}, fmt.Errorf("%s: %w", op, err)
	}

	serde, err := schema.NewSerdeSearchEventV1(
		ctx,
		schema.SubjectOpt(bcfg.Topics.SearchEvents+"-value"),
		schema.SchemaIdentifierOpt(schema.NewRegistryIdentifier(srClient)),
	)
	if err != nil {
		return brokerBase{}, fmt.Errorf("%s: %w", op, err)
	}

	return brokerBase{
		serde:     serde,
		tlsConfig: tlsConfig,
		clientConfig: kafka.ClientConfig{
			SeedBrokers: bcfg.SeedBrokers,
			TLSConfig:   tlsConfig,
			User:        bcfg.User,
			Pass:        bcfg.Pass,
		},
	}, nil
}

// NewSearchEventsConsumer returns a consumer of the search events topic.
// Empty group tails the topic without committing offsets.
func NewSearchEventsConsumer(
	ctx context.Context, cfg config.Config, group string, h port.SearchEventsHandler,
) (*kafka.SearchEventsConsumer, error) {
	const op = "app.NewSearchEventsConsumer"

	base, err := newBrokerBase(ctx, cfg.Broker)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c, err := kafka.NewSearchEventsConsumer(
		kafka.ConsumerClientOpt(base.clientConfig, cfg.Broker.Topics.SearchEvents, group),
		kafka.ConsumerDecoderOpt(base.serde),
		kafka.ConsumerHandlerOpt(h),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func (app *App) initCoreService() {
	var opts []service.Opt
	if app.broker.initialized {
		opts = append(opts,
			service.SearchEventsOpt(app.broker.producer),
			service.SearchTrendsOpt(app.broker.countsView, app.broker.processor),
		)
	}
	app.service = service.New(app.store, opts...)
}

func (app *App) initInboundAdapters() {
	mux := http.NewServeMux()
	httphandler.RegisterCatalog(mux, app.service, app.service)
	httphandler.RegisterChat(mux, app.service)
	httphandler.RegisterSearches(mux, app.service)

	app.httpServer = httphandler.NewHTTPServer(app.cfg.HTTPServerAddr, mux)
}

// Run starts the broker flows and the HTTP server. stopFn is called
// when any of them stops unexpectedly.
func (app *App) Run(stopFn context.CancelFunc) {
	if app.broker.initialized {
		go app.broker.countsView.Run(app.ctx)
		app.service.Run(app.ctx, stopFn)
	}
	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	app.CloseCatalog()

	slog.Info("application is closed")
}

// CloseCatalog releases the core service and the cache.
func (app *App) CloseCatalog() {
	if app.service != nil {
		app.service.Close()
	}
	if app.broker.initialized {
		app.broker.producer.Close()
	}
	for i := len(app.closers) - 1; i >= 0; i-- {
		app.closers[i]()
	}
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
