// Package app assembles the storefront: local snapshot storage, the three
// session stores, the marketplace gateway, car notifications and the HTTP API.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/limosnd/Marketplace-go-grahpql/pkg/graphql"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/health"
	pkgkafka "github.com/limosnd/Marketplace-go-grahpql/pkg/kafka"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/middleware"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/storage"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/storage/redisstore"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/tracing"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/config"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/event"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/gateway"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/guard"
	handler "github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/handler/http"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/repository"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/service"
)

const (
	serviceVersion = "0.1.0"
	startupTimeout = 10 * time.Second
	drainTimeout   = 10 * time.Second
)

// closer is one step of shutdown. Steps run in reverse order of
// registration; a failing step marked fatal makes Shutdown return an error.
type closer struct {
	name  string
	fatal bool
	fn    func(ctx context.Context) error
}

// App is one storefront session process.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	instanceID string
	server     *http.Server
	source     *event.KafkaSource
	closers    []closer
	closeOnce  sync.Once
	closeErr   error
}

// NewApp builds every component from cfg. Nothing is served until Run.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	a := &App{cfg: cfg, logger: logger, instanceID: cfg.InstanceID}
	if a.instanceID == "" {
		a.instanceID = uuid.NewString()
	}

	if err := a.build(ctx); err != nil {
		_ = a.Shutdown()
		return nil, err
	}
	return a, nil
}

func (a *App) onClose(name string, fatal bool, fn func(context.Context) error) {
	a.closers = append(a.closers, closer{name: name, fatal: fatal, fn: fn})
}

func (a *App) build(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger

	shutdownTracer, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    handler.ServiceName,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	a.onClose("tracer", false, shutdownTracer)

	backend, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	store := storage.NewAdapter(backend)
	a.onClose("storage", true, func(context.Context) error { return store.Close() })
	logger.Info("storage opened",
		slog.String("driver", cfg.StorageDriver),
		slog.Bool("available", store.Available()),
	)

	notifier := a.buildNotifier()

	cars := gateway.NewCarGateway(graphql.New(graphql.Config{
		Endpoint:   cfg.GraphQLEndpoint,
		Name:       "marketplace-graphql",
		Timeout:    cfg.GraphQLTimeout(),
		MaxRetries: cfg.GraphQLMaxRetries,
		RateLimit:  cfg.GraphQLRateLimitRPS,
	}, logger), notifier, logger)

	auth := service.NewAuthStore(ctx, repository.NewSessionRepository(store), logger)
	cart := service.NewCartStore(ctx, repository.NewCartRepository(store), logger)
	favorites := service.NewFavoritesStore(ctx, repository.NewFavoritesRepository(store), logger)

	sub := notifier.Subscribe(carEventSync(cart, favorites, logger))
	a.onClose("car event sync", false, func(context.Context) error {
		sub.Unsubscribe()
		return nil
	})

	if cfg.KafkaConsume {
		a.source = event.NewKafkaSource(cfg.KafkaBrokers, a.instanceID, notifier, idempotencyStore(cfg, backend), logger)
		a.onClose("kafka source", false, func(context.Context) error { return a.source.Close() })
	}

	router := handler.NewRouter(handler.Deps{
		Cars:         cars,
		Listing:      service.NewListing(cars, logger),
		Publications: service.NewPublications(cars, auth, logger),
		Cart:         cart,
		Favorites:    favorites,
		Auth:         auth,
		Events:       notifier,
		Gate:         guard.New(auth),
	}, a.healthChecks(store, cars), routerOptions(cfg), logger)

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	a.onClose("http server", true, a.server.Shutdown)
	return nil
}

// buildNotifier creates the car event stream, fanned out to Kafka when
// brokers are configured. The producer closes after the notifier drains.
func (a *App) buildNotifier() *event.Notifier {
	var opts []event.NotifierOption
	if a.cfg.KafkaEnabled() {
		producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(a.cfg.KafkaBrokers), a.logger)
		a.onClose("kafka producer", false, func(context.Context) error { return producer.Close() })
		opts = append(opts, event.WithSink(event.NewKafkaSink(producer, a.instanceID)))
		a.logger.Info("publishing car events to kafka",
			slog.Any("brokers", a.cfg.KafkaBrokers),
			slog.String("instance_id", a.instanceID),
		)
	}
	n := event.NewNotifier(a.logger, opts...)
	a.onClose("notifier", false, func(context.Context) error {
		n.Close()
		return nil
	})
	return n
}

// idempotencyStore shares processed event ids through Redis when Redis is
// the snapshot backend. Nil selects the source's in-memory default.
func idempotencyStore(cfg *config.Config, backend storage.Storage) pkgkafka.IdempotencyStore {
	rs, ok := backend.(*redisstore.Store)
	if !ok {
		return nil
	}
	return pkgkafka.NewRedisIdempotencyStore(rs.Client(), cfg.RedisPrefix+"processed:", event.IdempotencyTTL)
}

func (a *App) healthChecks(store *storage.Adapter, cars *gateway.CarGateway) *health.Handler {
	h := health.NewHandler()
	h.RegisterCritical("storage", store.Ping)
	h.RegisterCritical("marketplace_api", func(ctx context.Context) error {
		_, err := cars.Health(ctx)
		return err
	})
	if a.cfg.KafkaEnabled() {
		brokers := a.cfg.KafkaBrokers
		h.RegisterNonCritical("kafka", func(ctx context.Context) error {
			return pkgkafka.PingBrokers(ctx, brokers)
		})
	}
	return h
}

func routerOptions(cfg *config.Config) handler.Options {
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins
	cors.Environment = cfg.Environment

	opts := handler.Options{
		CORS:          cors,
		CatalogMaxAge: cfg.CatalogCacheSeconds,
	}
	if cfg.PprofEnabled {
		opts.PprofAllowlist = cfg.PprofAllowlist
	}
	return opts
}

// Handler returns the storefront API handler.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// InstanceID is the source id stamped on events this process publishes.
func (a *App) InstanceID() string {
	return a.instanceID
}

// Run serves HTTP and, when enabled, consumes car events from Kafka. It
// returns after ctx is canceled or the server fails, with everything shut down.
func (a *App) Run(ctx context.Context) error {
	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("http server: %w", err)
		}
	}()

	if a.source != nil {
		go func() {
			if err := a.source.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("kafka source stopped", slog.String("error", err.Error()))
			}
		}()
	}

	var err error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown requested")
	case err = <-serveErr:
	}
	return errors.Join(err, a.Shutdown())
}

// Shutdown runs the registered shutdown steps once; later calls return the
// first result.
func (a *App) Shutdown() error {
	a.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()

		var errs []error
		for i := len(a.closers) - 1; i >= 0; i-- {
			c := a.closers[i]
			if err := c.fn(ctx); err != nil {
				a.logger.Error("shutdown step failed",
					slog.String("step", c.name),
					slog.String("error", err.Error()),
				)
				if c.fatal {
					errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
				}
			}
		}
		a.closeErr = errors.Join(errs...)
		a.logger.Info("storefront stopped")
	})
	return a.closeErr
}
