package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/sugat009/ecommerce-site-with-graphql/internal/config"
	"github.com/sugat009/ecommerce-site-with-graphql/internal/event"
	handler "github.com/sugat009/ecommerce-site-with-graphql/internal/handler/http"
	"github.com/sugat009/ecommerce-site-with-graphql/internal/repository"
	redisrepo "github.com/sugat009/ecommerce-site-with-graphql/internal/repository/redis"
	"github.com/sugat009/ecommerce-site-with-graphql/internal/schema"
	"github.com/sugat009/ecommerce-site-with-graphql/internal/service"
	"github.com/sugat009/ecommerce-site-with-graphql/internal/store"
	"github.com/sugat009/ecommerce-site-with-graphql/pkg/breaker"
	"github.com/sugat009/ecommerce-site-with-graphql/pkg/database"
	"github.com/sugat009/ecommerce-site-with-graphql/pkg/health"
	pkgkafka "github.com/sugat009/ecommerce-site-with-graphql/pkg/kafka"
	"github.com/sugat009/ecommerce-site-with-graphql/pkg/middleware"
	"github.com/sugat009/ecommerce-site-with-graphql/pkg/tracing"
)

// App wires together all dependencies and runs the cart state service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	sessionID      string
	store          *store.Store
	service        *service.StateService
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	stopGauges     func()
	shutdownTracer func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
// Redis and Kafka are only contacted when enabled in cfg.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sessionID := cfg.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	logger = logger.With(slog.String("session_id", sessionID))

	// Initialize tracing.
	tracingCfg := tracing.DefaultConfig(handler.ServiceName)
	tracingCfg.Environment = cfg.Environment
	tracingCfg.Enabled = cfg.OTELEnabled
	tracingCfg.OTLPEndpoint = cfg.OTELEndpoint
	tracingCfg.SampleRate = cfg.OTELSampleRate
	shutdownTracer, err := tracing.InitTracer(ctx, tracingCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	// Seed the store before anything can read it.
	st := store.New()
	st.Seed(schema.Defaults())

	a := &App{
		cfg:            cfg,
		logger:         logger,
		sessionID:      sessionID,
		store:          st,
		shutdownTracer: shutdownTracer,
	}

	var (
		listeners []service.Listener
		saver     *repository.SnapshotSaver
	)

	// Initialize Redis snapshot persistence.
	if cfg.PersistEnabled {
		redisCfg := database.DefaultRedisConfig()
		redisCfg.Addr = cfg.RedisAddr
		redisCfg.Password = cfg.RedisPass
		redisCfg.DB = cfg.RedisDB

		rdb, err := database.NewRedisClient(ctx, redisCfg)
		if err != nil {
			_ = shutdownTracer(context.Background())
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.rdb = rdb
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)

		ttl := time.Duration(cfg.SnapshotTTL) * time.Hour
		repo := redisrepo.NewSnapshotRepository(rdb, ttl)
		saver = repository.NewSnapshotSaver(repo, sessionID, breaker.New(breaker.DefaultConfig("redis-snapshot"), logger), logger)
		listeners = append(listeners, saver)
	}

	// Initialize Kafka producer.
	if cfg.EventsEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		listeners = append(listeners, event.NewProducer(a.producer, sessionID, logger))
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Build the dependency graph.
	a.service = service.NewStateService(st, logger, listeners...)
	if saver != nil {
		a.restore(ctx, saver)
	}
	a.stopGauges = service.ObserveStore(st)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("store", func(context.Context) error {
		if !st.Seeded() {
			return errors.New("store has not been seeded")
		}
		return nil
	})
	if a.rdb != nil {
		healthHandler.RegisterNonCritical("redis", database.RedisChecker(a.rdb))
	}
	if a.producer != nil {
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
	}

	// HTTP router.
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins
	cors.Environment = cfg.Environment
	router := handler.NewRouter(a.service, healthHandler, logger, handler.RouterConfig{
		CORS:         cors,
		PprofEnabled: cfg.PprofEnabled,
		PprofCIDRs:   cfg.PprofCIDRs,
	})

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

// restore hydrates the store from the saved session snapshot. A snapshot that
// cannot be read is discarded and the session starts from the defaults.
func (a *App) restore(ctx context.Context, saver *repository.SnapshotSaver) {
	snap, found, err := saver.Load(ctx)
	if err != nil {
		a.logger.Warn("failed to load session snapshot, starting empty",
			slog.String("error", err.Error()),
		)
		if !errors.Is(err, repository.ErrCorruptSnapshot) {
			return
		}
		if err := saver.Discard(ctx); err != nil {
			a.logger.Warn("failed to discard session snapshot", slog.String("error", err.Error()))
		}
		return
	}
	if !found {
		a.logger.Info("no saved session snapshot, starting empty")
		return
	}
	if err := a.service.Restore(ctx, snap); err != nil {
		a.logger.Warn("failed to restore session snapshot", slog.String("error", err.Error()))
	}
}

// Handler returns the HTTP handler serving the service routes.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// SessionID returns the id of the session this process holds.
func (a *App) SessionID() string {
	return a.sessionID
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if a.stopGauges != nil {
		a.stopGauges()
	}

	// Close Kafka producer.
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	// Close Redis client.
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	if err := a.shutdownTracer(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
