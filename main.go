package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/real-time-ressys/services/admin-console/internal/api"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/api/handlers"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/audit"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/config"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/downstream"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/logger"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/session"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/store"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/tracing"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/view"
)

func main() {
	// 1. Load Config
	cfg := config.Load()

	// 1.5 Init Logger
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	zlog.Info().Msg("logger initialized")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.InitTracing(ctx, tracing.Config{
		ServiceName:  tracing.ServiceName,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Enabled:      cfg.TracingEnabled,
	})
	if err != nil {
		zlog.Fatal().Err(err).Msg("tracing init failed")
	}

	// 2. Infrastructure: optional Redis and RabbitMQ
	var rdb *redis.Client
	var st store.Store = store.NewMemoryStore()
	if cfg.RedisURL != "" {
		rdb, err = store.NewRedisClient(cfg.RedisURL)
		if err != nil {
			zlog.Fatal().Err(err).Msg("redis connect failed")
		}
		st = store.NewRedisStore(rdb, cfg.StoreTTL)
		zlog.Info().Dur("ttl", cfg.StoreTTL).Msg("redis store ready")
	} else {
		zlog.Warn().Msg("REDIS_URL empty: in-memory store and in-process rate limiting")
	}

	var pub audit.Publisher = audit.NoopPublisher{}
	var rabbit *audit.RabbitPublisher
	if cfg.RabbitURL != "" {
		rabbit, err = audit.NewRabbitPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			zlog.Fatal().Err(err).Msg("rabbit publisher init failed")
		}
		pub = rabbit
		zlog.Info().Str("exchange", cfg.RabbitExchange).Msg("rabbit publisher ready")
	} else {
		zlog.Warn().Msg("RABBIT_URL empty: audit events are logged only")
	}

	// 3. Backend clients
	client := downstream.NewClient(downstream.ClientConfig{
		BaseURL:      cfg.BackendURL,
		ReadTimeout:  cfg.BackendReadTimeout,
		WriteTimeout: cfg.BackendWriteTimeout,
	})
	users := downstream.NewUserClient(client)
	todos := downstream.NewTodoClient(client)

	// 4. Rendering
	tr, err := view.NewTranslator(cfg.DefaultLocale)
	if err != nil {
		zlog.Fatal().Err(err).Msg("translations load failed")
	}
	rd, err := view.New(tr)
	if err != nil {
		zlog.Fatal().Err(err).Msg("templates parse failed")
	}

	// 5. Handlers
	if cfg.SessionSecret == "" {
		zlog.Warn().Msg("SESSION_SECRET empty: flash cookies are signed with the public development key")
	}
	console := handlers.NewConsole(users, todos, st, rd, session.New(cfg.SessionSecret), audit.NewRecorder(logger.Log, pub))

	checkers := []handlers.ReadinessChecker{
		handlers.NewFuncChecker("backend", func(ctx context.Context) error {
			_, err := todos.CountTodos(ctx)
			return err
		}),
	}
	if rdb != nil {
		checkers = append(checkers, handlers.NewFuncChecker("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}))
	}

	// 6. Router
	r, err := api.NewRouter(api.Deps{
		Config:    cfg,
		Console:   console,
		Readiness: handlers.NewReadinessHandler(checkers...),
		Redis:     rdb,
	})
	if err != nil {
		zlog.Fatal().Err(err).Msg("router init failed")
	}

	// 7. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		zlog.Info().Str("port", cfg.Port).Str("backend", cfg.BackendURL).Msg("admin console starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	zlog.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("http shutdown failed")
	}
	if rabbit != nil {
		_ = rabbit.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("tracer shutdown failed")
	}
}
