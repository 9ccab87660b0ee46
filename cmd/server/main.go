package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vn.io.arda/reminder/internal/application"
	"vn.io.arda/reminder/internal/config"
	"vn.io.arda/reminder/internal/dispatch"
	"vn.io.arda/reminder/internal/domain"
	"vn.io.arda/reminder/internal/infrastructure/memory"
	"vn.io.arda/reminder/internal/infrastructure/postgres"
	"vn.io.arda/reminder/internal/infrastructure/redislock"
	"vn.io.arda/reminder/internal/infrastructure/sqlite"
	kafkaconsumer "vn.io.arda/reminder/internal/kafka"
	"vn.io.arda/reminder/internal/messages"
	"vn.io.arda/reminder/internal/metrics"
	transporthttp "vn.io.arda/reminder/internal/transport/http"
	"vn.io.arda/reminder/internal/transport/mw"
)

type notificationStore interface {
	domain.NotificationStore
	domain.DueSource
}

func main() {
	// ── Logging ──────────────────────────────────────────────────────────────
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// ── Config ───────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if cfg.Server.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Info().
		Str("env", cfg.Server.Env).
		Str("port", cfg.Server.Port).
		Str("store", cfg.Store.Driver).
		Msg("starting reminder notification service")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Database ──────────────────────────────────────────────────────────────
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("postgres ping failed")
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("postgres migration failed")
	}
	log.Info().Msg("postgres connected")

	// ── Stores ───────────────────────────────────────────────────────────────
	fallback, ok := domain.ParsePermissionStatus(cfg.Permissions.DefaultStatus)
	if !ok {
		log.Warn().Str("status", cfg.Permissions.DefaultStatus).Msg("unknown default permission status, using undetermined")
		fallback = domain.PermissionUndetermined
	}

	var (
		store       notificationStore
		permissions domain.PermissionStore
	)
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Store.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Store.SQLitePath).Msg("failed to open sqlite store")
		}
		defer db.Close()
		store, permissions = db, sqlite.NewPermissions(db, fallback)
	case config.DriverMemory:
		store, permissions = memory.NewStore(), memory.NewPermissions(fallback)
	default:
		store, permissions = postgres.NewNotificationStore(pool), postgres.NewPermissionStore(pool, fallback)
	}
	items := postgres.NewItemRepository(pool)

	// ── Metrics ──────────────────────────────────────────────────────────────
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// ── Application Service ───────────────────────────────────────────────────
	opts := []application.Option{
		application.WithMetrics(m),
		application.WithReminderLeadDays(cfg.Scheduler.ReminderLeadDays),
		application.WithBulkConcurrency(cfg.Scheduler.BulkConcurrency),
		application.WithLocale(messages.Locale(cfg.Messages.Locale)),
	}
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis ping failed, sync lock may be unavailable")
		}
		locker, err := redislock.New(rdb, cfg.Redis.LockTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create sync lock")
		}
		opts = append(opts, application.WithLocker(locker))
	}
	svc := application.NewService(store, items, permissions, opts...)

	// ── SSE Hub & Dispatcher ─────────────────────────────────────────────────
	hub := transporthttp.NewHub()
	go dispatch.New(store, hub, m).Run(ctx, cfg.Scheduler.DispatchInterval)

	// ── HTTP Server ───────────────────────────────────────────────────────────
	handler := transporthttp.NewHandler(svc, hub)
	router := transporthttp.NewRouter(handler, mw.JWTAuth(cfg.Auth.JWTSecret, cfg.Auth.Issuer), reg)

	// ── Kafka Consumer ────────────────────────────────────────────────────────
	if cfg.Kafka.Enabled {
		consumer, err := kafkaconsumer.New(
			cfg.Kafka.Brokers,
			cfg.Kafka.ConsumerGroupID,
			cfg.Kafka.Topics,
			svc,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create kafka consumer")
		}
		go consumer.Start(ctx)
		log.Info().Strs("topics", cfg.Kafka.Topics).Msg("kafka consumer started")
	}

	// ── Periodic Resync ───────────────────────────────────────────────────────
	if cfg.Scheduler.ResyncInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.Scheduler.ResyncInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					svc.ResyncAll(ctx)
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	// ── Start HTTP Server ─────────────────────────────────────────────────────
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := router.Start(":" + cfg.Server.Port); err != nil {
			log.Info().Msg("HTTP server stopped")
		}
	}()

	// ── Graceful Shutdown ─────────────────────────────────────────────────────
	<-ctx.Done()
	log.Info().Msg("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := router.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("reminder notification service stopped")
}
