// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Wanderly identity HTTP API.
//
// # Startup Sequence
//
//  1. Load configuration and initialize the structured logger.
//  2. Run database migrations (idempotent).
//  3. Connect to PostgreSQL (pgxpool) and Redis.
//  4. Build the token service and the email pipeline.
//  5. Wire HTTP handlers.
//  6. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/wanderly/internal/api"
	"github.com/taibuivan/wanderly/internal/notify"
	"github.com/taibuivan/wanderly/internal/platform/config"
	"github.com/taibuivan/wanderly/internal/platform/constants"
	"github.com/taibuivan/wanderly/internal/platform/mail"
	"github.com/taibuivan/wanderly/internal/platform/metrics"
	"github.com/taibuivan/wanderly/internal/platform/middleware"
	"github.com/taibuivan/wanderly/internal/platform/migration"
	pgstore "github.com/taibuivan/wanderly/internal/platform/postgres"
	redisstore "github.com/taibuivan/wanderly/internal/platform/redis"
	"github.com/taibuivan/wanderly/internal/platform/sec"
	"github.com/taibuivan/wanderly/internal/users/auth"
)

func main() {
	// ── 1. Configuration & Logger ─────────────────────────────────────────
	bootLog := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String("app", constants.AppName))

	cfg, err := config.Load()
	must(bootLog, err, "load configuration")

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})).With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Bool("amqp", cfg.AMQPURL != ""),
		slog.Bool("smtp", cfg.SMTPHost != ""),
	)

	// Root context for background workers; cancelled on shutdown.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Startup deadline so misconfiguration is caught quickly.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 2. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 3. PostgreSQL & Redis ─────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_error", slog.Any("error", cerr))
		}
	}()

	// ── 4. Security & Metrics ─────────────────────────────────────────────
	tokens, err := sec.NewTokenService(sec.TokenConfig{
		Secret:          cfg.JWTSecret,
		Issuer:          cfg.JWTIssuer,
		AccessTTL:       cfg.AccessTokenTTL,
		RefreshTTL:      cfg.RefreshTokenTTL,
		VerificationTTL: cfg.VerificationTokenTTL,
		ResetTTL:        cfg.ResetTokenTTL,
	})
	must(log, err, "initialize token service")

	appMetrics := metrics.New()

	// ── 5. Email Pipeline ─────────────────────────────────────────────────
	checks := []api.Check{
		{Name: "postgres", Ping: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }},
		{Name: "redis", Ping: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }},
	}

	var queue notify.Queue
	var memoryQueue *notify.MemoryQueue

	if cfg.AMQPURL != "" {
		publisher := notify.NewAMQPPublisher(cfg.AMQPURL, cfg.EmailQueue, log)
		if cerr := publisher.Connect(rootCtx); cerr != nil {
			log.Warn("amqp_connect_failed", slog.Any("error", cerr))
		}
		go publisher.Run(rootCtx)
		defer publisher.Close()

		queue = publisher
		checks = append(checks, api.Check{Name: "amqp", Ping: publisher.Ping})
	} else {
		memoryQueue = notify.NewMemoryQueue(newSender(cfg, log), constants.MailQueueBuffer, log, appMetrics)
		memoryQueue.Start(rootCtx, cfg.MailWorkers)
		queue = memoryQueue
	}

	dispatcher := notify.NewDispatcher(queue, notify.Links{
		Verification:  cfg.VerificationLink(),
		PasswordReset: cfg.ResetLink(),
	}, log, appMetrics)

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	authService := auth.NewService(auth.Dependencies{
		Users:       auth.NewUserRepository(pool),
		Roles:       auth.NewRoleRepository(pool),
		Revocations: auth.NewRevocationList(rdb),
		Hasher:      sec.NewPasswordHasher(bcrypt.DefaultCost),
		Tokens:      tokens,
		Notifier:    dispatcher,
		Events:      appMetrics,
	}, auth.Options{RequireVerifiedLogin: cfg.RequireVerifiedLogin})

	limiter := middleware.NewCredentialLimiter(rdb, cfg.LoginRateLimit, cfg.LoginRateWindow)
	authHandler := auth.NewHandler(authService, limiter)

	liveness, readiness := api.NewHealthHandlers(checks, log)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(rootCtx, cfg, log, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Metrics:   appMetrics,
	})

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
	}

	// Stop the mail workers only after in-flight requests have enqueued their jobs.
	rootCancel()
	if memoryQueue != nil {
		memoryQueue.Wait()
	}

	log.Info("server_stopped_cleanly")
}

// newSender selects SMTP delivery when a relay is configured and logging otherwise.
func newSender(cfg *config.Config, log *slog.Logger) mail.Sender {
	if cfg.SMTPHost == "" {
		log.Warn("smtp_not_configured", slog.String("fallback", "log_sender"))
		return mail.NewLogSender(log)
	}

	return mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
