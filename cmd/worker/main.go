// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command worker consumes email jobs from RabbitMQ and delivers them over SMTP.
//
// It runs beside the API when AMQP_URL is set, so that a slow or failing
// mail relay never holds up a sign-up or a password reset request.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/taibuivan/wanderly/internal/notify"
	"github.com/taibuivan/wanderly/internal/platform/config"
	"github.com/taibuivan/wanderly/internal/platform/constants"
	"github.com/taibuivan/wanderly/internal/platform/mail"
	"github.com/taibuivan/wanderly/internal/platform/metrics"
)

const appName = constants.AppName + "-worker"

func main() {
	bootLog := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String("app", appName))

	cfg, err := config.LoadWorker()
	if err != nil {
		bootLog.Error("startup_failure", slog.String("context", "load configuration"), slog.Any("error", err))
		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})).With(slog.String("app", appName))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appMetrics := metrics.New()

	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           appMetrics.Handler(),
		ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics_server_failed", slog.Any("error", err))
		}
	}()

	var sender mail.Sender
	if cfg.SMTPHost == "" {
		log.Warn("smtp_not_configured", slog.String("fallback", "log_sender"))
		sender = mail.NewLogSender(log)
	} else {
		sender = mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	}

	worker := notify.NewWorker(cfg.AMQPURL, cfg.EmailQueue, sender, log, appMetrics)

	log.Info("email_worker_starting", slog.String("queue", cfg.EmailQueue))
	if err := worker.Run(ctx); err != nil {
		log.Error("email_worker_failed", slog.Any("error", err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)

	log.Info("email_worker_stopped")
}
