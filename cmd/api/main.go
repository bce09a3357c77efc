package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/orderking/orderking_api/internal/config"
	"github.com/orderking/orderking_api/internal/infra"
	"github.com/orderking/orderking_api/internal/logging"
	"github.com/orderking/orderking_api/internal/notification"
	"github.com/orderking/orderking_api/internal/qr"
	"github.com/orderking/orderking_api/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		if !cfg.IsDev() {
			logger.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		logger.Warn("postgres unavailable, using in-memory store", "error", err)
		db = nil
	}
	if db != nil {
		defer db.Close()
	}

	cache, err := infra.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		if !cfg.IsDev() {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		logger.Warn("redis unavailable, rate limiting disabled", "error", err)
		cache = nil
	}
	if cache != nil {
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
	}

	var notifier notification.Notifier
	if cfg.MailConfigured() {
		notifier = notification.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	} else {
		if !cfg.IsDev() {
			logger.Error("SMTP settings are required outside dev")
			os.Exit(1)
		}
		notifier = notification.NewLoggerNotifier(logger)
	}

	broadcaster := qr.NewBroadcaster(cfg.RotationInterval, logger)
	go broadcaster.Run(ctx)

	srv, err := server.New(cfg, db, cache, notifier, broadcaster, logger)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}
