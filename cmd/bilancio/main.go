package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"bilancio/internal/amqp"
	"bilancio/internal/auth"
	"bilancio/internal/cli"
	httpapi "bilancio/internal/http"
	"bilancio/internal/log"
)

func main() {
	cfg, logger := cli.Setup(log.ComponentApp)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, cleanup := cli.OpenStore(ctx, cfg, logger)
	defer func() {
		if err := cleanup(); err != nil {
			logger.Error("Storage cleanup failed", log.FieldError, err)
		}
	}()

	var provider auth.Provider
	switch cfg.AuthMode {
	case "jwt":
		provider = auth.NewJWTProvider(store, cfg.JWTSecret, cfg.SessionTTL)
	default:
		static, err := auth.NewStaticProvider(ctx, store, cfg.DefaultUserEmail)
		if err != nil {
			logger.Error("Failed to initialize static auth provider", log.FieldError, err)
			os.Exit(1)
		}
		provider = static
	}
	logger.Info("Auth provider initialized", "auth_mode", cfg.AuthMode)

	// The report queue is optional for the API: without it the month export
	// endpoint answers 503 while everything else keeps working.
	var publisher httpapi.ReportPublisher
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPReminderQueue, cfg.AMQPReportQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, month export endpoint disabled", log.FieldError, err)
	} else {
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("AMQP client initialized", log.FieldExchange, cfg.AMQPExchange, log.FieldQueue, cfg.AMQPReportQueue)
	}

	srv := httpapi.NewServer(":"+cfg.Port, store, provider, publisher, logger)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting bilancio server", log.FieldAddr, srv.Addr, log.FieldBackend, cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-gctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
