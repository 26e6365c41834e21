package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"bilancio/internal/amqp"
	"bilancio/internal/cli"
	"bilancio/internal/export"
	"bilancio/internal/export/googlesheets"
	memsink "bilancio/internal/export/memory"
	"bilancio/internal/log"
	"bilancio/internal/worker"
)

func main() {
	cfg, logger := cli.Setup(log.ComponentWorker)

	logger.Info("Starting export worker", "sink", cfg.ExportSink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, cleanup := cli.OpenStore(ctx, cfg, logger)
	defer func() {
		if err := cleanup(); err != nil {
			logger.Error("Storage cleanup failed", log.FieldError, err)
		}
	}()

	var sink export.Sink
	switch cfg.ExportSink {
	case "sheets":
		if err := cfg.ValidateSheets(); err != nil {
			logger.Error("Sheets configuration validation failed", log.FieldError, err)
			os.Exit(1)
		}
		client, err := googlesheets.New(ctx, googlesheets.Config{
			SpreadsheetID: cfg.GoogleSpreadsheetID,
			SheetName:     cfg.GoogleSheetName,
			ClientJSON:    cfg.GoogleOAuthClientJSON,
			ClientFile:    cfg.GoogleOAuthClientFile,
			TokenJSON:     cfg.GoogleOAuthTokenJSON,
			TokenFile:     cfg.GoogleOAuthTokenFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets sink", log.FieldError, err)
			os.Exit(1)
		}
		sink = client
		logger.Info("Google Sheets sink initialized",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleSheetName)
	default:
		sink = memsink.New()
		logger.Warn("Using in-memory export sink, reports are lost on restart")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPReminderQueue, cfg.AMQPReportQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	exports := worker.NewExportWorker(store, amqpClient, sink, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := exports.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
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
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Export worker failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Export worker stopped")
}
