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
	"bilancio/internal/log"
	"bilancio/internal/worker"
)

func main() {
	cfg, logger := cli.Setup(log.ComponentWorker)

	logger.Info("Starting reminder worker",
		"interval", cfg.ReminderInterval.String(),
		"window_days", cfg.ReminderWindowDays)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, cleanup := cli.OpenStore(ctx, cfg, logger)
	defer func() {
		if err := cleanup(); err != nil {
			logger.Error("Storage cleanup failed", log.FieldError, err)
		}
	}()

	// Reminders only exist on the queue, so the broker is not optional here.
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPReminderQueue, cfg.AMQPReportQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	reminders := worker.NewReminderWorker(store, amqpClient, cfg.ReminderInterval, cfg.ReminderWindowDays, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := reminders.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
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
		logger.Error("Reminder worker failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Reminder worker stopped")
}
