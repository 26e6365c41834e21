package worker

import (
	"context"
	"fmt"

	"bilancio/internal/amqp"
	"bilancio/internal/export"
	"bilancio/internal/log"
	"bilancio/internal/report"
	"bilancio/internal/storage"
)

// ReportConsumer is the slice of the AMQP client the export worker
// reads report requests from.
type ReportConsumer interface {
	ConsumeReportRequests(ctx context.Context, handler func(*amqp.ReportRequest) error) error
}

// ExportWorker consumes report requests, builds the requested month
// view from storage and appends it to the configured sink.
type ExportWorker struct {
	store    storage.Store
	consumer ReportConsumer
	sink     export.Sink
	logger   *log.Logger
}

func NewExportWorker(store storage.Store, consumer ReportConsumer, sink export.Sink, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ExportWorker{
		store:    store,
		consumer: consumer,
		sink:     sink,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// Run consumes report requests until the context is cancelled.
func (w *ExportWorker) Run(ctx context.Context) error {
	return w.consumer.ConsumeReportRequests(ctx, func(msg *amqp.ReportRequest) error {
		return w.HandleReportRequest(ctx, msg)
	})
}

// HandleReportRequest builds the month view for one request and appends
// it to the sink. A returned error requeues the message; requests that
// can never succeed are dropped instead.
func (w *ExportWorker) HandleReportRequest(ctx context.Context, msg *amqp.ReportRequest) error {
	if msg.Month < 1 || msg.Month > 12 || msg.Year < 1 || msg.Year > 9999 {
		w.logger.WarnContext(ctx, "Dropping report request with impossible month",
			log.FieldUserID, msg.UserID,
			log.FieldYear, msg.Year,
			log.FieldMonth, msg.Month)
		return nil
	}

	w.logger.InfoContext(ctx, "Processing report request",
		log.FieldUserID, msg.UserID,
		log.FieldYear, msg.Year,
		log.FieldMonth, msg.Month)

	view, err := report.BuildMonthView(ctx, w.store, msg.UserID, msg.Year, msg.Month)
	if err != nil {
		return fmt.Errorf("build month view: %w", err)
	}

	ref, err := w.sink.AppendMonthReport(ctx, view)
	if err != nil {
		return fmt.Errorf("append month report: %w", err)
	}

	w.logger.InfoContext(ctx, "Report exported",
		log.FieldUserID, msg.UserID,
		log.FieldYear, msg.Year,
		log.FieldMonth, msg.Month,
		log.FieldSheetsRef, ref,
		log.FieldCount, len(view.Items))
	return nil
}
