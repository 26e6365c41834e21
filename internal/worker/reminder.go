// Package worker runs the background loops behind the API: upcoming
// occurrence reminders and month report exports.
package worker

import (
	"context"
	"fmt"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/schedule"
	"bilancio/internal/storage"
)

// ReminderPublisher is the slice of the AMQP client the reminder
// worker publishes through.
type ReminderPublisher interface {
	PublishReminder(ctx context.Context, msg *amqp.ReminderMessage) error
}

// ReminderWorker periodically expands every definition over the
// upcoming window and publishes one reminder per occurrence. Nothing
// is persisted between passes; each pass recomputes the window.
type ReminderWorker struct {
	store      storage.Store
	publisher  ReminderPublisher
	interval   time.Duration
	windowDays int
	logger     *log.Logger
}

func NewReminderWorker(store storage.Store, publisher ReminderPublisher, interval time.Duration, windowDays int, logger *log.Logger) *ReminderWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ReminderWorker{
		store:      store,
		publisher:  publisher,
		interval:   interval,
		windowDays: windowDays,
		logger:     logger.WithComponent(log.ComponentWorker),
	}
}

// Run publishes reminders immediately and then on every tick until the
// context is cancelled.
func (w *ReminderWorker) Run(ctx context.Context) error {
	if count, err := w.PublishUpcoming(ctx, time.Now()); err != nil {
		w.logger.ErrorContext(ctx, "Initial reminder pass failed", log.FieldError, err)
	} else {
		w.logger.InfoContext(ctx, "Initial reminder pass complete", log.FieldCount, count)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			count, err := w.PublishUpcoming(ctx, now)
			if err != nil {
				w.logger.ErrorContext(ctx, "Reminder pass failed", log.FieldError, err)
				continue
			}
			w.logger.InfoContext(ctx, "Reminder pass complete", log.FieldCount, count)
		}
	}
}

// PublishUpcoming runs one pass over all users. The window spans
// windowDays calendar days starting at now's date. Users whose
// reminders fail are logged and skipped so one broken account never
// stalls the rest.
func (w *ReminderWorker) PublishUpcoming(ctx context.Context, now time.Time) (int, error) {
	start := core.NewDate(now.Year(), int(now.Month()), now.Day())
	end := core.Date{Time: start.AddDate(0, 0, w.windowDays-1)}

	users, err := w.store.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	published := 0
	for _, user := range users {
		n, err := w.publishForUser(ctx, user.ID, start, end)
		published += n
		if err != nil {
			w.logger.ErrorContext(ctx, "Reminder pass failed for user",
				log.FieldUserID, user.ID, log.FieldError, err)
			continue
		}
	}

	return published, nil
}

func (w *ReminderWorker) publishForUser(ctx context.Context, userID int64, start, end core.Date) (int, error) {
	incomes, err := w.store.ListIncomes(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list incomes: %w", err)
	}
	bills, err := w.store.ListBills(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list bills: %w", err)
	}

	published := 0
	for _, income := range incomes {
		dates, err := schedule.Expand(schedule.FromIncome(income), start, end)
		if err != nil {
			w.logger.WarnContext(ctx, "Skipping income that fails to expand",
				log.FieldItemID, income.ID, log.FieldError, err)
			continue
		}
		for _, date := range dates {
			msg := amqp.NewReminderMessage(userID, income.ID, string(core.ItemIncome),
				income.Source, income.Amount.Cents, date.String())
			if err := w.publisher.PublishReminder(ctx, msg); err != nil {
				return published, fmt.Errorf("publish income reminder: %w", err)
			}
			published++
		}
	}

	for _, bill := range bills {
		dates, err := schedule.Expand(schedule.FromBill(bill), start, end)
		if err != nil {
			w.logger.WarnContext(ctx, "Skipping bill that fails to expand",
				log.FieldItemID, bill.ID, log.FieldError, err)
			continue
		}
		for _, date := range dates {
			msg := amqp.NewReminderMessage(userID, bill.ID, string(core.ItemBill),
				bill.Name, bill.Amount.Cents, date.String())
			if err := w.publisher.PublishReminder(ctx, msg); err != nil {
				return published, fmt.Errorf("publish bill reminder: %w", err)
			}
			published++
		}
	}

	return published, nil
}
