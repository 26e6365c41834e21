// Package report assembles month views by expanding every stored
// definition of a user over the month window. The HTTP month endpoint
// and the export worker share this logic.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/schedule"
	"bilancio/internal/storage"
)

// BuildMonthView expands the user's incomes and bills over the given
// month and totals them. A stored definition that fails to expand is
// skipped with a warning rather than failing the whole view; it can
// only happen to rows predating tighter validation.
func BuildMonthView(ctx context.Context, store storage.Store, userID int64, year, month int) (core.MonthView, error) {
	if month < 1 || month > 12 {
		return core.MonthView{}, fmt.Errorf("invalid month: %d", month)
	}

	monthStart := core.NewDate(year, month, 1)
	monthEnd := core.NewDate(year, month, lastDayOfMonth(year, month))

	categories, err := store.ListCategories(ctx, userID)
	if err != nil {
		return core.MonthView{}, fmt.Errorf("list categories: %w", err)
	}
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	view := core.NewMonthView(year, month)
	logger := log.FromContext(ctx)

	incomes, err := store.ListIncomes(ctx, userID)
	if err != nil {
		return core.MonthView{}, fmt.Errorf("list incomes: %w", err)
	}
	for _, income := range incomes {
		dates, err := schedule.Expand(schedule.FromIncome(income), monthStart, monthEnd)
		if err != nil {
			logger.WarnContext(ctx, "Skipping income that fails to expand",
				log.FieldItemID, income.ID,
				log.FieldError, err)
			continue
		}
		for _, d := range dates {
			view.Add(core.MonthItem{
				Kind:     core.ItemIncome,
				Date:     d,
				Name:     income.Source,
				Amount:   income.Amount,
				Category: names[income.CategoryID],
			})
		}
	}

	bills, err := store.ListBills(ctx, userID)
	if err != nil {
		return core.MonthView{}, fmt.Errorf("list bills: %w", err)
	}
	for _, bill := range bills {
		dates, err := schedule.Expand(schedule.FromBill(bill), monthStart, monthEnd)
		if err != nil {
			logger.WarnContext(ctx, "Skipping bill that fails to expand",
				log.FieldItemID, bill.ID,
				log.FieldError, err)
			continue
		}
		for _, d := range dates {
			view.Add(core.MonthItem{
				Kind:     core.ItemBill,
				Date:     d,
				Name:     bill.Name,
				Amount:   bill.Amount,
				Category: names[bill.CategoryID],
			})
		}
	}

	// Chronological order; incomes before bills on the same day
	sort.SliceStable(view.Items, func(i, j int) bool {
		a, b := view.Items[i], view.Items[j]
		if !a.Date.Equal(b.Date.Time) {
			return a.Date.Before(b.Date)
		}
		if a.Kind != b.Kind {
			return a.Kind == core.ItemIncome
		}
		return a.Name < b.Name
	})

	return *view, nil
}

func lastDayOfMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
