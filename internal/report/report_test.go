package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilancio/internal/core"
	"bilancio/internal/storage/memory"
)

func intPtr(v int) *int { return &v }

func seedUser(t *testing.T, store *memory.Store) core.User {
	t.Helper()
	user, err := store.CreateUser(context.Background(), core.User{Email: "anna@example.com"})
	require.NoError(t, err)
	return user
}

func TestBuildMonthView(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	user := seedUser(t, store)

	salaryCat, err := store.CreateCategory(ctx, core.Category{
		Name: "Salary", Kind: core.CategoryIncome, UserID: user.ID,
	})
	require.NoError(t, err)
	homeCat, err := store.CreateCategory(ctx, core.Category{
		Name: "Home", Kind: core.CategoryExpense, UserID: user.ID,
	})
	require.NoError(t, err)

	// Monthly salary on the 27th
	_, err = store.CreateIncome(ctx, core.Income{
		Source:     "Salary",
		Amount:     core.Money{Cents: 250000},
		Date:       core.NewDate(2025, 1, 27),
		Occurrence: core.OccurrenceMonthly,
		CategoryID: salaryCat.ID,
		UserID:     user.ID,
	})
	require.NoError(t, err)

	// One-off refund inside the viewed month
	_, err = store.CreateIncome(ctx, core.Income{
		Source:     "Refund",
		Amount:     core.Money{Cents: 4500},
		Date:       core.NewDate(2025, 11, 10),
		Occurrence: core.OccurrenceOnce,
		CategoryID: salaryCat.ID,
		UserID:     user.ID,
	})
	require.NoError(t, err)

	// Recurring rent on the 1st
	_, err = store.CreateBill(ctx, core.Bill{
		Name:       "Rent",
		Amount:     core.Money{Cents: 120000},
		Day:        intPtr(1),
		CategoryID: homeCat.ID,
		UserID:     user.ID,
	})
	require.NoError(t, err)

	// One-time bill outside the viewed month
	outside := core.NewDate(2025, 12, 5)
	_, err = store.CreateBill(ctx, core.Bill{
		Name:       "Car repair",
		Amount:     core.Money{Cents: 30000},
		Date:       &outside,
		OneTime:    true,
		CategoryID: homeCat.ID,
		UserID:     user.ID,
	})
	require.NoError(t, err)

	view, err := BuildMonthView(ctx, store, user.ID, 2025, 11)
	require.NoError(t, err)

	require.Len(t, view.Items, 3)
	assert.Equal(t, "Rent", view.Items[0].Name)
	assert.Equal(t, "2025-11-01", view.Items[0].Date.String())
	assert.Equal(t, "Home", view.Items[0].Category)
	assert.Equal(t, "Refund", view.Items[1].Name)
	assert.Equal(t, "Salary", view.Items[2].Name)
	assert.Equal(t, "2025-11-27", view.Items[2].Date.String())

	assert.Equal(t, int64(254500), view.IncomeTotal.Cents)
	assert.Equal(t, int64(120000), view.BillTotal.Cents)
	assert.Equal(t, int64(134500), view.Net.Cents)
}

func TestBuildMonthView_ClipsDayToMonthEnd(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	user := seedUser(t, store)

	cat, err := store.CreateCategory(ctx, core.Category{
		Name: "Home", Kind: core.CategoryExpense, UserID: user.ID,
	})
	require.NoError(t, err)

	_, err = store.CreateBill(ctx, core.Bill{
		Name:       "Mortgage",
		Amount:     core.Money{Cents: 90000},
		Day:        intPtr(31),
		CategoryID: cat.ID,
		UserID:     user.ID,
	})
	require.NoError(t, err)

	// February 2025 has 28 days
	view, err := BuildMonthView(ctx, store, user.ID, 2025, 2)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "2025-02-28", view.Items[0].Date.String())
}

func TestBuildMonthView_TwiceMonthlyOrdering(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	user := seedUser(t, store)

	cat, err := store.CreateCategory(ctx, core.Category{
		Name: "Salary", Kind: core.CategoryIncome, UserID: user.ID,
	})
	require.NoError(t, err)

	// Days given out of order still expand ascending
	_, err = store.CreateIncome(ctx, core.Income{
		Source:     "Paycheck",
		Amount:     core.Money{Cents: 100000},
		Date:       core.NewDate(2025, 1, 1),
		Occurrence: core.OccurrenceTwiceMonthly,
		FirstDay:   intPtr(20),
		SecondDay:  intPtr(5),
		CategoryID: cat.ID,
		UserID:     user.ID,
	})
	require.NoError(t, err)

	view, err := BuildMonthView(ctx, store, user.ID, 2025, 6)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, "2025-06-05", view.Items[0].Date.String())
	assert.Equal(t, "2025-06-20", view.Items[1].Date.String())
	assert.Equal(t, int64(200000), view.IncomeTotal.Cents)
}

func TestBuildMonthView_EmptyMonth(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	user := seedUser(t, store)

	view, err := BuildMonthView(ctx, store, user.ID, 2025, 7)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Zero(t, view.IncomeTotal.Cents)
	assert.Zero(t, view.Net.Cents)
}

func TestBuildMonthView_RejectsBadMonth(t *testing.T) {
	store := memory.New()
	_, err := BuildMonthView(context.Background(), store, 1, 2025, 13)
	assert.Error(t, err)
}

func TestBuildMonthView_ScopedToUser(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	user := seedUser(t, store)
	other, err := store.CreateUser(ctx, core.User{Email: "other@example.com"})
	require.NoError(t, err)

	cat, err := store.CreateCategory(ctx, core.Category{
		Name: "Home", Kind: core.CategoryExpense, UserID: user.ID,
	})
	require.NoError(t, err)

	_, err = store.CreateBill(ctx, core.Bill{
		Name:       "Rent",
		Amount:     core.Money{Cents: 120000},
		Day:        intPtr(1),
		CategoryID: cat.ID,
		UserID:     user.ID,
	})
	require.NoError(t, err)

	view, err := BuildMonthView(ctx, store, other.ID, 2025, 11)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}
