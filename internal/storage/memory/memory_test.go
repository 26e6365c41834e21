package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilancio/internal/core"
)

func testIncome(userID, categoryID int64) core.Income {
	return core.Income{
		Source:     "Salary",
		Amount:     core.Money{Cents: 250000},
		Date:       core.NewDate(2025, 1, 27),
		Occurrence: core.OccurrenceMonthly,
		CategoryID: categoryID,
		UserID:     userID,
	}
}

func testBill(userID, categoryID int64) core.Bill {
	day := 1
	return core.Bill{
		Name:       "Rent",
		Amount:     core.Money{Cents: 90000},
		Day:        &day,
		CategoryID: categoryID,
		UserID:     userID,
	}
}

func TestStore_Users(t *testing.T) {
	ctx := context.Background()
	s := New()

	created, err := s.CreateUser(ctx, core.User{Email: "a@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	byEmail, err := s.GetUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = s.CreateUser(ctx, core.User{Email: "a@example.com"})
	require.ErrorIs(t, err, core.ErrAlreadyExists)

	_, err = s.GetUser(ctx, 999)
	require.ErrorIs(t, err, core.ErrNotFound)

	_, err = s.GetUserByEmail(ctx, "missing@example.com")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestStore_Categories(t *testing.T) {
	ctx := context.Background()
	s := New()

	user, err := s.CreateUser(ctx, core.User{Email: "a@example.com"})
	require.NoError(t, err)
	other, err := s.CreateUser(ctx, core.User{Email: "b@example.com"})
	require.NoError(t, err)

	rent, err := s.CreateCategory(ctx, core.Category{Name: "Rent", Kind: core.CategoryExpense, UserID: user.ID})
	require.NoError(t, err)
	assert.NotZero(t, rent.ID)

	salary, err := s.CreateCategory(ctx, core.Category{Name: "Salary", Kind: core.CategoryIncome, UserID: user.ID})
	require.NoError(t, err)

	_, err = s.CreateCategory(ctx, core.Category{Name: "Rent", Kind: core.CategoryExpense, UserID: user.ID})
	require.ErrorIs(t, err, core.ErrAlreadyExists)

	// Same name for a different user is fine.
	_, err = s.CreateCategory(ctx, core.Category{Name: "Rent", Kind: core.CategoryExpense, UserID: other.ID})
	require.NoError(t, err)

	list, err := s.ListCategories(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// Ordered by kind then name, and "expense" sorts before "income".
	assert.Equal(t, "Rent", list[0].Name)
	assert.Equal(t, "Salary", list[1].Name)

	got, err := s.GetCategory(ctx, user.ID, salary.ID)
	require.NoError(t, err)
	assert.Equal(t, salary, got)

	// Cross-user reads miss.
	_, err = s.GetCategory(ctx, other.ID, salary.ID)
	require.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, s.DeleteCategory(ctx, user.ID, rent.ID))
	require.ErrorIs(t, s.DeleteCategory(ctx, user.ID, rent.ID), core.ErrNotFound)
}

func TestStore_Incomes(t *testing.T) {
	ctx := context.Background()
	s := New()

	user, err := s.CreateUser(ctx, core.User{Email: "a@example.com"})
	require.NoError(t, err)
	cat, err := s.CreateCategory(ctx, core.Category{Name: "Salary", Kind: core.CategoryIncome, UserID: user.ID})
	require.NoError(t, err)

	created, err := s.CreateIncome(ctx, testIncome(user.ID, cat.ID))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.GetIncome(ctx, user.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	second, err := s.CreateIncome(ctx, testIncome(user.ID, cat.ID))
	require.NoError(t, err)

	list, err := s.ListIncomes(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	// Another user sees nothing.
	_, err = s.GetIncome(ctx, user.ID+1, created.ID)
	require.ErrorIs(t, err, core.ErrNotFound)
	otherList, err := s.ListIncomes(ctx, user.ID+1)
	require.NoError(t, err)
	assert.Empty(t, otherList)

	require.NoError(t, s.DeleteIncome(ctx, user.ID, created.ID))
	require.ErrorIs(t, s.DeleteIncome(ctx, user.ID, created.ID), core.ErrNotFound)

	list, err = s.ListIncomes(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)
}

func TestStore_Bills(t *testing.T) {
	ctx := context.Background()
	s := New()

	user, err := s.CreateUser(ctx, core.User{Email: "a@example.com"})
	require.NoError(t, err)
	cat, err := s.CreateCategory(ctx, core.Category{Name: "Housing", Kind: core.CategoryExpense, UserID: user.ID})
	require.NoError(t, err)

	created, err := s.CreateBill(ctx, testBill(user.ID, cat.ID))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := s.GetBill(ctx, user.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	oneTimeDate := core.NewDate(2025, 3, 14)
	oneTime, err := s.CreateBill(ctx, core.Bill{
		Name:       "Car repair",
		Amount:     core.Money{Cents: 45000},
		Date:       &oneTimeDate,
		OneTime:    true,
		CategoryID: cat.ID,
		UserID:     user.ID,
	})
	require.NoError(t, err)

	list, err := s.ListBills(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	_, err = s.GetBill(ctx, user.ID+1, created.ID)
	require.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, s.DeleteBill(ctx, user.ID, oneTime.ID))
	require.ErrorIs(t, s.DeleteBill(ctx, user.ID, oneTime.ID), core.ErrNotFound)
}
