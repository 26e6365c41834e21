package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	memstore "bilancio/internal/storage/memory"
)

type fakePublisher struct {
	mu       sync.Mutex
	messages []*amqp.ReminderMessage
	err      error
}

func (p *fakePublisher) PublishReminder(ctx context.Context, msg *amqp.ReminderMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

func intPtr(v int) *int { return &v }

func seedUser(t *testing.T, store *memstore.Store, email string) core.User {
	t.Helper()
	user, err := store.CreateUser(context.Background(), core.User{Email: email})
	require.NoError(t, err)
	return user
}

func seedCategory(t *testing.T, store *memstore.Store, userID int64, name string, kind core.CategoryKind) core.Category {
	t.Helper()
	category, err := store.CreateCategory(context.Background(), core.Category{
		Name: name, Kind: kind, UserID: userID,
	})
	require.NoError(t, err)
	return category
}

func seedIncome(t *testing.T, store *memstore.Store, income core.Income) core.Income {
	t.Helper()
	created, err := store.CreateIncome(context.Background(), income)
	require.NoError(t, err)
	return created
}

func seedBill(t *testing.T, store *memstore.Store, bill core.Bill) core.Bill {
	t.Helper()
	created, err := store.CreateBill(context.Background(), bill)
	require.NoError(t, err)
	return created
}

func TestReminderWorker_PublishUpcoming(t *testing.T) {
	store := memstore.New()
	user := seedUser(t, store, "user@localhost")
	salary := seedCategory(t, store, user.ID, "Salary", core.CategoryIncome)
	housing := seedCategory(t, store, user.ID, "Housing", core.CategoryExpense)

	// Due on the 15th, inside the window.
	seedIncome(t, store, core.Income{
		Source:     "Acme Corp",
		Amount:     core.Money{Cents: 250000},
		Date:       core.NewDate(2025, 1, 15),
		Occurrence: core.OccurrenceMonthly,
		CategoryID: salary.ID,
		UserID:     user.ID,
	})
	// Due on the 20th, outside the window.
	seedBill(t, store, core.Bill{
		Name:       "Rent",
		Amount:     core.Money{Cents: 120000},
		Day:        intPtr(20),
		CategoryID: housing.ID,
		UserID:     user.ID,
	})
	// One-time bill inside the window.
	repairDate := core.NewDate(2025, 6, 14)
	seedBill(t, store, core.Bill{
		Name:       "Car repair",
		Amount:     core.Money{Cents: 45050},
		Date:       &repairDate,
		OneTime:    true,
		CategoryID: housing.ID,
		UserID:     user.ID,
	})

	publisher := &fakePublisher{}
	w := NewReminderWorker(store, publisher, time.Hour, 7, nil)

	now := time.Date(2025, 6, 12, 8, 30, 0, 0, time.UTC)
	count, err := w.PublishUpcoming(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, publisher.messages, 2)

	salaryMsg := publisher.messages[0]
	assert.Equal(t, user.ID, salaryMsg.UserID)
	assert.Equal(t, "income", salaryMsg.Kind)
	assert.Equal(t, "Acme Corp", salaryMsg.Name)
	assert.Equal(t, int64(250000), salaryMsg.AmountCents)
	assert.Equal(t, "2025-06-15", salaryMsg.DueDate)

	repairMsg := publisher.messages[1]
	assert.Equal(t, "bill", repairMsg.Kind)
	assert.Equal(t, "Car repair", repairMsg.Name)
	assert.Equal(t, "2025-06-14", repairMsg.DueDate)
}

func TestReminderWorker_WindowBounds(t *testing.T) {
	store := memstore.New()
	user := seedUser(t, store, "user@localhost")
	salary := seedCategory(t, store, user.ID, "Salary", core.CategoryIncome)

	for _, date := range []core.Date{
		core.NewDate(2025, 6, 12), // window start, included
		core.NewDate(2025, 6, 18), // window end, included
		core.NewDate(2025, 6, 19), // one past the end
	} {
		seedIncome(t, store, core.Income{
			Source:     "Payout " + date.String(),
			Amount:     core.Money{Cents: 1000},
			Date:       date,
			Occurrence: core.OccurrenceOnce,
			CategoryID: salary.ID,
			UserID:     user.ID,
		})
	}

	publisher := &fakePublisher{}
	w := NewReminderWorker(store, publisher, time.Hour, 7, nil)

	now := time.Date(2025, 6, 12, 23, 59, 0, 0, time.UTC)
	count, err := w.PublishUpcoming(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	dates := make([]string, 0, len(publisher.messages))
	for _, msg := range publisher.messages {
		dates = append(dates, msg.DueDate)
	}
	assert.ElementsMatch(t, []string{"2025-06-12", "2025-06-18"}, dates)
}

func TestReminderWorker_SingleDayWindow(t *testing.T) {
	store := memstore.New()
	user := seedUser(t, store, "user@localhost")

	seedBill(t, store, core.Bill{
		Name:    "Subscription",
		Amount:  core.Money{Cents: 999},
		Day:     intPtr(12),
		UserID:  user.ID,
		OneTime: false,
	})

	publisher := &fakePublisher{}
	w := NewReminderWorker(store, publisher, time.Hour, 1, nil)

	count, err := w.PublishUpcoming(context.Background(), time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = w.PublishUpcoming(context.Background(), time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, count, "published total should be unchanged")
	assert.Len(t, publisher.messages, 1)
}

func TestReminderWorker_MultipleUsers(t *testing.T) {
	store := memstore.New()
	alice := seedUser(t, store, "alice@localhost")
	bob := seedUser(t, store, "bob@localhost")

	seedIncome(t, store, core.Income{
		Source:     "Freelance",
		Amount:     core.Money{Cents: 50000},
		Date:       core.NewDate(2025, 6, 13),
		Occurrence: core.OccurrenceOnce,
		UserID:     alice.ID,
	})
	dueDate := core.NewDate(2025, 6, 14)
	seedBill(t, store, core.Bill{
		Name:    "Insurance",
		Amount:  core.Money{Cents: 30000},
		Date:    &dueDate,
		OneTime: true,
		UserID:  bob.ID,
	})

	publisher := &fakePublisher{}
	w := NewReminderWorker(store, publisher, time.Hour, 7, nil)

	count, err := w.PublishUpcoming(context.Background(), time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	byUser := make(map[int64]string)
	for _, msg := range publisher.messages {
		byUser[msg.UserID] = msg.Name
	}
	assert.Equal(t, "Freelance", byUser[alice.ID])
	assert.Equal(t, "Insurance", byUser[bob.ID])
}

func TestReminderWorker_SkipsBrokenDefinitions(t *testing.T) {
	store := memstore.New()
	user := seedUser(t, store, "user@localhost")

	// Monthly income without a date cannot be expanded.
	seedIncome(t, store, core.Income{
		Source:     "Broken",
		Amount:     core.Money{Cents: 1000},
		Occurrence: core.OccurrenceMonthly,
		UserID:     user.ID,
	})
	seedBill(t, store, core.Bill{
		Name:   "Rent",
		Amount: core.Money{Cents: 120000},
		Day:    intPtr(13),
		UserID: user.ID,
	})

	publisher := &fakePublisher{}
	w := NewReminderWorker(store, publisher, time.Hour, 7, nil)

	count, err := w.PublishUpcoming(context.Background(), time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, publisher.messages, 1)
	assert.Equal(t, "Rent", publisher.messages[0].Name)
}

func TestReminderWorker_PublisherFailureIsNotFatal(t *testing.T) {
	store := memstore.New()
	user := seedUser(t, store, "user@localhost")

	seedIncome(t, store, core.Income{
		Source:     "Payout",
		Amount:     core.Money{Cents: 1000},
		Date:       core.NewDate(2025, 6, 13),
		Occurrence: core.OccurrenceOnce,
		UserID:     user.ID,
	})

	publisher := &fakePublisher{err: errors.New("broker down")}
	w := NewReminderWorker(store, publisher, time.Hour, 7, nil)

	count, err := w.PublishUpcoming(context.Background(), time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, count)
}
