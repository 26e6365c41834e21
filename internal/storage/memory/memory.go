// Package memory implements the storage.Store interface with in-process
// maps. It backs tests and the default zero-configuration setup.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

type Store struct {
	mu sync.Mutex

	users      map[int64]core.User
	categories map[int64]core.Category
	incomes    map[string]core.Income
	bills      map[string]core.Bill

	nextUserID     int64
	nextCategoryID int64
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:      make(map[int64]core.User),
		categories: make(map[int64]core.Category),
		incomes:    make(map[string]core.Income),
		bills:      make(map[string]core.Bill),
	}
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) CreateUser(ctx context.Context, user core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return core.User{}, core.ErrAlreadyExists
		}
	}

	s.nextUserID++
	user.ID = s.nextUserID
	user.CreatedAt = time.Now().UTC()
	s.users[user.ID] = user
	return user, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return core.User{}, core.ErrNotFound
	}
	return user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return core.User{}, core.ErrNotFound
}

func (s *Store) ListUsers(ctx context.Context) ([]core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateCategory(ctx context.Context, category core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.categories {
		if c.UserID == category.UserID && c.Name == category.Name && c.Kind == category.Kind {
			return core.Category{}, core.ErrAlreadyExists
		}
	}

	s.nextCategoryID++
	category.ID = s.nextCategoryID
	s.categories[category.ID] = category
	return category, nil
}

func (s *Store) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Category
	for _, c := range s.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) GetCategory(ctx context.Context, userID, id int64) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok || c.UserID != userID {
		return core.Category{}, core.ErrNotFound
	}
	return c, nil
}

func (s *Store) DeleteCategory(ctx context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok || c.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) CreateIncome(ctx context.Context, income core.Income) (core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if income.ID == "" {
		income.ID = uuid.NewString()
	}
	income.CreatedAt = time.Now().UTC()
	s.incomes[income.ID] = income
	return income, nil
}

func (s *Store) ListIncomes(ctx context.Context, userID int64) ([]core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Income
	for _, in := range s.incomes {
		if in.UserID == userID {
			out = append(out, in)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetIncome(ctx context.Context, userID int64, id string) (core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, ok := s.incomes[id]
	if !ok || in.UserID != userID {
		return core.Income{}, core.ErrNotFound
	}
	return in, nil
}

func (s *Store) DeleteIncome(ctx context.Context, userID int64, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, ok := s.incomes[id]
	if !ok || in.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.incomes, id)
	return nil
}

func (s *Store) CreateBill(ctx context.Context, bill core.Bill) (core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bill.ID == "" {
		bill.ID = uuid.NewString()
	}
	bill.CreatedAt = time.Now().UTC()
	s.bills[bill.ID] = bill
	return bill, nil
}

func (s *Store) ListBills(ctx context.Context, userID int64) ([]core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Bill
	for _, b := range s.bills {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetBill(ctx context.Context, userID int64, id string) (core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bills[id]
	if !ok || b.UserID != userID {
		return core.Bill{}, core.ErrNotFound
	}
	return b, nil
}

func (s *Store) DeleteBill(ctx context.Context, userID int64, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bills[id]
	if !ok || b.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.bills, id)
	return nil
}
