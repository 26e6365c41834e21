// Package storage defines the persistence boundary shared by the HTTP
// server and the workers. Concrete stores live in the postgres, sqlite
// and memory subpackages.
package storage

import (
	"context"

	"bilancio/internal/core"
)

// Store is the persistence interface for budget data. Reads scoped to a
// user never return another user's rows. Lookups for missing rows return
// core.ErrNotFound.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user core.User) (core.User, error)
	GetUser(ctx context.Context, id int64) (core.User, error)
	GetUserByEmail(ctx context.Context, email string) (core.User, error)
	ListUsers(ctx context.Context) ([]core.User, error)

	// Categories
	CreateCategory(ctx context.Context, category core.Category) (core.Category, error)
	ListCategories(ctx context.Context, userID int64) ([]core.Category, error)
	GetCategory(ctx context.Context, userID, id int64) (core.Category, error)
	DeleteCategory(ctx context.Context, userID, id int64) error

	// Incomes
	CreateIncome(ctx context.Context, income core.Income) (core.Income, error)
	ListIncomes(ctx context.Context, userID int64) ([]core.Income, error)
	GetIncome(ctx context.Context, userID int64, id string) (core.Income, error)
	DeleteIncome(ctx context.Context, userID int64, id string) error

	// Bills
	CreateBill(ctx context.Context, bill core.Bill) (core.Bill, error)
	ListBills(ctx context.Context, userID int64) ([]core.Bill, error)
	GetBill(ctx context.Context, userID int64, id string) (core.Bill, error)
	DeleteBill(ctx context.Context, userID int64, id string) error

	// Ping reports whether the underlying store is reachable
	Ping(ctx context.Context) error

	// Close releases the store's resources
	Close() error
}
