// Package postgres implements the storage.Store interface on top of a
// pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/storage"
)

const uniqueViolation = "23505"

type Store struct {
	pool *pgxpool.Pool
}

var _ storage.Store = (*Store)(nil)

// New runs migrations against databaseURL and opens a connection pool.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	if err := storage.RunPostgresMigrations(databaseURL); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// mapErr translates pgx errors onto the core sentinels
func mapErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return core.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return core.ErrAlreadyExists
	}
	return err
}

func (s *Store) CreateUser(ctx context.Context, user core.User) (core.User, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users(email, password_hash)
		VALUES($1, $2)
		RETURNING id, created_at
	`, user.Email, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", mapErr(err))
	}
	return user, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (core.User, error) {
	var user core.User
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE id = $1
	`, id).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", mapErr(err))
	}
	return user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	var user core.User
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE email = $1
	`, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return core.User{}, fmt.Errorf("get user by email: %w", mapErr(err))
	}
	return user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, email, password_hash, created_at
		FROM users
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		var user core.User
		if err := rows.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *Store) CreateCategory(ctx context.Context, category core.Category) (core.Category, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO categories(name, kind, user_id)
		VALUES($1, $2, $3)
		RETURNING id
	`, category.Name, string(category.Kind), category.UserID).Scan(&category.ID)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", mapErr(err))
	}
	return category, nil
}

func (s *Store) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, kind, user_id
		FROM categories
		WHERE user_id = $1
		ORDER BY kind, name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		var kind string
		if err := rows.Scan(&c.ID, &c.Name, &kind, &c.UserID); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Kind = core.CategoryKind(kind)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetCategory(ctx context.Context, userID, id int64) (core.Category, error) {
	var c core.Category
	var kind string
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, kind, user_id
		FROM categories
		WHERE user_id = $1 AND id = $2
	`, userID, id).Scan(&c.ID, &c.Name, &kind, &c.UserID)
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", mapErr(err))
	}
	c.Kind = core.CategoryKind(kind)
	return c, nil
}

func (s *Store) DeleteCategory(ctx context.Context, userID, id int64) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM categories
		WHERE user_id = $1 AND id = $2
	`, userID, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) CreateIncome(ctx context.Context, income core.Income) (core.Income, error) {
	if income.ID == "" {
		income.ID = uuid.NewString()
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO incomes(id, source, amount_cents, date, occurrence, first_day, second_day, category_id, user_id)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`, income.ID, income.Source, income.Amount.Cents, income.Date.Time,
		string(income.Occurrence), income.FirstDay, income.SecondDay,
		income.CategoryID, income.UserID).Scan(&income.CreatedAt)
	if err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", mapErr(err))
	}

	slog.InfoContext(ctx, "Income saved",
		log.FieldComponent, log.ComponentStorage,
		log.FieldItemID, income.ID,
		log.FieldAmount, income.Amount.Cents,
		log.FieldOccurrence, string(income.Occurrence))

	return income, nil
}

func scanIncome(row pgx.Row) (core.Income, error) {
	var in core.Income
	var date time.Time
	var occurrence string
	err := row.Scan(&in.ID, &in.Source, &in.Amount.Cents, &date, &occurrence,
		&in.FirstDay, &in.SecondDay, &in.CategoryID, &in.UserID, &in.CreatedAt)
	if err != nil {
		return core.Income{}, err
	}
	in.Date = core.Date{Time: date}
	in.Occurrence = core.OccurrenceType(occurrence)
	return in, nil
}

func (s *Store) ListIncomes(ctx context.Context, userID int64) ([]core.Income, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, source, amount_cents, date, occurrence, first_day, second_day, category_id, user_id, created_at
		FROM incomes
		WHERE user_id = $1
		ORDER BY created_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var out []core.Income
	for rows.Next() {
		in, err := scanIncome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (s *Store) GetIncome(ctx context.Context, userID int64, id string) (core.Income, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, source, amount_cents, date, occurrence, first_day, second_day, category_id, user_id, created_at
		FROM incomes
		WHERE user_id = $1 AND id = $2
	`, userID, id)
	in, err := scanIncome(row)
	if err != nil {
		return core.Income{}, fmt.Errorf("get income: %w", mapErr(err))
	}
	return in, nil
}

func (s *Store) DeleteIncome(ctx context.Context, userID int64, id string) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM incomes
		WHERE user_id = $1 AND id = $2
	`, userID, id)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) CreateBill(ctx context.Context, bill core.Bill) (core.Bill, error) {
	if bill.ID == "" {
		bill.ID = uuid.NewString()
	}
	var billDate *time.Time
	if bill.Date != nil {
		billDate = &bill.Date.Time
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO bills(id, name, amount_cents, day, date, one_time, category_id, user_id)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, bill.ID, bill.Name, bill.Amount.Cents, bill.Day, billDate,
		bill.OneTime, bill.CategoryID, bill.UserID).Scan(&bill.CreatedAt)
	if err != nil {
		return core.Bill{}, fmt.Errorf("create bill: %w", mapErr(err))
	}

	slog.InfoContext(ctx, "Bill saved",
		log.FieldComponent, log.ComponentStorage,
		log.FieldItemID, bill.ID,
		log.FieldAmount, bill.Amount.Cents)

	return bill, nil
}

func scanBill(row pgx.Row) (core.Bill, error) {
	var b core.Bill
	var date *time.Time
	err := row.Scan(&b.ID, &b.Name, &b.Amount.Cents, &b.Day, &date,
		&b.OneTime, &b.CategoryID, &b.UserID, &b.CreatedAt)
	if err != nil {
		return core.Bill{}, err
	}
	if date != nil {
		b.Date = &core.Date{Time: *date}
	}
	return b, nil
}

func (s *Store) ListBills(ctx context.Context, userID int64) ([]core.Bill, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, amount_cents, day, date, one_time, category_id, user_id, created_at
		FROM bills
		WHERE user_id = $1
		ORDER BY created_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	var out []core.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) GetBill(ctx context.Context, userID int64, id string) (core.Bill, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, amount_cents, day, date, one_time, category_id, user_id, created_at
		FROM bills
		WHERE user_id = $1 AND id = $2
	`, userID, id)
	b, err := scanBill(row)
	if err != nil {
		return core.Bill{}, fmt.Errorf("get bill: %w", mapErr(err))
	}
	return b, nil
}

func (s *Store) DeleteBill(ctx context.Context, userID int64, id string) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM bills
		WHERE user_id = $1 AND id = $2
	`, userID, id)
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}
