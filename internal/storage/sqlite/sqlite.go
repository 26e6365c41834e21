// Package sqlite implements the storage.Store interface on an embedded
// SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/storage"
)

type Store struct {
	db *sql.DB
}

var _ storage.Store = (*Store)(nil)

// New opens (creating if needed) the database at dbPath and runs
// migrations against it.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := storage.RunSQLiteMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// mapErr translates driver errors onto the core sentinels
func mapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return core.ErrAlreadyExists
	}
	return err
}

func (s *Store) CreateUser(ctx context.Context, user core.User) (core.User, error) {
	user.CreatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users(email, password_hash, created_at)
		VALUES(?, ?, ?)
	`, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", mapErr(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("create user id: %w", err)
	}
	user.ID = id
	return user, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (core.User, error) {
	var user core.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE id = ?
	`, id).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", mapErr(err))
	}
	return user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	var user core.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE email = ?
	`, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return core.User{}, fmt.Errorf("get user by email: %w", mapErr(err))
	}
	return user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := s.db.QueryContext(ctx, `
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
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO categories(name, kind, user_id)
		VALUES(?, ?, ?)
	`, category.Name, string(category.Kind), category.UserID)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", mapErr(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("create category id: %w", err)
	}
	category.ID = id
	return category, nil
}

func (s *Store) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, kind, user_id
		FROM categories
		WHERE user_id = ?
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
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, kind, user_id
		FROM categories
		WHERE user_id = ? AND id = ?
	`, userID, id).Scan(&c.ID, &c.Name, &kind, &c.UserID)
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", mapErr(err))
	}
	c.Kind = core.CategoryKind(kind)
	return c, nil
}

func (s *Store) DeleteCategory(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM categories
		WHERE user_id = ? AND id = ?
	`, userID, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) CreateIncome(ctx context.Context, income core.Income) (core.Income, error) {
	if income.ID == "" {
		income.ID = uuid.NewString()
	}
	income.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO incomes(id, source, amount_cents, date, occurrence, first_day, second_day, category_id, user_id, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, income.ID, income.Source, income.Amount.Cents, income.Date.String(),
		string(income.Occurrence), nullInt(income.FirstDay), nullInt(income.SecondDay),
		income.CategoryID, income.UserID, income.CreatedAt)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIncome(row rowScanner) (core.Income, error) {
	var in core.Income
	var date, occurrence string
	var firstDay, secondDay sql.NullInt64
	err := row.Scan(&in.ID, &in.Source, &in.Amount.Cents, &date, &occurrence,
		&firstDay, &secondDay, &in.CategoryID, &in.UserID, &in.CreatedAt)
	if err != nil {
		return core.Income{}, err
	}
	parsed, err := core.ParseDate(date)
	if err != nil {
		return core.Income{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	in.Date = parsed
	in.Occurrence = core.OccurrenceType(occurrence)
	in.FirstDay = intPtr(firstDay)
	in.SecondDay = intPtr(secondDay)
	return in, nil
}

func (s *Store) ListIncomes(ctx context.Context, userID int64) ([]core.Income, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, amount_cents, date, occurrence, first_day, second_day, category_id, user_id, created_at
		FROM incomes
		WHERE user_id = ?
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
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source, amount_cents, date, occurrence, first_day, second_day, category_id, user_id, created_at
		FROM incomes
		WHERE user_id = ? AND id = ?
	`, userID, id)
	in, err := scanIncome(row)
	if err != nil {
		return core.Income{}, fmt.Errorf("get income: %w", mapErr(err))
	}
	return in, nil
}

func (s *Store) DeleteIncome(ctx context.Context, userID int64, id string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM incomes
		WHERE user_id = ? AND id = ?
	`, userID, id)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) CreateBill(ctx context.Context, bill core.Bill) (core.Bill, error) {
	if bill.ID == "" {
		bill.ID = uuid.NewString()
	}
	bill.CreatedAt = time.Now().UTC()
	var billDate any
	if bill.Date != nil {
		billDate = bill.Date.String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bills(id, name, amount_cents, day, date, one_time, category_id, user_id, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, bill.ID, bill.Name, bill.Amount.Cents, nullInt(bill.Day), billDate,
		bill.OneTime, bill.CategoryID, bill.UserID, bill.CreatedAt)
	if err != nil {
		return core.Bill{}, fmt.Errorf("create bill: %w", mapErr(err))
	}

	slog.InfoContext(ctx, "Bill saved",
		log.FieldComponent, log.ComponentStorage,
		log.FieldItemID, bill.ID,
		log.FieldAmount, bill.Amount.Cents)

	return bill, nil
}

func scanBill(row rowScanner) (core.Bill, error) {
	var b core.Bill
	var day sql.NullInt64
	var date sql.NullString
	err := row.Scan(&b.ID, &b.Name, &b.Amount.Cents, &day, &date,
		&b.OneTime, &b.CategoryID, &b.UserID, &b.CreatedAt)
	if err != nil {
		return core.Bill{}, err
	}
	b.Day = intPtr(day)
	if date.Valid {
		parsed, err := core.ParseDate(date.String)
		if err != nil {
			return core.Bill{}, fmt.Errorf("parse stored date %q: %w", date.String, err)
		}
		b.Date = &parsed
	}
	return b, nil
}

func (s *Store) ListBills(ctx context.Context, userID int64) ([]core.Bill, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, amount_cents, day, date, one_time, category_id, user_id, created_at
		FROM bills
		WHERE user_id = ?
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
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, amount_cents, day, date, one_time, category_id, user_id, created_at
		FROM bills
		WHERE user_id = ? AND id = ?
	`, userID, id)
	b, err := scanBill(row)
	if err != nil {
		return core.Bill{}, fmt.Errorf("get bill: %w", mapErr(err))
	}
	return b, nil
}

func (s *Store) DeleteBill(ctx context.Context, userID int64, id string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM bills
		WHERE user_id = ? AND id = ?
	`, userID, id)
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
