package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	OccurrenceOnce         OccurrenceType = "once"
	OccurrenceWeekly       OccurrenceType = "weekly"
	OccurrenceBiweekly     OccurrenceType = "biweekly"
	OccurrenceMonthly      OccurrenceType = "monthly"
	OccurrenceTwiceMonthly OccurrenceType = "twice-monthly"
)

const (
	CategoryIncome  CategoryKind = "income"
	CategoryExpense CategoryKind = "expense"
)

type (
	// OccurrenceType tells how an income or bill repeats over time.
	OccurrenceType string

	// CategoryKind separates income categories from expense categories.
	CategoryKind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Income is a user-entered income definition. Recurring incomes are
	// expanded into concrete dates on demand; occurrences are never stored.
	Income struct {
		ID         string
		Source     string
		Amount     Money
		Date       Date
		Occurrence OccurrenceType
		FirstDay   *int // day of month, twice-monthly only
		SecondDay  *int // day of month, twice-monthly only
		CategoryID int64
		UserID     int64
		CreatedAt  time.Time
	}

	// Bill is a user-entered bill definition. A recurring bill carries a
	// day of month; a one-time bill carries a concrete date instead.
	Bill struct {
		ID           string
		Name         string
		Amount       Money
		Day          *int
		Date         *Date
		CategoryID   int64
		UserID       int64
		OneTime      bool
		CreatedAt    time.Time
		CategoryName string // resolved by lookup, never stored on the row
	}

	Category struct {
		ID     int64
		Name   string
		Kind   CategoryKind
		UserID int64
	}

	User struct {
		ID           int64
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}
)

var (
	ErrInvalidDay        = errors.New("invalid day")
	ErrInvalidMonth      = errors.New("invalid month")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidOccurrence = errors.New("invalid occurrence type")
	ErrEmptySource       = errors.New("empty income source")
	ErrEmptyName         = errors.New("empty name")
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
)

// ParseOccurrenceType rejects anything outside the recognized set,
// naming the offending value.
func ParseOccurrenceType(s string) (OccurrenceType, error) {
	switch t := OccurrenceType(s); t {
	case OccurrenceOnce, OccurrenceWeekly, OccurrenceBiweekly, OccurrenceMonthly, OccurrenceTwiceMonthly:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOccurrence, s)
	}
}

func ParseCategoryKind(s string) (CategoryKind, error) {
	switch k := CategoryKind(s); k {
	case CategoryIncome, CategoryExpense:
		return k, nil
	default:
		return "", fmt.Errorf("invalid category kind: %q", s)
	}
}

// ValidDay reports whether d is a usable day-of-month. Values outside
// 1-31 are rejected outright, never clipped.
func ValidDay(d int) bool {
	return d >= 1 && d <= 31
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: zero date", ErrInvalidDate)
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Before and After compare calendar dates, delegating to time.Time.
func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool  { return d.Time.After(other.Time) }

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (i Income) Validate() error {
	if err := i.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(i.Source)) == 0 {
		return ErrEmptySource
	}
	if len(i.Source) > 200 {
		return errors.New("source too long (max 200 characters)")
	}
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if _, err := ParseOccurrenceType(string(i.Occurrence)); err != nil {
		return err
	}
	if i.Occurrence == OccurrenceTwiceMonthly {
		if i.FirstDay == nil || i.SecondDay == nil {
			return errors.New("twice-monthly income needs both days of month")
		}
		if !ValidDay(*i.FirstDay) || !ValidDay(*i.SecondDay) {
			return ErrInvalidDay
		}
		if *i.FirstDay == *i.SecondDay {
			return errors.New("twice-monthly days must be distinct")
		}
	}
	return nil
}

func (b Bill) Validate() error {
	if len(strings.TrimSpace(b.Name)) == 0 {
		return ErrEmptyName
	}
	if len(b.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if b.OneTime {
		if b.Date == nil {
			return errors.New("one-time bill needs a date")
		}
		if err := b.Date.Validate(); err != nil {
			return err
		}
	} else {
		if b.Day == nil {
			return errors.New("recurring bill needs a day of month")
		}
		if !ValidDay(*b.Day) {
			return ErrInvalidDay
		}
	}
	return nil
}

func (c Category) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if _, err := ParseCategoryKind(string(c.Kind)); err != nil {
		return err
	}
	return nil
}
