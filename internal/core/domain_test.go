package core

import (
	"testing"
	"time"
)

func intp(v int) *int { return &v }

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-01-15")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Year() != 2025 || d.Month() != 1 || d.Day() != 15 {
		t.Fatalf("parsed wrong date: %v", d)
	}
	for _, bad := range []string{"", "2025-13-01", "15/01/2025", "not-a-date"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("%q expected error", bad)
		}
	}
}

func TestParseOccurrenceType(t *testing.T) {
	for _, good := range []string{"once", "weekly", "biweekly", "monthly", "twice-monthly"} {
		if _, err := ParseOccurrenceType(good); err != nil {
			t.Fatalf("%q expected ok, got %v", good, err)
		}
	}
	if _, err := ParseOccurrenceType("yearly"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}

func TestIncomeValidate(t *testing.T) {
	good := Income{
		Source:     "Salary",
		Amount:     Money{Cents: 250000},
		Date:       NewDate(2025, 1, 1),
		Occurrence: OccurrenceMonthly,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	twice := good
	twice.Occurrence = OccurrenceTwiceMonthly
	twice.FirstDay = intp(1)
	twice.SecondDay = intp(15)
	if err := twice.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Income{
		{Source: "a", Amount: Money{Cents: 1}, Occurrence: OccurrenceOnce}, // zero date
		{Source: "", Amount: Money{Cents: 1}, Date: NewDate(2025, 1, 1), Occurrence: OccurrenceOnce},
		{Source: "a", Amount: Money{Cents: 0}, Date: NewDate(2025, 1, 1), Occurrence: OccurrenceOnce},
		{Source: "a", Amount: Money{Cents: 1}, Date: NewDate(2025, 1, 1), Occurrence: "yearly"},
		{Source: "a", Amount: Money{Cents: 1}, Date: NewDate(2025, 1, 1), Occurrence: OccurrenceTwiceMonthly}, // missing days
		{Source: "a", Amount: Money{Cents: 1}, Date: NewDate(2025, 1, 1), Occurrence: OccurrenceTwiceMonthly, FirstDay: intp(1), SecondDay: intp(1)},
		{Source: "a", Amount: Money{Cents: 1}, Date: NewDate(2025, 1, 1), Occurrence: OccurrenceTwiceMonthly, FirstDay: intp(0), SecondDay: intp(15)},
	}
	for i, in := range bads {
		if err := in.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestBillValidate(t *testing.T) {
	recurring := Bill{Name: "Rent", Amount: Money{Cents: 90000}, Day: intp(1)}
	if err := recurring.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	d := NewDate(2025, 3, 10)
	oneTime := Bill{Name: "Dentist", Amount: Money{Cents: 12000}, OneTime: true, Date: &d}
	if err := oneTime.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Bill{
		{Name: "", Amount: Money{Cents: 1}, Day: intp(1)},
		{Name: "a", Amount: Money{Cents: 0}, Day: intp(1)},
		// recurring without day
		{Name: "a", Amount: Money{Cents: 1}},
		// out of range day, rejected not clipped
		{Name: "a", Amount: Money{Cents: 1}, Day: intp(32)},
		// one-time without date
		{Name: "a", Amount: Money{Cents: 1}, OneTime: true},
	}
	for i, b := range bads {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestCategoryValidate(t *testing.T) {
	if err := (Category{Name: "Utilities", Kind: CategoryExpense}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Category{Name: "  ", Kind: CategoryExpense}).Validate(); err == nil {
		t.Fatalf("expected error for blank name")
	}
	if err := (Category{Name: "x", Kind: "misc"}).Validate(); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
