package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"0.00", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{1234, "12.34"},
		{1, "0.01"},
		{100, "1.00"},
		{-250, "-2.50"},
		{0, "0.00"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Fatalf("Money{%d}.String() = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestMonthViewTotals(t *testing.T) {
	v := NewMonthView(2025, 1)
	v.Add(MonthItem{Kind: ItemIncome, Date: NewDate(2025, 1, 1), Name: "Salary", Amount: Money{Cents: 250000}})
	v.Add(MonthItem{Kind: ItemBill, Date: NewDate(2025, 1, 5), Name: "Rent", Amount: Money{Cents: 90000}})
	v.Add(MonthItem{Kind: ItemBill, Date: NewDate(2025, 1, 20), Name: "Power", Amount: Money{Cents: 6000}})

	if v.IncomeTotal.Cents != 250000 {
		t.Fatalf("income total = %d, want 250000", v.IncomeTotal.Cents)
	}
	if v.BillTotal.Cents != 96000 {
		t.Fatalf("bill total = %d, want 96000", v.BillTotal.Cents)
	}
	if v.Net.Cents != 154000 {
		t.Fatalf("net = %d, want 154000", v.Net.Cents)
	}
	if len(v.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(v.Items))
	}
}
