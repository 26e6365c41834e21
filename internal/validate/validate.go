// Package validate checks raw request records field by field before they
// become domain values.
//
// Each record kind declares an ordered rule table. Evaluation walks the
// table in field-declaration order and collects every failure, so the
// caller gets the complete list of problems in one pass instead of just
// the first. Validation is pure: no state is kept between calls and the
// same input always yields the same result.
package validate

import (
	"fmt"
	"strings"

	"bilancio/internal/core"
)

// FieldError names one failing field and why it failed.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Rule pairs a field name with its predicate. An empty message means
// the field passes.
type Rule[T any] struct {
	Field string
	Check func(T) string
}

func runRules[T any](input T, rules []Rule[T]) []FieldError {
	var errs []FieldError
	for _, r := range rules {
		if msg := r.Check(input); msg != "" {
			errs = append(errs, FieldError{Field: r.Field, Message: msg})
		}
	}
	return errs
}

// incomeRules evaluate in the declaration order of the income fields.
var incomeRules = []Rule[IncomeInput]{
	{"source", func(in IncomeInput) string { return requireString(in.Source) }},
	{"amount", func(in IncomeInput) string { return checkAmount(in.Amount) }},
	{"date", func(in IncomeInput) string { return requireDate(in.Date) }},
	{"occurrenceType", func(in IncomeInput) string { return checkOccurrence(in.OccurrenceType) }},
	{"firstDate", func(in IncomeInput) string {
		if !isTwiceMonthly(in.OccurrenceType) {
			return ""
		}
		return requireDay(in.FirstDate)
	}},
	{"secondDate", func(in IncomeInput) string {
		if !isTwiceMonthly(in.OccurrenceType) {
			return ""
		}
		if msg := requireDay(in.SecondDate); msg != "" {
			return msg
		}
		if in.FirstDate != nil && *in.FirstDate == *in.SecondDate {
			return "must differ from firstDate"
		}
		return ""
	}},
	{"category_id", func(in IncomeInput) string { return requireID(in.CategoryID) }},
}

// billRules evaluate in the declaration order of the bill fields. A
// recurring bill needs a day of month; a one-time bill needs a concrete
// date instead.
var billRules = []Rule[BillInput]{
	{"name", func(in BillInput) string { return requireString(in.Name) }},
	{"amount", func(in BillInput) string { return checkAmount(in.Amount) }},
	{"day", func(in BillInput) string {
		if in.IsOneTime {
			return checkDay(in.Day)
		}
		return requireDay(in.Day)
	}},
	{"date", func(in BillInput) string {
		if in.IsOneTime {
			return requireDate(in.Date)
		}
		return checkDate(in.Date)
	}},
	{"category_id", func(in BillInput) string { return requireID(in.CategoryID) }},
}

var categoryRules = []Rule[CategoryInput]{
	{"name", func(in CategoryInput) string { return requireString(in.Name) }},
	{"kind", func(in CategoryInput) string {
		if in.Kind == nil || strings.TrimSpace(*in.Kind) == "" {
			return "required"
		}
		if _, err := core.ParseCategoryKind(*in.Kind); err != nil {
			return fmt.Sprintf("unknown kind %q", *in.Kind)
		}
		return ""
	}},
}

// Income validates a raw income submission. On success it returns the
// domain value ready for persistence; otherwise the complete ordered
// list of field errors.
func Income(in IncomeInput) (core.Income, []FieldError) {
	if errs := runRules(in, incomeRules); len(errs) > 0 {
		return core.Income{}, errs
	}
	cents, _ := core.ParseDecimalToCents(string(*in.Amount))
	date, _ := core.ParseDate(*in.Date)
	occurrence, _ := core.ParseOccurrenceType(*in.OccurrenceType)
	out := core.Income{
		Source:     strings.TrimSpace(*in.Source),
		Amount:     core.Money{Cents: cents},
		Date:       date,
		Occurrence: occurrence,
		CategoryID: *in.CategoryID,
	}
	if occurrence == core.OccurrenceTwiceMonthly {
		first, second := *in.FirstDate, *in.SecondDate
		out.FirstDay, out.SecondDay = &first, &second
	}
	return out, nil
}

// Bill validates a raw bill submission.
func Bill(in BillInput) (core.Bill, []FieldError) {
	if errs := runRules(in, billRules); len(errs) > 0 {
		return core.Bill{}, errs
	}
	cents, _ := core.ParseDecimalToCents(string(*in.Amount))
	out := core.Bill{
		Name:       strings.TrimSpace(*in.Name),
		Amount:     core.Money{Cents: cents},
		CategoryID: *in.CategoryID,
		OneTime:    in.IsOneTime,
	}
	if in.IsOneTime {
		date, _ := core.ParseDate(*in.Date)
		out.Date = &date
	} else {
		day := *in.Day
		out.Day = &day
		if in.Date != nil && strings.TrimSpace(*in.Date) != "" {
			date, _ := core.ParseDate(*in.Date)
			out.Date = &date
		}
	}
	return out, nil
}

// Category validates a raw category submission.
func Category(in CategoryInput) (core.Category, []FieldError) {
	if errs := runRules(in, categoryRules); len(errs) > 0 {
		return core.Category{}, errs
	}
	kind, _ := core.ParseCategoryKind(*in.Kind)
	return core.Category{Name: strings.TrimSpace(*in.Name), Kind: kind}, nil
}

func requireString(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return "required"
	}
	return ""
}

func checkAmount(a *Amount) string {
	if a == nil || strings.TrimSpace(string(*a)) == "" {
		return "required"
	}
	if _, err := core.ParseDecimalToCents(string(*a)); err != nil {
		return "must be a positive amount"
	}
	return ""
}

// requireDay demands a present day of month inside 1-31.
func requireDay(d *int) string {
	if d == nil {
		return "required"
	}
	return checkDay(d)
}

// checkDay range-checks a day of month only when present. Out-of-range
// values are rejected here, never clipped.
func checkDay(d *int) string {
	if d == nil {
		return ""
	}
	if !core.ValidDay(*d) {
		return fmt.Sprintf("must be between 1 and 31, got %d", *d)
	}
	return ""
}

func requireDate(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return "required"
	}
	return checkDate(s)
}

func checkDate(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return ""
	}
	if _, err := core.ParseDate(*s); err != nil {
		return fmt.Sprintf("%q is not a date in YYYY-MM-DD form", *s)
	}
	return ""
}

func checkOccurrence(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return "required"
	}
	if _, err := core.ParseOccurrenceType(*s); err != nil {
		return fmt.Sprintf("unknown occurrence type %q", *s)
	}
	return ""
}

func requireID(id *int64) string {
	if id == nil || *id <= 0 {
		return "required"
	}
	return ""
}

func isTwiceMonthly(s *string) bool {
	return s != nil && core.OccurrenceType(*s) == core.OccurrenceTwiceMonthly
}
