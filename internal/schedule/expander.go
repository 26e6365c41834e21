// Package schedule expands recurring income and bill definitions into
// concrete calendar occurrences.
//
// This file implements the Strategy Pattern for occurrence expansion.
// Each occurrence type (once, weekly, biweekly, monthly, twice-monthly)
// has its own expander that encapsulates the date arithmetic for that
// pattern. Expansion is a pure function of its inputs: no side effects,
// no shared state, safe to call from concurrent request handlers.
package schedule

import (
	"fmt"
	"sort"
	"time"

	"bilancio/internal/core"
)

// ExpansionError reports a definition the expander cannot work with,
// such as a malformed source date. Expansion stops at the first problem
// and never continues past it.
type ExpansionError struct {
	Reason string
}

func (e *ExpansionError) Error() string {
	return "expansion: " + e.Reason
}

func expansionErrorf(format string, args ...any) error {
	return &ExpansionError{Reason: fmt.Sprintf(format, args...)}
}

// Expander is the strategy interface for one occurrence pattern.
// Each implementation encapsulates the date arithmetic for a specific
// occurrence type.
type Expander interface {
	// Expand returns the ascending dates on which the item occurs inside
	// the inclusive [rangeStart, rangeEnd] window. The window is always
	// finite; results are materialized eagerly.
	Expand(item Item, rangeStart, rangeEnd core.Date) ([]core.Date, error)
}

// OnceExpander implements Expander for non-recurring items.
type OnceExpander struct{}

// Expand yields the stored date if it falls within the range, else nothing.
func (OnceExpander) Expand(item Item, rangeStart, rangeEnd core.Date) ([]core.Date, error) {
	if err := item.Anchor.Validate(); err != nil {
		return nil, expansionErrorf("bad source date: %v", err)
	}
	if item.Anchor.Before(rangeStart) || item.Anchor.After(rangeEnd) {
		return nil, nil
	}
	return []core.Date{item.Anchor}, nil
}

// WeeklyExpander implements Expander for items recurring every 7 days.
type WeeklyExpander struct{}

// Expand yields every 7th day starting from the stored date, clipped to
// the range. Nothing occurs before the stored date.
func (WeeklyExpander) Expand(item Item, rangeStart, rangeEnd core.Date) ([]core.Date, error) {
	return expandEvery(item, rangeStart, rangeEnd, 7)
}

// BiweeklyExpander implements Expander for items recurring every 14 days.
type BiweeklyExpander struct{}

// Expand yields every 14th day starting from the stored date, clipped to
// the range. Nothing occurs before the stored date.
func (BiweeklyExpander) Expand(item Item, rangeStart, rangeEnd core.Date) ([]core.Date, error) {
	return expandEvery(item, rangeStart, rangeEnd, 14)
}

func expandEvery(item Item, rangeStart, rangeEnd core.Date, stepDays int) ([]core.Date, error) {
	if err := item.Anchor.Validate(); err != nil {
		return nil, expansionErrorf("bad source date: %v", err)
	}
	cur := item.Anchor.Time
	if cur.Before(rangeStart.Time) {
		// Jump close to the range start in one step, then walk the rest.
		days := int(rangeStart.Time.Sub(cur).Hours() / 24)
		cur = cur.AddDate(0, 0, (days/stepDays)*stepDays)
		for cur.Before(rangeStart.Time) {
			cur = cur.AddDate(0, 0, stepDays)
		}
	}
	var out []core.Date
	for !cur.After(rangeEnd.Time) {
		out = append(out, core.Date{Time: cur})
		cur = cur.AddDate(0, 0, stepDays)
	}
	return out, nil
}

// MonthlyExpander implements Expander for items recurring on a fixed day
// of every month.
type MonthlyExpander struct{}

// Expand yields the item's day-of-month in every month overlapping the
// range. A day exceeding the month's length is clipped to the last valid
// day of that month (day 31 in February becomes the 28th or 29th).
func (MonthlyExpander) Expand(item Item, rangeStart, rangeEnd core.Date) ([]core.Date, error) {
	if !core.ValidDay(item.DayOfMonth) {
		return nil, expansionErrorf("day of month %d out of range 1-31", item.DayOfMonth)
	}
	var out []core.Date
	forEachMonth(rangeStart, rangeEnd, func(year, month int) {
		d := core.NewDate(year, month, clipDay(year, month, item.DayOfMonth))
		if !d.Before(rangeStart) && !d.After(rangeEnd) {
			out = append(out, d)
		}
	})
	return out, nil
}

// TwiceMonthlyExpander implements Expander for items recurring on two
// fixed days of every month.
type TwiceMonthlyExpander struct{}

// Expand yields both days in every month overlapping the range, each
// subject to the same clipping rule as monthly, sorted ascending within
// each month.
func (TwiceMonthlyExpander) Expand(item Item, rangeStart, rangeEnd core.Date) ([]core.Date, error) {
	if !core.ValidDay(item.FirstDay) || !core.ValidDay(item.SecondDay) {
		return nil, expansionErrorf("days of month %d and %d must both be in range 1-31", item.FirstDay, item.SecondDay)
	}
	var out []core.Date
	forEachMonth(rangeStart, rangeEnd, func(year, month int) {
		pair := []core.Date{
			core.NewDate(year, month, clipDay(year, month, item.FirstDay)),
			core.NewDate(year, month, clipDay(year, month, item.SecondDay)),
		}
		sort.Slice(pair, func(i, j int) bool { return pair[i].Before(pair[j]) })
		for _, d := range pair {
			if !d.Before(rangeStart) && !d.After(rangeEnd) {
				out = append(out, d)
			}
		}
	})
	return out, nil
}

// forEachMonth visits every calendar month overlapping the range, in order.
func forEachMonth(rangeStart, rangeEnd core.Date, visit func(year, month int)) {
	year, month := rangeStart.Year(), rangeStart.Month()
	endYear, endMonth := rangeEnd.Year(), rangeEnd.Month()
	for year < endYear || (year == endYear && month <= endMonth) {
		visit(year, month)
		month++
		if month > 12 {
			month = 1
			year++
		}
	}
}

// clipDay reduces an out-of-range day to the last valid day of the month.
func clipDay(year, month, day int) int {
	last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}

// expanders maps occurrence types to their corresponding strategies.
// This registry enables O(1) lookup and easy extension for new patterns.
var expanders = map[core.OccurrenceType]Expander{
	core.OccurrenceOnce:         OnceExpander{},
	core.OccurrenceWeekly:       WeeklyExpander{},
	core.OccurrenceBiweekly:     BiweeklyExpander{},
	core.OccurrenceMonthly:      MonthlyExpander{},
	core.OccurrenceTwiceMonthly: TwiceMonthlyExpander{},
}

// GetExpander returns the strategy for an occurrence type.
// Returns an error naming the type if it is not supported.
func GetExpander(t core.OccurrenceType) (Expander, error) {
	e, ok := expanders[t]
	if !ok {
		return nil, fmt.Errorf("unknown occurrence type: %s", t)
	}
	return e, nil
}

// RegisterExpander allows registering custom strategies for new
// occurrence patterns without modifying this package.
func RegisterExpander(t core.OccurrenceType, e Expander) {
	expanders[t] = e
}

// Expand runs the registered strategy for the item's occurrence type over
// the inclusive [rangeStart, rangeEnd] window.
func Expand(item Item, rangeStart, rangeEnd core.Date) ([]core.Date, error) {
	if err := rangeStart.Validate(); err != nil {
		return nil, expansionErrorf("bad range start: %v", err)
	}
	if err := rangeEnd.Validate(); err != nil {
		return nil, expansionErrorf("bad range end: %v", err)
	}
	if rangeEnd.Before(rangeStart) {
		return nil, expansionErrorf("range end %s before range start %s", rangeEnd, rangeStart)
	}
	e, err := GetExpander(item.Occurrence)
	if err != nil {
		return nil, err
	}
	return e.Expand(item, rangeStart, rangeEnd)
}
