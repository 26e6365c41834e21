package schedule

import "bilancio/internal/core"

// Item is the minimal view of an income or bill the expander works on.
// Anchor is the stored date for once/weekly/biweekly patterns. DayOfMonth
// drives monthly expansion; FirstDay and SecondDay drive twice-monthly.
type Item struct {
	Occurrence core.OccurrenceType
	Anchor     core.Date
	DayOfMonth int
	FirstDay   int
	SecondDay  int
}

// FromIncome builds the expander view of an income definition.
func FromIncome(in core.Income) Item {
	item := Item{Occurrence: in.Occurrence, Anchor: in.Date}
	switch in.Occurrence {
	case core.OccurrenceMonthly:
		if !in.Date.IsZero() {
			item.DayOfMonth = in.Date.Day()
		}
	case core.OccurrenceTwiceMonthly:
		if in.FirstDay != nil {
			item.FirstDay = *in.FirstDay
		}
		if in.SecondDay != nil {
			item.SecondDay = *in.SecondDay
		}
	}
	return item
}

// FromBill builds the expander view of a bill definition. A one-time
// bill expands as a single date; a recurring bill repeats monthly on
// its day of month.
func FromBill(b core.Bill) Item {
	if b.OneTime {
		item := Item{Occurrence: core.OccurrenceOnce}
		if b.Date != nil {
			item.Anchor = *b.Date
		}
		return item
	}
	item := Item{Occurrence: core.OccurrenceMonthly}
	if b.Day != nil {
		item.DayOfMonth = *b.Day
	}
	return item
}
