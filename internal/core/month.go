package core

const (
	ItemIncome ItemKind = "income"
	ItemBill   ItemKind = "bill"
)

// ItemKind tags a month view entry as coming from an income or a bill.
type ItemKind string

// MonthItem is one concrete occurrence inside a viewed month.
type MonthItem struct {
	Kind     ItemKind
	Date     Date
	Name     string
	Amount   Money
	Category string
}

// MonthView is the computed summary for a specific year+month: every
// occurrence falling inside the month plus running totals. It is built
// on demand and never persisted.
type MonthView struct {
	Year        int
	Month       int // 1-12
	Items       []MonthItem
	IncomeTotal Money
	BillTotal   Money
	Net         Money
}

func NewMonthView(year, month int) *MonthView {
	return &MonthView{Year: year, Month: month}
}

// Add appends an item and keeps the totals current.
func (v *MonthView) Add(item MonthItem) {
	v.Items = append(v.Items, item)
	switch item.Kind {
	case ItemIncome:
		v.IncomeTotal.Cents += item.Amount.Cents
	case ItemBill:
		v.BillTotal.Cents += item.Amount.Cents
	}
	v.Net.Cents = v.IncomeTotal.Cents - v.BillTotal.Cents
}
