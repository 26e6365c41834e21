package http

import (
	"time"

	"bilancio/internal/core"
)

// Payloads are the JSON shapes the API returns. Amounts are rendered
// twice, as a display string and as integer cents, so clients never
// parse decimals.

type incomePayload struct {
	ID             string `json:"id"`
	Source         string `json:"source"`
	Amount         string `json:"amount"`
	AmountCents    int64  `json:"amount_cents"`
	Date           string `json:"date"`
	OccurrenceType string `json:"occurrenceType"`
	FirstDate      *int   `json:"firstDate,omitempty"`
	SecondDate     *int   `json:"secondDate,omitempty"`
	CategoryID     int64  `json:"category_id"`
	CreatedAt      string `json:"created_at,omitempty"`
}

type billPayload struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Amount      string  `json:"amount"`
	AmountCents int64   `json:"amount_cents"`
	Day         *int    `json:"day,omitempty"`
	Date        *string `json:"date,omitempty"`
	IsOneTime   bool    `json:"isOneTime"`
	CategoryID  int64   `json:"category_id"`
	CreatedAt   string  `json:"created_at,omitempty"`
}

type categoryPayload struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type monthItemPayload struct {
	Kind        string `json:"kind"`
	Date        string `json:"date"`
	Name        string `json:"name"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
	Category    string `json:"category,omitempty"`
}

type monthPayload struct {
	Year             int                `json:"year"`
	Month            int                `json:"month"`
	Items            []monthItemPayload `json:"items"`
	IncomeTotal      string             `json:"income_total"`
	IncomeTotalCents int64              `json:"income_total_cents"`
	BillTotal        string             `json:"bill_total"`
	BillTotalCents   int64              `json:"bill_total_cents"`
	Net              string             `json:"net"`
	NetCents         int64              `json:"net_cents"`
}

func toIncomePayload(income core.Income) incomePayload {
	return incomePayload{
		ID:             income.ID,
		Source:         income.Source,
		Amount:         income.Amount.String(),
		AmountCents:    income.Amount.Cents,
		Date:           income.Date.String(),
		OccurrenceType: string(income.Occurrence),
		FirstDate:      income.FirstDay,
		SecondDate:     income.SecondDay,
		CategoryID:     income.CategoryID,
		CreatedAt:      formatTimestamp(income.CreatedAt),
	}
}

func toIncomePayloads(incomes []core.Income) []incomePayload {
	out := make([]incomePayload, 0, len(incomes))
	for _, income := range incomes {
		out = append(out, toIncomePayload(income))
	}
	return out
}

func toBillPayload(bill core.Bill) billPayload {
	p := billPayload{
		ID:          bill.ID,
		Name:        bill.Name,
		Amount:      bill.Amount.String(),
		AmountCents: bill.Amount.Cents,
		Day:         bill.Day,
		IsOneTime:   bill.OneTime,
		CategoryID:  bill.CategoryID,
		CreatedAt:   formatTimestamp(bill.CreatedAt),
	}
	if bill.Date != nil {
		date := bill.Date.String()
		p.Date = &date
	}
	return p
}

func toBillPayloads(bills []core.Bill) []billPayload {
	out := make([]billPayload, 0, len(bills))
	for _, bill := range bills {
		out = append(out, toBillPayload(bill))
	}
	return out
}

func toCategoryPayload(category core.Category) categoryPayload {
	return categoryPayload{
		ID:   category.ID,
		Name: category.Name,
		Kind: string(category.Kind),
	}
}

func toCategoryPayloads(categories []core.Category) []categoryPayload {
	out := make([]categoryPayload, 0, len(categories))
	for _, category := range categories {
		out = append(out, toCategoryPayload(category))
	}
	return out
}

func toMonthPayload(view core.MonthView) monthPayload {
	items := make([]monthItemPayload, 0, len(view.Items))
	for _, item := range view.Items {
		items = append(items, monthItemPayload{
			Kind:        string(item.Kind),
			Date:        item.Date.String(),
			Name:        item.Name,
			Amount:      item.Amount.String(),
			AmountCents: item.Amount.Cents,
			Category:    item.Category,
		})
	}
	return monthPayload{
		Year:             view.Year,
		Month:            view.Month,
		Items:            items,
		IncomeTotal:      view.IncomeTotal.String(),
		IncomeTotalCents: view.IncomeTotal.Cents,
		BillTotal:        view.BillTotal.String(),
		BillTotalCents:   view.BillTotal.Cents,
		Net:              view.Net.String(),
		NetCents:         view.Net.Cents,
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
