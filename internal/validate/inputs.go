package validate

import "encoding/json"

// Amount is a decimal amount as it arrives on the wire. Clients send
// both JSON numbers and strings; either decodes into the raw text.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	*a = Amount(b)
	return nil
}

// IncomeInput is the raw JSON shape of an income submission. Pointer
// fields distinguish missing from present-but-empty; unknown fields in
// the body are ignored.
type IncomeInput struct {
	Source         *string `json:"source"`
	Amount         *Amount `json:"amount"`
	Date           *string `json:"date"`
	OccurrenceType *string `json:"occurrenceType"`
	FirstDate      *int    `json:"firstDate"`
	SecondDate     *int    `json:"secondDate"`
	CategoryID     *int64  `json:"category_id"`
}

// BillInput is the raw JSON shape of a bill submission. A missing
// isOneTime means a recurring bill.
type BillInput struct {
	Name       *string `json:"name"`
	Amount     *Amount `json:"amount"`
	Day        *int    `json:"day"`
	Date       *string `json:"date"`
	CategoryID *int64  `json:"category_id"`
	IsOneTime  bool    `json:"isOneTime"`
}

// CategoryInput is the raw JSON shape of a category submission.
type CategoryInput struct {
	Name *string `json:"name"`
	Kind *string `json:"kind"`
}
