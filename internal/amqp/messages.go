package amqp

import (
	"encoding/json"
	"time"
)

// ReminderMessage announces one upcoming occurrence of an income or a
// bill. The payload is self-contained so notification consumers never
// need database access.
type ReminderMessage struct {
	UserID      int64     `json:"user_id"`
	ItemID      string    `json:"item_id"`
	Kind        string    `json:"kind"`
	Name        string    `json:"name"`
	AmountCents int64     `json:"amount_cents"`
	DueDate     string    `json:"due_date"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewReminderMessage creates a reminder for one occurrence. dueDate is
// in YYYY-MM-DD form.
func NewReminderMessage(userID int64, itemID, kind, name string, amountCents int64, dueDate string) *ReminderMessage {
	return &ReminderMessage{
		UserID:      userID,
		ItemID:      itemID,
		Kind:        kind,
		Name:        name,
		AmountCents: amountCents,
		DueDate:     dueDate,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReminderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReminderMessageFromJSON creates a message from JSON bytes
func ReminderMessageFromJSON(data []byte) (*ReminderMessage, error) {
	var msg ReminderMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ReportRequest asks the export worker to build and append the monthly
// report for one user. The worker fetches the data itself so the
// request stays small.
type ReportRequest struct {
	UserID    int64     `json:"user_id"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

// NewReportRequest creates a report request for one user and month
func NewReportRequest(userID int64, year, month int) *ReportRequest {
	return &ReportRequest{
		UserID:    userID,
		Year:      year,
		Month:     month,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the request to JSON bytes
func (m *ReportRequest) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportRequestFromJSON creates a request from JSON bytes
func ReportRequestFromJSON(data []byte) (*ReportRequest, error) {
	var msg ReportRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
