// Package memory provides an in-memory report sink for development
// and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"bilancio/internal/core"
	"bilancio/internal/export"
)

type Sink struct {
	mu      sync.Mutex
	reports []core.MonthView
}

var _ export.Sink = (*Sink)(nil)

func New() *Sink {
	return &Sink{}
}

// AppendMonthReport stores the report and returns a synthetic row
// reference.
func (s *Sink) AppendMonthReport(_ context.Context, report core.MonthView) (string, error) {
	if report.Month < 1 || report.Month > 12 {
		return "", fmt.Errorf("invalid month: %d", report.Month)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
	return fmt.Sprintf("mem:%d", len(s.reports)), nil
}

// Reports returns everything appended so far.
func (s *Sink) Reports() []core.MonthView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.MonthView(nil), s.reports...)
}
