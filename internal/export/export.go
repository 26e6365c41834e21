// Package export defines the outbound port for monthly reports.
// Concrete sinks live in the googlesheets and memory subpackages.
package export

import (
	"context"

	"bilancio/internal/core"
)

// Sink receives finished month reports.
type Sink interface {
	// AppendMonthReport writes one month summary and returns a
	// reference to where it landed.
	AppendMonthReport(ctx context.Context, report core.MonthView) (rowRef string, err error)
}
