package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilancio/internal/core"
)

func TestSink_AppendMonthReport(t *testing.T) {
	sink := New()
	ctx := context.Background()

	view := core.NewMonthView(2025, 11)
	view.Add(core.MonthItem{
		Kind:   core.ItemIncome,
		Date:   core.NewDate(2025, 11, 27),
		Name:   "Salary",
		Amount: core.Money{Cents: 250000},
	})
	view.Add(core.MonthItem{
		Kind:   core.ItemBill,
		Date:   core.NewDate(2025, 11, 1),
		Name:   "Rent",
		Amount: core.Money{Cents: 120000},
	})

	ref, err := sink.AppendMonthReport(ctx, *view)
	require.NoError(t, err)
	assert.Equal(t, "mem:1", ref)

	ref, err = sink.AppendMonthReport(ctx, *core.NewMonthView(2025, 12))
	require.NoError(t, err)
	assert.Equal(t, "mem:2", ref)

	reports := sink.Reports()
	require.Len(t, reports, 2)
	assert.Equal(t, int64(130000), reports[0].Net.Cents)
	assert.Equal(t, 12, reports[1].Month)
}

func TestSink_AppendMonthReportRejectsBadMonth(t *testing.T) {
	sink := New()

	_, err := sink.AppendMonthReport(context.Background(), core.MonthView{Year: 2025, Month: 13})
	assert.Error(t, err)
	assert.Empty(t, sink.Reports())
}
