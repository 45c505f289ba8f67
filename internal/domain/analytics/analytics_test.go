package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/billing-dashboard/internal/domain/billing"
	"github.com/FACorreiaa/billing-dashboard/internal/domain/ingest/sniffer"
)

func testTable(t *testing.T, triples ...[3]string) *billing.Table {
	t.Helper()

	columns := []string{"date", "amount", "customer", "service"}
	tbl := &billing.Table{Columns: columns, Roles: sniffer.ResolveRoles(columns)}
	for _, tr := range triples {
		date, err := time.Parse("2006-01-02", tr[0])
		require.NoError(t, err)
		amount := decimal.RequireFromString(tr[1])
		tbl.Rows = append(tbl.Rows, billing.Row{
			Cells:  []string{date.Format(time.RFC3339), amount.String(), tr[2], "Hosting"},
			Date:   date,
			Amount: amount,
		})
	}
	return tbl
}

func TestMonthlyTrend(t *testing.T) {
	tbl := testTable(t,
		[3]string{"2024-01-05", "100", "Acme"},
		[3]string{"2024-01-20", "50", "Globex"},
		[3]string{"2024-02-01", "30", "Initech"},
	)

	trend := MonthlyTrend(tbl)
	require.Len(t, trend, 2)
	assert.Equal(t, "2024-01", trend[0].Month)
	assert.True(t, trend[0].Total.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, "2024-02", trend[1].Month)
	assert.True(t, trend[1].Total.Equal(decimal.NewFromInt(30)))
}

func TestTopCustomers(t *testing.T) {
	t.Run("ranks descending by total", func(t *testing.T) {
		tbl := testTable(t,
			[3]string{"2024-01-01", "10", "small"},
			[3]string{"2024-01-02", "200", "big"},
			[3]string{"2024-01-03", "50", "mid"},
			[3]string{"2024-01-04", "100", "big"},
		)

		top := TopCustomers(tbl)
		require.Len(t, top, 3)
		assert.Equal(t, "big", top[0].Key)
		assert.True(t, top[0].Total.Equal(decimal.NewFromInt(300)))
		assert.Equal(t, "mid", top[1].Key)
		assert.Equal(t, "small", top[2].Key)
	})

	t.Run("caps the ranking at ten", func(t *testing.T) {
		triples := make([][3]string, 0, 15)
		for i := 0; i < 15; i++ {
			triples = append(triples, [3]string{
				"2024-01-05",
				fmt.Sprintf("%d", (i+1)*10),
				fmt.Sprintf("customer-%02d", i),
			})
		}
		top := TopCustomers(testTable(t, triples...))
		require.Len(t, top, TopCustomerLimit)
		assert.Equal(t, "customer-14", top[0].Key)
	})

	t.Run("ties keep first-seen order", func(t *testing.T) {
		tbl := testTable(t,
			[3]string{"2024-01-01", "50", "alpha"},
			[3]string{"2024-01-02", "50", "beta"},
		)
		top := TopCustomers(tbl)
		require.Len(t, top, 2)
		assert.Equal(t, "alpha", top[0].Key)
		assert.Equal(t, "beta", top[1].Key)
	})
}

func TestTotalsByService(t *testing.T) {
	columns := []string{"date", "amount", "service_type"}
	tbl := &billing.Table{Columns: columns, Roles: sniffer.ResolveRoles(columns)}
	add := func(day, amount, service string) {
		date, err := time.Parse("2006-01-02", day)
		require.NoError(t, err)
		d := decimal.RequireFromString(amount)
		tbl.Rows = append(tbl.Rows, billing.Row{
			Cells:  []string{date.Format(time.RFC3339), d.String(), service},
			Date:   date,
			Amount: d,
		})
	}
	add("2024-01-01", "100", "Hosting")
	add("2024-01-02", "40", "Support")
	add("2024-01-03", "25", "Hosting")

	totals := TotalsByService(tbl)
	require.Len(t, totals, 2)
	assert.Equal(t, "Hosting", totals[0].Key)
	assert.True(t, totals[0].Total.Equal(decimal.NewFromInt(125)))
	assert.Equal(t, "Support", totals[1].Key)
}

func TestDescribe(t *testing.T) {
	t.Run("computes the summary for a known sample", func(t *testing.T) {
		tbl := testTable(t,
			[3]string{"2024-01-01", "10", "a"},
			[3]string{"2024-01-02", "20", "b"},
			[3]string{"2024-01-03", "30", "c"},
		)

		stats := Describe(tbl)
		assert.True(t, stats.HasData)
		assert.Equal(t, 3, stats.Count)
		assert.True(t, stats.Mean.Equal(decimal.NewFromInt(20)), "mean %s", stats.Mean)
		assert.True(t, stats.Std.Equal(decimal.NewFromInt(10)), "std %s", stats.Std)
		assert.True(t, stats.Min.Equal(decimal.NewFromInt(10)))
		assert.True(t, stats.P25.Equal(decimal.NewFromInt(15)))
		assert.True(t, stats.Median.Equal(decimal.NewFromInt(20)))
		assert.True(t, stats.P75.Equal(decimal.NewFromInt(25)))
		assert.True(t, stats.Max.Equal(decimal.NewFromInt(30)))
	})

	t.Run("single row has zero std", func(t *testing.T) {
		stats := Describe(testTable(t, [3]string{"2024-01-01", "42", "a"}))
		assert.Equal(t, 1, stats.Count)
		assert.True(t, stats.Std.IsZero())
		assert.True(t, stats.Mean.Equal(decimal.NewFromInt(42)))
		assert.True(t, stats.Median.Equal(decimal.NewFromInt(42)))
	})

	t.Run("empty table has no data", func(t *testing.T) {
		stats := Describe(&billing.Table{})
		assert.False(t, stats.HasData)
		assert.Zero(t, stats.Count)
	})
}

func TestDashboard(t *testing.T) {
	svc := NewService(slog.Default())

	t.Run("empty table", func(t *testing.T) {
		d := svc.Dashboard(context.Background(), nil)
		assert.False(t, d.HasData)
		assert.Zero(t, d.RowCount)
		assert.Empty(t, d.Trend)
	})

	t.Run("populated table", func(t *testing.T) {
		tbl := testTable(t,
			[3]string{"2024-01-05", "100", "Acme"},
			[3]string{"2024-02-01", "30", "Initech"},
		)
		d := svc.Dashboard(context.Background(), tbl)
		assert.True(t, d.HasData)
		assert.Equal(t, 2, d.RowCount)
		assert.Len(t, d.Trend, 2)
		assert.Len(t, d.TopCustomers, 2)
		assert.True(t, d.Stats.HasData)
	})
}
