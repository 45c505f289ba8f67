package billing

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/billing-dashboard/internal/domain/ingest/sniffer"
)

// tableOf builds a canonical table from (date, amount, customer) triples.
func tableOf(t *testing.T, triples ...[3]string) *Table {
	t.Helper()

	columns := []string{"date", "amount", "customer"}
	tbl := &Table{Columns: columns, Roles: sniffer.ResolveRoles(columns)}
	for _, tr := range triples {
		date, err := time.Parse("2006-01-02", tr[0])
		require.NoError(t, err)
		amount := decimal.RequireFromString(tr[1])
		tbl.Rows = append(tbl.Rows, Row{
			Cells:  []string{date.Format(time.RFC3339), amount.String(), tr[2]},
			Date:   date,
			Amount: amount,
		})
	}
	return tbl
}

func rowKeys(tbl *Table) []string {
	keys := make([]string, 0, len(tbl.Rows))
	for _, r := range tbl.Rows {
		keys = append(keys, strings.Join(r.Cells, "|"))
	}
	return keys
}

func TestMerge(t *testing.T) {
	t.Run("concatenates existing then incoming and dedups", func(t *testing.T) {
		existing := tableOf(t,
			[3]string{"2024-01-05", "100", "Acme"},
			[3]string{"2024-01-20", "50", "Globex"},
		)
		incoming := tableOf(t,
			[3]string{"2024-01-20", "50", "Globex"}, // exact duplicate
			[3]string{"2024-02-01", "30", "Initech"},
		)

		merged, err := Merge(existing, incoming)
		require.NoError(t, err)
		require.Len(t, merged.Rows, 3)
		assert.Equal(t, "Acme", merged.Cell(merged.Rows[0], "customer"))
		assert.Equal(t, "Globex", merged.Cell(merged.Rows[1], "customer"))
		assert.Equal(t, "Initech", merged.Cell(merged.Rows[2], "customer"))
	})

	t.Run("idempotent on identical re-upload", func(t *testing.T) {
		tbl := tableOf(t,
			[3]string{"2024-01-05", "100", "Acme"},
			[3]string{"2024-01-20", "50", "Globex"},
		)

		merged, err := Merge(tbl, tbl)
		require.NoError(t, err)
		assert.Equal(t, rowKeys(tbl), rowKeys(merged))
	})

	t.Run("row sets are associative", func(t *testing.T) {
		a := tableOf(t, [3]string{"2024-01-01", "1", "a"}, [3]string{"2024-01-02", "2", "b"})
		b := tableOf(t, [3]string{"2024-01-02", "2", "b"}, [3]string{"2024-01-03", "3", "c"})
		c := tableOf(t, [3]string{"2024-01-04", "4", "d"}, [3]string{"2024-01-01", "1", "a"})

		ab, err := Merge(a, b)
		require.NoError(t, err)
		left, err := Merge(ab, c)
		require.NoError(t, err)

		bc, err := Merge(b, c)
		require.NoError(t, err)
		right, err := Merge(a, bc)
		require.NoError(t, err)

		assert.ElementsMatch(t, rowKeys(left), rowKeys(right))
	})

	t.Run("restricts to common columns in existing order", func(t *testing.T) {
		existing := tableOf(t, [3]string{"2024-01-05", "100", "Acme"})
		incoming := &Table{
			Columns: []string{"amount", "date", "region"},
			Roles:   sniffer.ResolveRoles([]string{"amount", "date", "region"}),
			Rows: []Row{{
				Cells:  []string{"30", "2024-02-01T00:00:00Z", "EU"},
				Date:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
				Amount: decimal.RequireFromString("30"),
			}},
		}

		merged, err := Merge(existing, incoming)
		require.NoError(t, err)
		assert.Equal(t, []string{"date", "amount"}, merged.Columns)
		require.Len(t, merged.Rows, 2)
		assert.Equal(t, "30", merged.Cell(merged.Rows[1], "amount"))
	})

	t.Run("control characters in text cells do not collide dedup keys", func(t *testing.T) {
		columns := []string{"date", "amount", "customer", "notes"}
		roles := sniffer.ResolveRoles(columns)
		date := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
		amount := decimal.RequireFromString("100")
		row := func(customer, notes string) Row {
			return Row{
				Cells:  []string{date.Format(time.RFC3339), amount.String(), customer, notes},
				Date:   date,
				Amount: amount,
			}
		}

		// Joined naively, both rows would render the same byte sequence.
		existing := &Table{Columns: columns, Roles: roles, Rows: []Row{row("a\x1fb", "")}}
		incoming := &Table{Columns: columns, Roles: roles, Rows: []Row{row("a", "b\x1f")}}

		merged, err := Merge(existing, incoming)
		require.NoError(t, err)
		assert.Len(t, merged.Rows, 2)
	})

	t.Run("intersection without date or amount is rejected", func(t *testing.T) {
		existing := tableOf(t, [3]string{"2024-01-05", "100", "Acme"})
		incoming := &Table{
			Columns: []string{"invoice_date", "total_amount", "customer"},
			Roles:   sniffer.ResolveRoles([]string{"invoice_date", "total_amount", "customer"}),
			Rows:    []Row{{Cells: []string{"2024-02-01T00:00:00Z", "30", "Initech"}}},
		}

		_, err := Merge(existing, incoming)
		assert.ErrorIs(t, err, ErrMergeColumnMismatch)
	})
}

func TestTableRecords(t *testing.T) {
	tbl := tableOf(t, [3]string{"2024-01-05", "100.5", "Acme"})
	records := tbl.Records()

	require.Len(t, records, 1)
	assert.Equal(t, "2024-01-05T00:00:00Z", records[0]["date"])
	assert.Equal(t, "100.5", records[0]["amount"])
	assert.Equal(t, "Acme", records[0]["customer"])
}

func TestWriteCSV(t *testing.T) {
	tbl := tableOf(t,
		[3]string{"2024-01-05", "100", "Acme"},
		[3]string{"2024-01-20", "50", "Globex"},
	)

	var sb strings.Builder
	require.NoError(t, tbl.WriteCSV(&sb))

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "date,amount,customer,service", lines[0])
	assert.Contains(t, lines[1], "Acme")
}
