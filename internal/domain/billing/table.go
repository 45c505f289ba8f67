// Package billing defines the canonical in-memory billing table that the
// normalization pipeline produces and every dashboard view consumes, plus
// the merge and export operations over it.
package billing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/billing-dashboard/internal/domain/ingest/sniffer"
)

// Row is one normalized billing record. Cells is aligned with the owning
// table's Columns; the date and amount cells are kept in their normalized
// string form (RFC 3339 / decimal) so full-row equality is format-stable.
type Row struct {
	Cells  []string
	Date   time.Time
	Amount decimal.Decimal
}

// Table is a canonical billing table: lowercase underscored column names,
// resolved column roles, and rows that all carry a parseable date and a
// numeric amount. Transforms never mutate a table in place; they build a
// new one.
type Table struct {
	Columns []string
	Roles   sniffer.Roles
	Rows    []Row
}

// IsEmpty reports whether the table holds no rows.
func (t *Table) IsEmpty() bool {
	return t == nil || len(t.Rows) == 0
}

// ColumnIndex returns the position of a column name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value of the named column in the given row, or "" when
// the column is absent or the row is ragged.
func (t *Table) Cell(row Row, column string) string {
	idx := t.ColumnIndex(column)
	if idx < 0 || idx >= len(row.Cells) {
		return ""
	}
	return row.Cells[idx]
}

// Records renders the table as an ordered sequence of row maps with
// ISO-8601 date strings, the egress form handed to the presentation layer.
func (t *Table) Records() []map[string]string {
	if t == nil {
		return nil
	}
	records := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(row.Cells) {
				rec[col] = row.Cells[i]
			} else {
				rec[col] = ""
			}
		}
		records = append(records, rec)
	}
	return records
}

// SortByDate orders rows ascending by date. The sort is stable: rows with
// equal dates keep their relative order.
func (t *Table) SortByDate() {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		return t.Rows[i].Date.Before(t.Rows[j].Date)
	})
}
