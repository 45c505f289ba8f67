// Package normalizer turns raw sheets into canonical billing tables.
// Headers are canonicalized, the date and amount roles are resolved and
// coerced, and rows that fail either coercion are dropped whole — a
// filtering policy, not an error.
package normalizer

import (
	"time"

	"github.com/FACorreiaa/billing-dashboard/internal/domain/billing"
	"github.com/FACorreiaa/billing-dashboard/internal/domain/ingest/parser"
	"github.com/FACorreiaa/billing-dashboard/internal/domain/ingest/sniffer"
)

// Result carries the normalized table plus drop accounting for logging,
// metrics, and the upload summary.
type Result struct {
	Table          *billing.Table
	TotalRows      int
	DroppedDates   int
	DroppedAmounts int
}

// Dropped returns the total number of rows removed by the drop policy.
func (r *Result) Dropped() int {
	return r.DroppedDates + r.DroppedAmounts
}

// Normalize builds a canonical billing table from a raw sheet.
//
// The pipeline mirrors the dashboard's processing order: canonicalize
// headers, resolve the date role, coerce dates (dropping failures), stable
// sort ascending by date, resolve the amount role, coerce amounts (dropping
// failures). A table where every row dropped is empty but valid.
func Normalize(sheet *parser.Sheet) (*Result, error) {
	columns := sniffer.CanonicalizeHeaders(sheet.Headers)
	roles := sniffer.ResolveRoles(columns)
	if roles.Date == "" {
		return nil, billing.ErrMissingDateColumn
	}
	if roles.Amount == "" {
		return nil, billing.ErrMissingAmountColumn
	}

	dateIdx := columnIndex(columns, roles.Date)
	amountIdx := columnIndex(columns, roles.Amount)

	result := &Result{
		TotalRows: len(sheet.Rows),
		Table:     &billing.Table{Columns: columns, Roles: roles},
	}

	rows := make([]billing.Row, 0, len(sheet.Rows))
	for _, raw := range sheet.Rows {
		cells := padRow(raw, len(columns))

		date, err := ParseDate(cells[dateIdx])
		if err != nil {
			result.DroppedDates++
			continue
		}
		cells[dateIdx] = date.Format(time.RFC3339)

		rows = append(rows, billing.Row{Cells: cells, Date: date})
	}

	result.Table.Rows = rows
	result.Table.SortByDate()

	kept := result.Table.Rows[:0]
	for _, row := range result.Table.Rows {
		amount, err := ParseAmount(row.Cells[amountIdx])
		if err != nil {
			result.DroppedAmounts++
			continue
		}
		row.Cells[amountIdx] = amount.String()
		row.Amount = amount
		kept = append(kept, row)
	}
	result.Table.Rows = kept

	return result, nil
}

// Recoerce re-validates every row against the table's resolved role columns
// and applies the same drop policy as Normalize. Used after a merge, where
// the surviving role columns may differ from the ones the source tables were
// typed against: the new role cells may never have been coerced, so rows
// whose date or amount cell fails to parse are dropped, and surviving cells
// are rewritten to normalized form.
func Recoerce(t *billing.Table) (droppedDates, droppedAmounts int) {
	dateIdx := columnIndex(t.Columns, t.Roles.Date)
	amountIdx := columnIndex(t.Columns, t.Roles.Amount)

	kept := t.Rows[:0]
	for _, row := range t.Rows {
		if dateIdx < 0 || dateIdx >= len(row.Cells) {
			droppedDates++
			continue
		}
		date, err := ParseDate(row.Cells[dateIdx])
		if err != nil {
			droppedDates++
			continue
		}
		row.Cells[dateIdx] = date.Format(time.RFC3339)
		row.Date = date

		if amountIdx < 0 || amountIdx >= len(row.Cells) {
			droppedAmounts++
			continue
		}
		amount, err := ParseAmount(row.Cells[amountIdx])
		if err != nil {
			droppedAmounts++
			continue
		}
		row.Cells[amountIdx] = amount.String()
		row.Amount = amount

		kept = append(kept, row)
	}
	t.Rows = kept
	return droppedDates, droppedAmounts
}

func columnIndex(columns []string, name string) int {
	for i, c := range columns {
		if c == name {
			return i
		}
	}
	return -1
}

// padRow widens ragged rows to the header width. Excel readers omit
// trailing empty cells.
func padRow(raw []string, width int) []string {
	cells := make([]string, width)
	copy(cells, raw)
	return cells
}
