package billing

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// ExportRow is the fixed-shape record written by WriteCSV: the resolved
// role columns of the session table. Unresolved optional roles render as
// empty fields.
type ExportRow struct {
	Date     string `csv:"date"`
	Amount   string `csv:"amount"`
	Customer string `csv:"customer"`
	Service  string `csv:"service"`
}

// ExportRows projects the table onto its role columns.
func (t *Table) ExportRows() []ExportRow {
	if t == nil {
		return nil
	}
	rows := make([]ExportRow, 0, len(t.Rows))
	for _, row := range t.Rows {
		rows = append(rows, ExportRow{
			Date:     t.Cell(row, t.Roles.Date),
			Amount:   t.Cell(row, t.Roles.Amount),
			Customer: t.Cell(row, t.Roles.Customer),
			Service:  t.Cell(row, t.Roles.Service),
		})
	}
	return rows
}

// WriteCSV writes the role-column projection of the table as CSV. An empty
// table produces a header-only file.
func (t *Table) WriteCSV(w io.Writer) error {
	rows := t.ExportRows()
	if rows == nil {
		rows = []ExportRow{}
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("write csv export: %w", err)
	}
	return nil
}
