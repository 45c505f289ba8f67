package billing

import (
	"strconv"
	"strings"

	"github.com/FACorreiaa/billing-dashboard/internal/domain/ingest/sniffer"
)

// dedupKey renders a row's cells into a key that two distinct cell tuples
// can never share: each cell is length-prefixed, so no join separator can
// collide with text inside a cell.
func dedupKey(cells []string) string {
	var b strings.Builder
	for _, c := range cells {
		b.WriteString(strconv.Itoa(len(c)))
		b.WriteByte(':')
		b.WriteString(c)
	}
	return b.String()
}

// Merge unions two canonical tables over their common columns and removes
// exact-duplicate rows. Existing rows come first, then incoming rows; the
// first occurrence of a duplicate wins and surviving order is preserved.
//
// The common column set is re-checked for roles: when the intersection has
// lost the date or amount column, Merge fails with ErrMergeColumnMismatch
// instead of producing a degenerate table. Callers are expected to re-sort
// the result by date; Merge itself keeps concatenation order.
func Merge(existing, incoming *Table) (*Table, error) {
	common := intersectColumns(existing.Columns, incoming.Columns)
	roles := sniffer.ResolveRoles(common)
	if roles.Date == "" || roles.Amount == "" {
		return nil, ErrMergeColumnMismatch
	}

	merged := &Table{
		Columns: common,
		Roles:   roles,
		Rows:    make([]Row, 0, len(existing.Rows)+len(incoming.Rows)),
	}

	seen := make(map[string]struct{}, len(existing.Rows)+len(incoming.Rows))
	appendProjected(merged, existing, common, seen)
	appendProjected(merged, incoming, common, seen)

	return merged, nil
}

// intersectColumns returns the columns present in both lists, in the order
// they appear in a. The intersection is a set operation: duplicates in a
// are collapsed.
func intersectColumns(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, c := range b {
		inB[c] = struct{}{}
	}

	var common []string
	taken := make(map[string]struct{}, len(a))
	for _, c := range a {
		if _, ok := inB[c]; !ok {
			continue
		}
		if _, dup := taken[c]; dup {
			continue
		}
		taken[c] = struct{}{}
		common = append(common, c)
	}
	return common
}

// appendProjected copies src rows restricted to the common columns into
// dst, skipping rows whose projected cells were already seen.
func appendProjected(dst, src *Table, common []string, seen map[string]struct{}) {
	idx := make([]int, len(common))
	for i, col := range common {
		idx[i] = src.ColumnIndex(col)
	}

	for _, row := range src.Rows {
		cells := make([]string, len(common))
		for i, srcIdx := range idx {
			if srcIdx >= 0 && srcIdx < len(row.Cells) {
				cells[i] = row.Cells[srcIdx]
			}
		}
		key := dedupKey(cells)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		dst.Rows = append(dst.Rows, Row{Cells: cells, Date: row.Date, Amount: row.Amount})
	}
}
