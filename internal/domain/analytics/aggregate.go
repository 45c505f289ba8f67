// Package analytics computes the dashboard aggregates over a billing table.
// Every function here is pure: it reads the table and returns values, so the
// session layer can call them on each request without extra bookkeeping.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/billing-dashboard/internal/domain/billing"
)

// TopCustomerLimit caps the top-customers ranking.
const TopCustomerLimit = 10

// MonthTotal is one point of the monthly revenue trend.
type MonthTotal struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// GroupTotal is a grouped revenue total, keyed by customer or service.
type GroupTotal struct {
	Key   string          `json:"key"`
	Total decimal.Decimal `json:"total"`
}

// MonthlyTrend sums amounts per calendar month, ascending by month.
func MonthlyTrend(t *billing.Table) []MonthTotal {
	if t.IsEmpty() {
		return nil
	}

	totals := make(map[string]decimal.Decimal)
	for _, row := range t.Rows {
		month := row.Date.Format("2006-01")
		totals[month] = totals[month].Add(row.Amount)
	}

	months := make([]string, 0, len(totals))
	for month := range totals {
		months = append(months, month)
	}
	sort.Strings(months)

	trend := make([]MonthTotal, 0, len(months))
	for _, month := range months {
		trend = append(trend, MonthTotal{Month: month, Total: totals[month]})
	}
	return trend
}

// TotalsByService sums amounts per service value, descending by total.
// Rows with an empty service cell fall under the empty-string group.
func TotalsByService(t *billing.Table) []GroupTotal {
	if t.IsEmpty() || t.Roles.Service == "" {
		return nil
	}
	return groupTotalsDesc(t, t.Roles.Service, 0)
}

// TopCustomers ranks customers by total billed, descending, capped at
// TopCustomerLimit.
func TopCustomers(t *billing.Table) []GroupTotal {
	if t.IsEmpty() || t.Roles.Customer == "" {
		return nil
	}
	return groupTotalsDesc(t, t.Roles.Customer, TopCustomerLimit)
}

// groupTotalsDesc sums amounts grouped by the named column and sorts the
// groups by total, descending. Ties keep first-seen row order so results
// are deterministic for a given table. limit 0 means unbounded.
func groupTotalsDesc(t *billing.Table, column string, limit int) []GroupTotal {
	totals := make(map[string]decimal.Decimal)
	order := make([]string, 0)
	for _, row := range t.Rows {
		key := t.Cell(row, column)
		if _, seen := totals[key]; !seen {
			order = append(order, key)
		}
		totals[key] = totals[key].Add(row.Amount)
	}

	groups := make([]GroupTotal, 0, len(order))
	for _, key := range order {
		groups = append(groups, GroupTotal{Key: key, Total: totals[key]})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Total.GreaterThan(groups[j].Total)
	})

	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	return groups
}
