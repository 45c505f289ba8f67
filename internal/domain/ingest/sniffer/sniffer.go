// Package sniffer resolves semantic column roles from spreadsheet headers.
// Each role carries a fixed, ordered alias list; the first alias present in
// the table's column names wins.
package sniffer

import "strings"

// Role is a semantic column category found in billing exports.
type Role string

const (
	RoleDate     Role = "date"
	RoleAmount   Role = "amount"
	RoleCustomer Role = "customer"
	RoleService  Role = "service"
)

// roleAliases maps each role to its accepted canonical header names, in
// priority order. Lookup is exact, not substring: a header matches only
// after canonicalization makes it identical to an alias.
var roleAliases = map[Role][]string{
	RoleDate:     {"date", "invoice_date", "billing_date", "transaction_date"},
	RoleAmount:   {"amount", "amount_billed", "total_amount", "price"},
	RoleCustomer: {"customer", "customer_name", "client"},
	RoleService:  {"service_type", "service", "product"},
}

// Roles holds the resolved column name for each role. An empty string means
// the role is absent from the table. Date and Amount are required for a
// table to be usable; Customer and Service are optional.
type Roles struct {
	Date     string
	Amount   string
	Customer string
	Service  string
}

// Aliases returns the priority-ordered alias list for a role. The returned
// slice must not be modified.
func Aliases(role Role) []string {
	return roleAliases[role]
}

// CanonicalizeHeader normalizes a raw header name: trim surrounding
// whitespace, replace internal spaces with underscores, lowercase.
func CanonicalizeHeader(h string) string {
	h = strings.TrimSpace(h)
	h = strings.ReplaceAll(h, " ", "_")
	return strings.ToLower(h)
}

// CanonicalizeHeaders canonicalizes every header, preserving order.
func CanonicalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = CanonicalizeHeader(h)
	}
	return out
}

// Infer returns the first alias of role present in columns, or false when
// none matches. The result depends only on the column set and the fixed
// alias order, never on row data.
func Infer(columns []string, role Role) (string, bool) {
	present := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		present[c] = struct{}{}
	}
	for _, alias := range roleAliases[role] {
		if _, ok := present[alias]; ok {
			return alias, true
		}
	}
	return "", false
}

// ResolveRoles infers all four roles against a canonical column list.
func ResolveRoles(columns []string) Roles {
	var r Roles
	r.Date, _ = Infer(columns, RoleDate)
	r.Amount, _ = Infer(columns, RoleAmount)
	r.Customer, _ = Infer(columns, RoleCustomer)
	r.Service, _ = Infer(columns, RoleService)
	return r
}
