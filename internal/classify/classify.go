// Package classify assigns each normalized table a logical dataset role.
//
// Classification is a prioritized rule cascade: filename signals first (curated
// exports tend to carry descriptive names), column-signature fallback second,
// filename-derived role last. The cascade order is a behavioral contract:
// reordering it changes outcomes on ambiguous real files (an "orders_items"
// export must land on items_purchased, not orders).
package classify

import (
	"log"
	"path/filepath"
	"strings"
)

// Role is the logical dataset category assigned to an ingested table.
type Role string

// Fixed roles. Files that match no rule get a role derived from their
// filename instead.
const (
	// RoleMemberData is the member roster. The label "data" is historical:
	// roster exports are typically named "contact data" or similar.
	RoleMemberData Role = "data"

	RoleOrders   Role = "orders"
	RolePayments Role = "payments"
	RoleItems    Role = "items_purchased"
)

// Detect returns the dataset role for a table given its originating filename
// and column names. First matching rule wins.
func Detect(filename string, columns []string) Role {
	name := strings.ToLower(filename)

	// Filename rules.
	if strings.Contains(name, "contact") ||
		(strings.Contains(name, "data") && !strings.Contains(name, "member")) {
		return RoleMemberData
	}
	if strings.Contains(name, "order") && !strings.Contains(name, "item") {
		return RoleOrders
	}
	if strings.Contains(name, "payment") {
		return RolePayments
	}
	if strings.Contains(name, "item") {
		return RoleItems
	}

	// Column-signature fallback. Matching is substring search over all
	// lowercased column names joined by spaces.
	cols := joinedLower(columns)

	if containsAny(cols, "member", "contact", "phone", "subscription") &&
		containsAny(cols, "name", "email") {
		return RoleMemberData
	}
	if strings.Contains(cols, "order") && strings.Contains(cols, "number") &&
		containsAny(cols, "payment", "amount", "status") {
		return RoleOrders
	}
	if strings.Contains(cols, "payment") &&
		containsAny(cols, "amount", "method", "transaction", "stripe") {
		return RolePayments
	}
	if strings.Contains(cols, "item") && strings.Contains(cols, "order") &&
		containsAny(cols, "quantity", "qty", "purchased") {
		return RoleItems
	}

	role := fallbackRole(filename)
	log.Printf("classify: no rule matched for %s, using filename role %q", filename, role)
	return role
}

// fallbackRole derives a role from the filename: stem, lowercased, spaces
// replaced with underscores.
func fallbackRole(filename string) Role {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	return Role(strings.ReplaceAll(strings.ToLower(stem), " ", "_"))
}

func joinedLower(columns []string) string {
	lower := make([]string, len(columns))
	for i, c := range columns {
		lower[i] = strings.ToLower(c)
	}
	return strings.Join(lower, " ")
}

func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
