// Package merge combines same-role tables from multiple source files into a
// single table per role, applying per-role deduplication rules.
//
// The dedup key for each role is a closed policy keyed by the role constant,
// not open-ended string branching: adding a role means adding exactly one new
// policy variant with its key-selection rule.
package merge

import (
	"fmt"
	"log"

	"datamart/internal/classify"
	"datamart/internal/table"
)

// Merge combines all tables sharing a role into one table. A single table is
// used unchanged. Multiple tables are concatenated (column union, rows in
// file-discovery order) and deduplicated keep-last on the role's key column
// when one resolves. The merged row count never exceeds the sum of inputs.
func Merge(role classify.Role, tables []*table.Table) (*table.Table, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("merge %s: no tables", role)
	}
	if len(tables) == 1 {
		return tables[0], nil
	}

	merged := concat(string(role), tables)

	if keyIdx := dedupKey(role, merged.Columns); keyIdx >= 0 {
		before := merged.NumRows()
		merged = dedupLast(merged, keyIdx)
		if merged.NumRows() < before {
			log.Printf("merge: %s deduplicated on %q (%d -> %d rows)",
				role, merged.Columns[keyIdx], before, merged.NumRows())
		}
	}

	log.Printf("merge: %s combined from %d files, %d rows", role, len(tables), merged.NumRows())
	return merged, nil
}

// concat unions columns in first-seen order and appends rows in input order.
// Cells for columns a source table lacks are empty strings.
func concat(source string, tables []*table.Table) *table.Table {
	var columns []string
	seen := make(map[string]int)
	for _, t := range tables {
		for _, c := range t.Columns {
			if _, ok := seen[c]; !ok {
				seen[c] = len(columns)
				columns = append(columns, c)
			}
		}
	}

	out := table.New(source, columns)
	for _, t := range tables {
		// Map this table's column positions into the union.
		idx := make([]int, len(t.Columns))
		for i, c := range t.Columns {
			idx[i] = seen[c]
		}
		for _, row := range t.Rows {
			union := make([]string, len(columns))
			for i, v := range row {
				if i < len(idx) {
					union[idx[i]] = v
				}
			}
			out.Rows = append(out.Rows, union)
		}
	}
	return out
}

// dedupKey resolves the role's dedup key column over the merged column set,
// or -1 when the role carries no dedup policy or no column matches. Roles
// without a resolvable key are merged by concatenation only.
func dedupKey(role classify.Role, columns []string) int {
	switch role {
	case classify.RoleMemberData:
		if idx := table.Resolve(columns, "email"); idx >= 0 {
			return idx
		}
		return table.Resolve(columns, "member", "id")
	case classify.RoleOrders:
		return table.Resolve(columns, "order", "number")
	case classify.RolePayments:
		return table.ResolveAny(columns, []string{"transaction"}, []string{"payment_id"})
	default:
		return -1
	}
}

// dedupLast keeps the last occurrence per key value. Later files (and later
// rows within a file) are authoritative over earlier, overlapping exports.
// Surviving rows keep their relative order.
func dedupLast(t *table.Table, keyIdx int) *table.Table {
	last := make(map[string]int, len(t.Rows))
	for i, row := range t.Rows {
		last[row[keyIdx]] = i
	}

	out := table.New(t.Source, t.Columns)
	for i, row := range t.Rows {
		if last[row[keyIdx]] == i {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}
