// Package table defines the canonical in-memory representation of one
// normalized source file: an ordered set of named columns over dense string
// rows. Every downstream component (classifier, merger, registry queries)
// operates on this shape.
//
// Cells are always strings. Missing values are the empty string, never a
// sentinel, so string operations stay total across the engine. Numeric and
// timestamp interpretation happens at the point of use, best-effort.
package table

import "strings"

// Table is the canonical tabular form of one source file (or of a merged
// dataset). Rows are dense and aligned to Columns; a short input row is
// padded with empty strings, a long one is truncated.
type Table struct {
	// Source is the originating filename. Merged tables carry the role name.
	Source string

	Columns []string
	Rows    [][]string
}

// New returns an empty table with the given column order.
func New(source string, columns []string) *Table {
	return &Table{
		Source:  source,
		Columns: append([]string(nil), columns...),
	}
}

// NumRows returns the row count. Safe on nil.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// NumCols returns the column count. Safe on nil.
func (t *Table) NumCols() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// Empty reports whether the table is nil or has no rows.
func (t *Table) Empty() bool { return t.NumRows() == 0 }

// ColumnIndex returns the index of the column with the exact given name,
// or -1 when absent.
func (t *Table) ColumnIndex(name string) int {
	if t == nil {
		return -1
	}
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// AppendRow adds a row, padding or truncating it to the column width.
func (t *Table) AppendRow(vals []string) {
	row := make([]string, len(t.Columns))
	copy(row, vals)
	t.Rows = append(t.Rows, row)
}

// Cell returns the value at (row, col), or "" when out of bounds.
func (t *Table) Cell(row, col int) string {
	if t == nil || row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Filter returns a new table with the same columns containing only the rows
// for which keep returns true. Row order is preserved.
func (t *Table) Filter(keep func(row []string) bool) *Table {
	if t == nil {
		return nil
	}
	out := New(t.Source, t.Columns)
	for _, r := range t.Rows {
		if keep(r) {
			out.AppendRow(r)
		}
	}
	return out
}

// Copy returns a deep copy of the table.
func (t *Table) Copy() *Table {
	if t == nil {
		return nil
	}
	out := New(t.Source, t.Columns)
	out.Rows = make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		out.AppendRow(r)
	}
	return out
}

// JoinedColumns returns all column names lowercased and joined by a single
// space. The classifier matches keyword substrings against this form.
func (t *Table) JoinedColumns() string {
	if t == nil {
		return ""
	}
	lower := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		lower[i] = strings.ToLower(c)
	}
	return strings.Join(lower, " ")
}
