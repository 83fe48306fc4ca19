package table

import (
	"reflect"
	"testing"
	"time"
)

func TestAppendRowPadsAndTruncates(t *testing.T) {
	t.Parallel()

	tbl := New("orders.csv", []string{"a", "b", "c"})
	tbl.AppendRow([]string{"1"})
	tbl.AppendRow([]string{"1", "2", "3", "4"})

	want := [][]string{
		{"1", "", ""},
		{"1", "2", "3"},
	}
	if !reflect.DeepEqual(tbl.Rows, want) {
		t.Fatalf("Rows = %v, want %v", tbl.Rows, want)
	}
}

func TestNilSafety(t *testing.T) {
	t.Parallel()

	var tbl *Table
	if tbl.NumRows() != 0 || tbl.NumCols() != 0 || !tbl.Empty() {
		t.Fatalf("nil table should report zero rows and columns")
	}
	if got := tbl.ColumnIndex("x"); got != -1 {
		t.Fatalf("ColumnIndex on nil = %d, want -1", got)
	}
	if got := tbl.Cell(0, 0); got != "" {
		t.Fatalf("Cell on nil = %q, want empty", got)
	}
	if tbl.Filter(func([]string) bool { return true }) != nil {
		t.Fatalf("Filter on nil should return nil")
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	t.Parallel()

	tbl := New("t", []string{"n"})
	for _, v := range []string{"1", "2", "3", "4"} {
		tbl.AppendRow([]string{v})
	}
	got := tbl.Filter(func(row []string) bool { return row[0] != "2" })

	want := [][]string{{"1"}, {"3"}, {"4"}}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Fatalf("filtered rows = %v, want %v", got.Rows, want)
	}
	if tbl.NumRows() != 4 {
		t.Fatalf("source table mutated: %d rows", tbl.NumRows())
	}
}

func TestCopyIsIndependent(t *testing.T) {
	t.Parallel()

	tbl := New("t", []string{"a"})
	tbl.AppendRow([]string{"x"})

	cp := tbl.Copy()
	cp.Rows[0][0] = "changed"
	if tbl.Rows[0][0] != "x" {
		t.Fatalf("copy shares row storage with original")
	}
}

// TestResolve verifies the declared-order tie-break: the first matching
// column wins even when a later column also matches.
func TestResolve(t *testing.T) {
	t.Parallel()

	columns := []string{"Order Number", "Date Created", "Ship Date", "Amount Paid", "Amount (Processing Fee)"}

	tests := []struct {
		name     string
		keywords []string
		want     int
	}{
		{"single keyword first match", []string{"date"}, 1},
		{"two keywords", []string{"date", "created"}, 1},
		{"case insensitive", []string{"ORDER"}, -1}, // keywords are lowercase by convention
		{"amount prefers declared order", []string{"amount"}, 3},
		{"no match", []string{"email"}, -1},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Resolve(columns, tt.keywords...); got != tt.want {
				t.Fatalf("Resolve(%v) = %d, want %d", tt.keywords, got, tt.want)
			}
		})
	}
}

func TestResolveAny(t *testing.T) {
	t.Parallel()

	columns := []string{"Payment ID", "Transaction Ref", "Amount"}

	if got := ResolveAny(columns, []string{"transaction"}, []string{"payment", "id"}); got != 0 {
		t.Fatalf("ResolveAny = %d, want 0 (first column satisfying any set)", got)
	}
	if got := ResolveAny(columns, []string{"stripe"}); got != -1 {
		t.Fatalf("ResolveAny with no match = %d, want -1", got)
	}
}

func TestResolveExcluding(t *testing.T) {
	t.Parallel()

	columns := []string{"Processing Fee Amount", "Amount"}
	if got := ResolveExcluding(columns, []string{"amount"}, []string{"processing"}); got != 1 {
		t.Fatalf("ResolveExcluding = %d, want 1", got)
	}
	if got := ResolveExcluding(columns, []string{"amount"}, []string{"processing", "amount"}); got != -1 {
		t.Fatalf("ResolveExcluding excluding everything = %d, want -1", got)
	}
}

func TestParseTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want time.Time
		ok   bool
	}{
		{"canonical", "2024-03-05 10:30:00", time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC), true},
		{"date only", "2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"dotted day first", "05.03.2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"month name", "Mar 5, 2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"empty", "", time.Time{}, false},
		{"garbage", "not a date", time.Time{}, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseTime(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseTime(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Fatalf("ParseTime(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{" 19.99 ", 19.99, true},
		{"-3.5", -3.5, true},
		{"", 0, false},
		{"N/A", 0, false},
		{"12,50", 0, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseNumber(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("ParseNumber(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}
