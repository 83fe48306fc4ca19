package normalize

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"datamart/internal/config"
)

func writeData(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeData(t, dir, "orders.csv", "Order Number, Email ,Total\n1001,a@x.com, 19.99 \n1002,b@x.com\n")

	n := New(dir, filepath.Join(dir, "cache"), nil)
	got, err := n.Load("orders.csv")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	wantCols := []string{"Order Number", "Email", "Total"}
	if !reflect.DeepEqual(got.Columns, wantCols) {
		t.Fatalf("Columns = %v, want %v", got.Columns, wantCols)
	}
	wantRows := [][]string{
		{"1001", "a@x.com", "19.99"},
		{"1002", "b@x.com", ""},
	}
	if !reflect.DeepEqual(got.Rows, wantRows) {
		t.Fatalf("Rows = %v, want %v", got.Rows, wantRows)
	}
}

func TestLoadCSVStripsBOM(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeData(t, dir, "m.csv", "\uFEFFEmail,Name\na@x.com,Ann\n")

	n := New(dir, dir, nil)
	got, err := n.Load("m.csv")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Columns[0] != "Email" {
		t.Fatalf("first column = %q, want Email", got.Columns[0])
	}
}

func TestLoadCSVDelimiterOption(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeData(t, dir, "s.csv", "a;b\n1;2\n")

	n := New(dir, dir, config.Options{"comma": ";"})
	got, err := n.Load("s.csv")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got.Columns, []string{"a", "b"}) {
		t.Fatalf("Columns = %v", got.Columns)
	}
	if !reflect.DeepEqual(got.Rows, [][]string{{"1", "2"}}) {
		t.Fatalf("Rows = %v", got.Rows)
	}
}

func TestDecodeWindows1252(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// "Café" with 0xE9, not valid UTF-8.
	if err := os.WriteFile(filepath.Join(dir, "w.csv"), []byte{'N', 'a', 'm', 'e', '\n', 'C', 'a', 'f', 0xE9, '\n'}, 0o644); err != nil {
		t.Fatal(err)
	}

	n := New(dir, dir, nil)
	got, err := n.Load("w.csv")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Cell(0, 0) != "Café" {
		t.Fatalf("cell = %q, want Café", got.Cell(0, 0))
	}
}

// TestDateCoercion checks that date-ish columns are rewritten to the canonical
// layout, non-parsing cells are left alone, and the attempted columns are
// recorded per source.
func TestDateCoercion(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeData(t, dir, "o.csv", "Date Created,Status\n05.03.2024,Paid\nnot-a-date,Open\n,Void\n")

	n := New(dir, dir, nil)
	got, err := n.Load("o.csv")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got.Cell(0, 0) != "2024-03-05 00:00:00" {
		t.Fatalf("coerced cell = %q", got.Cell(0, 0))
	}
	if got.Cell(1, 0) != "not-a-date" {
		t.Fatalf("unparseable cell should be untouched, got %q", got.Cell(1, 0))
	}
	if got.Cell(2, 0) != "" {
		t.Fatalf("empty cell should stay empty")
	}
	if !reflect.DeepEqual(n.DateColumns["o.csv"], []string{"Date Created"}) {
		t.Fatalf("DateColumns = %v", n.DateColumns)
	}
}

// TestConversionCache verifies the mtime contract: a second load reuses the
// cached CSV, and touching the source forces regeneration.
func TestConversionCache(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cache := filepath.Join(dir, "cache")
	src := writeData(t, dir, "book.xlsx", "binary")

	n := New(dir, cache, nil)
	calls := 0
	n.convert = func(_, dst string) error {
		calls++
		return writeCSV(dst, []string{"Email"}, [][]string{{"a@x.com"}})
	}

	for i := 0; i < 2; i++ {
		if _, err := n.Load("book.xlsx"); err != nil {
			t.Fatalf("Load %d: %v", i, err)
		}
	}
	if calls != 1 {
		t.Fatalf("convert called %d times, want 1", calls)
	}

	// Replace the source with a strictly newer mtime.
	future := time.Now().Add(2 * time.Hour)
	if err := os.Chtimes(src, future, future); err != nil {
		t.Fatal(err)
	}
	if _, err := n.Load("book.xlsx"); err != nil {
		t.Fatalf("Load after touch: %v", err)
	}
	if calls != 2 {
		t.Fatalf("convert called %d times after touch, want 2", calls)
	}
}

func TestLoadMissingSource(t *testing.T) {
	t.Parallel()

	n := New(t.TempDir(), t.TempDir(), nil)
	if _, err := n.Load("ghost.xlsx"); err == nil {
		t.Fatalf("Load of missing source should fail")
	}
	if _, err := n.Load("ghost.csv"); err == nil {
		t.Fatalf("Load of missing csv should fail")
	}
}

func TestWriteCSVPadsRows(t *testing.T) {
	t.Parallel()

	dst := filepath.Join(t.TempDir(), "out.csv")
	if err := writeCSV(dst, []string{"a", "b", "c"}, [][]string{{"1"}, {"1", "2", "3", "4"}}); err != nil {
		t.Fatalf("writeCSV: %v", err)
	}

	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	want := "a,b,c\n1,,\n1,2,3\n"
	if string(b) != want {
		t.Fatalf("output = %q, want %q", b, want)
	}
}
