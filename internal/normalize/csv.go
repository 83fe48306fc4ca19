package normalize

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"datamart/internal/table"
)

// readCSV parses a canonical CSV into a table. Header names are kept verbatim
// (trimmed); matching against them is always done lowercased downstream.
// Ragged records are padded or truncated to the header width, and missing
// values become empty strings so string operations stay total.
func (n *Normalizer) readCSV(path, source string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	trim := n.Reader.Bool("trim_space", true)

	r := csv.NewReader(decodeReader(f))
	r.Comma = n.Reader.Rune("comma", ',')
	r.FieldsPerRecord = -1
	r.LazyQuotes = n.Reader.Bool("lazy_quotes", true)
	r.ReuseRecord = true

	hdr, err := r.Read()
	if err == io.EOF {
		return table.New(source, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make([]string, len(hdr))
	for i, h := range hdr {
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		cols[i] = strings.TrimSpace(h)
	}

	t := table.New(source, cols)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return t, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", t.NumRows()+2, err)
		}
		row := make([]string, len(rec))
		for i, v := range rec {
			if trim {
				v = strings.TrimSpace(v)
			}
			row[i] = v
		}
		t.AppendRow(row)
	}
}

// decodeReader wraps r with a charset transform when the content is not plain
// UTF-8. Spreadsheet exports commonly arrive as UTF-16 with a BOM or as
// Windows-1252; both are decoded transparently.
func decodeReader(r io.Reader) io.Reader {
	br := bufio.NewReaderSize(r, 4096)
	peek, _ := br.Peek(4096)

	switch {
	case bytes.HasPrefix(peek, []byte{0xFF, 0xFE}), bytes.HasPrefix(peek, []byte{0xFE, 0xFF}):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		return transform.NewReader(br, dec)
	case validUTF8Prefix(peek):
		return br
	default:
		return transform.NewReader(br, charmap.Windows1252.NewDecoder())
	}
}

// validUTF8Prefix reports whether b is valid UTF-8, tolerating a rune cut off
// at the end of the peeked window.
func validUTF8Prefix(b []byte) bool {
	for trim := 0; trim < utf8.UTFMax && trim < len(b); trim++ {
		if utf8.Valid(b[:len(b)-trim]) {
			return true
		}
	}
	return len(b) == 0
}

// writeCSV writes header and rows as UTF-8 CSV, padding every row to the
// header width. Conversion output always round-trips through this single
// writer so cached artifacts are byte-stable for unchanged inputs.
func writeCSV(dst string, header []string, rows [][]string) error {
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	padded := make([]string, len(header))
	for _, r := range rows {
		for i := range padded {
			if i < len(r) {
				padded[i] = r[i]
			} else {
				padded[i] = ""
			}
		}
		if err := w.Write(padded); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
