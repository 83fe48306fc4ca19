package normalize

import (
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// convertHTML extracts the first <table> of an HTML export (the "Web Page"
// save format of common spreadsheet tools) and writes it as canonical CSV.
// The first row, whether th or td cells, becomes the header.
func convertHTML(src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(decodeReader(f))
	if err != nil {
		return fmt.Errorf("parse html: %w", err)
	}

	tbl := doc.Find("table").First()
	if tbl.Length() == 0 {
		return fmt.Errorf("no table element found")
	}

	var rows [][]string
	tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})

	if len(rows) == 0 {
		return writeCSV(dst, nil, nil)
	}
	return writeCSV(dst, rows[0], rows[1:])
}
