package normalize

import (
	"fmt"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// maxXLSRows bounds legacy .xls reads; BIFF sheets cannot exceed 65536 rows.
const maxXLSRows = 65536

// convertXLSX reads the first sheet of an xlsx workbook and writes it as
// canonical CSV.
func convertXLSX(src, dst string) error {
	f, err := excelize.OpenFile(src)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return writeCSV(dst, nil, nil)
	}
	return writeCSV(dst, rows[0], rows[1:])
}

// convertXLS reads the first sheet of a legacy BIFF workbook and writes it as
// canonical CSV.
func convertXLS(src, dst string) error {
	wb, err := xls.Open(src, "utf-8")
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}

	rows := wb.ReadAllCells(maxXLSRows)
	if len(rows) == 0 {
		return writeCSV(dst, nil, nil)
	}
	return writeCSV(dst, rows[0], rows[1:])
}
