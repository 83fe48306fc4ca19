package normalize

import (
	"strings"

	"datamart/internal/table"
)

// datePatterns mark a column as date-ish by name. Coercion is attempted on
// every matching column; it is best-effort and never fatal.
var datePatterns = []string{"date", "created", "activity", "time", "datetime"}

func dateish(name string) bool {
	lower := strings.ToLower(name)
	for _, p := range datePatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// coerceDates attempts timestamp coercion on every date-ish column. Cells
// that parse are rewritten in the canonical layout; cells that do not are
// left as-is silently. Attempted columns are recorded in the date-column
// index keyed by source filename.
func (n *Normalizer) coerceDates(t *table.Table, source string) {
	var coerced []string

	for col, name := range t.Columns {
		if !dateish(name) {
			continue
		}
		for _, row := range t.Rows {
			if col >= len(row) || row[col] == "" {
				continue
			}
			if ts, ok := table.ParseTime(row[col]); ok {
				row[col] = ts.Format(table.TimeLayout)
			}
		}
		coerced = append(coerced, name)
	}

	if len(coerced) > 0 {
		n.DateColumns[source] = coerced
	}
}
