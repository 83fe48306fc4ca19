// Package all registers every snapshot backend. Import for side effects from
// the binary that selects backends by config.
package all

import (
	_ "datamart/internal/storage/mssql"
	_ "datamart/internal/storage/postgres"
	_ "datamart/internal/storage/sqlite"
)
