package storage

import (
	"context"
	"fmt"
	"log"
	"strings"

	"datamart/internal/registry"
)

// Export writes every loaded dataset to the repository, one table per role.
// Each table is fully replaced; a snapshot export is idempotent.
func Export(ctx context.Context, repo Repository, reg *registry.Registry) error {
	for _, role := range reg.Roles() {
		t, ok := reg.Dataset(role)
		if !ok {
			continue
		}

		spec := TableSpec{
			Name:    tableName(string(role)),
			Columns: t.Columns,
		}
		if err := repo.EnsureTable(ctx, spec); err != nil {
			return fmt.Errorf("ensure table %s: %w", spec.Name, err)
		}

		n, err := repo.ReplaceRows(ctx, spec.Name, t.Columns, t.Rows)
		if err != nil {
			return fmt.Errorf("replace rows in %s: %w", spec.Name, err)
		}
		log.Printf("storage: exported %s (%d rows)", spec.Name, n)
	}
	return nil
}

// tableName maps a dataset role to a conservative SQL table name: lowercase,
// with every non-alphanumeric run collapsed to a single underscore.
func tableName(role string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(role) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	name := strings.TrimSuffix(b.String(), "_")
	if name == "" {
		return "dataset"
	}
	return name
}
