// Package registry holds the merged datasets produced by an ingestion run and
// exposes the read-only query facade over them.
//
// A Registry is populated once by the ingestion pass and frozen for the rest
// of its lifetime; every query reads it without locking. Hot reload is
// build-then-swap: callers build a fresh Registry and atomically replace the
// pointer, never mutate one in use.
//
// Every query fails soft. A missing dataset, an unresolvable column or a
// misbehaving caller predicate yields a nil/absent result, never a fault the
// caller has to guard against.
package registry

import (
	"fmt"
	"log"
	"time"

	"datamart/internal/classify"
	"datamart/internal/table"
)

// AnchorMode selects how "last N days" windows are anchored.
type AnchorMode int

const (
	// AnchorDataMax anchors rolling windows to the maximum date present in
	// the loaded data. Exports are snapshots; "last 7 days" means the last
	// 7 days the data knows about, not the operator's wall clock.
	AnchorDataMax AnchorMode = iota

	// AnchorWallClock anchors rolling windows to time.Now. Use when the
	// watched folder is fed continuously.
	AnchorWallClock
)

// AnchorFromString maps the config value to a mode ("data" or "now").
func AnchorFromString(s string) (AnchorMode, error) {
	switch s {
	case "", "data":
		return AnchorDataMax, nil
	case "now":
		return AnchorWallClock, nil
	default:
		return AnchorDataMax, fmt.Errorf("unknown anchor %q", s)
	}
}

// Registry is the role → merged-table mapping plus the auxiliary indexes
// built during ingestion.
type Registry struct {
	datasets    map[classify.Role]*table.Table
	roleOrder   []classify.Role
	provenance  map[classify.Role][]string
	dateColumns map[string][]string

	anchor AnchorMode

	// now is injected for deterministic tests. Production uses time.Now.
	now func() time.Time
}

// New returns an empty registry. The ingestion pass fills it with Put and
// must not touch it after handing it to readers.
func New(anchor AnchorMode) *Registry {
	return &Registry{
		datasets:    make(map[classify.Role]*table.Table),
		provenance:  make(map[classify.Role][]string),
		dateColumns: make(map[string][]string),
		anchor:      anchor,
		now:         time.Now,
	}
}

// Put registers a merged dataset with the source files that contributed to
// it, in contribution order. Build-time only.
func (r *Registry) Put(role classify.Role, t *table.Table, sources []string) {
	if _, ok := r.datasets[role]; !ok {
		r.roleOrder = append(r.roleOrder, role)
	}
	r.datasets[role] = t
	r.provenance[role] = append([]string(nil), sources...)
}

// SetDateColumns records the coerced date-column index keyed by source
// filename. Build-time only.
func (r *Registry) SetDateColumns(idx map[string][]string) {
	for k, v := range idx {
		r.dateColumns[k] = append([]string(nil), v...)
	}
}

// Loaded reports whether any dataset was produced.
func (r *Registry) Loaded() bool { return r != nil && len(r.datasets) > 0 }

// Roles returns the dataset roles in first-classification order.
func (r *Registry) Roles() []classify.Role {
	if r == nil {
		return nil
	}
	return append([]classify.Role(nil), r.roleOrder...)
}

// Dataset returns the merged table for a role.
func (r *Registry) Dataset(role classify.Role) (*table.Table, bool) {
	if r == nil {
		return nil, false
	}
	t, ok := r.datasets[role]
	return t, ok
}

// DateColumns returns the coerced date columns for a source filename.
func (r *Registry) DateColumns(source string) []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.dateColumns[source]...)
}

// Query runs an arbitrary read-only function against one dataset. It is the
// generic primitive behind ad-hoc lookups: a missing dataset, a returned
// error or even a panicking predicate all degrade to a nil result.
func (r *Registry) Query(role classify.Role, fn func(*table.Table) (*table.Table, error)) (result *table.Table) {
	t, ok := r.Dataset(role)
	if !ok {
		return nil
	}

	defer func() {
		if p := recover(); p != nil {
			log.Printf("registry: query on %s panicked: %v", role, p)
			result = nil
		}
	}()

	out, err := fn(t)
	if err != nil {
		log.Printf("registry: query on %s failed: %v", role, err)
		return nil
	}
	return out
}

// Descriptions returns human-readable provenance strings for every loaded
// dataset, with merged-from sublists for multi-file roles.
func (r *Registry) Descriptions() []string {
	if r == nil {
		return nil
	}
	var out []string
	for _, role := range r.roleOrder {
		t := r.datasets[role]
		files := r.provenance[role]
		if len(files) == 1 {
			out = append(out, fmt.Sprintf("%s (%s): %d rows, %d columns",
				files[0], role, t.NumRows(), t.NumCols()))
			continue
		}
		out = append(out, fmt.Sprintf("%s (merged from %d files): %d rows, %d columns",
			role, len(files), t.NumRows(), t.NumCols()))
		for _, f := range files {
			out = append(out, "  - "+f)
		}
	}
	return out
}
