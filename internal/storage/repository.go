// Package storage defines the backend-agnostic snapshot repository and the
// factory registry that backend packages hook into. Datasets are exported as
// full replacements: every column is TEXT, every export overwrites the
// previous contents of the table.
package storage

import (
	"context"
	"fmt"
	"sync"
)

// Config selects and configures a snapshot backend.
//
// Kind must match a registered backend kind ("sqlite", "postgres", "mssql").
// DSN is passed through to the backend factory unvalidated.
type Config struct {
	Kind string
	DSN  string
}

// TableSpec describes one destination table. All columns are created as TEXT;
// cell values are exported verbatim.
type TableSpec struct {
	Name    string
	Columns []string
}

// Repository is the minimal surface a snapshot backend implements.
type Repository interface {
	// Close releases backend resources. Call once at shutdown.
	Close()

	// EnsureTable creates the table if it does not exist.
	EnsureTable(ctx context.Context, spec TableSpec) error

	// ReplaceRows atomically replaces the full contents of the table and
	// returns the number of rows written. Rows shorter than columns are
	// padded with empty strings.
	ReplaceRows(ctx context.Context, table string, columns []string, rows [][]string) (int64, error)
}

type factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a backend factory under a kind. Called from backend
// package init functions.
//
// Panics on an empty kind, a nil factory, or a duplicate registration; an
// ambiguous backend selection should fail at startup, not at export time.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// New constructs a Repository for the configured backend kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing kind")
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("storage: unsupported kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}
