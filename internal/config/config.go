// Package config holds engine configuration and the loosely typed option maps
// used to tune file readers.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Severity of a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single configuration validation finding.
type Issue struct {
	Severity Severity
	Path     string
	Message  string
}

// Config is the engine configuration. Zero values are filled with defaults by
// ApplyDefaults; the CLI layers flags over environment variables over these.
type Config struct {
	// DataFolder is the watched folder of spreadsheet exports.
	DataFolder string

	// CacheFolder holds canonical CSV conversions of non-CSV sources.
	// Consumers must never read it directly; only the normalizer does.
	CacheFolder string

	// ManifestPath is where the last-scan manifest is persisted.
	ManifestPath string

	// Anchor selects how "last N days" windows are anchored:
	// "data" (default) anchors to the maximum date present in the data,
	// "now" anchors to wall-clock time.
	Anchor string

	// Reader holds tuning options passed through to the CSV reader
	// (comma, trim_space, lazy_quotes, has_header).
	Reader Options
}

// ApplyDefaults fills unset fields. Paths default relative to the working
// directory, mirroring the portable "data folder next to the binary" layout
// the exports are shipped in.
func (c *Config) ApplyDefaults() {
	if c.DataFolder == "" {
		c.DataFolder = envOr("DATA_FOLDER", "data")
	}
	if c.CacheFolder == "" {
		c.CacheFolder = envOr("CSV_CACHE_FOLDER", filepath.Join(c.DataFolder, "csv_cache"))
	}
	if c.ManifestPath == "" {
		c.ManifestPath = envOr("LAST_SCAN_FILE", ".last_scan")
	}
	if c.Anchor == "" {
		c.Anchor = envOr("RANGE_ANCHOR", "data")
	}
	if c.Reader == nil {
		c.Reader = Options{}
	}
}

// Validate checks the configuration and returns all findings. A missing data
// folder is a warning, not an error: discovery treats it as zero files.
func (c *Config) Validate() []Issue {
	var issues []Issue

	if c.DataFolder == "" {
		issues = append(issues, Issue{SeverityError, "data_folder", "must not be empty"})
	} else if _, err := os.Stat(c.DataFolder); err != nil {
		issues = append(issues, Issue{SeverityWarning, "data_folder",
			fmt.Sprintf("not accessible (%v); ingestion will see zero files", err)})
	}
	if c.CacheFolder == "" {
		issues = append(issues, Issue{SeverityError, "cache_folder", "must not be empty"})
	}
	if c.ManifestPath == "" {
		issues = append(issues, Issue{SeverityError, "manifest_path", "must not be empty"})
	}
	switch c.Anchor {
	case "data", "now":
	default:
		issues = append(issues, Issue{SeverityError, "anchor",
			fmt.Sprintf("unknown anchor %q (want data or now)", c.Anchor)})
	}
	return issues
}

// EnsureDirs creates the cache folder. The data folder is intentionally not
// created: a missing watched folder is a valid (empty) state.
func (c *Config) EnsureDirs() error {
	if err := os.MkdirAll(c.CacheFolder, 0o755); err != nil {
		return fmt.Errorf("create cache folder: %w", err)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
