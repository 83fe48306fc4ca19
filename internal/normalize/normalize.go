// Package normalize converts source files of any recognized format into
// canonical tables.
//
// Native CSV is parsed directly. Proprietary spreadsheet formats (xlsx, xls)
// and HTML table exports are first converted into a cached canonical CSV under
// the cache folder, one file per source, named by stem. The cached artifact is
// reused iff its modification time is at least the source's modification time;
// a replaced source always forces regeneration. This memoization is
// correctness-critical: re-running ingestion must be cheap on unchanged inputs
// and must never serve stale data.
package normalize

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"datamart/internal/config"
	"datamart/internal/table"
)

// Normalizer produces canonical tables from source files.
type Normalizer struct {
	DataDir  string
	CacheDir string

	// Reader carries CSV tuning options (comma, trim_space, lazy_quotes,
	// has_header).
	Reader config.Options

	// DateColumns records, per source filename, the columns that were
	// coerced as timestamps.
	DateColumns map[string][]string

	// convert is the conversion seam. Production dispatches on extension;
	// tests substitute a fake to observe cache behavior without real
	// spreadsheet files.
	convert func(src, dst string) error
}

// New returns a normalizer over the given data and cache folders.
func New(dataDir, cacheDir string, reader config.Options) *Normalizer {
	n := &Normalizer{
		DataDir:     dataDir,
		CacheDir:    cacheDir,
		Reader:      reader,
		DateColumns: make(map[string][]string),
	}
	n.convert = n.convertFile
	return n
}

// Load produces the canonical table for one source file. Read, convert and
// parse failures are returned to the caller, which logs and skips the file;
// they are never fatal to the ingestion run.
func (n *Normalizer) Load(filename string) (*table.Table, error) {
	var path string

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		path = filepath.Join(n.DataDir, filename)
	default:
		cached, err := n.ensureCached(filename)
		if err != nil {
			return nil, err
		}
		path = cached
	}

	t, err := n.readCSV(path, filename)
	if err != nil {
		return nil, err
	}

	n.coerceDates(t, filename)
	return t, nil
}

// ensureCached returns the path of the canonical CSV for a non-CSV source,
// converting it when the cache is missing or older than the source.
func (n *Normalizer) ensureCached(filename string) (string, error) {
	src := filepath.Join(n.DataDir, filename)
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	dst := filepath.Join(n.CacheDir, stem+".csv")

	srcInfo, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("stat source: %w", err)
	}

	// Cache hit iff cache mtime >= source mtime.
	if dstInfo, err := os.Stat(dst); err == nil && !dstInfo.ModTime().Before(srcInfo.ModTime()) {
		return dst, nil
	}

	if err := os.MkdirAll(n.CacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create cache folder: %w", err)
	}
	if err := n.convert(src, dst); err != nil {
		return "", fmt.Errorf("convert %s: %w", filename, err)
	}
	log.Printf("normalize: converted %s -> %s", filename, filepath.Base(dst))
	return dst, nil
}

// convertFile dispatches conversion by source extension.
func (n *Normalizer) convertFile(src, dst string) error {
	switch strings.ToLower(filepath.Ext(src)) {
	case ".xlsx":
		return convertXLSX(src, dst)
	case ".xls":
		return convertXLS(src, dst)
	case ".html", ".htm":
		return convertHTML(src, dst)
	default:
		return fmt.Errorf("unsupported format %q", filepath.Ext(src))
	}
}
