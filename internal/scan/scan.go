// Package scan tracks the set of spreadsheet-like files in the watched folder
// and detects files added since the previous ingestion run.
//
// The tracker is purely observational: it exists to surface "new file
// detected" diagnostics and never blocks loading. Every failure path degrades
// (missing folder → zero files, corrupt manifest → everything looks new).
package scan

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// recognizedExts are the tabular source extensions the engine ingests.
// Anything else in the watched folder is ignored.
var recognizedExts = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".xls":  true,
	".html": true,
	".htm":  true,
}

// Recognized reports whether the filename carries an ingestible extension.
func Recognized(filename string) bool {
	return recognizedExts[strings.ToLower(filepath.Ext(filename))]
}

// Manifest is the persisted record of the most recent scan.
type Manifest struct {
	Files     []string  `json:"files"`
	Timestamp time.Time `json:"timestamp"`
}

// Tracker lists source files in a watched folder and persists scan manifests.
type Tracker struct {
	Folder       string
	ManifestPath string

	// now is injected for deterministic tests. Production uses time.Now.
	now func() time.Time
}

// NewTracker returns a tracker over the given folder and manifest path.
func NewTracker(folder, manifestPath string) *Tracker {
	return &Tracker{
		Folder:       folder,
		ManifestPath: manifestPath,
		now:          time.Now,
	}
}

// CurrentFiles lists all recognized source files in the watched folder, in
// directory-listing order. A missing or unreadable folder is reported and
// treated as zero files, never as a failure.
func (t *Tracker) CurrentFiles() []string {
	entries, err := os.ReadDir(t.Folder)
	if err != nil {
		log.Printf("scan: data folder not readable: %v", err)
		return nil
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !Recognized(e.Name()) {
			continue
		}
		files = append(files, e.Name())
	}
	return files
}

// LoadManifest reads the persisted manifest. A missing or corrupt manifest
// degrades to an empty one, so every current file looks new.
func (t *Tracker) LoadManifest() Manifest {
	b, err := os.ReadFile(t.ManifestPath)
	if err != nil {
		return Manifest{}
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		log.Printf("scan: manifest %s unreadable, treating as empty: %v", t.ManifestPath, err)
		return Manifest{}
	}
	return m
}

// DetectNew returns the filenames present in current but absent from the
// manifest, preserving current's order.
func DetectNew(current []string, m Manifest) []string {
	seen := make(map[string]bool, len(m.Files))
	for _, f := range m.Files {
		seen[f] = true
	}
	var out []string
	for _, f := range current {
		if !seen[f] {
			out = append(out, f)
		}
	}
	return out
}

// Persist atomically overwrites the manifest with the current file set and a
// fresh timestamp. Written via a temp file and rename so readers never see a
// partial manifest.
func (t *Tracker) Persist(files []string) error {
	m := Manifest{
		Files:     append([]string(nil), files...),
		Timestamp: t.now(),
	}
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	tmp := t.ManifestPath + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := os.Rename(tmp, t.ManifestPath); err != nil {
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}

// CheckForNew performs the silent pre-load scan: list current files, diff
// against the last manifest, log newly added files, and persist the current
// set. Manifest write failures are logged, not returned; scanning never
// blocks ingestion.
func (t *Tracker) CheckForNew() []string {
	current := t.CurrentFiles()
	newFiles := DetectNew(current, t.LoadManifest())
	if len(newFiles) > 0 {
		log.Printf("scan: %d file(s) present, new: %v", len(current), newFiles)
	}
	if err := t.Persist(current); err != nil {
		log.Printf("scan: persist manifest: %v", err)
	}
	return newFiles
}
