// Package ingest runs the batch pipeline: scan the watched folder, normalize
// every source file, classify, merge by role, and build the frozen registry.
//
// The pipeline is single-threaded and synchronous; files are processed in
// folder-listing order. A failure on one file is isolated to that file
// (logged and skipped) and never unwinds the run. Producing zero datasets is
// not an error; callers check Registry.Loaded.
package ingest

import (
	"log"
	"time"

	"datamart/internal/classify"
	"datamart/internal/config"
	"datamart/internal/merge"
	"datamart/internal/metrics"
	"datamart/internal/normalize"
	"datamart/internal/registry"
	"datamart/internal/scan"
	"datamart/internal/table"
)

// Run executes one full ingestion pass and returns the resulting registry.
// The returned registry may be empty (Loaded() == false) when the folder
// holds no loadable files.
func Run(cfg config.Config) (*registry.Registry, error) {
	cfg.ApplyDefaults()

	anchor, err := registry.AnchorFromString(cfg.Anchor)
	if err != nil {
		log.Printf("ingest: %v; using data-max anchor", err)
	}
	reg := registry.New(anchor)

	log.Printf("ingest: starting data load from %s", cfg.DataFolder)

	scanStart := time.Now()
	tracker := scan.NewTracker(cfg.DataFolder, cfg.ManifestPath)
	files := tracker.CurrentFiles()
	if newFiles := scan.DetectNew(files, tracker.LoadManifest()); len(newFiles) > 0 {
		log.Printf("ingest: %d new file(s) since last run: %v", len(newFiles), newFiles)
	}
	metrics.ObserveHistogram(metrics.StepDuration, time.Since(scanStart).Seconds(),
		metrics.Labels{"step": "scan"})

	// The manifest is written exactly once per run, after every file has
	// been classified or skipped, even when the run loads nothing.
	defer func() {
		if err := tracker.Persist(files); err != nil {
			log.Printf("ingest: persist scan manifest: %v", err)
		}
	}()

	if len(files) == 0 {
		log.Printf("ingest: no data files found in %s", cfg.DataFolder)
		return reg, nil
	}
	log.Printf("ingest: found %d data file(s)", len(files))

	norm := normalize.New(cfg.DataFolder, cfg.CacheFolder, cfg.Reader)

	normStart := time.Now()
	grouped := make(map[classify.Role][]*table.Table)
	sources := make(map[classify.Role][]string)
	var order []classify.Role

	for _, f := range files {
		t, err := norm.Load(f)
		if err != nil {
			log.Printf("ingest: %s: %v (skipped)", f, err)
			metrics.IncCounter(metrics.FilesTotal, 1, metrics.Labels{"status": "skipped"})
			continue
		}

		role := classify.Detect(f, t.Columns)
		if _, ok := grouped[role]; !ok {
			order = append(order, role)
		}
		grouped[role] = append(grouped[role], t)
		sources[role] = append(sources[role], f)

		metrics.IncCounter(metrics.FilesTotal, 1, metrics.Labels{"status": "loaded"})
		log.Printf("ingest: loaded %s as %q (%d rows, %d columns)", f, role, t.NumRows(), t.NumCols())
	}
	metrics.ObserveHistogram(metrics.StepDuration, time.Since(normStart).Seconds(),
		metrics.Labels{"step": "normalize"})

	mergeStart := time.Now()
	for _, role := range order {
		tables := grouped[role]

		merged, err := merge.Merge(role, tables)
		if err != nil {
			// Degrade to the first contributing table rather than losing
			// the role entirely.
			log.Printf("ingest: merge %s: %v; keeping first file only", role, err)
			merged = tables[0]
		}
		if len(tables) > 1 {
			metrics.IncCounter(metrics.MergesTotal, 1, metrics.Labels{"role": string(role)})
		}
		metrics.IncCounter(metrics.RowsTotal, float64(merged.NumRows()),
			metrics.Labels{"role": string(role)})

		reg.Put(role, merged, sources[role])
	}
	metrics.ObserveHistogram(metrics.StepDuration, time.Since(mergeStart).Seconds(),
		metrics.Labels{"step": "merge"})

	reg.SetDateColumns(norm.DateColumns)

	log.Printf("ingest: load complete, %d dataset(s)", len(reg.Roles()))
	for _, line := range reg.Descriptions() {
		log.Printf("ingest:   %s", line)
	}
	return reg, nil
}
