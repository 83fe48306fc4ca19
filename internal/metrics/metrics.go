// Package metrics is the thin instrumentation facade the engine records
// through. The core depends only on Backend; vendor-specific submission lives
// in subpackages. The default backend is a no-op, so instrumentation is free
// when metrics are disabled.
package metrics

import "sync"

// Metric names recorded by the ingestion pipeline.
const (
	// FilesTotal counts source files per status label (loaded, skipped).
	FilesTotal = "ingest_files_total"

	// RowsTotal counts rows per role label after merging.
	RowsTotal = "ingest_rows_total"

	// MergesTotal counts multi-file merges per role label.
	MergesTotal = "ingest_merges_total"

	// StepDuration observes per-step wall time in seconds (step label:
	// scan, normalize, merge, export).
	StepDuration = "ingest_step_duration_seconds"
)

// Labels attach dimensions to a metric sample.
type Labels map[string]string

// Backend receives metric samples. Implementations must be safe for
// concurrent use.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
}

// Flusher is implemented by backends that buffer samples.
type Flusher interface {
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs the active backend. Call once at startup.
func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if b == nil {
		b = nopBackend{}
	}
	backend = b
}

// IncCounter records a counter increment on the active backend.
func IncCounter(name string, delta float64, labels Labels) {
	mu.RLock()
	b := backend
	mu.RUnlock()
	b.IncCounter(name, delta, labels)
}

// ObserveHistogram records a histogram sample on the active backend.
func ObserveHistogram(name string, value float64, labels Labels) {
	mu.RLock()
	b := backend
	mu.RUnlock()
	b.ObserveHistogram(name, value, labels)
}

// Flush flushes the active backend when it buffers samples.
func Flush() error {
	mu.RLock()
	b := backend
	mu.RUnlock()
	if f, ok := b.(Flusher); ok {
		return f.Flush()
	}
	return nil
}
