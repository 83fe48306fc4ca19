package metrics

import (
	"errors"
	"testing"
)

// captureBackend records every sample it receives.
type captureBackend struct {
	counters   []string
	histograms []string
	flushed    int
	flushErr   error
}

func (c *captureBackend) IncCounter(name string, _ float64, _ Labels) {
	c.counters = append(c.counters, name)
}

func (c *captureBackend) ObserveHistogram(name string, _ float64, _ Labels) {
	c.histograms = append(c.histograms, name)
}

func (c *captureBackend) Flush() error {
	c.flushed++
	return c.flushErr
}

// Not parallel: the facade holds process-global state.
func TestFacadeRoutesToBackend(t *testing.T) {
	c := &captureBackend{}
	SetBackend(c)
	defer SetBackend(nil)

	IncCounter(FilesTotal, 1, Labels{"status": "loaded"})
	ObserveHistogram(StepDuration, 0.5, Labels{"step": "scan"})

	if len(c.counters) != 1 || c.counters[0] != FilesTotal {
		t.Fatalf("counters = %v", c.counters)
	}
	if len(c.histograms) != 1 || c.histograms[0] != StepDuration {
		t.Fatalf("histograms = %v", c.histograms)
	}
}

func TestFlushDelegatesToFlusher(t *testing.T) {
	c := &captureBackend{flushErr: errors.New("intake down")}
	SetBackend(c)
	defer SetBackend(nil)

	if err := Flush(); err == nil {
		t.Fatalf("Flush should surface the backend error")
	}
	if c.flushed != 1 {
		t.Fatalf("flushed = %d, want 1", c.flushed)
	}
}

func TestNilBackendIsNop(t *testing.T) {
	SetBackend(nil)

	// Must not panic against the nop backend.
	IncCounter(RowsTotal, 1, nil)
	ObserveHistogram(StepDuration, 1, nil)
	if err := Flush(); err != nil {
		t.Fatalf("nop Flush = %v", err)
	}
}
