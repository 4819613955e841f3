package datadog

import (
	"testing"

	"github.com/anothingguy/revenue-spacebar/internal/metrics"
)

func TestNewBackend_RequiresAddr(t *testing.T) {
	t.Parallel()

	if _, err := NewBackend(Config{}); err == nil {
		t.Fatal("NewBackend with empty Addr: want error")
	}
}

func TestBackend_SendsOverUDP(t *testing.T) {
	t.Parallel()

	// UDP needs no listener; this exercises client construction with
	// namespace and global tags plus the full Backend surface.
	b, err := NewBackend(Config{
		Addr:       "127.0.0.1:8125",
		Namespace:  "csvload.",
		GlobalTags: []string{"env:test"},
	})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	b.IncCounter("import_files_total", 1, metrics.Labels{"status": "succeeded"})
	b.ObserveHistogram("import_step_duration_seconds", 0.25, metrics.Labels{"step": "import_file"})
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func TestLabelsToTags(t *testing.T) {
	t.Parallel()

	if got := labelsToTags(nil); got != nil {
		t.Fatalf("labelsToTags(nil) = %v, want nil", got)
	}
	tags := labelsToTags(metrics.Labels{"job": "org"})
	if len(tags) != 1 || tags[0] != "job:org" {
		t.Fatalf("labelsToTags = %v", tags)
	}
}
