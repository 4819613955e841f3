package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeBackend is a simple in-memory Backend implementation for tests.
type fakeBackend struct {
	mu sync.Mutex

	counters   []counterCall
	histograms []histCall
	flushes    int
}

type counterCall struct {
	name   string
	delta  float64
	labels Labels
}

type histCall struct {
	name   string
	value  float64
	labels Labels
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters = append(f.counters, counterCall{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histograms = append(f.histograms, histCall{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	return nil
}

func TestRecordStep_SuccessAndFailure(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	backend = fb

	RecordStep("org", "import", nil, 2*time.Second)
	RecordStep("per", "index", errors.New("boom"), 1500*time.Millisecond)

	if len(fb.counters) != 2 || len(fb.histograms) != 2 {
		t.Fatalf("calls = %d counters, %d histograms; want 2 and 2",
			len(fb.counters), len(fb.histograms))
	}
	if fb.counters[0].name != "import_step_total" || fb.counters[0].delta != 1 {
		t.Fatalf("counter[0] = %#v", fb.counters[0])
	}
	if fb.counters[0].labels["status"] != "success" {
		t.Errorf("status = %q, want success", fb.counters[0].labels["status"])
	}
	if fb.counters[1].labels["status"] != "failure" {
		t.Errorf("status = %q, want failure", fb.counters[1].labels["status"])
	}
	if fb.histograms[0].value != 2.0 {
		t.Errorf("duration = %v, want 2.0", fb.histograms[0].value)
	}
}

func TestRecordRows_IgnoresNonPositive(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	backend = fb

	RecordRows("org", "imported", 0)
	RecordRows("org", "imported", -5)
	RecordRows("org", "imported", 42)

	if len(fb.counters) != 1 {
		t.Fatalf("counter calls = %d, want 1", len(fb.counters))
	}
	if fb.counters[0].delta != 42 {
		t.Fatalf("delta = %v, want 42", fb.counters[0].delta)
	}
}

func TestSetBackend_NilKeepsCurrent(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	SetBackend(fb)
	SetBackend(nil)
	RecordFile("org", "succeeded")

	if len(fb.counters) != 1 {
		t.Fatalf("nil SetBackend must keep the installed backend")
	}
}
