package poller

import (
	"os"
	"testing"
	"time"

	"github.com/korbank/logdevourer/internal/line"
	"github.com/korbank/logdevourer/internal/source"
)

// testSource implements source.Source minimally enough for Poller tests.
type testSource struct {
	f *os.File
}

func (s testSource) ID() source.ID         { return "test" }
func (s testSource) Open() error           { return nil }
func (s testSource) IsPollable() bool      { return true }
func (s testSource) RotationNeeded() bool  { return false }
func (s testSource) Reopen() error         { return nil }
func (s testSource) Flush() error          { return nil }
func (s testSource) Close() error          { return nil }
func (s testSource) State() source.State   { return source.Open }
func (s testSource) ReadLines() ([]line.Line, error) {
	return nil, nil
}
func (s testSource) Fileno() (int, bool) {
	if s.f == nil {
		return 0, false
	}
	return int(s.f.Fd()), true
}

func TestAddRequiresDescriptor(t *testing.T) {
	p := New()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	src := testSource{f: r}
	if !p.Add(src) {
		t.Fatalf("expected Add to succeed for a pollable descriptor")
	}
	if p.Add(src) {
		t.Fatalf("expected second Add of the same descriptor to be a no-op")
	}
	if p.Add(testSource{}) {
		t.Fatalf("expected Add to refuse a source without a descriptor")
	}
	if p.Count() != 1 {
		t.Fatalf("expected count 1, got %d", p.Count())
	}
}

func TestPollReturnsReadySource(t *testing.T) {
	p := New()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	src := testSource{f: r}
	p.Add(src)

	if ready := p.Poll(50); len(ready) != 0 {
		t.Fatalf("expected no ready sources before any write, got %v", ready)
	}

	if _, err := w.WriteString("x"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}

	ready := p.Poll(1000)
	if len(ready) != 1 {
		t.Fatalf("expected exactly one ready source, got %d", len(ready))
	}
}

func TestPollTimesOutWhenEmpty(t *testing.T) {
	p := New()
	start := time.Now()
	ready := p.Poll(50)
	if len(ready) != 0 {
		t.Fatalf("expected no ready sources, got %v", ready)
	}
	if time.Since(start) < 40*time.Millisecond {
		t.Fatalf("expected Poll to honor the timeout even with no descriptors")
	}
}
