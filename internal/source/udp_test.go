package source

import (
	"net"
	"strconv"
	"testing"
	"time"
)

func TestUDPSourceDrainsMultipleQueuedDatagramsInOrder(t *testing.T) {
	src := NewUDPSource("127.0.0.1", 0, nil)
	if err := src.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer src.Close()

	dst := src.conn.LocalAddr().(*net.UDPAddr)
	conn, err := net.Dial("udp", net.JoinHostPort("127.0.0.1", strconv.Itoa(dst.Port)))
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	for _, payload := range []string{"one", "two\n", "three"} {
		if _, err := conn.Write([]byte(payload)); err != nil {
			t.Fatalf("Write(%q): %v", payload, err)
		}
	}
	// Give the kernel a moment to queue all three datagrams before the
	// source drains them in a single ReadLines call.
	time.Sleep(20 * time.Millisecond)

	lines, err := src.ReadLines()
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %v", len(lines), lines)
	}
	// Regression check for the buffer-aliasing bug: every line must still
	// hold its own content after all three have been read, not whatever
	// the last ReadFromUDP call left in a shared buffer.
	want := []string{"one", "two", "three"}
	for i, w := range want {
		if string(lines[i]) != w {
			t.Fatalf("line %d: expected %q, got %q (full: %v)", i, w, lines[i], lines)
		}
	}
}

func TestUDPSourceReadLinesOnEmptyQueueIsIdempotent(t *testing.T) {
	src := NewUDPSource("127.0.0.1", 0, nil)
	if err := src.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer src.Close()

	for i := 0; i < 3; i++ {
		lines, err := src.ReadLines()
		if err != nil {
			t.Fatalf("ReadLines call %d: %v", i, err)
		}
		if len(lines) != 0 {
			t.Fatalf("ReadLines call %d: expected no lines, got %v", i, lines)
		}
	}
}

func TestUDPSourceBindFailureLeavesUnopened(t *testing.T) {
	src := NewUDPSource("127.0.0.1", 0, nil)
	if err := src.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer src.Close()

	dst := src.conn.LocalAddr().(*net.UDPAddr)
	conflict := NewUDPSource("127.0.0.1", dst.Port, nil)
	if err := conflict.Open(); err != nil {
		t.Fatalf("Open should swallow bind errors, got: %v", err)
	}
	if conflict.State() != Unopened {
		t.Fatalf("expected conflicting source to remain Unopened, got %v", conflict.State())
	}
}
