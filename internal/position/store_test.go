package position

import (
	"os"
	"testing"
)

func TestUpdateThenRead(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, "/var/log/x.log")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, ok := s.Read(); ok {
		t.Fatalf("expected no position on fresh store")
	}

	if err := s.Update(1, 2, 6); err != nil {
		t.Fatalf("Update: %v", err)
	}
	rec, ok := s.Read()
	if !ok {
		t.Fatalf("expected a position after Update")
	}
	if rec.Dev != 1 || rec.Inode != 2 || rec.Offset != 6 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestUpdateShrinksPreviousLongerRecord(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, "/var/log/x.log")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := s.Update(0xffffffff, 0xffffffff, 123456789); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := s.Update(1, 2, 3); err != nil {
		t.Fatalf("Update: %v", err)
	}
	rec, ok := s.Read()
	if !ok || rec.Dev != 1 || rec.Inode != 2 || rec.Offset != 3 {
		t.Fatalf("stale trailing bytes not truncated, got %+v ok=%v", rec, ok)
	}
	b, err := os.ReadFile(FileName(dir, "/var/log/x.log"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(b) != "0x00000001 0x00000002 3\n" {
		t.Fatalf("stale trailing bytes not truncated, file holds %q", b)
	}
}

func TestReadMalformedIsNoPosition(t *testing.T) {
	dir := t.TempDir()
	name := FileName(dir, "/var/log/x.log")
	if err := os.WriteFile(name, []byte("not a valid record"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s, err := Open(dir, "/var/log/x.log")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if _, ok := s.Read(); ok {
		t.Fatalf("expected malformed record to report no position")
	}
}

func TestTruncate(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, "/var/log/x.log")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := s.Update(1, 2, 3); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := s.Truncate(); err != nil {
		t.Fatalf("Truncate: %v", err)
	}
	if _, ok := s.Read(); ok {
		t.Fatalf("expected no position after Truncate")
	}
}
