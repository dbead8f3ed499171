package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/korbank/logdevourer/internal/position"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestFileSourceTailsFromStart(t *testing.T) {
	dir := t.TempDir()
	stateDir := t.TempDir()
	logPath := filepath.Join(dir, "x.log")
	writeFile(t, logPath, "a\nb\nc\n")

	fs := NewFileSource(logPath, stateDir, nil)
	if err := fs.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer fs.Close()

	lines, err := fs.ReadLines()
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	if len(lines) != 3 || string(lines[0]) != "a" || string(lines[1]) != "b" || string(lines[2]) != "c" {
		t.Fatalf("unexpected lines: %v", lines)
	}

	if err := fs.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	store, err := position.Open(stateDir, logPath)
	if err != nil {
		t.Fatalf("position.Open: %v", err)
	}
	defer store.Close()
	rec, ok := store.Read()
	if !ok || rec.Offset != 6 {
		t.Fatalf("expected offset 6, got %+v ok=%v", rec, ok)
	}
}

func TestFileSourceResumesAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	stateDir := t.TempDir()
	logPath := filepath.Join(dir, "x.log")
	writeFile(t, logPath, "a\nb\nc\n")

	fs := NewFileSource(logPath, stateDir, nil)
	if err := fs.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := fs.ReadLines(); err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	if err := fs.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	fs.Close()

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if _, err := f.WriteString("d\ne\n"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	f.Close()

	fs2 := NewFileSource(logPath, stateDir, nil)
	if err := fs2.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer fs2.Close()
	lines, err := fs2.ReadLines()
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	if len(lines) != 2 || string(lines[0]) != "d" || string(lines[1]) != "e" {
		t.Fatalf("expected only d, e; got %v", lines)
	}
}

func TestFileSourcePartialLineReplayedWhole(t *testing.T) {
	dir := t.TempDir()
	stateDir := t.TempDir()
	logPath := filepath.Join(dir, "x.log")
	writeFile(t, logPath, "par")

	fs := NewFileSource(logPath, stateDir, nil)
	if err := fs.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	lines, err := fs.ReadLines()
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected no complete lines yet, got %v", lines)
	}
	if err := fs.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	fs.Close()

	store, err := position.Open(stateDir, logPath)
	if err != nil {
		t.Fatalf("position.Open: %v", err)
	}
	rec, ok := store.Read()
	store.Close()
	if !ok || rec.Offset != 0 {
		t.Fatalf("expected offset 0 while partial line pending, got %+v ok=%v", rec, ok)
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if _, err := f.WriteString("tial\n"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	f.Close()

	fs2 := NewFileSource(logPath, stateDir, nil)
	if err := fs2.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer fs2.Close()
	lines2, err := fs2.ReadLines()
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	if len(lines2) != 1 || string(lines2[0]) != "partial" {
		t.Fatalf("expected single emission of 'partial', got %v", lines2)
	}
}

func TestFileSourceRotation(t *testing.T) {
	dir := t.TempDir()
	stateDir := t.TempDir()
	logPath := filepath.Join(dir, "x.log")
	writeFile(t, logPath, "a\nb\nc\n")

	fs := NewFileSource(logPath, stateDir, nil)
	if err := fs.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer fs.Close()
	if _, err := fs.ReadLines(); err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	fs.Flush()

	if err := os.Rename(logPath, logPath+".1"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	writeFile(t, logPath, "z\n")

	if !fs.RotationNeeded() {
		t.Fatalf("expected rotation to be detected")
	}
	if err := fs.Reopen(); err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	lines, err := fs.ReadLines()
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	if len(lines) != 1 || string(lines[0]) != "z" {
		t.Fatalf("expected only 'z' after rotation, got %v", lines)
	}
	fs.Flush()

	store, err := position.Open(stateDir, logPath)
	if err != nil {
		t.Fatalf("position.Open: %v", err)
	}
	defer store.Close()
	rec, ok := store.Read()
	if !ok || rec.Offset != 2 {
		t.Fatalf("expected offset 2 (len of 'z\\n'), got %+v ok=%v", rec, ok)
	}
}

func TestFileSourceTruncationDetection(t *testing.T) {
	dir := t.TempDir()
	stateDir := t.TempDir()
	logPath := filepath.Join(dir, "x.log")
	writeFile(t, logPath, "aaaaaaaaaa\n")

	fs := NewFileSource(logPath, stateDir, nil)
	if err := fs.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer fs.Close()
	if _, err := fs.ReadLines(); err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	fs.Flush()

	if err := os.Truncate(logPath, 2); err != nil {
		t.Fatalf("Truncate: %v", err)
	}

	if !fs.RotationNeeded() {
		t.Fatalf("expected truncation to be detected")
	}
}
