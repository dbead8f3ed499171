// Package position implements the persistent per-file read cursor that lets
// a FileSource resume tailing across restarts without duplicating or
// dropping lines.
package position

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// Record is the durable cursor for one tailed file: the kernel identity of
// the file (device, inode) plus the byte offset of the next unread byte.
type Record struct {
	Dev    uint64
	Inode  uint64
	Offset int64
}

// Store persists a single Record to a dedicated file inside a state
// directory. The backing file is named after the SHA-1 digest of the
// tailed path so that repeated runs against the same path find the same
// cursor, and is never truncated on open so a crash mid-write leaves the
// previous, still-valid record in place.
type Store struct {
	fd *os.File
}

// FileName derives the position-file name for the given absolute tailed
// path: the SHA-1 hex digest of the path plus the ".pos" suffix.
func FileName(stateDir, tailedPath string) string {
	sum := sha1.Sum([]byte(tailedPath))
	return filepath.Join(stateDir, hex.EncodeToString(sum[:])+".pos")
}

// Open creates (if missing) and opens the position file for the given
// tailed path inside stateDir. The file is opened read/write and is never
// truncated, so a concurrent crash during a previous Update leaves the
// last successfully written record intact.
func Open(stateDir, tailedPath string) (*Store, error) {
	name := FileName(stateDir, tailedPath)
	fd, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening position store %s: %w", name, err)
	}
	return &Store{fd: fd}, nil
}

// Read returns the last successfully persisted Record, or ok=false if the
// file is empty, not newline-terminated, or otherwise unparseable. It never
// returns an error for malformed content — a damaged record simply means
// "no known position", and the caller must read from offset 0.
func (s *Store) Read() (rec Record, ok bool) {
	if _, err := s.fd.Seek(0, 0); err != nil {
		return Record{}, false
	}
	buf := make([]byte, 256)
	n, err := s.fd.Read(buf)
	if err != nil && n == 0 {
		return Record{}, false
	}
	line := buf[:n]
	if len(line) == 0 || line[len(line)-1] != '\n' {
		// Partial write or empty file: treat as "no known position".
		return Record{}, false
	}
	var dev, inode uint64
	var offset int64
	// No scan width: Update's %08x is a minimum width, and wider values
	// must still parse.
	if _, err := fmt.Sscanf(string(line), "0x%x 0x%x %d\n", &dev, &inode, &offset); err != nil {
		return Record{}, false
	}
	return Record{Dev: dev, Inode: inode, Offset: offset}, true
}

// Update atomically (with respect to reader restarts) rewrites the record:
// seek to 0, write the fixed-format line, truncate any trailing bytes left
// over from a previous, longer record, and flush to the OS. fsync is
// deliberately not performed — the truncate-on-bad-read policy in Read
// makes a torn write harmless.
func (s *Store) Update(dev, inode uint64, offset int64) error {
	if _, err := s.fd.Seek(0, 0); err != nil {
		return err
	}
	line := fmt.Sprintf("0x%08x 0x%08x %d\n", dev, inode, offset)
	n, err := s.fd.Write([]byte(line))
	if err != nil {
		return err
	}
	if err := s.fd.Truncate(int64(n)); err != nil {
		return err
	}
	return nil
}

// Truncate clears the file. Used when the tailed file has disappeared.
func (s *Store) Truncate() error {
	if _, err := s.fd.Seek(0, 0); err != nil {
		return err
	}
	return s.fd.Truncate(0)
}

// Close releases the underlying file descriptor.
func (s *Store) Close() error {
	return s.fd.Close()
}
