package source

import (
	"fmt"
	"io"
	"os"

	"github.com/korbank/logdevourer/internal/constants"
	ldErrors "github.com/korbank/logdevourer/internal/errors"
	"github.com/korbank/logdevourer/internal/fileid"
	"github.com/korbank/logdevourer/internal/line"
	"github.com/korbank/logdevourer/internal/position"
)

// FileSource tails a single growing regular file, persisting its read
// cursor to a Store keyed by the file's absolute path so that restarts
// resume without re-emitting or dropping lines. It is never pollable:
// kernel readiness semantics don't apply to a file whose EOF state flips
// as the writer appends, so it is driven by the engine's tick instead.
type FileSource struct {
	path     string
	stateDir string
	diag     Diag

	fd    *os.File
	store *position.Store

	identityKnown bool
	identity      fileid.Identity

	partial []byte
	state   State
}

// NewFileSource creates a FileSource for path, persisting its cursor under
// stateDir. diag may be nil, in which case diagnostics are discarded.
func NewFileSource(path, stateDir string, diag Diag) *FileSource {
	if diag == nil {
		diag = NopDiag{}
	}
	return &FileSource{path: path, stateDir: stateDir, diag: diag, state: Unopened}
}

func (f *FileSource) ID() ID { return ID(f.path) }

func (f *FileSource) State() State { return f.state }

func (f *FileSource) IsPollable() bool { return false }

func (f *FileSource) Fileno() (int, bool) {
	if f.fd == nil {
		return 0, false
	}
	return int(f.fd.Fd()), true
}

// Open opens the file read-only; on failure it remains Unopened (the
// engine will retry on a later tick). On success it reconciles the
// persisted position against the file's current (dev, inode, size),
// seeking to the stored offset when it's still valid for this file, or
// writing a fresh record at offset 0 otherwise.
func (f *FileSource) Open() error {
	if f.store == nil {
		store, err := position.Open(f.stateDir, f.path)
		if err != nil {
			return fmt.Errorf("opening position store for %s: %w", f.path, err)
		}
		f.store = store
	}

	fd, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			err = ldErrors.Wrapf(ldErrors.ErrFileNotFound, "opening %s", f.path)
		}
		f.diag.Warnf(f.ID(), "open failed: %v", err)
		f.state = Unopened
		return nil
	}
	f.fd = fd
	f.state = Open
	f.partial = nil

	info, err := fd.Stat()
	if err != nil {
		// Shouldn't happen right after a successful open; treat as
		// unopened so the next tick retries cleanly.
		f.fd.Close()
		f.fd = nil
		f.state = Unopened
		return nil
	}
	f.identity = fileid.Of(info)
	f.identityKnown = true

	rec, ok := f.store.Read()
	if ok && rec.Dev == f.identity.Dev && rec.Inode == f.identity.Inode && rec.Offset <= info.Size() {
		if _, err := fd.Seek(rec.Offset, io.SeekStart); err != nil {
			return fmt.Errorf("seeking %s to %d: %w", f.path, rec.Offset, err)
		}
	} else {
		if err := f.writePosition(); err != nil {
			return err
		}
	}
	return nil
}

// RotationNeeded stats the path (not the open fd) and reports whether the
// file has been removed, truncated, or replaced since it was opened.
func (f *FileSource) RotationNeeded() bool {
	if f.fd == nil {
		return false
	}
	info, err := os.Stat(f.path)
	if err != nil {
		// File removed: clear identity and drop the stored position.
		f.identityKnown = false
		if f.store != nil {
			f.store.Truncate()
		}
		return true
	}
	cur, err := f.fd.Seek(0, io.SeekCurrent)
	if err != nil {
		return true
	}
	if info.Size() < cur {
		return true
	}
	id := fileid.Of(info)
	return !f.identityKnown || id != f.identity
}

// Reopen closes the current descriptor, drops any pending partial line
// (a partial straddling a rotation is deliberately discarded), and opens
// the new file at the path, writing a fresh position record.
func (f *FileSource) Reopen() error {
	if f.fd != nil {
		f.fd.Close()
		f.fd = nil
	}
	if len(f.partial) > 0 {
		f.diag.Warnf(f.ID(), "dropping %d buffered bytes of partial line across rotation", len(f.partial))
	}
	f.partial = nil
	f.identityKnown = false
	f.state = Unopened

	fd, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			err = ldErrors.Wrapf(ldErrors.ErrFileNotFound, "reopening %s", f.path)
		}
		f.diag.Warnf(f.ID(), "reopen failed: %v", err)
		return nil
	}
	f.fd = fd
	f.state = Open

	info, err := fd.Stat()
	if err != nil {
		f.fd.Close()
		f.fd = nil
		f.state = Unopened
		return nil
	}
	f.identity = fileid.Of(info)
	f.identityKnown = true
	return f.writePosition()
}

// ReadLines reads whatever complete lines are currently available without
// blocking, reassembling a line across successive calls when the file's
// last read ended mid-line.
func (f *FileSource) ReadLines() ([]line.Line, error) {
	if f.fd == nil {
		return nil, nil
	}
	var out []line.Line
	buf := make([]byte, constants.DefaultChunkSize)
	for {
		n, err := f.fd.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			start := 0
			for i, b := range chunk {
				if b == '\n' {
					var l []byte
					if len(f.partial) > 0 {
						l = append(append([]byte(nil), f.partial...), chunk[start:i]...)
						f.partial = nil
					} else {
						l = append([]byte(nil), chunk[start:i]...)
					}
					out = append(out, line.Line(l))
					start = i + 1
				}
			}
			if start < len(chunk) {
				f.partial = append(f.partial, chunk[start:]...)
			}
		}
		if err != nil {
			if err == io.EOF {
				return out, nil
			}
			return out, fmt.Errorf("reading %s: %w", f.path, err)
		}
		if n == 0 {
			return out, nil
		}
	}
}

// Flush computes the durable offset — the current fd position minus any
// buffered partial line — so the pending partial is re-read whole on the
// next start, and persists it.
func (f *FileSource) Flush() error {
	if f.fd == nil || f.store == nil {
		return nil
	}
	return f.writePosition()
}

func (f *FileSource) writePosition() error {
	pos, err := f.fd.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	pos -= int64(len(f.partial))
	return f.store.Update(f.identity.Dev, f.identity.Inode, pos)
}

// Close releases the file descriptor and position store.
func (f *FileSource) Close() error {
	f.state = Closed
	var err error
	if f.fd != nil {
		err = f.fd.Close()
		f.fd = nil
	}
	if f.store != nil {
		if e := f.store.Close(); err == nil {
			err = e
		}
	}
	return err
}
