// Package pidfile implements an exclusive process marker: a file holding
// the owning process's PID, removed on clean shutdown only by the process
// that claimed it.
package pidfile

import (
	"fmt"
	"os"
	"path/filepath"

	ldErrors "github.com/korbank/logdevourer/internal/errors"
)

// PidFile is a handle on a pid file, held open for the life of the
// process under an exclusive advisory lock. It is not removed on Close
// unless Claim was called first — an unclaimed handle (e.g. one opened
// just to inspect an existing pid file) never deletes anything.
type PidFile struct {
	path    string
	fd      *os.File
	pid     int
	claimed bool
}

// Open creates (if missing) the pid file at path and takes an exclusive,
// non-blocking advisory lock on it before writing the current PID. The
// file is deliberately not truncated until the lock is held: two
// processes racing to open the same path would otherwise both succeed at
// O_CREATE, each clobbering the other's content. Open returns
// ErrPidFileLocked, wrapped with the path, if another process already
// holds the lock — the caller must treat this as fatal startup
// contention (spec.md §6).
func Open(path string) (*PidFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("pidfile: resolving %s: %w", path, err)
	}
	fd, err := os.OpenFile(abs, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		if os.IsPermission(err) {
			return nil, ldErrors.Wrapf(ldErrors.ErrFileAccessDenied, "pidfile: opening %s", abs)
		}
		return nil, fmt.Errorf("pidfile: opening %s: %w", abs, err)
	}
	if err := tryLock(fd); err != nil {
		fd.Close()
		if ldErrors.Is(err, ldErrors.ErrPidFileLocked) {
			return nil, ldErrors.Wrapf(ldErrors.ErrPidFileLocked, "pidfile: %s", abs)
		}
		return nil, fmt.Errorf("pidfile: locking %s: %w", abs, err)
	}
	pf := &PidFile{path: abs, fd: fd}
	if err := pf.Update(); err != nil {
		fd.Close()
		return nil, err
	}
	return pf, nil
}

// Claim marks this handle as the owner responsible for removing the pid
// file on Close.
func (p *PidFile) Claim() {
	p.claimed = true
}

// Update rewrites the file with the current process's PID.
func (p *PidFile) Update() error {
	p.pid = os.Getpid()
	if _, err := p.fd.Seek(0, 0); err != nil {
		return fmt.Errorf("pidfile: seeking %s: %w", p.path, err)
	}
	if _, err := fmt.Fprintf(p.fd, "%d\n", p.pid); err != nil {
		return fmt.Errorf("pidfile: writing %s: %w", p.path, err)
	}
	off, err := p.fd.Seek(0, 1)
	if err != nil {
		return fmt.Errorf("pidfile: seeking %s: %w", p.path, err)
	}
	return p.fd.Truncate(off)
}

// Close closes the underlying file descriptor, and removes the pid file
// if this handle claimed ownership and the process writing it is still
// the current one.
func (p *PidFile) Close() error {
	if p.fd == nil {
		return nil
	}
	err := p.fd.Close()
	p.fd = nil
	if p.claimed && p.pid == os.Getpid() {
		if rmErr := os.Remove(p.path); rmErr != nil && err == nil {
			err = fmt.Errorf("pidfile: removing %s: %w", p.path, rmErr)
		}
	}
	return err
}
