package source

import (
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/korbank/logdevourer/internal/constants"
	"github.com/korbank/logdevourer/internal/line"
)

// FileHandleSource wraps an externally supplied descriptor — typically
// standard input — switching it to non-blocking mode on Open and
// reassembling complete lines across successive non-blocking reads.
type FileHandleSource struct {
	id   ID
	fh   *os.File
	diag Diag

	partial []byte
	state   State
}

// NewFileHandleSource wraps fh (e.g. os.Stdin) as a pollable source.
func NewFileHandleSource(id ID, fh *os.File, diag Diag) *FileHandleSource {
	if diag == nil {
		diag = NopDiag{}
	}
	return &FileHandleSource{id: id, fh: fh, diag: diag, state: Unopened}
}

func (s *FileHandleSource) ID() ID { return s.id }

func (s *FileHandleSource) State() State        { return s.state }
func (s *FileHandleSource) IsPollable() bool    { return true }
func (s *FileHandleSource) RotationNeeded() bool { return false }
func (s *FileHandleSource) Reopen() error       { return nil }
func (s *FileHandleSource) Flush() error        { return nil }

func (s *FileHandleSource) Fileno() (int, bool) {
	if s.fh == nil {
		return 0, false
	}
	// rawFd, unlike os.File.Fd, leaves the non-blocking mode set by Open.
	fd, err := rawFd(s.fh)
	if err != nil {
		return 0, false
	}
	return fd, true
}

// Open switches the wrapped descriptor to non-blocking mode.
func (s *FileHandleSource) Open() error {
	if s.fh == nil {
		s.state = Unopened
		return nil
	}
	if err := syscall.SetNonblock(int(s.fh.Fd()), true); err != nil {
		return fmt.Errorf("setting %s non-blocking: %w", s.id, err)
	}
	s.state = Open
	return nil
}

// ReadLines performs non-blocking chunked reads, accumulating a partial
// line across calls and yielding only complete lines. EWOULDBLOCK/EAGAIN
// ends a drain; definitive EOF also ends it and drops any pending
// partial line.
func (s *FileHandleSource) ReadLines() ([]line.Line, error) {
	if s.fh == nil {
		return nil, nil
	}
	fd, err := rawFd(s.fh)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.id, err)
	}
	var out []line.Line
	buf := make([]byte, constants.FileHandleReadSize)
	for {
		// Plain read(2): os.File.Read would wait in the runtime poller on EAGAIN.
		n, err := syscall.Read(fd, buf)
		if n < 0 {
			n = 0
		}
		if err == nil && n == 0 {
			err = io.EOF
		}
		if n > 0 {
			chunk := buf[:n]
			start := 0
			for i, b := range chunk {
				if b == '\n' {
					var l []byte
					if len(s.partial) > 0 {
						l = append(append([]byte(nil), s.partial...), chunk[start:i]...)
						s.partial = nil
					} else {
						l = append([]byte(nil), chunk[start:i]...)
					}
					out = append(out, line.Line(l))
					start = i + 1
				}
			}
			if start < len(chunk) {
				s.partial = append(s.partial, chunk[start:]...)
			}
		}
		if err != nil {
			if err == io.EOF {
				if len(s.partial) > 0 {
					s.diag.Warnf(s.id, "dropping %d buffered bytes of partial line at EOF", len(s.partial))
				}
				s.partial = nil
				return out, nil
			}
			if isEAGAIN(err) {
				return out, nil
			}
			return out, fmt.Errorf("reading %s: %w", s.id, err)
		}
		if n == 0 {
			return out, nil
		}
	}
}

func isEAGAIN(err error) bool {
	var errno syscall.Errno
	if pe, ok := err.(*os.PathError); ok {
		if e, ok := pe.Err.(syscall.Errno); ok {
			errno = e
		}
	} else if e, ok := err.(syscall.Errno); ok {
		errno = e
	}
	return errno == syscall.EWOULDBLOCK || errno == syscall.EAGAIN
}

func (s *FileHandleSource) Close() error {
	s.state = Closed
	return nil
}
