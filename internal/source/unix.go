package source

import (
	"fmt"
	"net"
	"os"
	"syscall"

	"github.com/korbank/logdevourer/internal/constants"
	"github.com/korbank/logdevourer/internal/line"
)

// UNIXSource is a pollable datagram source bound to a UNIX domain socket
// path. reopen_necessary/reopen are intentionally not implemented here
// (matching the original implementation's explicit TODO): once the
// backing socket becomes invalid, a UNIXSource must not be re-polled.
type UNIXSource struct {
	path string
	diag Diag

	conn  *net.UnixConn
	state State
	fd    int
}

// NewUNIXSource creates a UNIXSource bound to path on Open.
func NewUNIXSource(path string, diag Diag) *UNIXSource {
	if diag == nil {
		diag = NopDiag{}
	}
	return &UNIXSource{path: path, diag: diag, state: Unopened}
}

func (s *UNIXSource) ID() ID { return ID(fmt.Sprintf("unix:%s", s.path)) }

func (s *UNIXSource) State() State        { return s.state }
func (s *UNIXSource) IsPollable() bool    { return true }
func (s *UNIXSource) RotationNeeded() bool { return false }
func (s *UNIXSource) Reopen() error       { return nil }
func (s *UNIXSource) Flush() error        { return nil }

func (s *UNIXSource) Fileno() (int, bool) {
	if s.conn == nil {
		return 0, false
	}
	return s.fd, true
}

// Open creates and binds the UNIX datagram socket, removing any stale
// socket file left behind at the path first.
func (s *UNIXSource) Open() error {
	os.Remove(s.path)
	addr := &net.UnixAddr{Name: s.path, Net: "unixgram"}
	conn, err := net.ListenUnixgram("unixgram", addr)
	if err != nil {
		s.diag.Warnf(s.ID(), "bind failed: %v", err)
		s.state = Unopened
		return nil
	}
	fd, err := rawFd(conn)
	if err != nil {
		conn.Close()
		s.diag.Warnf(s.ID(), "retrieving descriptor failed: %v", err)
		s.state = Unopened
		return nil
	}
	s.conn = conn
	s.fd = fd
	s.state = Open
	return nil
}

// ReadLines drains all datagrams currently queued, stopping as soon as the
// socket would block.
func (s *UNIXSource) ReadLines() ([]line.Line, error) {
	if s.conn == nil {
		return nil, nil
	}
	var out []line.Line
	buf := make([]byte, constants.DatagramBufSize)
	for {
		n, err := syscall.Read(s.fd, buf)
		if err != nil {
			if isWouldBlock(err) {
				return out, nil
			}
			return out, fmt.Errorf("reading %s: %w", s.ID(), err)
		}
		// Copy out of buf: it's reused by the next read, so
		// aliasing it here would let a later datagram clobber an earlier
		// one still referenced from out.
		datagram := trimTrailingNewline(buf[:n])
		out = append(out, line.Line(append([]byte(nil), datagram...)))
	}
}

// Close closes the socket and removes the socket file, so a clean restart
// doesn't find a stale path.
func (s *UNIXSource) Close() error {
	s.state = Closed
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	os.Remove(s.path)
	return err
}
