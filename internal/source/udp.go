package source

import (
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"

	"github.com/korbank/logdevourer/internal/constants"
	"github.com/korbank/logdevourer/internal/line"
)

// UDPSource is a pollable datagram source bound to a UDP address. An empty
// host means "all interfaces". One datagram maps to exactly one line, with
// a single trailing newline stripped if present.
type UDPSource struct {
	host string
	port int
	diag Diag

	conn  *net.UDPConn
	state State
	fd    int
}

// NewUDPSource creates a UDPSource bound to host:port on Open.
func NewUDPSource(host string, port int, diag Diag) *UDPSource {
	if diag == nil {
		diag = NopDiag{}
	}
	return &UDPSource{host: host, port: port, diag: diag, state: Unopened}
}

func (u *UDPSource) ID() ID {
	host := u.host
	if host == "" {
		host = "*"
	}
	return ID(fmt.Sprintf("udp:%s:%d", host, u.port))
}

func (u *UDPSource) State() State      { return u.state }
func (u *UDPSource) IsPollable() bool  { return true }
func (u *UDPSource) RotationNeeded() bool { return false }
func (u *UDPSource) Reopen() error     { return nil }
func (u *UDPSource) Flush() error      { return nil }

func (u *UDPSource) Fileno() (int, bool) {
	if u.conn == nil {
		return 0, false
	}
	return u.fd, true
}

// Open creates and binds the UDP socket. The net package creates it in
// non-blocking mode, and ReadLines reads the descriptor directly, so a
// drain never stalls the engine.
func (u *UDPSource) Open() error {
	addr := &net.UDPAddr{Port: u.port}
	if u.host != "" {
		ip := net.ParseIP(u.host)
		if ip == nil {
			resolved, err := net.ResolveIPAddr("ip", u.host)
			if err != nil {
				u.diag.Warnf(u.ID(), "resolve failed: %v", err)
				u.state = Unopened
				return nil
			}
			ip = resolved.IP
		}
		addr.IP = ip
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		u.diag.Warnf(u.ID(), "bind failed: %v", err)
		u.state = Unopened
		return nil
	}
	fd, err := rawFd(conn)
	if err != nil {
		conn.Close()
		u.diag.Warnf(u.ID(), "retrieving descriptor failed: %v", err)
		u.state = Unopened
		return nil
	}
	u.conn = conn
	u.fd = fd
	u.state = Open
	return nil
}

// ReadLines drains all datagrams currently queued, stopping as soon as the
// socket would block.
func (u *UDPSource) ReadLines() ([]line.Line, error) {
	if u.conn == nil {
		return nil, nil
	}
	var out []line.Line
	buf := make([]byte, constants.DatagramBufSize)
	for {
		n, err := syscall.Read(u.fd, buf)
		if err != nil {
			if isWouldBlock(err) {
				return out, nil
			}
			return out, fmt.Errorf("reading %s: %w", u.ID(), err)
		}
		// Copy out of buf: it's reused by the next read, so
		// aliasing it here would let a later datagram clobber an earlier
		// one still referenced from out.
		datagram := trimTrailingNewline(buf[:n])
		out = append(out, line.Line(append([]byte(nil), datagram...)))
	}
}

func (u *UDPSource) Close() error {
	u.state = Closed
	if u.conn == nil {
		return nil
	}
	err := u.conn.Close()
	u.conn = nil
	return err
}

func trimTrailingNewline(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\n' {
		return b[:len(b)-1]
	}
	return b
}

func isWouldBlock(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, os.ErrDeadlineExceeded)
}
