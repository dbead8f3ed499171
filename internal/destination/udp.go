package destination

import (
	"fmt"
	"net"

	ldErrors "github.com/korbank/logdevourer/internal/errors"
	"github.com/korbank/logdevourer/internal/line"
)

// UDP is a best-effort, fire-and-forget destination. Send errors
// (including an unreachable peer) are swallowed.
type UDP struct {
	addr string
	conn net.Conn
}

// NewUDP dials a UDP "connection" (no handshake occurs; this merely fixes
// the destination address for subsequent writes) to host:port.
func NewUDP(host string, port int) (*UDP, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, ldErrors.Wrapf(ldErrors.ErrConnectionFailed, "dialing udp %s: %v", addr, err)
	}
	return &UDP{addr: addr, conn: conn}, nil
}

func (d *UDP) Send(rec line.Line) error {
	buf := append(append([]byte(nil), rec...), '\n')
	d.conn.Write(buf) // errors are intentionally ignored: best-effort.
	return nil
}

func (d *UDP) Close() error { return d.conn.Close() }

func (d *UDP) String() string { return "udp:" + d.addr }
