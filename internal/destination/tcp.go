package destination

import (
	"fmt"
	"net"
	"time"

	"github.com/korbank/logdevourer/internal/line"
)

// connState is the TCP destination's connection state.
type connState int

const (
	disconnected connState = iota
	connected
)

// TCP lazily connects on first Send and, on any send error, closes the
// connection and reconnects with an infinite retry loop (100ms between
// attempts). The line whose write failed is not re-sent on the new
// connection, so at most one line is lost per broken connection. This is
// a documented compromise, not a bug.
type TCP struct {
	addr   string
	cancel <-chan struct{}

	state connState
	conn  net.Conn
}

// NewTCP prepares (but does not yet connect to) host:port. cancel, when
// closed, interrupts an in-progress reconnect loop within one retry tick.
func NewTCP(host string, port int, cancel <-chan struct{}) *TCP {
	return &TCP{addr: fmt.Sprintf("%s:%d", host, port), cancel: cancel, state: disconnected}
}

func (d *TCP) Send(rec line.Line) error {
	buf := append(append([]byte(nil), rec...), '\n')

	if d.state != connected {
		if !d.connect() {
			// Shutdown requested mid-reconnect: drop this line.
			return nil
		}
	}
	if _, err := d.conn.Write(buf); err != nil {
		d.disconnect()
		if !d.connect() {
			return nil
		}
		// The line that failed on the broken connection is not
		// re-buffered; only subsequent lines are delivered on the new
		// connection.
	}
	return nil
}

// connect blocks, retrying every 100ms, until a connection succeeds or
// cancel is closed (in which case it returns false).
func (d *TCP) connect() bool {
	for {
		conn, err := net.Dial("tcp", d.addr)
		if err == nil {
			d.conn = conn
			d.state = connected
			return true
		}
		select {
		case <-d.cancel:
			return false
		case <-time.After(retryInterval):
		}
	}
}

func (d *TCP) disconnect() {
	if d.conn != nil {
		d.conn.Close()
		d.conn = nil
	}
	d.state = disconnected
}

func (d *TCP) Close() error {
	d.disconnect()
	return nil
}

func (d *TCP) String() string { return "tcp:" + d.addr }
