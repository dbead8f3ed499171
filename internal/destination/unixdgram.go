package destination

import (
	"net"
	"time"

	"github.com/korbank/logdevourer/internal/constants"
	ldErrors "github.com/korbank/logdevourer/internal/errors"
	"github.com/korbank/logdevourer/internal/line"
)

// retryInterval is the sleep between UNIX-dgram and TCP reconnect
// attempts.
const retryInterval = constants.RetryInterval

// UnixDgram sends to a UNIX datagram socket. With retry=false, send
// errors are swallowed (best-effort, like UDP). With retry=true, Send
// blocks the whole engine, retrying every 100ms until the datagram is
// accepted — the explicit design for back-pressure against a locally
// expected consumer.
type UnixDgram struct {
	path   string
	retry  bool
	cancel <-chan struct{}

	conn *net.UnixConn
}

// NewUnixDgram dials the UNIX datagram socket at path. cancel, when
// closed, interrupts an in-progress retry loop within one retry tick.
func NewUnixDgram(path string, retry bool, cancel <-chan struct{}) (*UnixDgram, error) {
	addr := &net.UnixAddr{Name: path, Net: "unixgram"}
	conn, err := net.DialUnix("unixgram", nil, addr)
	if err != nil {
		return nil, ldErrors.Wrapf(ldErrors.ErrConnectionFailed, "dialing unix %s: %v", path, err)
	}
	return &UnixDgram{path: path, retry: retry, cancel: cancel, conn: conn}, nil
}

func (d *UnixDgram) Send(rec line.Line) error {
	buf := append(append([]byte(nil), rec...), '\n')

	if !d.retry {
		d.conn.Write(buf) // best-effort: errors swallowed.
		return nil
	}

	for {
		if _, err := d.conn.Write(buf); err == nil {
			return nil
		}
		select {
		case <-d.cancel:
			return nil
		case <-time.After(retryInterval):
		}
	}
}

func (d *UnixDgram) Close() error { return d.conn.Close() }

func (d *UnixDgram) String() string { return "unix:" + d.path }
