package source

import (
	"syscall"
	"time"
)

// immediatelyExpired returns a deadline that has already passed. A
// net.Conn Read under such a deadline returns os.ErrDeadlineExceeded at
// once, without reading any data that is already queued.
func immediatelyExpired() time.Time {
	return time.Now()
}

// syscallConner is implemented by *net.UDPConn and *net.UnixConn.
type syscallConner interface {
	SyscallConn() (syscall.RawConn, error)
}

// rawFd retrieves the kernel descriptor number backing conn without
// duplicating it, for use as the Poller's stable identity key.
func rawFd(conn syscallConner) (int, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return 0, err
	}
	var fd int
	ctrlErr := raw.Control(func(f uintptr) {
		fd = int(f)
	})
	if ctrlErr != nil {
		return 0, ctrlErr
	}
	return fd, nil
}
