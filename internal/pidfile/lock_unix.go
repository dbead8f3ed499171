//go:build !windows

package pidfile

import (
	"os"

	"golang.org/x/sys/unix"

	ldErrors "github.com/korbank/logdevourer/internal/errors"
)

// tryLock takes an exclusive, non-blocking advisory lock on fd. It
// returns ErrPidFileLocked if another process already holds the lock —
// the only portable way to detect a second instance racing to claim the
// same pid file, since plain O_CREATE lets both opens succeed.
func tryLock(fd *os.File) error {
	if err := unix.Flock(int(fd.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		if err == unix.EWOULDBLOCK {
			return ldErrors.ErrPidFileLocked
		}
		return err
	}
	return nil
}
