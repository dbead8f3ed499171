//go:build windows

package pidfile

import "os"

// tryLock is a no-op on windows: advisory locking is not exercised here
// (the daemon ships and is tested on unix targets; see DESIGN.md).
func tryLock(fd *os.File) error {
	return nil
}
