//go:build windows

package daemon

import "fmt"

// SetUIDGID is not meaningful on Windows, which has no POSIX uid/gid
// model; service identity is instead configured through the Windows
// service manager. A non-empty request is an error rather than a silent
// no-op.
func SetUIDGID(username, groupname string) error {
	if username != "" || groupname != "" {
		return fmt.Errorf("daemon: setuid/setgid is not supported on windows")
	}
	return nil
}
