//go:build !windows

package daemon

import (
	"fmt"
	"os/user"
	"strconv"
	"syscall"
)

// SetUIDGID drops the process's privileges to the named user and/or
// group, mirroring daemonize.py's setguid: group is applied before user,
// because changing UID first can make changing the primary group
// impossible.
func SetUIDGID(username, groupname string) error {
	var uid, gid int
	haveUID, haveGID := false, false

	if username != "" {
		u, err := user.Lookup(username)
		if err != nil {
			return fmt.Errorf("daemon: looking up user %q: %w", username, err)
		}
		uid, err = strconv.Atoi(u.Uid)
		if err != nil {
			return fmt.Errorf("daemon: parsing uid for %q: %w", username, err)
		}
		gid, err = strconv.Atoi(u.Gid)
		if err != nil {
			return fmt.Errorf("daemon: parsing gid for %q: %w", username, err)
		}
		haveUID, haveGID = true, true
	}

	if groupname != "" {
		g, err := user.LookupGroup(groupname)
		if err != nil {
			return fmt.Errorf("daemon: looking up group %q: %w", groupname, err)
		}
		gid, err = strconv.Atoi(g.Gid)
		if err != nil {
			return fmt.Errorf("daemon: parsing gid for %q: %w", groupname, err)
		}
		haveGID = true
	}

	if haveGID {
		if err := syscall.Setgid(gid); err != nil {
			return fmt.Errorf("daemon: setgid(%d): %w", gid, err)
		}
	}
	if haveUID {
		if err := syscall.Setuid(uid); err != nil {
			return fmt.Errorf("daemon: setuid(%d): %w", uid, err)
		}
	}
	return nil
}
