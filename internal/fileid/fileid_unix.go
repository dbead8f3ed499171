//go:build !windows

package fileid

import (
	"os"
	"syscall"
)

func identityOf(info os.FileInfo) Identity {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return Identity{}
	}
	return Identity{Dev: uint64(stat.Dev), Inode: uint64(stat.Ino)}
}
