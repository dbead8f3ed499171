// Package fileid extracts the kernel device/inode identity of a file from
// its os.FileInfo, the way PositionRecord identifies which file an offset
// belongs to.
package fileid

import "os"

// Identity is a file's (device, inode) pair.
type Identity struct {
	Dev   uint64
	Inode uint64
}

// Of returns the identity of info, or the zero Identity if the platform
// doesn't expose device/inode numbers.
func Of(info os.FileInfo) Identity {
	return identityOf(info)
}
