//go:build windows

package fileid

import "os"

// On Windows there is no portable device/inode pair exposed through
// os.FileInfo; rotation detection degrades to truncation detection only.
func identityOf(_ os.FileInfo) Identity {
	return Identity{}
}
