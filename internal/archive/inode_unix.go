//go:build unix

package archive

import (
	"io/fs"
	"syscall"
)

// fileID returns the device and inode of a file that has more than one
// link, so Pack can store later links as hardlink entries.
func fileID(info fs.FileInfo) (inode, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok || st.Nlink < 2 {
		return inode{}, false
	}
	return inode{dev: uint64(st.Dev), ino: uint64(st.Ino)}, true
}
