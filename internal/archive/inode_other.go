//go:build !unix

package archive

import "io/fs"

func fileID(fs.FileInfo) (inode, bool) {
	return inode{}, false
}
