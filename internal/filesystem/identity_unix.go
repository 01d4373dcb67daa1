//go:build !windows
// +build !windows

package filesystem

import (
	"os"
	"syscall"
)

// dirIdentity returns the device and inode of a directory (Unix)
func dirIdentity(_ string, info os.FileInfo) (fileID, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileID{}, false
	}
	return fileID{dev: uint64(stat.Dev), ino: uint64(stat.Ino)}, true
}
