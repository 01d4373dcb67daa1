//go:build windows
// +build windows

package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

// dirIdentity returns the fully resolved, case-folded path of a directory (Windows)
func dirIdentity(path string, _ os.FileInfo) (fileID, bool) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return fileID{}, false
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return fileID{}, false
	}
	return fileID{path: strings.ToLower(abs)}, true
}
