package filter

import (
	"strings"
	"time"
)

// PathFilter decides admission of directory entries. It performs no I/O.
type PathFilter struct {
	cfg *Config
}

// NewPathFilter creates a path filter over an immutable config
func NewPathFilter(cfg *Config) *PathFilter {
	return &PathFilter{cfg: cfg}
}

// AdmitDirectory reports whether a directory below the root may be descended.
// relPath is slash-separated and relative to the scan root.
func (f *PathFilter) AdmitDirectory(name, relPath string) bool {
	if f.cfg.excludeFolders[name] {
		return false
	}
	if len(f.cfg.excludePaths) > 0 && f.cfg.excludePaths[relPath] {
		return false
	}
	if f.cfg.folderPolicy == PolicyEveryLevel && !f.FolderMatches(name) {
		return false
	}
	return true
}

// FolderMatches reports whether a directory name satisfies the required folder
// filter. With no filter configured every name matches.
func (f *PathFilter) FolderMatches(name string) bool {
	return f.cfg.folderFilter == "" || strings.Contains(name, f.cfg.folderFilter)
}

// InScope reports whether files may be admitted at a position in the tree,
// given whether a directory on the path from the root matched the folder filter.
func (f *PathFilter) InScope(ancestorMatched bool) bool {
	if f.cfg.folderFilter == "" || f.cfg.folderPolicy == PolicyEveryLevel {
		return true
	}
	return ancestorMatched
}

// ExcludedFile reports whether a root-relative file path is excluded by name
func (f *PathFilter) ExcludedFile(relPath string) bool {
	return f.cfg.excludeFiles[relPath]
}

// AdmitFile reports whether a file passes the extension, size and time filters.
// Size equal to the minimum is admitted; a modification time equal to the
// threshold is admitted.
func (f *PathFilter) AdmitFile(name string, size int64, modTime time.Time) bool {
	if len(f.cfg.excludeExtensions) > 0 {
		for _, ext := range ExtensionChain(name) {
			if f.cfg.excludeExtensions[ext] {
				return false
			}
		}
	}
	if size < f.cfg.minSize {
		return false
	}
	if !f.cfg.modifiedAfter.IsZero() && modTime.Before(f.cfg.modifiedAfter) {
		return false
	}
	return true
}

// ExtensionChain returns every compound suffix of a file name, longest first,
// lower-cased with a leading dot: "a.Tar.GZ" gives [".tar.gz", ".gz"].
// Leading dots belong to the name, so ".htaccess" has no extension.
func ExtensionChain(name string) []string {
	base := strings.TrimLeft(name, ".")
	first := strings.IndexByte(base, '.')
	if first < 0 {
		return nil
	}

	lower := strings.ToLower(base[first:])
	var chain []string
	for i := 0; i < len(lower); i++ {
		if lower[i] != '.' {
			continue
		}
		suffix := lower[i:]
		if suffix == "." {
			continue
		}
		chain = append(chain, suffix)
	}
	return chain
}
