// Package filesystem builds the tree model of a scan root and reads file
// content from disk.
package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/FarhamAghdasi/send-ai/internal/filter"
	"github.com/FarhamAghdasi/send-ai/pkg/models"
	"go.uber.org/zap"
)

// ErrInvalidRoot is returned when the scan root is missing or not a directory
var ErrInvalidRoot = errors.New("invalid scan root")

// fileID is the canonical identity of a directory used by the cycle guard
type fileID struct {
	dev  uint64
	ino  uint64
	path string
}

// WalkResult is the admitted tree plus everything the walk absorbed
type WalkResult struct {
	Tree      *models.TreeNode
	Skipped   []models.SkippedEntry
	FilesSeen int // File entries examined, admitted or not
}

// Walker walks the filesystem and builds the admitted tree
type Walker struct {
	filter *filter.PathFilter
	logger *zap.Logger
}

// NewWalker creates a new filesystem walker
func NewWalker(cfg *filter.Config, logger *zap.Logger) *Walker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Walker{
		filter: filter.NewPathFilter(cfg),
		logger: logger,
	}
}

// walk holds the state of a single Walk call
type walk struct {
	*Walker
	chain  map[fileID]bool
	result *WalkResult
}

// Walk recursively walks the directory tree under root. Symbolic links are
// followed; a link back to a directory on the current chain is recorded as a
// cycle instead of being descended. Only a missing or non-directory root is
// fatal.
func (w *Walker) Walk(root string) (*WalkResult, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRoot, root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, abs)
	}

	state := &walk{
		Walker: w,
		chain:  make(map[fileID]bool),
		result: &WalkResult{},
	}

	tree := &models.TreeNode{
		Kind:    models.KindDirectory,
		Name:    filepath.Base(abs),
		Path:    abs,
		RelPath: ".",
		ModTime: info.ModTime(),
	}
	state.descend(tree, info, false)
	state.result.Tree = tree

	return state.result, nil
}

// descend lists dir and attaches its admitted children
func (s *walk) descend(dir *models.TreeNode, info os.FileInfo, ancestorMatched bool) {
	id, ok := dirIdentity(dir.Path, info)
	if ok {
		if s.chain[id] {
			s.skip(dir, models.SkipCycle, "")
			return
		}
		s.chain[id] = true
		defer delete(s.chain, id)
	}

	entries, err := os.ReadDir(dir.Path)
	if err != nil {
		s.skip(dir, models.SkipUnreadable, err.Error())
		return
	}

	// ReadDir sorts by filename already; keep byte order explicit
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(dir.Path, name)
		rel := relPath(dir.RelPath, name)

		// Stat follows symlinks, so links behave like their targets
		info, err := os.Stat(path)
		if err != nil {
			if entry.Type()&os.ModeSymlink != 0 {
				s.leaf(dir, name, path, rel, models.SkipBrokenLink, err.Error())
			} else {
				s.leaf(dir, name, path, rel, models.SkipUnreadable, err.Error())
			}
			continue
		}

		if info.IsDir() {
			if !s.filter.AdmitDirectory(name, rel) {
				s.logger.Debug("Skipping excluded directory", zap.String("path", rel))
				continue
			}
			child := &models.TreeNode{
				Kind:    models.KindDirectory,
				Name:    name,
				Path:    path,
				RelPath: rel,
				Depth:   dir.Depth + 1,
				ModTime: info.ModTime(),
			}
			dir.Children = append(dir.Children, child)
			s.descend(child, info, ancestorMatched || s.filter.FolderMatches(name))
			continue
		}

		if !info.Mode().IsRegular() {
			s.logger.Debug("Skipping special file", zap.String("path", rel), zap.String("mode", info.Mode().String()))
			continue
		}

		s.result.FilesSeen++
		if s.filter.ExcludedFile(rel) || !s.filter.InScope(ancestorMatched) || !s.filter.AdmitFile(name, info.Size(), info.ModTime()) {
			continue
		}

		dir.Children = append(dir.Children, &models.TreeNode{
			Kind:    models.KindFile,
			Name:    name,
			Path:    path,
			RelPath: rel,
			Depth:   dir.Depth + 1,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
}

// leaf attaches an entry that could not be examined
func (s *walk) leaf(dir *models.TreeNode, name, path, rel string, reason models.SkipReason, detail string) {
	node := &models.TreeNode{
		Kind:    models.KindFile,
		Name:    name,
		Path:    path,
		RelPath: rel,
		Depth:   dir.Depth + 1,
	}
	dir.Children = append(dir.Children, node)
	s.skip(node, reason, detail)
}

func (s *walk) skip(node *models.TreeNode, reason models.SkipReason, detail string) {
	node.Skip = reason
	node.Detail = detail
	s.result.Skipped = append(s.result.Skipped, models.SkippedEntry{
		Path:   node.RelPath,
		Reason: reason,
		Detail: detail,
	})
	s.logger.Debug("Skipping entry",
		zap.String("path", node.RelPath),
		zap.String("reason", string(reason)),
		zap.String("detail", detail))
}

func relPath(parent, name string) string {
	if parent == "." {
		return name
	}
	return parent + "/" + name
}
