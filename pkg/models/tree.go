package models

import "time"

// NodeKind distinguishes directories from files in the tree model
type NodeKind string

const (
	KindDirectory NodeKind = "dir"
	KindFile      NodeKind = "file"
)

// SkipReason explains why an entry was kept in the tree but not descended or read
type SkipReason string

const (
	SkipCycle      SkipReason = "cycle"
	SkipUnreadable SkipReason = "unreadable"
	SkipBrokenLink SkipReason = "broken-link"
)

// TreeNode is one admitted filesystem entry
type TreeNode struct {
	Kind     NodeKind    `json:"kind"`
	Name     string      `json:"name"`
	Path     string      `json:"-"`     // Absolute path
	RelPath  string      `json:"path"`  // Slash-separated path relative to the scan root
	Depth    int         `json:"depth"` // Root is depth 0
	Size     int64       `json:"size,omitempty"`
	ModTime  time.Time   `json:"-"`
	Skip     SkipReason  `json:"skipped,omitempty"`
	Detail   string      `json:"detail,omitempty"` // Error text for unreadable entries
	Children []*TreeNode `json:"children,omitempty"`
}

// IsDir reports whether the node is a directory
func (n *TreeNode) IsDir() bool {
	return n.Kind == KindDirectory
}

// Visible reports whether the node survives pruning in rendered output.
// Files are always visible. Directories are visible when they carry a skip
// marker or contain at least one visible descendant; the root is always visible.
func (n *TreeNode) Visible() bool {
	if n.Kind == KindFile || n.Skip != "" || n.Depth == 0 {
		return true
	}
	for _, child := range n.Children {
		if child.Visible() {
			return true
		}
	}
	return false
}

// VisibleChildren returns the children that survive pruning, in stored order
func (n *TreeNode) VisibleChildren() []*TreeNode {
	var visible []*TreeNode
	for _, child := range n.Children {
		if child.Visible() {
			visible = append(visible, child)
		}
	}
	return visible
}

// Files returns the admitted file nodes in depth-first order. Skipped entries
// are never admitted and are not returned.
func (n *TreeNode) Files() []*TreeNode {
	var files []*TreeNode
	n.walk(func(node *TreeNode) {
		if node.Kind == KindFile && node.Skip == "" {
			files = append(files, node)
		}
	})
	return files
}

func (n *TreeNode) walk(fn func(*TreeNode)) {
	fn(n)
	for _, child := range n.Children {
		child.walk(fn)
	}
}

// SkippedEntry is a traversal problem absorbed into the result
type SkippedEntry struct {
	Path   string     `json:"path"`
	Reason SkipReason `json:"reason"`
	Detail string     `json:"detail,omitempty"`
}
