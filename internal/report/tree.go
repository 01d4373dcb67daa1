package report

import (
	"strings"

	"github.com/FarhamAghdasi/send-ai/pkg/models"
)

const (
	branchMid  = "├── "
	branchLast = "└── "
	indentBar  = "│   "
	indentNone = "    "
)

// treeLines draws the visible tree, one entry per line, in stored order.
// Directories without visible descendants are pruned.
func treeLines(root *models.TreeNode) []string {
	lines := []string{nodeLabel(root)}

	var walk func(n *models.TreeNode, prefix string)
	walk = func(n *models.TreeNode, prefix string) {
		children := n.VisibleChildren()
		for i, child := range children {
			connector, next := branchMid, prefix+indentBar
			if i == len(children)-1 {
				connector, next = branchLast, prefix+indentNone
			}
			lines = append(lines, prefix+connector+nodeLabel(child))
			if child.IsDir() && child.Skip == "" {
				walk(child, next)
			}
		}
	}
	walk(root, "")

	return lines
}

func nodeLabel(n *models.TreeNode) string {
	name := strings.NewReplacer("\n", " ", "\r", " ").Replace(n.Name)
	switch {
	case n.Skip != "":
		return "[SKIPPED: " + string(n.Skip) + "] " + name
	case n.IsDir():
		return "[DIR] " + name
	default:
		return "[FILE] " + name
	}
}

// renderTree returns the tree as a single block
func renderTree(root *models.TreeNode) string {
	return strings.Join(treeLines(root), "\n")
}

// prune returns a copy of the tree holding only visible nodes
func prune(n *models.TreeNode) *models.TreeNode {
	if n == nil {
		return nil
	}
	out := *n
	out.Children = nil
	for _, child := range n.VisibleChildren() {
		out.Children = append(out.Children, prune(child))
	}
	return &out
}
