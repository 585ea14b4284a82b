package tree

import (
	"errors"
	"sort"
	"strings"
)

// Exported variables.
var (
	// ErrEmptyScan indicates the entry stream contained no root entry.
	ErrEmptyScan = errors.New("no root entry in scan results")
	// ErrMultipleRoots indicates the entry stream contained more than one
	// depth-zero entry.
	ErrMultipleRoots = errors.New("multiple root entries in scan results")
)

// Assemble folds a flat stream of traversal entries into a Node tree.
//
// Entries may arrive in any order (the concurrent traversal strategy collects
// subtree results as they complete): linkage is by parent path, children are
// re-sorted into the canonical order afterward, and aggregate counts are
// computed bottom-up. A mix of normal, symlink, and error-kind entries under
// the same parent needs no special casing.
func Assemble(entries []Entry) (*Node, error) {
	nodes := make(map[string]*Node, len(entries))
	var root *Node

	for _, entry := range entries {
		node := &Node{
			Key:   NodeKey(entry.Path),
			Name:  entry.Name,
			Path:  entry.Path,
			Kind:  entry.Kind,
			Depth: entry.Depth,
			Size:  entry.Size,
		}
		nodes[entry.Path] = node
		if entry.Parent == "" {
			if root != nil {
				return nil, ErrMultipleRoots
			}
			root = node
		}
	}

	if root == nil {
		return nil, ErrEmptyScan
	}

	// Link children to parents. Entries whose parent is missing from the
	// stream are dropped rather than invented; the traversal engine always
	// emits a directory before its contents, so this only happens on
	// malformed input.
	for _, entry := range entries {
		if entry.Parent == "" {
			continue
		}
		parent, ok := nodes[entry.Parent]
		if !ok {
			continue
		}
		parent.Children = append(parent.Children, nodes[entry.Path])
	}

	sortChildren(root)
	aggregate(root)

	return root, nil
}

// sortChildren orders every children list: directories before everything
// else, then case-insensitive by name, with a case-sensitive tiebreak so the
// order is total. This ordering is part of the observable contract; diagram
// output and UI listings depend on it.
func sortChildren(node *Node) {
	sort.Slice(node.Children, func(i, j int) bool {
		left, right := node.Children[i], node.Children[j]
		leftDir, rightDir := left.Kind == KindDir, right.Kind == KindDir
		if leftDir != rightDir {
			return leftDir
		}
		leftName, rightName := strings.ToLower(left.Name), strings.ToLower(right.Name)
		if leftName != rightName {
			return leftName < rightName
		}

		return left.Name < right.Name
	})

	for _, child := range node.Children {
		sortChildren(child)
	}
}

// aggregate computes subtree file and directory counts bottom-up. A directory
// that could not be listed still counts as one observed directory; its
// permission stand-in child contributes nothing, as access-error and
// truncation markers never do.
func aggregate(node *Node) {
	node.FileCount = 0
	node.DirCount = 0

	for _, child := range node.Children {
		aggregate(child)
		switch child.Kind {
		case KindFile:
			node.FileCount++
		case KindDir:
			node.DirCount++
		}
		node.FileCount += child.FileCount
		node.DirCount += child.DirCount
	}
}
