// Package tree defines the assembled directory tree returned to callers and
// the assembler that folds raw traversal entries into it. Diagram generators
// and the web layer consume Node values; the traversal engine produces Entry
// values.
package tree

import (
	"crypto/sha256"
	"fmt"
)

// Kind is the tagged variant for everything a traversal can discover.
type Kind int

const (
	// KindFile is a regular file.
	KindFile Kind = iota
	// KindDir is a directory.
	KindDir
	// KindSymlink is a symbolic link. Symlinks are terminal: they are never
	// followed, which prevents cycles by construction.
	KindSymlink
	// KindPermissionError stands in for the contents of a directory that
	// could not be listed.
	KindPermissionError
	// KindAccessError marks a single entry whose metadata could not be read.
	KindAccessError
	// KindTruncated marks the point where traversal stopped at max depth.
	KindTruncated
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "directory"
	case KindSymlink:
		return "symlink"
	case KindPermissionError:
		return "permission-error"
	case KindAccessError:
		return "access-error"
	case KindTruncated:
		return "truncated"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so kinds serialize as their
// names in JSON output consumed by front ends.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Entry is one raw filesystem object discovered mid-traversal, tagged with
// parent linkage and depth. Entries are ephemeral: produced by the traversal
// engine and consumed by Assemble within a single scan.
type Entry struct {
	// Path is the absolute path of the entry. Placeholder entries (truncated,
	// permission stand-ins) get a synthetic path under their parent so every
	// entry has a unique identity.
	Path string
	// Parent is the absolute path of the containing directory; empty for the
	// scan root.
	Parent string
	Name   string
	Kind   Kind
	// Depth is the distance from the scan root (root = 0).
	Depth int
	// Size is the byte size for files; zero for everything else.
	Size int64
}

// Node is one element of the assembled directory tree.
type Node struct {
	// Key identifies the node deterministically across scans of the same
	// path; derived from the full path.
	Key  string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
	Kind Kind   `json:"type"`
	// Depth is the distance from the scan root (root = 0).
	Depth int `json:"depth"`
	// Size is the byte size for files; omitted for directories and markers.
	Size int64 `json:"size,omitempty"`
	// Children is sorted: directories first, then case-insensitive by name.
	Children []*Node `json:"children,omitempty"`
	// FileCount and DirCount aggregate over the entire subtree.
	FileCount int `json:"fileCount"`
	DirCount  int `json:"dirCount"`
}

// NodeKey derives the stable identity key for a path.
func NodeKey(path string) string {
	sum := sha256.Sum256([]byte(path))

	return fmt.Sprintf("%x", sum[:8])
}

// Walk visits the node and every descendant in depth-first, child-sorted
// order. The visit function returning false prunes that subtree.
func (n *Node) Walk(visit func(*Node) bool) {
	if !visit(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(visit)
	}
}
