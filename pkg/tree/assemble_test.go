package tree_test

import (
	"errors"
	"testing"

	"github.com/maya/dirscan/pkg/tree"
)

func fixtureEntries() []tree.Entry {
	return []tree.Entry{
		{Path: "/r", Name: "r", Kind: tree.KindDir, Depth: 0},
		{Path: "/r/zeta.txt", Parent: "/r", Name: "zeta.txt", Kind: tree.KindFile, Depth: 1, Size: 10},
		{Path: "/r/Alpha", Parent: "/r", Name: "Alpha", Kind: tree.KindDir, Depth: 1},
		{Path: "/r/alpha.txt", Parent: "/r", Name: "alpha.txt", Kind: tree.KindFile, Depth: 1, Size: 5},
		{Path: "/r/beta", Parent: "/r", Name: "beta", Kind: tree.KindDir, Depth: 1},
		{Path: "/r/Alpha/inner.go", Parent: "/r/Alpha", Name: "inner.go", Kind: tree.KindFile, Depth: 2, Size: 7},
		{Path: "/r/beta/sub", Parent: "/r/beta", Name: "sub", Kind: tree.KindDir, Depth: 2},
		{Path: "/r/beta/sub/deep.txt", Parent: "/r/beta/sub", Name: "deep.txt", Kind: tree.KindFile, Depth: 3, Size: 3},
	}
}

func TestAssembleLinksAndSorts(t *testing.T) {
	t.Parallel()

	root, err := tree.Assemble(fixtureEntries())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	var got []string
	for _, child := range root.Children {
		got = append(got, child.Name)
	}

	// Directories first, then files, case-insensitive within each group.
	want := []string{"Alpha", "beta", "alpha.txt", "zeta.txt"}
	if len(got) != len(want) {
		t.Fatalf("root children = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("child[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAssembleOrderIndependent(t *testing.T) {
	t.Parallel()

	entries := fixtureEntries()
	// Reverse arrival order, as a concurrent traversal might produce.
	reversed := make([]tree.Entry, len(entries))
	for i, entry := range entries {
		reversed[len(entries)-1-i] = entry
	}

	forward, err := tree.Assemble(entries)
	if err != nil {
		t.Fatalf("Assemble(forward): %v", err)
	}
	backward, err := tree.Assemble(reversed)
	if err != nil {
		t.Fatalf("Assemble(reversed): %v", err)
	}

	var forwardPaths, backwardPaths []string
	forward.Walk(func(n *tree.Node) bool {
		forwardPaths = append(forwardPaths, n.Path)

		return true
	})
	backward.Walk(func(n *tree.Node) bool {
		backwardPaths = append(backwardPaths, n.Path)

		return true
	})

	if len(forwardPaths) != len(backwardPaths) {
		t.Fatalf("walk lengths differ: %d vs %d", len(forwardPaths), len(backwardPaths))
	}
	for i := range forwardPaths {
		if forwardPaths[i] != backwardPaths[i] {
			t.Errorf("walk[%d]: %q vs %q", i, forwardPaths[i], backwardPaths[i])
		}
	}
}

func TestAssembleAggregatesCounts(t *testing.T) {
	t.Parallel()

	root, err := tree.Assemble(fixtureEntries())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if root.FileCount != 4 {
		t.Errorf("root FileCount = %d, want 4", root.FileCount)
	}
	if root.DirCount != 3 {
		t.Errorf("root DirCount = %d, want 3", root.DirCount)
	}

	for _, child := range root.Children {
		if child.Name == "beta" {
			if child.FileCount != 1 || child.DirCount != 1 {
				t.Errorf("beta counts = (%d files, %d dirs), want (1, 1)", child.FileCount, child.DirCount)
			}
		}
	}
}

func TestAssembleMarkersDoNotCount(t *testing.T) {
	t.Parallel()

	entries := []tree.Entry{
		{Path: "/r", Name: "r", Kind: tree.KindDir, Depth: 0},
		{Path: "/r/locked", Parent: "/r", Name: "locked", Kind: tree.KindDir, Depth: 1},
		{Path: "/r/locked/Permission denied", Parent: "/r/locked", Name: "Permission denied", Kind: tree.KindPermissionError, Depth: 2},
		{Path: "/r/deep", Parent: "/r", Name: "deep", Kind: tree.KindDir, Depth: 1},
		{Path: "/r/deep/... (max depth reached)", Parent: "/r/deep", Name: "... (max depth reached)", Kind: tree.KindTruncated, Depth: 2},
	}

	root, err := tree.Assemble(entries)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	// The unreadable and truncated directories count; their markers do not.
	if root.FileCount != 0 {
		t.Errorf("root FileCount = %d, want 0", root.FileCount)
	}
	if root.DirCount != 2 {
		t.Errorf("root DirCount = %d, want 2", root.DirCount)
	}
}

func TestAssembleRejectsDegenerateStreams(t *testing.T) {
	t.Parallel()

	if _, err := tree.Assemble(nil); !errors.Is(err, tree.ErrEmptyScan) {
		t.Errorf("Assemble(nil) error = %v, want ErrEmptyScan", err)
	}

	two := []tree.Entry{
		{Path: "/a", Name: "a", Kind: tree.KindDir},
		{Path: "/b", Name: "b", Kind: tree.KindDir},
	}
	if _, err := tree.Assemble(two); !errors.Is(err, tree.ErrMultipleRoots) {
		t.Errorf("Assemble(two roots) error = %v, want ErrMultipleRoots", err)
	}
}

func TestNodeKeyIsStable(t *testing.T) {
	t.Parallel()

	if tree.NodeKey("/r/a") != tree.NodeKey("/r/a") {
		t.Error("NodeKey is not deterministic")
	}
	if tree.NodeKey("/r/a") == tree.NodeKey("/r/b") {
		t.Error("NodeKey collides for distinct paths")
	}
}

func TestWalkStopsWhenVisitorReturnsFalse(t *testing.T) {
	t.Parallel()

	root, err := tree.Assemble(fixtureEntries())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	var visited int
	root.Walk(func(*tree.Node) bool {
		visited++

		return false
	})

	if visited != 1 {
		t.Errorf("visited = %d, want 1 after early stop", visited)
	}
}
