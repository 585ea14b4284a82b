package scan

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/kr/fs"

	"github.com/maya/dirscan/pkg/tree"
)

// StreamEntry is one discovered filesystem object yielded by a Stream.
type StreamEntry struct {
	Path  string
	Kind  tree.Kind
	Depth int
	// Size is the byte size for files; zero otherwise.
	Size int64
}

// Stream lazily walks a directory tree, yielding entries one at a time for
// callers that want to process results incrementally without holding a full
// tree in memory. It is finite and not restartable.
//
// Entries are yielded through depth maxDepth (root's children are depth 1);
// directories at the boundary are yielded but not descended into. Symlinks
// are yielded as terminal entries and never followed. Unreadable
// directories yield a single error-kind entry and the walk continues.
type Stream struct {
	walker   *fs.Walker
	root     string
	maxDepth int
	filter   *Filter
	err      error
}

// NewStream creates a Stream over root. The filter may be nil to disable
// exclusion.
func NewStream(root string, maxDepth int, filter *Filter) *Stream {
	return &Stream{
		walker:   fs.Walk(root),
		root:     filepath.Clean(root),
		maxDepth: maxDepth,
		filter:   filter,
	}
}

// Next advances to the next entry. It returns (StreamEntry{}, false) when
// the walk is exhausted; check Err afterward to distinguish a clean finish
// from a root-level failure.
//
//nolint:cyclop // One skip decision per traversal rule; splitting them obscures the walk.
func (s *Stream) Next() (StreamEntry, bool) {
	for s.walker.Step() {
		path := s.walker.Path()
		depth := s.depthOf(path)

		if err := s.walker.Err(); err != nil {
			if depth <= 0 {
				// Root unreadable: the whole stream fails.
				s.err = err

				return StreamEntry{}, false
			}

			return StreamEntry{Path: path, Kind: errorKind(err), Depth: depth}, true
		}

		if path == s.root {
			continue
		}

		info := s.walker.Stat()
		name := filepath.Base(path)
		isDir := info.IsDir()

		if s.filter != nil && s.filter.ShouldExclude(name) {
			if isDir {
				s.walker.SkipDir()
			}

			continue
		}

		if depth > s.maxDepth {
			if isDir {
				s.walker.SkipDir()
			}

			continue
		}

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			return StreamEntry{Path: path, Kind: tree.KindSymlink, Depth: depth}, true
		case isDir:
			if depth >= s.maxDepth {
				s.walker.SkipDir()
			}

			return StreamEntry{Path: path, Kind: tree.KindDir, Depth: depth}, true
		default:
			return StreamEntry{Path: path, Kind: tree.KindFile, Depth: depth, Size: info.Size()}, true
		}
	}

	return StreamEntry{}, false
}

// Err returns the root-level failure that terminated the stream, if any.
func (s *Stream) Err() error {
	return s.err
}

func (s *Stream) depthOf(path string) int {
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == "." {
		return 0
	}

	return strings.Count(rel, string(filepath.Separator)) + 1
}

func errorKind(err error) tree.Kind {
	if os.IsPermission(err) {
		return tree.KindPermissionError
	}

	return tree.KindAccessError
}
