package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/maya/dirscan/pkg/tree"
)

// Exported constants.
const (
	// DefaultFanOutDepth is the depth below which the concurrent strategy
	// dispatches subdirectories to the worker pool. Near the root directories
	// are fewer and larger; deeper levels proceed sequentially within
	// whichever worker owns the subtree to avoid unbounded fan-out.
	DefaultFanOutDepth = 2
	// DefaultFanOutMinEntries is the minimum immediate entry count for a
	// directory to be worth fanning out.
	DefaultFanOutMinEntries = 5
	// DefaultWorkers is the default bound on concurrent directory reads.
	DefaultWorkers = 4
	// ProgressThreshold is the immediate root entry count above which a
	// sequential scan emits incremental progress events.
	ProgressThreshold = 100
	// progressEvery is the entry interval between progress events.
	progressEvery = 50
)

// Placeholder names mirror what front ends render for truncation and
// unreadable directories.
const (
	truncatedName = "... (max depth reached)"
	deniedName    = "Permission denied"
)

// Engine walks a directory tree under depth, exclusion, and symlink
// constraints, producing the raw entry stream consumed by tree.Assemble.
//
// The sequential and concurrent strategies produce equivalent final trees:
// internal discovery order differs, but the assembler re-sorts children
// deterministically.
type Engine struct {
	Filter   *Filter
	MaxDepth int
	// Workers bounds concurrent directory reads in the concurrent strategy.
	Workers int
	// FanOutDepth and FanOutMinEntries tune where fan-out happens; they are
	// performance knobs, never correctness ones.
	FanOutDepth      int
	FanOutMinEntries int

	emitter EventEmitter
}

// NewEngine creates an Engine with default concurrency tuning.
func NewEngine(filter *Filter, maxDepth int) *Engine {
	return &Engine{
		Filter:           filter,
		MaxDepth:         maxDepth,
		Workers:          DefaultWorkers,
		FanOutDepth:      DefaultFanOutDepth,
		FanOutMinEntries: DefaultFanOutMinEntries,
	}
}

// SetEventEmitter sets the emitter for progress events. Optional; a nil
// emitter disables events.
func (e *Engine) SetEventEmitter(emitter EventEmitter) {
	e.emitter = emitter
}

func (e *Engine) emit(event Event) {
	if e.emitter != nil {
		e.emitter.Emit(event)
	}
}

func (e *Engine) workerCount() int {
	if e.Workers > 0 {
		return e.Workers
	}

	return DefaultWorkers
}

// Sequential walks the tree depth-first in a single goroutine.
//
// The returned error is scan-level: a root that cannot be listed, or a
// cancelled context. Everything below the root is localized into error-kind
// entries instead.
func (e *Engine) Sequential(ctx context.Context, root string) ([]tree.Entry, error) {
	entries := []tree.Entry{rootEntry(root)}

	if e.MaxDepth <= 0 {
		entries = append(entries, truncatedEntry(root, 1))
		e.emit(Complete{Root: root, Scanned: len(entries)})

		return entries, nil
	}

	listing, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	e.emit(Started{Root: root, Entries: len(listing)})
	prog := newProgressTracker(e.emitter, root, len(listing))

	if err := e.walkListing(ctx, root, 0, listing, &entries, prog); err != nil {
		return nil, err
	}

	e.emit(Complete{Root: root, Scanned: len(entries)})

	return entries, nil
}

// walkListing processes the already-read listing of dir at dirDepth,
// recursing sequentially into subdirectories.
func (e *Engine) walkListing(
	ctx context.Context,
	dir string,
	dirDepth int,
	listing []fs.DirEntry,
	out *[]tree.Entry,
	prog *progressTracker,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, dirent := range listing {
		entry, isDir, ok := e.entryFor(dir, dirent, dirDepth+1)
		if !ok {
			continue
		}
		*out = append(*out, entry)
		prog.tick(entry.Path)

		if !isDir {
			continue
		}

		if entry.Depth >= e.MaxDepth {
			*out = append(*out, truncatedEntry(entry.Path, entry.Depth+1))

			continue
		}

		sub, err := os.ReadDir(entry.Path)
		if err != nil {
			*out = append(*out, standInEntry(entry.Path, entry.Depth+1, err))

			continue
		}

		if err := e.walkListing(ctx, entry.Path, entry.Depth, sub, out, prog); err != nil {
			return err
		}
	}

	return nil
}

// subtreeResult carries one dispatched subtree's entries back to the
// directory that fanned it out.
type subtreeResult struct {
	entries []tree.Entry
	err     error
}

// Concurrent walks the tree using a bounded pool of concurrent directory
// reads. Subdirectories are dispatched while the current depth is below
// FanOutDepth and the directory is wide enough to benefit; a shared
// semaphore bounds in-flight reads to Workers, so a goroutine that finishes
// its listing frees a slot for whichever pending subtree grabs it next.
func (e *Engine) Concurrent(ctx context.Context, root string) ([]tree.Entry, error) {
	entries := []tree.Entry{rootEntry(root)}

	if e.MaxDepth <= 0 {
		entries = append(entries, truncatedEntry(root, 1))
		e.emit(Complete{Root: root, Scanned: len(entries)})

		return entries, nil
	}

	listing, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	e.emit(Started{Root: root, Entries: len(listing)})

	sem := make(chan struct{}, e.workerCount())
	if err := e.walkConcurrent(ctx, root, 0, listing, &entries, sem); err != nil {
		return nil, err
	}

	e.emit(Complete{Root: root, Scanned: len(entries)})

	return entries, nil
}

//nolint:cyclop // The fan-out/sequential split and per-kind handling belong together.
func (e *Engine) walkConcurrent(
	ctx context.Context,
	dir string,
	dirDepth int,
	listing []fs.DirEntry,
	out *[]tree.Entry,
	sem chan struct{},
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	type subdir struct {
		path  string
		depth int
	}
	var subdirs []subdir

	for _, dirent := range listing {
		entry, isDir, ok := e.entryFor(dir, dirent, dirDepth+1)
		if !ok {
			continue
		}
		*out = append(*out, entry)

		if !isDir {
			continue
		}

		if entry.Depth >= e.MaxDepth {
			*out = append(*out, truncatedEntry(entry.Path, entry.Depth+1))

			continue
		}
		subdirs = append(subdirs, subdir{path: entry.Path, depth: entry.Depth})
	}

	fanOut := dirDepth < e.FanOutDepth && len(listing) > e.FanOutMinEntries && len(subdirs) > 0
	if !fanOut {
		// Deep or narrow levels proceed sequentially within the goroutine
		// that owns this subtree; the semaphore still bounds reads.
		for _, sd := range subdirs {
			sub, err := readDirBounded(ctx, sem, sd.path)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				*out = append(*out, standInEntry(sd.path, sd.depth+1, err))

				continue
			}
			if err := e.walkConcurrent(ctx, sd.path, sd.depth, sub, out, sem); err != nil {
				return err
			}
		}

		return nil
	}

	// Fan out: dispatch each subdirectory, then collect results as they
	// complete. A directory's entries are not final until every dispatched
	// child has reported back, success or error.
	results := make(chan subtreeResult, len(subdirs))
	for _, sd := range subdirs {
		go func(sd subdir) {
			sub, err := readDirBounded(ctx, sem, sd.path)
			if err != nil {
				if ctx.Err() != nil {
					results <- subtreeResult{err: ctx.Err()}

					return
				}
				results <- subtreeResult{entries: []tree.Entry{standInEntry(sd.path, sd.depth+1, err)}}

				return
			}

			branch := make([]tree.Entry, 0, len(sub))
			err = e.walkConcurrent(ctx, sd.path, sd.depth, sub, &branch, sem)
			results <- subtreeResult{entries: branch, err: err}
		}(sd)
	}

	var firstErr error
	for range subdirs {
		result := <-results
		if result.err != nil && firstErr == nil {
			firstErr = result.err

			continue
		}
		*out = append(*out, result.entries...)
	}

	return firstErr
}

// readDirBounded lists a directory while holding a worker-pool slot. The
// slot is held only for the duration of the read itself, never across
// recursion, so nested fan-out cannot deadlock the pool.
func readDirBounded(ctx context.Context, sem chan struct{}, path string) ([]fs.DirEntry, error) {
	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-sem }()

	return os.ReadDir(path)
}

// entryFor classifies one directory entry. Exclusion is checked before any
// metadata access; symlinks are terminal; a metadata failure yields an
// access-error entry rather than aborting the parent. The ok result is false
// for excluded names.
func (e *Engine) entryFor(dir string, dirent fs.DirEntry, depth int) (entry tree.Entry, isDir, ok bool) {
	name := dirent.Name()
	if e.Filter != nil && e.Filter.ShouldExclude(name) {
		return tree.Entry{}, false, false
	}

	path := filepath.Join(dir, name)
	base := tree.Entry{Path: path, Parent: dir, Name: name, Depth: depth}

	switch {
	case dirent.Type()&fs.ModeSymlink != 0:
		base.Kind = tree.KindSymlink

		return base, false, true
	case dirent.IsDir():
		base.Kind = tree.KindDir

		return base, true, true
	default:
		info, err := dirent.Info()
		if err != nil {
			base.Kind = tree.KindAccessError

			return base, false, true
		}
		base.Kind = tree.KindFile
		base.Size = info.Size()

		return base, false, true
	}
}

func rootEntry(root string) tree.Entry {
	name := filepath.Base(root)
	if name == "." || name == string(filepath.Separator) {
		name = root
	}

	return tree.Entry{Path: root, Name: name, Kind: tree.KindDir}
}

// truncatedEntry is the sentinel child marking that traversal stopped at the
// depth boundary under parent.
func truncatedEntry(parent string, depth int) tree.Entry {
	return tree.Entry{
		Path:   filepath.Join(parent, truncatedName),
		Parent: parent,
		Name:   truncatedName,
		Kind:   tree.KindTruncated,
		Depth:  depth,
	}
}

// standInEntry is the single error-kind child standing in for the contents
// of a directory that could not be listed.
func standInEntry(parent string, depth int, err error) tree.Entry {
	name := deniedName
	kind := tree.KindPermissionError
	if !os.IsPermission(err) {
		name = "Error: " + err.Error()
		kind = tree.KindAccessError
	}

	return tree.Entry{
		Path:   filepath.Join(parent, name),
		Parent: parent,
		Name:   name,
		Kind:   kind,
		Depth:  depth,
	}
}

// progressTracker emits periodic progress for large sequential scans.
// A nil tracker is inert.
type progressTracker struct {
	emitter EventEmitter
	root    string
	scanned int
}

func newProgressTracker(emitter EventEmitter, root string, rootEntries int) *progressTracker {
	if emitter == nil || rootEntries <= ProgressThreshold {
		return nil
	}

	return &progressTracker{emitter: emitter, root: root}
}

func (p *progressTracker) tick(current string) {
	if p == nil {
		return
	}
	p.scanned++
	if p.scanned%progressEvery == 0 {
		p.emitter.Emit(Progress{Root: p.root, Scanned: p.scanned, Current: current})
	}
}
