// Package acquire provides the acquisition service: the façade that
// validates paths, consults the result cache, and dispatches traversals to a
// bounded worker pool so callers are never blocked on filesystem latency.
package acquire

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/maya/dirscan/internal/cache"
	"github.com/maya/dirscan/internal/config"
	"github.com/maya/dirscan/internal/scan"
	scanerrors "github.com/maya/dirscan/pkg/errors"
	"github.com/maya/dirscan/pkg/tree"
)

// DefaultScanSlots bounds how many traversals may run at once across all
// callers. Scans beyond this wait for a slot.
const DefaultScanSlots = 4

// Traverser runs one traversal and returns the raw entry stream. It exists
// as an injection point: tests substitute counting or failing traversers.
type Traverser func(ctx context.Context, root string, maxDepth int, parallel bool) ([]tree.Entry, error)

// ScanRequest describes one scan call.
type ScanRequest struct {
	Path string
	// MaxDepth bounds the traversal; negative means the configured default.
	// Zero is a valid bound (the root with a truncation marker).
	MaxDepth int
	// Parallel selects the concurrent traversal strategy.
	Parallel bool
	// NoCache bypasses the result cache for this call.
	NoCache bool
}

// Service is the acquisition façade. A single Service is constructed per
// process and handed to callers; it owns the cache and the scan slots, so no
// state hides in package-level globals.
type Service struct {
	// Traverse is the traversal implementation; replaceable for testing.
	Traverse Traverser

	filter    *scan.Filter
	patterns  []string
	maxDepth  int
	scanTTL   time.Duration
	statsTTL  time.Duration
	store     *cache.Cache
	slots     chan struct{}
	group     singleflight.Group
	logger    *slog.Logger
	emitter   scan.EventEmitter
	workers   int
	fanDepth  int
	fanWidth  int
}

// New creates a Service from configuration. A nil store disables caching;
// every scan then degrades to a fresh traversal. A nil logger falls back to
// the default slog logger.
func New(cfg *config.Config, store *cache.Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	svc := &Service{
		filter:    scan.NewFilter(cfg.ExcludePatterns()),
		maxDepth:  cfg.MaxDepth,
		scanTTL:   cfg.ScanTTL(),
		statsTTL:  cfg.StatsCacheTTL(),
		store:     store,
		slots:     make(chan struct{}, DefaultScanSlots),
		logger:    logger,
		workers:   cfg.Workers,
		fanDepth:  scan.DefaultFanOutDepth,
		fanWidth:  scan.DefaultFanOutMinEntries,
	}
	svc.patterns = svc.filter.Patterns()
	svc.Traverse = svc.runEngine

	return svc
}

// SetEventEmitter forwards traversal progress events to the given emitter.
func (s *Service) SetEventEmitter(emitter scan.EventEmitter) {
	s.emitter = emitter
}

// Scan validates the path, consults the cache, and otherwise traverses and
// assembles the tree on the worker pool, caching the result.
//
// Root-level failures (missing path, not a directory, unreadable root) are
// typed scan-level errors, never cached and never partial trees. An
// abandoned context returns immediately; the in-flight traversal runs to
// completion and its result is discarded (it still lands in the cache for
// the next caller).
func (s *Service) Scan(ctx context.Context, req ScanRequest) (*tree.Node, error) {
	root, err := s.resolveDir(req.Path)
	if err != nil {
		return nil, err
	}

	depth := req.MaxDepth
	if depth < 0 {
		depth = s.maxDepth
	}

	key := s.fingerprint("scan", root, depth)
	useCache := s.store != nil && !req.NoCache

	if useCache {
		if value, ok := s.store.Get(key); ok {
			s.logger.Debug("scan cache hit", "path", root, "depth", depth)

			return value.(*tree.Node), nil
		}
	}

	start := time.Now()
	node, err := s.await(ctx, key, func() (any, error) {
		return s.scanFresh(ctx, root, depth, req.Parallel, useCache, key)
	})
	if err != nil {
		return nil, err
	}

	result := node.(*tree.Node)
	s.logger.Info("scan complete",
		"path", root,
		"files", result.FileCount,
		"dirs", result.DirCount,
		"duration", time.Since(start))

	return result, nil
}

// scanFresh runs one traversal under a pool slot and populates the cache.
// It runs detached from the caller's context so abandonment never truncates
// a result another caller may be waiting on.
func (s *Service) scanFresh(ctx context.Context, root string, depth int, parallel, useCache bool, key string) (any, error) {
	detached := context.WithoutCancel(ctx)

	if err := s.acquireSlot(detached); err != nil {
		return nil, err
	}
	defer s.releaseSlot()

	entries, err := s.Traverse(detached, root, depth, parallel)
	if err != nil {
		return nil, scanerrors.Classify(err, root)
	}

	node, err := tree.Assemble(entries)
	if err != nil {
		return nil, scanerrors.Classify(err, root)
	}

	if useCache {
		s.store.SetTTL(key, node, s.scanTTL)
	}

	return node, nil
}

// await runs fn through the singleflight group so concurrent identical scans
// share one traversal, while still letting each caller honor its own
// context.
func (s *Service) await(ctx context.Context, key string, fn func() (any, error)) (any, error) {
	ch := s.group.DoChan(key, fn)

	select {
	case result := <-ch:
		return result.Val, result.Err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, scanerrors.NewScanError(scanerrors.ErrScanTimeout, scanerrors.CategoryTimeout, key, "")
		}

		return nil, ctx.Err()
	}
}

func (s *Service) acquireSlot(ctx context.Context) error {
	select {
	case s.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) releaseSlot() {
	<-s.slots
}

// runEngine is the default Traverser backed by the scan engine.
func (s *Service) runEngine(ctx context.Context, root string, maxDepth int, parallel bool) ([]tree.Entry, error) {
	engine := scan.NewEngine(s.filter, maxDepth)
	engine.Workers = s.workers
	engine.FanOutDepth = s.fanDepth
	engine.FanOutMinEntries = s.fanWidth
	engine.SetEventEmitter(s.emitter)

	if parallel {
		return engine.Concurrent(ctx, root)
	}

	return engine.Sequential(ctx, root)
}

// StreamingScan validates the path and returns a lazy entry stream. The
// stream bypasses the cache entirely: it exists for callers that cannot hold
// a full tree in memory.
func (s *Service) StreamingScan(path string, maxDepth int) (*scan.Stream, error) {
	root, err := s.resolveDir(path)
	if err != nil {
		return nil, err
	}

	if maxDepth < 0 {
		maxDepth = s.maxDepth
	}

	return scan.NewStream(root, maxDepth, s.filter), nil
}

// CacheStats returns a snapshot of cache counters; zero-valued when caching
// is disabled.
func (s *Service) CacheStats() cache.Stats {
	if s.store == nil {
		return cache.Stats{}
	}

	return s.store.Stats()
}

// CacheClear empties the cache. A no-op when caching is disabled.
func (s *Service) CacheClear() {
	if s.store != nil {
		s.store.Clear()
	}
}

// PathValidation reports whether a path is scannable and why not.
type PathValidation struct {
	Valid        bool     `json:"valid"`
	Exists       bool     `json:"exists"`
	IsDirectory  bool     `json:"isDirectory"`
	Readable     bool     `json:"readable"`
	AbsolutePath string   `json:"absolutePath"`
	Errors       []string `json:"errors"`
}

// ValidatePath checks that a path exists, is a directory, and is listable,
// without performing a scan.
func (s *Service) ValidatePath(path string) PathValidation {
	report := PathValidation{Errors: []string{}}

	abs, err := filepath.Abs(path)
	if err != nil {
		report.AbsolutePath = path
		report.Errors = append(report.Errors, "cannot resolve path: "+err.Error())

		return report
	}
	report.AbsolutePath = abs

	info, err := os.Stat(abs)
	if err != nil {
		report.Errors = append(report.Errors, "path does not exist")

		return report
	}
	report.Exists = true

	if !info.IsDir() {
		report.Errors = append(report.Errors, "path is not a directory")

		return report
	}
	report.IsDirectory = true

	file, err := os.Open(abs)
	if err != nil {
		report.Errors = append(report.Errors, "permission denied")

		return report
	}
	defer file.Close()

	if _, err := file.ReadDir(1); err != nil && err != io.EOF {
		report.Errors = append(report.Errors, "cannot list directory: "+err.Error())

		return report
	}
	report.Readable = true
	report.Valid = true

	return report
}

// resolveDir normalizes the path and confirms it names an existing
// directory, mapping failures onto the scan-level error taxonomy.
func (s *Service) resolveDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", scanerrors.Classify(err, path)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", scanerrors.Classify(err, abs)
	}
	if !info.IsDir() {
		return "", scanerrors.NewScanError(scanerrors.ErrNotADirectory, scanerrors.CategoryPath, abs, "")
	}

	return abs, nil
}

// fingerprint derives the deterministic cache key from the normalized path,
// the depth bound, and the exclusion-set identity.
func (s *Service) fingerprint(kind, root string, depth int) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s\x00%d\x00%s", root, depth, strings.Join(s.patterns, "\x00")))

	return fmt.Sprintf("%s:%x", kind, sum[:16])
}
