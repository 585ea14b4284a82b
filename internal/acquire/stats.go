package acquire

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/maya/dirscan/pkg/tree"
)

// LargestFilesKept is how many of the biggest files a stats report retains.
const LargestFilesKept = 10

// FileDesc identifies one file in the largest-files ranking.
type FileDesc struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// DirStats summarizes a subtree without materializing it.
type DirStats struct {
	Path             string         `json:"path"`
	TotalFiles       int            `json:"totalFiles"`
	TotalDirectories int            `json:"totalDirectories"`
	TotalSizeBytes   int64          `json:"totalSizeBytes"`
	Extensions       map[string]int `json:"extensions"`
	LargestFiles     []FileDesc     `json:"largestFiles"`
}

// Stats walks the subtree and aggregates counts, sizes, an extension
// histogram, and the largest files. Reports are cached under their own key
// space with a shorter TTL than scans, since summaries go stale faster than
// their trees in practice.
//
// Unreadable subdirectories are skipped: the directory itself still counts,
// its contents contribute nothing.
func (s *Service) Stats(ctx context.Context, path string) (*DirStats, error) {
	root, err := s.resolveDir(path)
	if err != nil {
		return nil, err
	}

	key := s.fingerprint("stats", root, s.maxDepth)
	if s.store != nil {
		if value, ok := s.store.Get(key); ok {
			s.logger.Debug("stats cache hit", "path", root)

			return value.(*DirStats), nil
		}
	}

	start := time.Now()
	result, err := s.await(ctx, key, func() (any, error) {
		return s.statsFresh(ctx, root, key)
	})
	if err != nil {
		return nil, err
	}

	report := result.(*DirStats)
	s.logger.Info("stats complete",
		"path", root,
		"files", report.TotalFiles,
		"dirs", report.TotalDirectories,
		"duration", time.Since(start))

	return report, nil
}

func (s *Service) statsFresh(ctx context.Context, root, key string) (any, error) {
	detached := context.WithoutCancel(ctx)

	if err := s.acquireSlot(detached); err != nil {
		return nil, err
	}
	defer s.releaseSlot()

	report, err := s.collectStats(detached, root)
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		s.store.SetTTL(key, report, s.statsTTL)
	}

	return report, nil
}

// collectStats streams entries rather than assembling a tree: a summary
// never needs parent/child structure, only the flat sequence.
func (s *Service) collectStats(ctx context.Context, root string) (*DirStats, error) {
	report := &DirStats{
		Path:         root,
		Extensions:   map[string]int{},
		LargestFiles: []FileDesc{},
	}

	stream, err := s.StreamingScan(root, s.maxDepth)
	if err != nil {
		return nil, err
	}

	for {
		entry, ok := stream.Next()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.Path == root {
			continue
		}

		switch entry.Kind {
		case tree.KindDir:
			report.TotalDirectories++
		case tree.KindFile:
			report.TotalFiles++
			report.TotalSizeBytes += entry.Size
			if ext := strings.ToLower(filepath.Ext(entry.Path)); ext != "" {
				report.Extensions[ext]++
			}
			report.rank(entry.Path, entry.Size)
		}
	}
	if err := stream.Err(); err != nil {
		return nil, err
	}

	return report, nil
}

// rank keeps the largest-files list bounded while streaming.
func (r *DirStats) rank(path string, size int64) {
	r.LargestFiles = append(r.LargestFiles, FileDesc{
		Name: filepath.Base(path),
		Path: path,
		Size: size,
	})
	if len(r.LargestFiles) <= LargestFilesKept {
		sortBySize(r.LargestFiles)

		return
	}

	sortBySize(r.LargestFiles)
	r.LargestFiles = r.LargestFiles[:LargestFilesKept]
}

func sortBySize(files []FileDesc) {
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Size > files[j].Size
	})
}
