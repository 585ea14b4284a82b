package acquire_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/maya/dirscan/internal/acquire"
	scanerrors "github.com/maya/dirscan/pkg/errors"
)

func TestStatsAggregatesSubtree(t *testing.T) {
	t.Parallel()
	root := scanFixture(t)
	svc, _ := newTestService(t, root)

	report, err := svc.Stats(context.Background(), root)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}

	if report.TotalFiles != 2 {
		t.Errorf("TotalFiles = %d, want 2 (node_modules excluded)", report.TotalFiles)
	}
	if report.TotalDirectories != 1 {
		t.Errorf("TotalDirectories = %d, want 1", report.TotalDirectories)
	}
	if report.TotalSizeBytes != 300 {
		t.Errorf("TotalSizeBytes = %d, want 300", report.TotalSizeBytes)
	}
	if got := report.Extensions[".py"]; got != 2 {
		t.Errorf("Extensions[.py] = %d, want 2", got)
	}
	if _, ok := report.Extensions[".js"]; ok {
		t.Error("excluded directory contributed to the extension histogram")
	}
}

func TestStatsRanksLargestFiles(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	// 15 files of increasing size; only the 10 biggest should be kept.
	for i := 1; i <= 15; i++ {
		writeBytes(t, filepath.Join(root, "f"+strconv.Itoa(i)+".dat"), i*10)
	}

	svc, _ := newTestService(t, root)

	report, err := svc.Stats(context.Background(), root)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}

	if len(report.LargestFiles) != acquire.LargestFilesKept {
		t.Fatalf("LargestFiles has %d entries, want %d", len(report.LargestFiles), acquire.LargestFilesKept)
	}
	if report.LargestFiles[0].Name != "f15.dat" || report.LargestFiles[0].Size != 150 {
		t.Errorf("largest = %+v, want f15.dat at 150 bytes", report.LargestFiles[0])
	}
	for i := 1; i < len(report.LargestFiles); i++ {
		if report.LargestFiles[i].Size > report.LargestFiles[i-1].Size {
			t.Errorf("LargestFiles not descending at index %d", i)
		}
	}
	if report.LargestFiles[len(report.LargestFiles)-1].Size != 60 {
		t.Errorf("smallest kept = %d bytes, want 60", report.LargestFiles[len(report.LargestFiles)-1].Size)
	}
}

func TestStatsUsesItsOwnCacheKeySpace(t *testing.T) {
	t.Parallel()
	root := scanFixture(t)
	svc, _ := newTestService(t, root)

	if _, err := svc.Scan(context.Background(), acquire.ScanRequest{Path: root, MaxDepth: -1}); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if _, err := svc.Stats(context.Background(), root); err != nil {
		t.Fatalf("Stats: %v", err)
	}

	// Scan result and stats report live under distinct keys.
	if size := svc.CacheStats().Size; size != 2 {
		t.Errorf("cache size = %d, want 2", size)
	}

	first, err := svc.Stats(context.Background(), root)
	if err != nil {
		t.Fatalf("second Stats: %v", err)
	}
	second, err := svc.Stats(context.Background(), root)
	if err != nil {
		t.Fatalf("third Stats: %v", err)
	}
	if first != second {
		t.Error("repeated Stats calls did not share the cached report")
	}
}

func TestStatsIgnoresUnreadableSubdirContents(t *testing.T) {
	t.Parallel()
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	root := t.TempDir()

	writeBytes(t, filepath.Join(root, "visible.txt"), 10)
	locked := filepath.Join(root, "locked")
	if err := os.MkdirAll(locked, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeBytes(t, filepath.Join(locked, "hidden.txt"), 99)
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	svc, _ := newTestService(t, root)

	report, err := svc.Stats(context.Background(), root)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}

	if report.TotalFiles != 1 {
		t.Errorf("TotalFiles = %d, want 1", report.TotalFiles)
	}
	if report.TotalDirectories != 1 {
		t.Errorf("TotalDirectories = %d, want 1 (the unreadable dir itself counts)", report.TotalDirectories)
	}
	if report.TotalSizeBytes != 10 {
		t.Errorf("TotalSizeBytes = %d, want 10", report.TotalSizeBytes)
	}
}

func TestStatsMissingPath(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t, t.TempDir())

	_, err := svc.Stats(context.Background(), filepath.Join(t.TempDir(), "gone"))
	if !errors.Is(err, scanerrors.ErrPathNotFound) {
		t.Errorf("error = %v, want ErrPathNotFound", err)
	}
}
