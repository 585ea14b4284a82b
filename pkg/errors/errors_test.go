package errors_test

import (
	"context"
	stderrors "errors"
	"io/fs"
	"strings"
	"testing"

	scanerrors "github.com/maya/dirscan/pkg/errors"
)

func TestScanErrorMessageAndUnwrap(t *testing.T) {
	t.Parallel()

	err := scanerrors.NewScanError(scanerrors.ErrPathNotFound, scanerrors.CategoryPath, "/tmp/gone", "")

	if !stderrors.Is(err, scanerrors.ErrPathNotFound) {
		t.Error("errors.Is did not match the wrapped sentinel")
	}
	if got := err.Error(); !strings.Contains(got, "/tmp/gone") {
		t.Errorf("Error() = %q, want the affected path included", got)
	}
	if err.Category() != scanerrors.CategoryPath {
		t.Errorf("Category() = %q, want path", err.Category())
	}
	if err.AffectedPath() != "/tmp/gone" {
		t.Errorf("AffectedPath() = %q, want /tmp/gone", err.AffectedPath())
	}
}

func TestScanErrorDetailAppended(t *testing.T) {
	t.Parallel()

	err := scanerrors.NewScanError(scanerrors.ErrScanTimeout, scanerrors.CategoryTimeout, "/data", "deadline 5s")

	if got := err.Error(); !strings.Contains(got, "deadline 5s") {
		t.Errorf("Error() = %q, want detail included", got)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		input        error
		wantSentinel error
		wantCategory scanerrors.ErrorCategory
	}{
		{"not exist", fs.ErrNotExist, scanerrors.ErrPathNotFound, scanerrors.CategoryPath},
		{"permission", fs.ErrPermission, scanerrors.ErrPermissionDenied, scanerrors.CategoryPermission},
		{"deadline", context.DeadlineExceeded, scanerrors.ErrScanTimeout, scanerrors.CategoryTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := scanerrors.Classify(tt.input, "/some/path")
			if !stderrors.Is(err, tt.wantSentinel) {
				t.Errorf("Classify(%v) sentinel = %v, want %v", tt.input, err.Unwrap(), tt.wantSentinel)
			}
			if err.Category() != tt.wantCategory {
				t.Errorf("Classify(%v) category = %q, want %q", tt.input, err.Category(), tt.wantCategory)
			}
		})
	}
}

func TestClassifyUnknownKeepsOriginal(t *testing.T) {
	t.Parallel()

	original := stderrors.New("disk on fire")

	err := scanerrors.Classify(original, "/some/path")
	if !stderrors.Is(err, original) {
		t.Error("unknown classification lost the original error")
	}
	if err.Category() != scanerrors.CategoryUnknown {
		t.Errorf("Category() = %q, want unknown", err.Category())
	}
}

func TestClassifyNil(t *testing.T) {
	t.Parallel()

	if err := scanerrors.Classify(nil, "/x"); err != nil {
		t.Errorf("Classify(nil) = %v, want nil", err)
	}
}

func TestFormatSuggestions(t *testing.T) {
	t.Parallel()

	err := scanerrors.NewScanError(scanerrors.ErrPermissionDenied, scanerrors.CategoryPermission, "/locked", "")

	formatted := scanerrors.FormatSuggestions(err)
	if !strings.Contains(formatted, "•") {
		t.Errorf("FormatSuggestions() = %q, want bulleted list", formatted)
	}
	if !strings.Contains(formatted, "/locked") {
		t.Errorf("FormatSuggestions() = %q, want path-specific hint", formatted)
	}

	if got := scanerrors.FormatSuggestions(nil); got != "" {
		t.Errorf("FormatSuggestions(nil) = %q, want empty", got)
	}
	if got := scanerrors.FormatSuggestions(stderrors.New("plain")); got != "" {
		t.Errorf("FormatSuggestions(plain) = %q, want empty", got)
	}
}
