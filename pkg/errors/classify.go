package errors

import (
	"context"
	"errors"
	"io/fs"
	"os"
)

// Classify converts an OS-level error from validating or listing a scan root
// into a typed ScanError. It prefers errno checks and falls back to the
// unknown category for anything it cannot place, so callers always get a
// ScanError back for a non-nil input.
func Classify(err error, path string) *ScanError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err):
		return NewScanError(ErrPathNotFound, CategoryPath, path, "")
	case errors.Is(err, fs.ErrPermission) || os.IsPermission(err):
		return NewScanError(ErrPermissionDenied, CategoryPermission, path, "")
	case errors.Is(err, context.DeadlineExceeded):
		return NewScanError(ErrScanTimeout, CategoryTimeout, path, err.Error())
	default:
		return NewScanError(err, CategoryUnknown, path, "")
	}
}

func suggestionsFor(category ErrorCategory, path string) []string {
	switch category {
	case CategoryPath:
		suggestions := []string{
			"Verify the path exists and is spelled correctly",
		}
		if path != "" {
			suggestions = append(suggestions, "Check if the path exists: "+path)
			suggestions = append(suggestions, "Ensure all parent directories exist for "+path)
		}

		return suggestions
	case CategoryPermission:
		suggestions := []string{
			"Ensure you have read permission for the directory",
		}
		if path != "" {
			suggestions = append(suggestions, "Check permissions with 'ls -la "+path+"'")
		}
		suggestions = append(suggestions, "Try running with appropriate permissions or as a privileged user")

		return suggestions
	case CategoryTimeout:
		return []string{
			"Retry with a smaller max depth",
			"Add exclusion patterns for large subtrees (e.g. node_modules)",
			"Increase the caller's deadline for large directory trees",
		}
	case CategoryCache:
		return []string{
			"The scan will proceed without caching",
			"Check cache capacity and TTL settings if this persists",
		}
	default:
		return []string{
			"Check the error message for more details",
			"Verify file and directory permissions",
		}
	}
}
