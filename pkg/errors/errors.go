// Package errors provides the typed error taxonomy for directory scans.
//
// Scan-level failures (a root that does not exist, is not a directory, or
// cannot be listed at all) are surfaced as a ScanError wrapping one of the
// sentinel errors below, so callers can branch with errors.Is while still
// getting a category and actionable suggestions for display. Entry-level
// failures never reach this package: the traversal engine records them as
// error-kind nodes and continues.
//
// Basic usage:
//
//	node, err := svc.Scan(ctx, path, opts)
//	if errors.Is(err, dirscanerrors.ErrPathNotFound) {
//	    // render a "no such directory" page
//	}
//	var scanErr *dirscanerrors.ScanError
//	if errors.As(err, &scanErr) {
//	    fmt.Println(dirscanerrors.FormatSuggestions(scanErr))
//	}
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Exported constants.
const (
	CategoryCache      ErrorCategory = "cache"
	CategoryPath       ErrorCategory = "path"
	CategoryPermission ErrorCategory = "permission"
	CategoryTimeout    ErrorCategory = "timeout"
	CategoryUnknown    ErrorCategory = "unknown"
)

// Exported variables.
var (
	// ErrNotADirectory indicates the scan root exists but is not a directory.
	ErrNotADirectory = errors.New("path is not a directory")
	// ErrPathNotFound indicates the scan root does not exist.
	ErrPathNotFound = errors.New("path not found")
	// ErrPermissionDenied indicates the scan root itself cannot be listed.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrScanTimeout indicates a caller-imposed deadline elapsed mid-scan.
	ErrScanTimeout = errors.New("scan timed out")
)

// ErrorCategory represents the type of failure that aborted a scan.
type ErrorCategory string

// ScanError is a scan-level failure enriched with a category, the affected
// path, and actionable suggestions for the user.
type ScanError struct {
	sentinel    error
	category    ErrorCategory
	suggestions []string
	path        string
	detail      string
}

// NewScanError creates a ScanError wrapping the given sentinel.
// The detail string is appended to the message when non-empty.
func NewScanError(sentinel error, category ErrorCategory, path, detail string) *ScanError {
	return &ScanError{
		sentinel:    sentinel,
		category:    category,
		suggestions: suggestionsFor(category, path),
		path:        path,
		detail:      detail,
	}
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	msg := e.sentinel.Error()
	if e.path != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.path)
	}
	if e.detail != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.detail)
	}

	return msg
}

// Unwrap exposes the sentinel for errors.Is / errors.As chains.
func (e *ScanError) Unwrap() error {
	return e.sentinel
}

// Category returns the error category.
func (e *ScanError) Category() ErrorCategory {
	return e.category
}

// AffectedPath returns the path that caused the failure.
func (e *ScanError) AffectedPath() string {
	return e.path
}

// Suggestions returns the list of actionable suggestions.
func (e *ScanError) Suggestions() []string {
	return e.suggestions
}

// FormatSuggestions formats the suggestions from a ScanError as a bulleted
// list for display. Returns empty string if the error is nil, is not a
// ScanError, or has no suggestions.
func FormatSuggestions(err error) string {
	var scanErr *ScanError
	if err == nil || !errors.As(err, &scanErr) {
		return ""
	}

	suggestions := scanErr.Suggestions()
	if len(suggestions) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, suggestion := range suggestions {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString("  • ")
		builder.WriteString(suggestion)
	}

	return builder.String()
}
