// Package config handles application configuration and command-line argument
// parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/alexflint/go-arg"
)

// DefaultExcludes is the baseline exclusion set applied to every scan unless
// disabled. Hidden entries (leading dot) are always excluded regardless.
var DefaultExcludes = []string{
	".git",
	"__pycache__",
	".DS_Store",
	"node_modules",
	".venv",
	"venv",
	"env",
	"build",
	"dist",
	"target",
	"*.egg-info",
	"cache",
	".cache",
	"secrets",
	".idea",
	".vscode",
	".trunk",
	".mypy_cache",
	".pytest_cache",
	".ruff_cache",
}

// Exported constants.
const (
	// DefaultMaxDepth is the traversal depth bound when none is given.
	DefaultMaxDepth = 10
	// DefaultWorkers is the worker-pool size for concurrent scans.
	DefaultWorkers = 4
	// DefaultCacheTTLSeconds is how long assembled trees stay cached.
	DefaultCacheTTLSeconds = 300
	// DefaultStatsTTLSeconds is the shorter TTL for directory statistics,
	// which go stale faster and are cheaper to recompute.
	DefaultStatsTTLSeconds = 60
	// DefaultCacheCapacity is the maximum number of cached results.
	DefaultCacheCapacity = 1000
)

// Config holds the application configuration.
type Config struct {
	Path          string   `arg:"positional" help:"Directory to scan"`
	MaxDepth      int      `arg:"-d,--depth,env:DIRSCAN_MAX_DEPTH" default:"10" help:"Maximum traversal depth"`
	Parallel      bool     `arg:"-p,--parallel" help:"Use the concurrent traversal strategy"`
	Workers       int      `arg:"-w,--workers,env:DIRSCAN_WORKERS" default:"4" help:"Worker pool size for concurrent scans"`
	Exclude       []string `arg:"-x,--exclude,separate" help:"Additional exclusion pattern (repeatable; * and ? wildcards)"`
	NoDefaults    bool     `arg:"--no-default-excludes" help:"Disable the built-in exclusion set"`
	NoCache       bool     `arg:"--no-cache" help:"Bypass the result cache"`
	CacheCapacity int      `arg:"--cache-capacity,env:DIRSCAN_CACHE_CAPACITY" default:"1000" help:"Maximum cached results"`
	CacheTTL      int      `arg:"--cache-ttl,env:DIRSCAN_CACHE_TTL" default:"300" help:"Scan cache TTL in seconds"`
	StatsTTL      int      `arg:"--stats-ttl,env:DIRSCAN_STATS_TTL" default:"60" help:"Stats cache TTL in seconds"`
	Stats         bool     `arg:"--stats" help:"Print directory statistics instead of the tree"`
	Stream        bool     `arg:"--stream" help:"Stream entries as they are discovered instead of building a tree"`
}

// Description returns the program description for go-arg.
func (Config) Description() string {
	return "Turns a filesystem subtree into a typed, cached directory tree"
}

// Version returns the version string for go-arg.
func (Config) Version() string {
	return "dirscan 1.0.0"
}

// ParseFlags parses command-line flags and returns configuration.
func ParseFlags() (*Config, error) {
	cfg := &Config{
		MaxDepth:      DefaultMaxDepth,
		Workers:       DefaultWorkers,
		CacheCapacity: DefaultCacheCapacity,
		CacheTTL:      DefaultCacheTTLSeconds,
		StatsTTL:      DefaultStatsTTLSeconds,
	}

	arg.MustParse(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the parsed configuration for usability.
func (cfg *Config) Validate() error {
	if cfg.Path == "" {
		return fmt.Errorf("a directory path is required")
	}

	info, err := os.Stat(cfg.Path)
	if os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", cfg.Path)
	}
	if err != nil {
		return fmt.Errorf("cannot access path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", cfg.Path)
	}

	if cfg.MaxDepth < 0 {
		return fmt.Errorf("depth must be >= 0, got %d", cfg.MaxDepth)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", cfg.Workers)
	}

	return nil
}

// ExcludePatterns returns the effective exclusion set: the built-in defaults
// (unless disabled) plus any extra patterns.
func (cfg *Config) ExcludePatterns() []string {
	patterns := make([]string, 0, len(DefaultExcludes)+len(cfg.Exclude))
	if !cfg.NoDefaults {
		patterns = append(patterns, DefaultExcludes...)
	}
	patterns = append(patterns, cfg.Exclude...)

	return patterns
}

// ScanTTL returns the scan cache TTL as a duration.
func (cfg *Config) ScanTTL() time.Duration {
	return time.Duration(cfg.CacheTTL) * time.Second
}

// StatsCacheTTL returns the statistics cache TTL as a duration.
func (cfg *Config) StatsCacheTTL() time.Duration {
	return time.Duration(cfg.StatsTTL) * time.Second
}
