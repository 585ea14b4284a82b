// Package main is the entry point for the dirscan command.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/maya/dirscan/internal/acquire"
	"github.com/maya/dirscan/internal/cache"
	"github.com/maya/dirscan/internal/config"
	scanerrors "github.com/maya/dirscan/pkg/errors"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hints := scanerrors.FormatSuggestions(err); hints != "" {
			fmt.Fprintln(os.Stderr, hints)
		}
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	var store *cache.Cache
	if !cfg.NoCache {
		store = cache.New(cfg.CacheCapacity, cfg.ScanTTL())
	}

	svc := acquire.New(cfg, store, logger)

	switch {
	case cfg.Stream:
		return runStream(svc, cfg)
	case cfg.Stats:
		return runStats(svc, cfg)
	default:
		return runScan(svc, cfg)
	}
}

func runScan(svc *acquire.Service, cfg *config.Config) error {
	start := time.Now()

	root, err := svc.Scan(context.Background(), acquire.ScanRequest{
		Path:     cfg.Path,
		MaxDepth: cfg.MaxDepth,
		Parallel: cfg.Parallel,
		NoCache:  cfg.NoCache,
	})
	if err != nil {
		return err
	}

	printTree(os.Stdout, root)
	printScanFooter(os.Stdout, root, time.Since(start))

	return nil
}

func runStats(svc *acquire.Service, cfg *config.Config) error {
	report, err := svc.Stats(context.Background(), cfg.Path)
	if err != nil {
		return err
	}

	printStats(os.Stdout, report)

	return nil
}

func runStream(svc *acquire.Service, cfg *config.Config) error {
	stream, err := svc.StreamingScan(cfg.Path, cfg.MaxDepth)
	if err != nil {
		return err
	}

	printStream(os.Stdout, stream)

	return stream.Err()
}
