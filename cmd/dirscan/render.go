package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fatih/color"

	"github.com/maya/dirscan/internal/acquire"
	"github.com/maya/dirscan/internal/scan"
	"github.com/maya/dirscan/pkg/tree"
)

var (
	dirStyle    = color.New(color.FgBlue, color.Bold)
	fileStyle   = color.New(color.FgWhite)
	linkStyle   = color.New(color.FgCyan)
	markerStyle = color.New(color.FgYellow)
	errStyle    = color.New(color.FgRed)
	dimStyle    = color.New(color.Faint)
)

// printTree renders the assembled tree with box-drawing connectors.
func printTree(w io.Writer, root *tree.Node) {
	dirStyle.Fprintln(w, root.Name)
	printChildren(w, root, "")
}

func printChildren(w io.Writer, node *tree.Node, prefix string) {
	for i, child := range node.Children {
		connector, childPrefix := "├── ", prefix+"│   "
		if i == len(node.Children)-1 {
			connector, childPrefix = "└── ", prefix+"    "
		}

		fmt.Fprint(w, prefix+connector)
		printLabel(w, child)
		printChildren(w, child, childPrefix)
	}
}

func printLabel(w io.Writer, node *tree.Node) {
	switch node.Kind {
	case tree.KindDir:
		dirStyle.Fprintln(w, node.Name)
	case tree.KindSymlink:
		linkStyle.Fprintln(w, node.Name)
	case tree.KindTruncated:
		markerStyle.Fprintln(w, node.Name)
	case tree.KindPermissionError, tree.KindAccessError:
		errStyle.Fprintln(w, node.Name)
	default:
		fileStyle.Fprint(w, node.Name)
		if node.Size > 0 {
			dimStyle.Fprintf(w, " (%s)", humanSize(node.Size))
		}
		fmt.Fprintln(w)
	}
}

func printScanFooter(w io.Writer, root *tree.Node, elapsed time.Duration) {
	fmt.Fprintln(w)
	dimStyle.Fprintf(w, "%d files, %d directories in %s\n",
		root.FileCount, root.DirCount, elapsed.Round(time.Millisecond))
}

func printStats(w io.Writer, report *acquire.DirStats) {
	dirStyle.Fprintln(w, report.Path)
	fmt.Fprintf(w, "Files:       %d\n", report.TotalFiles)
	fmt.Fprintf(w, "Directories: %d\n", report.TotalDirectories)
	fmt.Fprintf(w, "Total size:  %s\n", humanSize(report.TotalSizeBytes))

	if len(report.Extensions) > 0 {
		fmt.Fprintln(w, "\nExtensions:")
		for _, ext := range sortedKeys(report.Extensions) {
			fmt.Fprintf(w, "  %-12s %d\n", ext, report.Extensions[ext])
		}
	}

	if len(report.LargestFiles) > 0 {
		fmt.Fprintln(w, "\nLargest files:")
		for _, file := range report.LargestFiles {
			fmt.Fprintf(w, "  %10s  %s\n", humanSize(file.Size), file.Path)
		}
	}
}

func printStream(w io.Writer, stream *scan.Stream) {
	for {
		entry, ok := stream.Next()
		if !ok {
			return
		}

		switch entry.Kind {
		case tree.KindDir:
			dirStyle.Fprintln(w, entry.Path)
		case tree.KindPermissionError, tree.KindAccessError:
			errStyle.Fprintln(w, entry.Path)
		default:
			fmt.Fprintln(w, entry.Path)
		}
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}

	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}
