package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jamesainslie/chumtree/pkg/chumtree/manifest"
	"github.com/jamesainslie/chumtree/pkg/chumtree/output"
	"github.com/spf13/cobra"
)

// ErrManifestsDiffer is returned by diff when the manifests describe
// different trees, so the command exits non-zero.
var ErrManifestsDiffer = errors.New("manifests differ")

var diffCmd = &cobra.Command{
	Use:   "diff <old.json> <new.json>",
	Short: "Compare two manifests",
	Long: `Compare two JSON manifests and list added, removed and changed entries.

Entries are matched by path. A changed entry shows the first difference
found: type, target, size, unreadable, content or modified. Read and
traversal errors recorded in either manifest are listed too, since an
incompletely read tree cannot be shown to match.

The command exits with status 0 when the trees match and 1 otherwise.`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().Bool("ignore-mtime", false, "ignore modification time differences")
	rootCmd.AddCommand(diffCmd)
}

// runDiff compares the two manifests named on the command line.
func runDiff(cmd *cobra.Command, args []string) error {
	ignoreMtime, err := cmd.Flags().GetBool("ignore-mtime")
	if err != nil {
		return err
	}
	return diffFiles(os.Stdout, args[0], args[1], manifest.CompareOptions{IgnoreModTime: ignoreMtime})
}

// diffFiles writes the differences between two manifest files to w.
func diffFiles(w io.Writer, oldPath, newPath string, opts manifest.CompareOptions) error {
	a, err := manifest.Read(oldPath)
	if err != nil {
		return err
	}
	b, err := manifest.Read(newPath)
	if err != nil {
		return err
	}

	if a.BaseDir != b.BaseDir {
		printVerbose("Comparing different base directories: %s and %s", a.BaseDir, b.BaseDir)
	}

	d := manifest.Compare(a, b, opts)
	logger.Debug("manifests compared", "old", oldPath, "new", newPath,
		"added", len(d.Added), "removed", len(d.Removed), "changed", len(d.Changed), "errors", len(d.Errors))

	var buf bytes.Buffer
	if err := output.FormatDiff(&buf, d); err != nil {
		return fmt.Errorf("failed to format diff: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return err
	}

	if !d.Empty() {
		return fmt.Errorf("%w: %d differences", ErrManifestsDiffer, d.Len())
	}
	return nil
}
