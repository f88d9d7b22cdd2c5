package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"sync"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/chumtree/pkg/chumtree/config"
	"github.com/jamesainslie/chumtree/pkg/chumtree/exclude"
	"github.com/jamesainslie/chumtree/pkg/chumtree/manifest"
	"github.com/jamesainslie/chumtree/pkg/chumtree/output"
	"github.com/jamesainslie/chumtree/pkg/chumtree/tuner"
	"github.com/jamesainslie/chumtree/pkg/chumtree/types"
	"github.com/jamesainslie/chumtree/pkg/chumtree/walker"
)

// scanOptions is everything a scan needs once flags and config are merged.
type scanOptions struct {
	Root     string
	BaseDir  string
	Patterns []string
	Workers  int
	Output   string
	OutFile  string
	Progress bool
}

// runScan is the root command handler.
func runScan(cmd *cobra.Command, args []string) error {
	opts, err := buildScanOptions(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = scan(ctx, opts, os.Stdout, os.Stderr)
	if errors.Is(err, context.Canceled) {
		printInfo("Walk interrupted, no manifest written")
	}
	return err
}

// buildScanOptions merges positional arguments, flags and the config file.
// The root argument is walked with "~" expanded but recorded as typed.
func buildScanOptions(cmd *cobra.Command, args []string) (scanOptions, error) {
	root, err := config.ExpandPath(args[0])
	if err != nil {
		return scanOptions{}, fmt.Errorf("failed to expand path: %w", err)
	}

	flagPatterns, err := cmd.Flags().GetStringSlice("exclude")
	if err != nil {
		return scanOptions{}, err
	}
	noProgress, err := cmd.Flags().GetBool("no-progress")
	if err != nil {
		return scanOptions{}, err
	}
	outFile, err := cmd.Flags().GetString("out-file")
	if err != nil {
		return scanOptions{}, err
	}

	var configPatterns []string
	progress := config.DefaultProgress
	if cfg != nil {
		configPatterns = cfg.Exclude
		progress = cfg.Progress
	}

	workers := viper.GetInt("workers")
	if workers < 0 {
		return scanOptions{}, fmt.Errorf("%w: %d", config.ErrInvalidWorkers, workers)
	}

	return scanOptions{
		Root:     root,
		BaseDir:  args[0],
		Patterns: collectPatterns(configPatterns, flagPatterns, args[1:]),
		Workers:  workers,
		Output:   viper.GetString("output"),
		OutFile:  outFile,
		Progress: progress && !noProgress && !getQuiet(),
	}, nil
}

// collectPatterns concatenates pattern lists, dropping blanks. Duplicates
// are harmless; the manifest records the de-duplicated set.
func collectPatterns(lists ...[]string) []string {
	var out []string
	for _, list := range lists {
		for _, p := range list {
			if strings.TrimSpace(p) != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// scan walks opts.Root and writes the formatted manifest to stdout or
// opts.OutFile. Setup errors (bad pattern, unknown format, unusable root)
// return before anything is written.
func scan(ctx context.Context, opts scanOptions, stdout, stderr io.Writer) error {
	matcher, err := exclude.New(opts.Patterns)
	if err != nil {
		return err
	}

	formatter, err := output.Get(opts.Output)
	if err != nil {
		return err
	}

	workers := resolveWorkers(opts.Workers)
	printVerbose("Walking %s with %d workers, %d exclude patterns", opts.Root, workers, matcher.Len())

	var progress *progressLine
	wopts := walker.Options{
		Root:    opts.Root,
		BaseDir: opts.BaseDir,
		Exclude: matcher,
		Workers: workers,
	}
	if opts.Progress && isTerminal(stderr) {
		progress = newProgressLine(stderr)
		wopts.OnProgress = progress.update
	}

	m, err := walker.New(wopts).Walk(ctx)
	progress.finish()
	if err != nil {
		return err
	}

	if m.HasErrors() {
		logger.Warn("some entries could not be read", "root", opts.Root, "errors", len(m.Errors))
	}

	if opts.OutFile != "" {
		if err := writeOutFile(opts.OutFile, opts.Output, formatter, m); err != nil {
			return err
		}
		printVerbose("Manifest written to %s", opts.OutFile)
		return nil
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, m); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = stdout.Write(buf.Bytes())
	return err
}

// writeOutFile atomically writes the formatted manifest to path.
func writeOutFile(path, format string, formatter output.Formatter, m *manifest.Manifest) error {
	if format == "json" {
		return manifest.Write(path, m)
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, m); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return manifest.WriteFile(path, buf.Bytes())
}

// resolveWorkers turns the requested count into the walker's count,
// consulting the host when it is 0.
func resolveWorkers(requested int) int {
	if requested > 0 {
		return tuner.WorkersWithOverride(tuner.SystemResources{}, requested)
	}

	res, err := tuner.Detect()
	if err != nil {
		printVerbose("Failed to detect system resources, using defaults: %v", err)
		res = tuner.SystemResources{
			CPUCores:     runtime.NumCPU(),
			TotalRAM:     8 * types.GiB,
			AvailableRAM: 4 * types.GiB,
		}
	}

	printVerbose("System: %d CPUs, %s RAM, %s available",
		res.CPUCores,
		types.FormatSize(uint64(res.TotalRAM)),
		types.FormatSize(uint64(res.AvailableRAM)))

	return tuner.Workers(res)
}

// isTerminal reports whether w is a terminal file.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// progressLine redraws a single status line on a terminal. The walker
// calls update from several goroutines.
type progressLine struct {
	mu    sync.Mutex
	w     io.Writer
	width int
}

func newProgressLine(w io.Writer) *progressLine {
	return &progressLine{w: w}
}

func (p *progressLine) update(pr types.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()

	line := formatProgress(pr)
	pad := max(p.width-len(line), 0)
	fmt.Fprintf(p.w, "\r%s%s", line, strings.Repeat(" ", pad))
	p.width = len(line)
}

// finish ends the line. It is a no-op on a nil progressLine.
func (p *progressLine) finish() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.width > 0 {
		fmt.Fprintln(p.w)
		p.width = 0
	}
}

// formatProgress renders a progress snapshot as one line.
func formatProgress(p types.Progress) string {
	var sb strings.Builder
	if p.Done {
		sb.WriteString("Done: ")
	} else {
		sb.WriteString("Walking: ")
	}

	fmt.Fprintf(&sb, "%s dirs, %s symlinks, %s files, %s hashed",
		humanize.Comma(p.Dirs),
		humanize.Comma(p.Symlinks),
		humanize.Comma(p.Files),
		humanize.IBytes(p.HashedBytes))

	if p.TotalBytes > 0 && !p.Done {
		fmt.Fprintf(&sb, " of %s", humanize.IBytes(p.TotalBytes))
	}
	if p.Errors > 0 {
		fmt.Fprintf(&sb, ", %s errors", humanize.Comma(p.Errors))
	}
	return sb.String()
}
