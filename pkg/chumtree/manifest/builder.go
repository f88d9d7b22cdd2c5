package manifest

import (
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jamesainslie/chumtree/pkg/chumtree/types"
)

// Builder accumulates entries from concurrent walk callbacks.
// All Add methods are safe for concurrent use.
type Builder struct {
	baseDir  string
	patterns []string
	ts       time.Time

	mu       sync.Mutex
	dirs     []string
	symlinks []Symlink
	files    []FileEntry
	errs     []EntryError

	dirCount     atomic.Int64
	symlinkCount atomic.Int64
	fileCount    atomic.Int64
	errCount     atomic.Int64
	totalBytes   atomic.Uint64
	hashedBytes  atomic.Uint64
}

// NewBuilder creates a builder for a manifest of baseDir.
// ts should be captured once, when the invocation starts.
func NewBuilder(baseDir string, patterns []string, ts time.Time) *Builder {
	return &Builder{
		baseDir:  baseDir,
		patterns: normalizePatterns(patterns),
		ts:       ts,
	}
}

// AddDir records a directory.
func (b *Builder) AddDir(rel string) {
	b.mu.Lock()
	b.dirs = append(b.dirs, rel)
	b.mu.Unlock()
	b.dirCount.Add(1)
}

// AddSymlink records a symlink and its raw target.
func (b *Builder) AddSymlink(rel, target string) {
	b.mu.Lock()
	b.symlinks = append(b.symlinks, Symlink{Path: rel, Target: target})
	b.mu.Unlock()
	b.symlinkCount.Add(1)
}

// AddFile records a regular file. Its length counts towards the total even
// when the content could not be read.
func (b *Builder) AddFile(f FileEntry) {
	b.mu.Lock()
	b.files = append(b.files, f)
	b.mu.Unlock()
	b.fileCount.Add(1)
	b.totalBytes.Add(f.Len)
	if f.Unreadable() {
		b.errCount.Add(1)
	}
}

// AddError notes a failure that is not attached to a file entry.
func (b *Builder) AddError(e EntryError) {
	b.mu.Lock()
	b.errs = append(b.errs, e)
	b.mu.Unlock()
	b.errCount.Add(1)
}

// AddHashed counts n content bytes run through the hasher.
func (b *Builder) AddHashed(n int) {
	b.hashedBytes.Add(uint64(n))
}

// Progress returns the current counters.
func (b *Builder) Progress() types.Progress {
	return types.Progress{
		Dirs:        b.dirCount.Load(),
		Symlinks:    b.symlinkCount.Load(),
		Files:       b.fileCount.Load(),
		TotalBytes:  b.totalBytes.Load(),
		HashedBytes: b.hashedBytes.Load(),
		Errors:      b.errCount.Load(),
	}
}

// Finalize sorts every collection by path and computes the totals.
// The builder must not be used afterwards.
func (b *Builder) Finalize() *Manifest {
	b.mu.Lock()
	defer b.mu.Unlock()

	dirs := nonNil(b.dirs)
	slices.Sort(dirs)

	symlinks := nonNil(b.symlinks)
	slices.SortFunc(symlinks, func(x, y Symlink) int {
		return strings.Compare(x.Path, y.Path)
	})

	files := nonNil(b.files)
	slices.SortFunc(files, func(x, y FileEntry) int {
		return strings.Compare(x.Path, y.Path)
	})

	var total uint64
	for _, f := range files {
		total += f.Len
	}

	errs := b.errs
	slices.SortFunc(errs, func(x, y EntryError) int {
		if c := strings.Compare(x.Path, y.Path); c != 0 {
			return c
		}
		return strings.Compare(string(x.Kind), string(y.Kind))
	})

	return &Manifest{
		Timestamp:      NewTimestamp(b.ts),
		BaseDir:        b.baseDir,
		ExcludeSet:     b.patterns,
		FoundDirs:      uint64(len(dirs)),
		FoundSymlinks:  uint64(len(symlinks)),
		FoundFiles:     uint64(len(files)),
		FilesTotalSize: total,
		Dirs:           dirs,
		Symlinks:       symlinks,
		Files:          files,
		Errors:         errs,
	}
}

// normalizePatterns returns the non-empty patterns, sorted and de-duplicated.
func normalizePatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p != "" {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
