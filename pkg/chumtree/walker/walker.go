// Package walker traverses a directory tree with fastwalk and records every
// directory, symlink and regular file into a manifest, hashing file contents
// as it goes.
package walker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/jamesainslie/chumtree/pkg/chumtree/hasher"
	"github.com/jamesainslie/chumtree/pkg/chumtree/manifest"
	"github.com/jamesainslie/chumtree/pkg/chumtree/normalize"
)

var (
	// ErrInvalidRoot is returned when the root is missing, is not a
	// directory, or cannot be listed. No manifest is produced.
	ErrInvalidRoot = errors.New("invalid root directory")

	// ErrTraversal matches every *TraversalError.
	ErrTraversal = errors.New("directory traversal failed")
)

// TraversalError reports a directory that could not be listed.
type TraversalError struct {
	Path string
	Err  error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("cannot list %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *TraversalError) Unwrap() error { return e.Err }

// Is reports ErrTraversal as a match.
func (e *TraversalError) Is(target error) bool { return target == ErrTraversal }

// Walker produces a manifest of one directory tree.
// A Walker is meant for a single Walk call.
type Walker struct {
	opts    Options
	builder *manifest.Builder

	currentPath  atomic.Value
	lastProgress atomic.Int64
}

// New creates a Walker. Options are validated when Walk is called.
func New(opts Options) *Walker {
	w := &Walker{opts: opts}
	w.currentPath.Store("")
	return w
}

// Walk traverses the tree and returns the finished manifest.
// Per-entry failures are recorded in the manifest and do not stop the walk.
// An unusable root, or cancellation of ctx, returns an error and no manifest.
func (w *Walker) Walk(ctx context.Context) (*manifest.Manifest, error) {
	if err := w.opts.Validate(); err != nil {
		return nil, err
	}
	if err := checkRoot(w.opts.Root); err != nil {
		return nil, err
	}

	started := w.opts.Started
	if started.IsZero() {
		started = time.Now()
	}
	w.builder = manifest.NewBuilder(w.opts.BaseDir, w.opts.Exclude.Patterns(), started)

	log := w.opts.Logger
	log.Debug("walk started", "root", w.opts.Root, "workers", w.opts.Workers, "patterns", w.opts.Exclude.Len())
	w.reportProgressForce(false)

	conf := fastwalk.Config{
		Follow:     false,
		NumWorkers: w.opts.Workers,
	}

	err := fastwalk.Walk(&conf, w.opts.Root, w.visit(ctx))
	if ctxErr := ctx.Err(); ctxErr != nil {
		log.Info("walk cancelled", "root", w.opts.Root)
		return nil, ctxErr
	}
	if err != nil {
		if errors.Is(err, ErrTraversal) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRoot, err)
		}
		return nil, err
	}

	m := w.builder.Finalize()
	w.currentPath.Store("")
	w.reportProgressForce(true)

	log.Info("walk finished",
		"root", w.opts.Root,
		"dirs", m.FoundDirs,
		"symlinks", m.FoundSymlinks,
		"files", m.FoundFiles,
		"bytes", m.FilesTotalSize,
		"errors", w.builder.Progress().Errors,
	)

	return m, nil
}

// checkRoot verifies that root exists, is a directory and can be listed.
func checkRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, root)
	}

	f, err := os.Open(root)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRoot, &TraversalError{Path: root, Err: err})
	}
	defer f.Close()

	if _, err := f.ReadDir(1); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", ErrInvalidRoot, &TraversalError{Path: root, Err: err})
	}
	return nil
}

// visit returns the fastwalk callback. It runs on up to Workers goroutines at once.
func (w *Walker) visit(ctx context.Context) fs.WalkDirFunc {
	return func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, relErr := normalize.RelPath(w.opts.Root, path)
		if relErr != nil {
			return relErr
		}

		// A second call for a directory carries its listing error.
		if err != nil {
			if rel == "" {
				return &TraversalError{Path: path, Err: err}
			}
			w.noteError(rel, manifest.KindTraversal, err)
			return nil
		}

		if rel == "" {
			return nil
		}

		if w.opts.Exclude.IsExcluded(rel) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		w.currentPath.Store(rel)

		typ := d.Type()
		switch {
		case typ.IsDir():
			w.builder.AddDir(rel)
		case typ&fs.ModeSymlink != 0:
			w.recordSymlink(path, rel)
		case typ.IsRegular():
			w.recordFile(path, rel, d)
		default:
			w.opts.Logger.Debug("skipping special file", "path", rel, "type", typ.String())
		}

		w.reportProgress()
		return nil
	}
}

// recordSymlink stores the link with its literal target.
func (w *Walker) recordSymlink(path, rel string) {
	target, err := os.Readlink(path)
	if err != nil {
		w.noteError(rel, manifest.KindRead, err)
		return
	}
	w.builder.AddSymlink(rel, target)
}

// recordFile stats and hashes a regular file. A file whose content cannot be
// read is still recorded, with its error in place of a hash.
func (w *Walker) recordFile(path, rel string, d fs.DirEntry) {
	info, err := d.Info()
	if err != nil {
		w.noteError(rel, manifest.KindRead, err)
		return
	}

	entry := manifest.FileEntry{
		Path:     rel,
		Len:      uint64(info.Size()),
		Modified: manifest.NewTimestamp(info.ModTime()),
	}

	digest, err := hasher.HashFile(path, func(n int) {
		w.builder.AddHashed(n)
		w.reportProgress()
	})
	if err != nil {
		entry.Error = describe(err)
		w.opts.Logger.Warn("cannot hash file", "path", rel, "err", err)
	} else {
		entry.Hash = digest.String()
	}

	w.builder.AddFile(entry)
}

// noteError records a failure that has no file entry to carry it.
func (w *Walker) noteError(rel string, kind manifest.ErrorKind, err error) {
	w.opts.Logger.Warn("entry skipped", "path", rel, "kind", kind, "err", err)
	w.builder.AddError(manifest.EntryError{
		Path:  rel,
		Kind:  kind,
		Error: describe(err),
	})
}

// describe renders err without the absolute path, so manifests of the same
// tree at different locations carry identical messages.
func describe(err error) string {
	var re *hasher.ReadError
	if errors.As(err, &re) && re.Offset > 0 {
		return fmt.Sprintf("read failed at offset %d: %s", re.Offset, describe(re.Err))
	}
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Op + ": " + pe.Err.Error()
	}
	var le *os.LinkError
	if errors.As(err, &le) {
		return le.Op + ": " + le.Err.Error()
	}
	return err.Error()
}

// reportProgress calls the progress callback if configured.
// Calls closer together than ProgressInterval are dropped.
func (w *Walker) reportProgress() {
	if w.opts.OnProgress == nil {
		return
	}

	now := time.Now().UnixNano()
	last := w.lastProgress.Load()
	if now-last < int64(w.opts.ProgressInterval) {
		return
	}
	if !w.lastProgress.CompareAndSwap(last, now) {
		return
	}

	w.sendProgress(false)
}

// reportProgressForce calls the progress callback immediately, bypassing the throttle.
func (w *Walker) reportProgressForce(done bool) {
	if w.opts.OnProgress == nil {
		return
	}
	w.lastProgress.Store(time.Now().UnixNano())
	w.sendProgress(done)
}

func (w *Walker) sendProgress(done bool) {
	p := w.builder.Progress()
	p.CurrentPath, _ = w.currentPath.Load().(string)
	p.Done = done
	w.opts.OnProgress(p)
}
