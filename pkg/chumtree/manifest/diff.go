package manifest

import (
	"slices"
	"strings"
)

// EntryKind names the type of a manifest entry.
type EntryKind string

// Entry kinds.
const (
	KindDir     EntryKind = "dir"
	KindSymlink EntryKind = "symlink"
	KindFile    EntryKind = "file"
)

// Reason explains why an entry present in both manifests differs.
type Reason string

// Change reasons, checked in this order; the first that applies is reported.
const (
	ReasonType     Reason = "type"
	ReasonTarget   Reason = "target"
	ReasonSize       Reason = "size"
	ReasonUnreadable Reason = "unreadable"
	ReasonContent    Reason = "content"
	ReasonModified   Reason = "modified"
)

// CompareOptions controls Compare.
type CompareOptions struct {
	// IgnoreModTime treats files with equal content but different
	// modification times as unchanged.
	IgnoreModTime bool
}

// Change is one differing path. Reason is empty for added and removed entries.
type Change struct {
	Path   string    `json:"path" yaml:"path"`
	Kind   EntryKind `json:"kind" yaml:"kind"`
	Reason Reason    `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Diff lists the differences between an old and a new manifest,
// each list sorted by path.
//
// Errors carries the per-entry failures recorded by either manifest. A
// tree that could not be read completely cannot be shown to match, so
// those count as differences too.
type Diff struct {
	Added   []Change     `json:"added" yaml:"added"`
	Removed []Change     `json:"removed" yaml:"removed"`
	Changed []Change     `json:"changed" yaml:"changed"`
	Errors  []EntryError `json:"errors" yaml:"errors"`
}

// Empty reports whether the two manifests describe the same tree.
func (d *Diff) Empty() bool {
	return d.Len() == 0
}

// Len returns the total number of differences.
func (d *Diff) Len() int {
	return len(d.Added) + len(d.Removed) + len(d.Changed) + len(d.Errors)
}

type indexed struct {
	kind   EntryKind
	target string
	file   FileEntry
}

func index(m *Manifest) map[string]indexed {
	idx := make(map[string]indexed, len(m.Dirs)+len(m.Symlinks)+len(m.Files))
	for _, d := range m.Dirs {
		idx[d] = indexed{kind: KindDir}
	}
	for _, s := range m.Symlinks {
		idx[s.Path] = indexed{kind: KindSymlink, target: s.Target}
	}
	for _, f := range m.Files {
		idx[f.Path] = indexed{kind: KindFile, file: f}
	}
	return idx
}

// Compare reports how b differs from a. Timestamps, base directories and
// exclusion sets are not compared, so copies of a tree at different
// locations compare equal.
func Compare(a, b *Manifest, opts CompareOptions) *Diff {
	before := index(a)
	after := index(b)

	d := &Diff{
		Added:   []Change{},
		Removed: []Change{},
		Changed: []Change{},
		Errors:  mergeErrors(b.Errors, a.Errors),
	}

	for path, old := range before {
		cur, ok := after[path]
		if !ok {
			d.Removed = append(d.Removed, Change{Path: path, Kind: old.kind})
			continue
		}
		if reason := compareEntry(old, cur, opts); reason != "" {
			d.Changed = append(d.Changed, Change{Path: path, Kind: cur.kind, Reason: reason})
		}
	}

	for path, cur := range after {
		if _, ok := before[path]; !ok {
			d.Added = append(d.Added, Change{Path: path, Kind: cur.kind})
		}
	}

	byPath := func(x, y Change) int { return strings.Compare(x.Path, y.Path) }
	slices.SortFunc(d.Added, byPath)
	slices.SortFunc(d.Removed, byPath)
	slices.SortFunc(d.Changed, byPath)

	return d
}

func compareEntry(old, cur indexed, opts CompareOptions) Reason {
	if old.kind != cur.kind {
		return ReasonType
	}

	switch old.kind {
	case KindSymlink:
		if old.target != cur.target {
			return ReasonTarget
		}
	case KindFile:
		of, cf := old.file, cur.file
		if of.Len != cf.Len {
			return ReasonSize
		}
		if of.Error != "" || cf.Error != "" {
			return ReasonUnreadable
		}
		if of.Hash != cf.Hash {
			return ReasonContent
		}
		if !opts.IgnoreModTime && !of.Modified.Equal(cf.Modified.Time) {
			return ReasonModified
		}
	}

	return ""
}

// mergeErrors unions the error lists, keeping the first message seen for
// each path and kind, sorted like Manifest.Errors.
func mergeErrors(lists ...[]EntryError) []EntryError {
	type key struct {
		path string
		kind ErrorKind
	}
	seen := make(map[key]struct{})
	out := []EntryError{}
	for _, list := range lists {
		for _, e := range list {
			k := key{e.Path, e.Kind}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(x, y EntryError) int {
		if c := strings.Compare(x.Path, y.Path); c != 0 {
			return c
		}
		return strings.Compare(string(x.Kind), string(y.Kind))
	})
	return out
}
