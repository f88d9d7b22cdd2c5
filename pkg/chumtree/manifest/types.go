// Package manifest defines the chumtree manifest, the builder that assembles it
// during a walk, its canonical JSON encoding, and comparison of two manifests.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// TimeFormat is the layout of every timestamp in a manifest: RFC 3339 in UTC
// with all nine fractional digits, so equal instants always render equally.
const TimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// ErrorKind classifies a per-entry failure.
type ErrorKind string

// Per-entry error kinds.
const (
	// KindRead marks an entry whose content or link target could not be read.
	KindRead ErrorKind = "read"
	// KindTraversal marks a directory that could not be listed.
	KindTraversal ErrorKind = "traversal"
)

// ErrMalformedSymlink is returned when a symlink pair cannot be decoded.
var ErrMalformedSymlink = errors.New("symlink entry must be a [path, target] pair")

// Timestamp is a UTC instant rendered with TimeFormat.
type Timestamp struct {
	time.Time
}

// NewTimestamp converts t to UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

// String renders the timestamp with TimeFormat.
func (ts Timestamp) String() string {
	return ts.UTC().Format(TimeFormat)
}

// MarshalJSON implements json.Marshaler.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.String())
}

// UnmarshalJSON accepts any RFC 3339 timestamp.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	*ts = NewTimestamp(t)
	return nil
}

// MarshalYAML renders the timestamp as a plain string.
func (ts Timestamp) MarshalYAML() (interface{}, error) {
	return ts.String(), nil
}

// Symlink records a link and its literal, unresolved target.
type Symlink struct {
	Path   string
	Target string
}

// MarshalJSON encodes the symlink as a [path, target] pair.
func (s Symlink) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{s.Path, s.Target})
}

// UnmarshalJSON decodes a [path, target] pair.
func (s *Symlink) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedSymlink, err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("%w: got %d elements", ErrMalformedSymlink, len(pair))
	}
	s.Path, s.Target = pair[0], pair[1]
	return nil
}

// MarshalYAML encodes the symlink as a two-element sequence.
func (s Symlink) MarshalYAML() (interface{}, error) {
	return []string{s.Path, s.Target}, nil
}

// FileEntry describes one regular file.
type FileEntry struct {
	// Path is the normalized path relative to the base directory.
	Path string `json:"path" yaml:"path"`

	// Len is the file length in bytes.
	Len uint64 `json:"len" yaml:"len"`

	// Modified is the last modification time.
	Modified Timestamp `json:"modified" yaml:"modified"`

	// Hash is the block digest, empty for zero-length or unreadable files.
	Hash string `json:"hash" yaml:"hash"`

	// Error is set when the content could not be read; Hash is empty then.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Unreadable reports whether hashing the file failed.
func (f FileEntry) Unreadable() bool {
	return f.Error != ""
}

// EntryError notes a per-entry failure that did not stop the walk.
type EntryError struct {
	Path  string    `json:"path" yaml:"path"`
	Kind  ErrorKind `json:"kind" yaml:"kind"`
	Error string    `json:"error" yaml:"error"`
}

// Manifest is the complete, sorted description of a tree.
// Field order here is the serialization order.
type Manifest struct {
	Timestamp      Timestamp    `json:"timestamp" yaml:"timestamp"`
	BaseDir        string       `json:"base_dir" yaml:"base_dir"`
	ExcludeSet     []string     `json:"exclude_set" yaml:"exclude_set"`
	FoundDirs      uint64       `json:"found_dirs" yaml:"found_dirs"`
	FoundSymlinks  uint64       `json:"found_symlinks" yaml:"found_symlinks"`
	FoundFiles     uint64       `json:"found_files" yaml:"found_files"`
	FilesTotalSize uint64       `json:"files_total_size" yaml:"files_total_size"`
	Dirs           []string     `json:"dirs" yaml:"dirs"`
	Symlinks       []Symlink    `json:"symlinks" yaml:"symlinks"`
	Files          []FileEntry  `json:"files" yaml:"files"`
	Errors         []EntryError `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// HasErrors reports whether any entry failed during the walk.
func (m *Manifest) HasErrors() bool {
	if len(m.Errors) > 0 {
		return true
	}
	for _, f := range m.Files {
		if f.Unreadable() {
			return true
		}
	}
	return false
}
