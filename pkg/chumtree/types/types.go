// Package types provides data types shared across chumtree packages: the
// progress snapshot reported while a tree is walked, size constants, and
// helpers for parsing and formatting byte counts.
package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// Progress is a point-in-time snapshot of a walk.
// Counters only ever grow during a single walk.
type Progress struct {
	// Dirs is the number of directories recorded so far.
	Dirs int64 `json:"dirs"`

	// Symlinks is the number of symlinks recorded so far.
	Symlinks int64 `json:"symlinks"`

	// Files is the number of regular files recorded so far.
	Files int64 `json:"files"`

	// TotalBytes is the sum of the lengths of recorded files.
	TotalBytes uint64 `json:"total_bytes"`

	// HashedBytes is the number of content bytes run through the hasher.
	HashedBytes uint64 `json:"hashed_bytes"`

	// Errors is the number of per-entry errors noted so far.
	Errors int64 `json:"errors"`

	// CurrentPath is the relative path most recently visited.
	CurrentPath string `json:"current_path"`

	// Done is set on the final report, after the walk has finished.
	Done bool `json:"done,omitempty"`
}

// Found returns the total number of entries recorded.
func (p Progress) Found() int64 {
	return p.Dirs + p.Symlinks + p.Files
}

// ErrInvalidSize indicates that the size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ErrNegativeSize indicates that a negative size value was provided.
var ErrNegativeSize = errors.New("size cannot be negative")

// ParseSize parses a human-readable size such as "512", "64KiB", "10MB" or "1.5 GiB".
// SI suffixes (KB, MB) are powers of 1000 and IEC suffixes (KiB, MiB) powers of 1024,
// following go-humanize.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}
	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}
	if n > uint64(1<<63-1) {
		return 0, fmt.Errorf("%w: %q is too large", ErrInvalidSize, s)
	}
	return int64(n), nil
}

// FormatSize converts a size in bytes to a human-readable string using IEC units.
//
// Examples:
//   - FormatSize(0) returns "0 B"
//   - FormatSize(1024) returns "1.0 KiB"
//   - FormatSize(1536*1024) returns "1.5 MiB"
func FormatSize(bytes uint64) string {
	return humanize.IBytes(bytes)
}
