// Package normalize turns filesystem names into the canonical form used in
// manifests: Unicode NFC, with "/" separating path segments on every platform.
//
// macOS filesystems hand back decomposed (NFD) names while most others keep
// whatever form was written, usually NFC. Normalizing every segment lets two
// copies of the same tree produce identical manifest paths.
package normalize

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Separator joins segments of a relative manifest path.
const Separator = "/"

// ErrOutsideRoot is returned by RelPath when a path does not live under the root.
var ErrOutsideRoot = errors.New("path is outside root")

// NFC returns name in Unicode Normalization Form C.
// Names that are not valid UTF-8 are returned unchanged.
func NFC(name string) string {
	if !utf8.ValidString(name) {
		return name
	}
	return norm.NFC.String(name)
}

// RelPath returns path relative to root as a normalized manifest path.
// The root itself maps to "".
func RelPath(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrOutsideRoot, path, err)
	}
	if rel == "." {
		return "", nil
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return Join(strings.Split(rel, string(filepath.Separator))...), nil
}

// Join normalizes each segment and joins them with Separator.
func Join(segments ...string) string {
	out := make([]string, len(segments))
	for i, seg := range segments {
		out[i] = NFC(seg)
	}
	return strings.Join(out, Separator)
}
