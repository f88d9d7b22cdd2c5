package output

import (
	"bytes"

	"github.com/jamesainslie/chumtree/pkg/chumtree/manifest"
)

// PathsFormatter writes one file path per line, for piping into other tools.
// Directories and symlinks are not listed.
type PathsFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PathsFormatter) Format(w *bytes.Buffer, m *manifest.Manifest) error {
	for _, file := range m.Files {
		w.WriteString(file.Path)
		w.WriteByte('\n')
	}
	return nil
}

// NullFormatter writes file paths separated by NUL bytes, for xargs -0.
type NullFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *NullFormatter) Format(w *bytes.Buffer, m *manifest.Manifest) error {
	for _, file := range m.Files {
		w.WriteString(file.Path)
		w.WriteByte(0)
	}
	return nil
}

func init() {
	Register("paths", func() Formatter { return &PathsFormatter{} })
	Register("null", func() Formatter { return &NullFormatter{} })
}

var (
	_ Formatter = (*PathsFormatter)(nil)
	_ Formatter = (*NullFormatter)(nil)
)
