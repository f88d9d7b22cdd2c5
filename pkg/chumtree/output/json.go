package output

import (
	"bytes"

	"github.com/jamesainslie/chumtree/pkg/chumtree/manifest"
)

// JSONFormatter writes the canonical manifest encoding, the form that
// `chumtree diff` reads back.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, m *manifest.Manifest) error {
	return manifest.Encode(w, m)
}

func init() {
	Register("json", func() Formatter { return &JSONFormatter{} })
}

var _ Formatter = (*JSONFormatter)(nil)
