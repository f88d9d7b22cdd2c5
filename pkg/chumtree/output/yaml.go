package output

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/chumtree/pkg/chumtree/manifest"
)

// YAMLFormatter writes the manifest as YAML with the same field names and
// order as the JSON form. Symlinks become two-element sequences.
type YAMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, m *manifest.Manifest) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return err
	}
	return enc.Close()
}

func init() {
	Register("yaml", func() Formatter { return &YAMLFormatter{} })
}

var _ Formatter = (*YAMLFormatter)(nil)
