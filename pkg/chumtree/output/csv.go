package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/jamesainslie/chumtree/pkg/chumtree/manifest"
)

// CSVFormatter writes one RFC 4180 row per entry, for spreadsheets and
// scripts. Sizes are exact byte counts.
type CSVFormatter struct{}

var csvHeader = []string{"type", "path", "len", "modified", "hash", "target", "error"}

// Format writes the formatted output to the buffer.
func (f *CSVFormatter) Format(w *bytes.Buffer, m *manifest.Manifest) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, d := range m.Dirs {
		if err := writer.Write([]string{"dir", d, "", "", "", "", ""}); err != nil {
			return err
		}
	}
	for _, s := range m.Symlinks {
		if err := writer.Write([]string{"symlink", s.Path, "", "", "", s.Target, ""}); err != nil {
			return err
		}
	}
	for _, file := range m.Files {
		row := []string{
			"file",
			file.Path,
			strconv.FormatUint(file.Len, 10),
			file.Modified.String(),
			file.Hash,
			"",
			file.Error,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func init() {
	Register("csv", func() Formatter { return &CSVFormatter{} })
}

var _ Formatter = (*CSVFormatter)(nil)
