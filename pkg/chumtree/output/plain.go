package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/chumtree/pkg/chumtree/manifest"
)

// PlainFormatter lists every entry in an aligned table without colors.
// Columns are TYPE, SIZE, PATH and HASH; symlinks show their target in the
// HASH column and unreadable files their error.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, m *manifest.Manifest) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	fmt.Fprintln(tw, "TYPE\tSIZE\tPATH\tHASH")
	for _, d := range m.Dirs {
		fmt.Fprintf(tw, "dir\t-\t%s\t-\n", d)
	}
	for _, s := range m.Symlinks {
		fmt.Fprintf(tw, "symlink\t-\t%s\t-> %s\n", s.Path, s.Target)
	}
	for _, file := range m.Files {
		hash := file.Hash
		switch {
		case file.Unreadable():
			hash = "error: " + file.Error
		case hash == "":
			hash = "-"
		}
		fmt.Fprintf(tw, "file\t%s\t%s\t%s\n", humanize.IBytes(file.Len), file.Path, hash)
	}
	for _, e := range m.Errors {
		fmt.Fprintf(tw, "error\t-\t%s\t%s: %s\n", displayPath(e.Path), e.Kind, e.Error)
	}

	fmt.Fprintf(tw, "\nTotal: %s in %d files, %d dirs, %d symlinks\n",
		humanize.IBytes(m.FilesTotalSize), m.FoundFiles, m.FoundDirs, m.FoundSymlinks)

	return tw.Flush()
}

func init() {
	Register("plain", func() Formatter { return &PlainFormatter{} })
}

var _ Formatter = (*PlainFormatter)(nil)
