package output

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"

	"github.com/jamesainslie/chumtree/pkg/chumtree/manifest"
)

type diffLine struct {
	mark string
	path string
	text string
}

// FormatDiff writes one line per difference, ordered by path:
//
//	+ file    new.txt
//	- dir     old
//	! read    locked.bin: permission denied
//	~ file    data.bin (content)
//
// "!" lines are read or traversal failures recorded by either manifest.
// An empty diff renders as a single "no differences" line.
func FormatDiff(w *bytes.Buffer, d *manifest.Diff) error {
	if d.Empty() {
		w.WriteString(SuccessStyle.Render("no differences"))
		w.WriteString("\n")
		return nil
	}

	lines := make([]diffLine, 0, d.Len())
	for _, c := range d.Added {
		lines = append(lines, changeLine("+", c))
	}
	for _, c := range d.Removed {
		lines = append(lines, changeLine("-", c))
	}
	for _, c := range d.Changed {
		lines = append(lines, changeLine("~", c))
	}
	for _, e := range d.Errors {
		lines = append(lines, diffLine{
			mark: "!",
			path: e.Path,
			text: fmt.Sprintf("! %-7s %s: %s", e.Kind, displayPath(e.Path), e.Error),
		})
	}
	slices.SortStableFunc(lines, func(a, b diffLine) int {
		return cmp.Compare(a.path, b.path)
	})

	for _, l := range lines {
		style := SuccessStyle
		switch l.mark {
		case "-", "!":
			style = ErrorStyle
		case "~":
			style = WarningStyle
		}
		w.WriteString(style.Render(l.text))
		w.WriteString("\n")
	}

	counts := fmt.Sprintf("%d added, %d removed, %d changed",
		len(d.Added), len(d.Removed), len(d.Changed))
	if len(d.Errors) > 0 {
		counts += fmt.Sprintf(", %d unreadable", len(d.Errors))
	}
	w.WriteString(MutedStyle.Render(counts))
	w.WriteString("\n")
	return nil
}

func changeLine(mark string, c manifest.Change) diffLine {
	text := fmt.Sprintf("%s %-7s %s", mark, c.Kind, displayPath(c.Path))
	if c.Reason != "" {
		text += fmt.Sprintf(" (%s)", c.Reason)
	}
	return diffLine{mark: mark, path: c.Path, text: text}
}
