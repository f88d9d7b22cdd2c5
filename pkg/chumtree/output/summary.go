package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/chumtree/pkg/chumtree/manifest"
)

// maxSummaryErrors caps the error list in the summary view.
const maxSummaryErrors = 20

// SummaryFormatter renders a styled overview of a manifest for terminal
// display: scan metadata, entry counts, total size and any errors.
// It does not list individual entries.
type SummaryFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *SummaryFormatter) Format(w *bytes.Buffer, m *manifest.Manifest) error {
	w.WriteString(f.formatHeader(m))
	w.WriteString("\n")
	problems := collectProblems(m)
	w.WriteString(f.formatCounts(m, len(problems)))
	w.WriteString("\n")

	if len(problems) > 0 {
		w.WriteString(f.formatErrors(problems))
		w.WriteString("\n")
	}
	return nil
}

func (f *SummaryFormatter) formatHeader(m *manifest.Manifest) string {
	lines := []string{
		TitleStyle.Render("chumtree manifest"),
		fmt.Sprintf("%s %s", LabelStyle.Render("Base:"), ValueStyle.Render(m.BaseDir)),
		fmt.Sprintf("%s %s", LabelStyle.Render("Taken:"), ValueStyle.Render(m.Timestamp.String())),
	}
	if len(m.ExcludeSet) > 0 {
		lines = append(lines, fmt.Sprintf("%s %s",
			LabelStyle.Render("Excluding:"), MutedStyle.Render(strings.Join(m.ExcludeSet, " "))))
	}
	return HeaderBox.Render(strings.Join(lines, "\n"))
}

func (f *SummaryFormatter) formatCounts(m *manifest.Manifest, errCount int) string {
	rows := [][2]string{
		{"Directories", humanize.Comma(int64(m.FoundDirs))},
		{"Symlinks", humanize.Comma(int64(m.FoundSymlinks))},
		{"Files", humanize.Comma(int64(m.FoundFiles))},
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r[0]))
	}

	var sb strings.Builder
	for _, r := range rows {
		sb.WriteString(LabelStyle.Render(padRight(r[0]+":", width+1)))
		sb.WriteString(" ")
		sb.WriteString(ValueStyle.Render(r[1]))
		sb.WriteString("\n")
	}
	sb.WriteString(LabelStyle.Render(padRight("Total:", width+1)))
	sb.WriteString(" ")
	sb.WriteString(SizeStyle.Render(humanize.IBytes(m.FilesTotalSize)))
	if m.FilesTotalSize >= 1024 {
		sb.WriteString(MutedStyle.Render(fmt.Sprintf(" (%s bytes)", humanize.Comma(int64(m.FilesTotalSize)))))
	}

	status := SuccessStyle.Render("no errors")
	if errCount > 0 {
		status = WarningStyle.Render(fmt.Sprintf("%d errors", errCount))
	}
	sb.WriteString("\n")
	sb.WriteString(status)

	return CountsBox.Render(sb.String())
}

func (f *SummaryFormatter) formatErrors(problems []problem) string {
	lines := []string{ErrorStyle.Bold(true).Render("Errors")}
	for i, p := range problems {
		if i == maxSummaryErrors {
			lines = append(lines, MutedStyle.Render(fmt.Sprintf("... and %d more", len(problems)-i)))
			break
		}
		lines = append(lines, fmt.Sprintf("%s %s: %s",
			ErrorStyle.Render(string(p.kind)), ValueStyle.Render(displayPath(p.path)), MutedStyle.Render(p.message)))
	}
	return ErrorBox.Render(strings.Join(lines, "\n"))
}

// problem is either a traversal error or an unreadable file.
type problem struct {
	path    string
	kind    manifest.ErrorKind
	message string
}

// collectProblems merges m.Errors with unreadable files, ordered by path.
func collectProblems(m *manifest.Manifest) []problem {
	var out []problem
	i, j := 0, 0
	for i < len(m.Errors) || j < len(m.Files) {
		if j < len(m.Files) && !m.Files[j].Unreadable() {
			j++
			continue
		}
		if j == len(m.Files) || (i < len(m.Errors) && m.Errors[i].Path <= m.Files[j].Path) {
			e := m.Errors[i]
			out = append(out, problem{path: e.Path, kind: e.Kind, message: e.Error})
			i++
			continue
		}
		f := m.Files[j]
		out = append(out, problem{path: f.Path, kind: manifest.KindRead, message: f.Error})
		j++
	}
	return out
}

// displayPath shows the base directory as ".".
func displayPath(p string) string {
	if p == "" {
		return "."
	}
	return p
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func init() {
	Register("summary", func() Formatter { return &SummaryFormatter{} })
}

var _ Formatter = (*SummaryFormatter)(nil)
