package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/chumtree/pkg/chumtree/manifest"
)

func TestJSONFormatterMatchesEncode(t *testing.T) {
	t.Parallel()

	m := sampleManifest()

	var want bytes.Buffer
	require.NoError(t, manifest.Encode(&want, m))

	var got bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(&got, m))
	assert.Equal(t, want.String(), got.String())

	back, err := manifest.Decode(&got)
	require.NoError(t, err)
	assert.Equal(t, m.Files, back.Files)
}

func TestYAMLFormatter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, (&YAMLFormatter{}).Format(&buf, sampleManifest()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "timestamp:"), "timestamp comes first:\n%s", out)
	assert.Less(t, strings.Index(out, "found_dirs:"), strings.Index(out, "files:"))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "2024-01-15T10:30:00.000000000Z", doc["timestamp"])
	assert.Equal(t, "/data/tree", doc["base_dir"])
	assert.Equal(t, 3, doc["found_files"])
	assert.Equal(t, 4106, doc["files_total_size"])
	assert.Equal(t, []any{[]any{"link", "sub/a.txt"}}, doc["symlinks"])

	files, ok := doc["files"].([]any)
	require.True(t, ok)
	require.Len(t, files, 3)

	locked, ok := files[1].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "open: permission denied", locked["error"])

	hashed, ok := files[2].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, hashed, "error")
}

func TestSummaryFormatter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, (&SummaryFormatter{}).Format(&buf, sampleManifest()))

	out := plainText(buf.String())
	for _, want := range []string{
		"/data/tree",
		"2024-01-15T10:30:00.000000000Z",
		"**/.DS_Store",
		"Directories:",
		"Files:",
		"4.0 KiB",
		"4,106 bytes",
		"2 errors",
		"locked.bin",
		"private",
		"traversal",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "sub/a.txt", "summary does not list entries")
}

func TestSummaryFormatterClean(t *testing.T) {
	t.Parallel()

	m := sampleManifest()
	m.Errors = nil
	m.Files = m.Files[2:]
	m.ExcludeSet = []string{}

	var buf bytes.Buffer
	require.NoError(t, (&SummaryFormatter{}).Format(&buf, m))

	out := plainText(buf.String())
	assert.Contains(t, out, "no errors")
	assert.NotContains(t, out, "Errors")
	assert.NotContains(t, out, "Excluding:")
}

func TestSummaryFormatterTruncatesErrors(t *testing.T) {
	t.Parallel()

	m := sampleManifest()
	m.Errors = nil
	for i := range maxSummaryErrors + 5 {
		m.Errors = append(m.Errors, manifest.EntryError{
			Path:  fmt.Sprintf("d%02d", i),
			Kind:  manifest.KindTraversal,
			Error: "denied",
		})
	}

	var buf bytes.Buffer
	require.NoError(t, (&SummaryFormatter{}).Format(&buf, m))

	// 25 traversal errors plus locked.bin.
	out := plainText(buf.String())
	assert.Contains(t, out, "26 errors")
	assert.Contains(t, out, "... and 6 more")
}

func TestCollectProblems(t *testing.T) {
	t.Parallel()

	m := sampleManifest()
	m.Errors = append([]manifest.EntryError{{Path: "", Kind: manifest.KindTraversal, Error: "x"}}, m.Errors...)
	m.Errors = append(m.Errors, manifest.EntryError{Path: "zzz", Kind: manifest.KindRead, Error: "y"})

	problems := collectProblems(m)
	paths := make([]string, 0, len(problems))
	for _, p := range problems {
		paths = append(paths, p.path)
	}
	assert.Equal(t, []string{"", "locked.bin", "private", "zzz"}, paths)
	assert.Equal(t, manifest.KindRead, problems[1].kind)
}

func TestPlainFormatter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, (&PlainFormatter{}).Format(&buf, sampleManifest()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 7)

	assert.Equal(t, []string{"TYPE", "SIZE", "PATH", "HASH"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"dir", "-", "sub", "-"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"symlink", "-", "link", "->", "sub/a.txt"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"file", "0", "B", "empty", "-"}, strings.Fields(lines[3]))
	assert.Contains(t, lines[4], "error: open: permission denied")
	assert.Contains(t, lines[5], "0123456789ABCDEF0123456789ABCDEF")
	assert.Contains(t, lines[6], "traversal: open: permission denied")

	// Columns line up.
	col := strings.Index(lines[0], "PATH")
	assert.Equal(t, col, strings.Index(lines[1], "sub"))
	assert.Equal(t, col, strings.Index(lines[5], "sub/a.txt"))

	assert.Contains(t, buf.String(), "Total: 4.0 KiB in 3 files, 1 dirs, 1 symlinks")
}

func TestPathsFormatters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		formatter Formatter
		want      string
	}{
		{"paths", &PathsFormatter{}, "empty\nlocked.bin\nsub/a.txt\n"},
		{"null", &NullFormatter{}, "empty\x00locked.bin\x00sub/a.txt\x00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			require.NoError(t, tt.formatter.Format(&buf, sampleManifest()))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestCSVFormatter(t *testing.T) {
	t.Parallel()

	m := sampleManifest()
	m.Files[2].Path = `sub/a, "quoted".txt`

	var buf bytes.Buffer
	require.NoError(t, (&CSVFormatter{}).Format(&buf, m))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 6)

	assert.Equal(t, []string{"type", "path", "len", "modified", "hash", "target", "error"}, rows[0])
	assert.Equal(t, []string{"dir", "sub", "", "", "", "", ""}, rows[1])
	assert.Equal(t, []string{"symlink", "link", "", "", "", "sub/a.txt", ""}, rows[2])
	assert.Equal(t, "open: permission denied", rows[4][6])
	assert.Equal(t, []string{
		"file", `sub/a, "quoted".txt`, "4096", "2024-01-15T10:30:00.000000000Z",
		"0123456789ABCDEF0123456789ABCDEF", "", "",
	}, rows[5])
}
