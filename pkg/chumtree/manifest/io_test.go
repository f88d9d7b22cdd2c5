package manifest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleManifest() *Manifest {
	b := NewBuilder("/srv/photos", []string{"**/.DS_Store"}, testTime)
	b.AddDir("2024")
	b.AddSymlink("latest", "2024")
	b.AddFile(FileEntry{
		Path:     "2024/a&b<c>.jpg",
		Len:      4096,
		Modified: NewTimestamp(time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC)),
		Hash:     "0123456789ABCDEF",
	})
	b.AddFile(FileEntry{
		Path:     "empty",
		Modified: NewTimestamp(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)),
	})
	return b.Finalize()
}

func TestEncode_Layout(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleManifest()))
	out := buf.String()

	assert.True(t, strings.HasSuffix(out, "}\n"), "trailing newline")
	assert.Contains(t, out, "\n  \"base_dir\": \"/srv/photos\",\n")
	assert.Contains(t, out, `"timestamp": "2024-03-09T14:05:07.120000000Z"`)
	assert.Contains(t, out, `"modified": "2024-01-02T03:04:05.000000006Z"`)
	assert.Contains(t, out, `"2024/a&b<c>.jpg"`, "HTML characters stay unescaped")
	assert.Contains(t, out, "[\n      \"latest\",\n      \"2024\"\n    ]")
	assert.NotContains(t, out, `"errors"`)
	assert.NotContains(t, out, `"error"`)

	order := []string{
		`"timestamp"`, `"base_dir"`, `"exclude_set"`, `"found_dirs"`, `"found_symlinks"`,
		`"found_files"`, `"files_total_size"`, `"dirs"`, `"symlinks"`, `"files"`,
	}
	last := -1
	for _, key := range order {
		idx := strings.Index(out, key)
		require.GreaterOrEqual(t, idx, 0, key)
		assert.Greater(t, idx, last, "%s out of order", key)
		last = idx
	}
}

func TestEncode_Deterministic(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	require.NoError(t, Encode(&a, sampleManifest()))
	require.NoError(t, Encode(&b, sampleManifest()))
	assert.Equal(t, a.String(), b.String())
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	t.Parallel()

	m := sampleManifest()
	m.Errors = []EntryError{{Path: "locked", Kind: KindTraversal, Error: "permission denied"}}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, m))

	got, err := Decode(&buf)
	require.NoError(t, err)

	assert.Equal(t, m.BaseDir, got.BaseDir)
	assert.Equal(t, m.ExcludeSet, got.ExcludeSet)
	assert.Equal(t, m.Dirs, got.Dirs)
	assert.Equal(t, m.Symlinks, got.Symlinks)
	assert.Equal(t, m.Errors, got.Errors)
	assert.True(t, m.Timestamp.Equal(got.Timestamp.Time))
	require.Len(t, got.Files, len(m.Files))
	for i := range m.Files {
		assert.Equal(t, m.Files[i].Path, got.Files[i].Path)
		assert.Equal(t, m.Files[i].Hash, got.Files[i].Hash)
		assert.True(t, m.Files[i].Modified.Equal(got.Files[i].Modified.Time))
	}
	assert.True(t, Compare(m, got, CompareOptions{}).Empty())
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "not json", input: "nope"},
		{name: "bad timestamp", input: `{"timestamp": "yesterday"}`},
		{name: "symlink not a pair", input: `{"symlinks": [["only-path"]]}`},
		{name: "symlink not a list", input: `{"symlinks": [{"path": "x"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestDecode_SymlinkError(t *testing.T) {
	t.Parallel()

	_, err := Decode(strings.NewReader(`{"symlinks": [["a", "b", "c"]]}`))
	assert.ErrorIs(t, err, ErrMalformedSymlink)
}

func TestWriteRead(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "manifest.json")

	m := sampleManifest()
	require.NoError(t, Write(path, m))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")

	got, err := Read(path)
	require.NoError(t, err)
	assert.True(t, Compare(m, got, CompareOptions{}).Empty())

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, m))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, buf.String(), string(data))
}

func TestWriteFile_Replaces(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("old contents that are longer"), 0o644))

	require.NoError(t, WriteFile(path, []byte("new")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestWriteFile_DirectoryTarget(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.Error(t, WriteFile(dir, []byte("x")))

	_, err := os.Stat(dir + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be cleaned up")
}

func TestRead_Missing(t *testing.T) {
	t.Parallel()

	_, err := Read(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestTimestamp_String(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+2", 2*60*60)
	ts := NewTimestamp(time.Date(2024, 6, 1, 12, 0, 0, 5, loc))
	assert.Equal(t, "2024-06-01T10:00:00.000000005Z", ts.String())
}
