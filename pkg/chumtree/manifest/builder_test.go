package manifest

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, 3, 9, 14, 5, 7, 120000000, time.UTC)

func TestBuilder_FinalizeSortsByPath(t *testing.T) {
	t.Parallel()

	b := NewBuilder("/data/tree", nil, testTime)
	b.AddDir("b")
	b.AddDir("a")
	b.AddDir("B")
	b.AddSymlink("z_link", "../elsewhere")
	b.AddSymlink("a_link", "target")
	b.AddFile(FileEntry{Path: "b/2.txt", Len: 20})
	b.AddFile(FileEntry{Path: "a/1.txt", Len: 10})
	b.AddFile(FileEntry{Path: "a/10.txt", Len: 5})

	m := b.Finalize()

	assert.Equal(t, []string{"B", "a", "b"}, m.Dirs)
	assert.Equal(t, []Symlink{
		{Path: "a_link", Target: "target"},
		{Path: "z_link", Target: "../elsewhere"},
	}, m.Symlinks)

	paths := make([]string, 0, len(m.Files))
	for _, f := range m.Files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"a/1.txt", "a/10.txt", "b/2.txt"}, paths)
}

func TestBuilder_FinalizeTotals(t *testing.T) {
	t.Parallel()

	b := NewBuilder("root", nil, testTime)
	b.AddDir("d")
	b.AddSymlink("l", "t")
	b.AddFile(FileEntry{Path: "f1", Len: 4096, Hash: "0123456789ABCDEF"})
	b.AddFile(FileEntry{Path: "f2", Len: 0})
	b.AddFile(FileEntry{Path: "f3", Len: 7, Error: "permission denied"})

	m := b.Finalize()

	assert.Equal(t, uint64(1), m.FoundDirs)
	assert.Equal(t, uint64(1), m.FoundSymlinks)
	assert.Equal(t, uint64(3), m.FoundFiles)
	assert.Equal(t, uint64(4103), m.FilesTotalSize)
	assert.Equal(t, "root", m.BaseDir)
	assert.True(t, m.Timestamp.Equal(testTime))
	assert.True(t, m.HasErrors())
}

func TestBuilder_EmptyCollectionsAreNotNil(t *testing.T) {
	t.Parallel()

	m := NewBuilder("root", nil, testTime).Finalize()

	assert.NotNil(t, m.Dirs)
	assert.NotNil(t, m.Symlinks)
	assert.NotNil(t, m.Files)
	assert.NotNil(t, m.ExcludeSet)
	assert.Empty(t, m.Errors)
	assert.False(t, m.HasErrors())
}

func TestBuilder_ExcludeSetSortedAndDeduplicated(t *testing.T) {
	t.Parallel()

	b := NewBuilder("root", []string{"*.tmp", "**/.DS_Store", "", "*.tmp"}, testTime)
	m := b.Finalize()

	assert.Equal(t, []string{"**/.DS_Store", "*.tmp"}, m.ExcludeSet)
}

func TestBuilder_Progress(t *testing.T) {
	t.Parallel()

	b := NewBuilder("root", nil, testTime)
	b.AddDir("d")
	b.AddFile(FileEntry{Path: "f", Len: 100})
	b.AddFile(FileEntry{Path: "g", Len: 1, Error: "boom"})
	b.AddError(EntryError{Path: "x", Kind: KindTraversal, Error: "denied"})
	b.AddHashed(100)

	p := b.Progress()
	assert.Equal(t, int64(1), p.Dirs)
	assert.Equal(t, int64(2), p.Files)
	assert.Equal(t, uint64(101), p.TotalBytes)
	assert.Equal(t, uint64(100), p.HashedBytes)
	assert.Equal(t, int64(2), p.Errors)
	assert.Equal(t, int64(3), p.Found())
}

func TestBuilder_ConcurrentAdds(t *testing.T) {
	t.Parallel()

	const workers = 8
	const perWorker = 250

	b := NewBuilder("root", nil, testTime)

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWorker {
				b.AddFile(FileEntry{Path: fmt.Sprintf("w%d/f%04d", w, i), Len: 1})
				if i%10 == 0 {
					b.AddDir(fmt.Sprintf("w%d/d%04d", w, i))
				}
			}
		}()
	}
	wg.Wait()

	m := b.Finalize()
	require.Len(t, m.Files, workers*perWorker)
	assert.Equal(t, uint64(workers*perWorker), m.FilesTotalSize)
	assert.Equal(t, uint64(workers*perWorker/10), m.FoundDirs)

	for i := 1; i < len(m.Files); i++ {
		assert.Less(t, m.Files[i-1].Path, m.Files[i].Path)
	}
}

func TestBuilder_ErrorsSorted(t *testing.T) {
	t.Parallel()

	b := NewBuilder("root", nil, testTime)
	b.AddError(EntryError{Path: "z", Kind: KindRead, Error: "x"})
	b.AddError(EntryError{Path: "a", Kind: KindTraversal, Error: "y"})

	m := b.Finalize()
	require.Len(t, m.Errors, 2)
	assert.Equal(t, "a", m.Errors[0].Path)
	assert.Equal(t, "z", m.Errors[1].Path)
}
