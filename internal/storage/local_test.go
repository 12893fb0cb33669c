package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestLocal_SaveCopiesVerbatim(t *testing.T) {
	store := NewLocal(filepath.Join(t.TempDir(), "books"))
	content := "\xEF\xBB\xBF第一章\r\n内容"

	path, size, err := store.Save(strings.NewReader(content), "三体.txt")
	require.NoError(t, err)

	assert.Equal(t, int64(len(content)), size)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "三体_"))
	assert.Equal(t, ".txt", filepath.Ext(path))
	assert.Regexp(t, `^三体_[0-9a-f]{8}\.txt$`, filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestLocal_SameNameDoesNotCollide(t *testing.T) {
	store := NewLocal(t.TempDir())

	first, _, err := store.Save(strings.NewReader("a"), "book.txt")
	require.NoError(t, err)
	second, _, err := store.Save(strings.NewReader("b"), "book.txt")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	files, err := store.List()
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestLocal_FailedCopyLeavesNothing(t *testing.T) {
	store := NewLocal(t.TempDir())

	_, _, err := store.Save(failingReader{}, "broken.txt")
	require.Error(t, err)

	files, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestLocal_RemoveAndOpen(t *testing.T) {
	store := NewLocal(t.TempDir())
	path, _, err := store.Save(strings.NewReader("hello"), "a.txt")
	require.NoError(t, err)

	rc, err := store.Open(path)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(data))

	require.NoError(t, store.Remove(path))
	assert.NoError(t, store.Remove(path), "removing a missing file is not an error")

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLocal_ListMissingDirectory(t *testing.T) {
	store := NewLocal(filepath.Join(t.TempDir(), "nope"))

	files, err := store.List()

	require.NoError(t, err)
	assert.Empty(t, files)
}
