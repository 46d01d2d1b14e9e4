package chunkstore

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "chunks"))
	require.NoError(t, err)
	return s
}

func TestStore_SaveAndOpen(t *testing.T) {
	s := newStore(t)

	n, err := s.Save("abc", 2, strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.True(t, s.Exists("abc", 2))
	assert.False(t, s.Exists("abc", 1))
	assert.Equal(t, filepath.Join(s.Dir(), "abc-2"), s.Path("abc", 2))

	f, err := s.Open("abc", 2)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestStore_SaveOverwrites(t *testing.T) {
	s := newStore(t)

	_, err := s.Save("abc", 0, strings.NewReader("first version"))
	require.NoError(t, err)
	_, err = s.Save("abc", 0, strings.NewReader("v2"))
	require.NoError(t, err)

	data, err := os.ReadFile(s.Path("abc", 0))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not remain")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestStore_SaveFailureLeavesSlotUntouched(t *testing.T) {
	s := newStore(t)

	_, err := s.Save("abc", 0, bytes.NewReader([]byte("good")))
	require.NoError(t, err)

	_, err = s.Save("abc", 0, io.MultiReader(strings.NewReader("partial"), failingReader{}))
	require.Error(t, err)

	data, err := os.ReadFile(s.Path("abc", 0))
	require.NoError(t, err)
	assert.Equal(t, "good", string(data))

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_Remove(t *testing.T) {
	s := newStore(t)

	_, err := s.Save("abc", 0, strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, s.Remove("abc", 0))
	assert.False(t, s.Exists("abc", 0))
	require.NoError(t, s.Remove("abc", 0), "removing a missing chunk is not an error")

	_, err = s.Open("abc", 0)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestStore_Stats(t *testing.T) {
	s := newStore(t)

	count, size, err := s.Stats()
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, size)

	_, err = s.Save("a", 0, strings.NewReader("12345"))
	require.NoError(t, err)
	_, err = s.Save("a", 1, strings.NewReader("678"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), ".upload-123"), []byte("partial"), 0o644))

	count, size, err = s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, int64(8), size)
}
