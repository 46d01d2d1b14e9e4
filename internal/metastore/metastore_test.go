package metastore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(hash string) *FileRecord {
	return &FileRecord{
		Type:         "file",
		Hash:         hash,
		Name:         "movie.mp4",
		Path:         "./videos",
		Role:         RolePublic,
		Size:         3 << 20,
		ChunkCount:   3,
		Chunks:       []ChunkInfo{{Index: 1, Hash: "c1"}},
		ModifiedTime: "1700000000000",
	}
}

// каждый тест гоняется на обеих реализациях
func forEachStore(t *testing.T, fn func(t *testing.T, s MetaStore)) {
	t.Run("file", func(t *testing.T) {
		s, err := NewFileStore(filepath.Join(t.TempDir(), "meta"), nil)
		require.NoError(t, err)
		defer s.Close()
		fn(t, s)
	})
	t.Run("bolt", func(t *testing.T) {
		s, err := NewBoltStore(filepath.Join(t.TempDir(), "db", "meta.db"))
		require.NoError(t, err)
		defer s.Close()
		fn(t, s)
	})
}

func TestStore_GetMissing(t *testing.T) {
	forEachStore(t, func(t *testing.T, s MetaStore) {
		rec, err := s.Get("nope")
		assert.Nil(t, rec)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_PutGetRoundTrip(t *testing.T) {
	forEachStore(t, func(t *testing.T, s MetaStore) {
		want := sampleRecord("h1")
		require.NoError(t, s.Put(want))

		got, err := s.Get("h1")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestStore_PutOverwrites(t *testing.T) {
	forEachStore(t, func(t *testing.T, s MetaStore) {
		rec := sampleRecord("h1")
		require.NoError(t, s.Put(rec))

		rec.Chunks = append(rec.Chunks, ChunkInfo{Index: 0, Hash: "c0"})
		rec.Role = RoleKey
		rec.Key = "secret"
		require.NoError(t, s.Put(rec))

		got, err := s.Get("h1")
		require.NoError(t, err)
		assert.Len(t, got.Chunks, 2)
		assert.Equal(t, RoleKey, got.Role)
		assert.Equal(t, "secret", got.Key)
	})
}

func TestStore_DeleteAndList(t *testing.T) {
	forEachStore(t, func(t *testing.T, s MetaStore) {
		require.NoError(t, s.Put(sampleRecord("b")))
		require.NoError(t, s.Put(sampleRecord("a")))
		require.NoError(t, s.Put(sampleRecord("c")))

		require.NoError(t, s.Delete("b"))
		require.NoError(t, s.Delete("b"), "deleting a missing record is not an error")

		list, err := s.List()
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "a", list[0].Hash)
		assert.Equal(t, "c", list[1].Hash)
	})
}

func TestFileStore_LayoutAndSkipsGarbage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "meta")
	s, err := NewFileStore(dir, nil)
	require.NoError(t, err)

	require.NoError(t, s.Put(sampleRecord("abc")))
	_, err = os.Stat(filepath.Join(dir, "abc.json"))
	require.NoError(t, err, "record must live at <hash>.json")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "abc", list[0].Hash)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp", "temp files must not be left behind")
	}
}

func TestFileRecord_Helpers(t *testing.T) {
	rec := sampleRecord("h")
	assert.True(t, rec.HasChunk(1))
	assert.False(t, rec.HasChunk(0))
	assert.False(t, rec.Complete())

	rec.Chunks = append(rec.Chunks, ChunkInfo{Index: 0}, ChunkInfo{Index: 2})
	assert.True(t, rec.Complete())

	assert.True(t, RolePublic.Valid())
	assert.True(t, RoleKey.Valid())
	assert.False(t, Role("private").Valid())
}
