package media

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(noteID, relPath string, content []byte) *Image {
	hash := sha256.Sum256(content)
	return &Image{
		ID:           hex.EncodeToString(hash[:]),
		NoteID:       noteID,
		Content:      content,
		MimeType:     "image/png",
		RelativePath: relPath,
		AbsolutePath: "/abs/" + relPath,
	}
}

func TestAddAndGet(t *testing.T) {
	s := NewStore()
	img := testImage("n1", "a.png", []byte("pixels"))
	s.Add(img)

	got, err := s.Get(img.ID)
	require.NoError(t, err)
	assert.Equal(t, img.Content, got.Content)
	assert.Equal(t, "image/png", got.MimeType)
}

func TestGetMissing(t *testing.T) {
	s := NewStore()
	_, err := s.Get("nope")
	require.Error(t, err)
}

func TestLookupByNoteAndPath(t *testing.T) {
	s := NewStore()
	img := testImage("n1", "folder/a.png", []byte("pixels"))
	s.Add(img)

	id, ok := s.Lookup("n1", "folder/a.png")
	require.True(t, ok)
	assert.Equal(t, img.ID, id)

	_, ok = s.Lookup("n2", "folder/a.png")
	assert.False(t, ok)
}

func TestDuplicateContentSharesID(t *testing.T) {
	s := NewStore()
	content := []byte("same pixels")
	s.Add(testImage("n1", "a.png", content))
	s.Add(testImage("n2", "b.png", content))

	// One image record, two index entries.
	assert.Equal(t, 1, s.Len())

	id1, ok := s.Lookup("n1", "a.png")
	require.True(t, ok)
	id2, ok := s.Lookup("n2", "b.png")
	require.True(t, ok)
	assert.Equal(t, id1, id2)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "images.json")

	s := NewStore()
	img := testImage("n1", "a.png", []byte{0x89, 0x50, 0x4e, 0x47, 0x00, 0xff})
	s.Add(img)
	require.NoError(t, s.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	got, err := loaded.Get(img.ID)
	require.NoError(t, err)
	assert.Equal(t, img.Content, got.Content)
	assert.Equal(t, img.RelativePath, got.RelativePath)

	id, ok := loaded.Lookup("n1", "a.png")
	require.True(t, ok)
	assert.Equal(t, img.ID, id)
}

func TestSaveIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "images.json")

	s := NewStore()
	s.Add(testImage("n1", "a.png", []byte("v1")))
	require.NoError(t, s.Save(path))

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "images.json", entries[0].Name())
}

func TestEmptyStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "images.json")
	require.NoError(t, NewStore().Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, loaded.IDs())
}
