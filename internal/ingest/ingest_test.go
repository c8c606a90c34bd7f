package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphy/notes-rag/internal/media"
	"github.com/randalmurphy/notes-rag/internal/note"
	"github.com/randalmurphy/notes-rag/internal/store"
)

// fakeEmbedder derives a deterministic vector from the text hash.
type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	sum := sha256.Sum256([]byte(text))
	v := make([]float32, 4)
	for i := range v {
		v[i] = float32(binary.BigEndian.Uint16(sum[2*i:])) / 65535.0
	}
	return v, nil
}

type fixture struct {
	folder  string
	vectors *store.VectorStore
	images  *media.Store
	orch    *Orchestrator
	base    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	vectors := store.NewVectorStore()
	images := media.NewStore()
	orch, err := New(fakeEmbedder{}, vectors, images, Config{
		MaxTokens: 100,
		Overlap:   10,
	})
	require.NoError(t, err)
	return &fixture{
		folder:  t.TempDir(),
		vectors: vectors,
		images:  images,
		orch:    orch,
		base:    time.Now().Add(-time.Hour),
	}
}

// write creates a file under the fixture folder with its mtime offset from
// the fixture base time, so modification ordering is deterministic.
func (f *fixture) write(t *testing.T, rel, content string, offset time.Duration) {
	t.Helper()
	path := filepath.Join(f.folder, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	mtime := f.base.Add(offset)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func (f *fixture) ingest(t *testing.T) *Result {
	t.Helper()
	result, err := f.orch.Ingest(context.Background(), f.folder)
	require.NoError(t, err)
	return result
}

func (f *fixture) noteByTitle(t *testing.T, title string) *note.Note {
	t.Helper()
	n := f.vectors.FindByTitle(title)
	require.NotNil(t, n, "note %q not found", title)
	return n
}

func TestInitialIngestion(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.md", "# Note A\nThe first note.", 0)
	f.write(t, "b.md", "# Note B\nLinks to [[a]].", time.Second)
	f.write(t, "sub/c.md", "# Note C\nIn a subfolder.", 2*time.Second)

	result := f.ingest(t)
	assert.Equal(t, 3, result.TotalFiles)
	assert.Equal(t, 3, result.ModifiedFiles)
	assert.Zero(t, result.DeletedNotes)
	assert.Empty(t, result.Errors)

	require.Len(t, f.vectors.NoteIDs(), 3)

	a := f.noteByTitle(t, "Note A")
	assert.Equal(t, NoteID("a.md"), a.ID)
	assert.Positive(t, a.Created)
	assert.Positive(t, a.Modified)
	assert.Empty(t, a.FolderPath)

	c := f.noteByTitle(t, "Note C")
	assert.Equal(t, "sub", c.FolderPath)
}

func TestIngestionIsIdempotent(t *testing.T) {
	f := newFixture(t)
	vectorPath := filepath.Join(t.TempDir(), "vector.json")
	imagePath := filepath.Join(t.TempDir(), "images.json")
	f.orch.cfg.VectorDBPath = vectorPath
	f.orch.cfg.ImageStorePath = imagePath

	f.write(t, "a.md", "# Note A\nBody.", 0)
	f.write(t, "b.md", "# Note B\nLinks to [[a]].", time.Second)

	f.ingest(t)
	first, err := os.ReadFile(vectorPath)
	require.NoError(t, err)
	firstImages, err := os.ReadFile(imagePath)
	require.NoError(t, err)

	result := f.ingest(t)
	assert.Zero(t, result.ModifiedFiles)

	second, err := os.ReadFile(vectorPath)
	require.NoError(t, err)
	secondImages, err := os.ReadFile(imagePath)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Equal(t, string(firstImages), string(secondImages))
}

func TestModifiedFileReplacesChunks(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.md", "# Note A\nOriginal body.", 0)
	f.write(t, "b.md", "# Note B\nStable body.", time.Second)
	f.write(t, "c.md", "# Note C\nStable too.", 2*time.Second)

	f.ingest(t)
	a := f.noteByTitle(t, "Note A")
	b := f.noteByTitle(t, "Note B")
	firstModified := a.Modified
	bChunks := f.vectors.ChunksForNote(b.ID)
	require.NotEmpty(t, bChunks)
	bChunkID := bChunks[0].ID
	bVector := bChunks[0].Vector

	f.write(t, "a.md", "# Note A\nThis is the UPDATED first note.", time.Minute)
	result := f.ingest(t)
	assert.Equal(t, 1, result.ModifiedFiles)

	updated := f.vectors.Note(a.ID)
	require.NotNil(t, updated)
	assert.Contains(t, updated.Content, "UPDATED")
	assert.Greater(t, updated.Modified, firstModified)
	assert.Equal(t, a.Created, updated.Created)

	chunks := f.vectors.ChunksForNote(a.ID)
	require.NotEmpty(t, chunks)
	assert.Contains(t, chunks[0].Text, "UPDATED")

	// B untouched: same chunk id and vector.
	bAfter := f.vectors.ChunksForNote(b.ID)
	require.Len(t, bAfter, len(bChunks))
	assert.Equal(t, bChunkID, bAfter[0].ID)
	assert.Equal(t, bVector, bAfter[0].Vector)
}

func TestDeletedFileRemovesNoteAndChunks(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.md", "# Note A\nBody linking [[c]].", 0)
	f.write(t, "c.md", "# Note C\nDoomed.", time.Second)

	f.ingest(t)
	c := f.noteByTitle(t, "Note C")

	require.NoError(t, os.Remove(filepath.Join(f.folder, "c.md")))
	result := f.ingest(t)
	assert.Equal(t, 1, result.DeletedNotes)

	assert.Nil(t, f.vectors.Note(c.ID))
	assert.Empty(t, f.vectors.ChunksForNote(c.ID))
	for _, rel := range f.vectors.Graph().Relationships {
		assert.NotEqual(t, c.ID, rel.SourceNoteID)
		assert.NotEqual(t, c.ID, rel.TargetNoteID)
	}
}

func TestNewWikilinkCreatesEdges(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.md", "# Note A\nBody.", 0)
	f.write(t, "b.md", "# Note B\nBody.", time.Second)

	f.ingest(t)

	f.write(t, "d.md", "# Note D\nLinks to [[a]] and [[b]].", time.Minute)
	result := f.ingest(t)
	assert.Equal(t, 2, result.Relationships)

	a := f.noteByTitle(t, "Note A")
	b := f.noteByTitle(t, "Note B")
	d := f.noteByTitle(t, "Note D")

	require.Len(t, d.OutboundLinks, 2)
	assert.Equal(t, note.NoteLink(a.ID), d.OutboundLinks[0])
	assert.Equal(t, note.NoteLink(b.ID), d.OutboundLinks[1])

	assert.Contains(t, a.InboundLinks, d.ID)
	assert.Contains(t, b.InboundLinks, d.ID)

	for _, rel := range f.vectors.Graph().Relationships {
		assert.Equal(t, d.ID, rel.SourceNoteID)
		assert.Equal(t, note.RelWikilink, rel.Type)
	}
}

func TestURLEncodedImageIngestion(t *testing.T) {
	f := newFixture(t)
	pngBytes := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	f.write(t, "Z - Attachements/Note.assets/Image.png", string(pngBytes), 0)
	f.write(t, "Note.md", "![x](Z%20-%20Attachements/Note.assets/Image.png)", time.Second)

	f.ingest(t)

	n := f.vectors.Note(NoteID("Note.md"))
	require.NotNil(t, n)
	assert.Equal(t,
		fmt.Sprintf("![x](/api/images/%s/Z - Attachements/Note.assets/Image.png)", n.ID),
		n.Content)

	imageID, ok := f.images.Lookup(n.ID, "Z - Attachements/Note.assets/Image.png")
	require.True(t, ok)

	hash := sha256.Sum256(pngBytes)
	assert.Equal(t, hex.EncodeToString(hash[:]), imageID)

	img, err := f.images.Get(imageID)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, img.Content)
	assert.Equal(t, "image/png", img.MimeType)
}

func TestExcalidrawEmbedIngestion(t *testing.T) {
	f := newFixture(t)
	pngBytes := []byte("rendered drawing")
	f.write(t, "Z - Attachements/diagram.excalidraw.png", string(pngBytes), 0)
	f.write(t, "Draw.md", "![[diagram.excalidraw]]", time.Second)

	f.ingest(t)

	n := f.vectors.Note(NoteID("Draw.md"))
	require.NotNil(t, n)
	assert.Equal(t,
		fmt.Sprintf("![](/api/images/%s/diagram.excalidraw.png)", n.ID),
		n.Content)

	imageID, ok := f.images.Lookup(n.ID, "diagram.excalidraw.png")
	require.True(t, ok)

	hash := sha256.Sum256(pngBytes)
	assert.Equal(t, hex.EncodeToString(hash[:]), imageID)
}

func TestUnresolvedReferencesAreSkipped(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.md", "# Note A\n![gone](missing.png)\nLinks to [[nowhere]].", 0)

	result := f.ingest(t)
	assert.Empty(t, result.Errors)

	n := f.noteByTitle(t, "Note A")
	assert.Empty(t, n.OutboundLinks)
	assert.Zero(t, f.images.Len())
}

func TestExcalidrawSourceFilesAreNotNotes(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.md", "# Note A\nBody.", 0)
	f.write(t, "drawing.excalidraw.md", "excalidraw source json", time.Second)

	result := f.ingest(t)
	assert.Equal(t, 1, result.TotalFiles)
	require.Len(t, f.vectors.NoteIDs(), 1)
}

func TestEmptyFolderPersistsEmptyStores(t *testing.T) {
	f := newFixture(t)
	vectorPath := filepath.Join(t.TempDir(), "vector.json")
	imagePath := filepath.Join(t.TempDir(), "images.json")
	f.orch.cfg.VectorDBPath = vectorPath
	f.orch.cfg.ImageStorePath = imagePath

	result := f.ingest(t)
	assert.Zero(t, result.TotalFiles)

	vectors, err := store.Load(vectorPath)
	require.NoError(t, err)
	assert.Empty(t, vectors.NoteIDs())

	images, err := media.Load(imagePath)
	require.NoError(t, err)
	assert.Empty(t, images.IDs())
}

func TestEmptyNoteHasNoChunks(t *testing.T) {
	f := newFixture(t)
	f.write(t, "empty.md", "", 0)

	result := f.ingest(t)
	assert.Empty(t, result.Errors)

	n := f.vectors.Note(NoteID("empty.md"))
	require.NotNil(t, n)
	assert.Equal(t, "empty", n.Title)
	assert.Empty(t, f.vectors.ChunksForNote(n.ID))
}

func TestChunkPositionsPointIntoContent(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.md", "# Note A\nSome body text here.", 0)

	f.ingest(t)

	n := f.noteByTitle(t, "Note A")
	for _, c := range f.vectors.ChunksForNote(n.ID) {
		require.LessOrEqual(t, c.EndPos, len(n.Content))
		// No overlap on a single-chunk note: the slice is the chunk text.
		assert.Equal(t, c.Text, n.Content[c.StartPos:c.EndPos])
	}
}

func TestEmbeddedContentHashes(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.md", "# Note A\n![[something embedded]]", 0)

	f.ingest(t)

	n := f.noteByTitle(t, "Note A")
	hash := sha256.Sum256([]byte("something embedded"))
	assert.Equal(t, []string{hex.EncodeToString(hash[:])}, n.EmbeddedContent)
}

func TestWikilinkToAssetBecomesOpaqueLink(t *testing.T) {
	f := newFixture(t)
	f.write(t, "Z - Attachements/shot.png", "png bytes", 0)
	f.write(t, "a.md", "# Note A\nSee [[shot.png]].", time.Second)

	f.ingest(t)

	n := f.noteByTitle(t, "Note A")
	require.Len(t, n.OutboundLinks, 1)
	assert.Equal(t, note.ImageLink("Z - Attachements/shot.png"), n.OutboundLinks[0])

	// Asset links never become graph edges.
	assert.Empty(t, f.vectors.Graph().Relationships)
}

func TestClustersByFolder(t *testing.T) {
	f := newFixture(t)
	f.write(t, "proj/a.md", "# A\nBody.", 0)
	f.write(t, "proj/b.md", "# B\nBody.", time.Second)
	f.write(t, "root.md", "# R\nBody.", 2*time.Second)

	f.ingest(t)

	clusters := f.vectors.Graph().NoteClusters
	require.Len(t, clusters, 1)
	assert.ElementsMatch(t,
		[]string{NoteID("proj/a.md"), NoteID("proj/b.md")},
		clusters["proj"])
}
