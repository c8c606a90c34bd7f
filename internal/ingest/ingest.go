package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/randalmurphy/notes-rag/internal/chunk"
	"github.com/randalmurphy/notes-rag/internal/embedding"
	"github.com/randalmurphy/notes-rag/internal/extract"
	"github.com/randalmurphy/notes-rag/internal/graph"
	"github.com/randalmurphy/notes-rag/internal/media"
	"github.com/randalmurphy/notes-rag/internal/note"
	"github.com/randalmurphy/notes-rag/internal/resolve"
	"github.com/randalmurphy/notes-rag/internal/store"
)

// Config carries the ingestion settings passed to the orchestrator at
// construction.
type Config struct {
	MaxTokens         int
	Overlap           int
	AttachmentFolders []string
	Concurrency       int // bounded parallelism for embedding calls

	// Persistence targets. When set, a successful pass saves both stores;
	// when empty (tests), the pass only mutates the in-memory stores.
	VectorDBPath   string
	ImageStorePath string
}

// DefaultAttachmentFolders is the shared asset folder name used when none
// is configured.
var DefaultAttachmentFolders = []string{"Z - Attachements"}

const defaultConcurrency = 8

// Orchestrator coordinates the ingestion pipeline: file discovery, content
// extraction, chunking, embedding, storage, and the relationship rebuild.
type Orchestrator struct {
	embedder embedding.Embedder
	vectors  *store.VectorStore
	images   *media.Store
	chunker  *chunk.Chunker
	cfg      Config
	logger   *slog.Logger
}

// New creates an orchestrator borrowing both stores for the duration of
// each pass.
func New(embedder embedding.Embedder, vectors *store.VectorStore, images *media.Store, cfg Config) (*Orchestrator, error) {
	if len(cfg.AttachmentFolders) == 0 {
		cfg.AttachmentFolders = DefaultAttachmentFolders
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}

	chunker, err := chunk.New(cfg.MaxTokens, cfg.Overlap)
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		embedder: embedder,
		vectors:  vectors,
		images:   images,
		chunker:  chunker,
		cfg:      cfg,
		logger:   slog.Default(),
	}, nil
}

// Result contains statistics from an ingestion pass.
type Result struct {
	TotalFiles    int
	ModifiedFiles int
	DeletedNotes  int
	ChunksCreated int
	Relationships int
	Errors        []error
}

// Ingest runs an incremental pass over folder: deletes notes whose files
// are gone, re-processes files modified since the last pass, rebuilds the
// relationship graph over all notes, and persists both stores.
func (o *Orchestrator) Ingest(ctx context.Context, folder string) (*Result, error) {
	result := &Result{}

	mdFiles, assetFiles, err := o.discover(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate %s: %w", folder, err)
	}
	result.TotalFiles = len(mdFiles)

	currentIDs := make(map[string]struct{}, len(mdFiles))
	for _, rel := range mdFiles {
		currentIDs[NoteID(rel)] = struct{}{}
	}

	for id := range o.vectors.NoteIDs() {
		if _, ok := currentIDs[id]; !ok {
			o.vectors.DeleteNote(id)
			result.DeletedNotes++
		}
	}

	modified := o.modifiedFiles(folder, mdFiles)
	result.ModifiedFiles = len(modified)
	o.logger.Info("ingestion pass",
		"total", len(mdFiles), "modified", len(modified), "deleted", result.DeletedNotes)

	resolver := resolve.New(folder, o.cfg.AttachmentFolders)
	ingestor := extract.NewMediaIngestor(o.images, resolver)

	for _, rel := range modified {
		chunksAdded, err := o.processFile(ctx, folder, rel, ingestor)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("process %s: %w", rel, err))
			o.logger.Warn("skipping file", "path", rel, "error", err)
			continue
		}
		result.ChunksCreated += chunksAdded
	}

	ids := make([]string, 0, len(currentIDs))
	for id := range currentIDs {
		ids = append(ids, id)
	}
	notes := o.vectors.NotesByIDs(ids)

	index := buildNameIndex(mdFiles, assetFiles)
	o.resolveLinks(notes, index)

	relGraph := graph.Build(notes)
	graph.UpdateInboundLinks(notes, relGraph.Relationships)
	o.vectors.ReplaceRelationshipGraph(relGraph)
	result.Relationships = len(relGraph.Relationships)

	if err := o.persist(); err != nil {
		return result, err
	}

	o.logger.Info("ingestion complete",
		"files", result.TotalFiles,
		"modified", result.ModifiedFiles,
		"deleted", result.DeletedNotes,
		"chunks", result.ChunksCreated,
		"relationships", result.Relationships,
		"errors", len(result.Errors))

	return result, nil
}

// discover returns markdown note files and asset files, as slash-separated
// paths relative to folder, in enumeration order.
func (o *Orchestrator) discover(folder string) (mdFiles, assetFiles []string, err error) {
	noteWalker := newWalker(noteIncludes, noteExcludes)
	if err := noteWalker.walk(folder, func(rel string) error {
		mdFiles = append(mdFiles, rel)
		return nil
	}); err != nil {
		return nil, nil, err
	}

	assetWalker := newWalker(assetIncludes, nil)
	if err := assetWalker.walk(folder, func(rel string) error {
		assetFiles = append(assetFiles, rel)
		return nil
	}); err != nil {
		return nil, nil, err
	}

	return mdFiles, assetFiles, nil
}

// modifiedFiles returns the files whose mtime exceeds the newest modified
// timestamp in the store. An empty store yields a full pass.
func (o *Orchestrator) modifiedFiles(folder string, mdFiles []string) []string {
	var lastModified float64
	existing := o.vectors.NoteIDs()
	ids := make([]string, 0, len(existing))
	for id := range existing {
		ids = append(ids, id)
	}
	for _, n := range o.vectors.NotesByIDs(ids) {
		if n.Modified > lastModified {
			lastModified = n.Modified
		}
	}

	var modified []string
	for _, rel := range mdFiles {
		info, err := os.Stat(filepath.Join(folder, filepath.FromSlash(rel)))
		if err != nil {
			continue
		}
		if unixSeconds(info) > lastModified {
			modified = append(modified, rel)
		}
	}
	return modified
}

// processFile ingests a single markdown file: stores referenced media,
// rewrites image references, chunks and embeds the content, and replaces
// the note and its chunks in the vector store.
func (o *Orchestrator) processFile(ctx context.Context, folder, rel string, ingestor *extract.MediaIngestor) (int, error) {
	absPath := filepath.Join(folder, filepath.FromSlash(rel))

	raw, err := os.ReadFile(absPath)
	if err != nil {
		return 0, err
	}
	if !utf8.Valid(raw) {
		return 0, fmt.Errorf("not valid UTF-8")
	}
	content := string(raw)

	info, err := os.Stat(absPath)
	if err != nil {
		return 0, err
	}
	mtime := unixSeconds(info)

	noteID := NoteID(rel)
	title := noteTitle(content, rel)

	ingestor.IngestImages(content, noteID, absPath)
	ingestor.IngestDrawings(content, noteID, absPath)

	content = extract.RewriteImageRefs(content, noteID)

	created := mtime
	if existing := o.vectors.Note(noteID); existing != nil {
		created = existing.Created
	}

	n := &note.Note{
		ID:         noteID,
		Title:      title,
		Path:       absPath,
		Content:    content,
		Created:    created,
		Modified:   mtime,
		Tags:       extract.Tags(content),
		FolderPath: folderPath(rel),
	}

	chunks, err := o.embedChunks(ctx, n)
	if err != nil {
		return 0, err
	}

	o.vectors.DeleteChunksForNote(noteID)
	o.vectors.UpsertNote(n)
	for _, c := range chunks {
		o.vectors.AddChunk(c)
	}

	return len(chunks), nil
}

// embedChunks splits the note content and embeds every chunk, with bounded
// parallelism and order restored by index. Positions are computed from the
// pre-overlap slices; the stored (and embedded) text carries the overlap
// context.
func (o *Orchestrator) embedChunks(ctx context.Context, n *note.Note) ([]*note.EmbeddedChunk, error) {
	rawChunks := o.chunker.Split(n.Content)
	if len(rawChunks) == 0 {
		return nil, nil
	}
	texts := o.chunker.WithOverlap(rawChunks)

	vectors := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Concurrency)
	for i, text := range texts {
		g.Go(func() error {
			v, err := o.embedder.Embed(gctx, text)
			if err != nil {
				return fmt.Errorf("embed chunk %d: %w", i, err)
			}
			vectors[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	chunks := make([]*note.EmbeddedChunk, len(texts))
	pos := 0
	for i, raw := range rawChunks {
		start := pos
		if idx := strings.Index(n.Content[pos:], raw); idx >= 0 {
			start = pos + idx
		}
		end := start + len(raw)
		pos = end

		chunks[i] = &note.EmbeddedChunk{
			Chunk: note.Chunk{
				ID:       fmt.Sprintf("%s_%d", n.ID, i),
				NoteID:   n.ID,
				Title:    n.Title,
				Text:     texts[i],
				StartPos: start,
				EndPos:   end,
			},
			Vector: vectors[i],
		}
	}
	return chunks, nil
}

// resolveLinks populates each note's outbound links and embedded-content
// hashes from its current content. Unresolved wikilinks are dropped.
func (o *Orchestrator) resolveLinks(notes map[string]*note.Note, index *nameIndex) {
	for _, n := range notes {
		n.OutboundLinks = nil
		for _, target := range extract.Wikilinks(n.Content) {
			link, ok := index.resolve(target)
			if !ok {
				o.logger.Warn("could not resolve wikilink", "target", target, "note", n.ID)
				continue
			}
			n.OutboundLinks = append(n.OutboundLinks, link)
		}

		n.EmbeddedContent = nil
		for _, embed := range extract.Embeds(n.Content) {
			hash := sha256.Sum256([]byte(embed))
			n.EmbeddedContent = append(n.EmbeddedContent, hex.EncodeToString(hash[:]))
		}
	}
}

// persist saves both stores. The pass boundary is the commit point: a
// failure before this leaves the on-disk snapshots untouched.
func (o *Orchestrator) persist() error {
	if o.cfg.VectorDBPath == "" && o.cfg.ImageStorePath == "" {
		return nil
	}
	if o.cfg.VectorDBPath != "" {
		if err := o.vectors.Save(o.cfg.VectorDBPath); err != nil {
			return fmt.Errorf("failed to save vector store: %w", err)
		}
	}
	if o.cfg.ImageStorePath != "" {
		if err := o.images.Save(o.cfg.ImageStorePath); err != nil {
			return fmt.Errorf("failed to save image store: %w", err)
		}
	}
	return nil
}

func noteTitle(content, rel string) string {
	name := path.Base(rel)
	title := strings.TrimSuffix(name, path.Ext(name))
	if strings.HasPrefix(content, "#") {
		first, _, _ := strings.Cut(content, "\n")
		title = strings.TrimSpace(strings.TrimLeft(first, "#"))
	}
	return title
}

func folderPath(rel string) string {
	dir := path.Dir(rel)
	if dir == "." {
		return ""
	}
	return dir
}

func unixSeconds(info os.FileInfo) float64 {
	return float64(info.ModTime().UnixNano()) / 1e9
}
