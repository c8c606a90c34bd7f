package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/randalmurphy/notes-rag/internal/media"
	"github.com/randalmurphy/notes-rag/internal/resolve"
)

// MIME types for the recognized image extensions. Go's builtin table is
// consulted only for extensions missing here.
var imageMimeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".tiff": "image/tiff",
}

// MediaIngestor stores the images and rendered drawings a note references.
type MediaIngestor struct {
	store    *media.Store
	resolver *resolve.Resolver
	logger   *slog.Logger
}

// NewMediaIngestor creates an ingestor writing to store, locating files via
// resolver.
func NewMediaIngestor(store *media.Store, resolver *resolve.Resolver) *MediaIngestor {
	return &MediaIngestor{store: store, resolver: resolver, logger: slog.Default()}
}

// IngestImages stores every local image the note references. Unresolved
// references and unknown MIME types are logged and skipped.
func (m *MediaIngestor) IngestImages(content, noteID, noteFile string) {
	for _, imgPath := range ImagePaths(content) {
		resolved := m.resolver.Resolve(noteFile, imgPath)
		if resolved == "" {
			continue
		}
		// Store the same normalized path RewriteImageRefs puts into the
		// content, so the image endpoint's lookup hits.
		m.storeImage(resolved, normalizeRef(imgPath), noteID)
	}
}

// IngestDrawings stores the rendered PNG sibling of every excalidraw
// reference. The ".png" suffix is appended before resolution because the
// external editor renders "name.excalidraw" to "name.excalidraw.png".
func (m *MediaIngestor) IngestDrawings(content, noteID, noteFile string) {
	for _, ref := range DrawingRefs(content) {
		pngPath := normalizeRef(ref) + ".png"

		resolved := m.resolver.Resolve(noteFile, pngPath)
		if resolved == "" {
			m.logger.Warn("drawing PNG not found", "reference", pngPath)
			continue
		}
		m.storeImage(resolved, pngPath, noteID)
	}
}

func (m *MediaIngestor) storeImage(absPath, originalPath, noteID string) {
	content, err := os.ReadFile(absPath)
	if err != nil {
		m.logger.Warn("failed to read image", "path", absPath, "error", err)
		return
	}

	mimeType := imageMimeType(absPath)
	if mimeType == "" {
		m.logger.Warn("not an image or unknown type", "path", absPath)
		return
	}

	hash := sha256.Sum256(content)
	id := hex.EncodeToString(hash[:])

	m.store.Add(&media.Image{
		ID:           id,
		NoteID:       noteID,
		Content:      content,
		MimeType:     mimeType,
		RelativePath: originalPath,
		AbsolutePath: absPath,
	})
	m.logger.Info("stored image", "path", originalPath, "id", id)
}

// normalizeRef percent-decodes and cleans a reference the same way
// RewriteImageRefs does.
func normalizeRef(ref string) string {
	if decoded, err := url.PathUnescape(ref); err == nil {
		ref = decoded
	}
	return path.Clean(ref)
}

func imageMimeType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if mt, ok := imageMimeTypes[ext]; ok {
		return mt
	}
	if mt := mime.TypeByExtension(ext); strings.HasPrefix(mt, "image/") {
		return mt
	}
	return ""
}
