// Package resolve maps reference strings found in note content to files on
// disk, encoding the precedence rules for note-relative paths, note asset
// folders, and shared attachment folders.
package resolve

import (
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Resolver resolves image and attachment references with most-specific-first
// precedence.
type Resolver struct {
	basePath          string
	attachmentFolders []string
	logger            *slog.Logger
}

// New creates a resolver rooted at basePath. attachmentFolders are folder
// names under basePath that hold shared assets, tried in order.
func New(basePath string, attachmentFolders []string) *Resolver {
	return &Resolver{
		basePath:          basePath,
		attachmentFolders: attachmentFolders,
		logger:            slog.Default(),
	}
}

// Resolve returns the absolute path of the file a reference points to, or
// "" when no candidate exists on disk.
//
// Candidates, in order:
//  1. relative to the note file
//  2. the note's "{stem}.assets" folder next to the note
//  3. each attachment folder, then "{stem}.assets" inside it
//  4. the reference taken relative to the base path
func (r *Resolver) Resolve(noteFile, reference string) string {
	clean := reference
	if decoded, err := url.PathUnescape(reference); err == nil {
		clean = decoded
	}

	for _, candidate := range r.Candidates(noteFile, clean) {
		if fileExists(candidate) {
			r.logger.Debug("resolved reference", "reference", reference, "path", candidate)
			return candidate
		}
	}

	r.logger.Warn("failed to resolve reference", "reference", reference, "note", noteFile)
	return ""
}

// Candidates returns every path Resolve would try, in order.
func (r *Resolver) Candidates(noteFile, reference string) []string {
	noteDir := filepath.Dir(noteFile)
	stem := fileStem(noteFile)
	base := filepath.Base(reference)

	candidates := []string{
		filepath.Join(noteDir, reference),
		filepath.Join(noteDir, stem+".assets", base),
	}
	for _, folder := range r.attachmentFolders {
		candidates = append(candidates,
			filepath.Join(r.basePath, folder, reference),
			filepath.Join(r.basePath, folder, stem+".assets", base),
		)
	}
	return append(candidates, filepath.Join(r.basePath, reference))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func fileStem(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
