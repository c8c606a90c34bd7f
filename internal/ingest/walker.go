// Package ingest drives the incremental ingestion pass: file discovery,
// content processing, embedding, and the relationship-graph rebuild.
package ingest

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// noteIncludes matches prose notes. Drawing source files keep their
// ".excalidraw.md" suffix out of the note set via the exclude list.
var noteIncludes = []string{"**/*.md"}

var noteExcludes = []string{"**/*.excalidraw.md"}

// assetIncludes matches files that wiki-links can reference as assets.
var assetIncludes = []string{
	"**/*.png",
	"**/*.jpg",
	"**/*.jpeg",
	"**/*.gif",
	"**/*.svg",
	"**/*.webp",
	"**/*.bmp",
	"**/*.tiff",
	"**/*.excalidraw",
}

// Default excludes for folders a vault may carry but never links into.
var defaultExcludes = []string{
	"**/.git/**",
	"**/.obsidian/**",
	"**/.trash/**",
}

// walker traverses a directory tree respecting include/exclude patterns.
type walker struct {
	includes []string
	excludes []string
}

func newWalker(includes, excludes []string) *walker {
	return &walker{
		includes: includes,
		excludes: append(append([]string{}, defaultExcludes...), excludes...),
	}
}

// walk calls fn for each matching file with its path relative to root,
// using forward slashes, in filesystem-enumeration order.
func (w *walker) walk(root string, fn func(relPath string) error) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if relPath != "." && w.isExcluded(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if w.isExcluded(relPath) {
			return nil
		}
		if w.isIncluded(relPath) {
			return fn(relPath)
		}
		return nil
	})
}

func (w *walker) isExcluded(relPath string) bool {
	for _, pattern := range w.excludes {
		if matched, _ := doublestar.Match(pattern, relPath); matched {
			return true
		}
		// Directory patterns like "**/.git/**" should also match the
		// directory itself.
		if matched, _ := doublestar.Match(pattern, relPath+"/"); matched {
			return true
		}
	}
	return false
}

func (w *walker) isIncluded(relPath string) bool {
	for _, pattern := range w.includes {
		if matched, _ := doublestar.Match(pattern, relPath); matched {
			return true
		}
	}
	return false
}
