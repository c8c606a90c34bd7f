package store

import (
	"path/filepath"
	"strings"

	"github.com/randalmurphy/notes-rag/internal/note"
)

// FindByTitle resolves a title to a note using progressively fuzzier
// strategies: exact match, case-insensitive, space/underscore normalized,
// file-stem match, then substring containment.
func (s *VectorStore) FindByTitle(title string) *note.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	strategies := []func(string) *note.Note{
		s.matchExactTitle,
		s.matchCaseInsensitiveTitle,
		s.matchNormalizedTitle,
		s.matchStem,
		s.matchSubstringTitle,
	}
	for _, match := range strategies {
		if n := match(title); n != nil {
			return n
		}
	}
	return nil
}

func (s *VectorStore) matchExactTitle(title string) *note.Note {
	for _, n := range s.notes {
		if n.Title == title {
			return n
		}
	}
	return nil
}

func (s *VectorStore) matchCaseInsensitiveTitle(title string) *note.Note {
	lower := strings.ToLower(title)
	for _, n := range s.notes {
		if n.Title != "" && strings.ToLower(n.Title) == lower {
			return n
		}
	}
	return nil
}

func (s *VectorStore) matchNormalizedTitle(title string) *note.Note {
	normalized := normalizeTitle(title)
	for _, n := range s.notes {
		if n.Title != "" && normalizeTitle(n.Title) == normalized {
			return n
		}
	}
	return nil
}

func (s *VectorStore) matchStem(title string) *note.Note {
	normalized := normalizeTitle(title)
	lower := strings.ToLower(title)
	for _, n := range s.notes {
		stem := strings.ToLower(fileStem(n.Path))
		if stem == normalized || stem == lower {
			return n
		}
	}
	return nil
}

func (s *VectorStore) matchSubstringTitle(title string) *note.Note {
	lower := strings.ToLower(title)
	for _, n := range s.notes {
		if n.Title != "" && strings.Contains(strings.ToLower(n.Title), lower) {
			return n
		}
	}
	return nil
}

func normalizeTitle(title string) string {
	return strings.ReplaceAll(strings.ToLower(title), " ", "_")
}

func fileStem(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
