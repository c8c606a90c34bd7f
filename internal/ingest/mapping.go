package ingest

import (
	"crypto/md5"
	"encoding/hex"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/randalmurphy/notes-rag/internal/note"
)

// NoteID derives a note's id from its path relative to the ingestion root.
func NoteID(relPath string) string {
	sum := md5.Sum([]byte(relPath))
	return hex.EncodeToString(sum[:])
}

// nameIndex maps the ways a note or asset can be referenced from a
// wiki-link (stem, file name, relative path) to its resolved link. Note
// entries take precedence over asset entries on key collision.
type nameIndex struct {
	entries map[string]note.Link
	keys    []string // sorted, for deterministic stem scans
	logger  *slog.Logger
}

// buildNameIndex indexes markdown files and asset files by stem, name, and
// relative path. Colliding asset keys never displace note keys; collisions
// are logged.
func buildNameIndex(mdFiles, assetFiles []string) *nameIndex {
	x := &nameIndex{entries: map[string]note.Link{}, logger: slog.Default()}

	for _, rel := range mdFiles {
		x.put(rel, note.NoteLink(NoteID(rel)), true)
	}
	for _, rel := range assetFiles {
		link := note.ImageLink(rel)
		if strings.HasSuffix(rel, ".excalidraw") {
			link = note.DrawingLink(rel)
		}
		x.put(rel, link, false)
	}

	x.keys = make([]string, 0, len(x.entries))
	for k := range x.entries {
		x.keys = append(x.keys, k)
	}
	sort.Strings(x.keys)

	return x
}

func (x *nameIndex) put(relPath string, link note.Link, overwrite bool) {
	name := path.Base(relPath)
	stem := strings.TrimSuffix(name, path.Ext(name))

	for _, key := range []string{stem, name, relPath} {
		if existing, ok := x.entries[key]; ok && existing != link {
			x.logger.Warn("name index collision", "key", key,
				"existing", existing.String(), "candidate", link.String())
			if !overwrite {
				continue
			}
		}
		x.entries[key] = link
	}
}

// resolve maps a wiki-link target to a note id or asset reference. It tries
// an exact key, the key with ".md" appended, a key-stem match, and finally
// a lenient case-insensitive match against asset entries.
func (x *nameIndex) resolve(link string) (note.Link, bool) {
	if l, ok := x.entries[link]; ok {
		return l, true
	}
	if l, ok := x.entries[link+".md"]; ok {
		return l, true
	}

	for _, key := range x.keys {
		if keyStem(key) == link {
			return x.entries[key], true
		}
	}

	lower := strings.ToLower(link)
	for _, key := range x.keys {
		l := x.entries[key]
		if l.Kind == note.LinkNote {
			continue
		}
		if strings.ToLower(key) == lower || strings.ToLower(keyStem(key)) == lower {
			return l, true
		}
	}

	return note.Link{}, false
}

func keyStem(key string) string {
	name := path.Base(key)
	return strings.TrimSuffix(name, path.Ext(name))
}
