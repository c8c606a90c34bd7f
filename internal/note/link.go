package note

import (
	"encoding/json"
	"strings"
)

// LinkKind distinguishes the three things a wiki-link can resolve to.
type LinkKind int

const (
	LinkNote LinkKind = iota
	LinkImage
	LinkDrawing
)

// Link is a resolved wiki-link target: either another note (by id) or an
// opaque asset reference (by path relative to the ingestion root). Only
// note links become relationship-graph edges.
type Link struct {
	Kind   LinkKind
	Target string // note id, or asset relative path
}

// NoteLink returns a link to a note by id.
func NoteLink(id string) Link { return Link{Kind: LinkNote, Target: id} }

// ImageLink returns an opaque link to an image asset.
func ImageLink(relPath string) Link { return Link{Kind: LinkImage, Target: relPath} }

// DrawingLink returns an opaque link to an excalidraw asset.
func DrawingLink(relPath string) Link { return Link{Kind: LinkDrawing, Target: relPath} }

// String renders the persisted form: a bare note id, or a prefixed asset
// reference ("image:{path}" / "excalidraw:{path}").
func (l Link) String() string {
	switch l.Kind {
	case LinkImage:
		return "image:" + l.Target
	case LinkDrawing:
		return "excalidraw:" + l.Target
	default:
		return l.Target
	}
}

// ParseLink is the inverse of String.
func ParseLink(s string) Link {
	if rest, ok := strings.CutPrefix(s, "image:"); ok {
		return Link{Kind: LinkImage, Target: rest}
	}
	if rest, ok := strings.CutPrefix(s, "excalidraw:"); ok {
		return Link{Kind: LinkDrawing, Target: rest}
	}
	return Link{Kind: LinkNote, Target: s}
}

func (l Link) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *Link) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = ParseLink(s)
	return nil
}
