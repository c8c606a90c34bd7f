package store

import (
	"github.com/randalmurphy/notes-rag/internal/note"
)

// Related walks the undirected union of outbound and inbound links up to
// maxDepth hops from the given note, returning notes in BFS visit order.
// The source note itself is excluded.
func (s *VectorStore) Related(noteID string, maxDepth int) []*note.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.notes[noteID]; !ok {
		return nil
	}

	type item struct {
		id    string
		depth int
	}
	visited := map[string]struct{}{noteID: {}}
	queue := []item{{noteID, 0}}
	var related []*note.Note

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.depth > 0 {
			if n, ok := s.notes[cur.id]; ok {
				related = append(related, n)
			}
		}
		if cur.depth >= maxDepth {
			continue
		}
		n, ok := s.notes[cur.id]
		if !ok {
			continue
		}
		for _, next := range neighborIDs(n) {
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}
			queue = append(queue, item{next, cur.depth + 1})
		}
	}
	return related
}

// Cluster returns the other notes sharing the note's folder path.
func (s *VectorStore) Cluster(noteID string) []*note.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notes[noteID]
	if !ok || n.FolderPath == "" {
		return nil
	}

	var cluster []*note.Note
	for _, id := range s.graph.NoteClusters[n.FolderPath] {
		if id == noteID {
			continue
		}
		if member, ok := s.notes[id]; ok {
			cluster = append(cluster, member)
		}
	}
	return cluster
}

// Path returns the shortest undirected link path from source to target as a
// sequence of note ids, [source] when they are equal, or nil when either
// endpoint is unknown or no path exists.
func (s *VectorStore) Path(sourceID, targetID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.notes[sourceID]; !ok {
		return nil
	}
	if _, ok := s.notes[targetID]; !ok {
		return nil
	}
	if sourceID == targetID {
		return []string{sourceID}
	}

	visited := map[string]struct{}{sourceID: {}}
	type item struct {
		id   string
		path []string
	}
	queue := []item{{sourceID, []string{sourceID}}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		n, ok := s.notes[cur.id]
		if !ok {
			continue
		}
		for _, next := range neighborIDs(n) {
			if next == targetID {
				return append(append([]string{}, cur.path...), next)
			}
			if _, seen := visited[next]; seen {
				continue
			}
			if _, known := s.notes[next]; !known {
				continue
			}
			visited[next] = struct{}{}
			queue = append(queue, item{next, append(append([]string{}, cur.path...), next)})
		}
	}
	return nil
}

// Context returns the context text of the first relationship from source to
// target, or "".
func (s *VectorStore) Context(sourceID, targetID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rel := range s.graph.Relationships {
		if rel.SourceNoteID == sourceID && rel.TargetNoteID == targetID {
			return rel.Context
		}
	}
	return ""
}

// neighborIDs returns the undirected neighbors of a note: resolved outbound
// note links plus inbound links. Asset links are not graph nodes.
func neighborIDs(n *note.Note) []string {
	ids := make([]string, 0, len(n.OutboundLinks)+len(n.InboundLinks))
	for _, l := range n.OutboundLinks {
		if l.Kind == note.LinkNote {
			ids = append(ids, l.Target)
		}
	}
	return append(ids, n.InboundLinks...)
}
