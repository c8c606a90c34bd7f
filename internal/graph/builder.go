// Package graph derives the typed relationship graph from resolved
// wiki-links and folder co-membership.
package graph

import (
	"sort"

	"github.com/randalmurphy/notes-rag/internal/note"
)

// Build derives the relationship graph from the notes' resolved outbound
// links. Only links to known notes become edges; asset links are skipped.
// Edges come out sorted by (source, target) so persisted documents are
// stable across passes.
func Build(notes map[string]*note.Note) note.RelationshipGraph {
	return note.RelationshipGraph{
		Relationships: buildRelationships(notes),
		NoteClusters:  buildClusters(notes),
	}
}

// UpdateInboundLinks clears every note's inbound links and repopulates them
// from the edge set, so inbound links are exactly the edge sources
// targeting each note.
func UpdateInboundLinks(notes map[string]*note.Note, relationships []note.Relationship) {
	for _, n := range notes {
		n.InboundLinks = nil
	}
	for _, rel := range relationships {
		if target, ok := notes[rel.TargetNoteID]; ok {
			target.InboundLinks = append(target.InboundLinks, rel.SourceNoteID)
		}
	}
}

func buildRelationships(notes map[string]*note.Note) []note.Relationship {
	var relationships []note.Relationship

	for _, n := range notes {
		for _, link := range n.OutboundLinks {
			if link.Kind != note.LinkNote {
				continue
			}
			target, ok := notes[link.Target]
			if !ok {
				continue
			}
			relationships = append(relationships, note.Relationship{
				SourceNoteID: n.ID,
				TargetNoteID: link.Target,
				Type:         note.RelWikilink,
				Context:      Context(n.Content, target.Title, 100),
				Strength:     Strength(n.Content, target.Title),
			})
		}
	}

	sort.SliceStable(relationships, func(i, j int) bool {
		if relationships[i].SourceNoteID != relationships[j].SourceNoteID {
			return relationships[i].SourceNoteID < relationships[j].SourceNoteID
		}
		return relationships[i].TargetNoteID < relationships[j].TargetNoteID
	})
	return relationships
}

func buildClusters(notes map[string]*note.Note) map[string][]string {
	clusters := map[string][]string{}
	for _, n := range notes {
		if n.FolderPath != "" {
			clusters[n.FolderPath] = append(clusters[n.FolderPath], n.ID)
		}
	}
	for folder := range clusters {
		sort.Strings(clusters[folder])
	}
	return clusters
}
