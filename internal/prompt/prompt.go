// Package prompt assembles the retrieval-augmented prompt sent to the chat
// model.
package prompt

import (
	"fmt"
	"strings"

	"github.com/randalmurphy/notes-rag/internal/note"
)

const template = `Answer the question based on the context from your notes below.

Relevant notes:
%s

Question: %s

Answer: `

// Context formats retrieved chunks for inclusion in the prompt.
func Context(chunks []note.Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		fmt.Fprintf(&b, "Note ID: %s\nTitle: %s\nContent: %s\n\n", c.NoteID, c.Title, c.Text)
	}
	return b.String()
}

// Build returns the full RAG prompt for a question and its retrieved
// chunks.
func Build(question string, chunks []note.Chunk) string {
	return fmt.Sprintf(template, Context(chunks), question)
}
