package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/randalmurphy/notes-rag/internal/note"
)

func TestContextFormatting(t *testing.T) {
	chunks := []note.Chunk{
		{NoteID: "n1", Title: "First", Text: "alpha"},
		{NoteID: "n2", Title: "Second", Text: "beta"},
	}
	ctx := Context(chunks)
	assert.Equal(t, "Note ID: n1\nTitle: First\nContent: alpha\n\nNote ID: n2\nTitle: Second\nContent: beta\n\n", ctx)
}

func TestBuild(t *testing.T) {
	prompt := Build("what is alpha?", []note.Chunk{{NoteID: "n1", Title: "First", Text: "alpha"}})
	assert.Contains(t, prompt, "Question: what is alpha?")
	assert.Contains(t, prompt, "Note ID: n1")
	assert.Contains(t, prompt, "Relevant notes:")
}

func TestBuildEmptyContext(t *testing.T) {
	prompt := Build("anything?", nil)
	assert.Contains(t, prompt, "Question: anything?")
}
