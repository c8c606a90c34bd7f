// Package note defines the document model shared by the ingestion pipeline
// and the retrieval surface: notes, embedded chunks, and the typed
// relationship graph between notes.
package note

// Note represents a full, non-chunked markdown note.
type Note struct {
	ID      string `json:"id"`    // md5 of the path relative to the ingestion root
	Title   string `json:"title"` // heading on the first line, else the file stem
	Path    string `json:"path"`  // source path on disk
	Content string `json:"content"`

	// Filesystem timestamps as Unix seconds. Created is fixed at first
	// ingestion; Modified tracks the file's mtime.
	Created  float64 `json:"created"`
	Modified float64 `json:"modified"`

	OutboundLinks   []Link   `json:"outbound_links"`
	InboundLinks    []string `json:"inbound_links"`
	EmbeddedContent []string `json:"embedded_content"` // sha256 of embed references
	Tags            []string `json:"tags"`
	FolderPath      string   `json:"folder_path"` // "" for root-level notes
}

// Chunk is a token-bounded slice of a note's content, the atomic unit of
// vector search. Start/end positions refer to the pre-overlap slice in the
// note's rewritten content.
type Chunk struct {
	ID       string `json:"id"` // "{note_id}_{ordinal}"
	NoteID   string `json:"note_id"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	StartPos int    `json:"start_pos"`
	EndPos   int    `json:"end_pos"`
}

// EmbeddedChunk is a chunk carrying its embedding vector.
type EmbeddedChunk struct {
	Chunk
	Vector []float32 `json:"vector"`
}
