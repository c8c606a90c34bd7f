// Package chunk splits markdown into token-bounded chunks, preserving
// document structure by splitting on headers first, then paragraphs, then
// sentences.
package chunk

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// DefaultMaxTokens is the token budget per chunk.
	DefaultMaxTokens = 1000
	// DefaultOverlap is the number of tokens of trailing context carried
	// into the next chunk.
	DefaultOverlap = 100

	tokenizerModel = "gpt-3.5-turbo"

	// OverlapPrefix starts every chunk that carries context from its
	// predecessor.
	OverlapPrefix = "Previous context: "
)

var (
	headerPattern   = regexp.MustCompile(`(?m)^#{1,6}[ \t]+.+$`)
	listItemPattern = regexp.MustCompile(`^\s*[-*+]|^\d+\.`)
)

// Chunker splits markdown text into chunks measured in BPE tokens.
type Chunker struct {
	maxTokens int
	overlap   int
	enc       *tiktoken.Tiktoken
}

// New creates a chunker. A non-positive maxTokens or a negative overlap
// falls back to the default; an overlap of zero disables overlap.
func New(maxTokens, overlap int) (*Chunker, error) {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	enc, err := tiktoken.EncodingForModel(tokenizerModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer for %s: %w", tokenizerModel, err)
	}
	return &Chunker{maxTokens: maxTokens, overlap: overlap, enc: enc}, nil
}

// Split returns the chunks of text without overlap context. Empty or
// whitespace-only input produces no chunks.
func (c *Chunker) Split(text string) []string {
	var chunks []string
	acc := accumulator{chunker: c}

	for _, section := range splitOnHeaders(text) {
		if c.tokenCount(section) <= c.maxTokens {
			chunks = append(chunks, acc.add(section)...)
			continue
		}
		for _, paragraph := range splitOnParagraphs(section) {
			if c.tokenCount(paragraph) <= c.maxTokens {
				chunks = append(chunks, acc.add(paragraph)...)
				continue
			}
			for _, sentence := range splitOnSentences(paragraph) {
				chunks = append(chunks, acc.add(sentence)...)
			}
		}
	}

	if acc.current != "" {
		chunks = append(chunks, strings.TrimSpace(acc.current))
	}
	return chunks
}

// WithOverlap prefixes each chunk after the first with the decoded last
// `overlap` tokens of its predecessor. Overlap is injected as text rather
// than as overlapping offsets, so chunk positions keep referring to the
// original slices.
func (c *Chunker) WithOverlap(chunks []string) []string {
	if c.overlap <= 0 || len(chunks) <= 1 {
		return chunks
	}
	out := make([]string, len(chunks))
	out[0] = chunks[0]
	for i := 1; i < len(chunks); i++ {
		prev := c.enc.Encode(chunks[i-1], nil, nil)
		if len(prev) > c.overlap {
			prev = prev[len(prev)-c.overlap:]
		}
		out[i] = OverlapPrefix + c.enc.Decode(prev) + "\n\n" + chunks[i]
	}
	return out
}

// Chunk is Split followed by WithOverlap.
func (c *Chunker) Chunk(text string) []string {
	return c.WithOverlap(c.Split(text))
}

func (c *Chunker) tokenCount(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// accumulator packs pieces into chunks up to the token budget, joining
// pieces with a blank line.
type accumulator struct {
	chunker *Chunker
	current string
	tokens  int
}

// add appends piece to the accumulating chunk, flushing first when the
// budget would overflow. It returns any flushed chunks.
func (a *accumulator) add(piece string) []string {
	piece = strings.TrimSpace(piece)
	if piece == "" {
		return nil
	}

	pieceTokens := a.chunker.tokenCount(piece)

	if a.tokens+pieceTokens > a.chunker.maxTokens {
		var flushed []string
		if a.current != "" {
			flushed = []string{strings.TrimSpace(a.current)}
		}
		a.current = piece
		a.tokens = pieceTokens
		return flushed
	}

	if a.current != "" {
		a.current += "\n\n"
	}
	a.current += piece
	a.tokens += pieceTokens
	return nil
}

// splitOnHeaders splits at every markdown header line, keeping each header
// with the content that follows it.
func splitOnHeaders(text string) []string {
	starts := headerPattern.FindAllStringIndex(text, -1)

	var cuts []int
	for _, s := range starts {
		if s[0] > 0 {
			cuts = append(cuts, s[0])
		}
	}

	var sections []string
	prev := 0
	for _, cut := range cuts {
		sections = append(sections, text[prev:cut])
		prev = cut
	}
	sections = append(sections, text[prev:])

	return trimNonEmpty(sections)
}

// splitOnParagraphs splits on blank lines not immediately followed by a
// list item, keeping lists attached to their introduction.
func splitOnParagraphs(text string) []string {
	lines := strings.Split(text, "\n")

	var parts []string
	var current []string

	for i, line := range lines {
		isEmpty := strings.TrimSpace(line) == ""
		nextIsList := i < len(lines)-1 && listItemPattern.MatchString(lines[i+1])

		current = append(current, line)

		if isEmpty && i < len(lines)-1 && !nextIsList {
			parts = append(parts, strings.Join(current, "\n"))
			current = nil
		}
	}
	if len(current) > 0 {
		parts = append(parts, strings.Join(current, "\n"))
	}

	return trimNonEmpty(parts)
}

// splitOnSentences splits after sentence-ending punctuation followed by
// whitespace.
func splitOnSentences(text string) []string {
	var sentences []string
	start := 0
	runes := []rune(text)

	for i := 0; i < len(runes); i++ {
		if runes[i] != '.' && runes[i] != '!' && runes[i] != '?' {
			continue
		}
		if i+1 >= len(runes) || !isSpace(runes[i+1]) {
			continue
		}
		sentences = append(sentences, string(runes[start:i+1]))
		j := i + 1
		for j < len(runes) && isSpace(runes[j]) {
			j++
		}
		start = j
		i = j - 1
	}
	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}

	return trimNonEmpty(sentences)
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func trimNonEmpty(parts []string) []string {
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
