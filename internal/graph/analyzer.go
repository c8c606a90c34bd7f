package graph

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Strength scores a link from frequency: 0.3 per case-insensitive mention
// of the target title in the content, plus 0.2 per mention on a header
// line, capped at 1.0.
func Strength(content, targetTitle string) float64 {
	if targetTitle == "" {
		return 0
	}
	lowerContent := strings.ToLower(content)
	lowerTitle := strings.ToLower(targetTitle)

	occurrences := strings.Count(lowerContent, lowerTitle)

	headerOccurrences := 0
	for _, line := range strings.Split(lowerContent, "\n") {
		if isHeaderLine(line) {
			headerOccurrences += strings.Count(line, lowerTitle)
		}
	}

	strength := 0.3*float64(occurrences) + 0.2*float64(headerOccurrences)
	if strength > 1.0 {
		strength = 1.0
	}
	return strength
}

// Context returns the text surrounding the first case-insensitive mention
// of the target title, contextChars bytes on each side, with whitespace
// collapsed. Empty when the title never occurs literally.
func Context(content, targetTitle string, contextChars int) string {
	if targetTitle == "" {
		return ""
	}
	idx := strings.Index(strings.ToLower(content), strings.ToLower(targetTitle))
	if idx < 0 {
		return ""
	}

	start := idx - contextChars
	if start < 0 {
		start = 0
	}
	end := idx + len(targetTitle) + contextChars
	if end > len(content) {
		end = len(content)
	}

	context := strings.TrimSpace(content[start:end])
	return whitespaceRun.ReplaceAllString(context, " ")
}

func isHeaderLine(line string) bool {
	hashes := 0
	for hashes < len(line) && line[hashes] == '#' {
		hashes++
	}
	return hashes >= 1 && hashes <= 6
}
