// Package extract provides pure functions over markdown note content:
// image, wiki-link, embed, and tag extraction, plus rewriting of inline
// image references to canonical API URLs.
package extract

import (
	"net/url"
	"path"
	"regexp"
	"sort"
	"strings"
)

// imageExts is the alternation of recognized raster/vector image extensions.
const imageExts = `png|jpg|jpeg|gif|svg|webp|bmp|tiff`

var (
	// ![alt](path) with one level of balanced parentheses inside path,
	// <img src="path"> with either quote style, and ![[name.ext]].
	imagePattern = regexp.MustCompile(
		`!\[([^\]]*)\]\(([^\(\)]*(?:\([^\(\)]*\)[^\(\)]*)*)\)` +
			`|<img[^>]+src=['"](.*?)['"][^>]*>` +
			`|!\[\[([^\]]+\.(?:` + imageExts + `))\]\]`)

	// Rewrite additionally recognizes ![[file.excalidraw]] so drawings get
	// rewritten to their rendered PNG.
	rewritePattern = regexp.MustCompile(
		`!\[([^\]]*)\]\(([^\(\)]*(?:\([^\(\)]*\)[^\(\)]*)*)\)` +
			`|<img[^>]+src=['"](.*?)['"][^>]*>` +
			`|!\[\[([^\]]+\.excalidraw)\]\]` +
			`|!\[\[([^\]]+\.(?:` + imageExts + `))\]\]`)

	wikilinkPattern   = regexp.MustCompile(`\[\[([^\]|]+)(?:\|[^\]]*)?\]\]`)
	embedPattern      = regexp.MustCompile(`!\[\[([^\]]+)\]\]`)
	excalidrawPattern = regexp.MustCompile(`!\[\[([^\]]+\.excalidraw)\]\]`)
	tagPattern        = regexp.MustCompile(`(?:^|\s)#([A-Za-z][\w/-]*)`)
)

// ImagePaths returns every local image reference in document order.
// External http(s) URLs are filtered out.
func ImagePaths(content string) []string {
	var paths []string
	for _, m := range imagePattern.FindAllStringSubmatch(content, -1) {
		p := firstNonEmpty(m[2], m[3], m[4])
		p = strings.TrimSpace(p)
		if p == "" || isExternal(p) {
			continue
		}
		paths = append(paths, p)
	}
	return paths
}

// Wikilinks returns the targets of [[target]] and [[target|display]] links,
// unchanged, in document order.
func Wikilinks(content string) []string {
	return captures(wikilinkPattern, content)
}

// Embeds returns the targets of ![[target]] embeds in document order.
func Embeds(content string) []string {
	return captures(embedPattern, content)
}

// DrawingRefs returns the targets of ![[file.excalidraw]] embeds.
func DrawingRefs(content string) []string {
	return captures(excalidrawPattern, content)
}

// Tags returns the sorted, deduplicated set of #tag tokens in the content.
// Heading markers do not match because a tag must start with a letter.
func Tags(content string) []string {
	seen := map[string]struct{}{}
	for _, m := range tagPattern.FindAllStringSubmatch(content, -1) {
		seen[m[1]] = struct{}{}
	}
	if len(seen) == 0 {
		return nil
	}
	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// RewriteImageRefs replaces every local image reference with a markdown
// image pointing at /api/images/{note_id}/{path}. Excalidraw references are
// redirected to their rendered ".excalidraw.png" sibling. External URLs are
// left untouched; wikilink forms have no alt text to preserve.
func RewriteImageRefs(content, noteID string) string {
	var b strings.Builder
	last := 0
	for _, idx := range rewritePattern.FindAllStringSubmatchIndex(content, -1) {
		b.WriteString(content[last:idx[0]])
		b.WriteString(rewriteMatch(content, idx, noteID))
		last = idx[1]
	}
	b.WriteString(content[last:])
	return b.String()
}

func rewriteMatch(content string, idx []int, noteID string) string {
	whole := content[idx[0]:idx[1]]
	alt := group(content, idx, 1)
	imgPath := strings.TrimSpace(firstNonEmpty(
		group(content, idx, 2),
		group(content, idx, 3),
		group(content, idx, 4),
		group(content, idx, 5),
	))

	if imgPath == "" || isExternal(imgPath) {
		return whole
	}

	if strings.HasSuffix(imgPath, ".excalidraw") {
		imgPath += ".png"
	}

	if decoded, err := url.PathUnescape(imgPath); err == nil {
		imgPath = decoded
	}
	imgPath = path.Clean(imgPath)

	return "![" + alt + "](/api/images/" + noteID + "/" + imgPath + ")"
}

func captures(re *regexp.Regexp, content string) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(content, -1) {
		out = append(out, m[1])
	}
	return out
}

// group returns submatch n of a FindAllStringSubmatchIndex entry, or "".
func group(content string, idx []int, n int) string {
	if 2*n+1 >= len(idx) || idx[2*n] < 0 {
		return ""
	}
	return content[idx[2*n]:idx[2*n+1]]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func isExternal(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}
