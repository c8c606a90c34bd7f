package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImagePathsMarkdownSyntax(t *testing.T) {
	content := `Some text ![alt text](images/photo.png) more text`
	require.Equal(t, []string{"images/photo.png"}, ImagePaths(content))
}

func TestImagePathsBalancedParens(t *testing.T) {
	content := `![shot](folder/pic (1).png)`
	require.Equal(t, []string{"folder/pic (1).png"}, ImagePaths(content))
}

func TestImagePathsHTMLSyntax(t *testing.T) {
	content := `<img src="assets/a.jpg"> and <img alt='x' src='b.gif' width='10'>`
	require.Equal(t, []string{"assets/a.jpg", "b.gif"}, ImagePaths(content))
}

func TestImagePathsWikilinkSyntax(t *testing.T) {
	content := `![[screenshot.png]] and ![[not-an-image.pdf]]`
	require.Equal(t, []string{"screenshot.png"}, ImagePaths(content))
}

func TestImagePathsFiltersExternalURLs(t *testing.T) {
	content := `![ext](https://example.com/x.png) ![local](y.png) ![ext2](http://e.com/z.jpg)`
	require.Equal(t, []string{"y.png"}, ImagePaths(content))
}

func TestImagePathsDocumentOrder(t *testing.T) {
	content := "![a](1.png)\n<img src=\"2.png\">\n![[3.png]]"
	require.Equal(t, []string{"1.png", "2.png", "3.png"}, ImagePaths(content))
}

func TestWikilinks(t *testing.T) {
	content := `Links to [[Note One]] and [[note-two|displayed]] but not [plain](link).`
	require.Equal(t, []string{"Note One", "note-two"}, Wikilinks(content))
}

func TestEmbedsSupersetOfWikilinkImages(t *testing.T) {
	content := `![[anything at all]] plus [[regular link]]`
	require.Equal(t, []string{"anything at all"}, Embeds(content))
}

func TestDrawingRefs(t *testing.T) {
	content := `![[flow.excalidraw]] and ![[pic.png]] and ![[other.excalidraw]]`
	require.Equal(t, []string{"flow.excalidraw", "other.excalidraw"}, DrawingRefs(content))
}

func TestTags(t *testing.T) {
	content := "# Heading\n\nSome #project notes with #go/tips and again #project.\n"
	require.Equal(t, []string{"go/tips", "project"}, Tags(content))
}

func TestTagsIgnoresHeadings(t *testing.T) {
	assert.Empty(t, Tags("# Just A Heading\n## Another"))
}

func TestRewriteImageRefsMarkdown(t *testing.T) {
	content := `![x](Z%20-%20Attachements/Note.assets/Image.png)`
	got := RewriteImageRefs(content, "abc123")
	require.Equal(t, `![x](/api/images/abc123/Z - Attachements/Note.assets/Image.png)`, got)
}

func TestRewriteImageRefsPreservesAltText(t *testing.T) {
	got := RewriteImageRefs(`![my diagram](pics/d.png)`, "n1")
	require.Equal(t, `![my diagram](/api/images/n1/pics/d.png)`, got)
}

func TestRewriteImageRefsExcalidraw(t *testing.T) {
	got := RewriteImageRefs(`![[diagram.excalidraw]]`, "n1")
	require.Equal(t, `![](/api/images/n1/diagram.excalidraw.png)`, got)
}

func TestRewriteImageRefsWikilinkImage(t *testing.T) {
	got := RewriteImageRefs(`before ![[shot.png]] after`, "n2")
	require.Equal(t, `before ![](/api/images/n2/shot.png) after`, got)
}

func TestRewriteImageRefsLeavesExternalURLs(t *testing.T) {
	content := `![remote](https://example.com/pic.png)`
	require.Equal(t, content, RewriteImageRefs(content, "n1"))
}

func TestRewriteImageRefsHTML(t *testing.T) {
	got := RewriteImageRefs(`<img src="a/b.jpg">`, "n3")
	require.Equal(t, `![](/api/images/n3/a/b.jpg)`, got)
}

func TestRewriteLeavesPlainTextAlone(t *testing.T) {
	content := "No images here, just [[a link]] and text."
	require.Equal(t, content, RewriteImageRefs(content, "n1"))
}
