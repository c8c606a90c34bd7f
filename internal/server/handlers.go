package server

import (
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/randalmurphy/notes-rag/internal/prompt"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// handleChat embeds the query, retrieves the closest chunks, and streams
// the model's answer as server-sent events.
func (s *Server) handleChat(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	message := c.Query("message")
	if message == "" {
		s.writeSSEError(c, "No message provided")
		return
	}

	ctx := c.Request.Context()

	vector, err := s.embedder.Embed(ctx, message)
	if err != nil {
		s.logger.Error("failed to embed query", "error", err)
		s.writeSSEError(c, err.Error())
		return
	}

	chunks := s.vectors.Closest(vector, s.cfg.ClosestChunks)
	ragPrompt := prompt.Build(message, chunks)

	err = s.chat.Stream(ctx, s.cfg.SystemMessage, ragPrompt, func(delta string) error {
		s.writeSSEData(c, delta)
		return nil
	})
	if err != nil {
		s.logger.Error("error in chat stream", "error", err)
		s.writeSSEError(c, err.Error())
		return
	}

	fmt.Fprint(c.Writer, "event: done\ndata:\n\n")
	c.Writer.Flush()
}

// writeSSEData writes content as an SSE data event, prefixing every line so
// multiline content survives the framing.
func (s *Server) writeSSEData(c *gin.Context, content string) {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = "data: " + line
	}
	fmt.Fprint(c.Writer, strings.Join(lines, "\n")+"\n\n")
	c.Writer.Flush()
}

func (s *Server) writeSSEError(c *gin.Context, msg string) {
	fmt.Fprintf(c.Writer, "event: error\ndata: %s\n\n", msg)
	c.Writer.Flush()
}

// handleNoteSearch resolves a title to a note for wikilink navigation.
func (s *Server) handleNoteSearch(c *gin.Context) {
	title := c.Query("title")

	n := s.vectors.FindByTitle(title)
	if n == nil {
		c.JSON(http.StatusOK, gin.H{
			"note_id": nil,
			"title":   title,
			"exists":  false,
			"url":     nil,
		})
		return
	}

	display := n.Title
	if display == "" {
		name := filepath.Base(n.Path)
		display = strings.TrimSuffix(name, filepath.Ext(name))
	}
	c.JSON(http.StatusOK, gin.H{
		"note_id": n.ID,
		"title":   display,
		"exists":  true,
		"url":     "/note/" + n.ID,
	})
}

// handleImage serves stored image bytes with long-lived caching headers.
func (s *Server) handleImage(c *gin.Context) {
	noteID := c.Param("note_id")
	path := strings.TrimPrefix(c.Param("path"), "/")

	if decoded, err := url.PathUnescape(path); err == nil {
		path = decoded
	}

	imageID, ok := s.images.Lookup(noteID, path)
	if !ok {
		s.logger.Warn("image not found", "note_id", noteID, "path", path)
		c.JSON(http.StatusNotFound, gin.H{"detail": "Image not found"})
		return
	}

	img, err := s.images.Get(imageID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Image not found"})
		return
	}

	c.Header("Cache-Control", "public, max-age=31536000")
	c.Header("ETag", fmt.Sprintf("%q", imageID))
	c.Data(http.StatusOK, img.MimeType, img.Content)
}

// handleNote returns the stored note as JSON.
func (s *Server) handleNote(c *gin.Context) {
	n := s.vectors.Note(c.Param("note_id"))
	if n == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Note not found"})
		return
	}
	c.JSON(http.StatusOK, n)
}
