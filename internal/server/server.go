// Package server exposes the retrieval surface over HTTP: session login,
// streaming chat, note lookup, fuzzy title search, and image serving.
package server

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/randalmurphy/notes-rag/internal/embedding"
	"github.com/randalmurphy/notes-rag/internal/llm"
	"github.com/randalmurphy/notes-rag/internal/media"
	"github.com/randalmurphy/notes-rag/internal/store"
)

// Config holds the settings the HTTP surface needs.
type Config struct {
	AuthUsername  string
	AuthPassword  string
	SessionSecret string
	SystemMessage string
	ClosestChunks int
}

// Server serves the retrieval API over a read-only view of both stores.
type Server struct {
	engine   *gin.Engine
	cfg      Config
	vectors  *store.VectorStore
	images   *media.Store
	embedder embedding.Embedder
	chat     llm.Streamer
	logger   *slog.Logger
}

// New wires the routes. The stores are read concurrently and never mutated
// while serving.
func New(cfg Config, vectors *store.VectorStore, images *media.Store, embedder embedding.Embedder, chat llm.Streamer) *Server {
	if cfg.ClosestChunks <= 0 {
		cfg.ClosestChunks = 10
	}

	s := &Server{
		cfg:      cfg,
		vectors:  vectors,
		images:   images,
		embedder: embedder,
		chat:     chat,
		logger:   slog.Default(),
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/health", s.handleHealth)
	engine.POST("/login", s.handleLogin)
	engine.POST("/logout", s.handleLogout)

	authed := engine.Group("/", s.requireSession())
	authed.GET("/chat", s.handleChat)
	authed.GET("/api/notes/search", s.handleNoteSearch)
	authed.GET("/api/images/:note_id/*path", s.handleImage)
	authed.GET("/note/:note_id", s.handleNote)

	s.engine = engine
	return s
}

// Handler returns the underlying HTTP handler (used by tests).
func (s *Server) Handler() *gin.Engine {
	return s.engine
}

// Run serves on addr until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("serving", "addr", addr)
	return s.engine.Run(addr)
}
