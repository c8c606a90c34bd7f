// cmd/notes-rag/serve.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphy/notes-rag/internal/llm"
	"github.com/randalmurphy/notes-rag/internal/media"
	"github.com/randalmurphy/notes-rag/internal/server"
	"github.com/randalmurphy/notes-rag/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat and retrieval API over the ingested stores",
	RunE:  runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8000", "Listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	vectors, err := store.Load(cfg.LocalVectorDBPath)
	if err != nil {
		return fmt.Errorf("failed to load vector store (run ingest first): %w", err)
	}
	images, err := media.Load(cfg.LocalImageStorePath)
	if err != nil {
		return fmt.Errorf("failed to load image store (run ingest first): %w", err)
	}

	embedder := buildEmbedder(cfg)
	chat := llm.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)

	srv := server.New(server.Config{
		AuthUsername:  cfg.AuthUsername,
		AuthPassword:  cfg.AuthPassword,
		SessionSecret: cfg.SessionSecret,
		SystemMessage: cfg.SystemMessage,
		ClosestChunks: cfg.RAGClosestChunks,
	}, vectors, images, embedder, chat)

	return srv.Run(serveAddr)
}
