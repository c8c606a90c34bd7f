// cmd/notes-rag/search.go
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphy/notes-rag/internal/store"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the ingested notes for chunks similar to a query",
	RunE:  runSearch,
}

var (
	searchQuery string
	searchLimit int
)

func init() {
	searchCmd.Flags().StringVar(&searchQuery, "query", "", "Query text (required)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "k", 0, "Number of chunks to return (default from config)")
	searchCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateIngest(); err != nil {
		return err
	}

	vectors, err := store.Load(cfg.LocalVectorDBPath)
	if err != nil {
		return fmt.Errorf("failed to load vector store (run ingest first): %w", err)
	}

	limit := searchLimit
	if limit <= 0 {
		limit = cfg.RAGClosestChunks
	}

	embedder := buildEmbedder(cfg)
	vector, err := embedder.Embed(context.Background(), searchQuery)
	if err != nil {
		return fmt.Errorf("failed to embed query: %w", err)
	}

	chunks := vectors.Closest(vector, limit)
	if len(chunks) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for i, c := range chunks {
		fmt.Printf("%d. %s (note %s)\n", i+1, c.Title, c.NoteID)
		text := c.Text
		if len(text) > 200 {
			text = text[:200] + "..."
		}
		fmt.Printf("   %s\n\n", text)
	}
	return nil
}
