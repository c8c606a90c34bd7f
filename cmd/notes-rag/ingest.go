// cmd/notes-rag/ingest.go
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/randalmurphy/notes-rag/internal/cache"
	"github.com/randalmurphy/notes-rag/internal/config"
	"github.com/randalmurphy/notes-rag/internal/embedding"
	"github.com/randalmurphy/notes-rag/internal/ingest"
	"github.com/randalmurphy/notes-rag/internal/media"
	"github.com/randalmurphy/notes-rag/internal/store"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest a folder of markdown notes into the vector and image stores",
	RunE:  runIngest,
}

var (
	ingestInFolder   string
	ingestVectorDB   string
	ingestImageStore string
)

func init() {
	ingestCmd.Flags().StringVar(&ingestInFolder, "in-folder", "", "Folder containing markdown notes (required)")
	ingestCmd.Flags().StringVar(&ingestVectorDB, "outfile-vector-db", "", "Vector store output path (default from config)")
	ingestCmd.Flags().StringVar(&ingestImageStore, "outfile-image-store", "", "Image store output path (default from config)")
	ingestCmd.MarkFlagRequired("in-folder")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateIngest(); err != nil {
		return err
	}

	folder, err := filepath.Abs(ingestInFolder)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	if info, err := os.Stat(folder); err != nil || !info.IsDir() {
		return fmt.Errorf("notes folder not found: %s", folder)
	}

	vectorPath := cfg.LocalVectorDBPath
	if ingestVectorDB != "" {
		vectorPath = ingestVectorDB
	}
	imagePath := cfg.LocalImageStorePath
	if ingestImageStore != "" {
		imagePath = ingestImageStore
	}

	vectors, images := loadStores(vectorPath, imagePath)

	embedder := buildEmbedder(cfg)

	orch, err := ingest.New(embedder, vectors, images, ingest.Config{
		MaxTokens:         cfg.MaxTokens,
		Overlap:           cfg.Overlap,
		AttachmentFolders: cfg.AttachmentFolders,
		VectorDBPath:      vectorPath,
		ImageStorePath:    imagePath,
	})
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	fmt.Printf("Ingesting %s...\n", folder)

	result, err := orch.Ingest(context.Background(), folder)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("\nIngestion complete:\n")
	fmt.Printf("  Total files:    %d\n", result.TotalFiles)
	fmt.Printf("  Modified:       %d\n", result.ModifiedFiles)
	fmt.Printf("  Deleted:        %d\n", result.DeletedNotes)
	fmt.Printf("  Chunks created: %d\n", result.ChunksCreated)
	fmt.Printf("  Relationships:  %d\n", result.Relationships)

	if len(result.Errors) > 0 {
		fmt.Printf("  Errors: %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("    - %v\n", e)
		}
	}

	return nil
}

// loadStores opens existing store documents for an incremental pass, or
// starts empty ones.
func loadStores(vectorPath, imagePath string) (*store.VectorStore, *media.Store) {
	vectors, err := store.Load(vectorPath)
	if err != nil {
		vectors = store.NewVectorStore()
	}
	images, err := media.Load(imagePath)
	if err != nil {
		images = media.NewStore()
	}
	return vectors, images
}

// buildEmbedder creates the Voyage client, wrapped with the Redis cache
// when one is configured.
func buildEmbedder(cfg *config.Config) embedding.Embedder {
	var embedder embedding.Embedder = embedding.NewVoyageClient(cfg.VoyageAIAPIKey, cfg.EmbeddingModel)

	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Redis unavailable, embeddings will not be cached: %v\n", err)
		} else {
			embedder = embedding.NewCachedEmbedder(embedder, redisCache, cfg.EmbeddingModel)
		}
	}

	return embedder
}
