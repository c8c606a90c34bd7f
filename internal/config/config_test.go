package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.MaxTokens)
	assert.Equal(t, 100, cfg.Overlap)
	assert.Equal(t, 10, cfg.RAGClosestChunks)
	assert.Equal(t, []string{"Z - Attachements"}, cfg.AttachmentFolders)
	assert.Equal(t, "data/vector.json", cfg.LocalVectorDBPath)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"max_tokens: 500\nrag_closest_chunks: 3\nattachment_folders:\n  - Assets\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.MaxTokens)
	assert.Equal(t, 3, cfg.RAGClosestChunks)
	assert.Equal(t, []string{"Assets"}, cfg.AttachmentFolders)
	// Untouched keys keep defaults.
	assert.Equal(t, 100, cfg.Overlap)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VOYAGE_AI_API_KEY", "vk")
	t.Setenv("RAG_CLOSEST_CHUNKS", "7")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "vk", cfg.VoyageAIAPIKey)
	assert.Equal(t, 7, cfg.RAGClosestChunks)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestValidateIngest(t *testing.T) {
	cfg := DefaultConfig()
	require.Error(t, cfg.ValidateIngest())
	cfg.VoyageAIAPIKey = "vk"
	require.NoError(t, cfg.ValidateIngest())
}

func TestValidateServe(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ValidateServe()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_USERNAME")

	cfg.AuthUsername = "u"
	cfg.AuthPassword = "p"
	cfg.SessionSecret = "s"
	cfg.AnthropicAPIKey = "ak"
	cfg.VoyageAIAPIKey = "vk"
	require.NoError(t, cfg.ValidateServe())
}
