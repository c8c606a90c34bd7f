package embedding

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoyageEmbed(t *testing.T) {
	apiKey := os.Getenv("VOYAGE_AI_API_KEY")
	if apiKey == "" {
		t.Skip("VOYAGE_AI_API_KEY not set, skipping integration test")
	}

	ctx := context.Background()
	client := NewVoyageClient(apiKey, "voyage-3")

	vector, err := client.Embed(ctx, "The quick brown fox jumps over the lazy dog.")
	require.NoError(t, err)
	require.NotEmpty(t, vector)

	// Vectors should be normalized (magnitude ~1)
	magnitude := float32(0)
	for _, v := range vector {
		magnitude += v * v
	}
	assert.InDelta(t, 1.0, magnitude, 0.01)
}

func TestVoyageEmbedBatchEmpty(t *testing.T) {
	client := NewVoyageClient("dummy-key", "voyage-3")

	vectors, err := client.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestVoyageDefaultModel(t *testing.T) {
	client := NewVoyageClient("dummy", "")
	assert.Equal(t, DefaultModel, client.Model())
}
