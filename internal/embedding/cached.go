package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/randalmurphy/notes-rag/internal/cache"
)

const cacheTTL = 30 * 24 * time.Hour

// CachedEmbedder wraps an Embedder with a Redis-backed cache keyed by model
// and content hash. Cache failures degrade to the inner embedder.
type CachedEmbedder struct {
	inner  Embedder
	cache  *cache.RedisCache
	model  string
	logger *slog.Logger
}

// NewCachedEmbedder wraps inner with the given cache.
func NewCachedEmbedder(inner Embedder, c *cache.RedisCache, model string) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, cache: c, model: model, logger: slog.Default()}
}

// Embed returns the cached vector for text when present, otherwise embeds
// and stores it.
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cache.EmbeddingCacheKey(e.model, contentHash(text))

	if cached, err := e.cache.Get(ctx, key); err == nil && cached != "" {
		var vector []float32
		if err := json.Unmarshal([]byte(cached), &vector); err == nil {
			return vector, nil
		}
	}

	vector, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(vector); err == nil {
		if err := e.cache.Set(ctx, key, string(data), cacheTTL); err != nil {
			e.logger.Debug("failed to cache embedding", "error", err)
		}
	}

	return vector, nil
}

func contentHash(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}
