// Package embedding provides the embedding capability used by ingestion
// and retrieval: a client for the Voyage AI API plus an optional
// cache-backed wrapper.
package embedding

import "context"

// Embedder turns text into a fixed-dimension vector. Dimensionality must be
// uniform within a store.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
