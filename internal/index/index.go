// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index provides semantic retrieval over chunks: an embedding
// client, a swappable vector index capability, and a hybrid searcher
// that fuses vector similarity with the store's lexical ranking. The
// core pipeline depends only on the VectorIndex interface, never on a
// particular backend.
// Implements: prd018-index (R1-R4);
//
//	docs/ARCHITECTURE § Index.
package index

import (
	"context"

	"github.com/meshintel/paperdex/pkg/types"
)

// Match is one vector search hit.
type Match struct {
	Chunk types.Chunk
	Score float64
}

// VectorIndex stores chunk embeddings and answers nearest-neighbor
// queries. Implementations must tolerate re-adding a chunk id (replace,
// not duplicate).
type VectorIndex interface {
	Add(ctx context.Context, chunks []types.Chunk, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, k int) ([]Match, error)

	// Remove drops every vector belonging to a paper; used when a paper
	// is re-ingested.
	Remove(ctx context.Context, paperID string) error
}

// Embedder turns text into embedding vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
