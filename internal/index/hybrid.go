// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"fmt"
	"sort"

	"github.com/meshintel/paperdex/internal/store"
	"github.com/meshintel/paperdex/pkg/types"
)

// defaultLexicalWeight balances lexical and vector evidence evenly.
const defaultLexicalWeight = 0.5

// LexicalSearcher is the slice of the store the hybrid searcher needs.
type LexicalSearcher interface {
	SearchChunks(ctx context.Context, query string, limit int) ([]store.ChunkHit, error)
}

// Hybrid fuses FTS5 lexical ranking with vector similarity. Scores from
// each side are max-normalized to [0,1] before the weighted sum, so
// neither ranking dominates on raw magnitude.
type Hybrid struct {
	index    VectorIndex
	embedder Embedder
	lexical  LexicalSearcher
	weight   float64
}

// NewHybrid builds a hybrid searcher. lexicalWeight outside (0,1] falls
// back to the default.
func NewHybrid(idx VectorIndex, embedder Embedder, lexical LexicalSearcher, lexicalWeight float64) *Hybrid {
	if lexicalWeight <= 0 || lexicalWeight > 1 {
		lexicalWeight = defaultLexicalWeight
	}
	return &Hybrid{index: idx, embedder: embedder, lexical: lexical, weight: lexicalWeight}
}

// Result is one fused retrieval hit.
type Result struct {
	Chunk types.Chunk
	Score float64
}

// Search retrieves the k best chunks for query across both rankings.
func (h *Hybrid) Search(ctx context.Context, query string, k int) ([]Result, error) {
	if k <= 0 {
		k = 10
	}

	lexHits, err := h.lexical.SearchChunks(ctx, query, k*2)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}

	vectors, err := h.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	vecHits, err := h.index.Search(ctx, vectors[0], k*2)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	type fused struct {
		chunk types.Chunk
		score float64
	}
	byID := make(map[string]*fused)

	lexMax := 0.0
	for _, hit := range lexHits {
		if hit.Score > lexMax {
			lexMax = hit.Score
		}
	}
	for _, hit := range lexHits {
		normalized := 0.0
		if lexMax > 0 {
			normalized = hit.Score / lexMax
		}
		byID[hit.ChunkID] = &fused{chunk: hit.Chunk, score: h.weight * normalized}
	}

	vecMax := 0.0
	for _, match := range vecHits {
		if match.Score > vecMax {
			vecMax = match.Score
		}
	}
	for _, match := range vecHits {
		normalized := 0.0
		if vecMax > 0 {
			normalized = match.Score / vecMax
		}
		contribution := (1 - h.weight) * normalized
		if existing, ok := byID[match.Chunk.ChunkID]; ok {
			existing.score += contribution
		} else {
			byID[match.Chunk.ChunkID] = &fused{chunk: match.Chunk, score: contribution}
		}
	}

	results := make([]Result, 0, len(byID))
	for _, f := range byID {
		results = append(results, Result{Chunk: f.chunk, Score: f.score})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ChunkID < results[j].Chunk.ChunkID
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}
