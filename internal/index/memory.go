// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/meshintel/paperdex/pkg/types"
)

// MemoryIndex is an in-memory VectorIndex using exact cosine similarity.
// It is the default backend; corpora small enough to embed locally are
// small enough to scan.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	chunk  types.Chunk
	vector []float32
}

// NewMemoryIndex builds an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{entries: make(map[string]memoryEntry)}
}

// Add stores one vector per chunk, replacing any existing entry with the
// same chunk id.
func (m *MemoryIndex) Add(_ context.Context, chunks []types.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("index: %d chunks but %d vectors", len(chunks), len(vectors))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, chunk := range chunks {
		m.entries[chunk.ChunkID] = memoryEntry{chunk: chunk, vector: vectors[i]}
	}
	return nil
}

// Search returns the k entries most cosine-similar to vector, best
// first. Ties break on chunk id so results are deterministic.
func (m *MemoryIndex) Search(_ context.Context, vector []float32, k int) ([]Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]Match, 0, len(m.entries))
	for _, entry := range m.entries {
		matches = append(matches, Match{Chunk: entry.chunk, Score: cosine(vector, entry.vector)})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Chunk.ChunkID < matches[j].Chunk.ChunkID
	})

	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Remove drops every entry belonging to paperID.
func (m *MemoryIndex) Remove(_ context.Context, paperID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, entry := range m.entries {
		if entry.chunk.PaperID == paperID {
			delete(m.entries, id)
		}
	}
	return nil
}

// Len reports the number of indexed chunks.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
