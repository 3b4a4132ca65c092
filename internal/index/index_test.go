package index

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/meshintel/paperdex/internal/store"
	"github.com/meshintel/paperdex/pkg/types"
)

func chunk(id, paperID string) types.Chunk {
	return types.Chunk{ChunkID: id, PaperID: paperID, Kind: types.KindSectionParagraph, Text: "text of " + id}
}

func TestMemoryIndexSearchRanks(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	err := idx.Add(ctx,
		[]types.Chunk{chunk("c1", "p1"), chunk("c2", "p1"), chunk("c3", "p2")},
		[][]float32{{1, 0}, {0, 1}, {0.9, 0.1}},
	)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	matches, err := idx.Search(ctx, []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}
	if matches[0].Chunk.ChunkID != "c1" {
		t.Errorf("best = %q, want exact direction match first", matches[0].Chunk.ChunkID)
	}
	if matches[1].Chunk.ChunkID != "c3" {
		t.Errorf("second = %q, want nearest neighbor", matches[1].Chunk.ChunkID)
	}
	if math.Abs(matches[0].Score-1.0) > 1e-9 {
		t.Errorf("score = %v, want cosine 1.0", matches[0].Score)
	}
}

func TestMemoryIndexAddReplaces(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	if err := idx.Add(ctx, []types.Chunk{chunk("c1", "p1")}, [][]float32{{1, 0}}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := idx.Add(ctx, []types.Chunk{chunk("c1", "p1")}, [][]float32{{0, 1}}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if idx.Len() != 1 {
		t.Fatalf("Len = %d, want re-added chunk replaced", idx.Len())
	}
	matches, err := idx.Search(ctx, []float32{0, 1}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if math.Abs(matches[0].Score-1.0) > 1e-9 {
		t.Errorf("score = %v, want the replacement vector", matches[0].Score)
	}
}

func TestMemoryIndexRemove(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	err := idx.Add(ctx,
		[]types.Chunk{chunk("c1", "p1"), chunk("c2", "p2")},
		[][]float32{{1, 0}, {0, 1}},
	)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := idx.Remove(ctx, "p1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if idx.Len() != 1 {
		t.Errorf("Len = %d, want only p2 left", idx.Len())
	}
}

func TestMemoryIndexMismatchedInput(t *testing.T) {
	idx := NewMemoryIndex()
	err := idx.Add(context.Background(), []types.Chunk{chunk("c1", "p1")}, nil)
	if err == nil {
		t.Error("expected error for mismatched chunk/vector counts")
	}
}

type fakeEmbedder struct {
	vector []float32
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = f.vector
	}
	return vectors, nil
}

type fakeLexical struct {
	hits []store.ChunkHit
}

func (f *fakeLexical) SearchChunks(_ context.Context, _ string, _ int) ([]store.ChunkHit, error) {
	return f.hits, nil
}

func TestHybridFusesBothRankings(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	// c1 is the lexical favorite, c2 the vector favorite, c3 appears in
	// both rankings and should win the fusion.
	err := idx.Add(ctx,
		[]types.Chunk{chunk("c2", "p1"), chunk("c3", "p1")},
		[][]float32{{1, 0}, {0.95, 0.05}},
	)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	lexical := &fakeLexical{hits: []store.ChunkHit{
		{Chunk: chunk("c1", "p1"), Score: 5.0},
		{Chunk: chunk("c3", "p1"), Score: 4.9},
	}}

	h := NewHybrid(idx, &fakeEmbedder{vector: []float32{1, 0}}, lexical, 0.5)
	results, err := h.Search(ctx, "query", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	if results[0].Chunk.ChunkID != "c3" {
		t.Errorf("best = %q, want the chunk present in both rankings", results[0].Chunk.ChunkID)
	}
}

func TestHybridDeterministicTieBreak(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	err := idx.Add(ctx,
		[]types.Chunk{chunk("b", "p1"), chunk("a", "p1")},
		[][]float32{{1, 0}, {1, 0}},
	)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	h := NewHybrid(idx, &fakeEmbedder{vector: []float32{1, 0}}, &fakeLexical{}, 0.5)
	for run := 0; run < 5; run++ {
		results, err := h.Search(ctx, "query", 2)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if results[0].Chunk.ChunkID != "a" || results[1].Chunk.ChunkID != "b" {
			t.Fatalf("order = %q,%q, want tie broken by chunk id", results[0].Chunk.ChunkID, results[1].Chunk.ChunkID)
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index", "vectors.json")
	ctx := context.Background()

	idx := NewMemoryIndex()
	err := idx.Add(ctx,
		[]types.Chunk{chunk("c1", "p1"), chunk("c2", "p2")},
		[][]float32{{1, 0}, {0, 1}},
	)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := idx.SaveFile(path); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	loaded, err := LoadMemoryIndex(path)
	if err != nil {
		t.Fatalf("LoadMemoryIndex: %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("Len = %d, want 2", loaded.Len())
	}
	matches, err := loaded.Search(ctx, []float32{1, 0}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if matches[0].Chunk.ChunkID != "c1" || math.Abs(matches[0].Score-1.0) > 1e-9 {
		t.Errorf("best = %q score %v, want c1 at cosine 1.0", matches[0].Chunk.ChunkID, matches[0].Score)
	}
}

func TestLoadMemoryIndexMissingFile(t *testing.T) {
	idx, err := LoadMemoryIndex(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("LoadMemoryIndex: %v", err)
	}
	if idx.Len() != 0 {
		t.Errorf("Len = %d, want empty index for missing snapshot", idx.Len())
	}
}
