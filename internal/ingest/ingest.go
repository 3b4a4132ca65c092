// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest runs the full-text pipeline: TEI XML in, bounded chunks
// persisted to the store and embedded into the vector index. A malformed
// document fails only its own paper; batch runs carry on and report.
// Implements: prd019-ingest (R1-R4);
//
//	docs/ARCHITECTURE § Ingestion.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/meshintel/paperdex/internal/index"
	"github.com/meshintel/paperdex/internal/tei"
	"github.com/meshintel/paperdex/pkg/types"
)

// ChunkStore is the slice of the store the pipeline writes to.
type ChunkStore interface {
	SaveChunks(ctx context.Context, paperID string, chunks []types.Chunk) error
}

// Fulltexter converts a PDF stream to TEI XML; see the GROBID client.
type Fulltexter interface {
	ProcessFulltext(ctx context.Context, pdf io.Reader) (string, error)
}

// Pipeline wires the chunker to storage and the vector index. Index and
// embedder may both be nil to run a store-only ingest; they must be set
// or unset together.
type Pipeline struct {
	chunker  *tei.Chunker
	store    ChunkStore
	vectors  index.VectorIndex
	embedder index.Embedder
	grobid   Fulltexter
}

// New builds an ingestion pipeline. grobid may be nil when only
// pre-parsed TEI will be ingested.
func New(chunker *tei.Chunker, store ChunkStore, vectors index.VectorIndex, embedder index.Embedder, grobid Fulltexter) (*Pipeline, error) {
	if chunker == nil || store == nil {
		return nil, errors.New("ingest: chunker and store are required")
	}
	if (vectors == nil) != (embedder == nil) {
		return nil, errors.New("ingest: vector index and embedder must be configured together")
	}
	return &Pipeline{chunker: chunker, store: store, vectors: vectors, embedder: embedder, grobid: grobid}, nil
}

// IngestTEI chunks one TEI document, replaces the paper's stored chunks,
// and re-indexes its embeddings. Returns the number of chunks produced.
func (p *Pipeline) IngestTEI(ctx context.Context, paperID, teiXML string) (int, error) {
	chunks, err := p.chunker.Chunk(paperID, teiXML)
	if err != nil {
		return 0, err
	}

	if err := p.store.SaveChunks(ctx, paperID, chunks); err != nil {
		return 0, fmt.Errorf("storing chunks for %s: %w", paperID, err)
	}

	if p.vectors != nil {
		texts := make([]string, len(chunks))
		for i, chunk := range chunks {
			texts[i] = chunk.Text
		}
		embeddings, err := p.embedder.Embed(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("embedding chunks for %s: %w", paperID, err)
		}
		if err := p.vectors.Remove(ctx, paperID); err != nil {
			return 0, fmt.Errorf("clearing index for %s: %w", paperID, err)
		}
		if err := p.vectors.Add(ctx, chunks, embeddings); err != nil {
			return 0, fmt.Errorf("indexing chunks for %s: %w", paperID, err)
		}
	}

	return len(chunks), nil
}

// IngestPDF converts a PDF through GROBID and ingests the resulting TEI.
func (p *Pipeline) IngestPDF(ctx context.Context, paperID, pdfPath string) (int, error) {
	if p.grobid == nil {
		return 0, errors.New("ingest: no GROBID client configured")
	}

	f, err := os.Open(pdfPath)
	if err != nil {
		return 0, fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	teiXML, err := p.grobid.ProcessFulltext(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", pdfPath, err)
	}
	return p.IngestTEI(ctx, paperID, teiXML)
}

// BatchResult holds the outcome of a batch ingestion run.
type BatchResult struct {
	Ingested int
	Failed   int
	Chunks   int
}

// Total returns the total number of documents processed.
func (r BatchResult) Total() int {
	return r.Ingested + r.Failed
}

// HasFailures reports whether any documents failed ingestion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// IngestFiles ingests a list of TEI files, deriving each paper id from
// the filename. Per-file status goes to w; a failing file is reported
// and skipped, never aborting the batch.
func (p *Pipeline) IngestFiles(ctx context.Context, paths []string, w io.Writer) (BatchResult, error) {
	var result BatchResult
	for _, path := range paths {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		paperID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(w, "failed:   %s (%v)\n", paperID, err)
			result.Failed++
			continue
		}

		count, err := p.IngestTEI(ctx, paperID, string(data))
		if err != nil {
			fmt.Fprintf(w, "failed:   %s (%v)\n", paperID, err)
			result.Failed++
			continue
		}

		fmt.Fprintf(w, "ingested: %s (%d chunks)\n", paperID, count)
		result.Ingested++
		result.Chunks += count
	}

	fmt.Fprintf(w, "\nBatch summary: %d ingested, %d failed, %d chunks (total: %d)\n",
		result.Ingested, result.Failed, result.Chunks, result.Total())
	return result, nil
}
