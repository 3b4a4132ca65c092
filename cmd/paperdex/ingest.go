// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meshintel/paperdex/internal/client"
	"github.com/meshintel/paperdex/internal/index"
	"github.com/meshintel/paperdex/internal/ingest"
	"github.com/meshintel/paperdex/internal/store"
	"github.com/meshintel/paperdex/internal/tei"
	"github.com/meshintel/paperdex/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Chunk full-text documents into the local store",
	Long: `Ingest reads GROBID TEI XML files (or PDFs with --pdf, sent through a
running GROBID service), segments each into bounded chunks with resolved
citations, and stores them in the SQLite index. Re-ingesting a paper
replaces its chunks.

With --embed, chunk embeddings are computed through Ollama and persisted
for hybrid retrieval with the query command.`,
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("at least one input file required")
	}

	maxTokens, _ := cmd.Flags().GetInt("max-tokens")
	maxChars, _ := cmd.Flags().GetInt("max-chars")
	chunker, err := tei.NewChunker(types.ChunkConfig{MaxTokens: maxTokens, MaxChars: maxChars})
	if err != nil {
		return err
	}

	storeCfg := storeConfig(cmd)
	st, err := store.NewStore(storeCfg)
	if err != nil {
		return err
	}
	defer st.Close()

	var vectors *index.MemoryIndex
	var embedder index.Embedder
	embed, _ := cmd.Flags().GetBool("embed")
	if embed {
		vectors, err = index.LoadMemoryIndex(indexSnapshotPath(storeCfg))
		if err != nil {
			return err
		}
		embedder, err = index.NewOllamaEmbedder(indexConfig(cmd))
		if err != nil {
			return err
		}
	}

	var grobid ingest.Fulltexter
	pdf, _ := cmd.Flags().GetBool("pdf")
	if pdf {
		grobid = client.NewGrobid(grobidClientConfig())
	}

	// The nil interface must stay nil; a typed nil *MemoryIndex would not.
	var vectorIndex index.VectorIndex
	if vectors != nil {
		vectorIndex = vectors
	}
	pipeline, err := ingest.New(chunker, st, vectorIndex, embedder, grobid)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var result ingest.BatchResult
	if pdf {
		result = ingestPDFs(ctx, pipeline, args)
	} else {
		result, err = pipeline.IngestFiles(ctx, args, os.Stdout)
		if err != nil {
			return err
		}
	}

	if vectors != nil {
		if err := vectors.SaveFile(indexSnapshotPath(storeCfg)); err != nil {
			return err
		}
	}

	if result.HasFailures() {
		return fmt.Errorf("%d document(s) failed ingestion", result.Failed)
	}
	return nil
}

// ingestPDFs runs each PDF through GROBID individually, reporting per-file
// status the same way a TEI batch does.
func ingestPDFs(ctx context.Context, pipeline *ingest.Pipeline, paths []string) ingest.BatchResult {
	var result ingest.BatchResult
	for _, path := range paths {
		paperID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

		count, err := pipeline.IngestPDF(ctx, paperID, path)
		if err != nil {
			fmt.Fprintf(os.Stdout, "failed:   %s (%v)\n", paperID, err)
			result.Failed++
			continue
		}
		fmt.Fprintf(os.Stdout, "ingested: %s (%d chunks)\n", paperID, count)
		result.Ingested++
		result.Chunks += count
	}

	fmt.Fprintf(os.Stdout, "\nBatch summary: %d ingested, %d failed, %d chunks (total: %d)\n",
		result.Ingested, result.Failed, result.Chunks, result.Total())
	return result
}

// indexConfig reads embedding settings from flags, secrets, and config.
func indexConfig(cmd *cobra.Command) types.IndexConfig {
	ollamaURL, _ := cmd.Flags().GetString("ollama-url")
	embedModel, _ := cmd.Flags().GetString("embed-model")
	return types.IndexConfig{
		OllamaURL:     secretDefault("ollama-url", ollamaURL),
		EmbedModel:    embedModel,
		LexicalWeight: viper.GetFloat64("index.lexical_weight"),
	}
}

// grobidClientConfig reads GROBID service settings from configuration.
func grobidClientConfig() types.GrobidConfig {
	return types.GrobidConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("providers.timeout"),
			UserAgent: "paperdex/" + version,
		},
		BaseURL: viper.GetString("grobid.base_url"),
		Image:   viper.GetString("grobid.image"),
	}
}

func init() {
	ingestCmd.Flags().Bool("pdf", false, "treat inputs as PDFs and parse them through GROBID")
	ingestCmd.Flags().Bool("embed", false, "embed chunks through Ollama for hybrid retrieval")
	ingestCmd.Flags().Int("max-tokens", 0, "maximum tokens per chunk (0 = default)")
	ingestCmd.Flags().Int("max-chars", 0, "maximum characters per chunk (0 = default)")
	ingestCmd.Flags().String("ollama-url", "", "Ollama server address (default http://localhost:11434)")
	ingestCmd.Flags().String("embed-model", "", "Ollama embedding model (default nomic-embed-text:latest)")

	rootCmd.AddCommand(ingestCmd)
}
