// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meshintel/paperdex/internal/index"
	"github.com/meshintel/paperdex/internal/store"
	"github.com/meshintel/paperdex/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Search stored chunks with full-text or hybrid retrieval",
	Long: `Query searches ingested chunks. The default is SQLite FTS5 full-text
search. With --hybrid, the lexical ranking is fused with embedding
similarity over the vectors persisted by ingest --embed; the query text
is embedded through the same Ollama model.`,
	RunE: runQuery,
}

// queryHit is the common output row for both retrieval modes.
type queryHit struct {
	ChunkID      string  `json:"chunk_id"`
	PaperID      string  `json:"paper_id"`
	PaperTitle   string  `json:"paper_title,omitempty"`
	SectionTitle string  `json:"section_title,omitempty"`
	Score        float64 `json:"score"`
	Text         string  `json:"text"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("query text required")
	}
	query := strings.Join(args, " ")

	k, _ := cmd.Flags().GetInt("limit")
	hybrid, _ := cmd.Flags().GetBool("hybrid")

	storeCfg := storeConfig(cmd)
	st, err := store.NewStore(storeCfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	var hits []queryHit
	if hybrid {
		hits, err = hybridQuery(ctx, cmd, st, storeCfg, query, k)
	} else {
		hits, err = lexicalQuery(ctx, st, query, k)
	}
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(hits, jsonOutput)
}

func lexicalQuery(ctx context.Context, st *store.Store, query string, k int) ([]queryHit, error) {
	results, err := st.SearchChunks(ctx, query, k)
	if err != nil {
		return nil, err
	}

	hits := make([]queryHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, queryHit{
			ChunkID:      r.ChunkID,
			PaperID:      r.PaperID,
			PaperTitle:   r.PaperTitle,
			SectionTitle: r.SectionTitle,
			Score:        r.Score,
			Text:         r.Text,
		})
	}
	return hits, nil
}

func hybridQuery(ctx context.Context, cmd *cobra.Command, st *store.Store, storeCfg types.StoreConfig, query string, k int) ([]queryHit, error) {
	vectors, err := index.LoadMemoryIndex(indexSnapshotPath(storeCfg))
	if err != nil {
		return nil, err
	}
	if vectors.Len() == 0 {
		return nil, fmt.Errorf("no vectors indexed: run ingest --embed first")
	}

	embedder, err := index.NewOllamaEmbedder(indexConfig(cmd))
	if err != nil {
		return nil, err
	}

	weight, _ := cmd.Flags().GetFloat64("lexical-weight")
	h := index.NewHybrid(vectors, embedder, st, weight)
	results, err := h.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}

	hits := make([]queryHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, queryHit{
			ChunkID:      r.Chunk.ChunkID,
			PaperID:      r.Chunk.PaperID,
			SectionTitle: r.Chunk.SectionTitle,
			Score:        r.Score,
			Text:         r.Chunk.Text,
		})
	}
	return hits, nil
}

func formatQueryOutput(hits []queryHit, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}

	if len(hits) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-8s  %-28s  %-20s  %s\n",
		"Rank", "Score", "Chunk", "Section", "Text")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 120))

	for i, h := range hits {
		text := strings.ReplaceAll(h.Text, "\n", " ")
		if len(text) > 56 {
			text = text[:53] + "..."
		}
		section := h.SectionTitle
		if len(section) > 20 {
			section = section[:17] + "..."
		}
		chunkID := h.ChunkID
		if len(chunkID) > 28 {
			chunkID = chunkID[:25] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-8.4f  %-28s  %-20s  %s\n",
			i+1, h.Score, chunkID, section, text)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(hits))
	return nil
}

func init() {
	queryCmd.Flags().Int("limit", 10, "maximum number of results")
	queryCmd.Flags().Bool("hybrid", false, "fuse full-text rank with embedding similarity")
	queryCmd.Flags().Float64("lexical-weight", 0, "full-text share of the hybrid score in (0,1] (0 = default)")
	queryCmd.Flags().String("ollama-url", "", "Ollama server address (default http://localhost:11434)")
	queryCmd.Flags().String("embed-model", "", "Ollama embedding model (default nomic-embed-text:latest)")
	queryCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(queryCmd)
}
