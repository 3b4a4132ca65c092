// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meshintel/paperdex/internal/tei"
	"github.com/meshintel/paperdex/pkg/types"
)

var chunkCmd = &cobra.Command{
	Use:   "chunk [tei-file]",
	Short: "Segment a TEI document into chunks without storing them",
	Long: `Chunk parses one GROBID TEI XML file and prints the chunk sequence it
would produce: stable chunk ids, section context, token counts, and
resolved citations. Useful for inspecting segmentation before ingesting.`,
	RunE: runChunk,
}

func runChunk(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one TEI file required")
	}

	maxTokens, _ := cmd.Flags().GetInt("max-tokens")
	maxChars, _ := cmd.Flags().GetInt("max-chars")
	chunker, err := tei.NewChunker(types.ChunkConfig{MaxTokens: maxTokens, MaxChars: maxChars})
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	paperID := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	chunks, err := chunker.Chunk(paperID, string(data))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(chunks)
	}

	for _, c := range chunks {
		fmt.Printf("%s  [%s]  %d tokens, chars %d-%d\n",
			c.ChunkID, c.SectionTitle, c.TokenCount, c.CharRange.Start, c.CharRange.End)
		for _, cite := range c.Citations {
			fmt.Printf("    cites: %s\n", cite)
		}
	}
	fmt.Printf("\n%d chunks\n", len(chunks))
	return nil
}

func init() {
	chunkCmd.Flags().Int("max-tokens", 0, "maximum tokens per chunk (0 = default)")
	chunkCmd.Flags().Int("max-chars", 0, "maximum characters per chunk (0 = default)")
	chunkCmd.Flags().Bool("json", false, "output chunks as JSON")

	rootCmd.AddCommand(chunkCmd)
}
