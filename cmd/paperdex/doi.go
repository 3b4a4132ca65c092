// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meshintel/paperdex/internal/client"
	"github.com/meshintel/paperdex/internal/merge"
	"github.com/meshintel/paperdex/internal/resolve"
	"github.com/meshintel/paperdex/pkg/types"
)

var doiCmd = &cobra.Command{
	Use:   "doi [doi]",
	Short: "Look up a work by DOI, or resolve a DOI from a title",
	Long: `Doi fetches every provider's record for a DOI and shows the merged view
alongside which source won each field.

With --from-title the argument is a paper title instead: the Crossref and
DataCite registries are searched for a confident match and the resolved
DOI is printed, or nothing when no candidate clears the similarity bar.`,
	RunE: runDOI,
}

func runDOI(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("DOI (or title with --from-title) required")
	}
	arg := strings.Join(args, " ")
	ctx := context.Background()

	fromTitle, _ := cmd.Flags().GetBool("from-title")
	if fromTitle {
		return runDOIFromTitle(ctx, cmd, arg)
	}

	svc := newSearchService(cmd)
	records, err := svc.SearchByDOI(ctx, arg)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No provider knows this DOI.")
		return nil
	}

	merged, err := merge.New(nil).Merge(records)
	if err != nil {
		if errors.Is(err, merge.ErrNoCandidates) {
			fmt.Println("No provider knows this DOI.")
			return nil
		}
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Merged  *types.MergedPaper `json:"merged"`
			Records []types.Paper      `json:"records"`
		}{merged, records})
	}

	printMergedDetail(merged, records)
	return nil
}

func runDOIFromTitle(ctx context.Context, cmd *cobra.Command, title string) error {
	authorsFlag, _ := cmd.Flags().GetString("authors")
	var authors []string
	for _, a := range strings.Split(authorsFlag, ",") {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, a)
		}
	}

	cfg := providerConfig()
	resolver := resolve.New(0, client.NewCrossref(cfg), client.NewDataCite(cfg))

	doi, err := resolver.ResolveDOIFromTitle(ctx, title, authors)
	if err != nil {
		return err
	}
	if doi == "" {
		fmt.Fprintln(os.Stderr, "No confident DOI match.")
		return nil
	}
	fmt.Println(doi)
	return nil
}

func printMergedDetail(merged *types.MergedPaper, records []types.Paper) {
	fmt.Printf("Title:    %s\n", merged.Title)
	fmt.Printf("DOI:      %s\n", merged.DOI)
	if merged.Year != 0 {
		fmt.Printf("Year:     %d\n", merged.Year)
	}
	if merged.Venue != "" {
		fmt.Printf("Venue:    %s\n", merged.Venue)
	}
	if len(merged.Authors) > 0 {
		fmt.Printf("Authors:  %s\n", strings.Join(merged.Authors, ", "))
	}
	if merged.URL != "" {
		fmt.Printf("URL:      %s\n", merged.URL)
	}
	if merged.PDFURL != "" {
		fmt.Printf("PDF:      %s\n", merged.PDFURL)
	}
	fmt.Printf("Primary:  %s\n", merged.PrimarySource)
	fmt.Printf("Sources:  %s (%d record(s))\n", strings.Join(merged.Provenance.Sources, ", "), len(records))

	fmt.Println("\nField winners:")
	for _, field := range []string{"doi", "title", "abstract", "authors", "year", "venue", "url", "pdf_url", "is_oa"} {
		if ev, ok := merged.Provenance.FieldSources[field]; ok {
			value := ev.Value
			if len(value) > 60 {
				value = value[:57] + "..."
			}
			fmt.Printf("  %-9s %-16s %s\n", field, ev.Source, value)
		}
	}
}

func init() {
	doiCmd.Flags().Bool("from-title", false, "resolve a DOI from a paper title instead of looking one up")
	doiCmd.Flags().String("authors", "", "expected author names for title resolution (comma-separated)")
	doiCmd.Flags().Bool("no-soft-grouping", false, "disable title-similarity grouping for DOI-less records")
	doiCmd.Flags().Float64("soft-threshold", 0, "minimum title similarity for soft grouping (0 = default)")
	doiCmd.Flags().Bool("json", false, "output merged record and provider records as JSON")

	rootCmd.AddCommand(doiCmd)
}
