// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meshintel/paperdex/internal/client"
	"github.com/meshintel/paperdex/internal/resolve"
	"github.com/meshintel/paperdex/internal/search"
	"github.com/meshintel/paperdex/internal/store"
	"github.com/meshintel/paperdex/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search metadata providers and merge duplicate records",
	Long: `Search fans a query out to OpenAlex, Crossref, DataCite, and Semantic
Scholar, groups records describing the same work (by DOI, falling back to
title similarity), and merges each group into one record with field-level
provenance.

With --title the query is treated as an exact paper title: results are
grouped the same way, and DOI-less groups are upgraded through the
Crossref/DataCite registries when a confident match exists.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("query required")
	}
	query := strings.Join(args, " ")

	maxResults, _ := cmd.Flags().GetInt("max-results")
	minYear, _ := cmd.Flags().GetInt("min-year")
	maxYear, _ := cmd.Flags().GetInt("max-year")
	titleMode, _ := cmd.Flags().GetBool("title")
	enrichOA, _ := cmd.Flags().GetBool("enrich-oa")
	save, _ := cmd.Flags().GetBool("save")

	svc := newSearchService(cmd)
	ctx := context.Background()

	var merged []types.MergedPaper
	var err error
	if titleMode {
		merged, err = svc.SearchByTitle(ctx, query, maxResults)
	} else {
		merged, err = svc.Search(ctx, query, maxResults, minYear, maxYear)
	}
	if err != nil {
		return err
	}

	if enrichOA {
		unpaywall := client.NewUnpaywall(providerConfig())
		for i := range merged {
			if err := unpaywall.Enrich(ctx, &merged[i]); err != nil {
				fmt.Fprintf(os.Stderr, "warning: open-access lookup failed for %s: %v\n", merged[i].PaperID, err)
			}
		}
	}

	if save {
		if err := savePapers(ctx, cmd, merged); err != nil {
			return err
		}
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatPaperOutput(merged, jsonOutput)
}

// newSearchService wires the provider clients, merge priority, and DOI
// resolver from configuration.
func newSearchService(cmd *cobra.Command) *search.Service {
	cfg := providerConfig()

	openalex := client.NewOpenAlex(cfg)
	crossref := client.NewCrossref(cfg)
	datacite := client.NewDataCite(cfg)
	semantic := client.NewSemanticScholar(cfg)

	noSoft, _ := cmd.Flags().GetBool("no-soft-grouping")
	softThreshold, _ := cmd.Flags().GetFloat64("soft-threshold")
	grouping := types.GroupingConfig{
		EnableSoftGrouping: !noSoft,
		SoftThreshold:      softThreshold,
	}

	registries := []search.TitleSearcher{crossref, datacite}
	resolver := resolve.New(0, crossref, datacite)

	return search.New(grouping, os.Stderr, resolver, registries,
		openalex, crossref, datacite, semantic)
}

// savePapers upserts merged records into the local store.
func savePapers(ctx context.Context, cmd *cobra.Command, merged []types.MergedPaper) error {
	st, err := store.NewStore(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer st.Close()

	for i := range merged {
		if err := st.SavePaper(ctx, &merged[i]); err != nil {
			return fmt.Errorf("saving %q: %w", merged[i].Title, err)
		}
	}
	fmt.Fprintf(os.Stderr, "Saved %d paper(s).\n", len(merged))
	return nil
}

func formatPaperOutput(merged []types.MergedPaper, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(merged)
	}

	if len(merged) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-60s  %-5s  %-30s  %s\n",
		"Rank", "Title", "Year", "DOI", "Sources")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 120))

	for i, p := range merged {
		title := p.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		doi := p.DOI
		if len(doi) > 30 {
			doi = doi[:27] + "..."
		}
		year := ""
		if p.Year != 0 {
			year = fmt.Sprintf("%d", p.Year)
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-60s  %-5s  %-30s  %s\n",
			i+1, title, year, doi, strings.Join(p.Provenance.Sources, ","))
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(merged))
	return nil
}

func init() {
	searchCmd.Flags().Int("max-results", 20, "maximum number of merged results")
	searchCmd.Flags().Int("min-year", 0, "earliest publication year (0 = no bound)")
	searchCmd.Flags().Int("max-year", 0, "latest publication year (0 = no bound)")
	searchCmd.Flags().Bool("title", false, "treat the query as an exact paper title")
	searchCmd.Flags().Bool("no-soft-grouping", false, "disable title-similarity grouping for DOI-less records")
	searchCmd.Flags().Float64("soft-threshold", 0, "minimum title similarity for soft grouping (0 = default)")
	searchCmd.Flags().Bool("enrich-oa", false, "fill open-access links from Unpaywall (requires unpaywall-email)")
	searchCmd.Flags().Bool("save", false, "save merged records into the local store")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}
