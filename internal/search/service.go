// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search fans queries out to the metadata providers, groups the
// raw records by work identity (strict DOI keys plus soft title
// matching), and merges each group into one provenance-tracked record.
// Grouping depends only on record content, never on provider response
// order, so concurrent fan-out stays deterministic.
// Implements: prd014-search (R1-R6);
//
//	docs/ARCHITECTURE § Search.
package search

import (
	"context"
	"fmt"
	"io"

	"github.com/meshintel/paperdex/internal/client"
	"github.com/meshintel/paperdex/internal/ident"
	"github.com/meshintel/paperdex/internal/merge"
	"github.com/meshintel/paperdex/pkg/types"
)

// Provider is the slice of a metadata client the search service needs.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, k, minYear, maxYear int) ([]types.Paper, error)
	GetByDOI(ctx context.Context, doi string) (*types.Paper, error)
}

// DOIResolver upgrades a title to a DOI; see the resolve package.
type DOIResolver interface {
	ResolveDOIFromTitle(ctx context.Context, title string, expectedAuthors []string) (string, error)
}

// TitleSearcher is the registry slice used for the raw title fallback.
type TitleSearcher interface {
	Name() string
	SearchByTitle(ctx context.Context, title string, rows int) ([]types.Paper, error)
}

// Service is the multi-provider search and grouping front end.
type Service struct {
	providers  []Provider
	merger     *merge.Merger
	resolver   DOIResolver
	registries []TitleSearcher
	cfg        types.GroupingConfig
	warn       io.Writer
}

// New builds a search service. resolver may be nil, in which case title
// searches skip DOI upgrading; registries may be empty, disabling the
// raw title fallback. warn receives one line per swallowed provider
// failure.
func New(cfg types.GroupingConfig, warn io.Writer, resolver DOIResolver, registries []TitleSearcher, providers ...Provider) *Service {
	if warn == nil {
		warn = io.Discard
	}
	return &Service{
		providers:  providers,
		merger:     merge.New(cfg.SourcePriority),
		resolver:   resolver,
		registries: registries,
		cfg:        cfg,
		warn:       warn,
	}
}

// Search queries every provider, groups duplicates, and returns at most
// k merged records. A provider failing with a typed client error counts
// as zero results from that provider; other errors abort the search.
func (s *Service) Search(ctx context.Context, query string, k, minYear, maxYear int) ([]types.MergedPaper, error) {
	merged, _, err := s.searchWithRaw(ctx, query, k, minYear, maxYear)
	return merged, err
}

// searchWithRaw also returns the ungrouped records, which callers use to
// inspect how many raw hits collapsed into each merged result.
func (s *Service) searchWithRaw(ctx context.Context, query string, k, minYear, maxYear int) ([]types.MergedPaper, []types.Paper, error) {
	// Fan out concurrently, but collect per provider slot so grouping
	// sees records in configured-provider order regardless of which
	// call finishes first.
	perProvider := make([][]types.Paper, len(s.providers))
	errs := make([]error, len(s.providers))

	done := make(chan int, len(s.providers))
	for i, p := range s.providers {
		go func(i int, p Provider) {
			perProvider[i], errs[i] = p.Search(ctx, query, k, minYear, maxYear)
			done <- i
		}(i, p)
	}
	for range s.providers {
		<-done
	}

	var raw []types.Paper
	for i, p := range s.providers {
		if err := errs[i]; err != nil {
			if client.IsClientError(err) {
				fmt.Fprintf(s.warn, "warning: provider %s failed: %v\n", p.Name(), err)
				continue
			}
			return nil, nil, err
		}
		raw = append(raw, perProvider[i]...)
	}

	merged, err := s.groupAndMerge(raw, k)
	if err != nil {
		return nil, nil, err
	}
	return merged, raw, nil
}

// groupAndMerge buckets raw records by identity and merges each group in
// discovery order, truncating to k.
func (s *Service) groupAndMerge(raw []types.Paper, k int) ([]types.MergedPaper, error) {
	g := newGrouper(s.cfg)
	for _, p := range raw {
		g.add(p)
	}

	merged := make([]types.MergedPaper, 0, len(g.groups))
	for _, grp := range g.groups {
		m, err := s.merger.Merge(grp.members)
		if err != nil {
			return nil, fmt.Errorf("merging group %q: %w", grp.key, err)
		}
		merged = append(merged, *m)
		if k > 0 && len(merged) >= k {
			break
		}
	}
	return merged, nil
}

// SearchByDOI asks every provider for the work directly, keeping the
// first record seen per identity key. Not-found responses are skipped;
// other provider errors propagate so a caller retrying one DOI sees the
// real failure.
func (s *Service) SearchByDOI(ctx context.Context, doi string) ([]types.Paper, error) {
	canonical := ident.NormalizeDOI(doi)
	if canonical == "" {
		return nil, fmt.Errorf("search by DOI: empty DOI")
	}

	var papers []types.Paper
	seen := make(map[string]bool)
	for _, p := range s.providers {
		paper, err := p.GetByDOI(ctx, canonical)
		if err != nil {
			if client.IsNotFound(err) {
				continue
			}
			return nil, err
		}

		key := ident.NormalizeDOI(paper.DOI)
		if key == "" {
			key = paper.Source + ":" + paper.PaperID
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		papers = append(papers, *paper)
	}
	return papers, nil
}

// SearchByTitle searches all providers with the title as the query and
// attempts a DOI upgrade for every DOI-less merged result. When nothing
// comes back at all, the bibliographic registries are searched by title
// directly as a last resort. Resolver and registry errors propagate.
func (s *Service) SearchByTitle(ctx context.Context, title string, k int) ([]types.MergedPaper, error) {
	merged, _, err := s.searchWithRaw(ctx, title, k, 0, 0)
	if err != nil {
		return nil, err
	}

	if s.resolver != nil {
		for i := range merged {
			if merged[i].DOI != "" {
				continue
			}
			doi, err := s.resolver.ResolveDOIFromTitle(ctx, merged[i].Title, merged[i].Authors)
			if err != nil {
				return nil, err
			}
			if doi != "" {
				merged[i].DOI = doi
				merged[i].PaperID = doi
				if merged[i].Provenance.FieldSources != nil {
					merged[i].Provenance.FieldSources["doi"] = types.FieldEvidence{Source: "resolver", Value: doi}
				}
			}
		}
	}

	if len(merged) == 0 {
		return s.registryFallback(ctx, title, k)
	}
	return merged, nil
}

// registryFallback searches Crossref/DataCite by title when the normal
// provider fan-out produced nothing.
func (s *Service) registryFallback(ctx context.Context, title string, k int) ([]types.MergedPaper, error) {
	var raw []types.Paper
	for _, registry := range s.registries {
		papers, err := registry.SearchByTitle(ctx, title, k)
		if err != nil {
			return nil, err
		}
		raw = append(raw, papers...)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return s.groupAndMerge(raw, k)
}
