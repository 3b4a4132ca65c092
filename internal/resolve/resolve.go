// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve upgrades titles to DOIs by matching against the
// bibliographic registries (Crossref, then DataCite). Matching is
// token-level with an optional author-overlap filter so near-miss titles
// do not get over-eagerly assigned a DOI.
// Implements: prd012-resolve (R1-R3).
package resolve

import (
	"context"

	"github.com/meshintel/paperdex/internal/ident"
	"github.com/meshintel/paperdex/pkg/types"
)

// candidateRows bounds how many registry candidates each searcher is
// asked for per resolution.
const candidateRows = 5

// DefaultMinSimilarity is the token-Jaccard floor below which a registry
// candidate is never accepted.
const DefaultMinSimilarity = 0.9

// TitleSearcher is the slice of a registry client the resolver needs.
type TitleSearcher interface {
	Name() string
	SearchByTitle(ctx context.Context, title string, rows int) ([]types.Paper, error)
}

// Resolver resolves DOIs from titles using one or more registries, tried
// in order; the first registry producing an acceptable match wins.
type Resolver struct {
	searchers     []TitleSearcher
	minSimilarity float64
}

// New builds a Resolver. minSimilarity at or below zero falls back to
// DefaultMinSimilarity.
func New(minSimilarity float64, searchers ...TitleSearcher) *Resolver {
	if minSimilarity <= 0 {
		minSimilarity = DefaultMinSimilarity
	}
	return &Resolver{searchers: searchers, minSimilarity: minSimilarity}
}

// ResolveDOIFromTitle returns the canonical DOI of the registry candidate
// best matching title, or "" when no candidate clears the similarity
// floor. When expectedAuthors are given, a candidate with similarity
// below exact match must share at least one author to qualify; author
// overlap contributes at most one point to the score so weak title
// matches cannot outrank strong ones. Registry errors propagate.
func (r *Resolver) ResolveDOIFromTitle(ctx context.Context, title string, expectedAuthors []string) (string, error) {
	normalizedTarget := ident.NormalizeTitle(title)
	if normalizedTarget == "" {
		return "", nil
	}
	targetTokens := ident.TitleTokens(title)

	expectedSet := make(map[string]bool)
	for _, author := range expectedAuthors {
		if normalized := ident.NormalizeTitle(author); normalized != "" {
			expectedSet[normalized] = true
		}
	}

	for _, searcher := range r.searchers {
		candidates, err := searcher.SearchByTitle(ctx, title, candidateRows)
		if err != nil {
			return "", err
		}

		bestDOI := ""
		bestScore := -1.0

		for _, candidate := range candidates {
			doi := ident.NormalizeDOI(candidate.DOI)
			if doi == "" || candidate.Title == "" {
				continue
			}
			normalizedCandidate := ident.NormalizeTitle(candidate.Title)
			if normalizedCandidate == "" {
				continue
			}

			similarity := 1.0
			if normalizedCandidate != normalizedTarget {
				similarity = ident.Jaccard(targetTokens, ident.TitleTokens(candidate.Title))
			}
			if similarity < r.minSimilarity {
				continue
			}

			authorOverlap := 0
			if len(expectedSet) > 0 {
				for _, author := range candidate.Authors {
					if expectedSet[ident.NormalizeTitle(author)] {
						authorOverlap++
					}
				}
				if similarity < 1.0 && authorOverlap == 0 {
					continue
				}
			}

			score := similarity
			if authorOverlap > 0 {
				score++
			}
			if score > bestScore {
				bestScore = score
				bestDOI = doi
			}
		}

		if bestDOI != "" {
			return bestDOI, nil
		}
	}
	return "", nil
}
