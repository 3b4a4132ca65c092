// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge combines duplicate paper records from multiple providers
// into a single record with per-field provenance. Merging is a pure
// function over its inputs plus the configured source priority: it never
// mutates a candidate and never fails on conflicting fields, only on an
// empty input list.
// Implements: prd011-merge (R1-R5);
//
//	docs/ARCHITECTURE § Merge.
package merge

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/meshintel/paperdex/internal/ident"
	"github.com/meshintel/paperdex/pkg/types"
)

// ErrNoCandidates is returned when Merge is called with no input records.
var ErrNoCandidates = errors.New("merge: no candidate papers")

// DefaultPriority returns the default source-priority groups, most
// trusted first. Sources inside one group rank equally.
func DefaultPriority() [][]string {
	return [][]string{{"crossref"}, {"datacite"}, {"openalex"}, {"semanticscholar"}}
}

// richTextPriority front-loads the providers whose abstracts and author
// lists are the most complete.
var richTextPriority = [][]string{{"openalex"}, {"semanticscholar"}}

// Merger merges duplicate records under a configured source priority.
type Merger struct {
	groups [][]string
}

// New builds a Merger. A nil or empty priority falls back to
// DefaultPriority.
func New(groups [][]string) *Merger {
	if len(groups) == 0 {
		groups = DefaultPriority()
	}
	return &Merger{groups: groups}
}

// rank maps a source name to its priority-group index. Unknown sources
// rank below every configured group.
func rank(groups [][]string, source string) int {
	for i, group := range groups {
		for _, name := range group {
			if name == source {
				return i
			}
		}
	}
	return len(groups)
}

// candidate pairs an input record with its original position, which is
// the final tie-breaker throughout.
type candidate struct {
	paper types.Paper
	pos   int
}

// Merge combines records that all describe the same work into one
// MergedPaper. Field values are selected per field by source priority;
// the primary source is selected by identity rank (DOI presence, then
// source priority, then input order) independently of any field winner.
func (m *Merger) Merge(papers []types.Paper) (*types.MergedPaper, error) {
	if len(papers) == 0 {
		return nil, ErrNoCandidates
	}

	cands := make([]candidate, len(papers))
	for i, p := range papers {
		cands[i] = candidate{paper: p, pos: i}
	}

	primary := m.primaryCandidate(cands)

	merged := &types.MergedPaper{
		PrimarySource: primary.paper.Source,
		Provenance:    buildProvenance(cands),
	}

	defaultRank := func(source string) int { return rank(m.groups, source) }
	richRank := func(source string) int {
		if r := rank(richTextPriority, source); r < len(richTextPriority) {
			return r
		}
		return len(richTextPriority) + rank(m.groups, source)
	}

	doi, doiSource, hasDOI := pick(cands, defaultRank,
		func(p types.Paper) string { return ident.NormalizeDOI(p.DOI) },
		nonBlank, nil, nil)
	if hasDOI {
		merged.DOI = doi
		merged.Provenance.FieldSources["doi"] = types.FieldEvidence{Source: doiSource, Value: doi}
	}

	if title, src, ok := pick(cands, defaultRank,
		func(p types.Paper) string { return p.Title }, nonBlank, nil, nil); ok {
		merged.Title = title
		merged.Provenance.FieldSources["title"] = types.FieldEvidence{Source: src, Value: title}
	}

	if abstract, src, ok := pick(cands, richRank,
		func(p types.Paper) string { return p.Abstract }, nonBlank, nil, longer); ok {
		merged.Abstract = abstract
		merged.Provenance.FieldSources["abstract"] = types.FieldEvidence{Source: src, Value: abstract}
	}

	if authors, src, ok := pick(cands, richRank,
		func(p types.Paper) []string { return p.Authors },
		func(v []string) bool { return len(v) > 0 }, nil,
		func(a, b []string) bool { return len(a) > len(b) }); ok {
		merged.Authors = authors
		merged.Provenance.FieldSources["authors"] = types.FieldEvidence{
			Source: src, Value: strings.Join(authors, "; "),
		}
	}

	if year, src, ok := pick(cands, defaultRank,
		func(p types.Paper) int { return p.Year },
		func(v int) bool { return v > 0 }, nil, nil); ok {
		merged.Year = year
		merged.Provenance.FieldSources["year"] = types.FieldEvidence{Source: src, Value: strconv.Itoa(year)}
	}

	if venue, src, ok := pick(cands, defaultRank,
		func(p types.Paper) string { return p.Venue }, nonBlank, nil, nil); ok {
		merged.Venue = venue
		merged.Provenance.FieldSources["venue"] = types.FieldEvidence{Source: src, Value: venue}
	}

	if pageURL, src, ok := pick(cands, defaultRank,
		func(p types.Paper) string { return p.URL }, nonBlank, nil, nil); ok {
		merged.URL = pageURL
		merged.Provenance.FieldSources["url"] = types.FieldEvidence{Source: src, Value: pageURL}
	}

	if pdfURL, src, ok := pick(cands, defaultRank,
		func(p types.Paper) string { return p.PDFURL }, nonBlank, nil, nil); ok {
		merged.PDFURL = pdfURL
		merged.Provenance.FieldSources["pdf_url"] = types.FieldEvidence{Source: src, Value: pdfURL}
	}

	if isOA, src, ok := pick(cands, defaultRank,
		func(p types.Paper) *bool { return p.IsOA },
		func(v *bool) bool { return v != nil }, nil, nil); ok {
		merged.IsOA = isOA
		merged.Provenance.FieldSources["is_oa"] = types.FieldEvidence{
			Source: src, Value: fmt.Sprintf("%t", *isOA),
		}
	}

	// Align paper_id with the merged DOI where possible: a candidate
	// whose own paper_id normalizes to the selected DOI short-circuits.
	switch {
	case hasDOI:
		preferred := func(v string) bool { return ident.NormalizeDOI(v) == doi }
		if id, src, ok := pick(cands, defaultRank,
			func(p types.Paper) string { return p.PaperID }, nonBlank, preferred, nil); ok && ident.NormalizeDOI(id) == doi {
			merged.PaperID = id
			merged.Provenance.FieldSources["paper_id"] = types.FieldEvidence{Source: src, Value: id}
		} else {
			merged.PaperID = doi
			merged.Provenance.FieldSources["paper_id"] = types.FieldEvidence{Source: doiSource, Value: doi}
		}
	default:
		if id, src, ok := pick(cands, defaultRank,
			func(p types.Paper) string { return p.PaperID }, nonBlank, nil, nil); ok {
			merged.PaperID = id
			merged.Provenance.FieldSources["paper_id"] = types.FieldEvidence{Source: src, Value: id}
		} else {
			merged.PaperID = primary.paper.PaperID
		}
	}

	merged.Source = merged.PrimarySource
	return merged, nil
}

// primaryCandidate ranks candidates by (DOI presence, source rank, input
// position) ascending and returns the winner. A normalizable DOI always
// outranks its absence, regardless of source priority.
func (m *Merger) primaryCandidate(cands []candidate) candidate {
	best := cands[0]
	bestKey := m.identityKey(best)
	for _, c := range cands[1:] {
		if key := m.identityKey(c); less(key, bestKey) {
			best, bestKey = c, key
		}
	}
	return best
}

func (m *Merger) identityKey(c candidate) [3]int {
	doiRank := 1
	if ident.NormalizeDOI(c.paper.DOI) != "" {
		doiRank = 0
	}
	return [3]int{doiRank, rank(m.groups, c.paper.Source), c.pos}
}

func less(a, b [3]int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// pick selects one field value across candidates: non-empty values only,
// ranked by rankFn, with an optional preferred-value short-circuit and an
// optional tie-breaker for equal ranks. The final tie-breaker is always
// earliest input position. Returns the value, its source, and whether any
// candidate supplied one.
func pick[T any](
	cands []candidate,
	rankFn func(source string) int,
	get func(types.Paper) T,
	nonEmpty func(T) bool,
	preferred func(T) bool,
	better func(a, b T) bool,
) (T, string, bool) {
	var (
		best     T
		bestSrc  string
		bestRank int
		found    bool
	)

	for _, c := range cands {
		v := get(c.paper)
		if !nonEmpty(v) {
			continue
		}
		if preferred != nil && preferred(v) {
			return v, c.paper.Source, true
		}

		r := rankFn(c.paper.Source)
		switch {
		case !found || r < bestRank:
			best, bestSrc, bestRank, found = v, c.paper.Source, r, true
		case r == bestRank && better != nil && better(v, best):
			best, bestSrc = v, c.paper.Source
		}
	}
	return best, bestSrc, found
}

func nonBlank(s string) bool { return strings.TrimSpace(s) != "" }

func longer(a, b string) bool { return len(a) > len(b) }

// buildProvenance records every contributing source in input order and
// each source's own record identifier.
func buildProvenance(cands []candidate) types.Provenance {
	prov := types.Provenance{
		SourceRecords: make(map[string]string),
		FieldSources:  make(map[string]types.FieldEvidence),
	}
	seen := make(map[string]bool)
	for _, c := range cands {
		source := c.paper.Source
		if source == "" {
			continue
		}
		if !seen[source] {
			seen[source] = true
			prov.Sources = append(prov.Sources, source)
		}
		if _, ok := prov.SourceRecords[source]; !ok && c.paper.PaperID != "" {
			prov.SourceRecords[source] = c.paper.PaperID
		}
	}
	return prov
}
