// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/meshintel/paperdex/internal/ident"
	"github.com/meshintel/paperdex/pkg/types"
)

// Soft-grouping floors. The threshold is configurable upward only and
// the prefix length is an empirical constant; both carried over from
// operational tuning rather than derived.
const (
	softThresholdFloor  = 0.82
	defaultPrefixTokens = 6
)

// Title-ambiguity guard: short or few-token titles are too generic to
// group on title alone.
const (
	ambiguousMaxTokens = 3
	ambiguousMaxChars  = 25
)

// group accumulates raw records believed to describe one work. Members
// stay in discovery order; the merge step depends on it.
type group struct {
	key     string
	members []types.Paper

	// soft groups (non-DOI, non-ambiguous titles) also carry the first
	// member's token set and prefix for similarity matching.
	soft   bool
	tokens map[string]struct{}
	prefix string
}

// grouper assigns raw provider records to identity groups.
type grouper struct {
	threshold    float64
	prefixTokens int
	enableSoft   bool

	groups []*group
	byKey  map[string]*group
}

func newGrouper(cfg types.GroupingConfig) *grouper {
	threshold := cfg.SoftThreshold
	if threshold < softThresholdFloor {
		threshold = softThresholdFloor
	}
	prefixTokens := cfg.PrefixTokens
	if prefixTokens <= 0 {
		prefixTokens = defaultPrefixTokens
	}

	return &grouper{
		threshold:    threshold,
		prefixTokens: prefixTokens,
		enableSoft:   cfg.EnableSoftGrouping,
		byKey:        make(map[string]*group),
	}
}

// add assigns one record to a group, creating the group when neither the
// exact key nor a soft match hits.
func (g *grouper) add(p types.Paper) {
	key, soft := makeGroupKey(p)

	if existing, ok := g.byKey[key]; ok {
		existing.members = append(existing.members, p)
		return
	}

	if soft && g.enableSoft {
		if match := g.findSoftMatch(p); match != nil {
			match.members = append(match.members, p)
			return
		}
	}

	created := &group{key: key, members: []types.Paper{p}, soft: soft}
	if soft {
		created.tokens = ident.TitleTokens(p.Title)
		created.prefix = tokenPrefix(p.Title, g.prefixTokens)
	}
	g.groups = append(g.groups, created)
	g.byKey[key] = created
}

// findSoftMatch compares a DOI-less, unambiguous candidate against
// existing soft groups sharing its token prefix and returns the
// best-scoring group at or above the threshold.
func (g *grouper) findSoftMatch(p types.Paper) *group {
	candidateTokens := ident.TitleTokens(p.Title)
	candidatePrefix := tokenPrefix(p.Title, g.prefixTokens)

	var best *group
	bestScore := 0.0
	for _, existing := range g.groups {
		if !existing.soft || existing.prefix != candidatePrefix {
			continue
		}
		score := ident.Jaccard(candidateTokens, existing.tokens)
		if score >= g.threshold && score > bestScore {
			best, bestScore = existing, score
		}
	}
	return best
}

// makeGroupKey derives the identity key for a record and reports whether
// the record is eligible for soft grouping. DOI keys are strict; title
// keys for ambiguous titles get year and first author appended so
// distinct short-titled works stay apart.
func makeGroupKey(p types.Paper) (key string, soft bool) {
	doi := ident.NormalizeDOI(p.DOI)
	if doi == "" {
		if id := ident.NormalizeDOI(p.PaperID); ident.LooksLikeDOI(id) {
			doi = id
		}
	}
	if doi != "" {
		return "doi:" + doi, false
	}

	normalized := ident.NormalizeTitle(p.Title)
	tokens := titleTokenList(p.Title)
	if len(tokens) <= ambiguousMaxTokens || len(normalized) <= ambiguousMaxChars {
		firstAuthor := ""
		if len(p.Authors) > 0 {
			firstAuthor = ident.NormalizeTitle(p.Authors[0])
		}
		return fmt.Sprintf("%s|%d|%s", normalized, p.Year, firstAuthor), false
	}
	return normalized, true
}

// nonTokenPattern splits normalized titles on non-alphanumeric runs,
// preserving token order (unlike the set form in ident).
var nonTokenPattern = regexp.MustCompile(`[^\pL\pN]+`)

func titleTokenList(title string) []string {
	var tokens []string
	for _, token := range nonTokenPattern.Split(ident.NormalizeTitle(title), -1) {
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// tokenPrefix joins the first n ordered title tokens; soft matching only
// compares candidates sharing this prefix.
func tokenPrefix(title string, n int) string {
	tokens := titleTokenList(title)
	if len(tokens) > n {
		tokens = tokens[:n]
	}
	return strings.Join(tokens, " ")
}
