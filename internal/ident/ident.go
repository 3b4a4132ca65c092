// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ident canonicalizes paper identifiers and titles. Every matching
// decision in grouping and merging goes through these normalizers.
// Implements: prd010-identity (R1, R2);
//
//	docs/ARCHITECTURE § Identity.
package ident

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// doiPrefixPattern matches resolver prefixes in front of a bare DOI:
// "https://doi.org/", "http://dx.doi.org/", etc.
var doiPrefixPattern = regexp.MustCompile(`(?i)^(https?://)?(dx\.)?doi\.org/`)

// doiShapePattern matches a bare DOI: "10.<registrant>/<suffix>".
var doiShapePattern = regexp.MustCompile(`^10\.\S+/\S+`)

// NormalizeDOI canonicalizes a DOI string: it strips resolver and "doi:"
// prefixes, trims whitespace, and lowercases. Empty or whitespace-only
// input yields "". The function is idempotent.
func NormalizeDOI(doi string) string {
	cleaned := strings.TrimSpace(doi)
	if cleaned == "" {
		return ""
	}

	cleaned = doiPrefixPattern.ReplaceAllString(cleaned, "")
	if len(cleaned) >= 4 && strings.EqualFold(cleaned[:4], "doi:") {
		cleaned = cleaned[4:]
	}

	return strings.ToLower(strings.TrimSpace(cleaned))
}

// NormalizeTitle canonicalizes a title for matching: NFKC unicode
// normalization, whitespace runs collapsed to single spaces, trimmed,
// lowercased. Empty input yields "".
func NormalizeTitle(title string) string {
	if title == "" {
		return ""
	}

	normalized := norm.NFKC.String(title)
	collapsed := strings.Join(strings.Fields(normalized), " ")
	return strings.ToLower(collapsed)
}

// tokenSplitPattern splits normalized titles on runs of non-alphanumeric
// characters (underscore included, matching \W_ semantics).
var tokenSplitPattern = regexp.MustCompile(`[^\pL\pN]+`)

// TitleTokens returns the set of word tokens in a normalized title.
func TitleTokens(title string) map[string]struct{} {
	tokens := make(map[string]struct{})
	if title == "" {
		return tokens
	}

	for _, token := range tokenSplitPattern.Split(NormalizeTitle(title), -1) {
		if token != "" {
			tokens[token] = struct{}{}
		}
	}
	return tokens
}

// Jaccard computes the intersection-over-union similarity of two token
// sets. Two empty sets are vacuously identical and score 1.0.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}

	intersection := 0
	for token := range a {
		if _, ok := b[token]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// LooksLikeDOI reports whether s has the shape of a bare DOI. Grouping
// uses this to treat DOI-shaped paper IDs as identity keys.
func LooksLikeDOI(s string) bool {
	return doiShapePattern.MatchString(s)
}
