// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cite extracts inline citation markers from passage text.
// Implements: prd013-chunking (R4);
//
//	docs/ARCHITECTURE § Chunking.
package cite

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// bracketPattern matches a bracketed citation group like "[2, 3-5; 7]".
var bracketPattern = regexp.MustCompile(`\[([^\]]+)\]`)

// rangePattern matches a numeric range token like "3-5".
var rangePattern = regexp.MustCompile(`^(\d+)\s*-\s*(\d+)$`)

// Extract returns the de-duplicated numeric citation markers found in
// text, in order of first appearance. Bracketed groups are split on commas
// and semicolons; "N-M" ranges are expanded (bounds swapped when reversed);
// non-numeric tokens such as "[A1]" or "[beta]" are ignored.
func Extract(text string) []string {
	seen := make(map[string]bool)
	var markers []string

	record := func(token string) {
		if !seen[token] {
			seen[token] = true
			markers = append(markers, token)
		}
	}

	for _, group := range bracketPattern.FindAllStringSubmatch(text, -1) {
		for _, token := range splitGroup(group[1]) {
			if bounds := rangePattern.FindStringSubmatch(token); bounds != nil {
				for _, expanded := range expandRange(bounds[1], bounds[2]) {
					record(expanded)
				}
				continue
			}
			if isDigits(token) {
				record(token)
			}
		}
	}

	return markers
}

// splitGroup splits a bracket body on commas and semicolons, trimming and
// dropping empty tokens.
func splitGroup(body string) []string {
	fields := strings.FieldsFunc(body, func(r rune) bool {
		return r == ',' || r == ';'
	})

	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			tokens = append(tokens, trimmed)
		}
	}
	return tokens
}

// expandRange expands "start-end" into individual marker strings, swapping
// bounds when the range is written backwards.
func expandRange(startStr, endStr string) []string {
	start, _ := strconv.Atoi(startStr)
	end, _ := strconv.Atoi(endStr)
	if start > end {
		start, end = end, start
	}

	expanded := make([]string, 0, end-start+1)
	for n := start; n <= end; n++ {
		expanded = append(expanded, fmt.Sprintf("%d", n))
	}
	return expanded
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
