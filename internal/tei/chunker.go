// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tei

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/meshintel/paperdex/internal/cite"
	"github.com/meshintel/paperdex/pkg/types"
)

// Chunking defaults, applied when the config leaves a limit unset.
const (
	defaultMaxTokens = 400
	defaultMaxChars  = 2000
)

// Chunker segments parsed TEI documents into bounded chunks. One
// instance is reusable across documents; it holds no per-document state.
type Chunker struct {
	tok       Tokenizer
	maxTokens int
	maxChars  int
}

// NewChunker validates the limits and builds a Chunker. Zero limits take
// the defaults; negative limits are rejected.
func NewChunker(cfg types.ChunkConfig) (*Chunker, error) {
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	maxChars := cfg.MaxChars
	if maxChars == 0 {
		maxChars = defaultMaxChars
	}
	if maxTokens < 0 || maxChars < 0 {
		return nil, fmt.Errorf("chunk limits must be positive (max_tokens=%d, max_chars=%d)", cfg.MaxTokens, cfg.MaxChars)
	}

	return &Chunker{
		tok:       NewTokenizer(cfg.Encoding),
		maxTokens: maxTokens,
		maxChars:  maxChars,
	}, nil
}

// Chunk parses teiXML and emits the full chunk sequence for one paper.
// Synthetic "Title" and "Abstract" sections precede the body sections;
// every chunk is prefixed with its section heading, stamped with a
// strictly increasing global position, and annotated with the resolved
// citations its text refers to.
func (c *Chunker) Chunk(paperID, teiXML string) ([]types.Chunk, error) {
	doc, err := ParseDocument(teiXML)
	if err != nil {
		return nil, err
	}
	return c.ChunkDocument(paperID, doc), nil
}

// ChunkDocument chunks an already-parsed document.
func (c *Chunker) ChunkDocument(paperID string, doc *Document) []types.Chunk {
	var chunks []types.Chunk
	offset := 0

	for _, section := range orderedSections(doc) {
		queue := c.splitLongParagraphs(section.Paragraphs)
		orderInSection := 0

		for len(queue) > 0 {
			text, rest := c.packChunk(section.Title, queue)
			queue = rest

			chunk := types.Chunk{
				ChunkID:        fmt.Sprintf("%s-chunk-%d", paperID, len(chunks)+1),
				PaperID:        paperID,
				Kind:           types.KindSectionParagraph,
				Position:       len(chunks),
				SectionTitle:   section.Title,
				OrderInSection: orderInSection,
				Text:           text,
				Citations:      resolveCitations(text, doc.Bibliography),
				TokenCount:     c.tok.Count(text),
				CharRange:      types.CharRange{Start: offset, End: offset + len(text)},
			}
			if section.TEIID != "" || section.XPath != "" {
				chunk.TEI = &types.TEIAnchor{TEIID: section.TEIID, XPath: section.XPath}
			}

			chunks = append(chunks, chunk)
			offset += len(text)
			orderInSection++
		}
	}
	return chunks
}

// orderedSections prepends the synthetic Title and Abstract sections to
// the body sections.
func orderedSections(doc *Document) []Section {
	var sections []Section
	if doc.Title != "" {
		sections = append(sections, Section{Title: "Title", Paragraphs: []string{doc.Title}})
	}
	if len(doc.Abstract) > 0 {
		sections = append(sections, Section{Title: "Abstract", Paragraphs: doc.Abstract})
	}
	return append(sections, doc.Sections...)
}

// packChunk greedily packs queued paragraphs under the header prefix
// while both limits hold. When even the first paragraph alone does not
// fit, it is trimmed to the limits and its remainder pushed back, so no
// content is dropped beyond the deterministic token-boundary trim.
func (c *Chunker) packChunk(sectionTitle string, queue []string) (string, []string) {
	header := sectionTitle + "\n\n"
	var parts []string

	for len(queue) > 0 {
		candidate := header + strings.Join(append(parts[:len(parts):len(parts)], queue[0]), "\n\n")
		if len(candidate) <= c.maxChars && c.tok.Count(candidate) <= c.maxTokens {
			parts = append(parts, queue[0])
			queue = queue[1:]
			continue
		}

		if len(parts) > 0 {
			break
		}

		// A single paragraph that cannot fit even alone: trim it to the
		// space left under the header and requeue the remainder.
		availableChars := max(c.maxChars-len(header), 1)
		availableTokens := max(c.maxTokens-c.tok.Count(header), 1)
		trimmed := c.trimToLimits(queue[0], availableChars, availableTokens)

		parts = append(parts, trimmed)
		remainder := strings.TrimLeft(queue[0][min(len(trimmed), len(queue[0])):], " \t\n")
		if remainder != "" {
			queue[0] = remainder
		} else {
			queue = queue[1:]
		}
		break
	}

	return header + strings.Join(parts, "\n\n"), queue
}

// splitLongParagraphs breaks paragraphs longer than the character limit
// on whitespace boundaries.
func (c *Chunker) splitLongParagraphs(paragraphs []string) []string {
	var parts []string
	for _, paragraph := range paragraphs {
		if len(paragraph) <= c.maxChars {
			parts = append(parts, paragraph)
			continue
		}
		parts = append(parts, splitByWhitespace(paragraph, c.maxChars)...)
	}
	return parts
}

func splitByWhitespace(text string, maxChars int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{text[:min(len(text), maxChars)]}
	}

	var pieces []string
	var current []string
	for _, word := range words {
		candidateLen := len(word)
		if len(current) > 0 {
			candidateLen += len(strings.Join(current, " ")) + 1
		}

		switch {
		case candidateLen > maxChars && len(current) > 0:
			pieces = append(pieces, strings.Join(current, " "))
			current = []string{word}
		case candidateLen > maxChars:
			// A single unbroken run longer than the limit.
			pieces = append(pieces, word[:maxChars])
		default:
			current = append(current, word)
		}
	}
	if len(current) > 0 {
		pieces = append(pieces, strings.Join(current, " "))
	}
	return pieces
}

// trimToLimits cuts text to the character limit, then to the token limit
// at an encoded-token boundary.
func (c *Chunker) trimToLimits(text string, maxChars, maxTokens int) string {
	trimmed := text
	if len(trimmed) > maxChars {
		trimmed = trimmed[:maxChars]
	}
	return c.tok.Trim(trimmed, maxTokens)
}

// resolveCitations maps numeric citation markers in the chunk text to
// bibliography strings, trying the b{N-1} id convention before b{N}.
// First match wins; output keeps first-appearance order without
// duplicates.
func resolveCitations(text string, bibliography map[string]string) []string {
	if len(bibliography) == 0 {
		return nil
	}

	var citations []string
	seen := make(map[string]bool)
	for _, marker := range cite.Extract(text) {
		n, err := strconv.Atoi(marker)
		if err != nil {
			continue
		}
		for _, bibID := range []string{fmt.Sprintf("b%d", n-1), fmt.Sprintf("b%d", n)} {
			citation, ok := bibliography[bibID]
			if ok && citation != "" && !seen[citation] {
				seen[citation] = true
				citations = append(citations, citation)
				break
			}
			if ok && citation != "" {
				break
			}
		}
	}
	return citations
}
