// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ChunkKind classifies a chunk of full text.
type ChunkKind string

const (
	// KindSectionParagraph is the default kind: one or more body paragraphs
	// under a section heading.
	KindSectionParagraph ChunkKind = "section_paragraph"
)

// TEIAnchor points back into the TEI source a chunk was cut from.
type TEIAnchor struct {
	// TEIID is the xml:id of the nearest enclosing TEI element, when known.
	TEIID string `json:"tei_id,omitempty" yaml:"tei_id,omitempty"`

	// XPath locates the chunk's section within the TEI document.
	XPath string `json:"xpath,omitempty" yaml:"xpath,omitempty"`
}

// CharRange is a half-open [Start, End) character range in the emitted
// chunk stream.
type CharRange struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Chunk is a bounded, citation-annotated passage of a paper's full text.
// Chunks are produced deterministically: identical TEI input and limits
// always yield an identical chunk sequence.
type Chunk struct {
	// ChunkID is stable across runs, derived from paper identity and
	// position (e.g. "paper-123-chunk-4").
	ChunkID string `json:"chunk_id" yaml:"chunk_id"`

	// PaperID identifies the owning paper.
	PaperID string `json:"paper_id" yaml:"paper_id"`

	// Kind classifies the chunk.
	Kind ChunkKind `json:"kind" yaml:"kind"`

	// Position is the global 0-indexed reading-order position, strictly
	// increasing in emission order.
	Position int `json:"position" yaml:"position"`

	// SectionTitle is the innermost heading the chunk belongs to; empty for
	// heading-less divs.
	SectionTitle string `json:"section_title,omitempty" yaml:"section_title,omitempty"`

	// OrderInSection is the 0-indexed position among chunks of the same
	// section.
	OrderInSection int `json:"order_in_section" yaml:"order_in_section"`

	// Text is the chunk content, prefixed with its section header line.
	Text string `json:"text" yaml:"text"`

	// Citations lists resolved bibliography strings referenced by the
	// chunk, de-duplicated, in order of first appearance.
	Citations []string `json:"citations,omitempty" yaml:"citations,omitempty"`

	// TokenCount is the tokenizer's count for Text.
	TokenCount int `json:"token_count" yaml:"token_count"`

	// TEI anchors the chunk back into the source document.
	TEI *TEIAnchor `json:"tei,omitempty" yaml:"tei,omitempty"`

	// CharRange locates the chunk in the concatenated chunk stream.
	CharRange CharRange `json:"char_range" yaml:"char_range"`
}
