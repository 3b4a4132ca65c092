// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paperdex pipeline.
// Implements: prd010-identity (Paper, MergedPaper, Provenance);
//
//	prd013-chunking (Chunk);
//	docs/ARCHITECTURE § Data Structures.
package types

// Paper is one provider's view of a published work. Instances are built by
// a single provider client from a single upstream response and are treated
// as immutable by grouping and merging; a merged record is always a new
// value.
type Paper struct {
	// PaperID is the provider-local identifier or a DOI (e.g. "W2168236935",
	// "s2:649def34", "10.1000/example").
	PaperID string `json:"paper_id" yaml:"paper_id"`

	// Title is the paper title as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// DOI is the Digital Object Identifier, canonical lowercase form when
	// set. Empty when the provider did not report one.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Abstract is the paper abstract or summary.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Year is the publication year; zero when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Venue is the journal or conference name.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// Source identifies the provider that produced this record
	// (e.g. "crossref", "openalex"); used for priority ranking.
	Source string `json:"source" yaml:"source"`

	// URL is the provider's landing page for the work.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// PDFURL is a direct full-text link when the provider reports one.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// IsOA reports open-access status; nil when the provider does not say.
	IsOA *bool `json:"is_oa,omitempty" yaml:"is_oa,omitempty"`

	// Authors lists author display names in provider order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`
}

// FieldEvidence records which source contributed a chosen field value.
type FieldEvidence struct {
	// Source is the provider whose value won the field.
	Source string `json:"source" yaml:"source"`

	// Value is the winning value rendered as a string for audit output.
	Value string `json:"value" yaml:"value"`
}

// Provenance describes how a merged record was assembled.
type Provenance struct {
	// Sources lists the contributing providers in discovery order, without
	// duplicates.
	Sources []string `json:"sources" yaml:"sources"`

	// SourceRecords maps each provider to the first record ID it
	// contributed.
	SourceRecords map[string]string `json:"source_records" yaml:"source_records"`

	// FieldSources maps merged field names to the evidence that won them.
	FieldSources map[string]FieldEvidence `json:"field_sources" yaml:"field_sources"`
}

// MergedPaper is the output of merging one identity group. PrimarySource
// reflects identity-level priority (DOI presence, then source priority,
// then input order), independent of which sources won individual fields.
type MergedPaper struct {
	Paper `yaml:",inline"`

	// PrimarySource is the provider whose identity won the group.
	PrimarySource string `json:"primary_source" yaml:"primary_source"`

	// Provenance records contributing sources and per-field winners.
	Provenance Provenance `json:"provenance" yaml:"provenance"`
}
