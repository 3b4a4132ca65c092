package merge

import (
	"testing"

	"github.com/meshintel/paperdex/pkg/types"
)

func TestMergeEmptyInput(t *testing.T) {
	m := New(nil)
	if _, err := m.Merge(nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestMergeDOIPriority(t *testing.T) {
	m := New(nil)

	crossref := types.Paper{
		PaperID: "10.1000/example",
		Title:   "Deep learning in medicine",
		DOI:     "HTTPS://doi.org/10.1000/Example",
		Source:  "crossref",
		Year:    2022,
	}
	openalex := types.Paper{
		PaperID:  "W123",
		Title:    "Deep learning in medicine",
		Abstract: "A much richer abstract with substantially more detail about the work.",
		Source:   "openalex",
		Year:     2022,
	}

	merged, err := m.Merge([]types.Paper{openalex, crossref})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	if merged.DOI != "10.1000/example" {
		t.Errorf("DOI = %q, want canonical lowercase", merged.DOI)
	}
	if merged.PrimarySource != "crossref" {
		t.Errorf("PrimarySource = %q, want crossref (DOI presence outranks input order)", merged.PrimarySource)
	}
	if merged.Source != "crossref" {
		t.Errorf("Source = %q, want primary source", merged.Source)
	}
	if merged.Abstract != openalex.Abstract {
		t.Errorf("Abstract = %q, want the openalex abstract", merged.Abstract)
	}
	if ev := merged.Provenance.FieldSources["abstract"]; ev.Source != "openalex" {
		t.Errorf("abstract provenance = %q, want openalex", ev.Source)
	}
	if merged.PaperID != "10.1000/example" {
		t.Errorf("PaperID = %q, want aligned with merged DOI", merged.PaperID)
	}
}

func TestMergeAbstractTieBreakLonger(t *testing.T) {
	m := New(nil)

	short := types.Paper{PaperID: "W1", Title: "T", Abstract: "Short", Source: "openalex"}
	long := types.Paper{
		PaperID:  "W2",
		Title:    "T",
		Abstract: "This abstract runs to fifty characters in length!!",
		Source:   "openalex",
	}

	merged, err := m.Merge([]types.Paper{short, long})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged.Abstract != long.Abstract {
		t.Errorf("Abstract = %q, want the longer abstract at equal rank", merged.Abstract)
	}
}

func TestMergeAuthorsTieBreakMoreEntries(t *testing.T) {
	m := New(nil)

	fewer := types.Paper{PaperID: "A", Title: "T", Authors: []string{"One"}, Source: "semanticscholar"}
	more := types.Paper{PaperID: "B", Title: "T", Authors: []string{"One", "Two", "Three"}, Source: "semanticscholar"}

	merged, err := m.Merge([]types.Paper{fewer, more})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(merged.Authors) != 3 {
		t.Errorf("Authors = %v, want the longer list at equal rank", merged.Authors)
	}
}

func TestMergeRichTextOverride(t *testing.T) {
	// Crossref outranks OpenAlex by default, but abstracts prefer the
	// rich-text providers first.
	m := New(nil)

	crossref := types.Paper{
		PaperID:  "10.1/x",
		DOI:      "10.1/x",
		Title:    "T",
		Abstract: "crossref abstract",
		Source:   "crossref",
	}
	openalex := types.Paper{PaperID: "W1", Title: "T", Abstract: "oa", Source: "openalex"}

	merged, err := m.Merge([]types.Paper{crossref, openalex})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged.Abstract != "oa" {
		t.Errorf("Abstract = %q, want openalex ahead of crossref for abstracts", merged.Abstract)
	}
	if merged.Title != "T" || merged.PrimarySource != "crossref" {
		t.Errorf("identity fields should still follow the default chain")
	}
}

func TestMergePrimaryByInputOrder(t *testing.T) {
	// No DOIs, both sources unranked: first input wins identity.
	m := New(nil)

	a := types.Paper{PaperID: "A", Title: "T", Source: "somewhere"}
	b := types.Paper{PaperID: "B", Title: "T", Source: "elsewhere"}

	merged, err := m.Merge([]types.Paper{a, b})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged.PrimarySource != "somewhere" {
		t.Errorf("PrimarySource = %q, want first input at equal rank", merged.PrimarySource)
	}
	if merged.PaperID != "A" {
		t.Errorf("PaperID = %q, want first input's id", merged.PaperID)
	}
}

func TestMergeProvenanceSources(t *testing.T) {
	m := New(nil)

	papers := []types.Paper{
		{PaperID: "W1", Title: "T", Source: "openalex"},
		{PaperID: "10.1/x", DOI: "10.1/x", Title: "T", Source: "crossref"},
		{PaperID: "W2", Title: "T", Source: "openalex"},
	}

	merged, err := m.Merge(papers)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	wantSources := []string{"openalex", "crossref"}
	if len(merged.Provenance.Sources) != 2 {
		t.Fatalf("Sources = %v, want %v", merged.Provenance.Sources, wantSources)
	}
	for i, s := range wantSources {
		if merged.Provenance.Sources[i] != s {
			t.Errorf("Sources[%d] = %q, want %q (input order, deduplicated)", i, merged.Provenance.Sources[i], s)
		}
	}
	if merged.Provenance.SourceRecords["openalex"] != "W1" {
		t.Errorf("SourceRecords[openalex] = %q, want first record kept", merged.Provenance.SourceRecords["openalex"])
	}
}

func TestMergeCustomPriority(t *testing.T) {
	m := New([][]string{{"semanticscholar"}, {"crossref"}})

	s2 := types.Paper{PaperID: "s2:1", DOI: "10.1/x", Title: "From S2", Source: "semanticscholar"}
	cr := types.Paper{PaperID: "10.1/x", DOI: "10.1/x", Title: "From Crossref", Source: "crossref"}

	merged, err := m.Merge([]types.Paper{cr, s2})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged.PrimarySource != "semanticscholar" {
		t.Errorf("PrimarySource = %q, want configured priority to win", merged.PrimarySource)
	}
	if merged.Title != "From S2" {
		t.Errorf("Title = %q, want highest configured priority", merged.Title)
	}
}
