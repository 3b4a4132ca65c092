package search

import (
	"testing"

	"github.com/meshintel/paperdex/pkg/types"
)

func softConfig() types.GroupingConfig {
	return types.GroupingConfig{EnableSoftGrouping: true}
}

func TestMakeGroupKeyDOI(t *testing.T) {
	tests := []struct {
		name  string
		paper types.Paper
		want  string
	}{
		{
			name:  "doi field",
			paper: types.Paper{DOI: "HTTPS://doi.org/10.1000/X", Title: "whatever"},
			want:  "doi:10.1000/x",
		},
		{
			name:  "doi-shaped paper id",
			paper: types.Paper{PaperID: "10.1000/from-id", Title: "whatever"},
			want:  "doi:10.1000/from-id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, soft := makeGroupKey(tt.paper)
			if key != tt.want {
				t.Errorf("key = %q, want %q", key, tt.want)
			}
			if soft {
				t.Error("DOI keys must never be soft")
			}
		})
	}
}

func TestMakeGroupKeyAmbiguousTitle(t *testing.T) {
	p := types.Paper{Title: "AI", Year: 2021, Authors: []string{"Ada Lovelace"}}
	key, soft := makeGroupKey(p)
	if key != "ai|2021|ada lovelace" {
		t.Errorf("key = %q, want year and first author appended", key)
	}
	if soft {
		t.Error("ambiguous titles must not be soft-groupable")
	}
}

func TestMakeGroupKeyPlainTitle(t *testing.T) {
	p := types.Paper{Title: "Deep learning applications in medicine", Year: 2021}
	key, soft := makeGroupKey(p)
	if key != "deep learning applications in medicine" {
		t.Errorf("key = %q", key)
	}
	if !soft {
		t.Error("unambiguous DOI-less titles should be soft-groupable")
	}
}

func TestSoftGroupingMergesPunctuationVariants(t *testing.T) {
	g := newGrouper(softConfig())
	g.add(types.Paper{Title: "Deep learning: applications in medicine", Year: 2021, Source: "openalex"})
	g.add(types.Paper{Title: "Deep learning - applications in medicine", Year: 2021, Source: "semanticscholar"})

	if len(g.groups) != 1 {
		t.Fatalf("groups = %d, want punctuation variants merged into 1", len(g.groups))
	}
	if len(g.groups[0].members) != 2 {
		t.Errorf("members = %d, want 2", len(g.groups[0].members))
	}
}

func TestSoftGroupingAmbiguousGuard(t *testing.T) {
	g := newGrouper(softConfig())
	g.add(types.Paper{Title: "AI", Authors: []string{"Ada Lovelace"}, Source: "openalex"})
	g.add(types.Paper{Title: "AI", Authors: []string{"Grace Hopper"}, Source: "crossref"})

	if len(g.groups) != 2 {
		t.Fatalf("groups = %d, want short generic titles kept apart", len(g.groups))
	}
}

func TestSoftGroupingDisabled(t *testing.T) {
	g := newGrouper(types.GroupingConfig{EnableSoftGrouping: false})
	g.add(types.Paper{Title: "Deep learning: applications in medicine"})
	g.add(types.Paper{Title: "Deep learning - applications in medicine"})

	if len(g.groups) != 2 {
		t.Fatalf("groups = %d, want exact keys only when soft grouping is off", len(g.groups))
	}
}

func TestSoftGroupingRespectsPrefix(t *testing.T) {
	// Same token set overall but a different leading prefix: no merge.
	g := newGrouper(softConfig())
	g.add(types.Paper{Title: "Deep learning methods for protein structure prediction systems"})
	g.add(types.Paper{Title: "Protein structure prediction systems for deep learning methods"})

	if len(g.groups) != 2 {
		t.Fatalf("groups = %d, want prefix mismatch to block soft merge", len(g.groups))
	}
}

func TestSoftThresholdConfigurableUpwardOnly(t *testing.T) {
	lowered := newGrouper(types.GroupingConfig{EnableSoftGrouping: true, SoftThreshold: 0.1})
	if lowered.threshold != softThresholdFloor {
		t.Errorf("threshold = %v, want floor enforced", lowered.threshold)
	}

	raised := newGrouper(types.GroupingConfig{EnableSoftGrouping: true, SoftThreshold: 0.95})
	if raised.threshold != 0.95 {
		t.Errorf("threshold = %v, want raise honored", raised.threshold)
	}
}

func TestStrictDOIKeyBeatsTitleVariance(t *testing.T) {
	g := newGrouper(softConfig())
	g.add(types.Paper{Title: "Totally different title here somehow", DOI: "10.1/x"})
	g.add(types.Paper{Title: "Another unrelated phrasing of words", DOI: "https://doi.org/10.1/X"})

	if len(g.groups) != 1 {
		t.Fatalf("groups = %d, want shared DOI to force one group", len(g.groups))
	}
}
