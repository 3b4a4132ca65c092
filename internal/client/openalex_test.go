package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meshintel/paperdex/pkg/types"
)

func testProviderCfg() types.ProviderConfig {
	return types.ProviderConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: "test/0.1"},
		Mailto:     "dev@example.org",
	}
}

const openAlexSearchBody = `{
	"meta": {"count": 2, "next_cursor": ""},
	"results": [
		{
			"id": "https://openalex.org/W1",
			"title": "Deep learning in medicine",
			"doi": "https://doi.org/10.1000/Example",
			"publication_year": 2022,
			"authorships": [
				{"author": {"id": "A1", "display_name": "Ada Lovelace"}},
				{"author": {"id": "A2", "display_name": "Grace Hopper"}}
			],
			"abstract_inverted_index": {"Deep": [0], "learning": [1], "works": [2]},
			"open_access": {"is_oa": true, "oa_status": "gold", "oa_url": "https://example.org/w1.pdf"},
			"primary_location": {"source": {"display_name": "Nature"}}
		},
		{
			"id": "https://openalex.org/W2",
			"title": "Another paper",
			"publication_year": 2020
		}
	]
}`

func TestOpenAlexSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("mailto"); got != "dev@example.org" {
			t.Errorf("mailto = %q, want polite-pool address", got)
		}
		w.Write([]byte(openAlexSearchBody))
	}))
	defer ts.Close()

	old := openAlexBase
	openAlexBase = ts.URL
	defer func() { openAlexBase = old }()

	c := NewOpenAlex(testProviderCfg())
	papers, err := c.Search(context.Background(), "deep learning", 5, 0, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("len(papers) = %d, want 2", len(papers))
	}

	p := papers[0]
	if p.PaperID != "W1" {
		t.Errorf("PaperID = %q, want W1", p.PaperID)
	}
	if p.DOI != "10.1000/example" {
		t.Errorf("DOI = %q, want canonical lowercase", p.DOI)
	}
	if p.Abstract != "Deep learning works" {
		t.Errorf("Abstract = %q, want inverted index reconstruction", p.Abstract)
	}
	if p.Venue != "Nature" {
		t.Errorf("Venue = %q, want Nature", p.Venue)
	}
	if len(p.Authors) != 2 || p.Authors[0] != "Ada Lovelace" {
		t.Errorf("Authors = %v, want provider order", p.Authors)
	}
	if p.IsOA == nil || !*p.IsOA {
		t.Error("IsOA should be set true")
	}
	if p.Source != SourceOpenAlex {
		t.Errorf("Source = %q, want %q", p.Source, SourceOpenAlex)
	}
}

func TestOpenAlexSearchFollowsCursor(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("cursor") == "*" {
			w.Write([]byte(`{"meta": {"count": 2, "next_cursor": "page2"},
				"results": [{"id": "https://openalex.org/W1", "title": "First"}]}`))
			return
		}
		w.Write([]byte(`{"meta": {"count": 2, "next_cursor": ""},
			"results": [{"id": "https://openalex.org/W2", "title": "Second"}]}`))
	}))
	defer ts.Close()

	old := openAlexBase
	openAlexBase = ts.URL
	defer func() { openAlexBase = old }()

	c := NewOpenAlex(testProviderCfg())
	papers, err := c.Search(context.Background(), "q", 5, 0, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want cursor follow-up", calls)
	}
	if len(papers) != 2 || papers[1].PaperID != "W2" {
		t.Errorf("papers = %v, want both pages", papers)
	}
}

func TestOpenAlexGetByDOINotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	old := openAlexBase
	openAlexBase = ts.URL
	defer func() { openAlexBase = old }()

	c := NewOpenAlex(testProviderCfg())
	_, err := c.GetByDOI(context.Background(), "10.1000/missing")
	if !IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestReconstructAbstract(t *testing.T) {
	got := reconstructAbstract(map[string][]int{
		"the":   {0, 3},
		"model": {1},
		"beats": {2},
		"rest":  {4},
	})
	want := "the model beats the rest"
	if got != want {
		t.Errorf("reconstructAbstract = %q, want %q", got, want)
	}

	if reconstructAbstract(nil) != "" {
		t.Error("nil index should yield empty abstract")
	}
}
