package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/meshintel/paperdex/internal/httputil"
)

const crossrefSearchBody = `{
	"message": {
		"items": [
			{
				"DOI": "10.1000/EXAMPLE",
				"title": ["Attention is all you need"],
				"abstract": "<jats:p>The dominant <jats:italic>sequence</jats:italic> models.</jats:p>",
				"container-title": ["NeurIPS"],
				"issued": {"date-parts": [[2017, 6, 12]]},
				"URL": "https://doi.org/10.1000/example",
				"author": [
					{"given": "Ashish", "family": "Vaswani"},
					{"given": "", "family": "Shazeer"}
				]
			}
		]
	}
}`

func TestCrossrefSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query.bibliographic"); got != "attention" {
			t.Errorf("query.bibliographic = %q, want attention", got)
		}
		w.Write([]byte(crossrefSearchBody))
	}))
	defer ts.Close()

	old := crossrefBase
	crossrefBase = ts.URL
	defer func() { crossrefBase = old }()

	c := NewCrossref(testProviderCfg())
	papers, err := c.Search(context.Background(), "attention", 5, 0, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(papers) != 1 {
		t.Fatalf("len(papers) = %d, want 1", len(papers))
	}

	p := papers[0]
	if p.DOI != "10.1000/example" {
		t.Errorf("DOI = %q, want canonical lowercase", p.DOI)
	}
	if p.PaperID != "10.1000/example" {
		t.Errorf("PaperID = %q, want DOI", p.PaperID)
	}
	if p.Abstract != "The dominant sequence models." {
		t.Errorf("Abstract = %q, want JATS markup stripped", p.Abstract)
	}
	if p.Year != 2017 {
		t.Errorf("Year = %d, want 2017", p.Year)
	}
	if p.Venue != "NeurIPS" {
		t.Errorf("Venue = %q, want NeurIPS", p.Venue)
	}
	if len(p.Authors) != 2 || p.Authors[0] != "Ashish Vaswani" || p.Authors[1] != "Shazeer" {
		t.Errorf("Authors = %v, want given+family with blanks trimmed", p.Authors)
	}
}

func TestCrossrefYearFilter(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("filter"); got != "from-pub-date:2020-01-01,until-pub-date:2022-12-31" {
			t.Errorf("filter = %q", got)
		}
		w.Write([]byte(`{"message": {"items": []}}`))
	}))
	defer ts.Close()

	old := crossrefBase
	crossrefBase = ts.URL
	defer func() { crossrefBase = old }()

	c := NewCrossref(testProviderCfg())
	if _, err := c.Search(context.Background(), "q", 5, 2020, 2022); err != nil {
		t.Fatalf("Search: %v", err)
	}
}

func TestCrossrefGetByDOIEmpty(t *testing.T) {
	c := NewCrossref(testProviderCfg())
	_, err := c.GetByDOI(context.Background(), "   ")
	if !IsClientError(err) {
		t.Errorf("empty DOI should be a client error, got %v", err)
	}
}

func TestCrossrefRateLimitSurfaces(t *testing.T) {
	oldDelay := httputil.RetryBaseDelay
	httputil.RetryBaseDelay = time.Millisecond
	defer func() { httputil.RetryBaseDelay = oldDelay }()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	old := crossrefBase
	crossrefBase = ts.URL
	defer func() { crossrefBase = old }()

	c := NewCrossref(testProviderCfg())
	_, err := c.Search(context.Background(), "q", 5, 0, 0)
	if !IsRateLimited(err) {
		t.Errorf("expected rate-limit error after retries, got %v", err)
	}
}
