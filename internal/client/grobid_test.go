package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/meshintel/paperdex/pkg/types"
)

func TestGrobidAlive(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/isalive" {
			t.Errorf("path = %q, want /api/isalive", r.URL.Path)
		}
		w.Write([]byte("true"))
	}))
	defer ts.Close()

	g := NewGrobid(types.GrobidConfig{BaseURL: ts.URL})
	if err := g.Alive(context.Background()); err != nil {
		t.Fatalf("Alive: %v", err)
	}
}

func TestGrobidAliveDown(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	g := NewGrobid(types.GrobidConfig{BaseURL: ts.URL})
	err := g.Alive(context.Background())
	if err == nil || IsClientError(err) {
		t.Errorf("err = %v, want upstream failure", err)
	}
}

func TestGrobidProcessFulltext(t *testing.T) {
	const teiBody = `<TEI xmlns="http://www.tei-c.org/ns/1.0"><text><body/></text></TEI>`

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/processFulltextDocument" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parsing multipart form: %v", err)
		}
		f, _, err := r.FormFile("input")
		if err != nil {
			t.Fatalf("form file %q missing: %v", "input", err)
		}
		defer f.Close()
		w.Write([]byte(teiBody))
	}))
	defer ts.Close()

	g := NewGrobid(types.GrobidConfig{BaseURL: ts.URL})
	tei, err := g.ProcessFulltext(context.Background(), strings.NewReader("%PDF-1.4 fake"))
	if err != nil {
		t.Fatalf("ProcessFulltext: %v", err)
	}
	if tei != teiBody {
		t.Errorf("tei = %q, want response body verbatim", tei)
	}
}

func TestGrobidProcessFulltextUnparseable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	g := NewGrobid(types.GrobidConfig{BaseURL: ts.URL})
	_, err := g.ProcessFulltext(context.Background(), strings.NewReader("not a pdf"))
	if !IsClientError(err) {
		t.Errorf("err = %v, want request rejected for unparseable document", err)
	}
}
