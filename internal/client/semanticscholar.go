// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/meshintel/paperdex/internal/ident"
	"github.com/meshintel/paperdex/pkg/types"
)

// semanticBase is the Semantic Scholar graph API root. Declared as a var
// so tests can substitute an httptest server.
var semanticBase = "https://api.semanticscholar.org/graph/v1"

// SourceSemanticScholar is the source name Semantic Scholar records carry.
const SourceSemanticScholar = "semanticscholar"

const semanticFields = "title,abstract,authors,externalIds,year,venue,url,openAccessPdf"

// SemanticScholar queries the Semantic Scholar graph API.
type SemanticScholar struct {
	caller
	apiKey string
}

// NewSemanticScholar builds a Semantic Scholar client. An API key is
// optional; requests without one share the public rate pool.
func NewSemanticScholar(cfg types.ProviderConfig) *SemanticScholar {
	return &SemanticScholar{caller: newCaller(cfg), apiKey: cfg.SemanticScholarAPIKey}
}

// Name returns the provider identifier.
func (c *SemanticScholar) Name() string { return SourceSemanticScholar }

func (c *SemanticScholar) header() http.Header {
	if c.apiKey == "" {
		return nil
	}
	return http.Header{"X-Api-Key": {c.apiKey}}
}

// Search queries the paper search endpoint.
func (c *SemanticScholar) Search(ctx context.Context, query string, k, minYear, maxYear int) ([]types.Paper, error) {
	if k <= 0 {
		k = 20
	}

	params := url.Values{
		"query":  {query},
		"limit":  {fmt.Sprintf("%d", k)},
		"fields": {semanticFields},
	}
	if yearRange := formatYearRange(minYear, maxYear); yearRange != "" {
		params.Set("year", yearRange)
	}

	var sr semanticResponse
	reqURL := semanticBase + "/paper/search?" + params.Encode()
	if err := c.getJSON(ctx, SourceSemanticScholar, reqURL, c.header(), &sr); err != nil {
		return nil, err
	}

	papers := make([]types.Paper, 0, len(sr.Data))
	for _, record := range sr.Data {
		papers = append(papers, record.toPaper())
	}
	return papers, nil
}

// GetByDOI looks up a single paper by DOI.
func (c *SemanticScholar) GetByDOI(ctx context.Context, doi string) (*types.Paper, error) {
	canonical := ident.NormalizeDOI(doi)
	if canonical == "" {
		return nil, &Error{Kind: KindRequestRejected, Provider: SourceSemanticScholar, Message: "empty DOI"}
	}

	reqURL := semanticBase + "/paper/DOI:" + url.PathEscape(canonical) + "?fields=" + url.QueryEscape(semanticFields)

	var record semanticPaper
	if err := c.getJSON(ctx, SourceSemanticScholar, reqURL, c.header(), &record); err != nil {
		return nil, err
	}

	paper := record.toPaper()
	return &paper, nil
}

// formatYearRange returns a Semantic Scholar year filter like "2020-2023".
func formatYearRange(minYear, maxYear int) string {
	switch {
	case minYear > 0 && maxYear > 0:
		return fmt.Sprintf("%d-%d", minYear, maxYear)
	case minYear > 0:
		return fmt.Sprintf("%d-", minYear)
	case maxYear > 0:
		return fmt.Sprintf("-%d", maxYear)
	default:
		return ""
	}
}

func (p semanticPaper) toPaper() types.Paper {
	paper := types.Paper{
		PaperID:  "s2:" + p.PaperID,
		Title:    p.Title,
		DOI:      ident.NormalizeDOI(p.ExternalIDs.DOI),
		Abstract: p.Abstract,
		Year:     p.Year,
		Venue:    p.Venue,
		Source:   SourceSemanticScholar,
		URL:      p.URL,
		PDFURL:   p.OpenAccessPDF.URL,
	}

	for _, author := range p.Authors {
		if author.Name != "" {
			paper.Authors = append(paper.Authors, author.Name)
		}
	}
	return paper
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID       string              `json:"paperId"`
	Title         string              `json:"title"`
	Abstract      string              `json:"abstract"`
	Year          int                 `json:"year"`
	Venue         string              `json:"venue"`
	URL           string              `json:"url"`
	Authors       []semanticAuthor    `json:"authors"`
	ExternalIDs   semanticExternalIDs `json:"externalIds"`
	OpenAccessPDF semanticOpenAccess  `json:"openAccessPdf"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticExternalIDs struct {
	DOI      string `json:"DOI"`
	ArXiv    string `json:"ArXiv"`
	CorpusID int    `json:"CorpusId"`
}

type semanticOpenAccess struct {
	URL string `json:"url"`
}
