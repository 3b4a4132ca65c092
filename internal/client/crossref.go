// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package client

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/meshintel/paperdex/internal/ident"
	"github.com/meshintel/paperdex/pkg/types"
)

// crossrefBase is the Crossref works endpoint. Declared as a var so tests
// can substitute an httptest server.
var crossrefBase = "https://api.crossref.org/works"

// SourceCrossref is the source name Crossref records carry.
const SourceCrossref = "crossref"

// Crossref queries the Crossref works API.
type Crossref struct {
	caller
	mailto string
}

// NewCrossref builds a Crossref client from shared provider settings.
func NewCrossref(cfg types.ProviderConfig) *Crossref {
	return &Crossref{caller: newCaller(cfg), mailto: cfg.Mailto}
}

// Name returns the provider identifier.
func (c *Crossref) Name() string { return SourceCrossref }

// Search queries Crossref with a free-text bibliographic query. Year
// bounds map to issued-date filters.
func (c *Crossref) Search(ctx context.Context, query string, k, minYear, maxYear int) ([]types.Paper, error) {
	return c.search(ctx, url.Values{"query.bibliographic": {query}}, k, minYear, maxYear)
}

// SearchByTitle queries Crossref restricted to title matching; used by the
// DOI resolver for title→DOI upgrades.
func (c *Crossref) SearchByTitle(ctx context.Context, title string, rows int) ([]types.Paper, error) {
	return c.search(ctx, url.Values{"query.title": {title}}, rows, 0, 0)
}

func (c *Crossref) search(ctx context.Context, params url.Values, rows, minYear, maxYear int) ([]types.Paper, error) {
	if rows <= 0 {
		rows = 20
	}
	params.Set("rows", fmt.Sprintf("%d", rows))

	var filters []string
	if minYear > 0 {
		filters = append(filters, fmt.Sprintf("from-pub-date:%d-01-01", minYear))
	}
	if maxYear > 0 {
		filters = append(filters, fmt.Sprintf("until-pub-date:%d-12-31", maxYear))
	}
	if len(filters) > 0 {
		params.Set("filter", strings.Join(filters, ","))
	}
	if c.mailto != "" {
		params.Set("mailto", c.mailto)
	}

	var cr crossrefListResponse
	if err := c.getJSON(ctx, SourceCrossref, crossrefBase+"?"+params.Encode(), nil, &cr); err != nil {
		return nil, err
	}

	papers := make([]types.Paper, 0, len(cr.Message.Items))
	for _, item := range cr.Message.Items {
		papers = append(papers, item.toPaper())
	}
	return papers, nil
}

// GetByDOI looks up a single work by DOI.
func (c *Crossref) GetByDOI(ctx context.Context, doi string) (*types.Paper, error) {
	canonical := ident.NormalizeDOI(doi)
	if canonical == "" {
		return nil, &Error{Kind: KindRequestRejected, Provider: SourceCrossref, Message: "empty DOI"}
	}

	var cr crossrefItemResponse
	if err := c.getJSON(ctx, SourceCrossref, crossrefBase+"/"+url.PathEscape(canonical), nil, &cr); err != nil {
		return nil, err
	}

	paper := cr.Message.toPaper()
	return &paper, nil
}

// jatsTagPattern strips JATS markup Crossref embeds in abstracts.
var jatsTagPattern = regexp.MustCompile(`</?jats:[^>]+>|</?[a-zA-Z][^>]*>`)

func (w crossrefWork) toPaper() types.Paper {
	paper := types.Paper{
		PaperID:  ident.NormalizeDOI(w.DOI),
		DOI:      ident.NormalizeDOI(w.DOI),
		Abstract: strings.TrimSpace(jatsTagPattern.ReplaceAllString(w.Abstract, "")),
		Source:   SourceCrossref,
		URL:      w.URL,
	}

	if len(w.Title) > 0 {
		paper.Title = w.Title[0]
	}
	if len(w.ContainerTitle) > 0 {
		paper.Venue = w.ContainerTitle[0]
	}
	if len(w.Issued.DateParts) > 0 && len(w.Issued.DateParts[0]) > 0 {
		paper.Year = w.Issued.DateParts[0][0]
	}

	for _, author := range w.Author {
		name := strings.TrimSpace(author.Given + " " + author.Family)
		if name != "" {
			paper.Authors = append(paper.Authors, name)
		}
	}
	return paper
}

// Crossref API JSON structures.
type crossrefListResponse struct {
	Message crossrefListMessage `json:"message"`
}

type crossrefListMessage struct {
	Items []crossrefWork `json:"items"`
}

type crossrefItemResponse struct {
	Message crossrefWork `json:"message"`
}

type crossrefWork struct {
	DOI            string           `json:"DOI"`
	Title          []string         `json:"title"`
	Abstract       string           `json:"abstract"`
	ContainerTitle []string         `json:"container-title"`
	Issued         crossrefDate     `json:"issued"`
	URL            string           `json:"URL"`
	Author         []crossrefAuthor `json:"author"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}
