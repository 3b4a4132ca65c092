// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package client

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/meshintel/paperdex/internal/ident"
	"github.com/meshintel/paperdex/pkg/types"
)

// openAlexBase is the OpenAlex Works endpoint. Declared as a var so tests
// can substitute an httptest server.
var openAlexBase = "https://api.openalex.org/works"

// SourceOpenAlex is the source name OpenAlex records carry.
const SourceOpenAlex = "openalex"

// OpenAlex queries the OpenAlex Works API.
type OpenAlex struct {
	caller
	// mailto is sent on every request for polite-pool access.
	mailto string
}

// NewOpenAlex builds an OpenAlex client from shared provider settings.
func NewOpenAlex(cfg types.ProviderConfig) *OpenAlex {
	return &OpenAlex{caller: newCaller(cfg), mailto: cfg.Mailto}
}

// Name returns the provider identifier.
func (c *OpenAlex) Name() string { return SourceOpenAlex }

// Search queries OpenAlex for works matching query. When the first page
// returns a next-cursor, one follow-up page is fetched to widen the
// candidate pool before grouping.
func (c *OpenAlex) Search(ctx context.Context, query string, k, minYear, maxYear int) ([]types.Paper, error) {
	papers, cursor, err := c.searchPage(ctx, query, k, minYear, maxYear, "*")
	if err != nil {
		return nil, err
	}

	if cursor != "" {
		more, _, err := c.searchPage(ctx, query, k, minYear, maxYear, cursor)
		if err == nil {
			papers = append(papers, more...)
		}
	}
	return papers, nil
}

func (c *OpenAlex) searchPage(ctx context.Context, query string, k, minYear, maxYear int, cursor string) ([]types.Paper, string, error) {
	perPage := k
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 200 {
		perPage = 200
	}

	params := url.Values{
		"search":   {query},
		"per-page": {fmt.Sprintf("%d", perPage)},
	}
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	var filters []string
	if minYear > 0 {
		filters = append(filters, fmt.Sprintf("from_publication_date:%d-01-01", minYear))
	}
	if maxYear > 0 {
		filters = append(filters, fmt.Sprintf("to_publication_date:%d-12-31", maxYear))
	}
	if len(filters) > 0 {
		params.Set("filter", strings.Join(filters, ","))
	}
	if c.mailto != "" {
		params.Set("mailto", c.mailto)
	}

	var oar openAlexResponse
	if err := c.getJSON(ctx, SourceOpenAlex, openAlexBase+"?"+params.Encode(), nil, &oar); err != nil {
		return nil, "", err
	}

	papers := make([]types.Paper, 0, len(oar.Results))
	for _, work := range oar.Results {
		papers = append(papers, work.toPaper())
	}
	return papers, oar.Meta.NextCursor, nil
}

// GetByDOI looks up a single work by DOI. A missing work surfaces as a
// KindNotFound error.
func (c *OpenAlex) GetByDOI(ctx context.Context, doi string) (*types.Paper, error) {
	canonical := ident.NormalizeDOI(doi)
	if canonical == "" {
		return nil, &Error{Kind: KindRequestRejected, Provider: SourceOpenAlex, Message: "empty DOI"}
	}

	reqURL := openAlexBase + "/https://doi.org/" + canonical
	if c.mailto != "" {
		reqURL += "?mailto=" + url.QueryEscape(c.mailto)
	}

	var work openAlexWork
	if err := c.getJSON(ctx, SourceOpenAlex, reqURL, nil, &work); err != nil {
		return nil, err
	}

	paper := work.toPaper()
	return &paper, nil
}

func (w openAlexWork) toPaper() types.Paper {
	paper := types.Paper{
		PaperID:  strings.TrimPrefix(w.ID, "https://openalex.org/"),
		Title:    w.Title,
		DOI:      ident.NormalizeDOI(w.DOI),
		Abstract: reconstructAbstract(w.AbstractInvertedIndex),
		Year:     w.PublicationYear,
		Source:   SourceOpenAlex,
		URL:      w.ID,
		PDFURL:   w.OpenAccess.OAURL,
	}

	if w.PrimaryLocation.Source.DisplayName != "" {
		paper.Venue = w.PrimaryLocation.Source.DisplayName
	}
	if w.OpenAccess.IsOA {
		isOA := true
		paper.IsOA = &isOA
	}

	for _, authorship := range w.Authorships {
		if authorship.Author.DisplayName != "" {
			paper.Authors = append(paper.Authors, authorship.Author.DisplayName)
		}
	}
	return paper
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back to
// plain text. The inverted index maps each word to the positions where it
// appears.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexMeta struct {
	Count      int    `json:"count"`
	NextCursor string `json:"next_cursor"`
}

type openAlexWork struct {
	ID                    string               `json:"id"`
	Title                 string               `json:"title"`
	DOI                   string               `json:"doi"`
	PublicationYear       int                  `json:"publication_year"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
	OpenAccess            openAlexOpenAccess   `json:"open_access"`
	PrimaryLocation       openAlexLocation     `json:"primary_location"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type openAlexOpenAccess struct {
	IsOA     bool   `json:"is_oa"`
	OAStatus string `json:"oa_status"`
	OAURL    string `json:"oa_url"`
}

type openAlexLocation struct {
	Source openAlexLocationSource `json:"source"`
}

type openAlexLocationSource struct {
	DisplayName string `json:"display_name"`
}
