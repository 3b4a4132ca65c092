// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/meshintel/paperdex/internal/ident"
	"github.com/meshintel/paperdex/pkg/types"
)

// dataCiteBase is the DataCite DOIs endpoint. Declared as a var so tests
// can substitute an httptest server.
var dataCiteBase = "https://api.datacite.org/dois"

// SourceDataCite is the source name DataCite records carry.
const SourceDataCite = "datacite"

// DataCite queries the DataCite REST API. DataCite registers datasets and
// preprints Crossref does not cover.
type DataCite struct {
	caller
}

// NewDataCite builds a DataCite client from shared provider settings.
func NewDataCite(cfg types.ProviderConfig) *DataCite {
	return &DataCite{caller: newCaller(cfg)}
}

// Name returns the provider identifier.
func (c *DataCite) Name() string { return SourceDataCite }

// Search queries DataCite with a free-text query.
func (c *DataCite) Search(ctx context.Context, query string, k, minYear, maxYear int) ([]types.Paper, error) {
	if minYear > 0 || maxYear > 0 {
		var bounds []string
		if minYear > 0 {
			bounds = append(bounds, fmt.Sprintf("publicationYear:[%d TO *]", minYear))
		}
		if maxYear > 0 {
			bounds = append(bounds, fmt.Sprintf("publicationYear:[* TO %d]", maxYear))
		}
		query = query + " AND " + strings.Join(bounds, " AND ")
	}
	return c.search(ctx, query, k)
}

// SearchByTitle queries DataCite restricted to title matching; used by the
// DOI resolver for title→DOI upgrades.
func (c *DataCite) SearchByTitle(ctx context.Context, title string, rows int) ([]types.Paper, error) {
	return c.search(ctx, "titles.title:"+quoteQuery(title), rows)
}

func (c *DataCite) search(ctx context.Context, query string, rows int) ([]types.Paper, error) {
	if rows <= 0 {
		rows = 20
	}

	params := url.Values{
		"query":      {query},
		"page[size]": {fmt.Sprintf("%d", rows)},
	}

	var dr dataCiteListResponse
	if err := c.getJSON(ctx, SourceDataCite, dataCiteBase+"?"+params.Encode(), nil, &dr); err != nil {
		return nil, err
	}

	papers := make([]types.Paper, 0, len(dr.Data))
	for _, record := range dr.Data {
		papers = append(papers, record.toPaper())
	}
	return papers, nil
}

// GetByDOI looks up a single DOI record.
func (c *DataCite) GetByDOI(ctx context.Context, doi string) (*types.Paper, error) {
	canonical := ident.NormalizeDOI(doi)
	if canonical == "" {
		return nil, &Error{Kind: KindRequestRejected, Provider: SourceDataCite, Message: "empty DOI"}
	}

	var dr dataCiteItemResponse
	if err := c.getJSON(ctx, SourceDataCite, dataCiteBase+"/"+url.PathEscape(canonical), nil, &dr); err != nil {
		return nil, err
	}

	paper := dr.Data.toPaper()
	return &paper, nil
}

// quoteQuery wraps a phrase in escaped quotes for DataCite's Lucene-style
// query syntax.
func quoteQuery(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func (r dataCiteRecord) toPaper() types.Paper {
	attrs := r.Attributes
	paper := types.Paper{
		PaperID: ident.NormalizeDOI(attrs.DOI),
		DOI:     ident.NormalizeDOI(attrs.DOI),
		Year:    attrs.PublicationYear,
		Venue:   attrs.Publisher,
		Source:  SourceDataCite,
		URL:     attrs.URL,
	}

	if len(attrs.Titles) > 0 {
		paper.Title = attrs.Titles[0].Title
	}
	for _, desc := range attrs.Descriptions {
		if desc.DescriptionType == "" || strings.EqualFold(desc.DescriptionType, "abstract") {
			paper.Abstract = desc.Description
			break
		}
	}
	for _, creator := range attrs.Creators {
		if creator.Name != "" {
			paper.Authors = append(paper.Authors, creator.Name)
		}
	}
	return paper
}

// DataCite API JSON structures.
type dataCiteListResponse struct {
	Data []dataCiteRecord `json:"data"`
}

type dataCiteItemResponse struct {
	Data dataCiteRecord `json:"data"`
}

type dataCiteRecord struct {
	ID         string             `json:"id"`
	Attributes dataCiteAttributes `json:"attributes"`
}

type dataCiteAttributes struct {
	DOI             string                `json:"doi"`
	Titles          []dataCiteTitle       `json:"titles"`
	Descriptions    []dataCiteDescription `json:"descriptions"`
	Creators        []dataCiteCreator     `json:"creators"`
	PublicationYear int                   `json:"publicationYear"`
	Publisher       string                `json:"publisher"`
	URL             string                `json:"url"`
}

type dataCiteTitle struct {
	Title string `json:"title"`
}

type dataCiteDescription struct {
	Description     string `json:"description"`
	DescriptionType string `json:"descriptionType"`
}

type dataCiteCreator struct {
	Name string `json:"name"`
}
