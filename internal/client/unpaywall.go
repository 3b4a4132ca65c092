// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package client

import (
	"context"
	"net/url"

	"github.com/meshintel/paperdex/internal/ident"
	"github.com/meshintel/paperdex/pkg/types"
)

// unpaywallBase is the Unpaywall lookup endpoint. Declared as a var so
// tests can substitute an httptest server.
var unpaywallBase = "https://api.unpaywall.org/v2"

// SourceUnpaywall is the source name Unpaywall results carry.
const SourceUnpaywall = "unpaywall"

// Unpaywall looks up open-access status and full-text locations by DOI.
// Unpaywall requires a contact email on every request.
type Unpaywall struct {
	caller
	email string
}

// NewUnpaywall builds an Unpaywall client from shared provider settings.
func NewUnpaywall(cfg types.ProviderConfig) *Unpaywall {
	return &Unpaywall{caller: newCaller(cfg), email: cfg.UnpaywallEmail}
}

// OALocation is Unpaywall's view of where a work's full text lives.
type OALocation struct {
	// IsOA reports whether any open-access copy exists.
	IsOA bool

	// PDFURL is the best location's direct PDF link, empty when none.
	PDFURL string

	// LandingURL is the best location's landing page.
	LandingURL string

	// License is the best location's license string when known.
	License string
}

// Lookup fetches the open-access record for a DOI. A DOI Unpaywall does
// not know surfaces as a KindNotFound error.
func (c *Unpaywall) Lookup(ctx context.Context, doi string) (*OALocation, error) {
	canonical := ident.NormalizeDOI(doi)
	if canonical == "" {
		return nil, &Error{Kind: KindRequestRejected, Provider: SourceUnpaywall, Message: "empty DOI"}
	}
	if c.email == "" {
		return nil, &Error{Kind: KindRequestRejected, Provider: SourceUnpaywall, Message: "unpaywall requires a contact email"}
	}

	reqURL := unpaywallBase + "/" + url.PathEscape(canonical) + "?email=" + url.QueryEscape(c.email)

	var ur unpaywallResponse
	if err := c.getJSON(ctx, SourceUnpaywall, reqURL, nil, &ur); err != nil {
		return nil, err
	}

	loc := &OALocation{IsOA: ur.IsOA}
	if ur.BestOALocation != nil {
		loc.PDFURL = ur.BestOALocation.URLForPDF
		loc.LandingURL = ur.BestOALocation.URLForLandingPage
		loc.License = ur.BestOALocation.License
	}
	return loc, nil
}

// Enrich fills missing open-access fields of a merged paper in place from
// Unpaywall. Lookup failures other than not-found propagate; not-found
// leaves the paper untouched.
func (c *Unpaywall) Enrich(ctx context.Context, paper *types.MergedPaper) error {
	if paper.DOI == "" || (paper.PDFURL != "" && paper.IsOA != nil) {
		return nil
	}

	loc, err := c.Lookup(ctx, paper.DOI)
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return err
	}

	if paper.IsOA == nil {
		isOA := loc.IsOA
		paper.IsOA = &isOA
	}
	if paper.PDFURL == "" {
		paper.PDFURL = loc.PDFURL
	}
	if paper.URL == "" {
		paper.URL = loc.LandingURL
	}
	return nil
}

// Unpaywall API JSON structures.
type unpaywallResponse struct {
	DOI            string              `json:"doi"`
	IsOA           bool                `json:"is_oa"`
	BestOALocation *unpaywallsLocation `json:"best_oa_location"`
}

type unpaywallsLocation struct {
	URLForPDF         string `json:"url_for_pdf"`
	URLForLandingPage string `json:"url_for_landing_page"`
	License           string `json:"license"`
}
