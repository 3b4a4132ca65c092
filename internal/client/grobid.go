// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/meshintel/paperdex/pkg/types"
)

// grobidProvider is the provider name used in GROBID error values.
const grobidProvider = "grobid"

// Grobid talks to a GROBID service for PDF-to-TEI conversion. GROBID is an
// external collaborator; this client only moves bytes.
type Grobid struct {
	client  *http.Client
	baseURL string
	agent   string
}

// NewGrobid builds a GROBID client. The default base URL is a local
// service on port 8070; full-text parsing is slow, so the timeout floor is
// generous.
func NewGrobid(cfg types.GrobidConfig) *Grobid {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:8070"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	agent := cfg.UserAgent
	if agent == "" {
		agent = "paperdex/0.1"
	}

	return &Grobid{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		agent:   agent,
	}
}

// Alive checks the service health endpoint.
func (g *Grobid) Alive(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/api/isalive", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", g.agent)

	resp, err := g.client.Do(req)
	if err != nil {
		return &Error{Kind: KindUpstream, Provider: grobidProvider, Message: err.Error()}
	}
	defer resp.Body.Close()

	return classifyStatus(grobidProvider, resp)
}

// ProcessFulltext sends a PDF to processFulltextDocument and returns the
// TEI XML. GROBID returns 204 for documents it cannot parse; that surfaces
// as a KindRequestRejected error since retrying the same PDF cannot help.
func (g *Grobid) ProcessFulltext(ctx context.Context, pdf io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("input", "paper.pdf")
	if err != nil {
		return "", fmt.Errorf("building multipart form: %w", err)
	}
	if _, err := io.Copy(part, pdf); err != nil {
		return "", fmt.Errorf("reading PDF: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("closing multipart form: %w", err)
	}

	reqURL := g.baseURL + "/api/processFulltextDocument"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, &body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("User-Agent", g.agent)

	resp, err := g.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", &Error{Kind: KindUpstream, Provider: grobidProvider, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return "", &Error{
			Kind:     KindRequestRejected,
			Provider: grobidProvider,
			Status:   resp.StatusCode,
			Message:  "document could not be parsed",
		}
	}
	if err := classifyStatus(grobidProvider, resp); err != nil {
		return "", err
	}

	tei, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Kind: KindUpstream, Provider: grobidProvider, Message: fmt.Sprintf("reading TEI body: %v", err)}
	}
	return string(tei), nil
}
