// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package client implements HTTP clients for the metadata providers
// (OpenAlex, Crossref, DataCite, Semantic Scholar, Unpaywall) and the
// GROBID full-text service. Each client converts one provider's responses
// into the shared Paper shape and classifies failures into a closed error
// taxonomy so callers can pattern-match on kind instead of catching
// concrete types.
// Implements: prd016-providers (R1-R6);
//
//	docs/ARCHITECTURE § Providers.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/meshintel/paperdex/internal/httputil"
	"github.com/meshintel/paperdex/pkg/types"
)

// ErrorKind classifies a provider failure.
type ErrorKind int

const (
	// KindNotFound means the resource is absent upstream. Callers treat
	// this as an empty result, not a failure.
	KindNotFound ErrorKind = iota

	// KindRateLimited means the provider throttled the request after the
	// retry budget was spent. Carries a RetryAfter hint when the provider
	// sent one.
	KindRateLimited

	// KindRequestRejected means a 4xx other than not-found or rate-limit.
	KindRequestRejected

	// KindUpstream means a 5xx or a transport failure.
	KindUpstream
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindRequestRejected:
		return "request_rejected"
	default:
		return "upstream"
	}
}

// Error is a typed provider failure.
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Provider names the client that produced the error.
	Provider string

	// Status is the HTTP status code, zero for transport failures.
	Status int

	// RetryAfter is the provider's throttle hint, zero when absent.
	RetryAfter time.Duration

	// Message describes the failure.
	Message string
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (HTTP %d): %s", e.Provider, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
}

// IsNotFound reports whether err is a provider not-found error.
func IsNotFound(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == KindNotFound
}

// IsRateLimited reports whether err is a provider rate-limit error.
func IsRateLimited(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == KindRateLimited
}

// IsClientError reports whether err carries the provider error taxonomy.
// The search fan-out uses this to decide which failures to swallow.
func IsClientError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

// caller bundles the HTTP plumbing shared by every provider client:
// timeout-bound http.Client, polite per-provider rate limiting, User-Agent
// etiquette, 429 retries, and status classification.
type caller struct {
	client  *http.Client
	limiter *rate.Limiter
	agent   string
}

func newCaller(cfg types.ProviderConfig) caller {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	agent := cfg.UserAgent
	if agent == "" {
		agent = "paperdex/0.1"
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return caller{
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
		agent:   agent,
	}
}

// getJSON performs a rate-limited GET, classifies non-200 statuses into
// the error taxonomy, and decodes the body into out.
func (c caller) getJSON(ctx context.Context, provider, reqURL string, header http.Header, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.agent)
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := httputil.DoWithRetry(ctx, c.client, req, 0)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return &Error{Kind: KindUpstream, Provider: provider, Message: err.Error()}
	}
	defer resp.Body.Close()

	if err := classifyStatus(provider, resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{
			Kind:     KindUpstream,
			Provider: provider,
			Status:   resp.StatusCode,
			Message:  fmt.Sprintf("parsing response: %v", err),
		}
	}
	return nil
}

// classifyStatus maps an HTTP status to the error taxonomy. 200 yields nil.
func classifyStatus(provider string, resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return &Error{
			Kind:     KindNotFound,
			Provider: provider,
			Status:   resp.StatusCode,
			Message:  "resource not found",
		}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &Error{
			Kind:       KindRateLimited,
			Provider:   provider,
			Status:     resp.StatusCode,
			RetryAfter: httputil.RetryAfter(resp),
			Message:    "rate limited after retries",
		}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &Error{
			Kind:     KindRequestRejected,
			Provider: provider,
			Status:   resp.StatusCode,
			Message:  "request rejected",
		}
	default:
		return &Error{
			Kind:     KindUpstream,
			Provider: provider,
			Status:   resp.StatusCode,
			Message:  "upstream failure",
		}
	}
}
