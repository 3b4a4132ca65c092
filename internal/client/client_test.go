package client

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

// --- error taxonomy ---

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		kind   ErrorKind
	}{
		{http.StatusNotFound, KindNotFound},
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusBadRequest, KindRequestRejected},
		{http.StatusForbidden, KindRequestRejected},
		{http.StatusInternalServerError, KindUpstream},
		{http.StatusBadGateway, KindUpstream},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.status), func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.status, Header: http.Header{}}
			err := classifyStatus("test", resp)
			var ce *Error
			if !errors.As(err, &ce) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if ce.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", ce.Kind, tt.kind)
			}
		})
	}
}

func TestClassifyStatusOK(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusOK, Header: http.Header{}}
	if err := classifyStatus("test", resp); err != nil {
		t.Errorf("200 should classify as nil, got %v", err)
	}
}

func TestClassifyStatusRetryAfterHint(t *testing.T) {
	header := http.Header{}
	header.Set("Retry-After", "30")
	resp := &http.Response{StatusCode: http.StatusTooManyRequests, Header: header}

	err := classifyStatus("test", resp)
	var ce *Error
	if !errors.As(err, &ce) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if ce.RetryAfter != 30*time.Second {
		t.Errorf("RetryAfter = %v, want 30s", ce.RetryAfter)
	}
}

func TestKindPredicates(t *testing.T) {
	notFound := &Error{Kind: KindNotFound, Provider: "x"}
	rateLimited := &Error{Kind: KindRateLimited, Provider: "x"}

	if !IsNotFound(notFound) || IsNotFound(rateLimited) {
		t.Error("IsNotFound misclassifies")
	}
	if !IsRateLimited(rateLimited) || IsRateLimited(notFound) {
		t.Error("IsRateLimited misclassifies")
	}
	if !IsClientError(fmt.Errorf("wrapped: %w", notFound)) {
		t.Error("IsClientError should see through wrapping")
	}
	if IsClientError(errors.New("plain")) {
		t.Error("IsClientError should reject plain errors")
	}
}

func TestErrorString(t *testing.T) {
	err := &Error{Kind: KindUpstream, Provider: "openalex", Status: 503, Message: "upstream failure"}
	want := "openalex: upstream (HTTP 503): upstream failure"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
