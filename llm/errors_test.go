package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKindFromStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorKind
	}{
		{401, KindInvalidAPIKey},
		{403, KindInvalidAPIKey},
		{404, KindModelNotFound},
		{429, KindRateLimited},
		{500, KindServerError},
		{502, KindServerError},
		{503, KindServiceUnavailable},
		{400, KindNetwork},
		{418, KindNetwork},
	}
	for _, tt := range tests {
		if got := KindFromStatus(tt.status); got != tt.want {
			t.Errorf("KindFromStatus(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestFromHTTPStatusPreservesProviderMessage(t *testing.T) {
	err := FromHTTPStatus(400, "This model's maximum context length is 8192 tokens", nil)
	if err.Kind != KindContextLengthExceeded {
		t.Errorf("Expected context length kind, got %q", err.Kind)
	}
	if err.StatusCode != 400 {
		t.Errorf("Expected status 400, got %d", err.StatusCode)
	}
	if err.Message == "" {
		t.Error("Expected provider message to survive")
	}
}

func TestFromHTTPStatusQuota(t *testing.T) {
	err := FromHTTPStatus(403, "Your account has a billing problem", nil)
	if err.Kind != KindInsufficientQuota {
		t.Errorf("Expected quota kind, got %q", err.Kind)
	}
}

func TestFromHTTPStatus429StaysRateLimited(t *testing.T) {
	// Providers phrase throttling in quota terms; the wording must not
	// reclassify an explicit 429 away from the retryable kind.
	err := FromHTTPStatus(429, "quota exceeded", nil)
	if err.Kind != KindRateLimited {
		t.Errorf("Expected rate limited kind, got %q", err.Kind)
	}
	if !IsRateLimited(err) {
		t.Error("Expected IsRateLimited")
	}
	if !err.Retryable() {
		t.Error("Expected 429 to stay retryable")
	}
}

func TestKindOf(t *testing.T) {
	err := NewError(KindRateLimited, "slow down", nil)
	wrapped := fmt.Errorf("chat failed: %w", err)
	if KindOf(wrapped) != KindRateLimited {
		t.Errorf("KindOf through wrap = %q", KindOf(wrapped))
	}
	if !IsRateLimited(wrapped) {
		t.Error("Expected IsRateLimited through wrap")
	}
	if KindOf(context.Canceled) != KindCancelled {
		t.Errorf("KindOf(context.Canceled) = %q", KindOf(context.Canceled))
	}
	if KindOf(context.DeadlineExceeded) != KindTimeout {
		t.Errorf("KindOf(context.DeadlineExceeded) = %q", KindOf(context.DeadlineExceeded))
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Errorf("KindOf(plain) = %q", KindOf(errors.New("plain")))
	}
}

func TestRetryable(t *testing.T) {
	if !IsRetryable(NewError(KindRateLimited, "", nil)) {
		t.Error("rate limited should be retryable")
	}
	if !IsRetryable(NewError(KindServerError, "", nil)) {
		t.Error("server error should be retryable")
	}
	if IsRetryable(NewError(KindInvalidAPIKey, "", nil)) {
		t.Error("invalid key should not be retryable")
	}
	if IsRetryable(NewError(KindInvalidRequest, "", nil)) {
		t.Error("invalid request should not be retryable")
	}
}

func TestErrorUnwrap(t *testing.T) {
	originalErr := errors.New("original error")
	wrappedErr := NewError(KindNetwork, "wrapped", originalErr)
	if !errors.Is(wrappedErr, originalErr) {
		t.Error("Expected error to unwrap to original error")
	}
}
