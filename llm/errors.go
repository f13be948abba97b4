package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorKind categorizes a provider-neutral LLM error. The set is closed;
// callers switch on the kind to decide retry-worthiness while the
// message stays diagnostic-only.
type ErrorKind string

const (
	KindInvalidAPIKey         ErrorKind = "invalid_api_key"
	KindRateLimited           ErrorKind = "rate_limited"
	KindNetwork               ErrorKind = "network"
	KindTimeout               ErrorKind = "timeout"
	KindInvalidRequest        ErrorKind = "invalid_request"
	KindInvalidResponse       ErrorKind = "invalid_response"
	KindModelNotFound         ErrorKind = "model_not_found"
	KindContextLengthExceeded ErrorKind = "context_length_exceeded"
	KindContentFiltered       ErrorKind = "content_filtered"
	KindServerError           ErrorKind = "server_error"
	KindServiceUnavailable    ErrorKind = "service_unavailable"
	KindPermissionDenied      ErrorKind = "permission_denied"
	KindInsufficientQuota     ErrorKind = "insufficient_quota"
	KindCancelled             ErrorKind = "cancelled"
	KindNotSupported          ErrorKind = "not_supported"
	KindConfiguration         ErrorKind = "configuration"
	KindSerialization         ErrorKind = "serialization"
	KindStreaming             ErrorKind = "streaming"
	KindTool                  ErrorKind = "tool"
	KindCLINotFound           ErrorKind = "cli_not_found"
	KindCLIExecution          ErrorKind = "cli_execution"
	KindCLIParse              ErrorKind = "cli_parse"
	KindUnknown               ErrorKind = "unknown"
)

// Error represents a provider-neutral LLM error.
type Error struct {
	Kind        ErrorKind
	Message     string
	StatusCode  int   // HTTP status, when the error originated from a transport
	ProviderErr error // Original provider-specific error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ProviderErr != nil {
		return e.Message + ": " + e.ProviderErr.Error()
	}
	return e.Message
}

// Unwrap returns the underlying provider error.
func (e *Error) Unwrap() error {
	return e.ProviderErr
}

// Retryable reports whether a caller may reasonably retry the operation.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindRateLimited, KindTimeout, KindNetwork, KindServerError, KindServiceUnavailable:
		return true
	default:
		return false
	}
}

// NewError creates an Error with the given kind and message.
func NewError(kind ErrorKind, message string, providerErr error) *Error {
	return &Error{Kind: kind, Message: message, ProviderErr: providerErr}
}

// Errorf creates an Error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from an error chain. Context cancellation and
// deadline errors are recognized even when not wrapped in *Error.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Kind
	}
	if errors.Is(err, context.Canceled) {
		return KindCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnknown
}

// IsKind checks whether an error chain carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// IsRateLimited checks if an error is a rate limit error.
func IsRateLimited(err error) bool { return IsKind(err, KindRateLimited) }

// IsCancelled checks if an error reflects caller-driven cancellation.
func IsCancelled(err error) bool { return IsKind(err, KindCancelled) }

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Retryable()
	}
	return false
}

// KindFromStatus maps an HTTP status code to an error kind:
// 401/403 invalid key, 429 rate limited, 5xx server, everything else
// non-2xx is a network-level failure.
func KindFromStatus(status int) ErrorKind {
	switch {
	case status == 401 || status == 403:
		return KindInvalidAPIKey
	case status == 429:
		return KindRateLimited
	case status == 404:
		return KindModelNotFound
	case status == 503:
		return KindServiceUnavailable
	case status >= 500:
		return KindServerError
	default:
		return KindNetwork
	}
}

// refineKind sharpens a status-derived kind using the provider's own
// error message, preserving the message verbatim. An explicit 429 stays
// rate_limited: providers describe transient throttling in quota terms,
// and the retry decision must not flip on wording.
func refineKind(kind ErrorKind, message string) ErrorKind {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "context length") || strings.Contains(lower, "context_length") ||
		strings.Contains(lower, "maximum context") || strings.Contains(lower, "too many tokens"):
		return KindContextLengthExceeded
	case kind != KindRateLimited && (strings.Contains(lower, "quota") || strings.Contains(lower, "billing")):
		return KindInsufficientQuota
	case strings.Contains(lower, "content filter") || strings.Contains(lower, "content_filter") ||
		strings.Contains(lower, "filtered"):
		return KindContentFiltered
	case strings.Contains(lower, "permission"):
		return KindPermissionDenied
	default:
		return kind
	}
}

// FromHTTPStatus builds an Error from a non-2xx transport response.
// A provider-supplied message overrides the status-derived kind when it
// names a more specific condition.
func FromHTTPStatus(status int, message string, providerErr error) *Error {
	kind := KindFromStatus(status)
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	} else {
		kind = refineKind(kind, message)
	}
	return &Error{
		Kind:        kind,
		Message:     message,
		StatusCode:  status,
		ProviderErr: providerErr,
	}
}

// FromContext converts a context error into the matching kind.
// Returns nil when the context is still live.
func FromContext(ctx context.Context) *Error {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return &Error{Kind: KindCancelled, Message: "operation cancelled", ProviderErr: ctx.Err()}
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Message: "operation timed out", ProviderErr: ctx.Err()}
	default:
		return nil
	}
}
