// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
)

// =============================================================================
// ERROR TAXONOMY
// =============================================================================

// ErrorKind identifies one failure mode of an API call. The set is closed:
// every error surfaced by this package carries exactly one of these kinds.
type ErrorKind string

const (
	// Credential errors, surfaced before any network call.
	KindMissingAPIKey ErrorKind = "missing_api_key"
	KindInvalidAPIKey ErrorKind = "invalid_api_key"

	// Transport errors: no HTTP response was received.
	KindTimeout          ErrorKind = "timeout"
	KindConnectionFailed ErrorKind = "connection_failed"
	KindInvalidURL       ErrorKind = "invalid_url"
	KindNetworkUnknown   ErrorKind = "network_unknown"

	// HTTP status errors.
	KindAuthenticationFailed ErrorKind = "authentication_failed"
	KindRateLimitExceeded    ErrorKind = "rate_limit_exceeded"
	KindInvalidRequest       ErrorKind = "invalid_request"
	KindServerError          ErrorKind = "server_error"

	// Response body errors on a 2xx status.
	KindRemoteAPIError  ErrorKind = "remote_api_error"
	KindDecodingError   ErrorKind = "decoding_error"
	KindEmptyResponse   ErrorKind = "empty_response"
	KindInvalidResponse ErrorKind = "invalid_response"

	// Streaming failures, including cancellation mid-stream.
	KindStreaming ErrorKind = "streaming_error"
)

// message returns the default human-readable message for a kind.
func (k ErrorKind) message() string {
	switch k {
	case KindMissingAPIKey:
		return "API key is missing. Please configure your API key."
	case KindInvalidAPIKey:
		return "Invalid API key format."
	case KindTimeout:
		return "Request timed out. Please try again."
	case KindConnectionFailed:
		return "Network connection error. Please check your internet connection."
	case KindInvalidURL:
		return "Invalid URL format."
	case KindNetworkUnknown:
		return "Unknown network error occurred."
	case KindAuthenticationFailed:
		return "Authentication failed. Please check your API key."
	case KindRateLimitExceeded:
		return "Rate limit exceeded. Please try again later."
	case KindInvalidRequest:
		return "Invalid request. Please check your input."
	case KindServerError:
		return "Server error. Please try again later."
	case KindRemoteAPIError:
		return "The API reported an error."
	case KindDecodingError:
		return "Failed to process server response."
	case KindEmptyResponse:
		return "Received empty response from server."
	case KindInvalidResponse:
		return "Invalid response from server."
	case KindStreaming:
		return "Streaming failed before the response completed."
	default:
		return string(k)
	}
}

// APIError is a classified API failure.
type APIError struct {
	Kind    ErrorKind
	Message string
	Status  int   // HTTP status, 0 when no response was received
	Err     error // underlying cause, if any
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.message()
	}
	if e.Status != 0 {
		return fmt.Sprintf("openai error [%s] (HTTP %d): %s", e.Kind, e.Status, msg)
	}
	return fmt.Sprintf("openai error [%s]: %s", e.Kind, msg)
}

// Unwrap returns the underlying error.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches two APIErrors on kind, so callers can compare against the
// package sentinels with errors.Is.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Kind == e.Kind
}

// newAPIError builds an APIError with the kind's default message.
func newAPIError(kind ErrorKind) *APIError {
	return &APIError{Kind: kind, Message: kind.message()}
}

// Sentinel errors for errors.Is comparisons. Matching is by kind only.
var (
	ErrMissingAPIKey   = newAPIError(KindMissingAPIKey)
	ErrInvalidAPIKey   = newAPIError(KindInvalidAPIKey)
	ErrEmptyResponse   = newAPIError(KindEmptyResponse)
	ErrInvalidResponse = newAPIError(KindInvalidResponse)
	ErrDecodingError   = newAPIError(KindDecodingError)
)

// KindOf returns the kind carried by err, or the empty string when err is not
// an APIError.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// =============================================================================
// VALIDATION ERRORS
// =============================================================================

// Validation sentinel errors, surfaced before any network call is attempted.
var (
	ErrConversationTooLong = errors.New("conversation exceeds maximum length")
	ErrMessageTooLong      = errors.New("message exceeds maximum length")
	ErrMessageEmpty        = errors.New("message is empty")
)

// ValidationError reports a request payload that violates the conversation
// limits. Index is the offending message position, or -1 for a
// conversation-level violation.
type ValidationError struct {
	Index int
	Err   error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invalid request: message %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("invalid request: %v", e.Err)
}

// Unwrap returns the underlying sentinel.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// =============================================================================
// REMOTE ERROR ENVELOPE
// =============================================================================

// errorEnvelope is the API's own error response body.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// remoteMessage extracts the message from an API error envelope, or returns
// the empty string when the body is not an error envelope.
func remoteMessage(body []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.Error.Message
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// ClassifyStatus maps a non-2xx HTTP response to an APIError. The status code
// decides the kind; the body is consulted only for the remote message.
func ClassifyStatus(status int, body []byte) *APIError {
	var kind ErrorKind
	switch {
	case status == 401 || status == 403:
		kind = KindAuthenticationFailed
	case status == 429:
		kind = KindRateLimitExceeded
	case status >= 400 && status < 500:
		kind = KindInvalidRequest
	case status >= 500 && status < 600:
		kind = KindServerError
	default:
		kind = KindNetworkUnknown
	}

	msg := kind.message()
	if remote := remoteMessage(body); remote != "" {
		msg = remote
	}
	return &APIError{Kind: kind, Message: msg, Status: status}
}

// ClassifyTransport maps a transport-level failure (no HTTP response
// received) to an APIError. Already-classified errors pass through unchanged.
func ClassifyTransport(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &APIError{Kind: KindTimeout, Message: KindTimeout.message(), Err: err}
	}

	// caller-initiated, not a network fault; never retryable
	if errors.Is(err, context.Canceled) {
		return &APIError{Kind: KindNetworkUnknown, Message: "Request was canceled.", Err: err}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Op == "parse" {
		return &APIError{Kind: KindInvalidURL, Message: KindInvalidURL.message(), Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &APIError{Kind: KindTimeout, Message: KindTimeout.message(), Err: err}
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return &APIError{Kind: KindConnectionFailed, Message: KindConnectionFailed.message(), Err: err}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &APIError{Kind: KindConnectionFailed, Message: KindConnectionFailed.message(), Err: err}
	}

	return &APIError{Kind: KindNetworkUnknown, Message: KindNetworkUnknown.message(), Err: err}
}
