// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultBaseURL is the stock API endpoint.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultTimeout bounds a single batch request.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the total attempt budget for retryable failures.
	DefaultMaxRetries = 3

	// Backoff schedule: exponential from the base, capped.
	retryBaseDelay = 500 * time.Millisecond
	retryMaxDelay  = 10 * time.Second

	// MaxResponseSize caps how much of a response body is read (10MB).
	MaxResponseSize = 10 * 1024 * 1024

	chatEndpoint      = "/chat/completions"
	responsesEndpoint = "/responses"
)

// =============================================================================
// CREDENTIALS
// =============================================================================

// CredentialSource supplies the API key at request time, so rotated keys
// take effect without rebuilding the client.
type CredentialSource interface {
	APIKey() string
}

// staticKey is a fixed-key credential source.
type staticKey string

func (k staticKey) APIKey() string { return string(k) }

// =============================================================================
// CLIENT
// =============================================================================

// Client calls the chat completions and responses endpoints.
type Client struct {
	creds        CredentialSource
	baseURL      string
	httpClient   *http.Client
	streamClient *http.Client
	limiter      *rate.Limiter
	maxRetries   int
	timeout      time.Duration
	logRequests  bool
}

// NewClient creates a client drawing its key from creds.
func NewClient(creds CredentialSource) *Client {
	return &Client{
		creds:      creds,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		// Streaming responses can run far longer than any sane request
		// timeout; cancellation is the caller's context.
		streamClient: &http.Client{},
		maxRetries:   DefaultMaxRetries,
		timeout:      DefaultTimeout,
	}
}

// NewClientWithKey creates a client with a fixed API key.
func NewClientWithKey(key string) *Client {
	return NewClient(staticKey(key))
}

// WithBaseURL overrides the API endpoint (for proxies and test servers).
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// WithTimeout overrides the per-request timeout for batch calls.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.timeout = timeout
	c.httpClient.Timeout = timeout
	return c
}

// WithMaxRetries overrides the total attempt budget.
func (c *Client) WithMaxRetries(n int) *Client {
	if n < 1 {
		n = 1
	}
	c.maxRetries = n
	return c
}

// WithRateLimit throttles outgoing requests to rps requests per second.
func (c *Client) WithRateLimit(rps float64, burst int) *Client {
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	return c
}

// WithHTTPClient replaces both underlying HTTP clients (for tests).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	c.streamClient = hc
	return c
}

// WithRequestLogging enables request/response logging.
func (c *Client) WithRequestLogging(enabled bool) *Client {
	c.logRequests = enabled
	return c
}

// setHeaders applies the auth and content headers.
func (c *Client) setHeaders(req *http.Request, key string) {
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Content-Type", "application/json")
}

// wait blocks on the rate limiter, if one is configured.
func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return ClassifyTransport(err)
	}
	return nil
}

// key fetches the current API key, failing fast when none is configured.
func (c *Client) key() (string, error) {
	if c.creds == nil {
		return "", newAPIError(KindMissingAPIKey)
	}
	k := strings.TrimSpace(c.creds.APIKey())
	if k == "" {
		return "", newAPIError(KindMissingAPIKey)
	}
	return k, nil
}

// =============================================================================
// BATCH COMPLETIONS
// =============================================================================

// Chat sends a chat completion request, retrying transient transport
// failures. Only timeouts and connection failures are retried: HTTP status
// errors, including 5xx, are returned to the caller on the first attempt.
func (c *Client) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(attempt)
			if c.logRequests {
				log.Printf("openai: retrying chat request (attempt %d/%d) after %v", attempt+1, c.maxRetries, delay)
			}
			select {
			case <-ctx.Done():
				return nil, ClassifyTransport(ctx.Err())
			case <-time.After(delay):
			}
		}

		resp, err := c.doChat(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !isRetryable(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

// backoffDelay returns the capped exponential delay before the given attempt.
func backoffDelay(attempt int) time.Duration {
	delay := retryBaseDelay << (attempt - 1)
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}

// isRetryable reports whether an error is a transient transport failure.
func isRetryable(err error) bool {
	switch KindOf(err) {
	case KindTimeout, KindConnectionFailed:
		return true
	}
	return false
}

// doChat performs one chat completion attempt.
func (c *Client) doChat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	key, err := c.key()
	if err != nil {
		return nil, err
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &APIError{Kind: KindDecodingError, Message: "failed to encode request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &APIError{Kind: KindInvalidURL, Message: KindInvalidURL.message(), Err: err}
	}
	c.setHeaders(httpReq, key)

	if c.logRequests {
		log.Printf("openai: POST %s (%d messages, model=%s)", chatEndpoint, len(req.Messages), req.Model)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, ClassifyTransport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, ClassifyTransport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ClassifyStatus(resp.StatusCode, body)
	}

	return decodeChatResponse(body)
}

// =============================================================================
// RESPONSES
// =============================================================================

// CreateResponse sends a non-streaming responses request. No retries: the
// responses endpoint backs interactive use where the caller retries.
func (c *Client) CreateResponse(ctx context.Context, req *ResponsesRequest) (*ResponsesResponse, error) {
	key, err := c.key()
	if err != nil {
		return nil, err
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &APIError{Kind: KindDecodingError, Message: "failed to encode request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+responsesEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &APIError{Kind: KindInvalidURL, Message: KindInvalidURL.message(), Err: err}
	}
	c.setHeaders(httpReq, key)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, ClassifyTransport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, ClassifyTransport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ClassifyStatus(resp.StatusCode, body)
	}

	var out ResponsesResponse
	if err := json.Unmarshal(body, &out); err != nil {
		if msg := remoteMessage(body); msg != "" {
			return nil, &APIError{Kind: KindRemoteAPIError, Message: msg}
		}
		return nil, newAPIError(KindDecodingError)
	}
	return &out, nil
}

// StreamResponses sends a streaming responses request and delivers parsed
// events to cb in arrival order. The call returns nil after the done
// sentinel, or a streaming error if the stream ends or fails before it.
// Cancelling ctx stops reading at the next line boundary; deltas already
// delivered stand.
func (c *Client) StreamResponses(ctx context.Context, req *ResponsesRequest, cb StreamCallback) error {
	key, err := c.key()
	if err != nil {
		return err
	}
	if err := c.wait(ctx); err != nil {
		return err
	}

	// work on a copy; the caller's request is not ours to flip
	body := *req
	body.Stream = true
	payload, err := json.Marshal(&body)
	if err != nil {
		return &APIError{Kind: KindDecodingError, Message: "failed to encode request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+responsesEndpoint, bytes.NewReader(payload))
	if err != nil {
		return &APIError{Kind: KindInvalidURL, Message: KindInvalidURL.message(), Err: err}
	}
	c.setHeaders(httpReq, key)
	httpReq.Header.Set("Accept", "text/event-stream")

	if c.logRequests {
		log.Printf("openai: POST %s (stream, model=%s)", responsesEndpoint, req.Model)
	}

	resp, err := c.streamClient.Do(httpReq)
	if err != nil {
		return ClassifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
		return ClassifyStatus(resp.StatusCode, body)
	}

	reader := bufio.NewReader(resp.Body)
	for {
		select {
		case <-ctx.Done():
			return &APIError{Kind: KindStreaming, Message: "stream canceled", Err: ctx.Err()}
		default:
		}

		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			ev := ParseStreamEvent(line)
			switch ev.Kind {
			case EventDelta:
				cb(ev)
			case EventDone:
				cb(ev)
				return nil
			}
		}
		if err == io.EOF {
			return &APIError{Kind: KindStreaming, Message: "stream ended before completion"}
		}
		if err != nil {
			// a canceled context surfaces as a body read error; report
			// the cancellation, not the transport symptom
			if ctxErr := ctx.Err(); ctxErr != nil {
				return &APIError{Kind: KindStreaming, Message: "stream canceled", Err: ctxErr}
			}
			return &APIError{
				Kind:    KindStreaming,
				Message: fmt.Sprintf("stream read failed: %v", err),
				Err:     err,
			}
		}
	}
}
