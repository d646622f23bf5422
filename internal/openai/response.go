// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package openai

import (
	"encoding/json"
	"strings"
)

// =============================================================================
// CHAT COMPLETION RESPONSE
// =============================================================================

// Finish reasons reported by the API.
const (
	FinishStop   = "stop"
	FinishLength = "length"
)

// ChatResponse is the chat completions response body.
type ChatResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice is one completion alternative.
type Choice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// Usage reports token accounting for a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ExtractReply returns the assistant text of the first choice. A response
// with no choices is invalid; a choice whose content is blank is empty.
func (r *ChatResponse) ExtractReply() (string, error) {
	if len(r.Choices) == 0 {
		return "", newAPIError(KindInvalidResponse)
	}
	content := r.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", newAPIError(KindEmptyResponse)
	}
	return content, nil
}

// IsComplete reports whether the first choice finished naturally.
func (r *ChatResponse) IsComplete() bool {
	return len(r.Choices) > 0 && r.Choices[0].FinishReason == FinishStop
}

// IsTruncated reports whether the completion was cut off by the token limit.
func (r *ChatResponse) IsTruncated() bool {
	return len(r.Choices) > 0 && r.Choices[0].FinishReason == FinishLength
}

// decodeChatResponse parses a 2xx response body. A body that fails to decode
// as a completion is retried as an error envelope: some backends report
// failures with a 200 status.
func decodeChatResponse(body []byte) (*ChatResponse, error) {
	var resp ChatResponse
	if err := json.Unmarshal(body, &resp); err == nil && len(resp.Choices) > 0 {
		return &resp, nil
	}

	if msg := remoteMessage(body); msg != "" {
		return nil, &APIError{Kind: KindRemoteAPIError, Message: msg}
	}
	return nil, newAPIError(KindDecodingError)
}

// =============================================================================
// RESPONSES API
// =============================================================================

// ResponsesRequest is the responses endpoint request body, used for
// streaming completions.
type ResponsesRequest struct {
	Model  string `json:"model"`
	Input  string `json:"input"`
	Stream bool   `json:"stream,omitempty"`
}

// ResponsesResponse is the non-streaming responses endpoint body.
type ResponsesResponse struct {
	ID     string           `json:"id"`
	Model  string           `json:"model"`
	Output []ResponseOutput `json:"output"`
}

// ResponseOutput is one output item of a responses result.
type ResponseOutput struct {
	Type    string            `json:"type"`
	Content []ResponseContent `json:"content"`
}

// ResponseContent is one content block of an output item.
type ResponseContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// FirstText returns the first non-empty text block, or an empty-response
// error when the result carries no text.
func (r *ResponsesResponse) FirstText() (string, error) {
	for _, out := range r.Output {
		for _, c := range out.Content {
			if strings.TrimSpace(c.Text) != "" {
				return c.Text, nil
			}
		}
	}
	return "", newAPIError(KindEmptyResponse)
}
