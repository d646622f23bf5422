// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package openai

import (
	"github.com/PavelGnatyuk/demochat/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-3.5-turbo"

	// DefaultTemperature is the sampling temperature applied by default.
	DefaultTemperature = 0.7

	// DefaultMaxTokens caps completion length by default.
	DefaultMaxTokens = 1000

	// Conversation limits, enforced before a request leaves the process.
	MinMessageLength      = 1
	MaxMessageLength      = 4000 // runes, not bytes
	MaxConversationLength = 50

	// Temperature bounds accepted by the API.
	MinTemperature = 0.0
	MaxTemperature = 2.0
)

// Message roles on the wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// ChatMessage is one message in a chat completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage creates a user-role message.
func NewUserMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant-role message.
func NewAssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Content: content}
}

// NewSystemMessage creates a system-role message.
func NewSystemMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleSystem, Content: content}
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ChatRequest is the chat completions request body. Optional sampling fields
// are pointers so that unset values are omitted from the JSON entirely rather
// than sent as zeroes.
type ChatRequest struct {
	Model            string        `json:"model"`
	Messages         []ChatMessage `json:"messages"`
	Temperature      *float64      `json:"temperature,omitempty"`
	MaxTokens        *int          `json:"max_tokens,omitempty"`
	TopP             *float64      `json:"top_p,omitempty"`
	FrequencyPenalty *float64      `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64      `json:"presence_penalty,omitempty"`
	Stream           bool          `json:"stream,omitempty"`
}

// Options configures optional request parameters. Zero-valued fields fall
// back to package defaults; nil pointers are omitted from the wire payload.
type Options struct {
	Model            string
	Temperature      *float64
	MaxTokens        int
	TopP             *float64
	FrequencyPenalty *float64
	PresencePenalty  *float64
}

// DefaultOptions returns the stock request options.
func DefaultOptions() Options {
	return Options{
		Model:       DefaultModel,
		Temperature: Float64(DefaultTemperature),
		MaxTokens:   DefaultMaxTokens,
	}
}

// Float64 returns a pointer to v, for optional request fields.
func Float64(v float64) *float64 {
	return &v
}

// Int returns a pointer to v, for optional request fields.
func Int(v int) *int {
	return &v
}

// clampTemperature forces t into the API's accepted range.
func clampTemperature(t float64) float64 {
	if t < MinTemperature {
		return MinTemperature
	}
	if t > MaxTemperature {
		return MaxTemperature
	}
	return t
}

// BuildChatRequest validates messages against the conversation limits and
// assembles a request body. Validation failures return a *ValidationError
// and no request is constructed.
func BuildChatRequest(messages []ChatMessage, opts Options) (*ChatRequest, error) {
	if len(messages) == 0 {
		return nil, &ValidationError{Index: -1, Err: ErrMessageEmpty}
	}
	if len(messages) > MaxConversationLength {
		return nil, &ValidationError{Index: -1, Err: ErrConversationTooLong}
	}

	for i, msg := range messages {
		n := util.RuneLen(msg.Content)
		if n < MinMessageLength {
			return nil, &ValidationError{Index: i, Err: ErrMessageEmpty}
		}
		if n > MaxMessageLength {
			return nil, &ValidationError{Index: i, Err: ErrMessageTooLong}
		}
	}

	model := opts.Model
	if model == "" {
		model = DefaultModel
	}

	req := &ChatRequest{
		Model:            model,
		Messages:         messages,
		TopP:             opts.TopP,
		FrequencyPenalty: opts.FrequencyPenalty,
		PresencePenalty:  opts.PresencePenalty,
	}

	if opts.Temperature != nil {
		req.Temperature = Float64(clampTemperature(*opts.Temperature))
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = Int(opts.MaxTokens)
	}

	return req, nil
}
