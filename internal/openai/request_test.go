// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package openai

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestBuildChatRequestLimits(t *testing.T) {
	valid := []ChatMessage{NewUserMessage("hello")}

	tests := []struct {
		name      string
		messages  []ChatMessage
		wantErr   error
		wantIndex int
	}{
		{
			name:      "no messages",
			messages:  nil,
			wantErr:   ErrMessageEmpty,
			wantIndex: -1,
		},
		{
			name: "too many messages",
			messages: func() []ChatMessage {
				msgs := make([]ChatMessage, MaxConversationLength+1)
				for i := range msgs {
					msgs[i] = NewUserMessage("m")
				}
				return msgs
			}(),
			wantErr:   ErrConversationTooLong,
			wantIndex: -1,
		},
		{
			name:      "empty message content",
			messages:  []ChatMessage{NewUserMessage("hi"), NewAssistantMessage("")},
			wantErr:   ErrMessageEmpty,
			wantIndex: 1,
		},
		{
			name:      "message too long",
			messages:  []ChatMessage{NewUserMessage(strings.Repeat("x", MaxMessageLength+1))},
			wantErr:   ErrMessageTooLong,
			wantIndex: 0,
		},
		{
			name:     "valid",
			messages: valid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := BuildChatRequest(tt.messages, DefaultOptions())
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if req == nil {
					t.Fatal("expected a request")
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error %v is not a ValidationError", err)
			}
			if vErr.Index != tt.wantIndex {
				t.Errorf("index = %d, want %d", vErr.Index, tt.wantIndex)
			}
			if req != nil {
				t.Error("request should be nil on validation failure")
			}
		})
	}
}

func TestBuildChatRequestRuneCounting(t *testing.T) {
	// 4000 multibyte runes is inside the limit even though the byte count
	// is well past it.
	content := strings.Repeat("語", MaxMessageLength)
	if _, err := BuildChatRequest([]ChatMessage{NewUserMessage(content)}, DefaultOptions()); err != nil {
		t.Fatalf("4000-rune message rejected: %v", err)
	}

	over := content + "語"
	if _, err := BuildChatRequest([]ChatMessage{NewUserMessage(over)}, DefaultOptions()); !errors.Is(err, ErrMessageTooLong) {
		t.Fatalf("4001-rune message accepted, err = %v", err)
	}
}

func TestBuildChatRequestBoundary(t *testing.T) {
	msgs := make([]ChatMessage, MaxConversationLength)
	for i := range msgs {
		msgs[i] = NewUserMessage("m")
	}
	if _, err := BuildChatRequest(msgs, DefaultOptions()); err != nil {
		t.Fatalf("exactly %d messages rejected: %v", MaxConversationLength, err)
	}
}

func TestBuildChatRequestDefaults(t *testing.T) {
	req, err := BuildChatRequest([]ChatMessage{NewUserMessage("hi")}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if req.Model != DefaultModel {
		t.Errorf("model = %q, want %q", req.Model, DefaultModel)
	}
	if req.Temperature == nil || *req.Temperature != DefaultTemperature {
		t.Errorf("temperature = %v, want %v", req.Temperature, DefaultTemperature)
	}
	if req.MaxTokens == nil || *req.MaxTokens != DefaultMaxTokens {
		t.Errorf("max tokens = %v, want %v", req.MaxTokens, DefaultMaxTokens)
	}
}

func TestBuildChatRequestTemperatureClamp(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-0.5, 0.0},
		{0.0, 0.0},
		{1.3, 1.3},
		{2.0, 2.0},
		{3.7, 2.0},
	}
	for _, tt := range tests {
		opts := Options{Temperature: Float64(tt.in)}
		req, err := BuildChatRequest([]ChatMessage{NewUserMessage("hi")}, opts)
		if err != nil {
			t.Fatal(err)
		}
		if *req.Temperature != tt.want {
			t.Errorf("clamp(%v) = %v, want %v", tt.in, *req.Temperature, tt.want)
		}
	}
}

func TestChatRequestOmitsUnsetFields(t *testing.T) {
	req, err := BuildChatRequest([]ChatMessage{NewUserMessage("hi")}, Options{Model: "gpt-4"})
	if err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	payload := string(data)

	for _, field := range []string{"temperature", "max_tokens", "top_p", "frequency_penalty", "presence_penalty", "stream"} {
		if strings.Contains(payload, field) {
			t.Errorf("unset field %q serialized: %s", field, payload)
		}
	}
}
