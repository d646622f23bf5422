// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package openai

import "testing"

func TestParseStreamEvent(t *testing.T) {
	tests := []struct {
		name string
		line string
		want StreamEvent
	}{
		{
			name: "delta",
			line: `data: {"type":"response.output_text.delta","delta":"Hello"}`,
			want: StreamEvent{Kind: EventDelta, Delta: "Hello"},
		},
		{
			name: "delta without space after prefix",
			line: `data:{"type":"response.output_text.delta","delta":" world"}`,
			want: StreamEvent{Kind: EventDelta, Delta: " world"},
		},
		{
			name: "done sentinel",
			line: "data: [DONE]",
			want: StreamEvent{Kind: EventDone},
		},
		{
			name: "blank line",
			line: "\n",
			want: StreamEvent{Kind: EventIgnored},
		},
		{
			name: "sse comment",
			line: ": keep-alive",
			want: StreamEvent{Kind: EventIgnored},
		},
		{
			name: "unknown event type",
			line: `data: {"type":"response.created","response":{"id":"resp_1"}}`,
			want: StreamEvent{Kind: EventIgnored},
		},
		{
			name: "empty delta",
			line: `data: {"type":"response.output_text.delta","delta":""}`,
			want: StreamEvent{Kind: EventIgnored},
		},
		{
			name: "malformed json",
			line: `data: {"type":`,
			want: StreamEvent{Kind: EventIgnored},
		},
		{
			name: "bare json without prefix",
			line: `{"type":"response.output_text.delta","delta":"x"}`,
			want: StreamEvent{Kind: EventDelta, Delta: "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseStreamEvent(tt.line)
			if got != tt.want {
				t.Errorf("ParseStreamEvent(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}
