// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package openai

import (
	"encoding/json"
	"strings"
)

// =============================================================================
// STREAM EVENTS
// =============================================================================

// EventKind classifies one parsed stream line.
type EventKind int

const (
	// EventIgnored is a line that carries no text: blank lines, SSE
	// comments, and event shapes this client does not understand.
	EventIgnored EventKind = iota

	// EventDelta carries an incremental text fragment.
	EventDelta

	// EventDone is the terminal sentinel.
	EventDone
)

// StreamEvent is one parsed line of a streaming response.
type StreamEvent struct {
	Kind  EventKind
	Delta string
}

// StreamCallback receives each delta and the final done event, in arrival
// order. Ignored lines are not delivered.
type StreamCallback func(StreamEvent)

// deltaEvent is the wire shape of an incremental output event.
type deltaEvent struct {
	Type  string `json:"type"`
	Delta string `json:"delta"`
}

const (
	doneSentinel   = "[DONE]"
	deltaEventType = "response.output_text.delta"
)

// ParseStreamEvent parses one raw line of a streaming response. Unknown
// shapes are ignored, never an error: the protocol may add event types and
// an old client must keep reading past them.
func ParseStreamEvent(line string) StreamEvent {
	line = strings.TrimSpace(line)
	if line == "" {
		return StreamEvent{Kind: EventIgnored}
	}

	// SSE framing: payload lines carry a "data:" prefix, comment lines a
	// leading colon. Anything else is passed through as-is.
	if strings.HasPrefix(line, ":") {
		return StreamEvent{Kind: EventIgnored}
	}
	if rest, ok := strings.CutPrefix(line, "data:"); ok {
		line = strings.TrimSpace(rest)
	}

	if line == doneSentinel {
		return StreamEvent{Kind: EventDone}
	}

	var ev deltaEvent
	if err := json.Unmarshal([]byte(line), &ev); err != nil {
		return StreamEvent{Kind: EventIgnored}
	}
	if ev.Type != deltaEventType || ev.Delta == "" {
		return StreamEvent{Kind: EventIgnored}
	}
	return StreamEvent{Kind: EventDelta, Delta: ev.Delta}
}
