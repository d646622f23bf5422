// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/PavelGnatyuk/demochat/internal/model"
	"github.com/PavelGnatyuk/demochat/internal/openai"
)

// Phase is the accumulator's lifecycle state.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseStreaming Phase = "streaming"
	PhaseCompleted Phase = "completed"
	PhaseFailed    Phase = "failed"
)

// Accumulator folds stream events into one assistant turn. It tracks the
// turn by ID and rewrites its text with each delta, producing a conversation
// snapshot per chunk. Completed and failed are absorbing: once terminal, no
// event changes anything.
//
// The zero value is idle: it is bound to no turn and ignores events. Begin
// moves it to streaming.
//
// An Accumulator is not safe for concurrent use; it belongs to the goroutine
// draining the stream.
type Accumulator struct {
	turnID string
	text   strings.Builder
	phase  Phase
}

// Begin appends an empty assistant placeholder to conv and returns the new
// conversation together with an accumulator bound to that turn.
func Begin(conv model.Conversation) (model.Conversation, *Accumulator) {
	next, turn := conv.AppendAssistantTurn("")
	return next, &Accumulator{turnID: turn.ID, phase: PhaseStreaming}
}

// Phase returns the current lifecycle state.
func (a *Accumulator) Phase() Phase {
	if a.phase == "" {
		return PhaseIdle
	}
	return a.phase
}

// TurnID returns the ID of the turn being filled.
func (a *Accumulator) TurnID() string { return a.turnID }

// Text returns everything accumulated so far.
func (a *Accumulator) Text() string { return a.text.String() }

// Apply folds one stream event into conv. It returns the updated
// conversation and whether the snapshot changed: one delta, one changed
// snapshot. Events after a terminal phase and events carrying no text leave
// the conversation untouched.
func (a *Accumulator) Apply(conv model.Conversation, ev openai.StreamEvent) (model.Conversation, bool) {
	if a.phase != PhaseStreaming {
		return conv, false
	}

	switch ev.Kind {
	case openai.EventDelta:
		a.text.WriteString(ev.Delta)
		next, err := conv.ReplaceTurnText(a.turnID, a.text.String())
		if err != nil {
			// turn vanished from the snapshot we were handed; treat as
			// a failed stream rather than panicking
			a.phase = PhaseFailed
			return conv, false
		}
		return next, true

	case openai.EventDone:
		a.phase = PhaseCompleted
		return conv, false

	default:
		return conv, false
	}
}

// Fail marks the stream failed. Text accumulated before the failure is kept:
// a partial answer is better than none.
func (a *Accumulator) Fail() {
	if !a.Done() {
		a.phase = PhaseFailed
	}
}

// Done reports whether the accumulator reached a terminal phase.
func (a *Accumulator) Done() bool {
	return a.phase == PhaseCompleted || a.phase == PhaseFailed
}
