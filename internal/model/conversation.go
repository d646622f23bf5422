// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"strings"
	"time"

	"github.com/PavelGnatyuk/demochat/internal/openai"
	"github.com/PavelGnatyuk/demochat/internal/util"
)

// previewLength caps conversation previews, in runes.
const previewLength = 80

var (
	// ErrEmptyInput rejects user input that is blank after trimming.
	ErrEmptyInput = errors.New("input is empty")

	// ErrTurnNotFound means no turn carries the requested ID.
	ErrTurnNotFound = errors.New("turn not found")
)

// Conversation is an ordered list of turns plus the draft being composed.
// It is a value type: every method returns a new Conversation and never
// mutates the receiver.
type Conversation struct {
	Turns []Turn
	Draft string
}

// NewConversation returns an empty conversation.
func NewConversation() Conversation {
	return Conversation{}
}

// clone copies the conversation with room for extra turns. The turn slice
// is always reallocated so the original's backing array is never shared.
func (c Conversation) clone(extra int) Conversation {
	turns := make([]Turn, len(c.Turns), len(c.Turns)+extra)
	copy(turns, c.Turns)
	return Conversation{Turns: turns, Draft: c.Draft}
}

// =============================================================================
// APPENDING TURNS
// =============================================================================

// AppendUserTurn appends a user turn with the trimmed text. Blank input is
// rejected with ErrEmptyInput and the conversation is returned unchanged.
func (c Conversation) AppendUserTurn(text string) (Conversation, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return c, ErrEmptyInput
	}
	next := c.clone(1)
	next.Turns = append(next.Turns, NewTurn(RoleUser, trimmed))
	return next, nil
}

// AppendAssistantTurn appends an assistant turn, which may be empty: a
// streaming reply starts as a placeholder and fills in over time. The new
// turn is returned so callers can track it by ID.
func (c Conversation) AppendAssistantTurn(text string) (Conversation, Turn) {
	turn := NewTurn(RoleAssistant, text)
	next := c.clone(1)
	next.Turns = append(next.Turns, turn)
	return next, turn
}

// AppendSystemTurn appends a system turn.
func (c Conversation) AppendSystemTurn(text string) (Conversation, Turn) {
	turn := NewTurn(RoleSystem, text)
	next := c.clone(1)
	next.Turns = append(next.Turns, turn)
	return next, turn
}

// ReplaceTurnText rewrites the text of the turn with the given ID, keeping
// its identity and position. The timestamp is refreshed so the turn reflects
// its latest content.
func (c Conversation) ReplaceTurnText(id, text string) (Conversation, error) {
	for i, t := range c.Turns {
		if t.ID == id {
			next := c.clone(0)
			next.Turns[i].Text = text
			next.Turns[i].CreatedAt = time.Now()
			return next, nil
		}
	}
	return c, ErrTurnNotFound
}

// =============================================================================
// DRAFT
// =============================================================================

// WithDraft sets the draft text.
func (c Conversation) WithDraft(draft string) Conversation {
	next := c.clone(0)
	next.Draft = draft
	return next
}

// ClearDraft empties the draft.
func (c Conversation) ClearDraft() Conversation {
	return c.WithDraft("")
}

// SendDraft appends the draft as a user turn and clears it. A blank draft
// is rejected with ErrEmptyInput.
func (c Conversation) SendDraft() (Conversation, error) {
	next, err := c.AppendUserTurn(c.Draft)
	if err != nil {
		return c, err
	}
	next.Draft = ""
	return next, nil
}

// =============================================================================
// QUERIES
// =============================================================================

// Len returns the number of turns.
func (c Conversation) Len() int { return len(c.Turns) }

// IsEmpty reports whether the conversation has no turns.
func (c Conversation) IsEmpty() bool { return len(c.Turns) == 0 }

// LastTurn returns the most recent turn.
func (c Conversation) LastTurn() (Turn, bool) {
	if len(c.Turns) == 0 {
		return Turn{}, false
	}
	return c.Turns[len(c.Turns)-1], true
}

// LastUserText returns the text of the most recent user turn.
func (c Conversation) LastUserText() (string, bool) {
	for i := len(c.Turns) - 1; i >= 0; i-- {
		if c.Turns[i].IsUser() {
			return c.Turns[i].Text, true
		}
	}
	return "", false
}

// TurnByID returns the turn with the given ID.
func (c Conversation) TurnByID(id string) (Turn, bool) {
	for _, t := range c.Turns {
		if t.ID == id {
			return t, true
		}
	}
	return Turn{}, false
}

// Preview returns a short single-line summary of the latest turn, for lists
// and logs.
func (c Conversation) Preview() string {
	last, ok := c.LastTurn()
	if !ok {
		return ""
	}
	line := strings.Join(strings.Fields(last.Text), " ")
	return util.TruncateRunes(line, previewLength)
}

// ToChatMessages projects the turns into wire messages, in order.
func (c Conversation) ToChatMessages() []openai.ChatMessage {
	msgs := make([]openai.ChatMessage, 0, len(c.Turns))
	for _, t := range c.Turns {
		msgs = append(msgs, openai.ChatMessage{Role: string(t.Role), Content: t.Text})
	}
	return msgs
}
