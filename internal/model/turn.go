// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DisplayName returns the role's user-facing label.
func (r Role) DisplayName() string {
	switch r {
	case RoleSystem:
		return "System"
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Turn is one utterance in a conversation. The ID is assigned at creation
// and never changes, even when the text is rewritten during streaming.
type Turn struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTurn creates a turn with a fresh ID.
func NewTurn(role Role, text string) Turn {
	return Turn{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// IsUser reports whether the turn came from the user.
func (t Turn) IsUser() bool { return t.Role == RoleUser }

// IsAssistant reports whether the turn came from the assistant.
func (t Turn) IsAssistant() bool { return t.Role == RoleAssistant }
