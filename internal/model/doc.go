// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model holds the conversation state: turns, roles, and the draft
// being composed.
//
// A Conversation is a value. Every operation returns a new Conversation and
// leaves the receiver untouched, so a snapshot handed to another goroutine
// (or held for undo) stays valid forever. There are no locks here; callers
// that share a conversation swap whole values.
//
// Key Types:
//   - Turn: one utterance with a stable ID, role, text, and timestamp
//   - Conversation: ordered turns plus the in-progress draft
//   - Role: system, user, or assistant
package model
