// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat orchestrates conversations against the completion API: it
// validates credentials and limits before any network call, sends batch
// requests, and folds streaming deltas into conversation snapshots.
//
// Key Types:
//   - Session: the entry point; owns the client, credentials, and options
//   - Accumulator: folds stream events into a growing assistant turn
//
// Usage:
//
//	session := chat.NewSession(client, keychain.Default())
//	conv, _ := model.NewConversation().AppendUserTurn("hello")
//	snapshots, errc := session.SendStreaming(ctx, conv)
//	for snap := range snapshots {
//	    render(snap)
//	}
//	if err := <-errc; err != nil {
//	    // partial text already rendered stays on screen
//	}
package chat
