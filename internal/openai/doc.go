// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package openai provides the HTTP client for the OpenAI chat APIs.
//
// The package implements the wire contracts for the batch chat completions
// endpoint and the streaming responses endpoint, request validation against
// the conversation limits, and the classification of every failure mode a
// network call can produce.
//
// # Key Types
//
//   - Client: HTTP client with bounded retry and optional rate limiting
//   - ChatRequest / ChatResponse: chat completions wire contract
//   - ResponsesRequest / ResponsesResponse: responses endpoint wire contract
//   - StreamEvent: tagged union decoded from one streaming event line
//   - APIError: classified error with a closed ErrorKind taxonomy
//
// # Usage
//
// Create a client and send a chat request:
//
//	client := openai.NewClientWithKey(apiKey)
//	req, err := openai.BuildChatRequest(messages, openai.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	resp, err := client.Chat(ctx, req)
package openai
