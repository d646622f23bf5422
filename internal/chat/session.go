// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"time"

	"github.com/PavelGnatyuk/demochat/internal/keychain"
	"github.com/PavelGnatyuk/demochat/internal/model"
	"github.com/PavelGnatyuk/demochat/internal/openai"
)

// Session sends conversations to the completion API. It validates the
// credential and the conversation limits before any request leaves the
// process, so malformed input never costs a network round trip.
type Session struct {
	client *openai.Client
	creds  keychain.Source
	opts   openai.Options
}

// NewSession creates a session over client, drawing credentials from creds.
func NewSession(client *openai.Client, creds keychain.Source) *Session {
	return &Session{
		client: client,
		creds:  creds,
		opts:   openai.DefaultOptions(),
	}
}

// WithOptions overrides the request options.
func (s *Session) WithOptions(opts openai.Options) *Session {
	s.opts = opts
	return s
}

// WithTimeout overrides the per-attempt batch request timeout. The bound is
// per attempt, not per call: wrapping the whole call in one deadline would
// leave the retry loop nothing to work with after the first timeout.
func (s *Session) WithTimeout(timeout time.Duration) *Session {
	s.client.WithTimeout(timeout)
	return s
}

// checkCredential fails fast on a missing or malformed key.
func (s *Session) checkCredential() error {
	if s.creds == nil || strings.TrimSpace(s.creds.APIKey()) == "" {
		return openai.ErrMissingAPIKey
	}
	if !keychain.Validate(s.creds.APIKey()) {
		return openai.ErrInvalidAPIKey
	}
	return nil
}

// prepare runs the pre-network checks and builds the wire request for conv.
func (s *Session) prepare(conv model.Conversation) (*openai.ChatRequest, error) {
	if err := s.checkCredential(); err != nil {
		return nil, err
	}
	return openai.BuildChatRequest(conv.ToChatMessages(), s.opts)
}

// =============================================================================
// BATCH
// =============================================================================

// SendBatch sends the whole conversation and returns it extended with the
// assistant's reply. Each attempt is bounded by the client's per-request
// timeout; timed-out attempts stay eligible for the client's retry budget.
// On any error the input conversation is returned unchanged.
func (s *Session) SendBatch(ctx context.Context, conv model.Conversation) (model.Conversation, error) {
	req, err := s.prepare(conv)
	if err != nil {
		return conv, err
	}

	resp, err := s.client.Chat(ctx, req)
	if err != nil {
		return conv, err
	}

	reply, err := resp.ExtractReply()
	if err != nil {
		return conv, err
	}

	next, _ := conv.AppendAssistantTurn(reply)
	return next, nil
}

// =============================================================================
// STREAMING
// =============================================================================

// SendStreaming streams the assistant's reply, emitting a conversation
// snapshot per received chunk. The snapshot channel closes when the stream
// ends; the error channel then yields nil on success or the classified
// failure. Text streamed before a failure or cancellation survives in the
// last emitted snapshot.
//
// The consumer must drain the snapshot channel until it closes, or cancel
// ctx; snapshot delivery blocks otherwise and the streaming goroutine never
// exits.
func (s *Session) SendStreaming(ctx context.Context, conv model.Conversation) (<-chan model.Conversation, <-chan error) {
	snapshots := make(chan model.Conversation)
	errc := make(chan error, 1)

	go func() {
		defer close(snapshots)
		defer close(errc)

		// same pre-network gate as batch: credential shape and limits
		if _, err := s.prepare(conv); err != nil {
			errc <- err
			return
		}

		input, ok := conv.LastUserText()
		if !ok {
			errc <- &openai.ValidationError{Index: -1, Err: model.ErrEmptyInput}
			return
		}

		current, acc := Begin(conv)

		req := &openai.ResponsesRequest{
			Model:  s.opts.Model,
			Input:  input,
			Stream: true,
		}
		if req.Model == "" {
			req.Model = openai.DefaultModel
		}

		err := s.client.StreamResponses(ctx, req, func(ev openai.StreamEvent) {
			next, changed := acc.Apply(current, ev)
			if !changed {
				return
			}
			current = next
			select {
			case snapshots <- current:
			case <-ctx.Done():
			}
		})
		if err != nil {
			acc.Fail()
			if openai.KindOf(err) != "" {
				errc <- err
				return
			}
			errc <- &openai.APIError{Kind: openai.KindStreaming, Message: err.Error(), Err: err}
			return
		}
	}()

	return snapshots, errc
}
