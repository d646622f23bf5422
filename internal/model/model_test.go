// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"strings"
	"testing"
)

func TestAppendUserTurn(t *testing.T) {
	conv := NewConversation()

	next, err := conv.AppendUserTurn("  hello world  ")
	if err != nil {
		t.Fatal(err)
	}
	if next.Len() != 1 {
		t.Fatalf("len = %d, want 1", next.Len())
	}
	last, _ := next.LastTurn()
	if last.Text != "hello world" {
		t.Errorf("text = %q, want trimmed input", last.Text)
	}
	if last.Role != RoleUser {
		t.Errorf("role = %s", last.Role)
	}
	if last.ID == "" {
		t.Error("turn has no ID")
	}

	// original untouched
	if conv.Len() != 0 {
		t.Errorf("original conversation mutated: len = %d", conv.Len())
	}
}

func TestAppendUserTurnEmpty(t *testing.T) {
	conv := NewConversation()
	for _, input := range []string{"", "   ", "\n\t "} {
		next, err := conv.AppendUserTurn(input)
		if !errors.Is(err, ErrEmptyInput) {
			t.Errorf("AppendUserTurn(%q) err = %v, want ErrEmptyInput", input, err)
		}
		if next.Len() != 0 {
			t.Errorf("AppendUserTurn(%q) changed the conversation", input)
		}
	}
}

func TestAppendAssistantTurnAllowsEmpty(t *testing.T) {
	conv, turn := NewConversation().AppendAssistantTurn("")
	if conv.Len() != 1 {
		t.Fatalf("len = %d, want 1", conv.Len())
	}
	if turn.Text != "" {
		t.Errorf("placeholder text = %q", turn.Text)
	}
	if !turn.IsAssistant() {
		t.Errorf("role = %s", turn.Role)
	}
}

func TestReplaceTurnText(t *testing.T) {
	conv, _ := NewConversation().AppendUserTurn("question")
	conv, turn := conv.AppendAssistantTurn("")

	next, err := conv.ReplaceTurnText(turn.ID, "partial answer")
	if err != nil {
		t.Fatal(err)
	}

	got, ok := next.TurnByID(turn.ID)
	if !ok {
		t.Fatal("turn lost after replace")
	}
	if got.Text != "partial answer" {
		t.Errorf("text = %q", got.Text)
	}
	if got.ID != turn.ID {
		t.Error("turn identity changed")
	}
	if next.Turns[1].ID != turn.ID {
		t.Error("turn moved")
	}

	// prior snapshot still shows the old text
	old, _ := conv.TurnByID(turn.ID)
	if old.Text != "" {
		t.Errorf("snapshot mutated: text = %q", old.Text)
	}
}

func TestReplaceTurnTextUnknownID(t *testing.T) {
	conv, _ := NewConversation().AppendUserTurn("hi")
	next, err := conv.ReplaceTurnText("no-such-id", "x")
	if !errors.Is(err, ErrTurnNotFound) {
		t.Fatalf("err = %v, want ErrTurnNotFound", err)
	}
	if next.Turns[0].Text != "hi" {
		t.Error("conversation changed on failed replace")
	}
}

func TestSendDraft(t *testing.T) {
	conv := NewConversation().WithDraft("  draft text ")

	next, err := conv.SendDraft()
	if err != nil {
		t.Fatal(err)
	}
	if next.Draft != "" {
		t.Errorf("draft = %q after send", next.Draft)
	}
	last, _ := next.LastTurn()
	if last.Text != "draft text" {
		t.Errorf("text = %q", last.Text)
	}

	// blank draft rejected, nothing appended
	if _, err := NewConversation().WithDraft("  ").SendDraft(); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("blank draft err = %v, want ErrEmptyInput", err)
	}
}

func TestLastUserText(t *testing.T) {
	conv, _ := NewConversation().AppendUserTurn("first")
	conv, _ = conv.AppendAssistantTurn("reply")
	conv, _ = conv.AppendUserTurn("second")
	conv, _ = conv.AppendAssistantTurn("another reply")

	text, ok := conv.LastUserText()
	if !ok || text != "second" {
		t.Errorf("LastUserText = %q, %v", text, ok)
	}

	if _, ok := NewConversation().LastUserText(); ok {
		t.Error("LastUserText on empty conversation reported ok")
	}
}

func TestPreview(t *testing.T) {
	conv, _ := NewConversation().AppendUserTurn("line one\nline two\t" + strings.Repeat("x", 200))
	preview := conv.Preview()
	if strings.ContainsAny(preview, "\n\t") {
		t.Errorf("preview contains whitespace control chars: %q", preview)
	}
	if len([]rune(preview)) > 80 {
		t.Errorf("preview too long: %d runes", len([]rune(preview)))
	}
}

func TestToChatMessages(t *testing.T) {
	conv, _ := NewConversation().AppendSystemTurn("be brief")
	conv, _ = conv.AppendUserTurn("hi")
	conv, _ = conv.AppendAssistantTurn("hello")

	msgs := conv.ToChatMessages()
	if len(msgs) != 3 {
		t.Fatalf("len = %d", len(msgs))
	}
	wantRoles := []string{"system", "user", "assistant"}
	for i, want := range wantRoles {
		if msgs[i].Role != want {
			t.Errorf("msgs[%d].Role = %q, want %q", i, msgs[i].Role, want)
		}
	}
}

func TestTurnIDsUnique(t *testing.T) {
	conv := NewConversation()
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		var turn Turn
		conv, turn = conv.AppendAssistantTurn("x")
		if seen[turn.ID] {
			t.Fatalf("duplicate turn ID %q", turn.ID)
		}
		seen[turn.ID] = true
	}
}
