// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import "testing"

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxRunes int
		want     string
	}{
		{
			name:     "shorter than limit",
			input:    "hello",
			maxRunes: 10,
			want:     "hello",
		},
		{
			name:     "exactly at limit",
			input:    "hello",
			maxRunes: 5,
			want:     "hello",
		},
		{
			name:     "truncated with ellipsis",
			input:    "hello world",
			maxRunes: 8,
			want:     "hello...",
		},
		{
			name:     "tiny limit without ellipsis",
			input:    "hello",
			maxRunes: 2,
			want:     "he",
		},
		{
			name:     "zero limit",
			input:    "hello",
			maxRunes: 0,
			want:     "",
		},
		{
			name:     "multibyte runes are not split",
			input:    "日本語のテキストです",
			maxRunes: 6,
			want:     "日本語...",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := TruncateRunes(tc.input, tc.maxRunes)
			if got != tc.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tc.input, tc.maxRunes, got, tc.want)
			}
		})
	}
}

func TestRuneLen(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"abc", 3},
		{"日本語", 3},
		{"héllo", 5},
	}

	for _, tc := range tests {
		if got := RuneLen(tc.input); got != tc.want {
			t.Errorf("RuneLen(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}
