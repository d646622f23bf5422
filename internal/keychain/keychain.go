// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package keychain resolves and validates API credentials. Sources are
// checked in priority order: environment, credential file, static config.
package keychain

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	// EnvAPIKey is the environment variable consulted first.
	EnvAPIKey = "OPENAI_API_KEY"

	// credentialFile is the on-disk key location under the home directory.
	credentialDir  = ".demochat"
	credentialFile = "credentials"

	// Well-formed keys carry the standard prefix and are longer than 20
	// characters in total.
	keyPrefix = "sk-"
	minKeyLen = 21
)

// Validate reports whether key looks like a usable API key. It checks shape
// only; whether the key is accepted is the server's call.
func Validate(key string) bool {
	key = strings.TrimSpace(key)
	return strings.HasPrefix(key, keyPrefix) && len(key) >= minKeyLen
}

// Source supplies an API key. An empty result means the source has nothing.
type Source interface {
	APIKey() string
}

// IsConfigured reports whether src yields a non-blank key.
func IsConfigured(src Source) bool {
	return src != nil && strings.TrimSpace(src.APIKey()) != ""
}

// =============================================================================
// SOURCES
// =============================================================================

// Static is a fixed key, typically from configuration.
type Static string

func (s Static) APIKey() string { return string(s) }

// Env reads the key from the environment on every call, so an export in a
// long-lived process takes effect immediately.
type Env struct{}

func (Env) APIKey() string { return os.Getenv(EnvAPIKey) }

// File reads the key from a credential file. The file content is the bare
// key, optionally followed by a newline. Reads are cached after first use.
type File struct {
	Path string

	once sync.Once
	key  string
}

// DefaultFile points at the standard credential location.
func DefaultFile() *File {
	home, err := os.UserHomeDir()
	if err != nil {
		return &File{}
	}
	return &File{Path: filepath.Join(home, credentialDir, credentialFile)}
}

func (f *File) APIKey() string {
	f.once.Do(func() {
		if f.Path == "" {
			return
		}
		data, err := os.ReadFile(f.Path)
		if err != nil {
			return
		}
		f.key = strings.TrimSpace(string(data))
	})
	return f.key
}

// Chain tries each source in order and returns the first non-blank key.
type Chain []Source

func (c Chain) APIKey() string {
	for _, src := range c {
		if key := strings.TrimSpace(src.APIKey()); key != "" {
			return key
		}
	}
	return ""
}

// Default is the standard resolution order: environment, credential file.
func Default() Chain {
	return Chain{Env{}, DefaultFile()}
}
