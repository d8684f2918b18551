// Copyright (c) 2026 Credkey Team
// Credkey - credential verifier key system
// This source code is licensed under the MIT license found in the LICENSE file.

// Package security wraps plaintext credentials so they cannot leak through
// formatting, logging or serialization on their way to the verifier.
package security

import (
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf8"
)

const redacted = "[SECRET]"

// Secret holds a plaintext credential. Every printing and encoding path
// yields a placeholder instead of the content.
type Secret []byte

// String redacts the secret for fmt.Print* convenience.
func (s Secret) String() string { return redacted }

// Format implements fmt.Formatter so %v, %#v and %q are redacted as well.
func (s Secret) Format(f fmt.State, c rune) {
	_, _ = io.WriteString(f, redacted)
}

// MarshalJSON redacts secrets in JSON output.
func (s Secret) MarshalJSON() ([]byte, error) { return json.Marshal(redacted) }

// MarshalText redacts secrets for text encoders, including YAML.
func (s Secret) MarshalText() ([]byte, error) { return []byte(redacted), nil }

// Redacted returns the placeholder used in logs.
func (s Secret) Redacted() string { return redacted }

// Len returns the number of characters (runes) in the credential. The
// length-scaled key size heuristic is computed from it.
func (s Secret) Len() int { return utf8.RuneCount(s) }

// Empty reports whether the credential has no content.
func (s Secret) Empty() bool { return len(s) == 0 }

// Bytes returns a copy of the underlying bytes. Callers own the copy and
// should zero it when done.
func (s Secret) Bytes() []byte {
	out := make([]byte, len(s))
	copy(out, s)
	return out
}

// Use runs fn with the underlying bytes, not a copy.
func (s Secret) Use(fn func([]byte) error) error {
	return fn([]byte(s))
}

// Zero overwrites the secret in place.
func (s *Secret) Zero() {
	if s == nil || *s == nil {
		return
	}
	for i := range *s {
		(*s)[i] = 0
	}
}

// FromString copies in into a new Secret.
func FromString(in string) Secret { return Secret([]byte(in)) }

// FromBytes copies in into a new Secret.
func FromBytes(in []byte) Secret {
	out := make([]byte, len(in))
	copy(out, in)
	return Secret(out)
}
