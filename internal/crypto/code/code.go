// Copyright (c) 2026 Credkey Team
// Credkey - credential verifier key system
// This source code is licensed under the MIT license found in the LICENSE file.

// Package code produces short alphanumeric codes for CAPTCHA challenges and
// token suffixes. The codes are opaque identifiers, not key material.
package code

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/nextchat/credkey/internal/crypto"
)

const (
	// Letters omits L and O.
	Letters = "ABCDEFGHIJKMNPQRSTUVWXYZ"
	Digits  = "0123456789"
	// Alphabet is the full symbol set codes are drawn from.
	Alphabet = Letters + Digits

	// DefaultLength is the length of a CAPTCHA code.
	DefaultLength = 6
)

// acceptBelow is the largest multiple of len(Alphabet) that fits in a byte;
// bytes at or above it are redrawn so every symbol is equally likely.
var acceptBelow = 256 - 256%len(Alphabet)

// Generator draws codes from a random source.
type Generator struct {
	random io.Reader
}

// Option configures a Generator.
type Option func(*Generator)

// WithRandom sets the random source.
func WithRandom(r io.Reader) Option {
	return func(g *Generator) {
		if r != nil {
			g.random = r
		}
	}
}

// New returns a Generator reading from crypto/rand by default.
func New(opts ...Option) *Generator {
	g := &Generator{random: rand.Reader}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns length symbols drawn independently and uniformly, with
// replacement, from Alphabet.
func (g *Generator) Generate(length int) (string, error) {
	if length < 0 {
		return "", fmt.Errorf("code length %d: %w", length, crypto.ErrInvalidArgument)
	}
	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		need := buf[:length-len(out)]
		if _, err := io.ReadFull(g.random, need); err != nil {
			return "", fmt.Errorf("read random code: %w", err)
		}
		for _, b := range need {
			if int(b) < acceptBelow {
				out = append(out, Alphabet[int(b)%len(Alphabet)])
			}
		}
	}
	return string(out), nil
}

// Captcha returns a DefaultLength code.
func (g *Generator) Captcha() (string, error) {
	return g.Generate(DefaultLength)
}

// TokenSuffix returns prefix joined to a fresh code with a dash, the shape
// used for composite account tokens.
func (g *Generator) TokenSuffix(prefix string, length int) (string, error) {
	c, err := g.Generate(length)
	if err != nil {
		return "", err
	}
	if prefix == "" {
		return c, nil
	}
	return prefix + "-" + c, nil
}
