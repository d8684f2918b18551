// Copyright (c) 2026 Credkey Team
// Credkey - credential verifier key system
// This source code is licensed under the MIT license found in the LICENSE file.

// Package prime generates probable primes of an exact bit length by
// rejection sampling over a caller-supplied random source.
package prime

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/nextchat/credkey/internal/crypto"
)

const (
	// DefaultRounds is the number of Miller-Rabin rounds handed to
	// big.Int.ProbablyPrime. Each round errs with probability at most 1/4,
	// so 128 rounds bound the error at 2^-256 per accepted candidate.
	DefaultRounds = 128

	// DefaultMaxAttempts caps the number of candidates drawn per call.
	// For 2048-bit primes roughly one odd candidate in 700 is prime, so the
	// cap is only reached with a broken random source.
	DefaultMaxAttempts = 1 << 20
)

// Generator draws probable primes. The zero value is not usable; build one
// with New. A Generator is safe for concurrent use when its reader is.
type Generator struct {
	random      io.Reader
	rounds      int
	maxAttempts int
}

// Option configures a Generator.
type Option func(*Generator)

// WithRandom sets the source candidates are drawn from. Tests pass a seeded
// reader to get reproducible vectors.
func WithRandom(r io.Reader) Option {
	return func(g *Generator) {
		if r != nil {
			g.random = r
		}
	}
}

// WithRounds sets the Miller-Rabin round count. Values below 1 keep the default.
func WithRounds(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.rounds = n
		}
	}
}

// WithMaxAttempts sets the candidate ceiling. n <= 0 removes the ceiling and
// retries forever, like the historical implementation did.
func WithMaxAttempts(n int) Option {
	return func(g *Generator) { g.maxAttempts = n }
}

// New returns a Generator reading from crypto/rand by default.
func New(opts ...Option) *Generator {
	g := &Generator{
		random:      rand.Reader,
		rounds:      DefaultRounds,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Rounds reports the configured Miller-Rabin round count.
func (g *Generator) Rounds() int { return g.rounds }

// Generate returns an odd probable prime p with 2^(bits-1) <= p < 2^bits.
func (g *Generator) Generate(bits int) (*big.Int, error) {
	return g.GenerateContext(context.Background(), bits)
}

// GenerateContext is Generate with cancellation checked between candidates.
func (g *Generator) GenerateContext(ctx context.Context, bits int) (*big.Int, error) {
	if bits < 2 {
		return nil, fmt.Errorf("prime size must be at least 2 bits, got %d: %w", bits, crypto.ErrInvalidArgument)
	}

	buf := make([]byte, (bits+7)/8)
	// b is the number of significant bits in the leading byte.
	b := uint(bits % 8)
	if b == 0 {
		b = 8
	}

	p := new(big.Int)
	for attempt := 1; g.maxAttempts <= 0 || attempt <= g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := io.ReadFull(g.random, buf); err != nil {
			return nil, fmt.Errorf("read random candidate: %w", err)
		}

		buf[0] &= uint8(int(1<<b) - 1)
		// Top bit pins the bit length, bottom bit makes the candidate odd.
		buf[0] |= 1 << (b - 1)
		buf[len(buf)-1] |= 1

		p.SetBytes(buf)
		if p.ProbablyPrime(g.rounds) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no %d-bit prime after %d candidates: %w", bits, g.maxAttempts, crypto.ErrGenerationFailed)
}

// IsProbablePrime reports whether n passes the same test Generate applies.
func IsProbablePrime(n *big.Int, rounds int) bool {
	if n == nil || n.Sign() <= 0 {
		return false
	}
	if rounds < 1 {
		rounds = DefaultRounds
	}
	return n.ProbablyPrime(rounds)
}
