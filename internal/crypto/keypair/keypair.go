// Copyright (c) 2026 Credkey Team
// Credkey - credential verifier key system
// This source code is licensed under the MIT license found in the LICENSE file.

// Package keypair derives an RSA-style modulus and private exponent from two
// probable primes. The public exponent is always crypto.PublicExponent and
// is not part of the returned value.
package keypair

import (
	"context"
	"fmt"
	"math/big"

	"github.com/nextchat/credkey/internal/crypto"
	"github.com/nextchat/credkey/internal/crypto/prime"
)

// DefaultMaxAttempts caps the number of (p, q) pairs drawn per call.
const DefaultMaxAttempts = 1024

// closenessSlack is subtracted from the half size before testing |p-q|.
const closenessSlack = 100

var one = big.NewInt(1)

// KeyPair is the result of a generation. Only Modulus is meant to be
// persisted; PrivateExponent is computed but no verification path uses it.
type KeyPair struct {
	Modulus         *big.Int
	PrivateExponent *big.Int
}

// Keys is the decimal-string form that crosses the package boundary.
type Keys struct {
	PublicKey  string `json:"public_key" yaml:"public_key"`
	PrivateKey string `json:"private_key" yaml:"private_key"`
}

// Keys returns the pair as decimal strings.
func (kp KeyPair) Keys() Keys {
	return Keys{
		PublicKey:  kp.Modulus.String(),
		PrivateKey: kp.PrivateExponent.String(),
	}
}

// PublicKey returns the modulus in decimal.
func (kp KeyPair) PublicKey() string { return kp.Modulus.String() }

// Generator builds key pairs from a prime.Generator.
type Generator struct {
	primes      *prime.Generator
	maxAttempts int
}

// Option configures a Generator.
type Option func(*Generator)

// WithMaxAttempts sets the pair ceiling. n <= 0 retries forever.
func WithMaxAttempts(n int) Option {
	return func(g *Generator) { g.maxAttempts = n }
}

// New returns a Generator. A nil primes uses prime.New().
func New(primes *prime.Generator, opts ...Option) *Generator {
	if primes == nil {
		primes = prime.New()
	}
	g := &Generator{primes: primes, maxAttempts: DefaultMaxAttempts}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a key pair whose modulus has about totalBits bits.
func (g *Generator) Generate(totalBits int) (KeyPair, error) {
	return g.GenerateContext(context.Background(), totalBits)
}

// GenerateContext draws independent (p, q) pairs of totalBits/2 bits each
// until gcd(e, lcm(p-1, q-1)) = 1 and p, q are far enough apart.
func (g *Generator) GenerateContext(ctx context.Context, totalBits int) (KeyPair, error) {
	half := totalBits / 2
	e := crypto.E()

	for attempt := 1; g.maxAttempts <= 0 || attempt <= g.maxAttempts; attempt++ {
		p, err := g.primes.GenerateContext(ctx, half)
		if err != nil {
			return KeyPair{}, fmt.Errorf("generate p: %w", err)
		}
		q, err := g.primes.GenerateContext(ctx, half)
		if err != nil {
			return KeyPair{}, fmt.Errorf("generate q: %w", err)
		}

		lambda := Lambda(p, q)
		if new(big.Int).GCD(nil, nil, e, lambda).Cmp(one) != 0 {
			continue
		}
		if TooClose(p, q, half) {
			continue
		}

		d := new(big.Int).ModInverse(e, lambda)
		if d == nil {
			// unreachable once the gcd check passed
			continue
		}
		return KeyPair{
			Modulus:         new(big.Int).Mul(p, q),
			PrivateExponent: d,
		}, nil
	}
	return KeyPair{}, fmt.Errorf("no acceptable %d-bit prime pair after %d attempts: %w",
		half, g.maxAttempts, crypto.ErrGenerationFailed)
}

// Lambda returns lcm(p-1, q-1).
func Lambda(p, q *big.Int) *big.Int {
	p1 := new(big.Int).Sub(p, one)
	q1 := new(big.Int).Sub(q, one)
	gcd := new(big.Int).GCD(nil, nil, p1, q1)
	l := new(big.Int).Mul(p1, q1)
	return l.Quo(l, gcd)
}

// TooClose reports whether |p-q| >> (half-100) is zero. A negative shift is
// applied as a left shift, so for small halves only p == q is rejected.
func TooClose(p, q *big.Int, half int) bool {
	diff := new(big.Int).Sub(p, q)
	diff.Abs(diff)
	shift := half - closenessSlack
	if shift >= 0 {
		diff.Rsh(diff, uint(shift))
	} else {
		diff.Lsh(diff, uint(-shift))
	}
	return diff.Sign() == 0
}
