// Copyright (c) 2026 Credkey Team
// Credkey - credential verifier key system
// This source code is licensed under the MIT license found in the LICENSE file.

package crypto

import (
	"errors"
	"math/big"
)

// ErrInvalidArgument is returned synchronously when a call is made with a
// bit length < 2, a modulus <= 1, empty text or a malformed decimal string.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrGenerationFailed is returned when a rejection-sampling loop runs out of
// its configured attempt budget without finding a qualifying candidate.
var ErrGenerationFailed = errors.New("generation failed")

// PublicExponent is the fixed public exponent e. It is never stored or
// transmitted alongside a key.
const PublicExponent = 65537

// E returns PublicExponent as a fresh big.Int.
func E() *big.Int { return big.NewInt(PublicExponent) }
