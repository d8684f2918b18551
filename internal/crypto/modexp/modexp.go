// Copyright (c) 2026 Credkey Team
// Credkey - credential verifier key system
// This source code is licensed under the MIT license found in the LICENSE file.

// Package modexp turns text into an integer and raises it to the fixed
// public exponent modulo a caller-supplied modulus.
//
// Verification never decrypts: a candidate is encrypted under the stored
// modulus and compared with the stored ciphertext. The transform is
// deterministic and unsalted.
package modexp

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/nextchat/credkey/internal/crypto"
)

// Encode concatenates the decimal code point of every character of text and
// parses the result as one base-10 integer. No per-character padding is
// applied, so the mapping is not invertible ("7"+"65" and "76"+"5" collide).
func Encode(text string) (*big.Int, error) {
	if text == "" {
		return nil, fmt.Errorf("encode empty text: %w", crypto.ErrInvalidArgument)
	}
	var sb strings.Builder
	for _, r := range text {
		sb.WriteString(strconv.Itoa(int(r)))
	}
	n, ok := new(big.Int).SetString(sb.String(), 10)
	if !ok {
		return nil, fmt.Errorf("encode %d characters: %w", len(text), crypto.ErrInvalidArgument)
	}
	return n, nil
}

// Transform computes value^exponent mod modulus by square-and-multiply.
func Transform(value, exponent, modulus *big.Int) (*big.Int, error) {
	switch {
	case value == nil || exponent == nil || modulus == nil:
		return nil, fmt.Errorf("nil operand: %w", crypto.ErrInvalidArgument)
	case modulus.Cmp(big.NewInt(1)) <= 0:
		return nil, fmt.Errorf("modulus must be greater than 1: %w", crypto.ErrInvalidArgument)
	case value.Sign() < 0 || exponent.Sign() < 0:
		return nil, fmt.Errorf("negative operand: %w", crypto.ErrInvalidArgument)
	}
	return new(big.Int).Exp(value, exponent, modulus), nil
}

// Encrypt returns Encode(text)^65537 mod modulus.
func Encrypt(text string, modulus *big.Int) (*big.Int, error) {
	m, err := Encode(text)
	if err != nil {
		return nil, err
	}
	return Transform(m, crypto.E(), modulus)
}

// EncryptString is Encrypt over the decimal-string boundary. The same call
// produces the stored ciphertext and every later comparison value.
func EncryptString(text, publicKey string) (string, error) {
	n, err := ParseDecimal(publicKey)
	if err != nil {
		return "", fmt.Errorf("public key: %w", err)
	}
	c, err := Encrypt(text, n)
	if err != nil {
		return "", err
	}
	return FormatDecimal(c), nil
}

// ParseDecimal parses a boundary integer: ASCII digits only, no sign, and
// no leading zero unless the value is exactly "0".
func ParseDecimal(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("empty decimal: %w", crypto.ErrInvalidArgument)
	}
	if len(s) > 1 && s[0] == '0' {
		return nil, fmt.Errorf("leading zero in decimal: %w", crypto.ErrInvalidArgument)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return nil, fmt.Errorf("non-digit %q at offset %d: %w", s[i], i, crypto.ErrInvalidArgument)
		}
	}
	n, _ := new(big.Int).SetString(s, 10)
	return n, nil
}

// FormatDecimal renders n in base 10.
func FormatDecimal(n *big.Int) string { return n.Text(10) }
