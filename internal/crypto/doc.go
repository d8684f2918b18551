// Copyright (c) 2026 Credkey Team
// Credkey - credential verifier key system
// This source code is licensed under the MIT license found in the LICENSE file.

// Package crypto holds the pieces shared by the credential primitive:
// the error taxonomy and the fixed public exponent. The algorithms live in
// the subpackages prime, keypair, modexp and code.
//
// Every subpackage is pure: no I/O apart from drawing bytes from an injected
// io.Reader, and no shared mutable state.
package crypto
