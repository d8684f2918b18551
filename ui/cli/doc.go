// Copyright (c) 2026 Credkey Team
// Credkey - credential verifier key system
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the command-line interface for credkey using Cobra.
// It loads configuration, sets up logging and i18n, and hands the real work
// to the internal/crypto and internal/verifier packages. CLI code should stay
// thin.
package cli
