// Copyright (c) 2026 Credkey Team
// Credkey - credential verifier key system
// This source code is licensed under the MIT license found in the LICENSE file.

// Package verifier turns plaintext credentials into stored verifier records
// and checks candidates against them.
//
// Enrollment generates a fresh key pair sized from the credential length,
// encrypts the credential under its modulus with the fixed public exponent
// and keeps {ciphertext, modulus}. The private exponent is discarded.
// Verification encrypts the candidate the same way and compares. No
// persistence happens here.
package verifier

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	clog "github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nextchat/credkey/internal/crypto"
	"github.com/nextchat/credkey/internal/crypto/keypair"
	"github.com/nextchat/credkey/internal/crypto/modexp"
	"github.com/nextchat/credkey/internal/logging"
	"github.com/nextchat/credkey/internal/security"
)

// DefaultBitsPerChar is the modulus growth per credential character.
const DefaultBitsPerChar = 32

// DefaultWorkers bounds EnrollAll concurrency.
const DefaultWorkers = 4

// ErrMismatch is what callers surface when Verify reports false.
var ErrMismatch = errors.New("credential does not match verifier")

// Record is the verifier pair persisted by the account store. Field tags
// follow the account columns: password holds the ciphertext, passwordKey
// the modulus.
type Record struct {
	Ciphertext string `json:"password" yaml:"password"`
	Modulus    string `json:"passwordKey" yaml:"passwordKey"`
}

// KeyBitsFunc picks the modulus size for a credential.
type KeyBitsFunc func(credential security.Secret) int

// LengthScaled returns a KeyBitsFunc that allots bitsPerChar bits per
// character. Short credentials get small moduli.
func LengthScaled(bitsPerChar int) KeyBitsFunc {
	return func(credential security.Secret) int {
		return credential.Len() * bitsPerChar
	}
}

// Service enrolls and verifies credentials.
type Service struct {
	keys    *keypair.Generator
	keyBits KeyBitsFunc
	workers int
	log     *clog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithKeyBits replaces the key size heuristic.
func WithKeyBits(f KeyBitsFunc) Option {
	return func(s *Service) {
		if f != nil {
			s.keyBits = f
		}
	}
}

// WithWorkers bounds EnrollAll concurrency. Values below 1 keep the default.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLogger sets the logger. Credentials are never logged.
func WithLogger(l *clog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// New returns a Service. A nil keys uses keypair.New(nil).
func New(keys *keypair.Generator, opts ...Option) *Service {
	if keys == nil {
		keys = keypair.New(nil)
	}
	s := &Service{
		keys:    keys,
		keyBits: LengthScaled(DefaultBitsPerChar),
		workers: DefaultWorkers,
		log:     logging.L,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enroll produces the verifier record for credential.
func (s *Service) Enroll(ctx context.Context, credential security.Secret) (Record, error) {
	if credential.Empty() {
		return Record{}, fmt.Errorf("empty credential: %w", crypto.ErrInvalidArgument)
	}
	bits := s.keyBits(credential)
	s.log.Debug("generating verifier key", "bits", bits)

	kp, err := s.keys.GenerateContext(ctx, bits)
	if err != nil {
		return Record{}, fmt.Errorf("generate %d-bit key: %w", bits, err)
	}

	var ciphertext string
	err = credential.Use(func(b []byte) error {
		c, err := modexp.Encrypt(string(b), kp.Modulus)
		if err != nil {
			return err
		}
		ciphertext = modexp.FormatDecimal(c)
		return nil
	})
	if err != nil {
		return Record{}, fmt.Errorf("encrypt credential: %w", err)
	}

	return Record{Ciphertext: ciphertext, Modulus: kp.PublicKey()}, nil
}

// Verify reports whether candidate encrypts to record's ciphertext under
// record's modulus. A malformed record is an error, a wrong candidate is not.
func (s *Service) Verify(record Record, candidate security.Secret) (bool, error) {
	if _, err := modexp.ParseDecimal(record.Ciphertext); err != nil {
		return false, fmt.Errorf("stored ciphertext: %w", err)
	}
	if candidate.Empty() {
		return false, nil
	}

	var got string
	err := candidate.Use(func(b []byte) error {
		var err error
		got, err = modexp.EncryptString(string(b), record.Modulus)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("encrypt candidate: %w", err)
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(record.Ciphertext)) == 1, nil
}

// EnrollAll enrolls credentials on a bounded pool of goroutines and returns
// records in input order. The first failure cancels the remaining work.
func (s *Service) EnrollAll(ctx context.Context, credentials []security.Secret) ([]Record, error) {
	batch := uuid.NewString()
	log := s.log.With("batch", batch)
	log.Info("enrolling credentials", "count", len(credentials), "workers", s.workers)

	records := make([]Record, len(credentials))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, c := range credentials {
		g.Go(func() error {
			r, err := s.Enroll(gctx, c)
			if err != nil {
				return fmt.Errorf("credential %d: %w", i, err)
			}
			records[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("batch enrollment failed", "err", err)
		return nil, err
	}
	log.Info("batch enrolled", "count", len(records))
	return records, nil
}
