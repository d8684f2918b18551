// Copyright (c) 2026 Credkey Team
// Credkey - credential verifier key system
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nextchat/credkey/internal/crypto"
	"github.com/nextchat/credkey/internal/crypto/keypair"
	"github.com/nextchat/credkey/internal/crypto/prime"
	"github.com/nextchat/credkey/internal/i18n"
	"github.com/nextchat/credkey/internal/logging"
	"github.com/nextchat/credkey/internal/security"
	"github.com/nextchat/credkey/internal/verifier"
)

func newPrimeGenerator() *prime.Generator {
	return prime.New(
		prime.WithRounds(appConfig.Keygen.PrimeRounds),
		prime.WithMaxAttempts(appConfig.Keygen.MaxPrimeAttempts),
	)
}

func newKeyGenerator() *keypair.Generator {
	return keypair.New(newPrimeGenerator(), keypair.WithMaxAttempts(appConfig.Keygen.MaxPairAttempts))
}

func newVerifier() *verifier.Service {
	return verifier.New(newKeyGenerator(),
		verifier.WithKeyBits(verifier.LengthScaled(appConfig.Keygen.BitsPerChar)),
		verifier.WithWorkers(appConfig.Enroll.Workers),
		verifier.WithLogger(logging.L),
	)
}

// localizeError maps the crypto sentinels onto translated messages and
// leaves every other error untouched.
func localizeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, crypto.ErrInvalidArgument):
		return fmt.Errorf("%s: %w", i18n.T("error.invalid_argument", err), crypto.ErrInvalidArgument)
	case errors.Is(err, crypto.ErrGenerationFailed):
		return fmt.Errorf("%s: %w", i18n.T("error.generation_failed", err), crypto.ErrGenerationFailed)
	}
	return err
}

// readCredential prompts without echo when stdin is a terminal and reads one
// line otherwise. With confirm set an interactive user is asked twice.
func readCredential(cmd *cobra.Command, confirm bool) (security.Secret, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		first, err := promptHidden(cmd, f, i18n.T("prompt.credential"))
		if err != nil {
			return nil, err
		}
		if confirm {
			second, err := promptHidden(cmd, f, i18n.T("prompt.confirm"))
			if err != nil {
				first.Zero()
				return nil, err
			}
			same := bytes.Equal(first, second)
			second.Zero()
			if !same {
				first.Zero()
				return nil, errors.New(i18n.T("error.confirm_mismatch"))
			}
		}
		if first.Empty() {
			return nil, errors.New(i18n.T("error.empty_credential"))
		}
		return first, nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read credential: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil, errors.New(i18n.T("error.empty_credential"))
	}
	return security.FromString(line), nil
}

func promptHidden(cmd *cobra.Command, f *os.File, prompt string) (security.Secret, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("failed to read credential: %w", err)
	}
	return security.Secret(b), nil
}

// readCredentialLines reads one credential per line, skipping blank lines.
func readCredentialLines(r io.Reader) ([]security.Secret, error) {
	var out []security.Secret
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		out = append(out, security.FromString(line))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}
	return out, nil
}
