// Copyright (c) 2026 Credkey Team
// Credkey - credential verifier key system
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/nextchat/credkey/internal/i18n"
	"github.com/nextchat/credkey/internal/verifier"
)

// newEnrollCmd reads one credential and prints its verifier record.
func newEnrollCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enroll",
		Short: "Create a verifier record for a credential",
		Long: `Read a credential (hidden prompt on a terminal, one line otherwise) and
print the record {password, passwordKey} an account store would keep.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("output")

			cred, err := readCredential(cmd, true)
			if err != nil {
				return err
			}
			defer cred.Zero()

			rec, err := newVerifier().Enroll(cmd.Context(), cred)
			if err != nil {
				return localizeError(err)
			}
			return writeRecord(cmd.OutOrStdout(), rec, format)
		},
	}
	cmd.Flags().StringP("output", "o", "yaml", "Output format: json or yaml")
	return cmd
}

func writeRecord(w io.Writer, rec verifier.Record, format string) error {
	switch format {
	case "yaml", "":
		data, err := yaml.Marshal(rec)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}
	return fmt.Errorf("unknown output format %q", format)
}

// newEnrollBatchCmd enrolls a file of credentials, one per line.
func newEnrollBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enroll-batch",
		Short: "Create verifier records for many credentials",
		Long: `Read one credential per line from --in ("-" for stdin) and write the
records as a YAML list to --out ("-" for stdout). An --out path ending in
.zst, or --compress, writes a zstd-compressed file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inPath, _ := cmd.Flags().GetString("in")
			outPath, _ := cmd.Flags().GetString("out")
			compress, _ := cmd.Flags().GetBool("compress")
			compress = compress || strings.HasSuffix(outPath, ".zst")

			var in io.Reader = cmd.InOrStdin()
			if inPath != "-" {
				f, err := os.Open(inPath)
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", inPath, err)
				}
				defer func() { _ = f.Close() }()
				in = f
			}

			creds, err := readCredentialLines(in)
			if err != nil {
				return err
			}
			defer func() {
				for i := range creds {
					creds[i].Zero()
				}
			}()
			if len(creds) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("enroll.batch_empty", inPath))
				return nil
			}

			records, err := newVerifier().EnrollAll(cmd.Context(), creds)
			if err != nil {
				return localizeError(err)
			}

			if outPath == "-" {
				return verifier.WriteRecords(cmd.OutOrStdout(), records, compress)
			}
			f, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", outPath, err)
			}
			if err := verifier.WriteRecords(f, records, compress); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("enroll.batch_done", len(records), outPath))
			return nil
		},
	}
	cmd.Flags().String("in", "-", "Credential file, one per line")
	cmd.Flags().String("out", "-", "Record file")
	cmd.Flags().Bool("compress", false, "Compress the record file with zstd")
	return cmd
}

// newVerifyCmd checks a credential against a stored record and fails on a
// mismatch.
func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a credential against a verifier record",
		Long: `Check a credential read from the terminal or stdin against a record
given either as a file (--record, YAML or JSON) or as --password and
--password-key. Exits non-zero on a mismatch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := recordFromFlags(cmd)
			if err != nil {
				return err
			}

			cred, err := readCredential(cmd, false)
			if err != nil {
				return err
			}
			defer cred.Zero()

			ok, err := newVerifier().Verify(rec, cred)
			if err != nil {
				return localizeError(err)
			}
			if !ok {
				return fmt.Errorf("%s: %w", i18n.T("verify.mismatch"), verifier.ErrMismatch)
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("verify.match"))
			return nil
		},
	}
	cmd.Flags().String("record", "", "File holding one record")
	cmd.Flags().String("password", "", "Stored ciphertext")
	cmd.Flags().String("password-key", "", "Stored public key")
	return cmd
}

func recordFromFlags(cmd *cobra.Command) (verifier.Record, error) {
	path, _ := cmd.Flags().GetString("record")
	ciphertext, _ := cmd.Flags().GetString("password")
	modulus, _ := cmd.Flags().GetString("password-key")

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return verifier.Record{}, fmt.Errorf("failed to read record: %w", err)
		}
		var rec verifier.Record
		// YAML is a superset of JSON, so one decoder handles both.
		if err := yaml.Unmarshal(data, &rec); err != nil {
			return verifier.Record{}, fmt.Errorf("failed to parse record %s: %w", path, err)
		}
		return rec, nil
	}
	if ciphertext == "" || modulus == "" {
		return verifier.Record{}, errors.New(i18n.T("error.record_missing"))
	}
	return verifier.Record{Ciphertext: ciphertext, Modulus: modulus}, nil
}
