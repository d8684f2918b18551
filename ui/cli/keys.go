// Copyright (c) 2026 Credkey Team
// Credkey - credential verifier key system
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/nextchat/credkey/internal/crypto/keypair"
	"github.com/nextchat/credkey/internal/crypto/modexp"
	"github.com/nextchat/credkey/internal/logging"
)

// newPrimeCmd prints one probable prime of exactly --bits bits.
func newPrimeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prime",
		Short: "Generate a probable prime",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bits, _ := cmd.Flags().GetInt("bits")
			p, err := newPrimeGenerator().GenerateContext(cmd.Context(), bits)
			if err != nil {
				return localizeError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), modexp.FormatDecimal(p))
			return nil
		},
	}
	cmd.Flags().Int("bits", 64, "Bit length of the prime")
	return cmd
}

// newKeygenCmd prints a key pair in the chosen format.
func newKeygenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a key pair",
		Long: `Generate a modulus of about --bits bits and the matching private
exponent for the fixed public exponent 65537. Both are printed in decimal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bits, _ := cmd.Flags().GetInt("bits")
			format, _ := cmd.Flags().GetString("output")

			kp, err := newKeyGenerator().GenerateContext(cmd.Context(), bits)
			if err != nil {
				return localizeError(err)
			}
			logging.Debugf("generated %d-bit modulus", kp.Modulus.BitLen())
			return writeKeys(cmd.OutOrStdout(), kp.Keys(), format)
		},
	}
	cmd.Flags().Int("bits", 128, "Approximate modulus size in bits")
	cmd.Flags().StringP("output", "o", "text", "Output format: text, json or yaml")
	return cmd
}

func writeKeys(w io.Writer, keys keypair.Keys, format string) error {
	switch format {
	case "text", "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "PUBLIC KEY\t%s\n", keys.PublicKey)
		fmt.Fprintf(tw, "PRIVATE KEY\t%s\n", keys.PrivateKey)
		return tw.Flush()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(keys)
	case "yaml":
		data, err := yaml.Marshal(keys)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("unknown output format %q", format)
}

// newEncryptCmd encrypts text under a decimal public key.
func newEncryptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encrypt [text]",
		Short: "Encrypt text under a public key",
		Long: `Encrypt text under a decimal public key with exponent 65537. Without an
argument the text is read like a credential, from a hidden prompt or stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, _ := cmd.Flags().GetString("key")

			var text string
			if len(args) == 1 {
				text = args[0]
			} else {
				cred, err := readCredential(cmd, false)
				if err != nil {
					return err
				}
				defer cred.Zero()
				text = string(cred)
			}

			c, err := modexp.EncryptString(text, key)
			if err != nil {
				return localizeError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), c)
			return nil
		},
	}
	cmd.Flags().String("key", "", "Decimal public key (modulus)")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}
