// Copyright (c) 2026 Credkey Team
// Credkey - credential verifier key system
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/nextchat/credkey/internal/crypto/code"
	"github.com/nextchat/credkey/internal/i18n"
	"github.com/nextchat/credkey/internal/logging"
)

// copyToClipboard is a package-level variable so tests can run without a
// clipboard.
var copyToClipboard = clipboard.WriteAll

// newCodeCmd prints a CAPTCHA code or a prefixed token suffix.
func newCodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "code",
		Short: "Generate a short alphanumeric code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			length := appConfig.Code.Length
			if cmd.Flags().Changed("length") {
				length, _ = cmd.Flags().GetInt("length")
			}
			prefix, _ := cmd.Flags().GetString("prefix")
			copyIt, _ := cmd.Flags().GetBool("copy")

			c, err := code.New().TokenSuffix(prefix, length)
			if err != nil {
				return localizeError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), c)

			if copyIt {
				if err := copyToClipboard(c); err != nil {
					logging.Warnf("could not copy code to clipboard: %v", err)
					return nil
				}
				fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("code.copied"))
			}
			return nil
		},
	}
	cmd.Flags().Int("length", code.DefaultLength, "Number of symbols")
	cmd.Flags().String("prefix", "", "Prefix joined to the code with a dash")
	cmd.Flags().Bool("copy", false, "Copy the code to the clipboard")
	return cmd
}
