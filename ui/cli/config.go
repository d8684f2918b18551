// Copyright (c) 2026 Credkey Team
// Credkey - credential verifier key system
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/nextchat/credkey/internal/config"
	"github.com/nextchat/credkey/internal/i18n"
)

// newConfigCmd groups commands that inspect or persist the configuration.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or write the configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(appConfig)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to credkey.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			system, _ := cmd.Flags().GetBool("system")
			path, err := config.WriteConfigFile(&appConfig, system)
			if err != nil {
				return fmt.Errorf("could not write config file: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("config.written", path))
			return nil
		},
	}
	initCmd.Flags().Bool("system", false, "Write the system-wide file instead of the user file")

	cmd.AddCommand(show, initCmd)
	return cmd
}
