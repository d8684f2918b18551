// Copyright (c) 2026 Credkey Team
// Credkey - credential verifier key system
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface for credkey using the Cobra
// library. It defines the root command, its persistent flags, the shared
// config and logging setup, and the version command.

package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/nextchat/credkey/buildvars"
	"github.com/nextchat/credkey/internal/config"
	"github.com/nextchat/credkey/internal/i18n"
	"github.com/nextchat/credkey/internal/logging"
)

var version = "dev"   // this will be set by the linker
var gitCommit = "dev" // set at build time with the short commit SHA
var buildDate = ""    // set at build time (RFC3339)

// appConfig is loaded by the root command before any subcommand runs.
var appConfig config.Config

func setupDefaultServices(cmd *cobra.Command, args []string) error {
	optionalConfigPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	appConfig, err = config.LoadConfig[config.Config](cmd, config.Defaults(), optionalConfigPath)
	if err != nil {
		return errors.New(i18n.T("error.load_config", err))
	}
	if err := appConfig.Validate(); err != nil {
		return errors.New(i18n.T("error.load_config", err))
	}

	i18n.Init(appConfig.Language)

	if err := logging.SetLevel(appConfig.Log.Level); err != nil {
		return err
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logging.SetDebug(true)
	}
	logging.Debugf("config loaded (language=%s, bits_per_char=%d)", appConfig.Language, appConfig.Keygen.BitsPerChar)
	return nil
}

// Execute runs the CLI entrypoint. The cmd/credkey main package should call
// this function and handle process exit.
func Execute() error {
	return NewRootCmd().Execute()
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	// Only proceed if the user has explicitly set the --config flag.
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}

// NewRootCmd creates and configures a new root cobra command. Every call
// builds fresh subcommands, so tests can run commands in isolation.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credkey",
		Short: "credkey creates and checks credential verifiers.",
		Long: `credkey turns a credential into a verifier record: a freshly generated
modulus sized from the credential length and the credential encrypted
under it. A stored record is checked by encrypting a candidate the same
way and comparing. It also generates probable primes, key pairs and short
alphanumeric codes.`,
		SilenceUsage:      true,
		PersistentPreRunE: setupDefaultServices,
	}
	cmd.Version = compositeVersion()

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().String("config", "", "config file")
	cmd.PersistentFlags().String("language", "en", `Message language ("en", "de")`)
	cmd.PersistentFlags().String("log.level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newPrimeCmd(),
		newKeygenCmd(),
		newEncryptCmd(),
		newEnrollCmd(),
		newEnrollBatchCmd(),
		newVerifyCmd(),
		newCodeCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			v, c, d := resolveBuildVersion(nil)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "version: %s\n", v)
			fmt.Fprintf(out, "commit: %s\n", c)
			if d != "" {
				fmt.Fprintf(out, "built: %s\n", d)
			}
		},
	}
}

func compositeVersion() string {
	v, c, d := resolveBuildVersion(nil)
	composite := v
	if c != "" && c != "dev" {
		composite = composite + " (" + c + ")"
	}
	if d != "" {
		composite = composite + " built: " + d
	}
	return composite
}

// resolveBuildVersion computes the best-available version, commit and build
// date for the running binary. If `info` is nil, it reads build info from
// the runtime.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := buildvars.VersionOrDefault(version)
	resolvedCommit := gitCommit
	resolvedDate := buildDate

	if info == nil {
		if local, found := debug.ReadBuildInfo(); found {
			info = local
		}
	}

	if info != nil {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		// Some build paths only record our module as a dependency.
		if (resolvedVersion == "dev" || resolvedVersion == "(devel)") && info.Deps != nil {
			for _, dep := range info.Deps {
				if dep.Path == modulePath && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}

		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	// As a last resort show the commit passed via ldflags.
	if resolvedVersion == "dev" && gitCommit != "dev" && gitCommit != "" {
		resolvedVersion = gitCommit
	}

	return resolvedVersion, resolvedCommit, resolvedDate
}

const modulePath = "github.com/nextchat/credkey"
