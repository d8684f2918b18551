// Copyright (c) 2026 Credkey Team
// Credkey - credential verifier key system
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads credkey settings from defaults, credkey.yaml, the
// environment and command flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the full credkey configuration.
type Config struct {
	Language string       `mapstructure:"language" yaml:"language"`
	Log      LogConfig    `mapstructure:"log" yaml:"log"`
	Keygen   KeygenConfig `mapstructure:"keygen" yaml:"keygen"`
	Code     CodeConfig   `mapstructure:"code" yaml:"code"`
	Enroll   EnrollConfig `mapstructure:"enroll" yaml:"enroll"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// KeygenConfig tunes prime and key pair generation.
type KeygenConfig struct {
	// BitsPerChar scales the modulus size with the credential length.
	BitsPerChar      int `mapstructure:"bits_per_char" yaml:"bits_per_char"`
	PrimeRounds      int `mapstructure:"prime_rounds" yaml:"prime_rounds"`
	MaxPrimeAttempts int `mapstructure:"max_prime_attempts" yaml:"max_prime_attempts"`
	MaxPairAttempts  int `mapstructure:"max_pair_attempts" yaml:"max_pair_attempts"`
}

type CodeConfig struct {
	Length int `mapstructure:"length" yaml:"length"`
}

type EnrollConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// Defaults returns the default settings keyed the way viper expects.
func Defaults() map[string]any {
	return map[string]any{
		"language":                  "en",
		"log.level":                 "info",
		"keygen.bits_per_char":      32,
		"keygen.prime_rounds":       128,
		"keygen.max_prime_attempts": 1 << 20,
		"keygen.max_pair_attempts":  1024,
		"code.length":               6,
		"enroll.workers":            4,
	}
}

// Validate rejects settings the generators cannot work with. Attempt
// ceilings of 0 or less are allowed and mean "unbounded".
func (c Config) Validate() error {
	var errs []error
	if c.Keygen.BitsPerChar < 1 {
		errs = append(errs, fmt.Errorf("keygen.bits_per_char must be at least 1, got %d", c.Keygen.BitsPerChar))
	}
	if c.Keygen.PrimeRounds < 1 {
		errs = append(errs, fmt.Errorf("keygen.prime_rounds must be at least 1, got %d", c.Keygen.PrimeRounds))
	}
	if c.Code.Length < 0 {
		errs = append(errs, fmt.Errorf("code.length must not be negative, got %d", c.Code.Length))
	}
	if c.Enroll.Workers < 1 {
		errs = append(errs, fmt.Errorf("enroll.workers must be at least 1, got %d", c.Enroll.Workers))
	}
	return errors.Join(errs...)
}

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "credkey")
		default: // Linux, macOS, etc.
			configDir = "/etc/credkey"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "credkey")
	}

	return filepath.Join(configDir, "credkey.yaml"), nil
}

// LoadConfig layers defaults, the first credkey.yaml found (or the explicit
// path), CREDKEY_* environment variables and the command's flags, then
// decodes the result into T. A missing config file is not an error.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, explicitPath *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("credkey")
	v.SetConfigType("yaml")

	// An explicit --config path wins over the search locations.
	if explicitPath != nil {
		v.SetConfigFile(*explicitPath)
	}

	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, err
		}
	}

	v.SetEnvPrefix("credkey")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	return c, nil
}

// WriteConfigFile writes c as YAML to the user or system config path and
// returns the path written.
func WriteConfigFile[T any](c *T, system bool) (string, error) {
	path, err := GetConfigPath(system)
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", err
	}
	return path, nil
}
