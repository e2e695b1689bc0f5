// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads Guardian's settings from guardian.yaml, GUARDIAN_*
// environment variables and command line flags, in increasing precedence.
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
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the process configuration. Vault-level settings such as the
// polling policy live in the manifest, not here.
type Config struct {
	Vault struct {
		Dir string `mapstructure:"dir" yaml:"dir"`
	} `mapstructure:"vault" yaml:"vault"`
	Database struct {
		Type string `mapstructure:"type" yaml:"type"`
		Dsn  string `mapstructure:"dsn" yaml:"dsn"`
	} `mapstructure:"database" yaml:"database"`
	Language string `mapstructure:"language" yaml:"language"`
	Log      struct {
		Level string `mapstructure:"level" yaml:"level"`
	} `mapstructure:"log" yaml:"log"`
	Crypto struct {
		Time      uint32 `mapstructure:"time" yaml:"time"`
		MemoryKiB uint32 `mapstructure:"memory_kib" yaml:"memory_kib"`
		Threads   uint8  `mapstructure:"threads" yaml:"threads"`
	} `mapstructure:"crypto" yaml:"crypto"`
	Poll struct {
		Concurrency int    `mapstructure:"concurrency" yaml:"concurrency"`
		Selected    uint64 `mapstructure:"selected" yaml:"selected"`
	} `mapstructure:"poll" yaml:"poll"`
}

// flagKeys maps flag names that differ from their config key.
var flagKeys = map[string]string{
	"vault":     "vault.dir",
	"log-level": "log.level",
	"db-type":   "database.type",
	"db-dsn":    "database.dsn",
}

// Defaults returns the built-in configuration values keyed by config path.
func Defaults() map[string]any {
	base := "."
	if dir, err := os.UserConfigDir(); err == nil {
		base = filepath.Join(dir, "guardian")
	}
	return map[string]any{
		"vault.dir":         filepath.Join(base, "maFiles"),
		"database.type":     "sqlite",
		"database.dsn":      filepath.Join(base, "audit.db"),
		"language":          "en",
		"log.level":         "info",
		"crypto.time":       3,
		"crypto.memory_kib": 64 * 1024,
		"crypto.threads":    4,
		"poll.concurrency":  4,
		"poll.selected":     0,
	}
}

// GetConfigPath returns the user or system-wide guardian.yaml location.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "Guardian")
		default:
			configDir = "/etc/guardian"
		}
	} else {
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(dir, "guardian")
	}
	return filepath.Join(configDir, "guardian.yaml"), nil
}

// LoadConfig merges defaults, the first guardian.yaml found, GUARDIAN_*
// environment variables and the flags of cmd into a T.
//
// When no configuration file exists the parsed value is still returned
// together with a viper.ConfigFileNotFoundError so callers can detect a first
// run.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, configFile *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("guardian")
	v.SetConfigType("yaml")
	if configFile != nil && *configFile != "" {
		v.SetConfigFile(*configFile)
	}
	if p, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(p))
	}
	if p, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(p))
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("guardian")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		if err := bindFlags(v, cmd.Flags()); err != nil {
			return c, err
		}
	}

	readErr := v.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return c, fmt.Errorf("read config: %w", readErr)
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, readErr
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			key = f.Name
		}
		if bindErr := v.BindPFlag(key, f); bindErr != nil && err == nil {
			err = bindErr
		}
	})
	return err
}

// WriteConfigFile stores c as YAML at the user or system path.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := GetConfigPath(system)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", dir, err)
	}
	return os.WriteFile(path, data, 0o600)
}
