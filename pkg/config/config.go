// Package config provides layered configuration for packwrap: built-in
// defaults, an optional packwrap.toml in the project root, and
// PACKWRAP_-prefixed environment variables, in increasing precedence.
package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/packwrap/pkg/errors"
	"github.com/arthur-debert/packwrap/pkg/manifest"
)

// Config holds the resolved packwrap configuration
type Config struct {
	Tool  ToolConfig  `koanf:"tool"`
	Patch PatchConfig `koanf:"patch"`
	Lock  LockConfig  `koanf:"lock"`
}

// ToolConfig describes the external build tool invocation
type ToolConfig struct {
	// Binary is the tool executable, resolved through PATH
	Binary string `koanf:"binary"`

	// Target is passed as --target
	Target string `koanf:"target"`

	// OutName is passed as --out-name. Empty means: derive it from the
	// manifest's package name.
	OutName string `koanf:"out_name"`
}

// PatchConfig describes the manifest transformation
type PatchConfig struct {
	From string `koanf:"from"`
	To   string `koanf:"to"`
}

// LockConfig controls the advisory lock beside the manifest
type LockConfig struct {
	Enabled bool `koanf:"enabled"`
}

// Rule returns the patch configuration as a manifest rule
func (c *Config) Rule() manifest.Rule {
	return manifest.Rule{From: c.Patch.From, To: c.Patch.To}
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"tool.binary":   "wasm-pack",
		"tool.target":   "bundler",
		"tool.out_name": "",
		"patch.from":    manifest.DefaultRule.From,
		"patch.to":      manifest.DefaultRule.To,
		"lock.enabled":  true,
	}
}

// Load resolves configuration for a project. configPath points at the
// optional packwrap.toml; a missing file is not an error.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// 1. Built-in defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load default config")
	}

	// 2. Project config file, if present
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigLoad,
					"failed to load config from %s", configPath)
			}
		}
	}

	// 3. Environment variables: PACKWRAP_TOOL_BINARY -> tool.binary
	err := k.Load(env.Provider("PACKWRAP_", ".", func(s string) string {
		return strings.Replace(
			strings.ToLower(strings.TrimPrefix(s, "PACKWRAP_")), "_", ".", 1)
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load config from environment")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the resolved configuration for obvious mistakes
func (c *Config) Validate() error {
	if c.Tool.Binary == "" {
		return errors.New(errors.ErrConfigValid, "tool.binary must not be empty")
	}
	if c.Tool.Target == "" {
		return errors.New(errors.ErrConfigValid, "tool.target must not be empty")
	}
	return c.Rule().Validate()
}
