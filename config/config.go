// Package config loads serializer configuration from a YAML file, so the
// sensitive-path list and the header-group set can live next to the rest of
// a service's deployment config.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/coffersTech/logsafe"
	"github.com/coffersTech/logsafe/redact"
)

// Config mirrors logsafe.Options in file form.
type Config struct {
	// RedactPaths are dotted sensitive paths, e.g. "user.token".
	RedactPaths []string `yaml:"redact_paths"`

	// HeaderGroups overrides the transport-default header group names
	// stripped from outbound request headers. Omit for the defaults.
	HeaderGroups []string `yaml:"header_groups"`

	// MaxDepth bounds graph traversal. Zero means the built-in default.
	MaxDepth int `yaml:"max_depth"`

	// Placeholder replaces matched values instead of deleting them.
	Placeholder string `yaml:"placeholder"`

	// FingerprintKey is a hex-encoded key enabling fingerprint redaction.
	// The LOGSAFE_FINGERPRINT_KEY environment variable takes precedence.
	FingerprintKey string `yaml:"fingerprint_key"`
}

// Default returns the configuration equivalent to logsafe.Default().
func Default() *Config {
	return &Config{MaxDepth: redact.DefaultMaxDepth}
}

// Load reads and verifies a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Verify rejects configurations that would silently misbehave: paths with
// empty segments and negative depth caps.
func (c *Config) Verify() error {
	for _, p := range c.RedactPaths {
		if p == "" {
			return fmt.Errorf("config: empty redact path")
		}
		for _, seg := range strings.Split(p, ".") {
			if seg == "" {
				return fmt.Errorf("config: redact path %q has an empty segment", p)
			}
		}
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("config: max_depth must not be negative")
	}
	if c.FingerprintKey != "" {
		if _, err := hex.DecodeString(c.FingerprintKey); err != nil {
			return fmt.Errorf("config: fingerprint_key is not valid hex: %w", err)
		}
	}
	return nil
}

// Options converts the file form into registry options. The environment
// fingerprint key, when set, wins over the file value.
func (c *Config) Options() logsafe.Options {
	opts := logsafe.Options{
		Paths:        c.RedactPaths,
		HeaderGroups: c.HeaderGroups,
		MaxDepth:     c.MaxDepth,
		Placeholder:  c.Placeholder,
	}
	if key := redact.FingerprintKeyFromEnv(); key != nil {
		opts.FingerprintKey = key
	} else if c.FingerprintKey != "" {
		key, err := hex.DecodeString(c.FingerprintKey)
		if err == nil {
			opts.FingerprintKey = key
		}
	}
	return opts
}

// Serializers is the one-call path from a config file to a registry.
func (c *Config) Serializers() logsafe.Serializers {
	return logsafe.New(c.Options())
}
