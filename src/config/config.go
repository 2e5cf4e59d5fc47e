// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package config loads validator settings from a JSON or YAML file.
//
// Values are applied in order: built-in defaults, then the file named by the
// caller or by the X509_VALIDATOR_CONFIG_FILE environment variable. The file
// is checked against an embedded JSON schema before it is applied.
package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	x509certs "github.com/H0llyW00dzZ/x509-chain-validator/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/x509-chain-validator/src/internal/x509/chain"
)

// EnvConfigFile names the environment variable consulted when no path is given.
const EnvConfigFile = "X509_VALIDATOR_CONFIG_FILE"

// DefaultTimeout bounds a single validation run started by a server.
const DefaultTimeout = 30 * time.Second

// ErrInvalidConfig indicates a configuration file that does not match the schema.
var ErrInvalidConfig = errors.New("config: invalid configuration")

//go:embed schema.json
var schema string

// configFormat represents supported configuration file formats.
type configFormat int

const (
	// configFormatJSON represents JSON configuration format (.json)
	configFormatJSON configFormat = iota
	// configFormatYAML represents YAML configuration format (.yaml, .yml)
	configFormatYAML
)

// Config holds validator settings.
type Config struct {
	// Validation: Policy applied to every run
	Validation struct {
		// MaxDepth: Maximum certificates in a path, anchor included
		MaxDepth int `json:"maxDepth" yaml:"maxDepth"`
		// LenientCA: Accept intermediates without a basicConstraints extension
		LenientCA bool `json:"lenientCA" yaml:"lenientCA"`
		// EnforceAnchorConstraints: Apply basic constraints to trust anchors
		EnforceAnchorConstraints bool `json:"enforceAnchorConstraints" yaml:"enforceAnchorConstraints"`
		// Subject: Expected leaf subject, empty for any
		Subject string `json:"subject,omitempty" yaml:"subject,omitempty"`
	} `json:"validation" yaml:"validation"`

	// Cache: Decode cache used by the MCP server
	Cache struct {
		// Size: Number of decoded inputs to keep
		Size int `json:"size" yaml:"size"`
	} `json:"cache" yaml:"cache"`

	// Defaults: Operational defaults
	Defaults struct {
		// Timeout: Timeout in seconds for one validation
		Timeout int `json:"timeoutSeconds" yaml:"timeoutSeconds"`
	} `json:"defaults" yaml:"defaults"`
}

// Default returns the built-in configuration.
func Default() *Config {
	c := &Config{}
	c.Validation.MaxDepth = x509chain.DefaultMaxDepth
	c.Cache.Size = x509certs.DefaultCacheSize
	c.Defaults.Timeout = int(DefaultTimeout / time.Second)
	return c
}

// detectConfigFormat determines the configuration file format based on file extension.
func detectConfigFormat(configPath string) configFormat {
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		return configFormatYAML
	default:
		return configFormatJSON
	}
}

// Load reads the configuration at configPath, falling back to the path in
// [EnvConfigFile], and to [Default] when neither is set.
//
// Parameters:
//   - configPath: Path to a .json, .yaml or .yml file (optional)
//
// Returns:
//   - *Config: Loaded configuration with defaults applied
//   - error: Read, parse or schema validation failure
func Load(configPath string) (*Config, error) {
	config := Default()

	if configPath == "" {
		configPath = os.Getenv(EnvConfigFile)
	}
	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := Parse(data, detectConfigFormat(configPath) == configFormatYAML, config); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return config, nil
}

// Parse validates data against the schema and merges it into config.
// An empty document leaves config unchanged.
func Parse(data []byte, isYAML bool, config *Config) error {
	var doc any
	if isYAML {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
	} else if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %w", err)
		}
	}
	if doc == nil {
		return nil
	}

	if err := validate(doc); err != nil {
		return err
	}

	if isYAML {
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
	} else if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse JSON config file: %w", err)
	}

	config.sanitize()
	return nil
}

func validate(doc any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// sanitize restores defaults for values the schema cannot rule out.
func (c *Config) sanitize() {
	if c.Validation.MaxDepth <= 0 {
		c.Validation.MaxDepth = x509chain.DefaultMaxDepth
	}
	if c.Cache.Size <= 0 {
		c.Cache.Size = x509certs.DefaultCacheSize
	}
	if c.Defaults.Timeout <= 0 {
		c.Defaults.Timeout = int(DefaultTimeout / time.Second)
	}
	c.Validation.Subject = strings.TrimSpace(c.Validation.Subject)
}

// Timeout returns the per-validation timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Defaults.Timeout) * time.Second
}

// Options converts the validation section to processing options.
func (c *Config) Options() []x509chain.Option {
	opts := []x509chain.Option{x509chain.WithMaxDepth(c.Validation.MaxDepth)}
	if c.Validation.LenientCA {
		opts = append(opts, x509chain.WithLenientCA())
	}
	if c.Validation.EnforceAnchorConstraints {
		opts = append(opts, x509chain.WithAnchorConstraints())
	}
	if c.Validation.Subject != "" {
		opts = append(opts, x509chain.WithTarget(x509chain.MatchSubjectString(c.Validation.Subject)))
	}
	return opts
}
