// Copyright (c) 2025 keyviz contributors
// SPDX-License-Identifier: MIT

// Package config loads keyviz's configuration from CLI flags layered
// over an optional YAML file layered over built-in defaults, mirroring
// the load-then-validate shape of this lineage's config loader.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/kvoverlay/keyviz/internal/errs"
)

// DefaultDevicePath is the platform input root used when --device-path
// is not given.
const DefaultDevicePath = "/dev/input"

// Config is the fully resolved runtime configuration, one field per
// entry in spec.md §6's CLI flag table plus the ambient fields that
// ride along with every component in this lineage (debug, log file).
type Config struct {
	Background Color  `yaml:"background"`
	Foreground Color  `yaml:"foreground"`
	Special    Color  `yaml:"special"`
	Font       string `yaml:"font"`

	Timeout time.Duration `yaml:"-"`
	// TimeoutMS is the YAML/flag-facing millisecond form of Timeout.
	TimeoutMS int `yaml:"timeout_ms"`

	Anchor Anchor `yaml:"-"`
	// AnchorSpec is the YAML/flag-facing comma-separated form of Anchor.
	AnchorSpec string `yaml:"anchor"`

	Margin      int    `yaml:"margin"`
	LengthLimit int    `yaml:"length_limit"`
	DevicePath  string `yaml:"device_path"`

	CaseSensitive bool `yaml:"case_sensitive"`
	Debug         bool `yaml:"debug"`
	LogFile       string `yaml:"log_file"`
}

// Defaults returns the built-in configuration, matching the defaults
// named throughout spec.md §6.
func Defaults() *Config {
	return &Config{
		Background:    0x000000CC,
		Foreground:    0xFFFFFFFF,
		Special:       0xAAAAAAFF,
		Font:          "Sans 24",
		Timeout:       200 * time.Millisecond,
		TimeoutMS:     200,
		Anchor:        DefaultAnchor,
		AnchorSpec:    DefaultAnchor.String(),
		Margin:        32,
		LengthLimit:   100,
		DevicePath:    DefaultDevicePath,
		CaseSensitive: false,
	}
}

// Load reads an optional YAML file over the built-in defaults. A
// missing file is not an error — keyviz runs fine off defaults plus
// flags alone, matching the teacher's "warn and continue with
// defaults" loader behavior.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.resolveDerivedFields(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// resolveDerivedFields recomputes Timeout/Anchor from their YAML-facing
// string/int forms after unmarshalling, and validates bounds.
func (c *Config) resolveDerivedFields() error {
	if c.TimeoutMS <= 0 {
		c.TimeoutMS = 200
	}
	c.Timeout = time.Duration(c.TimeoutMS) * time.Millisecond

	anchor, err := ParseAnchors(c.AnchorSpec)
	if err != nil {
		return err
	}
	c.Anchor = anchor

	if c.LengthLimit <= 0 {
		c.LengthLimit = 100
	}
	if c.Margin < 0 {
		c.Margin = 0
	}
	if c.DevicePath == "" {
		c.DevicePath = DefaultDevicePath
	}
	return nil
}

// Validate checks invariants that aren't self-correcting, returning a
// ConfigError-class error (see internal/errs) on failure.
func (c *Config) Validate() error {
	if c.Anchor == 0 {
		return errs.New(errs.Config, "anchor set must not be empty")
	}
	if c.LengthLimit <= 0 {
		return errs.New(errs.Config, fmt.Sprintf("length-limit must be positive, got %d", c.LengthLimit))
	}
	if c.Timeout <= 0 {
		return errs.New(errs.Config, fmt.Sprintf("timeout must be positive, got %s", FormatDuration(c.Timeout)))
	}
	return nil
}
