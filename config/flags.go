// Copyright (c) 2025 keyviz contributors
// SPDX-License-Identifier: MIT

package config

import (
	"flag"
	"fmt"
)

// RegisterFlags registers the CLI flags of spec.md §6 onto fs, with its
// values defaulting to whatever cfg currently holds (so callers can
// register onto a Defaults()-seeded config and end up with "flags
// override file values override defaults" by parsing the file first).
//
// Flag parsing itself is an external collaborator per spec.md §1; this
// only specifies which flags exist and what they do, in the shape of
// this lineage's cmd/daemon/cli.go flag sets.
func RegisterFlags(fs *flag.FlagSet, cfg *Config) *FlagValues {
	fv := &FlagValues{
		background: cfg.Background.String(),
		foreground: cfg.Foreground.String(),
		special:    cfg.Special.String(),
		font:       cfg.Font,
		timeoutMS:  cfg.TimeoutMS,
		anchor:     cfg.AnchorSpec,
		margin:     cfg.Margin,
		lengthLim:  cfg.LengthLimit,
		devicePath: cfg.DevicePath,
	}

	fs.StringVar(&fv.background, "background", fv.background, "background fill color, #RRGGBB[AA]")
	fs.StringVar(&fv.foreground, "foreground", fv.foreground, "default text color, #RRGGBB[AA]")
	fs.StringVar(&fv.special, "special", fv.special, "color for special glyphs, #RRGGBB[AA]")
	fs.StringVar(&fv.font, "font", fv.font, "font description string")
	fs.IntVar(&fv.timeoutMS, "timeout", fv.timeoutMS, "idle timeout before the display buffer is cleared, in ms")
	fs.StringVar(&fv.anchor, "anchor", fv.anchor, "comma-separated subset of top,left,right,bottom")
	fs.IntVar(&fv.margin, "margin", fv.margin, "margin from each anchored edge, in px")
	fs.IntVar(&fv.lengthLim, "length-limit", fv.lengthLim, "max number of records kept in the display buffer")
	fs.StringVar(&fv.devicePath, "device-path", fv.devicePath, "device root for enumeration")
	fs.BoolVar(&fv.caseSensitive, "case-sensitive", cfg.CaseSensitive, "do not lower-case letter symbols")
	fs.BoolVar(&fv.debug, "debug", cfg.Debug, "enable debug logging")
	fs.StringVar(&fv.logFile, "log-file", cfg.LogFile, "path to a log file (stderr if empty)")
	fs.StringVar(&fv.configFile, "config", "", "path to a YAML config file")

	return fv
}

// FlagValues holds the raw, not-yet-validated flag destinations
// RegisterFlags wires up; call Apply after fs.Parse to fold them back
// into a Config.
type FlagValues struct {
	background, foreground, special string
	font                             string
	timeoutMS                        int
	anchor                           string
	margin, lengthLim                int
	devicePath                       string
	caseSensitive, debug             bool
	logFile                          string
	configFile                       string
}

// ConfigFile returns the --config flag's value, read out before Apply
// so the caller can load that file first.
func (fv *FlagValues) ConfigFile() string { return fv.configFile }

// Apply folds parsed flag values into cfg, overriding whatever the
// config file or defaults set — flags always win.
func (fv *FlagValues) Apply(cfg *Config) error {
	bg, err := ParseColor(fv.background)
	if err != nil {
		return fmt.Errorf("--background: %w", err)
	}
	fg, err := ParseColor(fv.foreground)
	if err != nil {
		return fmt.Errorf("--foreground: %w", err)
	}
	special, err := ParseColor(fv.special)
	if err != nil {
		return fmt.Errorf("--special: %w", err)
	}
	anchor, err := ParseAnchors(fv.anchor)
	if err != nil {
		return fmt.Errorf("--anchor: %w", err)
	}

	cfg.Background = bg
	cfg.Foreground = fg
	cfg.Special = special
	cfg.Font = fv.font
	cfg.TimeoutMS = fv.timeoutMS
	cfg.Anchor = anchor
	cfg.AnchorSpec = fv.anchor
	cfg.Margin = fv.margin
	cfg.LengthLimit = fv.lengthLim
	cfg.DevicePath = fv.devicePath
	cfg.CaseSensitive = fv.caseSensitive
	cfg.Debug = fv.debug
	cfg.LogFile = fv.logFile

	return cfg.resolveDerivedFields()
}
