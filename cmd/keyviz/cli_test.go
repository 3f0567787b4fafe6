// Copyright (c) 2025 keyviz contributors
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestParseOptionsDefaults(t *testing.T) {
	cfg, err := parseOptions(nil)
	if err != nil {
		t.Fatalf("parseOptions(nil): %v", err)
	}
	if cfg.Margin != 32 {
		t.Errorf("Margin = %d, want default 32", cfg.Margin)
	}
	if cfg.DevicePath != "/dev/input" {
		t.Errorf("DevicePath = %q, want /dev/input", cfg.DevicePath)
	}
}

func TestParseOptionsFlagsOverrideDefaults(t *testing.T) {
	cfg, err := parseOptions([]string{"--margin", "10", "--length-limit", "5"})
	if err != nil {
		t.Fatalf("parseOptions: %v", err)
	}
	if cfg.Margin != 10 {
		t.Errorf("Margin = %d, want 10", cfg.Margin)
	}
	if cfg.LengthLimit != 5 {
		t.Errorf("LengthLimit = %d, want 5", cfg.LengthLimit)
	}
}

func TestParseOptionsHelpReturnsErrHelp(t *testing.T) {
	_, err := parseOptions([]string{"--help"})
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("parseOptions(--help) error = %v, want flag.ErrHelp", err)
	}
}

func TestParseOptionsRejectsUnknownFlag(t *testing.T) {
	if _, err := parseOptions([]string{"--not-a-real-flag"}); err == nil {
		t.Fatal("expected an error for an unknown flag")
	}
}

func TestParseOptionsRejectsBadColor(t *testing.T) {
	if _, err := parseOptions([]string{"--background", "not-a-color"}); err == nil {
		t.Fatal("expected an error for an invalid --background color")
	}
}

func TestParseOptionsLoadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keyviz.yaml")
	if err := os.WriteFile(path, []byte("margin: 7\n"), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := parseOptions([]string{"--config", path})
	if err != nil {
		t.Fatalf("parseOptions: %v", err)
	}
	if cfg.Margin != 7 {
		t.Errorf("Margin = %d, want 7 (from config file)", cfg.Margin)
	}
}

func TestRunReturnsConfigExitCodeOnBadFlags(t *testing.T) {
	if code := run([]string{"--not-a-real-flag"}); code != 2 {
		t.Errorf("run(bad flag) = %d, want 2 (ConfigError)", code)
	}
}

func TestRunReturnsZeroOnHelp(t *testing.T) {
	if code := run([]string{"--help"}); code != 0 {
		t.Errorf("run(--help) = %d, want 0", code)
	}
}

func TestParseOptionsFlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keyviz.yaml")
	if err := os.WriteFile(path, []byte("margin: 7\n"), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := parseOptions([]string{"--config", path, "--margin", "99"})
	if err != nil {
		t.Fatalf("parseOptions: %v", err)
	}
	if cfg.Margin != 99 {
		t.Errorf("Margin = %d, want 99 (flag overrides file)", cfg.Margin)
	}
}
