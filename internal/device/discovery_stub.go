//go:build !linux

// Copyright (c) 2025 keyviz contributors
// SPDX-License-Identifier: MIT

package device

import (
	"fmt"

	evdev "github.com/holoplot/go-evdev"
)

// Candidate is an opened keyboard-class input device, ready to be
// wrapped as a Source.
type Candidate struct {
	ID   string
	Path string
	Dev  *evdev.InputDevice
}

// Discover always fails on non-Linux platforms: evdev device discovery
// is Linux-specific.
func Discover(root string) ([]Candidate, error) {
	return nil, fmt.Errorf("device discovery under %s: evdev is only supported on linux", root)
}
