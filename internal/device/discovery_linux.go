//go:build linux

// Copyright (c) 2025 keyviz contributors
// SPDX-License-Identifier: MIT

package device

import (
	"fmt"
	"path/filepath"

	evdev "github.com/holoplot/go-evdev"
	"golang.org/x/sys/unix"
)

// Candidate is an opened keyboard-class input device, ready to be
// wrapped as a Source.
type Candidate struct {
	ID   string
	Path string
	Dev  *evdev.InputDevice
}

// Discover scans root for keyboard candidates: every device node
// advertising at least one keyboard-class key in its EV_KEY capability
// bitmap, per §4.1. Symlinked and duplicate nodes (by-id/by-path
// aliases of the same eventN node) are deduplicated by device
// identity — (st_dev, st_ino) — not by path.
//
// Every returned Candidate is already open; the caller is responsible
// for closing any it doesn't use before dropping privileges.
func Discover(root string) ([]Candidate, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("list input devices under %s: %w", root, err)
	}

	seen := make(map[identity]bool)
	var out []Candidate
	for _, p := range paths {
		// go-evdev always enumerates the platform input root; when the
		// caller configured a non-default root we only keep nodes that
		// actually live under it.
		if filepath.Dir(p.Path) != filepath.Clean(root) {
			continue
		}

		id, err := identify(p.Path)
		if err != nil {
			continue
		}
		if seen[id] {
			continue
		}

		dev, err := evdev.Open(p.Path)
		if err != nil {
			continue
		}
		if !isKeyboardCandidate(dev) {
			dev.Close()
			continue
		}

		seen[id] = true
		out = append(out, Candidate{ID: p.Path, Path: p.Path, Dev: dev})
	}
	return out, nil
}

// identity is the (device, inode) pair that makes dedup path-independent.
type identity struct {
	dev uint64
	ino uint64
}

func identify(path string) (identity, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return identity{}, err
	}
	return identity{dev: uint64(st.Dev), ino: st.Ino}, nil
}

// keyboardProbe is a representative set of alphabetic-row scancodes;
// a device advertising any of them is treated as a keyboard-class
// device rather than e.g. a mouse or a power button.
var keyboardProbe = []evdev.EvCode{
	evdev.KEY_A, evdev.KEY_S, evdev.KEY_SPACE, evdev.KEY_ENTER,
}

func isKeyboardCandidate(dev *evdev.InputDevice) bool {
	types := dev.CapableTypes()
	hasKey := false
	for _, t := range types {
		if t == evdev.EV_KEY {
			hasKey = true
			break
		}
	}
	if !hasKey {
		return false
	}
	for _, code := range keyboardProbe {
		if dev.CapableEvent(evdev.EV_KEY, code) {
			return true
		}
	}
	return false
}
