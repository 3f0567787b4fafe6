// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package platform

import (
	"os"

	"github.com/godbus/dbus/v5"
)

// EnvironmentType represents the display server type
type EnvironmentType string

const (
	// EnvironmentX11 represents X11 display server
	EnvironmentX11 EnvironmentType = "X11"
	// EnvironmentWayland represents Wayland display server
	EnvironmentWayland EnvironmentType = "Wayland"
	// EnvironmentUnknown represents unknown display server
	EnvironmentUnknown EnvironmentType = "Unknown"
)

// DetectEnvironment detects the current display server environment
func DetectEnvironment() EnvironmentType {
	// Check for Wayland
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		return EnvironmentWayland
	}

	// Check for X11
	if os.Getenv("DISPLAY") != "" {
		return EnvironmentX11
	}

	// If neither is detected, assume unknown
	return EnvironmentUnknown
}

// DetectDesktopEnvironment detects the current desktop environment
func DetectDesktopEnvironment() string {
	// Check XDG_CURRENT_DESKTOP first (most reliable)
	if de := os.Getenv("XDG_CURRENT_DESKTOP"); de != "" {
		return de
	}

	// Fallback to legacy variables
	if de := os.Getenv("DESKTOP_SESSION"); de != "" {
		return de
	}

	return "Unknown"
}

// IsGNOMEWithWayland checks if running GNOME with Wayland
func IsGNOMEWithWayland() bool {
	de := DetectDesktopEnvironment()
	env := DetectEnvironment()

	return (de == "GNOME" || de == "ubuntu:GNOME") && env == EnvironmentWayland
}

// DetectCompositorName queries the session D-Bus for well-known compositor
// bus names so the startup diagnostic banner can name the compositor in
// its "missing layer-shell" error, instead of just printing "Wayland".
func DetectCompositorName() string {
	conn, err := dbus.SessionBus()
	if err != nil {
		return ""
	}
	defer conn.Close()

	names := map[string]string{
		"org.kde.KWin":                "KWin",
		"org.gnome.Mutter":            "Mutter",
		"org.freedesktop.compositor":  "wlroots-based",
		"org.freedesktop.impl.portal": "xdg-desktop-portal",
	}

	busObj := conn.Object("org.freedesktop.DBus", "/org/freedesktop/DBus")
	for busName, label := range names {
		var hasOwner bool
		call := busObj.Call("org.freedesktop.DBus.NameHasOwner", 0, busName)
		if call.Err == nil {
			if err := call.Store(&hasOwner); err == nil && hasOwner {
				return label
			}
		}
	}
	return ""
}

// EnsureDirectoryExists creates a directory if it doesn't exist. Used by
// the logger to create a log file's parent directory before opening it.
func EnsureDirectoryExists(path string) error {
	return os.MkdirAll(path, 0755)
}
