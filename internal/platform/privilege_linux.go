//go:build linux

// Copyright (c) 2025 keyviz contributors
// SPDX-License-Identifier: MIT

package platform

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// DropPrivileges drops the process's effective and saved UID/GID down to the
// invoking user's real UID/GID. Call this only after every candidate input
// device has already been opened — once dropped, re-opening a
// permission-gated device node will fail.
//
// Returns an error if the drop fails or if a second read-back of the
// credentials shows the drop did not take effect.
func DropPrivileges() error {
	realUID := os.Getuid()
	realGID := os.Getgid()
	effUID := os.Geteuid()
	effGID := os.Getegid()

	if effUID == realUID && effGID == realGID {
		// Nothing elevated to drop (e.g. already running unprivileged via
		// the 'input' group or a file capability on the binary).
		return nil
	}

	if err := unix.Setgid(realGID); err != nil {
		return fmt.Errorf("drop group privileges: %w", err)
	}
	if err := unix.Setuid(realUID); err != nil {
		return fmt.Errorf("drop user privileges: %w", err)
	}

	// Read the effective IDs back to confirm the drop took effect. Only
	// the effective IDs are checked; the saved IDs are not read back.
	if os.Geteuid() != realUID || os.Getegid() != realGID {
		return fmt.Errorf("privilege drop did not take effect: euid=%d egid=%d, want uid=%d gid=%d",
			os.Geteuid(), os.Getegid(), realUID, realGID)
	}

	return nil
}

// RemediationText describes the three supported ways to grant keyviz
// permission to read input devices without running as root, per the
// "missing privileges" user-visible error of the error-handling design.
func RemediationText() string {
	return "" +
		"keyviz needs permission to read from /dev/input/event* devices.\n" +
		"Pick one of:\n" +
		"  1. Add yourself to the 'input' group: sudo usermod -a -G input $USER (then re-login)\n" +
		"  2. Grant the binary a file capability: sudo setcap cap_dac_override=+ep /path/to/keyviz\n" +
		"  3. Run via setuid-root wrapper and let keyviz drop privileges after opening devices\n"
}
