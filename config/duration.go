// Copyright (c) 2025 keyviz contributors
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"time"
)

// FormatDuration renders a duration for diagnostics only, per spec.md §6:
// "<s>.<ms3>s" when seconds > 0, else "<ms>ms".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	if d >= time.Second {
		whole := d / time.Second
		millis := (d % time.Second) / time.Millisecond
		return fmt.Sprintf("%d.%03ds", whole, millis)
	}
	return fmt.Sprintf("%dms", d/time.Millisecond)
}
