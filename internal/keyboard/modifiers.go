// Copyright (c) 2025 keyviz contributors
// SPDX-License-Identifier: MIT

package keyboard

import "github.com/kvoverlay/keyviz/internal/keymap"

// ModifierTracker owns the logical modifier-set bits described in §3:
// Ctrl/Alt/Shift/Super are the OR of two physical sources each; toggle
// keys flip on the press edge and ignore release.
type ModifierTracker struct {
	physical map[string]bool
	logical  [6]bool
}

// NewModifierTracker returns a tracker with every bit clear.
func NewModifierTracker() *ModifierTracker {
	return &ModifierTracker{physical: make(map[string]bool)}
}

// Apply updates the tracker for a press or release of a modifier-class
// key name, returning the logical source it affects. ok is false for a
// non-modifier name.
func (m *ModifierTracker) Apply(name string, pressed bool) (src keymap.ModifierSource, ok bool) {
	src, ok = keymap.ModifierSourceFor(name)
	if !ok {
		return 0, false
	}

	if keymap.IsToggle(src) {
		if pressed {
			m.logical[src] = !m.logical[src]
		}
		return src, true
	}

	m.physical[name] = pressed
	m.logical[src] = m.anyPhysicalPressed(src)
	return src, true
}

func (m *ModifierTracker) anyPhysicalPressed(src keymap.ModifierSource) bool {
	for _, name := range keymap.PhysicalNames(src) {
		if m.physical[name] {
			return true
		}
	}
	return false
}

// Has reports the current logical state of a modifier source.
func (m *ModifierTracker) Has(src keymap.ModifierSource) bool {
	return m.logical[src]
}

// IsEmpty reports whether every held (non-toggle) modifier is clear.
// Toggle state (CapsLock/NumLock) does not gate combination detection
// — only Ctrl/Alt/Shift/Super do, per §4.3.
func (m *ModifierTracker) IsEmpty() bool {
	return !m.logical[keymap.Ctrl] && !m.logical[keymap.Alt] &&
		!m.logical[keymap.Shift] && !m.logical[keymap.Super]
}

// Reset clears every held modifier latch. Called when a buffer-expiry
// sweep empties the buffer, per invariant (I2).
func (m *ModifierTracker) Reset() {
	for k := range m.physical {
		delete(m.physical, k)
	}
	for i := range m.logical {
		m.logical[i] = false
	}
}

// HeldPrefix builds the combination prefix from every currently-held
// modifier, in the canonical Ctrl, Alt, Shift, Super order §4.3
// requires.
func (m *ModifierTracker) HeldPrefix() string {
	var prefix string
	for _, src := range keymap.CanonicalModifierOrder() {
		if m.logical[src] {
			prefix += keymap.ModifierGlyph(src)
		}
	}
	return prefix
}
