// Copyright (c) 2025 keyviz contributors
// SPDX-License-Identifier: MIT

// Package keyboard implements the Keypress Engine component: it
// applies the keymap, tracks modifier state, forms combinations,
// coalesces repeats, and maintains the timed display buffer described
// in §4.3. The engine is owned solely by the scheduler thread — no
// locking is required on any of its state (§5).
package keyboard

import (
	"time"

	"github.com/kvoverlay/keyviz/internal/device"
	"github.com/kvoverlay/keyviz/internal/keymap"
	"github.com/kvoverlay/keyviz/internal/logger"
)

// Engine is Component C.
type Engine struct {
	table         *keymap.Table
	modifiers     *ModifierTracker
	buffer        *Buffer
	caseSensitive bool
	log           logger.Logger
}

// New constructs an Engine over an initialized keymap table. A failed
// keymap load is fatal at startup per §4.3 — callers should surface
// table construction errors themselves rather than call New with a
// partially-built table.
func New(table *keymap.Table, caseSensitive bool, maxLength int, idleTimeout time.Duration, log logger.Logger) *Engine {
	return &Engine{
		table:         table,
		modifiers:     NewModifierTracker(),
		buffer:        NewBuffer(maxLength, idleTimeout),
		caseSensitive: caseSensitive,
		log:           log,
	}
}

// Process applies one raw key event to the engine. It reports whether
// the display buffer's rendered content changed, which the scheduler
// uses to set the dirty flag. Process never returns an error: per
// §4.3's failure semantics and §7's propagation rules, C logs and
// drops rather than surfacing errors.
func (e *Engine) Process(ev device.RawEvent) bool {
	if ev.Scancode == 0 {
		e.log.Debug("dropping reserved scancode 0 from device %s", ev.DeviceID)
		return false
	}

	name, found := e.table.Lookup(ev.Scancode, e.shiftHeld())
	if !found {
		name = keymap.FallbackName(ev.Scancode)
	}

	if _, isModifier := keymap.ModifierSourceFor(name); isModifier {
		if ev.State == device.Repeated {
			return false
		}
		e.modifiers.Apply(name, ev.State == device.Pressed)
		return false
	}

	if ev.State == device.Released {
		return false
	}

	keySymbol, namedGlyph := keymap.RenderSymbol(name, e.caseSensitive)
	symbol, category, special := buildSymbol(keySymbol, namedGlyph, e.modifiers)

	return e.buffer.Append(symbol, category, special, time.Now())
}

func (e *Engine) shiftHeld() bool {
	return e.modifiers.Has(keymap.Shift)
}

// ExpirySweep removes display-buffer records that have aged past the
// idle timeout, per invariant (I2). It reports whether the rendered
// content changed. Emptying the buffer resets every modifier latch,
// as (I2) requires.
func (e *Engine) ExpirySweep(now time.Time) bool {
	removed := e.buffer.Sweep(now)
	if removed && e.buffer.Empty() {
		e.modifiers.Reset()
	}
	return removed
}

// Text returns the current display buffer's rendered text.
func (e *Engine) Text() string {
	return e.buffer.Text()
}

// BufferLen returns the current record count, mostly for tests and diagnostics.
func (e *Engine) BufferLen() int {
	return e.buffer.Len()
}

// Records returns a defensive copy of the display buffer's current
// records, in order, for the Surface Manager's paint step.
func (e *Engine) Records() []Record {
	return e.buffer.Records()
}
