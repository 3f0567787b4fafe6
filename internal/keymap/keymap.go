// Copyright (c) 2025 keyviz contributors
// SPDX-License-Identifier: MIT

// Package keymap translates Linux evdev scancodes into XKB-style key
// names, in the shape of this lineage's evdev key-code table, extended
// to cover the arrow/navigation/keypad/function-key range a
// system-wide keystroke visualizer needs.
package keymap

import "fmt"

// Table is a scancode → name lookup. The zero value is not usable;
// construct one with NewTable.
type Table struct {
	base    map[uint16]string
	shifted map[uint16]string
}

// NewTable builds the default scancode table. Returning an error
// mirrors §4.3's "keymap initialization failure is fatal" — today it
// never fails, but callers should treat construction as fallible so a
// future locale-aware table can report load errors the same way.
func NewTable() (*Table, error) {
	return &Table{base: baseNames, shifted: shiftedSymbols}, nil
}

// Lookup returns the XKB-style name for a scancode. shift reports
// whether the Shift modifier bit is currently set, which selects the
// shifted punctuation form (e.g. "1" vs "!") where one exists; letters
// are returned in their lower-case form regardless. CapsLock is not
// consulted: the table has no upper-case letter forms, and nothing
// downstream upper-cases a letter (case_sensitive only decides whether
// RenderSymbol lower-cases the name).
//
// ok is false for scancodes with no mapping; callers fall back to a
// synthetic name per §4.3 ("any key with no mapping uses its
// lower-cased XKB name").
func (t *Table) Lookup(scancode uint16, shift bool) (name string, ok bool) {
	if shift {
		if s, found := t.shifted[scancode]; found {
			return s, true
		}
	}
	name, ok = t.base[scancode]
	return name, ok
}

// FallbackName synthesizes a name for an unmapped scancode, per §4.3's
// "any key with no mapping" clause.
func FallbackName(scancode uint16) string {
	return fmt.Sprintf("key_%d", scancode)
}

// baseNames is the unshifted scancode → XKB-style name table, seeded
// from this lineage's evdev key-code map and extended with the
// standard Linux input-event-codes.h arrow/navigation/keypad/function
// range needed for a full keyboard.
var baseNames = map[uint16]string{
	1:  "esc",
	2:  "1",
	3:  "2",
	4:  "3",
	5:  "4",
	6:  "5",
	7:  "6",
	8:  "7",
	9:  "8",
	10: "9",
	11: "0",
	12: "minus",
	13: "equal",
	14: "backspace",
	15: "tab",
	16: "q",
	17: "w",
	18: "e",
	19: "r",
	20: "t",
	21: "y",
	22: "u",
	23: "i",
	24: "o",
	25: "p",
	26: "leftbrace",
	27: "rightbrace",
	28: "enter",
	29: "leftctrl",
	30: "a",
	31: "s",
	32: "d",
	33: "f",
	34: "g",
	35: "h",
	36: "j",
	37: "k",
	38: "l",
	39: "semicolon",
	40: "apostrophe",
	41: "grave",
	42: "leftshift",
	43: "backslash",
	44: "z",
	45: "x",
	46: "c",
	47: "v",
	48: "b",
	49: "n",
	50: "m",
	51: "comma",
	52: "dot",
	53: "slash",
	54: "rightshift",
	55: "kpasterisk",
	56: "leftalt",
	57: "space",
	58: "capslock",
	59: "f1",
	60: "f2",
	61: "f3",
	62: "f4",
	63: "f5",
	64: "f6",
	65: "f7",
	66: "f8",
	67: "f9",
	68: "f10",
	69: "numlock",
	70: "scrolllock",
	71: "kp7",
	72: "kp8",
	73: "kp9",
	74: "kpminus",
	75: "kp4",
	76: "kp5",
	77: "kp6",
	78: "kpplus",
	79: "kp1",
	80: "kp2",
	81: "kp3",
	82: "kp0",
	83: "kpdot",
	87: "f11",
	88: "f12",
	96: "kpenter",
	97: "rightctrl",
	98: "kpslash",
	99: "sysrq",
	100: "rightalt",
	102: "home",
	103: "up",
	104: "pageup",
	105: "left",
	106: "right",
	107: "end",
	108: "down",
	109: "pagedown",
	110: "insert",
	111: "delete",
	119: "pause",
	125: "leftmeta",
	126: "rightmeta",
	127: "compose",
}

// shiftedSymbols gives the Shift-modified glyph for scancodes whose
// shifted form is a different punctuation character. Letters have no
// entry here, so a shifted letter keeps its lower-case name.
var shiftedSymbols = map[uint16]string{
	2:  "!",
	3:  "@",
	4:  "#",
	5:  "$",
	6:  "%",
	7:  "^",
	8:  "&",
	9:  "*",
	10: "(",
	11: ")",
	12: "_",
	13: "+",
	26: "{",
	27: "}",
	39: ":",
	40: "\"",
	41: "~",
	43: "|",
	51: "<",
	52: ">",
	53: "?",
}
