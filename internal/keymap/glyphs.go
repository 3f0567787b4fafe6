// Copyright (c) 2025 keyviz contributors
// SPDX-License-Identifier: MIT

package keymap

import "strings"

// ModifierSource enumerates the physical keys that feed a logical
// modifier bit. Ctrl/Shift/Alt/Super each have two sources (left and
// right); the logical bit is their OR, per §3's modifier-set model.
type ModifierSource int

const (
	Ctrl ModifierSource = iota
	Alt
	Shift
	Super
	CapsLock
	NumLock
)

// sourceNames maps every keymap name that drives a modifier bit to the
// logical ModifierSource it belongs to.
var sourceNames = map[string]ModifierSource{
	"leftctrl":   Ctrl,
	"rightctrl":  Ctrl,
	"leftalt":    Alt,
	"rightalt":   Alt,
	"leftshift":  Shift,
	"rightshift": Shift,
	"leftmeta":   Super,
	"rightmeta":  Super,
	"capslock":   CapsLock,
	"numlock":    NumLock,
}

// physicalNames is the reverse of sourceNames: every keymap name that
// feeds a given logical modifier.
var physicalNames = map[ModifierSource][]string{
	Ctrl:     {"leftctrl", "rightctrl"},
	Alt:      {"leftalt", "rightalt"},
	Shift:    {"leftshift", "rightshift"},
	Super:    {"leftmeta", "rightmeta"},
	CapsLock: {"capslock"},
	NumLock:  {"numlock"},
}

// PhysicalNames returns every keymap name that feeds the logical
// modifier src, e.g. Ctrl → ["leftctrl", "rightctrl"].
func PhysicalNames(src ModifierSource) []string {
	return physicalNames[src]
}

// ModifierSourceFor reports which logical modifier, if any, a keymap
// name drives.
func ModifierSourceFor(name string) (ModifierSource, bool) {
	src, ok := sourceNames[name]
	return src, ok
}

// IsToggle reports whether a modifier source flips its bit on the
// press edge and ignores release (CapsLock, NumLock), as opposed to
// the held sources (Ctrl/Alt/Shift/Super).
func IsToggle(src ModifierSource) bool {
	return src == CapsLock || src == NumLock
}

// namedGlyphs remaps named keys to their display glyphs per §4.3.
// The padding whitespace around several entries is significant: the
// render layer uses its presence to pick the special-glyph color.
var namedGlyphs = map[string]string{
	"enter":     "⏎",
	"kpenter":   "⏎",
	"space":     "␣",
	"backspace": "⌫",
	"esc":       " Esc ",
	"up":        "⇧",
	"down":      "⇩",
	"left":      "⇦",
	"right":     "⇨",
	"tab":       "Tab ",
	"capslock":  "Caps ",
	"f1":        "F1 ",
	"f2":        "F2 ",
	"f3":        "F3 ",
	"f4":        "F4 ",
	"f5":        "F5 ",
	"f6":        "F6 ",
	"f7":        "F7 ",
	"f8":        "F8 ",
	"f9":        "F9 ",
	"f10":       "F10 ",
	"f11":       "F11 ",
	"f12":       "F12 ",
}

// modifierGlyphs gives the combination-prefix form for each logical
// modifier, in the canonical order Ctrl, Alt, Shift, Super that §4.3
// requires combination symbols to be built in.
var modifierGlyphs = [...]struct {
	src   ModifierSource
	glyph string
}{
	{Ctrl, " Ctrl+"},
	{Alt, " Alt+"},
	{Shift, " Shift+"},
	{Super, " Super+"},
}

// ModifierGlyph returns the combination-prefix glyph for a logical
// modifier source.
func ModifierGlyph(src ModifierSource) string {
	for _, m := range modifierGlyphs {
		if m.src == src {
			return m.glyph
		}
	}
	return ""
}

// CanonicalModifierOrder returns the four held modifier sources in the
// fixed order combination symbols are built in.
func CanonicalModifierOrder() [4]ModifierSource {
	return [4]ModifierSource{Ctrl, Alt, Shift, Super}
}

// RenderSymbol turns a keymap name into its display form: the named
// remap table if present, otherwise the lower-cased name unless
// caseSensitive is set. special reports whether name was found in the
// named-glyph table; whether the result carries padding whitespace is
// what HasPadding reports.
func RenderSymbol(name string, caseSensitive bool) (symbol string, special bool) {
	if g, ok := namedGlyphs[name]; ok {
		return g, true
	}
	if caseSensitive {
		return name, false
	}
	return strings.ToLower(name), false
}

// HasPadding reports whether s carries the leading/trailing whitespace
// §4.3 uses to mark a rendered symbol as a special glyph.
func HasPadding(s string) bool {
	return len(s) > 0 && (s[0] == ' ' || s[len(s)-1] == ' ')
}

// Subscript renders n in subscript digits, for the repeat-count suffix
// §4.3 appends once repeat_count ≥ 3 (e.g. "ₓ" + Subscript(5) = "ₓ₅").
func Subscript(n uint32) string {
	const digits = "₀₁₂₃₄₅₆₇₈₉"
	if n == 0 {
		return "₀"
	}
	var stack []rune
	for n > 0 {
		d := n % 10
		stack = append(stack, []rune(digits)[d])
		n /= 10
	}
	out := make([]rune, len(stack))
	for i, r := range stack {
		out[len(stack)-1-i] = r
	}
	return string(out)
}
