// Copyright (c) 2025 keyviz contributors
// SPDX-License-Identifier: MIT

package keyboard

import "github.com/kvoverlay/keyviz/internal/keymap"

// buildSymbol assembles the final rendered symbol for a non-modifier
// press: the bare key symbol when no modifier is held, or the
// modifier-prefixed combination form per §4.3 otherwise. It also
// returns the category and the is_special flag, computed from the
// final rendered string's padding per §4.3's "padding whitespace is
// the mechanism" rule.
func buildSymbol(keySymbol string, keyIsNamedGlyph bool, mods *ModifierTracker) (symbol string, category Category, special bool) {
	if !mods.IsEmpty() {
		symbol = mods.HeldPrefix() + keySymbol
		return symbol, Combination, keymap.HasPadding(symbol)
	}

	if keyIsNamedGlyph {
		return keySymbol, Special, keymap.HasPadding(keySymbol)
	}
	return keySymbol, Character, keymap.HasPadding(keySymbol)
}
