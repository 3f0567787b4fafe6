// Copyright (c) 2025 keyviz contributors
// SPDX-License-Identifier: MIT

// Package render defines the narrow text-shaping capability the
// Surface Manager paints through. The specific shaping/rasterization
// library is an external collaborator (spec §1's explicit non-goal);
// this package only pins down the interface D depends on.
package render

import (
	"image"
	"image/color"
)

// Segment is one display-buffer record's contribution to a paint: its
// rendered text plus whether it should use the special color, per
// §4.3's padding-whitespace rule.
type Segment struct {
	Text    string
	Special bool
}

// Shaper turns a sequence of segments into pixel dimensions and a
// rasterized image. Swapping the underlying text engine means
// implementing this interface, not touching the Surface Manager.
type Shaper interface {
	// Measure returns the pixel size the concatenated segments would
	// occupy if painted — step 1 of §4.4's paint step, run before any
	// buffer is allocated.
	Measure(segments []Segment) (width, height int)

	// Draw paints segments into dst starting at the origin, using
	// foreground for ordinary glyphs and special for segments marked
	// Special.
	Draw(dst *image.RGBA, segments []Segment, foreground, special color.NRGBA)
}
