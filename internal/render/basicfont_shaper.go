// Copyright (c) 2025 keyviz contributors
// SPDX-License-Identifier: MIT

package render

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// BasicFontShaper implements Shaper over golang.org/x/image's built-in
// fixed-width bitmap face, chosen as the default text engine per this
// lineage's reliance on the golang.org/x/image module family — it
// needs no external font file and has no shaping ambiguity, at the
// cost of no real internationalization or kerning.
type BasicFontShaper struct {
	face font.Face
	pad  int
}

// NewBasicFontShaper builds a shaper over basicfont.Face7x13, with pad
// pixels of breathing room on every edge of the measured/drawn area.
func NewBasicFontShaper() *BasicFontShaper {
	return &BasicFontShaper{face: basicfont.Face7x13, pad: 4}
}

func (s *BasicFontShaper) Measure(segments []Segment) (width, height int) {
	var advance fixed.Int26_6
	for _, seg := range segments {
		a := font.MeasureString(s.face, seg.Text)
		advance += a
	}
	w := advance.Ceil()
	if w <= 0 {
		w = 1
	}
	metrics := s.face.Metrics()
	h := metrics.Height.Ceil()
	if h <= 0 {
		h = 1
	}
	return w + 2*s.pad, h + 2*s.pad
}

func (s *BasicFontShaper) Draw(dst *image.RGBA, segments []Segment, foreground, special color.NRGBA) {
	metrics := s.face.Metrics()
	baseline := s.pad + metrics.Ascent.Ceil()

	x := fixed.I(s.pad)
	y := fixed.I(baseline)

	for _, seg := range segments {
		col := foreground
		if seg.Special {
			col = special
		}
		drawer := &font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(col),
			Face: s.face,
			Dot:  fixed.Point26_6{X: x, Y: y},
		}
		drawer.DrawString(seg.Text)
		x = drawer.Dot.X
	}
}
