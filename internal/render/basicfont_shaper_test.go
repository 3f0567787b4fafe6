package render

import (
	"image"
	"image/color"
	"testing"
)

func TestMeasureGrowsWithText(t *testing.T) {
	s := NewBasicFontShaper()

	wShort, hShort := s.Measure([]Segment{{Text: "a"}})
	wLong, _ := s.Measure([]Segment{{Text: "abcdefgh"}})

	if wLong <= wShort {
		t.Errorf("expected longer text to measure wider: short=%d long=%d", wShort, wLong)
	}
	if hShort <= 0 {
		t.Errorf("expected positive height, got %d", hShort)
	}
}

func TestMeasureEmptyIsNonZero(t *testing.T) {
	s := NewBasicFontShaper()
	w, h := s.Measure(nil)
	if w <= 0 || h <= 0 {
		t.Errorf("Measure(nil) = (%d, %d), want positive dimensions for padding", w, h)
	}
}

func TestDrawPaintsSpecialSegmentsInSpecialColor(t *testing.T) {
	s := NewBasicFontShaper()
	w, h := s.Measure([]Segment{{Text: " Esc ", Special: true}})
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	fg := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	special := color.NRGBA{R: 10, G: 20, B: 30, A: 255}
	s.Draw(dst, []Segment{{Text: " Esc ", Special: true}}, fg, special)

	found := false
	for y := 0; y < h && !found; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := dst.At(x, y).RGBA()
			if uint8(r>>8) == special.R && uint8(g>>8) == special.G && uint8(b>>8) == special.B && a != 0 {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("expected at least one pixel painted in the special color")
	}
}
