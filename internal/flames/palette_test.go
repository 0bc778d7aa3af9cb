package flames

import "testing"

func TestGradientPalette(t *testing.T) {
	p, err := NewGradientPalette(
		PaletteStop{1, RGB{1, 1, 1}},
		PaletteStop{0, RGB{0, 0, 0}},
	)
	if err != nil {
		t.Fatal(err)
	}
	if p.Colors[0] != (RGB{0, 0, 0}) || p.Colors[PaletteSize-1] != (RGB{1, 1, 1}) {
		t.Fatalf("endpoints wrong: %+v %+v", p.Colors[0], p.Colors[PaletteSize-1])
	}
	mid := p.Lookup(0.5)
	if !approxEqual(mid.R, 0.5, 0.01) {
		t.Fatalf("mid = %+v", mid)
	}
	if p.Lookup(-3) != p.Colors[0] || p.Lookup(7) != p.Colors[PaletteSize-1] {
		t.Fatal("lookup must clamp")
	}
}

func TestGradientPaletteErrors(t *testing.T) {
	if _, err := NewGradientPalette(); err == nil {
		t.Fatal("expected error for no stops")
	}
	if _, err := NewGradientPalette(PaletteStop{Pos: 2}); err == nil {
		t.Fatal("expected error for stop outside [0,1]")
	}
}

func TestPaletteClone(t *testing.T) {
	p := DefaultPalette()
	c := p.Clone()
	c.Colors[0] = RGB{1, 0, 0}
	if p.Colors[0] == c.Colors[0] {
		t.Fatal("clone shares storage")
	}
}
