package flames

import (
	"math"
	"testing"
)

func approxEqual(a, b, eps Real) bool { return math.Abs(a-b) <= eps }

func mustVariation(t *testing.T, xf *XForm, name string, amount Real) *Variation {
	t.Helper()
	v, err := xf.AddVariation(name, amount)
	if err != nil {
		t.Fatalf("AddVariation(%s): %v", name, err)
	}
	return v
}

// contractingFlame has one xform pulling every point towards (cx, cy), with
// the camera centred there.
func contractingFlame(t *testing.T, cx, cy Real, w, h int) *Flame {
	t.Helper()
	f := NewFlame()
	f.Width, f.Height = w, h
	f.CentreX, f.CentreY = cx, cy
	f.PixelsPerUnit = 10
	f.SampleDensity = 10
	f.SpatialFilterRadius = 0
	xf := NewXForm()
	xf.Coeffs = AffineFrom(0.5, 0.5, 0, 0.5*cx, 0.5*cy)
	xf.Color = 1
	mustVariation(t, xf, "linear", 1)
	f.FirstLayer().AddXForm(xf)
	return f
}

// sierpinskiFlame is the classic three map triangle filling a unit square.
func sierpinskiFlame(t *testing.T, w, h int) *Flame {
	t.Helper()
	f := NewFlame()
	f.Width, f.Height = w, h
	f.CentreX, f.CentreY = 0.5, 0.5
	f.PixelsPerUnit = Real(min(w, h)) * 0.9
	f.SampleDensity = 20
	l := f.FirstLayer()
	for i, off := range [][2]Real{{0, 0}, {0.5, 0}, {0.25, 0.5}} {
		xf := NewXForm()
		xf.Coeffs = AffineFrom(0.5, 0.5, 0, off[0], off[1])
		xf.Color = Real(i) / 2
		mustVariation(t, xf, "linear", 1)
		l.AddXForm(xf)
	}
	return f
}
