package flames

import (
	"math"
	"testing"
)

func TestFilterKernelsNormalized(t *testing.T) {
	for ft := FilterKernelType(0); ft < numFilterKernels; ft++ {
		for _, r := range []Real{0.5, 0.75, 1.5, 3} {
			k := NewFilterKernel(ft, r)
			if k.Size != 2*k.Half+1 || len(k.Weights) != k.Size*k.Size {
				t.Fatalf("%s r=%v: bad shape", ft, r)
			}
			if !approxEqual(k.Sum(), 1, 1e-9) {
				t.Fatalf("%s r=%v sums to %v", ft, r, k.Sum())
			}
			if k.At(1, 0) != k.At(-1, 0) && k.Half > 0 {
				t.Fatalf("%s not symmetric", ft)
			}
		}
	}
}

func TestFilterKernelNames(t *testing.T) {
	for ft := FilterKernelType(0); ft < numFilterKernels; ft++ {
		got, err := ParseFilterKernelType(ft.String())
		if err != nil || got != ft {
			t.Fatalf("%s: %v %v", ft, got, err)
		}
	}
	if got, err := ParseFilterKernelType(""); err != nil || got != FilterGaussian {
		t.Fatal("empty name should be gaussian")
	}
	if _, err := ParseFilterKernelType("nope"); err == nil {
		t.Fatal("unknown kernel accepted")
	}
}

func TestFilterKernelDegenerateRadius(t *testing.T) {
	for _, r := range []Real{0, -1, math.NaN()} {
		k := NewFilterKernel(FilterGaussian, r)
		if k.Size != 1 || k.At(0, 0) != 1 {
			t.Fatalf("radius %v: %+v", r, k)
		}
	}
}

func TestDensityCurveNonIncreasing(t *testing.T) {
	c := PowerDensityCurve{MinRadius: 0, MaxRadius: 3, Curve: 0.4}
	prev := c.Radius(0)
	if prev != 3 {
		t.Fatalf("empty cell radius %v", prev)
	}
	for d := 0.5; d < 1e6; d *= 1.7 {
		r := c.Radius(d)
		if r > prev+1e-12 || r < 0 || r > 3 {
			t.Fatalf("radius(%v) = %v after %v", d, r, prev)
		}
		prev = r
	}
}

func TestDensityEstimatorConservesWeight(t *testing.T) {
	const w, h = 21, 21
	cells := make([]RasterPoint, w*h)
	cells[10*w+10] = RasterPoint{Count: 1, Red: 1, Intensity: 1}
	cells[3*w+17] = RasterPoint{Count: 50, Green: 50, Intensity: 50}
	de := NewDensityEstimator(PowerDensityCurve{MaxRadius: 2, Curve: 0.4}, FilterGaussian, 1)
	out := de.Apply(w, h, cells)
	var in, got Real
	for i := range cells {
		in += cells[i].Count
		got += out[i].Count
	}
	if !approxEqual(in, got, 1e-9) {
		t.Fatalf("count %v became %v", in, got)
	}
	if out[10*w+10].Count >= 1 || out[10*w+11].Count <= 0 {
		t.Fatal("sparse cell was not spread")
	}
}
