package flames

import (
	"testing"

	"seehuhn.de/go/geom/matrix"
)

func TestApplyAffineLayout(t *testing.T) {
	m := matrix.Matrix{1, 2, 3, 4, 5, 6}
	x, y := applyAffine(m, 1, 1)
	// x' = a x + c y + e, y' = b x + d y + f
	if x != 1+3+5 || y != 2+4+6 {
		t.Fatalf("got (%v, %v)", x, y)
	}
}

func TestAffineFrom(t *testing.T) {
	m := AffineFrom(2, 2, 90, 1, 0)
	x, y := applyAffine(m, 1, 0)
	if !approxEqual(x, 1, 1e-12) || !approxEqual(y, 2, 1e-12) {
		t.Fatalf("rotated point = (%v, %v)", x, y)
	}
	if !isPostIdentity(matrix.Identity) || !isPostIdentity(matrix.Matrix{}) || isPostIdentity(m) {
		t.Fatal("isPostIdentity wrong")
	}
}

func TestIsContraction(t *testing.T) {
	if !isContraction(AffineFrom(0.5, 0.5, 30, 0, 0)) {
		t.Fatal("half scale should contract")
	}
	if isContraction(AffineFrom(0.5, 1.2, 0, 0, 0)) {
		t.Fatal("1.2 stretch should not contract")
	}
}
