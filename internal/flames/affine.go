package flames

import (
	"math"

	"seehuhn.de/go/geom/matrix"
)

// Affine coefficients use the PDF layout of matrix.Matrix:
// x' = m[0]*x + m[2]*y + m[4], y' = m[1]*x + m[3]*y + m[5].

func applyAffine(m matrix.Matrix, x, y Real) (Real, Real) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// isPostIdentity reports whether a post transform can be skipped; the zero
// matrix counts as "not configured".
func isPostIdentity(m matrix.Matrix) bool {
	return m == matrix.Identity || m == matrix.Matrix{}
}

// AffineFrom builds coefficients that scale, rotate (degrees, counter
// clockwise) and then translate.
func AffineFrom(scaleX, scaleY, rotDeg, tx, ty Real) matrix.Matrix {
	a := rotDeg * math.Pi / 180
	c, s := math.Cos(a), math.Sin(a)
	return matrix.Matrix{
		c * scaleX, s * scaleX,
		-s * scaleY, c * scaleY,
		tx, ty,
	}
}

// isContraction reports whether the linear part shrinks every direction,
// used by the config layer to warn about attractors that may diverge.
func isContraction(m matrix.Matrix) bool {
	// largest singular value of [[a c][b d]]
	a, b, c, d := m[0], m[1], m[2], m[3]
	s1 := a*a + b*b + c*c + d*d
	s2 := math.Sqrt(sqr(a*a+c*c-b*b-d*d) + 4*sqr(a*b+c*d))
	return math.Sqrt((s1+s2)/2) < 1
}
