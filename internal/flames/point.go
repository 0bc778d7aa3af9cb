package flames

import "math"

// XYZPoint is the chaos game state: a 3-D position plus a palette coordinate,
// an optional direct RGB override and lazily computed polar helpers.
type XYZPoint struct {
	X, Y, Z Real
	Color   Real // palette coordinate in [0,1]

	RGBColor                        bool
	RedColor, GreenColor, BlueColor Real // 0..255, used when RGBColor is set

	validSumsq, validSqrt, validAtan, validAtanYX, validSinCos bool

	sumsq, sqrt, atan, atanYX, sinA, cosA Real
}

// Invalidate drops the cached helpers; call it after changing X or Y.
func (p *XYZPoint) Invalidate() {
	p.validSumsq = false
	p.validSqrt = false
	p.validAtan = false
	p.validAtanYX = false
	p.validSinCos = false
}

// Assign copies src into p, cached helpers included.
func (p *XYZPoint) Assign(src *XYZPoint) { *p = *src }

func (p *XYZPoint) Clear() { *p = XYZPoint{} }

// PrecalcSumsq returns x²+y².
func (p *XYZPoint) PrecalcSumsq() Real {
	if !p.validSumsq {
		p.sumsq = p.X*p.X + p.Y*p.Y
		p.validSumsq = true
	}
	return p.sumsq
}

// PrecalcSqrt returns the distance from the origin in the XY plane.
func (p *XYZPoint) PrecalcSqrt() Real {
	if !p.validSqrt {
		p.sqrt = math.Sqrt(p.PrecalcSumsq())
		p.validSqrt = true
	}
	return p.sqrt
}

// PrecalcAtan returns atan2(x, y), the flam3 "theta" angle.
func (p *XYZPoint) PrecalcAtan() Real {
	if !p.validAtan {
		p.atan = math.Atan2(p.X, p.Y)
		p.validAtan = true
	}
	return p.atan
}

// PrecalcAtanYX returns atan2(y, x), the flam3 "phi" angle.
func (p *XYZPoint) PrecalcAtanYX() Real {
	if !p.validAtanYX {
		p.atanYX = math.Atan2(p.Y, p.X)
		p.validAtanYX = true
	}
	return p.atanYX
}

func (p *XYZPoint) precalcSinCos() {
	if p.validSinCos {
		return
	}
	r := p.PrecalcSqrt()
	if r > 0 {
		p.sinA = p.X / r
		p.cosA = p.Y / r
	} else {
		p.sinA, p.cosA = 0, 1
	}
	p.validSinCos = true
}

// PrecalcSinA returns x/r.
func (p *XYZPoint) PrecalcSinA() Real {
	p.precalcSinCos()
	return p.sinA
}

// PrecalcCosA returns y/r.
func (p *XYZPoint) PrecalcCosA() Real {
	p.precalcSinCos()
	return p.cosA
}

func (p *XYZPoint) IsFinite() bool {
	return isFinite(p.X) && isFinite(p.Y) && isFinite(p.Z) && isFinite(p.Color)
}

// Equal compares the state fields and ignores cached helpers.
func (p XYZPoint) Equal(o XYZPoint) bool {
	return p.X == o.X && p.Y == o.Y && p.Z == o.Z && p.Color == o.Color &&
		p.RGBColor == o.RGBColor && p.RedColor == o.RedColor &&
		p.GreenColor == o.GreenColor && p.BlueColor == o.BlueColor
}
