package flames

import "math"

type npolarFunc struct {
	paramFunc
	parity, n Real

	vvar, vvar2, cn, absn Real
	nnz                   Real
	isOdd                 bool
}

func newNPolarFunc() VariationFunc {
	f := &npolarFunc{parity: 0, n: 1}
	f.ps = []param{{"parity", &f.parity}, {"n", &f.n}}
	return f
}

func (*npolarFunc) Name() string { return "npolar" }

func (f *npolarFunc) Init(_ *TransformationContext, _ *Layer, _ *XForm, amount Real) {
	// n is an integer parameter; keep it in int32 range so the branch pick stays valid
	n := math.Round(clamp(f.n, math.MinInt32, math.MaxInt32))
	if n == 0 || math.IsNaN(n) {
		n = 1
	}
	f.nnz = n
	f.vvar = amount / math.Pi
	f.vvar2 = f.vvar * 0.5
	f.absn = math.Abs(n)
	f.cn = 1 / n / 2
	f.isOdd = int(math.Abs(math.Round(f.parity)))%2 != 0
}

func (f *npolarFunc) Transform(ctx *TransformationContext, _ *XForm, a, dst *XYZPoint, v Real) {
	x, y := a.X, a.Y
	if !f.isOdd {
		s2 := a.PrecalcSumsq()
		if s2 == 0 {
			return
		}
		x = f.vvar * a.PrecalcAtan()
		y = f.vvar2 * math.Log(s2)
	}
	ang := (math.Atan2(y, x) + 2*math.Pi*Real(ctx.RandomInt(int(f.absn)))) / f.nnz
	r := v * math.Pow(x*x+y*y, f.cn)
	if f.isOdd {
		r *= f.parity
	}
	s, c := math.Sincos(ang)
	c *= r
	s *= r
	if f.isOdd {
		dst.X += c
		dst.Y += s
	} else {
		m := c*c + s*s
		if m == 0 {
			return
		}
		dst.X += f.vvar2 * math.Log(m)
		dst.Y += f.vvar * math.Atan2(c, s)
	}
	if ctx.PreserveZ {
		dst.Z += v * a.Z
	}
}

type parabolaFunc struct {
	paramFunc
	width, height Real
}

func newParabolaFunc() VariationFunc {
	f := &parabolaFunc{width: 1, height: 0.5}
	f.ps = []param{{"width", &f.width}, {"height", &f.height}}
	return f
}

func (*parabolaFunc) Name() string { return "parabola" }

func (f *parabolaFunc) Transform(ctx *TransformationContext, _ *XForm, a, dst *XYZPoint, v Real) {
	sr, cr := math.Sincos(a.PrecalcSqrt())
	dst.X += f.height * v * sr * sr * ctx.Random()
	dst.Y += f.width * v * cr * ctx.Random()
	if ctx.PreserveZ {
		dst.Z += v * a.Z
	}
}

func init() {
	RegisterVariation("npolar", newNPolarFunc)
	RegisterVariation("parabola", newParabolaFunc)
}
