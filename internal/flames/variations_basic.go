package flames

import "math"

type kernelFn func(ctx *TransformationContext, a, dst *XYZPoint, v Real)

// simpleFunc wraps a parameterless kernel. Unless ownZ is set the incoming Z
// is carried through when the context asks for it.
type simpleFunc struct {
	baseFunc
	name string
	fn   kernelFn
	ownZ bool
}

func (f *simpleFunc) Name() string { return f.name }

func (f *simpleFunc) Transform(ctx *TransformationContext, _ *XForm, a, dst *XYZPoint, v Real) {
	f.fn(ctx, a, dst, v)
	if !f.ownZ && ctx.PreserveZ {
		dst.Z += v * a.Z
	}
}

type linearFunc struct{ baseFunc }

func (*linearFunc) Name() string { return "linear" }

func (*linearFunc) Transform(ctx *TransformationContext, _ *XForm, a, dst *XYZPoint, v Real) {
	dst.X += v * a.X
	dst.Y += v * a.Y
	if ctx.PreserveZ {
		dst.Z += v * a.Z
	}
}

type juliaFunc struct{ baseFunc }

func (*juliaFunc) Name() string { return "julia" }

func (*juliaFunc) Transform(ctx *TransformationContext, _ *XForm, a, dst *XYZPoint, v Real) {
	ang := 0.5 * a.PrecalcAtanYX()
	if ctx.RandomInt(2) == 1 {
		ang += math.Pi
	}
	r := v * math.Sqrt(a.PrecalcSqrt())
	dst.X += r * math.Cos(ang)
	dst.Y += r * math.Sin(ang)
	if ctx.PreserveZ {
		dst.Z += v * a.Z
	}
}

func linear3D(_ *TransformationContext, a, dst *XYZPoint, v Real) {
	dst.X += v * a.X
	dst.Y += v * a.Y
	dst.Z += v * a.Z
}

func sinusoidal(_ *TransformationContext, a, dst *XYZPoint, v Real) {
	dst.X += v * math.Sin(a.X)
	dst.Y += v * math.Sin(a.Y)
}

func spherical(_ *TransformationContext, a, dst *XYZPoint, v Real) {
	r := v / (a.PrecalcSumsq() + smallEpsilon)
	dst.X += r * a.X
	dst.Y += r * a.Y
}

func swirl(_ *TransformationContext, a, dst *XYZPoint, v Real) {
	r2 := a.PrecalcSumsq()
	s, c := math.Sincos(r2)
	dst.X += v * (s*a.X - c*a.Y)
	dst.Y += v * (c*a.X + s*a.Y)
}

func horseshoe(_ *TransformationContext, a, dst *XYZPoint, v Real) {
	r := v / (a.PrecalcSqrt() + smallEpsilon)
	dst.X += r * (a.X - a.Y) * (a.X + a.Y)
	dst.Y += r * 2 * a.X * a.Y
}

func polar(_ *TransformationContext, a, dst *XYZPoint, v Real) {
	dst.X += v * a.PrecalcAtan() / math.Pi
	dst.Y += v * (a.PrecalcSqrt() - 1)
}

func handkerchief(_ *TransformationContext, a, dst *XYZPoint, v Real) {
	r, t := a.PrecalcSqrt(), a.PrecalcAtan()
	dst.X += v * r * math.Sin(t+r)
	dst.Y += v * r * math.Cos(t-r)
}

func heart(_ *TransformationContext, a, dst *XYZPoint, v Real) {
	r := a.PrecalcSqrt()
	s, c := math.Sincos(r * a.PrecalcAtan())
	dst.X += v * r * s
	dst.Y -= v * r * c
}

func disc(_ *TransformationContext, a, dst *XYZPoint, v Real) {
	t := a.PrecalcAtan() / math.Pi
	s, c := math.Sincos(math.Pi * a.PrecalcSqrt())
	dst.X += v * t * s
	dst.Y += v * t * c
}

func spiral(_ *TransformationContext, a, dst *XYZPoint, v Real) {
	r := a.PrecalcSqrt() + smallEpsilon
	s, c := math.Sincos(r)
	r1 := v / r
	dst.X += r1 * (a.PrecalcCosA() + s)
	dst.Y += r1 * (a.PrecalcSinA() - c)
}

func hyperbolic(_ *TransformationContext, a, dst *XYZPoint, v Real) {
	r := a.PrecalcSqrt() + smallEpsilon
	dst.X += v * a.PrecalcSinA() / r
	dst.Y += v * a.PrecalcCosA() * r
}

func diamond(_ *TransformationContext, a, dst *XYZPoint, v Real) {
	s, c := math.Sincos(a.PrecalcSqrt())
	dst.X += v * a.PrecalcSinA() * c
	dst.Y += v * a.PrecalcCosA() * s
}

func ex(_ *TransformationContext, a, dst *XYZPoint, v Real) {
	r, t := a.PrecalcSqrt(), a.PrecalcAtan()
	n0 := math.Sin(t + r)
	n1 := math.Cos(t - r)
	m0 := n0 * n0 * n0 * r
	m1 := n1 * n1 * n1 * r
	dst.X += v * (m0 + m1)
	dst.Y += v * (m0 - m1)
}

func bent(_ *TransformationContext, a, dst *XYZPoint, v Real) {
	nx, ny := a.X, a.Y
	if nx < 0 {
		nx *= 2
	}
	if ny < 0 {
		ny /= 2
	}
	dst.X += v * nx
	dst.Y += v * ny
}

func fisheye(_ *TransformationContext, a, dst *XYZPoint, v Real) {
	r := 2 * v / (a.PrecalcSqrt() + 1)
	dst.X += r * a.Y
	dst.Y += r * a.X
}

func exponential(_ *TransformationContext, a, dst *XYZPoint, v Real) {
	d := v * math.Exp(a.X-1)
	s, c := math.Sincos(math.Pi * a.Y)
	dst.X += d * c
	dst.Y += d * s
}

func power(_ *TransformationContext, a, dst *XYZPoint, v Real) {
	sa := a.PrecalcSinA()
	r := v * math.Pow(a.PrecalcSqrt(), sa)
	dst.X += r * a.PrecalcCosA()
	dst.Y += r * sa
}

func cosine(_ *TransformationContext, a, dst *XYZPoint, v Real) {
	s, c := math.Sincos(a.X * math.Pi)
	dst.X += v * c * math.Cosh(a.Y)
	dst.Y -= v * s * math.Sinh(a.Y)
}

func bubble(_ *TransformationContext, a, dst *XYZPoint, v Real) {
	r := 0.25*a.PrecalcSumsq() + 1
	t := v / r
	dst.X += t * a.X
	dst.Y += t * a.Y
	dst.Z += v * (2/r - 1)
}

func cylinder(_ *TransformationContext, a, dst *XYZPoint, v Real) {
	dst.X += v * math.Sin(a.X)
	dst.Y += v * a.Y
}

func blur(ctx *TransformationContext, _, dst *XYZPoint, v Real) {
	s, c := math.Sincos(ctx.Random() * 2 * math.Pi)
	r := v * ctx.Random()
	dst.X += r * c
	dst.Y += r * s
}

func gaussianBlur(ctx *TransformationContext, _, dst *XYZPoint, v Real) {
	s, c := math.Sincos(ctx.Random() * 2 * math.Pi)
	r := v * (ctx.Random() + ctx.Random() + ctx.Random() + ctx.Random() - 2)
	dst.X += r * c
	dst.Y += r * s
}

func noise(ctx *TransformationContext, a, dst *XYZPoint, v Real) {
	s, c := math.Sincos(ctx.Random() * 2 * math.Pi)
	r := v * ctx.Random()
	dst.X += a.X * r * c
	dst.Y += a.Y * r * s
}

func sec(_ *TransformationContext, a, dst *XYZPoint, v Real) {
	d := math.Cos(2*a.X) + math.Cosh(2*a.Y)
	if d == 0 {
		return
	}
	den := 2 / d
	s, c := math.Sincos(a.X)
	dst.X += v * den * c * math.Cosh(a.Y)
	dst.Y += v * den * s * math.Sinh(a.Y)
}

func zscale(_ *TransformationContext, a, dst *XYZPoint, v Real) {
	dst.Z += v * a.Z
}

func ztranslate(_ *TransformationContext, _, dst *XYZPoint, v Real) {
	dst.Z += v
}

func init() {
	RegisterVariation("linear", func() VariationFunc { return &linearFunc{} })
	RegisterVariation("julia", func() VariationFunc { return &juliaFunc{} })
	for name, fn := range map[string]kernelFn{
		"sinusoidal":    sinusoidal,
		"spherical":     spherical,
		"swirl":         swirl,
		"horseshoe":     horseshoe,
		"polar":         polar,
		"handkerchief":  handkerchief,
		"heart":         heart,
		"disc":          disc,
		"spiral":        spiral,
		"hyperbolic":    hyperbolic,
		"diamond":       diamond,
		"ex":            ex,
		"bent":          bent,
		"fisheye":       fisheye,
		"exponential":   exponential,
		"power":         power,
		"cosine":        cosine,
		"cylinder":      cylinder,
		"blur":          blur,
		"gaussian_blur": gaussianBlur,
		"noise":         noise,
		"sec":           sec,
	} {
		RegisterVariation(name, func() VariationFunc { return &simpleFunc{name: name, fn: fn} })
	}
	for name, fn := range map[string]kernelFn{
		"linear3D":   linear3D,
		"bubble":     bubble,
		"zscale":     zscale,
		"ztranslate": ztranslate,
	} {
		RegisterVariation(name, func() VariationFunc { return &simpleFunc{name: name, fn: fn, ownZ: true} })
	}
}
