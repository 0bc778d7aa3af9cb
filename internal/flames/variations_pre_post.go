package flames

import "math"

type preBlurFunc struct{ baseFunc }

func (*preBlurFunc) Name() string  { return "pre_blur" }
func (*preBlurFunc) Priority() int { return PriorityPre }

func (*preBlurFunc) Transform(ctx *TransformationContext, _ *XForm, a, _ *XYZPoint, v Real) {
	g := v * (ctx.Random() + ctx.Random() + ctx.Random() + ctx.Random() - 2)
	s, c := math.Sincos(ctx.Random() * 2 * math.Pi)
	a.X += g * c
	a.Y += g * s
	a.Invalidate()
}

// preCircleCropFunc keeps points inside a circle and sends the rest either
// to the centre or onto a scattered rim.
type preCircleCropFunc struct {
	paramFunc
	radius, x, y, scatterArea, zero Real

	ca Real
}

func newPreCircleCropFunc() VariationFunc {
	f := &preCircleCropFunc{radius: 1, zero: 1}
	f.ps = []param{
		{"radius", &f.radius},
		{"x", &f.x},
		{"y", &f.y},
		{"scatter_area", &f.scatterArea},
		{"zero", &f.zero},
	}
	return f
}

func (*preCircleCropFunc) Name() string  { return "pre_circlecrop" }
func (*preCircleCropFunc) Priority() int { return PriorityPre }

func (f *preCircleCropFunc) Init(*TransformationContext, *Layer, *XForm, Real) {
	f.ca = clamp(f.scatterArea, -1, 1)
}

func (f *preCircleCropFunc) Transform(ctx *TransformationContext, _ *XForm, a, _ *XYZPoint, v Real) {
	a.X -= f.x
	a.Y -= f.y
	a.Z += v * a.Z
	rad := math.Hypot(a.X, a.Y)
	esc := rad > f.radius
	zero := math.Round(f.zero) == 1
	switch {
	case zero && esc:
		a.X, a.Y = 0, 0
	case esc:
		rdc := f.radius + ctx.Random()*0.5*f.ca
		s, c := math.Sincos(math.Atan2(a.Y, a.X))
		a.X += v*rdc*c + f.x
		a.Y += v*rdc*s + f.y
	default:
		a.X += v*a.X + f.x
		a.Y += v*a.Y + f.y
	}
	a.Invalidate()
}

type postZScaleWFFunc struct {
	paramFunc
	ztranslate Real
}

func newPostZScaleWFFunc() VariationFunc {
	f := &postZScaleWFFunc{}
	f.ps = []param{{"ztranslate", &f.ztranslate}}
	return f
}

func (*postZScaleWFFunc) Name() string  { return "post_zscale_wf" }
func (*postZScaleWFFunc) Priority() int { return PriorityPost }

func (f *postZScaleWFFunc) Transform(_ *TransformationContext, _ *XForm, _, dst *XYZPoint, v Real) {
	dst.Z = v*dst.Z + f.ztranslate
}

func init() {
	RegisterVariation("pre_blur", func() VariationFunc { return &preBlurFunc{} })
	RegisterVariation("pre_circlecrop", newPreCircleCropFunc)
	RegisterVariation("post_zscale_wf", newPostZScaleWFFunc)
}
