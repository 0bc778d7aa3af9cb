package flames

import (
	"fmt"
	"math"
	"slices"
)

// dcLinearFunc is linear plus a palette coordinate taken from the position
// along a direction.
type dcLinearFunc struct {
	paramFunc
	offset, angle, scale Real

	ldcs, cosa, sina Real
}

func newDCLinearFunc() VariationFunc {
	f := &dcLinearFunc{scale: 1}
	f.ps = []param{{"offset", &f.offset}, {"angle", &f.angle}, {"scale", &f.scale}}
	return f
}

func (*dcLinearFunc) Name() string { return "dc_linear" }

func (f *dcLinearFunc) Init(*TransformationContext, *Layer, *XForm, Real) {
	f.ldcs = 1
	if f.scale != 0 {
		f.ldcs = 1 / f.scale
	}
	f.sina, f.cosa = math.Sincos(f.angle)
}

func (f *dcLinearFunc) Transform(ctx *TransformationContext, _ *XForm, a, dst *XYZPoint, v Real) {
	dst.X += v * a.X
	dst.Y += v * a.Y
	if ctx.PreserveZ {
		dst.Z += v * a.Z
	}
	c := math.Mod(math.Abs(0.5*(f.ldcs*(f.cosa*a.X+f.sina*a.Y+f.offset)+1)), 1)
	if isFinite(c) {
		dst.Color = c
	}
}

// postColorMapWFFunc samples a packed 8-bit RGB image resource at the output
// position and sets a direct color override.
type postColorMapWFFunc struct {
	paramFunc
	width, height    Real
	scaleX, scaleY   Real
	offsetX, offsetY Real
	tileX, tileY     Real

	rgb  []byte
	w, h int
}

func newPostColorMapWFFunc() VariationFunc {
	f := &postColorMapWFFunc{width: 1, height: 1, scaleX: 1, scaleY: 1, tileX: 1, tileY: 1}
	f.ps = []param{
		{"width", &f.width},
		{"height", &f.height},
		{"scale_x", &f.scaleX},
		{"scale_y", &f.scaleY},
		{"offset_x", &f.offsetX},
		{"offset_y", &f.offsetY},
		{"tile_x", &f.tileX},
		{"tile_y", &f.tileY},
	}
	return f
}

func (*postColorMapWFFunc) Name() string               { return "post_colormap_wf" }
func (*postColorMapWFFunc) Priority() int              { return PriorityPost }
func (*postColorMapWFFunc) Availability() Availability { return AvailableCPU }
func (*postColorMapWFFunc) ResourceNames() []string    { return []string{"rgb"} }

func (f *postColorMapWFFunc) ResourceValues() [][]byte { return [][]byte{slices.Clone(f.rgb)} }

func (f *postColorMapWFFunc) SetResource(name string, value []byte) error {
	if name != "rgb" {
		return fmt.Errorf("%w: %s", ErrUnknownResource, name)
	}
	f.rgb = value
	return nil
}

func (f *postColorMapWFFunc) Init(*TransformationContext, *Layer, *XForm, Real) {
	f.w, f.h = int(math.Round(f.width)), int(math.Round(f.height))
	if f.w <= 0 || f.h <= 0 || len(f.rgb) < f.w*f.h*3 {
		f.w, f.h = 0, 0
	}
}

func (f *postColorMapWFFunc) Transform(_ *TransformationContext, _ *XForm, _, dst *XYZPoint, _ Real) {
	if f.w == 0 {
		return
	}
	// map [-scale, scale] onto the image
	u := ((dst.X-f.offsetX)/f.scaleX + 1) * 0.5
	w := ((dst.Y-f.offsetY)/f.scaleY + 1) * 0.5
	if !isFinite(u) || !isFinite(w) {
		return
	}
	if math.Round(f.tileX) == 1 {
		u -= math.Floor(u)
	} else if u < 0 || u >= 1 {
		return
	}
	if math.Round(f.tileY) == 1 {
		w -= math.Floor(w)
	} else if w < 0 || w >= 1 {
		return
	}
	px := clamp(int(u*Real(f.w)), 0, f.w-1)
	py := clamp(int(w*Real(f.h)), 0, f.h-1)
	o := (py*f.w + px) * 3
	dst.RGBColor = true
	dst.RedColor = Real(f.rgb[o])
	dst.GreenColor = Real(f.rgb[o+1])
	dst.BlueColor = Real(f.rgb[o+2])
}

func init() {
	RegisterVariation("dc_linear", newDCLinearFunc)
	RegisterVariation("post_colormap_wf", newPostColorMapWFFunc)
}
