package flames

import (
	"fmt"
	"maps"
	"sort"

	"seehuhn.de/go/geom/matrix"
)

// DrawMode decides whether points produced by an xform are plotted.
type DrawMode int

const (
	DrawNormal DrawMode = iota
	DrawHidden
	DrawOpaque // plotted with probability Opacity
)

func (m DrawMode) String() string {
	switch m {
	case DrawNormal:
		return "normal"
	case DrawHidden:
		return "hidden"
	case DrawOpaque:
		return "opaque"
	}
	return fmt.Sprintf("DrawMode(%d)", int(m))
}

// ParseDrawMode is the inverse of String; the empty string is DrawNormal.
func ParseDrawMode(s string) (DrawMode, error) {
	switch s {
	case "", "normal":
		return DrawNormal, nil
	case "hidden":
		return DrawHidden, nil
	case "opaque":
		return DrawOpaque, nil
	}
	return DrawNormal, fmt.Errorf("unknown draw mode %q", s)
}

// XForm is one map of the function system: a pre affine, a weighted sum of
// variations and an optional post affine.
type XForm struct {
	Name            string
	Coeffs          matrix.Matrix
	PostCoeffs      matrix.Matrix
	Weight          Real
	Color           Real
	ColorSymmetry   Real
	Opacity         Real
	DrawMode        DrawMode
	AntialiasAmount Real
	AntialiasRadius Real
	Variations      []*Variation

	// modifiedWeights[j] replaces the weight of xform j as the successor of this one.
	modifiedWeights map[int]Real

	// filled by prepare
	preVars, vars, postVars []*Variation
	c1, c2                  Real
	hasPost                 bool
}

// NewXForm returns an identity xform with weight 1 and no variations.
func NewXForm() *XForm {
	return &XForm{
		Coeffs:     matrix.Identity,
		PostCoeffs: matrix.Identity,
		Weight:     1,
		Opacity:    1,
	}
}

// AddVariation appends a registered kernel with the given amount.
func (xf *XForm) AddVariation(name string, amount Real) (*Variation, error) {
	v, err := NewVariation(name, amount)
	if err != nil {
		return nil, err
	}
	xf.Variations = append(xf.Variations, v)
	return v, nil
}

// SetModifiedWeight overrides the weight of xform index `to` when it is
// chosen after this xform.
func (xf *XForm) SetModifiedWeight(to int, w Real) {
	if xf.modifiedWeights == nil {
		xf.modifiedWeights = make(map[int]Real)
	}
	xf.modifiedWeights[to] = w
}

func (xf *XForm) ModifiedWeight(to int) (Real, bool) {
	w, ok := xf.modifiedWeights[to]
	return w, ok
}

func (xf *XForm) ClearModifiedWeight(to int) { delete(xf.modifiedWeights, to) }

// ModifiedWeights returns a copy of the overrides.
func (xf *XForm) ModifiedWeights() map[int]Real { return maps.Clone(xf.modifiedWeights) }

// Clone deep copies the xform, creating fresh kernel instances.
func (xf *XForm) Clone() (*XForm, error) {
	c := *xf
	c.modifiedWeights = maps.Clone(xf.modifiedWeights)
	c.Variations = make([]*Variation, len(xf.Variations))
	for i, v := range xf.Variations {
		nv, err := v.Clone()
		if err != nil {
			return nil, fmt.Errorf("xform %q variation %d: %w", xf.Name, i, err)
		}
		c.Variations[i] = nv
	}
	c.preVars, c.vars, c.postVars = nil, nil, nil
	return &c, nil
}

// prepare splits variations by priority, initializes kernels and caches the
// color blend coefficients.
func (xf *XForm) prepare(ctx *TransformationContext, layer *Layer) error {
	xf.preVars, xf.vars, xf.postVars = xf.preVars[:0], xf.vars[:0], xf.postVars[:0]
	for _, v := range xf.Variations {
		if v == nil || v.Func == nil {
			return fmt.Errorf("%w: xform %q has an empty variation", ErrUnknownVariation, xf.Name)
		}
		v.Func.Init(ctx, layer, xf, v.Amount)
		switch p := v.Func.Priority(); {
		case p < 0:
			xf.preVars = append(xf.preVars, v)
		case p > 0:
			xf.postVars = append(xf.postVars, v)
		default:
			xf.vars = append(xf.vars, v)
		}
	}
	byPriority := func(s []*Variation) {
		sort.SliceStable(s, func(i, j int) bool { return s[i].Func.Priority() < s[j].Func.Priority() })
	}
	byPriority(xf.preVars)
	byPriority(xf.postVars)
	xf.c1 = (1 + xf.ColorSymmetry) / 2
	xf.c2 = xf.Color * (1 - xf.ColorSymmetry) / 2
	xf.hasPost = !isPostIdentity(xf.PostCoeffs)
	return nil
}

// transformPoint maps src into dst, using affineT and varT as scratch.
// src and dst may be the same point.
func (xf *XForm) transformPoint(ctx *TransformationContext, affineT, varT, src, dst *XYZPoint) {
	affineT.Color = src.Color*xf.c1 + xf.c2
	affineT.RGBColor = src.RGBColor
	affineT.RedColor, affineT.GreenColor, affineT.BlueColor = src.RedColor, src.GreenColor, src.BlueColor
	affineT.X, affineT.Y = applyAffine(xf.Coeffs, src.X, src.Y)
	affineT.Z = src.Z
	affineT.Invalidate()

	varT.X, varT.Y, varT.Z = 0, 0, 0
	varT.Color = affineT.Color
	varT.RGBColor = affineT.RGBColor
	varT.RedColor, varT.GreenColor, varT.BlueColor = affineT.RedColor, affineT.GreenColor, affineT.BlueColor
	varT.Invalidate()

	for _, v := range xf.preVars {
		v.Func.Transform(ctx, xf, affineT, varT, v.Amount)
		affineT.Invalidate()
	}
	if len(xf.vars) == 0 {
		varT.X, varT.Y, varT.Z = affineT.X, affineT.Y, affineT.Z
	} else {
		for _, v := range xf.vars {
			v.Func.Transform(ctx, xf, affineT, varT, v.Amount)
		}
	}
	for _, v := range xf.postVars {
		varT.Invalidate()
		v.Func.Transform(ctx, xf, varT, varT, v.Amount)
	}

	dst.Color = varT.Color
	dst.RGBColor = varT.RGBColor
	dst.RedColor, dst.GreenColor, dst.BlueColor = varT.RedColor, varT.GreenColor, varT.BlueColor
	if xf.hasPost {
		dst.X, dst.Y = applyAffine(xf.PostCoeffs, varT.X, varT.Y)
	} else {
		dst.X, dst.Y = varT.X, varT.Y
	}
	dst.Z = varT.Z
	dst.Invalidate()
}
