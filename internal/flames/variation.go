package flames

import (
	"bytes"
	"fmt"
	"slices"
)

// Availability tells which back ends can evaluate a kernel.
type Availability uint8

const (
	AvailableCPU Availability = 1 << iota
	AvailableGPU
)

// Priority classes. Pre kernels rewrite the affine point, post kernels the
// accumulated output.
const (
	PriorityPre    = -1
	PriorityNormal = 0
	PriorityPost   = 1
)

// VariationFunc is a non-linear kernel. Transform adds amount-weighted output
// into dst (normal kernels) or rewrites its argument in place (pre and post
// kernels, which receive the same point as affine and dst for post).
type VariationFunc interface {
	Name() string
	Transform(ctx *TransformationContext, xf *XForm, affine, dst *XYZPoint, amount Real)
	Init(ctx *TransformationContext, layer *Layer, xf *XForm, amount Real)
	ParameterNames() []string
	ParameterValues() []Real
	SetParameter(name string, value Real) error
	ResourceNames() []string
	ResourceValues() [][]byte
	SetResource(name string, value []byte) error
	Priority() int
	Availability() Availability
}

// baseFunc gives parameterless kernels their defaults.
type baseFunc struct{}

func (baseFunc) Init(*TransformationContext, *Layer, *XForm, Real) {}
func (baseFunc) ParameterNames() []string                          { return nil }
func (baseFunc) ParameterValues() []Real                           { return nil }
func (baseFunc) SetParameter(name string, _ Real) error {
	return fmt.Errorf("%w: %s", ErrUnknownParameter, name)
}
func (baseFunc) ResourceNames() []string    { return nil }
func (baseFunc) ResourceValues() [][]byte   { return nil }
func (baseFunc) Priority() int              { return PriorityNormal }
func (baseFunc) Availability() Availability { return AvailableCPU | AvailableGPU }
func (baseFunc) SetResource(name string, _ []byte) error {
	return fmt.Errorf("%w: %s", ErrUnknownResource, name)
}

type param struct {
	name string
	ptr  *Real
}

// paramFunc stores named parameters as pointers into the embedding kernel.
type paramFunc struct {
	baseFunc
	ps []param
}

func (f *paramFunc) ParameterNames() []string {
	out := make([]string, len(f.ps))
	for i, p := range f.ps {
		out[i] = p.name
	}
	return out
}

func (f *paramFunc) ParameterValues() []Real {
	out := make([]Real, len(f.ps))
	for i, p := range f.ps {
		out[i] = *p.ptr
	}
	return out
}

func (f *paramFunc) SetParameter(name string, value Real) error {
	for _, p := range f.ps {
		if p.name == name {
			*p.ptr = value
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownParameter, name)
}

// Variation is a kernel with its blend amount inside an XForm.
type Variation struct {
	Func   VariationFunc
	Amount Real
}

// NewVariation looks name up in the registry.
func NewVariation(name string, amount Real) (*Variation, error) {
	fn, err := NewVariationFunc(name)
	if err != nil {
		return nil, err
	}
	return &Variation{Func: fn, Amount: amount}, nil
}

// Clone makes a fresh kernel instance through the registry and copies
// parameters and resources over.
func (v *Variation) Clone() (*Variation, error) {
	if v == nil || v.Func == nil {
		return nil, fmt.Errorf("%w: nil kernel", ErrUnknownVariation)
	}
	fn, err := NewVariationFunc(v.Func.Name())
	if err != nil {
		return nil, err
	}
	vals := v.Func.ParameterValues()
	for i, name := range v.Func.ParameterNames() {
		if err := fn.SetParameter(name, vals[i]); err != nil {
			return nil, err
		}
	}
	res := v.Func.ResourceValues()
	for i, name := range v.Func.ResourceNames() {
		if err := fn.SetResource(name, slices.Clone(res[i])); err != nil {
			return nil, err
		}
	}
	return &Variation{Func: fn, Amount: v.Amount}, nil
}

func (v *Variation) String() string {
	if v.Func == nil {
		return fmt.Sprintf("<nil>(%g)", v.Amount)
	}
	return fmt.Sprintf("%s(%g)", v.Func.Name(), v.Amount)
}

// Equal reports whether both variations use the same kernel with the same
// amount, parameters and resources.
func (v *Variation) Equal(o *Variation) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.Func == nil || o.Func == nil {
		return v.Func == o.Func && v.Amount == o.Amount
	}
	return v.Amount == o.Amount &&
		v.Func.Name() == o.Func.Name() &&
		slices.Equal(v.Func.ParameterNames(), o.Func.ParameterNames()) &&
		slices.Equal(v.Func.ParameterValues(), o.Func.ParameterValues()) &&
		slices.Equal(v.Func.ResourceNames(), o.Func.ResourceNames()) &&
		slices.EqualFunc(v.Func.ResourceValues(), o.Func.ResourceValues(), bytes.Equal)
}
