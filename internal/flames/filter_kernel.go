package flames

import (
	"fmt"
	"math"
	"strings"
)

// FilterKernelType names a 1-D reconstruction filter; 2-D kernels are the
// separable product.
type FilterKernelType int

const (
	FilterGaussian FilterKernelType = iota
	FilterBox
	FilterTriangle
	FilterBell
	FilterBSpline
	FilterMitchell
	FilterHermite
	FilterQuadratic
	FilterBlackman
	FilterHanning
	FilterHamming
	FilterLanczos2
	FilterLanczos3
	numFilterKernels
)

var filterNames = [numFilterKernels]string{
	"gaussian", "box", "triangle", "bell", "bspline", "mitchell", "hermite",
	"quadratic", "blackman", "hanning", "hamming", "lanczos2", "lanczos3",
}

func (t FilterKernelType) String() string {
	if t >= 0 && t < numFilterKernels {
		return filterNames[t]
	}
	return fmt.Sprintf("FilterKernelType(%d)", int(t))
}

func ParseFilterKernelType(s string) (FilterKernelType, error) {
	if s == "" {
		return FilterGaussian, nil
	}
	for i, n := range filterNames {
		if strings.EqualFold(n, s) {
			return FilterKernelType(i), nil
		}
	}
	return FilterGaussian, fmt.Errorf("unknown filter kernel %q", s)
}

// Support is the half width of the filter in units of the filter radius.
func (t FilterKernelType) Support() Real {
	switch t {
	case FilterGaussian, FilterBell, FilterQuadratic:
		return 1.5
	case FilterBox:
		return 0.5
	case FilterBSpline, FilterMitchell, FilterLanczos2:
		return 2
	case FilterLanczos3:
		return 3
	}
	return 1
}

func sinc(x Real) Real {
	if x == 0 {
		return 1
	}
	x *= math.Pi
	return math.Sin(x) / x
}

// Eval returns the filter value at x; it is zero outside the support.
func (t FilterKernelType) Eval(x Real) Real {
	x = math.Abs(x)
	if x > t.Support() {
		return 0
	}
	switch t {
	case FilterGaussian:
		return math.Exp(-2*x*x) * math.Sqrt(2/math.Pi)
	case FilterBox:
		return 1
	case FilterTriangle:
		return 1 - x
	case FilterBell:
		if x < 0.5 {
			return 0.75 - x*x
		}
		return 0.5 * sqr(x-1.5)
	case FilterBSpline:
		if x < 1 {
			return 0.5*x*x*x - x*x + 2.0/3
		}
		return sqr(2-x) * (2 - x) / 6
	case FilterMitchell:
		const b, c = 1.0 / 3, 1.0 / 3
		x2 := x * x
		if x < 1 {
			return ((12-9*b-6*c)*x*x2 + (-18+12*b+6*c)*x2 + (6 - 2*b)) / 6
		}
		return ((-b-6*c)*x*x2 + (6*b+30*c)*x2 + (-12*b-48*c)*x + (8*b + 24*c)) / 6
	case FilterHermite:
		return (2*x-3)*x*x + 1
	case FilterQuadratic:
		if x < 0.5 {
			return 0.75 - x*x
		}
		return 0.5 * sqr(x-1.5)
	case FilterBlackman:
		return 0.42 + 0.5*math.Cos(math.Pi*x) + 0.08*math.Cos(2*math.Pi*x)
	case FilterHanning:
		return 0.5 + 0.5*math.Cos(math.Pi*x)
	case FilterHamming:
		return 0.54 + 0.46*math.Cos(math.Pi*x)
	case FilterLanczos2:
		return sinc(x) * sinc(x/2)
	case FilterLanczos3:
		return sinc(x) * sinc(x/3)
	}
	return 0
}

// FilterKernel is a normalized square kernel of Size = 2*Half+1 cells.
type FilterKernel struct {
	Half    int
	Size    int
	Weights []Real // row-major
}

// NewFilterKernel samples t scaled to radius raster cells.
func NewFilterKernel(t FilterKernelType, radius Real) *FilterKernel {
	if !(radius > 0) || !isFinite(radius) {
		return &FilterKernel{Size: 1, Weights: []Real{1}}
	}
	half := int(math.Ceil(radius * t.Support()))
	size := 2*half + 1
	k := &FilterKernel{Half: half, Size: size, Weights: make([]Real, size*size)}
	sum := 0.0
	for i := 0; i < size; i++ {
		fy := t.Eval(Real(i-half) / radius)
		for j := 0; j < size; j++ {
			w := fy * t.Eval(Real(j-half)/radius)
			k.Weights[i*size+j] = w
			sum += w
		}
	}
	if !(sum > 0) {
		clear(k.Weights)
		k.Weights[half*size+half] = 1
		return k
	}
	for i := range k.Weights {
		k.Weights[i] /= sum
	}
	return k
}

// At returns the weight at offset (dx, dy) from the centre.
func (k *FilterKernel) At(dx, dy int) Real {
	return k.Weights[(dy+k.Half)*k.Size+dx+k.Half]
}

func (k *FilterKernel) Sum() Real {
	s := 0.0
	for _, w := range k.Weights {
		s += w
	}
	return s
}
