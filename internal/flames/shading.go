package flames

import (
	"fmt"
	"math"
)

type Shading int

const (
	ShadingFlat Shading = iota
	ShadingBlur
)

func (s Shading) String() string {
	if s == ShadingBlur {
		return "blur"
	}
	return "flat"
}

func ParseShading(s string) (Shading, error) {
	switch s {
	case "", "flat":
		return ShadingFlat, nil
	case "blur":
		return ShadingBlur, nil
	}
	return ShadingFlat, fmt.Errorf("unknown shading %q", s)
}

// ShadingInfo configures blur shading: early samples of each chain are
// spread over a (2*BlurRadius+1)² neighbourhood, the last BlurFade share of
// the budget is plotted as single cells.
type ShadingInfo struct {
	Shading     Shading
	BlurRadius  int
	BlurFade    Real
	BlurFallOff Real
}

func DefaultShadingInfo() ShadingInfo {
	return ShadingInfo{Shading: ShadingFlat, BlurRadius: 2, BlurFade: 0.95, BlurFallOff: 2}
}

// CreateBlurKernel returns a normalized kernel with exponential falloff.
func (s ShadingInfo) CreateBlurKernel() [][]Real {
	r := max(s.BlurRadius, 0)
	size := 2*r + 1
	k := make([][]Real, size)
	sum := 0.0
	for i := range k {
		k[i] = make([]Real, size)
		for j := range k[i] {
			d2 := Real((i-r)*(i-r) + (j-r)*(j-r))
			w := 1.0
			if r > 0 {
				w = math.Exp(-s.BlurFallOff * d2 / Real(r*r))
			}
			k[i][j] = w
			sum += w
		}
	}
	for i := range k {
		for j := range k[i] {
			k[i][j] /= sum
		}
	}
	return k
}
