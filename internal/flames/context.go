package flames

import "math/rand/v2"

// TransformationContext is handed to variation kernels. It carries the
// worker's random source so kernels stay deterministic for a fixed seed.
type TransformationContext struct {
	rng *rand.Rand
	// PreserveZ asks 2-D kernels to carry the incoming Z through.
	PreserveZ bool
}

func NewTransformationContext(rng *rand.Rand, preserveZ bool) *TransformationContext {
	return &TransformationContext{rng: rng, PreserveZ: preserveZ}
}

// Random returns a uniform value in [0,1).
func (c *TransformationContext) Random() Real { return c.rng.Float64() }

// RandomInt returns a uniform value in [0,n).
func (c *TransformationContext) RandomInt(n int) int { return c.rng.IntN(n) }
