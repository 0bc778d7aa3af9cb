package flames

import (
	"math"
	"sync"
)

// DensityCurve maps a cell's hit density to a density estimation filter
// radius in output pixels. Sparse cells get wide filters, dense ones narrow.
type DensityCurve interface {
	Radius(density Real) Real
}

// PowerDensityCurve is the classic radius = MaxRadius / density^Curve,
// clamped to [MinRadius, MaxRadius]. Densities above DEThreshold grow with
// their square root.
type PowerDensityCurve struct {
	MinRadius, MaxRadius, Curve Real
}

func (c PowerDensityCurve) Radius(density Real) Real {
	lo, hi := min(c.MinRadius, c.MaxRadius), max(c.MinRadius, c.MaxRadius)
	if !(density > 0) {
		return hi
	}
	sel := density
	if sel > DEThreshold {
		sel = DEThreshold + math.Sqrt(sel-DEThreshold)
	}
	r := hi / math.Pow(sel, c.Curve)
	if !isFinite(r) {
		return lo
	}
	return clamp(r, lo, hi)
}

// DensityEstimator blurs every raster cell with a kernel whose radius the
// curve picks from that cell's hit count.
type DensityEstimator struct {
	Curve      DensityCurve
	Kernel     FilterKernelType
	Oversample int

	mu    sync.Mutex
	cache map[int]*FilterKernel
}

// radius quantization steps per raster cell
const deRadiusSteps = 4

func NewDensityEstimator(curve DensityCurve, kernel FilterKernelType, oversample int) *DensityEstimator {
	return &DensityEstimator{Curve: curve, Kernel: kernel, Oversample: max(oversample, 1), cache: map[int]*FilterKernel{}}
}

func (d *DensityEstimator) kernel(key int) *FilterKernel {
	d.mu.Lock()
	defer d.mu.Unlock()
	k, ok := d.cache[key]
	if !ok {
		k = NewFilterKernel(d.Kernel, Real(key)/deRadiusSteps)
		d.cache[key] = k
	}
	return k
}

// Apply scatters every cell through its kernel and returns a new buffer.
func (d *DensityEstimator) Apply(w, h int, cells []RasterPoint) []RasterPoint {
	out := make([]RasterPoint, len(cells))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := cells[y*w+x]
			if c.Count <= 0 {
				continue
			}
			r := d.Curve.Radius(c.Count) * Real(d.Oversample)
			key := int(math.Round(r * deRadiusSteps))
			if key <= 0 {
				addPoint(&out[y*w+x], c, 1)
				continue
			}
			k := d.kernel(key)
			for ky := -k.Half; ky <= k.Half; ky++ {
				yy := y + ky
				if yy < 0 || yy >= h {
					continue
				}
				for kx := -k.Half; kx <= k.Half; kx++ {
					xx := x + kx
					if xx < 0 || xx >= w {
						continue
					}
					if wt := k.At(kx, ky); wt != 0 {
						addPoint(&out[yy*w+xx], c, wt)
					}
				}
			}
		}
	}
	return out
}

func addPoint(dst *RasterPoint, c RasterPoint, w Real) {
	dst.Count += c.Count * w
	dst.Red += c.Red * w
	dst.Green += c.Green * w
	dst.Blue += c.Blue * w
	dst.Intensity += c.Intensity * w
}
