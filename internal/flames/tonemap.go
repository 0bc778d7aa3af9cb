package flames

import (
	"fmt"
	"image"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Tonemapper turns an accumulated raster into an image: log-density scaling,
// optional density estimation and spatial filtering, then gamma, vibrancy and
// background blending.
type Tonemapper struct {
	Width, Height  int // output pixels
	Oversample     int
	PixelsPerUnit  Real // zoom included
	Brightness     Real
	Contrast       Real
	Gamma          Real
	GammaThreshold Real
	Vibrancy       Real
	WhiteLevel     int
	Background     RGB
	BGTransparency bool
	SpatialFilter  *FilterKernel     // nil or 1×1 disables filtering
	DE             *DensityEstimator // nil disables density estimation
}

func NewTonemapper(f *Flame, width, height int) *Tonemapper {
	os := max(f.Oversample, 1)
	t := &Tonemapper{
		Width:          width,
		Height:         height,
		Oversample:     os,
		PixelsPerUnit:  f.PixelsPerUnit * f.CamZoom,
		Brightness:     f.Brightness,
		Contrast:       f.Contrast,
		Gamma:          f.Gamma,
		GammaThreshold: f.GammaThreshold,
		Vibrancy:       f.Vibrancy,
		WhiteLevel:     f.WhiteLevel,
		Background:     f.Background.clamp01(),
		BGTransparency: f.BGTransparency,
	}
	if f.SpatialFilterRadius > 0 {
		t.SpatialFilter = NewFilterKernel(f.SpatialFilterKernel, f.SpatialFilterRadius*Real(os))
	}
	if f.DEFilterEnabled && f.DEFilterMaxRadius > 0 {
		curve := PowerDensityCurve{MinRadius: f.DEFilterMinRadius, MaxRadius: f.DEFilterMaxRadius, Curve: f.DEFilterCurve}
		t.DE = NewDensityEstimator(curve, f.DEFilterKernel, os)
	}
	return t
}

// parallelRows runs fn over [0,h) in row bands on an errgroup.
func parallelRows(h int, fn func(y int)) {
	procs := runtime.GOMAXPROCS(0)
	band := max(h/(4*procs), 1)
	var g errgroup.Group
	g.SetLimit(procs)
	for y0 := 0; y0 < h; y0 += band {
		g.Go(func() error {
			for y := y0; y < min(y0+band, h); y++ {
				fn(y)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// gammaCurve is pow(x, 1/gamma) with a linear blend below the threshold so
// dark values keep a finite slope.
func (t *Tonemapper) gammaCurve(x Real) Real {
	g := 1 / t.Gamma
	thr := t.GammaThreshold
	if thr > 0 && x < thr {
		frac := x / thr
		return (1-frac)*x*math.Pow(thr, g-1) + frac*math.Pow(x, g)
	}
	return math.Pow(x, g)
}

// logScale returns R, G, B, A per raster cell in PrefilterWhite units.
func (t *Tonemapper) logScale(cells []RasterPoint, w, h int, density Real) []Real {
	acc := make([]Real, w*h*4)
	if !(density > 0) {
		return acc
	}
	k1 := t.Contrast * t.Brightness * PrefilterWhite * 268.0 / 256.0
	area := Real(t.Width) * Real(t.Height) / (t.PixelsPerUnit * t.PixelsPerUnit)
	k2 := Real(t.Oversample*t.Oversample) / (t.Contrast * area * Real(t.WhiteLevel) * density)
	parallelRows(h, func(y int) {
		for x := 0; x < w; x++ {
			i := y*w + x
			c := cells[i]
			if !(c.Count > 0) {
				continue
			}
			ls := k1 * math.Log10(1+c.Count*k2) / c.Count
			o := i * 4
			acc[o] = c.Red * ls
			acc[o+1] = c.Green * ls
			acc[o+2] = c.Blue * ls
			acc[o+3] = c.Intensity * ls
		}
	})
	return acc
}

func (t *Tonemapper) filter(acc []Real, w, h int) []Real {
	k := t.SpatialFilter
	if k == nil || k.Size <= 1 {
		return acc
	}
	out := make([]Real, len(acc))
	parallelRows(h, func(y int) {
		for x := 0; x < w; x++ {
			var s [4]Real
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
					wt := k.At(kx, ky)
					o := (yy*w + xx) * 4
					s[0] += acc[o] * wt
					s[1] += acc[o+1] * wt
					s[2] += acc[o+2] * wt
					s[3] += acc[o+3] * wt
				}
			}
			copy(out[(y*w+x)*4:], s[:])
		}
	})
	return out
}

// pixel converts one filtered cell. rgb is 0..255, alpha 0..1, lin is the
// linear color and raw the alpha before gamma. alpha never falls as hits
// grow; over an opaque background a channel may fall as the pixel moves from
// the background toward a darker flame color.
func (t *Tonemapper) pixel(a []Real) (rgb [3]Real, alpha Real, lin [3]Real, raw Real) {
	raw = max(a[3]/PrefilterWhite, 0)
	var ls, alphaG Real
	if raw > 0 {
		alphaG = t.gammaCurve(raw)
		ls = t.Vibrancy * 256 * alphaG / raw
		alpha = clamp(alphaG, 0, 1)
	}
	g := 1 / t.Gamma
	bg := [3]Real{t.Background.R, t.Background.G, t.Background.B}
	for ch := 0; ch < 3; ch++ {
		v := max(a[ch]/PrefilterWhite, 0)
		c := ls * v
		if t.Vibrancy < 1 && v > 0 {
			c += (1 - t.Vibrancy) * 256 * math.Pow(v, g)
		}
		if !t.BGTransparency {
			c += (1 - alpha) * bg[ch] * 255
		}
		rgb[ch] = clamp(c, 0, 255)
		lin[ch] = v
	}
	return
}

// Render tonemaps snap. density is the number of samples per output pixel
// that went into the raster.
func (t *Tonemapper) Render(snap *RasterSnapshot, density Real, withHDR, withIntensity bool) (*RenderedFlame, error) {
	rw, rh := t.Width*t.Oversample, t.Height*t.Oversample
	if snap == nil || snap.Width != rw || snap.Height != rh {
		return nil, fmt.Errorf("%w: raster does not match %dx%d oversample %d", ErrBadDimensions, t.Width, t.Height, t.Oversample)
	}
	cells := snap.Cells
	if t.DE != nil {
		cells = t.DE.Apply(rw, rh, cells)
	}
	acc := t.filter(t.logScale(cells, rw, rh, density), rw, rh)

	img := image.NewNRGBA(image.Rect(0, 0, rw, rh))
	var hdr *HDRImage
	var imap *IntensityMap
	if withHDR {
		hdr = NewHDRImage(rw, rh)
	}
	if withIntensity {
		imap = NewIntensityMap(rw, rh)
	}
	parallelRows(rh, func(y int) {
		for x := 0; x < rw; x++ {
			i := y*rw + x
			rgb, alpha, lin, raw := t.pixel(acc[i*4 : i*4+4])
			o := y*img.Stride + x*4
			if t.BGTransparency {
				if alpha > 0 {
					for ch := range rgb {
						rgb[ch] = clamp(rgb[ch]/alpha, 0, 255)
					}
				}
				img.Pix[o+3] = uint8(math.Round(alpha * 255))
			} else {
				img.Pix[o+3] = 0xFF
			}
			img.Pix[o] = uint8(math.Round(rgb[0]))
			img.Pix[o+1] = uint8(math.Round(rgb[1]))
			img.Pix[o+2] = uint8(math.Round(rgb[2]))
			if hdr != nil {
				hdr.Set(x, y, float32(lin[0]), float32(lin[1]), float32(lin[2]))
			}
			if imap != nil {
				imap.Pix[i] = float32(raw)
			}
		}
	})

	rf := &RenderedFlame{Image: downscale(img, t.Width, t.Height)}
	if hdr != nil {
		rf.HDR = hdr.Downsample(t.Oversample)
	}
	if imap != nil {
		rf.HDRIntensityMap = imap.Downsample(t.Oversample)
	}
	return rf, nil
}
