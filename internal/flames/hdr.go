package flames

import (
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/tiff"
)

// HDRImage holds linear, unclamped RGB.
type HDRImage struct {
	Width, Height int
	Pix           []float32 // RGB triples, row-major
}

func NewHDRImage(w, h int) *HDRImage {
	return &HDRImage{Width: w, Height: h, Pix: make([]float32, w*h*3)}
}

func (m *HDRImage) Set(x, y int, r, g, b float32) {
	o := (y*m.Width + x) * 3
	m.Pix[o], m.Pix[o+1], m.Pix[o+2] = r, g, b
}

func (m *HDRImage) At(x, y int) (r, g, b float32) {
	o := (y*m.Width + x) * 3
	return m.Pix[o], m.Pix[o+1], m.Pix[o+2]
}

// Max returns the brightest channel value.
func (m *HDRImage) Max() float32 {
	var mx float32
	for _, v := range m.Pix {
		mx = max(mx, v)
	}
	return mx
}

// ToRGBA64 scales by exposure and quantizes to 16 bits.
func (m *HDRImage) ToRGBA64(exposure Real) *image.RGBA64 {
	img := image.NewRGBA64(image.Rect(0, 0, m.Width, m.Height))
	toU16 := func(v float32) uint16 {
		return uint16(math.Round(clamp(Real(v)*exposure, 0, 1) * 65535))
	}
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			r, g, b := m.At(x, y)
			img.SetRGBA64(x, y, color.RGBA64{toU16(r), toU16(g), toU16(b), 0xFFFF})
		}
	}
	return img
}

// IntensityMap holds one linear value per pixel.
type IntensityMap struct {
	Width, Height int
	Pix           []float32
}

func NewIntensityMap(w, h int) *IntensityMap {
	return &IntensityMap{Width: w, Height: h, Pix: make([]float32, w*h)}
}

func (m *IntensityMap) At(x, y int) float32 { return m.Pix[y*m.Width+x] }

// boxDownsample averages factor×factor blocks of a multi channel buffer.
func boxDownsample(pix []float32, w, h, ch, factor int) ([]float32, int, int) {
	ow, oh := w/factor, h/factor
	out := make([]float32, ow*oh*ch)
	inv := 1 / float32(factor*factor)
	for y := 0; y < oh; y++ {
		for x := 0; x < ow; x++ {
			for c := 0; c < ch; c++ {
				var s float32
				for dy := 0; dy < factor; dy++ {
					row := (y*factor + dy) * w
					for dx := 0; dx < factor; dx++ {
						s += pix[(row+x*factor+dx)*ch+c]
					}
				}
				out[(y*ow+x)*ch+c] = s * inv
			}
		}
	}
	return out, ow, oh
}

func (m *HDRImage) Downsample(factor int) *HDRImage {
	if factor <= 1 {
		return m
	}
	pix, w, h := boxDownsample(m.Pix, m.Width, m.Height, 3, factor)
	return &HDRImage{Width: w, Height: h, Pix: pix}
}

func (m *IntensityMap) Downsample(factor int) *IntensityMap {
	if factor <= 1 {
		return m
	}
	pix, w, h := boxDownsample(m.Pix, m.Width, m.Height, 1, factor)
	return &IntensityMap{Width: w, Height: h, Pix: pix}
}

// SaveHDRTIFF writes the HDR image as a 16-bit deflate compressed TIFF,
// normalized so the brightest channel maps to white.
func SaveHDRTIFF(m *HDRImage, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	exposure := 1.0
	if mx := m.Max(); mx > 0 {
		exposure = 1 / Real(mx)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := tiff.Encode(f, m.ToRGBA64(exposure), &tiff.Options{Compression: tiff.Deflate, Predictor: true}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
