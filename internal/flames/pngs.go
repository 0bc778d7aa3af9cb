package flames

import (
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
)

// SavePNG writes img as a lossless PNG.
func SavePNG(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := png.Encoder{CompressionLevel: png.BestCompression} // still lossless
	if err := enc.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SaveIntensityPNG16 writes the intensity map as a 16-bit grayscale PNG,
// normalized to its peak and gamma corrected.
func SaveIntensityPNG16(m *IntensityMap, path string, gamma Real) error {
	// Helper: map scalar -> [0..65535] with gamma.
	toU16 := func(v, scale Real) uint16 {
		if v <= 0 {
			return 0
		}
		n := v * scale // ideally in [0,1]
		if n > 1 {
			n = 1
		}
		if gamma != 1 && gamma > 0 {
			n = math.Pow(n, 1.0/gamma)
		}
		return uint16(clamp(math.Round(n*65535.0), 0, 65535))
	}

	peak := 0.0
	for _, v := range m.Pix {
		peak = max(peak, Real(v))
	}
	if peak == 0 {
		peak = 1 // avoid div-by-zero; the map will be black
	}
	scale := 1.0 / peak

	img := image.NewGray16(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		rowOff := y * img.Stride
		for x := 0; x < m.Width; x++ {
			v := toU16(Real(m.At(x, y)), scale)
			p := rowOff + x*2
			// Gray16 stores big-endian uint16.
			img.Pix[p+0] = uint8(v >> 8)
			img.Pix[p+1] = uint8(v)
		}
	}
	return SavePNG(img, path)
}
