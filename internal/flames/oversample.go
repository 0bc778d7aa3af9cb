package flames

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// downscale resamples an oversampled render to the output size.
func downscale(src *image.NRGBA, w, h int) *image.NRGBA {
	if src.Bounds().Dx() == w && src.Bounds().Dy() == h {
		return src
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// Thumbnail fits src into maxW×maxH keeping its aspect ratio. Images that
// already fit are copied unchanged.
func Thumbnail(src image.Image, maxW, maxH int) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxW || h > maxH {
		sx := Real(maxW) / Real(w)
		sy := Real(maxH) / Real(h)
		s := min(sx, sy)
		w = max(int(Real(w)*s), 1)
		h = max(int(Real(h)*s), 1)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
		return dst
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}
