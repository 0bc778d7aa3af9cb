package flames

import (
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"
	"path/filepath"
)

// SaveAnimatedGIF writes one frame per preview, e.g. progressive renders.
// delay is in 100ths of a second.
func SaveAnimatedGIF(frames []image.Image, path string, delay int) error {
	if len(frames) == 0 {
		return errors.New("no frames to write")
	}
	out := &gif.GIF{
		Image:     make([]*image.Paletted, 0, len(frames)),
		Delay:     make([]int, 0, len(frames)),
		LoopCount: 0,
	}
	bounds := frames[0].Bounds()
	for k, fr := range frames {
		if fr.Bounds().Size() != bounds.Size() {
			return fmt.Errorf("frame %d size %v differs from %v", k, fr.Bounds().Size(), bounds.Size())
		}
		// Quantize to paletted for GIF
		pimg := image.NewPaletted(image.Rect(0, 0, bounds.Dx(), bounds.Dy()), palette.Plan9)
		draw.FloydSteinberg.Draw(pimg, pimg.Bounds(), fr, fr.Bounds().Min)
		out.Image = append(out.Image, pimg)
		out.Delay = append(out.Delay, delay)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, out)
}
