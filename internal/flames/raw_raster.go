package flames

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

// SaveRaw writes the snapshot as a little-endian header (width, height,
// channels as int32) followed by RasterChannels float64 values per cell in
// count, red, green, blue, intensity order.
func (s *RasterSnapshot) SaveRaw(path string) error {
	// Sanity checks
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrBadDimensions, s.Width, s.Height)
	}
	exp64 := int64(s.Width) * int64(s.Height)
	if int64(len(s.Cells)) != exp64 {
		return fmt.Errorf("cells length mismatch: got %d, expected %d (Width*Height)", len(s.Cells), exp64)
	}

	// Make sure parent directory exists.
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	for _, v := range []int32{int32(s.Width), int32(s.Height), RasterChannels} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}

	// RasterPoint is five float64 fields, so the slice encodes as-is.
	if err := binary.Write(w, binary.LittleEndian, s.Cells); err != nil {
		return err
	}

	if err := w.Flush(); err != nil {
		return err
	}
	_ = f.Sync() // optional

	return nil
}
