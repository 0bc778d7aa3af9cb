package flames

import (
	"fmt"
	"strings"
)

// Category classifies what happened to one chaos game sample.
type Category uint8

const (
	Plotted     Category = iota // sample landed in the raster
	Hidden                      // xform draw mode suppressed it
	Rejected                    // camera could not project it
	OutOfBounds                 // antialias jitter pushed it off the raster
	Diverged                    // chain went non-finite and was re-fused
	numCategories
)

func (c Category) String() string {
	switch c {
	case Plotted:
		return "plotted"
	case Hidden:
		return "hidden"
	case Rejected:
		return "rejected"
	case OutOfBounds:
		return "out_of_bounds"
	case Diverged:
		return "diverged"
	}
	return fmt.Sprintf("Category(%d)", uint8(c))
}

// Stats counts samples per category. Diverged is counted on top of the
// others since the sample after a re-fuse is still classified.
type Stats struct {
	Iterations int64
	Counts     [numCategories]int64
}

func (s *Stats) count(c Category) { s.Counts[c]++ }

func (s Stats) Get(c Category) int64 { return s.Counts[c] }

func (s *Stats) Add(o Stats) {
	s.Iterations += o.Iterations
	for i := range s.Counts {
		s.Counts[i] += o.Counts[i]
	}
}

func (s Stats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "iterations=%d", s.Iterations)
	for c := Category(0); c < numCategories; c++ {
		fmt.Fprintf(&b, " %s=%d", c, s.Counts[c])
	}
	return b.String()
}
