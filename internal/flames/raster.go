package flames

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
)

// AccumulationMode selects how concurrent workers write into a raster.
type AccumulationMode int

const (
	// AccumulateAtomic adds with compare-and-swap on the float bits.
	AccumulateAtomic AccumulationMode = iota
	// AccumulateLocked guards each row with one of NumShards mutexes.
	AccumulateLocked
	// AccumulateLocal gives every worker a private raster merged after the join.
	AccumulateLocal
)

func (m AccumulationMode) String() string {
	switch m {
	case AccumulateAtomic:
		return "atomic"
	case AccumulateLocked:
		return "locked"
	case AccumulateLocal:
		return "local"
	}
	return fmt.Sprintf("AccumulationMode(%d)", int(m))
}

func ParseAccumulationMode(s string) (AccumulationMode, error) {
	switch s {
	case "", "atomic":
		return AccumulateAtomic, nil
	case "locked":
		return AccumulateLocked, nil
	case "local":
		return AccumulateLocal, nil
	}
	return AccumulateAtomic, fmt.Errorf("unknown accumulation mode %q", s)
}

// Raster is the 2-D histogram the chaos game writes into. Every cell holds a
// hit weight, weighted color sums and an intensity sum, stored as float64
// bits. Reads taken while workers run see a consistent value per channel but
// not necessarily a consistent cell.
type Raster struct {
	Width, Height int
	Buf           []uint64 // flat: (y*Width + x)*RasterChannels + c
	mode          AccumulationMode
	locks         *shardLocks

	// merging is held for writing by Merge and for reading by Snapshot, so a
	// snapshot sees either none or all of a merge.
	merging sync.RWMutex
}

// RasterPoint is one cell in plain floats.
type RasterPoint struct {
	Count     Real
	Red       Real
	Green     Real
	Blue      Real
	Intensity Real
}

// NewRaster allocates a zero-initialized raster.
func NewRaster(width, height int, mode AccumulationMode) *Raster {
	if width <= 0 || height <= 0 {
		panic("raster resolution must be positive")
	}
	r := &Raster{
		Width:  width,
		Height: height,
		Buf:    make([]uint64, width*height*RasterChannels),
		mode:   mode,
	}
	if mode == AccumulateLocked {
		r.locks = &shardLocks{}
	}
	DebugLog("Created raster %dx%d, mode=%s", width, height, mode)
	return r
}

func (r *Raster) Mode() AccumulationMode { return r.mode }

// Flat buffer index helper (c ∈ {ChCount,ChR,ChG,ChB,ChI}).
func (r *Raster) idx(x, y, c int) int {
	return (y*r.Width+x)*RasterChannels + c
}

func addFloat(addr *uint64, delta Real) {
	for {
		old := atomic.LoadUint64(addr)
		nv := math.Float64bits(math.Float64frombits(old) + delta)
		if atomic.CompareAndSwapUint64(addr, old, nv) {
			return
		}
	}
}

func addPlain(addr *uint64, delta Real) {
	*addr = math.Float64bits(math.Float64frombits(*addr) + delta)
}

// Add accumulates one weighted hit. Coordinates must be inside the raster.
func (r *Raster) Add(x, y int, red, green, blue, intensity, weight Real) {
	base := r.idx(x, y, ChCount)
	switch r.mode {
	case AccumulateAtomic:
		addFloat(&r.Buf[base+ChCount], weight)
		addFloat(&r.Buf[base+ChR], red)
		addFloat(&r.Buf[base+ChG], green)
		addFloat(&r.Buf[base+ChB], blue)
		addFloat(&r.Buf[base+ChI], intensity)
	case AccumulateLocked:
		r.locks.lock(y)
		r.addCell(base, RasterPoint{weight, red, green, blue, intensity})
		r.locks.unlock(y)
	default:
		r.addCell(base, RasterPoint{weight, red, green, blue, intensity})
	}
}

func (r *Raster) addCell(base int, p RasterPoint) {
	addPlain(&r.Buf[base+ChCount], p.Count)
	addPlain(&r.Buf[base+ChR], p.Red)
	addPlain(&r.Buf[base+ChG], p.Green)
	addPlain(&r.Buf[base+ChB], p.Blue)
	addPlain(&r.Buf[base+ChI], p.Intensity)
}

func (r *Raster) load(i int) Real {
	if r.mode == AccumulateAtomic {
		return math.Float64frombits(atomic.LoadUint64(&r.Buf[i]))
	}
	return math.Float64frombits(r.Buf[i])
}

// Point reads one cell.
func (r *Raster) Point(x, y int) RasterPoint {
	base := r.idx(x, y, ChCount)
	if r.mode == AccumulateLocked {
		r.locks.lock(y)
		defer r.locks.unlock(y)
	}
	return RasterPoint{
		Count:     r.load(base + ChCount),
		Red:       r.load(base + ChR),
		Green:     r.load(base + ChG),
		Blue:      r.load(base + ChB),
		Intensity: r.load(base + ChI),
	}
}

// RasterSnapshot is a plain copy of a raster used by the tonemapper and by
// saved render state.
type RasterSnapshot struct {
	Width, Height int
	Cells         []RasterPoint // row-major
}

// Snapshot copies the raster row by row.
func (r *Raster) Snapshot() *RasterSnapshot {
	r.merging.RLock()
	defer r.merging.RUnlock()
	s := &RasterSnapshot{Width: r.Width, Height: r.Height, Cells: make([]RasterPoint, r.Width*r.Height)}
	for y := 0; y < r.Height; y++ {
		if r.mode == AccumulateLocked {
			r.locks.lock(y)
		}
		for x := 0; x < r.Width; x++ {
			base := r.idx(x, y, ChCount)
			s.Cells[y*r.Width+x] = RasterPoint{
				Count:     r.load(base + ChCount),
				Red:       r.load(base + ChR),
				Green:     r.load(base + ChG),
				Blue:      r.load(base + ChB),
				Intensity: r.load(base + ChI),
			}
		}
		if r.mode == AccumulateLocked {
			r.locks.unlock(y)
		}
	}
	return s
}

// RasterFromSnapshot rebuilds a raster, used when resuming a render.
func RasterFromSnapshot(s *RasterSnapshot, mode AccumulationMode) (*Raster, error) {
	if s == nil || s.Width <= 0 || s.Height <= 0 || len(s.Cells) != s.Width*s.Height {
		return nil, fmt.Errorf("%w: bad raster snapshot", ErrStateMismatch)
	}
	r := NewRaster(s.Width, s.Height, mode)
	for i, c := range s.Cells {
		base := i * RasterChannels
		r.Buf[base+ChCount] = math.Float64bits(c.Count)
		r.Buf[base+ChR] = math.Float64bits(c.Red)
		r.Buf[base+ChG] = math.Float64bits(c.Green)
		r.Buf[base+ChB] = math.Float64bits(c.Blue)
		r.Buf[base+ChI] = math.Float64bits(c.Intensity)
	}
	return r, nil
}

// Merge adds every src into r in order as one step with respect to Snapshot.
// No worker may write r or any src meanwhile.
func (r *Raster) Merge(srcs ...*Raster) error {
	for _, src := range srcs {
		if src.Width != r.Width || src.Height != r.Height {
			return fmt.Errorf("raster size mismatch: %dx%d vs %dx%d", src.Width, src.Height, r.Width, r.Height)
		}
	}
	r.merging.Lock()
	defer r.merging.Unlock()
	for _, src := range srcs {
		for i := range r.Buf {
			r.Buf[i] = math.Float64bits(math.Float64frombits(r.Buf[i]) + math.Float64frombits(src.Buf[i]))
		}
	}
	return nil
}

// TotalCount sums the hit weights of all cells.
func (s *RasterSnapshot) TotalCount() Real {
	sum := 0.0
	for _, c := range s.Cells {
		sum += c.Count
	}
	return sum
}

// At returns the cell at (x, y).
func (s *RasterSnapshot) At(x, y int) RasterPoint { return s.Cells[y*s.Width+x] }
