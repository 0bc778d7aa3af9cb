package flames

import "sync/atomic"

// IterationObserver is told about every raster cell a sample touches. It is
// called from worker goroutines in the hot loop and must be cheap, non
// blocking and safe for concurrent use.
type IterationObserver interface {
	NotifyIterationFinished(worker, x, y int)
}

// ObserverFunc adapts a function to IterationObserver.
type ObserverFunc func(worker, x, y int)

func (f ObserverFunc) NotifyIterationFinished(worker, x, y int) { f(worker, x, y) }

// PixelCounter counts notifications per raster cell.
type PixelCounter struct {
	Width, Height int
	hits          []atomic.Int64
	total         atomic.Int64
}

func NewPixelCounter(width, height int) *PixelCounter {
	return &PixelCounter{Width: width, Height: height, hits: make([]atomic.Int64, width*height)}
}

func (p *PixelCounter) NotifyIterationFinished(_, x, y int) {
	if x < 0 || y < 0 || x >= p.Width || y >= p.Height {
		return
	}
	p.hits[y*p.Width+x].Add(1)
	p.total.Add(1)
}

func (p *PixelCounter) Hits(x, y int) int64 { return p.hits[y*p.Width+x].Load() }

func (p *PixelCounter) Total() int64 { return p.total.Load() }
