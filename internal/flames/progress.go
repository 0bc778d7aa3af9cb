package flames

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// ProgressUpdater receives render progress in samples. UpdateProgress is
// called from worker goroutines.
type ProgressUpdater interface {
	InitProgress(total int64)
	UpdateProgress(current, total int64)
}

// ConsoleProgress prints a [PROGRESS] line for every whole percent.
type ConsoleProgress struct {
	Out  io.Writer
	mu   sync.Mutex
	last int64
}

func (c *ConsoleProgress) InitProgress(total int64) {
	c.mu.Lock()
	c.last = -1
	c.mu.Unlock()
}

func (c *ConsoleProgress) UpdateProgress(current, total int64) {
	if total <= 0 {
		return
	}
	pct := current * 100 / total
	c.mu.Lock()
	defer c.mu.Unlock()
	if pct <= c.last {
		return
	}
	c.last = pct
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, "[PROGRESS] %.2f%%\n", Real(current)*100/Real(total))
}

// progressTracker batches worker progress into an updater, roughly every 1%.
type progressTracker struct {
	total   int64
	step    int64
	current atomic.Int64
	updater ProgressUpdater
}

func newProgressTracker(total, done int64, u ProgressUpdater) *progressTracker {
	p := &progressTracker{total: total, step: max(total/100, 1), updater: u}
	p.current.Store(done)
	if u != nil {
		u.InitProgress(total)
		if done > 0 {
			u.UpdateProgress(done, total)
		}
	}
	return p
}

func (p *progressTracker) add(n int64) {
	if n <= 0 {
		return
	}
	cur := p.current.Add(n)
	if p.updater != nil && cur/p.step != (cur-n)/p.step {
		p.updater.UpdateProgress(cur, p.total)
	}
}

func (p *progressTracker) load() int64 { return p.current.Load() }
