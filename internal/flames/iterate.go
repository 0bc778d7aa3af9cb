package flames

import (
	"math"
	"math/rand/v2"
)

type preparedLayer struct {
	index   int // position in Flame.Layers
	xforms  []*XForm
	finals  []*XForm
	table   *TransitionTable
	palette *Palette
}

// chain is one chaos game trajectory through a layer.
type chain struct {
	layer   *preparedLayer
	xfIndex int
	iter    int64
	target  int64
	blurMax int64

	p, q, affineT, varT XYZPoint
}

// Worker runs the chaos game for a share of the sample budget. Each worker
// owns its random source, so a fixed seed, worker count and budget give the
// same raster.
type Worker struct {
	ID      int
	job     *renderJob
	raster  *Raster
	pcg     *rand.PCG
	rng     *rand.Rand
	ctx     *TransformationContext
	chains  []*chain
	budget  int64
	prj     ProjectedPoint
	stats   Stats
	pending int64
}

func workerSeed(seed uint64, id int) (uint64, uint64) {
	return seed, seed ^ uint64(id+1)*goldenGamma
}

// newWorker splits budget across the job's layers, earlier layers taking the
// remainder.
func newWorker(job *renderJob, id int, seed uint64, budget int64, raster *Raster) *Worker {
	s1, s2 := workerSeed(seed, id)
	pcg := rand.NewPCG(s1, s2)
	rng := rand.New(pcg)
	w := &Worker{
		ID:     id,
		job:    job,
		raster: raster,
		pcg:    pcg,
		rng:    rng,
		ctx:    NewTransformationContext(rng, job.flame.PreserveZ),
		budget: budget,
	}
	for i, share := range splitEven(budget, len(job.layers)) {
		c := &chain{layer: job.layers[i], target: share}
		c.blurMax = c.blurLimit(job.blurFade)
		w.chains = append(w.chains, c)
	}
	return w
}

func (c *chain) blurLimit(fade Real) int64 {
	return int64((1 - clamp(fade, 0, 1)) * Real(c.target))
}

// Budget is the total number of samples this worker is responsible for.
func (w *Worker) Budget() int64 { return w.budget }

// Done reports whether every chain reached its target.
func (w *Worker) Done() bool {
	for _, c := range w.chains {
		if c.iter < c.target {
			return false
		}
	}
	return true
}

// Iterated is the number of samples run so far.
func (w *Worker) Iterated() int64 {
	var n int64
	for _, c := range w.chains {
		n += c.iter
	}
	return n
}

func (w *Worker) Stats() Stats { return w.stats }

// Iterate runs up to n more samples, or all remaining ones when n < 0, and
// returns how many ran. It returns early once the job is cancelled.
func (w *Worker) Iterate(n int64) int64 {
	var done int64
	defer w.flushProgress()
	for _, c := range w.chains {
		for c.iter < c.target {
			if n >= 0 && done >= n {
				return done
			}
			if c.iter%CancelCheckInterval == 0 {
				if w.job.cancel.Load() {
					return done
				}
				w.flushProgress()
				if !c.p.IsFinite() {
					w.stats.count(Diverged)
					DebugLogOnce("Worker %d: layer %d diverged at iteration %d, re-fusing", w.ID, c.layer.index, c.iter)
					w.preFuse(c)
				}
			}
			if c.iter%RefuseInterval == 0 {
				w.preFuse(c)
			}
			w.step(c)
			c.iter++
			done++
			w.pending++
			w.stats.Iterations++
		}
	}
	return done
}

func (w *Worker) flushProgress() {
	if w.pending > 0 && w.job.progress != nil {
		w.job.progress.add(w.pending)
	}
	w.pending = 0
}

// preFuse starts the chain from a random point and discards FuseIterations
// steps so it settles onto the attractor.
func (w *Worker) preFuse(c *chain) {
	l := c.layer
	c.affineT.Clear()
	c.varT.Clear()
	c.q.Clear()
	c.p = XYZPoint{X: 2*w.rng.Float64() - 1, Y: 2*w.rng.Float64() - 1, Color: w.rng.Float64()}
	c.xfIndex = 0
	l.xforms[0].transformPoint(w.ctx, &c.affineT, &c.varT, &c.p, &c.p)
	for i := 0; i < FuseIterations; i++ {
		c.xfIndex = l.table.Next(c.xfIndex, w.rng.IntN(NextAppliedXFormTableSize))
		l.xforms[c.xfIndex].transformPoint(w.ctx, &c.affineT, &c.varT, &c.p, &c.p)
	}
}

func (w *Worker) step(c *chain) {
	l := c.layer
	c.xfIndex = l.table.Next(c.xfIndex, w.rng.IntN(NextAppliedXFormTableSize))
	xf := l.xforms[c.xfIndex]
	xf.transformPoint(w.ctx, &c.affineT, &c.varT, &c.p, &c.p)

	switch xf.DrawMode {
	case DrawHidden:
		w.stats.count(Hidden)
		return
	case DrawOpaque:
		if w.rng.Float64() > xf.Opacity {
			w.stats.count(Hidden)
			return
		}
	}

	aa := xf
	if len(l.finals) > 0 {
		l.finals[0].transformPoint(w.ctx, &c.affineT, &c.varT, &c.p, &c.q)
		for _, f := range l.finals[1:] {
			f.transformPoint(w.ctx, &c.affineT, &c.varT, &c.q, &c.q)
		}
		aa = l.finals[len(l.finals)-1]
	} else {
		c.q.Assign(&c.p)
	}
	w.plot(c, aa)
}

func (w *Worker) plot(c *chain, aa *XForm) {
	cam := w.job.camera
	if !cam.Project(&c.q, w.rng, &w.prj) {
		w.stats.count(Rejected)
		return
	}
	var dx, dy Real
	if aa.AntialiasAmount > epsilon && aa.AntialiasRadius > epsilon && w.rng.Float64() > 1-aa.AntialiasAmount {
		dr := math.Exp(aa.AntialiasRadius*math.Sqrt(-math.Log(1-w.rng.Float64()))) - 1
		s, co := math.Sincos(2 * math.Pi * w.rng.Float64())
		dx, dy = dr*co, dr*s
	}
	x, y := cam.Cell(&w.prj, dx, dy)
	if x < 0 || y < 0 || x >= cam.RasterW || y >= cam.RasterH {
		w.stats.count(OutOfBounds)
		return
	}

	var r, g, b Real
	if c.q.RGBColor {
		r, g, b = c.q.RedColor/255, c.q.GreenColor/255, c.q.BlueColor/255
	} else {
		col := c.layer.palette.Lookup(c.q.Color)
		r, g, b = col.R, col.G, col.B
	}
	inten := w.prj.Intensity
	r, g, b = r*inten, g*inten, b*inten

	if w.job.blur && c.iter < c.blurMax {
		rad := w.job.blurRadius
		for ky := -rad; ky <= rad; ky++ {
			yy := y + ky
			if yy < 0 || yy >= cam.RasterH {
				continue
			}
			row := w.job.blurKernel[ky+rad]
			for kx := -rad; kx <= rad; kx++ {
				xx := x + kx
				if xx < 0 || xx >= cam.RasterW {
					continue
				}
				k := row[kx+rad]
				w.raster.Add(xx, yy, r*k, g*k, b*k, inten*k, k)
				w.notify(xx, yy)
			}
		}
	} else {
		w.raster.Add(x, y, r, g, b, inten, 1)
		w.notify(x, y)
	}
	w.stats.count(Plotted)
}

func (w *Worker) notify(x, y int) {
	for _, o := range w.job.observers {
		o.NotifyIterationFinished(w.ID, x, y)
	}
}
