package flames

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Options configure a Renderer.
type Options struct {
	Workers      int    // 0 means runtime.NumCPU()
	Seed         uint64 // 0 means time based
	Accumulation AccumulationMode
}

// renderJob is the immutable snapshot a render works on plus its shared
// accumulation state.
type renderJob struct {
	flame         *Flame
	req           RenderInfo
	width, height int
	oversample    int
	samples       int64
	scene         string
	layers        []*preparedLayer
	camera        *Camera
	raster        *Raster
	blur          bool
	blurKernel    [][]Real
	blurRadius    int
	blurFade      Real
	observers     []IterationObserver
	progress      *progressTracker
	cancel        atomic.Bool
}

func prepareJob(flame *Flame, info RenderInfo, mode AccumulationMode) (*renderJob, error) {
	if flame == nil {
		return nil, ErrNoLayers
	}
	if err := flame.Validate(); err != nil {
		return nil, err
	}
	snap, err := flame.Clone()
	if err != nil {
		return nil, err
	}
	w, h := info.Width, info.Height
	if w == 0 && h == 0 {
		w, h = snap.Width, snap.Height
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadDimensions, w, h)
	}
	density := snap.SampleDensity
	if info.SampleDensity > 0 {
		density = info.SampleDensity
	}
	if !(density > 0) || !isFinite(density) {
		return nil, fmt.Errorf("%w: density %v", ErrZeroSamples, density)
	}
	samples := int64(math.Round(density * Real(w) * Real(h)))
	if samples < 1 {
		return nil, fmt.Errorf("%w: density %v for %dx%d", ErrZeroSamples, density, w, h)
	}
	os := max(snap.Oversample, 1)
	job := &renderJob{
		flame:      snap,
		req:        info,
		width:      w,
		height:     h,
		oversample: os,
		samples:    samples,
	}

	initCtx := NewTransformationContext(rand.New(rand.NewPCG(0, 0)), snap.PreserveZ)
	for _, li := range snap.visibleLayers() {
		l := snap.Layers[li]
		for _, xf := range l.XForms {
			if err := xf.prepare(initCtx, l); err != nil {
				return nil, err
			}
		}
		for _, xf := range l.FinalXForms {
			if err := xf.prepare(initCtx, l); err != nil {
				return nil, err
			}
		}
		table, err := BuildTransitionTable(l.XForms)
		if err != nil {
			return nil, err
		}
		pal := l.Palette
		if pal == nil {
			pal = DefaultPalette()
		}
		job.layers = append(job.layers, &preparedLayer{
			index:   li,
			xforms:  l.XForms,
			finals:  l.FinalXForms,
			table:   table,
			palette: pal,
		})
	}

	rw, rh := w*os, h*os
	job.camera = NewCamera(snap, rw, rh, os)
	job.raster = NewRaster(rw, rh, mode)
	job.scene = sceneFingerprint(snap, rw, rh)
	if snap.Shading.Shading == ShadingBlur {
		job.blur = true
		job.blurRadius = max(snap.Shading.BlurRadius, 0)
		job.blurKernel = snap.Shading.CreateBlurKernel()
		job.blurFade = snap.Shading.BlurFade
	}
	DebugLog("Prepared job %dx%d (oversample %d), samples=%d, layers=%d", w, h, os, samples, len(job.layers))
	return job, nil
}

// Renderer runs the chaos game over a pool of workers and tonemaps the
// result. A Renderer renders one job at a time.
type Renderer struct {
	flame *Flame
	opts  Options

	mu        sync.Mutex
	observers []IterationObserver
	progress  ProgressUpdater
	job       *renderJob
	workers   []*Worker
	partials  []*Raster
	running   bool
	done      chan struct{}
	waitErr   error
}

// NewRenderer does not copy the flame yet; every render snapshots it when it
// starts, so later edits only affect later renders.
func NewRenderer(flame *Flame, opts Options) *Renderer {
	return &Renderer{flame: flame, opts: opts}
}

// RegisterIterationObserver adds an observer to renders started afterwards.
func (r *Renderer) RegisterIterationObserver(o IterationObserver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, o)
}

// SetProgressUpdater sets the progress sink for renders started afterwards.
func (r *Renderer) SetProgressUpdater(u ProgressUpdater) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = u
}

// RenderFlame renders synchronously. A cancelled ctx stops the workers; the
// partial result is then returned together with ctx.Err().
func (r *Renderer) RenderFlame(ctx context.Context, info RenderInfo) (*RenderedFlame, error) {
	if err := r.StartRenderFlame(ctx, info); err != nil {
		return nil, err
	}
	if err := r.Wait(); err != nil {
		return nil, err
	}
	rf, err := r.FinishRenderFlame()
	if err != nil {
		return nil, err
	}
	return rf, ctx.Err()
}

// StartRenderFlame launches the workers and returns immediately.
func (r *Renderer) StartRenderFlame(ctx context.Context, info RenderInfo) error {
	return r.start(ctx, info, nil)
}

// ResumeRenderFlame continues from a state saved by SaveState. The scene
// geometry, sample budget, raster size and worker count must match the saved
// render; tonemapping settings may differ.
func (r *Renderer) ResumeRenderFlame(ctx context.Context, info RenderInfo, state *RenderState) error {
	if state == nil {
		return fmt.Errorf("%w: nil state", ErrStateMismatch)
	}
	return r.start(ctx, info, state)
}

func (r *Renderer) start(ctx context.Context, info RenderInfo, state *RenderState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return ErrRenderInProgress
	}
	job, err := prepareJob(r.flame, info, r.opts.Accumulation)
	if err != nil {
		return err
	}
	job.observers = slices.Clone(r.observers)

	n := r.opts.Workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if state != nil {
		if state.Version != CheckpointVersion {
			return fmt.Errorf("%w: %d", ErrCheckpointVersion, state.Version)
		}
		if state.Scene != job.scene || state.Samples != job.samples {
			return fmt.Errorf("%w: scene %s with %d samples, expected %s with %d", ErrStateMismatch, state.Scene, state.Samples, job.scene, job.samples)
		}
		if len(state.Workers) == 0 || (r.opts.Workers > 0 && r.opts.Workers != len(state.Workers)) {
			return fmt.Errorf("%w: %d saved workers", ErrStateMismatch, len(state.Workers))
		}
		n = len(state.Workers)
		raster, err := RasterFromSnapshot(state.Raster, r.opts.Accumulation)
		if err != nil {
			return err
		}
		if raster.Width != job.raster.Width || raster.Height != job.raster.Height {
			return fmt.Errorf("%w: raster %dx%d, expected %dx%d", ErrStateMismatch, raster.Width, raster.Height, job.raster.Width, job.raster.Height)
		}
		job.raster = raster
	}

	seed := r.opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	budgets := splitEven(job.samples, n)
	workers := make([]*Worker, n)
	var partials []*Raster
	var total, iterated int64
	for i := range workers {
		target := job.raster
		if r.opts.Accumulation == AccumulateLocal {
			target = NewRaster(job.raster.Width, job.raster.Height, AccumulateLocal)
			partials = append(partials, target)
		}
		w := newWorker(job, i, seed, budgets[i], target)
		if state != nil {
			if err := w.Restore(state.Workers[i]); err != nil {
				return fmt.Errorf("worker %d: %w", i, err)
			}
		}
		workers[i] = w
		total += w.Budget()
		iterated += w.Iterated()
	}
	job.progress = newProgressTracker(total, iterated, r.progress)
	DebugLog("Starting %d workers, seed=%d, samples=%d, resumed at %d", n, seed, total, iterated)

	r.job, r.workers, r.partials = job, workers, partials
	r.running = true
	r.waitErr = nil
	done := make(chan struct{})
	r.done = done

	var g errgroup.Group
	for _, w := range workers {
		g.Go(func() error {
			w.Iterate(-1)
			return nil
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			job.cancel.Store(true)
		case <-done:
		}
	}()
	go func() {
		err := g.Wait()
		if err == nil && len(partials) > 0 {
			err = job.raster.Merge(partials...)
		}
		r.mu.Lock()
		r.running = false
		r.waitErr = err
		r.mu.Unlock()
		close(done)
	}()
	return nil
}

// Wait blocks until the current render stops.
func (r *Renderer) Wait() error {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done == nil {
		return ErrNotRendering
	}
	<-done
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.waitErr
}

// Cancel stops the workers at their next poll and waits for them.
func (r *Renderer) Cancel() error {
	r.mu.Lock()
	job := r.job
	r.mu.Unlock()
	if job == nil {
		return ErrNotRendering
	}
	job.cancel.Store(true)
	return r.Wait()
}

// Running reports whether workers are active.
func (r *Renderer) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Progress returns iterated and total samples of the current render.
func (r *Renderer) Progress() (current, total int64) {
	r.mu.Lock()
	job := r.job
	r.mu.Unlock()
	if job == nil || job.progress == nil {
		return 0, 0
	}
	return job.progress.load(), job.progress.total
}

// Raster copies the current accumulation raster.
func (r *Renderer) Raster() (*RasterSnapshot, error) {
	r.mu.Lock()
	job := r.job
	r.mu.Unlock()
	if job == nil {
		return nil, ErrNotRendering
	}
	return job.raster.Snapshot(), nil
}

// Preview tonemaps what has been accumulated so far without stopping the
// workers. With AccumulateLocal the workers' partial rasters are not
// visible until the render stops, and then all at once.
func (r *Renderer) Preview() (*RenderedFlame, error) {
	r.mu.Lock()
	job := r.job
	r.mu.Unlock()
	if job == nil {
		return nil, ErrNotRendering
	}
	return job.tonemap(job.raster.Snapshot(), job.progress.load(), RenderInfo{}, Stats{})
}

// FinishRenderFlame stops the render if it is still running and tonemaps the
// accumulated raster.
func (r *Renderer) FinishRenderFlame() (*RenderedFlame, error) {
	r.mu.Lock()
	job, running := r.job, r.running
	r.mu.Unlock()
	if job == nil {
		return nil, ErrNotRendering
	}
	if running {
		if err := r.Cancel(); err != nil {
			return nil, err
		}
	} else if err := r.Wait(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	workers := r.workers
	r.mu.Unlock()
	var stats Stats
	var iterated int64
	for _, w := range workers {
		stats.Add(w.Stats())
		iterated += w.Iterated()
	}
	DebugLog("Finished render: %s", stats)
	return job.tonemap(job.raster.Snapshot(), iterated, job.req, stats)
}

// SaveState captures a stopped render so it can be resumed later.
func (r *Renderer) SaveState() (*RenderState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.job == nil {
		return nil, ErrNotRendering
	}
	if r.running {
		return nil, ErrRenderInProgress
	}
	s := &RenderState{
		Version: CheckpointVersion,
		Scene:   r.job.scene,
		Samples: r.job.samples,
		Raster:  r.job.raster.Snapshot(),
	}
	for _, w := range r.workers {
		cp, err := w.Checkpoint()
		if err != nil {
			return nil, err
		}
		s.Workers = append(s.Workers, cp)
	}
	return s, nil
}

func (j *renderJob) tonemap(snap *RasterSnapshot, iterated int64, info RenderInfo, stats Stats) (*RenderedFlame, error) {
	density := Real(iterated) / (Real(j.width) * Real(j.height))
	tm := NewTonemapper(j.flame, j.width, j.height)
	rf, err := tm.Render(snap, density, info.RenderHDR, info.RenderHDRIntensityMap)
	if err != nil {
		return nil, err
	}
	rf.Samples = iterated
	rf.Stats = stats
	return rf, nil
}
