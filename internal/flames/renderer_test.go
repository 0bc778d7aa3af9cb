package flames

import (
	"context"
	"errors"
	"image/color"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestRenderContractingMapHitsCentre(t *testing.T) {
	f := contractingFlame(t, 0.3, -0.2, 16, 16)
	r := NewRenderer(f, Options{Workers: 2, Seed: 1})
	rf, err := r.RenderFlame(context.Background(), RenderInfo{})
	if err != nil {
		t.Fatal(err)
	}
	snap, err := r.Raster()
	if err != nil {
		t.Fatal(err)
	}
	const samples = 16 * 16 * 10
	if got := snap.At(8, 8).Count; got != samples {
		t.Fatalf("centre count = %v, want %d", got, samples)
	}
	if snap.TotalCount() != samples {
		t.Fatalf("total = %v", snap.TotalCount())
	}
	if rf.Samples != samples || rf.Stats.Get(Plotted) != samples {
		t.Fatalf("samples=%d stats=%s", rf.Samples, rf.Stats)
	}
	if b := rf.Image.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Fatalf("image bounds %v", b)
	}
	if c := rf.Image.NRGBAAt(0, 0); c != (color.NRGBA{0, 0, 0, 255}) {
		t.Fatalf("empty corner = %+v", c)
	}
	if c := rf.Image.NRGBAAt(8, 8); c.R == 0 {
		t.Fatalf("centre pixel dark: %+v", c)
	}
}

func TestRenderDeterministic(t *testing.T) {
	for _, opts := range []Options{
		{Workers: 1, Seed: 99},
		{Workers: 4, Seed: 99, Accumulation: AccumulateLocal},
	} {
		var snaps [2]*RasterSnapshot
		for i := range snaps {
			r := NewRenderer(sierpinskiFlame(t, 32, 32), opts)
			if _, err := r.RenderFlame(context.Background(), RenderInfo{}); err != nil {
				t.Fatal(err)
			}
			snaps[i], _ = r.Raster()
		}
		sameCells(t, snaps[0], snaps[1])
	}
}

func TestRenderModesAgreeOnCounts(t *testing.T) {
	// flat shading adds whole hits, so per cell counts do not depend on order
	var ref *RasterSnapshot
	for _, mode := range []AccumulationMode{AccumulateAtomic, AccumulateLocked, AccumulateLocal} {
		r := NewRenderer(sierpinskiFlame(t, 24, 24), Options{Workers: 3, Seed: 5, Accumulation: mode})
		if _, err := r.RenderFlame(context.Background(), RenderInfo{}); err != nil {
			t.Fatalf("%s: %v", mode, err)
		}
		s, _ := r.Raster()
		if ref == nil {
			ref = s
			continue
		}
		for i := range s.Cells {
			if s.Cells[i].Count != ref.Cells[i].Count {
				t.Fatalf("%s: cell %d count %v, atomic had %v", mode, i, s.Cells[i].Count, ref.Cells[i].Count)
			}
		}
	}
}

func TestRenderConservation(t *testing.T) {
	f := sierpinskiFlame(t, 32, 32)
	f.Shading = ShadingInfo{Shading: ShadingBlur, BlurRadius: 2, BlurFade: 0.5, BlurFallOff: 2}
	f.FirstLayer().XForms[2].DrawMode = DrawOpaque
	f.FirstLayer().XForms[2].Opacity = 0.5
	f.CentreX = 0.9 // push part of the attractor out of view
	r := NewRenderer(f, Options{Workers: 3, Seed: 7})
	rf, err := r.RenderFlame(context.Background(), RenderInfo{})
	if err != nil {
		t.Fatal(err)
	}
	st := rf.Stats
	want := int64(32 * 32 * 20)
	sum := st.Get(Plotted) + st.Get(Hidden) + st.Get(Rejected) + st.Get(OutOfBounds)
	if st.Iterations != want || sum != want {
		t.Fatalf("stats %s do not add up to %d", st, want)
	}
	if st.Get(Hidden) == 0 || st.Get(Rejected) == 0 {
		t.Fatalf("expected hidden and rejected samples: %s", st)
	}
	snap, _ := r.Raster()
	if total := snap.TotalCount(); total > Real(st.Get(Plotted))+1e-6 {
		t.Fatalf("raster weight %v exceeds plotted %d", total, st.Get(Plotted))
	}
}

func TestRenderFinalXFormMovesCluster(t *testing.T) {
	f := contractingFlame(t, 0, 0, 16, 16)
	fin := NewXForm()
	fin.Coeffs = AffineFrom(1, 1, 0, 0.3, 0)
	fin.ColorSymmetry = 1
	mustVariation(t, fin, "linear", 1)
	f.FirstLayer().AddFinalXForm(fin)
	r := NewRenderer(f, Options{Workers: 1, Seed: 1})
	if _, err := r.RenderFlame(context.Background(), RenderInfo{}); err != nil {
		t.Fatal(err)
	}
	snap, _ := r.Raster()
	if snap.At(11, 8).Count != snap.TotalCount() || snap.TotalCount() == 0 {
		t.Fatalf("cluster not at (11,8): %v of %v", snap.At(11, 8).Count, snap.TotalCount())
	}
}

func TestRenderLayers(t *testing.T) {
	f := contractingFlame(t, 0, 0, 16, 16)
	second := NewLayer()
	xf := NewXForm()
	xf.Coeffs = AffineFrom(0.5, 0.5, 0, 0.2, 0) // fixed point (0.4, 0)
	mustVariation(t, xf, "linear", 1)
	second.AddXForm(xf)
	f.AddLayer(second)
	hidden := NewLayer()
	hidden.Visible = false
	f.AddLayer(hidden) // no xforms; ignored because it is hidden

	r := NewRenderer(f, Options{Workers: 2, Seed: 3})
	if _, err := r.RenderFlame(context.Background(), RenderInfo{}); err != nil {
		t.Fatal(err)
	}
	snap, _ := r.Raster()
	a, b := snap.At(8, 8).Count, snap.At(12, 8).Count
	if a+b != 2560 || a != 1280 {
		t.Fatalf("layer split %v/%v, want 1280 each", a, b)
	}
}

func TestRenderObservers(t *testing.T) {
	f := sierpinskiFlame(t, 16, 16)
	f.Oversample = 2
	r := NewRenderer(f, Options{Workers: 2, Seed: 2})
	pc := NewPixelCounter(32, 32)
	var calls atomic.Int64
	r.RegisterIterationObserver(pc)
	r.RegisterIterationObserver(ObserverFunc(func(_, _, _ int) { calls.Add(1) }))
	rf, err := r.RenderFlame(context.Background(), RenderInfo{})
	if err != nil {
		t.Fatal(err)
	}
	if pc.Total() != rf.Stats.Get(Plotted) || calls.Load() != pc.Total() {
		t.Fatalf("observer saw %d/%d, plotted %d", pc.Total(), calls.Load(), rf.Stats.Get(Plotted))
	}
	snap, _ := r.Raster()
	if pc.Hits(16, 16) != int64(snap.At(16, 16).Count) {
		t.Fatal("per cell hits disagree with the raster")
	}
}

type recordingProgress struct {
	total, last atomic.Int64
	updates     atomic.Int64
}

func (p *recordingProgress) InitProgress(total int64) { p.total.Store(total) }
func (p *recordingProgress) UpdateProgress(current, _ int64) {
	p.last.Store(current)
	p.updates.Add(1)
}

func TestRenderProgress(t *testing.T) {
	r := NewRenderer(sierpinskiFlame(t, 32, 32), Options{Workers: 2, Seed: 4})
	p := &recordingProgress{}
	r.SetProgressUpdater(p)
	if _, err := r.RenderFlame(context.Background(), RenderInfo{}); err != nil {
		t.Fatal(err)
	}
	total := int64(32 * 32 * 20)
	if p.total.Load() != total || p.updates.Load() < 50 {
		t.Fatalf("init %d, %d updates", p.total.Load(), p.updates.Load())
	}
	if cur, tot := r.Progress(); cur != total || tot != total {
		t.Fatalf("progress %d/%d", cur, tot)
	}
}

// slowFlame needs far more samples than a test will wait for.
func slowFlame(t *testing.T) *Flame {
	f := sierpinskiFlame(t, 64, 64)
	f.SampleDensity = 1e6
	return f
}

func TestRenderCancel(t *testing.T) {
	r := NewRenderer(slowFlame(t), Options{Workers: 2, Seed: 1})
	ctx, cancel := context.WithCancel(context.Background())
	var cancelledAt atomic.Int64
	time.AfterFunc(20*time.Millisecond, func() {
		cancelledAt.Store(time.Now().UnixNano())
		cancel()
	})
	rf, err := r.RenderFlame(ctx, RenderInfo{})
	returned := time.Now()
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	// one poll is CancelCheckInterval samples; the rest is scheduling and
	// tonemapping a 64x64 image
	if d := returned.Sub(time.Unix(0, cancelledAt.Load())); d > 500*time.Millisecond {
		t.Fatalf("returned %v after cancel", d)
	}
	cur, total := r.Progress()
	if cur >= total {
		t.Fatalf("cancelled render finished: %d/%d", cur, total)
	}
	if rf == nil || rf.Image == nil || rf.Samples != cur || rf.Stats.Iterations != cur {
		t.Fatalf("partial result %+v, progress %d", rf, cur)
	}

	snap, err := r.Raster()
	if err != nil {
		t.Fatal(err)
	}
	for i, c := range snap.Cells {
		for _, v := range []Real{c.Count, c.Red, c.Green, c.Blue, c.Intensity} {
			if !isFinite(v) || v < 0 {
				t.Fatalf("cell %d corrupted: %+v", i, c)
			}
		}
	}
	if got, plotted := snap.TotalCount(), rf.Stats.Get(Plotted); got > Real(plotted) || plotted == 0 {
		t.Fatalf("raster holds %v hits, %d plotted", got, plotted)
	}

	again, err := r.FinishRenderFlame()
	if err != nil {
		t.Fatal(err)
	}
	if again.Samples != cur {
		t.Fatalf("finish after cancel: %d samples, want %d", again.Samples, cur)
	}
}

func TestLocalPreviewSeesWholeMerge(t *testing.T) {
	f := sierpinskiFlame(t, 64, 64)
	f.SampleDensity = 200
	r := NewRenderer(f, Options{Workers: 4, Seed: 2, Accumulation: AccumulateLocal})
	if err := r.StartRenderFlame(context.Background(), RenderInfo{}); err != nil {
		t.Fatal(err)
	}
	var seen []Real
	for r.Running() {
		if _, err := r.Preview(); err != nil {
			t.Fatal(err)
		}
		snap, err := r.Raster()
		if err != nil {
			t.Fatal(err)
		}
		seen = append(seen, snap.TotalCount())
	}
	if err := r.Wait(); err != nil {
		t.Fatal(err)
	}
	final, _ := r.Raster()
	want := final.TotalCount()
	if want == 0 {
		t.Fatal("nothing merged")
	}
	for i, got := range seen {
		if got != 0 && got != want {
			t.Fatalf("snapshot %d saw %v of %v hits", i, got, want)
		}
	}
}

func TestRenderInProgress(t *testing.T) {
	r := NewRenderer(slowFlame(t), Options{Workers: 1, Seed: 1})
	if err := r.Wait(); !errors.Is(err, ErrNotRendering) {
		t.Fatalf("Wait before start: %v", err)
	}
	if err := r.StartRenderFlame(context.Background(), RenderInfo{}); err != nil {
		t.Fatal(err)
	}
	if !r.Running() {
		t.Fatal("not running after start")
	}
	if err := r.StartRenderFlame(context.Background(), RenderInfo{}); !errors.Is(err, ErrRenderInProgress) {
		t.Fatalf("second start: %v", err)
	}
	if _, err := r.SaveState(); !errors.Is(err, ErrRenderInProgress) {
		t.Fatalf("SaveState while running: %v", err)
	}
	prev, err := r.Preview()
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if prev.Image.Bounds().Dx() != 64 {
		t.Fatalf("preview bounds %v", prev.Image.Bounds())
	}
	if err := r.Cancel(); err != nil {
		t.Fatal(err)
	}
	if r.Running() {
		t.Fatal("still running after Cancel")
	}
}

func TestRenderValidation(t *testing.T) {
	ctx := context.Background()
	empty := NewFlame()
	if _, err := NewRenderer(empty, Options{}).RenderFlame(ctx, RenderInfo{}); !errors.Is(err, ErrNoLayers) {
		t.Fatalf("no layers: %v", err)
	}
	empty.FirstLayer()
	if _, err := NewRenderer(empty, Options{}).RenderFlame(ctx, RenderInfo{}); !errors.Is(err, ErrNoXForms) {
		t.Fatalf("no xforms: %v", err)
	}
	zw := sierpinskiFlame(t, 8, 8)
	for _, xf := range zw.FirstLayer().XForms {
		xf.Weight = 0
	}
	if _, err := NewRenderer(zw, Options{}).RenderFlame(ctx, RenderInfo{}); !errors.Is(err, ErrZeroWeights) {
		t.Fatalf("zero weights: %v", err)
	}
	f := sierpinskiFlame(t, 8, 8)
	if _, err := NewRenderer(f, Options{}).RenderFlame(ctx, RenderInfo{Width: -1, Height: 4}); !errors.Is(err, ErrBadDimensions) {
		t.Fatalf("bad size: %v", err)
	}
	if _, err := NewRenderer(f, Options{}).RenderFlame(ctx, RenderInfo{Width: 8, Height: 8, SampleDensity: 1e-9}); !errors.Is(err, ErrZeroSamples) {
		t.Fatalf("zero samples: %v", err)
	}
	f.PixelsPerUnit = 0
	if _, err := NewRenderer(f, Options{}).RenderFlame(ctx, RenderInfo{}); !errors.Is(err, ErrBadCamera) {
		t.Fatalf("bad camera: %v", err)
	}
}

func TestRenderRejectsNilElements(t *testing.T) {
	ctx := context.Background()
	nilLayer := sierpinskiFlame(t, 8, 8)
	nilLayer.Layers = append([]*Layer{nil}, nilLayer.Layers...)
	nilXForm := sierpinskiFlame(t, 8, 8)
	nilXForm.FirstLayer().AddXForm(nil)
	nilFinal := sierpinskiFlame(t, 8, 8)
	nilFinal.FirstLayer().AddFinalXForm(nil)
	nilVar := sierpinskiFlame(t, 8, 8)
	nilVar.FirstLayer().XForms[1].Variations = append(nilVar.FirstLayer().XForms[1].Variations, nil)
	for name, f := range map[string]*Flame{"layer": nilLayer, "xform": nilXForm, "final": nilFinal, "variation": nilVar} {
		if err := f.Validate(); !errors.Is(err, ErrNilElement) {
			t.Fatalf("%s: Validate = %v", name, err)
		}
		if _, err := NewRenderer(f, Options{Workers: 1, Seed: 1}).RenderFlame(ctx, RenderInfo{}); !errors.Is(err, ErrNilElement) {
			t.Fatalf("%s: RenderFlame = %v", name, err)
		}
	}
}

func TestRenderInfoOverridesSizeAndHDR(t *testing.T) {
	r := NewRenderer(sierpinskiFlame(t, 32, 32), Options{Workers: 2, Seed: 8})
	rf, err := r.RenderFlame(context.Background(), RenderInfo{Width: 20, Height: 10, SampleDensity: 5, RenderHDR: true, RenderHDRIntensityMap: true})
	if err != nil {
		t.Fatal(err)
	}
	if b := rf.Image.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
		t.Fatalf("bounds %v", b)
	}
	if rf.Samples != 20*10*5 {
		t.Fatalf("samples %d", rf.Samples)
	}
	if rf.HDR == nil || rf.HDR.Width != 20 || rf.HDRIntensityMap == nil || rf.HDRIntensityMap.Height != 10 {
		t.Fatal("HDR outputs missing")
	}
}

func TestSaveStateResume(t *testing.T) {
	opts := Options{Workers: 1, Seed: 11}
	mk := func() *Flame {
		f := sierpinskiFlame(t, 48, 48)
		f.SampleDensity = 400
		return f
	}
	full := NewRenderer(mk(), opts)
	if _, err := full.RenderFlame(context.Background(), RenderInfo{}); err != nil {
		t.Fatal(err)
	}
	want, _ := full.Raster()

	r := NewRenderer(mk(), opts)
	if err := r.StartRenderFlame(context.Background(), RenderInfo{}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if err := r.Cancel(); err != nil {
		t.Fatal(err)
	}
	state, err := r.SaveState()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "state.json")
	if err := state.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadRenderState(path)
	if err != nil {
		t.Fatal(err)
	}

	resumed := NewRenderer(mk(), opts)
	if err := resumed.ResumeRenderFlame(context.Background(), RenderInfo{}, loaded); err != nil {
		t.Fatal(err)
	}
	if err := resumed.Wait(); err != nil {
		t.Fatal(err)
	}
	got, _ := resumed.Raster()
	sameCells(t, want, got)
	if cur, total := resumed.Progress(); cur != total {
		t.Fatalf("resumed render stopped at %d/%d", cur, total)
	}

	wrong := NewRenderer(mk(), Options{Workers: 3, Seed: 11})
	if err := wrong.ResumeRenderFlame(context.Background(), RenderInfo{}, loaded); !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("worker count mismatch: %v", err)
	}
	small := NewRenderer(mk(), opts)
	if err := small.ResumeRenderFlame(context.Background(), RenderInfo{Width: 10, Height: 10}, loaded); !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("size mismatch: %v", err)
	}
	moved := mk()
	moved.FirstLayer().XForms[2].Coeffs = AffineFrom(0.5, 0.5, 0, 0.3, 0.5)
	if err := NewRenderer(moved, opts).ResumeRenderFlame(context.Background(), RenderInfo{}, loaded); !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("edited xform: %v", err)
	}
	sparse := mk()
	sparse.SampleDensity = 1
	if err := NewRenderer(sparse, opts).ResumeRenderFlame(context.Background(), RenderInfo{}, loaded); !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("changed density: %v", err)
	}
	if err := NewRenderer(mk(), opts).ResumeRenderFlame(context.Background(), RenderInfo{SampleDensity: 2}, loaded); !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("changed render info density: %v", err)
	}
	retoned := mk()
	retoned.Gamma, retoned.Brightness = 2, 8
	rt := NewRenderer(retoned, opts)
	if err := rt.ResumeRenderFlame(context.Background(), RenderInfo{}, loaded); err != nil {
		t.Fatalf("tonemap-only change rejected: %v", err)
	}
	if err := rt.Wait(); err != nil {
		t.Fatal(err)
	}
	got, _ = rt.Raster()
	sameCells(t, want, got)

	loaded.Version++
	if err := NewRenderer(mk(), opts).ResumeRenderFlame(context.Background(), RenderInfo{}, loaded); !errors.Is(err, ErrCheckpointVersion) {
		t.Fatalf("version: %v", err)
	}
}
