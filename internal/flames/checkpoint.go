package flames

import (
	"bytes"
	"encoding/json"
	"fmt"
	"hash"
	"hash/fnv"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
)

// ChainState is the resumable state of one chain.
type ChainState struct {
	Layer      int      `json:"layer"`
	XFormIndex int      `json:"xformIndex"`
	Iter       int64    `json:"iter"`
	Target     int64    `json:"target"`
	Diverged   bool     `json:"diverged,omitempty"`
	P          XYZPoint `json:"p"`
	Q          XYZPoint `json:"q"`
	AffineT    XYZPoint `json:"affineT"`
	VarT       XYZPoint `json:"varT"`
}

// Checkpoint is the resumable state of one worker. Restoring it into a worker
// of the same job and continuing gives the same samples as never stopping.
type Checkpoint struct {
	Version  int          `json:"version"`
	WorkerID int          `json:"workerId"`
	Budget   int64        `json:"budget"`
	RNG      []byte       `json:"rng"`
	Chains   []ChainState `json:"chains"`
	Stats    Stats        `json:"stats"`
}

// Checkpoint captures the worker. It must not run concurrently with Iterate.
func (w *Worker) Checkpoint() (*Checkpoint, error) {
	rng, err := w.pcg.MarshalBinary()
	if err != nil {
		return nil, err
	}
	cp := &Checkpoint{
		Version:  CheckpointVersion,
		WorkerID: w.ID,
		Budget:   w.budget,
		RNG:      rng,
		Stats:    w.stats,
	}
	for _, c := range w.chains {
		cs := ChainState{
			Layer:      c.layer.index,
			XFormIndex: c.xfIndex,
			Iter:       c.iter,
			Target:     c.target,
			P:          c.p,
			Q:          finiteOrZero(c.q),
			AffineT:    finiteOrZero(c.affineT),
			VarT:       finiteOrZero(c.varT),
		}
		// JSON has no NaN; a diverged chain is re-fused at its next poll anyway
		if !c.p.IsFinite() {
			cs.P, cs.Diverged = XYZPoint{}, true
		}
		cp.Chains = append(cp.Chains, cs)
	}
	return cp, nil
}

// Restore loads cp into the worker. The worker must belong to a job built
// from the same flame.
func (w *Worker) Restore(cp *Checkpoint) error {
	if cp == nil {
		return fmt.Errorf("%w: nil checkpoint", ErrStateMismatch)
	}
	if cp.Version != CheckpointVersion {
		return fmt.Errorf("%w: %d", ErrCheckpointVersion, cp.Version)
	}
	if len(cp.Chains) != len(w.chains) {
		return fmt.Errorf("%w: %d chains, worker has %d", ErrStateMismatch, len(cp.Chains), len(w.chains))
	}
	for i, cs := range cp.Chains {
		c := w.chains[i]
		if cs.Layer != c.layer.index {
			return fmt.Errorf("%w: chain %d is for layer %d, expected %d", ErrStateMismatch, i, cs.Layer, c.layer.index)
		}
		if cs.XFormIndex < 0 || cs.XFormIndex >= len(c.layer.xforms) {
			return fmt.Errorf("%w: chain %d xform index %d out of range", ErrStateMismatch, i, cs.XFormIndex)
		}
		if cs.Iter < 0 || cs.Target < 0 || cs.Iter > cs.Target {
			return fmt.Errorf("%w: chain %d iteration %d/%d", ErrStateMismatch, i, cs.Iter, cs.Target)
		}
	}
	if err := w.pcg.UnmarshalBinary(cp.RNG); err != nil {
		return fmt.Errorf("%w: %v", ErrStateMismatch, err)
	}
	for i, cs := range cp.Chains {
		c := w.chains[i]
		c.xfIndex = cs.XFormIndex
		c.iter = cs.Iter
		c.target = cs.Target
		c.blurMax = c.blurLimit(w.job.blurFade)
		c.p, c.q, c.affineT, c.varT = cs.P, cs.Q, cs.AffineT, cs.VarT
		if cs.Diverged {
			c.p.X = math.NaN()
		}
		c.p.Invalidate()
		c.q.Invalidate()
		c.affineT.Invalidate()
		c.varT.Invalidate()
	}
	w.ID = cp.WorkerID
	w.budget = cp.Budget
	w.stats = cp.Stats
	return nil
}

func (c *Checkpoint) Equal(o *Checkpoint) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.Version != o.Version || c.WorkerID != o.WorkerID || c.Budget != o.Budget ||
		!bytes.Equal(c.RNG, o.RNG) || c.Stats != o.Stats || len(c.Chains) != len(o.Chains) {
		return false
	}
	for i, a := range c.Chains {
		b := o.Chains[i]
		if a.Layer != b.Layer || a.Diverged != b.Diverged || a.XFormIndex != b.XFormIndex || a.Iter != b.Iter || a.Target != b.Target ||
			!a.P.Equal(b.P) || !a.Q.Equal(b.Q) || !a.AffineT.Equal(b.AffineT) || !a.VarT.Equal(b.VarT) {
			return false
		}
	}
	return true
}

// finiteOrZero drops scratch points that cannot be encoded. They are
// overwritten before being read again.
func finiteOrZero(p XYZPoint) XYZPoint {
	if p.IsFinite() && isFinite(p.RedColor) && isFinite(p.GreenColor) && isFinite(p.BlueColor) {
		return p
	}
	return XYZPoint{}
}

// RenderState is everything needed to resume a stopped render. Scene is the
// fingerprint of what the raster was built from and Samples the budget of
// the whole render; a resume with either changed is rejected.
type RenderState struct {
	Version int             `json:"version"`
	Scene   string          `json:"scene"`
	Samples int64           `json:"samples"`
	Workers []*Checkpoint   `json:"workers"`
	Raster  *RasterSnapshot `json:"raster"`
}

// sceneFingerprint hashes everything that decides where samples land and
// what color they carry. Tonemapping and filter settings are left out, so
// those can change between resumed bursts.
func sceneFingerprint(f *Flame, rasterW, rasterH int) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%dx%d|%v %v %v %v|%v %v %v %v|%v %v %v %v|%v|%+v|",
		rasterW, rasterH,
		f.CentreX, f.CentreY, f.PixelsPerUnit, f.CamZoom,
		f.CamRoll, f.CamPitch, f.CamYaw, f.CamPerspective,
		f.CamZ, f.CamDOF, f.DimishZ, f.PreserveZ,
		f.Oversample, f.Shading)
	for _, li := range f.visibleLayers() {
		l := f.Layers[li]
		fmt.Fprintf(h, "layer %d|", li)
		if l.Palette != nil {
			fmt.Fprintf(h, "%v|", l.Palette.Colors)
		}
		for _, xf := range l.XForms {
			writeXFormFingerprint(h, xf)
		}
		io.WriteString(h, "finals|")
		for _, xf := range l.FinalXForms {
			writeXFormFingerprint(h, xf)
		}
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

func writeXFormFingerprint(h hash.Hash, xf *XForm) {
	fmt.Fprintf(h, "xf %v %v %v %v %v %v %v %v %v %v|",
		xf.Coeffs, xf.PostCoeffs, xf.Weight, xf.Color, xf.ColorSymmetry,
		xf.Opacity, xf.DrawMode, xf.AntialiasAmount, xf.AntialiasRadius, xf.modifiedWeights)
	for _, v := range xf.Variations {
		fmt.Fprintf(h, "%s %v %v|", v.Func.Name(), v.Amount, v.Func.ParameterValues())
		for _, res := range v.Func.ResourceValues() {
			h.Write(res)
			io.WriteString(h, "|")
		}
	}
}

// Save writes the state as JSON.
func (s *RenderState) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func LoadRenderState(path string) (*RenderState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s RenderState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Version != CheckpointVersion {
		return nil, fmt.Errorf("%w: %d", ErrCheckpointVersion, s.Version)
	}
	return &s, nil
}
