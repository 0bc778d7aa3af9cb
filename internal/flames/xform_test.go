package flames

import (
	"testing"

	"seehuhn.de/go/geom/matrix"
)

func preparedXForm(t *testing.T, xf *XForm) *TransformationContext {
	t.Helper()
	ctx := testContext()
	if err := xf.prepare(ctx, nil); err != nil {
		t.Fatal(err)
	}
	return ctx
}

func TestTransformAffineAndPost(t *testing.T) {
	xf := NewXForm()
	xf.Coeffs = AffineFrom(2, 2, 0, 1, 0)
	xf.PostCoeffs = AffineFrom(1, 1, 0, 0, -3)
	mustVariation(t, xf, "linear", 0.5)
	ctx := preparedXForm(t, xf)
	var a, v, out XYZPoint
	src := XYZPoint{X: 1, Y: 1}
	xf.transformPoint(ctx, &a, &v, &src, &out)
	// affine (3, 2), linear halves it, post moves y down by 3
	if out.X != 1.5 || out.Y != -2 {
		t.Fatalf("out = (%v, %v)", out.X, out.Y)
	}
}

func TestTransformWithoutVariationsUsesAffine(t *testing.T) {
	xf := NewXForm()
	xf.Coeffs = AffineFrom(1, 1, 0, 0.25, 0)
	ctx := preparedXForm(t, xf)
	var a, v XYZPoint
	p := XYZPoint{X: 1, Y: 2, Z: 3}
	xf.transformPoint(ctx, &a, &v, &p, &p)
	if p.X != 1.25 || p.Y != 2 || p.Z != 3 {
		t.Fatalf("p = %+v", p)
	}
}

func TestTransformColorSymmetry(t *testing.T) {
	for _, tc := range []struct{ sym, in, want Real }{
		{0, 0.2, 0.1 + 0.4},
		{1, 0.2, 0.2},
		{-1, 0.2, 0.8},
	} {
		xf := NewXForm()
		xf.Color = 0.8
		xf.ColorSymmetry = tc.sym
		ctx := preparedXForm(t, xf)
		var a, v, out XYZPoint
		src := XYZPoint{Color: tc.in}
		xf.transformPoint(ctx, &a, &v, &src, &out)
		if !approxEqual(out.Color, tc.want, 1e-12) {
			t.Fatalf("symmetry %v: color %v, want %v", tc.sym, out.Color, tc.want)
		}
	}
}

func TestTransformPriorityOrder(t *testing.T) {
	xf := NewXForm()
	// listed out of order on purpose
	post := mustVariation(t, xf, "post_zscale_wf", 2)
	_ = post.Func.SetParameter("ztranslate", 1)
	mustVariation(t, xf, "linear3D", 1)
	crop := mustVariation(t, xf, "pre_circlecrop", 0)
	_ = crop.Func.SetParameter("radius", 0.5)
	ctx := preparedXForm(t, xf)
	if len(xf.preVars) != 1 || len(xf.vars) != 1 || len(xf.postVars) != 1 {
		t.Fatalf("split %d/%d/%d", len(xf.preVars), len(xf.vars), len(xf.postVars))
	}
	var a, v, out XYZPoint
	src := XYZPoint{X: 3, Y: 0, Z: 1}
	xf.transformPoint(ctx, &a, &v, &src, &out)
	// crop zeroes the escaped point, linear3D copies it, post scales z then translates
	if out.X != 0 || out.Y != 0 || out.Z != 2*1+1 {
		t.Fatalf("out = %+v", out)
	}
}

func TestXFormCloneIndependent(t *testing.T) {
	xf := NewXForm()
	v := mustVariation(t, xf, "npolar", 1)
	_ = v.Func.SetParameter("n", 4)
	xf.SetModifiedWeight(2, 0.1)
	c, err := xf.Clone()
	if err != nil {
		t.Fatal(err)
	}
	_ = v.Func.SetParameter("n", 7)
	xf.SetModifiedWeight(2, 9)
	if c.Variations[0].Func.ParameterValues()[1] != 4 {
		t.Fatal("clone shares parameters")
	}
	if w, _ := c.ModifiedWeight(2); w != 0.1 {
		t.Fatal("clone shares modified weights")
	}
	c.ClearModifiedWeight(2)
	if len(c.ModifiedWeights()) != 0 {
		t.Fatal("clear failed")
	}
}

func TestDrawModeNames(t *testing.T) {
	for _, m := range []DrawMode{DrawNormal, DrawHidden, DrawOpaque} {
		got, err := ParseDrawMode(m.String())
		if err != nil || got != m {
			t.Fatalf("%s: %v %v", m, got, err)
		}
	}
	if _, err := ParseDrawMode("sometimes"); err == nil {
		t.Fatal("unknown mode accepted")
	}
}

func TestFlameCloneAndVisibility(t *testing.T) {
	f := sierpinskiFlame(t, 8, 8)
	hidden := NewLayer()
	hidden.Visible = false
	f.AddLayer(hidden)
	c, err := f.Clone()
	if err != nil {
		t.Fatal(err)
	}
	c.Layers[0].XForms[0].Coeffs = matrix.Identity
	if f.Layers[0].XForms[0].Coeffs == matrix.Identity {
		t.Fatal("clone shares xforms")
	}
	if vis := f.visibleLayers(); len(vis) != 1 || vis[0] != 0 {
		t.Fatalf("visible = %v", vis)
	}
	if err := f.Validate(); err != nil {
		t.Fatal(err)
	}
	f.Gamma = 0
	if err := f.Validate(); err == nil {
		t.Fatal("zero gamma accepted")
	}
}

func TestStatsAdd(t *testing.T) {
	var a, b Stats
	a.count(Plotted)
	a.Iterations = 1
	b.count(Plotted)
	b.count(Rejected)
	b.Iterations = 2
	a.Add(b)
	if a.Iterations != 3 || a.Get(Plotted) != 2 || a.Get(Rejected) != 1 {
		t.Fatalf("sum %s", a)
	}
	if a.String() != "iterations=3 plotted=2 hidden=0 rejected=1 out_of_bounds=0 diverged=0" {
		t.Fatalf("String = %q", a.String())
	}
}
