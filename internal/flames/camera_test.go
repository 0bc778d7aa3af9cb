package flames

import (
	"math/rand/v2"
	"testing"
)

func cameraFlame() *Flame {
	f := NewFlame()
	f.Width, f.Height = 20, 10
	f.CentreX, f.CentreY = 1, -1
	f.PixelsPerUnit = 10
	return f
}

func TestCameraCentreCell(t *testing.T) {
	f := cameraFlame()
	cam := NewCamera(f, 20, 10, 1)
	rng := rand.New(rand.NewPCG(1, 1))
	var pp ProjectedPoint
	if !cam.Project(&XYZPoint{X: 1, Y: -1}, rng, &pp) {
		t.Fatal("centre rejected")
	}
	if x, y := cam.Cell(&pp, 0, 0); x != 10 || y != 5 {
		t.Fatalf("centre cell = (%d, %d)", x, y)
	}
	if pp.Intensity != 1 {
		t.Fatalf("intensity = %v", pp.Intensity)
	}
}

func TestCameraViewport(t *testing.T) {
	cam := NewCamera(cameraFlame(), 20, 10, 1)
	rng := rand.New(rand.NewPCG(1, 1))
	var pp ProjectedPoint
	for _, p := range []XYZPoint{{X: 2.01, Y: -1}, {X: -0.01, Y: -1}, {X: 1, Y: -0.49}, {X: 1, Y: -1.51}} {
		if cam.Project(&p, rng, &pp) {
			t.Fatalf("%+v accepted", p)
		}
	}
	for _, p := range []XYZPoint{{X: 0.001, Y: -1.499}, {X: 1.999, Y: -0.501}} {
		if !cam.Project(&p, rng, &pp) {
			t.Fatalf("%+v rejected", p)
		}
		x, y := cam.Cell(&pp, 0, 0)
		if x < 0 || x >= 20 || y < 0 || y >= 10 {
			t.Fatalf("%+v mapped outside: (%d, %d)", p, x, y)
		}
	}
}

func TestCameraOversampleAndZoom(t *testing.T) {
	f := cameraFlame()
	f.CamZoom = 2
	cam := NewCamera(f, 40, 20, 2)
	var pp ProjectedPoint
	// 0.2 units right of centre at 40 cells per unit
	if !cam.Project(&XYZPoint{X: 1.2, Y: -1}, nil, &pp) {
		t.Fatal("rejected")
	}
	if x, _ := cam.Cell(&pp, 0, 0); x != 20+8 {
		t.Fatalf("x = %d", x)
	}
}

func TestCameraRollAboutCentre(t *testing.T) {
	f := cameraFlame()
	f.CamRoll = 90
	cam := NewCamera(f, 20, 10, 1)
	var pp ProjectedPoint
	if !cam.Project(&XYZPoint{X: 1, Y: -1}, nil, &pp) {
		t.Fatal("centre rejected under roll")
	}
	if x, y := cam.Cell(&pp, 0, 0); x != 10 || y != 5 {
		t.Fatalf("centre moved to (%d, %d)", x, y)
	}
	if !cam.Project(&XYZPoint{X: 1, Y: -0.7}, nil, &pp) {
		t.Fatal("rolled point rejected")
	}
	if x, y := cam.Cell(&pp, 0, 0); x != 13 || y != 5 {
		t.Fatalf("rolled point at (%d, %d), want (13, 5)", x, y)
	}
}

func TestCameraPerspectiveRejectsBehind(t *testing.T) {
	f := cameraFlame()
	f.CentreX, f.CentreY = 0, 0
	f.CamPerspective = 0.5
	cam := NewCamera(f, 20, 10, 1)
	rng := rand.New(rand.NewPCG(2, 2))
	var pp ProjectedPoint
	if cam.Project(&XYZPoint{Z: 3}, rng, &pp) {
		t.Fatal("point behind the camera accepted")
	}
	if !cam.Project(&XYZPoint{X: 0.1, Z: -1}, rng, &pp) {
		t.Fatal("point in front rejected")
	}
	// zr = 1.5 shrinks towards the centre
	if !approxEqual(pp.X, 1+0.1/1.5, 1e-12) {
		t.Fatalf("perspective x = %v", pp.X)
	}
}

func TestCameraDimishZ(t *testing.T) {
	f := cameraFlame()
	f.CentreX, f.CentreY = 0, 0
	f.DimishZ = 0.5
	cam := NewCamera(f, 20, 10, 1)
	rng := rand.New(rand.NewPCG(3, 3))
	var near, far ProjectedPoint
	cam.Project(&XYZPoint{Z: -0.5}, rng, &near)
	cam.Project(&XYZPoint{Z: -2}, rng, &far)
	if !(far.Intensity < near.Intensity && near.Intensity < 1) {
		t.Fatalf("intensities near=%v far=%v", near.Intensity, far.Intensity)
	}
}
