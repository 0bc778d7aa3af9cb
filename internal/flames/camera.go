package flames

import (
	"math"
	"math/rand/v2"
)

// Camera projects flame-space points into raster cells: 3-D rotation and
// perspective, depth of field, depth dimming, then a 2-D roll around the view
// centre and the viewport window.
type Camera struct {
	m           Mat3
	perspective Real
	camZ        Real
	dof         Real
	dimishZ     Real
	doDOF       bool
	doDimish    bool
	is3D        bool

	rollCos, rollSin Real
	doRoll           bool
	centreX, centreY Real

	camX0, camY0 Real
	camW, camH   Real
	bws, bhs     Real // raster cells per unit

	RasterW, RasterH int
}

// ProjectedPoint is a camera-space position relative to the viewport origin
// plus the depth intensity factor.
type ProjectedPoint struct {
	X, Y      Real
	Intensity Real
}

// NewCamera sets up the view for a raster of rasterW×rasterH cells. The
// flame's PixelsPerUnit refers to output pixels; oversample scales it.
func NewCamera(f *Flame, rasterW, rasterH, oversample int) *Camera {
	os := Real(max(oversample, 1))
	ppu := f.PixelsPerUnit * f.CamZoom * os
	c := &Camera{
		m:           cameraRotation(f.CamPitch, f.CamYaw),
		perspective: f.CamPerspective,
		camZ:        f.CamZ,
		dof:         f.CamDOF * 0.1,
		dimishZ:     f.DimishZ,
		centreX:     f.CentreX,
		centreY:     f.CentreY,
		RasterW:     rasterW,
		RasterH:     rasterH,
	}
	c.doDOF = c.dof > epsilon
	c.doDimish = c.dimishZ > epsilon
	c.is3D = f.CamPitch != 0 || f.CamYaw != 0 || f.CamPerspective != 0 || c.doDOF || c.doDimish
	if f.CamRoll != 0 {
		c.doRoll = true
		c.rollSin, c.rollCos = math.Sincos(f.CamRoll * degToRad)
	}
	c.camW = Real(rasterW) / ppu
	c.camH = Real(rasterH) / ppu
	c.camX0 = f.CentreX - c.camW/2
	c.camY0 = f.CentreY - c.camH/2
	c.bws = (Real(rasterW) - 0.5) / c.camW
	c.bhs = (Real(rasterH) - 0.5) / c.camH
	DebugLog("Camera view=(%.4f, %.4f)+(%.4f x %.4f), raster=%dx%d, 3D=%v", c.camX0, c.camY0, c.camW, c.camH, rasterW, rasterH, c.is3D)
	return c
}

// Project maps p into camera space. It returns false for points that cannot
// be drawn (behind the camera, not finite, or outside the viewport).
func (c *Camera) Project(p *XYZPoint, rng *rand.Rand, out *ProjectedPoint) bool {
	x, y := p.X, p.Y
	out.Intensity = 1
	if c.is3D {
		v := c.m.MulVec(Vector3{p.X, p.Y, p.Z})
		zr := 1 - c.perspective*v.Z
		if zr < epsilon {
			return false
		}
		zdist := c.camZ - v.Z
		if c.doDimish && zdist > 0 {
			out.Intensity = math.Exp(-zdist * zdist * c.dimishZ)
		}
		px, py := v.X, v.Y
		if c.doDOF && zdist > 0 {
			s, cs := math.Sincos(2 * math.Pi * rng.Float64())
			dr := rng.Float64() * c.dof * zdist
			px += dr * cs
			py += dr * s
		}
		x, y = px/zr, py/zr
	}
	if c.doRoll {
		dx, dy := x-c.centreX, y-c.centreY
		x = c.rollCos*dx + c.rollSin*dy + c.centreX
		y = -c.rollSin*dx + c.rollCos*dy + c.centreY
	}
	if !isFinite(x) || !isFinite(y) {
		return false
	}
	x -= c.camX0
	if x < 0 || x >= c.camW {
		return false
	}
	y -= c.camY0
	if y < 0 || y >= c.camH {
		return false
	}
	out.X, out.Y = x, y
	return true
}

// Cell converts a projected position plus a pixel offset into a raster cell.
func (c *Camera) Cell(pp *ProjectedPoint, dx, dy Real) (int, int) {
	return int(math.Floor(c.bws*pp.X + dx + 0.5)), int(math.Floor(c.bhs*pp.Y + dy + 0.5))
}
