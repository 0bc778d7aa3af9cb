package flames

import "fmt"

// Flame is the whole scene: layers, camera, tonemapping and filtering
// parameters.
type Flame struct {
	Name   string
	Width  int
	Height int
	Layers []*Layer

	// camera
	CentreX, CentreY Real
	PixelsPerUnit    Real
	CamZoom          Real
	CamRoll          Real // degrees
	CamPitch         Real // degrees
	CamYaw           Real // degrees
	CamPerspective   Real
	CamZ             Real // focal plane for depth of field and dimming
	CamDOF           Real
	DimishZ          Real
	PreserveZ        bool

	// tonemapping
	Brightness     Real
	Contrast       Real
	Gamma          Real
	GammaThreshold Real
	Vibrancy       Real
	WhiteLevel     int
	Background     RGB
	BGTransparency bool

	// sampling and filtering
	SampleDensity       Real
	Oversample          int
	SpatialFilterRadius Real
	SpatialFilterKernel FilterKernelType
	DEFilterEnabled     bool
	DEFilterMinRadius   Real
	DEFilterMaxRadius   Real
	DEFilterCurve       Real
	DEFilterKernel      FilterKernelType

	Shading ShadingInfo
}

// NewFlame returns a flame with the usual defaults and no layers.
func NewFlame() *Flame {
	return &Flame{
		Width:               DefaultWidth,
		Height:              DefaultHeight,
		PixelsPerUnit:       50,
		CamZoom:             1,
		Brightness:          4,
		Contrast:            1,
		Gamma:               4,
		GammaThreshold:      0.01,
		Vibrancy:            1,
		WhiteLevel:          200,
		SampleDensity:       100,
		Oversample:          1,
		SpatialFilterRadius: 0.75,
		SpatialFilterKernel: FilterGaussian,
		DEFilterMaxRadius:   0.7,
		DEFilterCurve:       0.36,
		DEFilterKernel:      FilterGaussian,
		Shading:             DefaultShadingInfo(),
	}
}

func (f *Flame) AddLayer(l *Layer) { f.Layers = append(f.Layers, l) }

// FirstLayer returns the first layer, creating one if needed.
func (f *Flame) FirstLayer() *Layer {
	if len(f.Layers) == 0 {
		f.AddLayer(NewLayer())
	}
	return f.Layers[0]
}

// Clone deep copies the flame; every kernel gets a fresh instance.
func (f *Flame) Clone() (*Flame, error) {
	c := *f
	c.Layers = make([]*Layer, 0, len(f.Layers))
	for _, l := range f.Layers {
		nl, err := l.Clone()
		if err != nil {
			return nil, err
		}
		c.Layers = append(c.Layers, nl)
	}
	return &c, nil
}

// visibleLayers keeps the original indices so checkpoints stay stable.
func (f *Flame) visibleLayers() []int {
	var out []int
	for i, l := range f.Layers {
		if l != nil && l.Visible {
			out = append(out, i)
		}
	}
	return out
}

// Validate checks everything a render needs.
func (f *Flame) Validate() error {
	for i, l := range f.Layers {
		if l == nil {
			return fmt.Errorf("%w: layer %d", ErrNilElement, i)
		}
		if err := l.checkElements(); err != nil {
			return err
		}
	}
	vis := f.visibleLayers()
	if len(vis) == 0 {
		return ErrNoLayers
	}
	for _, i := range vis {
		if err := f.Layers[i].validate(); err != nil {
			return err
		}
	}
	if !(f.PixelsPerUnit > 0) || !(f.CamZoom > 0) {
		return fmt.Errorf("%w: ppu=%v zoom=%v", ErrBadCamera, f.PixelsPerUnit, f.CamZoom)
	}
	if !(f.Gamma > 0) {
		return fmt.Errorf("gamma must be positive, got %v", f.Gamma)
	}
	return nil
}
