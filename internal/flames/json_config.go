package flames

import (
	"encoding/json"
	"fmt"
	"os"

	"seehuhn.de/go/geom/matrix"
)

// AffineCfg is either six raw coefficients (a b c d e f, x' = a x + c y + e,
// y' = b x + d y + f) or scale, rotation and offset.
type AffineCfg struct {
	Coeffs *[6]Real `json:"coeffs,omitempty"`
	Scale  [2]Real  `json:"scale,omitempty"` // defaults 1 on each axis
	RotDeg Real     `json:"rotDeg,omitempty"`
	Offset [2]Real  `json:"offset,omitempty"`
}

func (a *AffineCfg) Build() matrix.Matrix {
	if a == nil {
		return matrix.Identity
	}
	if a.Coeffs != nil {
		return matrix.Matrix(*a.Coeffs)
	}
	sx, sy := a.Scale[0], a.Scale[1]
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return AffineFrom(sx, sy, a.RotDeg, a.Offset[0], a.Offset[1])
}

type VariationCfg struct {
	Name      string            `json:"name"`
	Amount    *Real             `json:"amount,omitempty"` // defaults 1
	Params    map[string]Real   `json:"params,omitempty"`
	Resources map[string][]byte `json:"resources,omitempty"` // base64 in JSON
}

func (c VariationCfg) Build() (*Variation, error) {
	amount := 1.0
	if c.Amount != nil {
		amount = *c.Amount
	}
	v, err := NewVariation(c.Name, amount)
	if err != nil {
		return nil, err
	}
	for k, p := range c.Params {
		if err := v.Func.SetParameter(k, p); err != nil {
			return nil, fmt.Errorf("variation %s: %w", c.Name, err)
		}
	}
	for k, r := range c.Resources {
		if err := v.Func.SetResource(k, r); err != nil {
			return nil, fmt.Errorf("variation %s: %w", c.Name, err)
		}
	}
	return v, nil
}

type XFormCfg struct {
	Name            string         `json:"name,omitempty"`
	Weight          *Real          `json:"weight,omitempty"` // defaults 1
	Color           Real           `json:"color"`
	ColorSymmetry   Real           `json:"colorSymmetry,omitempty"`
	Opacity         *Real          `json:"opacity,omitempty"` // defaults 1
	DrawMode        string         `json:"drawMode,omitempty"`
	Affine          *AffineCfg     `json:"affine,omitempty"`
	Post            *AffineCfg     `json:"post,omitempty"`
	AntialiasAmount Real           `json:"antialiasAmount,omitempty"`
	AntialiasRadius Real           `json:"antialiasRadius,omitempty"`
	Variations      []VariationCfg `json:"variations,omitempty"`
	// ModifiedWeights replaces the weight of the xform with the given index
	// when it follows this one.
	ModifiedWeights map[int]Real `json:"modifiedWeights,omitempty"`
}

// Build validates and constructs the runtime object.
func (c XFormCfg) Build() (*XForm, error) {
	xf := NewXForm()
	xf.Name = c.Name
	if c.Weight != nil {
		xf.Weight = *c.Weight
	}
	if c.Opacity != nil {
		xf.Opacity = *c.Opacity
	}
	xf.Color = clamp(c.Color, 0, 1)
	xf.ColorSymmetry = clamp(c.ColorSymmetry, -1, 1)
	mode, err := ParseDrawMode(c.DrawMode)
	if err != nil {
		return nil, err
	}
	xf.DrawMode = mode
	xf.Coeffs = c.Affine.Build()
	xf.PostCoeffs = c.Post.Build()
	if !isContraction(xf.Coeffs) {
		DebugLog("xform %q affine part is not a contraction, relying on variations to keep it bounded", c.Name)
	}
	xf.AntialiasAmount = c.AntialiasAmount
	xf.AntialiasRadius = c.AntialiasRadius
	for _, vc := range c.Variations {
		v, err := vc.Build()
		if err != nil {
			return nil, fmt.Errorf("xform %q: %w", c.Name, err)
		}
		xf.Variations = append(xf.Variations, v)
	}
	for to, w := range c.ModifiedWeights {
		xf.SetModifiedWeight(to, w)
	}
	return xf, nil
}

type LayerCfg struct {
	Name    string        `json:"name,omitempty"`
	Hidden  bool          `json:"hidden,omitempty"`
	XForms  []XFormCfg    `json:"xforms"`
	Finals  []XFormCfg    `json:"finalXforms,omitempty"`
	Palette []PaletteStop `json:"palette,omitempty"`
}

func (c LayerCfg) Build() (*Layer, error) {
	l := NewLayer()
	l.Name = c.Name
	l.Visible = !c.Hidden
	if len(c.Palette) > 0 {
		p, err := NewGradientPalette(c.Palette...)
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", c.Name, err)
		}
		l.Palette = p
	}
	for _, xc := range c.XForms {
		xf, err := xc.Build()
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", c.Name, err)
		}
		l.AddXForm(xf)
	}
	for _, xc := range c.Finals {
		xf, err := xc.Build()
		if err != nil {
			return nil, fmt.Errorf("layer %q final: %w", c.Name, err)
		}
		l.AddFinalXForm(xf)
	}
	return l, nil
}

type ShadingCfg struct {
	Shading     string `json:"shading,omitempty"`
	BlurRadius  int    `json:"blurRadius,omitempty"`
	BlurFade    Real   `json:"blurFade,omitempty"`
	BlurFallOff Real   `json:"blurFallOff,omitempty"`
}

type FlameCfg struct {
	Name   string     `json:"name,omitempty"`
	Width  int        `json:"width,omitempty"`
	Height int        `json:"height,omitempty"`
	Layers []LayerCfg `json:"layers"`

	Centre         [2]Real `json:"centre,omitempty"`
	PixelsPerUnit  Real    `json:"pixelsPerUnit,omitempty"`
	CamZoom        Real    `json:"camZoom,omitempty"`
	CamRoll        Real    `json:"camRoll,omitempty"`
	CamPitch       Real    `json:"camPitch,omitempty"`
	CamYaw         Real    `json:"camYaw,omitempty"`
	CamPerspective Real    `json:"camPerspective,omitempty"`
	CamZ           Real    `json:"camZ,omitempty"`
	CamDOF         Real    `json:"camDOF,omitempty"`
	DimishZ        Real    `json:"dimishZ,omitempty"`
	PreserveZ      bool    `json:"preserveZ,omitempty"`

	Brightness     Real  `json:"brightness,omitempty"`
	Contrast       Real  `json:"contrast,omitempty"`
	Gamma          Real  `json:"gamma,omitempty"`
	GammaThreshold Real  `json:"gammaThreshold,omitempty"`
	Vibrancy       *Real `json:"vibrancy,omitempty"`
	WhiteLevel     int   `json:"whiteLevel,omitempty"`
	Background     RGB   `json:"background,omitempty"`
	BGTransparency bool  `json:"bgTransparency,omitempty"`

	SampleDensity       Real   `json:"sampleDensity,omitempty"`
	Oversample          int    `json:"oversample,omitempty"`
	SpatialFilterRadius *Real  `json:"spatialFilterRadius,omitempty"`
	SpatialFilterKernel string `json:"spatialFilterKernel,omitempty"`
	DEFilter            bool   `json:"deFilter,omitempty"`
	DEFilterMinRadius   Real   `json:"deFilterMinRadius,omitempty"`
	DEFilterMaxRadius   Real   `json:"deFilterMaxRadius,omitempty"`
	DEFilterCurve       Real   `json:"deFilterCurve,omitempty"`
	DEFilterKernel      string `json:"deFilterKernel,omitempty"`

	Shading ShadingCfg `json:"shading,omitempty"`
}

// Build starts from NewFlame defaults and applies every set field.
func (c FlameCfg) Build() (*Flame, error) {
	f := NewFlame()
	f.Name = c.Name
	if c.Width > 0 {
		f.Width = c.Width
	}
	if c.Height > 0 {
		f.Height = c.Height
	}
	f.CentreX, f.CentreY = c.Centre[0], c.Centre[1]
	if c.PixelsPerUnit > 0 {
		f.PixelsPerUnit = c.PixelsPerUnit
	}
	if c.CamZoom > 0 {
		f.CamZoom = c.CamZoom
	}
	f.CamRoll, f.CamPitch, f.CamYaw = c.CamRoll, c.CamPitch, c.CamYaw
	f.CamPerspective, f.CamZ, f.CamDOF, f.DimishZ = c.CamPerspective, c.CamZ, c.CamDOF, c.DimishZ
	f.PreserveZ = c.PreserveZ

	if c.Brightness > 0 {
		f.Brightness = c.Brightness
	}
	if c.Contrast > 0 {
		f.Contrast = c.Contrast
	}
	if c.Gamma > 0 {
		f.Gamma = c.Gamma
	}
	if c.GammaThreshold > 0 {
		f.GammaThreshold = c.GammaThreshold
	}
	if c.Vibrancy != nil {
		f.Vibrancy = clamp(*c.Vibrancy, 0, 1)
	}
	if c.WhiteLevel > 0 {
		f.WhiteLevel = c.WhiteLevel
	}
	f.Background = c.Background.clamp01()
	f.BGTransparency = c.BGTransparency

	if c.SampleDensity > 0 {
		f.SampleDensity = c.SampleDensity
	}
	if c.Oversample > 0 {
		f.Oversample = c.Oversample
	}
	if c.SpatialFilterRadius != nil {
		f.SpatialFilterRadius = *c.SpatialFilterRadius
	}
	var err error
	if f.SpatialFilterKernel, err = ParseFilterKernelType(c.SpatialFilterKernel); err != nil {
		return nil, err
	}
	f.DEFilterEnabled = c.DEFilter
	f.DEFilterMinRadius = c.DEFilterMinRadius
	if c.DEFilterMaxRadius > 0 {
		f.DEFilterMaxRadius = c.DEFilterMaxRadius
	}
	if c.DEFilterCurve > 0 {
		f.DEFilterCurve = c.DEFilterCurve
	}
	if f.DEFilterKernel, err = ParseFilterKernelType(c.DEFilterKernel); err != nil {
		return nil, err
	}

	if f.Shading.Shading, err = ParseShading(c.Shading.Shading); err != nil {
		return nil, err
	}
	if c.Shading.BlurRadius > 0 {
		f.Shading.BlurRadius = c.Shading.BlurRadius
	}
	if c.Shading.BlurFade > 0 {
		f.Shading.BlurFade = clamp(c.Shading.BlurFade, 0, 1)
	}
	if c.Shading.BlurFallOff > 0 {
		f.Shading.BlurFallOff = c.Shading.BlurFallOff
	}

	for _, lc := range c.Layers {
		l, err := lc.Build()
		if err != nil {
			return nil, err
		}
		f.AddLayer(l)
	}
	return f, nil
}

type OutputCfg struct {
	PNG       string `json:"png,omitempty"`
	GIF       string `json:"gif,omitempty"`
	RAW       string `json:"raw,omitempty"`
	TIFF      string `json:"tiff,omitempty"`
	Intensity string `json:"intensity,omitempty"` // 16-bit intensity map PNG
	State     string `json:"state,omitempty"`     // render state to resume from and save to
	GIFFrames int    `json:"gifFrames,omitempty"`
	GIFDelay  int    `json:"gifDelay,omitempty"`
}

type Config struct {
	Flame        FlameCfg  `json:"flame"`
	Output       OutputCfg `json:"output"`
	Workers      int       `json:"workers,omitempty"`
	Seed         uint64    `json:"seed,omitempty"`
	Accumulation string    `json:"accumulation,omitempty"`
	TimeoutSec   Real      `json:"timeoutSec,omitempty"`
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	// Defaults / validation
	if cfg.Output.PNG == "" {
		cfg.Output.PNG = PNGOut
	}
	if cfg.Output.GIFFrames <= 0 {
		cfg.Output.GIFFrames = GIFFrames
	}
	if cfg.Output.GIFDelay <= 0 {
		cfg.Output.GIFDelay = GIFDelay
	}
	if _, err := ParseAccumulationMode(cfg.Accumulation); err != nil {
		return nil, err
	}
	if len(cfg.Flame.Layers) == 0 {
		return nil, fmt.Errorf("config has no layers")
	}
	DebugLog("Loaded config from %s: size=(%d, %d), layers=%d, density=%.2f", path, cfg.Flame.Width, cfg.Flame.Height, len(cfg.Flame.Layers), cfg.Flame.SampleDensity)
	return &cfg, nil
}
