package flames

import "image"

// RenderInfo describes one render request.
type RenderInfo struct {
	Width, Height int // output pixels, 0×0 takes the flame's size
	// SampleDensity overrides the flame's samples per output pixel when > 0.
	SampleDensity         Real
	RenderHDR             bool
	RenderHDRIntensityMap bool
}

// RenderedFlame is the result of a render.
type RenderedFlame struct {
	Image           *image.NRGBA
	HDR             *HDRImage     // linear color, when requested
	HDRIntensityMap *IntensityMap // per pixel alpha before gamma, when requested
	Samples         int64         // samples actually iterated
	Stats           Stats
}
