package flames

import "time"

var (
	Debug        = false            // set to true for verbose debug output
	GIF          = false            // set to true to save an animated GIF of progressive previews
	RAW          = false            // set to true to save the raw accumulation raster
	TIFF         = false            // set to true to save a 16-bit linear HDR TIFF
	Workers      = 0                // number of iteration workers, 0 means runtime.NumCPU()
	Seed         = uint64(0)        // base seed for worker RNGs, 0 means time based
	Timeout      = time.Duration(0) // stop iterating after this long and tonemap what was gathered, 0 means no limit
	Accumulation = ""               // atomic, locked or local; empty uses the config value
	// Compile time checks to ensure that the variation interface is implemented by all builtin kernels
	_ VariationFunc = (*linearFunc)(nil)
	_ VariationFunc = (*juliaFunc)(nil)
	_ VariationFunc = (*npolarFunc)(nil)
	_ VariationFunc = (*parabolaFunc)(nil)
	_ VariationFunc = (*preCircleCropFunc)(nil)
	_ VariationFunc = (*postZScaleWFFunc)(nil)
	_ VariationFunc = (*postColorMapWFFunc)(nil)
	_ VariationFunc = (*dcLinearFunc)(nil)
	// observers
	_ IterationObserver = (*PixelCounter)(nil)
	_ IterationObserver = ObserverFunc(nil)
	_ ProgressUpdater   = (*ConsoleProgress)(nil)
)
