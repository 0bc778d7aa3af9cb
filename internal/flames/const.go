package flames

// Real is the floating point type used by the geometry and accumulation code.
type Real = float64

// Raster channel indices for readability.
const (
	ChCount        = 0
	ChR            = 1
	ChG            = 2
	ChB            = 3
	ChI            = 4
	RasterChannels = 5
)

const (
	NextAppliedXFormTableSize = 1024
	FuseIterations            = 100
	RefuseInterval            = 10_000
	CancelCheckInterval       = 100 // iterations between cancel polls, divergence checks and progress flushes
	PaletteSize               = 256
	NumShards                 = 1024
	PrefilterWhite            = 255
	DEThreshold               = 100
	CheckpointVersion         = 2
	GIFDelay                  = 20 // 100ths of a second per preview frame
	GIFFrames                 = 10
	PreviewMaxSize            = 320
	DefaultWidth              = 800
	DefaultHeight             = 600
	PNGOut                    = "flame.png"
	// hot-loop constants
	epsilon      = 1e-6
	smallEpsilon = 1e-300
	goldenGamma  = 0x9e3779b97f4a7c15
)
