package flames

import "errors"

var (
	ErrNoLayers          = errors.New("flame has no visible layer")
	ErrNoXForms          = errors.New("layer has no xforms")
	ErrZeroWeights       = errors.New("all xform weights are zero or negative")
	ErrZeroSamples       = errors.New("sample budget is zero")
	ErrBadDimensions     = errors.New("output dimensions must be positive")
	ErrBadCamera         = errors.New("pixels per unit and zoom must be positive")
	ErrNilElement        = errors.New("nil layer, xform or variation")
	ErrUnknownVariation  = errors.New("unknown variation")
	ErrUnknownParameter  = errors.New("unknown variation parameter")
	ErrUnknownResource   = errors.New("unknown variation resource")
	ErrRenderInProgress  = errors.New("a render is already in progress")
	ErrNotRendering      = errors.New("no render has been started")
	ErrStateMismatch     = errors.New("saved render state does not match this renderer")
	ErrCheckpointVersion = errors.New("unsupported checkpoint version")
)
