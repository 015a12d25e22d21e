package compositor

import "errors"

// Sentinel errors. Contract violations (ErrTooManyLayers, ErrUnknownLayer,
// ErrDuplicateLayer) are raised with panic, wrapped with context; test for
// them with errors.Is on the recovered value.
var (
	// ErrTooManyLayers is raised when adding a layer beyond MaxLayers.
	ErrTooManyLayers = errors.New("compositor: too many layers")

	// ErrUnknownLayer is raised when Move references a layer that was never added.
	ErrUnknownLayer = errors.New("compositor: unknown layer")

	// ErrDuplicateLayer is raised when the same layer is added twice.
	ErrDuplicateLayer = errors.New("compositor: layer already added")

	// ErrNilContext is returned by NewWorker without a render context.
	ErrNilContext = errors.New("compositor: nil render context")

	// ErrInvalidSize is returned for a non-positive or oversized output size.
	ErrInvalidSize = errors.New("compositor: invalid output size")

	// ErrTextureAllocation is returned when the composition texture cannot be created.
	ErrTextureAllocation = errors.New("compositor: composition texture allocation failed")

	// ErrBufferTooSmall is returned by WriteTexture when the destination
	// cannot hold the output frame at the given row stride.
	ErrBufferTooSmall = errors.New("compositor: buffer too small")
)
