package eyes

import "errors"

var (
	// ErrTooFewCorners is returned when a region of interest has fewer than
	// MinCorners points. No image is modified.
	ErrTooFewCorners = errors.New("eyes: region of interest needs at least 3 corners")

	// ErrNotFound is returned when a selection names a key that is not tracked.
	ErrNotFound = errors.New("eyes: image not found")

	// ErrInvalidKernel is returned for blur kernels that are not positive and odd.
	ErrInvalidKernel = errors.New("eyes: kernel size must be positive and odd")

	// ErrInvalidThreshold is returned for negative Canny thresholds.
	ErrInvalidThreshold = errors.New("eyes: thresholds must not be negative")

	// ErrEmptyImage is returned when an operation is given an empty Mat.
	ErrEmptyImage = errors.New("eyes: empty image")

	// ErrEmptyResult is returned when OpenCV produced no output.
	ErrEmptyResult = errors.New("eyes: operation produced an empty image")

	// ErrUnsupportedChannels is returned for images that are not 1, 3 or 4 channel.
	ErrUnsupportedChannels = errors.New("eyes: unsupported channel count")
)
