package eyes

import (
	"fmt"
	"image"
)

// Default processing parameters.
const (
	DefaultKernelSize    = 5
	DefaultSigma         = 0.0
	DefaultLowThreshold  = 50
	DefaultHighThreshold = 150

	// MinCorners is the smallest polygon accepted by SetROI.
	MinCorners = 3
)

// BlurOptions configures Gaussian smoothing.
type BlurOptions struct {
	// KSize is the kernel width and height. Both must be positive and odd.
	KSize image.Point

	// Sigma is the kernel standard deviation in X and Y.
	// Zero derives it from the kernel size.
	Sigma float64
}

// DefaultBlurOptions returns a 5x5 kernel with sigma derived from its size.
func DefaultBlurOptions() BlurOptions {
	return BlurOptions{
		KSize: image.Pt(DefaultKernelSize, DefaultKernelSize),
		Sigma: DefaultSigma,
	}
}

// Validate checks the kernel and sigma.
func (o BlurOptions) Validate() error {
	if o.KSize.X <= 0 || o.KSize.Y <= 0 || o.KSize.X%2 == 0 || o.KSize.Y%2 == 0 {
		return fmt.Errorf("%w: got %dx%d", ErrInvalidKernel, o.KSize.X, o.KSize.Y)
	}
	if o.Sigma < 0 {
		return fmt.Errorf("eyes: sigma must not be negative, got %v", o.Sigma)
	}
	return nil
}

// CannyOptions configures the hysteresis thresholds of edge detection.
type CannyOptions struct {
	Low  float32
	High float32
}

// DefaultCannyOptions returns thresholds 50 and 150.
func DefaultCannyOptions() CannyOptions {
	return CannyOptions{
		Low:  DefaultLowThreshold,
		High: DefaultHighThreshold,
	}
}

// Validate checks that both thresholds are non-negative.
// OpenCV swaps Low and High itself when they are given in the wrong order.
func (o CannyOptions) Validate() error {
	if o.Low < 0 || o.High < 0 {
		return fmt.Errorf("%w: low=%v high=%v", ErrInvalidThreshold, o.Low, o.High)
	}
	return nil
}
