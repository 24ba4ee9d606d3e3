package eyes

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// white fills the inside of a region of interest on every channel.
var white = color.RGBA{255, 255, 255, 255}

// Grey writes the single channel intensity of src into dst.
// Single channel input is copied unchanged, so Grey is idempotent.
func Grey(src gocv.Mat, dst *gocv.Mat) error {
	if src.Empty() {
		return ErrEmptyImage
	}

	var code gocv.ColorConversionCode
	switch ch := src.Channels(); ch {
	case 1:
		src.CopyTo(dst)
		return nonEmpty(*dst)
	case 3:
		code = gocv.ColorBGRToGray
	case 4:
		code = gocv.ColorBGRAToGray
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedChannels, ch)
	}

	gocv.CvtColor(src, dst, code)
	return nonEmpty(*dst)
}

// Blur writes a Gaussian smoothed copy of src into dst.
func Blur(src gocv.Mat, dst *gocv.Mat, opts BlurOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if src.Empty() {
		return ErrEmptyImage
	}

	gocv.GaussianBlur(src, dst, opts.KSize, opts.Sigma, 0, gocv.BorderDefault)
	return nonEmpty(*dst)
}

// Edges writes the Canny edge map of src into dst.
func Edges(src gocv.Mat, dst *gocv.Mat, opts CannyOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if src.Empty() {
		return ErrEmptyImage
	}

	gocv.Canny(src, dst, opts.Low, opts.High)
	return nonEmpty(*dst)
}

// Mask writes src into dst with every pixel outside the closed polygon
// described by corners set to zero.
func Mask(src gocv.Mat, dst *gocv.Mat, corners []image.Point) error {
	if len(corners) < MinCorners {
		return fmt.Errorf("%w: got %d", ErrTooFewCorners, len(corners))
	}
	if src.Empty() {
		return ErrEmptyImage
	}

	mask := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), src.Rows(), src.Cols(), src.Type())
	defer mask.Close()

	poly := gocv.NewPointsVectorFromPoints([][]image.Point{corners})
	defer poly.Close()

	gocv.FillPoly(&mask, poly, white)
	gocv.BitwiseAnd(mask, src, dst)
	return nonEmpty(*dst)
}

// nonEmpty reports OpenCV failures that left the destination empty.
func nonEmpty(m gocv.Mat) error {
	if m.Empty() {
		return ErrEmptyResult
	}
	return nil
}
