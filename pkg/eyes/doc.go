// Package eyes keeps a small set of images and chains common OpenCV
// preprocessing steps over them: greyscale conversion, Gaussian blur,
// Canny edge detection and polygonal region-of-interest masking.
//
// A Set holds two copies of every image. The original is captured when the
// image is added and never changes; the working copy is replaced by every
// transformation and restored by Reset.
//
//	set := eyes.New(road, sky)
//	defer set.Close()
//
//	set.GreyBlurred(eyes.DefaultBlurOptions())
//	set.Canny(eyes.DefaultCannyOptions(), eyes.Index(0))
//	set.SetROI([]image.Point{{0, 540}, {480, 300}, {960, 540}})
//
// Images are addressed by Key, which is either a positional index (images
// added without names) or a caller supplied name:
//
//	set := eyes.NewNamed(eyes.Pair("car", car), eyes.Pair("tree", tree))
//	set.GaussianBlur(eyes.BlurOptions{KSize: image.Pt(9, 9)}, eyes.Name("car"))
//
// Every operation takes an optional key selection; an empty selection means
// every image currently tracked. A Set is not safe for concurrent use.
package eyes
