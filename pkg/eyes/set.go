package eyes

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/teslashibe/go-eyes/internal/log"
	"gocv.io/x/gocv"
)

// Named pairs an image with the key it is stored under.
type Named struct {
	Key   Key
	Image gocv.Mat
}

// Pair is shorthand for a Named image with a string name.
func Pair(name string, img gocv.Mat) Named {
	return Named{Key: Name(name), Image: img}
}

// Set holds the original and working copy of each image.
//
// Every image handed to a Set is cloned on insertion, and every image
// returned by Get is a clone, so callers keep ownership of their own Mats
// and must close them. Close releases the Mats owned by the Set.
type Set struct {
	originals map[Key]gocv.Mat
	images    map[Key]gocv.Mat
	order     []Key

	// Out receives the lines written by Info. Defaults to os.Stdout.
	Out io.Writer

	// Display renders images for Show. A WindowDisplay is created on
	// first use when nil.
	Display Display
}

// New creates a set of anonymous images keyed Index(0) to Index(len-1)
// in argument order.
func New(images ...gocv.Mat) *Set {
	s := newSet()
	s.Add(images...)
	return s
}

// NewNamed creates a set from explicitly keyed images.
func NewNamed(images ...Named) *Set {
	s := newSet()
	s.AddNamed(images...)
	return s
}

func newSet() *Set {
	return &Set{
		originals: make(map[Key]gocv.Mat),
		images:    make(map[Key]gocv.Mat),
	}
}

// Add stores anonymous images under Index(0) to Index(len-1), exactly as New
// does. Existing images with those indices are replaced.
func (s *Set) Add(images ...gocv.Mat) {
	for i, img := range images {
		s.insert(Index(i), img)
	}
}

// AddNamed stores images under their keys, replacing existing entries.
func (s *Set) AddNamed(images ...Named) {
	for _, n := range images {
		s.insert(n.Key, n.Image)
	}
}

// insert stores independent clones of img as both original and working copy.
func (s *Set) insert(k Key, img gocv.Mat) {
	if old, ok := s.originals[k]; ok {
		old.Close()
		if cur, ok := s.images[k]; ok {
			cur.Close()
		}
	} else {
		s.order = append(s.order, k)
	}

	s.originals[k] = img.Clone()
	s.images[k] = img.Clone()
	log.Debug("image added", "key", k.String(), "shape", ShapeOf(img).String())
}

// Keys returns the tracked keys in insertion order.
func (s *Set) Keys() []Key {
	keys := make([]Key, len(s.order))
	copy(keys, s.order)
	return keys
}

// Len returns the number of tracked images.
func (s *Set) Len() int {
	return len(s.order)
}

// Has reports whether k is tracked.
func (s *Set) Has(k Key) bool {
	_, ok := s.images[k]
	return ok
}

// resolve turns a selection into the keys to operate on. An empty selection
// means every tracked key. Unknown keys fail the whole selection.
func (s *Set) resolve(keys []Key) ([]Key, error) {
	if len(keys) == 0 {
		return s.Keys(), nil
	}
	for _, k := range keys {
		if !s.Has(k) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, k)
		}
	}
	return keys, nil
}

// apply replaces the working copy of every selected image with the output
// of fn. Selection errors abort before any image is touched.
func (s *Set) apply(op string, keys []Key, fn func(src gocv.Mat, dst *gocv.Mat) error) error {
	sel, err := s.resolve(keys)
	if err != nil {
		return err
	}

	for _, k := range sel {
		dst := gocv.NewMat()
		if err := fn(s.images[k], &dst); err != nil {
			dst.Close()
			return fmt.Errorf("%s %s: %w", op, k, err)
		}
		s.replace(k, dst)
		log.Debug("image processed", "op", op, "key", k.String(), "shape", ShapeOf(dst).String())
	}
	return nil
}

func (s *Set) replace(k Key, m gocv.Mat) {
	old := s.images[k]
	s.images[k] = m
	old.Close()
}

// Greyscale reduces each selected image to a single intensity channel.
// Images that already have one channel are left as they are.
func (s *Set) Greyscale(keys ...Key) error {
	return s.apply("greyscale", keys, Grey)
}

// GaussianBlur smooths each selected image.
func (s *Set) GaussianBlur(opts BlurOptions, keys ...Key) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	return s.apply("blur", keys, func(src gocv.Mat, dst *gocv.Mat) error {
		return Blur(src, dst, opts)
	})
}

// GreyBlurred converts each selected image to greyscale and blurs it before
// moving on to the next image.
func (s *Set) GreyBlurred(opts BlurOptions, keys ...Key) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	return s.apply("grey_blur", keys, func(src gocv.Mat, dst *gocv.Mat) error {
		grey := gocv.NewMat()
		defer grey.Close()
		if err := Grey(src, &grey); err != nil {
			return err
		}
		return Blur(grey, dst, opts)
	})
}

// Canny replaces each selected image with its edge map.
func (s *Set) Canny(opts CannyOptions, keys ...Key) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	return s.apply("canny", keys, func(src gocv.Mat, dst *gocv.Mat) error {
		return Edges(src, dst, opts)
	})
}

// SetROI zeroes every pixel outside the polygon described by corners, given
// as (x, y) points in order. Fewer than MinCorners points returns
// ErrTooFewCorners without touching any image.
func (s *Set) SetROI(corners []image.Point, keys ...Key) error {
	if len(corners) < MinCorners {
		return fmt.Errorf("%w: got %d", ErrTooFewCorners, len(corners))
	}
	return s.apply("roi", keys, func(src gocv.Mat, dst *gocv.Mat) error {
		return Mask(src, dst, corners)
	})
}

// Reset restores each selected image to the copy captured when it was added.
func (s *Set) Reset(keys ...Key) error {
	sel, err := s.resolve(keys)
	if err != nil {
		return err
	}
	for _, k := range sel {
		orig := s.originals[k]
		s.replace(k, orig.Clone())
	}
	log.Debug("images reset", "count", len(sel))
	return nil
}

// Get returns a copy of the working image for k.
func (s *Set) Get(k Key) (gocv.Mat, error) {
	img, ok := s.images[k]
	if !ok {
		return gocv.NewMat(), fmt.Errorf("%w: %s", ErrNotFound, k)
	}
	return img.Clone(), nil
}

// GetAll returns copies of every working image.
func (s *Set) GetAll() map[Key]gocv.Mat {
	out := make(map[Key]gocv.Mat, len(s.images))
	for k, img := range s.images {
		out[k] = img.Clone()
	}
	return out
}

// GetMany returns copies of the working images for keys.
// With no keys it behaves like GetAll.
func (s *Set) GetMany(keys ...Key) (map[Key]gocv.Mat, error) {
	sel, err := s.resolve(keys)
	if err != nil {
		return nil, err
	}
	out := make(map[Key]gocv.Mat, len(sel))
	for _, k := range sel {
		if _, dup := out[k]; dup {
			continue
		}
		img := s.images[k]
		out[k] = img.Clone()
	}
	return out, nil
}

// Original returns a copy of the image as it was when added.
func (s *Set) Original(k Key) (gocv.Mat, error) {
	img, ok := s.originals[k]
	if !ok {
		return gocv.NewMat(), fmt.Errorf("%w: %s", ErrNotFound, k)
	}
	return img.Clone(), nil
}

// Describe returns the key and current shape of each selected image.
func (s *Set) Describe(keys ...Key) ([]ImageInfo, error) {
	sel, err := s.resolve(keys)
	if err != nil {
		return nil, err
	}
	infos := make([]ImageInfo, 0, len(sel))
	for _, k := range sel {
		infos = append(infos, ImageInfo{Key: k, Shape: ShapeOf(s.images[k])})
	}
	return infos, nil
}

// Info writes one line per selected image with its key and shape to Out.
func (s *Set) Info(keys ...Key) error {
	infos, err := s.Describe(keys...)
	if err != nil {
		return err
	}
	w := s.Out
	if w == nil {
		w = os.Stdout
	}
	for _, info := range infos {
		if _, err := fmt.Fprintln(w, info.String()); err != nil {
			return err
		}
	}
	return nil
}

// Show renders each selected image titled by its key and blocks until the
// user presses a key.
func (s *Set) Show(keys ...Key) error {
	sel, err := s.resolve(keys)
	if err != nil {
		return err
	}
	if s.Display == nil {
		s.Display = NewWindowDisplay()
	}
	for _, k := range sel {
		if err := s.Display.Show(k.String(), s.images[k]); err != nil {
			return fmt.Errorf("show %s: %w", k, err)
		}
	}
	s.Display.Wait()
	return nil
}

// Remove stops tracking keys and releases their images.
// Unknown keys are an error and nothing is removed. Remove with no keys is
// a no-op; use Close to drop everything.
func (s *Set) Remove(keys ...Key) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := s.resolve(keys); err != nil {
		return err
	}

	drop := make(map[Key]bool, len(keys))
	for _, k := range keys {
		if drop[k] {
			continue
		}
		drop[k] = true
		orig, img := s.originals[k], s.images[k]
		orig.Close()
		img.Close()
		delete(s.originals, k)
		delete(s.images, k)
	}

	kept := s.order[:0]
	for _, k := range s.order {
		if !drop[k] {
			kept = append(kept, k)
		}
	}
	s.order = kept
	return nil
}

// Close releases every image and the display.
func (s *Set) Close() error {
	var errs []error
	for _, k := range s.order {
		orig, img := s.originals[k], s.images[k]
		if err := orig.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := img.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.originals = make(map[Key]gocv.Mat)
	s.images = make(map[Key]gocv.Mat)
	s.order = nil

	if s.Display != nil {
		errs = append(errs, s.Display.Close())
		s.Display = nil
	}
	return errors.Join(errs...)
}
