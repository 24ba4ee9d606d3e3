package eyes

import (
	"strconv"
	"strings"

	"gocv.io/x/gocv"
)

// Shape is the (rows, cols) or (rows, cols, channels) size of an image.
// Single channel images have two dimensions.
type Shape []int

// ShapeOf returns the shape of m.
func ShapeOf(m gocv.Mat) Shape {
	if m.Empty() {
		return Shape{0, 0}
	}
	if ch := m.Channels(); ch > 1 {
		return Shape{m.Rows(), m.Cols(), ch}
	}
	return Shape{m.Rows(), m.Cols()}
}

// Equal reports whether both shapes have the same dimensions.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// String formats the shape as a tuple, e.g. "(480, 640, 3)".
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = strconv.Itoa(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ImageInfo describes one tracked image.
type ImageInfo struct {
	Key   Key   `json:"key"`
	Shape Shape `json:"shape"`
}

// String renders the line printed by Set.Info.
func (i ImageInfo) String() string {
	return "Image: " + i.Key.String() + "\t   Shape: " + i.Shape.String()
}
