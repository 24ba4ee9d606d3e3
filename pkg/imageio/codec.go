// Package imageio moves images between files, URLs, byte buffers and
// gocv Mats. OpenCV does the decoding where it can; the Go image decoders
// cover formats an OpenCV build may lack.
package imageio

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Format names accepted by Encode and Write.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpg"
)

// DefaultJPEGQuality is used by Encode for JPEG output.
const DefaultJPEGQuality = 85

// Decode turns encoded image bytes into a 3 channel BGR Mat.
func Decode(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.NewMat(), fmt.Errorf("%w: no data", ErrDecode)
	}

	if m, err := gocv.IMDecode(data, gocv.IMReadColor); err == nil {
		if !m.Empty() {
			return m, nil
		}
		m.Close()
	}

	img, format, derr := image.Decode(bytes.NewReader(data))
	if derr != nil {
		return gocv.NewMat(), fmt.Errorf("%w: %v", ErrDecode, derr)
	}

	m, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%w: convert %s: %v", ErrDecode, format, err)
	}
	return m, nil
}

// Encode compresses m as PNG or JPEG.
func Encode(format string, m gocv.Mat) ([]byte, error) {
	return EncodeQuality(format, m, DefaultJPEGQuality)
}

// EncodeQuality is Encode with an explicit JPEG quality (1-100).
func EncodeQuality(format string, m gocv.Mat, quality int) ([]byte, error) {
	if m.Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrEncode)
	}

	var (
		buf *gocv.NativeByteBuffer
		err error
	)
	switch NormalizeFormat(format) {
	case FormatPNG:
		buf, err = gocv.IMEncode(gocv.PNGFileExt, m)
	case FormatJPEG:
		buf, err = gocv.IMEncodeWithParams(gocv.JPEGFileExt, m, []int{int(gocv.IMWriteJpegQuality), quality})
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrEncode, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	defer buf.Close()

	// GetBytes aliases native memory released by Close.
	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// NormalizeFormat maps format aliases and extensions to FormatPNG or
// FormatJPEG. Unknown formats are returned lower-cased and unchanged.
func NormalizeFormat(format string) string {
	f := strings.ToLower(strings.TrimPrefix(format, "."))
	switch f {
	case "png":
		return FormatPNG
	case "jpg", "jpeg":
		return FormatJPEG
	default:
		return f
	}
}

// ContentType returns the MIME type for a normalized format.
func ContentType(format string) string {
	if NormalizeFormat(format) == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// FormatOf returns the normalized format implied by a file name.
func FormatOf(path string) string {
	return NormalizeFormat(filepath.Ext(path))
}
