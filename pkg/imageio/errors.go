package imageio

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode is returned when neither OpenCV nor the Go decoders
	// understand the data.
	ErrDecode = errors.New("imageio: cannot decode image")

	// ErrEncode is returned when OpenCV fails to encode a Mat.
	ErrEncode = errors.New("imageio: cannot encode image")

	// ErrWrite is returned when OpenCV fails to write a file.
	ErrWrite = errors.New("imageio: cannot write image")

	// ErrTooLarge is returned when a download exceeds MaxDownloadSize.
	ErrTooLarge = errors.New("imageio: image too large")

	// ErrMixedSources is returned when named and anonymous sources are
	// combined in one batch.
	ErrMixedSources = errors.New("imageio: sources must be all named or all anonymous")
)

// HTTPError is returned by Download for non-200 responses.
type HTTPError struct {
	// URL is the requested location.
	URL string

	// StatusCode is the HTTP status code.
	StatusCode int
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("imageio: GET %s: status %d", e.URL, e.StatusCode)
}

// IsNotFound returns true if the image does not exist (HTTP 404).
func (e *HTTPError) IsNotFound() bool {
	return e.StatusCode == 404
}
