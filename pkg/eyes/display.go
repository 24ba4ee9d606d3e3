package eyes

import (
	"errors"

	"gocv.io/x/gocv"
)

// Display renders images for Set.Show.
type Display interface {
	// Show draws img in a surface titled title, creating it if needed.
	Show(title string, img gocv.Mat) error

	// Wait blocks until the user dismisses the surfaces and returns the key
	// code that was pressed.
	Wait() int

	// Close releases every surface.
	Close() error
}

// WindowDisplay shows images in OpenCV highgui windows, one per title.
// Windows stay open between calls and are reused for the same title.
type WindowDisplay struct {
	windows map[string]*gocv.Window
	last    string
}

// NewWindowDisplay creates a display with no open windows.
func NewWindowDisplay() *WindowDisplay {
	return &WindowDisplay{
		windows: make(map[string]*gocv.Window),
	}
}

// Show draws img in the window called title.
func (d *WindowDisplay) Show(title string, img gocv.Mat) error {
	w, ok := d.windows[title]
	if !ok {
		w = gocv.NewWindow(title)
		d.windows[title] = w
	}
	w.IMShow(img)
	d.last = title
	return nil
}

// Wait blocks until a key is pressed in any window.
// Returns -1 when no window has been shown.
func (d *WindowDisplay) Wait() int {
	w, ok := d.windows[d.last]
	if !ok {
		return -1
	}
	return w.WaitKey(0)
}

// Close destroys every window.
func (d *WindowDisplay) Close() error {
	var errs []error
	for title, w := range d.windows {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(d.windows, title)
	}
	d.last = ""
	return errors.Join(errs...)
}
