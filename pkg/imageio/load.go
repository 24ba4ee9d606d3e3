package imageio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/teslashibe/go-eyes/internal/httpc"
	"github.com/teslashibe/go-eyes/internal/log"
	"github.com/teslashibe/go-eyes/pkg/eyes"
	"gocv.io/x/gocv"
)

// MaxDownloadSize caps the body read by Download. Larger bodies fail with
// ErrTooLarge.
var MaxDownloadSize = 64 << 20

// IsURL reports whether src should be fetched over HTTP.
func IsURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Read loads an image file as a 3 channel BGR Mat.
func Read(path string) (gocv.Mat, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("read %s: %w", path, err)
	}
	m, err := Decode(data)
	if err != nil {
		return m, fmt.Errorf("read %s: %w", path, err)
	}
	return m, nil
}

// Write saves m to path, choosing the encoding from the extension.
// Missing parent directories are created.
func Write(path string, m gocv.Mat) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if !gocv.IMWrite(path, m) {
		return fmt.Errorf("%w: %s", ErrWrite, path)
	}
	return nil
}

// Download fetches and decodes the image at url.
func Download(ctx context.Context, url string) (gocv.Mat, error) {
	resp, err := httpc.Get(ctx, url)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("download %s: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return gocv.NewMat(), &HTTPError{URL: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, int64(MaxDownloadSize)+1))
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("download %s: %w", url, err)
	}
	if len(data) > MaxDownloadSize {
		return gocv.NewMat(), fmt.Errorf("download %s: %w: over %d bytes", url, ErrTooLarge, MaxDownloadSize)
	}

	m, err := Decode(data)
	if err != nil {
		return m, fmt.Errorf("download %s: %w", url, err)
	}
	log.Debug("image downloaded", "url", url, "bytes", len(data))
	return m, nil
}

// Load reads src from disk, or downloads it when src is a URL.
func Load(ctx context.Context, src string) (gocv.Mat, error) {
	if IsURL(src) {
		return Download(ctx, src)
	}
	return Read(src)
}

// Source is one command-line image argument: an optional name and the
// file or URL to load.
type Source struct {
	Name     string
	Location string
}

// ParseSource splits "name=location". Arguments without '=' are anonymous,
// as are URLs whose only '=' is inside the query string.
func ParseSource(arg string) Source {
	name, loc, ok := strings.Cut(arg, "=")
	if !ok || name == "" || IsURL(arg) || strings.ContainsAny(name, "/\\:?") {
		return Source{Location: arg}
	}
	return Source{Name: name, Location: loc}
}

// Batch is a set of loaded images ready for eyes.New or eyes.NewNamed.
// Exactly one of Anonymous and Named is populated.
type Batch struct {
	Anonymous []gocv.Mat
	Named     []eyes.Named
}

// Set builds an eyes.Set from the batch. The batch still owns its Mats.
func (b *Batch) Set() *eyes.Set {
	if len(b.Named) > 0 {
		return eyes.NewNamed(b.Named...)
	}
	return eyes.New(b.Anonymous...)
}

// Close releases every loaded Mat.
func (b *Batch) Close() {
	for i := range b.Anonymous {
		b.Anonymous[i].Close()
	}
	for i := range b.Named {
		b.Named[i].Image.Close()
	}
	b.Anonymous, b.Named = nil, nil
}

// LoadSources loads every source. Sources must be all named or all
// anonymous. On error, images loaded so far are released.
func LoadSources(ctx context.Context, sources []Source) (*Batch, error) {
	named := 0
	for _, s := range sources {
		if s.Name != "" {
			named++
		}
	}
	if named != 0 && named != len(sources) {
		return nil, ErrMixedSources
	}

	b := &Batch{}
	for _, s := range sources {
		m, err := Load(ctx, s.Location)
		if err != nil {
			m.Close()
			b.Close()
			return nil, err
		}
		if s.Name != "" {
			b.Named = append(b.Named, eyes.Pair(s.Name, m))
		} else {
			b.Anonymous = append(b.Anonymous, m)
		}
		log.Debug("image loaded", "source", s.Location, "shape", eyes.ShapeOf(m).String())
	}
	return b, nil
}

// SaveSet writes the working copy of every image in set to dir as
// <key>.<format> and returns the paths written, in key order.
func SaveSet(set *eyes.Set, dir, format string) ([]string, error) {
	format = NormalizeFormat(format)
	if format != FormatPNG && format != FormatJPEG {
		return nil, fmt.Errorf("%w: unsupported format %q", ErrEncode, format)
	}

	var paths []string
	for _, k := range set.Keys() {
		m, err := set.Get(k)
		if err != nil {
			return paths, err
		}
		path := filepath.Join(dir, k.String()+"."+format)
		err = Write(path, m)
		m.Close()
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
