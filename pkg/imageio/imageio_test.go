package imageio

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/teslashibe/go-eyes/pkg/eyes"
	"gocv.io/x/gocv"
	"golang.org/x/image/bmp"
)

func createPNG(t *testing.T, width, height int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}
	return buf.Bytes()
}

func TestDecode_PNG(t *testing.T) {
	m, err := Decode(createPNG(t, 32, 24, color.RGBA{0, 0, 255, 255}))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	defer m.Close()

	if got := eyes.ShapeOf(m); !got.Equal(eyes.Shape{24, 32, 3}) {
		t.Errorf("shape = %v, want (24, 32, 3)", got)
	}
	// OpenCV stores pixels as BGR, so pure blue is 255 in the first byte.
	if b := m.GetUCharAt(0, 0); b != 255 {
		t.Errorf("blue channel = %d, want 255", b)
	}
}

func TestDecode_BMP(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		t.Fatalf("bmp.Encode failed: %v", err)
	}

	m, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	defer m.Close()

	if m.Rows() != 8 || m.Cols() != 8 {
		t.Errorf("size = %dx%d, want 8x8", m.Cols(), m.Rows())
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte("not an image")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := Decode(tc.data)
			defer m.Close()
			if !errors.Is(err, ErrDecode) {
				t.Errorf("error = %v, want ErrDecode", err)
			}
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	src := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(10, 20, 30, 0), 12, 16, gocv.MatTypeCV8UC3)
	defer src.Close()

	for _, format := range []string{"png", "jpg", ".jpeg", "PNG"} {
		t.Run(format, func(t *testing.T) {
			data, err := Encode(format, src)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			m, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			defer m.Close()
			if !eyes.ShapeOf(m).Equal(eyes.ShapeOf(src)) {
				t.Errorf("shape = %v, want %v", eyes.ShapeOf(m), eyes.ShapeOf(src))
			}
		})
	}
}

func TestEncode_Errors(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()
	if _, err := Encode("png", empty); !errors.Is(err, ErrEncode) {
		t.Errorf("empty Mat error = %v, want ErrEncode", err)
	}

	src := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 2, 2, gocv.MatTypeCV8UC1)
	defer src.Close()
	if _, err := Encode("gif", src); !errors.Is(err, ErrEncode) {
		t.Errorf("gif error = %v, want ErrEncode", err)
	}
}

func TestNormalizeFormat(t *testing.T) {
	tests := map[string]string{
		"png":   FormatPNG,
		".PNG":  FormatPNG,
		"jpg":   FormatJPEG,
		"jpeg":  FormatJPEG,
		".JPEG": FormatJPEG,
		"webp":  "webp",
	}
	for in, want := range tests {
		if got := NormalizeFormat(in); got != want {
			t.Errorf("NormalizeFormat(%q) = %q, want %q", in, got, want)
		}
	}

	if ContentType("jpg") != "image/jpeg" || ContentType("png") != "image/png" {
		t.Error("ContentType mismatch")
	}
	if FormatOf("out/0.jpeg") != FormatJPEG {
		t.Errorf("FormatOf = %q", FormatOf("out/0.jpeg"))
	}
}

func TestDownload(t *testing.T) {
	pngData := createPNG(t, 10, 5, color.White)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(pngData)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	m, err := Load(context.Background(), srv.URL+"/ok.png")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer m.Close()
	if m.Rows() != 5 || m.Cols() != 10 {
		t.Errorf("size = %dx%d, want 10x5", m.Cols(), m.Rows())
	}

	missing, err := Download(context.Background(), srv.URL+"/missing.png")
	defer missing.Close()
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error = %v, want *HTTPError", err)
	}
	if !httpErr.IsNotFound() {
		t.Errorf("StatusCode = %d, want 404", httpErr.StatusCode)
	}
}

func TestDownload_TooLarge(t *testing.T) {
	pngData := createPNG(t, 64, 64, color.White)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngData)
	}))
	defer srv.Close()

	old := MaxDownloadSize
	t.Cleanup(func() { MaxDownloadSize = old })

	MaxDownloadSize = len(pngData) - 1
	m, err := Download(context.Background(), srv.URL)
	m.Close()
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("error = %v, want ErrTooLarge", err)
	}

	MaxDownloadSize = len(pngData)
	m, err = Download(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("body of exactly MaxDownloadSize failed: %v", err)
	}
	m.Close()
}

func TestWriteAndRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "img.png")

	src := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(1, 2, 3, 0), 6, 7, gocv.MatTypeCV8UC3)
	defer src.Close()

	if err := Write(path, src); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	m, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	defer m.Close()
	if !bytes.Equal(m.ToBytes(), src.ToBytes()) {
		t.Error("PNG round trip through disk changed pixels")
	}

	missing, err := Read(filepath.Join(dir, "nope.png"))
	defer missing.Close()
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		arg  string
		want Source
	}{
		{"road.png", Source{Location: "road.png"}},
		{"car=car.jpg", Source{Name: "car", Location: "car.jpg"}},
		{"sky=https://example.com/sky.png", Source{Name: "sky", Location: "https://example.com/sky.png"}},
		{"https://example.com/img?id=3", Source{Location: "https://example.com/img?id=3"}},
		{"./dir/a=b.png", Source{Location: "./dir/a=b.png"}},
		{"=x.png", Source{Location: "=x.png"}},
	}

	for _, tc := range tests {
		t.Run(tc.arg, func(t *testing.T) {
			if got := ParseSource(tc.arg); got != tc.want {
				t.Errorf("ParseSource(%q) = %+v, want %+v", tc.arg, got, tc.want)
			}
		})
	}
}

func TestLoadSources(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	if err := os.WriteFile(path, createPNG(t, 4, 4, color.Black), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadSources(context.Background(), []Source{{Name: "a", Location: path}, {Location: path}})
	if !errors.Is(err, ErrMixedSources) {
		t.Errorf("error = %v, want ErrMixedSources", err)
	}

	b, err := LoadSources(context.Background(), []Source{{Name: "a", Location: path}, {Name: "b", Location: path}})
	if err != nil {
		t.Fatalf("LoadSources failed: %v", err)
	}
	defer b.Close()

	set := b.Set()
	defer set.Close()
	keys := set.Keys()
	if len(keys) != 2 || keys[0] != eyes.Name("a") || keys[1] != eyes.Name("b") {
		t.Errorf("Keys() = %v, want [a b]", keys)
	}

	anon, err := LoadSources(context.Background(), []Source{{Location: path}})
	if err != nil {
		t.Fatalf("LoadSources failed: %v", err)
	}
	defer anon.Close()
	aset := anon.Set()
	defer aset.Close()
	if !aset.Has(eyes.Index(0)) {
		t.Error("anonymous source should be Index(0)")
	}

	if _, err := LoadSources(context.Background(), []Source{{Location: filepath.Join(dir, "missing.png")}}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSaveSet(t *testing.T) {
	src := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 4, 4, gocv.MatTypeCV8UC3)
	defer src.Close()

	set := eyes.NewNamed(eyes.Pair("car", src), eyes.Pair("tree", src))
	defer set.Close()
	if err := set.Greyscale(eyes.Name("tree")); err != nil {
		t.Fatalf("Greyscale failed: %v", err)
	}

	dir := t.TempDir()
	paths, err := SaveSet(set, dir, "png")
	if err != nil {
		t.Fatalf("SaveSet failed: %v", err)
	}

	want := []string{filepath.Join(dir, "car.png"), filepath.Join(dir, "tree.png")}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
		if _, err := os.Stat(want[i]); err != nil {
			t.Errorf("missing output %s: %v", want[i], err)
		}
	}

	if _, err := SaveSet(set, dir, "gif"); !errors.Is(err, ErrEncode) {
		t.Errorf("error = %v, want ErrEncode", err)
	}
}
