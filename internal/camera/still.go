package camera

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"sync"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"ar-viewer/internal/logging"
)

// Still serves one decoded image as the camera feed. Supported formats
// are PNG, JPEG, GIF, BMP, TIFF and WebP.
type Still struct {
	img *image.RGBA

	*slot
	mu      sync.Mutex
	running bool
}

// NewStill decodes the image at path and scales it to width x height.
func NewStill(path string, width, height int) (*Still, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open still image: %w", err)
	}
	defer f.Close()
	return NewStillReader(f, width, height)
}

// NewStillReader decodes an image from r and scales it to width x height.
// A non-positive width or height keeps the decoded size.
func NewStillReader(r io.Reader, width, height int) (*Still, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode still image: %w", err)
	}
	if width <= 0 || height <= 0 {
		width, height = src.Bounds().Dx(), src.Bounds().Dy()
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	logging.Logger().Debug("still camera image loaded", "format", format,
		"src", src.Bounds().Size().String(), "dst", dst.Bounds().Size().String())
	return &Still{img: dst, slot: newSlot()}, nil
}

// Image returns the scaled image.
func (s *Still) Image() *image.RGBA { return s.img }

// Start publishes the image. Each start counts as a new capture.
func (s *Still) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	s.running = true
	s.publish(s.img)
	return nil
}

func (s *Still) Latest() (Image, bool) { return s.latest() }

func (s *Still) Err() error { return s.error() }

func (s *Still) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

var _ Feed = (*Still)(nil)
