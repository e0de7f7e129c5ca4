package camera

import (
	"context"
	"image"
	"image/color"
	"sync"
	"time"

	"ar-viewer/internal/logging"
)

// barColors are the SMPTE-style bars drawn by Pattern.
var barColors = []color.RGBA{
	{R: 192, G: 192, B: 192, A: 255},
	{R: 192, G: 192, B: 0, A: 255},
	{R: 0, G: 192, B: 192, A: 255},
	{R: 0, G: 192, B: 0, A: 255},
	{R: 192, G: 0, B: 192, A: 255},
	{R: 192, G: 0, B: 0, A: 255},
	{R: 0, G: 0, B: 192, A: 255},
	{R: 16, G: 16, B: 16, A: 255},
}

// Pattern is a procedural feed of scrolling colour bars. It needs no
// hardware and is the default desktop camera.
type Pattern struct {
	Width, Height int
	FPS           int
	// Warmup delays the first image, imitating a camera that takes a
	// moment to open.
	Warmup time.Duration

	*slot
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPattern returns a stopped pattern feed.
func NewPattern(width, height, fps int) *Pattern {
	return &Pattern{Width: width, Height: height, FPS: fps, slot: newSlot()}
}

// Render draws frame n of the pattern. The bars scroll one pixel per frame
// and a white marker crosses the top edge so rotation is visible.
func (p *Pattern) Render(n int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	barW := max(p.Width/len(barColors), 1)
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			i := ((x + n) / barW) % len(barColors)
			img.SetRGBA(x, y, barColors[i])
		}
	}
	markerH := max(p.Height/16, 1)
	markerX := n % max(p.Width, 1)
	for y := 0; y < markerH; y++ {
		for x := markerX; x < min(markerX+markerH, p.Width); x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	return img
}

func (p *Pattern) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return nil
	}
	p.clearErr()

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx, p.done)
	logging.Logger().Debug("pattern camera started", "width", p.Width, "height", p.Height, "fps", p.FPS)
	return nil
}

func (p *Pattern) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	if p.Warmup > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.Warmup):
		}
	}

	fps := max(p.FPS, 1)
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for n := 0; ; n++ {
		p.publish(p.Render(n))
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (p *Pattern) Latest() (Image, bool) { return p.latest() }

func (p *Pattern) Err() error { return p.error() }

func (p *Pattern) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

var _ Feed = (*Pattern)(nil)
