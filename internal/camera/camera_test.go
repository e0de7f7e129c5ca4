package camera

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"ar-viewer/internal/ar"
)

func TestSlotKeepsNewestAndCountsDrops(t *testing.T) {
	s := newSlot()
	_, ok := s.latest()
	assert.False(t, ok)

	a := image.NewRGBA(image.Rect(0, 0, 1, 1))
	b := image.NewRGBA(image.Rect(0, 0, 2, 2))
	first := s.publish(a)
	second := s.publish(b)

	img, ok := s.latest()
	require.True(t, ok)
	assert.Same(t, b, img.RGBA)
	assert.Equal(t, second.Seq, img.Seq)
	assert.Greater(t, img.Seq, first.Seq)
	assert.Positive(t, img.Timestamp)
	assert.Equal(t, uint64(1), s.Dropped(), "first image was overwritten unread")

	s.publish(a)
	assert.Equal(t, uint64(1), s.Dropped(), "read image is not a drop")
}

func TestSlotFailKeepsFirstError(t *testing.T) {
	s := newSlot()
	s.fail("op1", assert.AnError)
	s.fail("op2", assert.AnError)

	err := s.error()
	require.Error(t, err)
	assert.True(t, ar.IsKind(err, ar.CameraUnavailable))
	assert.Contains(t, err.Error(), "op1")

	s.clearErr()
	assert.NoError(t, s.error())
}

func TestPatternRender(t *testing.T) {
	p := NewPattern(64, 32, 30)
	img := p.Render(0)
	assert.Equal(t, image.Rect(0, 0, 64, 32), img.Bounds())

	// Bars are 8 px wide; pixel (20,20) is in the third bar.
	assert.Equal(t, barColors[2], img.RGBAAt(20, 20))
	// The marker sits in the top-left corner on frame 0.
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, img.RGBAAt(0, 0))

	// Scrolling shifts bars by one pixel per frame.
	assert.Equal(t, img.RGBAAt(20, 20), p.Render(8).RGBAAt(12, 20))
}

func TestPatternStartStop(t *testing.T) {
	p := NewPattern(16, 16, 120)
	require.NoError(t, p.Start())
	require.NoError(t, p.Start())

	require.Eventually(t, func() bool {
		img, ok := p.Latest()
		return ok && img.Seq >= 2
	}, 2*time.Second, 5*time.Millisecond)

	p.Stop()
	p.Stop()
	stopped, ok := p.Latest()
	require.True(t, ok, "last image survives stop")

	require.NoError(t, p.Start())
	t.Cleanup(p.Stop)
	require.Eventually(t, func() bool {
		img, _ := p.Latest()
		return img.Seq > stopped.Seq
	}, 2*time.Second, 5*time.Millisecond)
	assert.NoError(t, p.Err())
}

func TestPatternWarmup(t *testing.T) {
	p := NewPattern(8, 8, 60)
	p.Warmup = time.Hour
	require.NoError(t, p.Start())
	defer p.Stop()

	time.Sleep(20 * time.Millisecond)
	_, ok := p.Latest()
	assert.False(t, ok, "no image during warmup")
}

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 200, G: 40, B: 90, A: 255})
		}
	}
	return img
}

func TestStillDecodesAndScales(t *testing.T) {
	var pngBuf, bmpBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, testImage(10, 6)))
	require.NoError(t, bmp.Encode(&bmpBuf, testImage(10, 6)))

	for name, buf := range map[string]*bytes.Buffer{"png": &pngBuf, "bmp": &bmpBuf} {
		t.Run(name, func(t *testing.T) {
			s, err := NewStillReader(buf, 40, 30)
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 40, 30), s.Image().Bounds())

			c := s.Image().RGBAAt(20, 15)
			assert.InDelta(t, 200, int(c.R), 2)
			assert.InDelta(t, 40, int(c.G), 2)
		})
	}
}

func TestStillKeepsSizeWhenUnset(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(12, 7)))
	s, err := NewStillReader(&buf, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 12, 7), s.Image().Bounds())
}

func TestStillPublishesOnStart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(4, 4)))
	s, err := NewStillReader(&buf, 4, 4)
	require.NoError(t, err)

	_, ok := s.Latest()
	assert.False(t, ok)

	require.NoError(t, s.Start())
	img, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, uint64(1), img.Seq)

	s.Stop()
	require.NoError(t, s.Start())
	img, _ = s.Latest()
	assert.Equal(t, uint64(2), img.Seq)
}

func TestStillRejectsGarbage(t *testing.T) {
	_, err := NewStillReader(strings.NewReader("not an image"), 4, 4)
	assert.ErrorContains(t, err, "decode still image")
}
