//go:build !gst

package camera

import "errors"

// Available reports whether this binary was built with GStreamer support.
const Available = false

// GStreamerConfig selects the capture device.
type GStreamerConfig struct {
	Source string
	Device string
	Width  int
	Height int
	FPS    int
}

// GStreamer is unavailable without the gst build tag; Start always fails
// with CameraUnavailable.
type GStreamer struct {
	*slot
}

// NewGStreamer returns a feed that cannot start.
func NewGStreamer(cfg GStreamerConfig) *GStreamer {
	return &GStreamer{slot: newSlot()}
}

func (g *GStreamer) Start() error {
	g.fail("camera.GStreamer.Start", errors.New("built without gstreamer support (use -tags gst)"))
	return g.error()
}

func (g *GStreamer) Latest() (Image, bool) { return g.latest() }

func (g *GStreamer) Err() error { return g.error() }

func (g *GStreamer) Stop() {}

var _ Feed = (*GStreamer)(nil)
