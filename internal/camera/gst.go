//go:build gst

package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"ar-viewer/internal/logging"
)

// Available reports whether this binary was built with GStreamer support.
const Available = true

// GStreamerConfig selects the capture device.
type GStreamerConfig struct {
	// Source is the source element, e.g. "autovideosrc" or "v4l2src".
	Source string
	// Device is set as the source's "device" property when non-empty.
	Device string
	Width  int
	Height int
	FPS    int
}

// GStreamer captures a webcam through
//
//	<source> ! videoconvert ! videoscale ! videorate ! video/x-raw,format=RGBA ! appsink
type GStreamer struct {
	cfg GStreamerConfig

	*slot
	mu       sync.Mutex
	pipeline *gst.Pipeline
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewGStreamer returns a stopped webcam feed.
func NewGStreamer(cfg GStreamerConfig) *GStreamer {
	if cfg.Source == "" {
		cfg.Source = "autovideosrc"
	}
	return &GStreamer{cfg: cfg, slot: newSlot()}
}

func (g *GStreamer) buildPipeline() (*gst.Pipeline, *app.Sink, error) {
	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	src, err := gst.NewElement(g.cfg.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", g.cfg.Source, err)
	}
	if g.cfg.Device != "" {
		if err := src.SetProperty("device", g.cfg.Device); err != nil {
			return nil, nil, fmt.Errorf("set device: %w", err)
		}
	}

	var elems []*gst.Element
	elems = append(elems, src)
	for _, name := range []string{"videoconvert", "videoscale", "videorate"} {
		e, err := gst.NewElement(name)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create %s: %w", name, err)
		}
		elems = append(elems, e)
	}

	capsfilter, err := gst.NewElement("capsfilter")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create capsfilter: %w", err)
	}
	caps := fmt.Sprintf("video/x-raw,format=RGBA,width=%d,height=%d,framerate=%d/1",
		g.cfg.Width, g.cfg.Height, max(g.cfg.FPS, 1))
	capsfilter.SetProperty("caps", gst.NewCapsFromString(caps))
	elems = append(elems, capsfilter)

	sink, err := app.NewAppSink()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create appsink: %w", err)
	}
	sink.SetProperty("sync", false)
	sink.SetProperty("max-buffers", 1)
	sink.SetProperty("drop", true)
	elems = append(elems, sink.Element)

	if err := pipeline.AddMany(elems...); err != nil {
		return nil, nil, fmt.Errorf("failed to add elements: %w", err)
	}
	if err := gst.ElementLinkMany(elems...); err != nil {
		return nil, nil, fmt.Errorf("failed to link elements: %w", err)
	}
	return pipeline, sink, nil
}

func (g *GStreamer) Start() error {
	const op = "camera.GStreamer.Start"
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pipeline != nil {
		return nil
	}
	g.clearErr()

	pipeline, sink, err := g.buildPipeline()
	if err != nil {
		g.fail(op, err)
		return g.error()
	}

	sink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: g.onNewSample,
	})

	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		g.fail(op, fmt.Errorf("failed to start pipeline: %w", err))
		return g.error()
	}

	ctx, cancel := context.WithCancel(context.Background())
	g.pipeline, g.cancel = pipeline, cancel
	g.done = make(chan struct{})
	go g.monitor(ctx, pipeline, g.done)

	logging.Logger().Info("gstreamer camera started",
		"source", g.cfg.Source, "device", g.cfg.Device,
		"width", g.cfg.Width, "height", g.cfg.Height)
	return nil
}

// onNewSample copies the RGBA buffer out of GStreamer, which reuses it.
func (g *GStreamer) onNewSample(sink *app.Sink) gst.FlowReturn {
	sample := sink.PullSample()
	if sample == nil {
		return gst.FlowOK
	}
	buffer := sample.GetBuffer()
	if buffer == nil {
		return gst.FlowOK
	}

	mapInfo := buffer.Map(gst.MapRead)
	data := mapInfo.Bytes()
	want := g.cfg.Width * g.cfg.Height * 4
	if len(data) < want {
		buffer.Unmap()
		logging.Logger().Warn("gstreamer camera: short buffer", "got", len(data), "want", want)
		return gst.FlowOK
	}

	img := image.NewRGBA(image.Rect(0, 0, g.cfg.Width, g.cfg.Height))
	copy(img.Pix, data[:want])
	buffer.Unmap()

	g.publish(img)
	return gst.FlowOK
}

// monitor polls the bus until ctx is cancelled. Errors and end of stream
// mark the feed unavailable.
func (g *GStreamer) monitor(ctx context.Context, pipeline *gst.Pipeline, done chan<- struct{}) {
	defer close(done)
	const op = "camera.GStreamer"
	bus := pipeline.GetPipelineBus()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg := bus.TimedPop(50 * time.Millisecond)
		if msg == nil {
			continue
		}
		switch msg.Type() {
		case gst.MessageEOS:
			logging.Logger().Warn("gstreamer camera: end of stream")
			g.fail(op, errors.New("end of stream"))
			return
		case gst.MessageError:
			gerr := msg.ParseError()
			logging.Logger().Error("gstreamer camera: pipeline error",
				"error", gerr.Error(), "debug", gerr.DebugString())
			g.fail(op, gerr)
			return
		}
	}
}

func (g *GStreamer) Latest() (Image, bool) { return g.latest() }

func (g *GStreamer) Err() error { return g.error() }

func (g *GStreamer) Stop() {
	g.mu.Lock()
	pipeline, cancel, done := g.pipeline, g.cancel, g.done
	g.pipeline, g.cancel, g.done = nil, nil, nil
	g.mu.Unlock()

	if pipeline == nil {
		return
	}
	cancel()
	<-done
	if err := pipeline.SetState(gst.StateNull); err != nil {
		logging.Logger().Warn("gstreamer camera: stop", "error", err)
	}
}

var _ Feed = (*GStreamer)(nil)
