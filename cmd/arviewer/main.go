// Command arviewer shows a camera feed as the background of an OpenGL
// window, driven by the simulated AR runtime.
//
// Keys: Left/Right rotate the display, P pauses and resumes like an app
// going to the background, R retries after an error, Escape quits.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"ar-viewer/core"
	"ar-viewer/internal/ar"
	"ar-viewer/internal/camera"
	"ar-viewer/internal/config"
	"ar-viewer/internal/gles"
	"ar-viewer/internal/gles/desktopgl"
	"ar-viewer/internal/logging"
	"ar-viewer/internal/loop"
	"ar-viewer/internal/simar"
	"ar-viewer/internal/viewer"
	"ar-viewer/shaders"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "arviewer: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Parse("arviewer", args)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	if cfg.Dialect != config.DialectCore {
		return fmt.Errorf("shader dialect %q needs an OpenGL ES context; the desktop viewer uses %q",
			cfg.Dialect, config.DialectCore)
	}

	logger := logging.New(os.Stderr, logging.Options{
		Level:      cfg.Log.Level,
		Timestamps: cfg.Log.Timestamps,
		Caller:     cfg.Log.Caller,
	})
	logging.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feed, err := newFeed(cfg.Camera)
	if err != nil {
		return err
	}
	rt := simar.NewRuntime(feed, simar.Config{
		InstallRequired: cfg.Runtime.InstallRequired,
		Unavailable:     cfg.Runtime.Unavailable,
		FailSessions:    cfg.Runtime.FailSessions,
	})

	// Work that must run on the main thread, posted from other goroutines.
	mainQueue := make(chan func(), 16)
	var window *core.Window
	post := func(f func()) {
		select {
		case mainQueue <- f:
		default:
			logger.Warn("main queue full, dropping event")
		}
		if window != nil {
			window.Wake()
		}
	}

	var v *viewer.Viewer
	perms := simar.NewPermissions(!cfg.Runtime.AskPermission, !cfg.Runtime.DenyPermission,
		func(granted bool) {
			post(func() {
				if err := v.PermissionResult(granted); err != nil {
					logger.Warn("permission result", "granted", granted, "err", err)
				}
			})
		})

	var rotation atomic.Int32
	rotation.Store(int32(ar.RotationFromDegrees(cfg.Rotation)))

	surface := &desktopSurface{}
	v = viewer.New(viewer.Options{
		Runtime:     rt,
		Permissions: perms,
		Messenger: viewer.MessengerFunc(func(msg string) {
			post(func() { window.SetTitle(cfg.Window.Title + " - " + msg) })
		}),
		Shaders: shaders.NewLoader(shaders.Core),
		GL: func() (gles.Context, error) {
			c, err := desktopgl.New()
			if err != nil {
				return nil, err
			}
			surface.gl = c
			rt.AttachGL(c)
			return c, nil
		},
		ClearColor:    cfg.ClearColor,
		RotationQuery: func() ar.Rotation { return ar.Rotation(rotation.Load()) },
	})
	surface.Viewer = v

	var driver *loop.Driver
	visible := true
	setVisible := func(vis bool) {
		if vis == visible {
			return
		}
		visible = vis
		if vis {
			window.SetTitle(cfg.Window.Title)
			if err := v.Resume(); err != nil {
				logger.Warn("resume", "err", err)
			}
			return
		}
		v.Pause()
	}
	rotate := func(turns int) {
		r := ar.Rotation((ar.Rotation(rotation.Load()).QuarterTurns() + turns + 4) % 4)
		rotation.Store(int32(r))
		v.RotationChanged(r)
		logger.Info("display rotated", "rotation", r)
	}

	window, err = core.NewWindow(core.WindowConfig{
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Title:      cfg.Window.Title,
		Resizable:  cfg.Window.Resizable,
		VSync:      cfg.Window.VSync,
		Fullscreen: cfg.Window.Fullscreen,
	}, core.Events{
		FramebufferSize: func(w, h int) { driver.NotifyResize(w, h) },
		Visible:         setVisible,
		KeyPressed: func(key int) {
			switch key {
			case core.KeyEscape:
				window.Close()
			case core.KeyLeft:
				rotate(1)
			case core.KeyRight:
				rotate(-1)
			case core.KeyP:
				setVisible(!visible)
			case core.KeyR:
				window.SetTitle(cfg.Window.Title)
				if err := v.Resume(); err != nil {
					logger.Warn("retry", "err", err)
				}
			}
		},
	})
	if err != nil {
		return err
	}
	defer window.Destroy()

	driver = loop.NewDriver(surface, loop.Hooks{
		MakeCurrent:    window.MakeCurrent,
		SwapBuffers:    window.SwapBuffers,
		ReleaseCurrent: window.ReleaseCurrent,
	}, cfg.FPS)
	v.SetSurface(driver)
	driver.NotifyResize(window.GetFramebufferSize())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer window.Close()
		return driver.Run(ctx)
	})

	if err := v.Resume(); err != nil {
		logger.Warn("resume", "err", err)
	}

	start := time.Now()
	for !window.ShouldClose() && ctx.Err() == nil {
		window.WaitEvents(0.05)
		for drained := false; !drained; {
			select {
			case f := <-mainQueue:
				f()
			default:
				drained = true
			}
		}
	}

	stop()
	v.Pause()
	err = g.Wait()
	v.Destroy()

	stats := v.Stats()
	logger.Info("viewer stopped",
		"uptime", time.Since(start).Round(time.Millisecond),
		"ticks", driver.Ticks(),
		"drawn", stats.Drawn,
		"stale", stats.Stale,
		"idle", stats.Idle,
		"failed", stats.Failed,
		"camera_losses", stats.Cameras,
		"sessions", rt.Sessions())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// desktopSurface releases the desktop GL state along with the viewer's
// resources.
type desktopSurface struct {
	*viewer.Viewer
	gl *desktopgl.Context
}

func (s *desktopSurface) SurfaceDestroyed() {
	s.Viewer.SurfaceDestroyed()
	if s.gl != nil {
		s.gl.Release()
		s.gl = nil
	}
}

func newFeed(c config.CameraConfig) (camera.Feed, error) {
	switch c.Source {
	case config.SourceStill:
		return camera.NewStill(c.Path, c.Width, c.Height)
	case config.SourceGStreamer:
		if !camera.Available {
			return nil, errors.New("this binary was built without GStreamer; rebuild with -tags gst")
		}
		return camera.NewGStreamer(camera.GStreamerConfig{
			Source: c.Element,
			Device: c.Device,
			Width:  c.Width,
			Height: c.Height,
			FPS:    c.FPS,
		}), nil
	default:
		p := camera.NewPattern(c.Width, c.Height, c.FPS)
		p.Warmup = time.Duration(c.Warmup)
		return p, nil
	}
}
