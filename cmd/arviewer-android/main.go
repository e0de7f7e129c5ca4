//go:build android

// Command arviewer-android runs the viewer as an x/mobile app. The camera
// is the simulated runtime's pattern feed, drawn through the es2d shaders
// because the runtime uploads into a plain 2D texture.
package main

import (
	"errors"
	"os"
	"time"

	"golang.org/x/mobile/app"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/gl"

	"ar-viewer/internal/ar"
	"ar-viewer/internal/camera"
	"ar-viewer/internal/gles"
	"ar-viewer/internal/gles/mobilegl"
	"ar-viewer/internal/logging"
	"ar-viewer/internal/loop"
	"ar-viewer/internal/simar"
	"ar-viewer/internal/viewer"
	"ar-viewer/shaders"
)

// permissionEvent carries a permission answer back onto the event loop.
type permissionEvent struct{ granted bool }

func rotationOf(o size.Orientation) ar.Rotation {
	if o == size.OrientationLandscape {
		return ar.Rotation90
	}
	return ar.Rotation0
}

func main() {
	logger := logging.New(os.Stderr, logging.Options{Level: "info"})
	logging.SetLogger(logger)

	feed := camera.NewPattern(640, 480, 30)
	feed.Warmup = 300 * time.Millisecond
	rt := simar.NewRuntime(feed, simar.Config{})

	app.Main(func(a app.App) {
		var (
			glctx    gl.Context
			rotation ar.Rotation
			created  bool
			lastErr  string
		)

		perms := simar.NewPermissions(true, true, func(granted bool) {
			a.Send(permissionEvent{granted})
		})
		v := viewer.New(viewer.Options{
			Runtime:     rt,
			Permissions: perms,
			Messenger:   viewer.MessengerFunc(func(msg string) { logger.Error(msg) }),
			Shaders:     shaders.NewLoader(shaders.ES2D),
			GL: func() (gles.Context, error) {
				if glctx == nil {
					return nil, errors.New("no GL context")
				}
				c := mobilegl.Wrap(glctx)
				rt.AttachGL(c)
				return c, nil
			},
			RotationQuery: func() ar.Rotation { return rotation },
		})
		driver := loop.NewDriver(v, loop.Hooks{SwapBuffers: func() { a.Publish() }}, 60)
		v.SetSurface(driver)

		for e := range a.Events() {
			switch e := a.Filter(e).(type) {
			case lifecycle.Event:
				switch e.Crosses(lifecycle.StageVisible) {
				case lifecycle.CrossOn:
					glctx, _ = e.DrawContext.(gl.Context)
					if err := v.SurfaceCreated(); err != nil {
						logger.Error("surface created", "err", err)
					} else {
						created = true
					}
					if err := v.Resume(); err != nil {
						logger.Warn("resume", "err", err)
					}
					a.Send(paint.Event{})
				case lifecycle.CrossOff:
					v.Pause()
					if created {
						v.SurfaceDestroyed()
						created = false
					}
					glctx = nil
				}
				if e.To == lifecycle.StageDead {
					v.Destroy()
				}
			case size.Event:
				rotation = rotationOf(e.Orientation)
				v.RotationChanged(rotation)
				driver.NotifyResize(e.WidthPx, e.HeightPx)
			case paint.Event:
				if glctx == nil || e.External {
					continue
				}
				if _, err := driver.Step(); err != nil {
					if msg := err.Error(); msg != lastErr {
						logger.Warn("render tick failed", "err", err)
						lastErr = msg
					}
				} else {
					lastErr = ""
				}
				a.Send(paint.Event{})
			case permissionEvent:
				if err := v.PermissionResult(e.granted); err != nil {
					logger.Warn("permission result", "granted", e.granted, "err", err)
				}
			}
		}
	})
}
