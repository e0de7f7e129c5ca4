// Package viewer ties the AR session, the display geometry and the
// background renderer together.
//
// A Viewer has two sides. The host-lifecycle side (Resume, Pause, Destroy,
// PermissionResult, RotationChanged) runs on the host's main goroutine. The
// render side (SurfaceCreated, SurfaceChanged, DrawFrame, SurfaceDestroyed)
// runs on the render loop goroutine with the GL context current. The two
// meet only in the session manager and the display coordinator.
package viewer

import (
	"errors"
	"fmt"
	"sync/atomic"

	"ar-viewer/internal/ar"
	"ar-viewer/internal/display"
	"ar-viewer/internal/gles"
	"ar-viewer/internal/logging"
	"ar-viewer/internal/render"
	"ar-viewer/internal/session"
)

// Messenger shows a short message to the user.
type Messenger interface {
	ShowError(msg string)
}

// MessengerFunc adapts a function to Messenger.
type MessengerFunc func(msg string)

func (f MessengerFunc) ShowError(msg string) { f(msg) }

// RenderSurface is the host's rendering surface as seen from the host
// lifecycle. Pause must not return until the in-flight render tick, if
// any, has finished.
type RenderSurface interface {
	Pause()
	Resume()
}

// DefaultClearColor is the dark grey shown behind the camera image.
var DefaultClearColor = [4]float32{0.1, 0.1, 0.1, 1}

// Options configures a Viewer.
type Options struct {
	Runtime     ar.Runtime
	Permissions ar.Permissions
	Messenger   Messenger
	Shaders     render.ShaderSource
	// GL returns the context current on the render goroutine. It is called
	// from SurfaceCreated.
	GL func() (gles.Context, error)
	// ClearColor defaults to DefaultClearColor.
	ClearColor [4]float32
	// RotationQuery reads the current display rotation. Optional.
	RotationQuery func() ar.Rotation
}

// Stats counts render ticks by outcome.
type Stats struct {
	Drawn   uint64 // camera image drawn
	Stale   uint64 // session had no camera image yet
	Idle    uint64 // no resumed session
	Failed  uint64 // tick ended with an error
	Cameras uint64 // camera losses
}

// Viewer owns the session manager, the display coordinator and the
// background renderer.
type Viewer struct {
	opts    Options
	manager *session.Manager
	display *display.Coordinator
	surface RenderSurface

	// Render goroutine only.
	gl         gles.Context
	background *render.Background

	drawn, stale, idle, failed, cameras atomic.Uint64
}

// New returns a Viewer. SetSurface must be called before Resume.
func New(opts Options) *Viewer {
	if opts.ClearColor == [4]float32{} {
		opts.ClearColor = DefaultClearColor
	}
	if opts.Messenger == nil {
		opts.Messenger = MessengerFunc(func(msg string) {
			logging.Logger().Warn("viewer message", "msg", msg)
		})
	}
	d := display.New(opts.RotationQuery)
	return &Viewer{
		opts:    opts,
		display: d,
		manager: session.NewManager(opts.Runtime, opts.Permissions, d),
	}
}

// SetSurface attaches the render surface, normally a *loop.Driver.
func (v *Viewer) SetSurface(s RenderSurface) { v.surface = s }

// Manager exposes the session manager.
func (v *Viewer) Manager() *session.Manager { return v.manager }

// Display exposes the display coordinator.
func (v *Viewer) Display() *display.Coordinator { return v.display }

// Stats returns tick counters.
func (v *Viewer) Stats() Stats {
	return Stats{
		Drawn:   v.drawn.Load(),
		Stale:   v.stale.Load(),
		Idle:    v.idle.Load(),
		Failed:  v.failed.Load(),
		Cameras: v.cameras.Load(),
	}
}

// ── Host lifecycle ────────────────────────────────────────────────────────────

// Resume creates the session if needed, resumes it, then resumes the
// render surface and the display listener. A missing camera permission
// triggers a request and returns a PermissionDenied error. An install
// request returns nil; the host resumes again once the install flow ends.
func (v *Viewer) Resume() error {
	if v.manager.State() == session.Absent {
		if !v.opts.Permissions.HasCameraPermission() {
			v.opts.Permissions.RequestPermission()
			return &ar.Error{Kind: ar.PermissionDenied, Op: "viewer.Resume"}
		}
		if err := v.manager.Create(); err != nil {
			if errors.Is(err, session.ErrInstallRequested) {
				return nil
			}
			v.report(err)
			return err
		}
	}

	if err := v.manager.Resume(); err != nil {
		if !errors.Is(err, session.ErrClosed) {
			v.report(err)
		}
		return err
	}

	if v.surface != nil {
		v.surface.Resume()
	}
	v.display.Resume()
	logging.Logger().Info("viewer resumed", "session", v.manager.SessionID())
	return nil
}

// Pause stops rendering before pausing the session, so no tick can fetch
// from a session that is being paused. The surface and the display
// listener are paused even when no session exists, e.g. after a camera
// loss discarded it.
func (v *Viewer) Pause() {
	if v.surface != nil {
		v.surface.Pause()
	}
	v.display.Pause()
	v.manager.Pause()
}

// Destroy closes the session. The viewer cannot be resumed afterwards.
func (v *Viewer) Destroy() {
	v.manager.Close()
}

// PermissionResult delivers the outcome of a permission request. A grant
// resumes the viewer.
func (v *Viewer) PermissionResult(granted bool) error {
	if !granted {
		err := &ar.Error{Kind: ar.PermissionDenied, Op: "viewer.PermissionResult"}
		v.report(err)
		return err
	}
	return v.Resume()
}

// RotationChanged forwards a display rotation from the host.
func (v *Viewer) RotationChanged(rotation ar.Rotation) {
	v.display.NotifyRotation(rotation)
}

func (v *Viewer) report(err error) {
	msg := Message(err)
	logging.Logger().Error("viewer error", "msg", msg, "error", err)
	v.opts.Messenger.ShowError(msg)
}

// ── Render side ───────────────────────────────────────────────────────────────

// SurfaceCreated builds the GL resources. An error is fatal for the render
// loop.
func (v *Viewer) SurfaceCreated() error {
	gl, err := v.opts.GL()
	if err != nil {
		return fmt.Errorf("gl context: %w", err)
	}
	v.gl = gl
	c := v.opts.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])

	bg, err := render.NewBackground(gl, v.opts.Shaders)
	if err != nil {
		return fmt.Errorf("background renderer: %w", err)
	}
	v.background = bg
	v.manager.BindCameraTexture(bg.TextureID())
	return nil
}

// SurfaceChanged records the new viewport size.
func (v *Viewer) SurfaceChanged(width, height int) {
	if v.gl != nil {
		v.gl.Viewport(0, 0, width, height)
	}
	v.display.NotifySize(width, height)
}

// DrawFrame renders one tick. Without a resumed session it only clears.
func (v *Viewer) DrawFrame() error {
	if v.gl == nil || v.background == nil {
		return nil
	}
	v.gl.Clear(gles.COLOR_BUFFER_BIT | gles.DEPTH_BUFFER_BIT)

	frame, err := v.manager.FetchFrame()
	switch {
	case errors.Is(err, session.ErrNoSession),
		errors.Is(err, session.ErrNotResumed),
		errors.Is(err, session.ErrClosed):
		v.idle.Add(1)
		return nil
	case ar.IsKind(err, ar.CameraUnavailable):
		v.cameras.Add(1)
		v.report(err)
		return nil
	case err != nil:
		v.failed.Add(1)
		return err
	}

	drawn, err := v.background.Draw(frame)
	if err != nil {
		v.failed.Add(1)
		return err
	}
	if drawn {
		v.drawn.Add(1)
	} else {
		v.stale.Add(1)
	}
	return nil
}

// SurfaceDestroyed frees GL resources while the context is still current.
func (v *Viewer) SurfaceDestroyed() {
	if v.background != nil {
		v.background.Destroy()
		v.background = nil
	}
	v.gl = nil
}
