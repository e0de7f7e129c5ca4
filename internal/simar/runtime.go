// Package simar is a simulated AR runtime for desktop runs and tests.
//
// It behaves like a mobile AR runtime from the viewer's point of view: an
// availability check that may request an install, sessions that must be
// resumed before they produce frames, a camera image written into the
// bound texture on every update, and frames with timestamp 0 until the
// camera delivers its first image. Tracking is a slow synthetic orbit.
package simar

import (
	"sync"

	"ar-viewer/internal/ar"
	"ar-viewer/internal/camera"
	"ar-viewer/internal/gles"
	"ar-viewer/internal/logging"
)

// Config scripts the runtime's availability.
type Config struct {
	// InstallRequired makes the first check that allows an install
	// return InstallRequested; later checks find the runtime installed.
	InstallRequired bool
	// Unavailable, when set to one of the ar.Reason constants, makes every
	// availability check fail with that reason.
	Unavailable string
	// FailSessions makes NewSession fail.
	FailSessions bool
}

// Runtime implements ar.Runtime over a camera.Feed.
type Runtime struct {
	cfg  Config
	feed camera.Feed

	mu        sync.Mutex
	gl        gles.Context
	installed bool
	created   int
}

// NewRuntime returns a runtime whose sessions read from feed.
func NewRuntime(feed camera.Feed, cfg Config) *Runtime {
	return &Runtime{cfg: cfg, feed: feed, installed: !cfg.InstallRequired}
}

// AttachGL gives sessions the GL context used to upload camera images.
// It must be the context current on the render goroutine. Without one,
// frames still advance but the texture is left untouched.
func (r *Runtime) AttachGL(gl gles.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gl = gl
}

func (r *Runtime) glContext() gles.Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gl
}

// CheckInstalled reports runtime availability.
func (r *Runtime) CheckInstalled(userRequestedInstall bool) (ar.InstallStatus, error) {
	const op = "simar.CheckInstalled"
	if reason := r.cfg.Unavailable; reason != "" {
		kind := ar.Unsupported
		if reason == ar.ReasonRuntimeTooOld || reason == ar.ReasonAppTooOld {
			kind = ar.VersionMismatch
		}
		return ar.Installed, &ar.Error{Kind: kind, Op: op, Reason: reason}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.installed {
		return ar.Installed, nil
	}
	// The install flow runs once. Whatever the user did, the next check
	// finds the runtime present.
	r.installed = true
	if userRequestedInstall {
		logging.Logger().Info("simulated ar runtime install requested")
		return ar.InstallRequested, nil
	}
	return ar.Installed, nil
}

// NewSession creates a session bound to the runtime's camera feed.
func (r *Runtime) NewSession() (ar.Session, error) {
	if r.cfg.FailSessions {
		return nil, ar.Errorf(ar.SessionFailure, "simar.NewSession", "session creation disabled")
	}
	r.mu.Lock()
	r.created++
	r.mu.Unlock()
	return newSession(r), nil
}

// Sessions returns how many sessions were created.
func (r *Runtime) Sessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created
}

var _ ar.Runtime = (*Runtime)(nil)
