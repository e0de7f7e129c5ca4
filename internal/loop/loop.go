// Package loop runs the render loop on a dedicated OS thread at a fixed
// cadence.
//
// The Driver owns the GL context while Run executes: it makes the context
// current, creates the surface resources, then calls DrawFrame once per
// tick until the context passed to Run is cancelled. Host code pauses and
// resumes ticking from any goroutine.
package loop

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"ar-viewer/internal/logging"
)

// Surface receives render callbacks, all on the loop goroutine with the GL
// context current.
type Surface interface {
	SurfaceCreated() error
	SurfaceChanged(width, height int)
	DrawFrame() error
	SurfaceDestroyed()
}

// Hooks bind the driver to a windowing system. All are optional.
type Hooks struct {
	// MakeCurrent binds the GL context to the loop's OS thread.
	MakeCurrent func() error
	// SwapBuffers presents a drawn tick.
	SwapBuffers func()
	// ReleaseCurrent unbinds the context when Run returns.
	ReleaseCurrent func()
}

type size struct{ w, h int }

// Driver is the render loop state machine: created, running or paused,
// and stopped once Run returns.
type Driver struct {
	surface  Surface
	hooks    Hooks
	interval time.Duration

	mu      sync.Mutex
	paused  bool
	pending *size

	// tickMu is held for the duration of a tick so Pause can wait for an
	// in-flight tick to finish.
	tickMu sync.Mutex

	ticks  atomic.Uint64
	errors atomic.Uint64
}

// NewDriver returns a paused driver ticking fps times per second.
func NewDriver(surface Surface, hooks Hooks, fps int) *Driver {
	if fps <= 0 {
		fps = 60
	}
	return &Driver{
		surface:  surface,
		hooks:    hooks,
		interval: time.Second / time.Duration(fps),
		paused:   true,
	}
}

// Pause stops ticking. It returns once no tick is in progress.
func (d *Driver) Pause() {
	d.mu.Lock()
	d.paused = true
	d.mu.Unlock()

	// Wait out a tick that started before paused was set.
	d.tickMu.Lock()
	d.tickMu.Unlock() //nolint:staticcheck
}

// Resume restarts ticking.
func (d *Driver) Resume() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paused = false
}

// Paused reports whether ticking is paused.
func (d *Driver) Paused() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.paused
}

// NotifyResize records a new surface size from any goroutine. The latest
// size is delivered to SurfaceChanged at the start of the next tick.
func (d *Driver) NotifyResize(width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = &size{width, height}
}

// Ticks returns the number of completed ticks.
func (d *Driver) Ticks() uint64 { return d.ticks.Load() }

// Errors returns the number of ticks that ended with an error.
func (d *Driver) Errors() uint64 { return d.errors.Load() }

// Run drives the loop on a locked OS thread until ctx is cancelled. It
// returns an error only if the context could not be made current or the
// surface could not be created.
func (d *Driver) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if d.hooks.MakeCurrent != nil {
		if err := d.hooks.MakeCurrent(); err != nil {
			return fmt.Errorf("make context current: %w", err)
		}
	}
	if d.hooks.ReleaseCurrent != nil {
		defer d.hooks.ReleaseCurrent()
	}

	if err := d.surface.SurfaceCreated(); err != nil {
		return fmt.Errorf("surface created: %w", err)
	}
	defer d.surface.SurfaceDestroyed()

	log := logging.Logger()
	log.Info("render loop started", "interval", d.interval)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	var lastErr string
	for {
		select {
		case <-ctx.Done():
			log.Info("render loop stopped", "ticks", d.ticks.Load(), "errors", d.errors.Load())
			return nil
		case <-ticker.C:
		}

		ran, err := d.Step()
		if !ran {
			continue
		}
		if err != nil {
			// Repeated identical errors are logged once.
			if msg := err.Error(); msg != lastErr {
				log.Warn("render tick failed", "error", err)
				lastErr = msg
			}
		} else {
			lastErr = ""
		}
	}
}

// Step runs one tick for hosts that pace rendering themselves, such as a
// paint-event loop that already holds the GL context. It reports whether
// the tick ran.
func (d *Driver) Step() (bool, error) {
	ran, err := d.tick()
	if ran && err != nil {
		d.errors.Add(1)
	}
	return ran, err
}

// tick runs one frame unless paused.
func (d *Driver) tick() (bool, error) {
	d.tickMu.Lock()
	defer d.tickMu.Unlock()

	d.mu.Lock()
	paused := d.paused
	resize := d.pending
	if !paused {
		d.pending = nil
	}
	d.mu.Unlock()
	if paused {
		return false, nil
	}

	if resize != nil {
		d.surface.SurfaceChanged(resize.w, resize.h)
	}
	err := d.surface.DrawFrame()
	if d.hooks.SwapBuffers != nil {
		d.hooks.SwapBuffers()
	}
	d.ticks.Add(1)
	return true, err
}
