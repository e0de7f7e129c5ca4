// Package display tracks display rotation and viewport size and hands them
// to the AR session once per render tick.
//
// Notifications may arrive from any goroutine at any rate; only the latest
// geometry is kept and it is applied at the start of the next tick.
package display

import (
	"fmt"
	"sync"

	"ar-viewer/internal/ar"
	"ar-viewer/internal/logging"
)

// Geometry is the display state the AR session needs to map camera
// coordinates onto the viewport.
type Geometry struct {
	Rotation ar.Rotation
	Width    int
	Height   int
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d@%v", g.Width, g.Height, g.Rotation)
}

// Known reports whether the viewport size has been reported.
func (g Geometry) Known() bool { return g.Width > 0 && g.Height > 0 }

// GeometrySink receives geometry updates. ar.Session satisfies it.
type GeometrySink interface {
	SetDisplayGeometry(rotation ar.Rotation, width, height int)
}

// Coordinator holds the latest display geometry and whether the session
// has seen it.
type Coordinator struct {
	mu        sync.Mutex
	geom      Geometry
	dirty     bool
	listening bool
	query     func() ar.Rotation
}

// New returns a paused Coordinator. query, if non-nil, reads the current
// display rotation; Resume uses it to catch up on rotations missed while
// paused.
func New(query func() ar.Rotation) *Coordinator {
	c := &Coordinator{query: query}
	if query != nil {
		c.geom.Rotation = query()
	}
	return c
}

// NotifyGeometryChanged records a full geometry update.
func (c *Coordinator) NotifyGeometryChanged(rotation ar.Rotation, width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.geom = Geometry{Rotation: rotation, Width: width, Height: height}
	c.dirty = true
}

// NotifyRotation records a display rotation. It is dropped while the
// coordinator is paused, like an unregistered display listener.
func (c *Coordinator) NotifyRotation(rotation ar.Rotation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.listening {
		return
	}
	if c.geom.Rotation != rotation {
		c.geom.Rotation = rotation
		c.dirty = true
	}
}

// NotifySize records a new viewport size, as reported by surface-changed.
func (c *Coordinator) NotifySize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.geom.Width, c.geom.Height = width, height
	c.dirty = true
}

// ApplyIfNeeded pushes pending geometry into sink and reports whether it
// did. Geometry is held back until a viewport size is known.
func (c *Coordinator) ApplyIfNeeded(sink GeometrySink) bool {
	c.mu.Lock()
	if !c.dirty || !c.geom.Known() {
		c.mu.Unlock()
		return false
	}
	g := c.geom
	c.dirty = false
	c.mu.Unlock()

	sink.SetDisplayGeometry(g.Rotation, g.Width, g.Height)
	logging.Logger().Debug("display geometry applied", "geometry", g.String())
	return true
}

// Resume starts listening for rotations and marks the geometry pending so
// the next session sees it.
func (c *Coordinator) Resume() {
	var rot ar.Rotation
	if c.query != nil {
		rot = c.query()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listening = true
	if c.query != nil {
		c.geom.Rotation = rot
	}
	c.dirty = true
}

// Pause stops listening for rotations.
func (c *Coordinator) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listening = false
}

// Geometry returns the latest recorded geometry.
func (c *Coordinator) Geometry() Geometry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.geom
}

// Pending reports whether geometry is waiting to be applied.
func (c *Coordinator) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}
