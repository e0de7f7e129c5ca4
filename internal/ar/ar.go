// Package ar defines what the viewer needs from an AR runtime: install and
// permission checks, a tracking session, and per-tick frames.
//
// Real runtimes live behind these interfaces. internal/simar provides a
// simulated one for desktop runs and tests.
package ar

import (
	"fmt"

	"ar-viewer/math"
)

// Rotation is the display rotation relative to the device's natural
// orientation, in quarter turns counter-clockwise.
type Rotation int

const (
	Rotation0 Rotation = iota
	Rotation90
	Rotation180
	Rotation270
)

// RotationFromDegrees snaps degrees to the nearest quarter turn.
func RotationFromDegrees(deg int) Rotation {
	d := ((deg % 360) + 360) % 360
	return Rotation((d + 45) / 90 % 4)
}

func (r Rotation) Degrees() int { return int(r) * 90 }

// QuarterTurns returns r normalised to 0..3.
func (r Rotation) QuarterTurns() int { return ((int(r) % 4) + 4) % 4 }

func (r Rotation) String() string { return fmt.Sprintf("%d°", r.Degrees()) }

// InstallStatus is the outcome of a runtime availability check.
type InstallStatus int

const (
	Installed InstallStatus = iota
	InstallRequested
)

func (s InstallStatus) String() string {
	if s == InstallRequested {
		return "install-requested"
	}
	return "installed"
}

// Coordinates2D names a 2D coordinate space understood by
// Frame.TransformCoordinates2D.
type Coordinates2D int

const (
	// OpenGLNormalizedDevice is [-1,1]² with +y up.
	OpenGLNormalizedDevice Coordinates2D = iota
	// TextureNormalized is [0,1]² over the camera image with +y down.
	TextureNormalized
	// ViewNormalized is [0,1]² over the viewport with +y down.
	ViewNormalized
)

// Pose is the camera pose in tracking space.
type Pose struct {
	Position    math.Vec3
	Orientation math.Quaternion
}

// Forward is the direction the camera looks along (-Z in camera space).
func (p Pose) Forward() math.Vec3 {
	return p.Orientation.RotateVector(math.Vec3Back)
}

// Frame is one tick's snapshot of camera and tracking state. It is only
// valid until the next Session.Update.
type Frame interface {
	// Timestamp is the camera image time in nanoseconds. Zero means the
	// camera has not produced an image yet.
	Timestamp() int64
	// HasDisplayGeometryChanged reports whether display geometry changed
	// since the previous frame, so UVs must be recomputed.
	HasDisplayGeometryChanged() bool
	// TransformCoordinates2D maps interleaved x,y pairs between spaces.
	TransformCoordinates2D(from Coordinates2D, in []float32, to Coordinates2D, out []float32)
	Pose() Pose
}

// Session is a native AR tracking session.
type Session interface {
	// SetCameraTexture names the texture the camera image is written into.
	SetCameraTexture(id uint32)
	// SetDisplayGeometry informs the session of viewport rotation and size.
	SetDisplayGeometry(rotation Rotation, width, height int)
	Resume() error
	Pause()
	// Update returns the latest frame. It fails with CameraUnavailable if
	// the camera went away.
	Update() (Frame, error)
	// Close releases native resources. Callers guarantee a single call.
	Close()
}

// Runtime checks availability of the AR runtime and creates sessions.
type Runtime interface {
	// CheckInstalled may start an install flow when userRequestedInstall is
	// true and the runtime is missing, returning InstallRequested.
	CheckInstalled(userRequestedInstall bool) (InstallStatus, error)
	NewSession() (Session, error)
}

// Permissions is the host's camera permission collaborator.
type Permissions interface {
	HasCameraPermission() bool
	RequestPermission()
}
