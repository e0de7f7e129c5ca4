package simar

import (
	gomath "math"
	"sync"

	"ar-viewer/internal/ar"
	"ar-viewer/internal/camera"
	"ar-viewer/internal/gles"
	"ar-viewer/math"
)

// orbitRadius and orbitSpeed shape the synthetic camera path (metres,
// radians per second).
const (
	orbitRadius = 0.5
	orbitSpeed  = 0.25
)

// Session implements ar.Session.
type Session struct {
	rt *Runtime

	mu          sync.Mutex
	texture     uint32
	rotation    ar.Rotation
	viewW       int
	viewH       int
	camW        int
	camH        int
	geomChanged bool
	resumed     bool
	started     bool
	closed      bool
	lastSeq     uint64
	lastTS      int64
	toTexture   math.Affine2
}

func newSession(rt *Runtime) *Session {
	return &Session{rt: rt, toTexture: displayToTexture(ar.Rotation0, 1, 1, 1, 1)}
}

func (s *Session) SetCameraTexture(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texture = id
}

// SetDisplayGeometry records the viewport. The next Update reports a
// geometry change.
func (s *Session) SetDisplayGeometry(rotation ar.Rotation, width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotation, s.viewW, s.viewH = rotation, width, height
	s.geomChanged = true
}

// Resume opens the camera. A camera that fails to start is reported as
// CameraUnavailable.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ar.Errorf(ar.SessionFailure, "simar.Resume", "session closed")
	}
	if s.resumed {
		return nil
	}
	// The feed outlives sessions. Whatever it holds from an earlier
	// session is not this session's camera image.
	if !s.started {
		if img, ok := s.rt.feed.Latest(); ok {
			s.lastSeq = img.Seq
		}
	}
	if err := s.rt.feed.Start(); err != nil {
		if ar.IsKind(err, ar.CameraUnavailable) {
			return err
		}
		return &ar.Error{Kind: ar.CameraUnavailable, Op: "simar.Resume", Err: err}
	}
	s.resumed = true
	s.started = true
	return nil
}

// Pause releases the camera.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.resumed {
		return
	}
	s.rt.feed.Stop()
	s.resumed = false
}

func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.resumed {
		s.rt.feed.Stop()
	}
	s.resumed = false
	s.closed = true
}

// Update uploads the newest camera image into the camera texture and
// returns a frame describing it. Must run with the GL context current.
func (s *Session) Update() (ar.Frame, error) {
	const op = "simar.Update"
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ar.Errorf(ar.SessionFailure, op, "session closed")
	}
	if !s.resumed {
		return nil, ar.Errorf(ar.SessionFailure, op, "session not resumed")
	}
	if err := s.rt.feed.Err(); err != nil {
		return nil, err
	}

	if img, ok := s.rt.feed.Latest(); ok && img.Seq > s.lastSeq {
		s.upload(img)
		s.lastSeq, s.lastTS = img.Seq, img.Timestamp
		w, h := img.RGBA.Bounds().Dx(), img.RGBA.Bounds().Dy()
		if w != s.camW || h != s.camH {
			s.camW, s.camH = w, h
			s.geomChanged = true
		}
	}

	changed := s.geomChanged
	if changed {
		s.toTexture = displayToTexture(s.rotation, s.viewW, s.viewH, s.camW, s.camH)
		s.geomChanged = false
	}
	return &Frame{
		timestamp: s.lastTS,
		changed:   changed,
		toTexture: s.toTexture,
		pose:      orbitPose(s.lastTS),
	}, nil
}

func (s *Session) upload(img camera.Image) {
	gl := s.rt.glContext()
	if gl == nil || s.texture == 0 {
		return
	}
	b := img.RGBA.Bounds()
	gl.BindTexture(gles.TEXTURE_2D, gles.Texture(s.texture))
	gl.TexImage2D(gles.TEXTURE_2D, b.Dx(), b.Dy(), gles.RGBA, gles.UNSIGNED_BYTE, img.RGBA.Pix)
}

// orbitPose circles the origin at orbitRadius, always facing the centre.
func orbitPose(ts int64) ar.Pose {
	angle := float32(float64(ts) / 1e9 * orbitSpeed)
	sin, cos := gomath.Sincos(float64(angle))
	return ar.Pose{
		Position:    math.NewVec3(orbitRadius*float32(sin), 0, orbitRadius*float32(cos)),
		Orientation: math.QuaternionFromAxisAngle(math.Vec3Up, angle),
	}
}

var _ ar.Session = (*Session)(nil)
