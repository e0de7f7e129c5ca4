// Package artest provides scriptable AR runtime fakes for tests.
package artest

import (
	"fmt"
	"sync"

	"ar-viewer/internal/ar"
)

// Log is an ordered, goroutine-safe event log shared between fakes so
// tests can assert cross-component ordering.
type Log struct {
	mu     sync.Mutex
	events []string
}

// Add appends a formatted event. A nil Log discards it.
func (l *Log) Add(format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

// Events returns a copy of the log.
func (l *Log) Events() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

// Frame is a fixed ar.Frame. TransformCoordinates2D flips y into
// texture space and applies no rotation.
type Frame struct {
	TS      int64
	Changed bool
	P       ar.Pose
}

func (f *Frame) Timestamp() int64                { return f.TS }
func (f *Frame) HasDisplayGeometryChanged() bool { return f.Changed }
func (f *Frame) Pose() ar.Pose                   { return f.P }

func (f *Frame) TransformCoordinates2D(from ar.Coordinates2D, in []float32, to ar.Coordinates2D, out []float32) {
	for i := 0; i+1 < len(in) && i+1 < len(out); i += 2 {
		out[i] = (in[i] + 1) / 2
		out[i+1] = (1 - in[i+1]) / 2
	}
}

// Geometry is one SetDisplayGeometry call.
type Geometry struct {
	Rotation      ar.Rotation
	Width, Height int
}

// Session is a scriptable ar.Session.
type Session struct {
	mu sync.Mutex
	// Name prefixes events written to Log.
	Name string
	Log  *Log

	// ResumeErr is returned by every Resume while set.
	ResumeErr error
	// UpdateErr is returned by every Update while set.
	UpdateErr error
	// Timestamp is stamped on frames; zero simulates a camera that has
	// not delivered an image yet.
	Timestamp int64

	texture    uint32
	geometries []Geometry
	geomDirty  bool
	resumes    int
	pauses     int
	closes     int
	updates    int
}

// NewSession returns a session whose frames carry timestamp 1.
func NewSession(name string, log *Log) *Session {
	return &Session{Name: name, Log: log, Timestamp: 1}
}

func (s *Session) SetCameraTexture(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texture = id
}

func (s *Session) SetDisplayGeometry(rotation ar.Rotation, width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.geometries = append(s.geometries, Geometry{rotation, width, height})
	s.geomDirty = true
	s.Log.Add("%s.geometry", s.Name)
}

func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resumes++
	s.Log.Add("%s.resume", s.Name)
	return s.ResumeErr
}

func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pauses++
	s.Log.Add("%s.pause", s.Name)
}

func (s *Session) Update() (ar.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	if s.UpdateErr != nil {
		return nil, s.UpdateErr
	}
	f := &Frame{TS: s.Timestamp, Changed: s.geomDirty}
	s.geomDirty = false
	return f, nil
}

func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	s.Log.Add("%s.close", s.Name)
}

// SetUpdateErr changes UpdateErr under the session lock.
func (s *Session) SetUpdateErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpdateErr = err
}

// SetTimestamp changes Timestamp under the session lock.
func (s *Session) SetTimestamp(ts int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Timestamp = ts
}

// Texture returns the last camera texture set.
func (s *Session) Texture() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.texture
}

// Geometries returns all SetDisplayGeometry calls in order.
func (s *Session) Geometries() []Geometry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Geometry(nil), s.geometries...)
}

// Counts returns how often Resume, Pause, Close and Update were called.
func (s *Session) Counts() (resumes, pauses, closes, updates int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resumes, s.pauses, s.closes, s.updates
}

// Runtime is a scriptable ar.Runtime. Each NewSession call creates a fresh
// Session named "s1", "s2", ...
type Runtime struct {
	mu  sync.Mutex
	Log *Log

	// Status is returned by CheckInstalled when CheckErr is nil.
	Status   ar.InstallStatus
	CheckErr error
	// NewSessionErr fails session creation while set.
	NewSessionErr error
	// Configure, if set, adjusts each session before it is returned.
	Configure func(*Session)

	installArgs []bool
	sessions    []*Session
}

func (r *Runtime) CheckInstalled(userRequestedInstall bool) (ar.InstallStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.installArgs = append(r.installArgs, userRequestedInstall)
	if r.CheckErr != nil {
		return ar.Installed, r.CheckErr
	}
	return r.Status, nil
}

func (r *Runtime) NewSession() (ar.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.NewSessionErr != nil {
		return nil, r.NewSessionErr
	}
	s := NewSession(fmt.Sprintf("s%d", len(r.sessions)+1), r.Log)
	if r.Configure != nil {
		r.Configure(s)
	}
	r.sessions = append(r.sessions, s)
	r.Log.Add("%s.create", s.Name)
	return s, nil
}

// Set changes the install outcome under the runtime lock.
func (r *Runtime) Set(status ar.InstallStatus, checkErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status, r.CheckErr = status, checkErr
}

// InstallArgs returns the userRequestedInstall argument of every
// CheckInstalled call.
func (r *Runtime) InstallArgs() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.installArgs...)
}

// Sessions returns every session created so far.
func (r *Runtime) Sessions() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Session(nil), r.sessions...)
}

// Last returns the most recently created session, or nil.
func (r *Runtime) Last() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sessions) == 0 {
		return nil
	}
	return r.sessions[len(r.sessions)-1]
}

// Permissions is a scriptable ar.Permissions.
type Permissions struct {
	mu       sync.Mutex
	granted  bool
	requests int
}

// NewPermissions returns Permissions with the given initial grant.
func NewPermissions(granted bool) *Permissions {
	return &Permissions{granted: granted}
}

func (p *Permissions) HasCameraPermission() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.granted
}

func (p *Permissions) RequestPermission() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests++
}

// Grant sets the permission state.
func (p *Permissions) Grant(granted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.granted = granted
}

// Requests returns how many times permission was requested.
func (p *Permissions) Requests() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests
}

var (
	_ ar.Frame       = (*Frame)(nil)
	_ ar.Session     = (*Session)(nil)
	_ ar.Runtime     = (*Runtime)(nil)
	_ ar.Permissions = (*Permissions)(nil)
)
