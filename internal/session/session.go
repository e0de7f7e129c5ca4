// Package session owns the AR session handle and its lifecycle.
//
// Manager is the single hand-off point between the host-lifecycle goroutine
// (Create, Resume, Pause, Close) and the render goroutine (FetchFrame).
// Every transition and every fetch runs under one mutex, so a render tick
// sees either a complete session or none at all.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"ar-viewer/internal/ar"
	"ar-viewer/internal/display"
	"ar-viewer/internal/logging"
)

// State is the lifecycle state of the managed session.
type State int

const (
	Absent State = iota
	Created
	Resumed
	Paused
	Closed
)

var stateNames = [...]string{"absent", "created", "resumed", "paused", "closed"}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	// ErrInstallRequested means the runtime started an install flow. The
	// host should stay quiet; the next Create retries.
	ErrInstallRequested = errors.New("session: ar runtime install requested")
	// ErrNoSession is returned when no session exists.
	ErrNoSession = errors.New("session: no session")
	// ErrNotResumed is returned by FetchFrame outside the Resumed state.
	ErrNotResumed = errors.New("session: not resumed")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("session: closed")
)

// GeometryApplier pushes pending display geometry into a session.
// *display.Coordinator implements it.
type GeometryApplier interface {
	ApplyIfNeeded(sink display.GeometrySink) bool
}

// Manager drives one AR session through its lifecycle.
type Manager struct {
	runtime  ar.Runtime
	perms    ar.Permissions
	geometry GeometryApplier

	mu               sync.Mutex
	state            State
	sess             ar.Session
	id               string
	installRequested bool
	texture          uint32
}

// NewManager returns a Manager in the Absent state. geometry may be nil.
func NewManager(runtime ar.Runtime, perms ar.Permissions, geometry GeometryApplier) *Manager {
	return &Manager{runtime: runtime, perms: perms, geometry: geometry}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SessionID identifies the current session in logs. Empty when Absent.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id
}

// BindCameraTexture records the texture the camera image is written into
// and passes it to the current session, if any. Later sessions get it on
// creation.
func (m *Manager) BindCameraTexture(id uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texture = id
	if m.sess != nil {
		m.sess.SetCameraTexture(id)
	}
}

// Create checks permission and runtime availability and creates a session.
// It is a no-op when a session already exists.
func (m *Manager) Create() error {
	const op = "session.Create"
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case Closed:
		return ErrClosed
	case Created, Resumed, Paused:
		return nil
	}

	if !m.perms.HasCameraPermission() {
		return &ar.Error{Kind: ar.PermissionDenied, Op: op}
	}

	status, err := m.runtime.CheckInstalled(!m.installRequested)
	if err != nil {
		return categorize(op, ar.Unsupported, err)
	}
	if status == ar.InstallRequested {
		m.installRequested = true
		logging.Logger().Info("ar runtime install requested")
		return ErrInstallRequested
	}

	sess, err := m.runtime.NewSession()
	if err != nil {
		return categorize(op, ar.SessionFailure, err)
	}
	if m.texture != 0 {
		sess.SetCameraTexture(m.texture)
	}

	m.sess = sess
	m.id = uuid.NewString()
	m.state = Created
	logging.Logger().Info("ar session created", "session", m.id)
	return nil
}

// Resume starts or restarts the session. If the camera is unavailable the
// session is closed and discarded, leaving the manager Absent so that the
// next Create starts over.
func (m *Manager) Resume() error {
	const op = "session.Resume"
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case Closed:
		return ErrClosed
	case Absent:
		return ErrNoSession
	case Resumed:
		return nil
	}

	if err := m.sess.Resume(); err != nil {
		if ar.IsKind(err, ar.CameraUnavailable) {
			m.discardLocked("resume failed")
			return fmt.Errorf("%s: %w", op, err)
		}
		return categorize(op, ar.SessionFailure, err)
	}
	m.state = Resumed
	logging.Logger().Info("ar session resumed", "session", m.id)
	return nil
}

// Pause pauses a resumed session. The caller must already have paused the
// render surface.
func (m *Manager) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Resumed {
		return
	}
	m.sess.Pause()
	m.state = Paused
	logging.Logger().Info("ar session paused", "session", m.id)
}

// Close releases the session. Calling it more than once is safe; the
// native session is closed exactly once and the manager stays Closed.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Closed {
		return
	}
	if m.sess != nil {
		m.sess.Close()
		logging.Logger().Info("ar session closed", "session", m.id)
	}
	m.sess = nil
	m.id = ""
	m.state = Closed
}

// FetchFrame applies pending display geometry and returns the session's
// latest frame. It must be called from the render goroutine with the GL
// context current, because the session writes the camera image into the
// bound texture.
func (m *Manager) FetchFrame() (ar.Frame, error) {
	const op = "session.FetchFrame"
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case Closed:
		return nil, ErrClosed
	case Absent:
		return nil, ErrNoSession
	case Created, Paused:
		return nil, ErrNotResumed
	}

	if m.texture != 0 {
		m.sess.SetCameraTexture(m.texture)
	}
	if m.geometry != nil {
		m.geometry.ApplyIfNeeded(m.sess)
	}

	frame, err := m.sess.Update()
	if err != nil {
		if ar.IsKind(err, ar.CameraUnavailable) {
			m.discardLocked("camera lost")
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return nil, categorize(op, ar.SessionFailure, err)
	}
	return frame, nil
}

// discardLocked closes the session and returns to Absent. m.mu must be held.
func (m *Manager) discardLocked(why string) {
	logging.Logger().Warn("ar session discarded", "session", m.id, "reason", why)
	m.sess.Close()
	m.sess = nil
	m.id = ""
	m.state = Absent
}

// categorize keeps an existing *ar.Error and classifies anything else as
// kind.
func categorize(op string, kind ar.Kind, err error) error {
	var e *ar.Error
	if errors.As(err, &e) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return &ar.Error{Kind: kind, Op: op, Err: err}
}
