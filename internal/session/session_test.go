package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ar-viewer/internal/ar"
	"ar-viewer/internal/ar/artest"
	"ar-viewer/internal/display"
)

func newTestManager(t *testing.T) (*Manager, *artest.Runtime, *artest.Permissions, *display.Coordinator) {
	t.Helper()
	rt := &artest.Runtime{}
	perms := artest.NewPermissions(true)
	geom := display.New(nil)
	return NewManager(rt, perms, geom), rt, perms, geom
}

func resumed(t *testing.T, m *Manager) {
	t.Helper()
	require.NoError(t, m.Create())
	require.NoError(t, m.Resume())
	require.Equal(t, Resumed, m.State())
}

func TestNotInstalledStaysAbsent(t *testing.T) {
	m, rt, _, _ := newTestManager(t)
	rt.Set(ar.Installed, &ar.Error{Kind: ar.Unsupported, Op: "check", Reason: ar.ReasonNotInstalled})

	err := m.Create()
	require.Error(t, err)
	assert.Equal(t, ar.Unsupported, ar.KindOf(err))
	assert.Equal(t, ar.ReasonNotInstalled, ar.ReasonOf(err))
	assert.Equal(t, Absent, m.State())
	assert.Empty(t, rt.Sessions())

	_, err = m.FetchFrame()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestUncategorizedCheckErrorIsUnsupported(t *testing.T) {
	m, rt, _, _ := newTestManager(t)
	rt.Set(ar.Installed, errors.New("boom"))

	err := m.Create()
	assert.True(t, ar.IsKind(err, ar.Unsupported))
}

func TestCreateAndResume(t *testing.T) {
	m, rt, _, _ := newTestManager(t)
	resumed(t, m)

	require.Len(t, rt.Sessions(), 1)
	_, err := uuid.Parse(m.SessionID())
	assert.NoError(t, err, "session id is a uuid")

	resumes, _, _, _ := rt.Last().Counts()
	assert.Equal(t, 1, resumes)

	// Create while a session exists is a no-op.
	require.NoError(t, m.Create())
	assert.Len(t, rt.Sessions(), 1)
}

func TestPermissionDenied(t *testing.T) {
	m, rt, perms, _ := newTestManager(t)
	perms.Grant(false)

	err := m.Create()
	assert.True(t, ar.IsKind(err, ar.PermissionDenied))
	assert.Equal(t, Absent, m.State())
	assert.Empty(t, rt.InstallArgs(), "runtime not consulted without permission")
}

func TestInstallRequestedOnlyOnce(t *testing.T) {
	m, rt, _, _ := newTestManager(t)
	rt.Set(ar.InstallRequested, nil)

	assert.ErrorIs(t, m.Create(), ErrInstallRequested)
	assert.Equal(t, Absent, m.State())

	rt.Set(ar.Installed, nil)
	require.NoError(t, m.Create())
	assert.Equal(t, []bool{true, false}, rt.InstallArgs())
}

func TestNewSessionFailure(t *testing.T) {
	m, rt, _, _ := newTestManager(t)
	rt.NewSessionErr = errors.New("native failure")

	err := m.Create()
	assert.True(t, ar.IsKind(err, ar.SessionFailure))
	assert.Equal(t, Absent, m.State())
}

func TestResumeCameraUnavailableDiscards(t *testing.T) {
	m, rt, _, _ := newTestManager(t)
	rt.Configure = func(s *artest.Session) {
		s.ResumeErr = &ar.Error{Kind: ar.CameraUnavailable, Op: "camera"}
	}

	require.NoError(t, m.Create())
	err := m.Resume()
	assert.True(t, ar.IsKind(err, ar.CameraUnavailable))
	assert.Equal(t, Absent, m.State())
	assert.Empty(t, m.SessionID())

	_, _, closes, _ := rt.Last().Counts()
	assert.Equal(t, 1, closes)

	assert.ErrorIs(t, m.Resume(), ErrNoSession)
}

func TestFetchCameraUnavailableGoesAbsentThenRecreates(t *testing.T) {
	m, rt, _, _ := newTestManager(t)
	resumed(t, m)
	first := rt.Last()
	firstID := m.SessionID()

	first.SetUpdateErr(&ar.Error{Kind: ar.CameraUnavailable, Op: "update"})
	_, err := m.FetchFrame()
	require.Error(t, err)
	assert.True(t, ar.IsKind(err, ar.CameraUnavailable))
	assert.Equal(t, Absent, m.State(), "camera loss discards rather than pauses")

	_, pauses, closes, _ := first.Counts()
	assert.Zero(t, pauses)
	assert.Equal(t, 1, closes)

	resumed(t, m)
	assert.Len(t, rt.Sessions(), 2)
	assert.NotSame(t, first, rt.Last())
	assert.NotEqual(t, firstID, m.SessionID())
}

func TestFetchRequiresResumed(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	require.NoError(t, m.Create())

	_, err := m.FetchFrame()
	assert.ErrorIs(t, err, ErrNotResumed)

	require.NoError(t, m.Resume())
	m.Pause()
	assert.Equal(t, Paused, m.State())
	_, err = m.FetchFrame()
	assert.ErrorIs(t, err, ErrNotResumed)

	require.NoError(t, m.Resume())
	f, err := m.FetchFrame()
	require.NoError(t, err)
	assert.NotNil(t, f)
}

func TestFetchBindsTextureAndAppliesGeometry(t *testing.T) {
	m, rt, _, geom := newTestManager(t)
	m.BindCameraTexture(7)
	resumed(t, m)
	sess := rt.Last()
	assert.Equal(t, uint32(7), sess.Texture(), "texture passed on create")

	geom.NotifyGeometryChanged(ar.Rotation90, 1080, 1920)
	f, err := m.FetchFrame()
	require.NoError(t, err)
	assert.True(t, f.HasDisplayGeometryChanged())
	assert.Equal(t, []artest.Geometry{{Rotation: ar.Rotation90, Width: 1080, Height: 1920}}, sess.Geometries())

	f, err = m.FetchFrame()
	require.NoError(t, err)
	assert.False(t, f.HasDisplayGeometryChanged())
	assert.Len(t, sess.Geometries(), 1, "clean geometry is not re-applied")

	m.BindCameraTexture(9)
	assert.Equal(t, uint32(9), sess.Texture())
}

func TestCloseIsIdempotentAndTerminal(t *testing.T) {
	m, rt, _, _ := newTestManager(t)
	resumed(t, m)

	m.Close()
	m.Close()
	assert.Equal(t, Closed, m.State())

	_, _, closes, _ := rt.Last().Counts()
	assert.Equal(t, 1, closes)

	assert.ErrorIs(t, m.Create(), ErrClosed)
	assert.ErrorIs(t, m.Resume(), ErrClosed)
	_, err := m.FetchFrame()
	assert.ErrorIs(t, err, ErrClosed)
	m.Pause()
}

func TestCloseWithoutSession(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	m.Close()
	assert.Equal(t, Closed, m.State())
}

func TestConcurrentCloseAndFetch(t *testing.T) {
	m, rt, _, _ := newTestManager(t)
	resumed(t, m)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			f, err := m.FetchFrame()
			if err != nil {
				assert.ErrorIs(t, err, ErrClosed)
				return
			}
			assert.NotNil(t, f)
		}
	}()
	go func() {
		defer wg.Done()
		m.Close()
	}()
	wg.Wait()

	_, _, closes, _ := rt.Last().Counts()
	assert.Equal(t, 1, closes)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "resumed", Resumed.String())
	assert.Equal(t, "state(9)", State(9).String())
}
