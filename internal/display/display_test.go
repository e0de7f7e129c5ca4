package display

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ar-viewer/internal/ar"
)

type sinkCall struct {
	rot  ar.Rotation
	w, h int
}

type recordingSink struct {
	mu    sync.Mutex
	calls []sinkCall
}

func (s *recordingSink) SetDisplayGeometry(rot ar.Rotation, w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, sinkCall{rot, w, h})
}

func TestApplyOnlyWhenDirty(t *testing.T) {
	c := New(nil)
	sink := &recordingSink{}

	assert.False(t, c.ApplyIfNeeded(sink), "nothing reported yet")

	c.NotifyGeometryChanged(ar.Rotation90, 1920, 1080)
	assert.True(t, c.ApplyIfNeeded(sink))
	assert.False(t, c.ApplyIfNeeded(sink), "second apply in the same state is a no-op")

	require.Len(t, sink.calls, 1)
	assert.Equal(t, sinkCall{ar.Rotation90, 1920, 1080}, sink.calls[0])
}

func TestLastWriteWins(t *testing.T) {
	c := New(nil)
	c.Resume()
	sink := &recordingSink{}

	c.NotifySize(640, 480)
	c.NotifyRotation(ar.Rotation90)
	c.NotifySize(480, 640)
	c.NotifyRotation(ar.Rotation270)

	require.True(t, c.ApplyIfNeeded(sink))
	require.Len(t, sink.calls, 1)
	assert.Equal(t, sinkCall{ar.Rotation270, 480, 640}, sink.calls[0])
}

func TestHeldBackUntilSizeKnown(t *testing.T) {
	c := New(nil)
	c.Resume()
	sink := &recordingSink{}

	c.NotifyRotation(ar.Rotation180)
	assert.False(t, c.ApplyIfNeeded(sink))
	assert.True(t, c.Pending())

	c.NotifySize(800, 600)
	assert.True(t, c.ApplyIfNeeded(sink))
	assert.Equal(t, sinkCall{ar.Rotation180, 800, 600}, sink.calls[0])
}

func TestPausedDropsRotations(t *testing.T) {
	c := New(nil)
	c.NotifySize(800, 600)
	c.ApplyIfNeeded(&recordingSink{})

	c.NotifyRotation(ar.Rotation90)
	assert.Equal(t, ar.Rotation0, c.Geometry().Rotation)
	assert.False(t, c.Pending())

	c.Resume()
	c.NotifyRotation(ar.Rotation90)
	assert.Equal(t, ar.Rotation90, c.Geometry().Rotation)

	c.Pause()
	c.NotifyRotation(ar.Rotation180)
	assert.Equal(t, ar.Rotation90, c.Geometry().Rotation)

	// Size updates come from the surface and are never dropped.
	c.NotifySize(600, 800)
	assert.Equal(t, Geometry{Rotation: ar.Rotation90, Width: 600, Height: 800}, c.Geometry())
}

func TestResumeMarksPendingAndCatchesUp(t *testing.T) {
	current := ar.Rotation0
	c := New(func() ar.Rotation { return current })
	sink := &recordingSink{}

	c.NotifySize(1280, 720)
	c.ApplyIfNeeded(sink)

	current = ar.Rotation270
	c.Resume()
	assert.True(t, c.Pending())
	require.True(t, c.ApplyIfNeeded(sink))
	assert.Equal(t, sinkCall{ar.Rotation270, 1280, 720}, sink.calls[1])
}

func TestConcurrentNotifications(t *testing.T) {
	c := New(nil)
	c.Resume()
	c.NotifySize(100, 100)
	sink := &recordingSink{}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				c.NotifyRotation(ar.Rotation((i + j) % 4))
				c.NotifySize(100+j, 100+i)
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for k := 0; k < 500; k++ {
			c.ApplyIfNeeded(sink)
		}
	}()
	wg.Wait()
	<-done

	c.NotifyGeometryChanged(ar.Rotation180, 300, 200)
	require.True(t, c.ApplyIfNeeded(sink))
	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Equal(t, sinkCall{ar.Rotation180, 300, 200}, sink.calls[len(sink.calls)-1])
	for _, call := range sink.calls {
		assert.True(t, call.w > 0 && call.h > 0)
	}
}
