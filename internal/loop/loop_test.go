package loop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSurface struct {
	mu        sync.Mutex
	events    []string
	sizes     [][2]int
	draws     int
	createErr error
	drawErr   error
	// block, when set, makes DrawFrame wait on it.
	block   chan struct{}
	drawing chan struct{}
}

func (s *fakeSurface) add(e string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *fakeSurface) SurfaceCreated() error {
	s.add("created")
	return s.createErr
}

func (s *fakeSurface) SurfaceChanged(w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sizes = append(s.sizes, [2]int{w, h})
	s.events = append(s.events, "changed")
}

func (s *fakeSurface) DrawFrame() error {
	s.mu.Lock()
	block, drawing := s.block, s.drawing
	s.mu.Unlock()
	if drawing != nil {
		select {
		case drawing <- struct{}{}:
		default:
		}
	}
	if block != nil {
		<-block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draws++
	return s.drawErr
}

func (s *fakeSurface) SurfaceDestroyed() { s.add("destroyed") }

func (s *fakeSurface) drawCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draws
}

func (s *fakeSurface) snapshot() ([]string, [][2]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...), append([][2]int(nil), s.sizes...)
}

func runDriver(t *testing.T, d *Driver) (cancel func() error) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- d.Run(ctx) }()

	var once sync.Once
	var err error
	cancel = func() error {
		once.Do(func() {
			stop()
			err = <-errc
		})
		return err
	}
	t.Cleanup(func() { _ = cancel() })
	return cancel
}

func TestDriverLifecycle(t *testing.T) {
	s := &fakeSurface{}
	var mu sync.Mutex
	var hooks []string
	hook := func(name string) {
		mu.Lock()
		defer mu.Unlock()
		hooks = append(hooks, name)
	}
	d := NewDriver(s, Hooks{
		MakeCurrent:    func() error { hook("current"); return nil },
		SwapBuffers:    func() {},
		ReleaseCurrent: func() { hook("release") },
	}, 500)
	require.True(t, d.Paused(), "drivers start paused")

	stop := runDriver(t, d)
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, s.drawCount(), "no ticks while paused")

	d.Resume()
	require.Eventually(t, func() bool { return s.drawCount() >= 3 }, 2*time.Second, time.Millisecond)
	assert.GreaterOrEqual(t, d.Ticks(), uint64(3))

	require.NoError(t, stop())
	events, _ := s.snapshot()
	assert.Equal(t, "created", events[0])
	assert.Equal(t, "destroyed", events[len(events)-1])

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"current", "release"}, hooks)
}

func TestDriverSurfaceCreatedFailure(t *testing.T) {
	s := &fakeSurface{createErr: errors.New("link failed")}
	d := NewDriver(s, Hooks{}, 500)
	d.Resume()

	err := d.Run(context.Background())
	assert.ErrorContains(t, err, "link failed")
	assert.Zero(t, s.drawCount())
}

func TestDriverMakeCurrentFailure(t *testing.T) {
	s := &fakeSurface{}
	d := NewDriver(s, Hooks{MakeCurrent: func() error { return errors.New("no context") }}, 500)

	err := d.Run(context.Background())
	assert.ErrorContains(t, err, "no context")
	events, _ := s.snapshot()
	assert.Empty(t, events)
}

func TestDriverResizeLastWriteWins(t *testing.T) {
	s := &fakeSurface{}
	d := NewDriver(s, Hooks{}, 500)

	d.NotifyResize(100, 100)
	d.NotifyResize(200, 100)
	d.NotifyResize(300, 150)
	runDriver(t, d)
	d.Resume()

	require.Eventually(t, func() bool { return s.drawCount() >= 2 }, 2*time.Second, time.Millisecond)
	events, sizes := s.snapshot()
	assert.Equal(t, [][2]int{{300, 150}}, sizes)
	assert.Equal(t, []string{"created", "changed"}, events, "resize delivered before the first draw")
}

func TestDriverPauseWaitsForInFlightTick(t *testing.T) {
	block := make(chan struct{})
	s := &fakeSurface{block: block, drawing: make(chan struct{}, 1)}
	d := NewDriver(s, Hooks{}, 500)
	runDriver(t, d)
	d.Resume()

	<-s.drawing // a tick is now blocked inside DrawFrame

	paused := make(chan struct{})
	go func() {
		d.Pause()
		close(paused)
	}()

	select {
	case <-paused:
		t.Fatal("Pause returned while a tick was in flight")
	case <-time.After(20 * time.Millisecond):
	}

	close(block)

	select {
	case <-paused:
	case <-time.After(2 * time.Second):
		t.Fatal("Pause did not return after the tick finished")
	}

	n := s.drawCount()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, s.drawCount(), "no ticks after Pause returns")
}

func TestDriverKeepsRunningAfterDrawErrors(t *testing.T) {
	s := &fakeSurface{drawErr: errors.New("GL_INVALID_OPERATION")}
	d := NewDriver(s, Hooks{}, 500)
	runDriver(t, d)
	d.Resume()

	require.Eventually(t, func() bool { return d.Errors() >= 3 }, 2*time.Second, time.Millisecond)
	assert.GreaterOrEqual(t, s.drawCount(), 3)
}

func TestDriverStepWithoutRun(t *testing.T) {
	s := &fakeSurface{drawErr: errors.New("boom")}
	swaps := 0
	d := NewDriver(s, Hooks{SwapBuffers: func() { swaps++ }}, 60)

	ran, err := d.Step()
	assert.False(t, ran, "paused driver does not tick")
	require.NoError(t, err)

	d.NotifyResize(800, 600)
	d.Resume()
	ran, err = d.Step()
	assert.True(t, ran)
	require.EqualError(t, err, "boom")

	_, sizes := s.snapshot()
	assert.Equal(t, [][2]int{{800, 600}}, sizes)
	assert.Equal(t, 1, swaps)
	assert.Equal(t, uint64(1), d.Ticks())
	assert.Equal(t, uint64(1), d.Errors())
}
