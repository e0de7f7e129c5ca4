// Package camera supplies RGBA camera images to the simulated AR runtime.
//
// A Feed keeps only the most recent image: producers overwrite it and the
// render tick reads whatever is newest. Older images are dropped.
package camera

import (
	"image"
	"sync"
	"time"

	"ar-viewer/internal/ar"
)

// Image is one captured camera image.
type Image struct {
	RGBA *image.RGBA
	// Timestamp is the capture time in nanoseconds since the feed was
	// created. Always positive.
	Timestamp int64
	// Seq increases by one per published image.
	Seq uint64
}

// Feed is a source of camera images.
type Feed interface {
	// Start begins capturing. Calling Start on a running feed is a no-op.
	Start() error
	// Latest returns the newest image, or false if none arrived yet.
	Latest() (Image, bool)
	// Err returns the error that stopped the feed, if any. It is an
	// *ar.Error of kind CameraUnavailable.
	Err() error
	// Stop halts capture and waits for producers to exit. The last image
	// stays available.
	Stop()
}

// slot is a single-image mailbox with overwrite semantics.
type slot struct {
	epoch time.Time

	mu      sync.Mutex
	img     Image
	has     bool
	seq     uint64
	dropped uint64
	read    uint64
	err     error
}

func newSlot() *slot {
	return &slot{epoch: time.Now()}
}

// publish replaces the held image. An image that was never read counts as
// dropped.
func (s *slot) publish(rgba *image.RGBA) Image {
	ts := time.Since(s.epoch).Nanoseconds()
	if ts <= 0 {
		ts = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.has && s.read != s.seq {
		s.dropped++
	}
	s.seq++
	s.img = Image{RGBA: rgba, Timestamp: ts, Seq: s.seq}
	s.has = true
	return s.img
}

func (s *slot) latest() (Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.has {
		s.read = s.img.Seq
	}
	return s.img, s.has
}

func (s *slot) fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = &ar.Error{Kind: ar.CameraUnavailable, Op: op, Err: err}
	}
}

func (s *slot) clearErr() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = nil
}

func (s *slot) error() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Dropped returns how many images were overwritten before being read.
func (s *slot) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}
